package db

import (
	"database/sql"
	"fmt"
)

// GetWorkerState reads a named marker, returning the empty string when
// it has never been written.
func (l *LeadDB) GetWorkerState(name string) (string, error) {
	var value string
	err := l.DB.QueryRow(`SELECT value FROM worker_state WHERE name = $1`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading worker state: %w", err)
	}
	return value, nil
}

// SetWorkerState upserts a named marker. Markers survive restarts so
// once-per-day work is not repeated.
func (l *LeadDB) SetWorkerState(name, value string) error {
	_, err := l.DB.Exec(`
		INSERT INTO worker_state (name, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = $2, updated_at = now()`,
		name, value)
	if err != nil {
		return fmt.Errorf("error writing worker state: %w", err)
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/lead-services/models"
)

const repColumns = `r.id, r.name, r.email, r.priority, r.lead_capacity,
	r.active, r.last_assigned_at, r.created_at,
	(SELECT COUNT(*) FROM leads WHERE assigned_to = r.id) AS assigned_count`

func scanRep(scan func(dest ...interface{}) error) (*models.SalesRep, error) {
	var rep models.SalesRep
	var lastAssigned sql.NullTime

	err := scan(&rep.ID, &rep.Name, &rep.Email, &rep.Priority,
		&rep.LeadCapacity, &rep.Active, &lastAssigned, &rep.CreatedAt,
		&rep.AssignedCount)
	if err != nil {
		return nil, err
	}
	if lastAssigned.Valid {
		rep.LastAssignedAt = &lastAssigned.Time
	}
	return &rep, nil
}

// CreateRep adds a sales rep to the roster.
func (l *LeadDB) CreateRep(rep *models.SalesRep) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	rep.CreatedAt = time.Now().UTC()

	_, err := l.DB.Exec(`
		INSERT INTO sales_reps (id, name, email, priority, lead_capacity,
			active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rep.ID, rep.Name, rep.Email, rep.Priority, rep.LeadCapacity,
		rep.Active, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting rep: %w", err)
	}
	return nil
}

// GetRep retrieves one rep with its current assignment count.
func (l *LeadDB) GetRep(id uuid.UUID) (*models.SalesRep, error) {
	row := l.DB.QueryRow(`SELECT `+repColumns+` FROM sales_reps r WHERE r.id = $1`, id)
	rep, err := scanRep(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("error retrieving rep: %w", err)
	}
	return rep, nil
}

// ListReps returns the full roster ordered by priority.
func (l *LeadDB) ListReps() ([]models.SalesRep, error) {
	rows, err := l.DB.Query(`SELECT ` + repColumns + ` FROM sales_reps r ORDER BY r.priority DESC, r.name`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving reps: %w", err)
	}
	defer rows.Close()

	var reps []models.SalesRep
	for rows.Next() {
		rep, err := scanRep(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning rep: %w", err)
		}
		reps = append(reps, *rep)
	}
	return reps, rows.Err()
}

// UpdateRep replaces the mutable rep fields.
func (l *LeadDB) UpdateRep(rep *models.SalesRep) error {
	res, err := l.DB.Exec(`
		UPDATE sales_reps SET name = $2, email = $3, priority = $4,
			lead_capacity = $5, active = $6
		WHERE id = $1`,
		rep.ID, rep.Name, rep.Email, rep.Priority, rep.LeadCapacity, rep.Active)
	if err != nil {
		return fmt.Errorf("error updating rep: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteRep removes a rep; their leads drop back to unassigned.
func (l *LeadDB) DeleteRep(id uuid.UUID) error {
	res, err := l.DB.Exec(`DELETE FROM sales_reps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting rep: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/events"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// LeadDB wraps the Postgres connection together with the event publisher
// so writes and lifecycle notifications travel through one place.
type LeadDB struct {
	DB     *sql.DB
	Events events.Notifier
	Log    *zerolog.Logger
}

// NewLeadDB is a constructor that initializes LeadDB with DB and Log
func NewLeadDB(notifier events.Notifier, log *zerolog.Logger) (*LeadDB, error) {
	// Get the database connection string from the environment
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Error().Msg("DATABASE_URL environment variable is not set")
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// Open the database connection
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		return nil, err
	}

	return &LeadDB{
		DB:     db,
		Events: notifier,
		Log:    log,
	}, nil
}

func (l *LeadDB) Close() error {
	if err := l.DB.Close(); err != nil {
		return err
	}
	l.Log.Info().Msg("database connection closed")

	if l.Events != nil {
		l.Events.Close()
		l.Log.Info().Msg("event publisher closed")
	}

	return nil
}

// Migrate runs the embedded goose migrations up to the latest version.
func (l *LeadDB) Migrate() error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(l.DB, "migrations"); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}

// CommitTransaction commits a transaction opened by one of the Create
// helpers once the matching event has been published.
func (l *LeadDB) CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (l *LeadDB) execQuery(tx *sql.Tx, query string, args ...interface{}) error {
	if l.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	_, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

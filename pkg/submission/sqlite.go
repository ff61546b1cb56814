package submission

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/schema"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// ErrSQLiteDSN is returned when no database path is configured.
var ErrSQLiteDSN = errors.New("submission: sqlite DSN not set")

// StoredSubmission is one row of the submissions table.
type StoredSubmission struct {
	ID          string
	Form        string
	Values      schema.FormValues
	SubmittedAt time.Time
}

// SQLiteSubmitter persists submissions as JSON rows.
type SQLiteSubmitter struct {
	db     *sql.DB
	form   string
	logger zerolog.Logger
	ids    IDGenerator
	clock  Clock
}

// SQLiteOption configures a SQLiteSubmitter.
type SQLiteOption func(*SQLiteSubmitter)

// WithSQLiteLogger sets the logger.
func WithSQLiteLogger(logger zerolog.Logger) SQLiteOption {
	return func(s *SQLiteSubmitter) {
		s.logger = logger
	}
}

// WithFormName tags rows with the form they came from.
func WithFormName(name string) SQLiteOption {
	return func(s *SQLiteSubmitter) {
		s.form = name
	}
}

// WithSQLiteIDs overrides the id generator.
func WithSQLiteIDs(ids IDGenerator) SQLiteOption {
	return func(s *SQLiteSubmitter) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithSQLiteClock overrides the clock.
func WithSQLiteClock(clock Clock) SQLiteOption {
	return func(s *SQLiteSubmitter) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSQLiteSubmitter opens (creating if needed) the database at dsn and
// applies the schema. ":memory:" is accepted for tests.
func NewSQLiteSubmitter(dsn string, options ...SQLiteOption) (*SQLiteSubmitter, error) {
	if dsn == "" {
		return nil, ErrSQLiteDSN
	}
	s := &SQLiteSubmitter{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("submission: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("submission: open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("submission: ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("submission: run migrations: %w", err)
	}
	s.logger.Debug().Str("dsn", dsn).Msg("sqlite submission store ready")

	s.db = db
	return s, nil
}

// Submit implements Submitter.
func (s *SQLiteSubmitter) Submit(ctx context.Context, values schema.FormValues) (Receipt, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: encode values: %w", err)
	}
	receipt := newReceipt("sqlite", s.ids, s.clock)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, form, payload, submitted_at) VALUES (?, ?, ?, ?)`,
		receipt.ID, s.form, string(payload), receipt.SubmittedAt,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("submission_id", receipt.ID).Msg("sqlite insert failed")
		return Receipt{}, fmt.Errorf("submission: insert %s: %w", receipt.ID, err)
	}
	s.logger.Debug().Str("submission_id", receipt.ID).Msg("submission stored")
	return receipt, nil
}

// List returns stored submissions, oldest first.
func (s *SQLiteSubmitter) List(ctx context.Context) ([]StoredSubmission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, form, payload, submitted_at FROM submissions ORDER BY submitted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("submission: query submissions: %w", err)
	}
	defer rows.Close()

	var out []StoredSubmission
	for rows.Next() {
		var (
			row     StoredSubmission
			payload string
		)
		if err := rows.Scan(&row.ID, &row.Form, &payload, &row.SubmittedAt); err != nil {
			return nil, fmt.Errorf("submission: scan submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &row.Values); err != nil {
			return nil, fmt.Errorf("submission: decode payload %s: %w", row.ID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("submission: iterate submissions: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *SQLiteSubmitter) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Package postgres provides a PostgreSQL implementation of the summary
// store, intended for shared/team deployments.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/prdigest/prdigest/storage"
)

// PostgreSQL stores summary records in a PostgreSQL table.
type PostgreSQL struct {
	db        *sql.DB
	overwrite bool
}

// New creates a PostgreSQL store around an existing connection.
// When overwrite is true each Save replaces the table contents instead
// of appending.
func New(db *sql.DB, overwrite bool) *PostgreSQL {
	return &PostgreSQL{db: db, overwrite: overwrite}
}

// NewFromDSN creates a PostgreSQL store from a connection string.
func NewFromDSN(dsn string, overwrite bool) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgreSQL{db: db, overwrite: overwrite}, nil
}

// Close closes the database connection.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

// Migrate creates the required database table.
func (p *PostgreSQL) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS pr_summaries (
			id SERIAL PRIMARY KEY,
			repo TEXT NOT NULL,
			author TEXT NOT NULL,
			pr_number INTEGER NOT NULL,
			llm_provider TEXT NOT NULL,
			model_name TEXT NOT NULL,
			pr_created_at TEXT NOT NULL,
			pr_merged_at TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			summary JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pr_summaries_pr ON pr_summaries(repo, pr_number);
	`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save appends a summary record. In overwrite mode the table is
// truncated first, inside one transaction.
func (p *PostgreSQL) Save(ctx context.Context, rec storage.SummaryRecord) error {
	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("invalid created_at %q: %w", rec.CreatedAt, err)
	}

	insert := `
		INSERT INTO pr_summaries (repo, author, pr_number, llm_provider, model_name, pr_created_at, pr_merged_at, created_at, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if !p.overwrite {
		if _, err := p.db.ExecContext(ctx, insert,
			rec.Repo, rec.Author, rec.PRNumber, rec.LLMProvider, rec.ModelName,
			rec.PRCreatedAt, nullable(rec.PRMergedAt), createdAt, rec.Summary,
		); err != nil {
			return fmt.Errorf("failed to store summary: %w", err)
		}
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE pr_summaries"); err != nil {
		return fmt.Errorf("failed to truncate summaries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert,
		rec.Repo, rec.Author, rec.PRNumber, rec.LLMProvider, rec.ModelName,
		rec.PRCreatedAt, nullable(rec.PRMergedAt), createdAt, rec.Summary,
	); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	return tx.Commit()
}

// Load returns all persisted summary records, oldest first.
func (p *PostgreSQL) Load(ctx context.Context) ([]storage.SummaryRecord, error) {
	query := `
		SELECT repo, author, pr_number, llm_provider, model_name, pr_created_at, pr_merged_at, created_at, summary
		FROM pr_summaries
		ORDER BY created_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load summaries: %w", err)
	}
	defer rows.Close()

	var records []storage.SummaryRecord
	for rows.Next() {
		var rec storage.SummaryRecord
		var mergedAt sql.NullString
		var createdAt time.Time

		if err := rows.Scan(
			&rec.Repo, &rec.Author, &rec.PRNumber, &rec.LLMProvider, &rec.ModelName,
			&rec.PRCreatedAt, &mergedAt, &createdAt, &rec.Summary,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		rec.PRMergedAt = mergedAt.String
		rec.CreatedAt = createdAt.UTC().Format("2006-01-02T15:04:05Z")
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Verify PostgreSQL implements Store at compile time.
var _ storage.Store = (*PostgreSQL)(nil)

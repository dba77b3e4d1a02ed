package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// SchemaRecord is one applied schema file.
type SchemaRecord struct {
	ID         int64
	Source     string
	Checksum   string
	Statements []string
	AppliedAt  time.Time
}

// recordHistory appends r to the history table and fills in its ID and
// AppliedAt.
func recordHistory(ctx context.Context, tx *sql.Tx, r *SchemaRecord) error {
	statements, err := json.Marshal(r.Statements)
	if err != nil {
		return fmt.Errorf("failed to encode schema history: %w", err)
	}

	var last int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM "+HistoryTable).Scan(&last); err != nil {
		return fmt.Errorf("failed to read schema history: %w", classify("history", err))
	}

	appliedAt := time.Now().UTC().Truncate(time.Second)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+HistoryTable+" (id, source, checksum, statements, applied_at) VALUES (?, ?, ?, ?, ?)",
		last+1, r.Source, r.Checksum, string(statements), appliedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record schema history: %w", classify("history", err))
	}

	r.ID = last + 1
	r.AppliedAt = appliedAt
	return nil
}

// SchemaHistory returns every recorded schema application, oldest first.
func (db *DB) SchemaHistory(ctx context.Context) ([]SchemaRecord, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT id, source, checksum, statements, applied_at FROM "+HistoryTable+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load schema history: %w", classify("history", err))
	}
	defer rows.Close()

	var records []SchemaRecord
	for rows.Next() {
		var (
			r                     SchemaRecord
			statements, appliedAt string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Checksum, &statements, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schema history row: %w", err)
		}
		if err := json.Unmarshal([]byte(statements), &r.Statements); err != nil {
			return nil, fmt.Errorf("failed to decode schema history %d: %w", r.ID, err)
		}
		if r.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, fmt.Errorf("failed to parse schema history %d time: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load schema history: %w", classify("history", err))
	}
	return records, nil
}

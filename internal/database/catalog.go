package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Akash-nath29/akron/internal/schema"
)

// SchemaChange is a set of DDL statements and catalog updates applied in one
// engine transaction.
type SchemaChange struct {
	Statements []string
	Save       []*schema.Table
	Remove     []string

	// History, when set, is recorded in the same transaction.
	History *SchemaRecord
}

// LoadTables reads every persisted table definition.
func (db *DB) LoadTables(ctx context.Context) ([]*schema.Table, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT name, definition FROM "+TablesTable+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", classify("load catalog", err))
	}
	defer rows.Close()

	var tables []*schema.Table
	for rows.Next() {
		var name, definition string
		if err := rows.Scan(&name, &definition); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		var t schema.Table
		if err := json.Unmarshal([]byte(definition), &t); err != nil {
			return nil, fmt.Errorf("failed to decode definition of %s: %w", name, err)
		}
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", classify("load catalog", err))
	}

	db.log.Debug().Int("tables", len(tables)).Msg("Catalog loaded")
	return tables, nil
}

func (db *DB) applySchema(ctx context.Context, txID string, change SchemaChange) error {
	start := time.Now()
	err := db.runInTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range change.Statements {
			db.log.Debug().Str("sql", stmt).Msg("Executing DDL")
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return classify("", err)
			}
		}
		for _, t := range change.Save {
			if err := saveTable(ctx, tx, t); err != nil {
				return err
			}
		}
		for _, name := range change.Remove {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+TablesTable+" WHERE name = ?", name); err != nil {
				return fmt.Errorf("failed to remove %s from catalog: %w", name, classify("catalog", err))
			}
		}
		if change.History != nil {
			return recordHistory(ctx, tx, change.History)
		}
		return nil
	})

	for _, stmt := range change.Statements {
		db.emit(ctx, Event{Kind: EventSchema, TxID: txID, Text: stmt, Duration: time.Since(start), Err: err})
	}
	return err
}

func saveTable(ctx context.Context, tx *sql.Tx, t *schema.Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode definition of %s: %w", t.Name, err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TablesTable+" WHERE name = ?", t.Name).Scan(&count); err != nil {
		return fmt.Errorf("failed to look up %s in catalog: %w", t.Name, classify("catalog", err))
	}

	if count == 0 {
		_, err = tx.ExecContext(ctx, "INSERT INTO "+TablesTable+" (name, definition) VALUES (?, ?)", t.Name, string(data))
	} else {
		_, err = tx.ExecContext(ctx, "UPDATE "+TablesTable+" SET definition = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?", string(data), t.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s to catalog: %w", t.Name, classify("catalog", err))
	}
	return nil
}

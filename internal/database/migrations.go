package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Metadata table names
const (
	MigrationsTable = "akron_migrations"
	TablesTable     = "akron_tables"
	HistoryTable    = "akron_schema_history"
)

// migrate runs all metadata migrations
func (db *DB) migrate(ctx context.Context) error {
	db.log.Debug().Msg("Running metadata migrations")

	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+MigrationsTable+` (
			version INTEGER NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", classify("migrate", err))
	}

	var currentVersion int
	err = db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM "+MigrationsTable).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", classify("migrate", err))
	}

	db.log.Debug().Int("current_version", currentVersion).Msg("Current metadata version")

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}
		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying metadata migration")

		if err := db.runInTx(ctx, func(tx *sql.Tx) error {
			statements := splitSQLStatements(m.SQL)
			for i, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", m.Version, i+1, classify("migrate", err))
				}
			}

			if _, err := tx.ExecContext(ctx, "INSERT INTO "+MigrationsTable+" (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, classify("migrate", err))
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

// splitSQLStatements splits a SQL string into individual statements.
// It handles comments and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	lines := strings.SplitSeq(sql, "\n")
	for line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

// The statements below must stay valid on both SQLite and MySQL.
var migrations = []migration{
	{
		Version: 1,
		Name:    "table_catalog",
		SQL: `
			-- One row per user table, holding its JSON definition
			CREATE TABLE ` + TablesTable + ` (
				name VARCHAR(255) NOT NULL PRIMARY KEY,
				definition TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "table_catalog_updated_at",
		SQL: `
			-- Bumped whenever an index is added to the definition
			ALTER TABLE ` + TablesTable + ` ADD COLUMN updated_at TIMESTAMP NULL;
		`,
	},
	{
		Version: 3,
		Name:    "schema_history",
		SQL: `
			-- One row per applied schema file; applied_at is RFC 3339 text
			CREATE TABLE ` + HistoryTable + ` (
				id INTEGER NOT NULL PRIMARY KEY,
				source VARCHAR(1024) NOT NULL,
				checksum VARCHAR(64) NOT NULL,
				statements TEXT NOT NULL,
				applied_at VARCHAR(64) NOT NULL
			);
		`,
	},
}

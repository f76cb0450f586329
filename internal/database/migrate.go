package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/postgres/001_create_users.up.sql
var postgresUsersSQL string

//go:embed migrations/sqlite/001_create_users.up.sql
var sqliteUsersSQL string

var requiredTables = []string{
	"users",
}

// EnsureSchema creates the users table on Postgres when it is missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, postgresUsersSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}
		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	slog.Info("database schema ensured", "driver", "postgres")
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}

// EnsureSQLiteSchema applies the SQLite schema. Every statement is
// IF NOT EXISTS, so it is safe on every start.
func EnsureSQLiteSchema(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite handle is not initialized")
	}
	if _, err := db.ExecContext(ctx, sqliteUsersSQL); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}

	slog.Info("database schema ensured", "driver", "sqlite")
	return nil
}

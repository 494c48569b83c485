package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "."

// gooseRun is swapped in tests.
var gooseRun = goose.RunContext

// Migrate runs a goose command ("up", "down", "status", "redo", "version", ...)
// against the embedded migration set.
func Migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("migrate %s: nil database", command)
	}
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	if err := gooseRun(ctx, command, db.DB, migrationsDir, args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/migrations"
)

func TestMigrateDelegatesToGoose(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var gotCommand, gotDir string
	var gotArgs []string
	original := gooseRun
	gooseRun = func(ctx context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir, gotArgs = command, dir, args
		return nil
	}
	defer func() { gooseRun = original }()

	err = Migrate(context.Background(), sqlx.NewDb(db, "postgres"), migrations.FS, "up-to", "1")
	require.NoError(t, err)
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, migrationsDir, gotDir)
	assert.Equal(t, []string{"1"}, gotArgs)
}

func TestMigrateWrapsFailure(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	original := gooseRun
	gooseRun = func(context.Context, string, *sql.DB, string, ...string) error {
		return errors.New("no migrations")
	}
	defer func() { gooseRun = original }()

	err = Migrate(context.Background(), sqlx.NewDb(db, "postgres"), migrations.FS, "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate down")
}

func TestMigrateRejectsNilDB(t *testing.T) {
	err := Migrate(context.Background(), nil, migrations.FS, "up")
	require.Error(t, err)
}

func TestEmbeddedSchemaPresent(t *testing.T) {
	raw, err := migrations.FS.ReadFile("00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "academic_terms_single_active_idx")
	assert.Contains(t, string(raw), "UNIQUE (subject_id, lecturer_id, academic_year, semester)")
}

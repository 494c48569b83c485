package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/models"
)

func TestProgramRepositoryListAndFind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	now := time.Now()
	columns := []string{"id", "name_th", "founded_year", "degree_level", "program_chair_id", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM programs ORDER BY name_th ASC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p-1", "คณิตศาสตร์", nil, "BACHELOR", nil, now, now).
			AddRow("p-2", "วิทยาการคอมพิวเตอร์", 2545, "MASTER", "u-9", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM programs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	programs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Nil(t, programs[0].ProgramChairID)
	assert.True(t, programs[1].IsChair("u-9"))
	require.NotNil(t, programs[1].FoundedYear)
	assert.Equal(t, 2545, *programs[1].FoundedYear)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCRUD(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO programs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM programs WHERE id = $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name_th", "founded_year", "degree_level", "program_chair_id", "created_at", "updated_at"}).
			AddRow("p-1", "วิทยาการคอมพิวเตอร์", 2540, models.DegreeBachelor, "u-1", now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM programs WHERE id = $1")).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	program := &models.Program{NameTH: "วิทยาการคอมพิวเตอร์", DegreeLevel: models.DegreeBachelor, ProgramChairID: strPtr("u-1")}
	require.NoError(t, repo.Create(context.Background(), program))
	assert.NotEmpty(t, program.ID)

	loaded, err := repo.FindByID(context.Background(), program.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsChair("u-1"))
	assert.Equal(t, 2540, *loaded.FoundedYear)

	require.NoError(t, repo.Delete(context.Background(), "p-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryUpdateAndDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("UPDATE programs SET name_th").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM programs WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), &models.Program{ID: "missing"}), sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

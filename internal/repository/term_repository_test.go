package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/models"
)

var termRowColumns = []string{"id", "academic_year", "semester", "is_active", "step1_start", "step1_end", "step2_start", "step2_end", "step3_start", "step3_end", "step4_start", "step4_end", "created_at", "updated_at"}

func TestTermRepositoryListOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(termRowColumns).
		AddRow("t-2568-1", 2568, 1, false, nil, nil, nil, nil, nil, nil, nil, nil, now, now).
		AddRow("t-2567-1", 2567, 1, true, now, now, nil, nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM academic_terms ORDER BY academic_year DESC, semester ASC")).WillReturnRows(rows)

	terms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, 2568, terms[0].AcademicYear)
	assert.NotNil(t, terms[1].Step1Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryCreateYearInsertsThreeSemesters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	for sem := 1; sem <= 3; sem++ {
		mock.ExpectExec("INSERT INTO academic_terms").
			WithArgs(sqlmock.AnyArg(), 2567, sem, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	terms := []*models.AcademicTerm{{AcademicYear: 2567, Semester: 1}, {AcademicYear: 2567, Semester: 2}, {AcademicYear: 2567, Semester: 3}}
	require.NoError(t, repo.CreateYear(context.Background(), terms))
	for _, term := range terms {
		assert.NotEmpty(t, term.ID)
		assert.False(t, term.IsActive)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryCreateYearDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO academic_terms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO academic_terms").WillReturnError(uniqueViolation("academic_terms_year_semester_key"))
	mock.ExpectRollback()

	terms := []*models.AcademicTerm{{AcademicYear: 2567, Semester: 1}, {AcademicYear: 2567, Semester: 2}, {AcademicYear: 2567, Semester: 3}}
	err := repo.CreateYear(context.Background(), terms)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositorySetActiveSwapsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_terms SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_terms SET is_active = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("t-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetActive(context.Background(), "t-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositorySetActiveMissingTermRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE academic_terms SET is_active = FALSE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE academic_terms SET is_active = TRUE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetActive(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryExistsByYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_terms WHERE academic_year = $1 LIMIT 1")).
		WithArgs(2567).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_terms WHERE academic_year = $1 LIMIT 1")).
		WithArgs(2570).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByYear(context.Background(), 2567)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByYear(context.Background(), 2570)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryUpdateTimeline(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE academic_terms SET step1_start").
		WillReturnResult(sqlmock.NewResult(0, 1))

	term := &models.AcademicTerm{ID: "t-1", Step1Start: &start}
	require.NoError(t, repo.UpdateTimeline(context.Background(), term))
	assert.False(t, term.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

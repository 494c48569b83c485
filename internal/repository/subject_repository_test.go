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

func TestSubjectRepositoryListSearchAndPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND program_id = $1 AND (LOWER(code) LIKE $2 OR LOWER(name_th) LIKE $2 OR LOWER(name_en) LIKE $2) ORDER BY code ASC LIMIT 10 OFFSET 10")).
		WithArgs("p-1", "%cs%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name_th", "name_en", "credit", "program_id", "responsible_user_id", "created_at", "updated_at"}).
			AddRow("s-1", "CS101", "การเขียนโปรแกรม", "Programming", "3(2-2-5)", "p-1", "u-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE 1=1 AND program_id = $1")).
		WithArgs("p-1", "%cs%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	subjects, total, err := repo.List(context.Background(), models.SubjectFilter{ProgramID: "p-1", Search: "CS", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 11, total)
	assert.True(t, subjects[0].IsResponsible("u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnError(uniqueViolation("subjects_code_key"))

	err := repo.Create(context.Background(), &models.Subject{Code: "CS101", NameTH: "x", NameEN: "x", Credit: "3"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET code").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Subject{ID: "missing", Code: "CS999"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

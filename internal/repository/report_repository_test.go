package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/models"
)

var yearlyReportColumns = []string{"id", "academic_year", "semester", "subject_id", "subject_code", "subject_name_th", "subject_name_en", "program_name",
	"responsible_user_id", "lecturer_id", "lecturer_name", "lecture_hours", "lab_hours", "exam_hours", "exam_critique_hours", "dean_approval_status"}

func TestReportRepositoryYearlyRowsOnlyDeanApproved(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(yearlyReportColumns).
		AddRow("a-1", 2567, 1, "s-1", "CS101", "การเขียนโปรแกรม", "Programming", "วิทยาการคอมพิวเตอร์", "u-1", "u-1", "Somchai", 30.0, 0.0, 2.0, 1.0, "APPROVED")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ta.dean_approval_status = 'APPROVED' AND ta.academic_year = $1 AND ta.semester = $2 AND s.program_id = $3")).
		WithArgs(2567, 1, "p-1").
		WillReturnRows(rows)

	semester := 1
	result, err := repo.YearlyRows(context.Background(), models.ReportFilter{AcademicYear: 2567, Semester: &semester, ProgramID: "p-1"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 33.0, result[0].TotalHours)
	assert.Equal(t, models.AssignmentRoleResponsible, result[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryYearlyRowsYearOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ta.dean_approval_status = 'APPROVED' AND ta.academic_year = $1\nORDER BY")).
		WithArgs(2567).
		WillReturnRows(sqlmock.NewRows(yearlyReportColumns))

	result, err := repo.YearlyRows(context.Background(), models.ReportFilter{AcademicYear: 2567})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

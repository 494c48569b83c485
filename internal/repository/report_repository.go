package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/workload-api/internal/models"
)

// ReportRepository serves the read-only yearly report projection.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// YearlyRows returns dean-approved assignments for the filter with names joined in.
// Rows at any earlier stage are never included.
func (r *ReportRepository) YearlyRows(ctx context.Context, filter models.ReportFilter) ([]models.YearlyReportRow, error) {
	conditions := []string{"ta.dean_approval_status = 'APPROVED'", "ta.academic_year = $1"}
	args := []interface{}{filter.AcademicYear}
	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		conditions = append(conditions, fmt.Sprintf("ta.semester = $%d", len(args)))
	}
	if filter.ProgramID != "" {
		args = append(args, filter.ProgramID)
		conditions = append(conditions, fmt.Sprintf("s.program_id = $%d", len(args)))
	}

	query := `SELECT ta.id, ta.academic_year, ta.semester, ta.subject_id, s.code AS subject_code,
       s.name_th AS subject_name_th, s.name_en AS subject_name_en, p.name_th AS program_name,
       s.responsible_user_id, ta.lecturer_id, u.full_name AS lecturer_name,
       ta.lecture_hours, ta.lab_hours, ta.exam_hours, ta.exam_critique_hours, ta.dean_approval_status
FROM teaching_assignments ta
JOIN subjects s ON s.id = ta.subject_id
JOIN users u ON u.id = ta.lecturer_id
LEFT JOIN programs p ON p.id = s.program_id
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY u.full_name ASC, ta.semester ASC, s.code ASC`

	var rows []models.YearlyReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("yearly report rows: %w", err)
	}
	for i := range rows {
		row := &rows[i]
		row.TotalHours = row.LectureHours + row.LabHours + row.ExamHours + row.ExamCritiqueHours
		row.Role = models.ResolveAssignmentRole(row.LecturerID, row.ResponsibleUserID)
	}
	return rows, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/workload-api/internal/models"
)

const assignmentColumns = `id, subject_id, lecturer_id, academic_year, semester, lecture_hours, lab_hours, exam_hours, exam_critique_hours, lecturer_status, responsible_status, head_approval_status, dean_approval_status, lecturer_feedback, created_by, version, created_at, updated_at`

const assignmentViewSelect = `SELECT ta.id, ta.subject_id, ta.lecturer_id, ta.academic_year, ta.semester,
       ta.lecture_hours, ta.lab_hours, ta.exam_hours, ta.exam_critique_hours,
       ta.lecturer_status, ta.responsible_status, ta.head_approval_status, ta.dean_approval_status,
       ta.lecturer_feedback, ta.created_by, ta.version, ta.created_at, ta.updated_at,
       s.code AS subject_code, s.name_th AS subject_name_th, s.name_en AS subject_name_en,
       s.program_id, s.responsible_user_id, u.full_name AS lecturer_name
FROM teaching_assignments ta
JOIN subjects s ON s.id = ta.subject_id
JOIN users u ON u.id = ta.lecturer_id`

var laneColumns = map[models.Lane]string{
	models.LaneLecturer:    "lecturer_status",
	models.LaneResponsible: "responsible_status",
	models.LaneHead:        "head_approval_status",
	models.LaneDean:        "dean_approval_status",
}

// AssignmentRepository persists the teaching assignment ledger.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment. A storage unique violation yields ErrDuplicate.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.TeachingAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Version == 0 {
		a.Version = 1
	}
	const query = `INSERT INTO teaching_assignments (id, subject_id, lecturer_id, academic_year, semester, lecture_hours, lab_hours, exam_hours, exam_critique_hours, lecturer_status, responsible_status, head_approval_status, dean_approval_status, lecturer_feedback, created_by, version, created_at, updated_at)
VALUES (:id, :subject_id, :lecturer_id, :academic_year, :semester, :lecture_hours, :lab_hours, :exam_hours, :exam_critique_hours, :lecturer_status, :responsible_status, :head_approval_status, :dean_approval_status, :lecturer_feedback, :created_by, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		if errors.Is(mapUniqueViolation(err), ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ExistsPair reports whether the lecturer already has a row on the subject.
// With anyTerm set the year and semester are ignored.
func (r *AssignmentRepository) ExistsPair(ctx context.Context, subjectID, lecturerID string, year, semester int, anyTerm bool) (bool, error) {
	query := `SELECT 1 FROM teaching_assignments WHERE subject_id = $1 AND lecturer_id = $2`
	args := []interface{}{subjectID, lecturerID}
	if !anyTerm {
		query += ` AND academic_year = $3 AND semester = $4`
		args = append(args, year, semester)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+` LIMIT 1`, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check assignment pair: %w", err)
	}
	return true, nil
}

// FindByID loads an assignment row.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeachingAssignment, error) {
	var a models.TeachingAssignment
	if err := r.db.GetContext(ctx, &a, `SELECT `+assignmentColumns+` FROM teaching_assignments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

// FindView loads an assignment joined with its subject and lecturer.
func (r *AssignmentRepository) FindView(ctx context.Context, id string) (*models.AssignmentView, error) {
	var v models.AssignmentView
	if err := r.db.GetContext(ctx, &v, assignmentViewSelect+` WHERE ta.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment view: %w", err)
	}
	v.Decorate()
	return &v, nil
}

// List returns assignment views matching the filter ordered by subject code then lecturer.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, error) {
	var conditions []string
	var args []interface{}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.lecturer_id = $%d", len(args)+1))
		args = append(args, filter.LecturerID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("s.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.AcademicYear > 0 {
		conditions = append(conditions, fmt.Sprintf("ta.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("ta.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}

	query := assignmentViewSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.code ASC, u.full_name ASC"

	var views []models.AssignmentView
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	for i := range views {
		views[i].Decorate()
	}
	return views, nil
}

// Update persists an hour edit and bumps the version. When ExpectedVersion is
// set and no longer matches, ErrVersionConflict is returned.
func (r *AssignmentRepository) Update(ctx context.Context, upd models.AssignmentUpdate) (int, error) {
	query := `UPDATE teaching_assignments SET lecture_hours = $2, lab_hours = $3, exam_hours = $4, exam_critique_hours = $5,
lecturer_status = $6, responsible_status = $7, head_approval_status = $8, dean_approval_status = $9,
lecturer_feedback = $10, version = version + 1, updated_at = $11 WHERE id = $1`
	args := []interface{}{upd.ID, upd.LectureHours, upd.LabHours, upd.ExamHours, upd.ExamCritiqueHours,
		upd.LecturerStatus, upd.ResponsibleStatus, upd.HeadApprovalStatus, upd.DeanApprovalStatus,
		upd.LecturerFeedback, upd.UpdatedAt}
	if upd.ExpectedVersion > 0 {
		query += ` AND version = $12`
		args = append(args, upd.ExpectedVersion)
	}
	query += ` RETURNING version`

	var version int
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if upd.ExpectedVersion > 0 {
				return 0, ErrVersionConflict
			}
			return 0, err
		}
		return 0, fmt.Errorf("update assignment: %w", err)
	}
	return version, nil
}

// SetLecturerDecision records the lecturer's own verdict. The row must still be
// PENDING in the lecturer lane, otherwise ErrRequirementNotMet is returned.
func (r *AssignmentRepository) SetLecturerDecision(ctx context.Context, id string, status models.ApprovalStatus, feedback *string) (int, error) {
	const query = `UPDATE teaching_assignments SET lecturer_status = $2, lecturer_feedback = COALESCE($3, lecturer_feedback), version = version + 1, updated_at = $4
WHERE id = $1 AND lecturer_status = 'PENDING' RETURNING version`
	var version int
	if err := r.db.GetContext(ctx, &version, query, id, status, feedback, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRequirementNotMet
		}
		return 0, fmt.Errorf("set lecturer decision: %w", err)
	}
	return version, nil
}

// Delete hard-deletes a single row.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teaching_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireAffected(res)
}

type laneRow struct {
	ID          string                `db:"id"`
	Lecturer    models.ApprovalStatus `db:"lecturer_status"`
	Responsible models.ApprovalStatus `db:"responsible_status"`
	Head        models.ApprovalStatus `db:"head_approval_status"`
	Dean        models.ApprovalStatus `db:"dean_approval_status"`
}

func (l laneRow) status(lane models.Lane) models.ApprovalStatus {
	switch lane {
	case models.LaneLecturer:
		return l.Lecturer
	case models.LaneResponsible:
		return l.Responsible
	case models.LaneHead:
		return l.Head
	default:
		return l.Dean
	}
}

// ApplyLaneChange writes a lane value to every row of a subject in one term,
// inside one transaction with the rows locked. Any failure rolls back every
// row. It returns sql.ErrNoRows when the subject has no rows in the term and
// ErrRequirementNotMet when a row fails change.Require.
func (r *AssignmentRepository) ApplyLaneChange(ctx context.Context, change models.LaneChange) (affected int, err error) {
	column, ok := laneColumns[change.Lane]
	if !ok {
		return 0, fmt.Errorf("unknown lane %q", change.Lane)
	}
	setClause := []string{column + " = $2"}
	args := []interface{}{"", change.Value}
	for _, lane := range models.Lanes {
		value, present := change.Extra[lane]
		if !present || lane == change.Lane {
			continue
		}
		args = append(args, value)
		setClause = append(setClause, fmt.Sprintf("%s = $%d", laneColumns[lane], len(args)))
	}
	args = append(args, time.Now().UTC())
	setClause = append(setClause, "version = version + 1", fmt.Sprintf("updated_at = $%d", len(args)))
	updateQuery := `UPDATE teaching_assignments SET ` + strings.Join(setClause, ", ") + ` WHERE id = $1`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin lane change tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT id, lecturer_status, responsible_status, head_approval_status, dean_approval_status
FROM teaching_assignments WHERE subject_id = $1 AND academic_year = $2 AND semester = $3 ORDER BY id FOR UPDATE`
	var rows []laneRow
	if err = tx.SelectContext(ctx, &rows, lockQuery, change.SubjectID, change.AcademicYear, change.Semester); err != nil {
		return 0, fmt.Errorf("lock subject rows: %w", err)
	}
	if len(rows) == 0 {
		err = sql.ErrNoRows
		return 0, err
	}
	if req := change.Require; req != nil {
		for _, row := range rows {
			if row.status(req.Lane) != req.Value {
				err = ErrRequirementNotMet
				return 0, err
			}
		}
	}

	for _, row := range rows {
		args[0] = row.ID
		if _, err = tx.ExecContext(ctx, updateQuery, args...); err != nil {
			return 0, fmt.Errorf("update row %s: %w", row.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit lane change tx: %w", err)
	}
	return len(rows), nil
}

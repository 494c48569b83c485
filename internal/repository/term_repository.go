package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/workload-api/internal/models"
)

const termColumns = `id, academic_year, semester, is_active, step1_start, step1_end, step2_start, step2_end, step3_start, step3_end, step4_start, step4_end, created_at, updated_at`

// TermRepository handles persistence for academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns every term, newest year first and semesters in order.
func (r *TermRepository) List(ctx context.Context) ([]models.AcademicTerm, error) {
	query := `SELECT ` + termColumns + ` FROM academic_terms ORDER BY academic_year DESC, semester ASC`
	var terms []models.AcademicTerm
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByID loads a term by identifier.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.AcademicTerm, error) {
	query := `SELECT ` + termColumns + ` FROM academic_terms WHERE id = $1`
	var term models.AcademicTerm
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find term: %w", err)
	}
	return &term, nil
}

// FindActive returns the current term.
func (r *TermRepository) FindActive(ctx context.Context) (*models.AcademicTerm, error) {
	query := `SELECT ` + termColumns + ` FROM academic_terms WHERE is_active = TRUE LIMIT 1`
	var term models.AcademicTerm
	if err := r.db.GetContext(ctx, &term, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active term: %w", err)
	}
	return &term, nil
}

// FindByYearSemester loads the term for a year and semester.
func (r *TermRepository) FindByYearSemester(ctx context.Context, year, semester int) (*models.AcademicTerm, error) {
	query := `SELECT ` + termColumns + ` FROM academic_terms WHERE academic_year = $1 AND semester = $2`
	var term models.AcademicTerm
	if err := r.db.GetContext(ctx, &term, query, year, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find term by year: %w", err)
	}
	return &term, nil
}

// ExistsByYear reports whether any term exists for the academic year.
func (r *TermRepository) ExistsByYear(ctx context.Context, year int) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM academic_terms WHERE academic_year = $1 LIMIT 1`, year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check term year: %w", err)
	}
	return true, nil
}

// CreateYear inserts the given terms in one transaction. A concurrent insert of
// the same year surfaces as ErrDuplicate.
func (r *TermRepository) CreateYear(ctx context.Context, terms []*models.AcademicTerm) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const query = `INSERT INTO academic_terms (id, academic_year, semester, is_active, created_at, updated_at) VALUES ($1, $2, $3, FALSE, $4, $5)`
	for _, term := range terms {
		if term.ID == "" {
			term.ID = uuid.NewString()
		}
		term.IsActive = false
		term.CreatedAt, term.UpdatedAt = now, now
		if _, err = tx.ExecContext(ctx, query, term.ID, term.AcademicYear, term.Semester, term.CreatedAt, term.UpdatedAt); err != nil {
			if errors.Is(mapUniqueViolation(err), ErrDuplicate) {
				err = ErrDuplicate
				return err
			}
			return fmt.Errorf("insert term %d/%d: %w", term.AcademicYear, term.Semester, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create year tx: %w", err)
	}
	return nil
}

// SetActive deactivates every term and activates id within one transaction.
// It returns sql.ErrNoRows, rolling back, when id does not exist.
func (r *TermRepository) SetActive(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE academic_terms SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, now); err != nil {
		return fmt.Errorf("deactivate terms: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE academic_terms SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		return fmt.Errorf("activate term: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check activated term: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set active tx: %w", err)
	}
	return nil
}

// UpdateTimeline stores the four phase windows of a term.
func (r *TermRepository) UpdateTimeline(ctx context.Context, term *models.AcademicTerm) error {
	term.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_terms SET step1_start = :step1_start, step1_end = :step1_end, step2_start = :step2_start, step2_end = :step2_end, step3_start = :step3_start, step3_end = :step3_end, step4_start = :step4_start, step4_end = :step4_end, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, term)
	if err != nil {
		return fmt.Errorf("update term timeline: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

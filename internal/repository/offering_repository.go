package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/workload-api/internal/models"
)

const offeringSelect = `SELECT co.id, co.term_id, co.subject_id, co.is_open, co.created_at, co.updated_at,
       s.code AS subject_code, s.name_th AS subject_name_th, s.name_en AS subject_name_en, s.program_id, s.responsible_user_id
FROM course_offerings co
JOIN subjects s ON s.id = co.subject_id`

// OfferingRepository persists which subjects are open in a term.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs the repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// Upsert creates or updates the offering keyed by (term, subject).
func (r *OfferingRepository) Upsert(ctx context.Context, offering *models.CourseOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	offering.CreatedAt, offering.UpdatedAt = now, now

	const query = `INSERT INTO course_offerings (id, term_id, subject_id, is_open, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (term_id, subject_id) DO UPDATE SET is_open = EXCLUDED.is_open, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, offering.ID, offering.TermID, offering.SubjectID, offering.IsOpen, offering.CreatedAt, offering.UpdatedAt)
	if err := row.Scan(&offering.ID, &offering.CreatedAt); err != nil {
		return fmt.Errorf("upsert offering: %w", err)
	}
	return nil
}

// ListByTerm returns offerings of a term, optionally only open ones.
func (r *OfferingRepository) ListByTerm(ctx context.Context, termID string, openOnly bool) ([]models.CourseOffering, error) {
	query := offeringSelect + ` WHERE co.term_id = $1`
	if openOnly {
		query += ` AND co.is_open = TRUE`
	}
	query += ` ORDER BY s.code ASC`

	var offerings []models.CourseOffering
	if err := r.db.SelectContext(ctx, &offerings, query, termID); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// ListByTerms returns offerings for several terms at once.
func (r *OfferingRepository) ListByTerms(ctx context.Context, termIDs []string) ([]models.CourseOffering, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}
	query := offeringSelect + ` WHERE co.term_id = ANY($1) ORDER BY s.code ASC`
	var offerings []models.CourseOffering
	if err := r.db.SelectContext(ctx, &offerings, query, pq.Array(termIDs)); err != nil {
		return nil, fmt.Errorf("list offerings for terms: %w", err)
	}
	return offerings, nil
}

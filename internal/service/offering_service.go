package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type offeringRepository interface {
	Upsert(ctx context.Context, offering *models.CourseOffering) error
	ListByTerm(ctx context.Context, termID string, openOnly bool) ([]models.CourseOffering, error)
}

type termFinder interface {
	FindByID(ctx context.Context, id string) (*models.AcademicTerm, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// OfferingService opens and closes subjects per term. It never touches the assignment ledger.
type OfferingService struct {
	repo      offeringRepository
	terms     termFinder
	subjects  subjectFinder
	cache     *CacheService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOfferingService constructs the service.
func NewOfferingService(repo offeringRepository, terms termFinder, subjects subjectFinder, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{
		repo:      repo,
		terms:     terms,
		subjects:  subjects,
		cache:     cache,
		audit:     auditTrail{repo: audit, logger: logger},
		validator: validate,
		logger:    logger,
	}
}

// SetOffering upserts the (term, subject) offering. Repeating a call is a no-op.
func (s *OfferingService) SetOffering(ctx context.Context, termID, subjectID string, req dto.SetOfferingRequest, actor *models.JWTClaims) (*models.CourseOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid offering payload")
	}
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	offering := &models.CourseOffering{
		TermID:            termID,
		SubjectID:         subjectID,
		IsOpen:            *req.IsOpen,
		SubjectCode:       subject.Code,
		SubjectNameTH:     subject.NameTH,
		SubjectNameEN:     subject.NameEN,
		ProgramID:         subject.ProgramID,
		ResponsibleUserID: subject.ResponsibleUserID,
	}
	if err := s.repo.Upsert(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save offering")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionOfferingSet, "course_offerings", offering.ID, nil, map[string]interface{}{
		"term_id":    termID,
		"subject_id": subjectID,
		"is_open":    offering.IsOpen,
	})
	return offering, nil
}

// ListOpenOfferings returns the subjects open in a term.
func (s *OfferingService) ListOpenOfferings(ctx context.Context, termID string) ([]models.CourseOffering, error) {
	return s.list(ctx, termID, true)
}

// ListOfferings returns every offering of a term, open or closed.
func (s *OfferingService) ListOfferings(ctx context.Context, termID string) ([]models.CourseOffering, error) {
	return s.list(ctx, termID, false)
}

func (s *OfferingService) list(ctx context.Context, termID string, openOnly bool) ([]models.CourseOffering, error) {
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	offerings, err := s.repo.ListByTerm(ctx, termID, openOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	if offerings == nil {
		offerings = []models.CourseOffering{}
	}
	return offerings, nil
}

func (s *OfferingService) ensureTerm(ctx context.Context, termID string) error {
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return nil
}

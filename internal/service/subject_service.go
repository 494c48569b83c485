package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/repository"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectService handles subject reference data.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, audit: auditTrail{repo: audit, logger: logger}, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	return findSubject(ctx, s.repo, id)
}

// Create validates and stores a new subject.
func (s *SubjectService) Create(ctx context.Context, req dto.SubjectRequest, actor *models.JWTClaims) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid subject payload")
	}
	subject := &models.Subject{}
	applySubject(subject, req)
	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "subject code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "subjects", subject.ID, nil, subject)
	return subject, nil
}

// Update replaces a subject. Changing the responsible person or program
// changes who may act on its rows, so dashboards are refreshed.
func (s *SubjectService) Update(ctx context.Context, id string, req dto.SubjectRequest, actor *models.JWTClaims) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid subject payload")
	}
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *subject
	applySubject(subject, req)
	if err := s.repo.Update(ctx, subject); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "subject code already exists")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "subjects", subject.ID, before, subject)
	return subject, nil
}

// Delete removes a subject together with its assignments and offerings.
func (s *SubjectService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "subjects", id, map[string]string{"id": id}, nil)
	return nil
}

func applySubject(subject *models.Subject, req dto.SubjectRequest) {
	subject.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	subject.NameTH = strings.TrimSpace(req.NameTH)
	subject.NameEN = strings.TrimSpace(req.NameEN)
	subject.Credit = strings.TrimSpace(req.Credit)
	subject.ProgramID = req.ProgramID
	subject.ResponsibleUserID = req.ResponsibleUserID
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/repository"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type termRepository interface {
	List(ctx context.Context) ([]models.AcademicTerm, error)
	FindByID(ctx context.Context, id string) (*models.AcademicTerm, error)
	FindActive(ctx context.Context) (*models.AcademicTerm, error)
	ExistsByYear(ctx context.Context, year int) (bool, error)
	CreateYear(ctx context.Context, terms []*models.AcademicTerm) error
	SetActive(ctx context.Context, id string) error
	UpdateTimeline(ctx context.Context, term *models.AcademicTerm) error
}

type termOfferingLister interface {
	ListByTerms(ctx context.Context, termIDs []string) ([]models.CourseOffering, error)
}

// TermService manages academic terms and their phase windows.
type TermService struct {
	repo      termRepository
	offerings termOfferingLister
	cache     *CacheService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, offerings termOfferingLister, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{
		repo:      repo,
		offerings: offerings,
		cache:     cache,
		audit:     auditTrail{repo: audit, logger: logger},
		validator: validate,
		logger:    logger,
	}
}

// ListTerms returns every term with its offerings, newest year first.
func (s *TermService) ListTerms(ctx context.Context) ([]models.TermWithOfferings, error) {
	terms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	ids := make([]string, 0, len(terms))
	for _, term := range terms {
		ids = append(ids, term.ID)
	}
	offerings, err := s.offerings.ListByTerms(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	byTerm := make(map[string][]models.CourseOffering, len(terms))
	for _, offering := range offerings {
		byTerm[offering.TermID] = append(byTerm[offering.TermID], offering)
	}

	result := make([]models.TermWithOfferings, 0, len(terms))
	for _, term := range terms {
		items := byTerm[term.ID]
		if items == nil {
			items = []models.CourseOffering{}
		}
		result = append(result, models.TermWithOfferings{AcademicTerm: term, Offerings: items})
	}
	return result, nil
}

// GetTerm returns a single term.
func (s *TermService) GetTerm(ctx context.Context, id string) (*models.AcademicTerm, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// GetActiveTerm returns the current term.
func (s *TermService) GetActiveTerm(ctx context.Context) (*models.AcademicTerm, error) {
	term, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}

// CreateYear creates semesters 1, 2 and 3 for a year. None is active and no windows are set.
func (s *TermService) CreateYear(ctx context.Context, req dto.CreateYearRequest, actor *models.JWTClaims) ([]models.AcademicTerm, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid academic year")
	}

	exists, err := s.repo.ExistsByYear(ctx, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, fmt.Sprintf("academic year %d already exists", req.AcademicYear))
	}

	semesters := []int{models.SemesterFirst, models.SemesterSecond, models.SemesterSummer}
	terms := make([]*models.AcademicTerm, 0, len(semesters))
	for _, semester := range semesters {
		terms = append(terms, &models.AcademicTerm{AcademicYear: req.AcademicYear, Semester: semester})
	}
	if err := s.repo.CreateYear(ctx, terms); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, fmt.Sprintf("academic year %d already exists", req.AcademicYear))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}

	created := make([]models.AcademicTerm, 0, len(terms))
	for _, term := range terms {
		created = append(created, *term)
	}
	s.audit.record(ctx, actor, models.AuditActionTermCreateYear, "academic_terms", "", nil, map[string]int{"academic_year": req.AcademicYear})
	return created, nil
}

// ActivateTerm makes id the only active term and drops cached boards.
func (s *TermService) ActivateTerm(ctx context.Context, id string, actor *models.JWTClaims) (*models.AcademicTerm, error) {
	if err := s.repo.SetActive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate term")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)

	term, err := s.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionTermActivate, "academic_terms", id, nil, map[string]interface{}{
		"academic_year": term.AcademicYear,
		"semester":      term.Semester,
	})
	return term, nil
}

// UpdateTimeline patches the phase windows of a term. Ordering problems are
// reported as warnings; they never block the write.
func (s *TermService) UpdateTimeline(ctx context.Context, id string, req dto.UpdateTimelineRequest, actor *models.JWTClaims) (*dto.TimelineResult, error) {
	term, err := s.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *term

	applyTimeline(term, req)

	if err := s.repo.UpdateTimeline(ctx, term); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timeline")
	}

	s.audit.record(ctx, actor, models.AuditActionTermTimeline, "academic_terms", id, before.Windows(), term.Windows())
	return &dto.TimelineResult{Term: term, Warnings: TimelineWarnings(term)}, nil
}

func applyTimeline(term *models.AcademicTerm, req dto.UpdateTimelineRequest) {
	set := func(dst **time.Time, src *time.Time) {
		if src != nil {
			v := src.UTC()
			*dst = &v
		}
	}
	set(&term.Step1Start, req.Step1Start)
	set(&term.Step1End, req.Step1End)
	set(&term.Step2Start, req.Step2Start)
	set(&term.Step2End, req.Step2End)
	set(&term.Step3Start, req.Step3Start)
	set(&term.Step3End, req.Step3End)
	set(&term.Step4Start, req.Step4Start)
	set(&term.Step4End, req.Step4End)
}

// TimelineWarnings lists windows that end before they start and steps that
// begin before the previous step has ended.
func TimelineWarnings(term *models.AcademicTerm) []string {
	var warnings []string
	windows := term.Windows()
	for i, w := range windows {
		if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
			warnings = append(warnings, fmt.Sprintf("step %d starts after it ends", w.Step))
		}
		if i == 0 {
			continue
		}
		prev := windows[i-1]
		if prev.End != nil && w.Start != nil && w.Start.Before(*prev.End) {
			warnings = append(warnings, fmt.Sprintf("step %d starts before step %d ends", w.Step, prev.Step))
		}
	}
	return warnings
}

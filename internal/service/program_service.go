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
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

// ProgramService manages programs and their chairs.
type ProgramService struct {
	repo      programRepository
	users     userFinder
	cache     *CacheService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the service.
func NewProgramService(repo programRepository, users userFinder, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, users: users, cache: cache, audit: auditTrail{repo: audit, logger: logger}, validator: validate, logger: logger}
}

// List returns every program.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Get returns a program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create stores a program.
func (s *ProgramService) Create(ctx context.Context, req dto.ProgramRequest, actor *models.JWTClaims) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid program payload")
	}
	if err := s.ensureChair(ctx, req.ProgramChairID); err != nil {
		return nil, err
	}
	program := &models.Program{}
	applyProgram(program, req)
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "programs", program.ID, nil, program)
	return program, nil
}

// Update replaces a program. A new chair takes over pending chair decisions.
func (s *ProgramService) Update(ctx context.Context, id string, req dto.ProgramRequest, actor *models.JWTClaims) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid program payload")
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureChair(ctx, req.ProgramChairID); err != nil {
		return nil, err
	}
	before := *program
	applyProgram(program, req)
	if err := s.repo.Update(ctx, program); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "programs", program.ID, before, program)
	return program, nil
}

// Delete removes a program. Its subjects remain without a program.
func (s *ProgramService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionReferenceMutation, "programs", id, map[string]string{"id": id}, nil)
	return nil
}

func (s *ProgramService) ensureChair(ctx context.Context, chairID *string) error {
	if chairID == nil || s.users == nil {
		return nil
	}
	user, err := s.users.FindByID(ctx, *chairID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program chair not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program chair")
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "program chair account is inactive")
	}
	return nil
}

func applyProgram(program *models.Program, req dto.ProgramRequest) {
	program.NameTH = strings.TrimSpace(req.NameTH)
	program.FoundedYear = req.FoundedYear
	program.DegreeLevel = req.DegreeLevel
	program.ProgramChairID = req.ProgramChairID
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/repository"
	"github.com/noah-isme/workload-api/pkg/config"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type assignmentRepository interface {
	Create(ctx context.Context, a *models.TeachingAssignment) error
	ExistsPair(ctx context.Context, subjectID, lecturerID string, year, semester int, anyTerm bool) (bool, error)
	FindByID(ctx context.Context, id string) (*models.TeachingAssignment, error)
	FindView(ctx context.Context, id string) (*models.AssignmentView, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, error)
	Update(ctx context.Context, upd models.AssignmentUpdate) (int, error)
	Delete(ctx context.Context, id string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AssignmentServiceConfig holds ledger rules.
type AssignmentServiceConfig struct {
	// UniqueScope is config.UniqueScopeSubject or config.UniqueScopeTerm.
	UniqueScope string
}

// AssignmentService manages the teaching assignment ledger.
type AssignmentService struct {
	repo      assignmentRepository
	subjects  subjectFinder
	users     userFinder
	programs  programFinder
	cache     *CacheService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AssignmentServiceConfig
}

// NewAssignmentService constructs the ledger service.
func NewAssignmentService(repo assignmentRepository, subjects subjectFinder, users userFinder, programs programFinder, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg AssignmentServiceConfig) *AssignmentService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UniqueScope != config.UniqueScopeTerm {
		cfg.UniqueScope = config.UniqueScopeSubject
	}
	return &AssignmentService{
		repo:      repo,
		subjects:  subjects,
		users:     users,
		programs:  programs,
		cache:     cache,
		audit:     auditTrail{repo: audit, logger: logger},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateAssignment adds a lecturer's row to a subject. Every lane starts
// PENDING unless a lecturer status is given.
func (s *AssignmentService) CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid assignment payload")
	}
	subject, err := s.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSubjectOwner(actor, subject); err != nil {
		return nil, err
	}

	lecturer, err := s.users.FindByID(ctx, req.LecturerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	if !lecturer.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lecturer account is inactive")
	}

	exists, err := s.repo.ExistsPair(ctx, req.SubjectID, req.LecturerID, req.AcademicYear, req.Semester, s.cfg.UniqueScope == config.UniqueScopeSubject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "lecturer is already assigned to this subject")
	}

	row := &models.TeachingAssignment{
		SubjectID:          req.SubjectID,
		LecturerID:         req.LecturerID,
		AcademicYear:       req.AcademicYear,
		Semester:           req.Semester,
		LectureHours:       floatOrZero(req.LectureHours),
		LabHours:           floatOrZero(req.LabHours),
		ExamHours:          floatOrZero(req.ExamHours),
		ExamCritiqueHours:  floatOrZero(req.ExamCritiqueHours),
		LecturerStatus:     models.StatusPending,
		ResponsibleStatus:  models.StatusPending,
		HeadApprovalStatus: models.StatusPending,
		DeanApprovalStatus: models.StatusPending,
	}
	if req.LecturerStatus != nil {
		row.LecturerStatus = *req.LecturerStatus
	}
	if actor != nil {
		createdBy := actor.UserID
		row.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "lecturer is already assigned to this subject")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionAssignmentCreate, "teaching_assignments", row.ID, nil, row)
	return s.view(ctx, row.ID)
}

// UpdateHours edits hours and statuses. A changed hour value resets all four
// lanes to PENDING, whoever makes the edit; statuses supplied in the same
// request win over the reset. Only the program chair or an admin may set the
// chair lane, and an approval there needs the row to be submitted.
func (s *AssignmentService) UpdateHours(ctx context.Context, id string, req dto.UpdateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid assignment payload")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	subject, err := s.loadSubject(ctx, current.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSubjectOwner(actor, subject); err != nil {
		return nil, err
	}

	if req.HeadApprovalStatus != nil {
		if err := authorizeProgramChair(ctx, s.programs, actor, subject); err != nil {
			return nil, err
		}
	}

	next := *current
	ApplyAssignmentEdit(&next, req)
	if req.HeadApprovalStatus != nil && *req.HeadApprovalStatus == models.StatusApproved &&
		next.ResponsibleStatus != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, requirementMessage(&models.LaneRequirement{Lane: models.LaneResponsible}))
	}

	upd := models.AssignmentUpdate{
		ID:                 id,
		LectureHours:       next.LectureHours,
		LabHours:           next.LabHours,
		ExamHours:          next.ExamHours,
		ExamCritiqueHours:  next.ExamCritiqueHours,
		LecturerStatus:     next.LecturerStatus,
		ResponsibleStatus:  next.ResponsibleStatus,
		HeadApprovalStatus: next.HeadApprovalStatus,
		DeanApprovalStatus: next.DeanApprovalStatus,
		LecturerFeedback:   next.LecturerFeedback,
		UpdatedAt:          time.Now().UTC(),
	}
	if req.Version != nil {
		upd.ExpectedVersion = *req.Version
	}

	version, err := s.repo.Update(ctx, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment was modified by another request")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	next.Version = version

	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionAssignmentUpdate, "teaching_assignments", id, current, next)
	return s.view(ctx, id)
}

// ApplyAssignmentEdit folds an edit request into row in place.
func ApplyAssignmentEdit(row *models.TeachingAssignment, req dto.UpdateAssignmentRequest) {
	changed := false
	setHours := func(dst *float64, src *float64) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = true
		}
	}
	setHours(&row.LectureHours, req.LectureHours)
	setHours(&row.LabHours, req.LabHours)
	setHours(&row.ExamHours, req.ExamHours)
	setHours(&row.ExamCritiqueHours, req.ExamCritiqueHours)

	if changed {
		for _, lane := range models.Lanes {
			row.SetStatus(lane, models.StatusPending)
		}
	}

	explicit := map[models.Lane]*models.ApprovalStatus{
		models.LaneLecturer:    req.LecturerStatus,
		models.LaneResponsible: req.ResponsibleStatus,
		models.LaneHead:        req.HeadApprovalStatus,
	}
	for lane, status := range explicit {
		if status != nil {
			row.SetStatus(lane, *status)
		}
	}
	if req.LecturerFeedback != nil {
		feedback := *req.LecturerFeedback
		row.LecturerFeedback = &feedback
	}
}

// DeleteAssignment removes a single row.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id string, actor *models.JWTClaims) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	subject, err := s.loadSubject(ctx, current.SubjectID)
	if err != nil {
		return err
	}
	if err := authorizeSubjectOwner(actor, subject); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, models.AuditActionAssignmentDelete, "teaching_assignments", id, current, nil)
	return nil
}

// GetAssignment returns a row with its computed role and total.
func (s *AssignmentService) GetAssignment(ctx context.Context, id string) (*models.AssignmentView, error) {
	return s.view(ctx, id)
}

// ListSubjectAssignments returns the rows of a subject in one term.
func (s *AssignmentService) ListSubjectAssignments(ctx context.Context, subjectID string, query dto.TermQuery) ([]models.AssignmentView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validation.Error(err, "invalid term query")
	}
	if _, err := s.loadSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.list(ctx, models.AssignmentFilter{SubjectID: subjectID, AcademicYear: query.AcademicYear, Semester: query.Semester})
}

// ListMyAssignments returns the actor's own rows in one term.
func (s *AssignmentService) ListMyAssignments(ctx context.Context, actor *models.JWTClaims, query dto.TermQuery) ([]models.AssignmentView, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, validation.Error(err, "invalid term query")
	}
	return s.list(ctx, models.AssignmentFilter{LecturerID: actor.UserID, AcademicYear: query.AcademicYear, Semester: query.Semester})
}

func (s *AssignmentService) list(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if views == nil {
		views = []models.AssignmentView{}
	}
	return views, nil
}

func (s *AssignmentService) load(ctx context.Context, id string) (*models.TeachingAssignment, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return row, nil
}

func (s *AssignmentService) view(ctx context.Context, id string) (*models.AssignmentView, error) {
	view, err := s.repo.FindView(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return view, nil
}

func (s *AssignmentService) loadSubject(ctx context.Context, id string) (*models.Subject, error) {
	return findSubject(ctx, s.subjects, id)
}

func findSubject(ctx context.Context, subjects subjectFinder, id string) (*models.Subject, error) {
	subject, err := subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// authorizeSubjectOwner allows the subject's responsible person or an admin.
func authorizeSubjectOwner(actor *models.JWTClaims, subject *models.Subject) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.IsAdmin() || subject.IsResponsible(actor.UserID) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only the subject's responsible person or an admin may do this")
}

// authorizeProgramChair allows the chair of the subject's program or an admin.
func authorizeProgramChair(ctx context.Context, programs programFinder, actor *models.JWTClaims, subject *models.Subject) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return nil
	}
	denied := appErrors.Clone(appErrors.ErrForbidden, "only the program chair may decide on this subject")
	if subject.ProgramID == nil || programs == nil {
		return denied
	}
	program, err := programs.FindByID(ctx, *subject.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return denied
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if !program.IsChair(actor.UserID) {
		return denied
	}
	return nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

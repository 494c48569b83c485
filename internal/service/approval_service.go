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

type approvalRepository interface {
	FindByID(ctx context.Context, id string) (*models.TeachingAssignment, error)
	FindView(ctx context.Context, id string) (*models.AssignmentView, error)
	SetLecturerDecision(ctx context.Context, id string, status models.ApprovalStatus, feedback *string) (int, error)
	ApplyLaneChange(ctx context.Context, change models.LaneChange) (int, error)
}

type programFinder interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// ApprovalService drives rows through the lecturer, responsible, chair and dean lanes.
type ApprovalService struct {
	repo      approvalRepository
	subjects  subjectFinder
	programs  programFinder
	cache     *CacheService
	metrics   *MetricsService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// ApprovalServiceParams groups constructor dependencies.
type ApprovalServiceParams struct {
	Repo      approvalRepository
	Subjects  subjectFinder
	Programs  programFinder
	Cache     *CacheService
	Metrics   *MetricsService
	Audit     auditLogger
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewApprovalService constructs the state machine service.
func NewApprovalService(params ApprovalServiceParams) *ApprovalService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validation.Validate
	}
	return &ApprovalService{
		repo:      params.Repo,
		subjects:  params.Subjects,
		programs:  params.Programs,
		cache:     params.Cache,
		metrics:   params.Metrics,
		audit:     auditTrail{repo: params.Audit, logger: logger},
		validator: validate,
		logger:    logger,
	}
}

// LecturerConfirm approves the actor's own PENDING row.
func (s *ApprovalService) LecturerConfirm(ctx context.Context, actor *models.JWTClaims, id string) (*models.AssignmentView, error) {
	return s.lecturerDecision(ctx, actor, id, models.StatusApproved, nil)
}

// LecturerDispute rejects the actor's own PENDING row with mandatory feedback.
func (s *ApprovalService) LecturerDispute(ctx context.Context, actor *models.JWTClaims, id string, req dto.DisputeRequest) (*models.AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "feedback is required")
	}
	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "feedback is required")
	}
	return s.lecturerDecision(ctx, actor, id, models.StatusRejected, &feedback)
}

func (s *ApprovalService) lecturerDecision(ctx context.Context, actor *models.JWTClaims, id string, status models.ApprovalStatus, feedback *string) (*models.AssignmentView, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if row.LecturerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned lecturer may respond to this row")
	}
	if row.LecturerStatus != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assignment is not awaiting lecturer confirmation")
	}

	if _, err := s.repo.SetLecturerDecision(ctx, id, status, feedback); err != nil {
		if errors.Is(err, repository.ErrRequirementNotMet) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assignment is not awaiting lecturer confirmation")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record lecturer decision")
	}

	action := models.AuditActionLecturerConfirm
	if status == models.StatusRejected {
		action = models.AuditActionLecturerDispute
	}
	s.metrics.RecordApprovalDecision(string(models.LaneLecturer), string(status), 1)
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	s.audit.record(ctx, actor, action, "teaching_assignments", id,
		map[string]models.ApprovalStatus{"lecturer_status": row.LecturerStatus},
		map[string]interface{}{"lecturer_status": status, "lecturer_feedback": feedback})

	view, err := s.repo.FindView(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return view, nil
}

// SubmitSubject marks every row of the subject as submitted by the responsible person.
func (s *ApprovalService) SubmitSubject(ctx context.Context, actor *models.JWTClaims, subjectID string, term dto.TermQuery) (*dto.DecisionResult, error) {
	if err := s.validator.Struct(term); err != nil {
		return nil, validation.Error(err, "invalid term")
	}
	subject, err := findSubject(ctx, s.subjects, subjectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSubjectOwner(actor, subject); err != nil {
		return nil, err
	}
	change := models.LaneChange{
		SubjectID:    subjectID,
		AcademicYear: term.AcademicYear,
		Semester:     term.Semester,
		Lane:         models.LaneResponsible,
		Value:        models.StatusApproved,
	}
	return s.apply(ctx, actor, change, models.AuditActionSubjectSubmit)
}

// ChairDecide records the program chair's verdict on a whole subject.
// Approval requires every row to have been submitted; rejection also rejects
// the responsible lane so the subject goes back to its owner.
func (s *ApprovalService) ChairDecide(ctx context.Context, actor *models.JWTClaims, subjectID string, req dto.DecisionRequest) (*dto.DecisionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid decision")
	}
	subject, err := findSubject(ctx, s.subjects, subjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeChair(ctx, actor, subject); err != nil {
		return nil, err
	}

	change := models.LaneChange{
		SubjectID:    subjectID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Lane:         models.LaneHead,
		Value:        req.Status,
	}
	if req.Status == models.StatusApproved {
		change.Require = &models.LaneRequirement{Lane: models.LaneResponsible, Value: models.StatusApproved}
	} else {
		change.Extra = map[models.Lane]models.ApprovalStatus{models.LaneResponsible: models.StatusRejected}
	}
	return s.apply(ctx, actor, change, models.AuditActionChairDecision)
}

// DeanDecide records the vice dean's verdict. Every row must already carry chair approval.
func (s *ApprovalService) DeanDecide(ctx context.Context, actor *models.JWTClaims, subjectID string, req dto.DecisionRequest) (*dto.DecisionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleDean && !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the dean may decide at this stage")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid decision")
	}
	if _, err := findSubject(ctx, s.subjects, subjectID); err != nil {
		return nil, err
	}
	change := models.LaneChange{
		SubjectID:    subjectID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Lane:         models.LaneDean,
		Value:        req.Status,
		Require:      &models.LaneRequirement{Lane: models.LaneHead, Value: models.StatusApproved},
	}
	return s.apply(ctx, actor, change, models.AuditActionDeanDecision)
}

func (s *ApprovalService) authorizeChair(ctx context.Context, actor *models.JWTClaims, subject *models.Subject) error {
	return authorizeProgramChair(ctx, s.programs, actor, subject)
}

func (s *ApprovalService) apply(ctx context.Context, actor *models.JWTClaims, change models.LaneChange, action string) (*dto.DecisionResult, error) {
	rows, err := s.repo.ApplyLaneChange(ctx, change)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject has no assignments in this term")
		case errors.Is(err, repository.ErrRequirementNotMet):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, requirementMessage(change.Require))
		}
		s.logger.Error("bulk lane change failed",
			zap.String("subject_id", change.SubjectID),
			zap.String("lane", string(change.Lane)),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}

	s.metrics.RecordApprovalDecision(string(change.Lane), string(change.Value), rows)
	_ = s.cache.Invalidate(ctx, subjectBoardCachePattern)
	result := &dto.DecisionResult{
		SubjectID:    change.SubjectID,
		AcademicYear: change.AcademicYear,
		Semester:     change.Semester,
		Lane:         change.Lane,
		Status:       change.Value,
		Rows:         rows,
	}
	s.audit.record(ctx, actor, action, "subjects", change.SubjectID, nil, result)
	return result, nil
}

func requirementMessage(req *models.LaneRequirement) string {
	if req == nil {
		return appErrors.ErrPreconditionFailed.Message
	}
	switch req.Lane {
	case models.LaneResponsible:
		return "every row must be submitted by the responsible person first"
	case models.LaneHead:
		return "every row must be approved by the program chair first"
	default:
		return "a previous approval step is incomplete"
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type boardAssignmentLister interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, error)
}

type boardTermFinder interface {
	FindByYearSemester(ctx context.Context, year, semester int) (*models.AcademicTerm, error)
}

type boardOfferingLister interface {
	ListByTerm(ctx context.Context, termID string, openOnly bool) ([]models.CourseOffering, error)
}

// DashboardService composes the approval boards shown to staff.
type DashboardService struct {
	assignments boardAssignmentLister
	terms       boardTermFinder
	offerings   boardOfferingLister
	cache       *CacheService
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Assignments boardAssignmentLister
	Terms       boardTermFinder
	Offerings   boardOfferingLister
	Cache       *CacheService
	CacheTTL    time.Duration
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validation.Validate
	}
	return &DashboardService{
		assignments: params.Assignments,
		terms:       params.Terms,
		offerings:   params.Offerings,
		cache:       params.Cache,
		cacheTTL:    params.CacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// SubjectBoard derives every lane per subject for a term. Subjects that are
// open but have no rows yet are listed as WAITING. The second return value
// reports whether the board came from cache.
func (s *DashboardService) SubjectBoard(ctx context.Context, query dto.SubjectBoardQuery) ([]models.SubjectBoardEntry, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, validation.Error(err, "invalid board query")
	}
	key := subjectBoardCacheKey(query.AcademicYear, query.Semester, query.ProgramID)
	var cached []models.SubjectBoardEntry
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	rows, err := s.assignments.List(ctx, models.AssignmentFilter{
		ProgramID:    query.ProgramID,
		AcademicYear: query.AcademicYear,
		Semester:     query.Semester,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	offerings, err := s.openOfferings(ctx, query.AcademicYear, query.Semester)
	if err != nil {
		return nil, false, err
	}

	entries := make(map[string]*models.SubjectBoardEntry)
	grouped := make(map[string][]models.TeachingAssignment)
	for _, offering := range offerings {
		if query.ProgramID != "" && (offering.ProgramID == nil || *offering.ProgramID != query.ProgramID) {
			continue
		}
		entries[offering.SubjectID] = &models.SubjectBoardEntry{
			SubjectID:         offering.SubjectID,
			SubjectCode:       offering.SubjectCode,
			SubjectNameTH:     offering.SubjectNameTH,
			SubjectNameEN:     offering.SubjectNameEN,
			ProgramID:         offering.ProgramID,
			ResponsibleUserID: offering.ResponsibleUserID,
		}
	}
	for _, row := range rows {
		entry, ok := entries[row.SubjectID]
		if !ok {
			entry = &models.SubjectBoardEntry{
				SubjectID:         row.SubjectID,
				SubjectCode:       row.SubjectCode,
				SubjectNameTH:     row.SubjectNameTH,
				SubjectNameEN:     row.SubjectNameEN,
				ProgramID:         row.ProgramID,
				ResponsibleUserID: row.ResponsibleUserID,
			}
			entries[row.SubjectID] = entry
		}
		entry.Rows++
		entry.TotalHours += row.TotalHours()
		entry.Instructors = append(entry.Instructors, row.LecturerName)
		grouped[row.SubjectID] = append(grouped[row.SubjectID], row.TeachingAssignment)
	}

	board := make([]models.SubjectBoardEntry, 0, len(entries))
	for subjectID, entry := range entries {
		subjectRows := grouped[subjectID]
		entry.Lecturer = models.DeriveLane(subjectRows, models.LaneLecturer)
		entry.Responsible = models.DeriveLane(subjectRows, models.LaneResponsible)
		entry.Head = models.DeriveLane(subjectRows, models.LaneHead)
		entry.Dean = models.DeriveLane(subjectRows, models.LaneDean)
		if entry.Instructors == nil {
			entry.Instructors = []string{}
		}
		board = append(board, *entry)
	}
	sort.Slice(board, func(i, j int) bool { return board[i].SubjectCode < board[j].SubjectCode })

	_ = s.cache.Set(ctx, key, board, s.cacheTTL)
	return board, false, nil
}

// LecturerBoard lists the open offerings where the actor is responsible or
// holds a row, with the actor's own lane status.
func (s *DashboardService) LecturerBoard(ctx context.Context, actor *models.JWTClaims, query dto.TermQuery) ([]models.LecturerBoardEntry, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, validation.Error(err, "invalid term query")
	}
	offerings, err := s.openOfferings(ctx, query.AcademicYear, query.Semester)
	if err != nil {
		return nil, err
	}
	rows, err := s.assignments.List(ctx, models.AssignmentFilter{AcademicYear: query.AcademicYear, Semester: query.Semester})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	grouped := make(map[string][]models.TeachingAssignment)
	mine := make(map[string]models.AssignmentView)
	for _, row := range rows {
		grouped[row.SubjectID] = append(grouped[row.SubjectID], row.TeachingAssignment)
		if row.LecturerID == actor.UserID {
			mine[row.SubjectID] = row
		}
	}

	board := make([]models.LecturerBoardEntry, 0)
	for _, offering := range offerings {
		row, hasRow := mine[offering.SubjectID]
		responsible := offering.ResponsibleUserID != nil && *offering.ResponsibleUserID == actor.UserID
		if !hasRow && !responsible {
			continue
		}
		entry := models.LecturerBoardEntry{
			SubjectID:     offering.SubjectID,
			SubjectCode:   offering.SubjectCode,
			SubjectNameTH: offering.SubjectNameTH,
			SubjectNameEN: offering.SubjectNameEN,
			Role:          models.ResolveAssignmentRole(actor.UserID, offering.ResponsibleUserID),
			MyStatus:      models.DerivedWaiting,
			SubjectStatus: models.DeriveLane(grouped[offering.SubjectID], models.LaneDean),
		}
		if hasRow {
			id := row.ID
			entry.AssignmentID = &id
			entry.TotalHours = row.TotalHours()
			entry.MyStatus = models.DeriveStatus([]models.ApprovalStatus{row.LecturerStatus})
		}
		board = append(board, entry)
	}
	return board, nil
}

func (s *DashboardService) openOfferings(ctx context.Context, year, semester int) ([]models.CourseOffering, error) {
	term, err := s.terms.FindByYearSemester(ctx, year, semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	offerings, err := s.offerings.ListByTerm(ctx, term.ID, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	return offerings, nil
}

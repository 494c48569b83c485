package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/service"
)

// ledgerRows backs a real AssignmentService with a single stored row.
type ledgerRows struct {
	row     models.TeachingAssignment
	subject models.Subject
	program models.Program
	writes  int
}

func (l *ledgerRows) Create(context.Context, *models.TeachingAssignment) error { return nil }

func (l *ledgerRows) ExistsPair(context.Context, string, string, int, int, bool) (bool, error) {
	return false, nil
}

func (l *ledgerRows) FindByID(_ context.Context, id string) (*models.TeachingAssignment, error) {
	if id != l.row.ID {
		return nil, sql.ErrNoRows
	}
	cp := l.row
	return &cp, nil
}

func (l *ledgerRows) FindView(ctx context.Context, id string) (*models.AssignmentView, error) {
	row, err := l.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AssignmentView{TeachingAssignment: *row}, nil
}

func (l *ledgerRows) List(context.Context, models.AssignmentFilter) ([]models.AssignmentView, error) {
	return []models.AssignmentView{}, nil
}

func (l *ledgerRows) Update(_ context.Context, upd models.AssignmentUpdate) (int, error) {
	l.writes++
	l.row.LectureHours, l.row.LabHours = upd.LectureHours, upd.LabHours
	l.row.ExamHours, l.row.ExamCritiqueHours = upd.ExamHours, upd.ExamCritiqueHours
	l.row.LecturerStatus, l.row.ResponsibleStatus = upd.LecturerStatus, upd.ResponsibleStatus
	l.row.HeadApprovalStatus, l.row.DeanApprovalStatus = upd.HeadApprovalStatus, upd.DeanApprovalStatus
	l.row.Version++
	return l.row.Version, nil
}

func (l *ledgerRows) Delete(context.Context, string) error { return nil }

type ledgerSubjects struct{ *ledgerRows }

func (l ledgerSubjects) FindByID(_ context.Context, id string) (*models.Subject, error) {
	if id != l.subject.ID {
		return nil, sql.ErrNoRows
	}
	cp := l.subject
	return &cp, nil
}

type ledgerPrograms struct{ *ledgerRows }

func (l ledgerPrograms) FindByID(_ context.Context, id string) (*models.Program, error) {
	if id != l.program.ID {
		return nil, sql.ErrNoRows
	}
	cp := l.program
	return &cp, nil
}

type ledgerUsers struct{}

func (ledgerUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Active: true}, nil
}

func TestAssignmentHandlerUpdateGuardsApprovalLanes(t *testing.T) {
	owner := "owner-1"
	chair := "chair-1"
	programID := "prog-1"
	store := &ledgerRows{
		row: models.TeachingAssignment{
			ID: "row-1", SubjectID: "s1", LecturerID: "lect-1", AcademicYear: 2567, Semester: 1,
			LectureHours: 3, Version: 1,
			LecturerStatus: models.StatusPending, ResponsibleStatus: models.StatusPending,
			HeadApprovalStatus: models.StatusPending, DeanApprovalStatus: models.StatusPending,
		},
		subject: models.Subject{ID: "s1", Code: "CS101", ProgramID: &programID, ResponsibleUserID: &owner},
		program: models.Program{ID: programID, ProgramChairID: &chair},
	}
	svc := service.NewAssignmentService(store, ledgerSubjects{store}, ledgerUsers{}, ledgerPrograms{store}, nil, nil, nil, nil,
		service.AssignmentServiceConfig{})
	h := NewAssignmentHandler(svc)

	serve := func(claims *models.JWTClaims, body string) int {
		router := gin.New()
		router.Use(asUser(claims))
		router.PUT("/assignments/:id", h.Update)
		return perform(router, http.MethodPut, "/assignments/row-1", body).Code
	}
	ownerClaims := &models.JWTClaims{UserID: owner, Role: models.RoleLecturer}

	status := serve(ownerClaims, `{"lab_hours":2,"responsible_status":"APPROVED","head_approval_status":"APPROVED"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Zero(t, store.writes)
	assert.Equal(t, models.StatusPending, store.row.HeadApprovalStatus)

	status = serve(&models.JWTClaims{UserID: "dean-1", Role: models.RoleDean}, `{"head_approval_status":"APPROVED"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Zero(t, store.writes)

	router := gin.New()
	router.Use(asUser(ownerClaims))
	router.PUT("/assignments/:id", h.Update)
	w := perform(router, http.MethodPut, "/assignments/row-1", `{"lab_hours":1,"dean_approval_status":"APPROVED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var view models.AssignmentView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &view))
	assert.Equal(t, models.StatusPending, view.DeanApprovalStatus, "the dean lane cannot be written through an edit")
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, models.StatusPending, store.row.DeanApprovalStatus)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/response"
)

type assignmentService interface {
	CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentView, error)
	UpdateHours(ctx context.Context, id string, req dto.UpdateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentView, error)
	DeleteAssignment(ctx context.Context, id string, actor *models.JWTClaims) error
	GetAssignment(ctx context.Context, id string) (*models.AssignmentView, error)
	ListSubjectAssignments(ctx context.Context, subjectID string, query dto.TermQuery) ([]models.AssignmentView, error)
	ListMyAssignments(ctx context.Context, actor *models.JWTClaims, query dto.TermQuery) ([]models.AssignmentView, error)
}

// AssignmentHandler exposes the teaching assignment ledger.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Add a lecturer to a subject
// @Description Every lane starts PENDING unless lecturer_status is given
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	view, err := h.service.CreateAssignment(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	view, err := h.service.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Edit hours or lane statuses
// @Description A changed hour resets every lane to PENDING unless that lane's status is sent too. Send version for a conditional update.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	view, err := h.service.UpdateHours(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAssignment(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Mine godoc
// @Summary My assignments in a term
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param academic_year query int true "Academic year (B.E.)"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /assignments/mine [get]
func (h *AssignmentHandler) Mine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	query, ok := bindTermQuery(c)
	if !ok {
		return
	}
	rows, err := h.service.ListMyAssignments(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// BySubject godoc
// @Summary Assignments of a subject in a term
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param academic_year query int true "Academic year (B.E.)"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/assignments [get]
func (h *AssignmentHandler) BySubject(c *gin.Context) {
	query, ok := bindTermQuery(c)
	if !ok {
		return
	}
	rows, err := h.service.ListSubjectAssignments(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/response"
)

type approvalService interface {
	LecturerConfirm(ctx context.Context, actor *models.JWTClaims, id string) (*models.AssignmentView, error)
	LecturerDispute(ctx context.Context, actor *models.JWTClaims, id string, req dto.DisputeRequest) (*models.AssignmentView, error)
	SubmitSubject(ctx context.Context, actor *models.JWTClaims, subjectID string, term dto.TermQuery) (*dto.DecisionResult, error)
	ChairDecide(ctx context.Context, actor *models.JWTClaims, subjectID string, req dto.DecisionRequest) (*dto.DecisionResult, error)
	DeanDecide(ctx context.Context, actor *models.JWTClaims, subjectID string, req dto.DecisionRequest) (*dto.DecisionResult, error)
}

// ApprovalHandler drives the four approval lanes.
type ApprovalHandler struct {
	service approvalService
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(svc approvalService) *ApprovalHandler {
	return &ApprovalHandler{service: svc}
}

// Confirm godoc
// @Summary Lecturer confirms their row
// @Tags Approvals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/confirm [post]
func (h *ApprovalHandler) Confirm(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	view, err := h.service.LecturerConfirm(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Dispute godoc
// @Summary Lecturer disputes their row
// @Tags Approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body dto.DisputeRequest true "Feedback"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/dispute [post]
func (h *ApprovalHandler) Dispute(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.DisputeRequest
	if !bindJSON(c, &req, "feedback is required") {
		return
	}
	view, err := h.service.LecturerDispute(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Submit godoc
// @Summary Responsible person submits a subject
// @Tags Approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param payload body dto.TermQuery true "Term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id}/submit [post]
func (h *ApprovalHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var term dto.TermQuery
	if !bindJSON(c, &term, "invalid term payload") {
		return
	}
	result, err := h.service.SubmitSubject(c.Request.Context(), claims, c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ChairDecision godoc
// @Summary Program chair approves or rejects a subject
// @Tags Approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /subjects/{id}/chair-decision [post]
func (h *ApprovalHandler) ChairDecision(c *gin.Context) {
	h.decide(c, h.service.ChairDecide)
}

// DeanDecision godoc
// @Summary Vice dean approves or rejects a subject
// @Tags Approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /subjects/{id}/dean-decision [post]
func (h *ApprovalHandler) DeanDecision(c *gin.Context) {
	h.decide(c, h.service.DeanDecide)
}

func (h *ApprovalHandler) decide(c *gin.Context, apply func(context.Context, *models.JWTClaims, string, dto.DecisionRequest) (*dto.DecisionResult, error)) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if !bindJSON(c, &req, "invalid decision payload") {
		return
	}
	result, err := apply(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

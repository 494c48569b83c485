package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/middleware"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/response"
)

type termService interface {
	ListTerms(ctx context.Context) ([]models.TermWithOfferings, error)
	GetTerm(ctx context.Context, id string) (*models.AcademicTerm, error)
	GetActiveTerm(ctx context.Context) (*models.AcademicTerm, error)
	CreateYear(ctx context.Context, req dto.CreateYearRequest, actor *models.JWTClaims) ([]models.AcademicTerm, error)
	ActivateTerm(ctx context.Context, id string, actor *models.JWTClaims) (*models.AcademicTerm, error)
	UpdateTimeline(ctx context.Context, id string, req dto.UpdateTimelineRequest, actor *models.JWTClaims) (*dto.TimelineResult, error)
}

// TermHandler exposes academic term endpoints.
type TermHandler struct {
	service termService
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc termService) *TermHandler {
	return &TermHandler{service: svc}
}

// List godoc
// @Summary List terms
// @Description All terms with their offerings, newest year first
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) List(c *gin.Context) {
	terms, err := h.service.ListTerms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// Get godoc
// @Summary Get term
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) Get(c *gin.Context) {
	term, err := h.service.GetTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// GetActive godoc
// @Summary Get active term
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/active [get]
func (h *TermHandler) GetActive(c *gin.Context) {
	term, err := h.service.GetActiveTerm(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// CreateYear godoc
// @Summary Create academic year
// @Description Creates semesters 1, 2 and 3 for a Buddhist-calendar year
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateYearRequest true "Academic year"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms/years [post]
func (h *TermHandler) CreateYear(c *gin.Context) {
	var req dto.CreateYearRequest
	if !bindJSON(c, &req, "invalid academic year payload") {
		return
	}
	terms, err := h.service.CreateYear(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, terms)
}

// Activate godoc
// @Summary Activate term
// @Description Makes this the single active term
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id}/activate [post]
func (h *TermHandler) Activate(c *gin.Context) {
	term, err := h.service.ActivateTerm(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// UpdateTimeline godoc
// @Summary Update phase windows
// @Description Partial update; out-of-order windows are saved and reported in meta.warnings
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Param payload body dto.UpdateTimelineRequest true "Windows"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id}/timeline [patch]
func (h *TermHandler) UpdateTimeline(c *gin.Context) {
	var req dto.UpdateTimelineRequest
	if !bindJSON(c, &req, "invalid timeline payload") {
		return
	}
	result, err := h.service.UpdateTimeline(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(result.Warnings) > 0 {
		middleware.SetMeta(c, "warnings", result.Warnings)
	}
	response.JSON(c, http.StatusOK, result.Term, nil, middleware.ExtractMeta(c))
}

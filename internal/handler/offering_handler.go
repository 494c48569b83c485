package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/response"
)

type offeringService interface {
	SetOffering(ctx context.Context, termID, subjectID string, req dto.SetOfferingRequest, actor *models.JWTClaims) (*models.CourseOffering, error)
	ListOpenOfferings(ctx context.Context, termID string) ([]models.CourseOffering, error)
	ListOfferings(ctx context.Context, termID string) ([]models.CourseOffering, error)
}

// OfferingHandler exposes which subjects are open in a term.
type OfferingHandler struct {
	service offeringService
}

// NewOfferingHandler constructs the handler.
func NewOfferingHandler(svc offeringService) *OfferingHandler {
	return &OfferingHandler{service: svc}
}

// List godoc
// @Summary List offerings of a term
// @Tags Offerings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Param open query bool false "Only open offerings"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id}/offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	termID := c.Param("id")
	var (
		offerings []models.CourseOffering
		err       error
	)
	if open, _ := strconv.ParseBool(c.Query("open")); open {
		offerings, err = h.service.ListOpenOfferings(c.Request.Context(), termID)
	} else {
		offerings, err = h.service.ListOfferings(c.Request.Context(), termID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// Set godoc
// @Summary Open or close a subject in a term
// @Description Idempotent upsert; never touches assignment rows
// @Tags Offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Param subjectId path string true "Subject ID"
// @Param payload body dto.SetOfferingRequest true "Offering state"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id}/offerings/{subjectId} [put]
func (h *OfferingHandler) Set(c *gin.Context) {
	var req dto.SetOfferingRequest
	if !bindJSON(c, &req, "invalid offering payload") {
		return
	}
	offering, err := h.service.SetOffering(c.Request.Context(), c.Param("id"), c.Param("subjectId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

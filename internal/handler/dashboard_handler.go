package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/middleware"
	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/response"
)

type dashboardService interface {
	SubjectBoard(ctx context.Context, query dto.SubjectBoardQuery) ([]models.SubjectBoardEntry, bool, error)
	LecturerBoard(ctx context.Context, actor *models.JWTClaims, query dto.TermQuery) ([]models.LecturerBoardEntry, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Subjects godoc
// @Summary Approval board per subject
// @Description Derived status of every lane per subject; subjects without rows are WAITING
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param academic_year query int true "Academic year (B.E.)"
// @Param semester query int true "Semester"
// @Param program_id query string false "Program ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/subjects [get]
func (h *DashboardHandler) Subjects(c *gin.Context) {
	var query dto.SubjectBoardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "academic_year and semester must be numbers"))
		return
	}
	board, cacheHit, err := h.service.SubjectBoard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, board, nil, middleware.ExtractMeta(c))
}

// Mine godoc
// @Summary Lecturer board
// @Description Open offerings where the caller is responsible or teaching, with their own status
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param academic_year query int true "Academic year (B.E.)"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /dashboard/me [get]
func (h *DashboardHandler) Mine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	query, ok := bindTermQuery(c)
	if !ok {
		return
	}
	board, err := h.service.LecturerBoard(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

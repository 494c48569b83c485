package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/service"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/response"
)

type reportService interface {
	YearlyReport(ctx context.Context, query dto.YearlyReportQuery) (*models.YearlyReport, error)
	ExportReport(ctx context.Context, req dto.ExportReportRequest, actor *models.JWTClaims) (*models.ReportExport, error)
	DownloadReport(ctx context.Context, token string) (*service.Download, error)
}

// ReportHandler exposes the yearly workload report and its exports.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: svc, logger: logger}
}

// Yearly godoc
// @Summary Yearly workload report
// @Description Dean-approved rows with per-lecturer totals
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param academic_year query int true "Academic year (B.E.)"
// @Param semester query int false "Semester"
// @Param program_id query string false "Program ID"
// @Success 200 {object} response.Envelope
// @Router /reports/yearly [get]
func (h *ReportHandler) Yearly(c *gin.Context) {
	var query dto.YearlyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report filter"))
		return
	}
	report, err := h.service.YearlyReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export yearly report
// @Description Renders csv, pdf or xlsx and returns a signed download link
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportReportRequest true "Filter and format"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/yearly/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportReportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	result, err := h.service.ExportReport(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an exported report
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.service.DownloadReport(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Body.Close()

	c.Header("Content-Type", download.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.Body); err != nil {
		h.logger.Warn("report download interrupted", zap.String("file", download.Filename), zap.Error(err))
	}
}

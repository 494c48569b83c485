package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/export"
	"github.com/noah-isme/workload-api/pkg/storage"
	"github.com/noah-isme/workload-api/pkg/validation"
)

type reportRepository interface {
	YearlyRows(ctx context.Context, filter models.ReportFilter) ([]models.YearlyReportRow, error)
}

// ReportConfig tunes export links.
type ReportConfig struct {
	// DownloadPrefix is prepended to download tokens, e.g. /api/v1/reports/download.
	DownloadPrefix string
}

// ReportService builds the yearly workload report and its file exports.
type ReportService struct {
	repo      reportRepository
	store     storage.ObjectStore
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportConfig
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(repo reportRepository, store storage.ObjectStore, signer *storage.SignedURLSigner, metrics *MetricsService, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if validate == nil {
		validate = validation.Validate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.DownloadPrefix = strings.TrimRight(cfg.DownloadPrefix, "/")
	if cfg.DownloadPrefix == "" {
		cfg.DownloadPrefix = "/api/v1/reports/download"
	}
	return &ReportService{
		repo:      repo,
		store:     store,
		signer:    signer,
		metrics:   metrics,
		audit:     auditTrail{repo: audit, logger: logger},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// YearlyReport returns dean-approved rows with per-lecturer totals.
func (s *ReportService) YearlyReport(ctx context.Context, query dto.YearlyReportQuery) (*models.YearlyReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validation.Error(err, "invalid report filter")
	}
	filter := models.ReportFilter{AcademicYear: query.AcademicYear, Semester: query.Semester, ProgramID: query.ProgramID}
	rows, err := s.repo.YearlyRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report rows")
	}
	if rows == nil {
		rows = []models.YearlyReportRow{}
	}

	totals, grand := summarise(rows)
	return &models.YearlyReport{
		AcademicYear: query.AcademicYear,
		Semester:     query.Semester,
		ProgramID:    query.ProgramID,
		Rows:         rows,
		Totals:       totals,
		GrandTotal:   grand,
		GeneratedAt:  s.now().UTC(),
	}, nil
}

func summarise(rows []models.YearlyReportRow) ([]models.LecturerTotal, float64) {
	index := make(map[string]int)
	totals := make([]models.LecturerTotal, 0)
	var grand float64
	for _, row := range rows {
		i, ok := index[row.LecturerID]
		if !ok {
			i = len(totals)
			index[row.LecturerID] = i
			totals = append(totals, models.LecturerTotal{LecturerID: row.LecturerID, LecturerName: row.LecturerName})
		}
		totals[i].Subjects++
		totals[i].TotalHours += row.TotalHours
		grand += row.TotalHours
	}
	sort.SliceStable(totals, func(a, b int) bool { return totals[a].LecturerName < totals[b].LecturerName })
	return totals, grand
}

var reportHeaders = []string{"Lecturer", "Semester", "Subject Code", "Subject", "Role", "Lecture", "Lab", "Exam", "Exam Critique", "Total"}

// ReportDataset flattens a yearly report into export rows followed by per-lecturer totals.
func ReportDataset(report *models.YearlyReport) export.Dataset {
	ds := export.Dataset{Headers: reportHeaders}
	for _, row := range report.Rows {
		ds.Rows = append(ds.Rows, map[string]string{
			"Lecturer":      row.LecturerName,
			"Semester":      strconv.Itoa(row.Semester),
			"Subject Code":  row.SubjectCode,
			"Subject":       subjectLabel(row.SubjectNameTH, row.SubjectNameEN),
			"Role":          string(row.Role),
			"Lecture":       formatHours(row.LectureHours),
			"Lab":           formatHours(row.LabHours),
			"Exam":          formatHours(row.ExamHours),
			"Exam Critique": formatHours(row.ExamCritiqueHours),
			"Total":         formatHours(row.TotalHours),
		})
	}
	for _, total := range report.Totals {
		ds.Rows = append(ds.Rows, map[string]string{
			"Lecturer": total.LecturerName,
			"Subject":  fmt.Sprintf("Total (%d subjects)", total.Subjects),
			"Total":    formatHours(total.TotalHours),
		})
	}
	ds.Rows = append(ds.Rows, map[string]string{"Lecturer": "Grand total", "Total": formatHours(report.GrandTotal)})
	return ds
}

// ExportReport renders the yearly report, stores it and returns a signed download link.
func (s *ReportService) ExportReport(ctx context.Context, req dto.ExportReportRequest, actor *models.JWTClaims) (*models.ReportExport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid export request")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	report, err := s.YearlyReport(ctx, req.YearlyReportQuery)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(ReportDataset(report), reportTitle(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	id := uuid.NewString()
	key := path.Join("reports", strconv.Itoa(report.AcademicYear), id+"."+renderer.Extension())
	if err := s.store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), renderer.ContentType()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	token, expiresAt, err := s.signer.Generate(id, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	result := &models.ReportExport{
		ID:        id,
		Format:    string(format),
		Key:       key,
		URL:       s.cfg.DownloadPrefix + "/" + token,
		Rows:      len(report.Rows),
		ExpiresAt: expiresAt,
	}
	s.metrics.RecordReportExport(string(format))
	s.audit.record(ctx, actor, models.AuditActionReportExport, "reports", id, nil, map[string]interface{}{
		"academic_year": report.AcademicYear,
		"semester":      report.Semester,
		"program_id":    report.ProgramID,
		"format":        format,
		"rows":          result.Rows,
	})
	return result, nil
}

// Download is an opened export ready to stream.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// DownloadReport verifies a signed token and opens the stored export.
func (s *ReportService) DownloadReport(ctx context.Context, token string) (*Download, error) {
	obj, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	body, err := s.store.Open(ctx, obj.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}

	contentType := "application/octet-stream"
	if format, err := export.ParseFormat(strings.TrimPrefix(path.Ext(obj.Key), ".")); err == nil {
		if renderer, err := export.ForFormat(format); err == nil {
			contentType = renderer.ContentType()
		}
	}
	return &Download{Body: body, ContentType: contentType, Filename: path.Base(obj.Key)}, nil
}

func reportTitle(report *models.YearlyReport) string {
	title := fmt.Sprintf("Teaching workload %d", report.AcademicYear)
	if report.Semester != nil {
		title += fmt.Sprintf(" semester %d", *report.Semester)
	}
	return title
}

func subjectLabel(th, en string) string {
	if en == "" {
		return th
	}
	return en
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

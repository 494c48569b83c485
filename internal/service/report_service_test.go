package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/config"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

type reportFixture struct {
	env     *testEnv
	program *models.Program
	bea     *models.User
	anan    *models.User
}

// newReportFixture seeds three dean-approved rows in 2567 and one pending row.
func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	env := newTestEnv(t, config.UniqueScopeTerm)
	st := env.store
	f := &reportFixture{env: env}
	admin := st.addUser(models.User{FullName: "Admin", Role: models.RoleAdmin, Active: true})
	f.bea = st.addUser(models.User{FullName: "Bea", Active: true})
	f.anan = st.addUser(models.User{FullName: "Anan", Active: true})
	f.program = st.addProgram(models.Program{NameTH: "CS"})
	cs101 := st.addSubject(models.Subject{Code: "CS101", NameEN: "Programming", ProgramID: &f.program.ID, ResponsibleUserID: &f.bea.ID})
	ma101 := st.addSubject(models.Subject{Code: "MA101", NameTH: "แคลคูลัส", ResponsibleUserID: &f.anan.ID})

	seed := func(subject *models.Subject, lecturer *models.User, semester int, hours float64, approved bool) {
		row, err := env.assignments.CreateAssignment(context.Background(), dto.CreateAssignmentRequest{
			SubjectID: subject.ID, LecturerID: lecturer.ID, AcademicYear: 2567, Semester: semester, LectureHours: floatPtr(hours),
		}, actorFor(admin))
		require.NoError(t, err)
		if approved {
			st.assignments[row.ID].DeanApprovalStatus = models.StatusApproved
		}
	}
	seed(cs101, f.bea, 1, 3, true)
	seed(cs101, f.anan, 1, 1.5, true)
	seed(ma101, f.anan, 2, 2, true)
	seed(ma101, f.bea, 2, 4, false)
	return f
}

func TestReportServiceYearlyReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.env.reports.YearlyReport(ctx, dto.YearlyReportQuery{AcademicYear: 2567})
	require.NoError(t, err)
	require.Len(t, report.Rows, 3, "only dean-approved rows are reported")
	assert.Equal(t, 6.5, report.GrandTotal)

	require.Len(t, report.Totals, 2)
	assert.Equal(t, "Anan", report.Totals[0].LecturerName)
	assert.Equal(t, 2, report.Totals[0].Subjects)
	assert.Equal(t, 3.5, report.Totals[0].TotalHours)
	assert.Equal(t, "Bea", report.Totals[1].LecturerName)
	assert.Equal(t, 3.0, report.Totals[1].TotalHours)

	semester := 2
	bySemester, err := f.env.reports.YearlyReport(ctx, dto.YearlyReportQuery{AcademicYear: 2567, Semester: &semester})
	require.NoError(t, err)
	require.Len(t, bySemester.Rows, 1)
	assert.Equal(t, models.AssignmentRoleResponsible, bySemester.Rows[0].Role)

	byProgram, err := f.env.reports.YearlyReport(ctx, dto.YearlyReportQuery{AcademicYear: 2567, ProgramID: f.program.ID})
	require.NoError(t, err)
	assert.Len(t, byProgram.Rows, 2)

	empty, err := f.env.reports.YearlyReport(ctx, dto.YearlyReportQuery{AcademicYear: 2570})
	require.NoError(t, err)
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)
	assert.Zero(t, empty.GrandTotal)

	_, err = f.env.reports.YearlyReport(ctx, dto.YearlyReportQuery{AcademicYear: 1999})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestReportDataset(t *testing.T) {
	semester := 1
	ds := ReportDataset(&models.YearlyReport{
		AcademicYear: 2567,
		Semester:     &semester,
		Rows: []models.YearlyReportRow{{
			LecturerName: "Bea", Semester: 1, SubjectCode: "CS101", SubjectNameTH: "โปรแกรม",
			Role: models.AssignmentRoleResponsible, LectureHours: 2.5, TotalHours: 2.5,
		}},
		Totals:     []models.LecturerTotal{{LecturerName: "Bea", Subjects: 1, TotalHours: 2.5}},
		GrandTotal: 2.5,
	})

	require.Len(t, ds.Rows, 3)
	assert.Equal(t, "โปรแกรม", ds.Rows[0]["Subject"], "thai name is used when no english name exists")
	assert.Equal(t, "2.5", ds.Rows[0]["Lecture"])
	assert.Equal(t, "0", ds.Rows[0]["Lab"])
	assert.Equal(t, "responsible", ds.Rows[0]["Role"])
	assert.Equal(t, "Total (1 subjects)", ds.Rows[1]["Subject"])
	assert.Equal(t, "Grand total", ds.Rows[2]["Lecturer"])
	assert.Equal(t, "2.5", ds.Rows[2]["Total"])
}

func TestReportServiceExportFormats(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	f.env.reports.now = func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		format      string
		contentType string
		extension   string
	}{
		{format: "", contentType: "text/csv; charset=utf-8", extension: ".csv"},
		{format: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", extension: ".xlsx"},
		{format: "pdf", contentType: "application/pdf", extension: ".pdf"},
	}
	for _, tc := range tests {
		t.Run("format "+tc.format, func(t *testing.T) {
			result, err := f.env.reports.ExportReport(ctx, dto.ExportReportRequest{
				YearlyReportQuery: dto.YearlyReportQuery{AcademicYear: 2567},
				Format:            tc.format,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Rows)
			assert.True(t, strings.HasPrefix(result.URL, "/api/v1/reports/download/"))
			assert.True(t, strings.HasSuffix(result.Key, tc.extension))

			token := strings.TrimPrefix(result.URL, "/api/v1/reports/download/")
			download, err := f.env.reports.DownloadReport(ctx, token)
			require.NoError(t, err)
			defer download.Body.Close()
			assert.Equal(t, tc.contentType, download.ContentType)
			assert.Equal(t, result.ID+tc.extension, download.Filename)

			body, err := io.ReadAll(download.Body)
			require.NoError(t, err)
			assert.NotEmpty(t, body)
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.env.metrics.reportExports.WithLabelValues("xlsx")))
	assert.Contains(t, f.env.store.auditActions(), models.AuditActionReportExport)

	_, err := f.env.reports.ExportReport(ctx, dto.ExportReportRequest{
		YearlyReportQuery: dto.YearlyReportQuery{AcademicYear: 2567},
		Format:            "docx",
	}, nil)
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestReportServiceDownloadRejectsBadLinks(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	result, err := f.env.reports.ExportReport(ctx, dto.ExportReportRequest{YearlyReportQuery: dto.YearlyReportQuery{AcademicYear: 2567}}, nil)
	require.NoError(t, err)
	token := strings.TrimPrefix(result.URL, "/api/v1/reports/download/")

	_, err = f.env.reports.DownloadReport(ctx, token+"x")
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.env.reports.DownloadReport(ctx, "not-a-token")
	requireAppError(t, err, appErrors.ErrForbidden)

	orphan, _, err := f.env.signer.Generate("orphan", "reports/2567/orphan.csv")
	require.NoError(t, err)
	_, err = f.env.reports.DownloadReport(ctx, orphan)
	requireAppError(t, err, appErrors.ErrNotFound)
}

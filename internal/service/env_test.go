package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/storage"
)

type testEnv struct {
	store       *memStore
	cacheRepo   *memCache
	cache       *CacheService
	metrics     *MetricsService
	terms       *TermService
	offerings   *OfferingService
	assignments *AssignmentService
	approvals   *ApprovalService
	dashboard   *DashboardService
	reports     *ReportService
	signer      *storage.SignedURLSigner
}

func newTestEnv(t *testing.T, scope string) *testEnv {
	t.Helper()
	store := newMemStore()
	cacheRepo := newMemCache()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	audit := memAudit{store}

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	return &testEnv{
		store:     store,
		cacheRepo: cacheRepo,
		cache:     cache,
		metrics:   metrics,
		signer:    signer,
		terms:     NewTermService(memTerms{store}, memOfferings{store}, cache, audit, nil, nil),
		offerings: NewOfferingService(memOfferings{store}, memTerms{store}, memSubjects{store}, cache, audit, nil, nil),
		assignments: NewAssignmentService(memAssignments{store}, memSubjects{store}, memUsers{store}, memPrograms{store}, cache, audit, nil, nil,
			AssignmentServiceConfig{UniqueScope: scope}),
		approvals: NewApprovalService(ApprovalServiceParams{
			Repo:     memAssignments{store},
			Subjects: memSubjects{store},
			Programs: memPrograms{store},
			Cache:    cache,
			Metrics:  metrics,
			Audit:    audit,
		}),
		dashboard: NewDashboardService(DashboardServiceParams{
			Assignments: memAssignments{store},
			Terms:       memTerms{store},
			Offerings:   memOfferings{store},
			Cache:       cache,
			CacheTTL:    time.Minute,
		}),
		reports: NewReportService(memReports{store}, local, signer, metrics, audit, nil, nil, ReportConfig{}),
	}
}

func actorFor(user *models.User) *models.JWTClaims {
	return claimsFor(user)
}

func requireAppError(t *testing.T, err error, expected *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, expected.Code, appErr.Code, "unexpected error: %v", err)
	require.Equal(t, expected.Status, appErr.Status)
}

func floatPtr(v float64) *float64 { return &v }

func statusPtr(s models.ApprovalStatus) *models.ApprovalStatus { return &s }

func strPtr(s string) *string { return &s }

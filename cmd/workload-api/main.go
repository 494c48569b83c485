package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/workload-api/api/swagger"
	"github.com/noah-isme/workload-api/internal/handler"
	"github.com/noah-isme/workload-api/internal/repository"
	"github.com/noah-isme/workload-api/internal/service"
	"github.com/noah-isme/workload-api/migrations"
	"github.com/noah-isme/workload-api/pkg/cache"
	"github.com/noah-isme/workload-api/pkg/config"
	"github.com/noah-isme/workload-api/pkg/database"
	"github.com/noah-isme/workload-api/pkg/logger"
	"github.com/noah-isme/workload-api/pkg/storage"
)

// @title Workload Approval API
// @version 1.0.0
// @description Faculty teaching workload ledger with a four-lane approval workflow.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS, "up"); err != nil {
			return err
		}
		logr.Info("migrations applied")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	janitor, err := startJanitor(ctx, store, cfg.Reports.ExportRetention, logr)
	if err != nil {
		return err
	}
	if janitor != nil {
		defer janitor.Stop()
	}

	users := repository.NewUserRepository(db)
	programs := repository.NewProgramRepository(db)
	subjects := repository.NewSubjectRepository(db)
	terms := repository.NewTermRepository(db)
	offerings := repository.NewOfferingRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	reports := repository.NewReportRepository(db)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	authSvc := service.NewAuthService(users, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	deps := routeDeps{
		cfg:         cfg,
		logger:      logr,
		metrics:     metrics,
		rateCounter: cacheRepo,
		auth:        authSvc,
		handlers: handlers{
			auth:     handler.NewAuthHandler(authSvc),
			terms:    handler.NewTermHandler(service.NewTermService(terms, offerings, cacheSvc, users, nil, logr)),
			offering: handler.NewOfferingHandler(service.NewOfferingService(offerings, terms, subjects, cacheSvc, users, nil, logr)),
			subjects: handler.NewSubjectHandler(service.NewSubjectService(subjects, cacheSvc, users, nil, logr)),
			programs: handler.NewProgramHandler(service.NewProgramService(programs, users, cacheSvc, users, nil, logr)),
			staff:    handler.NewStaffHandler(service.NewStaffService(users, cacheSvc, nil, logr)),
			assignments: handler.NewAssignmentHandler(service.NewAssignmentService(assignments, subjects, users, programs, cacheSvc, users, nil, logr,
				service.AssignmentServiceConfig{UniqueScope: cfg.Workload.AssignmentUniqueScope})),
			approvals: handler.NewApprovalHandler(service.NewApprovalService(service.ApprovalServiceParams{
				Repo:     assignments,
				Subjects: subjects,
				Programs: programs,
				Cache:    cacheSvc,
				Metrics:  metrics,
				Audit:    users,
				Logger:   logr,
			})),
			dashboard: handler.NewDashboardHandler(service.NewDashboardService(service.DashboardServiceParams{
				Assignments: assignments,
				Terms:       terms,
				Offerings:   offerings,
				Cache:       cacheSvc,
				CacheTTL:    cfg.Dashboard.CacheTTL,
				Logger:      logr,
			})),
			reports: handler.NewReportHandler(service.NewReportService(reports, store, signer, metrics, users, nil, logr,
				service.ReportConfig{DownloadPrefix: cfg.APIPrefix + "/reports/download"}), logr),
			ops: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
				"database": db,
				"cache":    handler.PingerFunc(cacheRepo.Ping),
			}),
		},
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

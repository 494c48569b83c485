package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/handler"
	"github.com/noah-isme/workload-api/internal/middleware"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/service"
	"github.com/noah-isme/workload-api/pkg/config"
	"github.com/noah-isme/workload-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/workload-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/workload-api/pkg/middleware/requestid"
)

type handlers struct {
	auth        *handler.AuthHandler
	terms       *handler.TermHandler
	offering    *handler.OfferingHandler
	subjects    *handler.SubjectHandler
	programs    *handler.ProgramHandler
	staff       *handler.StaffHandler
	assignments *handler.AssignmentHandler
	approvals   *handler.ApprovalHandler
	dashboard   *handler.DashboardHandler
	reports     *handler.ReportHandler
	ops         *handler.MetricsHandler
}

type authenticator interface {
	middleware.TokenValidator
	middleware.Impersonator
}

type routeDeps struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *service.MetricsService
	rateCounter middleware.RateCounter
	auth        authenticator
	handlers    handlers
}

func newRouter(d routeDeps) *gin.Engine {
	h := d.handlers
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.RequestMeta())
	r.Use(middleware.ResponseMeta())

	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)
	// Signed links carry their own authorization.
	api.GET("/reports/download/:token", h.reports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.auth), middleware.Impersonation(d.auth))
	if d.cfg.RateLimit.Enabled {
		secured.Use(middleware.RateLimit(d.rateCounter, d.metrics, d.cfg.RateLimit.Limit, d.cfg.RateLimit.Window, d.logger))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	viewers := middleware.RequireRoles(models.RoleAdmin, models.RoleDean)

	secured.GET("/auth/me", h.auth.Me)

	terms := secured.Group("/terms")
	terms.GET("", h.terms.List)
	terms.GET("/active", h.terms.GetActive)
	terms.GET("/:id", h.terms.Get)
	terms.POST("/years", admin, h.terms.CreateYear)
	terms.POST("/:id/activate", admin, h.terms.Activate)
	terms.PATCH("/:id/timeline", admin, h.terms.UpdateTimeline)
	terms.GET("/:id/offerings", h.offering.List)
	terms.PUT("/:id/offerings/:subjectId", admin, h.offering.Set)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.subjects.List)
	subjects.GET("/:id", h.subjects.Get)
	subjects.POST("", admin, h.subjects.Create)
	subjects.PUT("/:id", admin, h.subjects.Update)
	subjects.DELETE("/:id", admin, h.subjects.Delete)
	subjects.GET("/:id/assignments", h.assignments.BySubject)
	subjects.POST("/:id/submit", h.approvals.Submit)
	subjects.POST("/:id/chair-decision", h.approvals.ChairDecision)
	subjects.POST("/:id/dean-decision", h.approvals.DeanDecision)

	programs := secured.Group("/programs")
	programs.GET("", h.programs.List)
	programs.GET("/:id", h.programs.Get)
	programs.POST("", admin, h.programs.Create)
	programs.PUT("/:id", admin, h.programs.Update)
	programs.DELETE("/:id", admin, h.programs.Delete)

	staff := secured.Group("/staff")
	staff.GET("", viewers, h.staff.List)
	staff.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleDean), "SELF"), h.staff.Get)
	staff.POST("", admin, h.staff.Create)
	staff.PUT("/:id", admin, h.staff.Update)
	staff.DELETE("/:id", admin, h.staff.Delete)

	assignments := secured.Group("/assignments")
	assignments.POST("", h.assignments.Create)
	assignments.GET("/mine", h.assignments.Mine)
	assignments.GET("/:id", h.assignments.Get)
	assignments.PUT("/:id", h.assignments.Update)
	assignments.DELETE("/:id", h.assignments.Delete)
	assignments.POST("/:id/confirm", h.approvals.Confirm)
	assignments.POST("/:id/dispute", h.approvals.Dispute)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("/subjects", h.dashboard.Subjects)
	dashboard.GET("/me", h.dashboard.Mine)

	reports := secured.Group("/reports", viewers)
	reports.GET("/yearly", h.reports.Yearly)
	reports.POST("/yearly/export", h.reports.Export)

	return r
}

package bootstrap

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/api/http/middleware"
	"github.com/climate-finance-tracker/cft-backend/internal/auth"
	"github.com/climate-finance-tracker/cft-backend/internal/metrics"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"

	"github.com/climate-finance-tracker/cft-backend/config"

	dochttp "github.com/climate-finance-tracker/cft-backend/internal/documents/http"
	docrepo "github.com/climate-finance-tracker/cft-backend/internal/documents/repository"
	docservice "github.com/climate-finance-tracker/cft-backend/internal/documents/service"
	entityhttp "github.com/climate-finance-tracker/cft-backend/internal/entities/http"
	entityrepo "github.com/climate-finance-tracker/cft-backend/internal/entities/repository"
	projecthttp "github.com/climate-finance-tracker/cft-backend/internal/projects/http"
	projectrepo "github.com/climate-finance-tracker/cft-backend/internal/projects/repository"
	projectservice "github.com/climate-finance-tracker/cft-backend/internal/projects/service"
)

const serviceName = "climate-finance-tracker"

type RouterDeps struct {
	DB       *sql.DB
	Logger   *slog.Logger
	Config   *config.Config
	Verifier auth.TokenVerifier
	Uploads  *uploads.Store

	// Limiter guards the public submission routes; nil keeps an in-process
	// limiter sized from the submissions config.
	Limiter middleware.Limiter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(dep.Config.Server.CORSOrigins)))

	var pinger httpapi.Pinger
	if dep.DB != nil {
		pinger = dep.DB
	}
	healthHandler := httpapi.NewHealthHandler(serviceName, dep.Config.App.Version, pinger)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())
	dep.Uploads.RegisterDownload(r)

	admin := auth.AdminGuard(dep.Verifier)
	limiter := dep.Limiter
	if limiter == nil {
		limiter = middleware.NewClientRateLimiter(
			dep.Config.Submissions.RatePerMinute,
			dep.Config.Submissions.Burst,
		)
	}
	limit := middleware.RateLimit(limiter, dep.Logger)

	named := []struct {
		path  string
		kind  entityrepo.Kind
		label string
	}{
		{"/agency", entityrepo.Agencies, "agency"},
		{"/executing-agency", entityrepo.ExecutingAgencies, "executing agency"},
		{"/implementing-entity", entityrepo.ImplementingEntities, "implementing entity"},
		{"/delivery-partner", entityrepo.DeliveryPartners, "delivery partner"},
	}
	for _, n := range named {
		entityhttp.NewNamedHandler(entityrepo.NewNameRepository(dep.DB, n.kind), n.label).
			Register(r.Group(n.path), admin)
	}
	entityhttp.NewFundingSourceHandler(entityrepo.NewFundingSourceRepository(dep.DB)).
		Register(r.Group("/funding-source"), admin)
	entityhttp.NewSDGHandler(entityrepo.NewSDGRepository(dep.DB)).
		Register(r.Group("/sdg"), admin)
	entityhttp.RegisterLocations(r.Group("/location"), entityrepo.NewLocationRepository(dep.DB))

	submissions := dep.Config.Submissions.Enabled
	files := uploads.NewGuardedStore(dep.Uploads, uploads.NewSQLReferences(dep.DB))

	projectHandler := projecthttp.New(
		projectservice.NewProjectService(projectrepo.NewProjectRepository(dep.DB), files, dep.Logger),
		projectservice.NewPendingService(projectrepo.NewPendingRepository(dep.DB), files, submissions, dep.Logger),
		projectrepo.NewReportRepository(dep.DB),
	)
	projectHandler.RegisterProjects(r.Group("/project"), admin)
	projectHandler.RegisterPending(r.Group("/pending-project"), admin, limit)

	documentHandler := dochttp.New(docservice.NewDocumentService(
		docrepo.NewDocumentRepository(dep.DB),
		docrepo.NewPendingRepository(dep.DB),
		files,
		submissions,
		dep.Logger,
	))
	documentHandler.Register(r.Group("/document-repository"), admin)
	documentHandler.RegisterPending(r.Group("/pending-document-repository"), admin, limit)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"}
	cfg.ExposeHeaders = []string{"Content-Disposition", "X-Request-Id"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

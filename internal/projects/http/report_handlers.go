package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

type ReportStore interface {
	OverviewStats(ctx context.Context) (*domain.OverviewStats, error)
	StatusCounts(ctx context.Context) ([]domain.NameValue, error)
	TypeCounts(ctx context.Context) ([]domain.NameValue, error)
	SectorCounts(ctx context.Context) ([]domain.NameValue, error)
	ProjectTrend(ctx context.Context) ([]domain.YearCount, error)
	FundingTrend(ctx context.Context) ([]domain.FundingYear, error)
	WashStats(ctx context.Context) (*domain.WashStats, error)
	RegionalDistribution(ctx context.Context) ([]domain.RegionDistribution, error)
	DistrictDistribution(ctx context.Context) ([]domain.DistrictDistribution, error)
	SDGDistribution(ctx context.Context) ([]domain.SDGDistribution, error)
	AgencyDistribution(ctx context.Context) ([]domain.ParticipantDistribution, error)
	FundingSourceDistribution(ctx context.Context) ([]domain.FundingSourceDistribution, error)
}

// report serves one read-only aggregation.
func report[T any](fetch func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fetch(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		httpapi.OK(c, http.StatusOK, data)
	}
}

func (h *Handler) registerReports(rg *gin.RouterGroup) {
	rg.GET("/overview-stats", report(h.reports.OverviewStats))
	rg.GET("/status-count", report(h.reports.StatusCounts))
	rg.GET("/type-count", report(h.reports.TypeCounts))
	rg.GET("/sector-count", report(h.reports.SectorCounts))
	rg.GET("/project-trend", report(h.reports.ProjectTrend))
	rg.GET("/funding-trend", report(h.reports.FundingTrend))
	rg.GET("/wash-stat", report(h.reports.WashStats))
	rg.GET("/regional-distribution", report(h.reports.RegionalDistribution))
	rg.GET("/district-distribution", report(h.reports.DistrictDistribution))
	rg.GET("/sdg-distribution", report(h.reports.SDGDistribution))
	rg.GET("/agency-distribution", report(h.reports.AgencyDistribution))
	rg.GET("/funding-source-distribution", report(h.reports.FundingSourceDistribution))
}

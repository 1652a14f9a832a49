package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

// Status groups used by the overview and regional reports.
const (
	activeStatus    = `LOWER(p.status) IN ('active', 'ongoing')`
	completedStatus = `LOWER(p.status) IN ('completed', 'closed')`
)

// ReportRepository runs the read-only dashboard aggregations. Every method
// is a single grouped query.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) OverviewStats(ctx context.Context) (*domain.OverviewStats, error) {
	query := fmt.Sprintf(`
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE %s),
       COUNT(*) FILTER (WHERE %s),
       COALESCE(SUM(p.total_cost_usd), 0),
       COALESCE(SUM(p.grant_amount), 0),
       COALESCE(SUM(p.loan_amount), 0),
       COALESCE(SUM(p.co_financing), 0),
       COALESCE(SUM(p.direct_beneficiaries), 0),
       (SELECT COUNT(*) FROM funding_sources),
       (SELECT COUNT(*) FROM agencies)
FROM projects p;
`, activeStatus, completedStatus)

	var s domain.OverviewStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalProjects, &s.ActiveProjects, &s.CompletedProjects,
		&s.TotalCostUSD, &s.TotalGrant, &s.TotalLoan, &s.TotalCoFinancing,
		&s.DirectBeneficiaries, &s.FundingSources, &s.Agencies,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview stats: %w", err)
	}
	return &s, nil
}

func (r *ReportRepository) StatusCounts(ctx context.Context) ([]domain.NameValue, error) {
	return r.nameValues(ctx, "status", `
SELECT p.status, COUNT(*)
FROM projects p
GROUP BY p.status
ORDER BY COUNT(*) DESC, p.status ASC;
`)
}

func (r *ReportRepository) TypeCounts(ctx context.Context) ([]domain.NameValue, error) {
	return r.nameValues(ctx, "type", `
SELECT COALESCE(NULLIF(p.type, ''), 'Unspecified'), COUNT(*)
FROM projects p
GROUP BY 1
ORDER BY 2 DESC, 1 ASC;
`)
}

func (r *ReportRepository) SectorCounts(ctx context.Context) ([]domain.NameValue, error) {
	return r.nameValues(ctx, "sector", `
SELECT COALESCE(NULLIF(p.sector, ''), 'Unspecified'), COUNT(*)
FROM projects p
GROUP BY 1
ORDER BY 2 DESC, 1 ASC;
`)
}

func (r *ReportRepository) nameValues(ctx context.Context, label, query string) ([]domain.NameValue, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects by %s: %w", label, err)
	}
	defer rows.Close()

	out := make([]domain.NameValue, 0, 8)
	for rows.Next() {
		var nv domain.NameValue
		if err := rows.Scan(&nv.Name, &nv.Value); err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectTrend counts projects per approval fiscal year.
func (r *ReportRepository) ProjectTrend(ctx context.Context) ([]domain.YearCount, error) {
	const query = `
SELECT p.approval_fy, COUNT(*)
FROM projects p
GROUP BY p.approval_fy
ORDER BY p.approval_fy ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load project trend: %w", err)
	}
	defer rows.Close()

	out := make([]domain.YearCount, 0, 16)
	for rows.Next() {
		var yc domain.YearCount
		if err := rows.Scan(&yc.Year, &yc.Projects); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) FundingTrend(ctx context.Context) ([]domain.FundingYear, error) {
	const query = `
SELECT p.approval_fy,
       COALESCE(SUM(p.grant_amount), 0),
       COALESCE(SUM(p.loan_amount), 0),
       COALESCE(SUM(p.co_financing), 0)
FROM projects p
GROUP BY p.approval_fy
ORDER BY p.approval_fy ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load funding trend: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FundingYear, 0, 16)
	for rows.Next() {
		var fy domain.FundingYear
		if err := rows.Scan(&fy.Year, &fy.Grant, &fy.Loan, &fy.CoFinancing); err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WashStats summarises projects carrying a WASH component. WASH funding is
// the WASH percentage of each project's total cost.
func (r *ReportRepository) WashStats(ctx context.Context) (*domain.WashStats, error) {
	const query = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE w.presence),
       COALESCE(AVG(w.wash_percentage) FILTER (WHERE w.presence), 0),
       COALESCE(SUM(p.total_cost_usd * w.wash_percentage / 100) FILTER (WHERE w.presence), 0)
FROM projects p
LEFT JOIN wash_components w ON w.project_id = p.project_id;
`
	var s domain.WashStats
	err := r.db.QueryRowContext(ctx, query).
		Scan(&s.TotalProjects, &s.WashProjects, &s.AveragePercentage, &s.WashFundingUSD)
	if err != nil {
		return nil, fmt.Errorf("failed to load wash stats: %w", err)
	}
	return &s, nil
}

func (r *ReportRepository) RegionalDistribution(ctx context.Context) ([]domain.RegionDistribution, error) {
	query := fmt.Sprintf(`
SELECT l.region,
       COUNT(DISTINCT p.project_id),
       COUNT(DISTINCT p.project_id) FILTER (WHERE %s),
       COUNT(DISTINCT p.project_id) FILTER (WHERE %s)
FROM project_locations pl
JOIN locations l ON l.location_id = pl.location_id
JOIN projects p ON p.project_id = pl.project_id
GROUP BY l.region
ORDER BY l.region ASC;
`, activeStatus, completedStatus)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load regional distribution: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RegionDistribution, 0, 8)
	for rows.Next() {
		var d domain.RegionDistribution
		if err := rows.Scan(&d.Region, &d.Total, &d.Active, &d.Completed); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) DistrictDistribution(ctx context.Context) ([]domain.DistrictDistribution, error) {
	const query = `
SELECT COALESCE(l.district, l.name), COUNT(DISTINCT pl.project_id)
FROM project_locations pl
JOIN locations l ON l.location_id = pl.location_id
GROUP BY 1
ORDER BY 2 DESC, 1 ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load district distribution: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DistrictDistribution, 0, 16)
	for rows.Next() {
		var d domain.DistrictDistribution
		if err := rows.Scan(&d.District, &d.Projects); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) SDGDistribution(ctx context.Context) ([]domain.SDGDistribution, error) {
	const query = `
SELECT s.sdg_number, s.title, COUNT(ps.project_id)
FROM sdg_alignments s
LEFT JOIN project_sdgs ps ON ps.sdg_id = s.sdg_id
GROUP BY s.sdg_id, s.sdg_number, s.title
ORDER BY s.sdg_number ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load sdg distribution: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SDGDistribution, 0, 17)
	for rows.Next() {
		var d domain.SDGDistribution
		if err := rows.Scan(&d.SDGNumber, &d.Title, &d.Projects); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) AgencyDistribution(ctx context.Context) ([]domain.ParticipantDistribution, error) {
	const query = `
SELECT a.name, COUNT(p.project_id), COALESCE(SUM(p.total_cost_usd), 0)
FROM agencies a
JOIN project_agencies pa ON pa.agency_id = a.agency_id
JOIN projects p ON p.project_id = pa.project_id
GROUP BY a.agency_id, a.name
ORDER BY 2 DESC, a.name ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load agency distribution: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ParticipantDistribution, 0, 16)
	for rows.Next() {
		var d domain.ParticipantDistribution
		if err := rows.Scan(&d.Name, &d.Projects, &d.TotalCostUSD); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) FundingSourceDistribution(ctx context.Context) ([]domain.FundingSourceDistribution, error) {
	const query = `
SELECT f.name,
       COALESCE(SUM(p.grant_amount), 0),
       COALESCE(SUM(p.loan_amount), 0),
       COALESCE(SUM(p.co_financing), 0),
       COUNT(p.project_id)
FROM funding_sources f
JOIN project_funding_sources pf ON pf.funding_source_id = f.funding_source_id
JOIN projects p ON p.project_id = pf.project_id
GROUP BY f.funding_source_id, f.name
ORDER BY SUM(COALESCE(p.grant_amount, 0) + COALESCE(p.loan_amount, 0) + COALESCE(p.co_financing, 0)) DESC, f.name ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load funding source distribution: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FundingSourceDistribution, 0, 16)
	for rows.Next() {
		var d domain.FundingSourceDistribution
		if err := rows.Scan(&d.Name, &d.Grant, &d.Loan, &d.CoFinancing, &d.Projects); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

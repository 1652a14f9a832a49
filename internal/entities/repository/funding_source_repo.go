package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

// FundingSourceRepository is a name-keyed repository whose reads carry totals
// summed from the linked projects.
type FundingSourceRepository struct {
	*NameRepository
}

func NewFundingSourceRepository(db *sql.DB) *FundingSourceRepository {
	return &FundingSourceRepository{NameRepository: NewNameRepository(db, FundingSources)}
}

const fundingSourceTotalsSelect = `
SELECT fs.funding_source_id, fs.name, fs.created_at, fs.updated_at,
       COALESCE(SUM(p.grant_amount), 0)   AS grant_amount,
       COALESCE(SUM(p.loan_amount), 0)    AS loan_amount,
       COALESCE(SUM(p.co_financing), 0)   AS co_financing,
       COALESCE(SUM(p.total_cost_usd), 0) AS total_cost_usd,
       COUNT(DISTINCT p.project_id)       AS project_count
FROM funding_sources fs
LEFT JOIN project_funding_sources pfs ON pfs.funding_source_id = fs.funding_source_id
LEFT JOIN projects p ON p.project_id = pfs.project_id
`

// GetAllWithTotals lists funding sources ordered by name with derived totals.
func (r *FundingSourceRepository) GetAllWithTotals(ctx context.Context) ([]domain.FundingSource, error) {
	query := fundingSourceTotalsSelect + `
GROUP BY fs.funding_source_id, fs.name, fs.created_at, fs.updated_at
ORDER BY fs.name ASC;
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding sources: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FundingSource, 0, 16)
	for rows.Next() {
		fs, err := scanFundingSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDWithTotals returns one funding source with derived totals.
func (r *FundingSourceRepository) GetByIDWithTotals(ctx context.Context, id string) (*domain.FundingSource, error) {
	query := fundingSourceTotalsSelect + `
WHERE fs.funding_source_id = $1
GROUP BY fs.funding_source_id, fs.name, fs.created_at, fs.updated_at;
`
	fs, err := scanFundingSource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get funding source: %w", err)
	}
	return fs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFundingSource(row rowScanner) (*domain.FundingSource, error) {
	var fs domain.FundingSource
	err := row.Scan(
		&fs.ID, &fs.Name, &fs.CreatedAt, &fs.UpdatedAt,
		&fs.GrantAmount, &fs.LoanAmount, &fs.CoFinancing, &fs.TotalCost, &fs.ProjectCount,
	)
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

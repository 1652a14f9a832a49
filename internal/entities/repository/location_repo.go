package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

// LocationRepository reads the location reference table.
type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) GetAll(ctx context.Context) ([]domain.Location, error) {
	const q = `
SELECT location_id, name, region, district
FROM locations
ORDER BY region ASC, name ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Location, 0, 64)
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Region, &l.District); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

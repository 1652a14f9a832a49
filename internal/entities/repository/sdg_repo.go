package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

// SDGRepository stores the SDG alignment reference rows.
type SDGRepository struct {
	db *sql.DB
}

func NewSDGRepository(db *sql.DB) *SDGRepository {
	return &SDGRepository{db: db}
}

const sdgColumns = `sdg_id, sdg_number, title, created_at, updated_at`

func scanSDG(row rowScanner) (*domain.SDG, error) {
	var s domain.SDG
	if err := row.Scan(&s.ID, &s.Number, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SDGRepository) Add(ctx context.Context, number int, title string) (*domain.SDG, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrNameRequired
	}

	const q = `
INSERT INTO sdg_alignments (sdg_id, sdg_number, title)
VALUES ($1, $2, $3)
RETURNING ` + sdgColumns + `;
`
	s, err := scanSDG(r.db.QueryRowContext(ctx, q, uuid.New().String(), number, title))
	if err != nil {
		return nil, fmt.Errorf("failed to add sdg: %w", err)
	}
	return s, nil
}

// GetAll lists SDGs ordered by number, then title.
func (r *SDGRepository) GetAll(ctx context.Context) ([]domain.SDG, error) {
	const q = `
SELECT ` + sdgColumns + `
FROM sdg_alignments
ORDER BY sdg_number ASC, title ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list sdgs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SDG, 0, 17)
	for rows.Next() {
		s, err := scanSDG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SDGRepository) GetByID(ctx context.Context, id string) (*domain.SDG, error) {
	const q = `
SELECT ` + sdgColumns + `
FROM sdg_alignments
WHERE sdg_id = $1;
`
	s, err := scanSDG(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sdg: %w", err)
	}
	return s, nil
}

func (r *SDGRepository) Update(ctx context.Context, id string, number int, title string) (*domain.SDG, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrNameRequired
	}

	const q = `
UPDATE sdg_alignments
SET sdg_number = $2, title = $3, updated_at = NOW()
WHERE sdg_id = $1
RETURNING ` + sdgColumns + `;
`
	s, err := scanSDG(r.db.QueryRowContext(ctx, q, id, number, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update sdg: %w", err)
	}
	return s, nil
}

func (r *SDGRepository) Delete(ctx context.Context, id string) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_sdgs WHERE sdg_id = $1;`, id); err != nil {
			return fmt.Errorf("failed to delete sdg links: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM sdg_alignments WHERE sdg_id = $1;`, id)
		if err != nil {
			return fmt.Errorf("failed to delete sdg: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// FindOrCreate matches on the title case-insensitively.
func (r *SDGRepository) FindOrCreate(ctx context.Context, number int, title string) (*domain.SDG, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, false, domain.ErrNameRequired
	}

	const q = `
SELECT ` + sdgColumns + `
FROM sdg_alignments
WHERE LOWER(title) = LOWER($1)
ORDER BY created_at ASC
LIMIT 1;
`
	s, err := scanSDG(r.db.QueryRowContext(ctx, q, title))
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up sdg: %w", err)
	}

	s, err = r.Add(ctx, number, title)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

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

// NameRepository provides CRUD and find-or-create for one name-keyed table.
type NameRepository struct {
	db   *sql.DB
	kind Kind
}

// NewNameRepository creates a repository for the given entity kind
func NewNameRepository(db *sql.DB, kind Kind) *NameRepository {
	return &NameRepository{db: db, kind: kind}
}

func (r *NameRepository) Kind() Kind {
	return r.kind
}

func (r *NameRepository) columns() string {
	return fmt.Sprintf("%s, name, created_at, updated_at", r.kind.IDColumn)
}

// Add inserts a new row with a generated id.
func (r *NameRepository) Add(ctx context.Context, name string) (*domain.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	return r.insert(ctx, name)
}

func (r *NameRepository) insert(ctx context.Context, name string) (*domain.Entity, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (%s, name)
VALUES ($1, $2)
RETURNING %s;
`, r.kind.Table, r.kind.IDColumn, r.columns())

	var e domain.Entity
	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), name).
		Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", r.kind.Label, err)
	}
	return &e, nil
}

// GetAll returns every row ordered by name.
func (r *NameRepository) GetAll(ctx context.Context) ([]domain.Entity, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY name ASC;
`, r.columns(), r.kind.Table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.kind.Table, err)
	}
	defer rows.Close()

	out := make([]domain.Entity, 0, 16)
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NameRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE %s = $1;
`, r.columns(), r.kind.Table, r.kind.IDColumn)

	var e domain.Entity
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", r.kind.Label, err)
	}
	return &e, nil
}

func (r *NameRepository) Update(ctx context.Context, id, name string) (*domain.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	query := fmt.Sprintf(`
UPDATE %s
SET name = $2, updated_at = NOW()
WHERE %s = $1
RETURNING %s;
`, r.kind.Table, r.kind.IDColumn, r.columns())

	var e domain.Entity
	err := r.db.QueryRowContext(ctx, query, id, name).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind.Label, err)
	}
	return &e, nil
}

// Delete removes the join rows referencing the entity and then the entity
// itself, in one transaction.
func (r *NameRepository) Delete(ctx context.Context, id string) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, join := range r.kind.JoinTables {
			q := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1;`, join, r.kind.IDColumn)
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to delete %s links: %w", r.kind.Label, err)
			}
		}

		q := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1;`, r.kind.Table, r.kind.IDColumn)
		result, err := tx.ExecContext(ctx, q, id)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", r.kind.Label, err)
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

// FindOrCreate looks the name up case-insensitively and inserts it when absent.
// The returned flag reports whether a row was created.
func (r *NameRepository) FindOrCreate(ctx context.Context, name string) (*domain.Entity, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrNameRequired
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE LOWER(name) = LOWER($1)
ORDER BY created_at ASC
LIMIT 1;
`, r.columns(), r.kind.Table)

	var e domain.Entity
	err := r.db.QueryRowContext(ctx, query, name).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err == nil {
		return &e, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up %s: %w", r.kind.Label, err)
	}

	created, err := r.insert(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

// ProjectRepository provides persistence operations for the project aggregate:
// the project row, its WASH component and every relation kind.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project, its WASH component when present and one join
// row per linked id, in one transaction. It returns the generated id.
func (r *ProjectRepository) Create(ctx context.Context, in *domain.Input) (string, error) {
	id := uuid.New().String()

	err := postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := in.Validate(); err != nil {
			return err
		}
		if err := insertProject(ctx, tx, id, &in.Fields); err != nil {
			return err
		}
		if in.Wash != nil && in.Wash.Presence {
			if err := upsertWash(ctx, tx, id, in.Wash); err != nil {
				return err
			}
		}
		return insertRelations(ctx, tx, id, &in.Relations)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update rewrites the scalars, upserts the WASH component and replaces every
// relation kind with the submitted ids. An update without WASH data stores an
// absent component (presence false).
func (r *ProjectRepository) Update(ctx context.Context, id string, in *domain.Input) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := in.Validate(); err != nil {
			return err
		}

		query := fmt.Sprintf(`
UPDATE projects
SET %s, updated_at = NOW()
WHERE project_id = $1;
`, setClause(2))

		args := append([]any{id}, scalarArgs(&in.Fields)...)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}

		wash := in.Wash
		if wash == nil {
			wash = &domain.WashComponent{}
		}
		if err := upsertWash(ctx, tx, id, wash); err != nil {
			return err
		}
		return replaceRelations(ctx, tx, id, &in.Relations)
	})
}

// GetAll returns every project, newest first, with nested relations.
func (r *ProjectRepository) GetAll(ctx context.Context) ([]domain.Project, error) {
	query := fmt.Sprintf(`
SELECT p.project_id, %s, p.created_at, p.updated_at,
       w.presence, w.wash_percentage, w.description
FROM projects p
LEFT JOIN wash_components w ON w.project_id = p.project_id
ORDER BY p.created_at DESC;
`, selectColumns("p"))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Project, 0, 16)
	byID := make(map[string]*domain.Project)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := loadRelations(ctx, r.db, "", byID); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(out))
	for _, p := range out {
		emptyRefs(p)
		projects = append(projects, *p)
	}
	return projects, nil
}

// GetByID returns one project with its WASH component, nested relations and
// the raw id lists.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.ProjectDetail, error) {
	query := fmt.Sprintf(`
SELECT p.project_id, %s, p.created_at, p.updated_at,
       w.presence, w.wash_percentage, w.description
FROM projects p
LEFT JOIN wash_components w ON w.project_id = p.project_id
WHERE p.project_id = $1;
`, selectColumns("p"))

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := loadRelations(ctx, r.db, id, map[string]*domain.Project{id: p}); err != nil {
		return nil, err
	}
	emptyRefs(p)

	return &domain.ProjectDetail{Project: *p, RelationIDs: idsFromRefs(p)}, nil
}

// Delete removes the join rows, the WASH component and the project row in one
// transaction.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := deleteRelations(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wash_components WHERE project_id = $1;`, id); err != nil {
			return fmt.Errorf("failed to delete wash component: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1;`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
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

func insertProject(ctx context.Context, q postgres.DBTX, id string, f *domain.Fields) error {
	query := fmt.Sprintf(`
INSERT INTO projects (project_id, %s)
VALUES ($1, %s);
`, insertColumns(), placeholders(2, len(scalarColumns)))

	args := append([]any{id}, scalarArgs(f)...)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func upsertWash(ctx context.Context, q postgres.DBTX, projectID string, w *domain.WashComponent) error {
	const query = `
INSERT INTO wash_components (project_id, presence, wash_percentage, description)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id) DO UPDATE
SET presence = EXCLUDED.presence,
    wash_percentage = EXCLUDED.wash_percentage,
    description = EXCLUDED.description;
`
	if _, err := q.ExecContext(ctx, query, projectID, w.Presence, w.WashPercentage, nullString(w.Description)); err != nil {
		return fmt.Errorf("failed to save wash component: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p           domain.Project
		presence    sql.NullBool
		percentage  sql.NullFloat64
		description sql.NullString
	)

	dest := []any{&p.ID}
	dest = append(dest, scalarDest(&p.Fields)...)
	dest = append(dest, &p.CreatedAt, &p.UpdatedAt, &presence, &percentage, &description)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if presence.Valid {
		p.Wash = &domain.WashComponent{
			Presence:       presence.Bool,
			WashPercentage: percentage.Float64,
			Description:    description.String,
		}
	}
	return &p, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/utils"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

// PendingRepository stores public submissions until an admin approves or
// rejects them. Both transitions delete the pending row.
type PendingRepository struct {
	db *sql.DB
}

func NewPendingRepository(db *sql.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

func pendingArrayColumns() string {
	cols := make([]string, len(relations))
	for i, rel := range relations {
		cols[i] = rel.pendingColumn
	}
	return strings.Join(cols, ", ")
}

func pendingSelectColumns() string {
	return fmt.Sprintf("pending_project_id, %s, wash_component, %s, submitter_email, submitted_at",
		selectColumns("pending_projects"), pendingArrayColumns())
}

func pendingArrayArgs(ids *domain.RelationIDs) []any {
	args := make([]any, len(relations))
	for i, rel := range relations {
		list := *rel.ids(ids)
		if list == nil {
			list = []string{}
		}
		args[i] = pq.Array(list)
	}
	return args
}

func marshalWash(w *domain.WashComponent) (any, error) {
	if w == nil {
		return nil, nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wash component: %w", err)
	}
	return b, nil
}

// Submit inserts a pending project under a fresh "PND-xxxxx-xxxx" id,
// retrying when the id is already taken.
func (r *PendingRepository) Submit(ctx context.Context, in *domain.PendingInput) (*domain.PendingProject, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	wash, err := marshalWash(in.Wash)
	if err != nil {
		return nil, err
	}

	n := len(scalarColumns)
	query := fmt.Sprintf(`
INSERT INTO pending_projects (pending_project_id, %s, wash_component, %s, submitter_email)
VALUES ($1, %s, $%d, %s, $%d)
RETURNING %s;
`, insertColumns(), pendingArrayColumns(),
		placeholders(2, n), n+2, placeholders(n+3, len(relations)), n+3+len(relations),
		pendingSelectColumns())

	for i := 0; i < 5; i++ {
		id, err := utils.NewTextID(utils.PendingPrefix)
		if err != nil {
			return nil, err
		}

		args := []any{id}
		args = append(args, scalarArgs(&in.Fields)...)
		args = append(args, wash)
		args = append(args, pendingArrayArgs(&in.Relations)...)
		args = append(args, strings.TrimSpace(in.SubmitterEmail))

		p, err := scanPending(r.db.QueryRowContext(ctx, query, args...))
		if err == nil {
			return p, nil
		}

		// unique violation on pending_project_id → retry
		if postgres.IsUniqueViolation(err) {
			continue
		}
		return nil, fmt.Errorf("failed to submit project: %w", err)
	}

	return nil, fmt.Errorf("failed to generate unique pending project id")
}

// List returns every pending project, newest submission first.
func (r *PendingRepository) List(ctx context.Context) ([]domain.PendingProject, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM pending_projects
ORDER BY submitted_at DESC;
`, pendingSelectColumns())

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PendingProject, 0, 16)
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PendingRepository) GetByID(ctx context.Context, id string) (*domain.PendingProject, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM pending_projects
WHERE pending_project_id = $1;
`, pendingSelectColumns())

	p, err := scanPending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending project: %w", err)
	}
	return p, nil
}

// Update lets an admin correct a submission before approving it. The
// submitter fields are left untouched.
func (r *PendingRepository) Update(ctx context.Context, id string, in *domain.Input) (*domain.PendingProject, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	wash, err := marshalWash(in.Wash)
	if err != nil {
		return nil, err
	}

	n := len(scalarColumns)
	arraySets := make([]string, len(relations))
	for i, rel := range relations {
		arraySets[i] = fmt.Sprintf("%s = $%d", rel.pendingColumn, n+3+i)
	}

	query := fmt.Sprintf(`
UPDATE pending_projects
SET %s, wash_component = $%d, %s
WHERE pending_project_id = $1
RETURNING %s;
`, setClause(2), n+2, strings.Join(arraySets, ", "), pendingSelectColumns())

	args := []any{id}
	args = append(args, scalarArgs(&in.Fields)...)
	args = append(args, wash)
	args = append(args, pendingArrayArgs(&in.Relations)...)

	p, err := scanPending(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update pending project: %w", err)
	}
	return p, nil
}

// Approve promotes a pending row to a project. The row is claimed with
// DELETE ... RETURNING first so that a concurrent approve or reject of the
// same id finds nothing; any later failure rolls the claim back.
func (r *PendingRepository) Approve(ctx context.Context, id string) (string, error) {
	projectID := uuid.New().String()

	err := postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`
DELETE FROM pending_projects
WHERE pending_project_id = $1
RETURNING %s;
`, pendingSelectColumns())

		p, err := scanPending(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to claim pending project: %w", err)
		}

		if err := insertProject(ctx, tx, projectID, &p.Fields); err != nil {
			return err
		}
		if p.Wash != nil && p.Wash.Presence {
			if err := upsertWash(ctx, tx, projectID, p.Wash); err != nil {
				return err
			}
		}
		return insertRelations(ctx, tx, projectID, &p.RelationIDs)
	})
	if err != nil {
		return "", err
	}
	return projectID, nil
}

// Reject deletes the pending row. It returns the removed row, or nil when no
// row matched; the caller treats both as success.
func (r *PendingRepository) Reject(ctx context.Context, id string) (*domain.PendingProject, error) {
	query := fmt.Sprintf(`
DELETE FROM pending_projects
WHERE pending_project_id = $1
RETURNING %s;
`, pendingSelectColumns())

	p, err := scanPending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reject pending project: %w", err)
	}
	return p, nil
}

func scanPending(row rowScanner) (*domain.PendingProject, error) {
	var (
		p    domain.PendingProject
		wash []byte
	)

	dest := []any{&p.ID}
	dest = append(dest, scalarDest(&p.Fields)...)
	dest = append(dest, &wash)
	for _, rel := range relations {
		dest = append(dest, pq.Array(rel.ids(&p.RelationIDs)))
	}
	dest = append(dest, &p.SubmitterEmail, &p.SubmittedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if len(wash) > 0 && string(wash) != "null" {
		var w domain.WashComponent
		if err := json.Unmarshal(wash, &w); err != nil {
			return nil, fmt.Errorf("failed to decode wash component: %w", err)
		}
		p.Wash = &w
	}
	return &p, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/climate-finance-tracker/cft-backend/internal/documents/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

const pendingColumns = `document_id, category, heading, COALESCE(sub_heading, ''), COALESCE(agency, ''),
       COALESCE(document_size, ''), document_link, submitter_email, submitted_at`

// PendingRepository stores public document submissions until review.
type PendingRepository struct {
	db *sql.DB
}

func NewPendingRepository(db *sql.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

func (r *PendingRepository) Submit(ctx context.Context, meta domain.Metadata, file domain.File, email string) (*domain.PendingDocument, error) {
	query := fmt.Sprintf(`
INSERT INTO pending_document_repository
    (document_id, category, heading, sub_heading, agency, document_size, document_link, submitter_email)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING %s;
`, pendingColumns)

	d, err := scanPending(r.db.QueryRowContext(ctx, query,
		uuid.New().String(), meta.Category, meta.Heading, nullString(meta.SubHeading), nullString(meta.Agency),
		nullString(file.Size), file.Link, strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to submit document: %w", err)
	}
	return d, nil
}

func (r *PendingRepository) GetAll(ctx context.Context) ([]domain.PendingDocument, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM pending_document_repository
ORDER BY submitted_at DESC;
`, pendingColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PendingDocument, 0, 16)
	for rows.Next() {
		d, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PendingRepository) GetByID(ctx context.Context, id string) (*domain.PendingDocument, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM pending_document_repository
WHERE document_id = $1;
`, pendingColumns)

	d, err := scanPending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending document: %w", err)
	}
	return d, nil
}

// Approve claims the pending row and publishes it in one transaction, so a
// document is never both pending and published.
func (r *PendingRepository) Approve(ctx context.Context, id string) (*domain.Document, error) {
	var out *domain.Document

	err := postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		claim := fmt.Sprintf(`
DELETE FROM pending_document_repository
WHERE document_id = $1
RETURNING %s;
`, pendingColumns)

		p, err := scanPending(tx.QueryRowContext(ctx, claim, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to claim pending document: %w", err)
		}

		insert := fmt.Sprintf(`
INSERT INTO document_repository (document_id, category, heading, sub_heading, agency, document_size, document_link)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING %s;
`, documentColumns)

		d, err := scanDocument(tx.QueryRowContext(ctx, insert,
			uuid.New().String(), p.Category, p.Heading, nullString(p.SubHeading), nullString(p.Agency),
			nullString(p.DocumentSize), p.DocumentLink))
		if err != nil {
			return fmt.Errorf("failed to publish document: %w", err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject deletes the pending row, returning it or nil when nothing matched.
func (r *PendingRepository) Reject(ctx context.Context, id string) (*domain.PendingDocument, error) {
	query := fmt.Sprintf(`
DELETE FROM pending_document_repository
WHERE document_id = $1
RETURNING %s;
`, pendingColumns)

	d, err := scanPending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reject pending document: %w", err)
	}
	return d, nil
}

func scanPending(row rowScanner) (*domain.PendingDocument, error) {
	var d domain.PendingDocument
	err := row.Scan(&d.ID, &d.Category, &d.Heading, &d.SubHeading, &d.Agency,
		&d.DocumentSize, &d.DocumentLink, &d.SubmitterEmail, &d.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

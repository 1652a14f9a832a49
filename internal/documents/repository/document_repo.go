package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/climate-finance-tracker/cft-backend/internal/documents/domain"
)

const documentColumns = `document_id, category, heading, COALESCE(sub_heading, ''), COALESCE(agency, ''),
       COALESCE(document_size, ''), document_link, created_at`

// DocumentRepository persists published documents.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, meta domain.Metadata, file domain.File) (*domain.Document, error) {
	query := fmt.Sprintf(`
INSERT INTO document_repository (document_id, category, heading, sub_heading, agency, document_size, document_link)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING %s;
`, documentColumns)

	d, err := scanDocument(r.db.QueryRowContext(ctx, query,
		uuid.New().String(), meta.Category, meta.Heading, nullString(meta.SubHeading), nullString(meta.Agency),
		nullString(file.Size), file.Link))
	if err != nil {
		return nil, fmt.Errorf("failed to add document: %w", err)
	}
	return d, nil
}

// GetAll returns every document, newest first.
func (r *DocumentRepository) GetAll(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM document_repository
ORDER BY created_at DESC;
`, documentColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0, 16)
	for rows.Next() {
		d, err := scanDocument(rows)
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

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM document_repository
WHERE document_id = $1;
`, documentColumns)

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// Update rewrites the metadata. A nil file keeps the stored upload.
func (r *DocumentRepository) Update(ctx context.Context, id string, meta domain.Metadata, file *domain.File) (*domain.Document, error) {
	var link, size sql.NullString
	if file != nil {
		link = nullString(file.Link)
		size = nullString(file.Size)
	}

	query := fmt.Sprintf(`
UPDATE document_repository
SET category = $2, heading = $3, sub_heading = $4, agency = $5,
    document_size = COALESCE($6, document_size),
    document_link = COALESCE($7, document_link)
WHERE document_id = $1
RETURNING %s;
`, documentColumns)

	d, err := scanDocument(r.db.QueryRowContext(ctx, query,
		id, meta.Category, meta.Heading, nullString(meta.SubHeading), nullString(meta.Agency), size, link))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return d, nil
}

// Delete removes the row and returns it so the caller can drop the file.
func (r *DocumentRepository) Delete(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`
DELETE FROM document_repository
WHERE document_id = $1
RETURNING %s;
`, documentColumns)

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.Category, &d.Heading, &d.SubHeading, &d.Agency,
		&d.DocumentSize, &d.DocumentLink, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

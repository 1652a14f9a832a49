package uploads

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// ReferenceLister reports every stored filename a database row still points at.
type ReferenceLister interface {
	StoredNames(ctx context.Context) (map[string]struct{}, error)
}

// SQLReferences looks up the files referenced by projects, documents and
// their pending counterparts.
type SQLReferences struct {
	db *sql.DB
}

func NewSQLReferences(db *sql.DB) *SQLReferences {
	return &SQLReferences{db: db}
}

func (r *SQLReferences) StoredNames(ctx context.Context) (map[string]struct{}, error) {
	const q = `
SELECT supporting_document FROM projects WHERE supporting_document <> ''
UNION
SELECT supporting_document FROM pending_projects WHERE supporting_document <> ''
UNION
SELECT document_link FROM document_repository
UNION
SELECT document_link FROM pending_document_repository;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced files: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

// IsReferenced reports whether any row still points at name.
func (r *SQLReferences) IsReferenced(ctx context.Context, name string) (bool, error) {
	const q = `
SELECT EXISTS (SELECT 1 FROM projects WHERE supporting_document = $1)
    OR EXISTS (SELECT 1 FROM pending_projects WHERE supporting_document = $1)
    OR EXISTS (SELECT 1 FROM document_repository WHERE document_link = $1)
    OR EXISTS (SELECT 1 FROM pending_document_repository WHERE document_link = $1);
`
	var found bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check references of %s: %w", name, err)
	}
	return found, nil
}

// Sweeper removes uploaded files that no row references any more, such as
// files left behind when a request failed after the upload was written.
type Sweeper struct {
	store  *Store
	refs   ReferenceLister
	grace  time.Duration
	logger *slog.Logger
}

// NewSweeper leaves files younger than grace alone so an in-flight request can
// still commit the row that points at its upload.
func NewSweeper(store *Store, refs ReferenceLister, grace time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, refs: refs, grace: grace, logger: logger}
}

func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	referenced, err := s.refs.StoredNames(ctx)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := s.store.now().Add(-s.grace)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := referenced[e.Name()]; ok {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.store.Remove(e.Name()); err != nil {
			s.logger.Warn("failed to remove orphaned upload", "file", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Schedule runs Sweep on a six-field cron spec (seconds first). The returned
// scheduler must be stopped on shutdown.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			s.logger.Error("upload sweep failed", "error", err)
			return
		}
		s.logger.Info("upload sweep completed", "removed", n)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule upload sweep: %w", err)
	}
	c.Start()
	return c, nil
}

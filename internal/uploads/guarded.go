package uploads

import (
	"context"
	"mime/multipart"
	"time"
)

const referenceCheckTimeout = 5 * time.Second

// ReferenceChecker reports whether a stored file is still pointed at by a row.
type ReferenceChecker interface {
	IsReferenced(ctx context.Context, name string) (bool, error)
}

// GuardedStore removes a file only once no row references it, so a shared or
// re-linked file outlives the row that is being deleted.
type GuardedStore struct {
	*Store
	refs ReferenceChecker
}

func NewGuardedStore(store *Store, refs ReferenceChecker) *GuardedStore {
	return &GuardedStore{Store: store, refs: refs}
}

func (g *GuardedStore) SavePDF(fh *multipart.FileHeader) (*SavedFile, error) {
	return g.Store.SavePDF(fh)
}

// Remove keeps the file when it is still referenced or when the check fails.
func (g *GuardedStore) Remove(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), referenceCheckTimeout)
	defer cancel()

	used, err := g.refs.IsReferenced(ctx, name)
	if err != nil {
		return err
	}
	if used {
		return nil
	}
	return g.Store.Remove(name)
}

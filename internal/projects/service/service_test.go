package service

import (
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climate-finance-tracker/cft-backend/internal/logging"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/testutil"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

type fakeFiles struct {
	saveErr error
	saved   []string
	removed []string
}

func (f *fakeFiles) SavePDF(fh *multipart.FileHeader) (*uploads.SavedFile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	name := "1700000000000-" + fh.Filename
	f.saved = append(f.saved, name)
	return &uploads.SavedFile{Name: name, Size: fh.Size}, nil
}

func (f *fakeFiles) Remove(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

// failingStore wraps the in-memory store and fails every Create and Update.
type failingStore struct {
	*testutil.MemStore
}

func (failingStore) Create(context.Context, *domain.Input) (string, error) {
	return "", errors.New("insert failed")
}

func (failingStore) Update(context.Context, string, *domain.Input) error {
	return errors.New("update failed")
}

func validInput() *domain.Input {
	return &domain.Input{Fields: domain.Fields{Title: "Flood Resilience", Status: "Active", ApprovalFY: "2024"}}
}

func TestProjectService_CreateAttachesDocument(t *testing.T) {
	store := testutil.NewMemStore()
	files := &fakeFiles{}
	svc := NewProjectService(store, files, logging.Discard())
	ctx := context.Background()

	id, err := svc.Create(ctx, validInput(), &multipart.FileHeader{Filename: "plan.pdf", Size: 10})
	require.NoError(t, err)

	p, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-plan.pdf", p.SupportingDocument)
	assert.Empty(t, files.removed)
}

func TestProjectService_CreateRemovesFileOnFailure(t *testing.T) {
	files := &fakeFiles{}
	svc := NewProjectService(failingStore{testutil.NewMemStore()}, files, logging.Discard())

	_, err := svc.Create(context.Background(), validInput(), &multipart.FileHeader{Filename: "plan.pdf"})
	require.Error(t, err)
	assert.Equal(t, []string{"1700000000000-plan.pdf"}, files.removed)
}

func TestProjectService_CreateRejectsNonPDF(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewProjectService(store, &fakeFiles{saveErr: uploads.ErrNotPDF}, logging.Discard())

	_, err := svc.Create(context.Background(), validInput(), &multipart.FileHeader{Filename: "plan.docx"})
	assert.ErrorIs(t, err, uploads.ErrNotPDF)

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProjectService_UpdateReplacesDocument(t *testing.T) {
	store := testutil.NewMemStore()
	files := &fakeFiles{}
	svc := NewProjectService(store, files, logging.Discard())
	ctx := context.Background()

	in := validInput()
	in.SupportingDocument = "1600000000000-old.pdf"
	id, err := store.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, validInput(), &multipart.FileHeader{Filename: "new.pdf"}))

	p, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-new.pdf", p.SupportingDocument)
	assert.Equal(t, []string{"1600000000000-old.pdf"}, files.removed)
}

func TestProjectService_UpdateWithoutFileKeepsDocument(t *testing.T) {
	store := testutil.NewMemStore()
	files := &fakeFiles{}
	svc := NewProjectService(store, files, logging.Discard())
	ctx := context.Background()

	in := validInput()
	in.SupportingDocument = "1600000000000-old.pdf"
	id, err := store.Create(ctx, in)
	require.NoError(t, err)

	edit := validInput()
	edit.SupportingDocument = "1500000000000-someone-else.pdf"
	require.NoError(t, svc.Update(ctx, id, edit, nil))

	p, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1600000000000-old.pdf", p.SupportingDocument)
	assert.Empty(t, files.removed)
}

func TestProjectService_UpdateUnknownProject(t *testing.T) {
	svc := NewProjectService(testutil.NewMemStore(), &fakeFiles{}, logging.Discard())

	err := svc.Update(context.Background(), "missing", validInput(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_DeleteRemovesDocument(t *testing.T) {
	store := testutil.NewMemStore()
	files := &fakeFiles{}
	svc := NewProjectService(store, files, logging.Discard())
	ctx := context.Background()

	in := validInput()
	in.SupportingDocument = "1600000000000-old.pdf"
	id, err := store.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	assert.Equal(t, []string{"1600000000000-old.pdf"}, files.removed)
	assert.ErrorIs(t, svc.Delete(ctx, id), domain.ErrNotFound)
}

func pendingInput() *domain.PendingInput {
	return &domain.PendingInput{Input: *validInput(), SubmitterEmail: "citizen@example.org"}
}

func TestPendingService_SubmitRespectsFlag(t *testing.T) {
	store := testutil.NewMemStore()
	disabled := NewPendingService(store.Pending(), &fakeFiles{}, false, logging.Discard())

	_, err := disabled.Submit(context.Background(), pendingInput(), nil)
	assert.ErrorIs(t, err, domain.ErrSubmissionsDisabled)

	enabled := NewPendingService(store.Pending(), &fakeFiles{}, true, logging.Discard())
	p, err := enabled.Submit(context.Background(), pendingInput(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
}

func TestPendingService_ApproveMovesRow(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewPendingService(store.Pending(), &fakeFiles{}, true, logging.Discard())
	ctx := context.Background()

	in := pendingInput()
	in.Relations.AgencyIDs = []string{"a1"}
	p, err := svc.Submit(ctx, in, nil)
	require.NoError(t, err)

	projectID, err := svc.Approve(ctx, p.ID)
	require.NoError(t, err)

	pending, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	project, err := store.GetByID(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, project.AgencyIDs)

	_, err = svc.Approve(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingService_ApproveFailureKeepsPendingRow(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewPendingService(store.Pending(), &fakeFiles{}, true, logging.Discard())
	ctx := context.Background()

	p, err := svc.Submit(ctx, pendingInput(), nil)
	require.NoError(t, err)

	store.ApproveErr = errors.New("insert failed")
	_, err = svc.Approve(ctx, p.ID)
	require.Error(t, err)

	_, err = svc.GetByID(ctx, p.ID)
	assert.NoError(t, err)
	projects, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestPendingService_RejectIsIdempotent(t *testing.T) {
	store := testutil.NewMemStore()
	files := &fakeFiles{}
	svc := NewPendingService(store.Pending(), files, true, logging.Discard())
	ctx := context.Background()

	p, err := svc.Submit(ctx, pendingInput(), &multipart.FileHeader{Filename: "evidence.pdf"})
	require.NoError(t, err)

	removed, err := svc.Reject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"1700000000000-evidence.pdf"}, files.removed)

	removed, err = svc.Reject(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

// writeUpload puts a stored file in dir the way SavePDF would have.
func writeUpload(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o644))
	return path
}

func TestPendingService_RejectKeepsForeignDocument(t *testing.T) {
	disk, err := uploads.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	store := testutil.NewMemStore()
	ctx := context.Background()

	const owned = "1600000000000-budget.pdf"
	path := writeUpload(t, disk.Dir(), owned)
	in := validInput()
	in.SupportingDocument = owned
	_, err = store.Create(ctx, in)
	require.NoError(t, err)

	svc := NewPendingService(store.Pending(), disk, true, logging.Discard())
	sub := pendingInput()
	sub.SupportingDocument = owned
	p, err := svc.Submit(ctx, sub, nil)
	require.NoError(t, err)
	assert.Empty(t, p.SupportingDocument)

	removed, err := svc.Reject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.FileExists(t, path)
}

func TestPendingService_RejectKeepsSharedDocument(t *testing.T) {
	disk, err := uploads.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	store := testutil.NewMemStore()
	files := uploads.NewGuardedStore(disk, store)
	ctx := context.Background()

	const shared = "1600000000000-budget.pdf"
	path := writeUpload(t, disk.Dir(), shared)
	in := validInput()
	in.SupportingDocument = shared
	_, err = store.Create(ctx, in)
	require.NoError(t, err)

	// A pending row written straight to storage can still carry the name.
	sub := pendingInput()
	sub.SupportingDocument = shared
	p, err := store.Submit(ctx, sub)
	require.NoError(t, err)

	svc := NewPendingService(store.Pending(), files, true, logging.Discard())
	removed, err := svc.Reject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.FileExists(t, path)
}

func TestPendingService_RejectRemovesOwnDocument(t *testing.T) {
	disk, err := uploads.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	store := testutil.NewMemStore()
	files := uploads.NewGuardedStore(disk, store)
	ctx := context.Background()

	const own = "1600000000000-evidence.pdf"
	path := writeUpload(t, disk.Dir(), own)
	sub := pendingInput()
	sub.SupportingDocument = own
	p, err := store.Submit(ctx, sub)
	require.NoError(t, err)

	svc := NewPendingService(store.Pending(), files, true, logging.Discard())
	_, err = svc.Reject(ctx, p.ID)
	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

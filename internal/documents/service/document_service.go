package service

import (
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/climate-finance-tracker/cft-backend/internal/documents/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/metrics"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

type DocumentStore interface {
	Create(ctx context.Context, meta domain.Metadata, file domain.File) (*domain.Document, error)
	GetAll(ctx context.Context) ([]domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, id string, meta domain.Metadata, file *domain.File) (*domain.Document, error)
	Delete(ctx context.Context, id string) (*domain.Document, error)
}

type PendingStore interface {
	Submit(ctx context.Context, meta domain.Metadata, file domain.File, email string) (*domain.PendingDocument, error)
	GetAll(ctx context.Context) ([]domain.PendingDocument, error)
	GetByID(ctx context.Context, id string) (*domain.PendingDocument, error)
	Approve(ctx context.Context, id string) (*domain.Document, error)
	Reject(ctx context.Context, id string) (*domain.PendingDocument, error)
}

type FileStore interface {
	SavePDF(fh *multipart.FileHeader) (*uploads.SavedFile, error)
	Remove(name string) error
}

// DocumentService couples document rows with their stored PDFs.
type DocumentService struct {
	docs    DocumentStore
	pending PendingStore
	files   FileStore
	enabled bool
	logger  *slog.Logger
}

func NewDocumentService(docs DocumentStore, pending PendingStore, files FileStore, submissions bool, logger *slog.Logger) *DocumentService {
	return &DocumentService{docs: docs, pending: pending, files: files, enabled: submissions, logger: logger}
}

func (s *DocumentService) Create(ctx context.Context, meta domain.Metadata, fh *multipart.FileHeader) (*domain.Document, error) {
	file, err := s.save(fh)
	if err != nil {
		return nil, err
	}

	d, err := s.docs.Create(ctx, meta, *file)
	if err != nil {
		s.removeFile(file.Link)
		return nil, err
	}
	s.logger.Info("document added", "document_id", d.ID, "file", d.DocumentLink)
	return d, nil
}

func (s *DocumentService) GetAll(ctx context.Context) ([]domain.Document, error) {
	return s.docs.GetAll(ctx)
}

func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// Update rewrites the metadata and, when fh is set, swaps the stored PDF.
func (s *DocumentService) Update(ctx context.Context, id string, meta domain.Metadata, fh *multipart.FileHeader) (*domain.Document, error) {
	if fh == nil {
		return s.docs.Update(ctx, id, meta, nil)
	}

	current, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.save(fh)
	if err != nil {
		return nil, err
	}

	d, err := s.docs.Update(ctx, id, meta, file)
	if err != nil {
		s.removeFile(file.Link)
		return nil, err
	}
	if current.DocumentLink != "" && current.DocumentLink != file.Link {
		s.removeFile(current.DocumentLink)
	}
	return d, nil
}

// Delete removes the row first, then the file on a best effort basis.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	d, err := s.docs.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeFile(d.DocumentLink)
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// Submit stores a public submission for review.
func (s *DocumentService) Submit(ctx context.Context, meta domain.Metadata, email string, fh *multipart.FileHeader) (*domain.PendingDocument, error) {
	if !s.enabled {
		return nil, domain.ErrSubmissionsDisabled
	}
	file, err := s.save(fh)
	if err != nil {
		return nil, err
	}

	d, err := s.pending.Submit(ctx, meta, *file, email)
	if err != nil {
		s.removeFile(file.Link)
		return nil, err
	}

	metrics.Submissions.WithLabelValues("document").Inc()
	s.logger.Info("document submitted", "document_id", d.ID, "submitter", d.SubmitterEmail)
	return d, nil
}

func (s *DocumentService) ListPending(ctx context.Context) ([]domain.PendingDocument, error) {
	return s.pending.GetAll(ctx)
}

func (s *DocumentService) GetPending(ctx context.Context, id string) (*domain.PendingDocument, error) {
	return s.pending.GetByID(ctx, id)
}

// Approve publishes a pending document. The stored PDF is reused as is.
func (s *DocumentService) Approve(ctx context.Context, id string) (*domain.Document, error) {
	d, err := s.pending.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.WorkflowTransitions.WithLabelValues("document", "approved").Inc()
	s.logger.Info("pending document approved", "pending_id", id, "document_id", d.ID)
	return d, nil
}

// Reject drops a pending document and its file. Unknown ids report
// removed=false.
func (s *DocumentService) Reject(ctx context.Context, id string) (bool, error) {
	d, err := s.pending.Reject(ctx, id)
	if err != nil {
		return false, err
	}
	if d == nil {
		s.logger.Info("pending document reject was a no-op", "pending_id", id, "removed", false)
		return false, nil
	}

	s.removeFile(d.DocumentLink)
	metrics.WorkflowTransitions.WithLabelValues("document", "rejected").Inc()
	s.logger.Info("pending document rejected", "pending_id", id, "removed", true)
	return true, nil
}

func (s *DocumentService) save(fh *multipart.FileHeader) (*domain.File, error) {
	if fh == nil {
		return nil, domain.ErrFileRequired
	}
	saved, err := s.files.SavePDF(fh)
	if err != nil {
		return nil, err
	}
	return &domain.File{Link: saved.Name, Size: uploads.FormatSize(saved.Size)}, nil
}

func (s *DocumentService) removeFile(name string) {
	if name == "" {
		return
	}
	if err := s.files.Remove(name); err != nil {
		s.logger.Warn("failed to remove document file", "file", name, "error", err)
	}
}

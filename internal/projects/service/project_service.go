package service

import (
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

// ProjectStore is the persistence contract of the project aggregate.
type ProjectStore interface {
	Create(ctx context.Context, in *domain.Input) (string, error)
	Update(ctx context.Context, id string, in *domain.Input) error
	GetAll(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.ProjectDetail, error)
	Delete(ctx context.Context, id string) error
}

// FileStore keeps supporting documents on disk.
type FileStore interface {
	SavePDF(fh *multipart.FileHeader) (*uploads.SavedFile, error)
	Remove(name string) error
}

// ProjectService handles project writes that carry an optional supporting
// document.
type ProjectService struct {
	store  ProjectStore
	files  FileStore
	logger *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(store ProjectStore, files FileStore, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, files: files, logger: logger}
}

// Create saves the uploaded PDF first, then the project. The file is removed
// again when the project cannot be stored.
func (s *ProjectService) Create(ctx context.Context, in *domain.Input, file *multipart.FileHeader) (string, error) {
	in.SupportingDocument = ""
	saved, err := s.attach(in, file)
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, in)
	if err != nil {
		s.discard(saved)
		return "", err
	}

	s.logger.Info("project created", "project_id", id, "title", in.Title)
	return id, nil
}

// Update replaces the project. The stored document is kept unless a new
// upload supersedes it, in which case the old file is removed once the update
// commits.
func (s *ProjectService) Update(ctx context.Context, id string, in *domain.Input, file *multipart.FileHeader) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	previous := current.SupportingDocument
	in.SupportingDocument = previous

	saved, err := s.attach(in, file)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, in); err != nil {
		s.discard(saved)
		return err
	}

	if saved != nil && previous != "" && previous != saved.Name {
		s.discard(&uploads.SavedFile{Name: previous})
	}
	s.logger.Info("project updated", "project_id", id)
	return nil
}

func (s *ProjectService) GetAll(ctx context.Context) ([]domain.Project, error) {
	return s.store.GetAll(ctx)
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*domain.ProjectDetail, error) {
	return s.store.GetByID(ctx, id)
}

// Delete removes the project and, best effort, its supporting document.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if doc := current.SupportingDocument; doc != "" {
		s.discard(&uploads.SavedFile{Name: doc})
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// attach stores file and points the input at it. A nil file leaves the input
// untouched. Document names only ever come from here or from the stored row.
func (s *ProjectService) attach(in *domain.Input, file *multipart.FileHeader) (*uploads.SavedFile, error) {
	if file == nil {
		return nil, nil
	}
	saved, err := s.files.SavePDF(file)
	if err != nil {
		return nil, err
	}
	in.SupportingDocument = saved.Name
	return saved, nil
}

func (s *ProjectService) discard(f *uploads.SavedFile) {
	if f == nil {
		return
	}
	if err := s.files.Remove(f.Name); err != nil {
		s.logger.Warn("failed to remove supporting document", "file", f.Name, "error", err)
	}
}

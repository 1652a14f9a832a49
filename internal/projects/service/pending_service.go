package service

import (
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/climate-finance-tracker/cft-backend/internal/metrics"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

type PendingStore interface {
	Submit(ctx context.Context, in *domain.PendingInput) (*domain.PendingProject, error)
	List(ctx context.Context) ([]domain.PendingProject, error)
	GetByID(ctx context.Context, id string) (*domain.PendingProject, error)
	Update(ctx context.Context, id string, in *domain.Input) (*domain.PendingProject, error)
	Approve(ctx context.Context, id string) (string, error)
	Reject(ctx context.Context, id string) (*domain.PendingProject, error)
}

// PendingService runs the submitted → approved | rejected workflow.
type PendingService struct {
	store   PendingStore
	files   FileStore
	enabled bool
	logger  *slog.Logger
}

// NewPendingService wires the workflow. enabled gates public submissions.
func NewPendingService(store PendingStore, files FileStore, enabled bool, logger *slog.Logger) *PendingService {
	return &PendingService{store: store, files: files, enabled: enabled, logger: logger}
}

// Submit stores a public submission. It fails with ErrSubmissionsDisabled
// when submissions are switched off.
func (s *PendingService) Submit(ctx context.Context, in *domain.PendingInput, file *multipart.FileHeader) (*domain.PendingProject, error) {
	if !s.enabled {
		return nil, domain.ErrSubmissionsDisabled
	}

	in.SupportingDocument = ""
	var saved *uploads.SavedFile
	if file != nil {
		var err error
		if saved, err = s.files.SavePDF(file); err != nil {
			return nil, err
		}
		in.SupportingDocument = saved.Name
	}

	p, err := s.store.Submit(ctx, in)
	if err != nil {
		if saved != nil {
			s.removeFile(saved.Name)
		}
		return nil, err
	}

	metrics.Submissions.WithLabelValues("project").Inc()
	s.logger.Info("project submitted", "pending_project_id", p.ID, "submitter", p.SubmitterEmail)
	return p, nil
}

func (s *PendingService) List(ctx context.Context) ([]domain.PendingProject, error) {
	return s.store.List(ctx)
}

func (s *PendingService) GetByID(ctx context.Context, id string) (*domain.PendingProject, error) {
	return s.store.GetByID(ctx, id)
}

// Update edits the submission's fields. The submitted document stays attached.
func (s *PendingService) Update(ctx context.Context, id string, in *domain.Input) (*domain.PendingProject, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.SupportingDocument = current.SupportingDocument
	return s.store.Update(ctx, id, in)
}

// Approve promotes the submission and returns the new project id.
func (s *PendingService) Approve(ctx context.Context, id string) (string, error) {
	projectID, err := s.store.Approve(ctx, id)
	if err != nil {
		s.logger.Warn("pending project approval failed", "pending_project_id", id, "error", err)
		return "", err
	}

	metrics.WorkflowTransitions.WithLabelValues("project", "approved").Inc()
	s.logger.Info("pending project approved", "pending_project_id", id, "project_id", projectID)
	return projectID, nil
}

// Reject deletes the submission. Rejecting an id that no longer exists
// succeeds and reports removed=false.
func (s *PendingService) Reject(ctx context.Context, id string) (bool, error) {
	p, err := s.store.Reject(ctx, id)
	if err != nil {
		return false, err
	}
	if p == nil {
		s.logger.Info("pending project reject was a no-op", "pending_project_id", id, "removed", false)
		return false, nil
	}

	if p.SupportingDocument != "" {
		s.removeFile(p.SupportingDocument)
	}
	metrics.WorkflowTransitions.WithLabelValues("project", "rejected").Inc()
	s.logger.Info("pending project rejected", "pending_project_id", id, "removed", true)
	return true, nil
}

func (s *PendingService) removeFile(name string) {
	if err := s.files.Remove(name); err != nil {
		s.logger.Warn("failed to remove supporting document", "file", name, "error", err)
	}
}

// Package testutil holds test doubles for the project packages. Nothing
// outside _test.go files imports it.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

type MemStore struct {
	mu       sync.Mutex
	seq      int
	projects map[string]*domain.ProjectDetail
	order    []string
	pending  map[string]*domain.PendingProject
	pOrder   []string

	// Names resolves relation ids to display names.
	Names map[string]string
	// ApproveErr, when set, makes Approve fail without side effects.
	ApproveErr error
}

// NewMemStore returns an empty in-memory project and pending-project store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects: make(map[string]*domain.ProjectDetail),
		pending:  make(map[string]*domain.PendingProject),
		Names:    make(map[string]string),
	}
}

func (s *MemStore) Create(_ context.Context, in *domain.Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("p%d", s.seq)
	s.projects[id] = s.detail(id, in)
	s.order = append([]string{id}, s.order...)
	return id, nil
}

func (s *MemStore) Update(_ context.Context, id string, in *domain.Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := s.detail(id, in)
	next.CreatedAt = current.CreatedAt
	if next.Wash == nil {
		next.Wash = &domain.WashComponent{}
	}
	s.projects[id] = next
	return nil
}

func (s *MemStore) GetAll(context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.projects[id].Project)
	}
	return out, nil
}

func (s *MemStore) GetByID(_ context.Context, id string) (*domain.ProjectDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	s.order = remove(s.order, id)
	return nil
}

func (s *MemStore) Submit(_ context.Context, in *domain.PendingInput) (*domain.PendingProject, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	p := &domain.PendingProject{
		ID:             fmt.Sprintf("PND-%05d-0000", s.seq),
		Fields:         in.Fields,
		Wash:           in.Wash,
		RelationIDs:    in.Relations,
		SubmitterEmail: in.SubmitterEmail,
		SubmittedAt:    time.Now(),
	}
	s.pending[p.ID] = p
	s.pOrder = append([]string{p.ID}, s.pOrder...)
	cp := *p
	return &cp, nil
}

func (s *MemStore) List(context.Context) ([]domain.PendingProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PendingProject, 0, len(s.pOrder))
	for _, id := range s.pOrder {
		out = append(out, *s.pending[id])
	}
	return out, nil
}

func (s *MemStore) GetPending(_ context.Context, id string) (*domain.PendingProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) UpdatePending(_ context.Context, id string, in *domain.Input) (*domain.PendingProject, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Fields = in.Fields
	p.Wash = in.Wash
	p.RelationIDs = in.Relations
	cp := *p
	return &cp, nil
}

func (s *MemStore) Approve(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	if s.ApproveErr != nil {
		return "", s.ApproveErr
	}

	s.seq++
	projectID := fmt.Sprintf("p%d", s.seq)
	wash := p.Wash
	if wash != nil && !wash.Presence {
		wash = nil
	}
	s.projects[projectID] = s.detail(projectID, &domain.Input{Fields: p.Fields, Wash: wash, Relations: p.RelationIDs})
	s.order = append([]string{projectID}, s.order...)

	delete(s.pending, id)
	s.pOrder = remove(s.pOrder, id)
	return projectID, nil
}

func (s *MemStore) Reject(_ context.Context, id string) (*domain.PendingProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return nil, nil
	}
	delete(s.pending, id)
	s.pOrder = remove(s.pOrder, id)
	return p, nil
}

// IsReferenced reports whether any project or pending row points at name.
func (s *MemStore) IsReferenced(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.SupportingDocument == name {
			return true, nil
		}
	}
	for _, p := range s.pending {
		if p.SupportingDocument == name {
			return true, nil
		}
	}
	return false, nil
}

// Pending adapts the store to the pending-project contract, whose GetByID
// and Update differ from the project ones.
func (s *MemStore) Pending() *PendingView {
	return &PendingView{s: s}
}

type PendingView struct {
	s *MemStore
}

func (v *PendingView) Submit(ctx context.Context, in *domain.PendingInput) (*domain.PendingProject, error) {
	return v.s.Submit(ctx, in)
}

func (v *PendingView) List(ctx context.Context) ([]domain.PendingProject, error) {
	return v.s.List(ctx)
}

func (v *PendingView) GetByID(ctx context.Context, id string) (*domain.PendingProject, error) {
	return v.s.GetPending(ctx, id)
}

func (v *PendingView) Update(ctx context.Context, id string, in *domain.Input) (*domain.PendingProject, error) {
	return v.s.UpdatePending(ctx, id, in)
}

func (v *PendingView) Approve(ctx context.Context, id string) (string, error) {
	return v.s.Approve(ctx, id)
}

func (v *PendingView) Reject(ctx context.Context, id string) (*domain.PendingProject, error) {
	return v.s.Reject(ctx, id)
}

func (s *MemStore) detail(id string, in *domain.Input) *domain.ProjectDetail {
	now := time.Now()
	d := &domain.ProjectDetail{
		Project: domain.Project{
			ID:                   id,
			Fields:               in.Fields,
			Agencies:             s.refs(in.Relations.AgencyIDs),
			ExecutingAgencies:    s.refs(in.Relations.ExecutingAgencyIDs),
			ImplementingEntities: s.refs(in.Relations.ImplementingEntityIDs),
			DeliveryPartners:     s.refs(in.Relations.DeliveryPartnerIDs),
			FundingSources:       s.refs(in.Relations.FundingSourceIDs),
			SDGs:                 s.refs(in.Relations.SDGIDs),
			Locations:            s.refs(in.Relations.LocationIDs),
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		RelationIDs: in.Relations,
	}
	if in.Wash != nil {
		w := *in.Wash
		d.Wash = &w
	}
	return d
}

func (s *MemStore) refs(ids []string) []domain.Ref {
	out := make([]domain.Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Ref{ID: id, Name: s.Names[id]})
	}
	return out
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

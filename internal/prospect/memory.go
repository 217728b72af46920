package prospect

import (
	"context"
	"sort"
	"sync"

	"github.com/lumina/partnerdesk/internal/domain"
)

// MemoryStore keeps jobs in a process-local map. Contents are lost on
// restart and invisible to other instances.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ProspectJob
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*domain.ProspectJob)}
}

func (m *MemoryStore) Create(_ context.Context, job *domain.ProspectJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.ProspectJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, u JobUpdate) (*domain.ProspectJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	applyUpdate(job, u)
	cp := *job
	return &cp, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string, activeOnly bool) ([]domain.ProspectJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ProspectJob
	for _, job := range m.jobs {
		if job.OwnerID != ownerID {
			continue
		}
		if activeOnly && !job.Status.IsActive() {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

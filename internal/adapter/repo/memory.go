package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shotforge/internal/domain"
)

// MemorySubjectStore is an in-memory SubjectProvider for local runs and
// tests. Subjects are seeded up front via Put.
type MemorySubjectStore struct {
	mu       sync.RWMutex
	subjects map[string]domain.Subject
}

// NewMemorySubjectStore creates an empty subject store.
func NewMemorySubjectStore() *MemorySubjectStore {
	return &MemorySubjectStore{subjects: make(map[string]domain.Subject)}
}

// Put registers or replaces a subject.
func (s *MemorySubjectStore) Put(subj domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subj.ID] = subj
}

// GetSubject returns a copy of the stored subject or domain.ErrNotFound.
func (s *MemorySubjectStore) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subj, ok := s.subjects[id]
	if !ok {
		return nil, fmt.Errorf("subject %q: %w", id, domain.ErrNotFound)
	}
	subj.Traits = append([]string(nil), subj.Traits...)
	return &subj, nil
}

// MemoryImageRepository is an in-memory ImageRepository.
type MemoryImageRepository struct {
	mu     sync.RWMutex
	images []domain.GeneratedImage
}

// NewMemoryImageRepository creates an empty image pool.
func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{}
}

// SaveAll appends the job's images to the pool.
func (r *MemoryImageRepository) SaveAll(ctx context.Context, jobID string, images []domain.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, images...)
	return nil
}

// ListBySubject returns the subject's pool, newest first.
func (r *MemoryImageRepository) ListBySubject(ctx context.Context, subjectID string) ([]domain.GeneratedImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.GeneratedImage
	for _, img := range r.images {
		if img.SubjectID == subjectID {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryJobArchive keeps archived jobs in memory.
type MemoryJobArchive struct {
	mu   sync.RWMutex
	jobs map[string]domain.GenerationJob
}

// NewMemoryJobArchive creates an empty archive.
func NewMemoryJobArchive() *MemoryJobArchive {
	return &MemoryJobArchive{jobs: make(map[string]domain.GenerationJob)}
}

// Save stores a terminal job snapshot.
func (a *MemoryJobArchive) Save(ctx context.Context, job *domain.GenerationJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jobs[job.JobID] = *job
	return nil
}

// Get returns an archived job, if present.
func (a *MemoryJobArchive) Get(jobID string) (domain.GenerationJob, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	job, ok := a.jobs[jobID]
	return job, ok
}

var (
	_ domain.SubjectProvider = (*MemorySubjectStore)(nil)
	_ domain.ImageRepository = (*MemoryImageRepository)(nil)
	_ domain.JobArchive      = (*MemoryJobArchive)(nil)
)

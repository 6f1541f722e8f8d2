package orchestrator

import (
	"sort"
	"sync"
	"time"

	"shotforge/internal/domain"
)

// jobStore is the in-memory system of record for live jobs. The orchestrator
// is the only writer; readers always receive defensive snapshots so polling
// can never observe a job mid-update.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.GenerationJob
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*domain.GenerationJob)}
}

func (s *jobStore) put(job *domain.GenerationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
}

// get returns a snapshot copy of the job.
func (s *jobStore) get(jobID string) (*domain.GenerationJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	snap := snapshot(job)
	return &snap, true
}

// setProcessing transitions pending → processing and seeds the progress
// total. It is a no-op for any other state.
func (s *jobStore) setProcessing(jobID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != domain.JobStatusPending {
		return
	}
	job.Status = domain.JobStatusProcessing
	job.Progress.Total = total
	job.Progress.CurrentTask = "starting"
}

// updateProgress applies a progress update, enforcing monotonicity: current
// never moves backward and never exceeds total.
func (s *jobStore) updateProgress(jobID string, current, total int, task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status.IsTerminal() {
		return
	}
	if current < job.Progress.Current {
		return
	}
	if total > 0 && current > total {
		current = total
	}
	job.Progress.Current = current
	if total > 0 {
		job.Progress.Total = total
		job.Progress.Percentage = current * 100 / total
	}
	job.Progress.CurrentTask = task
}

// finish moves a job into a terminal state exactly once. Later calls are
// ignored, which makes the cancel/complete race harmless.
func (s *jobStore) finish(jobID string, status domain.JobStatus, results *domain.JobResults, errMsg string) *domain.GenerationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status.IsTerminal() {
		return nil
	}
	now := time.Now().UTC()
	job.Status = status
	job.Results = results
	job.Error = errMsg
	job.CompletedAt = &now
	if results != nil && job.Progress.Total > 0 {
		job.Progress.CurrentTask = "done"
	}
	snap := snapshot(job)
	return &snap
}

// list returns a filtered, paginated snapshot ordered by start time
// descending (newest first).
func (s *jobStore) list(filter domain.JobFilter) ([]domain.GenerationJob, int) {
	s.mu.RLock()
	matched := make([]domain.GenerationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.SubjectID != "" && job.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.JobType != "" && job.JobType != filter.JobType {
			continue
		}
		matched = append(matched, snapshot(job))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].StartedAt.Equal(matched[j].StartedAt) {
			return matched[i].JobID < matched[j].JobID
		}
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	total := len(matched)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []domain.GenerationJob{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// snapshot deep-copies the fields callers might mutate.
func snapshot(job *domain.GenerationJob) domain.GenerationJob {
	snap := *job
	if job.Results != nil {
		res := *job.Results
		res.GeneratedImages = append([]domain.GeneratedImage(nil), job.Results.GeneratedImages...)
		res.FailedImages = append([]domain.FailedAttempt(nil), job.Results.FailedImages...)
		snap.Results = &res
	}
	if job.CompletedAt != nil {
		at := *job.CompletedAt
		snap.CompletedAt = &at
	}
	return snap
}

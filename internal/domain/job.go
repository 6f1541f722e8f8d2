package domain

import "time"

// JobType enumerates supported generation job categories.
type JobType string

const (
	JobTypeCoreSet     JobType = "core_set"
	JobTypeCustomSet   JobType = "custom_set"
	JobTypeSingleImage JobType = "single_image"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether a job in this status can still change.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Progress tracks how far a running job has advanced. Current never
// decreases and never exceeds Total.
type Progress struct {
	Current     int
	Total       int
	Percentage  int
	CurrentTask string
}

// RequestParams carries the caller-tunable knobs for one job.
type RequestParams struct {
	ShotCount        int
	TemplateIDs      []string
	QualityThreshold float64
	MaxRetries       int
	Seed             int64
	StrictQuality    bool
}

// Defaults applied when the request leaves the corresponding field unset.
const (
	DefaultQualityThreshold = 75.0
	DefaultMaxRetries       = 3
)

// Normalize fills unset request params with their defaults.
func (p *RequestParams) Normalize() {
	if p.QualityThreshold <= 0 {
		p.QualityThreshold = DefaultQualityThreshold
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
}

// JobResults is populated once a job reaches a terminal state.
type JobResults struct {
	GeneratedImages []GeneratedImage
	FailedImages    []FailedAttempt
	TotalAttempts   int
	ElapsedMs       int64
}

// GenerationJob represents one in-flight or completed orchestration run.
// The orchestrator exclusively owns writes to status, progress and results;
// callers only read snapshots or request cancellation.
type GenerationJob struct {
	JobID       string
	SubjectID   string
	JobType     JobType
	Status      JobStatus
	Progress    Progress
	Request     RequestParams
	Results     *JobResults
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// JobFilter narrows ListJobs results. Zero values match everything.
type JobFilter struct {
	SubjectID string
	Status    JobStatus
	JobType   JobType
	Page      int
	PageSize  int
}

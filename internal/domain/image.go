package domain

import "time"

// GeneratedImage is the success record of one pipeline shot. It is never
// mutated after creation and becomes part of the subject's image pool.
type GeneratedImage struct {
	ShotTemplateID   string
	SubjectID        string
	AssetRef         string
	QualityScore     float64
	ConsistencyScore *float64
	PromptUsed       string
	AttemptsUsed     int
	Note             string
	CreatedAt        time.Time
}

// FailureClass classifies why a shot attempt was exhausted.
type FailureClass string

const (
	FailureSynthesis FailureClass = "synthesis_failure"
	FailureQuality   FailureClass = "quality_rejected"
)

// FailedAttempt records a shot whose retries were exhausted. It is retained
// only inside the owning job's terminal result for diagnostics; callers use
// ShotTemplateID to build retry-only-the-missing-shots flows.
type FailedAttempt struct {
	ShotTemplateID string
	Class          FailureClass
	Error          string
	Attempts       int
}

// Subject is the character for which images are generated, as returned by
// the subject data provider. MasterReferenceRef is the opaque asset the
// consistency analyzer scores against; a subject without one cannot run a
// generation job.
type Subject struct {
	ID                 string
	Name               string
	Traits             []string
	Personality        string
	MasterReferenceRef string
}

package domain

import "context"

// ShotFilter narrows catalog listings. Zero values match everything.
type ShotFilter struct {
	IDs         []string
	Crops       []Crop
	Angles      []Angle
	SceneType   SceneType
	MaxPriority int
}

// ShotCatalog provides read-only access to shot templates. Implementations
// must be safe for concurrent use; the pipeline shares one catalog across
// running jobs.
type ShotCatalog interface {
	List(ctx context.Context, filter ShotFilter) ([]ShotTemplate, error)
	Get(ctx context.Context, id string) (ShotTemplate, error)
	// CoreSet returns the fixed highest-priority subset that core-set jobs
	// always run in full, independent of any filter.
	CoreSet(ctx context.Context) ([]ShotTemplate, error)
}

// ImageRepository persists the per-subject pool of generated images that the
// scene reference selector later reads.
type ImageRepository interface {
	SaveAll(ctx context.Context, jobID string, images []GeneratedImage) error
	ListBySubject(ctx context.Context, subjectID string) ([]GeneratedImage, error)
}

// SubjectProvider resolves subject attributes for prompt rendering and the
// master reference for consistency scoring.
type SubjectProvider interface {
	GetSubject(ctx context.Context, id string) (*Subject, error)
}

// JobArchive persists terminal jobs for later inspection. Archival is best
// effort; failures are logged, never surfaced to the job itself.
type JobArchive interface {
	Save(ctx context.Context, job *GenerationJob) error
}

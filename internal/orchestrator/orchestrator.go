// Package orchestrator wraps the generation pipeline in an asynchronous,
// cancellable, progress-reporting job abstraction. StartJob returns a job id
// immediately; everything after that happens on background goroutines
// bounded by a weighted semaphore.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"shotforge/internal/domain"
	"shotforge/internal/infra"
	"shotforge/internal/pipeline"
)

// Options wires an Orchestrator.
type Options struct {
	Pipeline *pipeline.Pipeline
	Catalog  domain.ShotCatalog
	Subjects domain.SubjectProvider
	Images   domain.ImageRepository
	Archive  domain.JobArchive
	Logger   infra.Logger
	// MaxConcurrentJobs bounds simultaneously running pipelines.
	MaxConcurrentJobs int
}

// Orchestrator owns the job state machine. It is the exclusive writer of
// job status, progress and results.
type Orchestrator struct {
	pipeline *pipeline.Pipeline
	catalog  domain.ShotCatalog
	subjects domain.SubjectProvider
	images   domain.ImageRepository
	archive  domain.JobArchive
	logger   infra.Logger

	store *jobStore
	sem   *semaphore.Weighted

	mu      sync.Mutex
	active  map[string]context.CancelFunc
	baseCtx context.Context
	wg      sync.WaitGroup
}

// New constructs an Orchestrator. baseCtx scopes every job's lifetime; when
// it is cancelled running jobs wind down cooperatively.
func New(baseCtx context.Context, opts Options) *Orchestrator {
	maxJobs := opts.MaxConcurrentJobs
	if maxJobs < 1 {
		maxJobs = 4
	}
	return &Orchestrator{
		pipeline: opts.Pipeline,
		catalog:  opts.Catalog,
		subjects: opts.Subjects,
		images:   opts.Images,
		archive:  opts.Archive,
		logger:   opts.Logger,
		store:    newJobStore(),
		sem:      semaphore.NewWeighted(int64(maxJobs)),
		active:   map[string]context.CancelFunc{},
		baseCtx:  baseCtx,
	}
}

// StartJob accepts a generation request, records it as pending and returns
// its id without blocking on any external call.
func (o *Orchestrator) StartJob(ctx context.Context, subjectID string, jobType domain.JobType, params domain.RequestParams) (string, error) {
	templates, err := o.resolveTemplates(ctx, jobType, params)
	if err != nil {
		return "", err
	}
	params.Normalize()

	job := &domain.GenerationJob{
		JobID:     uuid.NewString(),
		SubjectID: subjectID,
		JobType:   jobType,
		Status:    domain.JobStatusPending,
		Progress:  domain.Progress{Total: len(templates)},
		Request:   params,
		StartedAt: time.Now().UTC(),
	}
	o.store.put(job)

	jobCtx, cancel := context.WithCancel(o.baseCtx)
	o.mu.Lock()
	if _, running := o.active[job.JobID]; running {
		// At most one pipeline execution per job id.
		o.mu.Unlock()
		cancel()
		o.logger.Warn().Str("job_id", job.JobID).Msg("orchestrator: job already active, ignoring duplicate start")
		return job.JobID, nil
	}
	o.active[job.JobID] = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go o.run(jobCtx, job.JobID, subjectID, templates, params)

	o.logger.Info().Str("job_id", job.JobID).Str("subject_id", subjectID).
		Str("job_type", string(jobType)).Int("shots", len(templates)).
		Msg("orchestrator: job accepted")
	return job.JobID, nil
}

// GetStatus returns a snapshot of the job or domain.ErrNotFound.
func (o *Orchestrator) GetStatus(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	if job, ok := o.store.get(jobID); ok {
		return job, nil
	}
	return nil, fmt.Errorf("job %q: %w", jobID, domain.ErrNotFound)
}

// CancelJob requests cooperative cancellation. It returns false when the job
// is already terminal; cancelling twice is a no-op, not an error.
func (o *Orchestrator) CancelJob(ctx context.Context, jobID string) (bool, error) {
	job, ok := o.store.get(jobID)
	if !ok {
		return false, fmt.Errorf("job %q: %w", jobID, domain.ErrNotFound)
	}
	if job.Status.IsTerminal() {
		return false, nil
	}
	o.mu.Lock()
	cancel, running := o.active[jobID]
	o.mu.Unlock()
	if running {
		cancel()
	} else {
		// Pending job whose goroutine has not registered yet loses the
		// race extremely rarely; mark it cancelled directly.
		o.store.finish(jobID, domain.JobStatusCancelled, nil, "")
	}
	o.logger.Info().Str("job_id", jobID).Msg("orchestrator: cancellation requested")
	return true, nil
}

// ListJobs returns a filtered page of job snapshots plus the total count.
func (o *Orchestrator) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.GenerationJob, int, error) {
	jobs, total := o.store.list(filter)
	return jobs, total, nil
}

// Wait blocks until all running jobs have wound down. Intended for graceful
// shutdown and tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run executes one job to a terminal state.
func (o *Orchestrator) run(ctx context.Context, jobID, subjectID string, templates []domain.ShotTemplate, params domain.RequestParams) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		delete(o.active, jobID)
		o.mu.Unlock()
	}()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		o.store.finish(jobID, domain.JobStatusCancelled, nil, "")
		return
	}
	defer o.sem.Release(1)

	subj, err := o.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		o.finish(ctx, jobID, domain.JobStatusFailed, nil, fmt.Sprintf("resolve subject: %v", err))
		return
	}

	o.store.setProcessing(jobID, len(templates))

	// Progress flows through a channel so the pipeline's call depth stays
	// decoupled from how status queries observe it.
	updates := make(chan pipeline.ProgressUpdate, len(templates)+1)
	var consumer sync.WaitGroup
	consumer.Add(1)
	go func() {
		defer consumer.Done()
		for u := range updates {
			o.store.updateProgress(jobID, u.Current, u.Total, u.Task)
		}
	}()

	results, runErr := o.pipeline.Run(ctx, jobID, subj, templates, params, updates)
	close(updates)
	consumer.Wait()

	switch {
	case runErr == nil:
		o.persistImages(jobID, results)
		if len(results.GeneratedImages) == 0 && len(results.FailedImages) > 0 {
			// Nothing succeeded at all: surface it as a failure rather
			// than an empty success.
			o.finish(ctx, jobID, domain.JobStatusFailed, results, "all shots failed")
			return
		}
		o.finish(ctx, jobID, domain.JobStatusCompleted, results, "")

	case ctx.Err() != nil:
		// Cooperative cancellation: freeze whatever completed.
		o.persistImages(jobID, results)
		o.finish(ctx, jobID, domain.JobStatusCancelled, results, "")

	default:
		o.finish(ctx, jobID, domain.JobStatusFailed, results, runErr.Error())
	}
}

func (o *Orchestrator) finish(ctx context.Context, jobID string, status domain.JobStatus, results *domain.JobResults, errMsg string) {
	job := o.store.finish(jobID, status, results, errMsg)
	if job == nil {
		return
	}
	o.logger.Info().Str("job_id", jobID).Str("status", string(status)).Msg("orchestrator: job finished")
	if o.archive == nil {
		return
	}
	// Archival is best effort and must not be cancelled along with the job.
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.archive.Save(archiveCtx, job); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: archive job failed")
	}
}

func (o *Orchestrator) persistImages(jobID string, results *domain.JobResults) {
	if o.images == nil || results == nil || len(results.GeneratedImages) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.images.SaveAll(ctx, jobID, results.GeneratedImages); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: persist images failed")
	}
}

// resolveTemplates maps a job type to the concrete shot list.
func (o *Orchestrator) resolveTemplates(ctx context.Context, jobType domain.JobType, params domain.RequestParams) ([]domain.ShotTemplate, error) {
	switch jobType {
	case domain.JobTypeCoreSet:
		// The core set always runs in full; optional filters do not apply.
		return o.catalog.CoreSet(ctx)

	case domain.JobTypeCustomSet:
		if len(params.TemplateIDs) > 0 {
			templates := make([]domain.ShotTemplate, 0, len(params.TemplateIDs))
			for _, id := range params.TemplateIDs {
				tpl, err := o.catalog.Get(ctx, id)
				if err != nil {
					return nil, err
				}
				templates = append(templates, tpl)
			}
			return templates, nil
		}
		templates, err := o.catalog.List(ctx, domain.ShotFilter{})
		if err != nil {
			return nil, err
		}
		if params.ShotCount > 0 && params.ShotCount < len(templates) {
			templates = templates[:params.ShotCount]
		}
		return templates, nil

	case domain.JobTypeSingleImage:
		if len(params.TemplateIDs) != 1 {
			return nil, fmt.Errorf("single_image jobs require exactly one template id")
		}
		tpl, err := o.catalog.Get(ctx, params.TemplateIDs[0])
		if err != nil {
			return nil, err
		}
		return []domain.ShotTemplate{tpl}, nil

	default:
		return nil, fmt.Errorf("unsupported job type %q", jobType)
	}
}

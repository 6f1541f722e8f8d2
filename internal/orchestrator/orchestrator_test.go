package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shotforge/internal/adapter/repo"
	"shotforge/internal/catalog"
	"shotforge/internal/domain"
	"shotforge/internal/pipeline"
	"shotforge/internal/providers/synth"
	"shotforge/internal/providers/vision"
)

type stubSynth struct {
	err   error
	block bool
}

func (s *stubSynth) Synthesize(ctx context.Context, req synth.Request) (synth.Result, error) {
	if s.block {
		<-ctx.Done()
		return synth.Result{}, ctx.Err()
	}
	if s.err != nil {
		return synth.Result{}, s.err
	}
	return synth.Result{AssetRef: fmt.Sprintf("generated/%s/%s.png", req.JobID, req.ShotID)}, nil
}

type stubVision struct {
	quality float64
}

func (s *stubVision) Analyze(ctx context.Context, assetRef, masterRef string) (vision.Scores, error) {
	q := s.quality
	if q == 0 {
		q = 90
	}
	return vision.Scores{Quality: q}, nil
}

type fixture struct {
	orch     *Orchestrator
	images   *repo.MemoryImageRepository
	archive  *repo.MemoryJobArchive
	subjects *repo.MemorySubjectStore
	cancel   context.CancelFunc
}

func newFixture(t *testing.T, sy synth.Synthesizer) *fixture {
	t.Helper()
	shots, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	subjects := repo.NewMemorySubjectStore()
	subjects.Put(domain.Subject{
		ID:                 "alice",
		Name:               "Alice Verne",
		Traits:             []string{"red hair"},
		MasterReferenceRef: "subjects/alice/master.png",
	})
	images := repo.NewMemoryImageRepository()
	archive := repo.NewMemoryJobArchive()

	p := pipeline.New(pipeline.Options{
		Synthesizer: sy,
		Analyzer:    &stubVision{},
		Logger:      zerolog.Nop(),
		RetryBase:   time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	orch := New(ctx, Options{
		Pipeline:          p,
		Catalog:           shots,
		Subjects:          subjects,
		Images:            images,
		Archive:           archive,
		Logger:            zerolog.Nop(),
		MaxConcurrentJobs: 2,
	})
	t.Cleanup(func() {
		cancel()
		orch.Wait()
	})
	return &fixture{orch: orch, images: images, archive: archive, subjects: subjects, cancel: cancel}
}

func waitForTerminal(t *testing.T, o *Orchestrator, jobID string) *domain.GenerationJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := o.GetStatus(context.Background(), jobID)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestStartJobReturnsImmediately(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	start := time.Now()
	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCoreSet, domain.RequestParams{})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("StartJob blocked for %v", elapsed)
	}
	if jobID == "" {
		t.Fatal("empty job id")
	}

	job, err := fx.orch.GetStatus(context.Background(), jobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != domain.JobStatusPending && job.Status != domain.JobStatusProcessing && job.Status != domain.JobStatusCompleted {
		t.Errorf("unexpected early status %s", job.Status)
	}
	waitForTerminal(t, fx.orch, jobID)
}

func TestCoreSetJobCompletesAndPersists(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCoreSet, domain.RequestParams{})
	if err != nil {
		t.Fatal(err)
	}
	job := waitForTerminal(t, fx.orch, jobID)

	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s (%s), want completed", job.Status, job.Error)
	}
	core, _ := catalogSize(t)
	if job.Results == nil || len(job.Results.GeneratedImages) != core {
		t.Fatalf("results = %+v, want %d core images", job.Results, core)
	}
	if job.Progress.Current != job.Progress.Total || job.Progress.Percentage != 100 {
		t.Errorf("final progress = %+v", job.Progress)
	}
	if job.CompletedAt == nil {
		t.Error("terminal job missing CompletedAt")
	}

	pool, err := fx.images.ListBySubject(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(pool) != core {
		t.Errorf("persisted pool = %d images, want %d", len(pool), core)
	}
	if _, ok := fx.archive.Get(jobID); !ok {
		t.Error("terminal job was not archived")
	}
}

func catalogSize(t *testing.T) (core, all int) {
	t.Helper()
	shots, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	coreSet, err := shots.CoreSet(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(coreSet), shots.Size()
}

func TestJobWithAllShotsFailedIsFailed(t *testing.T) {
	fx := newFixture(t, &stubSynth{err: errors.New("provider down")})

	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeSingleImage,
		domain.RequestParams{TemplateIDs: []string{"core-front-cu"}, MaxRetries: 1})
	if err != nil {
		t.Fatal(err)
	}
	job := waitForTerminal(t, fx.orch, jobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed when nothing succeeded", job.Status)
	}
	if job.Results == nil || len(job.Results.FailedImages) != 1 {
		t.Errorf("results = %+v", job.Results)
	}
}

func TestUnknownSubjectFailsJob(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	jobID, err := fx.orch.StartJob(context.Background(), "nobody", domain.JobTypeCoreSet, domain.RequestParams{})
	if err != nil {
		t.Fatal(err)
	}
	job := waitForTerminal(t, fx.orch, jobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", job.Status)
	}
	if job.Error == "" {
		t.Error("failed job missing error message")
	}
}

func TestCancelRunningJob(t *testing.T) {
	fx := newFixture(t, &stubSynth{block: true})

	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCoreSet, domain.RequestParams{})
	if err != nil {
		t.Fatal(err)
	}

	// Give the job a moment to enter processing.
	time.Sleep(10 * time.Millisecond)

	cancelled, err := fx.orch.CancelJob(context.Background(), jobID)
	if err != nil {
		t.Fatal(err)
	}
	if !cancelled {
		t.Fatal("CancelJob returned false for a running job")
	}

	job := waitForTerminal(t, fx.orch, jobID)
	if job.Status != domain.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", job.Status)
	}

	// Cancelling a terminal job is a no-op that reports false.
	cancelled, err = fx.orch.CancelJob(context.Background(), jobID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled {
		t.Error("CancelJob on a terminal job must return false")
	}
}

func TestGetStatusUnknownJob(t *testing.T) {
	fx := newFixture(t, &stubSynth{})
	if _, err := fx.orch.GetStatus(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := fx.orch.CancelJob(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cancel error = %v, want ErrNotFound", err)
	}
}

func TestSingleImageRequiresExactlyOneTemplate(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	_, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeSingleImage, domain.RequestParams{})
	if err == nil {
		t.Error("expected error for single_image without template id")
	}
	_, err = fx.orch.StartJob(context.Background(), "alice", domain.JobTypeSingleImage,
		domain.RequestParams{TemplateIDs: []string{"core-front-cu", "core-front-mcu"}})
	if err == nil {
		t.Error("expected error for single_image with two template ids")
	}
	_, err = fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCustomSet,
		domain.RequestParams{TemplateIDs: []string{"no-such-template"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown template error = %v, want ErrNotFound", err)
	}
}

func TestCustomSetHonorsShotCount(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCustomSet,
		domain.RequestParams{ShotCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	job := waitForTerminal(t, fx.orch, jobID)
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s (%s)", job.Status, job.Error)
	}
	if got := len(job.Results.GeneratedImages); got != 2 {
		t.Errorf("generated = %d, want ShotCount limit of 2", got)
	}
}

func TestListJobsFiltersAndPaginates(t *testing.T) {
	fx := newFixture(t, &stubSynth{})
	fx.subjects.Put(domain.Subject{ID: "bob", Name: "Bob", MasterReferenceRef: "subjects/bob/master.png"})

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeSingleImage,
			domain.RequestParams{TemplateIDs: []string{"core-front-cu"}})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	bobID, err := fx.orch.StartJob(context.Background(), "bob", domain.JobTypeSingleImage,
		domain.RequestParams{TemplateIDs: []string{"core-front-mcu"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range append(ids, bobID) {
		waitForTerminal(t, fx.orch, id)
	}

	alice, total, err := fx.orch.ListJobs(context.Background(), domain.JobFilter{SubjectID: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(alice) != 3 {
		t.Errorf("alice jobs = %d (total %d), want 3", len(alice), total)
	}

	page, total, err := fx.orch.ListJobs(context.Background(), domain.JobFilter{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || len(page) != 1 {
		t.Errorf("page 2 = %d jobs (total %d), want 1 of 4", len(page), total)
	}

	completed, _, err := fx.orch.ListJobs(context.Background(), domain.JobFilter{Status: domain.JobStatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 4 {
		t.Errorf("completed jobs = %d, want 4", len(completed))
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	fx := newFixture(t, &stubSynth{})

	jobID, err := fx.orch.StartJob(context.Background(), "alice", domain.JobTypeCoreSet, domain.RequestParams{})
	if err != nil {
		t.Fatal(err)
	}

	last := -1
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := fx.orch.GetStatus(context.Background(), jobID)
		if err != nil {
			t.Fatal(err)
		}
		if job.Progress.Current < last {
			t.Fatalf("progress moved backward: %d -> %d", last, job.Progress.Current)
		}
		if job.Progress.Total > 0 && job.Progress.Current > job.Progress.Total {
			t.Fatalf("progress %d exceeds total %d", job.Progress.Current, job.Progress.Total)
		}
		last = job.Progress.Current
		if job.Status.IsTerminal() {
			return
		}
	}
	t.Fatal("job did not finish")
}

func TestJobStoreProgressRules(t *testing.T) {
	s := newJobStore()
	s.put(&domain.GenerationJob{JobID: "j1", Status: domain.JobStatusPending, StartedAt: time.Now()})
	s.setProcessing("j1", 10)

	s.updateProgress("j1", 4, 10, "shot 4")
	s.updateProgress("j1", 2, 10, "stale update")
	job, _ := s.get("j1")
	if job.Progress.Current != 4 {
		t.Errorf("stale update applied: current = %d", job.Progress.Current)
	}
	if job.Progress.Percentage != 40 {
		t.Errorf("percentage = %d, want 40", job.Progress.Percentage)
	}

	s.updateProgress("j1", 99, 10, "overshoot")
	job, _ = s.get("j1")
	if job.Progress.Current != 10 {
		t.Errorf("overshoot not capped: current = %d", job.Progress.Current)
	}

	if done := s.finish("j1", domain.JobStatusCompleted, &domain.JobResults{}, ""); done == nil {
		t.Fatal("first finish returned nil")
	}
	if again := s.finish("j1", domain.JobStatusFailed, nil, "late"); again != nil {
		t.Error("second finish must be ignored")
	}
	job, _ = s.get("j1")
	if job.Status != domain.JobStatusCompleted {
		t.Errorf("terminal status overwritten to %s", job.Status)
	}
}

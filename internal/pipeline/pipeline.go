// Package pipeline executes the per-shot generation-and-validation loop: it
// renders prompts, drives the synthesis provider and consistency analyzer,
// applies retry and quality-gate policy, and aggregates a partial-success
// result set. One shot's exhaustion never aborts the whole run.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"shotforge/internal/cinecalc"
	"shotforge/internal/domain"
	"shotforge/internal/infra"
	"shotforge/internal/providers/synth"
	"shotforge/internal/providers/vision"
)

// ProgressUpdate is published after every shot boundary, success or failure.
type ProgressUpdate struct {
	Current int
	Total   int
	Task    string
}

// Options tunes a Pipeline.
type Options struct {
	Synthesizer synth.Synthesizer
	Analyzer    vision.Analyzer
	Logger      infra.Logger
	// RateEvery spaces synthesis calls; zero disables rate limiting.
	RateEvery time.Duration
	// RetryBase is the initial backoff between failed attempts.
	RetryBase time.Duration
}

// Pipeline runs shot lists for one subject at a time. It is stateless across
// runs and safe to share between concurrently running jobs.
type Pipeline struct {
	synth     synth.Synthesizer
	vision    vision.Analyzer
	limiter   *rate.Limiter
	logger    infra.Logger
	retryBase time.Duration
}

// New constructs a Pipeline.
func New(opts Options) *Pipeline {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateEvery > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateEvery), 2)
	}
	retryBase := opts.RetryBase
	if retryBase <= 0 {
		retryBase = 500 * time.Millisecond
	}
	return &Pipeline{
		synth:     opts.Synthesizer,
		vision:    opts.Analyzer,
		limiter:   limiter,
		logger:    opts.Logger,
		retryBase: retryBase,
	}
}

// Run executes every template for the subject and aggregates the results.
// Progress is reported on updates after each shot, never only at the end.
//
// A missing master reference fails the whole run before any shot is
// attempted. Cancellation is cooperative: it is honored at shot boundaries,
// and the results accumulated so far are returned alongside ctx.Err().
func (p *Pipeline) Run(
	ctx context.Context,
	jobID string,
	subj *domain.Subject,
	templates []domain.ShotTemplate,
	params domain.RequestParams,
	updates chan<- ProgressUpdate,
) (*domain.JobResults, error) {
	if subj.MasterReferenceRef == "" {
		return nil, fmt.Errorf("%w: subject %s has no master reference image", domain.ErrPrecondition, subj.ID)
	}
	params.Normalize()

	started := time.Now()
	results := &domain.JobResults{}
	total := len(templates)

	for i, tpl := range templates {
		if err := ctx.Err(); err != nil {
			results.ElapsedMs = time.Since(started).Milliseconds()
			return results, err
		}

		img, failed, attempts := p.runShot(ctx, jobID, subj, tpl, params)
		results.TotalAttempts += attempts
		if img == nil && failed == nil {
			// Only possible on cancellation mid-shot; freeze at the last
			// completed shot.
			results.ElapsedMs = time.Since(started).Milliseconds()
			return results, ctx.Err()
		}
		if failed != nil {
			results.FailedImages = append(results.FailedImages, *failed)
			p.logger.Warn().Str("job_id", jobID).Str("shot_id", tpl.ID).
				Int("attempts", failed.Attempts).Str("class", string(failed.Class)).
				Msg("pipeline: shot exhausted")
		} else if img != nil {
			results.GeneratedImages = append(results.GeneratedImages, *img)
		}

		if updates != nil {
			updates <- ProgressUpdate{
				Current: i + 1,
				Total:   total,
				Task:    fmt.Sprintf("shot %s (%d/%d)", tpl.ID, i+1, total),
			}
		}
	}

	results.ElapsedMs = time.Since(started).Milliseconds()
	return results, nil
}

// runShot drives one template through the attempt state machine.
func (p *Pipeline) runShot(
	ctx context.Context,
	jobID string,
	subj *domain.Subject,
	tpl domain.ShotTemplate,
	params domain.RequestParams,
) (*domain.GeneratedImage, *domain.FailedAttempt, int) {
	scene := primaryScene(tpl)
	derived := cinecalc.Derive(tpl, scene, 0, 0)
	if report := cinecalc.Validate(tpl, derived); !report.Valid {
		for _, w := range report.Warnings {
			p.logger.Debug().Str("shot_id", tpl.ID).Str("warning", w).Msg("pipeline: parameter check")
		}
	}
	prompt := RenderPrompt(tpl, subj, derived)

	sa := newShotAttempt(params.MaxRetries, params.QualityThreshold)
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.retryBase
	bo.MaxInterval = 30 * time.Second

	for sa.active() {
		if sa.state == stateRetrying {
			if err := sleepCtx(ctx, bo.NextBackOff()); err != nil {
				break
			}
		}
		if err := p.limiter.Wait(ctx); err != nil {
			break
		}

		sa.begin()
		res, err := p.synth.Synthesize(ctx, synth.Request{
			Prompt:          prompt,
			ReferenceRefs:   []string{subj.MasterReferenceRef},
			ReferenceWeight: tpl.ReferenceWeight,
			Seed:            attemptSeed(params.Seed, tpl.ID, sa.attempts),
			JobID:           jobID,
			ShotID:          tpl.ID,
			Attempt:         sa.attempts,
		})
		if err != nil {
			sa.fail(fmt.Errorf("%w: %v", domain.ErrSynthesisFailure, err))
			continue
		}

		scores, err := p.vision.Analyze(ctx, res.AssetRef, subj.MasterReferenceRef)
		if err != nil {
			sa.fail(fmt.Errorf("%w: analyze: %v", domain.ErrSynthesisFailure, err))
			continue
		}

		sa.observe(candidate{assetRef: res.AssetRef, scores: scores})
	}

	switch {
	case sa.state == stateAccepted:
		return acceptedImage(subj.ID, tpl.ID, prompt, sa, ""), nil, sa.attempts

	case ctx.Err() != nil && !sa.acceptedBelowThreshold():
		// Cancelled mid-shot: the shot is neither a success nor an
		// exhausted failure, so it leaves no trace beyond its attempts.
		return nil, nil, sa.attempts

	case sa.acceptedBelowThreshold() && !params.StrictQuality:
		// Coverage over perfection: a mediocre image beats no image. The
		// note marks it for callers that want to re-run the shot later.
		note := fmt.Sprintf("accepted best of %d attempts below threshold %.0f", sa.attempts, params.QualityThreshold)
		return acceptedImage(subj.ID, tpl.ID, prompt, sa, note), nil, sa.attempts

	case sa.acceptedBelowThreshold():
		return nil, &domain.FailedAttempt{
			ShotTemplateID: tpl.ID,
			Class:          domain.FailureQuality,
			Error:          fmt.Sprintf("best quality %.1f below threshold %.0f after %d attempts", sa.best.scores.Quality, params.QualityThreshold, sa.attempts),
			Attempts:       sa.attempts,
		}, sa.attempts

	default:
		msg := "synthesis retries exhausted"
		if sa.lastErr != nil {
			msg = sa.lastErr.Error()
		}
		return nil, &domain.FailedAttempt{
			ShotTemplateID: tpl.ID,
			Class:          domain.FailureSynthesis,
			Error:          msg,
			Attempts:       sa.attempts,
		}, sa.attempts
	}
}

func acceptedImage(subjectID, shotID, prompt string, sa *shotAttempt, note string) *domain.GeneratedImage {
	return &domain.GeneratedImage{
		ShotTemplateID:   shotID,
		SubjectID:        subjectID,
		AssetRef:         sa.best.assetRef,
		QualityScore:     sa.best.scores.Quality,
		ConsistencyScore: sa.best.scores.Consistency,
		PromptUsed:       prompt,
		AttemptsUsed:     sa.attempts,
		Note:             note,
		CreatedAt:        time.Now().UTC(),
	}
}

// primaryScene picks the scene context used for parameter derivation.
func primaryScene(tpl domain.ShotTemplate) domain.SceneType {
	if len(tpl.SceneTypes) > 0 {
		return tpl.SceneTypes[0]
	}
	return domain.SceneDialogue
}

// attemptSeed derives a fresh deterministic seed per attempt so quality-gate
// retries actually explore new generations.
func attemptSeed(base int64, shotID string, attempt int) int64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%d", base, shotID, attempt)))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsPrecondition reports whether an error is the job-fatal missing-master
// case, as opposed to a per-shot failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, domain.ErrPrecondition)
}

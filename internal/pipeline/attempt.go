package pipeline

import "shotforge/internal/providers/vision"

// attemptState is the explicit per-shot retry state machine. Keeping it as
// its own type makes the keep-best-of-exhausted rule testable without
// driving the whole pipeline.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateRetrying
	stateAccepted
	stateExhausted
)

// candidate is one synthesized-and-scored asset under consideration.
type candidate struct {
	assetRef string
	scores   vision.Scores
}

// shotAttempt tracks one shot through its attempts. An attempt covers one
// synthesis call plus its scoring; maxAttempts bounds both provider-failure
// retries and quality-gate retries.
type shotAttempt struct {
	state       attemptState
	attempts    int
	maxAttempts int
	threshold   float64
	best        *candidate
	lastErr     error
}

func newShotAttempt(maxAttempts int, threshold float64) *shotAttempt {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &shotAttempt{
		state:       stateAttempting,
		maxAttempts: maxAttempts,
		threshold:   threshold,
	}
}

// active reports whether another attempt should run.
func (a *shotAttempt) active() bool {
	return a.state == stateAttempting || a.state == stateRetrying
}

// begin counts an attempt as started.
func (a *shotAttempt) begin() {
	a.attempts++
}

// fail records a provider or analyzer failure for the current attempt and
// transitions to Retrying, or Exhausted when no attempts remain.
func (a *shotAttempt) fail(err error) {
	a.lastErr = err
	if a.attempts >= a.maxAttempts {
		a.state = stateExhausted
		return
	}
	a.state = stateRetrying
}

// observe records a scored candidate. Candidates at or above the quality
// threshold are accepted immediately; below it the best-scoring one is kept
// and the attempt retries with a fresh seed until attempts run out.
func (a *shotAttempt) observe(c candidate) {
	if a.best == nil || c.scores.Quality > a.best.scores.Quality {
		a.best = &c
	}
	if c.scores.Quality >= a.threshold {
		a.state = stateAccepted
		return
	}
	if a.attempts >= a.maxAttempts {
		a.state = stateExhausted
		return
	}
	a.state = stateRetrying
}

// acceptedBelowThreshold reports whether the run ended holding only
// candidates under the quality gate.
func (a *shotAttempt) acceptedBelowThreshold() bool {
	return a.state == stateExhausted && a.best != nil
}

package pipeline

import (
	"errors"
	"testing"

	"shotforge/internal/providers/vision"
)

func TestShotAttemptAcceptsAtThreshold(t *testing.T) {
	sa := newShotAttempt(3, 75)
	sa.begin()
	sa.observe(candidate{assetRef: "a.png", scores: vision.Scores{Quality: 75}})
	if sa.state != stateAccepted {
		t.Fatalf("state = %v, want accepted at exactly the threshold", sa.state)
	}
	if sa.active() {
		t.Error("accepted attempt must not stay active")
	}
}

func TestShotAttemptRetriesBelowThreshold(t *testing.T) {
	sa := newShotAttempt(3, 75)
	sa.begin()
	sa.observe(candidate{assetRef: "a.png", scores: vision.Scores{Quality: 60}})
	if sa.state != stateRetrying {
		t.Fatalf("state = %v, want retrying", sa.state)
	}
	if !sa.active() {
		t.Error("retrying attempt must stay active")
	}
	if sa.best == nil || sa.best.scores.Quality != 60 {
		t.Error("below-threshold candidate must be kept as best")
	}
}

func TestShotAttemptKeepsHighestScoringCandidate(t *testing.T) {
	sa := newShotAttempt(3, 90)
	for _, q := range []float64{55, 72, 64} {
		sa.begin()
		sa.observe(candidate{assetRef: "x.png", scores: vision.Scores{Quality: q}})
	}
	if sa.state != stateExhausted {
		t.Fatalf("state = %v, want exhausted", sa.state)
	}
	if !sa.acceptedBelowThreshold() {
		t.Fatal("exhausted run with candidates must report a best")
	}
	if sa.best.scores.Quality != 72 {
		t.Errorf("best quality = %v, want 72", sa.best.scores.Quality)
	}
}

func TestShotAttemptExhaustsOnRepeatedFailures(t *testing.T) {
	sa := newShotAttempt(2, 75)
	sa.begin()
	sa.fail(errors.New("timeout"))
	if sa.state != stateRetrying {
		t.Fatalf("state after first failure = %v, want retrying", sa.state)
	}
	sa.begin()
	sa.fail(errors.New("timeout"))
	if sa.state != stateExhausted {
		t.Fatalf("state after final failure = %v, want exhausted", sa.state)
	}
	if sa.acceptedBelowThreshold() {
		t.Error("failure-only run has no best candidate")
	}
	if sa.attempts != 2 {
		t.Errorf("attempts = %d, want 2", sa.attempts)
	}
}

func TestShotAttemptMixedFailureThenSuccess(t *testing.T) {
	sa := newShotAttempt(3, 75)
	sa.begin()
	sa.fail(errors.New("transient"))
	sa.begin()
	sa.observe(candidate{assetRef: "b.png", scores: vision.Scores{Quality: 80}})
	if sa.state != stateAccepted {
		t.Fatalf("state = %v, want accepted after recovery", sa.state)
	}
	if sa.attempts != 2 {
		t.Errorf("attempts = %d, want 2", sa.attempts)
	}
}

func TestNewShotAttemptFloorsMaxAttempts(t *testing.T) {
	sa := newShotAttempt(0, 75)
	if sa.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d, want floor of 1", sa.maxAttempts)
	}
}

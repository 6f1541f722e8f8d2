// Package synth defines the image synthesis provider contract and its
// Gemini-backed implementation. The pipeline only ever sees the Synthesizer
// interface and opaque asset refs.
package synth

import "context"

// Request carries everything a provider needs for one generation attempt.
type Request struct {
	Prompt string
	// ReferenceRefs holds the subject's master reference first, optionally
	// followed by already-accepted core set images for stronger consistency.
	ReferenceRefs   []string
	ReferenceWeight float64
	Seed            int64
	JobID           string
	ShotID          string
	Attempt         int
}

// Result is the normalized provider output.
type Result struct {
	AssetRef    string
	Description string
}

// Synthesizer is the contract implemented by all synthesis providers.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

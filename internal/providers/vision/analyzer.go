// Package vision defines the visual consistency analyzer contract and its
// Gemini-backed implementation.
package vision

import "context"

// Scores is the normalized analyzer output. Consistency is nil when no
// master reference was supplied.
type Scores struct {
	Quality     float64
	Consistency *float64
}

// Analyzer scores a generated asset for technical quality and, when a
// master reference is given, visual consistency with it.
type Analyzer interface {
	Analyze(ctx context.Context, assetRef, masterRef string) (Scores, error)
}

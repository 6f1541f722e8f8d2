package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shotforge/internal/storage"
)

func testStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestParseScores(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantOK          bool
		wantQuality     float64
		wantConsistency *float64
	}{
		{
			name:            "plain json",
			text:            `{"quality_score": 87, "consistency_score": 92}`,
			wantOK:          true,
			wantQuality:     87,
			wantConsistency: f(92),
		},
		{
			name:        "markdown fenced",
			text:        "```json\n{\"quality_score\": 74.5, \"consistency_score\": null}\n```",
			wantOK:      true,
			wantQuality: 74.5,
		},
		{
			name:        "prose around json",
			text:        "Here is my assessment: {\"quality_score\": 60, \"consistency_score\": null} as requested.",
			wantOK:      true,
			wantQuality: 60,
		},
		{
			name:            "out of range clamped",
			text:            `{"quality_score": 140, "consistency_score": -10}`,
			wantOK:          true,
			wantQuality:     100,
			wantConsistency: f(0),
		},
		{
			name:   "no json at all",
			text:   "I cannot score this image.",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseScores(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Quality != tt.wantQuality {
				t.Errorf("quality = %v, want %v", got.Quality, tt.wantQuality)
			}
			switch {
			case tt.wantConsistency == nil && got.Consistency != nil:
				t.Errorf("consistency = %v, want nil", *got.Consistency)
			case tt.wantConsistency != nil && (got.Consistency == nil || *got.Consistency != *tt.wantConsistency):
				t.Errorf("consistency = %v, want %v", got.Consistency, *tt.wantConsistency)
			}
		})
	}
}

func f(v float64) *float64 { return &v }

func TestAnalyzeLocalScoresAreStable(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if _, err := store.Write(ctx, "generated/a.png", []byte("asset-bytes")); err != nil {
		t.Fatal(err)
	}

	g, err := NewGemini(Options{Store: store})
	if err != nil {
		t.Fatal(err)
	}

	first, err := g.Analyze(ctx, "generated/a.png", "subjects/master.png")
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Analyze(ctx, "generated/a.png", "subjects/master.png")
	if err != nil {
		t.Fatal(err)
	}
	if first.Quality != second.Quality {
		t.Error("local scoring must be deterministic")
	}
	if first.Quality < 70 || first.Quality >= 98 {
		t.Errorf("quality %v outside synthetic range", first.Quality)
	}
	if first.Consistency == nil {
		t.Error("consistency must be scored when a master reference is given")
	}

	noMaster, err := g.Analyze(ctx, "generated/a.png", "")
	if err != nil {
		t.Fatal(err)
	}
	if noMaster.Consistency != nil {
		t.Error("consistency must be nil without a master reference")
	}
}

func TestAnalyzeParsesProviderAnswer(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if _, err := store.Write(ctx, "generated/a.png", []byte("asset")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Write(ctx, "subjects/master.png", []byte("master")); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "```json\n{\"quality_score\": 81, \"consistency_score\": 77}\n```"},
				}}},
			},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(Options{APIKey: "test-key", BaseURL: srv.URL, Store: store})
	if err != nil {
		t.Fatal(err)
	}
	scores, err := g.Analyze(ctx, "generated/a.png", "subjects/master.png")
	if err != nil {
		t.Fatal(err)
	}
	if scores.Quality != 81 {
		t.Errorf("quality = %v, want 81", scores.Quality)
	}
	if scores.Consistency == nil || *scores.Consistency != 77 {
		t.Errorf("consistency = %v, want 77", scores.Consistency)
	}
}

func TestAnalyzeMissingAsset(t *testing.T) {
	g, err := NewGemini(Options{Store: testStore(t)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Analyze(context.Background(), "generated/missing.png", ""); err == nil {
		t.Fatal("expected error for missing asset")
	}
}

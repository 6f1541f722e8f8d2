package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
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

func TestSynthesizeLocalIsDeterministic(t *testing.T) {
	store := testStore(t)
	g, err := NewGemini(Options{Store: store})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	req := Request{Prompt: "portrait", Seed: 42, JobID: "job-1", ShotID: "shot-a", Attempt: 1}
	first, err := g.Synthesize(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Synthesize(ctx, req)
	if err != nil {
		t.Fatal(err)
	}

	a, err := store.Read(ctx, first.AssetRef)
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Read(ctx, second.AssetRef)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical requests must produce identical assets")
	}
	if _, err := png.Decode(bytes.NewReader(a)); err != nil {
		t.Errorf("asset is not a valid png: %v", err)
	}

	// A different attempt produces a different asset.
	req.Attempt = 2
	third, err := g.Synthesize(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	c, err := store.Read(ctx, third.AssetRef)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, c) {
		t.Error("fresh attempt must vary the asset")
	}
}

func TestSynthesizeCallsProviderAndStoresImage(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if _, err := store.Write(ctx, "subjects/alice/master.png", []byte("master-bytes")); err != nil {
		t.Fatal(err)
	}

	imageBytes := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	var gotPrompt string
	var gotRefs int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		for _, p := range req.Contents[0].Parts {
			if p.Text != "" {
				gotPrompt = p.Text
			}
			if p.InlineData != nil {
				gotRefs++
			}
		}
		parts := []part{
			{Text: "a rendered portrait"},
			{InlineData: &inlineData{MIMEType: "image/png", Data: base64.StdEncoding.EncodeToString(imageBytes)}},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": parts}},
			},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(Options{APIKey: "test-key", BaseURL: srv.URL, Store: store})
	if err != nil {
		t.Fatal(err)
	}

	res, err := g.Synthesize(ctx, Request{
		Prompt:        "portrait of alice",
		ReferenceRefs: []string{"subjects/alice/master.png"},
		JobID:         "job-1",
		ShotID:        "shot-a",
		Attempt:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPrompt != "portrait of alice" {
		t.Errorf("provider saw prompt %q", gotPrompt)
	}
	if gotRefs != 1 {
		t.Errorf("provider saw %d reference images, want 1", gotRefs)
	}
	if res.Description != "a rendered portrait" {
		t.Errorf("description = %q", res.Description)
	}
	stored, err := store.Read(ctx, res.AssetRef)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(stored, imageBytes) {
		t.Error("stored asset differs from provider output")
	}
}

func TestSynthesizeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g, err := NewGemini(Options{APIKey: "test-key", BaseURL: srv.URL, Store: testStore(t)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Synthesize(context.Background(), Request{Prompt: "x", JobID: "j", ShotID: "s"}); err == nil {
		t.Fatal("expected error on provider 429")
	}
}

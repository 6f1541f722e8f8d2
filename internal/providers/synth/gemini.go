package synth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shotforge/internal/infra"
	"shotforge/internal/storage"
)

// Options configures the Gemini synthesis client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Store      storage.Store
	Logger     *infra.Logger
	Timeout    time.Duration
}

// Gemini calls the Gemini image generation API and persists results to the
// asset store. Without an API key it produces deterministic synthetic
// assets instead, which keeps the whole service operational in local and CI
// environments while preserving the extension points for real calls.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	store      storage.Store
	logger     *infra.Logger
}

// NewGemini constructs a client with sane defaults and injected dependencies.
func NewGemini(opts Options) (*Gemini, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("synth: asset store is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	return &Gemini{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		store:      opts.Store,
		logger:     opts.Logger,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize renders one attempt and returns the stored asset's ref.
func (g *Gemini) Synthesize(ctx context.Context, req Request) (Result, error) {
	if g.apiKey == "" {
		return g.synthesizeLocal(ctx, req)
	}

	parts := []part{{Text: req.Prompt}}
	for _, ref := range req.ReferenceRefs {
		data, err := g.store.Read(ctx, ref)
		if err != nil {
			return Result{}, fmt.Errorf("synth: load reference %s: %w", ref, err)
		}
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Role: "user", Parts: parts}}})
	if err != nil {
		return Result{}, fmt.Errorf("synth: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("synth: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("synth: call provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return Result{}, fmt.Errorf("synth: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("synth: provider returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{}, fmt.Errorf("synth: decode response: %w", err)
	}
	if decoded.Error != nil {
		return Result{}, fmt.Errorf("synth: provider error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}

	var imageData []byte
	var description string
	for _, cand := range decoded.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && imageData == nil {
				imageData, err = base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return Result{}, fmt.Errorf("synth: decode image data: %w", err)
				}
			}
			if p.Text != "" && description == "" {
				description = p.Text
			}
		}
	}
	if imageData == nil {
		return Result{}, fmt.Errorf("synth: provider response contained no image")
	}

	ref, err := g.store.Write(ctx, assetKey(req), imageData)
	if err != nil {
		return Result{}, fmt.Errorf("synth: persist asset: %w", err)
	}
	return Result{AssetRef: ref, Description: description}, nil
}

// synthesizeLocal produces a deterministic placeholder image derived from
// the prompt and seed, so identical requests yield identical assets.
func (g *Gemini) synthesizeLocal(ctx context.Context, req Request) (Result, error) {
	if g.logger != nil {
		g.logger.Debug().Str("shot_id", req.ShotID).Msg("synth: no api key, generating synthetic asset")
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", req.Prompt, req.Seed, req.Attempt)))

	const w, h = 512, 640
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}
	fg := color.RGBA{R: sum[3], G: sum[4], B: sum[5], A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	// A deterministic inset block makes every asset visually distinct.
	inset := int(binary.BigEndian.Uint16(sum[6:8]))%128 + 64
	draw.Draw(img, image.Rect(inset, inset, w-inset, h-inset), &image.Uniform{C: fg}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("synth: encode synthetic png: %w", err)
	}
	ref, err := g.store.Write(ctx, assetKey(req), buf.Bytes())
	if err != nil {
		return Result{}, fmt.Errorf("synth: persist synthetic asset: %w", err)
	}
	return Result{AssetRef: ref, Description: "synthetic placeholder asset"}, nil
}

func assetKey(req Request) string {
	return fmt.Sprintf("generated/%s/%s-attempt%02d.png", req.JobID, req.ShotID, req.Attempt)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Synthesizer = (*Gemini)(nil)

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shotforge/internal/domain"
	"shotforge/internal/scene"
)

type sceneRequest struct {
	Description string   `json:"description"`
	Crops       []string `json:"crops,omitempty"`
	Angles      []string `json:"angles,omitempty"`
	MinQuality  float64  `json:"minQuality,omitempty"`
}

func (r sceneRequest) filter() scene.Filter {
	f := scene.Filter{MinQuality: r.MinQuality}
	for _, c := range r.Crops {
		f.Crops = append(f.Crops, domain.Crop(c))
	}
	for _, a := range r.Angles {
		f.Angles = append(f.Angles, domain.Angle(a))
	}
	return f
}

type rankedImageResponse struct {
	ShotTemplateID string  `json:"shotTemplateId"`
	AssetRef       string  `json:"assetRef"`
	Score          float64 `json:"score"`
	Reasoning      string  `json:"reasoning"`
}

type sceneResponse struct {
	SceneType     string                `json:"sceneType"`
	EmotionalTone string                `json:"emotionalTone"`
	Confidence    float64               `json:"confidence"`
	Best          *rankedImageResponse  `json:"best,omitempty"`
	Alternatives  []rankedImageResponse `json:"alternatives"`
	PoolSize      int                   `json:"poolSize"`
	MeanScore     float64               `json:"meanScore"`
	NoCandidates  bool                  `json:"noCandidates"`
	Message       string                `json:"message,omitempty"`
}

// SceneReference classifies a free-text scene description and picks the best
// reference image from the subject's pool.
func (a *App) SceneReference(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subject_id")
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "description required")
		return
	}

	sel, err := a.Selector.Select(r.Context(), subjectID, req.Description, req.filter())
	if err != nil {
		a.Logger.Error().Err(err).Str("subject_id", subjectID).Msg("handlers: scene selection failed")
		a.error(w, http.StatusInternalServerError, "internal", "scene selection failed")
		return
	}

	resp := sceneResponse{
		SceneType:     string(sel.Analysis.SceneType),
		EmotionalTone: string(sel.Analysis.EmotionalTone),
		Confidence:    sel.Confidence,
		Alternatives:  []rankedImageResponse{},
		PoolSize:      sel.PoolSize,
		MeanScore:     sel.MeanScore,
		NoCandidates:  sel.NoCandidates,
	}
	if sel.NoCandidates {
		resp.Confidence = sel.Analysis.Confidence
		resp.Message = "no generated images available for this subject; run a generation job first"
		a.json(w, http.StatusOK, resp)
		return
	}
	resp.Best = toRankedResponse(*sel.Best)
	for _, alt := range sel.Alternatives {
		resp.Alternatives = append(resp.Alternatives, *toRankedResponse(alt))
	}
	a.json(w, http.StatusOK, resp)
}

func toRankedResponse(r scene.RankedImage) *rankedImageResponse {
	return &rankedImageResponse{
		ShotTemplateID: r.Image.ShotTemplateID,
		AssetRef:       r.Image.AssetRef,
		Score:          r.Score,
		Reasoning:      r.Reasoning,
	}
}

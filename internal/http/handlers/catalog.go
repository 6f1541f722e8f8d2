package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shotforge/internal/cinecalc"
	"shotforge/internal/domain"
)

type templateResponse struct {
	ID              string             `json:"id"`
	LensMm          int                `json:"lensMm"`
	Angle           string             `json:"angle"`
	Crop            string             `json:"crop"`
	Expression      string             `json:"expression"`
	Pose            string             `json:"pose"`
	ReferenceWeight float64            `json:"referenceWeight"`
	Priority        int                `json:"priority"`
	SceneTypes      []domain.SceneType `json:"sceneTypes"`
}

type derivedResponse struct {
	AzimuthDeg   float64 `json:"azimuthDeg"`
	ElevationDeg float64 `json:"elevationDeg"`
	DistanceM    float64 `json:"distanceM"`
	Thirds       string  `json:"thirds"`
	Headroom     string  `json:"headroom"`
	Gaze         string  `json:"gaze"`
	FStop        float64 `json:"fStop"`
	ISO          int     `json:"iso"`
	ShutterSpeed string  `json:"shutterSpeed"`
	SubjectYaw   float64 `json:"subjectYaw"`
}

type templateDetailResponse struct {
	templateResponse
	Derived  derivedResponse `json:"derived"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ListTemplates returns the shot catalog, optionally filtered.
func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ShotFilter{
		SceneType: domain.SceneType(q.Get("sceneType")),
	}
	if crop := q.Get("crop"); crop != "" {
		filter.Crops = []domain.Crop{domain.Crop(crop)}
	}
	if angle := q.Get("angle"); angle != "" {
		filter.Angles = []domain.Angle{domain.Angle(angle)}
	}
	if p := q.Get("maxPriority"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			filter.MaxPriority = v
		}
	}
	templates, err := a.Catalog.List(r.Context(), filter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list templates")
		return
	}
	items := make([]templateResponse, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, toTemplateResponse(tpl))
	}
	a.json(w, http.StatusOK, map[string]any{"templates": items, "total": len(items)})
}

// GetTemplate returns one template with its fully derived parameters for a
// neutral dialogue scene, plus any framing warnings.
func (a *App) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "template_id")
	tpl, err := a.Catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "template not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load template")
		return
	}

	sceneType := domain.SceneDialogue
	if s := r.URL.Query().Get("sceneType"); s != "" {
		sceneType = domain.SceneType(s)
	}
	derived := cinecalc.Derive(tpl, sceneType, 0, 0)
	report := cinecalc.Validate(tpl, derived)

	a.json(w, http.StatusOK, templateDetailResponse{
		templateResponse: toTemplateResponse(tpl),
		Derived: derivedResponse{
			AzimuthDeg:   derived.Camera.AzimuthDeg,
			ElevationDeg: derived.Camera.ElevationDeg,
			DistanceM:    derived.Camera.DistanceM,
			Thirds:       string(derived.Composition.Thirds),
			Headroom:     string(derived.Composition.Headroom),
			Gaze:         string(derived.Composition.Gaze),
			FStop:        derived.Technical.FStop,
			ISO:          derived.Technical.ISO,
			ShutterSpeed: derived.Technical.ShutterSpeed,
			SubjectYaw:   derived.SubjectYaw,
		},
		Warnings: report.Warnings,
	})
}

func toTemplateResponse(tpl domain.ShotTemplate) templateResponse {
	sceneTypes := tpl.SceneTypes
	if sceneTypes == nil {
		sceneTypes = []domain.SceneType{}
	}
	return templateResponse{
		ID:              tpl.ID,
		LensMm:          tpl.LensMm,
		Angle:           string(tpl.Angle),
		Crop:            string(tpl.Crop),
		Expression:      tpl.Expression,
		Pose:            tpl.Pose,
		ReferenceWeight: tpl.ReferenceWeight,
		Priority:        tpl.Priority,
		SceneTypes:      sceneTypes,
	}
}

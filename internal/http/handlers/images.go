package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListImages returns a subject's generated image pool, newest first.
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subject_id")
	images, err := a.Images.ListBySubject(r.Context(), subjectID)
	if err != nil {
		a.Logger.Error().Err(err).Str("subject_id", subjectID).Msg("handlers: list images failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	items := make([]generatedImageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, toImageResponse(img))
	}
	a.json(w, http.StatusOK, map[string]any{
		"subjectId": subjectID,
		"images":    items,
		"total":     len(items),
	})
}

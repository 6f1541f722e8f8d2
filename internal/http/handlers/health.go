package handlers

import "net/http"

// Healthz reports liveness.
func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

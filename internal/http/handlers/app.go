package handlers

import (
	"encoding/json"
	"net/http"

	"shotforge/internal/domain"
	"shotforge/internal/infra"
	"shotforge/internal/orchestrator"
	"shotforge/internal/scene"
)

// App is the handler container; the router mounts its methods.
type App struct {
	Jobs     *orchestrator.Orchestrator
	Selector *scene.Selector
	Catalog  domain.ShotCatalog
	Images   domain.ImageRepository
	Logger   infra.Logger
}

// NewApp wires the HTTP handlers to the core services.
func NewApp(jobs *orchestrator.Orchestrator, selector *scene.Selector, catalog domain.ShotCatalog, images domain.ImageRepository, logger infra.Logger) *App {
	return &App{Jobs: jobs, Selector: selector, Catalog: catalog, Images: images, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shotforge/internal/http/handlers"
	"shotforge/internal/infra"
	"shotforge/internal/middleware"
)

// NewRouter mounts the public API surface.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Healthz)

	r.Route("/v1/templates", func(r chi.Router) {
		r.Get("/", app.ListTemplates)
		r.Get("/{template_id}", app.GetTemplate)
	})

	r.Route("/v1/subjects/{subject_id}", func(r chi.Router) {
		r.Post("/jobs", app.StartJob)
		r.Get("/images", app.ListImages)
		r.Post("/scene-reference", app.SceneReference)
	})

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/", app.ListJobs)
		r.Get("/{job_id}", app.JobStatus)
		r.Delete("/{job_id}", app.CancelJob)
	})

	return r
}

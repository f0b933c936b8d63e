// Package server exposes the ChefBot agents over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /api/v1/tools
//	POST /api/v1/ask     {"question", "season", "temperature"}
//	POST /api/v1/manual  {"question", "max_iterations"}
//	POST /api/v1/menu    {"constraints", "format"}
//	POST /api/v1/crew    {"query"}
//	GET  /api/v1/stats
//
// Upstream model failures and pipeline failures map to 502.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rickchristie/chefbot/agents/ask"
	"github.com/rickchristie/chefbot/agents/crew"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rickchristie/chefbot/telemetry"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/rs/zerolog"
)

// Services are the agents behind the routes. A nil service disables its route with 503.
type Services struct {
	Ask    *ask.Agent
	Manual *manual.Agent
	Crew   *crew.Crew

	// Pipelines maps a menu format name (staged.MenuFormat.Name) to its pipeline.
	Pipelines map[string]*staged.Pipeline

	// Tools is listed by GET /api/v1/tools. Nil means toolchain.Kitchen().
	Tools *toolchain.Registry

	// Stats is reported by GET /api/v1/stats.
	Stats *telemetry.Stats
}

type handler struct {
	svc    Services
	logger zerolog.Logger
}

// NewRouter creates the HTTP router.
func NewRouter(svc Services, logger zerolog.Logger) http.Handler {
	if svc.Tools == nil {
		svc.Tools = toolchain.Kitchen()
	}
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tools", h.listTools)
		r.Post("/ask", h.ask)
		r.Post("/manual", h.manual)
		r.Post("/menu", h.menu)
		r.Post("/crew", h.crew)
		r.Get("/stats", h.stats)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chefbot",
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v. It reports a 400 and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

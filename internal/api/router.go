// Package api exposes the simulation over HTTP and websockets.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps holds everything the router serves.
type Deps struct {
	Games  *gameserver.Manager
	Teams  team.Repository
	Hub    *Hub
	Logger *zap.Logger
	// CORSOrigins defaults to every origin.
	CORSOrigins []string
	// Checks are run by GET /health, keyed by dependency name.
	Checks map[string]HealthCheck
}

// Handler serves the game and team endpoints.
type Handler struct {
	games  *gameserver.Manager
	teams  team.Repository
	hub    *Hub
	logger *zap.Logger
	checks map[string]HealthCheck
}

// NewRouter builds the chi router.
//
// Precondition: deps.Games, deps.Teams, deps.Hub, and deps.Logger must be non-nil.
func NewRouter(deps Deps) http.Handler {
	if deps.Games == nil || deps.Teams == nil || deps.Hub == nil || deps.Logger == nil {
		panic("api.NewRouter: games, teams, hub, and logger must be non-nil")
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &Handler{
		games:  deps.Games,
		teams:  deps.Teams,
		hub:    deps.Hub,
		logger: deps.Logger,
		checks: deps.Checks,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	// Stream returns once the socket is upgraded; the pumps outlive the request.
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams", h.ListTeams)
		r.Get("/teams/{teamID}", h.GetTeam)

		r.Post("/games", h.CreateGame)
		r.Get("/games", h.ListGames)
		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", h.GetGame)
			r.Delete("/", h.DeleteGame)
			r.Get("/boxscore", h.BoxScore)
			r.Get("/stream", h.Stream)
			r.Post("/start", h.Start)
			r.Post("/pause", h.Pause)
			r.Post("/step", h.Step)
			r.Post("/skip-quarter", h.SkipQuarter)
			r.Post("/end", h.End)
			r.Post("/timeout", h.Timeout)
			r.Post("/reset", h.Reset)
		})
	})
	return r
}

// Health runs every configured check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	respondJSON(w, status, map[string]any{
		"status":       overall,
		"games":        len(h.games.List()),
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	})
}

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListTeams returns every team with its roster and season record.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTeams(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"teams": teams, "count": len(teams)})
}

// GetTeam returns one team.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "teamID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("team id %q is not an integer", raw))
		return
	}
	t, err := h.teams.GetTeamByID(r.Context(), id)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

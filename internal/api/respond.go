package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gameserver.ErrGameNotFound), errors.Is(err, team.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, gameserver.ErrInvalidMatchup), errors.Is(err, team.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoTimeouts), errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// setupStatus is statusFor for game creation and reset, where an unknown
// team id is a bad request rather than a missing resource.
func setupStatus(err error) int {
	if errors.Is(err, team.ErrTeamNotFound) {
		return http.StatusBadRequest
	}
	return statusFor(err)
}

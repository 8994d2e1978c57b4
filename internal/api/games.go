package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/clock"
	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// CreateGameRequest is the body of POST /games.
type CreateGameRequest struct {
	HomeTeamID int     `json:"homeTeamId"`
	AwayTeamID int     `json:"awayTeamId"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// ResetRequest is the optional body of POST /games/{id}/reset. Zero ids
// keep the current teams.
type ResetRequest struct {
	HomeTeamID int `json:"homeTeamId"`
	AwayTeamID int `json:"awayTeamId"`
}

// TimeoutRequest is the body of POST /games/{id}/timeout.
type TimeoutRequest struct {
	Team string `json:"team"`
}

// GameSummary is the compact view of one game.
type GameSummary struct {
	ID         string         `json:"id"`
	Status     engine.Status  `json:"status"`
	Matchup    engine.Matchup `json:"matchup"`
	Period     string         `json:"period"`
	Clock      string         `json:"clock"`
	ShotClock  int            `json:"shotClock"`
	Score      engine.Tally   `json:"score"`
	Fouls      engine.Tally   `json:"fouls"`
	Timeouts   engine.Tally   `json:"timeouts"`
	InBonus    engine.Flags   `json:"inBonus"`
	Possession team.Side      `json:"possession"`
	LastEvent  *engine.Event  `json:"lastEvent,omitempty"`
}

func summarize(snap gameserver.Snapshot) GameSummary {
	st := snap.State
	s := GameSummary{
		ID:         snap.GameID,
		Status:     st.Status,
		Matchup:    st.Matchup,
		Period:     clock.FormatPeriod(st.Quarter),
		Clock:      clock.FormatClock(st.TimeRemaining),
		ShotClock:  int(math.Ceil(st.ShotClockRemaining)),
		Score:      st.Score,
		Fouls:      st.Fouls,
		Timeouts:   st.Timeouts,
		InBonus:    st.InBonus,
		Possession: st.Possession,
	}
	if ev, ok := st.LastEvent(); ok {
		s.LastEvent = &ev
	}
	return s
}

func (h *Handler) driver(w http.ResponseWriter, r *http.Request) (*gameserver.Driver, bool) {
	d, err := h.games.Get(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, statusFor(err), err)
		return nil, false
	}
	return d, true
}

// CreateGame sets up a READY game.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	d, err := h.games.Create(r.Context(), req.HomeTeamID, req.AwayTeamID, req.Seed)
	if err != nil {
		respondError(w, setupStatus(err), err)
		return
	}
	respondJSON(w, http.StatusCreated, summarize(d.Snapshot()))
}

// ListGames returns a summary of every game in creation order.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	drivers := h.games.List()
	out := make([]GameSummary, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, summarize(d.Snapshot()))
	}
	respondJSON(w, http.StatusOK, map[string]any{"games": out, "count": len(out)})
}

// GetGame returns the full snapshot: state, event log, and both rosters.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	d, ok := h.driver(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d.Snapshot())
}

// BoxScore returns the current box score.
func (h *Handler) BoxScore(w http.ResponseWriter, r *http.Request) {
	d, ok := h.driver(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d.Snapshot().BoxScore())
}

// DeleteGame stops and forgets a game and disconnects its subscribers.
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")
	if err := h.games.Remove(id); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	h.hub.CloseGame(id)
	w.WriteHeader(http.StatusNoContent)
}

// act runs one driver operation and answers with the resulting summary.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, op string, fn func(d *gameserver.Driver) error) {
	d, ok := h.driver(w, r)
	if !ok {
		return
	}
	if err := fn(d); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("game operation failed", zap.String("op", op), zap.String("game_id", d.ID()), zap.Error(err))
		}
		respondError(w, status, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(d.Snapshot()))
}

// Start begins or resumes real-time simulation.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "start", func(d *gameserver.Driver) error { return d.Start(r.Context()) })
}

// Pause stops real-time simulation.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "pause", func(d *gameserver.Driver) error {
		d.Pause(r.Context())
		return nil
	})
}

// Step advances the game by one engine step.
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "step", func(d *gameserver.Driver) error { return d.Tick(r.Context()) })
}

// SkipQuarter ends the current period.
func (h *Handler) SkipQuarter(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "skip-quarter", func(d *gameserver.Driver) error { return d.SkipToNextQuarter(r.Context()) })
}

// End finishes the game at the current score.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "end", func(d *gameserver.Driver) error { return d.End(r.Context()) })
}

// Timeout charges a timeout to the side named in the body and pauses the game.
func (h *Handler) Timeout(w http.ResponseWriter, r *http.Request) {
	var req TimeoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	side, err := team.ParseSide(req.Team)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	h.act(w, r, "timeout", func(d *gameserver.Driver) error { return d.CallTimeout(r.Context(), side) })
}

// Reset replaces the game with a fresh one, optionally between new teams.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	d, ok := h.driver(w, r)
	if !ok {
		return
	}
	m := d.Snapshot().State.Matchup
	if req.HomeTeamID == 0 {
		req.HomeTeamID = m.HomeID
	}
	if req.AwayTeamID == 0 {
		req.AwayTeamID = m.AwayID
	}
	if err := d.Reset(r.Context(), req.HomeTeamID, req.AwayTeamID); err != nil {
		respondError(w, setupStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(d.Snapshot()))
}

package gameserver

import (
	"context"
	"time"

	"github.com/cory-johannsen/hoopsim/internal/game/ai"
	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// Snapshot is a deep copy of one game for presentation. Consumers may keep
// it but must never feed it back into the engine.
type Snapshot struct {
	GameID string           `json:"gameId"`
	State  engine.GameState `json:"state"`
	Home   team.Team        `json:"home"`
	Away   team.Team        `json:"away"`
	// NewEvents is the number of trailing State.Events appended by the
	// operation that produced this snapshot.
	NewEvents int `json:"newEvents"`
}

// Fresh returns the events appended by the operation that produced s.
func (s Snapshot) Fresh() []engine.Event {
	n := min(s.NewEvents, len(s.State.Events))
	return s.State.Events[len(s.State.Events)-n:]
}

// BoxScore builds the box score for s.
func (s Snapshot) BoxScore() engine.BoxScore {
	return engine.NewBoxScore(s.State, s.Home.Players, s.Away.Players)
}

// Sink receives a snapshot after every driver operation that changes a game.
//
// Publish is called with the driver lock held and must not block for long.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, snap Snapshot) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, snap Snapshot) error { return f(ctx, snap) }

// GameResult is the archived outcome of a finished game.
type GameResult struct {
	GameID     string          `json:"gameId"`
	HomeTeamID int             `json:"homeTeamId"`
	AwayTeamID int             `json:"awayTeamId"`
	HomeScore  int             `json:"homeScore"`
	AwayScore  int             `json:"awayScore"`
	Periods    int             `json:"periods"`
	Winner     team.Side       `json:"winner,omitempty"`
	FinishedAt time.Time       `json:"finishedAt"`
	BoxScore   engine.BoxScore `json:"boxScore"`
}

// ResultStore archives finished games.
type ResultStore interface {
	SaveResult(ctx context.Context, r GameResult) error
}

// Coach decides whether a side calls a timeout on its own.
type Coach interface {
	// CallTimeout returns the decision and whether the coach had one; when
	// ok is false the decision model decides instead. Any randomness must
	// come from src, the game's own source.
	CallTimeout(side team.Side, sit ai.TimeoutSituation, src random.Source) (call, ok bool)
}

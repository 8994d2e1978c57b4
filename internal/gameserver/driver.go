// Package gameserver runs simulated games in real time and records their outcomes.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/ai"
	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/observability"
)

// ErrInvalidMatchup is returned when a game is set up with unusable team ids.
var ErrInvalidMatchup = errors.New("invalid matchup")

// DefaultTickInterval is the wall-clock time between engine steps.
const DefaultTickInterval = time.Second

// Options configures a Driver.
type Options struct {
	// TickInterval defaults to DefaultTickInterval.
	TickInterval time.Duration
	// AutoTimeouts lets the trailing side call timeouts on its own.
	AutoTimeouts bool
	Coach        Coach
	Results      ResultStore
	Sinks        []Sink
	Now          func() time.Time
}

// Driver owns one game and is the only writer of its state.
//
// Every exported method is safe for concurrent use; engine calls are
// serialised by mu, so the timer goroutine and API callers never step
// the same game concurrently.
type Driver struct {
	id       string
	repo     team.Repository
	settings settings.Settings
	src      random.Source
	opts     Options
	logger   *zap.Logger

	mu         sync.Mutex
	state      engine.GameState
	home, away *team.Team
	stop       func()
	// recorded is set once the finished game has been forwarded to the
	// repository; UpdateTeamRecord is not idempotent.
	recorded bool
}

// NewDriver loads both teams and returns a driver holding a READY game.
//
// Precondition: repo, src, and logger must be non-nil; s must be valid.
// Postcondition: Returns an error wrapping ErrInvalidMatchup or
// team.ErrTeamNotFound when the teams cannot be loaded.
func NewDriver(ctx context.Context, id string, repo team.Repository, s settings.Settings, src random.Source, homeID, awayID int, opts Options, logger *zap.Logger) (*Driver, error) {
	if repo == nil || src == nil || logger == nil {
		panic("gameserver.NewDriver: repo, src, and logger must be non-nil")
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	d := &Driver{
		id:       id,
		repo:     repo,
		settings: s,
		src:      src,
		opts:     opts,
		logger:   observability.ForGame(logger, id),
	}
	if err := d.Reset(ctx, homeID, awayID); err != nil {
		return nil, err
	}
	return d, nil
}

// ID returns the game id.
func (d *Driver) ID() string { return d.id }

// Reset cancels any running timer and replaces the game with a fresh one
// between homeID and awayID.
func (d *Driver) Reset(ctx context.Context, homeID, awayID int) error {
	if homeID <= 0 || awayID <= 0 || homeID == awayID {
		return fmt.Errorf("%w: home %d, away %d", ErrInvalidMatchup, homeID, awayID)
	}
	home, err := d.repo.GetTeamByID(ctx, homeID)
	if err != nil {
		return fmt.Errorf("loading home team %d: %w", homeID, err)
	}
	away, err := d.repo.GetTeamByID(ctx, awayID)
	if err != nil {
		return fmt.Errorf("loading away team %d: %w", awayID, err)
	}
	home.Players = team.FreshRoster(home.Players)
	away.Players = team.FreshRoster(away.Players)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimer()
	d.home, d.away = home, away
	d.state = engine.NewGameState(engine.Matchup{
		HomeID:   home.ID,
		AwayID:   away.ID,
		HomeName: home.Name,
		AwayName: away.Name,
	}, d.settings, d.src)
	d.recorded = false
	d.logger.Info("game reset",
		zap.Int("home_id", home.ID),
		zap.Int("away_id", away.ID),
		zap.String("possession", string(d.state.Possession)),
	)
	d.publish(ctx, 0)
	return nil
}

// Start begins or resumes real-time simulation.
//
// Postcondition: a no-op unless the game is READY or PAUSED; ErrGameOver
// once the game has ended.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state.Status {
	case engine.StatusEnded:
		return engine.ErrGameOver
	case engine.StatusPlaying:
		return nil
	}
	d.state.Status = engine.StatusPlaying
	d.stop = NewTicker(d.opts.TickInterval, d.timerTick).Start(context.WithoutCancel(ctx))
	d.logger.Info("game started", zap.Duration("tick_interval", d.opts.TickInterval))
	d.publish(ctx, 0)
	return nil
}

// Pause stops the timer. Pausing a game that is not playing is a no-op.
func (d *Driver) Pause(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Status != engine.StatusPlaying {
		return
	}
	d.pauseLocked()
	d.logger.Info("game paused", zap.String("clock", d.state.GameTime()))
	d.publish(ctx, 0)
}

func (d *Driver) pauseLocked() {
	d.stopTimer()
	d.state.Status = engine.StatusPaused
}

func (d *Driver) stopTimer() {
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
}

// timerTick is the ticker callback. A tick that raced with Pause or Reset
// is discarded.
//
// The step runs under a context detached from the ticker: finishing the game
// stops the timer, and the record, archive, and final publish that follow
// must still reach the stores.
func (d *Driver) timerTick(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil || d.state.Status != engine.StatusPlaying {
		return
	}
	if err := d.stepLocked(context.WithoutCancel(ctx)); err != nil {
		d.logger.Error("simulation step failed; stopping game", zap.Error(err))
		d.pauseLocked()
	}
}

// Tick advances the game by exactly one engine step.
func (d *Driver) Tick(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stepLocked(ctx)
}

func (d *Driver) stepLocked(ctx context.Context) error {
	if d.state.Ended() {
		return engine.ErrGameOver
	}
	res, err := engine.Step(d.state, d.home.Players, d.away.Players, d.settings, d.src)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	n := d.apply(ctx, res)
	if d.opts.AutoTimeouts && d.state.Status == engine.StatusPlaying {
		n += d.considerTimeout()
	}
	d.publish(ctx, n)
	return nil
}

// apply installs res and handles a freshly finished game. It returns the
// number of events res appended.
func (d *Driver) apply(ctx context.Context, res engine.Result) int {
	wasEnded := d.state.Ended()
	n := len(res.State.Events) - len(d.state.Events)
	d.state = res.State
	d.home.Players = res.Home
	d.away.Players = res.Away
	for _, e := range d.state.Events[len(d.state.Events)-n:] {
		d.logger.Debug("game event",
			zap.String("type", e.Type.String()),
			zap.String("time", e.Time),
			zap.String("description", e.Description),
		)
	}
	if !wasEnded && d.state.Ended() {
		d.finish(ctx)
	}
	return n
}

// finish stops the timer and forwards the result exactly once.
func (d *Driver) finish(ctx context.Context) {
	d.stopTimer()
	d.logger.Info("game over",
		zap.Int("home_score", d.state.Score.Home),
		zap.Int("away_score", d.state.Score.Away),
		zap.Int("periods", d.state.Quarter),
	)
	if d.recorded {
		return
	}
	d.recorded = true

	winner, ok := engine.Winner(d.state)
	if ok {
		homeWon := winner == team.Home
		if err := d.repo.UpdateTeamRecord(ctx, d.home.ID, homeWon, true); err != nil {
			d.logger.Error("updating home team record", zap.Int("team_id", d.home.ID), zap.Error(err))
		}
		if err := d.repo.UpdateTeamRecord(ctx, d.away.ID, !homeWon, false); err != nil {
			d.logger.Error("updating away team record", zap.Int("team_id", d.away.ID), zap.Error(err))
		}
	} else {
		d.logger.Info("tied game not recorded in season records")
	}

	if d.opts.Results == nil {
		return
	}
	r := GameResult{
		GameID:     d.id,
		HomeTeamID: d.home.ID,
		AwayTeamID: d.away.ID,
		HomeScore:  d.state.Score.Home,
		AwayScore:  d.state.Score.Away,
		Periods:    d.state.Quarter,
		Winner:     winner,
		FinishedAt: d.opts.Now().UTC(),
		BoxScore:   engine.NewBoxScore(d.state, d.home.Players, d.away.Players),
	}
	if err := d.opts.Results.SaveResult(ctx, r); err != nil {
		d.logger.Error("archiving game result", zap.Error(err))
	}
}

// considerTimeout lets the trailing side's coach stop play and returns the
// number of events appended. Automatic timeouts do not pause the game.
func (d *Driver) considerTimeout() int {
	var side team.Side
	switch {
	case d.state.Score.Home < d.state.Score.Away:
		side = team.Home
	case d.state.Score.Away < d.state.Score.Home:
		side = team.Away
	default:
		return 0
	}
	sit := ai.TimeoutSituation{
		Quarter:       d.state.Quarter,
		TimeRemaining: d.state.TimeRemaining,
		ScoreDiff:     d.state.ScoreDiff(side),
		TimeoutsLeft:  d.state.Timeouts.Get(side),
		OpponentRun:   d.state.OpponentRun(side),
	}
	if sit.TimeoutsLeft <= 0 {
		return 0
	}
	call, ok := false, false
	if d.opts.Coach != nil {
		call, ok = d.opts.Coach.CallTimeout(side, sit, d.src)
	}
	if !ok {
		call = ai.ShouldCallTimeout(sit, d.settings.AIAggression, d.src)
	}
	if !call {
		return 0
	}
	next, err := engine.Timeout(d.state, side)
	if err != nil {
		d.logger.Warn("automatic timeout rejected", zap.String("side", string(side)), zap.Error(err))
		return 0
	}
	d.state = next
	d.logger.Info("automatic timeout", zap.String("side", string(side)), zap.Int("opponent_run", sit.OpponentRun))
	return 1
}

// SkipToNextQuarter ends the current period immediately.
func (d *Driver) SkipToNextQuarter(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Ended() {
		return engine.ErrGameOver
	}
	st := d.state.Clone()
	st.TimeRemaining = 0
	res, err := engine.EndQuarter(st, d.home.Players, d.away.Players, d.settings)
	if err != nil {
		return err
	}
	d.publish(ctx, d.apply(ctx, res))
	return nil
}

// CallTimeout charges side a timeout and pauses the game.
//
// Postcondition: Returns an error wrapping engine.ErrNoTimeouts,
// engine.ErrGameOver, or team.ErrInvalidSide without changing the game.
func (d *Driver) CallTimeout(ctx context.Context, side team.Side) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := engine.Timeout(d.state, side)
	if err != nil {
		return err
	}
	d.state = next
	d.pauseLocked()
	d.logger.Info("timeout", zap.String("side", string(side)), zap.Int("remaining", next.Timeouts.Get(side)))
	d.publish(ctx, 1)
	return nil
}

// End finishes the game at the current score.
func (d *Driver) End(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := engine.Finish(d.state, d.home.Players, d.away.Players, d.settings)
	if err != nil {
		return err
	}
	d.publish(ctx, d.apply(ctx, res))
	return nil
}

// Snapshot returns a deep copy of the game.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked(0)
}

func (d *Driver) snapshotLocked(newEvents int) Snapshot {
	return Snapshot{
		GameID:    d.id,
		State:     d.state.Clone(),
		Home:      *d.home.Clone(),
		Away:      *d.away.Clone(),
		NewEvents: newEvents,
	}
}

func (d *Driver) publish(ctx context.Context, newEvents int) {
	if len(d.opts.Sinks) == 0 {
		return
	}
	snap := d.snapshotLocked(newEvents)
	for _, s := range d.opts.Sinks {
		if err := s.Publish(ctx, snap); err != nil {
			d.logger.Warn("publishing snapshot", zap.Error(err))
		}
	}
}

// Close stops the timer. The game state is kept.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimer()
}

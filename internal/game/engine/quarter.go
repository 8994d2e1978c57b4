package engine

import (
	"fmt"

	"github.com/cory-johannsen/hoopsim/internal/game/clock"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// endQuarter closes the current period and either opens the next one or
// ends the game.
func (g *game) endQuarter() {
	q := g.st.Quarter
	g.st.TimeRemaining = 0
	g.st.ShotClockRemaining = 0
	g.emit(EventQuarterEnd, "", 0, 0, fmt.Sprintf("End of %s: %s", clock.FormatPeriod(q), g.st.ScoreLine()))
	if q == 2 {
		g.emit(EventHalftime, "", 0, 0, "Halftime: "+g.st.ScoreLine())
	}

	tied := g.st.Score.Home == g.st.Score.Away
	switch {
	case q == 4 && !tied, q > 4 && (!g.s.OvertimeEnabled || !tied):
		g.finish()
		return
	}

	g.st.Quarter++
	g.st.Fouls = Tally{}
	g.st.InBonus = Flags{}
	if g.st.Quarter <= 4 {
		g.st.TimeRemaining = g.s.QuarterSeconds()
	} else {
		g.st.TimeRemaining = OvertimeSeconds
	}
	g.st.ShotClockRemaining = clock.ClampShotClock(g.s.ShotClockSeconds(), g.st.TimeRemaining)
	if q%2 == 0 {
		g.st.Possession = g.st.Possession.Other()
	}
}

// finish appends the terminal game_end and winner events.
func (g *game) finish() {
	g.st.Status = StatusEnded
	g.emit(EventGameEnd, "", 0, 0, "Final: "+g.st.ScoreLine())
	w, ok := Winner(g.st)
	if !ok {
		g.emit(EventWinner, "", 0, 0, fmt.Sprintf("Game ends in a tie, %d-%d", g.st.Score.Home, g.st.Score.Away))
		return
	}
	g.emit(EventWinner, w, 0, 0, fmt.Sprintf("%s win %d-%d",
		g.st.Matchup.Name(w), g.st.Score.Get(w), g.st.Score.Get(w.Other())))
}

// EndQuarter forces the current period to end regardless of the clock.
//
// Postcondition: Returns the next period's opening state, or the final state
// with game_end and winner appended; ErrGameOver if state already ended.
func EndQuarter(state GameState, home, away []team.Player, s settings.Settings) (Result, error) {
	if state.Ended() {
		return Result{}, ErrGameOver
	}
	g := newGame(state, home, away, s, nil)
	g.endQuarter()
	return g.result(), nil
}

// Finish ends the game immediately at the current score.
func Finish(state GameState, home, away []team.Player, s settings.Settings) (Result, error) {
	if state.Ended() {
		return Result{}, ErrGameOver
	}
	g := newGame(state, home, away, s, nil)
	g.finish()
	return g.result(), nil
}

// Timeout charges side one timeout.
//
// Postcondition: On success the side's timeouts drop by one and a timeout
// event is appended. Returns an error wrapping team.ErrInvalidSide,
// ErrGameOver, or ErrNoTimeouts otherwise, leaving state untouched.
func Timeout(state GameState, side team.Side) (GameState, error) {
	if side != team.Home && side != team.Away {
		return state, fmt.Errorf("%w: %q", team.ErrInvalidSide, side)
	}
	if state.Ended() {
		return state, ErrGameOver
	}
	if state.Timeouts.Get(side) <= 0 {
		return state, fmt.Errorf("%s: %w", side, ErrNoTimeouts)
	}
	g := newGame(state, nil, nil, settings.Settings{}, nil)
	g.st.Timeouts = g.st.Timeouts.Add(side, -1)
	g.emit(EventTimeout, side, 0, 0, fmt.Sprintf("Timeout %s (%d remaining)",
		g.st.Matchup.Name(side), g.st.Timeouts.Get(side)))
	return g.st, nil
}

// Winner returns the leading side, or false on a tie.
func Winner(state GameState) (team.Side, bool) {
	switch {
	case state.Score.Home > state.Score.Away:
		return team.Home, true
	case state.Score.Away > state.Score.Home:
		return team.Away, true
	default:
		return "", false
	}
}

// Simulate steps state until the game ends or maxSteps is reached.
// The returned bool reports whether the game ended.
func Simulate(state GameState, home, away []team.Player, s settings.Settings, src random.Source, maxSteps int) (Result, bool, error) {
	res := Result{State: state, Home: home, Away: away}
	for i := 0; i < maxSteps && !res.State.Ended(); i++ {
		next, err := Step(res.State, res.Home, res.Away, s, src)
		if err != nil {
			return res, false, err
		}
		res = next
	}
	return res, res.State.Ended(), nil
}

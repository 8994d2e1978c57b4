package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/hoopsim/internal/game/ai"
	"github.com/cory-johannsen/hoopsim/internal/game/clock"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// ErrUnknownPlayer is returned when a player id is not on the expected roster.
var ErrUnknownPlayer = errors.New("unknown player")

// game is the private working copy one engine call mutates before
// handing the result back.
type game struct {
	st   GameState
	home []team.Player
	away []team.Player
	s    settings.Settings
	src  random.Source
}

func newGame(state GameState, home, away []team.Player, s settings.Settings, src random.Source) *game {
	return &game{
		st:   state.Clone(),
		home: team.CloneRoster(home),
		away: team.CloneRoster(away),
		s:    s,
		src:  src,
	}
}

func (g *game) result() Result {
	return Result{State: g.st, Home: g.home, Away: g.away}
}

func (g *game) roster(side team.Side) []team.Player {
	if side == team.Home {
		return g.home
	}
	return g.away
}

func (g *game) emit(t EventType, side team.Side, playerID, points int, desc string) {
	e := Event{
		Time:        g.st.GameTime(),
		Type:        t,
		Description: desc,
		PlayerID:    playerID,
		Side:        side,
		Points:      points,
	}
	if side != "" {
		e.TeamID = g.st.Matchup.TeamID(side)
	}
	g.st.Events = append(g.st.Events, e)
}

// changePossession gives the ball to side with a fresh shot clock.
func (g *game) changePossession(side team.Side) {
	g.st.Possession = side
	g.st.ShotClockRemaining = clock.ClampShotClock(g.s.ShotClockSeconds(), g.st.TimeRemaining)
}

func (g *game) updateBonus() {
	g.st.InBonus = Flags{
		Home: g.st.Fouls.Away >= g.s.BonusThreshold,
		Away: g.st.Fouls.Home >= g.s.BonusThreshold,
	}
}

func (g *game) eligible(side team.Side) []int {
	return available(g.roster(side), g.st.PlayerFouls, g.s.FoulOut, g.s.FoulsEnabled)
}

func (g *game) pick(side team.Side, weight func(team.Player) float64) (int, error) {
	return weightedPickAmong(g.roster(side), g.eligible(side), weight, g.src)
}

func (g *game) addMinutes(minutes float64) {
	if minutes <= 0 {
		return
	}
	for _, side := range []team.Side{team.Home, team.Away} {
		roster := g.roster(side)
		for _, i := range lineup(roster, g.eligible(side)) {
			roster[i].Stats = roster[i].Stats.AddMinutes(minutes)
		}
	}
}

// Step advances the game by one tick of StepSeconds real time.
//
// Precondition: state was produced by NewGameState or a prior engine call
// with the same rosters.
// Postcondition: Returns the next state and updated rosters, ErrGameOver if
// state has ended, or an error wrapping ErrEmptyRoster/ErrZeroWeight when a
// roster cannot supply a player.
func Step(state GameState, home, away []team.Player, s settings.Settings, src random.Source) (Result, error) {
	if state.Ended() {
		return Result{}, ErrGameOver
	}
	g := newGame(state, home, away, s, src)

	before := g.st.TimeRemaining
	g.st.TimeRemaining = clock.SimulateTime(before, StepSeconds, s.GameSpeed)
	g.st.ShotClockRemaining = clock.ClampShotClock(
		clock.SimulateShotClock(g.st.ShotClockRemaining, StepSeconds, s.GameSpeed),
		g.st.TimeRemaining,
	)
	g.addMinutes((before - g.st.TimeRemaining) / 60)

	if clock.HasQuarterEnded(g.st.TimeRemaining) {
		g.endQuarter()
		return g.result(), nil
	}
	if clock.HasShotClockExpired(g.st.ShotClockRemaining) {
		g.shotClockViolation()
		return g.result(), nil
	}

	target := random.Between(src, MinPossessionSeconds, MaxPossessionSeconds)
	elapsed := s.ShotClockSeconds() - g.st.ShotClockRemaining
	if elapsed <= target && g.st.ShotClockRemaining >= LateShotClockSeconds {
		return g.result(), nil
	}
	if err := g.playPossession(); err != nil {
		return Result{}, err
	}
	return g.result(), nil
}

func (g *game) shotClockViolation() {
	off := g.st.Possession
	g.emit(EventShotClockViolation, off, 0, 0,
		fmt.Sprintf("Shot clock violation on %s", g.st.Matchup.Name(off)))
	g.changePossession(off.Other())
}

func (g *game) playPossession() error {
	off := g.st.Possession
	def := off.Other()
	hi, err := g.pick(off, RatingWeight)
	if err != nil {
		return fmt.Errorf("selecting %s ball handler: %w", off, err)
	}
	di, err := g.pick(def, RatingWeight)
	if err != nil {
		return fmt.Errorf("selecting %s defender: %w", def, err)
	}

	if random.Chance(g.src, TurnoverChance) {
		g.turnover(off, hi, di)
		return nil
	}
	if random.Chance(g.src, FoulChance) {
		return g.foul(off, hi, di)
	}
	return g.shoot(off, hi, di)
}

func (g *game) turnover(off team.Side, hi, di int) {
	def := off.Other()
	h := &g.roster(off)[hi]
	d := &g.roster(def)[di]

	h.Stats = h.Stats.Turnover()
	desc := fmt.Sprintf("%s turns it over", h.Name)
	if ai.ShouldAttemptSteal(d.Attributes, h.Attributes, g.s.AIAggression, g.src) {
		d.Stats = d.Stats.Steal()
		desc = fmt.Sprintf("%s steals the ball from %s", d.Name, h.Name)
	}
	g.emit(EventTurnover, off, h.ID, 0, desc)
	g.changePossession(def)
}

// foul charges the defender. Outside the bonus the offense keeps the ball
// and the shot clock keeps running.
func (g *game) foul(off team.Side, hi, di int) error {
	def := off.Other()
	h := g.roster(off)[hi]
	d := &g.roster(def)[di]

	d.Stats = d.Stats.Foul()
	g.st.Fouls = g.st.Fouls.Add(def, 1)
	g.st.PlayerFouls[d.ID]++
	g.updateBonus()
	g.emit(EventFoul, def, d.ID, 0, fmt.Sprintf("Foul on %s (%d personal, %d team)",
		d.Name, g.st.PlayerFouls[d.ID], g.st.Fouls.Get(def)))

	if g.s.FoulsEnabled && g.st.PlayerFouls[d.ID] == g.s.FoulOut {
		g.emit(EventFoulOut, def, d.ID, 0, fmt.Sprintf("%s has fouled out", d.Name))
	}
	if g.st.InBonus.Get(off) {
		return g.freeThrows(off, h.ID, BonusFreeThrows)
	}
	return nil
}

func shotTypeFor(r float64) ai.ShotType {
	switch {
	case r < LayupBand:
		return ai.Layup
	case r < MidRangeBand:
		return ai.MidRange
	default:
		return ai.ThreePointer
	}
}

func (g *game) shoot(off team.Side, hi, di int) error {
	def := off.Other()
	roster := g.roster(off)
	h := &roster[hi]
	d := &g.roster(def)[di]

	shot := shotTypeFor(g.src.Float64())
	p := ai.CalculateShotSuccess(h.Attributes, shot, &d.Attributes, &g.s)
	made := random.Chance(g.src, p)
	h.Stats = h.Stats.FieldGoal(made, shot.IsThree())

	if !made {
		desc := fmt.Sprintf("%s misses a %s", h.Name, shot)
		if ai.ShouldAttemptBlock(d.Attributes, h.Attributes, shot, g.s.AIAggression, g.src) {
			d.Stats = d.Stats.Block()
			desc = fmt.Sprintf("%s blocks %s's %s", d.Name, h.Name, shot)
		}
		g.emit(EventMiss, off, h.ID, 0, desc)
		return g.rebound(off)
	}

	pts := shot.Points()
	g.st.Score = g.st.Score.Add(off, pts)
	desc := fmt.Sprintf("%s makes a %s", h.Name, shot)
	if random.Chance(g.src, AssistChance) {
		if pi, ok := g.passer(off, h.ID); ok {
			roster[pi].Stats = roster[pi].Stats.Assist()
			desc += fmt.Sprintf(" (assist %s)", roster[pi].Name)
		}
	}
	g.emit(EventScore, off, h.ID, pts, desc)
	g.changePossession(def)
	return nil
}

// passer picks the assisting teammate among side's current lineup.
func (g *game) passer(side team.Side, handlerID int) (int, bool) {
	roster := g.roster(side)
	idx := lineup(roster, g.eligible(side))
	on := make([]team.Player, len(idx))
	for k, i := range idx {
		on[k] = roster[i]
	}
	k, ok := ai.DetermineBestPassingOption(on, handlerID, g.src)
	if !ok {
		return -1, false
	}
	return idx[k], true
}

func averageRebounding(players []team.Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range players {
		sum += ReboundingWeight(p)
	}
	return sum / float64(len(players))
}

// rebound resolves a missed field goal by shooting side.
func (g *game) rebound(off team.Side) error {
	def := off.Other()
	if !random.Chance(g.src, ReboundChance) {
		g.emit(EventOutOfBounds, def, 0, 0,
			fmt.Sprintf("Ball out of bounds, %s ball", g.st.Matchup.Name(def)))
		g.changePossession(def)
		return nil
	}

	pOff := OffensiveReboundBase +
		(averageRebounding(g.roster(off))-averageRebounding(g.roster(def)))/200
	pOff = math.Max(0, math.Min(1, pOff))
	side := def
	if random.Chance(g.src, pOff) {
		side = off
	}

	i, err := g.pick(side, ReboundingWeight)
	if err != nil {
		return fmt.Errorf("selecting %s rebounder: %w", side, err)
	}
	r := &g.roster(side)[i]
	offensive := side == off
	r.Stats = r.Stats.Rebound(offensive)

	if offensive {
		g.emit(EventRebound, side, r.ID, 0, fmt.Sprintf("Offensive rebound by %s", r.Name))
		g.st.ShotClockRemaining = clock.ClampShotClock(
			math.Min(g.s.ShotClockSeconds(), OffensiveReboundShotClock), g.st.TimeRemaining)
		return nil
	}
	g.emit(EventRebound, side, r.ID, 0, fmt.Sprintf("Defensive rebound by %s", r.Name))
	g.changePossession(def)
	return nil
}

func (g *game) freeThrows(side team.Side, shooterID, n int) error {
	roster := g.roster(side)
	i := team.FindPlayer(roster, shooterID)
	if i < 0 {
		return fmt.Errorf("%w: %d on %s roster", ErrUnknownPlayer, shooterID, side)
	}
	p := &roster[i]
	prob := ai.CalculateShotSuccess(p.Attributes, ai.FreeThrow, nil, &g.s)
	for k := 1; k <= n; k++ {
		made := random.Chance(g.src, prob)
		p.Stats = p.Stats.FreeThrow(made)
		if made {
			g.st.Score = g.st.Score.Add(side, 1)
			g.emit(EventFreeThrow, side, p.ID, 1, fmt.Sprintf("%s makes free throw %d of %d", p.Name, k, n))
		} else {
			g.emit(EventFreeThrow, side, p.ID, 0, fmt.Sprintf("%s misses free throw %d of %d", p.Name, k, n))
		}
	}
	g.changePossession(side.Other())
	return nil
}

// ResolveFreeThrows awards n free throws to the player shooterID of side,
// then gives the ball to the opponent regardless of makes.
func ResolveFreeThrows(state GameState, home, away []team.Player, side team.Side, shooterID, n int, s settings.Settings, src random.Source) (Result, error) {
	if state.Ended() {
		return Result{}, ErrGameOver
	}
	g := newGame(state, home, away, s, src)
	if err := g.freeThrows(side, shooterID, n); err != nil {
		return Result{}, err
	}
	return g.result(), nil
}

// ResolveRebound resolves the loose ball after a miss by shootingSide.
func ResolveRebound(state GameState, home, away []team.Player, shootingSide team.Side, s settings.Settings, src random.Source) (Result, error) {
	if state.Ended() {
		return Result{}, ErrGameOver
	}
	g := newGame(state, home, away, s, src)
	if err := g.rebound(shootingSide); err != nil {
		return Result{}, err
	}
	return g.result(), nil
}

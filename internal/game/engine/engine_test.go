package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/stats"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

type fixedSrc struct{ val float64 }

func (f fixedSrc) Float64() float64 { return f.val }
func (f fixedSrc) Intn(n int) int   { return int(f.val * float64(n)) }

// seqSrc replays vals in order and repeats the last one.
type seqSrc struct {
	vals []float64
	i    int
}

func (s *seqSrc) Float64() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}
func (s *seqSrc) Intn(n int) int { return int(s.Float64() * float64(n)) }

func even(v int) stats.Attributes {
	return stats.Attributes{Shooting: v, Defense: v, Rebounding: v, Passing: v, Speed: v, Stamina: v}
}

func roster(baseID, n int) []team.Player {
	out := make([]team.Player, n)
	for i := range out {
		out[i] = team.Player{ID: baseID + i + 1, Name: "P" + string(rune('A'+i)), Number: i + 1, Attributes: even(70)}
	}
	return out
}

func testSettings() settings.Settings {
	s := settings.Default()
	s.GameSpeed = 1
	return s
}

var matchup = engine.Matchup{HomeID: 1, AwayID: 2, HomeName: "Harbor", AwayName: "Ridge"}

// liveState is a mid-quarter state where any Step acts on the possession.
func liveState(s settings.Settings, possession team.Side) engine.GameState {
	st := engine.NewGameState(matchup, s, fixedSrc{0})
	st.Possession = possession
	st.TimeRemaining = 300
	st.ShotClockRemaining = 10
	st.Status = engine.StatusPlaying
	return st
}

func types(events []engine.Event) []engine.EventType {
	out := make([]engine.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestNewGameState(t *testing.T) {
	s := settings.Default()
	st := engine.NewGameState(matchup, s, fixedSrc{0})
	assert.Equal(t, 1, st.Quarter)
	assert.Equal(t, 600.0, st.TimeRemaining)
	assert.Equal(t, 30.0, st.ShotClockRemaining)
	assert.Equal(t, engine.Tally{Home: 4, Away: 4}, st.Timeouts)
	assert.Equal(t, team.Home, st.Possession)
	assert.Equal(t, engine.StatusReady, st.Status)
	assert.Empty(t, st.Events)

	st = engine.NewGameState(matchup, s, fixedSrc{0.9})
	assert.Equal(t, team.Away, st.Possession)
}

func TestStep_QuarterEndsBeforeAnyPossessionEvent(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.TimeRemaining = 0.4
	st.ShotClockRemaining = 0.4
	st.Fouls = engine.Tally{Home: 3, Away: 2}

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventQuarterEnd}, types(res.State.Events))
	assert.Equal(t, 2, res.State.Quarter)
	assert.Equal(t, 600.0, res.State.TimeRemaining)
	assert.Equal(t, engine.Tally{}, res.State.Fouls)
	assert.Equal(t, team.Home, res.State.Possession, "odd quarter end keeps possession order")
}

func TestStep_SeventhFoulPutsOpponentInBonus(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)
	st.Fouls = engine.Tally{Home: 6}

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.0, 0.99}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)

	assert.Equal(t, 7, res.State.Fouls.Home)
	assert.True(t, res.State.InBonus.Away)
	assert.False(t, res.State.InBonus.Home)
	assert.Equal(t,
		[]engine.EventType{engine.EventFoul, engine.EventFreeThrow, engine.EventFreeThrow},
		types(res.State.Events))
	assert.Equal(t, team.Home, res.State.Possession, "free throws hand the ball over")
	assert.Equal(t, 30.0, res.State.ShotClockRemaining)
	assert.Equal(t, 2, res.Away[2].Stats.FTAttempted)
}

func TestStep_NonBonusFoulKeepsPossessionAndShotClock(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)
	st.Fouls = engine.Tally{Home: 2}

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.0}})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventFoul}, types(res.State.Events))
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 9.0, res.State.ShotClockRemaining)
	assert.Equal(t, 1, res.State.PlayerFouls[3])
	assert.Equal(t, 1, res.Home[2].Stats.Fouls)
}

func TestStep_FoulOutEvent(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)
	st.PlayerFouls = map[int]int{3: 4}

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.0}})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventFoul, engine.EventFoulOut}, types(res.State.Events))
	assert.Equal(t, 5, res.State.PlayerFouls[3])
}

func TestStep_FoulOutEmittedOnce(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)
	// Every home player is out, so the whole roster stays eligible.
	st.PlayerFouls = map[int]int{1: 5, 2: 5, 3: 5, 4: 5, 5: 5}

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.0}})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventFoul}, types(res.State.Events))
	assert.Equal(t, 6, res.State.PlayerFouls[3])
}

func TestStep_FoulOutSkippedWhenFoulsDisabled(t *testing.T) {
	s := testSettings()
	s.FoulsEnabled = false
	st := liveState(s, team.Away)
	st.PlayerFouls = map[int]int{3: 4}

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.0}})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventFoul}, types(res.State.Events))
}

func TestStep_FouledOutPlayerNotSelected(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.PlayerFouls = map[int]int{1: 5}

	src := &seqSrc{vals: []float64{0.5, 0.0, 0.5, 0.9, 0.9, 0.1, 0.0, 0.99}}
	res, err := engine.Step(st, roster(0, 2), roster(100, 5), s, src)
	require.NoError(t, err)
	last, ok := res.State.LastEvent()
	require.True(t, ok)
	assert.Equal(t, engine.EventScore, last.Type)
	assert.Equal(t, 2, last.PlayerID)
}

func TestStep_TurnoverFlipsPossession(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.0, 0.99}})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventTurnover}, types(res.State.Events))
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 30.0, res.State.ShotClockRemaining)
	assert.Equal(t, 1, res.Home[2].Stats.Turnovers)
	assert.Zero(t, res.Away[2].Stats.Steals)
}

func TestStep_TurnoverCreditsSteal(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.0, 0.0}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Away[2].Stats.Steals)
	assert.Contains(t, res.State.Events[0].Description, "steals")
}

func TestStep_MadeLayup(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.0, 0.99}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)

	require.Len(t, res.State.Events, 1)
	e := res.State.Events[0]
	assert.Equal(t, engine.EventScore, e.Type)
	assert.Equal(t, 2, e.Points)
	assert.Equal(t, team.Home, e.Side)
	assert.Equal(t, 1, e.TeamID)
	assert.Equal(t, engine.Tally{Home: 2}, res.State.Score)
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 2, res.Home[2].Stats.Points)
	assert.Equal(t, 1, res.Home[2].Stats.FGMade)
}

func TestStep_MadeShotCreditsAssist(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.0, 0.0}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Home[0].Stats.Assists, "first teammate wins equal openness")
	assert.Zero(t, res.Home[2].Stats.Assists, "handler never assists himself")
}

func TestStep_ThreePointer(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.8, 0.0, 0.99}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)
	assert.Equal(t, engine.Tally{Away: 3}, res.State.Score)
	assert.Equal(t, 1, res.Away[2].Stats.FG3Made)
}

func TestStep_OffensiveReboundKeepsPossession(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.99, 0.99, 0.0, 0.0, 0.0}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventMiss, engine.EventRebound}, types(res.State.Events))
	assert.Equal(t, team.Home, res.State.Possession)
	assert.Equal(t, 14.0, res.State.ShotClockRemaining)
	assert.Equal(t, 1, res.Home[0].Stats.OffensiveRebounds)
}

func TestStep_DefensiveReboundFlipsPossession(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.99, 0.99, 0.0, 0.99, 0.0}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 30.0, res.State.ShotClockRemaining)
	assert.Equal(t, 1, res.Away[0].Stats.Rebounds)
	assert.Zero(t, res.Away[0].Stats.OffensiveRebounds)
}

func TestStep_OutOfBoundsAfterMiss(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.99}}
	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, src)
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventMiss, engine.EventOutOfBounds}, types(res.State.Events))
	assert.Equal(t, team.Away, res.State.Possession)
}

func TestStep_ShotClockViolation(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.ShotClockRemaining = 0.5

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0})
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventShotClockViolation}, types(res.State.Events))
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 30.0, res.State.ShotClockRemaining)
}

func TestStep_ClockOnlyTickBeforeTarget(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.ShotClockRemaining = 29

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0.5})
	require.NoError(t, err)
	assert.Empty(t, res.State.Events)
	assert.Equal(t, 299.0, res.State.TimeRemaining)
	assert.Equal(t, 28.0, res.State.ShotClockRemaining)
}

func TestStep_ShotClockClampedToGameClock(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.TimeRemaining = 12
	st.ShotClockRemaining = 29

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0.5})
	require.NoError(t, err)
	assert.Equal(t, 11.0, res.State.ShotClockRemaining)
}

func TestStep_DoesNotMutateInputs(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	home, away := roster(0, 5), roster(100, 5)

	src := &seqSrc{vals: []float64{0.5, 0.5, 0.5, 0.9, 0.9, 0.1, 0.0, 0.99}}
	res, err := engine.Step(st, home, away, s, src)
	require.NoError(t, err)
	assert.Empty(t, st.Events)
	assert.Zero(t, home[2].Stats.Points)
	assert.Equal(t, 2, res.Home[2].Stats.Points)
}

func TestStep_EmptyRosterFailsFast(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)

	_, err := engine.Step(st, nil, roster(100, 5), s, fixedSrc{0.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrEmptyRoster))
}

func TestStep_ZeroWeightRosterFailsFast(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	away := roster(100, 5)
	for i := range away {
		away[i].Attributes = stats.Attributes{}
	}

	_, err := engine.Step(st, roster(0, 5), away, s, fixedSrc{0.5})
	assert.ErrorIs(t, err, engine.ErrZeroWeight)
}

func TestEndQuarter_HalftimeFlipsPossession(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.Quarter = 2
	st.Score = engine.Tally{Home: 40, Away: 38}
	st.Fouls = engine.Tally{Home: 8, Away: 1}
	st.InBonus = engine.Flags{Away: true}

	res, err := engine.EndQuarter(st, roster(0, 5), roster(100, 5), s)
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventQuarterEnd, engine.EventHalftime}, types(res.State.Events))
	assert.Contains(t, res.State.Events[1].Description, "Harbor 40, Ridge 38")
	assert.Equal(t, 3, res.State.Quarter)
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, engine.Tally{}, res.State.Fouls)
	assert.Equal(t, engine.Flags{}, res.State.InBonus)
	assert.Equal(t, 30.0, res.State.ShotClockRemaining)
}

func TestStep_TiedAfterRegulationGoesToOvertime(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.Quarter = 4
	st.Score = engine.Tally{Home: 70, Away: 70}
	st.TimeRemaining = 0.5

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0})
	require.NoError(t, err)
	for _, e := range res.State.Events {
		assert.NotEqual(t, engine.EventGameEnd, e.Type)
	}
	assert.Equal(t, 5, res.State.Quarter)
	assert.Equal(t, engine.OvertimeSeconds, res.State.TimeRemaining)
	assert.False(t, res.State.Ended())
}

func TestStep_RegulationEndsWithWinner(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.Quarter = 4
	st.Score = engine.Tally{Home: 68, Away: 71}
	st.TimeRemaining = 0.5

	res, err := engine.Step(st, roster(0, 5), roster(100, 5), s, fixedSrc{0})
	require.NoError(t, err)
	assert.Equal(t,
		[]engine.EventType{engine.EventQuarterEnd, engine.EventGameEnd, engine.EventWinner},
		types(res.State.Events))
	assert.True(t, res.State.Ended())
	winner := res.State.Events[2]
	assert.Equal(t, team.Away, winner.Side)
	assert.Equal(t, 2, winner.TeamID)

	_, err = engine.Step(res.State, res.Home, res.Away, s, fixedSrc{0})
	assert.ErrorIs(t, err, engine.ErrGameOver)
}

func TestEndQuarter_TiedOvertimeEndsWhenOvertimeDisabled(t *testing.T) {
	s := testSettings()
	s.OvertimeEnabled = false
	st := liveState(s, team.Home)
	st.Quarter = 5
	st.Score = engine.Tally{Home: 80, Away: 80}

	res, err := engine.EndQuarter(st, roster(0, 5), roster(100, 5), s)
	require.NoError(t, err)
	assert.True(t, res.State.Ended())
	last, _ := res.State.LastEvent()
	assert.Equal(t, engine.EventWinner, last.Type)
	assert.Contains(t, last.Description, "tie")
	_, ok := engine.Winner(res.State)
	assert.False(t, ok)
}

func TestEndQuarter_TiedOvertimeContinuesWhenEnabled(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.Quarter = 5
	st.Score = engine.Tally{Home: 80, Away: 80}

	res, err := engine.EndQuarter(st, roster(0, 5), roster(100, 5), s)
	require.NoError(t, err)
	assert.Equal(t, 6, res.State.Quarter)
	assert.Equal(t, engine.OvertimeSeconds, res.State.TimeRemaining)
}

func TestFinish(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	st.Score = engine.Tally{Home: 10, Away: 4}

	res, err := engine.Finish(st, roster(0, 5), roster(100, 5), s)
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{engine.EventGameEnd, engine.EventWinner}, types(res.State.Events))
	assert.Equal(t, team.Home, res.State.Events[1].Side)

	_, err = engine.Finish(res.State, res.Home, res.Away, s)
	assert.ErrorIs(t, err, engine.ErrGameOver)
}

func TestTimeout(t *testing.T) {
	s := testSettings()
	s.TimeoutsPerTeam = 1
	st := engine.NewGameState(matchup, s, fixedSrc{0})

	next, err := engine.Timeout(st, team.Away)
	require.NoError(t, err)
	assert.Equal(t, engine.Tally{Home: 1, Away: 0}, next.Timeouts)
	last, ok := next.LastEvent()
	require.True(t, ok)
	assert.Equal(t, engine.EventTimeout, last.Type)
	assert.Empty(t, st.Events, "input state untouched")

	_, err = engine.Timeout(next, team.Away)
	assert.ErrorIs(t, err, engine.ErrNoTimeouts)

	_, err = engine.Timeout(next, team.Side("visitors"))
	assert.ErrorIs(t, err, team.ErrInvalidSide)
}

func TestTimeout_RejectedAfterGameEnd(t *testing.T) {
	s := testSettings()
	res, err := engine.Finish(engine.NewGameState(matchup, s, fixedSrc{0}), nil, nil, s)
	require.NoError(t, err)
	_, err = engine.Timeout(res.State, team.Home)
	assert.ErrorIs(t, err, engine.ErrGameOver)
}

func TestResolveFreeThrows_UnknownShooter(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	_, err := engine.ResolveFreeThrows(st, roster(0, 5), roster(100, 5), team.Home, 999, 2, s, fixedSrc{0})
	assert.ErrorIs(t, err, engine.ErrUnknownPlayer)
}

func TestResolveFreeThrows_AllMade(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	res, err := engine.ResolveFreeThrows(st, roster(0, 5), roster(100, 5), team.Home, 1, 2, s, fixedSrc{0})
	require.NoError(t, err)
	assert.Equal(t, 2, res.State.Score.Home)
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 2, res.Home[0].Stats.FTMade)
}

func TestResolveRebound_Offensive(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Away)
	res, err := engine.ResolveRebound(st, roster(0, 5), roster(100, 5), team.Away, s, fixedSrc{0})
	require.NoError(t, err)
	assert.Equal(t, team.Away, res.State.Possession)
	assert.Equal(t, 14.0, res.State.ShotClockRemaining)
}

func TestWeightedPick(t *testing.T) {
	players := []team.Player{{ID: 1}, {ID: 2}}
	weight := func(p team.Player) float64 { return float64(p.ID*2 - 1) } // 1, 3

	i, err := engine.WeightedPick(players, weight, fixedSrc{0.2})
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = engine.WeightedPick(players, weight, fixedSrc{0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestWeightedPick_SkipsZeroWeights(t *testing.T) {
	players := []team.Player{{ID: 1}, {ID: 2}, {ID: 3}}
	weight := func(p team.Player) float64 {
		if p.ID == 2 {
			return 5
		}
		return 0
	}
	for _, v := range []float64{0, 0.5, 0.999} {
		i, err := engine.WeightedPick(players, weight, fixedSrc{v})
		require.NoError(t, err)
		assert.Equal(t, 1, i)
	}
}

func TestWeightedPick_Failures(t *testing.T) {
	_, err := engine.WeightedPick(nil, engine.RatingWeight, fixedSrc{0})
	assert.ErrorIs(t, err, engine.ErrEmptyRoster)

	_, err = engine.WeightedPick([]team.Player{{ID: 1}}, engine.RatingWeight, fixedSrc{0})
	assert.ErrorIs(t, err, engine.ErrZeroWeight)
}

func TestOpponentRun(t *testing.T) {
	st := engine.GameState{Events: []engine.Event{
		{Type: engine.EventScore, Side: team.Home, Points: 2},
		{Type: engine.EventScore, Side: team.Away, Points: 3},
		{Type: engine.EventMiss, Side: team.Home},
		{Type: engine.EventFreeThrow, Side: team.Away, Points: 1},
		{Type: engine.EventScore, Side: team.Away, Points: 2},
	}}
	assert.Equal(t, 6, st.OpponentRun(team.Home))
	assert.Equal(t, 0, st.OpponentRun(team.Away))
}

func TestNewBoxScore(t *testing.T) {
	s := testSettings()
	st := liveState(s, team.Home)
	home, away := roster(0, 5), roster(100, 5)
	home[1].Stats = stats.GameStats{Points: 12, Rebounds: 3, Assists: 1}
	home[3].Stats = stats.GameStats{Points: 4, Rebounds: 9}
	away[0].Stats = stats.GameStats{Points: 8, Assists: 6}
	st.Score = engine.Tally{Home: 16, Away: 8}

	res, err := engine.Finish(st, home, away, s)
	require.NoError(t, err)
	b := engine.NewBoxScore(res.State, res.Home, res.Away)

	assert.True(t, b.Final)
	assert.Equal(t, team.Home, b.Winner)
	assert.Equal(t, 16, b.Home.Totals.Points)
	assert.Equal(t, 12, b.Home.Totals.Rebounds)
	assert.Len(t, b.Away.Players, 5)
	assert.Equal(t, engine.Leader{PlayerID: 2, Name: "PB", Side: team.Home, Value: 12}, b.Leaders.Points)
	assert.Equal(t, 4, b.Leaders.Rebounds.PlayerID)
	assert.Equal(t, team.Away, b.Leaders.Assists.Side)
}

func TestEventType_TextRoundTrip(t *testing.T) {
	for _, et := range engine.AllEventTypes() {
		b, err := et.MarshalText()
		require.NoError(t, err)
		var got engine.EventType
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, et, got)
	}
	_, err := engine.ParseEventType("dunk")
	assert.Error(t, err)
	assert.Equal(t, "quarter_end", engine.EventQuarterEnd.String())
}

func TestSimulate_SeededGamesAreIdentical(t *testing.T) {
	s := settings.Default()
	play := func() engine.Result {
		src := random.NewSeededSource(42)
		st := engine.NewGameState(matchup, s, src)
		res, ended, err := engine.Simulate(st, roster(0, 8), roster(100, 8), s, src, 100000)
		require.NoError(t, err)
		require.True(t, ended)
		return res
	}
	assert.Equal(t, play(), play())
}

// Package engine implements the possession-level basketball state machine.
//
// Every exported function takes a GameState and rosters by value and returns
// new ones; nothing passed in is mutated.
package engine

import (
	"errors"
	"fmt"
	"maps"

	"github.com/cory-johannsen/hoopsim/internal/game/clock"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

var (
	// ErrEmptyRoster is returned when a weighted selection has no candidates.
	ErrEmptyRoster = errors.New("empty roster")
	// ErrZeroWeight is returned when every candidate of a weighted selection weighs zero.
	ErrZeroWeight = errors.New("roster has zero total weight")
	// ErrNoTimeouts is returned when a team calls a timeout with none remaining.
	ErrNoTimeouts = errors.New("no timeouts remaining")
	// ErrGameOver is returned when an operation is applied to an ended game.
	ErrGameOver = errors.New("game is over")
)

const (
	StepSeconds               = 1.0
	TurnoverChance            = 0.15
	FoulChance                = 0.12
	ReboundChance             = 0.70
	OffensiveReboundBase      = 0.30
	OffensiveReboundShotClock = 14.0
	OvertimeSeconds           = 300.0
	AssistChance              = 0.60
	MinPossessionSeconds      = 5.0
	MaxPossessionSeconds      = 20.0
	LateShotClockSeconds      = 3.0
	LayupBand                 = 0.3
	MidRangeBand              = 0.7
	BonusFreeThrows           = 2
	LineupSize                = 5
)

// Status is the driver-level lifecycle of a game.
type Status string

const (
	StatusReady   Status = "ready"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// Tally holds one counter per side.
type Tally struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Get returns the counter for side.
func (t Tally) Get(side team.Side) int {
	if side == team.Home {
		return t.Home
	}
	return t.Away
}

// Add returns a copy of t with delta added to side.
func (t Tally) Add(side team.Side, delta int) Tally {
	if side == team.Home {
		t.Home += delta
	} else {
		t.Away += delta
	}
	return t
}

// Flags holds one boolean per side.
type Flags struct {
	Home bool `json:"home"`
	Away bool `json:"away"`
}

// Get returns the flag for side.
func (f Flags) Get(side team.Side) bool {
	if side == team.Home {
		return f.Home
	}
	return f.Away
}

// Matchup identifies the two teams of a game.
type Matchup struct {
	HomeID   int    `json:"homeId"`
	AwayID   int    `json:"awayId"`
	HomeName string `json:"homeName"`
	AwayName string `json:"awayName"`
}

// TeamID returns the team id playing as side.
func (m Matchup) TeamID(side team.Side) int {
	if side == team.Home {
		return m.HomeID
	}
	return m.AwayID
}

// Name returns the display name of side, falling back to the side itself.
func (m Matchup) Name(side team.Side) string {
	n := m.AwayName
	if side == team.Home {
		n = m.HomeName
	}
	if n == "" {
		return string(side)
	}
	return n
}

// GameState is the complete state of one game.
type GameState struct {
	Matchup            Matchup     `json:"matchup"`
	Quarter            int         `json:"quarter"`
	TimeRemaining      float64     `json:"timeRemaining"`
	ShotClockRemaining float64     `json:"shotClockRemaining"`
	Score              Tally       `json:"score"`
	Fouls              Tally       `json:"fouls"`
	PlayerFouls        map[int]int `json:"playerFouls"`
	Timeouts           Tally       `json:"timeouts"`
	Possession         team.Side   `json:"possession"`
	InBonus            Flags       `json:"inBonus"`
	Events             []Event     `json:"events"`
	Status             Status      `json:"status"`
}

// NewGameState returns the opening state of a game between m's teams.
//
// Postcondition: Quarter is 1, clocks are full, each team holds
// s.TimeoutsPerTeam timeouts, and possession is chosen by one draw from src.
func NewGameState(m Matchup, s settings.Settings, src random.Source) GameState {
	possession := team.Home
	if src.Intn(2) == 1 {
		possession = team.Away
	}
	qs := s.QuarterSeconds()
	return GameState{
		Matchup:            m,
		Quarter:            1,
		TimeRemaining:      qs,
		ShotClockRemaining: clock.ClampShotClock(s.ShotClockSeconds(), qs),
		PlayerFouls:        map[int]int{},
		Timeouts:           Tally{Home: s.TimeoutsPerTeam, Away: s.TimeoutsPerTeam},
		Possession:         possession,
		Events:             []Event{},
		Status:             StatusReady,
	}
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := s
	out.PlayerFouls = maps.Clone(s.PlayerFouls)
	if out.PlayerFouls == nil {
		out.PlayerFouls = map[int]int{}
	}
	out.Events = append([]Event(nil), s.Events...)
	return out
}

// LastEvent returns the most recent event, if any.
func (s GameState) LastEvent() (Event, bool) {
	if len(s.Events) == 0 {
		return Event{}, false
	}
	return s.Events[len(s.Events)-1], true
}

// Ended reports whether the game has reached its terminal state.
func (s GameState) Ended() bool { return s.Status == StatusEnded }

// ScoreDiff returns side's score minus the opponent's.
func (s GameState) ScoreDiff(side team.Side) int {
	return s.Score.Get(side) - s.Score.Get(side.Other())
}

// GameTime formats the current game clock.
func (s GameState) GameTime() string {
	return clock.FormatGameTime(s.Quarter, s.TimeRemaining)
}

// ScoreLine returns e.g. "Harbor 40, Ridge 38".
func (s GameState) ScoreLine() string {
	return fmt.Sprintf("%s %d, %s %d",
		s.Matchup.Name(team.Home), s.Score.Home, s.Matchup.Name(team.Away), s.Score.Away)
}

// OpponentRun returns how many unanswered points side's opponent has scored.
func (s GameState) OpponentRun(side team.Side) int {
	run := 0
	for i := len(s.Events) - 1; i >= 0; i-- {
		e := s.Events[i]
		if e.Points == 0 {
			continue
		}
		if e.Side == side {
			break
		}
		run += e.Points
	}
	return run
}

// Result is the outcome of an engine operation.
type Result struct {
	State GameState
	Home  []team.Player
	Away  []team.Player
}

// Roster returns the roster playing as side.
func (r Result) Roster(side team.Side) []team.Player {
	if side == team.Home {
		return r.Home
	}
	return r.Away
}

// Package team provides team and player definitions, the team repository
// contract, and an in-memory repository.
package team

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/hoopsim/internal/game/stats"
)

// ErrTeamNotFound is returned when a team lookup yields no result.
var ErrTeamNotFound = errors.New("team not found")

// ErrInvalidSide is returned when a side string is neither "home" nor "away".
var ErrInvalidSide = errors.New("invalid team side")

// Side identifies one of the two teams in a game.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// Other returns the opposing side.
//
// Precondition: s is Home or Away.
func (s Side) Other() Side {
	if s == Home {
		return Away
	}
	return Home
}

// ParseSide converts "home"/"away" (case-insensitive) into a Side.
//
// Postcondition: Returns Home or Away, or an error wrapping ErrInvalidSide.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Home:
		return Home, nil
	case Away:
		return Away, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// Position is a player's listed position.
type Position string

const (
	PointGuard    Position = "PG"
	ShootingGuard Position = "SG"
	SmallForward  Position = "SF"
	PowerForward  Position = "PF"
	Center        Position = "C"
)

// ClassYear is a player's academic year.
type ClassYear string

const (
	Freshman  ClassYear = "FR"
	Sophomore ClassYear = "SO"
	Junior    ClassYear = "JR"
	Senior    ClassYear = "SR"
)

// Player is one rostered player. Stats is zeroed at game start and only
// changes through the stats ledger.
type Player struct {
	ID         int              `yaml:"id" json:"id"`
	Name       string           `yaml:"name" json:"name"`
	Number     int              `yaml:"number" json:"number"`
	Position   Position         `yaml:"position" json:"position"`
	Year       ClassYear        `yaml:"year" json:"year"`
	Attributes stats.Attributes `yaml:"attributes" json:"attributes"`
	Stats      stats.GameStats  `yaml:"-" json:"stats"`
}

// Rating returns the player's overall rating.
func (p Player) Rating() int {
	return stats.CalculatePlayerRating(p.Attributes)
}

// Colors is a team's color scheme as CSS hex strings.
type Colors struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

// Record is a team's season aggregate.
//
// Streak is positive for consecutive wins, negative for consecutive losses.
type Record struct {
	Wins       int `yaml:"wins" json:"wins"`
	Losses     int `yaml:"losses" json:"losses"`
	HomeWins   int `yaml:"home_wins" json:"homeWins"`
	HomeLosses int `yaml:"home_losses" json:"homeLosses"`
	AwayWins   int `yaml:"away_wins" json:"awayWins"`
	AwayLosses int `yaml:"away_losses" json:"awayLosses"`
	Streak     int `yaml:"streak" json:"streak"`
}

// ApplyResult returns the record after one more game.
//
// Postcondition: exactly one of Wins/Losses and one home/away split grows by 1.
func (r Record) ApplyResult(won, wasHome bool) Record {
	switch {
	case won && wasHome:
		r.Wins++
		r.HomeWins++
	case won:
		r.Wins++
		r.AwayWins++
	case wasHome:
		r.Losses++
		r.HomeLosses++
	default:
		r.Losses++
		r.AwayLosses++
	}
	switch {
	case won && r.Streak >= 0:
		r.Streak++
	case won:
		r.Streak = 1
	case r.Streak <= 0:
		r.Streak--
	default:
		r.Streak = -1
	}
	return r
}

// Team is a school's identity, roster, and season record.
type Team struct {
	ID           int      `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Abbreviation string   `yaml:"abbreviation" json:"abbreviation"`
	Conference   string   `yaml:"conference" json:"conference"`
	Colors       Colors   `yaml:"colors" json:"colors"`
	Players      []Player `yaml:"players" json:"players"`
	Record       Record   `yaml:"record" json:"record"`
}

// Validate checks identity fields and roster invariants.
//
// Postcondition: Returns nil iff ID > 0, Name is non-empty, the roster is
// non-empty, player IDs are positive and unique, and jersey numbers are 0-99.
func (t *Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team %q: id must be > 0", t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("team %d: name must not be empty", t.ID)
	}
	if len(t.Players) == 0 {
		return fmt.Errorf("team %d: roster must not be empty", t.ID)
	}
	seen := make(map[int]bool, len(t.Players))
	for _, p := range t.Players {
		if p.ID <= 0 {
			return fmt.Errorf("team %d: player %q id must be > 0", t.ID, p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("team %d: duplicate player id %d", t.ID, p.ID)
		}
		seen[p.ID] = true
		if p.Number < 0 || p.Number > 99 {
			return fmt.Errorf("team %d: player %d number %d must be 0-99", t.ID, p.ID, p.Number)
		}
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Team) Clone() *Team {
	out := *t
	out.Players = CloneRoster(t.Players)
	return &out
}

// CloneRoster returns a copy of players that shares no backing array.
func CloneRoster(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	copy(out, players)
	return out
}

// FreshRoster returns a copy of players with every stat line zeroed.
func FreshRoster(players []Player) []Player {
	out := CloneRoster(players)
	for i := range out {
		out[i].Stats = stats.GameStats{}
		out[i].Attributes = out[i].Attributes.Clamp()
	}
	return out
}

// FindPlayer returns the index of the player with id, or -1.
func FindPlayer(players []Player, id int) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

package engine

import (
	"github.com/cory-johannsen/hoopsim/internal/game/clock"
	"github.com/cory-johannsen/hoopsim/internal/game/stats"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// PlayerLine is one row of a box score.
type PlayerLine struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Number   int             `json:"number"`
	Position team.Position   `json:"position"`
	Stats    stats.GameStats `json:"stats"`
}

// TeamBox is one team's half of a box score.
type TeamBox struct {
	TeamID  int             `json:"teamId"`
	Name    string          `json:"name"`
	Score   int             `json:"score"`
	Fouls   int             `json:"fouls"`
	Totals  stats.GameStats `json:"totals"`
	Players []PlayerLine    `json:"players"`
}

// Leader is the top performer in one category.
type Leader struct {
	PlayerID int       `json:"playerId"`
	Name     string    `json:"name"`
	Side     team.Side `json:"side"`
	Value    int       `json:"value"`
}

// Leaders holds the game leaders. A zero Leader means nobody recorded the stat.
type Leaders struct {
	Points   Leader `json:"points"`
	Rebounds Leader `json:"rebounds"`
	Assists  Leader `json:"assists"`
}

// BoxScore summarises a game at a point in time.
type BoxScore struct {
	Period  string    `json:"period"`
	Clock   string    `json:"clock"`
	Final   bool      `json:"final"`
	Winner  team.Side `json:"winner,omitempty"`
	Home    TeamBox   `json:"home"`
	Away    TeamBox   `json:"away"`
	Leaders Leaders   `json:"leaders"`
}

// NewBoxScore builds the box score for state and its rosters.
func NewBoxScore(state GameState, home, away []team.Player) BoxScore {
	b := BoxScore{
		Period: clock.FormatPeriod(state.Quarter),
		Clock:  clock.FormatClock(state.TimeRemaining),
		Final:  state.Ended(),
		Home:   teamBox(state, team.Home, home),
		Away:   teamBox(state, team.Away, away),
	}
	if b.Final {
		if w, ok := Winner(state); ok {
			b.Winner = w
		}
	}
	for _, side := range []team.Side{team.Home, team.Away} {
		roster := home
		if side == team.Away {
			roster = away
		}
		for _, p := range roster {
			b.Leaders.Points = better(b.Leaders.Points, p, side, p.Stats.Points)
			b.Leaders.Rebounds = better(b.Leaders.Rebounds, p, side, p.Stats.Rebounds)
			b.Leaders.Assists = better(b.Leaders.Assists, p, side, p.Stats.Assists)
		}
	}
	return b
}

func better(cur Leader, p team.Player, side team.Side, v int) Leader {
	if v <= cur.Value {
		return cur
	}
	return Leader{PlayerID: p.ID, Name: p.Name, Side: side, Value: v}
}

func teamBox(state GameState, side team.Side, roster []team.Player) TeamBox {
	tb := TeamBox{
		TeamID:  state.Matchup.TeamID(side),
		Name:    state.Matchup.Name(side),
		Score:   state.Score.Get(side),
		Fouls:   state.Fouls.Get(side),
		Players: make([]PlayerLine, 0, len(roster)),
	}
	for _, p := range roster {
		tb.Totals = tb.Totals.Add(p.Stats)
		tb.Players = append(tb.Players, PlayerLine{
			ID:       p.ID,
			Name:     p.Name,
			Number:   p.Number,
			Position: p.Position,
			Stats:    p.Stats,
		})
	}
	return tb
}

package testutil

import (
	"fmt"
	"testing"

	"github.com/cory-johannsen/hoopsim/internal/game/stats"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

var positions = []team.Position{team.PointGuard, team.ShootingGuard, team.SmallForward, team.PowerForward, team.Center}

// SampleTeam returns a valid eight-man team with id. Player ids are
// id*100+1 through id*100+8; attribute levels vary with id.
func SampleTeam(id int) *team.Team {
	players := make([]team.Player, 8)
	for i := range players {
		v := 55 + (id*7+i*5)%35
		players[i] = team.Player{
			ID:       id*100 + i + 1,
			Name:     fmt.Sprintf("Player %d-%d", id, i+1),
			Number:   i*3 + 1,
			Position: positions[i%len(positions)],
			Year:     team.Junior,
			Attributes: stats.Attributes{
				Shooting:   v,
				Defense:    v - 5,
				Rebounding: 40 + (i*11)%50,
				Passing:    v - 3,
				Speed:      v + 2,
				Stamina:    70,
			},
		}
	}
	return &team.Team{
		ID:           id,
		Name:         fmt.Sprintf("Team %d", id),
		Abbreviation: fmt.Sprintf("T%d", id),
		Conference:   "Test",
		Colors:       team.Colors{Primary: "#112233", Secondary: "#ffffff"},
		Players:      players,
	}
}

// SampleLeague returns n sample teams with ids 1..n.
func SampleLeague(n int) []*team.Team {
	out := make([]*team.Team, n)
	for i := range out {
		out[i] = SampleTeam(i + 1)
	}
	return out
}

// NewRegistry returns an in-memory repository holding SampleLeague(n).
func NewRegistry(t *testing.T, n int) *team.Registry {
	t.Helper()
	r, err := team.NewRegistry(SampleLeague(n)...)
	if err != nil {
		t.Fatalf("building sample registry: %v", err)
	}
	return r
}

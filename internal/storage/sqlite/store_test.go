package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
	"github.com/cory-johannsen/hoopsim/internal/storage/sqlite"
	"github.com/cory-johannsen/hoopsim/internal/testutil"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "league.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	n, err := s.Seed(context.Background(), testutil.SampleLeague(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return s
}

func TestStore_ImplementsContracts(t *testing.T) {
	var _ team.Repository = (*sqlite.Store)(nil)
	var _ gameserver.ResultStore = (*sqlite.Store)(nil)
}

func TestStore_GetTeamByID(t *testing.T) {
	s := openStore(t)
	got, err := s.GetTeamByID(context.Background(), 2)
	require.NoError(t, err)

	want := testutil.SampleTeam(2)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Abbreviation, got.Abbreviation)
	require.Len(t, got.Players, len(want.Players))
	for i := range want.Players {
		assert.Equal(t, want.Players[i].ID, got.Players[i].ID)
		assert.Equal(t, want.Players[i].Attributes, got.Players[i].Attributes)
	}
}

func TestStore_GetTeamByID_NotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.GetTeamByID(context.Background(), 42)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestStore_SeedIsNoOpWhenPopulated(t *testing.T) {
	s := openStore(t)
	n, err := s.Seed(context.Background(), testutil.SampleLeague(5))
	require.NoError(t, err)
	assert.Zero(t, n)
	teams, err := s.ListTeams(context.Background())
	require.NoError(t, err)
	assert.Len(t, teams, 3)
}

func TestStore_UpsertPrunesRoster(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	tm := testutil.SampleTeam(1)
	tm.Players = tm.Players[2:]
	require.NoError(t, s.UpsertTeam(ctx, tm))
	got, err := s.GetTeamByID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got.Players, 6)
	assert.Equal(t, 103, got.Players[0].ID)
}

func TestStore_UpdateTeamRecord(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpdateTeamRecord(ctx, 1, true, true))
	require.NoError(t, s.UpdateTeamRecord(ctx, 1, false, false))
	assert.ErrorIs(t, s.UpdateTeamRecord(ctx, 9, true, true), team.ErrTeamNotFound)

	got, err := s.GetTeamByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, team.Record{Wins: 1, Losses: 1, HomeWins: 1, AwayLosses: 1, Streak: -1}, got.Record)
}

// Property: the stored record always equals folding ApplyResult over the same results.
func TestProperty_StoreRecordMatchesApplyResult(t *testing.T) {
	s := openStore(t)
	id := 0
	rapid.Check(t, func(rt *rapid.T) {
		id++
		tm := testutil.SampleTeam(10 + id)
		require.NoError(rt, s.UpsertTeam(context.Background(), tm))
		n := rapid.IntRange(0, 12).Draw(rt, "games")
		var want team.Record
		for i := 0; i < n; i++ {
			won := rapid.Bool().Draw(rt, "won")
			home := rapid.Bool().Draw(rt, "home")
			want = want.ApplyResult(won, home)
			require.NoError(rt, s.UpdateTeamRecord(context.Background(), tm.ID, won, home))
		}
		got, err := s.GetTeamByID(context.Background(), tm.ID)
		require.NoError(rt, err)
		assert.Equal(rt, want, got.Record)
	})
}

func TestStore_Results(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b"} {
		require.NoError(t, s.SaveResult(ctx, gameserver.GameResult{
			GameID: id, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 60 + i, AwayScore: 58,
			Periods: 4, Winner: team.Home, FinishedAt: base.Add(time.Duration(i) * time.Hour),
			BoxScore: engine.BoxScore{Final: true, Winner: team.Home},
		}))
	}
	err := s.SaveResult(ctx, gameserver.GameResult{GameID: "a", FinishedAt: base})
	assert.ErrorIs(t, err, sqlite.ErrResultExists)

	got, err := s.RecentResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].GameID)
	assert.Equal(t, 61, got[0].HomeScore)
	assert.True(t, got[0].FinishedAt.Equal(base.Add(time.Hour)))
	assert.True(t, got[1].BoxScore.Final)
}

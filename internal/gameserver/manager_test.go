package gameserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
	"github.com/cory-johannsen/hoopsim/internal/testutil"
)

func newManager(t *testing.T) *gameserver.Manager {
	t.Helper()
	m := gameserver.NewManager(testutil.NewRegistry(t, 3), fastSettings(), nil,
		gameserver.Options{TickInterval: time.Hour}, zaptest.NewLogger(t))
	t.Cleanup(m.StopAll)
	return m
}

func TestManager_CreateGetList(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	a, err := m.Create(ctx, 1, 2, nil)
	require.NoError(t, err)
	b, err := m.Create(ctx, 2, 3, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID(), list[0].ID())
	assert.Equal(t, b.ID(), list[1].ID())
}

func TestManager_CreateRejectsUnknownTeam(t *testing.T) {
	m := newManager(t)
	_, err := m.Create(context.Background(), 1, 42, nil)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
	assert.Empty(t, m.List())
}

func TestManager_GetUnknown(t *testing.T) {
	m := newManager(t)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, gameserver.ErrGameNotFound)
	assert.ErrorIs(t, m.Remove("nope"), gameserver.ErrGameNotFound)
}

func TestManager_Remove(t *testing.T) {
	m := newManager(t)
	d, err := m.Create(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	require.NoError(t, m.Remove(d.ID()))
	_, err = m.Get(d.ID())
	assert.ErrorIs(t, err, gameserver.ErrGameNotFound)
}

func TestManager_SeededGamesReplayIdentically(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	seed := uint64(99)

	play := func() gameserver.Snapshot {
		d, err := m.Create(ctx, 1, 2, &seed)
		require.NoError(t, err)
		playOut(t, d)
		return d.Snapshot()
	}
	a, b := play(), play()
	assert.Equal(t, a.State.Events, b.State.Events)
	assert.Equal(t, a.State.Score, b.State.Score)
}

func TestTicker_StopIsIdempotent(t *testing.T) {
	calls := make(chan struct{}, 16)
	tk := gameserver.NewTicker(time.Millisecond, func(context.Context) {
		select {
		case calls <- struct{}{}:
		default:
		}
	})
	stop := tk.Start(context.Background())
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
	stop()
	stop()
}

func TestNewTicker_PanicsOnBadInterval(t *testing.T) {
	assert.Panics(t, func() { gameserver.NewTicker(0, func(context.Context) {}) })
}

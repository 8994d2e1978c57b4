package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hoopsim/internal/game/ai"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

const lateGameCoach = `
function call_timeout(side, quarter, seconds_left, score_diff, timeouts_left, opponent_run)
	if opponent_run >= 6 then
		return true
	end
	return quarter >= 4 and seconds_left < 60 and score_diff < 0
end
`

func TestManager_CallHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function add(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	assert.Equal(t, lua.LNumber(7), mgr.CallHook("home", "add", nil, lua.LNumber(3), lua.LNumber(4)))
}

func TestManager_CallHook_MissingHookOrVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Equal(t, lua.LNil, mgr.CallHook("home", "anything", nil))

	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "empty.lua", `-- nothing`), 0))
	assert.Equal(t, lua.LNil, mgr.CallHook("home", "nonexistent_hook", nil))
}

func TestManager_SideVMOverridesGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "g.lua", `function who() return "global" end`), 0))
	require.NoError(t, mgr.LoadCoach("away", writeTempLua(t, "a.lua", `function who() return "away" end`), 0))

	assert.Equal(t, lua.LString("global"), mgr.CallHook("home", "who", nil))
	assert.Equal(t, lua.LString("away"), mgr.CallHook("away", "who", nil))
}

func TestManager_RuntimeErrorLoggedNotPropagated(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "bad.lua", `function boom() error("nope") end`), 0))
	assert.Equal(t, lua.LNil, mgr.CallHook("home", "boom", nil))
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_InstructionLimitPerCall(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin() while true do end end
		function ok() return true end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 1000))

	assert.Equal(t, lua.LNil, mgr.CallHook("home", "spin", nil))
	spun := logs.FilterMessage("scripting: Lua runtime error")
	require.Equal(t, 1, spun.Len())
	assert.Equal(t, true, spun.All()[0].ContextMap()["budget_exhausted"])
	// The budget is per call, so the VM keeps working afterwards.
	assert.Equal(t, lua.LTrue, mgr.CallHook("home", "ok", nil))
}

func TestManager_LoadCoach_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadCoach("home", filepath.Join(t.TempDir(), "missing"), 0))
	assert.Error(t, mgr.LoadCoach("home", writeTempLua(t, "syntax.lua", `function (`), 0))
}

func TestSandbox_DangerousGlobalsRemoved(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require", "print", "os", "io"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), name)
	}
	require.NoError(t, L.DoString(`assert(math.random == nil and math.randomseed == nil and string.dump == nil)`))
	require.NoError(t, L.DoString(`assert(math.floor(2.5) == 2 and string.upper("a") == "A")`))
}

func TestManager_HoopsModule(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "mod.lua", `
		function think()
			hoops.log("thinking")
			local r = hoops.random()
			return r >= 0 and r < 1 and hoops.chance(1.1) and not hoops.chance(0)
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	assert.Equal(t, lua.LTrue, mgr.CallHook("home", "think", random.NewSeededSource(1)))
	assert.Equal(t, 1, logs.FilterMessage("coach script").Len())
}

// countingSource records how many draws it served.
type countingSource struct {
	random.Source
	draws int
}

func (c *countingSource) Float64() float64 {
	c.draws++
	return c.Source.Float64()
}

const coinFlipCoach = `
function call_timeout(side, quarter, seconds_left, score_diff, timeouts_left, opponent_run)
	return hoops.chance(0.5)
end
`

func TestManager_HoopsRandomDrawsFromCallerSource(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", coinFlipCoach), 0))

	game := &countingSource{Source: random.NewSeededSource(3)}
	for i := 0; i < 5; i++ {
		_, ok := mgr.CallTimeout(team.Home, ai.TimeoutSituation{Quarter: 4, TimeRemaining: 60, ScoreDiff: -2, TimeoutsLeft: 3}, game)
		require.True(t, ok)
	}
	assert.Equal(t, 5, game.draws)
}

func TestManager_HoopsRandomReplaysWithSameSeed(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", coinFlipCoach), 0))

	decide := func(seed uint64) []bool {
		src := random.NewSeededSource(seed)
		var calls []bool
		for i := 0; i < 32; i++ {
			call, ok := mgr.CallTimeout(team.Away, ai.TimeoutSituation{Quarter: 4, TimeoutsLeft: 1}, src)
			require.True(t, ok)
			calls = append(calls, call)
		}
		return calls
	}
	assert.Equal(t, decide(11), decide(11))
}

func TestManager_HoopsRandomOutsideHookFails(t *testing.T) {
	mgr, logs := newTestManager(t)
	assert.Error(t, mgr.LoadGlobal(writeTempLua(t, "eager.lua", `local r = hoops.random()`), 0))

	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", coinFlipCoach), 0))
	_, ok := mgr.CallTimeout(team.Home, ai.TimeoutSituation{}, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_CallTimeout(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", lateGameCoach), 0))

	call, ok := mgr.CallTimeout(team.Home, ai.TimeoutSituation{Quarter: 4, TimeRemaining: 30, ScoreDiff: -2, TimeoutsLeft: 2}, nil)
	require.True(t, ok)
	assert.True(t, call)

	call, ok = mgr.CallTimeout(team.Away, ai.TimeoutSituation{Quarter: 1, TimeRemaining: 500, TimeoutsLeft: 4}, nil)
	require.True(t, ok)
	assert.False(t, call)

	call, ok = mgr.CallTimeout(team.Away, ai.TimeoutSituation{Quarter: 1, TimeRemaining: 500, TimeoutsLeft: 4, OpponentRun: 8}, nil)
	require.True(t, ok)
	assert.True(t, call)
}

func TestManager_CallTimeout_FallsBackWithoutBoolean(t *testing.T) {
	mgr, logs := newTestManager(t)
	_, ok := mgr.CallTimeout(team.Home, ai.TimeoutSituation{}, nil)
	assert.False(t, ok, "no scripts loaded")

	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "c.lua", `function call_timeout() return 1 end`), 0))
	_, ok = mgr.CallTimeout(team.Home, ai.TimeoutSituation{}, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("scripting: call_timeout returned a non-boolean").Len())
}

func TestManager_ConcurrentCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", lateGameCoach), 0))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, ok := mgr.CallTimeout(team.Home, ai.TimeoutSituation{Quarter: 2}, nil)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

func TestProperty_CallTimeout_MatchesScript(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "coach.lua", lateGameCoach), 0))
	rapid.Check(t, func(rt *rapid.T) {
		sit := ai.TimeoutSituation{
			Quarter:       rapid.IntRange(1, 6).Draw(rt, "quarter"),
			TimeRemaining: float64(rapid.IntRange(0, 600).Draw(rt, "seconds")),
			ScoreDiff:     rapid.IntRange(-30, 30).Draw(rt, "diff"),
			TimeoutsLeft:  rapid.IntRange(0, 4).Draw(rt, "timeouts"),
			OpponentRun:   rapid.IntRange(0, 15).Draw(rt, "run"),
		}
		want := sit.OpponentRun >= 6 || (sit.Quarter >= 4 && sit.TimeRemaining < 60 && sit.ScoreDiff < 0)
		call, ok := mgr.CallTimeout(team.Home, sit, nil)
		assert.True(rt, ok)
		assert.Equal(rt, want, call)
	})
}

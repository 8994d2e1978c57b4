package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/ai"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// GlobalKey is the reserved key for the shared coach VM. CallHook falls back
// to it when no VM is loaded under the requested key.
const GlobalKey = "__global__"

// TimeoutHook is the Lua global consulted for automatic timeouts:
//
//	function call_timeout(side, quarter, seconds_left, score_diff, timeouts_left, opponent_run)
//	  return boolean
//	end
const TimeoutHook = "call_timeout"

// vm is one sandboxed LState. LStates are single-threaded; mu serialises calls.
type vm struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	// src is the calling game's source, set only while a hook runs.
	src random.Source
}

// Manager owns one sandboxed VM per coach key and dispatches hooks.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager with no VMs.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must be non-nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
}

// LoadCoach creates a sandboxed VM under key and executes every *.lua file in
// scriptDir in lexicographic order. Keys "home" and "away" coach one side;
// GlobalKey coaches both.
//
// Precondition: key must be non-empty; scriptDir must be a readable directory.
// Postcondition: replaces any VM previously loaded under key.
func (m *Manager) LoadCoach(key, scriptDir string, instLimit int) error {
	L := NewSandboxedState()
	v := &vm{L: L, instLimit: instLimit}
	m.registerModules(v, key)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	_, release := withBudget(L, instLimit)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			release()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}
	release()

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = v
	m.mu.Unlock()
	m.logger.Info("coach scripts loaded", zap.String("coach", key), zap.Int("files", len(luaFiles)))
	return nil
}

// LoadGlobal loads the shared coach VM.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadCoach(GlobalKey, scriptDir, instLimit)
}

// CallHook calls the named Lua global in key's VM, falling back to the
// GlobalKey VM. Returns LNil if no VM exists or the hook is undefined. Lua
// runtime errors, including an exhausted instruction budget, are logged at
// warn level and never propagated.
//
// hoops.random and hoops.chance draw from src for the duration of the call;
// with a nil src they raise a Lua error.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, src random.Source, args ...lua.LValue) lua.LValue {
	m.mu.RLock()
	v, ok := m.vms[key]
	if !ok {
		v = m.vms[GlobalKey]
	}
	m.mu.RUnlock()
	if v == nil {
		return lua.LNil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}
	v.src = src
	defer func() { v.src = nil }()
	b, release := withBudget(v.L, v.instLimit)
	defer release()
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("coach", key),
			zap.String("hook", hook),
			zap.Bool("budget_exhausted", b.Exhausted()),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret
}

// CallTimeout consults the side's coach script, drawing any randomness from
// the game's src. ok is false when no script answers with a boolean, in
// which case the decision model decides.
func (m *Manager) CallTimeout(side team.Side, sit ai.TimeoutSituation, src random.Source) (call, ok bool) {
	ret := m.CallHook(string(side), TimeoutHook, src,
		lua.LString(side),
		lua.LNumber(sit.Quarter),
		lua.LNumber(sit.TimeRemaining),
		lua.LNumber(sit.ScoreDiff),
		lua.LNumber(sit.TimeoutsLeft),
		lua.LNumber(sit.OpponentRun),
	)
	b, isBool := ret.(lua.LBool)
	if !isBool {
		if ret != lua.LNil {
			m.logger.Warn("scripting: call_timeout returned a non-boolean",
				zap.String("side", string(side)),
				zap.String("type", ret.Type().String()),
			)
		}
		return false, false
	}
	return bool(b), true
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, k)
	}
}

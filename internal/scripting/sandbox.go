// Package scripting runs sandboxed GopherLua coach scripts that can override
// in-game decisions.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// hook call when no override is configured.
const DefaultInstructionLimit = 100_000

// removedGlobals are stripped from every coach VM. Scripts must not reach the
// filesystem or load code at runtime.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module", "print"}

// removedFields are per-library functions stripped from coach VMs.
// math.random would let a script bypass the game's seeded source, and
// string.dump exposes bytecode.
var removedFields = map[string][]string{
	lua.MathLibName:   {"random", "randomseed"},
	lua.StringLibName: {"dump"},
}

// budget is a context that cancels itself once Done has been called limit
// times. GopherLua polls Done once per opcode, so this is an exact
// instruction count.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func newBudget(limit int) *budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.remaining.Store(int64(limit))
	return b
}

// Done spends one instruction.
func (b *budget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Exhausted reports whether the script ran out of instructions.
func (b *budget) Exhausted() bool { return b.remaining.Load() <= 0 }

// NewSandboxedState creates a coach VM with only the base, table, string,
// and math libraries, minus removedGlobals and removedFields.
//
// Postcondition: Returns a non-nil LState. The caller owns it and must call
// L.Close() when done.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	for lib, fields := range removedFields {
		tbl, ok := L.GetGlobal(lib).(*lua.LTable)
		if !ok {
			continue
		}
		for _, f := range fields {
			tbl.RawSetString(f, lua.LNil)
		}
	}
	return L
}

// withBudget bounds everything L executes until release is called.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func withBudget(L *lua.LState, limit int) (b *budget, release func()) {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	b = newBudget(limit)
	L.SetContext(b)
	return b, func() {
		L.RemoveContext()
		b.cancel()
	}
}

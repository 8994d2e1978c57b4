package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the hoops.* helper table into v's state.
//
//	hoops.log(msg)     logs msg at info level under the VM's key
//	hoops.random()     draws from the calling game's source in [0, 1)
//	hoops.chance(p)    reports whether one draw falls below p
//
// The random helpers fail outside a hook call, so top-level script code
// cannot consume draws.
func (m *Manager) registerModules(v *vm, key string) {
	L := v.L
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("coach script", zap.String("coach", key), zap.String("msg", L.CheckString(1)))
		return 0
	}))
	draw := func(L *lua.LState, name string) float64 {
		if v.src == nil {
			L.RaiseError("hoops.%s: no game random source outside a hook call", name)
		}
		return v.src.Float64()
	}
	L.SetField(mod, "random", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(draw(L, "random")))
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(draw(L, "chance") < p))
		return 1
	}))
	L.SetGlobal("hoops", mod)
}

package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua functions into L. zoneID tags
// log lines written by the scripts.
//
// Precondition: L comes from NewSandbox.
// Postcondition: engine global is defined in L with log and item functions.
func (m *Manager) RegisterModules(L *lua.LState, zoneID string) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("scripting: lua log",
			zap.String("zone", zoneID),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))
	L.SetField(engine, "item", L.NewFunction(m.luaItem))
	L.SetGlobal("engine", engine)
}

// luaItem implements engine.item(def_id) → table|nil.
func (m *Manager) luaItem(L *lua.LState) int {
	id := L.CheckString(1)
	if m.LookupItem == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.LookupItem(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "kind", lua.LString(info.Kind))
	L.SetField(t, "value", lua.LNumber(info.Value))
	L.SetField(t, "weight", lua.LNumber(info.Weight))
	L.Push(t)
	return 1
}

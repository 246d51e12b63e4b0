package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterModules registers the engine table into L:
//
//	engine.log(msg)   logs msg at Info level with logger name "lua"
//	engine.render()   returns the current battlefield text, or "" when Render is unset
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			m.logger.Named("lua").Info(L.CheckString(1))
			return 0
		},
		"render": func(L *lua.LState) int {
			if m.Render == nil {
				L.Push(lua.LString(""))
				return 1
			}
			L.Push(lua.LString(m.Render()))
			return 1
		},
	})
	L.SetGlobal("engine", engine)
}

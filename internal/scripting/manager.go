package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names looked up as Lua globals.
const (
	HookRound     = "on_round"
	HookBattleEnd = "on_battle_end"
)

// EventInfo is a snapshot of one battle event passed to Lua hooks.
type EventInfo struct {
	// Kind is "move", "attack" or "kill"; the hook called is "on_" + Kind.
	Kind          string
	Round         int
	ActorID       int
	ActorFaction  string
	ActorHP       int
	TargetID      int
	TargetFaction string
	TargetHP      int
	FromX, FromY  int
	ToX, ToY      int
}

// ResultInfo is a snapshot of a finished battle passed to on_battle_end.
type ResultInfo struct {
	Rounds      int
	RemainingHP int
	Score       int
	Winner      string
	Aborted     bool
	Casualties  []string
}

// Manager owns one sandboxed LState loaded from a script directory and dispatches hooks.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	logger *zap.Logger

	// Render is injected after construction and backs engine.render(). nil = empty string.
	Render func() string
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; every dispatch is a no-op until Load succeeds.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers the engine module, then executes every *.lua
// file in scriptDir in lexicographic order. A previous VM is closed on success.
//
// Precondition: scriptDir must be a readable directory; instLimit >= 0 (0 = default).
// Postcondition: Returns error on directory or Lua load failure; the old VM stays active.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		release := armLimit(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()

	m.logger.Info("scripting: hooks loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Loaded reports whether a VM is active.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != nil
}

// Close releases the VM. Safe to call multiple times.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if no VM is loaded or
// the hook is not defined. Lua runtime errors, including exhausting the instruction
// budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances created for this Manager's VM.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, args...)
}

func (m *Manager) callLocked(hook string, args ...lua.LValue) (lua.LValue, error) {
	L := m.state
	if L == nil {
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := armLimit(L, m.limit)
	defer release()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// DispatchEvent calls on_<Kind>(ev) with ev converted to a Lua table.
func (m *Manager) DispatchEvent(ev EventInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	tbl := m.state.NewTable()
	tbl.RawSetString("kind", lua.LString(ev.Kind))
	tbl.RawSetString("round", lua.LNumber(ev.Round))
	tbl.RawSetString("actor", lua.LNumber(ev.ActorID))
	tbl.RawSetString("actor_faction", lua.LString(ev.ActorFaction))
	tbl.RawSetString("actor_hp", lua.LNumber(ev.ActorHP))
	if ev.TargetFaction != "" {
		tbl.RawSetString("target", lua.LNumber(ev.TargetID))
		tbl.RawSetString("target_faction", lua.LString(ev.TargetFaction))
		tbl.RawSetString("target_hp", lua.LNumber(ev.TargetHP))
	}
	tbl.RawSetString("from_x", lua.LNumber(ev.FromX))
	tbl.RawSetString("from_y", lua.LNumber(ev.FromY))
	tbl.RawSetString("to_x", lua.LNumber(ev.ToX))
	tbl.RawSetString("to_y", lua.LNumber(ev.ToY))
	_, _ = m.callLocked("on_"+ev.Kind, tbl)
}

// DispatchRound calls on_round(round, living).
func (m *Manager) DispatchRound(round, living int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = m.callLocked(HookRound, lua.LNumber(round), lua.LNumber(living))
}

// DispatchEnd calls on_battle_end(result).
func (m *Manager) DispatchEnd(res ResultInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	tbl := m.state.NewTable()
	tbl.RawSetString("rounds", lua.LNumber(res.Rounds))
	tbl.RawSetString("remaining_hp", lua.LNumber(res.RemainingHP))
	tbl.RawSetString("score", lua.LNumber(res.Score))
	tbl.RawSetString("winner", lua.LString(res.Winner))
	tbl.RawSetString("aborted", lua.LBool(res.Aborted))
	casualties := m.state.NewTable()
	for _, c := range res.Casualties {
		casualties.Append(lua.LString(c))
	}
	tbl.RawSetString("casualties", casualties)
	_, _ = m.callLocked(HookBattleEnd, tbl)
}

package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/vmconfig"
)

// State is one Lua thread: the main thread or a coroutine. Every
// VM-wide mutable thing a Lua program can observe (globals, the module
// cache, the registry) hangs off the *shared* registry table that every
// thread spawned from the same root points at — there is no
// process-wide singleton, per spec §9's "Global mutable state" note.
type State struct {
	cfg      vmconfig.Config
	registry *Table
	stack    *stack

	// coroutine bookkeeping, see api_coroutine.go
	coChan    chan int
	coCaller  *State
	coStatus  api.Status
	isMain    bool
	closeChan chan struct{}

	// debug hook state, see debug.go
	hook          api.Hook
	hookMask      api.HookMask
	hookCount     int
	hookCountdown int
	hookInProgress bool
}

// New creates the main thread of a fresh VM instance.
func New(cfg vmconfig.Config) *State {
	registry := NewTable(0, 8)
	ls := &State{cfg: cfg, registry: registry, isMain: true}
	registry.Put(api.RidxMainThread, ls)
	registry.Put(api.RidxGlobals, NewTable(0, 64))
	ls.pushFrame(newStack(cfg.MinStack, ls))
	return ls
}

func (ls *State) isMainThread() bool {
	return ls.isMain
}

func (ls *State) pushFrame(f *stack) {
	f.prev = ls.stack
	ls.stack = f
}

func (ls *State) popFrame() {
	f := ls.stack
	ls.stack = f.prev
	f.prev = nil
}

// Config exposes the VM-wide configuration (used by stdlib for host
// Environment access and by the loader for stack-size defaults).
func (ls *State) Config() vmconfig.Config { return ls.cfg }

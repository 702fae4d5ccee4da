package state

import (
	"fmt"

	"github.com/lua54vm/core/api"
)

func (ls *State) PushNil() {
	ls.stack.push(nil)
}

func (ls *State) PushBoolean(b bool) {
	ls.stack.push(b)
}

func (ls *State) PushInteger(n int64) {
	ls.stack.push(n)
}

func (ls *State) PushNumber(n float64) {
	ls.stack.push(n)
}

func (ls *State) PushString(s string) {
	ls.stack.push(s)
}

func (ls *State) PushFString(format string, a ...any) {
	ls.stack.push(fmt.Sprintf(format, a...))
}

func (ls *State) PushGoFunction(f api.GoFunction) {
	ls.stack.push(newGoClosure(f, 0))
}

// PushGoClosure pops n values off the stack as the closure's upvalues,
// closed from the start since a Go closure has no owning register
// frame to alias.
func (ls *State) PushGoClosure(f api.GoFunction, n int) {
	c := newGoClosure(f, n)
	for i := n; i > 0; i-- {
		c.upvals[i-1] = &Upvalue{val: ls.stack.pop()}
	}
	ls.stack.push(c)
}

func (ls *State) PushGlobalTable() {
	ls.stack.push(ls.registry.Get(api.RidxGlobals))
}

func (ls *State) PushThread() bool {
	ls.stack.push(ls)
	return ls.isMainThread()
}

// Push is a convenience entry point for Go-side callers (outside the
// GoFunction calling convention) that already hold a Go value of one
// of the supported Lua kinds.
func (ls *State) Push(item any) {
	switch v := item.(type) {
	case nil:
		ls.PushNil()
	case bool:
		ls.PushBoolean(v)
	case int:
		ls.PushInteger(int64(v))
	case int64:
		ls.PushInteger(v)
	case float64:
		ls.PushNumber(v)
	case string:
		ls.PushString(v)
	case api.GoFunction:
		ls.PushGoFunction(v)
	default:
		ls.stack.push(item)
	}
}

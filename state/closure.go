package state

import (
	"fmt"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/binchunk"
)

// Closure is a function value: either a Lua closure pairing a Proto
// with its captured Upvalues, or a host-implemented GoFunction closure
// with its own upvalues (set by PushGoClosure).
type Closure struct {
	proto  *binchunk.Proto
	goFunc api.GoFunction
	upvals []*Upvalue

	// name/namewhat are filled in by the call site for debug.getinfo
	// and traceback formatting (spec §4.5); they describe how the
	// *caller* referred to this closure, not an intrinsic property.
	name     string
	nameWhat string
}

func newLuaClosure(proto *binchunk.Proto) *Closure {
	c := &Closure{proto: proto}
	if n := len(proto.Upvalues); n > 0 {
		c.upvals = make([]*Upvalue, n)
	}
	return c
}

func newGoClosure(f api.GoFunction, nUpvals int) *Closure {
	c := &Closure{goFunc: f}
	if nUpvals > 0 {
		c.upvals = make([]*Upvalue, nUpvals)
	}
	return c
}

func (c *Closure) IsGo() bool { return c.goFunc != nil }

func (c *Closure) String() string {
	if c.goFunc != nil {
		return fmt.Sprintf("function: builtin: %p", c.goFunc)
	}
	return fmt.Sprintf("function: %p", c.proto)
}

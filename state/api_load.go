package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/binchunk"
)

// Load turns a precompiled binary chunk into a callable closure on top
// of the stack. This runtime has no source compiler (spec.md's
// Non-goals explicitly exclude one); chunk must already be the output
// of string.dump or an external compiler producing the binary chunk
// format package binchunk reads.
func (ls *State) Load(chunk []byte, chunkName, mode string) api.Status {
	proto, err := binchunk.Undump(chunk)
	if err != nil {
		ls.stack.push(err.Error())
		return api.StatusErrSyntax
	}
	if proto.Source == "" {
		proto.Source = chunkName
	}

	c := newLuaClosure(proto)
	ls.stack.push(c)
	if len(proto.Upvalues) > 0 {
		env := ls.registry.Get(api.RidxGlobals)
		c.upvals[0] = &Upvalue{val: env}
	}
	return api.StatusOK
}

package state

import (
	"testing"

	"github.com/lua54vm/core/binchunk"
	"github.com/lua54vm/core/vmconfig"
	"github.com/lua54vm/core/vmerr"
)

func TestCallLuaClosureRejectsTooManyRegisters(t *testing.T) {
	cfg := vmconfig.DefaultConfig()
	cfg.MaxRegisters = 10
	ls := New(cfg)
	proto := &binchunk.Proto{Source: "=regs", MaxStackSize: byte(cfg.MaxRegisters + 1)}
	c := newLuaClosure(proto)
	ls.stack.push(c)

	err := vmerr.Protect(func() {
		ls.callLuaClosure(0, 0, c, false)
	})
	if err == nil {
		t.Fatalf("expected a 'too many registers' error")
	}
}

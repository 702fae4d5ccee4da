package state_test

import (
	"testing"

	"github.com/lua54vm/core/binchunk"
	"github.com/lua54vm/core/state"
	"github.com/lua54vm/core/vm"
	"github.com/lua54vm/core/vmconfig"
)

// This runtime has no source-level compiler (spec.md excludes one);
// Load/LoadString only accept an already-compiled binary chunk. These
// tests hand-assemble tiny Protos the way string.dump's output would
// look, dump them, and run them through the real VM loop end to end.

func newTestState(t *testing.T) *state.State {
	t.Helper()
	ls := state.New(vmconfig.DefaultConfig())
	ls.OpenLibs()
	return ls
}

func encodeABC(op, a, b, c int) uint32 {
	return uint32(op) | uint32(a)<<6 | uint32(c)<<14 | uint32(b)<<23
}

func encodeABx(op, a, bx int) uint32 {
	return uint32(op) | uint32(a)<<6 | uint32(bx)<<14
}

func loadChunk(t *testing.T, ls *state.State, proto *binchunk.Proto) {
	t.Helper()
	data := binchunk.Dump(proto)
	if ls.Load(data, proto.Source, "b") != 0 {
		t.Fatalf("load failed: %s", ls.ToString2(-1))
	}
}

// return 1 + 2
func TestArithmeticAddition(t *testing.T) {
	ls := newTestState(t)
	proto := &binchunk.Proto{
		Source:       "=add",
		MaxStackSize: 3,
		Constants:    []any{int64(1), int64(2)},
		Code: []uint32{
			encodeABx(vm.OpLoadK, 0, 0),  // R0 := K0 (1)
			encodeABx(vm.OpLoadK, 1, 1),  // R1 := K1 (2)
			encodeABC(vm.OpAdd, 2, 0, 1), // R2 := R0 + R1
			encodeABC(vm.OpReturn, 2, 2, 0),
		},
	}
	loadChunk(t, ls, proto)
	ls.Call(0, 1)
	if v := ls.ToInteger(-1); v != 3 {
		t.Fatalf("1+2 = %d, want 3", v)
	}
}

// return 3 / 2 (always float division, per spec)
func TestArithmeticDivisionIsAlwaysFloat(t *testing.T) {
	ls := newTestState(t)
	proto := &binchunk.Proto{
		Source:       "=div",
		MaxStackSize: 3,
		Constants:    []any{int64(3), int64(2)},
		Code: []uint32{
			encodeABx(vm.OpLoadK, 0, 0),
			encodeABx(vm.OpLoadK, 1, 1),
			encodeABC(vm.OpDiv, 2, 0, 1),
			encodeABC(vm.OpReturn, 2, 2, 0),
		},
	}
	loadChunk(t, ls, proto)
	ls.Call(0, 1)
	if v := ls.ToNumber(-1); v != 1.5 {
		t.Fatalf("3/2 = %v, want 1.5", v)
	}
}

// return nil + 1, caught by PCall as a runtime error.
func TestPCallCatchesRuntimeError(t *testing.T) {
	ls := newTestState(t)
	proto := &binchunk.Proto{
		Source:       "=err",
		MaxStackSize: 3,
		Constants:    []any{int64(1)},
		Code: []uint32{
			encodeABC(vm.OpLoadNil, 0, 0, 0), // R0 := nil
			encodeABx(vm.OpLoadK, 1, 0),      // R1 := K0 (1)
			encodeABC(vm.OpAdd, 2, 0, 1),     // R2 := R0 + R1, raises
			encodeABC(vm.OpReturn, 2, 2, 0),
		},
	}
	loadChunk(t, ls, proto)
	status := ls.PCall(0, -1, 0)
	if status == 0 {
		t.Fatalf("expected a runtime error, got none")
	}
	if ls.ToString2(-1) == "" {
		t.Fatalf("expected a non-empty error message")
	}
}

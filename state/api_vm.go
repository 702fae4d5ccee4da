package state

// These methods implement api.VM, the subset of the runtime that only
// makes sense while a Lua closure's frame is on top of the stack: the
// bytecode dispatch loop (package vm) is the only caller.

func (ls *State) PC() int {
	return ls.stack.pc
}

func (ls *State) AddPC(n int) {
	ls.stack.lastPC = ls.stack.pc
	ls.stack.pc += n
}

func (ls *State) Fetch() uint32 {
	i := ls.stack.closure.proto.Code[ls.stack.pc]
	ls.stack.lastPC = ls.stack.pc
	ls.stack.pc++
	return i
}

func (ls *State) GetConst(idx int) {
	ls.stack.push(ls.stack.closure.proto.Constants[idx])
}

// GetRK pushes either a register value or a constant, per the RK
// operand encoding: an index >0xFF selects constant (idx&0xFF),
// otherwise it's a 0-based register.
func (ls *State) GetRK(rk int) {
	if rk > 0xFF {
		ls.GetConst(rk & 0xFF)
	} else {
		ls.PushValue(rk + 1)
	}
}

func (ls *State) RegisterCount() int {
	return int(ls.stack.closure.proto.MaxStackSize)
}

func (ls *State) LoadVararg(n int) {
	if n < 0 {
		n = len(ls.stack.varargs)
	}
	ls.stack.check(n)
	ls.stack.pushN(ls.stack.varargs, n)
}

func (ls *State) LoadProto(idx int) {
	s := ls.stack
	subProto := s.closure.proto.Protos[idx]
	c := newLuaClosure(subProto)
	s.push(c)

	for i := range subProto.Upvalues {
		uvIdx := int(subProto.Upvalues[i].Idx)
		if subProto.Upvalues[i].Instack == 1 {
			c.upvals[i] = s.findOrCreateUpvalue(uvIdx)
		} else {
			c.upvals[i] = s.closure.upvals[uvIdx]
		}
	}
}

func (ls *State) CloseUpvalues(a int) {
	ls.stack.closeUpvaluesFrom(a - 1)
}

// IsTailCallBoundary reports whether the current frame was entered via
// a tail call, so debug.traceback can collapse it per spec §4.5's
// "(...tail calls...)" rule instead of showing a fabricated caller.
func (ls *State) IsTailCallBoundary() bool {
	return ls.stack.isTailCall
}

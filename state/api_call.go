package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/vm"
	"github.com/lua54vm/core/vmerr"
)

func (ls *State) Call(nArgs, nResults int) {
	val := ls.stack.get(-(nArgs + 1))

	c, ok := val.(*Closure)
	if !ok {
		if mf := getMetafield(val, "__call", ls); mf != nil {
			if cc, ok2 := mf.(*Closure); ok2 {
				ls.stack.push(val)
				ls.Insert(-(nArgs + 2))
				nArgs++
				c, ok = cc, true
			}
		}
	}

	if !ok {
		typeErr("call", typeOf(val).String())
		return
	}

	if c.IsGo() {
		ls.callGoClosure(nArgs, nResults, c)
	} else {
		ls.callLuaClosure(nArgs, nResults, c, false)
	}
}

func (ls *State) callGoClosure(nArgs, nResults int, c *Closure) {
	newFrame := newStack(nArgs+ls.cfg.MinStack, ls)
	newFrame.closure = c

	if nArgs > 0 {
		args := ls.stack.popN(nArgs)
		newFrame.pushN(args, nArgs)
	}
	ls.stack.pop()

	ls.pushFrame(newFrame)
	ls.notifyHook(api.HookCall, 0)
	r := c.goFunc(ls)
	ls.notifyHook(api.HookReturn, 0)
	ls.popFrame()

	if nResults != 0 {
		results := newFrame.popN(r)
		ls.stack.check(len(results))
		ls.stack.pushN(results, nResults)
	}
}

// callLuaClosure pushes a fresh frame for c and runs it to completion.
// isTailCall marks the frame as entered via TAILCALL, which debug
// traceback formatting collapses per spec §4.5.
func (ls *State) callLuaClosure(nArgs, nResults int, c *Closure, isTailCall bool) {
	if ls.stack.depth() >= ls.cfg.MaxCallDepth {
		vmerr.Raise("stack overflow")
	}

	nRegs := int(c.proto.MaxStackSize)
	if nRegs > ls.cfg.MaxRegisters {
		vmerr.Raisef("too many registers (limit is %d)", ls.cfg.MaxRegisters)
	}
	nParams := int(c.proto.NumParams)
	isVararg := c.proto.IsVararg == 1

	newFrame := newStack(nRegs+ls.cfg.MinStack, ls)
	newFrame.closure = c
	newFrame.isTailCall = isTailCall
	newFrame.ftransfer = ls.stack.top - nArgs - 1
	newFrame.ntransfer = nArgs

	funcAndArgs := ls.stack.popN(nArgs + 1)
	newFrame.pushN(funcAndArgs[1:], nParams)
	newFrame.top = nRegs
	if nArgs > nParams && isVararg {
		newFrame.varargs = funcAndArgs[nParams+1:]
	}

	ls.pushFrame(newFrame)
	ls.notifyHook(api.HookCall, c.proto.LineDefined)
	ls.runLuaClosure()
	ls.notifyHook(api.HookReturn, 0)
	ls.popFrame()

	if nResults != 0 {
		results := newFrame.popN(newFrame.top - nRegs)
		ls.stack.check(len(results))
		ls.stack.pushN(results, nResults)
	}
}

// TailCall implements the TAILCALL opcode: the callee reuses the
// current frame in place instead of recursing into callLuaClosure, so
// tail-recursive Lua code doesn't grow the Go call stack either, per
// spec §4.3's tail-call requirement. Go functions have no frame to
// reuse and are tail-called as an ordinary call.
func (ls *State) TailCall(nArgs int) {
	val := ls.stack.get(-(nArgs + 1))

	c, ok := val.(*Closure)
	if !ok {
		if mf := getMetafield(val, "__call", ls); mf != nil {
			if cc, ok2 := mf.(*Closure); ok2 {
				ls.stack.push(val)
				ls.Insert(-(nArgs + 2))
				nArgs++
				c, ok = cc, true
			}
		}
	}
	if !ok {
		typeErr("call", typeOf(val).String())
		return
	}
	if c.IsGo() {
		ls.callGoClosure(nArgs, api.MultiRet, c)
		return
	}

	nRegs := int(c.proto.MaxStackSize)
	if nRegs > ls.cfg.MaxRegisters {
		vmerr.Raisef("too many registers (limit is %d)", ls.cfg.MaxRegisters)
	}
	nParams := int(c.proto.NumParams)
	isVararg := c.proto.IsVararg == 1

	cur := ls.stack
	cur.closeUpvaluesFrom(0)
	funcAndArgs := cur.popN(nArgs + 1)

	needed := nRegs + ls.cfg.MinStack
	if len(cur.slots) < needed {
		cur.slots = make([]any, needed)
	} else {
		for i := range cur.slots {
			cur.slots[i] = nil
		}
	}
	cur.top = 0
	cur.closure = c
	cur.pc = 0
	cur.lastPC = 0
	cur.varargs = nil
	cur.isTailCall = true

	cur.pushN(funcAndArgs[1:], nParams)
	cur.top = nRegs
	if nArgs > nParams && isVararg {
		cur.varargs = funcAndArgs[nParams+1:]
	}
}

func (ls *State) runLuaClosure() {
	base := ls.stack
	for {
		// re-read the closure every iteration: TAILCALL mutates
		// base.closure in place to reuse this frame.
		if ls.hook != nil {
			ls.tickHook(lineForPC(base.closure, base.pc))
		}
		inst := vm.Instruction(ls.Fetch())
		inst.Execute(ls)
		if inst.Opcode() == vm.OpReturn {
			break
		}
	}
}

// PCall calls a function in protected mode: any vmerr.Raise reaching
// this boundary unwinds back here, per spec §9's error-handling model.
// When msgh names a message handler, it's called with the error value
// (while the failing frame is still on top) to produce the final error
// value, matching lua_pcall's documented xpcall semantics.
func (ls *State) PCall(nArgs, nResults, msgh int) api.Status {
	caller := ls.stack
	status := api.StatusOK

	luaErr := vmerr.Protect(func() {
		ls.Call(nArgs, nResults)
	})

	if luaErr != nil {
		errVal := luaErr.Value
		if msgh != 0 {
			handler := caller.get(msgh)
			if hc, ok := handler.(*Closure); ok {
				handled := vmerr.Protect(func() {
					ls.stack.push(hc)
					ls.stack.push(errVal)
					ls.Call(1, 1)
					errVal = ls.stack.pop()
				})
				if handled != nil {
					errVal = handled.Value
				}
			}
		}
		for ls.stack != caller {
			ls.popFrame()
		}
		ls.stack.push(errVal)
		status = api.StatusErrRun
	}
	return status
}

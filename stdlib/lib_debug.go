package stdlib

import (
	"fmt"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/debugapi"
)

var debugFuncs = api.FuncReg{
	"getinfo":     debugGetInfo,
	"traceback":   debugTraceback,
	"sethook":     debugSetHook,
	"gethook":     debugGetHook,
	"getlocal":    debugGetLocal,
	"setlocal":    debugSetLocal,
	"getupvalue":  debugGetUpvalue,
	"setupvalue":  debugSetUpvalue,
	"upvalueid":   debugUpvalueId,
	"upvaluejoin": debugUpvalueJoin,
	"dumpstate":   debugDumpState,
}

// OpenDebugLib installs debug.*, per spec §6, as a thin wrapper over
// the VM's DebugAPI stack-introspection surface.
func OpenDebugLib(ls api.State) int {
	ls.NewLib(debugFuncs)
	return 1
}

func pushDebugInfo(ls api.State, ar *api.DebugInfo, what string) {
	ls.CreateTable(0, 8)
	setStr := func(k, v string) {
		ls.PushString(v)
		ls.SetField(-2, k)
	}
	setInt := func(k string, v int) {
		ls.PushInteger(int64(v))
		ls.SetField(-2, k)
	}
	if containsAny(what, "n") {
		setStr("name", ar.Name)
		setStr("namewhat", ar.NameWhat)
	}
	if containsAny(what, "S") {
		setStr("what", ar.What)
		setStr("source", ar.Source)
		setStr("short_src", ar.ShortSrc)
		setInt("linedefined", ar.LineDefined)
		setInt("lastlinedefined", ar.LastLineDefined)
	}
	if containsAny(what, "l") {
		setInt("currentline", ar.CurrentLine)
	}
	if containsAny(what, "u") {
		setInt("nups", ar.NUps)
		setInt("nparams", ar.NParams)
		ls.PushBoolean(ar.IsVararg)
		ls.SetField(-2, "isvararg")
	}
	if containsAny(what, "t") {
		ls.PushBoolean(ar.IsTailCall)
		ls.SetField(-2, "istailcall")
	}
}

func containsAny(s, chars string) bool {
	for i := 0; i < len(chars); i++ {
		for j := 0; j < len(s); j++ {
			if s[j] == chars[i] {
				return true
			}
		}
	}
	return false
}

// debug.getinfo ([thread,] f [, what])
func debugGetInfo(ls api.State) int {
	var ar api.DebugInfo
	var what string
	var ok bool
	if ls.IsFunction(1) {
		what = ls.OptString(2, "nSltu")
		ok = ls.GetInfoForFunc(ls.ToPointer(1), what, &ar)
	} else {
		level := int(ls.CheckInteger(1))
		what = ls.OptString(2, "nSltu")
		ok = ls.GetInfo(level, what, &ar)
	}
	if !ok {
		ls.PushNil()
		return 1
	}
	pushDebugInfo(ls, &ar, what)
	return 1
}

// debug.traceback ([thread,] [message [, level]])
func debugTraceback(ls api.State) int {
	msg := ls.OptString(1, "")
	level := int(ls.OptInteger(2, 1))
	ls.PushString(ls.Traceback(msg, level))
	return 1
}

// debug.sethook ([thread,] [hook, mask [, count]])
func debugSetHook(ls api.State) int {
	if ls.IsNoneOrNil(1) {
		ls.SetHook(nil, 0, 0)
		return 0
	}
	mask := ls.CheckString(2)
	count := int(ls.OptInteger(3, 0))
	var m api.HookMask
	if containsAny(mask, "c") {
		m |= api.MaskCall
	}
	if containsAny(mask, "r") {
		m |= api.MaskReturn
	}
	if containsAny(mask, "l") {
		m |= api.MaskLine
	}
	if count > 0 {
		m |= api.MaskCount
	}
	hookFn := func(vm api.State, event api.HookEvent, line int) {
		ls.PushString(event.String())
		if line >= 0 {
			ls.PushInteger(int64(line))
		} else {
			ls.PushNil()
		}
		ls.Call(2, 0)
	}
	ls.SetHook(hookFn, m, count)
	return 0
}

// debug.gethook ([thread])
func debugGetHook(ls api.State) int {
	_, mask, count := ls.GetHook()
	var s string
	if mask&api.MaskCall != 0 {
		s += "c"
	}
	if mask&api.MaskReturn != 0 {
		s += "r"
	}
	if mask&api.MaskLine != 0 {
		s += "l"
	}
	ls.PushString(s)
	ls.PushInteger(int64(count))
	return 2
}

// debug.getlocal ([thread,] f, index)
func debugGetLocal(ls api.State) int {
	level := int(ls.CheckInteger(1))
	n := int(ls.CheckInteger(2))
	name, ok := ls.GetLocal(level, n)
	if !ok {
		ls.PushNil()
		return 1
	}
	ls.PushString(name)
	ls.Insert(-2)
	return 2
}

// debug.setlocal ([thread,] level, index)
func debugSetLocal(ls api.State) int {
	level := int(ls.CheckInteger(1))
	n := int(ls.CheckInteger(2))
	name, ok := ls.SetLocal(level, n)
	if !ok {
		ls.PushNil()
		return 1
	}
	ls.PushString(name)
	return 1
}

// debug.getupvalue (f, up)
func debugGetUpvalue(ls api.State) int {
	n := int(ls.CheckInteger(2))
	name, ok := ls.GetUpvalue(1, n)
	if !ok {
		ls.PushNil()
		return 1
	}
	ls.PushString(name)
	ls.Insert(-2)
	return 2
}

// debug.setupvalue (f, up, value)
func debugSetUpvalue(ls api.State) int {
	n := int(ls.CheckInteger(2))
	name, ok := ls.SetUpvalue(1, n)
	if !ok {
		ls.PushNil()
		return 1
	}
	ls.PushString(name)
	return 1
}

// debug.upvalueid (f, n) returns an opaque identity for the upvalue.
// The value model here has no userdata type, so the identity is
// surfaced as its pointer-formatted string rather than a light
// userdata value; callers only ever compare it for equality.
func debugUpvalueId(ls api.State) int {
	n := int(ls.CheckInteger(2))
	id := ls.UpvalueId(1, n)
	ls.PushString(fmt.Sprintf("%p", id))
	return 1
}

// debug.upvaluejoin (f1, n1, f2, n2)
func debugUpvalueJoin(ls api.State) int {
	n1 := int(ls.CheckInteger(2))
	n2 := int(ls.CheckInteger(4))
	ls.UpvalueJoin(1, n1, 3, n2)
	return 0
}

// debug.dumpstate (v) returns a JSON snapshot of v, for REPL
// inspection and crash diagnostics. Not part of reference Lua's
// debug library.
func debugDumpState(ls api.State) int {
	ls.CheckAny(1)
	s, err := debugapi.DumpState(ls, 1)
	if err != nil {
		ls.Error2("dumpstate: %s", err)
	}
	ls.PushString(s)
	return 1
}

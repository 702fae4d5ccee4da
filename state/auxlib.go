package state

import (
	"fmt"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/stdlib"
	"github.com/lua54vm/core/value"
)

func (ls *State) Error2(format string, a ...any) int {
	ls.PushFString(format, a...)
	return ls.Error()
}

func (ls *State) ArgError(arg int, extraMsg string) int {
	return ls.Error2("bad argument #%d (%s)", arg, extraMsg)
}

func (ls *State) CheckStack2(sz int, msg string) {
	if !ls.CheckStack(sz) {
		if msg != "" {
			ls.Error2("stack overflow (%s)", msg)
		} else {
			ls.Error2("stack overflow")
		}
	}
}

func (ls *State) ArgCheck(cond bool, arg int, extraMsg string) {
	if !cond {
		ls.ArgError(arg, extraMsg)
	}
}

func (ls *State) CheckAny(arg int) any {
	if ls.Type(arg) == api.TypeNone {
		ls.ArgError(arg, "value expected")
	}
	return ls.stack.get(arg)
}

func (ls *State) CheckType(arg int, t api.ValueType) {
	if ls.Type(arg) != t {
		ls.tagError(arg, t)
	}
}

func (ls *State) CheckInteger(arg int) int64 {
	i, ok := ls.ToIntegerX(arg)
	if !ok {
		ls.intError(arg)
	}
	return i
}

func (ls *State) CheckNumber(arg int) float64 {
	f, ok := ls.ToNumberX(arg)
	if !ok {
		ls.tagError(arg, api.TypeNumber)
	}
	return f
}

func (ls *State) CheckString(arg int) string {
	s, ok := ls.ToStringX(arg)
	if !ok {
		ls.tagError(arg, api.TypeString)
	}
	return s
}

func (ls *State) CheckBool(arg int) bool {
	if ls.Type(arg) != api.TypeBoolean {
		ls.tagError(arg, api.TypeBoolean)
	}
	return ls.ToBoolean(arg)
}

func (ls *State) OptInteger(arg int, def int64) int64 {
	if ls.IsNoneOrNil(arg) {
		return def
	}
	return ls.CheckInteger(arg)
}

func (ls *State) OptNumber(arg int, def float64) float64 {
	if ls.IsNoneOrNil(arg) {
		return def
	}
	return ls.CheckNumber(arg)
}

func (ls *State) OptString(arg int, def string) string {
	if ls.IsNoneOrNil(arg) {
		return def
	}
	return ls.CheckString(arg)
}

func (ls *State) OptBool(arg int, def bool) bool {
	if ls.IsNoneOrNil(arg) {
		return def
	}
	return ls.ToBoolean(arg)
}

func (ls *State) DoFile(filename string) bool {
	return ls.LoadFile(filename) != api.StatusOK ||
		ls.PCall(0, api.MultiRet, 0) != api.StatusOK
}

func (ls *State) DoString(str, source string) bool {
	return ls.LoadString(str, source) != api.StatusOK ||
		ls.PCall(0, api.MultiRet, 0) != api.StatusOK
}

func (ls *State) LoadFile(filename string) api.Status {
	return ls.LoadFileX(filename, "bt")
}

func (ls *State) LoadFileX(filename, mode string) api.Status {
	data, err := ls.cfg.Environment.ReadFile(filename)
	if err != nil {
		ls.stack.push(err.Error())
		return api.StatusErrFile
	}
	return ls.Load(data, "@"+filename, mode)
}

func (ls *State) LoadString(s, source string) api.Status {
	return ls.Load([]byte(s), source, "bt")
}

func (ls *State) TypeName2(idx int) string {
	return ls.TypeName(ls.Type(idx))
}

func (ls *State) Len2(idx int) int64 {
	ls.Len(idx)
	i, isNum := ls.ToIntegerX(-1)
	if !isNum {
		ls.Error2("object length is not an integer")
	}
	ls.Pop(1)
	return i
}

// ToString2 implements tostring(): consults __tostring, then formats
// numbers/strings/booleans/nil/tables directly, falling back to
// "type: address" with an optional __name override.
func (ls *State) ToString2(idx int) string {
	if ls.CallMeta(idx, "__tostring") {
		if !ls.IsString(-1) {
			ls.Error2("'__tostring' must return a string")
		}
		return ls.CheckString(-1)
	}

	switch ls.Type(idx) {
	case api.TypeNumber:
		v := ls.stack.get(idx)
		ls.PushString(value.NumberToString(v))
	case api.TypeString:
		ls.PushValue(idx)
	case api.TypeBoolean:
		if ls.ToBoolean(idx) {
			ls.PushString("true")
		} else {
			ls.PushString("false")
		}
	case api.TypeNil:
		ls.PushString("nil")
	default:
		tt := ls.GetMetafield(idx, "__name")
		var kind string
		if tt == api.TypeString {
			kind = ls.CheckString(-1)
		} else {
			kind = ls.TypeName2(idx)
		}
		ls.PushString(fmt.Sprintf("%s: %p", kind, ls.ToPointer(idx)))
		if tt != api.TypeNil {
			ls.Remove(-2)
		}
	}
	return ls.CheckString(-1)
}

func (ls *State) GetSubTable(idx int, fname string) bool {
	if ls.GetField(idx, fname) == api.TypeTable {
		return true
	}
	ls.Pop(1)
	idx = ls.stack.absIndex(idx)
	ls.NewTable()
	ls.PushValue(-1)
	ls.SetField(idx, fname)
	return false
}

func (ls *State) GetMetafield(obj int, event string) api.ValueType {
	if !ls.GetMetatable(obj) {
		return api.TypeNil
	}

	ls.PushString(event)
	tt := ls.RawGet(-2)
	if tt == api.TypeNil {
		ls.Pop(2)
	} else {
		ls.Remove(-2)
	}
	return tt
}

func (ls *State) CallMeta(obj int, event string) bool {
	obj = ls.AbsIndex(obj)
	if ls.GetMetafield(obj, event) == api.TypeNil {
		return false
	}
	ls.PushValue(obj)
	ls.Call(1, 1)
	return true
}

// OpenLibs installs the full standard library surface named in spec
// §6, each module registered under both _LOADED and the global table
// (mirroring the teacher's OpenLibs/RequireF pairing).
func (ls *State) OpenLibs() {
	libs := map[string]api.GoFunction{
		"_G":        stdlib.OpenBaseLib,
		"string":    stdlib.OpenStringLib,
		"table":     stdlib.OpenTableLib,
		"math":      stdlib.OpenMathLib,
		"os":        stdlib.OpenOSLib,
		"io":        stdlib.OpenIOLib,
		"coroutine": stdlib.OpenCoroutineLib,
		"debug":     stdlib.OpenDebugLib,
	}

	for name, open := range libs {
		ls.RequireF(name, open, true)
		ls.Pop(1)
	}
}

func (ls *State) RequireF(modname string, openf api.GoFunction, glb bool) {
	ls.GetSubTable(api.RegistryIndex, "_LOADED")
	ls.GetField(-1, modname)
	if !ls.ToBoolean(-1) {
		ls.Pop(1)
		ls.PushGoFunction(openf)
		ls.PushString(modname)
		ls.Call(1, 1)
		ls.PushValue(-1)
		ls.SetField(-3, modname)
	}
	ls.Remove(-2)
	if glb {
		ls.PushValue(-1)
		ls.SetGlobal(modname)
	}
}

func (ls *State) NewLib(l api.FuncReg) {
	ls.NewLibTable(l)
	ls.SetFuncs(l, 0)
}

func (ls *State) NewLibTable(l api.FuncReg) {
	ls.CreateTable(0, len(l))
}

func (ls *State) SetFuncs(l api.FuncReg, nup int) {
	ls.CheckStack2(nup, "too many upvalues")
	for name, fn := range l {
		for i := 0; i < nup; i++ {
			ls.PushValue(-nup)
		}
		ls.PushGoClosure(fn, nup)
		ls.SetField(-(nup + 2), name)
	}
	ls.Pop(nup)
}

func (ls *State) intError(arg int) {
	if ls.IsNumber(arg) {
		ls.ArgError(arg, "number has no integer representation")
	} else {
		ls.tagError(arg, api.TypeNumber)
	}
}

func (ls *State) tagError(arg int, tag api.ValueType) {
	ls.typeError(arg, ls.TypeName(tag))
}

func (ls *State) typeError(arg int, tname string) int {
	var typeArg string
	if ls.GetMetafield(arg, "__name") == api.TypeString {
		typeArg = ls.ToString(-1)
	} else if ls.Type(arg) == api.TypeLightUserdata {
		typeArg = "light userdata"
	} else {
		typeArg = ls.TypeName2(arg)
	}
	msg := tname + " expected, got " + typeArg
	ls.PushString(msg)
	return ls.ArgError(arg, msg)
}

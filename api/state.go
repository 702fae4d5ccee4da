package api

import "github.com/lua54vm/core/vmconfig"

// GoFunction is a host-implemented callable with the same calling
// convention as a Lua closure: it receives the running VM (through
// which it reads arguments off the stack) and returns how many result
// values it pushed.
type GoFunction func(State) int

// FuncReg is a named table of GoFunctions, used by NewLib/SetFuncs to
// register a standard-library module in one call.
type FuncReg map[string]GoFunction

func UpvalueIndex(i int) int {
	return RegistryIndex - i
}

// State is the full surface the standard library programs against. It
// intentionally mirrors the shape of the reference Lua C API: values
// are exchanged through an index-addressed virtual stack rather than
// passed as Go values, so GoFunction implementations read exactly like
// their Lua-C counterparts.
type State interface {
	BasicAPI
	AuxLib
	CoroutineAPI
	DebugAPI
}

type BasicAPI interface {
	GetTop() int
	AbsIndex(idx int) int
	CheckStack(n int) bool
	Pop(n int)
	Copy(fromIdx, toIdx int)
	PushValue(idx int)
	Replace(idx int)
	Insert(idx int)
	Remove(idx int)
	Rotate(idx, n int)
	SetTop(idx int)
	XMove(to State, n int)

	TypeName(tp ValueType) string
	Type(idx int) ValueType
	IsNone(idx int) bool
	IsNil(idx int) bool
	IsNoneOrNil(idx int) bool
	IsBoolean(idx int) bool
	IsInteger(idx int) bool
	IsNumber(idx int) bool
	IsString(idx int) bool
	IsTable(idx int) bool
	IsThread(idx int) bool
	IsFunction(idx int) bool
	IsGoFunction(idx int) bool
	ToBoolean(idx int) bool
	ToInteger(idx int) int64
	ToIntegerX(idx int) (int64, bool)
	ToNumber(idx int) float64
	ToNumberX(idx int) (float64, bool)
	ToString(idx int) string
	ToStringX(idx int) (string, bool)
	ToGoFunction(idx int) GoFunction
	ToThread(idx int) State
	ToPointer(idx int) any
	RawEqual(idx1, idx2 int) bool
	RawLen(idx int) int64

	PushNil()
	PushBoolean(b bool)
	PushInteger(n int64)
	PushNumber(n float64)
	PushString(s string)
	PushFString(format string, a ...any)
	PushGoFunction(f GoFunction)
	PushGoClosure(f GoFunction, n int)
	PushGlobalTable()
	PushThread() bool
	Push(item any)

	Arith(op ArithOp)
	Compare(idx1, idx2 int, op CompareOp) bool

	NewTable()
	CreateTable(nArr, nRec int)
	GetTable(idx int) ValueType
	GetField(idx int, k string) ValueType
	GetI(idx int, i int64) ValueType
	RawGet(idx int) ValueType
	RawGetI(idx int, i int64) ValueType
	GetGlobal(name string) ValueType
	GetMetatable(idx int) bool
	Next(idx int) bool

	SetTable(idx int)
	SetField(idx int, k string)
	SetMetatable(idx int)
	SetI(idx int, i int64)
	RawSet(idx int)
	RawSetI(idx int, i int64)
	SetGlobal(name string)
	Register(name string, f GoFunction)

	Load(chunk []byte, chunkName, mode string) Status
	Call(nArgs, nResults int)
	PCall(nArgs, nResults, msgh int) Status

	Len(idx int)
	Error() int
	ErrorLevel(level int) int
	StringToNumber(s string) bool

	// Config exposes the owning VM's tunables, notably Environment, to
	// standard-library GoFunctions that need host filesystem/process
	// access (os, io) without importing package state directly.
	Config() vmconfig.Config
}

type AuxLib interface {
	Error2(format string, a ...any) int
	ArgError(arg int, extraMsg string) int
	CheckStack2(sz int, msg string)
	ArgCheck(cond bool, arg int, extraMsg string)
	CheckAny(arg int) any
	CheckType(arg int, t ValueType)
	CheckInteger(arg int) int64
	CheckNumber(arg int) float64
	CheckString(arg int) string
	CheckBool(arg int) bool
	OptInteger(arg int, d int64) int64
	OptNumber(arg int, d float64) float64
	OptString(arg int, d string) string
	OptBool(arg int, d bool) bool

	DoFile(filename string) bool
	DoString(str, source string) bool
	LoadFile(filename string) Status
	LoadFileX(filename, mode string) Status
	LoadString(s, source string) Status

	TypeName2(idx int) string
	ToString2(idx int) string
	Len2(idx int) int64
	GetSubTable(idx int, fname string) bool
	GetMetafield(obj int, e string) ValueType
	CallMeta(obj int, e string) bool
	OpenLibs()
	RequireF(modname string, openf GoFunction, glb bool)
	NewLib(l FuncReg)
	NewLibTable(l FuncReg)
	SetFuncs(l FuncReg, nup int)
}

type CoroutineAPI interface {
	NewThread() State
	Resume(from State, nArgs int) Status
	Yield(nResults int) Status
	Status() Status
	IsYieldable() bool
	CloseThread() Status
	GetStack() bool
}

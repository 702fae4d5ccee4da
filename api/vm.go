package api

// VM is the interface the bytecode dispatch loop (package vm) executes
// instructions against. It extends State with the register/PC/RK
// primitives that are only meaningful while a Lua closure's frame is
// on top of the stack.
type VM interface {
	State

	PC() int
	AddPC(n int)
	Fetch() uint32
	GetConst(idx int)
	GetRK(rk int)
	RegisterCount() int
	LoadVararg(n int)
	LoadProto(idx int)
	CloseUpvalues(a int)
	IsTailCallBoundary() bool
	TailCall(nArgs int)
}

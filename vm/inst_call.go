package vm

import "github.com/lua54vm/core/api"

// R(A), ..., R(A+C-2) := R(A)(R(A+1), ..., R(A+B-1))
func call(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++

	nArgs := pushFuncAndArgs(a, b, vm)
	vm.Call(nArgs, c-1)
	popResults(a, c, vm)
}

// return R(A)(R(A+1), ..., R(A+B-1))
func tailCall(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++

	nArgs := pushFuncAndArgs(a, b, vm)
	vm.TailCall(nArgs)
}

// R(A+3), ..., R(A+2+C) := R(A)(R(A+1), R(A+2))
func tForCall(i Instruction, vm api.VM) {
	a, _, c := i.ABC()
	a++

	pushFuncAndArgs(a, 3, vm)
	vm.Call(2, c)
	popResults(a+3, c+1, vm)
}

// if R(A+1) ~= nil then { R(A) := R(A+1); pc += sBx }
func tForLoop(i Instruction, vm api.VM) {
	a, sBx := i.AsBx()
	a++

	if !vm.IsNil(a + 1) {
		vm.Copy(a+1, a)
		vm.AddPC(sBx)
	}
}

// R(A) := closure(KPROTO[Bx])
func closure(i Instruction, vm api.VM) {
	a, bx := i.ABx()
	a++

	vm.LoadProto(bx)
	vm.Replace(a)
}

// R(A), ..., R(A+B-2) := vararg
func vararg(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++

	if b != 1 {
		vm.LoadVararg(b - 1)
		popResults(a, b, vm)
	}
}

// return R(A), ..., R(A+B-2)
func opReturn(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++

	switch {
	case b == 1:
		vm.SetTop(vm.RegisterCount())
	case b > 1:
		vm.CheckStack(b - 1)
		for r := a; r <= a+b-2; r++ {
			vm.PushValue(r)
		}
	}
	// b == 0: a preceding multiret CALL/VARARG already left its
	// results floating above the register window; nothing to add.
}

// pushFuncAndArgs pushes the callee R(a) and its b-1 arguments ahead
// of a Call/TailCall, returning the argument count. b==0 means "take
// every value a preceding multiret CALL/VARARG left floating above
// the register window", which this runtime always anchors at
// RegisterCount() rather than at a particular register.
func pushFuncAndArgs(a, b int, vm api.VM) int {
	if b >= 1 {
		vm.CheckStack(b)
		for r := a; r < a+b; r++ {
			vm.PushValue(r)
		}
		return b - 1
	}

	nFloating := vm.GetTop() - vm.RegisterCount()
	vm.CheckStack(1)
	vm.PushValue(a)
	vm.Rotate(vm.RegisterCount()+1, 1)
	return nFloating
}

// popResults distributes the values a Call left on top of the stack
// into R(a), ..., R(a+c-2). c==0 (MultiRet) leaves them floating above
// the register window for the next multiret-aware instruction.
func popResults(a, c int, vm api.VM) {
	switch {
	case c > 1:
		for r := a + c - 2; r >= a; r-- {
			vm.Replace(r)
		}
	case c == 1:
		// no results wanted; Call already dropped them
	}
}

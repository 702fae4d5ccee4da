package vm

import "github.com/lua54vm/core/api"

/* arith */

func add(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpAdd) }
func sub(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpSub) }
func mul(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpMul) }
func mod(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpMod) }
func pow(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpPow) }
func div(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpDiv) }
func idiv(i Instruction, vm api.VM) { binaryArith(i, vm, api.OpIDiv) }
func band(i Instruction, vm api.VM) { binaryArith(i, vm, api.OpBAnd) }
func bor(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpBOr) }
func bxor(i Instruction, vm api.VM) { binaryArith(i, vm, api.OpBXor) }
func shl(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpShl) }
func shr(i Instruction, vm api.VM)  { binaryArith(i, vm, api.OpShr) }
func unm(i Instruction, vm api.VM)  { unaryArith(i, vm, api.OpUnm) }
func bnot(i Instruction, vm api.VM) { unaryArith(i, vm, api.OpBNot) }

// R(A) := RK(B) op RK(C)
func binaryArith(i Instruction, vm api.VM, op api.ArithOp) {
	a, b, c := i.ABC()
	a++

	vm.GetRK(b)
	vm.GetRK(c)
	vm.Arith(op)
	vm.Replace(a)
}

// R(A) := op R(B)
func unaryArith(i Instruction, vm api.VM, op api.ArithOp) {
	a, b, _ := i.ABC()
	a++
	b++

	vm.PushValue(b)
	vm.Arith(op)
	vm.Replace(a)
}

/* compare */

func eq(i Instruction, vm api.VM) { compare(i, vm, api.OpEq) }
func lt(i Instruction, vm api.VM) { compare(i, vm, api.OpLt) }
func le(i Instruction, vm api.VM) { compare(i, vm, api.OpLe) }

// if ((RK(B) op RK(C)) ~= A) then pc++
func compare(i Instruction, vm api.VM, op api.CompareOp) {
	a, b, c := i.ABC()

	vm.GetRK(b)
	vm.GetRK(c)
	if vm.Compare(-2, -1, op) != (a != 0) {
		vm.AddPC(1)
	}
	vm.Pop(2)
}

/* logical */

// R(A) := not R(B)
func not(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++
	b++

	vm.PushBoolean(!vm.ToBoolean(b))
	vm.Replace(a)
}

// if not (R(A) <=> C) then pc++
func test(i Instruction, vm api.VM) {
	a, _, c := i.ABC()
	a++

	if vm.ToBoolean(a) != (c != 0) {
		vm.AddPC(1)
	}
}

// if (R(B) <=> C) then R(A) := R(B) else pc++
func testSet(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++
	b++

	if vm.ToBoolean(b) == (c != 0) {
		vm.Copy(b, a)
	} else {
		vm.AddPC(1)
	}
}

/* len */

// R(A) := length of R(B)
func length(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++
	b++

	vm.Len(b)
	vm.Replace(a)
}

// R(A) := R(B).. ... ..R(C). String concatenation is associative, so a
// left-to-right pairwise fold through Arith(OpConcat) yields the same
// string as the spec's right-associative definition for every chain
// without side-effecting __concat metamethods in the middle.
func concat(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++
	b++
	c++

	vm.PushValue(b)
	for idx := b + 1; idx <= c; idx++ {
		vm.PushValue(idx)
		vm.Arith(api.OpConcat)
	}
	vm.Replace(a)
}

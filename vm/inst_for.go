package vm

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/vmerr"
)

// R(A) -= R(A+2); pc += sBx
func forPrep(i Instruction, vm api.VM) {
	a, sBx := i.AsBx()
	a++

	for _, r := range [3]int{a, a + 1, a + 2} {
		if !vm.IsNumber(r) {
			vmerr.Raise("'for' initial value must be a number")
		}
	}
	if vm.ToNumber(a+2) == 0 {
		vmerr.Raise("'for' step is zero")
	}

	vm.PushValue(a)
	vm.PushValue(a + 2)
	vm.Arith(api.OpSub)
	vm.Replace(a)
	vm.AddPC(sBx)
}

// R(A) += R(A+2); if loop continues, pc += sBx and R(A+3) := R(A)
func forLoop(i Instruction, vm api.VM) {
	a, sBx := i.AsBx()
	a++

	vm.PushValue(a + 2)
	vm.PushValue(a)
	vm.Arith(api.OpAdd)
	vm.Replace(a)

	positiveStep := vm.ToNumber(a+2) >= 0
	continues := vm.ToNumber(a) <= vm.ToNumber(a+1)
	if !positiveStep {
		continues = vm.ToNumber(a) >= vm.ToNumber(a+1)
	}
	if continues {
		vm.AddPC(sBx)
		vm.Copy(a, a+3)
	}
}

package vm

import "github.com/lua54vm/core/api"

// R(A) := R(B)
func move(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++
	b++

	vm.Copy(b, a)
}

// pc+=sBx; if (A) close all upvalues >= R(A-1)
func jmp(i Instruction, vm api.VM) {
	a, sBx := i.AsBx()

	vm.AddPC(sBx)
	if a != 0 {
		vm.CloseUpvalues(a)
	}
}

// close all upvalues >= R(A)
func closeUpvals(i Instruction, vm api.VM) {
	a, _, _ := i.ABC()
	a++

	vm.CloseUpvalues(a)
}

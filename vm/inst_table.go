package vm

import "github.com/lua54vm/core/api"

// number of list items to accumulate before a SETLIST instruction flushes
const listFieldsPerFlush = 50

// R(A) := {} (array size hint = B, hash size hint = C). Both hints
// arrive "floating byte" encoded, the same compact (exponent,mantissa)
// byte format the reference VM uses to fit a size hint too large for
// a plain 9-bit field into one.
func newTable(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++

	vm.CreateTable(fb2int(b), fb2int(c))
	vm.Replace(a)
}

// R(A) := R(B)[RK(C)]
func getTable(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++
	b++

	vm.GetRK(c)
	vm.GetTable(b)
	vm.Replace(a)
}

// R(A)[RK(B)] := RK(C)
func setTable(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++

	vm.GetRK(b)
	vm.GetRK(c)
	vm.SetTable(a)
}

// R(A) := UpValue[B][RK(C)]
func getTabUp(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++

	vm.GetRK(c)
	vm.GetTable(api.UpvalueIndex(b + 1))
	vm.Replace(a)
}

// UpValue[A][RK(B)] := RK(C)
func setTabUp(i Instruction, vm api.VM) {
	a, b, c := i.ABC()

	vm.GetRK(b)
	vm.GetRK(c)
	vm.SetTable(api.UpvalueIndex(a + 1))
}

// R(A) := UpValue[B]
func getUpval(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++

	vm.PushValue(api.UpvalueIndex(b + 1))
	vm.Replace(a)
}

// UpValue[B] := R(A)
func setUpval(i Instruction, vm api.VM) {
	a, b, _ := i.ABC()
	a++

	vm.PushValue(a)
	vm.Replace(api.UpvalueIndex(b + 1))
}

// R(A+1) := R(B); R(A) := R(B)[RK(C)]
func self(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++
	b++

	vm.Copy(b, a+1)
	vm.GetRK(c)
	vm.GetTable(b)
	vm.Replace(a)
}

// R(A)[(C-1)*FPF+i] := R(A+i), 1 <= i <= B
func setList(i Instruction, vm api.VM) {
	a, b, c := i.ABC()
	a++

	if c > 0 {
		c = c - 1
	} else {
		c = Instruction(vm.Fetch()).Ax()
	}

	bIsZero := b == 0
	if bIsZero {
		b = int(vm.ToInteger(-1)) - a - 1
		vm.Pop(1)
	}

	vm.CheckStack(1)
	idx := int64(c * listFieldsPerFlush)
	for j := 1; j <= b; j++ {
		idx++
		vm.PushValue(a + j)
		vm.SetI(a, idx)
	}

	if bIsZero {
		for j := vm.RegisterCount() + 1; j <= vm.GetTop(); j++ {
			idx++
			vm.PushValue(j)
			vm.SetI(a, idx)
		}
		vm.SetTop(vm.RegisterCount())
	}
}

// fb2int decodes a Lua "floating byte": bits 0-2 encode x, bits 3-7
// encode e, value is x if e==0 else (x|8)<<(e-1). Used for NEWTABLE's
// presizing hints, which don't need full 9-bit register range.
func fb2int(x int) int {
	if x < 8 {
		return x
	}
	return ((x & 7) | 8) << uint((x>>3)-1)
}

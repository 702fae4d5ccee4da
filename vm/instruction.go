package vm

import "github.com/lua54vm/core/api"

const maxArgBx = 1<<18 - 1      // 262143
const maxArgSBx = maxArgBx >> 1 // 131071

/*
31       22       13       5    0

	+-------+^------+-^-----+-^-----
	|b=9bits |c=9bits |a=8bits|op=6|
	+-------+^------+-^-----+-^-----
	|    bx=18bits    |a=8bits|op=6|
	+-------+^------+-^-----+-^-----
	|   sbx=18bits    |a=8bits|op=6|
	+-------+^------+-^-----+-^-----
	|    ax=26bits            |op=6|
	+-------+^------+-^-----+-^-----

31      23      15       7      0
*/
type Instruction uint32

func (i Instruction) Opcode() int {
	return int(i & 0x3F)
}

func (i Instruction) ABC() (a, b, c int) {
	a = int(i >> 6 & 0xFF)
	c = int(i >> 14 & 0x1FF)
	b = int(i >> 23 & 0x1FF)
	return
}

func (i Instruction) ABx() (a, bx int) {
	a = int(i >> 6 & 0xFF)
	bx = int(i >> 14)
	return
}

func (i Instruction) AsBx() (a, sbx int) {
	a, bx := i.ABx()
	return a, bx - maxArgSBx
}

func (i Instruction) Ax() int {
	return int(i >> 6)
}

func (i Instruction) OpName() string {
	return opcodes[i.Opcode()].name
}

func (i Instruction) OpMode() byte {
	return opcodes[i.Opcode()].opMode
}

func (i Instruction) BMode() byte {
	return opcodes[i.Opcode()].argBMode
}

func (i Instruction) CMode() byte {
	return opcodes[i.Opcode()].argCMode
}

type instructionFunc func(Instruction, api.VM)

var jumpTable [64]instructionFunc

func init() {
	for i := range opcodes {
		if opcodes[i].action != nil {
			jumpTable[i] = opcodes[i].action
		}
	}
}

// Execute dispatches i against vm, the single entry point the running
// closure loop (state.runLuaClosure) calls once per fetched instruction.
func (i Instruction) Execute(vm api.VM) {
	op := i & 0x3F
	if fn := jumpTable[op]; fn != nil {
		fn(i, vm)
	} else {
		panic("vm: unimplemented instruction " + opcodes[op].name)
	}
}

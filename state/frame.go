package state

import "github.com/lua54vm/core/api"

// stack is one call frame: a register window plus everything needed to
// resume the calling frame once this one returns. Frames form a
// strictly LIFO singly-linked list via prev, per spec §3's Call Frame
// model.
type stack struct {
	slots []any
	top   int

	state   *State
	closure *Closure
	varargs []any
	openUVs []*Upvalue // ascending by register, see upvalue.go
	pc      int
	lastPC  int

	lastHookLine int

	isTailCall bool
	// ftransfer/ntransfer describe the register window handed to this
	// frame's call/return for the 'r' field-group of debug.getinfo.
	ftransfer int
	ntransfer int

	prev *stack
}

func newStack(size int, state *State) *stack {
	return &stack{
		slots: make([]any, size),
		state: state,
	}
}

func (s *stack) check(n int) {
	free := len(s.slots) - s.top
	for i := free; i < n; i++ {
		s.slots = append(s.slots, nil)
	}
}

func (s *stack) push(val any) {
	if s.top == len(s.slots) {
		panic("stack overflow")
	}
	s.slots[s.top] = val
	s.top++
}

func (s *stack) pop() any {
	if s.top < 1 {
		panic("stack underflow")
	}
	s.top--
	val := s.slots[s.top]
	s.slots[s.top] = nil
	return val
}

func (s *stack) pushN(vals []any, n int) {
	nVals := len(vals)
	if n < 0 {
		n = nVals
	}
	for i := 0; i < n; i++ {
		if i < nVals {
			s.push(vals[i])
		} else {
			s.push(nil)
		}
	}
}

func (s *stack) popN(n int) []any {
	vals := make([]any, n)
	for i := n - 1; i >= 0; i-- {
		vals[i] = s.pop()
	}
	return vals
}

func (s *stack) absIndex(idx int) int {
	if idx >= 0 || idx <= api.RegistryIndex {
		return idx
	}
	return idx + s.top + 1
}

func (s *stack) isValid(idx int) bool {
	if idx < api.RegistryIndex {
		uvIdx := api.RegistryIndex - idx - 1
		c := s.closure
		return c != nil && uvIdx < len(c.upvals)
	}
	if idx == api.RegistryIndex {
		return true
	}
	absIdx := s.absIndex(idx)
	return absIdx > 0 && absIdx <= s.top
}

func (s *stack) get(idx int) any {
	if idx < api.RegistryIndex {
		uvIdx := api.RegistryIndex - idx - 1
		c := s.closure
		if c == nil || uvIdx >= len(c.upvals) || c.upvals[uvIdx] == nil {
			return nil
		}
		return c.upvals[uvIdx].Get()
	}
	if idx == api.RegistryIndex {
		return s.state.registry
	}
	absIdx := s.absIndex(idx)
	if absIdx > 0 && absIdx <= s.top {
		return s.slots[absIdx-1]
	}
	return nil
}

func (s *stack) set(idx int, val any) {
	if idx < api.RegistryIndex {
		uvIdx := api.RegistryIndex - idx - 1
		c := s.closure
		if c != nil && uvIdx < len(c.upvals) && c.upvals[uvIdx] != nil {
			c.upvals[uvIdx].Set(val)
		}
		return
	}
	if idx == api.RegistryIndex {
		s.state.registry = val.(*Table)
		return
	}
	absIdx := s.absIndex(idx)
	if absIdx > 0 && absIdx <= s.top {
		s.slots[absIdx-1] = val
		return
	}
	panic("invalid index")
}

func (s *stack) reverse(from, to int) {
	for from < to {
		s.slots[from], s.slots[to] = s.slots[to], s.slots[from]
		from++
		to--
	}
}

func (s *stack) depth() int {
	n := 0
	for f := s; f != nil; f = f.prev {
		n++
	}
	return n
}

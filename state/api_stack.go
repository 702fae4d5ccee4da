package state

import "github.com/lua54vm/core/api"

func (ls *State) GetTop() int {
	return ls.stack.top
}

func (ls *State) AbsIndex(idx int) int {
	return ls.stack.absIndex(idx)
}

// CheckStack reports whether the active frame can grow by n slots
// without exceeding vmconfig.Config.MaxStack, growing it when it can.
// Callers that need a raised error instead (the common case, per
// lauxlib's luaL_checkstack) go through CheckStack2.
func (ls *State) CheckStack(n int) bool {
	if ls.cfg.MaxStack > 0 && ls.stack.top+n > ls.cfg.MaxStack {
		return false
	}
	ls.stack.check(n)
	return true
}

func (ls *State) Pop(n int) {
	for i := 0; i < n; i++ {
		ls.stack.pop()
	}
}

func (ls *State) Copy(fromIdx, toIdx int) {
	ls.stack.set(toIdx, ls.stack.get(fromIdx))
}

func (ls *State) PushValue(idx int) {
	ls.stack.push(ls.stack.get(idx))
}

func (ls *State) Replace(idx int) {
	ls.stack.set(idx, ls.stack.pop())
}

func (ls *State) Insert(idx int) {
	ls.Rotate(idx, 1)
}

func (ls *State) Remove(idx int) {
	ls.Rotate(idx, -1)
	ls.Pop(1)
}

func (ls *State) Rotate(idx, n int) {
	t := ls.stack.top - 1
	p := ls.stack.absIndex(idx) - 1
	var m int
	if n >= 0 {
		m = t - n
	} else {
		m = p - n - 1
	}
	ls.stack.reverse(p, m)
	ls.stack.reverse(m+1, t)
	ls.stack.reverse(p, t)
}

func (ls *State) SetTop(idx int) {
	newTop := ls.stack.absIndex(idx)
	if newTop < 0 {
		panic("stack underflow")
	}
	n := ls.stack.top - newTop
	if n > 0 {
		for i := 0; i < n; i++ {
			ls.stack.pop()
		}
	} else if n < 0 {
		for i := 0; i > n; i-- {
			ls.stack.push(nil)
		}
	}
}

func (ls *State) XMove(to api.State, n int) {
	vals := ls.stack.popN(n)
	to.(*State).stack.pushN(vals, n)
}

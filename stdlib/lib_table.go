package stdlib

import (
	"sort"
	"strings"

	"github.com/lua54vm/core/api"
)

var tableFuncs = api.FuncReg{
	"insert": tableInsert,
	"remove": tableRemove,
	"concat": tableConcat,
	"sort":   tableSort,
	"unpack": tableUnpack,
	"pack":   tablePack,
	"move":   tableMove,
}

// OpenTableLib installs table.*, per spec §6.
func OpenTableLib(ls api.State) int {
	ls.NewLib(tableFuncs)
	return 1
}

func tableLen(ls api.State, idx int) int64 {
	ls.Len(idx)
	n := ls.ToInteger(-1)
	ls.Pop(1)
	return n
}

// table.insert (list, [pos,] value)
func tableInsert(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	n := tableLen(ls, 1)
	var pos int64
	switch ls.GetTop() {
	case 2:
		pos = n + 1
	case 3:
		pos = ls.CheckInteger(2)
		ls.ArgCheck(1 <= pos && pos <= n+1, 2, "position out of bounds")
		for i := n + 1; i > pos; i-- {
			ls.GetI(1, i-1)
			ls.SetI(1, i)
		}
	default:
		ls.Error2("wrong number of arguments to 'insert'")
	}
	ls.SetI(1, pos)
	return 0
}

// table.remove (list [, pos])
func tableRemove(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	n := tableLen(ls, 1)
	pos := ls.OptInteger(2, n)
	if n == 0 {
		ls.PushNil()
		return 1
	}
	if pos != n {
		ls.ArgCheck(1 <= pos && pos <= n+1, 2, "position out of bounds")
	}
	ls.GetI(1, pos)
	for ; pos < n; pos++ {
		ls.GetI(1, pos+1)
		ls.SetI(1, pos)
	}
	ls.PushNil()
	ls.SetI(1, pos)
	return 1
}

// table.concat (list [, sep [, i [, j]]])
func tableConcat(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	sep := ls.OptString(2, "")
	i := ls.OptInteger(3, 1)
	j := ls.OptInteger(4, tableLen(ls, 1))
	var b strings.Builder
	for ; i <= j; i++ {
		ls.GetI(1, i)
		if !ls.IsString(-1) {
			ls.Error2("invalid value (at index %d) in table for 'concat'", i)
		}
		b.WriteString(ls.ToString(-1))
		ls.Pop(1)
		if i < j {
			b.WriteString(sep)
		}
	}
	ls.PushString(b.String())
	return 1
}

// table.pack (···)
func tablePack(ls api.State) int {
	n := ls.GetTop()
	ls.CreateTable(n, 1)
	for i := 1; i <= n; i++ {
		ls.PushValue(i)
		ls.SetI(-2, int64(i))
	}
	ls.PushInteger(int64(n))
	ls.SetField(-2, "n")
	return 1
}

// table.unpack (list [, i [, j]])
func tableUnpack(ls api.State) int {
	i := ls.OptInteger(2, 1)
	j := ls.OptInteger(3, tableLen(ls, 1))
	if i > j {
		return 0
	}
	n := j - i + 1
	ls.CheckStack2(int(n), "too many results to unpack")
	for ; i <= j; i++ {
		ls.GetI(1, i)
	}
	return int(n)
}

// table.move (a1, f, e, t [, a2])
func tableMove(ls api.State) int {
	f := ls.CheckInteger(2)
	e := ls.CheckInteger(3)
	t := ls.CheckInteger(4)
	a2 := 1
	if !ls.IsNoneOrNil(5) {
		a2 = 5
	}
	ls.CheckType(1, api.TypeTable)
	ls.CheckType(a2, api.TypeTable)
	if e >= f {
		if t > f || t > e || a2 != 1 {
			for i := int64(0); f+i <= e; i++ {
				ls.GetI(1, f+i)
				ls.SetI(a2, t+i)
			}
		} else {
			for i := e - f; i >= 0; i-- {
				ls.GetI(1, f+i)
				ls.SetI(a2, t+i)
			}
		}
	}
	ls.PushValue(a2)
	return 1
}

// table.sort (list [, comp]) spills every element onto the VM stack
// first, sorts an index permutation against those stack slots (so the
// comparator never reads a table mid-mutation), then writes the
// permuted order back.
func tableSort(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	n := int(tableLen(ls, 1))
	if n <= 1 {
		return 0
	}
	hasComp := !ls.IsNoneOrNil(2)

	base := ls.GetTop()
	ls.CheckStack2(n, "too many elements to sort")
	for i := 1; i <= n; i++ {
		ls.GetI(1, int64(i))
	}

	less := func(a, b int) bool {
		ia, ib := base+1+a, base+1+b
		if hasComp {
			ls.PushValue(2)
			ls.PushValue(ia)
			ls.PushValue(ib)
			ls.Call(2, 1)
			r := ls.ToBoolean(-1)
			ls.Pop(1)
			return r
		}
		return ls.Compare(ia, ib, api.OpLt)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })

	for i, srcIdx := range idx {
		ls.PushValue(base + 1 + srcIdx)
		ls.SetI(1, int64(i+1))
	}
	ls.SetTop(base)
	return 0
}

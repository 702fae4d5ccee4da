// Package debugapi holds debug-only introspection helpers that sit
// above api.State: structured dumps used by debug.dumpstate.
package debugapi

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/lua54vm/core/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DumpState renders the value at idx as a JSON string. Tables become
// JSON objects/arrays (string keys as object fields, a contiguous
// 1..n integer-keyed table as an array); functions, threads and other
// non-serializable values are rendered as their TypeName2 tag so the
// dump never fails on a live stack.
func DumpState(ls api.State, idx int) (string, error) {
	v := snapshot(ls, ls.AbsIndex(idx), map[string]bool{})
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func snapshot(ls api.State, idx int, seen map[string]bool) any {
	switch ls.Type(idx) {
	case api.TypeNil:
		return nil
	case api.TypeBoolean:
		return ls.ToBoolean(idx)
	case api.TypeNumber:
		if ls.IsInteger(idx) {
			return ls.ToInteger(idx)
		}
		return ls.ToNumber(idx)
	case api.TypeString:
		return ls.ToString(idx)
	case api.TypeTable:
		return snapshotTable(ls, idx, seen)
	default:
		return "<" + ls.TypeName2(idx) + ">"
	}
}

func snapshotTable(ls api.State, idx int, seen map[string]bool) any {
	id := fmt.Sprintf("%p", ls.ToPointer(idx))
	if seen[id] {
		return "<table (cycle)>"
	}
	seen[id] = true

	n := ls.RawLen(idx)
	arr := make([]any, 0, n)
	obj := map[string]any{}
	isArray := true

	ls.PushNil()
	for ls.Next(idx) {
		// key at -2, value at -1
		if isArray && ls.IsInteger(-2) {
			i := ls.ToInteger(-2)
			if i >= 1 && i == int64(len(arr))+1 {
				arr = append(arr, snapshot(ls, ls.AbsIndex(-1), seen))
				ls.Pop(1)
				continue
			}
		}
		if isArray {
			isArray = false
			for k, v := range arr {
				obj[fmt.Sprint(k+1)] = v
			}
		}
		key := ls.ToString2(-2)
		ls.Pop(1) // ToString2 leaves its result on the stack
		obj[key] = snapshot(ls, ls.AbsIndex(-1), seen)
		ls.Pop(1)
	}

	delete(seen, id)
	if isArray {
		return arr
	}
	return obj
}

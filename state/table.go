package state

import (
	"strconv"

	"github.com/lua54vm/core/value"
	"github.com/lua54vm/core/vmerr"
)

// weakMode mirrors a table's __mode metafield, per spec §4.2. True
// tracing-GC weakness isn't implemented (no tracing collector in this
// runtime, per spec §9's Open Questions); weak tables behave as strong
// tables but remember their declared mode so rawget/pairs/__mode
// introspection is still honest about it.
type weakMode int

const (
	weakNone weakMode = iota
	weakKeys
	weakValues
	weakBoth
)

// Table is the storage behind every Lua table value: an array part for
// the dense 1..n integer-keyed prefix and a map part for everything
// else, plus an optional metatable. Grounded on the array+map split and
// next()-iteration bookkeeping used throughout the Lua reference
// implementation's table.c.
type Table struct {
	arr     []any
	m       map[any]any
	keys    map[any]any // linked-list-by-map for next()
	lastKey any
	changed bool

	metatable *Table
	mode      weakMode
}

func NewTable(nArr, nRec int) *Table {
	t := &Table{}
	if nArr > 0 {
		t.arr = make([]any, 0, nArr)
	}
	if nRec > 0 {
		t.m = make(map[any]any, nRec)
	}
	return t
}

func (t *Table) applyModeFlag() {
	t.mode = weakNone
	if t.metatable == nil {
		return
	}
	modeVal := t.metatable.Get("__mode")
	mode, ok := modeVal.(string)
	if !ok {
		return
	}
	hasK, hasV := false, false
	for _, c := range mode {
		switch c {
		case 'k':
			hasK = true
		case 'v':
			hasV = true
		}
	}
	switch {
	case hasK && hasV:
		t.mode = weakBoth
	case hasK:
		t.mode = weakKeys
	case hasV:
		t.mode = weakValues
	}
}

func (t *Table) HasMetafield(name string) bool {
	return t.metatable != nil && t.metatable.Get(name) != nil
}

// Len implements spec §3's length operator: the largest n>=0 with
// t[n]!=nil and t[n+1]==nil. The array part is kept dense/shrunk so its
// length is usually exactly right; fall back to a probe when the map
// part also holds a contiguous tail.
func (t *Table) Len() int64 {
	n := int64(len(t.arr))
	if t.m == nil {
		return n
	}
	for {
		if _, ok := t.m[n+1]; !ok {
			break
		}
		n++
	}
	return n
}

func (t *Table) Get(key any) any {
	key = value.HashKey(key)
	if idx, ok := key.(int64); ok {
		if idx >= 1 && idx <= int64(len(t.arr)) {
			return t.arr[idx-1]
		}
	}
	if t.m == nil {
		return nil
	}
	return t.m[key]
}

func (t *Table) Put(key, val any) {
	if key == nil {
		vmerr.Raise("table index is nil")
	}
	if f, ok := key.(float64); ok && f != f {
		vmerr.Raise("table index is NaN")
	}

	t.changed = true
	key = value.HashKey(key)
	if idx, ok := key.(int64); ok && idx >= 1 {
		arrLen := int64(len(t.arr))
		if idx <= arrLen {
			t.arr[idx-1] = val
			if idx == arrLen && val == nil {
				t.shrinkArray()
			}
			return
		}
		if idx == arrLen+1 {
			if t.m != nil {
				delete(t.m, key)
			}
			if val != nil {
				t.arr = append(t.arr, val)
				t.expandArray()
			}
			return
		}
	}
	if val != nil {
		if t.m == nil {
			t.m = make(map[any]any, 8)
		}
		t.m[key] = val
	} else if t.m != nil {
		delete(t.m, key)
	}
}

func (t *Table) shrinkArray() {
	for i := len(t.arr) - 1; i >= 0; i-- {
		if t.arr[i] != nil {
			t.arr = t.arr[:i+1]
			return
		}
	}
	t.arr = t.arr[:0]
}

func (t *Table) expandArray() {
	if t.m == nil {
		return
	}
	for idx := int64(len(t.arr)) + 1; ; idx++ {
		val, found := t.m[idx]
		if !found {
			break
		}
		delete(t.m, idx)
		t.arr = append(t.arr, val)
	}
}

// NextKey drives pairs()/next(): it returns the key following key in
// iteration order, or nil to stop. Iteration order is arbitrary but
// stable across one uninterrupted traversal, per spec §4.2.
func (t *Table) NextKey(key any) (any, bool) {
	if t.keys == nil || (key == nil && t.changed) {
		t.initKeys()
		t.changed = false
	}

	nextKey, found := t.keys[key]
	if !found && key != nil && key != t.lastKey {
		k, ok := key.(string)
		if !ok {
			return nil, false
		}
		intKey, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, false
		}
		nextKey, found = t.keys[intKey]
	}
	return nextKey, nextKey != nil || found
}

func (t *Table) initKeys() {
	t.keys = make(map[any]any)
	var key any
	for i := range t.arr {
		if t.arr[i] != nil {
			t.keys[key] = int64(i + 1)
			key = int64(i + 1)
		}
	}
	for k := range t.m {
		if t.m[k] != nil {
			t.keys[key] = k
			key = k
		}
	}
	t.lastKey = key
}

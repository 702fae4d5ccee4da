package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/vmerr"
)

func (ls *State) NewTable() {
	ls.CreateTable(0, 0)
}

func (ls *State) CreateTable(nArr, nRec int) {
	ls.stack.push(NewTable(nArr, nRec))
}

func (ls *State) GetTable(idx int) api.ValueType {
	t := ls.stack.get(idx)
	k := ls.stack.pop()
	return ls.getTable(t, k, false)
}

func (ls *State) GetField(idx int, k string) api.ValueType {
	t := ls.stack.get(idx)
	return ls.getTable(t, k, false)
}

func (ls *State) GetI(idx int, i int64) api.ValueType {
	t := ls.stack.get(idx)
	return ls.getTable(t, i, false)
}

func (ls *State) RawGet(idx int) api.ValueType {
	t := ls.stack.get(idx)
	k := ls.stack.pop()
	return ls.getTable(t, k, true)
}

func (ls *State) RawGetI(idx int, i int64) api.ValueType {
	t := ls.stack.get(idx)
	return ls.getTable(t, i, true)
}

func (ls *State) GetGlobal(name string) api.ValueType {
	t := ls.registry.Get(api.RidxGlobals)
	return ls.getTable(t, name, false)
}

func (ls *State) GetMetatable(idx int) bool {
	val := ls.stack.get(idx)
	if mt := getMetatable(val, ls); mt != nil {
		ls.stack.push(mt)
		return true
	}
	return false
}

func (ls *State) Next(idx int) bool {
	val := ls.stack.get(idx)
	t, ok := val.(*Table)
	if !ok {
		vmerr.Raisef("bad argument to 'next' (table expected, got %s)", typeOf(val).String())
	}
	key := ls.stack.pop()
	nextKey, found := t.NextKey(key)
	if !found {
		return false
	}
	ls.stack.push(nextKey)
	ls.stack.push(t.Get(nextKey))
	return true
}

// getTable pushes t[k], following __index when t isn't a table or the
// raw lookup misses, per spec §4.2's indexing metamethod rule.
func (ls *State) getTable(t, k any, raw bool) api.ValueType {
	if tbl, ok := t.(*Table); ok {
		v := tbl.Get(k)
		if raw || v != nil || !tbl.HasMetafield("__index") {
			ls.stack.push(v)
			return typeOf(v)
		}
	}

	if !raw {
		if mf := getMetafield(t, "__index", ls); mf != nil {
			switch x := mf.(type) {
			case *Table:
				return ls.getTable(x, k, false)
			case *Closure:
				ls.stack.push(mf)
				ls.stack.push(t)
				ls.stack.push(k)
				ls.Call(2, 1)
				v := ls.stack.get(-1)
				return typeOf(v)
			}
		}
	}

	typeErr("index", typeOf(t).String())
	return api.TypeNil
}

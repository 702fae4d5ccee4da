package state

import "github.com/lua54vm/core/api"

func (ls *State) SetTable(idx int) {
	t := ls.stack.get(idx)
	v := ls.stack.pop()
	k := ls.stack.pop()
	ls.setTable(t, k, v, false)
}

func (ls *State) SetField(idx int, k string) {
	t := ls.stack.get(idx)
	v := ls.stack.pop()
	ls.setTable(t, k, v, false)
}

func (ls *State) SetI(idx int, i int64) {
	t := ls.stack.get(idx)
	v := ls.stack.pop()
	ls.setTable(t, i, v, false)
}

func (ls *State) RawSet(idx int) {
	t := ls.stack.get(idx)
	v := ls.stack.pop()
	k := ls.stack.pop()
	ls.setTable(t, k, v, true)
}

func (ls *State) RawSetI(idx int, i int64) {
	t := ls.stack.get(idx)
	v := ls.stack.pop()
	ls.setTable(t, i, v, true)
}

func (ls *State) SetGlobal(name string) {
	t := ls.registry.Get(api.RidxGlobals)
	v := ls.stack.pop()
	ls.setTable(t, name, v, false)
}

func (ls *State) Register(name string, f api.GoFunction) {
	ls.PushGoFunction(f)
	ls.SetGlobal(name)
}

// SetMetatable pops a table (or nil) and attaches it to the value at
// idx. Only table values get a true per-instance metatable; other
// value kinds share one metatable per type, stored in the registry,
// per spec §3's "shared-by-type" note for non-table metatables.
func (ls *State) SetMetatable(idx int) {
	val := ls.stack.get(idx)
	mtVal := ls.stack.pop()
	mt, _ := mtVal.(*Table)
	setMetatable(val, mt, ls)
}

// setTable implements t[k]=v, following __newindex when t isn't a
// table or the key isn't already present, per spec §4.2.
func (ls *State) setTable(t, k, v any, raw bool) {
	if tbl, ok := t.(*Table); ok {
		if raw || tbl.Get(k) != nil || !tbl.HasMetafield("__newindex") {
			tbl.Put(k, v)
			return
		}
	}

	if !raw {
		if mf := getMetafield(t, "__newindex", ls); mf != nil {
			switch x := mf.(type) {
			case *Table:
				ls.setTable(x, k, v, false)
				return
			case *Closure:
				ls.stack.push(mf)
				ls.stack.push(t)
				ls.stack.push(k)
				ls.stack.push(v)
				ls.Call(3, 0)
				return
			}
		}
	}

	typeErr("index", typeOf(t).String())
}

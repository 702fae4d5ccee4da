package state

import (
	"fmt"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/value"
	"github.com/lua54vm/core/vmerr"
)

func typeOf(val any) api.ValueType {
	switch val.(type) {
	case nil:
		return api.TypeNil
	case bool:
		return api.TypeBoolean
	case int64, float64:
		return api.TypeNumber
	case string:
		return api.TypeString
	case *Table:
		return api.TypeTable
	case *Closure:
		return api.TypeFunction
	case *State:
		return api.TypeThread
	default:
		panic(fmt.Sprintf("state: invalid value: %T<%v>", val, val))
	}
}

func convertToBoolean(val any) bool {
	switch x := val.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

// convertToFloat implements the §3.4.3 coercion rule used by
// arithmetic and tonumber.
func convertToFloat(val any) (float64, bool) {
	switch x := val.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		return value.ParseFloat(x)
	default:
		return 0, false
	}
}

func convertToInteger(val any) (int64, bool) {
	switch x := val.(type) {
	case int64:
		return x, true
	case float64:
		return value.FloatToInteger(x)
	case string:
		return stringToInteger(x)
	default:
		return 0, false
	}
}

func stringToInteger(s string) (int64, bool) {
	if i, ok := value.ParseInteger(s); ok {
		return i, true
	}
	if f, ok := value.ParseFloat(s); ok {
		return value.FloatToInteger(f)
	}
	return 0, false
}

/* metatable */

func getMetatable(val any, ls *State) *Table {
	if t, ok := val.(*Table); ok {
		return t.metatable
	}
	key := fmt.Sprintf("_MT%d", typeOf(val))
	if mt := ls.registry.Get(key); mt != nil {
		return mt.(*Table)
	}
	return nil
}

func setMetatable(val any, mt *Table, ls *State) {
	if t, ok := val.(*Table); ok {
		t.metatable = mt
		t.applyModeFlag()
		return
	}
	key := fmt.Sprintf("_MT%d", typeOf(val))
	if mt == nil {
		ls.registry.Put(key, nil)
	} else {
		ls.registry.Put(key, mt)
	}
}

func getMetafield(val any, fieldName string, ls *State) any {
	if mt := getMetatable(val, ls); mt != nil {
		return mt.Get(fieldName)
	}
	return nil
}

func callMetamethod(a, b any, mmName string, ls *State) (any, bool) {
	var mm any
	if mm = getMetafield(a, mmName, ls); mm == nil {
		if mm = getMetafield(b, mmName, ls); mm == nil {
			return nil, false
		}
	}

	ls.stack.check(4)
	ls.stack.push(mm)
	ls.stack.push(a)
	ls.stack.push(b)
	ls.Call(2, 1)
	return ls.stack.pop(), true
}

// rawEqual implements identity/value equality without consulting __eq,
// used by both the VM's raw-equality fast path and rawequal().
func rawEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return value.NumbersEqual(x, y)
		default:
			return false
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return value.NumbersEqual(y, x)
		case float64:
			return x == y
		default:
			return false
		}
	default:
		return a == b
	}
}

func typeErr(op, typeName string) {
	vmerr.Raisef("attempt to %s a %s value", op, typeName)
}

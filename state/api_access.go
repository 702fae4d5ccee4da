package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/value"
)

func (ls *State) TypeName(tp api.ValueType) string {
	return tp.String()
}

func (ls *State) Type(idx int) api.ValueType {
	if ls.stack.isValid(idx) {
		return typeOf(ls.stack.get(idx))
	}
	return api.TypeNone
}

func (ls *State) IsNone(idx int) bool {
	return ls.Type(idx) == api.TypeNone
}

func (ls *State) IsNil(idx int) bool {
	return ls.Type(idx) == api.TypeNil
}

func (ls *State) IsNoneOrNil(idx int) bool {
	return ls.Type(idx) <= api.TypeNil
}

func (ls *State) IsBoolean(idx int) bool {
	return ls.Type(idx) == api.TypeBoolean
}

func (ls *State) IsTable(idx int) bool {
	return ls.Type(idx) == api.TypeTable
}

func (ls *State) IsFunction(idx int) bool {
	return ls.Type(idx) == api.TypeFunction
}

func (ls *State) IsThread(idx int) bool {
	return ls.Type(idx) == api.TypeThread
}

func (ls *State) IsString(idx int) bool {
	t := ls.Type(idx)
	return t == api.TypeString || t == api.TypeNumber
}

func (ls *State) IsNumber(idx int) bool {
	_, ok := ls.ToNumberX(idx)
	return ok
}

func (ls *State) IsInteger(idx int) bool {
	_, ok := ls.stack.get(idx).(int64)
	return ok
}

func (ls *State) IsGoFunction(idx int) bool {
	if c, ok := ls.stack.get(idx).(*Closure); ok {
		return c.goFunc != nil
	}
	return false
}

func (ls *State) ToBoolean(idx int) bool {
	return convertToBoolean(ls.stack.get(idx))
}

func (ls *State) ToInteger(idx int) int64 {
	i, _ := ls.ToIntegerX(idx)
	return i
}

func (ls *State) ToIntegerX(idx int) (int64, bool) {
	return convertToInteger(ls.stack.get(idx))
}

func (ls *State) ToNumber(idx int) float64 {
	n, _ := ls.ToNumberX(idx)
	return n
}

func (ls *State) ToNumberX(idx int) (float64, bool) {
	return convertToFloat(ls.stack.get(idx))
}

func (ls *State) ToString(idx int) string {
	s, _ := ls.ToStringX(idx)
	return s
}

// ToStringX converts a number in place (the converted string replaces
// the stack slot, matching lua_tolstring's documented side effect) and
// leaves strings and anything else alone.
func (ls *State) ToStringX(idx int) (string, bool) {
	switch x := ls.stack.get(idx).(type) {
	case string:
		return x, true
	case int64, float64:
		s := value.NumberToString(x)
		ls.stack.set(idx, s)
		return s, true
	default:
		return "", false
	}
}

func (ls *State) ToGoFunction(idx int) api.GoFunction {
	if c, ok := ls.stack.get(idx).(*Closure); ok {
		return c.goFunc
	}
	return nil
}

func (ls *State) ToThread(idx int) api.State {
	if t, ok := ls.stack.get(idx).(*State); ok {
		return t
	}
	return nil
}

func (ls *State) ToPointer(idx int) any {
	return ls.stack.get(idx)
}

func (ls *State) RawEqual(idx1, idx2 int) bool {
	if !ls.stack.isValid(idx1) || !ls.stack.isValid(idx2) {
		return false
	}
	return rawEqual(ls.stack.get(idx1), ls.stack.get(idx2))
}

func (ls *State) RawLen(idx int) int64 {
	switch x := ls.stack.get(idx).(type) {
	case string:
		return int64(len(x))
	case *Table:
		return x.Len()
	default:
		return 0
	}
}

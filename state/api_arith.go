package state

import (
	"math"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/value"
	"github.com/lua54vm/core/vmerr"
)

type operator struct {
	metamethod  string
	integerFunc func(int64, int64) int64
	floatFunc   func(float64, float64) float64
}

func imod(a, b int64) int64 {
	if b == 0 {
		vmerr.Raise("attempt to perform 'n%%0'")
	}
	r := a % b
	if r != 0 && (r^b) < 0 {
		r += b
	}
	return r
}

func fmod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func iFloorDiv(a, b int64) int64 {
	if b == 0 {
		vmerr.Raise("attempt to perform 'n//0'")
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func fFloorDiv(a, b float64) float64 {
	return math.Floor(a / b)
}

func shiftLeft(a, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) << uint(n))
	}
	return int64(uint64(a) >> uint(-n))
}

func shiftRight(a, n int64) int64 {
	return shiftLeft(a, -n)
}

var operators = []operator{
	{"__add", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }},
	{"__sub", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }},
	{"__mul", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }},
	{"__mod", imod, fmod},
	{"__pow", nil, math.Pow},
	{"__div", nil, func(a, b float64) float64 { return a / b }},
	{"__idiv", iFloorDiv, fFloorDiv},
	{"__band", func(a, b int64) int64 { return a & b }, nil},
	{"__bor", func(a, b int64) int64 { return a | b }, nil},
	{"__bxor", func(a, b int64) int64 { return a ^ b }, nil},
	{"__shl", shiftLeft, nil},
	{"__shr", shiftRight, nil},
	{"__unm", func(a, _ int64) int64 { return -a }, func(a, _ float64) float64 { return -a }},
	{"__bnot", func(a, _ int64) int64 { return ^a }, nil},
	{"__concat", nil, nil},
}

func opSymbol(mm string) string {
	switch mm {
	case "__band", "__bor", "__bxor", "__shl", "__shr", "__bnot":
		return "perform bitwise operation on"
	case "__unm":
		return "perform arithmetic on"
	default:
		return "perform arithmetic on"
	}
}

func (ls *State) Arith(op api.ArithOp) {
	var a, b any
	b = ls.stack.pop()
	if op != api.OpUnm && op != api.OpBNot {
		a = ls.stack.pop()
	} else {
		a = b
	}

	if op == api.OpConcat {
		ls.concat(a, b)
		return
	}

	opDef := operators[op]
	if result := applyArith(a, b, opDef); result != nil {
		ls.stack.push(result)
		return
	}

	if result, ok := callMetamethod(a, b, opDef.metamethod, ls); ok {
		ls.stack.push(result)
		return
	}

	bad := a
	if _, ok := convertToFloat(a); ok {
		bad = b
	}
	vmerr.Raisef("attempt to %s a %s value", opSymbol(opDef.metamethod), typeOf(bad).String())
}

// concat implements `..`: strings and numbers concatenate directly
// (numbers formatted per value.NumberToString's %.14g-equivalent
// rule), everything else falls to __concat, per spec §4.1's
// concatenation rule.
func (ls *State) concat(a, b any) {
	as, aok := concatOperand(a)
	bs, bok := concatOperand(b)
	if aok && bok {
		ls.stack.push(as + bs)
		return
	}
	if result, ok := callMetamethod(a, b, "__concat", ls); ok {
		ls.stack.push(result)
		return
	}
	bad := a
	if aok {
		bad = b
	}
	vmerr.Raisef("attempt to concatenate a %s value", typeOf(bad).String())
}

func concatOperand(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int64, float64:
		return value.NumberToString(x), true
	default:
		return "", false
	}
}

func applyArith(a, b any, op operator) any {
	if op.floatFunc == nil {
		if x, ok := convertToInteger(a); ok {
			if y, ok := convertToInteger(b); ok {
				return op.integerFunc(x, y)
			}
		}
		return nil
	}
	if op.integerFunc != nil {
		if x, ok := a.(int64); ok {
			if y, ok := b.(int64); ok {
				return op.integerFunc(x, y)
			}
		}
	}
	if x, ok := convertToFloat(a); ok {
		if y, ok := convertToFloat(b); ok {
			return op.floatFunc(x, y)
		}
	}
	return nil
}

// Compare implements ==, < and <=, including string comparison,
// integer/float cross-comparison and the __eq/__lt/__le metamethods
// per spec §3's comparison rules.
func (ls *State) Compare(idx1, idx2 int, op api.CompareOp) bool {
	a := ls.stack.get(idx1)
	b := ls.stack.get(idx2)
	switch op {
	case api.OpEq:
		return ls.equals(a, b)
	case api.OpLt:
		return ls.lessThan(a, b)
	case api.OpLe:
		return ls.lessEqual(a, b)
	default:
		vmerr.Raise("invalid comparison operator")
		return false
	}
}

func (ls *State) equals(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
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
	case *Table:
		if y, ok := b.(*Table); ok && x != y {
			if r, ok := callMetamethod(x, y, "__eq", ls); ok {
				return convertToBoolean(r)
			}
		}
		return a == b
	default:
		return a == b
	}
}

func (ls *State) lessThan(a, b any) bool {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	case int64:
		switch y := b.(type) {
		case int64:
			return x < y
		case float64:
			return ltIntFloat(x, y)
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return ltFloatInt(x, y)
		case float64:
			return x < y
		}
	}
	if r, ok := callMetamethod(a, b, "__lt", ls); ok {
		return convertToBoolean(r)
	}
	vmerr.Raisef("attempt to compare %s with %s", typeOf(a).String(), typeOf(b).String())
	return false
}

func (ls *State) lessEqual(a, b any) bool {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x <= y
		}
	case int64:
		switch y := b.(type) {
		case int64:
			return x <= y
		case float64:
			return leIntFloat(x, y)
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return leFloatInt(x, y)
		case float64:
			return x <= y
		}
	}
	if r, ok := callMetamethod(a, b, "__le", ls); ok {
		return convertToBoolean(r)
	}
	vmerr.Raisef("attempt to compare %s with %s", typeOf(a).String(), typeOf(b).String())
	return false
}

// maxIntFitsFloat is the largest integer magnitude a float64 represents
// exactly (2^53); beyond it, casting to float64 and back can change
// which of two values is larger, so integer/float comparisons outside
// this range go through floor/ceil against the integer instead.
const maxIntFitsFloat = int64(1) << 53

func intFitsFloat(i int64) bool {
	return -maxIntFitsFloat <= i && i <= maxIntFitsFloat
}

// floatToIntFloor/Ceil convert f to an int64 by rounding toward -inf
// or +inf first; ok is false when the rounded value doesn't fit
// int64 (infinities, NaN, or magnitude >= 2^63).
func floatToIntFloor(f float64) (int64, bool) { return floatToInt(math.Floor(f)) }
func floatToIntCeil(f float64) (int64, bool)  { return floatToInt(math.Ceil(f)) }

func floatToInt(f float64) (int64, bool) {
	if f >= -9223372036854775808.0 && f < 9223372036854775808.0 {
		return int64(f), true
	}
	return 0, false
}

// ltIntFloat/leIntFloat/ltFloatInt/leFloatInt implement Lua 5.4's
// integer/float comparison algorithm (lvm.c's LTintfloat family):
// compare as floats when i fits a float64 exactly, otherwise round f
// toward the integers and compare as integers, falling back to f's
// sign against the overflow/NaN case (false for NaN, since f>0 and
// f<0 are both false then, matching IEEE754 comparison semantics).
func ltIntFloat(i int64, f float64) bool {
	if intFitsFloat(i) {
		return float64(i) < f
	}
	if fi, ok := floatToIntCeil(f); ok {
		return i < fi
	}
	return f > 0
}

func leIntFloat(i int64, f float64) bool {
	if intFitsFloat(i) {
		return float64(i) <= f
	}
	if fi, ok := floatToIntFloor(f); ok {
		return i <= fi
	}
	return f > 0
}

func ltFloatInt(f float64, i int64) bool {
	if intFitsFloat(i) {
		return f < float64(i)
	}
	if fi, ok := floatToIntFloor(f); ok {
		return fi < i
	}
	return f < 0
}

func leFloatInt(f float64, i int64) bool {
	if intFitsFloat(i) {
		return f <= float64(i)
	}
	if fi, ok := floatToIntCeil(f); ok {
		return fi <= i
	}
	return f < 0
}

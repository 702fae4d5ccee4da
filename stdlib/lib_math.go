package stdlib

import (
	"math"
	"math/rand"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/value"
)

var mathFuncs = api.FuncReg{
	"max":        mathMax,
	"min":        mathMin,
	"exp":        mathExp,
	"log":        mathLog,
	"deg":        mathDeg,
	"rad":        mathRad,
	"sin":        mathSin,
	"cos":        mathCos,
	"tan":        mathTan,
	"asin":       mathAsin,
	"acos":       mathAcos,
	"atan":       mathAtan,
	"ceil":       mathCeil,
	"floor":      mathFloor,
	"fmod":       mathFmod,
	"modf":       mathModf,
	"abs":        mathAbs,
	"sqrt":       mathSqrt,
	"ult":        mathUlt,
	"type":       mathType,
	"tointeger":  mathToInt,
	"random":     mathRandom,
	"randomseed": mathRandomSeed,
}

var rng = rand.New(rand.NewSource(1))

// OpenMathLib installs math.*, per spec §6.
// lua-5.4.4/src/lmathlib.c#luaopen_math()
func OpenMathLib(ls api.State) int {
	ls.NewLib(mathFuncs)
	ls.PushNumber(math.Pi)
	ls.SetField(-2, "pi")
	ls.PushNumber(math.Inf(1))
	ls.SetField(-2, "huge")
	ls.PushInteger(api.MaxInteger)
	ls.SetField(-2, "maxinteger")
	ls.PushInteger(api.MinInteger)
	ls.SetField(-2, "mininteger")
	return 1
}

// math.max (x, ···)
func mathMax(ls api.State) int {
	n := ls.GetTop()
	imax := 1
	ls.ArgCheck(n >= 1, 1, "value expected")
	for i := 2; i <= n; i++ {
		if ls.Compare(imax, i, api.OpLt) {
			imax = i
		}
	}
	ls.PushValue(imax)
	return 1
}

// math.min (x, ···)
func mathMin(ls api.State) int {
	n := ls.GetTop()
	imin := 1
	ls.ArgCheck(n >= 1, 1, "value expected")
	for i := 2; i <= n; i++ {
		if ls.Compare(i, imin, api.OpLt) {
			imin = i
		}
	}
	ls.PushValue(imin)
	return 1
}

func mathExp(ls api.State) int {
	ls.PushNumber(math.Exp(ls.CheckNumber(1)))
	return 1
}

// math.log (x [, base])
func mathLog(ls api.State) int {
	x := ls.CheckNumber(1)
	var res float64
	if ls.IsNoneOrNil(2) {
		res = math.Log(x)
	} else {
		base := ls.ToNumber(2)
		switch base {
		case 2:
			res = math.Log2(x)
		case 10:
			res = math.Log10(x)
		default:
			res = math.Log(x) / math.Log(base)
		}
	}
	ls.PushNumber(res)
	return 1
}

func mathDeg(ls api.State) int {
	ls.PushNumber(ls.CheckNumber(1) * 180 / math.Pi)
	return 1
}

func mathRad(ls api.State) int {
	ls.PushNumber(ls.CheckNumber(1) * math.Pi / 180)
	return 1
}

func mathSin(ls api.State) int {
	ls.PushNumber(math.Sin(ls.CheckNumber(1)))
	return 1
}

func mathCos(ls api.State) int {
	ls.PushNumber(math.Cos(ls.CheckNumber(1)))
	return 1
}

func mathTan(ls api.State) int {
	ls.PushNumber(math.Tan(ls.CheckNumber(1)))
	return 1
}

func mathAsin(ls api.State) int {
	ls.PushNumber(math.Asin(ls.CheckNumber(1)))
	return 1
}

func mathAcos(ls api.State) int {
	ls.PushNumber(math.Acos(ls.CheckNumber(1)))
	return 1
}

// math.atan (y [, x])
func mathAtan(ls api.State) int {
	y := ls.CheckNumber(1)
	x := ls.OptNumber(2, 1.0)
	ls.PushNumber(math.Atan2(y, x))
	return 1
}

func mathCeil(ls api.State) int {
	if ls.IsInteger(1) {
		ls.SetTop(1)
	} else {
		_pushNumInt(ls, math.Ceil(ls.CheckNumber(1)))
	}
	return 1
}

func mathFloor(ls api.State) int {
	if ls.IsInteger(1) {
		ls.SetTop(1)
	} else {
		_pushNumInt(ls, math.Floor(ls.CheckNumber(1)))
	}
	return 1
}

// math.fmod (x, y)
func mathFmod(ls api.State) int {
	if ls.IsInteger(1) && ls.IsInteger(2) {
		d := ls.ToInteger(2)
		if uint64(d)+1 <= 1 { // d == -1 or d == 0
			ls.ArgCheck(d != 0, 2, "zero")
			ls.PushInteger(0)
		} else {
			ls.PushInteger(ls.ToInteger(1) % d)
		}
	} else {
		x := ls.CheckNumber(1)
		y := ls.CheckNumber(2)
		ls.PushNumber(math.Mod(x, y))
	}
	return 1
}

// math.modf (x)
func mathModf(ls api.State) int {
	if ls.IsInteger(1) {
		ls.SetTop(1)
		ls.PushNumber(0)
		return 2
	}
	x := ls.CheckNumber(1)
	i, f := math.Modf(x)
	_pushNumInt(ls, i)
	if math.IsInf(x, 0) {
		ls.PushNumber(0)
	} else {
		ls.PushNumber(f)
	}
	return 2
}

func mathAbs(ls api.State) int {
	if ls.IsInteger(1) {
		x := ls.ToInteger(1)
		if x < 0 {
			x = -x
		}
		ls.PushInteger(x)
	} else {
		ls.PushNumber(math.Abs(ls.CheckNumber(1)))
	}
	return 1
}

func mathSqrt(ls api.State) int {
	ls.PushNumber(math.Sqrt(ls.CheckNumber(1)))
	return 1
}

// math.ult (m, n)
func mathUlt(ls api.State) int {
	m := ls.CheckInteger(1)
	n := ls.CheckInteger(2)
	ls.PushBoolean(uint64(m) < uint64(n))
	return 1
}

// math.type (x)
func mathType(ls api.State) int {
	if ls.Type(1) == api.TypeNumber {
		if ls.IsInteger(1) {
			ls.PushString("integer")
		} else {
			ls.PushString("float")
		}
	} else {
		ls.CheckAny(1)
		ls.PushNil()
	}
	return 1
}

// math.tointeger (x)
func mathToInt(ls api.State) int {
	if i, ok := ls.ToIntegerX(1); ok {
		ls.PushInteger(i)
	} else {
		ls.CheckAny(1)
		ls.PushNil()
	}
	return 1
}

// math.random ([m [, n]])
func mathRandom(ls api.State) int {
	switch ls.GetTop() {
	case 0:
		ls.PushNumber(rng.Float64())
	case 1:
		m := ls.CheckInteger(1)
		ls.ArgCheck(m >= 1, 1, "interval is empty")
		ls.PushInteger(1 + rng.Int63n(m))
	default:
		lo := ls.CheckInteger(1)
		hi := ls.CheckInteger(2)
		ls.ArgCheck(lo <= hi, 2, "interval is empty")
		ls.PushInteger(lo + rng.Int63n(hi-lo+1))
	}
	return 1
}

// math.randomseed ([x [, y]])
func mathRandomSeed(ls api.State) int {
	if ls.IsNoneOrNil(1) {
		rng = rand.New(rand.NewSource(int64(ls.Config().Environment.Now().UnixNano())))
		return 0
	}
	seed := ls.CheckInteger(1)
	rng = rand.New(rand.NewSource(seed))
	return 0
}

func _pushNumInt(ls api.State, d float64) {
	if i, ok := value.FloatToInteger(d); ok {
		ls.PushInteger(i)
	} else {
		ls.PushNumber(d)
	}
}

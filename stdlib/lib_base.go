package stdlib

import (
	"strconv"
	"strings"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/consts"
	"github.com/lua54vm/core/loadchunk"
)

var moduleCache = loadchunk.NewModuleCache(64)

var baseFuncs = api.FuncReg{
	"print":          basePrint,
	"type":           baseType,
	"tostring":       baseToString,
	"tonumber":       baseToNumber,
	"assert":         baseAssert,
	"error":          baseError,
	"ipairs":         baseIPairs,
	"pairs":          basePairs,
	"next":           baseNext,
	"select":         baseSelect,
	"rawget":         baseRawGet,
	"rawset":         baseRawSet,
	"rawequal":       baseRawEqual,
	"rawlen":         baseRawLen,
	"setmetatable":   baseSetMetatable,
	"getmetatable":   baseGetMetatable,
	"load":           baseLoad,
	"loadstring":     baseLoad,
	"loadfile":       baseLoadFile,
	"dofile":         baseDoFile,
	"require":        baseRequire,
	"pcall":          basePCall,
	"xpcall":         baseXPCall,
	"collectgarbage": baseCollectGarbage,
}

// OpenBaseLib installs the unqualified global functions (print, type,
// pcall, ...) directly into the global table, per spec §6.
// lua-5.4.4/src/lbaselib.c#luaopen_base()
func OpenBaseLib(ls api.State) int {
	ls.PushGlobalTable()
	ls.SetFuncs(baseFuncs, 0)
	/* set global _G */
	ls.PushValue(-1)
	ls.SetField(-2, "_G")
	/* set global _VERSION */
	ls.PushString(consts.VERSION)
	ls.SetField(-2, "_VERSION")
	return 1
}

// print (···)
// lua-5.4.4/src/lbaselib.c#luaB_print()
func basePrint(ls api.State) int {
	n := ls.GetTop()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte('\t')
		}
		b.WriteString(ls.ToString2(i))
	}
	b.WriteByte('\n')
	print(b.String())
	return 0
}

// type (v)
// lua-5.4.4/src/lbaselib.c#luaB_type()
func baseType(ls api.State) int {
	t := ls.Type(1)
	ls.ArgCheck(t != api.TypeNone, 1, "value expected")
	ls.PushString(ls.TypeName(t))
	return 1
}

// tostring (v)
// lua-5.4.4/src/lbaselib.c#luaB_tostring()
func baseToString(ls api.State) int {
	ls.CheckAny(1)
	ls.PushString(ls.ToString2(1))
	return 1
}

// tonumber (e [, base])
// lua-5.4.4/src/lbaselib.c#luaB_tonumber()
func baseToNumber(ls api.State) int {
	if ls.IsNoneOrNil(2) {
		ls.CheckAny(1)
		if ls.Type(1) == api.TypeNumber {
			ls.SetTop(1)
			return 1
		}
		if s, ok := ls.ToStringX(1); ok {
			if ls.StringToNumber(s) {
				return 1
			}
		}
	} else {
		ls.CheckType(1, api.TypeString)
		s := strings.TrimSpace(ls.ToString(1))
		base := int(ls.CheckInteger(2))
		ls.ArgCheck(2 <= base && base <= 36, 2, "base out of range")
		neg := false
		if s != "" && (s[0] == '+' || s[0] == '-') {
			neg = s[0] == '-'
			s = s[1:]
		}
		if n, err := strconv.ParseInt(strings.ToLower(s), base, 64); err == nil {
			if neg {
				n = -n
			}
			ls.PushInteger(n)
			return 1
		}
	}
	ls.PushNil()
	return 1
}

// assert (v [, message])
// lua-5.4.4/src/lbaselib.c#luaB_assert()
func baseAssert(ls api.State) int {
	if ls.ToBoolean(1) {
		return ls.GetTop()
	}
	ls.CheckAny(1)
	ls.Remove(1)
	ls.PushString("assertion failed!")
	ls.SetTop(1)
	return baseError(ls)
}

// error (message [, level])
// lua-5.4.4/src/lbaselib.c#luaB_error()
func baseError(ls api.State) int {
	level := int(ls.OptInteger(2, 1))
	ls.SetTop(1)
	if ls.Type(1) == api.TypeString && level > 0 {
		return ls.ErrorLevel(level)
	}
	return ls.Error()
}

// ipairs (t)
// lua-5.4.4/src/lbaselib.c#luaB_ipairs()
func baseIPairs(ls api.State) int {
	ls.CheckAny(1)
	ls.PushGoFunction(iPairsAux)
	ls.PushValue(1)
	ls.PushInteger(0)
	return 3
}

func iPairsAux(ls api.State) int {
	i := ls.CheckInteger(2) + 1
	ls.PushInteger(i)
	if ls.GetI(1, i) == api.TypeNil {
		return 1
	}
	return 2
}

// pairs (t)
// lua-5.4.4/src/lbaselib.c#luaB_pairs()
func basePairs(ls api.State) int {
	ls.CheckAny(1)
	if ls.GetMetafield(1, "__pairs") == api.TypeNil {
		ls.PushGoFunction(baseNext)
		ls.PushValue(1)
		ls.PushNil()
	} else {
		ls.PushValue(1)
		ls.Call(1, 3)
	}
	return 3
}

// next (table [, index])
// lua-5.4.4/src/lbaselib.c#luaB_next()
func baseNext(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	ls.SetTop(2)
	if ls.Next(1) {
		return 2
	}
	ls.PushNil()
	return 1
}

// select ('#' | n, ···)
// lua-5.4.4/src/lbaselib.c#luaB_select()
func baseSelect(ls api.State) int {
	n := ls.GetTop()
	if ls.Type(1) == api.TypeString && ls.CheckString(1) == "#" {
		ls.PushInteger(int64(n - 1))
		return 1
	}
	i := ls.CheckInteger(1)
	if i < 0 {
		i = int64(n) + i
	}
	ls.ArgCheck(i >= 1, 1, "index out of range")
	if i > int64(n)-1 {
		return 0
	}
	return n - int(i)
}

// rawget (table, index)
// lua-5.4.4/src/lbaselib.c#luaB_rawget()
func baseRawGet(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	ls.CheckAny(2)
	ls.RawGet(1)
	return 1
}

// rawset (table, index, value)
// lua-5.4.4/src/lbaselib.c#luaB_rawset()
func baseRawSet(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	ls.CheckAny(2)
	ls.CheckAny(3)
	ls.RawSet(1)
	ls.SetTop(1)
	return 1
}

// rawequal (v1, v2)
func baseRawEqual(ls api.State) int {
	ls.CheckAny(1)
	ls.CheckAny(2)
	ls.PushBoolean(ls.RawEqual(1, 2))
	return 1
}

// rawlen (v)
func baseRawLen(ls api.State) int {
	t := ls.Type(1)
	ls.ArgCheck(t == api.TypeTable || t == api.TypeString, 1, "table or string expected")
	ls.PushInteger(ls.RawLen(1))
	return 1
}

// setmetatable (table, metatable)
// lua-5.4.4/src/lbaselib.c#luaB_setmetatable()
func baseSetMetatable(ls api.State) int {
	ls.CheckType(1, api.TypeTable)
	t2 := ls.Type(2)
	ls.ArgCheck(t2 == api.TypeNil || t2 == api.TypeTable, 2, "nil or table expected")
	if ls.GetMetafield(1, "__metatable") != api.TypeNil {
		ls.Error2("cannot change a protected metatable")
	}
	ls.SetTop(2)
	ls.SetMetatable(1)
	return 1
}

// getmetatable (object)
// lua-5.4.4/src/lbaselib.c#luaB_getmetatable()
func baseGetMetatable(ls api.State) int {
	if !ls.GetMetatable(1) {
		ls.PushNil()
		return 1
	}
	if ls.GetField(-1, "__metatable") == api.TypeNil {
		ls.Pop(1)
	} else {
		ls.Remove(-2)
	}
	return 1
}

// load (chunk [, chunkname [, mode [, env]]])
// lua-5.4.4/src/lbaselib.c#luaB_load()
func baseLoad(ls api.State) int {
	chunk, isStr := ls.ToStringX(1)
	mode := ls.OptString(3, "bt")
	if !isStr {
		ls.PushNil()
		ls.PushString("load: only loading from a string is supported")
		return 2
	}
	chunkname := ls.OptString(2, chunk)
	status := ls.Load([]byte(chunk), chunkname, mode)
	return loadAux(ls, status)
}

func loadAux(ls api.State, status api.Status) int {
	if status == api.StatusOK {
		return 1
	}
	ls.PushNil()
	ls.Insert(-2)
	return 2
}

// loadfile ([filename [, mode [, env]]])
// lua-5.4.4/src/lbaselib.c#luaB_loadfile()
func baseLoadFile(ls api.State) int {
	fname := ls.OptString(1, "")
	mode := ls.OptString(2, "bt")
	status := ls.LoadFileX(fname, mode)
	return loadAux(ls, status)
}

// dofile ([filename])
// lua-5.4.4/src/lbaselib.c#luaB_dofile()
func baseDoFile(ls api.State) int {
	fname := ls.OptString(1, "")
	ls.SetTop(1)
	if ls.LoadFile(fname) != api.StatusOK {
		return ls.Error()
	}
	ls.Call(0, api.MultiRet)
	return ls.GetTop() - 1
}

// require (modname) resolves modname against the search path,
// loads (as a binary chunk) and runs it once, and caches the result under _LOADED so
// later require calls of the same name are free, per spec §4.9.
func baseRequire(ls api.State) int {
	name := ls.CheckString(1)

	ls.GetSubTable(api.RegistryIndex, "_LOADED")
	if ls.GetField(-1, name) != api.TypeNil {
		ls.Remove(-2)
		return 1
	}
	ls.Pop(1) // nil result

	env := ls.Config().Environment
	var found string
	if cached, ok := moduleCache.Path(name); ok {
		if _, err := env.ReadFile(cached); err == nil {
			found = cached
		}
	}
	if found == "" {
		for _, candidate := range loadchunk.Resolve(loadchunk.DefaultPath, name) {
			if _, err := env.ReadFile(candidate); err == nil {
				found = candidate
				break
			}
		}
	}
	if found == "" {
		ls.Remove(-1)
		ls.Error2("module '%s' not found", name)
	}
	moduleCache.Resolved(name, found)

	if ls.LoadFileX(found, "bt") != api.StatusOK {
		ls.Error()
	}
	ls.PushString(name)
	ls.Call(1, 1)
	if ls.IsNil(-1) {
		ls.Pop(1)
		ls.PushBoolean(true)
	}

	ls.PushValue(-1)
	ls.SetField(-3, name) // _LOADED[name] = result
	ls.Remove(-2)         // pop _LOADED
	return 1
}

// pcall (f [, arg1, ···])
// lua-5.4.4/src/lbaselib.c#luaB_pcall()
func basePCall(ls api.State) int {
	nArgs := ls.GetTop() - 1
	status := ls.PCall(nArgs, api.MultiRet, 0)
	ls.PushBoolean(status == api.StatusOK)
	ls.Insert(1)
	return ls.GetTop()
}

// xpcall (f, msgh [, arg1, ···])
// lua-5.4.4/src/lbaselib.c#luaB_xpcall()
func baseXPCall(ls api.State) int {
	nArgs := ls.GetTop() - 2
	ls.CheckAny(2)
	ls.Insert(1) // move msgh below f
	status := ls.PCall(nArgs, api.MultiRet, 1)
	ls.PushBoolean(status == api.StatusOK)
	ls.Replace(1)
	return ls.GetTop()
}

// collectgarbage ([opt [, arg]])
// This runtime has no tracing collector (spec §9's Open Questions), so
// every opt is a no-op returning 0 except "isrunning", which reports
// true to keep scripts that branch on it working.
func baseCollectGarbage(ls api.State) int {
	opt := ls.OptString(1, "collect")
	if opt == "isrunning" {
		ls.PushBoolean(true)
		return 1
	}
	ls.PushInteger(0)
	return 1
}

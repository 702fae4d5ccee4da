package state

import (
	"strconv"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/value"
	"github.com/lua54vm/core/vmerr"
)

func (ls *State) Len(idx int) {
	val := ls.stack.get(idx)

	if s, ok := val.(string); ok {
		ls.stack.push(int64(len(s)))
		return
	}
	if result, ok := callMetamethod(val, val, "__len", ls); ok {
		ls.stack.push(result)
		return
	}
	if t, ok := val.(*Table); ok {
		ls.stack.push(t.Len())
		return
	}
	typeErr("get length of", typeOf(val).String())
}

func (ls *State) Error() int {
	vmerr.Raise(ls.stack.pop())
	return 0
}

// ErrorLevel prefixes a string error with "source:line: " before
// raising it, matching luaL_error's position-annotation behavior.
func (ls *State) ErrorLevel(level int) int {
	if level > 0 {
		if s, ok := ls.stack.get(-1).(string); ok {
			var ar api.DebugInfo
			if ls.GetInfo(level, "Sl", &ar) {
				ls.stack.set(-1, ar.ShortSrc+":"+strconv.Itoa(ar.CurrentLine)+": "+s)
			}
		}
	}
	return ls.Error()
}

func (ls *State) StringToNumber(s string) bool {
	if n, ok := value.ParseInteger(s); ok {
		ls.PushInteger(n)
		return true
	}
	if n, ok := value.ParseFloat(s); ok {
		ls.PushNumber(n)
		return true
	}
	return false
}

package stdlib

import (
	"strings"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/format"
	"github.com/lua54vm/core/pack"
	"github.com/lua54vm/core/pattern"
)

var strFuncs = api.FuncReg{
	"len":      strLen,
	"rep":      strRep,
	"reverse":  strReverse,
	"lower":    strLower,
	"upper":    strUpper,
	"sub":      strSub,
	"byte":     strByte,
	"char":     strChar,
	"format":   strFormat,
	"find":     strFind,
	"match":    strMatch,
	"gmatch":   strGmatch,
	"gsub":     strGsub,
	"pack":     strPack,
	"unpack":   strUnpack,
	"packsize": strPackSize,
}

// OpenStringLib installs string.*, per spec §4.6/§6. A fresh string
// metatable is set up with __index pointing at the library table so
// s:upper() works the way the reference implementation's
// string metatable does.
func OpenStringLib(ls api.State) int {
	ls.NewLib(strFuncs)
	ls.CreateTable(0, 1)
	ls.PushValue(-2)
	ls.SetField(-2, "__index")
	ls.SetMetatable(-3)
	return 1
}

func strLen(ls api.State) int {
	ls.PushInteger(int64(len(ls.CheckString(1))))
	return 1
}

// string.rep (s, n [, sep])
func strRep(ls api.State) int {
	s := ls.CheckString(1)
	n := ls.CheckInteger(2)
	sep := ls.OptString(3, "")
	if n <= 0 {
		ls.PushString("")
	} else {
		a := make([]string, n)
		for i := range a {
			a[i] = s
		}
		ls.PushString(strings.Join(a, sep))
	}
	return 1
}

func strReverse(ls api.State) int {
	s := ls.CheckString(1)
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[i] = s[len(s)-1-i]
	}
	ls.PushString(string(b))
	return 1
}

func strLower(ls api.State) int {
	ls.PushString(strings.ToLower(ls.CheckString(1)))
	return 1
}

func strUpper(ls api.State) int {
	ls.PushString(strings.ToUpper(ls.CheckString(1)))
	return 1
}

// posRelat converts a Lua string position (1-based, negative counts
// from the end) into a 1-based absolute position, per spec §4.6.
func posRelat(pos int64, l int) int {
	if pos >= 0 {
		return int(pos)
	}
	if -pos > int64(l) {
		return 0
	}
	return l + int(pos) + 1
}

// string.sub (s, i [, j])
func strSub(ls api.State) int {
	s := ls.CheckString(1)
	sLen := len(s)
	i := posRelat(ls.CheckInteger(2), sLen)
	j := posRelat(ls.OptInteger(3, -1), sLen)
	if i < 1 {
		i = 1
	}
	if j > sLen {
		j = sLen
	}
	if i <= j {
		ls.PushString(s[i-1 : j])
	} else {
		ls.PushString("")
	}
	return 1
}

// string.byte (s [, i [, j]])
func strByte(ls api.State) int {
	s := ls.CheckString(1)
	sLen := len(s)
	i := posRelat(ls.OptInteger(2, 1), sLen)
	j := posRelat(ls.OptInteger(3, int64(i)), sLen)
	if i < 1 {
		i = 1
	}
	if j > sLen {
		j = sLen
	}
	if i > j {
		return 0
	}
	n := j - i + 1
	ls.CheckStack2(n, "string slice too long")
	for k := 0; k < n; k++ {
		ls.PushInteger(int64(s[i+k-1]))
	}
	return n
}

// string.char (···)
func strChar(ls api.State) int {
	nArgs := ls.GetTop()
	s := make([]byte, nArgs)
	for i := 1; i <= nArgs; i++ {
		c := ls.CheckInteger(i)
		ls.ArgCheck(int64(byte(c)) == c, i, "value out of range")
		s[i-1] = byte(c)
	}
	ls.PushString(string(s))
	return 1
}

// string.format (formatstring, ···)
func strFormat(ls api.State) int {
	fmtStr := ls.CheckString(1)
	ls.PushString(format.Sprintf(ls, fmtStr, 2))
	return 1
}

func pushCaptures(ls api.State, caps []pattern.Capture) int {
	for _, c := range caps {
		if c.Pos {
			ls.PushInteger(int64(c.Start))
		} else {
			ls.PushString(c.Str)
		}
	}
	return len(caps)
}

// string.find (s, pattern [, init [, plain]])
func strFind(ls api.State) int {
	s := ls.CheckString(1)
	pat := ls.CheckString(2)
	init := int(ls.OptInteger(3, 1))
	if init > 0 {
		init--
	} else if init < 0 {
		init = len(s) + init
		if init < 0 {
			init = 0
		}
	}
	if init > len(s) {
		ls.PushNil()
		return 1
	}
	plain := ls.ToBoolean(4)
	if plain || !strings.ContainsAny(pat, "^$*+?.([%-") {
		idx := strings.Index(s[init:], pat)
		if idx < 0 {
			ls.PushNil()
			return 1
		}
		ls.PushInteger(int64(init + idx + 1))
		ls.PushInteger(int64(init + idx + len(pat)))
		return 2
	}
	start, end, caps, ok := pattern.Find(s, pat, init)
	if !ok {
		ls.PushNil()
		return 1
	}
	ls.PushInteger(int64(start + 1))
	ls.PushInteger(int64(end))
	if strings.Contains(pat, "(") {
		return 2 + pushCaptures(ls, caps)
	}
	return 2
}

// string.match (s, pattern [, init])
func strMatch(ls api.State) int {
	s := ls.CheckString(1)
	pat := ls.CheckString(2)
	init := int(ls.OptInteger(3, 1))
	if init > 0 {
		init--
	} else if init < 0 {
		init = len(s) + init
		if init < 0 {
			init = 0
		}
	}
	start, end, caps, ok := pattern.Find(s, pat, init)
	if !ok {
		ls.PushNil()
		return 1
	}
	if strings.Contains(pat, "(") {
		return pushCaptures(ls, caps)
	}
	ls.PushString(s[start:end])
	return 1
}

// string.gmatch (s, pattern)
func strGmatch(ls api.State) int {
	s := ls.CheckString(1)
	pat := ls.CheckString(2)
	pos := 0
	hasCaps := strings.Contains(pat, "(")
	iter := func(ls api.State) int {
		for pos <= len(s) {
			start, end, caps, ok := pattern.Find(s, pat, pos)
			if !ok {
				return 0
			}
			if end == pos {
				pos = end + 1
			} else {
				pos = end
			}
			if hasCaps {
				return pushCaptures(ls, caps)
			}
			ls.PushString(s[start:end])
			return 1
		}
		return 0
	}
	ls.PushGoFunction(iter)
	return 1
}

// string.gsub (s, pattern, repl [, n])
func strGsub(ls api.State) int {
	s := ls.CheckString(1)
	pat := ls.CheckString(2)
	maxN := int(ls.OptInteger(4, -1))

	var out strings.Builder
	pos := 0
	count := 0
	for pos <= len(s) && (maxN < 0 || count < maxN) {
		start, end, caps, ok := pattern.Find(s, pat, pos)
		if !ok {
			break
		}
		out.WriteString(s[pos:start])
		whole := s[start:end]
		if len(caps) == 0 {
			caps = []pattern.Capture{{Str: whole, Start: start + 1}}
		}
		out.WriteString(gsubRepl(ls, whole, caps))
		count++
		if end == start {
			if start < len(s) {
				out.WriteByte(s[start])
			}
			pos = start + 1
		} else {
			pos = end
		}
	}
	if pos < len(s) {
		out.WriteString(s[pos:])
	}
	ls.PushString(out.String())
	ls.PushInteger(int64(count))
	return 2
}

func gsubRepl(ls api.State, whole string, caps []pattern.Capture) string {
	switch ls.Type(3) {
	case api.TypeString, api.TypeNumber:
		repl := ls.ToString2(3)
		var b strings.Builder
		for i := 0; i < len(repl); i++ {
			if repl[i] == '%' && i+1 < len(repl) {
				i++
				c := repl[i]
				switch {
				case c == '%':
					b.WriteByte('%')
				case c == '0':
					b.WriteString(whole)
				case c >= '1' && c <= '9':
					idx := int(c - '1')
					if idx < len(caps) {
						b.WriteString(captureString(caps[idx]))
					}
				default:
					b.WriteByte(c)
				}
			} else {
				b.WriteByte(repl[i])
			}
		}
		return b.String()
	case api.TypeTable:
		key := captureString(caps[0])
		ls.PushValue(3)
		ls.PushString(key)
		ls.GetTable(-2)
		result := replResult(ls, whole)
		ls.Pop(1) // the table pushed above
		return result
	case api.TypeFunction:
		ls.PushValue(3)
		n := pushCaptures(ls, caps)
		ls.Call(n, 1)
		return replResult(ls, whole)
	default:
		ls.Error2("bad argument #3 to 'gsub' (string/function/table expected)")
		return whole
	}
}

func replResult(ls api.State, whole string) string {
	defer ls.Pop(1)
	if ls.ToBoolean(-1) {
		return ls.ToString2(-1)
	}
	return whole
}

func captureString(c pattern.Capture) string {
	if c.Pos {
		return ""
	}
	return c.Str
}

// string.pack (fmt, v1, ···)
func strPack(ls api.State) int {
	fmtStr := ls.CheckString(1)
	ls.PushString(pack.Pack(ls, fmtStr, 2))
	return 1
}

// string.unpack (fmt, data [, pos])
func strUnpack(ls api.State) int {
	fmtStr := ls.CheckString(1)
	data := ls.CheckString(2)
	pos := int(ls.OptInteger(3, 1))
	return pack.Unpack(ls, fmtStr, data, pos)
}

// string.packsize (fmt)
func strPackSize(ls api.State) int {
	fmtStr := ls.CheckString(1)
	ls.PushInteger(pack.PackSize(ls, fmtStr))
	return 1
}

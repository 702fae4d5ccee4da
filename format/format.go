// Package format implements string.format (spec §4.6), translating
// Lua's printf-style directives onto fmt.Sprintf verbs one conversion
// at a time so each argument can be pulled off the VM stack with the
// right Check*/OptInteger accessor for its specifier.
package format

import (
	"fmt"
	"reflect"
	"strings"
)

// Arg is the minimal stack-reading surface string.format needs; it's
// satisfied by api.State so the stdlib caller can pass itself through
// without this package importing api's whole State interface by name
// in every call site.
type Arg interface {
	CheckInteger(idx int) int64
	CheckNumber(idx int) float64
	ToString2(idx int) string
	CheckString(idx int) string
	ToPointer(idx int) any
	Error2(format string, a ...any) int
}

// Sprintf implements string.format(fmtStr, ...): args start at stack
// index firstArg in ls.
func Sprintf(ls Arg, fmtStr string, firstArg int) string {
	var out strings.Builder
	argIdx := firstArg
	i := 0
	for i < len(fmtStr) {
		c := fmtStr[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}
		start := i
		i++
		if i < len(fmtStr) && fmtStr[i] == '%' {
			out.WriteByte('%')
			i++
			continue
		}
		for i < len(fmtStr) && strings.IndexByte("-+ #0", fmtStr[i]) >= 0 {
			i++
		}
		widthStart := i
		for i < len(fmtStr) && fmtStr[i] >= '0' && fmtStr[i] <= '9' {
			i++
		}
		if i-widthStart > 2 {
			ls.Error2("invalid conversion to 'format'")
			return out.String()
		}
		if i < len(fmtStr) && fmtStr[i] == '.' {
			i++
			precStart := i
			for i < len(fmtStr) && fmtStr[i] >= '0' && fmtStr[i] <= '9' {
				i++
			}
			if i-precStart > 2 {
				ls.Error2("invalid conversion to 'format'")
				return out.String()
			}
		}
		if i >= len(fmtStr) {
			ls.Error2("invalid conversion to 'format'")
			return out.String()
		}
		verb := fmtStr[i]
		spec := fmtStr[start : i+1]
		i++

		switch verb {
		case 'd', 'i':
			out.WriteString(fmt.Sprintf(spec[:len(spec)-1]+"d", ls.CheckInteger(argIdx)))
		case 'u':
			out.WriteString(fmt.Sprintf(spec[:len(spec)-1]+"d", uint64(ls.CheckInteger(argIdx))))
		case 'o':
			out.WriteString(fmt.Sprintf(spec, ls.CheckInteger(argIdx)))
		case 'x', 'X':
			out.WriteString(fmt.Sprintf(spec, uint64(ls.CheckInteger(argIdx))))
		case 'c':
			out.WriteByte(byte(ls.CheckInteger(argIdx)))
		case 'f', 'F', 'e', 'E', 'g', 'G':
			out.WriteString(fmt.Sprintf(spec, ls.CheckNumber(argIdx)))
		case 'a', 'A':
			out.WriteString(fmt.Sprintf(strings.ToLower(spec[:len(spec)-1])+"x", ls.CheckNumber(argIdx)))
		case 's':
			out.WriteString(fmt.Sprintf(spec, ls.ToString2(argIdx)))
		case 'q':
			out.WriteString(quote(ls.CheckString(argIdx)))
		case 'p':
			out.WriteString(pointerString(ls.ToPointer(argIdx)))
		default:
			ls.Error2("invalid conversion '%%%c' to 'format'", verb)
			return out.String()
		}
		argIdx++
	}
	return out.String()
}

// pointerString implements %p: tables, closures and threads print their
// identity address, everything else (numbers, booleans, strings, nil)
// has no meaningful address and prints "(null)", matching lua_topointer
// returning NULL for non-collectible values.
func pointerString(v any) string {
	if v == nil {
		return "(null)"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice, reflect.UnsafePointer:
		return fmt.Sprintf("%p", v)
	default:
		return "(null)"
	}
}

// quote renders s the way %q must: re-loadable Lua source, escaping
// quotes, backslashes, newlines and control bytes.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case 0:
			b.WriteString("\\0")
		default:
			if c < 32 || c == 127 {
				fmt.Fprintf(&b, "\\%d", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

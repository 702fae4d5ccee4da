// Package pack implements the format-string state machine behind
// string.pack/string.unpack/string.packsize.
package pack

import (
	"encoding/binary"
	"math"

	"github.com/lua54vm/core/vmerr"
)

// Arg is the subset of api.State a pack/unpack caller needs to push
// and read values; kept narrow so this package stays independent of
// the VM's value representation.
type Arg interface {
	PushInteger(i int64)
	PushNumber(n float64)
	PushString(s string)
	CheckInteger(idx int) int64
	CheckNumber(idx int) float64
	CheckString(idx int) string
	Error2(format string, a ...any) int
}

type opt struct {
	code    byte
	size    int // byte width, 0 when not size-bearing
	signed  bool
	little  bool
	maxN    int // for s[n]/c[n], the declared n
	isAlign bool
}

// header tracks parser state across a format string: the active
// endianness and the maximum alignment boundary set by "!n".
type header struct {
	little   bool
	maxAlign int
}

func nativeLittle() bool {
	var x uint16 = 1
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, x)
	return b[0] == 1
}

func newHeader() header {
	return header{little: nativeLittle(), maxAlign: 1}
}

func (h header) order() binary.ByteOrder {
	if h.little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// parseOpt reads one element from the format string starting at i,
// returning the decoded opt and the index just past it.
func parseOpt(f string, i int, h *header) (opt, int) {
	c := f[i]
	i++
	readNum := func(dft int) (int, int) {
		start := i
		for i < len(f) && f[i] >= '0' && f[i] <= '9' {
			i++
		}
		if start == i {
			return dft, i
		}
		n := 0
		for _, d := range f[start:i] {
			n = n*10 + int(d-'0')
		}
		return n, i
	}
	switch c {
	case '<':
		h.little = true
		return opt{code: c}, i
	case '>':
		h.little = false
		return opt{code: c}, i
	case '=':
		h.little = nativeLittle()
		return opt{code: c}, i
	case '!':
		n, ni := readNum(8)
		h.maxAlign = n
		i = ni
		return opt{code: c, isAlign: true}, i
	case ' ':
		return opt{code: c}, i
	case 'b', 'B':
		return opt{code: c, size: 1, signed: c == 'b'}, i
	case 'h', 'H':
		return opt{code: c, size: 2, signed: c == 'h'}, i
	case 'l', 'L', 'j', 'J', 'T':
		return opt{code: c, size: 8, signed: c == 'l' || c == 'j'}, i
	case 'i', 'I':
		n, ni := readNum(4)
		i = ni
		if n < 1 || n > 16 {
			vmerr.Raisef("integral size (%d) out of limits [1,16]", n)
		}
		return opt{code: c, size: n, signed: c == 'i'}, i
	case 'f':
		return opt{code: c, size: 4}, i
	case 'd', 'n':
		return opt{code: c, size: 8}, i
	case 's':
		n, ni := readNum(8)
		i = ni
		return opt{code: c, size: n}, i
	case 'z':
		return opt{code: c}, i
	case 'c':
		n, ni := readNum(-1)
		i = ni
		return opt{code: c, maxN: n}, i
	case 'x':
		return opt{code: c, size: 1}, i
	case 'X':
		return opt{code: c, isAlign: true}, i
	default:
		vmerr.Raisef("invalid format option '%c'", c)
		return opt{}, i
	}
}

func align(pos, width, maxAlign int) int {
	if width <= 1 || width > maxAlign {
		width = maxAlign
	}
	if width <= 1 {
		return pos
	}
	if r := pos % width; r != 0 {
		pos += width - r
	}
	return pos
}

// Pack implements string.pack(fmt, v1, ...): reads arguments starting
// at argBase and returns the packed byte string.
func Pack(ls Arg, format string, argBase int) string {
	h := newHeader()
	out := make([]byte, 0, 32)
	arg := argBase
	i := 0
	for i < len(format) {
		o, ni := parseOpt(format, i, &h)
		i = ni
		switch o.code {
		case '<', '>', '=', ' ', '!':
			continue
		case 'X':
			// X<op>: consume the next element purely for its alignment.
			o2, ni2 := parseOpt(format, i, &h)
			i = ni2
			out = padTo(out, align(len(out), elemAlign(o2), h.maxAlign))
			continue
		case 'x':
			out = append(out, 0)
			continue
		}
		if o.size > 0 {
			out = padTo(out, align(len(out), o.size, h.maxAlign))
		}
		switch o.code {
		case 'b', 'B', 'h', 'H', 'l', 'L', 'j', 'J', 'T', 'i', 'I':
			n := ls.CheckInteger(arg)
			arg++
			out = appendInt(out, h.order(), o.size, n, o.signed)
		case 'f':
			v := float32(ls.CheckNumber(arg))
			arg++
			buf := make([]byte, 4)
			h.order().PutUint32(buf, math.Float32bits(v))
			out = append(out, buf...)
		case 'd', 'n':
			v := ls.CheckNumber(arg)
			arg++
			buf := make([]byte, 8)
			h.order().PutUint64(buf, math.Float64bits(v))
			out = append(out, buf...)
		case 's':
			s := ls.CheckString(arg)
			arg++
			out = appendInt(out, h.order(), o.size, int64(len(s)), false)
			out = append(out, s...)
		case 'z':
			s := ls.CheckString(arg)
			arg++
			out = append(out, s...)
			out = append(out, 0)
		case 'c':
			s := ls.CheckString(arg)
			arg++
			if o.maxN < 0 {
				ls.Error2("missing size for format option 'c'")
			}
			if len(s) > o.maxN {
				ls.Error2("string longer than given size")
			}
			out = append(out, s...)
			for k := len(s); k < o.maxN; k++ {
				out = append(out, 0)
			}
		}
	}
	return string(out)
}

func elemAlign(o opt) int {
	if o.size > 0 {
		return o.size
	}
	return 1
}

func padTo(out []byte, n int) []byte {
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}

// appendInt packs v into size bytes, sign-extending beyond 8 bytes for
// negative values. When size is narrower than an int64, the value must
// fit the declared width exactly: spec §4.7's "overflow"/"unsigned
// overflow" errors.
func appendInt(out []byte, order binary.ByteOrder, size int, v int64, signed bool) []byte {
	if size < 8 {
		if signed {
			lim := int64(1) << uint(size*8-1)
			if v < -lim || v >= lim {
				vmerr.Raise("integer overflow")
			}
		} else {
			lim := uint64(1) << uint(size*8)
			if uint64(v) >= lim {
				vmerr.Raise("unsigned overflow")
			}
		}
	}
	neg := v < 0
	u := uint64(v)
	buf := make([]byte, size)
	fill := func(pos int, k int) {
		if k < 8 {
			buf[pos] = byte(u >> uint(8*k))
		} else if neg {
			buf[pos] = 0xFF
		} else {
			buf[pos] = 0
		}
	}
	if order == binary.LittleEndian {
		for k := 0; k < size; k++ {
			fill(k, k)
		}
	} else {
		for k := 0; k < size; k++ {
			fill(size-1-k, k)
		}
	}
	return append(out, buf...)
}

// readInt decodes size bytes (1-16) into an int64. Sizes beyond 8 only
// hold meaningful bits in their low 8 bytes; the rest must be a valid
// sign/zero-extension of byte 8, else the value doesn't fit a Lua
// integer (spec §4.7).
func readInt(data []byte, order binary.ByteOrder, size int, signed bool) int64 {
	lsbFirst := make([]byte, size)
	if order == binary.LittleEndian {
		copy(lsbFirst, data[:size])
	} else {
		for k := 0; k < size; k++ {
			lsbFirst[k] = data[size-1-k]
		}
	}

	n := size
	if n > 8 {
		n = 8
	}
	var u uint64
	for k := n - 1; k >= 0; k-- {
		u = u<<8 | uint64(lsbFirst[k])
	}

	if size > 8 {
		var extend byte
		if signed && u&0x8000000000000000 != 0 {
			extend = 0xFF
		}
		for k := 8; k < size; k++ {
			if lsbFirst[k] != extend {
				vmerr.Raisef("%d-byte integer does not fit into Lua Integer", size)
			}
		}
	} else if signed && size < 8 {
		shift := uint(64 - 8*size)
		return int64(u<<shift) >> shift
	}
	return int64(u)
}

// Unpack implements string.unpack(fmt, data, [pos]): pushes the
// decoded values then the final 1-based position just past the last
// byte read.
func Unpack(ls Arg, format string, data string, pos int) int {
	h := newHeader()
	i := 0
	nResults := 0
	d := pos - 1
	for i < len(format) {
		o, ni := parseOpt(format, i, &h)
		i = ni
		switch o.code {
		case '<', '>', '=', ' ', '!':
			continue
		case 'x':
			d++
			continue
		case 'X':
			o2, ni2 := parseOpt(format, i, &h)
			i = ni2
			d = align(d, elemAlign(o2), h.maxAlign)
			continue
		}
		if o.size > 0 {
			d = align(d, o.size, h.maxAlign)
		}
		switch o.code {
		case 'b', 'B', 'h', 'H', 'l', 'L', 'j', 'J', 'T', 'i', 'I':
			v := readInt([]byte(data[d:d+o.size]), h.order(), o.size, o.signed)
			d += o.size
			ls.PushInteger(v)
			nResults++
		case 'f':
			bits := h.order().Uint32([]byte(data[d : d+4]))
			d += 4
			ls.PushNumber(float64(math.Float32frombits(bits)))
			nResults++
		case 'd', 'n':
			bits := h.order().Uint64([]byte(data[d : d+8]))
			d += 8
			ls.PushNumber(math.Float64frombits(bits))
			nResults++
		case 's':
			n := readInt([]byte(data[d:d+o.size]), h.order(), o.size, false)
			d += o.size
			ls.PushString(data[d : d+int(n)])
			d += int(n)
			nResults++
		case 'z':
			end := d
			for end < len(data) && data[end] != 0 {
				end++
			}
			ls.PushString(data[d:end])
			d = end + 1
			nResults++
		case 'c':
			ls.PushString(data[d : d+o.maxN])
			d += o.maxN
			nResults++
		}
	}
	ls.PushInteger(int64(d + 1))
	return nResults + 1
}

// PackSize implements string.packsize(fmt): errors on variable-length
// formats ('s', 'z'), per spec.
func PackSize(ls Arg, format string) int64 {
	h := newHeader()
	i := 0
	size := 0
	for i < len(format) {
		o, ni := parseOpt(format, i, &h)
		i = ni
		switch o.code {
		case '<', '>', '=', ' ', '!':
			continue
		case 'x':
			size++
			continue
		case 'X':
			o2, ni2 := parseOpt(format, i, &h)
			i = ni2
			size = align(size, elemAlign(o2), h.maxAlign)
			continue
		case 's', 'z':
			ls.Error2("variable-length format")
		}
		if o.size > 0 {
			size = align(size, o.size, h.maxAlign)
			size += o.size
		}
		if o.code == 'c' {
			size += o.maxN
		}
	}
	return int64(size)
}

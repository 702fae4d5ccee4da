// Package pattern implements Lua pattern matching (spec §4.6): the
// reduced regex dialect used by string.find/match/gmatch/gsub. It is a
// direct backtracking matcher in the shape of lstrlib.c's match(), not
// a translation to Go's regexp package, since Lua patterns aren't
// regular expressions (%b, %f, and position captures have no regexp
// equivalent).
package pattern

import (
	"strings"

	"github.com/lua54vm/core/vmerr"
)

const maxCaptures = 32

const capPosition = -2
const capUnfinished = -1

type capture struct {
	start int
	len   int
}

// MatchState holds the backtracking state for one pattern/subject pair.
type MatchState struct {
	src   string
	pat   string
	caps  []capture
	depth int
}

// Capture is one capture result: Pos is true for a position capture
// ("()"), in which case Start is the 1-based position and Str is unset.
type Capture struct {
	Str   string
	Start int
	Pos   bool
}

const maxDepth = 200

// Find runs pattern p against s starting no earlier than init (0-based,
// clamped into range), returning the overall match bounds [start, end)
// and any captures. ok is false if no match is found anywhere at or
// after init.
func Find(s, p string, init int) (start, end int, caps []Capture, ok bool) {
	if init < 0 {
		init = len(s) + init
		if init < 0 {
			init = 0
		}
	}
	if init > len(s) {
		return 0, 0, nil, false
	}

	anchor := false
	pp := p
	if len(pp) > 0 && pp[0] == '^' {
		anchor = true
		pp = pp[1:]
	}

	for si := init; ; si++ {
		ms := &MatchState{src: s, pat: pp}
		if e, ok := ms.match(si, 0); ok {
			return si, e, ms.captures(si, e), true
		}
		if anchor || si >= len(s) {
			break
		}
	}
	return 0, 0, nil, false
}

func (ms *MatchState) captures(start, end int) []Capture {
	if len(ms.caps) == 0 {
		return []Capture{{Str: ms.src[start:end], Start: start + 1}}
	}
	out := make([]Capture, len(ms.caps))
	for i, c := range ms.caps {
		if c.len == capPosition {
			out[i] = Capture{Pos: true, Start: c.start + 1}
		} else {
			out[i] = Capture{Str: ms.src[c.start : c.start+c.len], Start: c.start + 1}
		}
	}
	return out
}

func classEnd(p string, pp int) int {
	c := p[pp]
	pp++
	if c == '%' {
		if pp >= len(p) {
			vmerr.Raise("malformed pattern (ends with '%')")
		}
		return pp + 1
	}
	if c == '[' {
		if pp < len(p) && p[pp] == '^' {
			pp++
		}
		for {
			if pp >= len(p) {
				vmerr.Raise("malformed pattern (missing ']')")
			}
			cc := p[pp]
			pp++
			if cc == '%' {
				if pp >= len(p) {
					vmerr.Raise("malformed pattern (ends with '%')")
				}
				pp++
			} else if cc == ']' {
				return pp
			}
		}
	}
	return pp
}

func matchClass(c byte, cl byte) bool {
	var res bool
	switch lower(cl) {
	case 'a':
		res = isAlpha(c)
	case 'd':
		res = isDigit(c)
	case 'l':
		res = c >= 'a' && c <= 'z'
	case 's':
		res = isSpace(c)
	case 'u':
		res = c >= 'A' && c <= 'Z'
	case 'w':
		res = isAlpha(c) || isDigit(c)
	case 'c':
		res = c < 32 || c == 127
	case 'p':
		res = isPunct(c)
	case 'x':
		res = isHex(c)
	case 'g':
		res = c > 32 && c < 127
	default:
		return cl == c
	}
	if isUpper(cl) {
		return !res
	}
	return res
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 32
	}
	return c
}
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isSpace(c byte) bool { return c == ' ' || (c >= '\t' && c <= '\r') }
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func matchClassSet(c byte, p string, start, end int) bool {
	negate := false
	pp := start + 1
	if pp < end && p[pp] == '^' {
		negate = true
		pp++
	}
	found := false
	for pp < end {
		if p[pp] == '%' {
			pp++
			if matchClass(c, p[pp]) {
				found = true
			}
			pp++
		} else if pp+2 < end && p[pp+1] == '-' {
			if p[pp] <= c && c <= p[pp+2] {
				found = true
			}
			pp += 3
		} else {
			if p[pp] == c {
				found = true
			}
			pp++
		}
	}
	if negate {
		return !found
	}
	return found
}

func singleMatch(ms *MatchState, si, pp, ep int) bool {
	if si >= len(ms.src) {
		return false
	}
	c := ms.src[si]
	switch ms.pat[pp] {
	case '.':
		return true
	case '%':
		return matchClass(c, ms.pat[pp+1])
	case '[':
		return matchClassSet(c, ms.pat, pp, ep-1)
	default:
		return ms.pat[pp] == c
	}
}

// match attempts to match ms.pat[pp:] at ms.src[si:], returning the end
// position on success.
func (ms *MatchState) match(si, pp int) (int, bool) {
	ms.depth++
	if ms.depth > maxDepth {
		vmerr.Raise("pattern too complex")
	}
	defer func() { ms.depth-- }()

	if pp >= len(ms.pat) {
		return si, true
	}

	switch ms.pat[pp] {
	case '(':
		if pp+1 < len(ms.pat) && ms.pat[pp+1] == ')' {
			return ms.startCapture(si, pp+2, capPosition)
		}
		return ms.startCapture(si, pp+1, capUnfinished)
	case ')':
		return ms.endCapture(si, pp+1)
	case '$':
		if pp+1 == len(ms.pat) {
			if si == len(ms.src) {
				return si, true
			}
			return 0, false
		}
	case '%':
		if pp+1 < len(ms.pat) {
			switch ms.pat[pp+1] {
			case 'b':
				return ms.matchBalance(si, pp+2)
			case 'f':
				pp += 2
				if pp >= len(ms.pat) || ms.pat[pp] != '[' {
					vmerr.Raise("missing '[' after '%f' in pattern")
				}
				ep := classEnd(ms.pat, pp)
				var prev byte
				if si > 0 {
					prev = ms.src[si-1]
				}
				var cur byte
				if si < len(ms.src) {
					cur = ms.src[si]
				}
				if !matchClassSet(prev, ms.pat, pp, ep-1) && matchClassSet(cur, ms.pat, pp, ep-1) {
					return ms.match(si, ep)
				}
				return 0, false
			default:
				if isDigit(ms.pat[pp+1]) {
					return ms.matchCapture(si, pp)
				}
			}
		}
	}

	ep := classEnd(ms.pat, pp)
	var suffix byte
	if ep < len(ms.pat) {
		suffix = ms.pat[ep]
	}
	matched := singleMatch(ms, si, pp, ep)

	switch suffix {
	case '?':
		if matched {
			if e, ok := ms.match(si+1, ep+1); ok {
				return e, true
			}
		}
		return ms.match(si, ep+1)
	case '+':
		if matched {
			return ms.maxExpand(si+1, pp, ep)
		}
		return 0, false
	case '*':
		return ms.maxExpand(si, pp, ep)
	case '-':
		return ms.minExpand(si, pp, ep)
	default:
		if !matched {
			return 0, false
		}
		return ms.match(si+1, ep)
	}
}

func (ms *MatchState) maxExpand(si, pp, ep int) (int, bool) {
	n := 0
	for singleMatch(ms, si+n, pp, ep) {
		n++
	}
	for n >= 0 {
		if e, ok := ms.match(si+n, ep+1); ok {
			return e, true
		}
		n--
	}
	return 0, false
}

func (ms *MatchState) minExpand(si, pp, ep int) (int, bool) {
	for {
		if e, ok := ms.match(si, ep+1); ok {
			return e, true
		}
		if singleMatch(ms, si, pp, ep) {
			si++
		} else {
			return 0, false
		}
	}
}

func (ms *MatchState) startCapture(si, pp, what int) (int, bool) {
	ms.caps = append(ms.caps, capture{start: si, len: what})
	e, ok := ms.match(si, pp)
	if !ok {
		ms.caps = ms.caps[:len(ms.caps)-1]
	}
	return e, ok
}

func (ms *MatchState) endCapture(si, pp int) (int, bool) {
	idx := -1
	for i := len(ms.caps) - 1; i >= 0; i-- {
		if ms.caps[i].len == capUnfinished {
			idx = i
			break
		}
	}
	if idx < 0 {
		vmerr.Raise("invalid pattern capture")
	}
	ms.caps[idx].len = si - ms.caps[idx].start
	e, ok := ms.match(si, pp)
	if !ok {
		ms.caps[idx].len = capUnfinished
	}
	return e, ok
}

func (ms *MatchState) matchCapture(si, pp int) (int, bool) {
	idx := int(ms.pat[pp+1] - '1')
	if idx < 0 || idx >= len(ms.caps) || ms.caps[idx].len == capUnfinished {
		vmerr.Raise("invalid capture index")
	}
	cap := ms.src[ms.caps[idx].start : ms.caps[idx].start+ms.caps[idx].len]
	if strings.HasPrefix(ms.src[si:], cap) {
		return ms.match(si+len(cap), pp+2)
	}
	return 0, false
}

func (ms *MatchState) matchBalance(si, pp int) (int, bool) {
	if pp+1 >= len(ms.pat) {
		vmerr.Raise("missing arguments to '%b'")
	}
	if si >= len(ms.src) || ms.src[si] != ms.pat[pp] {
		return 0, false
	}
	b, e := ms.pat[pp], ms.pat[pp+1]
	depth := 1
	si++
	for si < len(ms.src) {
		if ms.src[si] == e {
			depth--
			if depth == 0 {
				return ms.match(si+1, pp+2)
			}
		} else if ms.src[si] == b {
			depth++
		}
		si++
	}
	return 0, false
}

package state

import (
	"strconv"
	"strings"

	"github.com/lua54vm/core/api"
)

// frameAt walks level frames up from the currently running one (level 0
// is the running function itself, matching lua_getstack), returning nil
// past the bottom of the stack.
func (ls *State) frameAt(level int) *stack {
	f := ls.stack
	for ; level > 0 && f != nil; level-- {
		f = f.prev
	}
	return f
}

// GetInfo fills ar with the field groups named in what ('n','S','l','t',
// 'u','f'), reading from the call frame at level, per spec §8's
// debug.getinfo surface.
func (ls *State) GetInfo(level int, what string, ar *api.DebugInfo) bool {
	f := ls.frameAt(level)
	if f == nil {
		return false
	}
	ls.fillInfo(f, f.closure, what, ar)
	return true
}

// GetInfoForFunc fills ar for a closure value directly, without an
// associated call frame (used by debug.getinfo(fn, ...)).
func (ls *State) GetInfoForFunc(fn any, what string, ar *api.DebugInfo) bool {
	c, ok := fn.(*Closure)
	if !ok {
		return false
	}
	ls.fillInfo(nil, c, what, ar)
	return true
}

func (ls *State) fillInfo(f *stack, c *Closure, what string, ar *api.DebugInfo) {
	if c == nil {
		return
	}
	for _, ch := range what {
		switch ch {
		case 'n':
			if f != nil {
				ar.Name = f.closure.name
				ar.NameWhat = f.closure.nameWhat
			}
		case 'S':
			if c.IsGo() {
				ar.What = "Go"
				ar.Source = "=[Go]"
				ar.ShortSrc = "[Go]"
			} else {
				ar.What = "Lua"
				if c.proto.LineDefined == 0 {
					ar.What = "main"
				}
				ar.Source = c.proto.Source
				ar.ShortSrc = shortSrc(c.proto.Source)
				ar.LineDefined = int(c.proto.LineDefined)
				ar.LastLineDefined = int(c.proto.LastLineDefined)
			}
		case 'l':
			ar.CurrentLine = -1
			if f != nil && !c.IsGo() {
				ar.CurrentLine = lineForPC(c, f.lastPC)
			}
		case 't':
			ar.IsTailCall = f != nil && f.isTailCall
		case 'u':
			ar.NUps = len(c.upvals)
			if !c.IsGo() {
				ar.NParams = int(c.proto.NumParams)
				ar.IsVararg = c.proto.IsVararg == 1
			}
		case 'r':
			if f != nil {
				ar.FTransfer = f.ftransfer
				ar.NTransfer = f.ntransfer
			}
		case 'f':
			ls.stack.push(c)
		}
	}
	ar.Func = c
}

func shortSrc(source string) string {
	const max = 60
	if strings.HasPrefix(source, "@") {
		s := source[1:]
		if len(s) > max {
			return "..." + s[len(s)-max+3:]
		}
		return s
	}
	if strings.HasPrefix(source, "=") {
		return source[1:]
	}
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		source = source[:i] + "..."
	}
	return "[string \"" + source + "\"]"
}

func lineForPC(c *Closure, pc int) int {
	lines := c.proto.LineInfo
	if pc < 0 || pc >= len(lines) {
		return -1
	}
	return int(lines[pc])
}

func localName(c *Closure, reg, pc int) string {
	for _, lv := range c.proto.LocVars {
		if int(lv.StartPC) <= pc && pc < int(lv.EndPC) {
			if reg == 0 {
				return lv.Name
			}
			reg--
		}
	}
	return ""
}

func (ls *State) GetLocal(level, n int) (string, bool) {
	f := ls.frameAt(level)
	if f == nil || f.closure == nil || f.closure.IsGo() {
		return "", false
	}
	if n < 1 || n > f.top {
		return "", false
	}
	ls.stack.push(f.slots[n-1])
	name := localName(f.closure, n-1, f.lastPC)
	if name == "" {
		name = "(*temporary)"
	}
	return name, true
}

func (ls *State) SetLocal(level, n int) (string, bool) {
	f := ls.frameAt(level)
	if f == nil || f.closure == nil || f.closure.IsGo() {
		return "", false
	}
	if n < 1 || n > f.top {
		return "", false
	}
	f.slots[n-1] = ls.stack.pop()
	name := localName(f.closure, n-1, f.lastPC)
	if name == "" {
		name = "(*temporary)"
	}
	return name, true
}

func (ls *State) GetUpvalue(fnIdx, n int) (string, bool) {
	c, ok := ls.stack.get(fnIdx).(*Closure)
	if !ok || n < 1 || n > len(c.upvals) {
		return "", false
	}
	ls.stack.push(c.upvals[n-1].Get())
	if c.IsGo() || n > len(c.proto.Upvalues) {
		return "", true
	}
	return c.proto.Upvalues[n-1].Name, true
}

func (ls *State) SetUpvalue(fnIdx, n int) (string, bool) {
	c, ok := ls.stack.get(fnIdx).(*Closure)
	if !ok || n < 1 || n > len(c.upvals) {
		return "", false
	}
	c.upvals[n-1].Set(ls.stack.pop())
	if c.IsGo() || n > len(c.proto.Upvalues) {
		return "", true
	}
	return c.proto.Upvalues[n-1].Name, true
}

func (ls *State) UpvalueId(fnIdx, n int) any {
	c, ok := ls.stack.get(fnIdx).(*Closure)
	if !ok || n < 1 || n > len(c.upvals) {
		return nil
	}
	return c.upvals[n-1]
}

// UpvalueJoin makes closure1's n1'th upvalue share closure2's n2'th
// upvalue cell, implementing debug.upvaluejoin.
func (ls *State) UpvalueJoin(fnIdx1, n1 int, fnIdx2, n2 int) {
	c1, ok1 := ls.stack.get(fnIdx1).(*Closure)
	c2, ok2 := ls.stack.get(fnIdx2).(*Closure)
	if !ok1 || !ok2 || n1 < 1 || n1 > len(c1.upvals) || n2 < 1 || n2 > len(c2.upvals) {
		return
	}
	c1.upvals[n1-1] = c2.upvals[n2-1]
}

func (ls *State) SetHook(hook api.Hook, mask api.HookMask, count int) {
	ls.hook = hook
	ls.hookMask = mask
	ls.hookCount = count
	ls.hookCountdown = count
}

func (ls *State) GetHook() (api.Hook, api.HookMask, int) {
	return ls.hook, ls.hookMask, ls.hookCount
}

// notifyHook fires the installed hook for event, reentrancy-guarded so
// a hook calling back into the VM doesn't recursively trigger itself.
func (ls *State) notifyHook(event api.HookEvent, line int) {
	if ls.hook == nil || ls.hookInProgress {
		return
	}
	switch event {
	case api.HookCall:
		if ls.hookMask&api.MaskCall == 0 {
			return
		}
	case api.HookReturn:
		if ls.hookMask&api.MaskReturn == 0 {
			return
		}
	case api.HookLine:
		if ls.hookMask&api.MaskLine == 0 {
			return
		}
	case api.HookCount:
		if ls.hookMask&api.MaskCount == 0 {
			return
		}
	}
	ls.hookInProgress = true
	ls.hook(ls, event, line)
	ls.hookInProgress = false
}

// tickHook is called once per executed instruction by the dispatch loop
// to drive line and count hooks.
func (ls *State) tickHook(line int) {
	if ls.hook == nil || ls.hookInProgress {
		return
	}
	if ls.hookMask&api.MaskCount != 0 {
		ls.hookCountdown--
		if ls.hookCountdown <= 0 {
			ls.hookCountdown = ls.hookCount
			ls.notifyHook(api.HookCount, line)
		}
	}
	if ls.hookMask&api.MaskLine != 0 && line != ls.stack.lastHookLine {
		ls.stack.lastHookLine = line
		ls.notifyHook(api.HookLine, line)
	}
}

func (ls *State) Traceback(msg string, level int) string {
	var b strings.Builder
	if msg != "" {
		b.WriteString(msg)
		b.WriteString("\n")
	}
	b.WriteString("stack traceback:")
	for f := ls.frameAt(level); f != nil; f = f.prev {
		b.WriteString("\n\t")
		if f.closure == nil {
			b.WriteString("[Go]: ?")
			continue
		}
		var ar api.DebugInfo
		ls.fillInfo(f, f.closure, "Sln", &ar)
		b.WriteString(ar.ShortSrc)
		b.WriteString(":")
		if ar.CurrentLine > 0 {
			b.WriteString(strconv.Itoa(ar.CurrentLine))
			b.WriteString(": ")
		} else {
			b.WriteString(" ")
		}
		if ar.Name != "" {
			b.WriteString("in function '" + ar.Name + "'")
		} else if ar.What == "main" {
			b.WriteString("in main chunk")
		} else {
			b.WriteString("in function <" + ar.ShortSrc + ":" + strconv.Itoa(ar.LineDefined) + ">")
		}
		if f.isTailCall {
			b.WriteString("\n\t(...tail calls...)")
		}
	}
	return b.String()
}

func (ls *State) StackDepth() int {
	return ls.stack.depth()
}

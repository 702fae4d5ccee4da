// Package vmerr carries the VM's typed execution-result model
// (spec §9 "Exceptions for control flow"): raised errors and coroutine
// yields are modeled as explicit values, not host panics, at every
// protected boundary (pcall/xpcall/resume/top-level Run). Internally,
// a single recover point per boundary is used to unwind the Go call
// stack back to that boundary; raise/protect are the two ends of that
// tunnel and nothing above the recover point ever observes a bare panic.
package vmerr

import "fmt"

// LuaError is a raised Lua error: a value (usually a string already
// prefixed with "source:line: ") plus, once unwound to a protected
// boundary, a traceback snapshot.
type LuaError struct {
	Value     any
	Traceback string
}

func (e *LuaError) Error() string {
	return fmt.Sprintf("%v", e.Value)
}

// Raise unwinds the Go call stack up to the nearest Protect call by
// panicking with a *LuaError. This is the only place in the runtime
// allowed to call panic() for a Lua-level error.
func Raise(value any) {
	panic(&LuaError{Value: value})
}

// Raisef raises a formatted string error, the common case.
func Raisef(format string, a ...any) {
	Raise(fmt.Sprintf(format, a...))
}

// Protect runs fn and converts a Raise-originated panic into a
// returned *LuaError. Any other panic (a genuine Go bug) is
// re-raised so it isn't silently swallowed.
func Protect(fn func()) (err *LuaError) {
	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(*LuaError); ok {
				err = le
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// Yield is the pause token propagated out of a dispatch loop when a
// coroutine suspends. It is never used outside package state's
// coroutine engine, which models yield with a goroutine handshake
// rather than stack unwinding — but the type lives here so the
// ExecutionResult shape described in spec §9 has one canonical home.
type Yield struct {
	Values []any
}

// ExecutionResult is the tri-state outcome of running a closure, named
// directly by spec §9: Values on normal completion, Error on a raised
// error reaching a protected boundary, Yielded when a coroutine body
// suspends before completing.
type ExecutionResult struct {
	Values  []any
	Err     *LuaError
	Yielded []any
}

// Package vmconfig holds the VM-context configuration object referenced
// by spec §9's "Global mutable state" design note: every knob that the
// teacher hard-coded as a package constant is a field here instead, so
// a host can run more than one isolated VM instance in the same process.
package vmconfig

// Config bundles the tunables a State is constructed with. Zero value
// is invalid; use DefaultConfig() or fill in every field explicitly.
type Config struct {
	// MinStack is the register-window headroom given to every new
	// call frame beyond the callee's declared MaxStackSize.
	MinStack int
	// MaxStack bounds how large the shared virtual stack may grow
	// before a "stack overflow" error is raised.
	MaxStack int
	// MaxRegisters is the ceiling on a called Lua function's declared
	// register window, proto.MaxStackSize ("too many registers (limit
	// is 256)").
	MaxRegisters int
	// MaxCallDepth bounds Lua-to-Lua call nesting (tail calls do not
	// count, since they reuse the frame).
	MaxCallDepth int
	// Environment is the host filesystem/process abstraction consumed
	// by the os/io standard libraries and by require/loadfile/dofile.
	Environment Environment
}

func DefaultConfig() Config {
	return Config{
		MinStack:     20,
		MaxStack:     1000000,
		MaxRegisters: 256,
		MaxCallDepth: 200,
		Environment:  OSEnvironment{},
	}
}

// Package logger provides the leveled, color-tagged diagnostic output
// used by cmd/lkvm and the REPL. It is
// never on the VM's error path: Lua-visible errors go through vmerr,
// not here.
package logger

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Enabled gates Debug/Info output; Warn/Error always print. cmd/lkvm
// flips this on with a -v flag.
var Enabled = false

var (
	infoTag  = color.New(color.FgCyan, color.Bold).Sprint("[INFO]")
	warnTag  = color.New(color.FgYellow, color.Bold).Sprint("[WARN]")
	errTag   = color.New(color.FgRed, color.Bold).Sprint("[ERROR]")
	debugTag = color.New(color.FgMagenta, color.Bold).Sprint("[DEBUG]")
)

func I(format string, a ...any) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stdout, infoTag+" "+format+"\n", a...)
}

func D(format string, a ...any) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stdout, debugTag+" "+format+"\n", a...)
}

func W(format string, a ...any) {
	fmt.Fprintf(os.Stderr, warnTag+" "+format+"\n", a...)
}

func E(format string, a ...any) {
	fmt.Fprintf(os.Stderr, errTag+" "+format+"\n", a...)
}

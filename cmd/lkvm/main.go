// Command lkvm runs precompiled Lua 5.4 binary chunk files, or drops into an interactive
// REPL when given none.
package main

import (
	"fmt"
	"os"

	"github.com/lua54vm/core/logger"
	"github.com/lua54vm/core/repl"
	"github.com/lua54vm/core/state"
	"github.com/lua54vm/core/vmconfig"
)

func main() {
	args := os.Args[1:]
	verbose := false
	files := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		files = append(files, a)
	}
	logger.Enabled = verbose

	if len(files) == 0 {
		repl.Repl()
		return
	}

	ls := state.New(vmconfig.DefaultConfig())
	ls.OpenLibs()
	for _, f := range files {
		if ls.DoFile(f) {
			fmt.Fprintln(os.Stderr, ls.ToString2(-1))
			os.Exit(1)
		}
	}
}

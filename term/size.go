// Package term holds small terminal utilities used by the REPL.
package term

import (
	"os"

	"golang.org/x/term"
)

// Size struct mirrors the terminal's current column/row count.
type Size struct {
	Width  int
	Height int
}

// GetSize reads the current terminal dimensions off stdout's fd via
// golang.org/x/term, replacing the teacher's own `stty size` subprocess
// shell-out.
func GetSize() (Size, error) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return Size{}, err
	}
	return Size{Width: w, Height: h}, nil
}

// Package repl implements the interactive console: a scrollback pane
// plus a single-line input, driven by tcell/tview the way the
// teacher's term/interact.go drove a raw keyboard-listener loop.
package repl

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/consts"
	"github.com/lua54vm/core/logger"
	"github.com/lua54vm/core/state"
	"github.com/lua54vm/core/term"
	"github.com/lua54vm/core/vmconfig"
)

var helpMsgs = []string{
	"esc: exit the REPL",
	"up/down: browse history",
	"help(): show this message",
}

// Repl starts the interactive console and blocks until the user exits.
func Repl() {
	ls := state.New(vmconfig.DefaultConfig())
	ls.OpenLibs()

	if sz, err := term.GetSize(); err == nil {
		logger.D("terminal size %dx%d", sz.Width, sz.Height)
	}

	app := tview.NewApplication()
	out := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() { app.Draw() })
	out.SetBorder(true).SetTitle(fmt.Sprintf(" lkvm %s ", consts.VERSION))

	fmt.Fprintf(out, "[cyan]enter help() for help[white]\n")

	ls.Register("help", func(ls api.State) int {
		fmt.Fprintln(out, strings.Join(helpMsgs, "\n"))
		return 0
	})

	history := []string{}
	histIdx := 0

	input := tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := input.GetText()
		if strings.TrimSpace(line) == "" {
			return
		}
		input.SetText("")
		history = append(history, line)
		histIdx = len(history)
		fmt.Fprintf(out, "[yellow]> %s[white]\n", tview.Escape(line))
		runLine(ls, out, line)
	})
	input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyUp:
			if histIdx > 0 {
				histIdx--
				input.SetText(history[histIdx])
			}
			return nil
		case tcell.KeyDown:
			if histIdx < len(history)-1 {
				histIdx++
				input.SetText(history[histIdx])
			} else {
				histIdx = len(history)
				input.SetText("")
			}
			return nil
		}
		return event
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(out, 0, 1, false).
		AddItem(input, 1, 0, true)

	if err := app.SetRoot(flex, true).SetFocus(input).Run(); err != nil {
		panic(err)
	}
}

// runLine loads (as a binary chunk) and runs one REPL line, printing its result or
// error into out. A recover guards against a raw Go panic escaping a
// malformed chunk, matching the teacher's own catch-all REPL boundary.
func runLine(ls api.State, out *tview.TextView, line string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "[red]%v[white]\n", r)
		}
	}()

	if ls.LoadString(line, "=stdin") != api.StatusOK {
		fmt.Fprintf(out, "[red]%s[white]\n", ls.ToString2(-1))
		ls.Pop(1)
		return
	}
	if ls.PCall(0, api.MultiRet, 0) != api.StatusOK {
		fmt.Fprintf(out, "[red]%s[white]\n", ls.ToString2(-1))
		ls.Pop(1)
		return
	}
	n := ls.GetTop()
	for i := 1; i <= n; i++ {
		fmt.Fprintf(out, "[green]%s[white]\n", tview.Escape(ls.ToString2(i)))
	}
	ls.Pop(n)
}

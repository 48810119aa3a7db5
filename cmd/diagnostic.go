// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"

	"github.com/luthersystems/daniel/diagnostic"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/repl"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderLispError renders a lisp error with diagnostic formatting to stderr.
// Notes are appended after the call stack.
func renderLispError(lerr *lisp.LVal, notes ...string) {
	d := repl.ErrorDiagnostic(lerr)
	d.Notes = append(d.Notes, notes...)
	r := newRenderer()
	_ = r.Render(os.Stderr, d)
}

// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/daniel/diagnostic"
	"github.com/luthersystems/daniel/lisp"
)

// renderError renders a lisp error using the diagnostic renderer for
// Rust-style annotated output. For REPL errors, source snippets may not
// be available (input comes from stdin, not files), but the renderer
// degrades gracefully to show just the location and error message.
func renderError(w io.Writer, lerr *lisp.LVal) {
	d := ErrorDiagnostic(lerr)
	d.Help = append(d.Help, "use (import Help) (Help.help value) to print documentation")
	r := &diagnostic.Renderer{Color: diagnostic.ColorAuto}
	_ = r.Render(w, d)
}

// ErrorDiagnostic converts an LError value to a Diagnostic for display.
func ErrorDiagnostic(lerr *lisp.LVal) diagnostic.Diagnostic {
	ev := (*lisp.ErrorVal)(lerr)
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  ev.ErrorMessage(),
	}

	fname := ev.FunName()
	if fname != "" {
		d.Message = fname + ": " + d.Message
	}
	if lerr.Str != "" && lerr.Str != lisp.CondError {
		d.Code = lerr.Str
	}

	if lerr.Source != nil && lerr.Source.Pos >= 0 {
		span := diagnostic.Span{
			File: lerr.Source.File,
			Line: lerr.Source.Line,
			Col:  lerr.Source.Col,
		}
		if lerr.Source.Path != "" {
			span.File = lerr.Source.Path
		}
		d.Spans = append(d.Spans, span)
	}

	stack := lerr.CallStack()
	if stack != nil {
		for i := len(stack.Frames) - 1; i >= 0; i-- {
			frame := &stack.Frames[i]
			name := frame.FunName()
			if name == "" {
				continue
			}
			loc := "unknown"
			if frame.Source != nil && frame.Source.Pos >= 0 {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, "in "+name+" at "+loc)
		}
	}

	return d
}

// Copyright © 2024 The ELPS authors

// Package diagnostic renders annotated source snippets for errors raised by
// daniel programs and for findings of the linter.  It does not import the
// lisp package so that any command can use it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span is a region of a source file underlined in a rendered diagnostic.
// Line and column numbers are 1-based.  An EndCol of zero underlines the
// whole token that starts at Col.
type Span struct {
	File   string
	Line   int
	Col    int
	EndCol int
	Label  string
}

// Diagnostic is a single error, warning or note.  Code is the condition of a
// runtime error (e.g. "unbound-symbol") or the name of the lint check that
// produced the diagnostic and is shown next to the severity.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Spans    []Span
	Notes    []string
	Help     []string
}

// Header returns the first line of the rendered diagnostic without color.
func (d Diagnostic) Header() string {
	if d.Code == "" {
		return d.Severity.String() + ": " + d.Message
	}
	return d.Severity.String() + "[" + d.Code + "]: " + d.Message
}

// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for daniel source files.
//
// Each check is an independent Analyzer that receives the forms read from a
// file and reports diagnostics.  The Linter reads the file, runs its
// analyzers and collects the results.  Embedders may define their own
// analyzers alongside the built-in set.
package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/luthersystems/daniel/diagnostic"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/rdparser"
	"github.com/luthersystems/daniel/parser/token"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.  An unset severity
// is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "if-arity").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	Analyzer *Analyzer
	Filename string

	// Exprs are the top-level forms read from the file.
	Exprs []*lisp.LVal

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     positionOf(source),
		Message: fmt.Sprintf(format, args...),
	})
}

func positionOf(source *token.Location) Position {
	if source == nil {
		return Position{}
	}
	return Position{File: source.File, Line: source.Line, Col: source.Col}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Pos      Position `json:"pos"`
	Message  string   `json:"message"`
	Analyzer string   `json:"analyzer"`
	Severity Severity `json:"severity"`
	Notes    []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style, file:line: message
// (analyzer), with any notes on the lines after it.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Rendered converts d into a diagnostic that can be drawn with a source
// snippet by a diagnostic.Renderer.
func (d Diagnostic) Rendered() diagnostic.Diagnostic {
	sev := diagnostic.SeverityWarning
	switch d.Severity {
	case SeverityError:
		sev = diagnostic.SeverityError
	case SeverityInfo:
		sev = diagnostic.SeverityNote
	}
	out := diagnostic.Diagnostic{
		Severity: sev,
		Code:     d.Analyzer,
		Message:  d.Message,
		Notes:    d.Notes,
	}
	if d.Pos.Line > 0 {
		out.Spans = []diagnostic.Span{{File: d.Pos.File, Line: d.Pos.Line, Col: d.Pos.Col}}
	}
	return out
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer
}

// LintFile reads source and returns the diagnostics of every analyzer sorted
// by position.  A source file which cannot be read is returned as an error.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	exprs, err := rdparser.NewReader().Read(filename, bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return l.LintExprs(exprs, filename)
}

// LintExprs runs the linter's analyzers over forms which have already been
// read.
func (l *Linter) LintExprs(exprs []*lisp.LVal, filename string) ([]Diagnostic, error) {
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			Filename: filename,
			Exprs:    exprs,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})
	return all, nil
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerIfArity,
		AnalyzerDefineStructure,
		AnalyzerLetBindings,
		AnalyzerCondStructure,
		AnalyzerTryStructure,
		AnalyzerImportOptions,
		AnalyzerProvidePlacement,
		AnalyzerSetUnbound,
		AnalyzerBuiltinArity,
	}
}

// Select returns the default analyzers named in names, in their default
// order.  An empty names selects every default analyzer.  An unknown name is
// an error.
func Select(names []string) ([]*Analyzer, error) {
	if len(names) == 0 {
		return DefaultAnalyzers(), nil
	}
	selected := make(map[string]bool, len(names))
	for _, name := range names {
		selected[name] = true
	}
	var out []*Analyzer
	for _, a := range DefaultAnalyzers() {
		if selected[a.Name] {
			out = append(out, a)
			delete(selected, a.Name)
		}
	}
	for name := range selected {
		return nil, fmt.Errorf("unknown check: %s", name)
	}
	return out, nil
}

// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const tabWidth = 4

// Renderer draws diagnostics as annotated source snippets:
//
//	error[unbound-symbol]: unbound symbol: fib
//	  --> fib.dan:3:4
//	   |
//	 3 |  (fib (- n 1))
//	   |   ^^^ called here
//	   = note: in user:main at fib.dan:7:1
//
// A Renderer caches the lines of every file it reads and is not safe for
// concurrent use.
type Renderer struct {
	Color ColorMode

	// SourceReader reads the contents of a file named by a Span.  If nil the
	// file is read from disk.
	SourceReader func(string) ([]byte, error)

	lines map[string][]string
}

// Render writes d to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	var b strings.Builder
	r.format(&b, d, choosePalette(r.Color, fileFromWriter(w)))
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderAll writes every diagnostic in diags to w with a blank line between
// each one.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteString("\n")
		}
		r.format(&b, d, p)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) format(b *strings.Builder, d Diagnostic, p palette) {
	sevColor := p.boldRed
	switch d.Severity {
	case SeverityWarning:
		sevColor = p.yellow
	case SeverityNote:
		sevColor = p.boldCyan
	}
	b.WriteString(sevColor + p.bold + d.Severity.String())
	if d.Code != "" {
		b.WriteString("[" + d.Code + "]")
	}
	b.WriteString(p.reset + ": " + p.bold + d.Message + p.reset + "\n")

	// Every snippet of a diagnostic shares one gutter width so that the
	// bars line up.
	pad := strings.Repeat(" ", gutterWidth(d.Spans))
	file := ""
	for _, span := range d.Spans {
		if span.File != file {
			b.WriteString(" " + pad + p.boldBlue + "--> " + p.reset + location(span) + "\n")
			file = span.File
		}
		r.formatSpan(b, span, pad, p)
	}
	for _, note := range d.Notes {
		b.WriteString(" " + pad + " " + p.boldCyan + "= note:" + p.reset + " " + note + "\n")
	}
	for _, help := range d.Help {
		b.WriteString(" " + pad + " " + p.boldCyan + "= help:" + p.reset + " " + help + "\n")
	}
}

func (r *Renderer) formatSpan(b *strings.Builder, span Span, pad string, p palette) {
	gutter := func(label string) {
		b.WriteString(" " + p.boldBlue + label + strings.Repeat(" ", len(pad)-len(label)) + " |" + p.reset)
	}
	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		gutter("")
		b.WriteString("\n")
		return
	}
	col := span.Col
	if col <= 0 {
		col = 1
	}
	end := span.EndCol
	if end <= 0 {
		end = tokenEnd(source, col)
	}
	if end < col {
		end = col
	}

	gutter("")
	b.WriteString("\n")
	gutter(strconv.Itoa(span.Line))
	b.WriteString("  " + expandTabs(source) + "\n")
	gutter("")
	b.WriteString("  " + strings.Repeat(" ", displayCol(source, col)))
	b.WriteString(p.boldRed + strings.Repeat("^", end-col+1) + p.reset)
	if span.Label != "" {
		b.WriteString(" " + p.boldRed + span.Label + p.reset)
	}
	b.WriteString("\n")
}

func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" || strings.HasPrefix(file, "<") {
		return "", false
	}
	lines, ok := r.lines[file]
	if !ok {
		read := r.SourceReader
		if read == nil {
			read = os.ReadFile
		}
		data, err := read(file)
		if err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		if r.lines == nil {
			r.lines = make(map[string][]string)
		}
		r.lines[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func location(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return span.File + ":" + strconv.Itoa(span.Line)
	}
	return span.File + ":" + strconv.Itoa(span.Line) + ":" + strconv.Itoa(span.Col)
}

func gutterWidth(spans []Span) int {
	w := 1
	for _, span := range spans {
		if n := len(strconv.Itoa(span.Line)); n > w {
			w = n
		}
	}
	return w
}

// tokenEnd returns the 1-based column of the last byte of the token starting
// at col.  A string literal runs to its closing quote and any other token
// runs to the next delimiter.
func tokenEnd(source string, col int) int {
	if col > len(source) {
		return col
	}
	i := col - 1
	if source[i] == '"' {
		for j := i + 1; j < len(source); j++ {
			switch source[j] {
			case '\\':
				j++
			case '"':
				return j + 1
			}
		}
		return len(source)
	}
	for i < len(source) {
		c, size := utf8.DecodeRuneInString(source[i:])
		if unicode.IsSpace(c) || strings.ContainsRune(`()[]{}";`, c) {
			break
		}
		i += size
	}
	if i == col-1 {
		return col
	}
	return i
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayCol returns the number of display cells preceding column col of
// source.
func displayCol(source string, col int) int {
	if col-1 > len(source) {
		return col - 1
	}
	w := 0
	for _, c := range source[:col-1] {
		if c == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

func fileFromWriter(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

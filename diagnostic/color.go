// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// palette holds the ANSI escape sequences for diagnostic output.
type palette struct {
	bold     string
	red      string
	yellow   string
	blue     string
	cyan     string
	boldRed  string
	boldBlue string
	boldCyan string
	reset    string
}

func sgr(codes ...string) string {
	return termenv.CSI + strings.Join(codes, ";") + "m"
}

var ansiPalette = palette{
	bold:     sgr(termenv.BoldSeq),
	red:      sgr(termenv.ANSIRed.Sequence(false)),
	yellow:   sgr(termenv.ANSIYellow.Sequence(false)),
	blue:     sgr(termenv.ANSIBlue.Sequence(false)),
	cyan:     sgr(termenv.ANSICyan.Sequence(false)),
	boldRed:  sgr(termenv.BoldSeq, termenv.ANSIRed.Sequence(false)),
	boldBlue: sgr(termenv.BoldSeq, termenv.ANSIBlue.Sequence(false)),
	boldCyan: sgr(termenv.BoldSeq, termenv.ANSICyan.Sequence(false)),
	reset:    sgr(termenv.ResetSeq),
}

var noPalette = palette{}

// choosePalette selects the appropriate color palette based on the mode
// and the output file descriptor.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return noPalette
	default: // ColorAuto
		if termenv.EnvNoColor() {
			return noPalette
		}
		if !IsTerminal(w) {
			return noPalette
		}
		return ansiPalette
	}
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

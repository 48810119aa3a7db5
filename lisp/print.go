// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// PrintOptions control the rendering of values by Print.
type PrintOptions struct {
	// QuoteStrings renders strings as double quoted literals.
	QuoteStrings bool
	// Colorize renders symbols, keywords, strings and numbers with ANSI
	// colors.
	Colorize bool
}

var printProfile = termenv.ANSI

// Print renders v as text.
func Print(v *LVal, opts PrintOptions) string {
	var b strings.Builder
	printTo(&b, v, opts)
	return b.String()
}

func printTo(b *strings.Builder, v *LVal, opts PrintOptions) {
	switch v.Type {
	case LNumber:
		b.WriteString(opts.color(FormatNumber(v.Num), termenv.ANSIYellow))
	case LString:
		if opts.QuoteStrings {
			b.WriteString(opts.color(QuoteString(v.Str), termenv.ANSIGreen))
		} else {
			b.WriteString(v.Str)
		}
	case LBool:
		b.WriteString(v.Str)
	case LNil:
		b.WriteString("nil")
	case LSymbol:
		b.WriteString(opts.color(v.Str, termenv.ANSIBlue))
	case LKeyword:
		b.WriteString(opts.color(v.Str, termenv.ANSIMagenta))
	case LCons:
		b.WriteString("(")
		printTo(b, v.Cells[0], opts)
		b.WriteString(" . ")
		printTo(b, v.Cells[1], opts)
		b.WriteString(")")
	case LList:
		b.WriteString("(")
		v.List().Each(func(i int, x *LVal) bool {
			if i > 0 {
				b.WriteString(" ")
			}
			printTo(b, x, opts)
			return true
		})
		b.WriteString(")")
	case LMap:
		if v.Literal {
			printPairs(b, v.Cells, opts)
			return
		}
		printPairs(b, v.Map().Entries(), opts)
	case LFun:
		fmt.Fprintf(b, "Function %s", v.FunData().DisplayName())
	case LClass:
		fmt.Fprintf(b, "Class %s", v.Class().Name)
	case LObject:
		od := v.Object()
		b.WriteString(od.Class.Class().Name)
		b.WriteString(" ")
		printPairs(b, od.Fields.Entries(), opts)
	case LSuper:
		fmt.Fprintf(b, "Super %s", v.Super().Class.Class().Name)
	case LModule:
		fmt.Fprintf(b, "Module %s", v.Module().Name)
	case LPromise:
		fmt.Fprintf(b, "Promise %s", v.Promise().State())
	case LError:
		fmt.Fprintf(b, "%s: %s", v.Str, (*ErrorVal)(v).ErrorMessage())
	case LRange:
		r := v.Range()
		fmt.Fprintf(b, "(range %s %s %s)", FormatNumber(r.Start), FormatNumber(r.End), FormatNumber(r.Step))
	case LNative:
		fmt.Fprintf(b, "Native %T", v.Native)
	default:
		fmt.Fprintf(b, "<%s>", v.Type)
	}
}

// printPairs prints alternating keys and values, or (key . value) pairs, as
// a map.
func printPairs(b *strings.Builder, cells []*LVal, opts PrintOptions) {
	b.WriteString("{")
	first := true
	item := func(k, v *LVal) {
		if !first {
			b.WriteString(" ")
		}
		first = false
		printTo(b, k, opts)
		b.WriteString(" => ")
		printTo(b, v, opts)
	}
	if len(cells) > 0 && cells[0].Type == LCons {
		for _, p := range cells {
			item(p.Cells[0], p.Cells[1])
		}
	} else {
		for i := 0; i+1 < len(cells); i += 2 {
			item(cells[i], cells[i+1])
		}
	}
	b.WriteString("}")
}

func (opts PrintOptions) color(s string, c termenv.ANSIColor) string {
	if !opts.Colorize {
		return s
	}
	return printProfile.String(s).Foreground(c).String()
}

// FormatNumber renders x the way it is written in source.  Integral values
// have no fractional part.
func FormatNumber(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == math.Trunc(x) && math.Abs(x) < 1e21:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// QuoteString returns s as a double quoted string literal using only the
// escapes understood by the lexer.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case 0:
			b.WriteString(`\0`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, c)
			} else {
				b.WriteRune(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Copyright © 2018 The ELPS authors

package lexer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/daniel/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	symbolStartRunes = "=<>%:|?\\/*._$!+-"
	symbolRunes      = "0123456789&^#'" + symbolStartRunes
)

// Lexer turns daniel source text into tokens.  Whitespace, commas and
// comments separate tokens and are never emitted.
type Lexer struct {
	scanner           *token.Scanner
	lex               LexFn
	precedingNewlines int
	precedingSpaces   int
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// Tokenize scans the entirety of text.  The final token in a successful
// result is always an EOF token.  A lexical error is returned as a
// *token.LocationError along with the tokens scanned before it.
func Tokenize(name string, text string) ([]*token.Token, error) {
	lex := New(token.NewScanner(name, strings.NewReader(text)))
	var tokens []*token.Token
	for {
		for _, tok := range lex.ReadToken() {
			switch tok.Type {
			case token.ERROR, token.INVALID:
				return tokens, &token.LocationError{
					Err:    errors.New(tok.Text),
					Source: tok.Source,
				}
			case token.EOF:
				return append(tokens, tok), nil
			}
			tokens = append(tokens, tok)
		}
	}
}

func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		err := lex.scanner.Err()
		if err == nil {
			err = fmt.Errorf("invalid utf-8 sequence in source text")
		}
		return lex.emitError(err)
	}
	switch c := lex.scanner.Rune(); c {
	case '(':
		return lex.charToken(token.PAREN_L)
	case ')':
		return lex.charToken(token.PAREN_R)
	case '[':
		return lex.charToken(token.BRACKET_L)
	case ']':
		return lex.charToken(token.BRACKET_R)
	case '{':
		return lex.charToken(token.BRACE_L)
	case '}':
		return lex.charToken(token.BRACE_R)
	case '\'':
		return lex.charToken(token.QUOTE)
	case '`':
		return lex.charToken(token.QUASIQUOTE)
	case '&':
		return lex.charToken(token.AMPERSAND)
	case '~':
		if lex.scanner.AcceptRune('@') {
			return lex.charToken(token.SPLICE_UNQUOTE)
		}
		return lex.charToken(token.UNQUOTE)
	case '"':
		return lex.readString()
	case '-':
		if isDigit(lex.peekRune()) {
			return lex.readNumber()
		}
		return lex.readSymbol()
	default:
		if isDigit(c) {
			return lex.readNumber()
		}
		if isSymbolStart(c) {
			return lex.readSymbol()
		}
		return lex.errorf("unexpected character %q at %v", c, lex.scanner.LocStart())
	}
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:              typ,
		Text:              text,
		Source:            lex.scanner.LocStart(),
		PrecedingNewlines: lex.precedingNewlines,
		PrecedingSpaces:   lex.precedingSpaces,
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	tok := lex.scanner.EmitToken(typ)
	tok.PrecedingNewlines = lex.precedingNewlines
	tok.PrecedingSpaces = lex.precedingSpaces
	return []*token.Token{tok}
}

func (lex *Lexer) emitError(err error) []*token.Token {
	if err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) charToken(typ token.Type) []*token.Token {
	return lex.emitText(typ)
}

func (lex *Lexer) readSymbol() []*token.Token {
	lex.scanner.AcceptSeq(isSymbolRune)
	switch text := lex.scanner.Text(); {
	case text == "true" || text == "false":
		return lex.emitText(token.BOOL)
	case text == "nil":
		return lex.emitText(token.NIL)
	case len(text) > 1 && text[0] == ':':
		return lex.emitText(token.KEYWORD)
	default:
		return lex.emitText(token.SYMBOL)
	}
}

func (lex *Lexer) readNumber() []*token.Token {
	if lex.scanner.Rune() == '-' {
		lex.scanner.AcceptDigit()
	}
	if lex.scanner.Rune() == '0' {
		switch {
		case lex.scanner.AcceptAny("xX"):
			return lex.readBaseLiteral(16, "hexadecimal")
		case lex.scanner.AcceptAny("oO"):
			return lex.readBaseLiteral(8, "octal")
		case lex.scanner.AcceptAny("bB"):
			return lex.readBaseLiteral(2, "binary")
		}
	}
	lex.scanner.AcceptSeqDigit()
	if lex.scanner.AcceptRune('.') {
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("invalid number literal %s: fraction requires digits", lex.scanner.Text())
		}
	}
	if lex.scanner.AcceptAny("eE") {
		if !lex.scanner.AcceptAny("+-") {
			return lex.errorf("invalid number literal %s: exponent requires a sign", lex.scanner.Text())
		}
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("invalid number literal %s: exponent requires digits", lex.scanner.Text())
		}
	}
	if isSymbolRune(lex.peekRune()) {
		return lex.errorf("malformed number literal %s%c", lex.scanner.Text(), lex.peekRune())
	}
	return lex.emitText(token.NUMBER)
}

func (lex *Lexer) readBaseLiteral(base int, name string) []*token.Token {
	n := lex.scanner.AcceptSeqBase(base)
	if n == 0 || isSymbolRune(lex.peekRune()) {
		return lex.errorf("invalid %s literal character: %q", name, lex.peekRune())
	}
	return lex.emitText(token.NUMBER)
}

func (lex *Lexer) readString() []*token.Token {
	for {
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '"' && c != '\\' })
		if lex.scanner.AcceptRune('"') {
			break
		}
		if lex.scanner.AcceptRune('\\') {
			// The escaped character is validated once the literal is complete.
			if lex.scanner.Accept(func(c rune) bool { return true }) {
				continue
			}
		}
		if err := lex.scanner.Err(); err != nil {
			return lex.errorf("scan failure: %v", err)
		}
		return lex.errorf("unterminated string literal")
	}
	if _, err := Unquote(lex.scanner.Text()); err != nil {
		return lex.emitError(err)
	}
	return lex.emitText(token.STRING)
}

func (lex *Lexer) skipWhitespace() {
	for {
		n := lex.scanner.AcceptSeq(isSeparator)
		if lex.scanner.AcceptRune(';') {
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
			continue
		}
		if n == 0 {
			break
		}
	}
	text := lex.scanner.Text()
	lex.precedingNewlines = strings.Count(text, "\n")
	lex.precedingSpaces = len(text) - lex.precedingNewlines
	lex.scanner.Ignore()
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

// Unquote interprets text, a double quoted string literal as scanned by
// Lexer, and returns the string value it represents.
func Unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("invalid string literal: %s", text)
	}
	text = text[1 : len(text)-1]
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}
	var buf strings.Builder
	for len(text) > 0 {
		c, n := utf8.DecodeRuneInString(text)
		text = text[n:]
		if c != '\\' {
			buf.WriteRune(c)
			continue
		}
		if len(text) == 0 {
			return "", fmt.Errorf("unterminated escape sequence")
		}
		esc := text[0]
		text = text[1:]
		switch esc {
		case 'n':
			buf.WriteByte('\n')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'v':
			buf.WriteByte('\v')
		case '0':
			buf.WriteByte(0)
		case '\'', '"', '\\':
			buf.WriteByte(esc)
		case 'u', 'U':
			width := 4
			if esc == 'U' {
				width = 8
			}
			if len(text) < width {
				return "", fmt.Errorf("invalid unicode escape \\%c%s", esc, text)
			}
			code, err := strconv.ParseUint(text[:width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape \\%c%s", esc, text[:width])
			}
			r := rune(code)
			if !utf8.ValidRune(r) {
				return "", fmt.Errorf("invalid code point \\%c%s", esc, text[:width])
			}
			buf.WriteRune(r)
			text = text[width:]
		default:
			c, _ := utf8.DecodeRuneInString(string(esc) + text)
			return "", fmt.Errorf("invalid escape sequence \\%c", c)
		}
	}
	return buf.String(), nil
}

func isSeparator(c rune) bool {
	return c == ',' || unicode.IsSpace(c)
}

func isSymbolStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(symbolStartRunes, c)
}

func isSymbolRune(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(symbolRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

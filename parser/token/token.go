// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

// Token is a lexeme of daniel source text.  PrecedingSpaces and
// PrecedingNewlines count the whitespace separating the token from the one
// before it, which the reader uses to recognize postfix member access.
type Token struct {
	Type              Type
	Text              string
	Source            *Location
	PrecedingSpaces   int
	PrecedingNewlines int
}

// Adjacent returns true if no whitespace separates tok from the previous
// token in the stream.
func (tok *Token) Adjacent() bool {
	return tok.PrecedingSpaces == 0 && tok.PrecedingNewlines == 0
}

func (tok *Token) String() string {
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used for the daniel lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Atomic expressions & literals
	NUMBER
	STRING
	BOOL
	NIL
	SYMBOL
	KEYWORD

	// Reader macros
	QUOTE
	QUASIQUOTE
	UNQUOTE
	SPLICE_UNQUOTE
	AMPERSAND

	// Delimiters
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R
	BRACE_L
	BRACE_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:        "invalid",
		ERROR:          "error",
		EOF:            "EOF",
		NUMBER:         "number",
		STRING:         "string",
		BOOL:           "boolean",
		NIL:            "nil",
		SYMBOL:         "symbol",
		KEYWORD:        "keyword",
		QUOTE:          "'",
		QUASIQUOTE:     "`",
		UNQUOTE:        "~",
		SPLICE_UNQUOTE: "~@",
		AMPERSAND:      "&",
		PAREN_L:        "(",
		PAREN_R:        ")",
		BRACKET_L:      "[",
		BRACKET_R:      "]",
		BRACE_L:        "{",
		BRACE_R:        "}",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsCloser returns true if typ terminates a bracketed form.
func (typ Type) IsCloser() bool {
	return typ == PAREN_R || typ == BRACKET_R || typ == BRACE_R
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}

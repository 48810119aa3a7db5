// Copyright © 2018 The ELPS authors

package rdparser

import (
	"io"
	"strconv"
	"strings"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/lexer"
	"github.com/luthersystems/daniel/parser/token"
)

type reader struct {
}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	return p.ParseProgram()
}

// ReadLocation implements lisp.LocationReader.
func (*reader) ReadLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	s.SetPath(loc)
	p := New(s)
	return p.ParseProgram()
}

// ReadProgram reads all expressions in r and returns them wrapped in a single
// (do ...) form.
func ReadProgram(name string, r io.Reader) (*lisp.LVal, error) {
	exprs, err := New(token.NewScanner(name, r)).ParseProgram()
	if err != nil {
		return nil, err
	}
	return lisp.Program(exprs), nil
}

// Parser is a lisp parser.
type Parser struct {
	parsing bool
	src     *TokenSource
	// ready reports whether a token can be peeked without blocking.  When
	// nil, peeking never blocks.
	ready func() bool
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// Parse is a generic entry point that is similar to ParseExpression but is
// capable of handling EOF before reading an expression.
func (p *Parser) Parse() (*lisp.LVal, error) {
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	expr := p.ParseExpression()
	if expr.Type == lisp.LError {
		return nil, lisp.GoError(expr)
	}
	return expr, nil
}

// ParseProgram parses a series of expressions until the token stream is
// exhausted.
func (p *Parser) ParseProgram() ([]*lisp.LVal, error) {
	var exprs []*lisp.LVal
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// ParseExpression parses a single expression, including any member access
// suffixes which follow it.  Unlike Parse, ParseExpression requires an
// expression to be present in the input stream and will report unexpected
// EOF tokens encountered.
func (p *Parser) ParseExpression() *lisp.LVal {
	fn := p.parseExpression()

	// We have a token marking the beginning of an expression.  Flag that we
	// are currently in the middle of an expression while we finish parsing the
	// expression so that an Interactive parser can determine what state we are
	// in (and thus imply what the REPL prompt should be).
	if !p.parsing {
		p.parsing = true
		defer func() { p.parsing = false }()
	}

	expr := fn(p)
	if expr.Type == lisp.LError {
		return expr
	}
	return p.parseMemberAccess(expr)
}

func (p *Parser) parseExpression() func(p *Parser) *lisp.LVal {
	switch p.PeekType() {
	case token.NUMBER:
		return (*Parser).ParseLiteralNumber
	case token.STRING:
		return (*Parser).ParseLiteralString
	case token.BOOL:
		return (*Parser).ParseLiteralBool
	case token.NIL:
		return (*Parser).ParseLiteralNil
	case token.KEYWORD:
		return (*Parser).ParseKeyword
	case token.SYMBOL:
		return (*Parser).ParseSymbol
	case token.AMPERSAND:
		return (*Parser).ParseVarArgMarker
	case token.QUOTE, token.QUASIQUOTE, token.UNQUOTE, token.SPLICE_UNQUOTE:
		return (*Parser).ParseReaderMacro
	case token.PAREN_L:
		return (*Parser).ParseConsExpression
	case token.BRACKET_L:
		return (*Parser).ParseList
	case token.BRACE_L:
		return (*Parser).ParseMap
	case token.EOF:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf(lisp.CondUnmatchedSyntax, "unexpected end of input")
		}
	case token.ERROR, token.INVALID:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf(lisp.CondLexicalError, "%s", p.TokenText())
		}
	default:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf(lisp.CondParseError, "unexpected token: %v", p.TokenText())
		}
	}
}

// parseMemberAccess consumes `.name` symbols written immediately after expr
// and nests expr inside the corresponding prop forms.  Each suffix binds to
// everything parsed so far so (f).a.b reads as (prop 'b (prop 'a (f))).
func (p *Parser) parseMemberAccess(expr *lisp.LVal) *lisp.LVal {
	for {
		if p.ready != nil && !p.ready() {
			return expr
		}
		next := p.src.Peek()
		if next.Type != token.SYMBOL || !next.Adjacent() || !isMemberSuffix(next.Text) {
			return expr
		}
		p.ReadToken()
		names := strings.Split(next.Text[1:], ".")
		for _, name := range names {
			if name == "" {
				return p.errorf(lisp.CondParseError, "invalid member access: %s", next.Text)
			}
			expr = p.memberAccess(expr, name)
		}
	}
}

func (p *Parser) memberAccess(expr *lisp.LVal, name string) *lisp.LVal {
	prop := p.Symbol("prop")
	return p.List(prop, p.Quote(p.Symbol(name)), expr)
}

func (p *Parser) ParseLiteralNumber() *lisp.LVal {
	if !p.Accept(token.NUMBER) {
		return p.errorf(lisp.CondParseError, "invalid number literal: %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := parseNumber(text)
	if err != nil {
		return p.errorf(lisp.CondLexicalError, "invalid number literal %s: %v", text, err)
	}
	return p.Number(x)
}

func parseNumber(text string) (float64, error) {
	neg := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	base := 0
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
	}
	if base == 0 {
		return strconv.ParseFloat(text, 64)
	}
	x, err := strconv.ParseInt(digits[2:], base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		x = -x
	}
	return float64(x), nil
}

func (p *Parser) ParseLiteralString() *lisp.LVal {
	if !p.Accept(token.STRING) {
		return p.errorf(lisp.CondParseError, "invalid string literal: %v", p.PeekType())
	}
	s, err := lexer.Unquote(p.TokenText())
	if err != nil {
		return p.errorf(lisp.CondLexicalError, "%v", err)
	}
	return p.String(s)
}

func (p *Parser) ParseLiteralBool() *lisp.LVal {
	if !p.Accept(token.BOOL) {
		return p.errorf(lisp.CondParseError, "invalid boolean literal: %v", p.PeekType())
	}
	return p.tokenLVal(lisp.Bool(p.TokenText() == "true"))
}

func (p *Parser) ParseLiteralNil() *lisp.LVal {
	if !p.Accept(token.NIL) {
		return p.errorf(lisp.CondParseError, "invalid nil literal: %v", p.PeekType())
	}
	return p.tokenLVal(lisp.Nil())
}

func (p *Parser) ParseKeyword() *lisp.LVal {
	if !p.Accept(token.KEYWORD) {
		return p.errorf(lisp.CondParseError, "invalid keyword: %v", p.PeekType())
	}
	return p.tokenLVal(lisp.Keyword(p.TokenText()))
}

func (p *Parser) ParseVarArgMarker() *lisp.LVal {
	if !p.Accept(token.AMPERSAND) {
		return p.errorf(lisp.CondParseError, "invalid variadic marker: %v", p.PeekType())
	}
	return p.Symbol(lisp.VarArgSymbol)
}

// ParseSymbol reads a symbol.  A symbol with interior dots, this.x.y, is
// read as nested member access on its first segment.
func (p *Parser) ParseSymbol() *lisp.LVal {
	if !p.Accept(token.SYMBOL) {
		return p.errorf(lisp.CondParseError, "invalid symbol: %v", p.PeekType())
	}
	text := p.TokenText()
	if !isDotted(text) {
		return p.Symbol(text)
	}
	pieces := strings.Split(text, ".")
	for _, piece := range pieces {
		if piece == "" {
			return p.errorf(lisp.CondParseError, "invalid member access: %s", text)
		}
	}
	expr := p.Symbol(pieces[0])
	for _, name := range pieces[1:] {
		expr = p.memberAccess(expr, name)
	}
	return expr
}

var readerMacros = map[token.Type]string{
	token.QUOTE:          lisp.QuoteSymbol,
	token.QUASIQUOTE:     lisp.QuasiquoteSymbol,
	token.UNQUOTE:        lisp.UnquoteSymbol,
	token.SPLICE_UNQUOTE: lisp.SpliceUnquoteSymbol,
}

// ParseReaderMacro reads a quote-like prefix and wraps the expression which
// follows it.
func (p *Parser) ParseReaderMacro() *lisp.LVal {
	typ := p.PeekType()
	op, ok := readerMacros[typ]
	if !ok || !p.Accept(typ) {
		return p.errorf(lisp.CondParseError, "invalid reader macro: %v", typ)
	}
	sym := p.Symbol(op)
	expr := p.ParseExpression()
	if expr.Type == lisp.LError {
		return expr
	}
	return p.List(sym, expr)
}

// ParseConsExpression reads a parenthesized form.  An empty form reads as
// nil.
func (p *Parser) ParseConsExpression() *lisp.LVal {
	cells, open, err := p.parseSequence(token.PAREN_L, token.PAREN_R)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		return p.locLVal(lisp.Nil(), open)
	}
	return p.locLVal(lisp.ListOf(cells...), open)
}

// ParseList reads a bracketed sequence as a call to list.
func (p *Parser) ParseList() *lisp.LVal {
	cells, open, err := p.parseSequence(token.BRACKET_L, token.BRACKET_R)
	if err != nil {
		return err
	}
	sym := p.locLVal(lisp.Symbol("list"), open)
	return p.locLVal(lisp.ListOf(append([]*lisp.LVal{sym}, cells...)...), open)
}

// ParseMap reads a braced sequence of alternating keys and values as a map
// literal.
func (p *Parser) ParseMap() *lisp.LVal {
	cells, open, err := p.parseSequence(token.BRACE_L, token.BRACE_R)
	if err != nil {
		return err
	}
	if len(cells)%2 != 0 {
		v := lisp.ErrorConditionf(lisp.CondParseError, "map literal has an odd number of elements")
		return p.locLVal(v, open)
	}
	return p.locLVal(lisp.MapLiteral(cells), open)
}

func (p *Parser) parseSequence(left, right token.Type) ([]*lisp.LVal, *token.Token, *lisp.LVal) {
	if !p.Accept(left) {
		return nil, nil, p.errorf(lisp.CondParseError, "unexpected token: %v", p.PeekType())
	}
	open := p.src.Token
	var cells []*lisp.LVal
	for {
		if p.src.IsEOF() {
			p.ReadToken()
			return nil, nil, p.errorf(lisp.CondUnmatchedSyntax, "unmatched %s", open.Text)
		}
		if p.Accept(right) {
			return cells, open, nil
		}
		if p.PeekType().IsCloser() {
			p.ReadToken()
			return nil, nil, p.errorf(lisp.CondParseError, "mismatched %s closing %s at %v", p.TokenText(), open.Text, open.Source)
		}
		x := p.ParseExpression()
		if x.Type == lisp.LError {
			return nil, nil, x
		}
		cells = append(cells, x)
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}

func (p *Parser) String(s string) *lisp.LVal {
	return p.tokenLVal(lisp.String(s))
}

func (p *Parser) Symbol(sym string) *lisp.LVal {
	return p.tokenLVal(lisp.Symbol(sym))
}

func (p *Parser) Number(x float64) *lisp.LVal {
	return p.tokenLVal(lisp.Number(x))
}

func (p *Parser) Quote(v *lisp.LVal) *lisp.LVal {
	return p.List(p.Symbol(lisp.QuoteSymbol), v)
}

func (p *Parser) List(cells ...*lisp.LVal) *lisp.LVal {
	return p.tokenLVal(lisp.ListOf(cells...))
}

func (p *Parser) tokenLVal(v *lisp.LVal) *lisp.LVal {
	v.Source = p.Location()
	return v
}

func (p *Parser) locLVal(v *lisp.LVal, tok *token.Token) *lisp.LVal {
	v.Source = tok.Source
	return v
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) errorf(condition string, format string, v ...interface{}) *lisp.LVal {
	err := lisp.ErrorConditionf(condition, format, v...)
	err.Source = p.Location()
	return err
}

func isMemberSuffix(text string) bool {
	return len(text) > 1 && text[0] == '.' && strings.Trim(text, ".") != ""
}

// isDotted reports whether a symbol should be read as member access.  Symbols
// made entirely of dots and symbols with a leading dot are plain names.
func isDotted(text string) bool {
	return !strings.HasPrefix(text, ".") && strings.Contains(text, ".") && strings.Trim(text, ".") != ""
}

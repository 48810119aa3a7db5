// Copyright © 2018 The ELPS authors

/*
Package regexparser provides an alternative daniel reader built from parser
combinators.  It accepts the same syntax as rdparser and is used to cross
check the recursive descent reader.

	expr     := <primary> <member>*
	primary  := <term> | <form> | <list> | <map> | <macro> <expr>
	form     := '(' <expr>* ')'
	list     := '[' <expr>* ']'
	map      := '{' <expr>* '}'
	macro    := '\'' | '`' | '~@' | '~'
	member   := '.' <symbol>   ; only when written without whitespace
	term     := <string> | <number> | <keyword> | '&' | <symbol>
*/
package regexparser

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/lexer"
	"github.com/luthersystems/daniel/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a lisp.Reader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	return p.ReadLocation(name, name, r)
}

func (p *parsecReader) ReadLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := newSource(name, loc, b)
	vals, n, err := src.parse()
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, io.ErrUnexpectedEOF
	}
	return vals, nil
}

// ParseLVal parses LVal values from text and returns them.  The number of
// bytes read is returned along with any error that was encountered in parsing.
func ParseLVal(text []byte) ([]*lisp.LVal, int, error) {
	return newSource("", "", text).parse()
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeForm
	nodeList
	nodeMap
	nodeMacro
	nodeAccess
)

var nodeTypeStrings = []string{
	nodeInvalid: "INVALID",
	nodeTerm:    "TERM",
	nodeForm:    "FORM",
	nodeList:    "LIST",
	nodeMap:     "MAP",
	nodeMacro:   "MACRO",
	nodeAccess:  "ACCESS",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

const (
	symbolStart = `\pL|[=<>%:|?\\/*._$!+\-]`
	symbolRest  = `\pL|[0-9&^#'=<>%:|?\\/*._$!+\-]`
)

var readerMacros = map[string]string{
	"'":  lisp.QuoteSymbol,
	"`":  lisp.QuasiquoteSymbol,
	"~":  lisp.UnquoteSymbol,
	"~@": lisp.SpliceUnquoteSymbol,
}

// source is the text being read along with the byte offset of every line
// so that terminal positions can be reported as line and column.
type source struct {
	name  string
	path  string
	text  []byte
	lines []int
}

func newSource(name, path string, text []byte) *source {
	src := &source{name: name, path: path, text: text, lines: []int{0}}
	for i, c := range text {
		if c == '\n' {
			src.lines = append(src.lines, i+1)
		}
	}
	return src
}

func (src *source) location(pos int) *token.Location {
	line := sort.Search(len(src.lines), func(i int) bool { return src.lines[i] > pos })
	col := pos - src.lines[line-1] + 1
	return &token.Location{
		File: src.name,
		Path: src.path,
		Pos:  pos,
		Line: line,
		Col:  col,
	}
}

func (src *source) parse() ([]*lisp.LVal, int, error) {
	var v []*lisp.LVal
	s := parsec.NewScanner(src.text)
	parser := src.grammar()
	root, s := parser(s)
	for root != nil {
		lval, err := src.getLVal(root)
		if err != nil {
			return v, s.GetCursor(), err
		}
		if lval != nil {
			v = append(v, lval)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		pos := s.GetCursor()
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		cond := lisp.CondParseError
		if strings.ContainsAny(string(b[:1]), "([{") {
			cond = lisp.CondUnmatchedSyntax
		}
		return v, pos, &token.LocationError{
			Err:    fmt.Errorf("%s: unexpected source text possibly starting: %s", cond, b),
			Source: src.location(pos),
		}
	}
	return v, s.GetCursor(), nil
}

func (src *source) grammar() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	openB := parsec.Atom("[", "OPENB")
	closeB := parsec.Atom("]", "CLOSEB")
	openC := parsec.Atom("{", "OPENC")
	closeC := parsec.Atom("}", "CLOSEC")
	macro := parsec.Token("(?:'|`|~@|~)", "MACRO")
	// Commas separate tokens like whitespace does.
	skip := parsec.Token(`(?:;[^\n]*|,+)`, "SKIP")
	str := parsec.Token(`"(?:[^"\\]|\\.)*"`, "STRING")
	based := parsec.Token(`-?0[xXoObB][0-9a-fA-F]+`, "BASED")
	decimal := parsec.Token(`-?[0-9]+(?:[.][0-9]+)?(?:[eE][+-][0-9]+)?`, "DECIMAL")
	keyword := parsec.Token(`:(?:`+symbolRest+`)+`, "KEYWORD")
	varargs := parsec.Atom("&", "VARARGS")
	symbol := parsec.Token(`(?:`+symbolStart+`)(?:`+symbolRest+`)*`, "SYMBOL")
	term := parsec.OrdChoice(src.astNode(nodeTerm),
		str,
		based,
		decimal,
		keyword,
		varargs,
		symbol, // symbol comes last because it swallows anything
	)

	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, parsec.OrdChoice(nil, skip, &expr))
	form := parsec.And(src.astNode(nodeForm), openP, exprList, closeP)
	list := parsec.And(src.astNode(nodeList), openB, exprList, closeB)
	dict := parsec.And(src.astNode(nodeMap), openC, exprList, closeC)
	quoted := parsec.And(src.astNode(nodeMacro), macro, &expr)
	primary := parsec.OrdChoice(nil, term, form, list, dict, quoted)
	// A .name suffix binds only when it directly follows the expression.
	member := parsec.TokenExact(`\.(?:`+symbolRest+`)+`, "MEMBER")
	expr = parsec.And(src.astNode(nodeAccess), primary, parsec.Kleene(nil, member))
	return parsec.OrdChoice(nil, skip, &expr)
}

func (src *source) astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return src.newAST(t, nodes)
	}
}

func (src *source) newAST(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	if len(nodes) == 0 {
		return nil
	}
	switch typ {
	case nodeTerm:
		term, ok := nodes[0].(*parsec.Terminal)
		if !ok {
			return nodes[0]
		}
		return src.termLVal(term)
	case nodeForm, nodeList, nodeMap:
		open := nodes[0].(*parsec.Terminal)
		cells := lvals(nodes[1 : len(nodes)-1])
		switch typ {
		case nodeList:
			sym := src.located(lisp.Symbol("list"), open.Position)
			return src.located(lisp.ListOf(append([]*lisp.LVal{sym}, cells...)...), open.Position)
		case nodeMap:
			if len(cells)%2 != 0 {
				return src.errorf(open.Position, lisp.CondParseError, "map literal has an odd number of elements")
			}
			return src.located(lisp.MapLiteral(cells), open.Position)
		}
		if len(cells) == 0 {
			return src.located(lisp.Nil(), open.Position)
		}
		return src.located(lisp.ListOf(cells...), open.Position)
	case nodeMacro:
		mark := nodes[0].(*parsec.Terminal)
		sym := src.located(lisp.Symbol(readerMacros[mark.Value]), mark.Position)
		return src.located(lisp.ListOf(sym, nodes[1].(*lisp.LVal)), mark.Position)
	case nodeAccess:
		expr := nodes[0].(*lisp.LVal)
		for _, n := range nodes[1:] {
			member := n.(*parsec.Terminal)
			for _, name := range strings.Split(member.Value[1:], ".") {
				if name == "" {
					return src.errorf(member.Position, lisp.CondParseError, "invalid member access: %s", member.Value)
				}
				expr = src.memberAccess(expr, name, member.Position)
			}
		}
		return expr
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func (src *source) termLVal(term *parsec.Terminal) *lisp.LVal {
	pos := term.Position
	switch term.Name {
	case "STRING":
		s, err := lexer.Unquote(term.Value)
		if err != nil {
			return src.errorf(pos, lisp.CondLexicalError, "%v", err)
		}
		return src.located(lisp.String(s), pos)
	case "BASED":
		x, err := strconv.ParseInt(term.Value, 0, 64)
		if err != nil {
			return src.errorf(pos, lisp.CondLexicalError, "invalid number literal %s: %v", term.Value, err)
		}
		return src.located(lisp.Number(float64(x)), pos)
	case "DECIMAL":
		x, err := strconv.ParseFloat(term.Value, 64)
		if err != nil {
			return src.errorf(pos, lisp.CondLexicalError, "invalid number literal %s: %v", term.Value, err)
		}
		return src.located(lisp.Number(x), pos)
	case "KEYWORD":
		return src.located(lisp.Keyword(term.Value), pos)
	case "VARARGS":
		return src.located(lisp.Symbol(lisp.VarArgSymbol), pos)
	}
	switch term.Value {
	case "true", "false":
		return src.located(lisp.Bool(term.Value == "true"), pos)
	case "nil":
		return src.located(lisp.Nil(), pos)
	}
	if !isDotted(term.Value) {
		return src.located(lisp.Symbol(term.Value), pos)
	}
	pieces := strings.Split(term.Value, ".")
	for _, piece := range pieces {
		if piece == "" {
			return src.errorf(pos, lisp.CondParseError, "invalid member access: %s", term.Value)
		}
	}
	expr := src.located(lisp.Symbol(pieces[0]), pos)
	for _, name := range pieces[1:] {
		expr = src.memberAccess(expr, name, pos)
	}
	return expr
}

func (src *source) memberAccess(expr *lisp.LVal, name string, pos int) *lisp.LVal {
	prop := src.located(lisp.Symbol("prop"), pos)
	quote := src.located(lisp.Symbol(lisp.QuoteSymbol), pos)
	sym := src.located(lisp.Symbol(name), pos)
	return src.located(lisp.ListOf(prop, src.located(lisp.ListOf(quote, sym), pos), expr), pos)
}

func (src *source) located(v *lisp.LVal, pos int) *lisp.LVal {
	v.Source = src.location(pos)
	return v
}

func (src *source) errorf(pos int, condition string, format string, v ...interface{}) *lisp.LVal {
	return src.located(lisp.ErrorConditionf(condition, format, v...), pos)
}

func (src *source) getLVal(root parsec.ParsecNode) (*lisp.LVal, error) {
	nodes, ok := cleanParsecNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		// we can be here if there is only a comment on a line
		return nil, nil
	}
	lval, isLVal := nodes[0].(*lisp.LVal)
	if !ok || !isLVal {
		return nil, fmt.Errorf("unexpected parser node: %v", nodes[0])
	}
	if lval.Type == lisp.LError {
		return nil, &token.LocationError{
			Err:    lisp.GoError(lval),
			Source: lval.Source,
		}
	}
	return lval, nil
}

// lvals returns the values parsed inside of a bracketed form.  An error
// value nested anywhere in the form is returned alone.
func lvals(nodes []parsec.ParsecNode) []*lisp.LVal {
	cells := make([]*lisp.LVal, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := n.(*lisp.LVal); ok {
			cells = append(cells, v)
		}
	}
	return cells
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case nil:
			continue
		case *parsec.Terminal:
			if node.Name == "SKIP" {
				continue
			}
			nodes = append(nodes, node)
		case *lisp.LVal:
			if node.Type == lisp.LError {
				return []parsec.ParsecNode{node}, false
			}
			nodes = append(nodes, node)
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

// isDotted reports whether a symbol should be read as member access.
func isDotted(text string) bool {
	return !strings.HasPrefix(text, ".") && strings.Contains(text, ".") && strings.Trim(text, ".") != ""
}

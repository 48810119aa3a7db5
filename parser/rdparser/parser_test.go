// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`0`, `0`},
		{`12`, `12`},
		{`0.3`, `0.3`},
		{`-1`, `-1`},
		{`12e+3`, `12000`},
		{`0x1f`, `31`},
		{`-0x10`, `-16`},
		{`0o17`, `15`},
		{`0b101`, `5`},
		{`abc`, `abc`},
		{`abc?`, `abc?`},
		{`-`, `-`},
		{`...`, `...`},
		{`:key`, `:key`},
		{`true`, `true`},
		{`false`, `false`},
		{`nil`, `nil`},
		{`()`, `nil`},
		{`"xyz"`, `"xyz"`},
		{`"x\nyz"`, `"x\nyz"`},
		{`"x\tyz"`, `"x\tyz"`},
		{`""`, `""`},
		{`'xyz`, `(quote xyz)`},
		{"`(a ~b ~@c)", `(quasiquote (a (unquote b) (splicing-unquote c)))`},
		{`'()`, `(quote nil)`},
		{`(1 2 3)`, `(1 2 3)`},
		{`(1, 2, 3)`, `(1 2 3)`},
		{`(1 "abc" '(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`[x y z]`, `(list x y z)`},
		{`[]`, `(list)`},
		{`{:a 1 "b" (f)}`, `{:a => 1 "b" => (f)}`},
		{`(lambda (x & rest) rest)`, `(lambda (x & rest) rest)`},
		{`this.x`, `(prop (quote x) this)`},
		{`this.x.y`, `(prop (quote y) (prop (quote x) this))`},
		{`(f).name`, `(prop (quote name) (f))`},
		{`(f).a.b`, `(prop (quote b) (prop (quote a) (f)))`},
		{`[1 2].length`, `(prop (quote length) (list 1 2))`},
		{`"abc".length`, `(prop (quote length) "abc")`},
		{`(g (f) .name)`, `(g (f) .name)`},
		{`(a.b c)`, `((prop (quote b) a) c)`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		s := token.NewScanner(name, strings.NewReader(test.source))
		p := New(s)
		exprs, err := p.ParseProgram()
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		if !assert.Len(t, exprs, 1, "test %d: %s", i, test.source) {
			continue
		}
		testLValLocation(t, exprs[0])
		assert.Equal(t, test.output, exprs[0].String(), "test %d", i)
	}
}

func TestComments(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`(1 2 3) ; A comment`, `(1 2 3)`},
		{`	; A comment
			(1 "abc" '(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`(1 "abc" ; A comment
			'(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`(1 "abc" ; A comment
			)`, `(1 "abc")`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(token.NewScanner(name, strings.NewReader(test.source)))
		exprs, err := p.ParseProgram()
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		if assert.Len(t, exprs, 1, "test %d", i) {
			assert.Equal(t, test.output, exprs[0].String(), "test %d", i)
		}
	}
}

func testLValLocation(t *testing.T, v *lisp.LVal) {
	if v.Source == nil {
		t.Errorf("value missing source location: %v", v)
	}
	switch v.Type {
	case lisp.LList:
		v.Native.(*lisp.List).Each(func(_ int, c *lisp.LVal) bool {
			testLValLocation(t, c)
			return true
		})
	case lisp.LMap:
		for _, c := range v.Cells {
			testLValLocation(t, c)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source    string
		condition string
		errmsg    string
	}{
		{`(1 2 3`, lisp.CondUnmatchedSyntax, `unmatched (`},
		{`[1 2 (3 4]`, lisp.CondParseError, `mismatched ]`},
		{`(1 2))`, lisp.CondParseError, `unexpected token: )`},
		{`{:a 1 :b}`, lisp.CondParseError, `odd number of elements`},
		{`(1 2 3)
		"abc`, lisp.CondLexicalError, `unterminated string literal`},
		{`(1 1e5)`, lisp.CondLexicalError, `exponent requires a sign`},
		{`'`, lisp.CondUnmatchedSyntax, `unexpected end of input`},
		{`a..b`, lisp.CondParseError, `invalid member access`},
		{`(f).a..b`, lisp.CondParseError, `invalid member access`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(token.NewScanner(name, strings.NewReader(test.source)))
		_, err := p.ParseProgram()
		if !assert.Error(t, err, "test %d: %s", i, test.source) {
			continue
		}
		var lerr *lisp.ErrorVal
		if assert.ErrorAs(t, err, &lerr, "test %d", i) {
			assert.Equal(t, test.condition, lerr.Condition(), "test %d", i)
		}
		assert.Contains(t, err.Error(), test.errmsg, "test %d", i)
		assert.Contains(t, err.Error(), name, "test %d", i)
	}
}

func TestReadProgram(t *testing.T) {
	prog, err := ReadProgram("prog.dan", strings.NewReader("(define x 1)\n(+ x 2)"))
	require.NoError(t, err)
	assert.Equal(t, `(do (define x 1) (+ x 2))`, prog.String())

	prog, err = ReadProgram("empty.dan", strings.NewReader("; nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, `(do)`, prog.String())
}

func TestReadLocation(t *testing.T) {
	exprs, err := NewReader().(lisp.LocationReader).ReadLocation("mod.dan", "/lib/mod.dan", strings.NewReader("\n  (f x)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	loc := exprs[0].Source
	require.NotNil(t, loc)
	assert.Equal(t, "mod.dan", loc.File)
	assert.Equal(t, "/lib/mod.dan", loc.Path)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 3, loc.Col)
}

// lineSource feeds an Interactive parser the tokens of one line at a time,
// the way a REPL would.
func lineSource(t *testing.T, lines ...string) TokenGenerator {
	return func() []*token.Token {
		if len(lines) == 0 {
			return []*token.Token{{Type: token.EOF, Source: &token.Location{}}}
		}
		line := lines[0]
		lines = lines[1:]
		toks, err := tokenizeLine(line)
		require.NoError(t, err)
		return toks
	}
}

func tokenizeLine(line string) ([]*token.Token, error) {
	p := New(token.NewScanner("stdin", strings.NewReader(line)))
	var toks []*token.Token
	for {
		tok := p.src.Peek()
		if tok.Type == token.EOF {
			return toks, nil
		}
		p.src.Scan()
		toks = append(toks, tok)
	}
}

func TestInteractive(t *testing.T) {
	p := NewInteractive(lineSource(t, "(define x", "  [1 2", "3])", "(f).name x"))
	p.SetPrompts("> ", "  ")
	assert.Equal(t, "> ", p.Prompt())
	assert.False(t, p.IsParsing())

	expr, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, `(define x (list 1 2 3))`, expr.String())
	assert.False(t, p.IsParsing())
	assert.Equal(t, 0, p.Depth())

	expr, err = p.Parse()
	require.NoError(t, err)
	assert.Equal(t, `(prop (quote name) (f))`, expr.String())

	expr, err = p.Parse()
	require.NoError(t, err)
	assert.Equal(t, `x`, expr.String())

	_, err = p.Parse()
	assert.Equal(t, io.EOF, err)

	var nilp *Interactive
	assert.False(t, nilp.IsParsing())
	assert.Equal(t, 0, nilp.Depth())
}

func TestInteractivePrompt(t *testing.T) {
	var prompts []string
	var p *Interactive
	lines := []string{"(a", "(b", "c))"}
	p = NewInteractive(func() []*token.Token {
		prompts = append(prompts, p.Prompt())
		if len(lines) == 0 {
			return []*token.Token{{Type: token.EOF, Source: &token.Location{}}}
		}
		line := lines[0]
		lines = lines[1:]
		toks, err := tokenizeLine(line)
		require.NoError(t, err)
		return toks
	})
	p.SetPrompts("> ", "..")
	expr, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, `(a (b c))`, expr.String())
	assert.Equal(t, []string{"> ", "..  ", "..    "}, prompts)
}

func TestInteractiveRecovers(t *testing.T) {
	p := NewInteractive(lineSource(t, "(a))", "(b)"))
	_, err := p.Parse()
	require.NoError(t, err)
	_, err = p.Parse()
	require.Error(t, err)
	expr, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, `(b)`, expr.String())
}

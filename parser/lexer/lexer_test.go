// Copyright © 2018 The ELPS authors

package lexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/luthersystems/daniel/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []*token.Token
	}{
		{``, []*token.Token{
			testToken(token.EOF, ""),
		}},
		{`abc`, []*token.Token{
			testToken(token.SYMBOL, "abc"),
			testToken(token.EOF, ""),
		}},
		{`=+()[]{}`, []*token.Token{
			testToken(token.SYMBOL, "=+"),
			testToken(token.PAREN_L, "("),
			testToken(token.PAREN_R, ")"),
			testToken(token.BRACKET_L, "["),
			testToken(token.BRACKET_R, "]"),
			testToken(token.BRACE_L, "{"),
			testToken(token.BRACE_R, "}"),
			testToken(token.EOF, ""),
		}},
		{"(f 'a `b ~c ~@d & rest)", []*token.Token{
			testToken(token.PAREN_L, "("),
			testToken(token.SYMBOL, "f"),
			testToken(token.QUOTE, "'"),
			testToken(token.SYMBOL, "a"),
			testToken(token.QUASIQUOTE, "`"),
			testToken(token.SYMBOL, "b"),
			testToken(token.UNQUOTE, "~"),
			testToken(token.SYMBOL, "c"),
			testToken(token.SPLICE_UNQUOTE, "~@"),
			testToken(token.SYMBOL, "d"),
			testToken(token.AMPERSAND, "&"),
			testToken(token.SYMBOL, "rest"),
			testToken(token.PAREN_R, ")"),
			testToken(token.EOF, ""),
		}},
		{`10 -5 0.1 0 12e+12 12e-12 12.02E+5 0x1f 0o17 0b101 - -x`, []*token.Token{
			testToken(token.NUMBER, "10"),
			testToken(token.NUMBER, "-5"),
			testToken(token.NUMBER, "0.1"),
			testToken(token.NUMBER, "0"),
			testToken(token.NUMBER, "12e+12"),
			testToken(token.NUMBER, "12e-12"),
			testToken(token.NUMBER, "12.02E+5"),
			testToken(token.NUMBER, "0x1f"),
			testToken(token.NUMBER, "0o17"),
			testToken(token.NUMBER, "0b101"),
			testToken(token.SYMBOL, "-"),
			testToken(token.SYMBOL, "-x"),
			testToken(token.EOF, ""),
		}},
		{`true false nil :key : this.x.y`, []*token.Token{
			testToken(token.BOOL, "true"),
			testToken(token.BOOL, "false"),
			testToken(token.NIL, "nil"),
			testToken(token.KEYWORD, ":key"),
			testToken(token.SYMBOL, ":"),
			testToken(token.SYMBOL, "this.x.y"),
			testToken(token.EOF, ""),
		}},
		{"a,b ; comment (ignored)\n c", []*token.Token{
			testToken(token.SYMBOL, "a"),
			testToken(token.SYMBOL, "b"),
			testToken(token.SYMBOL, "c"),
			testToken(token.EOF, ""),
		}},
		{`"abc" "" "a\"b" "é"`, []*token.Token{
			testToken(token.STRING, `"abc"`),
			testToken(token.STRING, `""`),
			testToken(token.STRING, `"a\"b"`),
			testToken(token.STRING, `"é"`),
			testToken(token.EOF, ""),
		}},
	}
testloop:
	for i, test := range tests {
		lex := New(token.NewScanner("", strings.NewReader(test.input)))
		var tokens []*token.Token
		numToken := 0
		for {
			toks := lex.ReadToken()
			if len(toks) != 1 {
				t.Fatalf("test %d: lexer returned %d tokens", i, len(toks))
			}
			tok := toks[0]
			tok.Source = nil
			tok.PrecedingSpaces = 0
			tok.PrecedingNewlines = 0
			tokens = append(tokens, tok)
			if tok.Type == token.EOF || tok.Type == token.ERROR {
				break
			}
			numToken++
			if numToken > 100000 {
				t.Errorf("test %d: apparent infinite scanning loop", i)
				continue testloop
			}
		}
		if !reflect.DeepEqual(tokens, test.tokens) {
			t.Errorf("test %d: unexpected tokens for input", i)
			t.Logf("source:\n\t%s", test.input)
			t.Logf("tokens:")
			for _, tok := range tokens {
				t.Logf("\t%v", tok)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`1e5`, "exponent requires a sign"},
		{`1e+`, "exponent requires digits"},
		{`1.`, "fraction requires digits"},
		{`12abc`, "malformed number literal"},
		{`0x1g`, "invalid hexadecimal literal"},
		{`0b102`, "invalid binary literal"},
		{`0o9`, "invalid octal literal"},
		{`"abc`, "unterminated string literal"},
		{`"a\qb"`, `invalid escape sequence \q`},
		{`"\u12"`, "invalid unicode escape"},
		{`"\UFFFFFFFF"`, "invalid code point"},
		{`(a @b)`, `unexpected character '@'`},
	}
	for i, test := range tests {
		_, err := Tokenize("test", test.input)
		if assert.Error(t, err, "test %d: %s", i, test.input) {
			assert.Contains(t, err.Error(), test.msg, "test %d", i)
		}
	}
}

func TestTokenizeLocation(t *testing.T) {
	tokens, err := Tokenize("loc.dan", "(define x\n  (f).name)")
	require.NoError(t, err)
	require.Len(t, tokens, 9)
	assert.Equal(t, "loc.dan:1:1", tokens[0].Source.String())
	assert.Equal(t, "loc.dan:2:3", tokens[3].Source.String())
	assert.Equal(t, 1, tokens[3].PrecedingNewlines)
	assert.Equal(t, token.SYMBOL, tokens[6].Type)
	assert.Equal(t, ".name", tokens[6].Text)
	assert.True(t, tokens[6].Adjacent())
	assert.False(t, tokens[2].Adjacent())

	_, err = Tokenize("loc.dan", "(a\n  @)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loc.dan:2:3")
}

func TestUnquote(t *testing.T) {
	s, err := Unquote(`"a\tb\n\\\'\"\0\U0001F600"`)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n\\'\"\x00\U0001F600", s)
	_, err = Unquote(`abc`)
	assert.Error(t, err)
}

func testToken(typ token.Type, text string) *token.Token {
	return &token.Token{
		Type: typ,
		Text: text,
	}
}

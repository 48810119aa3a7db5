// Copyright © 2024 The ELPS authors

package astutil

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/rdparser"
	"github.com/luthersystems/daniel/parser/token"
)

func read(t *testing.T, src string) []*lisp.LVal {
	t.Helper()
	exprs, err := rdparser.NewReader().Read("test.dan", strings.NewReader(src))
	require.NoError(t, err)
	return exprs
}

func TestHeadSymbol(t *testing.T) {
	assert.Equal(t, "", HeadSymbol(lisp.Nil()))
	assert.Equal(t, "", HeadSymbol(lisp.Int(1)))
	assert.Equal(t, "", HeadSymbol(lisp.ListOf(lisp.Int(1))))
	assert.Equal(t, "foo", HeadSymbol(lisp.ListOf(lisp.Symbol("foo"))))
}

func TestArgCount(t *testing.T) {
	assert.Equal(t, 0, ArgCount(lisp.Nil()))
	assert.Equal(t, 0, ArgCount(lisp.ListOf(lisp.Symbol("foo"))))
	assert.Equal(t, 2, ArgCount(lisp.ListOf(lisp.Symbol("foo"), lisp.Int(1), lisp.Int(2))))
	assert.Len(t, Args(lisp.ListOf(lisp.Symbol("foo"), lisp.Int(1))), 1)
}

func TestSourceOf(t *testing.T) {
	head := lisp.Symbol("f")
	head.Source = &token.Location{File: "test.dan", Line: 10}
	v := lisp.ListOf(head)
	assert.Same(t, head, SourceOf(v))

	v.Source = &token.Location{File: "test.dan", Line: 5}
	assert.Same(t, v, SourceOf(v))

	bare := lisp.Int(3)
	assert.Same(t, bare, SourceOf(bare))
}

func TestWalk_skipsQuotedData(t *testing.T) {
	exprs := read(t, "(f (g 1) '(h 2) `(k ~x))")
	var heads []string
	WalkForms(exprs, func(form *lisp.LVal, depth int) {
		heads = append(heads, HeadSymbol(form))
	})
	assert.Equal(t, []string{"f", "g", "quote", "quasiquote"}, heads)
}

func TestWalk_depthAndParent(t *testing.T) {
	exprs := read(t, "(a (b c)) {:k (d)}")
	depths := make(map[string]int)
	Walk(exprs, func(node, parent *lisp.LVal, depth int) {
		if node.Type == lisp.LSymbol {
			depths[node.Str] = depth
			assert.NotNil(t, parent)
		}
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 2, "d": 2}, depths)
}

func TestUserDefined(t *testing.T) {
	exprs := read(t, `
(define top 1)
(define (area shape & scales) shape)
(defmacro (unless c & body) body)
(let ((x 1) y) x)
(lambda (p) p)
(class Point :extends Shape (new px) (norm (scale) 1) (static origin (zero) 0))
(for (i [1 2]) i)
(try (f) (catch err err))
(import "./util" :as u)
`)
	defs := UserDefined(exprs)
	var names []string
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"Point", "area", "body", "c", "err", "i", "norm", "origin", "p", "px",
		"scale", "scales", "shape", "top", "unless", "x", "y", "zero",
	}, names)
}

func TestMemberSignature(t *testing.T) {
	exprs := read(t, "(class C (new a b) (m (x) x) (static s (y) y) 3)")
	members := ClassMembers(exprs[0])
	require.Len(t, members, 3)

	name, params := MemberSignature(members[0])
	assert.Equal(t, "", name)
	assert.Equal(t, "(a b)", params.String())

	name, params = MemberSignature(members[1])
	assert.Equal(t, "m", name)
	assert.Equal(t, "(x)", params.String())

	name, params = MemberSignature(members[2])
	assert.Equal(t, "s", name)
	assert.Equal(t, "(y)", params.String())
}

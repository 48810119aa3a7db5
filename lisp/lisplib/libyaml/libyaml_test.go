// Copyright © 2024 The ELPS authors

package libyaml

import (
	"testing"

	"github.com/luthersystems/daniel/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	m := lisp.NewMap()
	require.NoError(t, m.Set(lisp.Keyword("name"), lisp.String("daniel")))
	require.NoError(t, m.Set(lisp.String("tags"), lisp.ListOf(lisp.Int(1), lisp.Number(2.5), lisp.Bool(true))))
	require.NoError(t, m.Set(lisp.String("none"), lisp.Nil()))
	b, err := Dump(lisp.MapValue(m))
	require.NoError(t, err)
	assert.Equal(t, "name: daniel\ntags:\n    - 1\n    - 2.5\n    - true\nnone: null\n", string(b))

	_, err = Dump(lisp.Fun("f", lisp.Formals(), func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal { return lisp.Nil() }))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	v := Load([]byte("b: 1\na: [x, 2.5, ~, false]\n"))
	require.Equal(t, lisp.LMap, v.Type, "%v", v)
	keys := v.Map().Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "b", keys[0].Str)
	assert.Equal(t, "a", keys[1].Str)
	a, ok := v.Map().Get(lisp.String("a"))
	require.True(t, ok)
	assert.Equal(t, `("x" 2.5 nil false)`, lisp.Print(a, lisp.PrintOptions{QuoteStrings: true}))

	v = Load([]byte("key: [unclosed"))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, CondSyntaxError, v.Str)

	assert.True(t, Load(nil).IsNil())
}

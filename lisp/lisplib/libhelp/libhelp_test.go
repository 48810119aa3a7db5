// Copyright © 2021 The ELPS authors

package libhelp_test

import (
	"bytes"
	"testing"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib"
	"github.com/luthersystems/daniel/lisp/lisplib/libhelp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocstring(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)

	// check docs for builtin functions and special operators
	for _, name := range []string{"map", "list", "concat"} {
		fun := env.Get(lisp.Symbol(name))
		if assert.Equal(t, lisp.LFun, fun.Type, name) {
			assert.NotEqual(t, "", fun.FunData().Doc, name)
		}
	}

	rc := env.LoadString("test.dan", `
	(define (const-string1) "abc")
	(define (const-string2) "abc" "")
	`)
	require.Truef(t, rc.IsNil(), "%v", rc)

	lisp1 := env.Get(lisp.Symbol("const-string1"))
	if assert.Equal(t, lisp.LFun, lisp1.Type) {
		assert.Equal(t, "", lisp1.FunData().Doc)
	}
	lisp2 := env.Get(lisp.Symbol("const-string2"))
	if assert.Equal(t, lisp.LFun, lisp2.Type) {
		assert.Equal(t, "abc", lisp2.FunData().Doc)
	}
}

func TestRenderValue(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	rc := env.LoadString("test.dan", `
	(define (area shape & scale)
	  "Returns the area of shape.
	  The optional scale multiplies the result."
	  shape)
	(class Shape (new name) (describe () this.name))
	(class Circle :extends Shape
	  (new radius)
	  (static unit () (Circle "unit" 1))
	  (area () (* this.radius this.radius)))
	`)
	require.Truef(t, rc.IsNil(), "%v", rc)

	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderValue(&buf, env.Get(lisp.Symbol("area"))))
	assert.Equal(t, "lambda (area shape & scale)\n"+
		"  Returns the area of shape.\n"+
		"  The optional scale multiplies the result.\n", buf.String())

	buf.Reset()
	require.NoError(t, libhelp.RenderValue(&buf, env.Get(lisp.Symbol("Circle"))))
	assert.Equal(t, "class Circle extends Shape\n"+
		"  fields: radius\n"+
		"  static (unit)\n"+
		"  method (area)\n", buf.String())

	buf.Reset()
	require.NoError(t, libhelp.RenderValue(&buf, lisp.Int(3)))
	assert.Equal(t, "number 3\n", buf.String())
}

func TestRenderModule(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	mod := env.Import(lisp.String("Base64"))
	require.Equal(t, lisp.LModule, mod.Type, "%v", mod)

	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderModule(&buf, mod))
	out := buf.String()
	assert.Contains(t, out, "module Base64\n")
	assert.Contains(t, out, "builtin (decode encoded)")
	assert.Contains(t, out, "builtin (encode-url str)")
	// exports are rendered in sorted order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("(decode ")), bytes.Index(buf.Bytes(), []byte("(encode ")))
}

func TestRenderModuleList(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, libhelp.RenderModuleList(&buf, env))
	for _, name := range []string{"Base64", "Help", "JSON", "Math", "String", "Testing", "Time", "YAML"} {
		assert.Contains(t, buf.String(), "  "+name)
	}
}

func TestCheckMissing(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	for _, m := range libhelp.CheckMissing(env) {
		// every module function in the library is documented
		assert.NotContains(t, m.Name, ".", "missing documentation: %s %s", m.Kind, m.Name)
	}
}

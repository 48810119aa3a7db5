// Copyright © 2024 The ELPS authors

package lisplib_test

import (
	"bytes"
	"testing"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib"
	"github.com/luthersystems/daniel/lisp/lisplib/libhelp"
	"github.com/luthersystems/daniel/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, stdout *bytes.Buffer) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(stdout),
		lisp.WithLoader(lisplib.LoadLibrary),
	)
	require.Truef(t, rc.IsNil(), "initialize: %v", rc)
	return env
}

func TestLoadLibrary_ModulesImport(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{})
	for _, m := range lisplib.Modules() {
		t.Run(m.Name, func(t *testing.T) {
			mod := env.Import(lisp.Symbol(m.Name))
			require.Equalf(t, lisp.LModule, mod.Type, "%v", mod)
			assert.Equal(t, m.Name, mod.Module().Name)
			assert.NotEqual(t, "", mod.Module().Doc)
			assert.NotZero(t, mod.Module().Exports.Len())
		})
	}
}

func TestLoadLibrary_Twice(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{})
	rc := lisplib.LoadLibrary(env)
	require.Equal(t, lisp.LError, rc.Type)
	assert.Equal(t, lisp.CondAlreadyQueued, rc.Str)
}

func TestLoadLibrary_Scripts(t *testing.T) {
	tests := []struct {
		name   string
		source string
		result string
	}{
		{"string", `(import String) (String.upcase "abc")`, `"ABC"`},
		{"string open", `(import String :open) (join (split "a,b,c" ",") "-")`, `"a-b-c"`},
		{"math", `(import Math :as M) (M.floor (* M.pi 2))`, `6`},
		{"base64", `(import Base64) (Base64.decode (Base64.encode "hello"))`, `"hello"`},
		{"json", `(import JSON) (JSON.encode (JSON.decode "{\"b\":[1,2.5],\"a\":null}"))`, `"{\"b\":[1,2.5],\"a\":null}"`},
		{"yaml", `(import YAML) (get "k" (YAML.decode "k: [1, 2]"))`, `(1 2)`},
		{"regexp", `(import Regexp) (Regexp.find-all "[0-9]+" "a1 b22 c333")`, `("1" "22" "333")`},
		{"time", `(import Time) (await (Time.delay 1 'done))`, `done`},
		{"functional", `(import Functional :open) (partition 2 (list 1 2 3 4 5))`, `((1 2) (3 4) (5))`},
		{"functional zip", `(import Functional) (Functional.zip (list 1 2) (list "a" "b" "c"))`, `((1 "a") (2 "b"))`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := newEnv(t, &bytes.Buffer{})
			v := env.LoadString("test.dan", test.source)
			require.NotEqualf(t, lisp.LError, v.Type, "%v", v)
			assert.Equal(t, test.result, lisp.Print(v, lisp.PrintOptions{QuoteStrings: true}))
		})
	}
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	env := newEnv(t, &out)
	v := env.LoadString("test.dan", `(import Help) (import Math) (Help.help Math.sqrt)`)
	require.Truef(t, v.IsNil(), "%v", v)
	assert.Contains(t, out.String(), "(sqrt number)")
	assert.Contains(t, out.String(), "square root")

	out.Reset()
	v = env.LoadString("test.dan", `(Help.modules)`)
	require.Truef(t, v.IsNil(), "%v", v)
	assert.Contains(t, out.String(), "Math")
	assert.Contains(t, out.String(), "Regular expression")
}

func TestCheckMissing_Modules(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	for _, m := range libhelp.CheckMissing(env) {
		assert.NotEqualf(t, "module", m.Kind, "module %s has no documentation", m.Name)
	}
}

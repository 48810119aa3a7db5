// Copyright © 2024 The ELPS authors

package libtesting_test

import (
	"testing"

	"github.com/luthersystems/daniel/elpstest"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib"
	"github.com/luthersystems/daniel/lisp/lisplib/libtesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackage(t *testing.T) {
	r := &elpstest.Runner{}
	r.RunTestFile(t, "testdata/libtesting_test.dan")
}

func BenchmarkPackage(b *testing.B) {
	r := &elpstest.Runner{}
	r.RunBenchmarkFile(b, "testdata/libtesting_test.dan")
}

func TestSuite_register(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	suite := libtesting.EnvTestSuite(env)
	require.NotNil(t, suite)

	rc := env.LoadString("test.dan", `
	(import Testing :open)
	(test "a" (assert= 1 1))
	(test "b" (assert= 1 2))
	(benchmark-simple "c" nil)
	`)
	require.Truef(t, rc.IsNil(), "%v", rc)
	assert.Equal(t, []string{"a", "b"}, suite.Tests())
	assert.Equal(t, []string{"c"}, suite.Benchmarks())

	pass := env.FunCall(suite.Test(0).Fun, nil)
	assert.Truef(t, pass.IsNil(), "%v", pass)
	fail := env.FunCall(suite.Test(1).Fun, nil)
	if assert.Equal(t, lisp.LError, fail.Type) {
		assert.Equal(t, libtesting.CondAssertion, fail.Str)
	}

	rc = env.LoadString("dup.dan", `(test "a" (assert true))`)
	assert.Equal(t, lisp.LError, rc.Type, "duplicate test names are rejected")
}

func TestSuite_badName(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	rc := env.LoadString("test.dan", `(import Testing :open) (test a (assert true))`)
	if assert.Equal(t, lisp.LError, rc.Type) {
		assert.Equal(t, lisp.CondSyntaxError, rc.Str)
	}
}

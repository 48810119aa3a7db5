package profiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser"
)

// testDefinitions are loaded once per environment.  Only add-it and sum-all
// carry trace docstrings.
const testDefinitions = `
(define (add-it x y)
  "Adds x and y. @trace{ Add It }"
  (+ x y))
(define (recurse-it x)
  (if (> x 0)
    (recurse-it (- x 1))
    (add-it x 3)))
(define (sum-all xs)
  "Sums the elements of xs. @trace"
  (foldl (lambda (acc x) (add-it acc x)) 0 xs))
`

// testProgram evaluates to 6.
const testProgram = `(add-it (recurse-it 2) (sum-all [1 2]))`

func newProfiledEnv(t *testing.T) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.NoError(t, lisp.GoError(lerr))
	return env
}

// runProgram may be called repeatedly on env.  Defining the functions a
// second time in the same scope is an error, so they are only loaded once.
func runProgram(t *testing.T, env *lisp.LEnv) {
	t.Helper()
	if _, ok := env.Lookup("add-it"); !ok {
		lerr := env.LoadString("test.dan", testDefinitions)
		require.NoError(t, lisp.GoError(lerr))
	}
	v := env.LoadString("test.dan", testProgram)
	require.NoError(t, lisp.GoError(v))
	require.Equal(t, "6", v.String())
}

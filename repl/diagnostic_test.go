// Copyright © 2024 The ELPS authors

package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/daniel/diagnostic"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDiagnostic(t *testing.T) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.True(t, rc.IsNil(), rc.String())

	lerr := env.LoadString("t.dan", "(+ 1 2)\n  fnord")
	require.Equal(t, lisp.LError, lerr.Type)
	d := ErrorDiagnostic(lerr)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, lisp.CondUnboundSymbol, d.Code)
	assert.Contains(t, d.Message, "unbound symbol: fnord")
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "t.dan", d.Spans[0].File)
	assert.Equal(t, 2, d.Spans[0].Line)

	plain := ErrorDiagnostic(env.Errorf("plain failure"))
	assert.Empty(t, plain.Code)
	assert.True(t, strings.HasPrefix(plain.Header(), "error: "), plain.Header())
	assert.True(t, strings.HasSuffix(plain.Header(), "plain failure"), plain.Header())

	var buf bytes.Buffer
	renderError(&buf, lerr)
	assert.Contains(t, buf.String(), "error[unbound-symbol]: ")
	assert.Contains(t, buf.String(), "unbound symbol: fnord")
	assert.Contains(t, buf.String(), "= help: use (import Help)")
}

// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/daniel/lint"
)

func resetLintFlags(t *testing.T) {
	t.Cleanup(func() {
		lintJSON = false
		lintChecks = ""
		lintListAll = false
		lintExcludes = nil
		colorFlag = "auto"
	})
}

func TestLintCommand_flags(t *testing.T) {
	assert.Equal(t, "lint [flags] [files...]", lintCmd.Use)
	for _, name := range []string{"json", "checks", "list", "exclude"} {
		assert.NotNil(t, lintCmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLintExec_list(t *testing.T) {
	resetLintFlags(t)
	lintListAll = true
	var stdout, stderr bytes.Buffer
	code := lintExec(nil, &stdout, &stderr, nil)
	assert.Equal(t, 0, code)
	assert.Equal(t, strings.Join(lint.AnalyzerNames(), "\n")+"\n", stdout.String())
}

func TestLintExec_clean(t *testing.T) {
	resetLintFlags(t)
	path := writeFile(t, "ok.dan", "(define (f x) (if x 1 2))\n")
	var stdout, stderr bytes.Buffer
	code := lintExec(nil, &stdout, &stderr, []string{path})
	assert.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())
}

func TestLintExec_findings(t *testing.T) {
	resetLintFlags(t)
	colorFlag = "never"
	path := writeFile(t, "bad.dan", "(if)\n")
	var stdout, stderr bytes.Buffer
	code := lintExec(nil, &stdout, &stderr, []string{path})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "(if-arity)")
}

func TestLintExec_json(t *testing.T) {
	resetLintFlags(t)
	lintJSON = true
	lintChecks = "builtin-arity"
	var stdout, stderr bytes.Buffer
	code := lintExec(strings.NewReader("(if)\n(car 1 2)\n"), &stdout, &stderr, nil)
	assert.Equal(t, 1, code, stderr.String())
	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "builtin-arity", diags[0].Analyzer)
	assert.Equal(t, "<stdin>", diags[0].Pos.File)
	assert.Equal(t, 2, diags[0].Pos.Line)
}

func TestLintExec_badInvocation(t *testing.T) {
	resetLintFlags(t)
	lintChecks = "nonsense"
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, lintExec(nil, &stdout, &stderr, []string{"x.dan"}))
	assert.Contains(t, stderr.String(), "unknown check: nonsense")

	lintChecks = ""
	stderr.Reset()
	assert.Equal(t, 2, lintExec(nil, &stdout, &stderr, []string{"does-not-exist.dan"}))

	stderr.Reset()
	assert.Equal(t, 2, lintExec(strings.NewReader("(define"), &stdout, &stderr, nil))
}

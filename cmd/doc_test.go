// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/daniel/docs"
)

func resetDocFlags(t *testing.T) {
	t.Cleanup(func() {
		docModule = false
		docSourceFile = ""
		docListModules = false
		docMissing = false
	})
}

func TestDocCommand_flags(t *testing.T) {
	assert.Equal(t, "doc [flags] QUERY", docCmd.Use)
	for _, name := range []string{"module", "source-file", "list-modules", "missing", "guide"} {
		assert.NotNil(t, docCmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLangGuide(t *testing.T) {
	assert.True(t, strings.HasPrefix(docs.LangGuide, "# The daniel language\n"))
	for _, form := range []string{"define", "defmacro", "class", "import", "async", "try"} {
		assert.Contains(t, docs.LangGuide, "("+form+" ", form)
	}
}

func TestDocExec(t *testing.T) {
	resetDocFlags(t)
	var out bytes.Buffer
	require.NoError(t, docExec(&out, []string{"car"}))
	assert.Contains(t, out.String(), "car")

	out.Reset()
	require.NoError(t, docExec(&out, []string{"String.capitalize"}))
	assert.Contains(t, out.String(), "capitalize")

	out.Reset()
	require.NoError(t, docExec(&out, []string{"if"}))
	assert.Contains(t, out.String(), "special operator if")

	assert.Error(t, docExec(&out, []string{"no-such-binding"}))
	assert.Error(t, docExec(&out, []string{"Nope.thing"}))
}

func TestDocExec_module(t *testing.T) {
	resetDocFlags(t)
	var out bytes.Buffer
	docModule = true
	require.NoError(t, docExec(&out, []string{"Math"}))
	assert.Contains(t, out.String(), "module Math")
	assert.Contains(t, out.String(), "sqrt")

	docModule = false
	docListModules = true
	out.Reset()
	require.NoError(t, docExec(&out, nil))
	for _, name := range []string{"Core", "String", "Testing", "YAML"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestDocExec_sourceFile(t *testing.T) {
	resetDocFlags(t)
	path := filepath.Join(t.TempDir(), "shapes.dan")
	require.NoError(t, os.WriteFile(path, []byte(`
(define (area r)
  "Returns the area of a circle of radius r."
  (* 3 r r))
`), 0o600))
	docSourceFile = path
	var out bytes.Buffer
	require.NoError(t, docExec(&out, []string{"area"}))
	assert.Contains(t, out.String(), "Returns the area of a circle of radius r.")
}

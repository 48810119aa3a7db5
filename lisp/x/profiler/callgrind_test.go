package profiler_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/daniel/lisp/x/profiler"
)

func TestNewCallgrind(t *testing.T) {
	env := newProfiledEnv(t)
	var out bytes.Buffer
	prof := profiler.NewCallgrindProfiler(env.Runtime)
	assert.Error(t, prof.Enable(), "enabled without output")
	require.NoError(t, prof.SetWriter(&out))
	require.NoError(t, prof.Enable())
	assert.True(t, prof.IsEnabled())
	assert.Error(t, prof.SetWriter(&out))

	runProgram(t, env)
	require.NoError(t, prof.Complete())
	assert.False(t, prof.IsEnabled())

	profile := out.String()
	assert.True(t, strings.HasPrefix(profile, "version: 1\ncreator: daniel "))
	assert.Contains(t, profile, "events: Time_(ns) Memory_(bytes)")
	assert.Contains(t, profile, ") recurse-it\n")
	assert.Contains(t, profile, ") add-it\n")
	assert.Contains(t, profile, ") ENTRYPOINT\n")
	assert.Contains(t, profile, "\nsummary: ")
	// recurse-it calls itself twice before calling add-it.
	assert.Equal(t, 1, strings.Count(profile, ") recurse-it\n"), "names are written in full once")
	assert.Contains(t, profile, "\ncalls=1 ")
	assert.Equal(t, strings.Count(profile, "\ncfn="), strings.Count(profile, "\ncalls=1 "))
}

func TestCallgrindDocFilter(t *testing.T) {
	env := newProfiledEnv(t)
	var out bytes.Buffer
	prof := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithDocFilter(), profiler.WithDocLabeler())
	require.NoError(t, prof.SetWriter(&out))
	assert.Error(t, prof.Complete(), "completed before enabled")
	require.NoError(t, prof.Enable())
	runProgram(t, env)
	require.NoError(t, prof.Complete())

	profile := out.String()
	assert.Contains(t, profile, ") Add_It\n")
	assert.Contains(t, profile, ") sum-all\n")
	assert.NotContains(t, profile, "recurse-it")
	// Four calls of add-it, one of sum-all and the entry point.
	assert.Equal(t, 6, strings.Count(profile, "\nfn="))
}

func TestCallgrindSetFile(t *testing.T) {
	env := newProfiledEnv(t)
	prof := profiler.NewCallgrindProfiler(env.Runtime)
	require.NoError(t, prof.SetFile(filepath.Join(t.TempDir(), "callgrind.out")))
	require.NoError(t, prof.Enable())
	assert.Error(t, prof.Enable())
	runProgram(t, env)
	assert.NoError(t, prof.Complete())
}

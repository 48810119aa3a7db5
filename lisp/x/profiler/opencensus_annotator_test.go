package profiler_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/trace"

	"github.com/luthersystems/daniel/lisp/x/profiler"
)

// recordingExporter keeps the spans it is given in the order they end.
type recordingExporter struct {
	mu    sync.Mutex
	spans []*trace.SpanData
}

func (e *recordingExporter) ExportSpan(sd *trace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, sd)
}

func TestNewOpenCensusAnnotator(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	exporter := &recordingExporter{}
	trace.RegisterExporter(exporter)
	t.Cleanup(func() { trace.UnregisterExporter(exporter) })

	env := newProfiledEnv(t)
	ppa := profiler.NewOpenCensusAnnotator(env.Runtime, context.Background(), profiler.WithDocFilter())
	require.NoError(t, ppa.Enable())
	runProgram(t, env)
	require.NoError(t, ppa.Complete())

	require.Len(t, exporter.spans, 5)
	for i, sd := range exporter.spans {
		if i == 3 {
			assert.True(t, strings.HasSuffix(sd.Name, ":sum-all"), sd.Name)
			continue
		}
		assert.True(t, strings.HasSuffix(sd.Name, ":add-it"), sd.Name)
		require.NotEmpty(t, sd.Annotations)
		assert.Equal(t, "test.dan", sd.Annotations[0].Attributes["file"])
	}
	assert.Equal(t, exporter.spans[3].SpanID, exporter.spans[1].ParentSpanID)
}

func TestOpenCensusAnnotatorContext(t *testing.T) {
	env := newProfiledEnv(t)
	ppa := profiler.NewOpenCensusAnnotator(env.Runtime, nil)
	assert.Error(t, ppa.Enable())
	assert.Error(t, ppa.EnableWithContext(nil)) //nolint:staticcheck // nil context is the case under test
}

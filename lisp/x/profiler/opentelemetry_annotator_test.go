package profiler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/daniel/lisp/x/profiler"
)

func newInMemoryTracer(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := newInMemoryTracer(t)
	env := newProfiledEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	assert.Same(t, env.Runtime.Profiler, ppa)
	runProgram(t, env)
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.GreaterOrEqual(t, len(spans), 5, "Expected a span per call")
	var found bool
	for _, span := range spans {
		if span.Name != "recurse-it" {
			continue
		}
		found = true
		var fn string
		for _, attr := range span.Attributes {
			if attr.Key == "code.function" {
				fn = attr.Value.AsString()
			}
		}
		assert.Equal(t, "recurse-it", fn)
	}
	assert.True(t, found, "no span for recurse-it")
}

func TestNewOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := newInMemoryTracer(t)
	env := newProfiledEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(),
		profiler.WithDocFilter(),
		profiler.WithDocLabeler())
	require.NoError(t, ppa.Enable())
	runProgram(t, env)
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	var names []string
	for _, span := range spans {
		names = append(names, span.Name)
	}
	require.Equal(t, []string{"Add_It", "Add_It", "Add_It", "sum-all", "Add_It"}, names)
	// The untraced lambda does not break the span hierarchy.
	assert.Equal(t, spans[3].SpanContext.SpanID(), spans[1].Parent.SpanID())
	assert.Equal(t, spans[3].SpanContext.SpanID(), spans[2].Parent.SpanID())
	assert.False(t, spans[4].Parent.IsValid())
}

func TestOpenTelemetryAnnotatorContext(t *testing.T) {
	env := newProfiledEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, nil)
	assert.Error(t, ppa.Enable())
}

func TestOpenTelemetryAnnotatorTracerName(t *testing.T) {
	exporter := newInMemoryTracer(t)
	env := newProfiledEnv(t)
	ctx := profiler.WithTracerName(context.Background(), "scripts")
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, ctx)
	require.NoError(t, ppa.Enable())
	runProgram(t, env)

	addIt, ok := env.Lookup("add-it")
	require.True(t, ok)
	ppa.Start(addIt)
	require.NoError(t, ppa.Complete(), "open spans are ended")

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	var builtins, defined int
	for _, span := range spans {
		assert.Equal(t, "scripts", span.InstrumentationLibrary.Name)
		for _, attr := range span.Attributes {
			if attr.Key == profiler.BuiltinAttribute && attr.Value.AsBool() {
				builtins++
			}
			if attr.Key == "code.filepath" {
				assert.Equal(t, "test.dan", attr.Value.AsString())
				defined++
			}
		}
	}
	assert.Positive(t, builtins, "calls to + are spans of builtins")
	assert.Positive(t, defined)
	assert.Equal(t, "add-it", spans[len(spans)-1].Name)
}

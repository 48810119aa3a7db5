package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/daniel/lisp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName names the tracer used when the parent context does not
// carry one set by WithTracerName.
const DefaultTracerName = "daniel"

// BuiltinAttribute marks spans of functions implemented in Go.
const BuiltinAttribute = attribute.Key("daniel.builtin")

type tracerNameKey struct{}

// WithTracerName returns a copy of ctx which makes an OpenTelemetry
// annotator created with it start spans from the named tracer.
func WithTracerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, tracerNameKey{}, name)
}

var _ lisp.Profiler = &otelAnnotator{}

// otelAnnotator starts a span for each traced call.  Spans of nested calls
// are children of the span of the innermost traced caller.
type otelAnnotator struct {
	profiler
	tracer trace.Tracer
	root   context.Context
	stack  []context.Context
}

// NewOpenTelemetryAnnotator returns a profiler that starts a span for each
// traced function call beneath the span carried by parentContext.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *otelAnnotator {
	p := &otelAnnotator{
		profiler: profiler{runtime: runtime},
		root:     parentContext,
	}
	p.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	if p.root == nil {
		return errors.New("opentelemetry annotator requires a parent context")
	}
	name, ok := p.root.Value(tracerNameKey{}).(string)
	if !ok {
		name = DefaultTracerName
	}
	p.tracer = otel.GetTracerProvider().Tracer(name)
	p.stack = []context.Context{p.root}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete ends any spans left open by calls which have not returned.
func (p *otelAnnotator) Complete() error {
	for len(p.stack) > 1 {
		p.popSpan()
	}
	return p.profiler.Complete()
}

func (p *otelAnnotator) popSpan() {
	n := len(p.stack) - 1
	trace.SpanFromContext(p.stack[n]).End()
	p.stack = p.stack[:n]
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, funName := p.prettyFunName(fun)
	ctx, _ := p.tracer.Start(p.stack[len(p.stack)-1], label,
		trace.WithAttributes(codeAttributes(fun, funName)...))
	p.stack = append(p.stack, ctx)
	depth := len(p.stack)
	return func() {
		for len(p.stack) >= depth {
			p.popSpan()
		}
	}
}

func codeAttributes(fun *lisp.LVal, funName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeNamespace(funNamespace(fun)),
		semconv.CodeFunction(funName),
	}
	loc := getSourceLoc(fun)
	if loc == nil {
		return append(attrs, BuiltinAttribute.Bool(true))
	}
	return append(attrs,
		semconv.CodeFilepath(loc.File),
		semconv.CodeLineNumber(loc.Line),
		semconv.CodeColumn(loc.Col),
	)
}

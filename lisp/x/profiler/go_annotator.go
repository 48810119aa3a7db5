package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/daniel/lisp"
)

// Labels attached to pprof samples taken while a daniel function runs.
const (
	PprofFunctionLabel = "daniel_function"
	PprofModuleLabel   = "daniel_module"
)

// pprofAnnotator labels the goroutine evaluating a program so that CPU
// samples can be attributed to daniel functions, e.g. with
// `go tool pprof -tagfocus daniel_function=fib`.  The annotator does not
// start CPU profiling itself.  Samples are taken at a fixed 100Hz so very
// short calls are rarely attributed.
type pprofAnnotator struct {
	profiler
	contexts []context.Context
}

var _ lisp.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler that labels pprof samples with the
// function being evaluated and the module that defined it.  Labels are added
// to those carried by parentContext.
func NewPprofAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *pprofAnnotator {
	if parentContext == nil {
		parentContext = context.Background()
	}
	p := &pprofAnnotator{
		profiler: profiler{runtime: runtime},
		contexts: []context.Context{parentContext},
	}
	p.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

func (p *pprofAnnotator) Complete() error {
	p.contexts = p.contexts[:1]
	pprof.SetGoroutineLabels(p.contexts[0])
	return p.profiler.Complete()
}

// Labels returns the labels currently applied to the evaluating goroutine.
func (p *pprofAnnotator) Labels() map[string]string {
	labels := make(map[string]string)
	pprof.ForLabels(p.current(), func(k, v string) bool {
		labels[k] = v
		return true
	})
	return labels
}

func (p *pprofAnnotator) current() context.Context {
	return p.contexts[len(p.contexts)-1]
}

func (p *pprofAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	ctx := pprof.WithLabels(p.current(), pprof.Labels(
		PprofFunctionLabel, label,
		PprofModuleLabel, funNamespace(fun),
	))
	p.contexts = append(p.contexts, ctx)
	pprof.SetGoroutineLabels(ctx)
	depth := len(p.contexts) - 1
	return func() {
		if depth < len(p.contexts) {
			p.contexts = p.contexts[:depth]
		}
		pprof.SetGoroutineLabels(p.current())
	}
}

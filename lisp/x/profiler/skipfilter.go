package profiler

import (
	"regexp"

	"github.com/luthersystems/daniel/lisp"
)

// SkipFilter returns true for functions that should not be traced.
type SkipFilter func(fun *lisp.LVal) bool

// defaultSkipFilter skips everything that is not a function.  Special
// operators never pass through the call path but are excluded regardless.
func defaultSkipFilter(fun *lisp.LVal) bool {
	if fun.Type != lisp.LFun {
		return true
	}
	fd := fun.FunData()
	return fd == nil || fd.Special
}

// WithDocFilter filters to only include spans for functions whose
// docstring denotes tracing.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string used to enable tracing in a profiler
// configured WithDocFilter. All functions with a docstring that
// contains this string will be traced.
const DocTrace = "@trace"

var docTraceRegExp = regexp.MustCompile(DocTrace)

func docSkipFilter(fun *lisp.LVal) bool {
	docStr := fun.Docstring()
	if docStr == "" {
		return true
	}
	// do not skip docs that include trace constant
	return !docTraceRegExp.MatchString(docStr)
}

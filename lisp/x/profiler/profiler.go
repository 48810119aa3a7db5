package profiler

import (
	"fmt"
	"regexp"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

func (p *profiler) Complete() error {
	p.enabled = false
	return nil
}

// builtinRegex matches the FID given to functions exported by native
// modules, e.g. "<builtin Core.car>".
var builtinRegex = regexp.MustCompile(`^<builtin ([^.>]+)\.(.+)>$`)

// defaultFunName returns the name fun was defined with.  Anonymous
// functions are named "lambda".
func defaultFunName(fun *lisp.LVal) string {
	if fun.Type != lisp.LFun {
		return ""
	}
	fd := fun.FunData()
	if fd == nil {
		return ""
	}
	if fd.Name == "" {
		if m := builtinRegex.FindStringSubmatch(fd.FID); m != nil {
			return m[2]
		}
	}
	return fd.DisplayName()
}

// funNamespace returns the module a function belongs to.  Builtins carry
// their module in their FID while closures use the name of the scope they
// were defined in.
func funNamespace(fun *lisp.LVal) string {
	fd := fun.FunData()
	if fd == nil {
		return ""
	}
	if m := builtinRegex.FindStringSubmatch(fd.FID); m != nil {
		return m[1]
	}
	if fd.Env != nil && fd.Env.Name != "" {
		return fd.Env.Name
	}
	return "main"
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := defaultFunName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(p.runtime, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}
	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

// getSourceLoc returns the location fun was defined at.  Builtins have no
// meaningful location and return nil.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source == nil || fun.Source.Pos < 0 {
		return nil
	}
	return fun.Source
}

func getSource(fun *lisp.LVal) (string, int) {
	loc := getSourceLoc(fun)
	if loc == nil {
		return "no-source", 0
	}
	return loc.File, loc.Line
}

// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// DefaultMaxMacroExpansionDepth is the number of successive macro expansions
// allowed while evaluating one expression.
const DefaultMaxMacroExpansionDepth = 1000

// DefaultMaxStackHeight is the default limit on the number of frames in a
// Runtime's call stack.
const DefaultMaxStackHeight = 10000

// Runtime is an object underlying a family of tree of LEnv values.  It is
// responsible for holding shared environment state, generating identifiers,
// and writing debugging output to a stream (typically os.Stderr).
type Runtime struct {
	Stderr    io.Writer
	Stdout    io.Writer
	Stdin     io.Reader
	Stack     *CallStack
	Reader    Reader
	Library   SourceLibrary
	Logger    *slog.Logger
	Profiler  Profiler
	Loader    *ModuleLoader
	Scheduler *Scheduler
	// Global is the root environment holding the Core bindings.  Modules are
	// evaluated in children of Global.
	Global *LEnv
	// Argv holds the arguments of the running script.
	Argv                   []string
	MaxMacroExpansionDepth int
	specialOps             map[string]*LVal
	objectClass            *LVal
	exceptionClass         *LVal
	numenv                 atomicCounter
	numsym                 atomicCounter
}

// StandardRuntime returns a new Runtime with Stderr set to os.Stderr and
// Stdout set to os.Stdout.
func StandardRuntime() *Runtime {
	rt := &Runtime{
		Stderr:                 os.Stderr,
		Stdout:                 os.Stdout,
		Stdin:                  os.Stdin,
		Stack:                  &CallStack{MaxHeight: DefaultMaxStackHeight},
		Logger:                 slog.New(slog.NewTextHandler(io.Discard, nil)),
		Loader:                 NewModuleLoader(),
		MaxMacroExpansionDepth: DefaultMaxMacroExpansionDepth,
		specialOps:             make(map[string]*LVal),
	}
	rt.Scheduler = newScheduler(rt)
	return rt
}

func (r *Runtime) GenEnvID() uint {
	return r.numenv.Add(1)
}

func (r *Runtime) GenSym() string {
	return fmt.Sprintf("gen%08d", r.numsym.Add(1))
}

// SpecialOp returns the special operator bound to name, or nil.
func (r *Runtime) SpecialOp(name string) *LVal {
	return r.specialOps[name]
}

// Wait blocks until all host work started by promises has finished.
func (r *Runtime) Wait() {
	r.Scheduler.Wait()
}

func (r *Runtime) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// sourceContext uses the CallStack to determine the location/name of the
// currently executing file.
func (r *Runtime) sourceContext() SourceContext {
	top := r.Stack.Top()
	if top != nil && top.Source != nil {
		return &sourceContext{
			name: top.Source.File,
			loc:  top.Source.Path,
		}
	}
	return &sourceContext{}
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}

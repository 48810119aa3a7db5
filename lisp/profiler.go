// Copyright © 2018 The ELPS authors

package lisp

// Profiler observes function calls made by a Runtime.
type Profiler interface {
	// IsEnabled returns true if the profiler is collecting data.
	IsEnabled() bool
	// Enable attaches the profiler to its runtime and begins collection.
	Enable() error
	// Start marks the beginning of a call to fun.  The returned function
	// marks the end of the call.
	Start(fun *LVal) func()
	// Complete ends the profiling session and flushes any output.
	Complete() error
}

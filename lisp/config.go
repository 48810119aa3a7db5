// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"
	"io/fs"
	"log/slog"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) *LVal

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the call stack height to exceed n.  A value of
// zero removes the limit.
func WithMaximumStackHeight(n int) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stack.MaxHeight = n
		return Nil()
	}
}

// WithLoader returns a Config that executes fn.  Despite fn having the same
// signature as a Config WithLoader allows a Loader to function more like the
// LEnv methods LoadFile, LoadString, etc.
func WithLoader(fn Loader) Config {
	return func(env *LEnv) *LVal {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
		env.Runtime.Scheduler.Drain()
		return Nil()
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Reader = r
		return Nil()
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		return Nil()
	}
}

// WithStdout returns a Config that makes print and println write to w
// instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stdout = w
		return Nil()
	}
}

// WithStdin returns a Config that makes environments read input from r.
func WithStdin(r io.Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stdin = r
		return Nil()
	}
}

// WithLogger returns a Config that makes the module loader and the async
// scheduler log to logger.
func WithLogger(logger *slog.Logger) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Logger = logger
		return Nil()
	}
}

// WithLibrary returns a Config that makes environments use l
// as a source library.
func WithLibrary(l SourceLibrary) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Library = l
		return Nil()
	}
}

// WithModulePaths returns a Config that adds directories searched for
// modules imported by bare name.
func WithModulePaths(dirs ...string) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Loader.SearchPaths = append(env.Runtime.Loader.SearchPaths, dirs...)
		return Nil()
	}
}

// WithStdLib returns a Config that resolves bare module names against the
// source modules in fsys.
func WithStdLib(fsys fs.FS) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Loader.StdLib = fsys
		return Nil()
	}
}

// WithNativeModules returns a Config that registers native modules with the
// runtime's module loader.
func WithNativeModules(mods ...*NativeModule) Config {
	return func(env *LEnv) *LVal {
		for _, m := range mods {
			lerr := env.Runtime.Loader.Register(env, m)
			if lerr.Type == LError {
				return lerr
			}
		}
		return Nil()
	}
}

// WithArgv returns a Config that binds argv to the list of script
// arguments.
func WithArgv(args []string) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Argv = args
		cells := make([]*LVal, len(args))
		for i := range args {
			cells[i] = String(args[i])
		}
		return env.Define("argv", ListOf(cells...))
	}
}

// WithProfiler returns a Config that attaches a profiler to the runtime.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Profiler = p
		return Nil()
	}
}

// WithMaxMacroExpansionDepth returns a Config that limits the number of
// successive macro expansions during evaluation.  This prevents infinite
// macro expansion from exhausting memory.
func WithMaxMacroExpansionDepth(n int) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.MaxMacroExpansionDepth = n
		return Nil()
	}
}

// Copyright © 2018 The ELPS authors

// Package lisplib is used to conveniently load the standard library for the
// daniel environment
package lisplib

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/libbase64"
	"github.com/luthersystems/daniel/lisp/lisplib/libhelp"
	"github.com/luthersystems/daniel/lisp/lisplib/libjson"
	"github.com/luthersystems/daniel/lisp/lisplib/libmath"
	"github.com/luthersystems/daniel/lisp/lisplib/libregexp"
	"github.com/luthersystems/daniel/lisp/lisplib/libstring"
	"github.com/luthersystems/daniel/lisp/lisplib/libtesting"
	"github.com/luthersystems/daniel/lisp/lisplib/libtime"
	"github.com/luthersystems/daniel/lisp/lisplib/libyaml"
	"github.com/luthersystems/daniel/parser"
)

//go:embed stdlib/*.dan
var stdlib embed.FS

// StdLib returns the standard source modules, resolved by bare module name.
func StdLib() fs.FS {
	sub, err := fs.Sub(stdlib, "stdlib")
	if err != nil {
		panic(err)
	}
	return sub
}

// Modules returns the native modules of the standard library.  Each call
// returns a fresh Testing module with an empty suite.
func Modules() []*lisp.NativeModule {
	return []*lisp.NativeModule{
		libstring.Module(),
		libmath.Module(),
		libbase64.Module(),
		libjson.Module(),
		libyaml.Module(),
		libregexp.Module(),
		libtime.Module(),
		libhelp.Module(),
		libtesting.Module(libtesting.NewTestSuite()),
	}
}

// LoadLibrary registers the standard library modules with env's module
// loader.  Modules are instantiated when first imported.
func LoadLibrary(env *lisp.LEnv) *lisp.LVal {
	for _, m := range Modules() {
		e := env.Runtime.Loader.Register(env, m)
		if e.Type == lisp.LError {
			return e
		}
	}
	if env.Runtime.Loader.StdLib == nil {
		env.Runtime.Loader.StdLib = StdLib()
	}
	return lisp.Nil()
}

// NewDocEnv creates a standard environment with the stdlib loaded, suitable
// for documentation queries.  Embedders can register their own modules with
// the env or create their own env and use the libhelp.Render* functions and
// libhelp.CheckMissing directly.
func NewDocEnv() (*lisp.LEnv, error) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{}),
		lisp.WithStderr(&bytes.Buffer{}),
		lisp.WithLoader(LoadLibrary),
	)
	if !rc.IsNil() {
		return nil, fmt.Errorf("initialize-user-env returned non-nil: %v", rc)
	}
	return env, nil
}

// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib"
	"github.com/luthersystems/daniel/parser"
)

// envOptions returns the lisp configuration shared by every command.  The
// reader, module search path, and limits come from flags, the config file,
// or the environment through viper.
func envOptions(stdout, stderr io.Writer) ([]lisp.Config, error) {
	reader, ok := parser.ReaderNamed(viper.GetString("reader"))
	if !ok {
		return nil, fmt.Errorf("unknown reader: %q", viper.GetString("reader"))
	}
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts := []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithLibrary(&lisp.RelativeFileSystemLibrary{}),
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
		lisp.WithLogger(logger),
	}
	if paths := viper.GetStringSlice("module-path"); len(paths) > 0 {
		opts = append(opts, lisp.WithModulePaths(paths...))
	}
	if n := viper.GetInt("max-stack-height"); n > 0 {
		opts = append(opts, lisp.WithMaximumStackHeight(n))
	}
	if n := viper.GetInt("max-macro-expansion"); n > 0 {
		opts = append(opts, lisp.WithMaxMacroExpansionDepth(n))
	}
	return opts, nil
}

// newEnv creates a root environment with the standard library registered.
// Additional configuration is applied before the library is loaded.
func newEnv(stdout, stderr io.Writer, extra ...lisp.Config) (*lisp.LEnv, error) {
	opts, err := envOptions(stdout, stderr)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)
	opts = append(opts, lisp.WithLoader(lisplib.LoadLibrary))
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, opts...)
	if rc.Type == lisp.LError {
		return nil, lisp.GoError(rc)
	}
	return env, nil
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

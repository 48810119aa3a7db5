// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/x/profiler"
	"github.com/luthersystems/daniel/repl"
)

var (
	runExpression  bool
	runPrint       bool
	runInteractive bool
	runCallgrind   string
	runPprofLabels bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE [ARG...]",
	Short: "Run daniel code",
	Long: `Run daniel code supplied via the command line or a file.

A file is loaded as the main module. Arguments following the file are bound
to argv as a list of strings. With -e every argument is evaluated as an
expression instead. With -i the REPL is started once the file has loaded,
with the file's bindings in scope.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runMain(os.Stdout, os.Stderr, args))
	},
}

func runMain(stdout, stderr io.Writer, args []string) int {
	var extra []lisp.Config
	if !runExpression {
		extra = append(extra, lisp.WithArgv(args[1:]))
	}
	env, err := newEnv(stdout, stderr, extra...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	complete, err := startProfiler(env)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		if err := complete(); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}()

	if runExpression {
		for _, expr := range args {
			res := env.LoadString("-e", expr)
			if res.Type == lisp.LError {
				renderLispError(res)
				return 1
			}
			if runPrint {
				fmt.Fprintln(stdout, res)
			}
		}
		return 0
	}

	res := env.LoadFile(args[0])
	if res.Type == lisp.LError {
		renderLispError(res)
		return 1
	}
	if runPrint {
		fmt.Fprintln(stdout, res)
	}
	if runInteractive {
		prompt := strings.TrimSuffix(filepath.Base(args[0]), ".dan") + "> "
		repl.RunEnv(env, prompt, strings.Repeat(" ", len(prompt)),
			repl.WithHistoryFile(viper.GetString("history-file")))
	}
	return 0
}

// startProfiler attaches the profiler selected by flags to env.  The
// returned function completes the profile.
func startProfiler(env *lisp.LEnv) (func() error, error) {
	var prof lisp.Profiler
	switch {
	case runCallgrind != "":
		cg := profiler.NewCallgrindProfiler(env.Runtime)
		if err := cg.SetFile(runCallgrind); err != nil {
			return nil, err
		}
		prof = cg
	case runPprofLabels:
		prof = profiler.NewPprofAnnotator(env.Runtime, context.Background())
	default:
		return func() error { return nil }, nil
	}
	if err := prof.Enable(); err != nil {
		return nil, err
	}
	return prof.Complete, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Arguments after the file belong to the script.
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false,
		"Start a REPL after the file has been loaded")
	runCmd.Flags().StringVar(&runCallgrind, "callgrind", "",
		"Write a callgrind profile of the program to the given file")
	runCmd.Flags().BoolVar(&runPprofLabels, "pprof-labels", false,
		"Label pprof samples with the lisp function being evaluated")
}

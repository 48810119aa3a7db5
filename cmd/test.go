// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/libtesting"
)

var (
	testExcludes []string
	testRun      string
	testVerbose  bool
)

var testCmd = &cobra.Command{
	Use:   "test [flags] PATH...",
	Short: "Run tests declared with the Testing module",
	Long: `Load each test file and run the tests it declares with the Testing
module. A path ending in /... selects every *_test.dan file beneath the
directory.

Examples:
  daniel test math_test.dan                 Run the tests in one file
  daniel test ./...                         Run all tests under the current directory
  daniel test --run 'parse' ./...           Run tests whose names match a regexp
  daniel test --exclude='vendor' ./...      Skip files beneath vendor directories`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := expandArgs(args, "_test.dan")
		exitOnError(err)
		files = filterExcludes(files, testExcludes)
		var filter *regexp.Regexp
		if testRun != "" {
			filter, err = regexp.Compile(testRun)
			exitOnError(err)
		}
		failed := false
		for _, path := range files {
			if !runTestFile(os.Stdout, path, filter) {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

// runTestFile runs the tests declared in path and reports their results to
// w.  It returns false if the file failed to load or any test failed.
func runTestFile(w io.Writer, path string, filter *regexp.Regexp) bool {
	start := time.Now()
	env, err := newEnv(w, w)
	if err != nil {
		fmt.Fprintf(w, "FAIL\t%s\t%v\n", path, err)
		return false
	}
	res := env.LoadFile(path)
	if res.Type == lisp.LError {
		fmt.Fprintf(w, "FAIL\t%s\t[load failed]\n", path)
		renderLispError(res)
		return false
	}
	suite := libtesting.EnvTestSuite(env)
	if suite == nil {
		fmt.Fprintf(w, "FAIL\t%s\t[no test suite]\n", path)
		return false
	}
	ok := true
	ran := 0
	for i, name := range suite.Tests() {
		if filter != nil && !filter.MatchString(name) {
			continue
		}
		ran++
		tstart := time.Now()
		v := env.FunCall(suite.Test(i).Fun, nil)
		if v.Type == lisp.LPromise {
			v = env.Runtime.Scheduler.Await(env, v)
		}
		env.Runtime.Scheduler.Drain()
		elapsed := time.Since(tstart).Seconds()
		if v.Type == lisp.LError {
			ok = false
			fmt.Fprintf(w, "--- FAIL: %s (%.2fs)\n", name, elapsed)
			renderLispError(v)
			continue
		}
		if testVerbose {
			fmt.Fprintf(w, "--- PASS: %s (%.2fs)\n", name, elapsed)
		}
	}
	status := "ok"
	if !ok {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s\t%s\t%.3fs\t%d tests\n", status, path, time.Since(start).Seconds(), ran)
	return ok
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringArrayVar(&testExcludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	testCmd.Flags().StringVar(&testRun, "run", "",
		"Run only tests whose names match the regular expression.")
	testCmd.Flags().BoolVar(&testVerbose, "show-passed", false,
		"Report passing tests as well as failures.")
}

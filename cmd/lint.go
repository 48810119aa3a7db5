// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/daniel/lint"
)

var (
	lintJSON     bool
	lintChecks   string
	lintListAll  bool
	lintExcludes []string
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] [files...]",
	Short: "Run static analysis checks on daniel source files",
	Long: `Run static analysis checks on daniel source files.

The linter reports likely mistakes in daniel code, similar to "go vet" for
Go. Each check is an independent analyzer that examines the forms read from a
file. With no files the source is read from stdin.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  daniel lint file.dan                        Lint a single file
  daniel lint ./...                           Lint every .dan file beneath a directory
  daniel lint --json file.dan                 Output diagnostics as JSON
  daniel lint --checks=if-arity file.dan      Run only specific checks
  daniel lint --list                          List available checks
  cat file.dan | daniel lint                  Lint from stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(lintExec(os.Stdin, os.Stdout, os.Stderr, args))
	},
}

// lintExec runs the lint command and returns its exit code.
func lintExec(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	if lintListAll {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}
	var names []string
	for _, name := range strings.Split(lintChecks, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	analyzers, err := lint.Select(names)
	if err != nil {
		fmt.Fprintf(stderr, "daniel lint: %v\n", err)
		return 2
	}
	l := &lint.Linter{Analyzers: analyzers}

	var all []lint.Diagnostic
	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "reading stdin: %v\n", err)
			return 2
		}
		all, err = l.LintFile(src, "<stdin>")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	} else {
		files, err := expandArgs(args, ".dan")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		for _, path := range filterExcludes(files, lintExcludes) {
			diags, err := lintFile(l, path)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 2
			}
			all = append(all, diags...)
		}
	}
	if len(all) == 0 {
		return 0
	}
	if lintJSON {
		if err := lint.FormatJSON(stdout, all); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 1
	}
	r := newRenderer()
	for _, d := range all {
		_ = r.Render(stderr, d.Rendered())
	}
	return 1
}

func lintFile(l *lint.Linter, path string) ([]lint.Diagnostic, error) {
	src, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l.LintFile(src, path)
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintJSON, "json", false,
		"Output diagnostics as JSON.")
	lintCmd.Flags().StringVar(&lintChecks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	lintCmd.Flags().BoolVar(&lintListAll, "list", false,
		"List available checks and exit.")
	lintCmd.Flags().StringArrayVar(&lintExcludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
}

// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/daniel/docs"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/libhelp"
)

var (
	docModule      bool
	docSourceFile  string
	docListModules bool
	docMissing     bool
	docGuide       bool
)

// docCmd represents the doc command
var docCmd = &cobra.Command{
	Use:   "doc [flags] QUERY",
	Short: "Show documentation for functions, classes, and modules",
	Long: `Show built-in documentation for functions, special operators, classes,
and modules.

By default, looks up a binding by name. A name of the form Module.name
imports the module and documents one of its exports. Use -m to document all
exports of a module. Use -f to load a source file first (useful for
documenting your own code).

Examples:
  daniel doc map                      Show docs for the map function
  daniel doc if                       Show docs for the if special operator
  daniel doc String.split             Show docs for a module export
  daniel doc -m Math                  List all exports of the Math module
  daniel doc -f shapes.dan Circle     Load a file, then document Circle
  daniel doc -l                       List the registered native modules
  daniel doc --guide                  Print the language guide`,
	Run: func(cmd *cobra.Command, args []string) {
		if docGuide {
			fmt.Print(docs.LangGuide)
			return
		}
		if !docListModules && !docMissing && len(args) != 1 {
			_ = cmd.Help()
			os.Exit(1)
		}
		out := bufio.NewWriter(os.Stdout)
		err := docExec(out, args)
		_ = out.Flush()
		exitOnError(err)
	},
}

func docExec(w io.Writer, args []string) error {
	// environment output is typically discarded but a buffer is maintained in
	// case of an error during initialization (important when loading user
	// source files).
	errbuf := &bytes.Buffer{}
	env, err := newEnv(errbuf, errbuf)
	if err != nil {
		_, _ = os.Stderr.Write(errbuf.Bytes())
		return err
	}
	if docSourceFile != "" {
		res := env.LoadFile(docSourceFile)
		if res.Type == lisp.LError {
			_, _ = os.Stderr.Write(errbuf.Bytes())
			return lisp.GoError(res)
		}
	}
	switch {
	case docListModules:
		return libhelp.RenderModuleList(w, env)
	case docMissing:
		return renderMissing(w, env)
	case docModule:
		mod := env.Import(lisp.Symbol(args[0]))
		if mod.Type == lisp.LError {
			return lisp.GoError(mod)
		}
		return libhelp.RenderModule(w, mod)
	}
	return renderQuery(w, env, args[0])
}

func renderQuery(w io.Writer, env *lisp.LEnv, query string) error {
	if head, name, ok := strings.Cut(query, "."); ok {
		mod, found := env.Lookup(head)
		if !found {
			mod = env.Import(lisp.Symbol(head))
		}
		if mod.Type == lisp.LError {
			return lisp.GoError(mod)
		}
		v := env.GetProp(mod, name)
		if v.Type == lisp.LError {
			return lisp.GoError(v)
		}
		return libhelp.RenderValue(w, v)
	}
	for _, op := range lisp.DefaultSpecialOps() {
		if op.Name() == query {
			_, err := fmt.Fprintf(w, "special operator %s\n%s\n", op.Name(), strings.TrimSpace(op.Docstring()))
			return err
		}
	}
	v, ok := env.Lookup(query)
	if !ok {
		return fmt.Errorf("no binding for %s", query)
	}
	return libhelp.RenderValue(w, v)
}

func renderMissing(w io.Writer, env *lisp.LEnv) error {
	missing := libhelp.CheckMissing(env)
	for _, m := range missing {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", m.Kind, m.Name); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d values have no documentation", len(missing))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(docCmd)

	// Here flags for the doc command are defined
	docCmd.Flags().BoolVarP(&docModule, "module", "m", false,
		"Interpret the argument as a module name.")
	docCmd.Flags().StringVarP(&docSourceFile, "source-file", "f", "",
		"Evaluate a source file before querying documentation (presumably desired docs are in source code).")
	docCmd.Flags().BoolVarP(&docListModules, "list-modules", "l", false,
		"List all native modules registered with the runtime.")
	docCmd.Flags().BoolVar(&docMissing, "missing", false,
		"List builtins and module exports that have no documentation.")
	docCmd.Flags().BoolVar(&docGuide, "guide", false,
		"Print the language guide.")
}

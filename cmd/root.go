// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "daniel",
	Short: "daniel: an embeddable Lisp interpreter",
	Long: `daniel is an embeddable Lisp interpreter implemented in Go. It provides a
standalone CLI for running, testing, and exploring .dan source files.

Getting started:
  daniel run file.dan a b         Run a source file with argv bound to (a b)
  daniel run -e '(+ 1 2)'         Evaluate an expression
  daniel run -i file.dan          Load a file then continue in the REPL
  daniel repl                     Start an interactive REPL
  daniel doc car                  Show documentation for a function
  daniel doc -m String            List the exports of a module
  daniel test ./...               Run the tests declared in .dan files

Language overview:
  Functions are defined with (define (name args) body) and called as (name args).
  Classes are declared with (class Name Parent ...) and built with (new Name ...).
  Modules are files: (import "./util" :as u) binds u, and u.name reads an export.
  Errors are raised with (fail ...) and handled with (try ... (catch e ...)).
  Async functions return promises which are settled with (await p).

Native modules (import by bare name):
  String    String manipulation (upcase, split, join, replace, ...)
  Math      Mathematical functions and constants (pi, e, sqrt, ...)
  JSON      JSON encoding and decoding
  YAML      YAML encoding and decoding
  Regexp    Regular expression matching
  Time      Clock and timers
  Base64    Base64 encoding and decoding
  Testing   Test framework (test, assert=, assert-error, ...)
  Help      Documentation introspection

Configuration is read from $HOME/.daniel.yaml and DANIEL_* environment
variables. Flags take precedence over both.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.daniel.yaml)")
	flags.StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	flags.String("reader", "rd", `Source reader: "rd" or "combinator".`)
	flags.StringSlice("module-path", nil, "Directories searched for bare module names.")
	flags.Int("max-stack-height", 0, "Maximum call stack height (0 uses the default).")
	flags.Int("max-macro-expansion", 0, "Maximum nested macro expansions (0 uses the default).")
	flags.BoolP("verbose", "v", false, "Log module loading and scheduling at debug level.")

	for _, name := range []string{"color", "reader", "module-path", "max-stack-height", "max-macro-expansion", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".daniel" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".daniel")
	}

	viper.SetEnvPrefix("daniel")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	colorFlag = viper.GetString("color")
}

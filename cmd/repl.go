// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/daniel/repl"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive daniel REPL",
	Long: `Start an interactive read-eval-print loop.

Native modules are registered and may be imported by name. Line editing,
symbol completion, and command history are supported via readline. An
expression may span several lines; the prompt is indented while brackets
remain open. Use Ctrl-D to exit.

Example REPL session:
  daniel> (+ 1 2)
  3
  daniel> (define (square x) (* x x))
  nil
  daniel> (square 5)
  25
  daniel> (import Math)
  Module Math
  daniel> Math.pi
  3.141592653589793
  daniel> (import Help :open)
  Module Help
  daniel> (help map)
  ...`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := envOptions(os.Stdout, os.Stderr)
		exitOnError(err)
		repl.RunRepl(filepath.Base(os.Args[0])+"> ",
			repl.WithEnvConfig(opts...),
			repl.WithHistoryFile(viper.GetString("history-file")))
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.PersistentFlags().String("history-file", defaultHistoryFile(),
		"File used to persist REPL history (empty disables history)")
	_ = viper.BindPFlag("history-file", replCmd.PersistentFlags().Lookup("history-file"))
	viper.SetDefault("history-file", defaultHistoryFile())
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".daniel_history")
}

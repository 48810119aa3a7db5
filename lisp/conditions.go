// Copyright © 2024 The ELPS authors

package lisp

// Error condition names.  These are stable API for programmatic error
// classification by embedders and by the REPL.
const (
	CondError           = "error"
	CondLexicalError    = "lexical-error"
	CondParseError      = "parse-error"
	CondUnmatchedSyntax = "unmatched-syntax"
	CondAlreadyDefined  = "already-defined"
	CondUnboundSymbol   = "unbound-symbol"
	CondNotCallable     = "not-callable"
	CondSyntaxError     = "syntax-error"
	CondTypeError       = "type-error"
	CondArityError      = "arity-error"
	CondUnknownModule   = "unknown-module"
	CondCircularDep     = "circular-dependency"
	CondUnresolved      = "unresolved-module"
	CondAlreadyQueued   = "already-queued"
	CondMacroExpansion  = "macro-expansion-limit"
	CondStackOverflow   = "stack-overflow"
	CondException       = "exception"
	CondRuntimeError    = "runtime-exception"
)

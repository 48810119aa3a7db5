// Copyright © 2018 The ELPS authors

package lisp

// Version is the language version reported by the CLI.
const Version = "1.0"

// TrueSymbol is the printed form of the boolean true.  Only false and nil are
// considered false by special forms and functions expecting a boolean.
const TrueSymbol = "true"

// FalseSymbol is the printed form of the boolean false.
const FalseSymbol = "false"

// VarArgSymbol is the symbol that indicates a variadic function argument in a
// function's list of formal arguments.  Functions may have at most one
// variadic argument and it must be the final argument.
const VarArgSymbol = "&"

// Symbols produced by the reader's quote-like prefixes.
const (
	QuoteSymbol         = "quote"
	QuasiquoteSymbol    = "quasiquote"
	UnquoteSymbol       = "unquote"
	SpliceUnquoteSymbol = "splicing-unquote"
)

// DoSymbol heads the implicit block wrapping a program or a function body.
const DoSymbol = "do"

// Names bound inside method bodies.
const (
	ThisSymbol  = "this"
	SuperSymbol = "super"
)

// Class member names with special meaning.  The constructor pseudo-method
// declares a class's fields and the init method runs after construction.
const (
	ConstructorName = "new"
	InitMethodName  = "init"
	StaticKeyword   = "static"
	ExtendsKeyword  = ":extends"
)

// RootClassName is the name of the class every class ultimately extends.
const RootClassName = "Object"

// SourceExt is the file extension of source modules.
const SourceExt = ".dan"

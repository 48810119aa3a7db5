// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/daniel/astutil"
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/token"
)

// AnalyzerIfArity checks that `if` has a test, a then branch and at most one
// else branch.
var AnalyzerIfArity = &Analyzer{
	Name:     "if-arity",
	Doc:      "Check that `if` has two or three arguments.\n\nThe form is (if test then [else]). Anything else fails with a syntax error when evaluated.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "if" {
				return
			}
			argc := astutil.ArgCount(form)
			if argc == 2 || argc == 3 {
				return
			}
			pass.Reportf(sourceOf(form), "if requires a test, a then branch and an optional else branch (got %d arguments)", argc)
		})
		return nil
	},
}

// AnalyzerDefineStructure checks the shape of `define`, `defmacro` and
// `async` definitions.
var AnalyzerDefineStructure = &Analyzer{
	Name:     "define-structure",
	Doc:      "Check for malformed `define`, `defmacro` and `async` forms.\n\nA variable definition is (define name value). A function definition is (define (name param... [& rest]) body...). Parameters must be symbols and the variadic marker must be followed by exactly one name.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			head := astutil.HeadSymbol(form)
			switch head {
			case "define", "defmacro", "async":
			default:
				return
			}
			src := sourceOf(form)
			args := astutil.Args(form)
			if len(args) == 0 {
				pass.Reportf(src, "%s is missing its target", head)
				return
			}
			target := args[0]
			switch target.Type {
			case lisp.LSymbol:
				if head != "define" {
					pass.Reportf(src, "%s requires a signature list, got symbol %s", head, target.Str)
					return
				}
				if len(args) != 2 {
					pass.Reportf(src, "define of %s expects exactly one value (got %d)", target.Str, len(args)-1)
				}
			case lisp.LList:
				checkSignature(pass, head, target, src)
			default:
				pass.Reportf(src, "%s target must be a symbol or a signature list, got %s", head, target.Type)
			}
		})
		return nil
	},
}

func checkSignature(pass *Pass, head string, sig *lisp.LVal, src *token.Location) {
	items := sig.Items()
	if items[0].Type != lisp.LSymbol {
		pass.Reportf(src, "%s name must be a symbol, got %s", head, items[0].Type)
		return
	}
	params := items[1:]
	for i, p := range params {
		if p.Type != lisp.LSymbol {
			pass.Reportf(src, "%s %s: parameter %d is not a symbol", head, items[0].Str, i+1)
			continue
		}
		if p.Str == lisp.VarArgSymbol && i != len(params)-2 {
			pass.Reportf(src, "%s %s: %s must be followed by exactly one parameter", head, items[0].Str, lisp.VarArgSymbol)
		}
	}
}

// AnalyzerLetBindings checks for malformed `let` binding lists.
var AnalyzerLetBindings = &Analyzer{
	Name:     "let-bindings",
	Doc:      "Check for malformed `let` binding lists.\n\nThe first argument to `let` is a list whose items are a bare symbol or a (symbol value) pair. A common mistake is forgetting the outer list: (let (x 1) ...) instead of (let ((x 1)) ...).",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "let" {
				return
			}
			src := sourceOf(form)
			args := astutil.Args(form)
			if len(args) == 0 {
				pass.Reportf(src, "let requires a binding list and body")
				return
			}
			bindings := args[0]
			if bindings.Type != lisp.LList && bindings.Type != lisp.LNil {
				pass.Reportf(src, "let bindings must be a list, got %s", bindings.Type)
				return
			}
			for i, bind := range bindings.Items() {
				bsrc := bindingSource(bind, src)
				switch bind.Type {
				case lisp.LSymbol:
				case lisp.LList:
					name := bind.List().First()
					if name.Type != lisp.LSymbol && astutil.HeadSymbol(name) != "unquote" {
						pass.Reportf(bsrc, "let binding %d: name must be a symbol, got %s", i+1, name.Type)
						continue
					}
					if bind.Len() != 2 {
						pass.Reportf(bsrc, "let binding %d (%s): expected (name value), got %d elements", i+1, name, bind.Len())
					}
				default:
					pass.ReportWithNotes(Diagnostic{
						Pos:     positionOf(bsrc),
						Message: fmt.Sprintf("let binding %d is not a symbol or a list", i+1),
					}, "bindings are written ((name value) ...)")
				}
			}
		})
		return nil
	},
}

func bindingSource(binding *lisp.LVal, fallback *token.Location) *token.Location {
	if binding.Source != nil && binding.Source.Line > 0 {
		return binding.Source
	}
	return fallback
}

// AnalyzerCondStructure checks for malformed `cond` clauses.
var AnalyzerCondStructure = &Analyzer{
	Name:     "cond-structure",
	Doc:      "Check for malformed `cond` clauses.\n\nEach clause must be a non-empty list and an `else` clause, if present, must be last.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "cond" {
				return
			}
			src := sourceOf(form)
			clauses := astutil.Args(form)
			for i, clause := range clauses {
				csrc := bindingSource(clause, src)
				if clause.Type != lisp.LList {
					pass.Reportf(csrc, "cond clause %d is not a non-empty list", i+1)
					continue
				}
				if astutil.HeadSymbol(clause) == "else" && i != len(clauses)-1 {
					pass.Reportf(csrc, "cond else clause must be last (is clause %d of %d)", i+1, len(clauses))
				}
			}
		})
		return nil
	},
}

// AnalyzerTryStructure checks that `try` has a body and a catch clause.
var AnalyzerTryStructure = &Analyzer{
	Name:     "try-structure",
	Doc:      "Check that `try` is written (try expr (catch name handler...)).",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "try" {
				return
			}
			src := sourceOf(form)
			args := astutil.Args(form)
			if len(args) != 2 {
				pass.Reportf(src, "try expects an expression and a catch clause (got %d arguments)", len(args))
				return
			}
			clause := args[1].Items()
			if len(clause) < 2 || astutil.HeadSymbol(args[1]) != "catch" || clause[1].Type != lisp.LSymbol {
				pass.Reportf(src, "try clause must be (catch name handler...)")
			}
		})
		return nil
	},
}

// AnalyzerImportOptions checks the module spec and options of `import`.
var AnalyzerImportOptions = &Analyzer{
	Name:     "import-options",
	Doc:      "Check `import` specs and options.\n\nThe module is a symbol or a string and may be followed by either `:open` or `:as alias`.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "import" {
				return
			}
			src := sourceOf(form)
			args := astutil.Args(form)
			if len(args) == 0 {
				pass.Reportf(src, "import is missing a module")
				return
			}
			if args[0].Type != lisp.LSymbol && args[0].Type != lisp.LString {
				pass.Reportf(src, "import module must be a symbol or a string, got %s", args[0].Type)
			}
			opts := args[1:]
			switch {
			case len(opts) == 0:
			case len(opts) == 1 && isKeyword(opts[0], ":open"):
			case len(opts) == 2 && isKeyword(opts[0], ":as") && opts[1].Type == lisp.LSymbol:
			default:
				pass.Reportf(src, "import expects :open or :as alias after the module")
			}
		})
		return nil
	},
}

func isKeyword(v *lisp.LVal, name string) bool {
	return v.Type == lisp.LKeyword && v.Str == name
}

// AnalyzerProvidePlacement warns when `provide` appears anywhere other than
// the top level of a file or the body of a module form.
var AnalyzerProvidePlacement = &Analyzer{
	Name:     "provide-placement",
	Doc:      "Warn when `provide` is nested inside a function or other expression.\n\n`provide` declares a module's exports. It only has meaning at the top level of a file or directly inside a `module` form.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		astutil.Walk(pass.Exprs, func(node, parent *lisp.LVal, depth int) {
			if astutil.HeadSymbol(node) != "provide" || depth == 0 {
				return
			}
			if depth == 1 && astutil.HeadSymbol(parent) == "module" {
				return
			}
			pass.Reportf(sourceOf(node), "provide should only be used at the top level of a file or module")
		})
		return nil
	},
}

// AnalyzerSetUnbound warns when `set!` assigns a name that nothing in the
// file binds.
var AnalyzerSetUnbound = &Analyzer{
	Name:     "set-unbound",
	Doc:      "Warn when `set!` targets a name the file never binds.\n\n`set!` only mutates an existing binding. Files which open an imported module are skipped because the module may supply the name.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		opened := false
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) == "import" {
				for _, opt := range astutil.Args(form) {
					opened = opened || isKeyword(opt, ":open")
				}
			}
		})
		if opened {
			return nil
		}
		defs := astutil.UserDefined(pass.Exprs)
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if astutil.HeadSymbol(form) != "set!" {
				return
			}
			args := astutil.Args(form)
			if len(args) == 0 {
				return
			}
			src := sourceOf(form)
			target := args[0]
			if target.Type != lisp.LSymbol {
				pass.Report(Diagnostic{
					Pos:      positionOf(src),
					Message:  fmt.Sprintf("set! target must be a symbol, got %s", target.Type),
					Severity: SeverityError,
				})
				return
			}
			if defs[target.Str] {
				return
			}
			if _, ok := builtinArityTable[target.Str]; ok {
				return
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     positionOf(src),
				Message: fmt.Sprintf("set! of %s which is never defined", target.Str),
			}, fmt.Sprintf("use (define %s ...) to create the binding", target.Str))
		})
		return nil
	},
}

// AnalyzerBuiltinArity checks for wrong argument counts to known builtin
// functions and special operators.
var AnalyzerBuiltinArity = &Analyzer{
	Name:     "builtin-arity",
	Doc:      "Check argument counts for calls to builtin functions and special operators.\n\nThe expected counts come from the builtins' formal parameter lists. Names the file binds itself are excluded, as are parameter lists and binding lists.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		userDefs := astutil.UserDefined(pass.Exprs)
		skip := aritySkipNodes(pass.Exprs)
		astutil.WalkForms(pass.Exprs, func(form *lisp.LVal, depth int) {
			if skip[form] {
				return
			}
			head := astutil.HeadSymbol(form)
			if head == "" || userDefs[head] {
				return
			}
			spec, ok := builtinArityTable[head]
			if !ok {
				return
			}
			argc := astutil.ArgCount(form)
			if argc < spec.min {
				pass.Reportf(sourceOf(form), "%s requires at least %d argument(s), got %d", head, spec.min, argc)
			}
			if spec.max >= 0 && argc > spec.max {
				pass.Reportf(sourceOf(form), "%s accepts at most %d argument(s), got %d", head, spec.max, argc)
			}
		})
		return nil
	},
}

// aritySkipNodes returns the lists which look like calls but are not.  These
// are signatures, binding lists, clauses and class members.
func aritySkipNodes(exprs []*lisp.LVal) map[*lisp.LVal]bool {
	skip := make(map[*lisp.LVal]bool)
	astutil.WalkForms(exprs, func(form *lisp.LVal, depth int) {
		args := astutil.Args(form)
		switch astutil.HeadSymbol(form) {
		case "define", "defmacro", "async", "lambda":
			if len(args) > 0 {
				skip[args[0]] = true
			}
		case "let":
			if len(args) > 0 {
				skip[args[0]] = true
				for _, bind := range args[0].Items() {
					skip[bind] = true
				}
			}
		case "for", "for/list":
			if len(args) > 0 {
				skip[args[0]] = true
			}
		case "cond":
			for _, clause := range args {
				skip[clause] = true
			}
		case "try":
			if len(args) == 2 {
				skip[args[1]] = true
			}
		case "class":
			for _, def := range astutil.ClassMembers(form) {
				skip[def] = true
				if _, params := astutil.MemberSignature(def); params != nil {
					skip[params] = true
				}
			}
		}
	})
	return skip
}

// aritySpec defines the argument count bounds of a function.  max == -1
// means variadic.
type aritySpec struct {
	min int
	max int
}

var builtinArityTable = buildArityTable()

func buildArityTable() map[string]aritySpec {
	table := make(map[string]aritySpec)
	add := func(def lisp.LBuiltinDef) {
		spec := aritySpec{}
		for _, sym := range def.Formals().Items() {
			if sym.Str == lisp.VarArgSymbol {
				spec.max = -1
				break
			}
			spec.min++
		}
		if spec.max == 0 {
			spec.max = spec.min
		}
		table[def.Name()] = spec
	}
	for _, b := range lisp.DefaultBuiltins() {
		add(b)
	}
	for _, op := range lisp.DefaultSpecialOps() {
		add(op)
	}
	// These have dedicated analyzers.
	for _, name := range []string{"if", "cond", "define", "defmacro", "async", "let", "try", "import"} {
		delete(table, name)
	}
	return table
}

func sourceOf(form *lisp.LVal) *token.Location {
	return astutil.SourceOf(form).Source
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}

// Copyright © 2018 The ELPS authors

package libutil

import (
	"strings"

	"github.com/luthersystems/daniel/lisp"
)

// FunctionDoc returns a Builtin which is exported as a documented function.
func FunctionDoc(name string, formals *lisp.LVal, fun lisp.LBuiltin, docs string) *Builtin {
	return &Builtin{name, formals, fun, docs, false}
}

// MacroDoc returns a Builtin which is exported as a macro.  fun receives
// unevaluated argument forms and returns the expression to evaluate.
func MacroDoc(name string, formals *lisp.LVal, fun lisp.LBuiltin, docs string) *Builtin {
	return &Builtin{name, formals, fun, docs, true}
}

type Builtin struct {
	name    string
	formals *lisp.LVal
	fun     lisp.LBuiltin
	docs    string
	macro   bool
}

func (fun *Builtin) IsMacro() bool {
	return fun.macro
}

func (fun *Builtin) Name() string {
	return fun.name
}

func (fun *Builtin) Formals() *lisp.LVal {
	return fun.formals
}

func (fun *Builtin) Eval(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	return fun.fun(env, args)
}

// Docstring returns the documentation with surrounding blank lines and the
// indentation of continuation lines removed.
func (fun *Builtin) Docstring() string {
	lines := strings.Split(strings.TrimSpace(fun.docs), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

// Module returns a native module exporting fns along with any constant
// values in consts.
func Module(name, doc string, consts map[string]*lisp.LVal, fns ...*Builtin) *lisp.NativeModule {
	return &lisp.NativeModule{
		Name: name,
		Doc:  doc,
		Create: func(env *lisp.LEnv, _ []*lisp.LVal) *lisp.LVal {
			defs := make([]lisp.LBuiltinDef, len(fns))
			for i := range fns {
				defs[i] = fns[i]
			}
			exports := lisp.BuiltinExports(name, defs...)
			for k, v := range consts {
				exports.Map().Set(lisp.Symbol(k), v) //nolint:errcheck // symbols are valid keys
			}
			return exports
		},
	}
}

// StringArg returns the string value of v or a type-error.
func StringArg(env *lisp.LEnv, v *lisp.LVal) (string, *lisp.LVal) {
	if v.Type != lisp.LString {
		return "", env.ErrorConditionf(lisp.CondTypeError, "argument is not a string: %v", lisp.GetType(v))
	}
	return v.Str, nil
}

// NumberArg returns the numeric value of v or a type-error.
func NumberArg(env *lisp.LEnv, v *lisp.LVal) (float64, *lisp.LVal) {
	if v.Type != lisp.LNumber {
		return 0, env.ErrorConditionf(lisp.CondTypeError, "argument is not a number: %v", lisp.GetType(v))
	}
	return v.Num, nil
}

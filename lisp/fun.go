// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
)

// LBuiltin is a function implemented in Go.  Builtin functions receive
// evaluated arguments.  Special operators and builtin macros share the type
// but receive unevaluated argument forms.
type LBuiltin func(env *LEnv, args []*LVal) *LVal

// FunData is the data stored in an LFun value.  A function is either a
// closure, which has a Body evaluated in a child of Env, or a builtin, which
// has a non-nil Builtin.
type FunData struct {
	// FID uniquely identifies the function within its runtime.
	FID string
	// Name is the name a function was defined with.  Anonymous functions
	// have an empty Name.
	Name string
	Doc  string
	// Env is the lexical environment a closure was defined in.
	Env *LEnv
	// Formals holds the names of the positional parameters.
	Formals []string
	// Rest names the variadic parameter that collects excess arguments.  It
	// is empty when the function is not variadic.
	Rest string
	// Body is the (do ...) form evaluated when a closure is called.
	Body    *LVal
	Builtin LBuiltin
	// MinArgs is the number of arguments a builtin requires.
	MinArgs int
	Macro   bool
	Async   bool
	Special bool
}

// Arity returns the number of named parameters preceding the variadic
// marker.
func (fd *FunData) Arity() int {
	return len(fd.Formals)
}

// Variadic returns true if fd collects excess arguments into a list.
func (fd *FunData) Variadic() bool {
	return fd.Rest != ""
}

// IsBuiltin returns true if fd is implemented in Go.
func (fd *FunData) IsBuiltin() bool {
	return fd.Builtin != nil
}

// DisplayName is the name used when printing the function.
func (fd *FunData) DisplayName() string {
	if fd.Name == "" {
		return "lambda"
	}
	return fd.Name
}

func (fd *FunData) copy() *FunData {
	cp := *fd
	return &cp
}

// Fun returns an LVal representing the builtin function fn with the given
// formal argument list.
func Fun(fid string, formals *LVal, fn LBuiltin) *LVal {
	names, rest, err := parseFormals(formals)
	if err != nil {
		panic(err)
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LFun,
		Native: &FunData{
			FID:     fid,
			Formals: names,
			Rest:    rest,
			Builtin: fn,
			MinArgs: len(names),
		},
	}
}

// Macro returns an LVal representing a builtin macro.  Macros receive their
// arguments unevaluated and return an expression to evaluate in their place.
func Macro(fid string, formals *LVal, fn LBuiltin) *LVal {
	v := Fun(fid, formals, fn)
	v.FunData().Macro = true
	return v
}

// SpecialOp returns an LVal representing a special operator.
func SpecialOp(fid string, formals *LVal, fn LBuiltin) *LVal {
	v := Fun(fid, formals, fn)
	v.FunData().Special = true
	return v
}

// parseFormals splits a parameter list into the positional parameter names
// and the name of the variadic rest parameter.
func parseFormals(formals *LVal) ([]string, string, error) {
	if formals.Type == LError {
		return nil, "", GoError(formals)
	}
	if formals.Type != LNil && formals.Type != LList {
		return nil, "", fmt.Errorf("parameter list is not a list: %v", formals)
	}
	cells := formals.Items()
	names := make([]string, 0, len(cells))
	for i, cell := range cells {
		if cell.Type != LSymbol {
			return nil, "", fmt.Errorf("parameter is not a symbol: %v", cell)
		}
		if cell.Str != VarArgSymbol {
			names = append(names, cell.Str)
			continue
		}
		if i != len(cells)-2 {
			return nil, "", fmt.Errorf("%s must be followed by exactly one parameter", VarArgSymbol)
		}
		rest := cells[i+1]
		if rest.Type != LSymbol || rest.Str == VarArgSymbol {
			return nil, "", fmt.Errorf("rest parameter is not a symbol: %v", rest)
		}
		return names, rest.Str, nil
	}
	return names, "", nil
}

// Lambda returns a new closure over env.  The body is wrapped in an implicit
// (do ...) form.  When body contains more than one expression and begins with
// a string literal that string is taken as the function's docstring.
func (env *LEnv) Lambda(name string, formals *LVal, body []*LVal) *LVal {
	names, rest, err := parseFormals(formals)
	if err != nil {
		return env.ErrorCondition(CondSyntaxError, err)
	}
	var doc string
	if len(body) > 1 && body[0].Type == LString {
		doc = body[0].Str
		body = body[1:]
	}
	return &LVal{
		Type:   LFun,
		Source: env.Loc,
		Native: &FunData{
			FID:     env.getFID(),
			Name:    name,
			Doc:     doc,
			Env:     env,
			Formals: names,
			Rest:    rest,
			Body:    ListOf(append([]*LVal{Symbol(DoSymbol)}, body...)...),
		},
	}
}

// bind creates the scope for a call to closure fun.  Missing arguments are
// bound to nil.  Excess arguments are collected into the rest parameter of a
// variadic closure and ignored otherwise.
func (env *LEnv) bind(fun *LVal, args []*LVal) *LEnv {
	fd := fun.FunData()
	fenv := fd.Env.Extend(fd.DisplayName())
	for i, name := range fd.Formals {
		if i < len(args) {
			fenv.Scope[name] = args[i]
		} else {
			fenv.Scope[name] = Nil()
		}
	}
	if fd.Rest != "" {
		if len(args) > len(fd.Formals) {
			fenv.Scope[fd.Rest] = ListOf(args[len(fd.Formals):]...)
		} else {
			fenv.Scope[fd.Rest] = Nil()
		}
	}
	return fenv
}

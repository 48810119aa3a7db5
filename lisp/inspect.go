// Copyright © 2024 The ELPS authors

package lisp

import (
	"strings"

	"github.com/luthersystems/daniel/parser/token"
)

// ParamKind classifies a function parameter.
type ParamKind int

const (
	ParamRequired ParamKind = iota
	ParamRest
)

func (k ParamKind) String() string {
	switch k {
	case ParamRequired:
		return "required"
	case ParamRest:
		return "rest"
	default:
		return "unknown"
	}
}

// ParamInfo describes a single parameter in a function signature.
type ParamInfo struct {
	Name string
	Kind ParamKind
}

// FunctionInfo holds metadata extracted from a function defining form or a
// function value.
type FunctionInfo struct {
	Name      string // empty for lambda
	Kind      string // "define", "defmacro", "async", "lambda" or "builtin"
	Params    []ParamInfo
	DocString string
	Source    *token.Location
}

// Signature renders info as a call form, (name a b & rest).
func (info *FunctionInfo) Signature() string {
	var b strings.Builder
	b.WriteString("(")
	name := info.Name
	if name == "" {
		name = "lambda"
	}
	b.WriteString(name)
	for _, p := range info.Params {
		b.WriteString(" ")
		if p.Kind == ParamRest {
			b.WriteString(VarArgSymbol + " ")
		}
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	return b.String()
}

// InspectFunction extracts metadata from a (define (name params...) ...),
// (defmacro (name params...) ...), (async (name params...) ...) or
// (lambda (params...) ...) form.  Returns nil if node is not a recognized
// form.
func InspectFunction(node *LVal) *FunctionInfo {
	if node == nil || node.Type != LList || node.Len() < 2 {
		return nil
	}
	cells := node.List().Values()
	head := cells[0]
	if head.Type != LSymbol {
		return nil
	}
	info := &FunctionInfo{
		Kind:   head.Str,
		Source: node.Source,
	}
	var formals *LVal
	switch head.Str {
	case "define", "defmacro", "async":
		sig := cells[1]
		if sig.Type != LList || sig.List().First().Type != LSymbol {
			return nil
		}
		info.Name = sig.List().First().Str
		formals = ListValue(sig.List().Rest())
	case "lambda":
		formals = cells[1]
	default:
		return nil
	}
	info.Params = ParseFormals(formals)
	// A docstring needs a body expression after it.
	if len(cells) > 3 && cells[2].Type == LString {
		info.DocString = cells[2].Str
	}
	return info
}

// InspectValue returns metadata for the function value fun, or nil if fun is
// not a function.
func InspectValue(fun *LVal) *FunctionInfo {
	if fun.Type != LFun {
		return nil
	}
	fd := fun.FunData()
	info := &FunctionInfo{
		Name:      fd.Name,
		Kind:      "lambda",
		DocString: fd.Doc,
		Source:    fun.Source,
	}
	switch {
	case fd.Macro:
		info.Kind = "defmacro"
	case fd.Async:
		info.Kind = "async"
	case fd.IsBuiltin():
		info.Kind = "builtin"
	}
	for _, name := range fd.Formals {
		info.Params = append(info.Params, ParamInfo{Name: name, Kind: ParamRequired})
	}
	if fd.Rest != "" {
		info.Params = append(info.Params, ParamInfo{Name: fd.Rest, Kind: ParamRest})
	}
	return info
}

// ParseFormals extracts parameter info from a formals LVal.  The parameter
// following the & marker is the rest parameter.
func ParseFormals(formals *LVal) []ParamInfo {
	if formals == nil || (formals.Type != LList && formals.Type != LNil) {
		return nil
	}
	var params []ParamInfo
	rest := false
	for _, sym := range formals.Items() {
		if sym.Type != LSymbol {
			continue
		}
		if sym.Str == VarArgSymbol {
			rest = true
			continue
		}
		kind := ParamRequired
		if rest {
			kind = ParamRest
		}
		params = append(params, ParamInfo{Name: sym.Str, Kind: kind})
	}
	return params
}

// Copyright © 2018 The ELPS authors

package lisp

import (
	"github.com/luthersystems/daniel/parser/token"
)

func opDefmacro(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "defmacro: missing signature")
	}
	name, formals, lerr := env.signature("defmacro", args[0])
	if lerr != nil {
		return lerr
	}
	mac := env.Lambda(name, formals, args[1:])
	if mac.Type == LError {
		return mac
	}
	mac.FunData().Macro = true
	return env.Define(name, mac)
}

func opMacroExpand(env *LEnv, args []*LVal) *LVal {
	if len(args) != 1 {
		return env.ErrorConditionf(CondSyntaxError, "macroexpand: expected one argument (got %d)", len(args))
	}
	form := args[0]
	if isForm(form, QuoteSymbol) && form.Len() == 2 {
		form = form.List().Get(1)
	}
	return env.MacroExpand(form)
}

// MacroExpand returns v with every macro call expanded.  Quoted forms are not
// expanded.  When v contains no macro calls v itself is returned.
func (env *LEnv) MacroExpand(v *LVal) *LVal {
	max := env.Runtime.MaxMacroExpansionDepth
	for i := 0; ; i++ {
		if max > 0 && i > max {
			return env.ErrorConditionf(CondMacroExpansion, "macro expansion exceeded %d levels", max)
		}
		x, ok := env.MacroExpand1(v)
		if x.Type == LError {
			return x
		}
		if !ok {
			break
		}
		v = x
	}
	if v.Type != LList || isForm(v, QuoteSymbol) {
		return v
	}
	items := v.List().Values()
	changed := false
	for i, item := range items {
		x := env.MacroExpand(item)
		if x.Type == LError {
			return x
		}
		if x != item {
			items[i] = x
			changed = true
		}
	}
	if !changed {
		return v
	}
	expr := ListOf(items...)
	expr.Source = v.Source
	return expr
}

// isForm returns true if v is a list whose head is the symbol name.
func isForm(v *LVal, name string) bool {
	if v.Type != LList {
		return false
	}
	head := v.List().First()
	return head.Type == LSymbol && head.Str == name
}

func opQuasiquote(env *LEnv, args []*LVal) *LVal {
	if len(args) != 1 {
		return env.ErrorConditionf(CondSyntaxError, "quasiquote: expected one argument (got %d)", len(args))
	}
	if isForm(args[0], SpliceUnquoteSymbol) {
		return env.ErrorConditionf(CondSyntaxError, "%s used outside of a list", SpliceUnquoteSymbol)
	}
	r := env.quasiquote(args[0], 0)
	if r.Type != LError {
		stampMacroExpansion(r, env.Loc)
	}
	return r
}

func opUnquote(env *LEnv, args []*LVal) *LVal {
	name := env.Runtime.Stack.Top().Name
	return env.ErrorConditionf(CondSyntaxError, "%s used outside of quasiquote", name)
}

// quasiquote fills in the template v.  The depth counts enclosing
// quasiquote forms inside the template; only unquotes at depth zero are
// evaluated.
func (env *LEnv) quasiquote(v *LVal, depth int) *LVal {
	switch v.Type {
	case LList:
	case LMap:
		if !v.Literal {
			return v
		}
		cells := make([]*LVal, len(v.Cells))
		for i, c := range v.Cells {
			cells[i] = env.quasiquote(c, depth)
			if cells[i].Type == LError {
				return cells[i]
			}
		}
		m := MapLiteral(cells)
		m.Source = v.Source
		return m
	default:
		return v
	}
	if isForm(v, UnquoteSymbol) {
		if v.Len() != 2 {
			return env.ErrorConditionf(CondSyntaxError, "%s: expected one argument (got %d)", UnquoteSymbol, v.Len()-1)
		}
		if depth == 0 {
			return env.Eval(v.List().Get(1))
		}
		depth--
	}
	if isForm(v, QuasiquoteSymbol) {
		depth++
	}
	var cells []*LVal
	var lerr *LVal
	v.List().Each(func(_ int, item *LVal) bool {
		if depth == 0 && isForm(item, SpliceUnquoteSymbol) {
			if item.Len() != 2 {
				lerr = env.ErrorConditionf(CondSyntaxError, "%s: expected one argument (got %d)", SpliceUnquoteSymbol, item.Len()-1)
				return false
			}
			x := env.Eval(item.List().Get(1))
			switch x.Type {
			case LError:
				lerr = x
				return false
			case LList:
				cells = append(cells, x.List().Values()...)
			case LNil:
			default:
				lerr = env.ErrorConditionf(CondTypeError, "%s: cannot splice %v", SpliceUnquoteSymbol, GetType(x))
				return false
			}
			return true
		}
		x := env.quasiquote(item, depth)
		if x.Type == LError {
			lerr = x
			return false
		}
		cells = append(cells, x)
		return true
	})
	if lerr != nil {
		return lerr
	}
	expr := ListOf(cells...)
	if expr.Type == LList {
		expr.Source = v.Source
	}
	return expr
}

// stampMacroExpansion gives nodes of a macro expansion that have no source
// location the location of the macro call site.
func stampMacroExpansion(v *LVal, callSite *token.Location) {
	if v == nil || callSite == nil || callSite.Pos < 0 {
		return
	}
	if v.Source == nil || v.Source.Pos < 0 {
		v.Source = callSite
	}
	if v.Type == LList {
		v.List().Each(func(_ int, x *LVal) bool {
			stampMacroExpansion(x, callSite)
			return true
		})
	}
}

// Copyright © 2018 The ELPS authors

package lisp

import (
	"strings"
)

var userSpecialOps []*langBuiltin
var langSpecialOps = []*langBuiltin{
	{"do", Formals(VarArgSymbol, "expr"), opDo,
		`Evaluates each expression in order in the current scope and
		returns the value of the last one.  An empty do returns nil.`},
	{"define", Formals("target", VarArgSymbol, "expr"), opDefine,
		`Binds a name in the current scope.  (define name expr) binds the
		value of expr.  (define (name params...) body...) binds a function
		closing over the current scope.  Defining a name already bound in
		the current scope is an already-defined error.`},
	{"set!", Formals("name", "expr"), opSet,
		`Evaluates expr and stores its value in the nearest scope that
		binds name.  Setting an unbound name is an unbound-symbol error.`},
	{"if", Formals("test", "then", VarArgSymbol, "else"), opIf,
		`Evaluates test.  When the result is neither false nor nil the
		then form is evaluated, otherwise the else form (or nil when
		absent).  Exactly one branch is evaluated.`},
	{"lambda", Formals("params", VarArgSymbol, "expr"), opLambda,
		`Returns an anonymous function.  A & in the parameter list marks
		the following parameter as the rest parameter, which collects any
		excess arguments as a list.`},
	{"let", Formals("bindings", VarArgSymbol, "expr"), opLet,
		`Evaluates the body in a child scope holding the given bindings.
		The bindings, a list of (name expr) pairs, are evaluated in order
		so later bindings may refer to earlier ones.`},
	{"for", Formals("clause", VarArgSymbol, "expr"), opFor,
		`(for (name iterable) body...) evaluates the body once for each
		element of iterable, in a fresh scope binding name to the element.
		Maps yield (key . value) pairs.  Returns the value of the last body
		expression of the last iteration.`},
	{"for/list", Formals("clause", VarArgSymbol, "expr"), opForList,
		`(for/list (name iterable [when predicate]) body...) is like for but
		collects the body value of each iteration into a list.  When a
		predicate is given iterations for which it is false are skipped.`},
	{"and", Formals(VarArgSymbol, "expr"), opAnd,
		`Evaluates expressions in order until one is false or nil and
		returns it.  Otherwise the value of the last expression is
		returned.  (and) is true.`},
	{"or", Formals(VarArgSymbol, "expr"), opOr,
		`Evaluates expressions in order until one is neither false nor nil
		and returns it.  Otherwise the value of the last expression is
		returned.  (or) is false.`},
	{"cond", Formals(VarArgSymbol, "clause"), opCond,
		`Evaluates the body of the first (test body...) clause whose test
		is true.  A test of else always matches.  Returns nil when no
		clause matches.`},
	{"quote", Formals("expr"), opQuote,
		`Returns its argument unevaluated.  This is the operator behind
		the ' prefix syntax.`},
	{"quasiquote", Formals("expr"), opQuasiquote,
		"Returns a template in which (unquote expr) forms are replaced by\n" +
			"the value of expr and (splicing-unquote expr) forms are replaced\n" +
			"by the elements of the list expr evaluates to."},
	{UnquoteSymbol, Formals("expr"), opUnquote,
		`Only valid inside quasiquote.`},
	{SpliceUnquoteSymbol, Formals("expr"), opUnquote,
		`Only valid inside a list within quasiquote.`},
	{"defmacro", Formals("signature", VarArgSymbol, "expr"), opDefmacro,
		`(defmacro (name params...) body...) binds a macro.  The macro
		receives its argument forms unevaluated and returns a form which
		is evaluated in place of the call.`},
	{"macroexpand", Formals("form"), opMacroExpand,
		`Returns form with all macro calls expanded, without evaluating
		it.  A quoted form is unquoted before expansion.`},
	{"try", Formals("expr", "catch-clause"), opTry,
		`(try expr (catch name handler...)) evaluates expr.  If an error is
		raised the handler is evaluated in a child scope binding name to
		the error.`},
	{"class", Formals("name", VarArgSymbol, "definitions"), opClass,
		`(class Name [:extends Super] (new fields...) (method (params...)
		body...) (static method (params...) body...)) defines a class.
		Calling the class constructs an instance.`},
	{"import", Formals("module", VarArgSymbol, "options"), opImport,
		`(import spec [:as alias | :open]) loads the module named by spec
		and binds it under its own name or the alias.  With :open the
		module's exports are bound directly.`},
	{"module", Formals("name", VarArgSymbol, "expr"), opModule,
		`(module name body...) evaluates body in a child scope and binds
		name to a module exporting the names given to provide.`},
	{"provide", Formals(VarArgSymbol, "name"), opProvide,
		`Exports names from the enclosing module.`},
	{"async", Formals("signature", VarArgSymbol, "expr"), opAsync,
		`(async (name params...) body...) binds a function whose calls
		return a promise.  (async (lambda (params...) body...)) returns an
		anonymous async function.`},
}

// RegisterDefaultSpecialOp adds the given function to the list returned by
// DefaultSpecialOps.
func RegisterDefaultSpecialOp(name string, formals *LVal, fn LBuiltin) {
	userSpecialOps = append(userSpecialOps, &langBuiltin{name, formals.Copy(), fn, ""})
}

// DefaultSpecialOps returns the default set of LBuiltinDef added to LEnv
// objects when LEnv.AddSpecialOps is called without arguments.
func DefaultSpecialOps() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langSpecialOps)+len(userSpecialOps))
	for i := range langSpecialOps {
		ops[i] = langSpecialOps[i]
	}
	offset := len(langSpecialOps)
	for i := range userSpecialOps {
		ops[offset+i] = userSpecialOps[i]
	}
	return ops
}

func opDo(env *LEnv, args []*LVal) *LVal {
	return env.evalBody(args)
}

func opDefine(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "define: missing target")
	}
	target := args[0]
	switch target.Type {
	case LSymbol:
		if len(args) != 2 {
			return env.ErrorConditionf(CondSyntaxError, "define: expected a name and one value (got %d arguments)", len(args))
		}
		val := env.Eval(args[1])
		if val.Type == LError {
			return val
		}
		env.Loc = target.Source
		return env.Define(target.Str, val)
	case LList:
		name, formals, lerr := env.signature("define", target)
		if lerr != nil {
			return lerr
		}
		fun := env.Lambda(name, formals, args[1:])
		if fun.Type == LError {
			return fun
		}
		return env.Define(name, fun)
	}
	return env.ErrorConditionf(CondSyntaxError, "define: target is not a symbol: %v", target)
}

// signature splits a (name params...) form.
func (env *LEnv) signature(form string, sig *LVal) (string, *LVal, *LVal) {
	if sig.Type != LList || sig.List().First().Type != LSymbol {
		return "", nil, env.ErrorConditionf(CondSyntaxError, "%s: expected (name params...) but got %v", form, sig)
	}
	return sig.List().First().Str, ListValue(sig.List().Rest()), nil
}

func opSet(env *LEnv, args []*LVal) *LVal {
	if len(args) != 2 {
		return env.ErrorConditionf(CondSyntaxError, "set!: expected a name and one value (got %d arguments)", len(args))
	}
	key := args[0]
	if key.Type != LSymbol {
		return env.ErrorConditionf(CondSyntaxError, "set!: target is not a symbol: %v", key)
	}
	owner := env.owner(key.Str)
	if owner == nil {
		return env.ErrorConditionf(CondUnboundSymbol, "cannot set unbound symbol: %s", key.Str)
	}
	// The value is evaluated where the binding lives, not where set! is.
	val := owner.Eval(args[1])
	if val.Type == LError {
		return val
	}
	owner.Scope[key.Str] = val
	return Nil()
}

// (if test-form then-form else-form)
func opIf(env *LEnv, args []*LVal) *LVal {
	if len(args) < 2 || len(args) > 3 {
		return env.ErrorConditionf(CondSyntaxError, "if: expected two or three arguments (got %d)", len(args))
	}
	r := env.Eval(args[0])
	if r.Type == LError {
		return r
	}
	if True(r) {
		return env.Eval(args[1])
	}
	if len(args) == 3 {
		return env.Eval(args[2])
	}
	return Nil()
}

func opLambda(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "lambda: missing parameter list")
	}
	return env.Lambda("", args[0], args[1:])
}

func opLet(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "let: missing binding list")
	}
	bindlist := args[0]
	if bindlist.Type != LList && bindlist.Type != LNil {
		return env.ErrorConditionf(CondSyntaxError, "let: first argument is not a list: %v", bindlist)
	}
	letenv := env.Extend("let")
	for _, bind := range bindlist.Items() {
		name, expr := bind, Nil()
		if bind.Type == LList {
			if bind.Len() != 2 {
				return env.ErrorConditionf(CondSyntaxError, "let: binding is not a (name expr) pair: %v", bind)
			}
			name, expr = bind.List().First(), bind.List().Get(1)
		}
		if name.Type != LSymbol {
			return env.ErrorConditionf(CondSyntaxError, "let: binding name is not a symbol: %v", name)
		}
		val := letenv.Eval(expr)
		if val.Type == LError {
			return val
		}
		lerr := letenv.Define(name.Str, val)
		if lerr.Type == LError {
			return lerr
		}
	}
	return letenv.evalBody(args[1:])
}

// loopClause is the parsed (name iterable [when predicate]) clause of a
// loop.
type loopClause struct {
	name string
	seq  *LVal
	when *LVal
}

func (env *LEnv) loopClause(form string, args []*LVal) (*loopClause, *LVal) {
	if len(args) == 0 {
		return nil, env.ErrorConditionf(CondSyntaxError, "%s: missing loop clause", form)
	}
	clause := args[0].Items()
	if len(clause) != 2 && len(clause) != 4 {
		return nil, env.ErrorConditionf(CondSyntaxError, "%s: loop clause must be (name iterable): %v", form, args[0])
	}
	if clause[0].Type != LSymbol {
		return nil, env.ErrorConditionf(CondSyntaxError, "%s: loop variable is not a symbol: %v", form, clause[0])
	}
	c := &loopClause{name: clause[0].Str}
	if len(clause) == 4 {
		kw := clause[2]
		if form != "for/list" || !(kw.Type == LSymbol || kw.Type == LKeyword) || strings.TrimPrefix(kw.Str, ":") != "when" {
			return nil, env.ErrorConditionf(CondSyntaxError, "%s: unexpected loop clause: %v", form, args[0])
		}
		c.when = clause[3]
	}
	c.seq = env.Eval(clause[1])
	if c.seq.Type == LError {
		return nil, c.seq
	}
	return c, nil
}

func opFor(env *LEnv, args []*LVal) *LVal {
	c, lerr := env.loopClause("for", args)
	if lerr != nil {
		return lerr
	}
	ret := Nil()
	lerr = env.iterate(c.seq, func(x *LVal) bool {
		fenv := env.Extend("for")
		fenv.Scope[c.name] = x
		ret = fenv.evalBody(args[1:])
		return ret.Type != LError
	})
	if lerr != nil {
		return lerr
	}
	return ret
}

func opForList(env *LEnv, args []*LVal) *LVal {
	c, lerr := env.loopClause("for/list", args)
	if lerr != nil {
		return lerr
	}
	var cells []*LVal
	var failed *LVal
	lerr = env.iterate(c.seq, func(x *LVal) bool {
		fenv := env.Extend("for/list")
		fenv.Scope[c.name] = x
		if c.when != nil {
			ok := fenv.Eval(c.when)
			if ok.Type == LError {
				failed = ok
				return false
			}
			if !True(ok) {
				return true
			}
		}
		v := fenv.evalBody(args[1:])
		if v.Type == LError {
			failed = v
			return false
		}
		cells = append(cells, v)
		return true
	})
	if lerr != nil {
		return lerr
	}
	if failed != nil {
		return failed
	}
	return ListOf(cells...)
}

// iterate calls fn with each element of seq until fn returns false.  Lists,
// maps, ranges and strings are iterable and nil is an empty sequence.
func (env *LEnv) iterate(seq *LVal, fn func(x *LVal) bool) *LVal {
	switch seq.Type {
	case LNil:
	case LList:
		seq.List().Each(func(_ int, x *LVal) bool { return fn(x) })
	case LMap:
		seq.Map().Each(func(k, v *LVal) bool { return fn(Pair(k, v)) })
	case LRange:
		seq.Range().Each(func(_ int, x float64) bool { return fn(Number(x)) })
	case LString:
		for _, c := range seq.Str {
			if !fn(String(string(c))) {
				break
			}
		}
	default:
		return env.ErrorConditionf(CondTypeError, "value is not iterable: %v", GetType(seq))
	}
	return nil
}

func opAnd(env *LEnv, args []*LVal) *LVal {
	r := Bool(true)
	for _, c := range args {
		r = env.Eval(c)
		if r.Type == LError || !True(r) {
			return r
		}
	}
	return r
}

func opOr(env *LEnv, args []*LVal) *LVal {
	r := Bool(false)
	for _, c := range args {
		r = env.Eval(c)
		if r.Type == LError || True(r) {
			return r
		}
	}
	return r
}

func opCond(env *LEnv, args []*LVal) *LVal {
	for _, clause := range args {
		if clause.Type != LList {
			return env.ErrorConditionf(CondSyntaxError, "cond: clause is not a list: %v", clause)
		}
		body := clause.List().Values()
		test := body[0]
		if test.Type != LSymbol || test.Str != "else" {
			r := env.Eval(test)
			if r.Type == LError {
				return r
			}
			if !True(r) {
				continue
			}
			if len(body) == 1 {
				return r
			}
		}
		return env.evalBody(body[1:])
	}
	return Nil()
}

func opQuote(env *LEnv, args []*LVal) *LVal {
	if len(args) != 1 {
		return env.ErrorConditionf(CondSyntaxError, "quote: expected one argument (got %d)", len(args))
	}
	return args[0]
}

func opTry(env *LEnv, args []*LVal) *LVal {
	if len(args) != 2 {
		return env.ErrorConditionf(CondSyntaxError, "try: expected an expression and a catch clause (got %d arguments)", len(args))
	}
	clause := args[1].Items()
	if len(clause) < 2 || clause[0].Type != LSymbol || clause[0].Str != "catch" || clause[1].Type != LSymbol {
		return env.ErrorConditionf(CondSyntaxError, "try: expected (catch name handler...) but got %v", args[1])
	}
	r := env.Eval(args[0])
	if r.Type != LError {
		return r
	}
	cenv := env.Extend("catch")
	cenv.Scope[clause[1].Str] = env.caught(r)
	return cenv.evalBody(clause[2:])
}

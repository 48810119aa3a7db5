// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/daniel/parser/token"
)

// DefaultEnvName is the diagnostic name of the global environment.
const DefaultEnvName = "global"

// InitializeUserEnv creates the default user environment.  The special
// operators are installed, the Core module is opened into env, and the root
// classes are defined before each config is applied.
func InitializeUserEnv(env *LEnv, config ...Config) *LVal {
	rt := env.Runtime
	rt.Global = env
	if env.Name == "" {
		env.Name = DefaultEnvName
	}
	env.AddSpecialOps()
	rc := rt.Loader.Register(env, CoreModule())
	if rc.Type == LError {
		return rc
	}
	core := env.Import(Symbol(CoreModuleName))
	if core.Type == LError {
		return core
	}
	rc = env.DefineAll(core.Module().Exports)
	if rc.Type == LError {
		return rc
	}
	rc = env.defineRootClasses()
	if rc.Type == LError {
		return rc
	}
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

// LEnv is a lisp environment.
type LEnv struct {
	Loc     *token.Location
	Scope   map[string]*LVal
	Name    string
	Parent  *LEnv
	Runtime *Runtime
	ID      uint
	module  *moduleScope
}

// NewEnvRuntime initializes a new LEnv, like NewEnv, but it explicitly
// specifies the runtime to use.  NewEnvRuntime is only suitable for creating
// root LEnv object, so it does not take a parent argument.  When rt is nil
// StandardRuntime() called to create a new Runtime for the returned LEnv.  It
// is an error to use the same runtime object in multiple calls to
// NewEnvRuntime if the two envs are not in the same tree and doing so will
// have unspecified results.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	return &LEnv{
		ID:      rt.GenEnvID(),
		Loc:     nativeSource(),
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns initializes and returns a new LEnv.
func NewEnv(parent *LEnv) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return &LEnv{
		ID:      parent.Runtime.GenEnvID(),
		Loc:     parent.Loc,
		Scope:   make(map[string]*LVal),
		Name:    parent.Name,
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// Extend returns a child scope of env with the given diagnostic name.
func (env *LEnv) Extend(name string) *LEnv {
	child := NewEnv(env)
	if name != "" {
		child.Name = name
	}
	return child
}

func (env *LEnv) getFID() string {
	return fmt.Sprintf("_fun%d", env.Runtime.GenEnvID())
}

// GenSym returns a symbol that is guaranteed not to collide with any symbol
// read from source.
func (env *LEnv) GenSym() *LVal {
	return Symbol(env.Runtime.GenSym())
}

// Lookup returns the value bound to name in env or its nearest ancestor.
func (env *LEnv) Lookup(name string) (*LVal, bool) {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// owner returns the nearest scope binding name.
func (env *LEnv) owner(name string) *LEnv {
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.Scope[name]; ok {
			return e
		}
	}
	return nil
}

// Has returns true if name is bound in env itself.  Ancestor scopes are not
// consulted.
func (env *LEnv) Has(name string) bool {
	_, ok := env.Scope[name]
	return ok
}

// Get returns the value bound to the symbol k.  An unbound-symbol error is
// returned if no scope binds k.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "not a symbol: %v", GetType(k))
	}
	v, ok := env.Lookup(k.Str)
	if !ok {
		return env.ErrorConditionf(CondUnboundSymbol, "unbound symbol: %s", k.Str)
	}
	return v
}

// Define binds name to v in env.  Defining a name already bound in env is an
// already-defined error.
func (env *LEnv) Define(name string, v *LVal) *LVal {
	if env.Has(name) {
		return env.ErrorConditionf(CondAlreadyDefined, "%s is already defined in the current scope", name)
	}
	if fd := v.FunData(); v.Type == LFun && fd.Name == "" && fd.Builtin == nil {
		fd.Name = name
	}
	env.Scope[name] = v
	return Nil()
}

// Set replaces the value of name in the nearest scope which binds it.  Setting
// a name that no scope binds is an unbound-symbol error.
func (env *LEnv) Set(name string, v *LVal) *LVal {
	owner := env.owner(name)
	if owner == nil {
		return env.ErrorConditionf(CondUnboundSymbol, "cannot set unbound symbol: %s", name)
	}
	owner.Scope[name] = v
	return Nil()
}

// DefineAll defines every binding in m.  Keys must be symbols, strings or
// keywords.
func (env *LEnv) DefineAll(m *MapData) *LVal {
	var lerr *LVal
	m.Each(func(k, v *LVal) bool {
		name, ok := bindingName(k)
		if !ok {
			lerr = env.ErrorConditionf(CondTypeError, "binding name is not a symbol: %v", k)
			return false
		}
		lerr = env.Define(name, v)
		return lerr.Type != LError
	})
	if lerr != nil && lerr.Type == LError {
		return lerr
	}
	return Nil()
}

func bindingName(k *LVal) (string, bool) {
	switch k.Type {
	case LSymbol, LString:
		return k.Str, true
	case LKeyword:
		return strings.TrimPrefix(k.Str, ":"), true
	}
	return "", false
}

// LoadString evaluates the source code in exprs.
func (env *LEnv) LoadString(name, exprs string) *LVal {
	return env.Load(name, strings.NewReader(exprs))
}

// LoadFile attempts to use env.Runtime.Library to read a lisp source file and
// evaluate expressions it contains.  Any error encountered will prevent
// execution of loaded source and be returned.  If env.Runtime.Reader has not
// been set then an error will be returned by Load.
func (env *LEnv) LoadFile(loc string) *LVal {
	if env.Runtime.Library == nil {
		return env.Errorf("no source library in environment runtime")
	}
	ctx := env.Runtime.sourceContext()
	name, loc, src, err := env.Runtime.Library.LoadSource(ctx, loc)
	if err != nil {
		return env.Errorf("library error: %v", err)
	}
	return env.LoadLocation(name, loc, bytes.NewReader(src))
}

// Load reads LVals from r and evaluates them as if in a do block.  The value
// returned by the last evaluated LVal will be retured.  Async work queued by
// the loaded code is run before Load returns.  If env.Runtime.Reader has not
// been set then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) *LVal {
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		return env.readError(err)
	}
	return env.load(exprs)
}

// LoadLocation reads a lisp source stream, specifying its name and location
// explicity, and evaluates the expressions it contains.  Because the name
// and location of the stream are specfied explicitly LoadLocation does not
// depend explicity on an env.Runtime.Library implementation.
func (env *LEnv) LoadLocation(name string, loc string, r io.Reader) *LVal {
	exprs, lerr := env.read(name, loc, r)
	if lerr != nil {
		return lerr
	}
	return env.load(exprs)
}

func (env *LEnv) read(name string, loc string, r io.Reader) ([]*LVal, *LVal) {
	if env.Runtime.Reader == nil {
		return nil, env.Errorf("no reader for environment runtime")
	}
	var exprs []*LVal
	var err error
	if reader, ok := env.Runtime.Reader.(LocationReader); ok {
		exprs, err = reader.ReadLocation(name, loc, r)
	} else {
		exprs, err = env.Runtime.Reader.Read(name, r)
	}
	if err != nil {
		return nil, env.readError(err)
	}
	return exprs, nil
}

func (env *LEnv) readError(err error) *LVal {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return (*LVal)(lerr)
	}
	return env.ErrorCondition(CondParseError, err)
}

func (env *LEnv) load(exprs []*LVal) *LVal {
	ret := env.Eval(Program(exprs))
	if ret.Type == LError {
		return ret
	}
	env.Runtime.Scheduler.Drain()
	return ret
}

// AddSpecialOps binds the given special operators to their names in the
// runtime.  When called with no arguments AddSpecialOps adds the
// DefaultSpecialOps.
func (env *LEnv) AddSpecialOps(ops ...LBuiltinDef) {
	if len(ops) == 0 {
		ops = DefaultSpecialOps()
	}
	for _, op := range ops {
		if env.Runtime.specialOps[op.Name()] != nil {
			panic("special operator already defined: " + op.Name())
		}
		fn := SpecialOp(fmt.Sprintf("<special-op %s>", op.Name()), op.Formals(), op.Eval)
		fn.FunData().Name = op.Name()
		fn.FunData().Doc = op.Docstring()
		env.Runtime.specialOps[op.Name()] = fn
	}
}

// Error returns an LError value with an error message given by rendering msg.
//
// Error may be called either with an error or with any number of *LVal values.
// It is invalid to pass an error argument with any other values and doing so
// will result in a runtime panic.
//
// Unlike the exported function, the Error method returns LVal with a copy
// env.Runtime.Stack.
func (env *LEnv) Error(msg ...interface{}) *LVal {
	return env.ErrorCondition(CondError, msg...)
}

// ErrorCondition returns an LError the given condition type and an error
// message computed by rendering msg.
func (env *LEnv) ErrorCondition(condition string, v ...interface{}) *LVal {
	cells := make([]*LVal, 0, len(v))
	for _, v := range v {
		switch v := v.(type) {
		case *LVal:
			cells = append(cells, v)
		case error:
			if len(cells) > 0 {
				panic("invalid error argument")
			}
			cells = append(cells, Native(v))
		case string:
			cells = append(cells, String(v))
		default:
			cells = append(cells, Native(v))
		}
	}
	return &LVal{
		Type:   LError,
		Source: env.Loc,
		Str:    condition,
		Native: env.Runtime.Stack.Copy(),
		Cells:  cells,
	}
}

// Errorf returns an LError value with a formatted error message.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError value with the given condition type and a
// a formatted error message rendered using fmt.Sprintf.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: env.Loc,
		Type:   LError,
		Str:    condition,
		Native: env.Runtime.Stack.Copy(),
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location.  ErrorAssociate panics if lerr is not LError.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	if lerr.CallStack() == nil {
		lerr.SetCallStack(env.Runtime.Stack.Copy())
	}
	// Errors created by Go code carry the native source location.
	if lerr.Source == nil || lerr.Source.Pos < 0 {
		lerr.Source = env.Loc
	}
}

// Eval evaluates v in the context (scope) of env and returns the resulting
// LVal.  Eval does not modify v.
func (env *LEnv) Eval(v *LVal) *LVal {
	expansions := 0
eval:
	if v.Source != nil && v.Source.Pos >= 0 {
		env.Loc = v.Source
	}
	switch v.Type {
	case LSymbol:
		return env.Get(v)
	case LMap:
		if v.Literal {
			return env.evalMapLiteral(v)
		}
		return v
	case LList:
		res := env.evalList(v)
		if res.Type == LMarkMacExpand {
			// A macro was just expanded and returned an unevaluated
			// expression.  We have to evaluate the result before we return.
			expansions++
			max := env.Runtime.MaxMacroExpansionDepth
			if max > 0 && expansions > max {
				return env.ErrorConditionf(CondMacroExpansion, "macro expansion exceeded %d levels", max)
			}
			v = res.Cells[0]
			goto eval
		}
		if res.Type == LError {
			env.ErrorAssociate(res)
		}
		return res
	default:
		return v
	}
}

func (env *LEnv) evalMapLiteral(v *LVal) *LVal {
	m := NewMap()
	for i := 0; i+1 < len(v.Cells); i += 2 {
		k := env.Eval(v.Cells[i])
		if k.Type == LError {
			return k
		}
		x := env.Eval(v.Cells[i+1])
		if x.Type == LError {
			return x
		}
		if err := m.Set(k, x); err != nil {
			return env.ErrorCondition(CondTypeError, err)
		}
	}
	res := MapValue(m)
	res.Source = v.Source
	return res
}

func (env *LEnv) evalList(v *LVal) *LVal {
	l := v.List()
	head := l.First()
	if head.Type == LSymbol {
		if fun, ok := env.Lookup(head.Str); ok && fun.IsMacro() {
			return env.MacroCall(fun, l.Rest().Values())
		}
		if op := env.Runtime.SpecialOp(head.Str); op != nil {
			return env.SpecialOpCall(op, l.Rest().Values())
		}
	}
	fun := env.Eval(head)
	if fun.Type == LError {
		return fun
	}
	args := make([]*LVal, 0, l.Len()-1)
	var lerr *LVal
	l.Rest().Each(func(_ int, expr *LVal) bool {
		arg := env.Eval(expr)
		if arg.Type == LError {
			lerr = arg
			return false
		}
		args = append(args, arg)
		return true
	})
	if lerr != nil {
		return lerr
	}
	env.Loc = v.Source
	return env.Apply(fun, args)
}

// Apply calls fun with the evaluated argument list args.  Functions are
// called.  Keywords access a property of their first argument.  Classes
// construct a new object.  Any other value is not callable.
func (env *LEnv) Apply(fun *LVal, args []*LVal) *LVal {
	switch fun.Type {
	case LFun:
		if fun.IsMacro() || fun.FunData().Special {
			return env.ErrorConditionf(CondNotCallable, "%s cannot be applied to evaluated arguments", fun.FunData().DisplayName())
		}
		return env.FunCall(fun, args)
	case LKeyword:
		if len(args) == 0 {
			return env.ErrorConditionf(CondArityError, "keyword %s called without an argument", fun.Str)
		}
		return env.GetProp(args[0], strings.TrimPrefix(fun.Str, ":"))
	case LClass:
		return env.Construct(fun, args)
	}
	return env.ErrorConditionf(CondNotCallable, "value is not callable: %v", fun)
}

// MacroCall invokes macro fun with the unevaluated argument forms args.  The
// expanded expression is returned wrapped in a marker which signals Eval to
// evaluate it.
func (env *LEnv) MacroCall(fun *LVal, args []*LVal) *LVal {
	if !fun.IsMacro() {
		return env.Errorf("not a macro: %v", fun)
	}
	r := env.call(fun, args)
	if r.Type == LError {
		return r
	}
	return markMacExpand(r)
}

// MacroExpand1 expands v once if it is a macro call.  The second return value
// is true if an expansion happened.
func (env *LEnv) MacroExpand1(v *LVal) (*LVal, bool) {
	if v.Type != LList {
		return v, false
	}
	head := v.List().First()
	if head.Type != LSymbol {
		return v, false
	}
	fun, ok := env.Lookup(head.Str)
	if !ok || !fun.IsMacro() {
		return v, false
	}
	r := env.MacroCall(fun, v.List().Rest().Values())
	if r.Type == LError {
		return r, false
	}
	return r.Cells[0], true
}

// SpecialOpCall invokes special operator fun with the argument list args.
func (env *LEnv) SpecialOpCall(fun *LVal, args []*LVal) *LVal {
	fd := fun.FunData()
	if !fd.Special {
		return env.Errorf("not a special operator: %v", fun)
	}
	err := env.Runtime.Stack.PushFID(env.Loc, fd.FID, fd.Name)
	if err != nil {
		return env.ErrorCondition(CondStackOverflow, err)
	}
	defer env.Runtime.Stack.Pop()
	return fd.Builtin(env, args)
}

// FunCall invokes regular function fun with the argument list args.  Calling
// an async function schedules its body and returns a promise.
func (env *LEnv) FunCall(fun *LVal, args []*LVal) *LVal {
	if fun.Type != LFun {
		return env.ErrorConditionf(CondNotCallable, "not a function: %v", GetType(fun))
	}
	fd := fun.FunData()
	if fd.Builtin != nil && len(args) < fd.MinArgs {
		return env.ErrorConditionf(CondArityError, "%s: expected at least %d argument(s) but got %d",
			fd.DisplayName(), fd.MinArgs, len(args))
	}
	if fd.Async {
		return env.Runtime.Scheduler.Spawn(env, fun, args)
	}
	return env.call(fun, args)
}

func (env *LEnv) trace(fun *LVal) func() {
	if env.Runtime.Profiler == nil {
		return func() {}
	}
	return env.Runtime.Profiler.Start(fun)
}

// call pushes a stack frame and evaluates fun.  Builtins are given env.
// Closures are evaluated in a child of their defining environment.
func (env *LEnv) call(fun *LVal, args []*LVal) *LVal {
	fd := fun.FunData()
	if env.Runtime.Profiler != nil {
		defer env.trace(fun)()
	}
	err := env.Runtime.Stack.PushFID(env.Loc, fd.FID, fd.Name)
	if err != nil {
		return env.ErrorCondition(CondStackOverflow, err)
	}
	defer env.Runtime.Stack.Pop()

	if fd.Builtin != nil {
		r := fd.Builtin(env, args)
		if r == nil {
			_, _ = env.Runtime.Stack.DebugPrint(env.Runtime.Stderr)
			panic("nil LVal returned from function call")
		}
		return r
	}
	return env.bind(fun, args).Eval(fd.Body)
}

// evalBody evaluates exprs in order and returns the value of the last one.
func (env *LEnv) evalBody(exprs []*LVal) *LVal {
	ret := Nil()
	for _, expr := range exprs {
		ret = env.Eval(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

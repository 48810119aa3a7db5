// Copyright © 2024 The ELPS authors

package lisp

import (
	"sort"
)

// moduleScope marks the top-level scope of a module.  It records the names
// exported with provide and the names bound by import, which are not
// exported.
type moduleScope struct {
	name     string
	provided []string
	imported map[string]bool
}

// value creates the module value for the scope env.  When nothing was
// provided every binding in env other than imports is exported.  Providing a
// name env does not bind is an error.
func (m *moduleScope) value(env *LEnv) *LVal {
	exports := NewMap()
	names := m.provided
	if names == nil {
		for name := range env.Scope {
			if !m.imported[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}
	for _, name := range names {
		v, ok := env.Scope[name]
		if !ok {
			return env.ErrorConditionf(CondUnboundSymbol, "provide: %s is not defined in module %s", name, m.name)
		}
		exports.Set(Symbol(name), v) //nolint:errcheck // symbols are valid keys
	}
	return ModuleValue(&ModuleData{Name: m.name, Exports: exports})
}

// Import loads the module named by spec using the runtime's ModuleLoader.
func (env *LEnv) Import(spec *LVal) *LVal {
	return env.Runtime.Loader.Load(env, spec)
}

func opImport(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "import: missing module specifier")
	}
	mod := env.Import(args[0])
	if mod.Type == LError {
		return mod
	}
	name := mod.Module().Name
	opts := args[1:]
	switch {
	case len(opts) == 0:
	case len(opts) == 1 && opts[0].Type == LKeyword && opts[0].Str == ":open":
		var lerr *LVal
		mod.Module().Exports.Each(func(k, v *LVal) bool {
			lerr = env.bindImport(k.Str, v)
			return lerr == nil
		})
		if lerr != nil {
			return lerr
		}
		return mod
	case len(opts) == 2 && opts[0].Type == LKeyword && opts[0].Str == ":as" && opts[1].Type == LSymbol:
		name = opts[1].Str
	default:
		return env.ErrorConditionf(CondSyntaxError, "import: expected :as alias or :open but got %v", ListOf(opts...))
	}
	if lerr := env.bindImport(name, mod); lerr != nil {
		return lerr
	}
	return mod
}

// bindImport defines name in env.  Importing the same value under the same
// name again is allowed.
func (env *LEnv) bindImport(name string, v *LVal) *LVal {
	if old, ok := env.Scope[name]; ok && old.Identical(v) {
		return nil
	}
	lerr := env.Define(name, v)
	if lerr.Type == LError {
		return lerr
	}
	if env.module != nil {
		if env.module.imported == nil {
			env.module.imported = make(map[string]bool)
		}
		env.module.imported[name] = true
	}
	return nil
}

func opModule(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 || args[0].Type != LSymbol {
		return env.ErrorConditionf(CondSyntaxError, "module: missing module name")
	}
	name := args[0].Str
	menv := env.Extend(name)
	menv.module = &moduleScope{name: name}
	r := menv.evalBody(args[1:])
	if r.Type == LError {
		return r
	}
	mod := menv.module.value(menv)
	if mod.Type == LError {
		return mod
	}
	lerr := env.Define(name, mod)
	if lerr.Type == LError {
		return lerr
	}
	return mod
}

func opProvide(env *LEnv, args []*LVal) *LVal {
	var scope *LEnv
	for e := env; e != nil; e = e.Parent {
		if e.module != nil {
			scope = e
			break
		}
	}
	if scope == nil {
		return env.ErrorConditionf(CondSyntaxError, "provide used outside of a module")
	}
	if scope.module.provided == nil {
		scope.module.provided = []string{}
	}
	for _, sym := range args {
		if sym.Type != LSymbol {
			return env.ErrorConditionf(CondSyntaxError, "provide: not a symbol: %v", sym)
		}
		scope.module.provided = append(scope.module.provided, sym.Str)
	}
	return Nil()
}

// Copyright © 2024 The ELPS authors

package lisp

import (
	"strings"
)

// ClassData is the data stored in an LClass value.  Methods are looked up in
// the class's own tables and then through the chain of superclasses.
type ClassData struct {
	Name string
	// Super is the superclass or nil for the root class.
	Super *LVal
	// Fields are the names declared by the class's new form, excluding the
	// fields of its superclasses.
	Fields []string
	// Rest names a trailing variadic field.
	Rest    string
	Methods map[string]*LVal
	Statics map[string]*LVal
}

// ObjectData is the data stored in an LObject value.
type ObjectData struct {
	Class  *LVal
	Fields *MapData
}

// SuperData is a view of the methods of Class bound to the receiver This.
type SuperData struct {
	Class *LVal
	This  *LVal
}

// NewClass returns a class extending super.  A nil super creates a root
// class.
func NewClass(name string, super *LVal, fields ...string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LClass,
		Native: &ClassData{
			Name:    name,
			Super:   super,
			Fields:  fields,
			Methods: make(map[string]*LVal),
			Statics: make(map[string]*LVal),
		},
	}
}

func (v *LVal) Class() *ClassData {
	cd, _ := v.Native.(*ClassData)
	return cd
}

func (v *LVal) Object() *ObjectData {
	od, _ := v.Native.(*ObjectData)
	return od
}

func (v *LVal) Super() *SuperData {
	sd, _ := v.Native.(*SuperData)
	return sd
}

// arity is the number of positional fields of the class and its
// superclasses.
func (cd *ClassData) arity() int {
	n := 0
	for c := cd; c != nil; c = c.super() {
		n += len(c.Fields)
	}
	return n
}

func (cd *ClassData) super() *ClassData {
	if cd.Super == nil {
		return nil
	}
	return cd.Super.Class()
}

// findMethod walks the superclass chain of cls and returns the first method
// named name along with the class defining it.
func findMethod(cls *LVal, name string, static bool) (*LVal, *ClassData) {
	for c := cls.Class(); c != nil; c = c.super() {
		table := c.Methods
		if static {
			table = c.Statics
		}
		if m, ok := table[name]; ok {
			return m, c
		}
	}
	return nil, nil
}

// IsInstance returns true if obj is an instance of cls or one of its
// subclasses.
func IsInstance(obj, cls *LVal) bool {
	if obj.Type != LObject || cls.Type != LClass {
		return false
	}
	for c := obj.Object().Class; c != nil; c = c.Class().Super {
		if c.Native == cls.Native {
			return true
		}
	}
	return false
}

func (env *LEnv) defineRootClasses() *LVal {
	object := NewClass(RootClassName, nil)
	exception := NewClass("Exception", object, "message")
	runtimeException := NewClass("RuntimeException", exception)
	env.Runtime.objectClass = object
	env.Runtime.exceptionClass = exception
	for _, cls := range []*LVal{object, exception, runtimeException} {
		lerr := env.Define(cls.Class().Name, cls)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

func opClass(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 || args[0].Type != LSymbol {
		return env.ErrorConditionf(CondSyntaxError, "class: missing class name")
	}
	name := args[0].Str
	defs := args[1:]
	super := env.Runtime.objectClass
	if len(defs) > 0 && defs[0].Type == LKeyword && defs[0].Str == ExtendsKeyword {
		if len(defs) < 2 {
			return env.ErrorConditionf(CondSyntaxError, "class: %s requires a superclass", ExtendsKeyword)
		}
		super = env.Eval(defs[1])
		if super.Type == LError {
			return super
		}
		if super.Type != LClass {
			return env.ErrorConditionf(CondTypeError, "class: cannot extend %v", GetType(super))
		}
		defs = defs[2:]
	}
	cls := NewClass(name, super)
	cls.Source = env.Loc
	cd := cls.Class()
	for _, def := range defs {
		parts := def.Items()
		if len(parts) < 2 || parts[0].Type != LSymbol {
			return env.ErrorConditionf(CondSyntaxError, "class: invalid definition: %v", def)
		}
		table := cd.Methods
		if parts[0].Str == StaticKeyword {
			if len(parts) < 3 || parts[1].Type != LSymbol {
				return env.ErrorConditionf(CondSyntaxError, "class: invalid static definition: %v", def)
			}
			table = cd.Statics
			parts = parts[1:]
		} else if parts[0].Str == ConstructorName {
			names, rest, err := parseFormals(ListOf(parts[1:]...))
			if err != nil {
				return env.ErrorCondition(CondSyntaxError, err)
			}
			cd.Fields, cd.Rest = names, rest
			continue
		}
		mname := parts[0].Str
		if _, exists := table[mname]; exists {
			return env.ErrorConditionf(CondAlreadyDefined, "class %s: method %s is already defined", name, mname)
		}
		m := env.Lambda(name+"."+mname, parts[1], parts[2:])
		if m.Type == LError {
			return m
		}
		table[mname] = m
	}
	return env.Define(name, cls)
}

// Construct creates an instance of cls.  Construction runs superclass first.
// Each class takes its share of args: the superclass fields take the leading
// arguments and the class's own fields take the remainder.  A class which
// defines an init method has it called with a map of the fields set so far,
// so a superclass init runs before the init of its subclass.
func (env *LEnv) Construct(cls *LVal, args []*LVal) *LVal {
	if cls.Type != LClass {
		return env.ErrorConditionf(CondTypeError, "not a class: %v", GetType(cls))
	}
	obj := &LVal{
		Source: env.Loc,
		Type:   LObject,
		Native: &ObjectData{Class: cls, Fields: NewMap()},
	}
	r := env.constructLevel(cls.Class(), obj, args)
	if r.Type == LError {
		return r
	}
	return obj
}

func (env *LEnv) constructLevel(cd *ClassData, obj *LVal, args []*LVal) *LVal {
	od := obj.Object()
	n := 0
	if super := cd.super(); super != nil {
		n = super.arity()
		if n > len(args) {
			n = len(args)
		}
		r := env.constructLevel(super, obj, args[:n])
		if r.Type == LError {
			return r
		}
	}
	own := args[n:]
	for i, f := range cd.Fields {
		v := Nil()
		if i < len(own) {
			v = own[i]
		}
		od.Fields.Set(Symbol(f), v) //nolint:errcheck // symbols are valid keys
	}
	if cd.Rest != "" {
		rest := Nil()
		if len(own) > len(cd.Fields) {
			rest = ListOf(own[len(cd.Fields):]...)
		}
		od.Fields.Set(Symbol(cd.Rest), rest) //nolint:errcheck // symbols are valid keys
	}
	init, ok := cd.Methods[InitMethodName]
	if !ok {
		return Nil()
	}
	fields := NewMap()
	od.Fields.Each(func(k, v *LVal) bool {
		fields.Set(Keyword(k.Str), v) //nolint:errcheck // keywords are valid keys
		return true
	})
	return env.FunCall(bindMethod(init, obj, superView(cd, obj)), []*LVal{MapValue(fields)})
}

func superView(owner *ClassData, this *LVal) *LVal {
	if owner == nil || owner.Super == nil {
		return Nil()
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LSuper,
		Native: &SuperData{Class: owner.Super, This: this},
	}
}

// bindMethod returns a copy of method m whose scope binds this and super.
func bindMethod(m, this, super *LVal) *LVal {
	fd := m.FunData()
	menv := fd.Env.Extend(fd.Name)
	menv.Scope[ThisSymbol] = this
	menv.Scope[SuperSymbol] = super
	bound := fd.copy()
	bound.Env = menv
	return &LVal{
		Source: m.Source,
		Type:   LFun,
		Native: bound,
	}
}

// GetProp returns the property name of v.  Objects expose their fields and
// methods.  Classes expose static methods.  Maps return the value of the
// keyword, string or symbol key name, or nil.  Modules expose their exports.
func (env *LEnv) GetProp(v *LVal, name string) *LVal {
	switch v.Type {
	case LObject:
		od := v.Object()
		if x, ok := od.Fields.Get(Symbol(name)); ok {
			return x
		}
		if m, owner := findMethod(od.Class, name, false); m != nil {
			return bindMethod(m, v, superView(owner, v))
		}
	case LSuper:
		sd := v.Super()
		if m, owner := findMethod(sd.Class, name, false); m != nil {
			return bindMethod(m, sd.This, superView(owner, sd.This))
		}
	case LClass:
		if name == "__name__" {
			return String(v.Class().Name)
		}
		if m, owner := findMethod(v, name, true); m != nil {
			super := Nil()
			if owner.Super != nil {
				super = owner.Super
			}
			return bindMethod(m, v, super)
		}
	case LMap:
		m := v.Map()
		for _, k := range []*LVal{Keyword(name), String(name), Symbol(name)} {
			if x, ok := m.Get(k); ok {
				return x
			}
		}
		return Nil()
	case LModule:
		if x, ok := v.Module().Exports.Get(Symbol(name)); ok {
			return x
		}
		return env.ErrorConditionf(CondUnboundSymbol, "module %s does not export %s", v.Module().Name, name)
	case LPromise:
		if name == "state" {
			return Keyword(v.Promise().State().String())
		}
	case LString, LList, LNil, LRange:
		if name == "length" || name == "__length__" {
			return Int(v.Len())
		}
	}
	return env.ErrorConditionf(CondTypeError, "%v has no property %s", GetType(v), name)
}

// SetField assigns a field of the object obj.
func (env *LEnv) SetField(obj *LVal, name string, v *LVal) *LVal {
	if obj.Type != LObject {
		return env.ErrorConditionf(CondTypeError, "cannot set field %s of %v", name, GetType(obj))
	}
	obj.Object().Fields.Set(Symbol(strings.TrimPrefix(name, ":")), v) //nolint:errcheck // symbols are valid keys
	return v
}

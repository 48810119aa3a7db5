// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CoreModuleName is the name of the native module holding the builtin
// functions.  Its exports are bound in every user environment.
const CoreModuleName = "Core"

// LBuiltinDef is a built-in function
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Eval(env *LEnv, args []*LVal) *LVal
	Docstring() string
}

type langBuiltin struct {
	name    string
	formals *LVal
	fun     LBuiltin
	doc     string
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Eval(env *LEnv, args []*LVal) *LVal {
	return fun.fun(env, args)
}

// Docstring returns the builtin's documentation with the indentation of
// continuation lines removed.
func (fun *langBuiltin) Docstring() string {
	lines := strings.Split(fun.doc, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

var userBuiltins []*langBuiltin
var langBuiltins = []*langBuiltin{
	{"read", Formals("source"), builtinRead,
		`Parses source and returns the list of forms it contains, unevaluated.`},
	{"eval", Formals("expr"), builtinEval,
		`Evaluates expr in the current environment and returns the result.`},
	{"type", Formals("value"), builtinType,
		`Returns a symbol naming the type of value.`},
	{"not", Formals("value"), builtinNot,
		`Returns true if value is false or nil and false otherwise.`},
	{"gensym", Formals(), builtinGensym,
		`Returns a symbol that does not collide with any symbol in source.`},
	{"cons", Formals("head", "tail"), builtinCons,
		`Joins head and tail.  A list or nil tail produces a list.  Any other
		tail produces a pair.`},
	{"pair", Formals("head", "tail"), builtinCons,
		`Alias for cons.`},
	{"list", Formals(VarArgSymbol, "values"), builtinList,
		`Returns a list containing the given values in order.`},
	{"to-list", Formals("seq"), builtinToList,
		`Returns the elements of a list, range, map or string as a list.`},
	{"head", Formals("seq"), builtinHead,
		`Returns the first element of seq or nil if seq is empty.`},
	{"car", Formals("seq"), builtinHead,
		`Alias for head.`},
	{"tail", Formals("seq"), builtinTail,
		`Returns seq without its first element.`},
	{"cdr", Formals("seq"), builtinTail,
		`Alias for tail.`},
	{"last", Formals("seq"), builtinLast,
		`Returns the last element of seq or nil if seq is empty.`},
	{"nth", Formals("seq", "n"), builtinNth,
		`Returns the element of seq at index n, counting from zero.`},
	{"reverse", Formals("seq"), builtinReverse,
		`Returns a new list containing the elements of seq in reverse order.`},
	{"each", Formals("fn", "seq"), builtinEach,
		`Calls fn with each element of seq and returns nil.`},
	{"map", Formals("fn", "seq"), builtinMap,
		`Returns a list of the results of calling fn on each element of seq.`},
	{"filter", Formals("fn", "seq"), builtinFilter,
		`Returns a list of the elements of seq for which fn returns a true value.`},
	{"reduce", Formals("fn", "init", "seq"), builtinFoldLeft,
		`Combines the elements of seq from left to right by calling
		(fn accumulator element), starting with init.`},
	{"foldl", Formals("fn", "init", "seq"), builtinFoldLeft,
		`Reduces seq from the left, calling (fn acc x) with init as the first acc.`},
	{"foldr", Formals("fn", "init", "seq"), builtinFoldRight,
		`Like foldl but combines the elements of seq from right to left.`},
	{"length", Formals("seq"), builtinLength,
		`Returns the number of elements in a list, range, map or string.`},
	{"concat", Formals("seq", VarArgSymbol, "seqs"), builtinConcat,
		`Concatenates lists, or strings, into a new value.`},
	{"append", Formals("seq", "value"), builtinAppend,
		`Returns a list with value added after the elements of seq.  When
		seq is a string value is concatenated to it.`},
	{"assoc", Formals("map", VarArgSymbol, "pairs"), builtinAssoc,
		`Returns a copy of map with each (key . value) pair added.`},
	{"dissoc", Formals("map", VarArgSymbol, "keys"), builtinDissoc,
		`Returns a copy of map without the given keys.`},
	{"make-map", Formals(VarArgSymbol, "entries"), builtinMakeMap,
		`Creates a map from a list of (key . value) pairs.`},
	{"keys", Formals("map"), builtinKeys,
		`Returns a list of the keys of map in insertion order.`},
	{"values", Formals("map"), builtinValues,
		`Returns a list of the values of map in insertion order.`},
	{"entries", Formals("map"), builtinEntries,
		`Returns a list of (key . value) pairs of map in insertion order.`},
	{"merge", Formals(VarArgSymbol, "maps"), builtinMerge,
		`Returns a new map holding the entries of each map.  Later maps take
		precedence.`},
	{"get", Formals("key", "coll"), builtinGet,
		`Returns the value of key in a map, the element at index key of a
		list or string, or the field key of an object.  Missing map keys
		produce nil.`},
	{"set", Formals("key", "value", "coll"), builtinSetKey,
		`Stores value under key in a map or object, modifying it in place,
		and returns coll.  Lists share structure so a list is never
		modified; the result is a new list with value at index key.`},
	{"has?", Formals("key", "coll"), builtinHas,
		`Returns true if coll contains key.  Lists and strings contain their
		indices and objects contain their field names.`},
	{"copy", Formals("value"), builtinCopy,
		`Returns a shallow copy of a list, map or object.`},
	{"+", Formals(VarArgSymbol, "args"), builtinAdd,
		`Adds numbers.  When the first argument is a string the arguments
		are concatenated instead.  Given fewer than two arguments + returns
		a function awaiting the rest.`},
	{"-", Formals(VarArgSymbol, "args"), builtinSub,
		`Subtracts the remaining arguments from the first.  Called with fewer
		than two arguments it returns a function awaiting the rest.`},
	{"*", Formals(VarArgSymbol, "args"), builtinMul,
		`Returns the product of its arguments.`},
	{"**", Formals(VarArgSymbol, "args"), builtinPow,
		`Raises the first argument to the power of the remaining arguments.`},
	{"/", Formals(VarArgSymbol, "args"), builtinDiv,
		`Divides the first argument by the remaining arguments.`},
	{"//", Formals(VarArgSymbol, "args"), builtinFloorDiv,
		`Divides numbers, rounding each quotient down.`},
	{"%", Formals(VarArgSymbol, "args"), builtinMod,
		`Returns the remainder of dividing the first argument by the remaining arguments.`},
	{"=", Formals("a", "b"), builtinIdentical,
		`Returns true when a and b are equal atoms or the same object.`},
	{"!=", Formals("a", "b"), builtinNotIdentical,
		`Returns true if a and b are not identical.`},
	{"equal?", Formals("a", "b"), builtinEqual,
		`Returns true when a and b are structurally equal.`},
	{"<", Formals("a", "b"), builtinLT,
		`Returns true if a is less than b.`},
	{"<=", Formals("a", "b"), builtinLEQ,
		`Returns true if a is less than or equal to b.`},
	{">", Formals("a", "b"), builtinGT,
		`Returns true if a is greater than b.`},
	{">=", Formals("a", "b"), builtinGEQ,
		`Returns true if a is greater than or equal to b.`},
	{"<=>", Formals("a", "b"), builtinCompare,
		`Returns 1 when a is greater than b, -1 when a is less than b, and 0
		otherwise.`},
	{"number?", Formals("value"), typePredicate(LNumber),
		`Returns true if value is a number.`},
	{"string?", Formals("value"), typePredicate(LString),
		`Returns true if value is a string.`},
	{"boolean?", Formals("value"), typePredicate(LBool),
		`Returns true if value is true or false.`},
	{"nil?", Formals("value"), typePredicate(LNil),
		`Returns true if value is nil.`},
	{"list?", Formals("value"), typePredicate(LList, LNil),
		`Returns true if value is a list or nil.`},
	{"pair?", Formals("value"), typePredicate(LCons, LList),
		`Returns true if value is a pair or a non-empty list.`},
	{"function?", Formals("value"), typePredicate(LFun, LClass),
		`Returns true if value is callable.`},
	{"symbol?", Formals("value"), typePredicate(LSymbol),
		`Returns true if value is a symbol.`},
	{"keyword?", Formals("value"), typePredicate(LKeyword),
		`Returns true if value is a keyword.`},
	{"map?", Formals("value"), typePredicate(LMap),
		`Returns true if value is a map.`},
	{"promise?", Formals("value"), typePredicate(LPromise),
		`Returns true if value is a promise.`},
	{"empty?", Formals("value"), builtinIsEmpty,
		`Returns true if value is nil or an empty list, map, range or string.`},
	{"true?", Formals("value"), builtinIsTrue,
		`Returns true only if value is the boolean true.`},
	{"false?", Formals("value"), builtinIsFalse,
		`Returns true only if value is the boolean false.`},
	{"string", Formals(VarArgSymbol, "values"), builtinToString,
		`Renders values as source text separated by spaces.`},
	{"number", Formals("value"), builtinToNumber,
		`Converts value, a number or numeric string, to a number.`},
	{"boolean", Formals("value"), builtinToBoolean,
		`Converts value to true or false.`},
	{"symbol", Formals("name"), builtinToSymbol,
		`Returns the symbol with the given name.`},
	{"keyword", Formals("name"), builtinToKeyword,
		`Returns the keyword with the given name.`},
	{"print", Formals(VarArgSymbol, "values"), builtinPrint,
		`Writes values separated by spaces to standard output.`},
	{"println", Formals(VarArgSymbol, "values"), builtinPrintln,
		`Prints values separated by spaces followed by a newline.`},
	{"input", Formals(VarArgSymbol, "prompt"), builtinInput,
		`Writes prompt and returns a line read from standard input.`},
	{"read-file", Formals("path"), builtinReadFile,
		`Returns the contents of the file at path as a string.`},
	{"write-file", Formals("path", "data"), builtinWriteFile,
		`Writes the string data to the file at path.`},
	{"file-exists?", Formals("path"), builtinFileExists,
		`Returns true if a file exists at path.`},
	{"apply", Formals("fn", "args"), builtinApply,
		`Calls fn with the elements of the list args as arguments.`},
	{"compose", Formals("f", "g"), builtinCompose,
		`Returns a function of one argument which calls f and then g.`},
	{"pipe", Formals(VarArgSymbol, "fns"), builtinPipe,
		`Returns a function of one argument which passes it through each
		function from left to right.`},
	{"|>", Formals("value", VarArgSymbol, "fns"), builtinPipeValue,
		`Passes value through each function from left to right.`},
	{"curry", Formals("fn"), builtinCurry,
		`Returns a version of fn which collects arguments over successive
		calls until it has as many as fn has parameters.`},
	{"fail", Formals("message", VarArgSymbol, "class"), builtinFail,
		`Raises an exception.  The message may be a string or an instance of
		Exception.  An optional Exception subclass selects the kind of
		exception raised.`},
	{"prop", Formals("name", "value"), builtinProp,
		`Returns the property name of value.  Methods are returned bound to
		their object.`},
	{"new", Formals("class", VarArgSymbol, "args"), builtinNew,
		`Returns a new instance of class constructed with args.`},
	{"set-field!", Formals("field", "value", "object"), builtinSetField,
		`Sets field of object to value and returns object.`},
	{"instance?", Formals("object", "class"), builtinIsInstance,
		`Returns true if object is an instance of class or one of its subclasses.`},
	{"range", Formals("start", VarArgSymbol, "args"), builtinRange,
		`(range end) or (range start end [step]) returns the numbers from
		start, 0 by default, up to but not including end.`},
	{"sleep", Formals("ms"), builtinSleep,
		`Returns a promise which is fulfilled after ms milliseconds.`},
	{"await", Formals("promise"), builtinAwait,
		`Returns the value of a settled promise, running its async call if
		necessary.  Values other than promises are returned unchanged.`},
	{"all", Formals("promises"), builtinAll,
		`Awaits each promise in the list and returns a promise fulfilled
		with the list of their values.`},
}

// RegisterDefaultBuiltin adds the given function to the list returned by
// DefaultBuiltins.
func RegisterDefaultBuiltin(name string, formals *LVal, fn LBuiltin) {
	userBuiltins = append(userBuiltins, &langBuiltin{name, formals.Copy(), fn, ""})
}

// DefaultBuiltins returns the default set of LBuiltinDefs exported by the
// Core module.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins)+len(userBuiltins))
	for i := range langBuiltins {
		ops[i] = langBuiltins[i]
	}
	offset := len(langBuiltins)
	for i := range userBuiltins {
		ops[offset+i] = userBuiltins[i]
	}
	return ops
}

// CoreModule returns the native module exporting DefaultBuiltins.
func CoreModule() *NativeModule {
	return &NativeModule{
		Name: CoreModuleName,
		Doc:  "Core language functions.",
		Create: func(env *LEnv, _ []*LVal) *LVal {
			return BuiltinExports(CoreModuleName, DefaultBuiltins()...)
		},
	}
}

// BuiltinExports returns a map binding the name of each builtin to a function
// value.  Native modules use it to build their exports.
func BuiltinExports(module string, defs ...LBuiltinDef) *LVal {
	m := NewMap()
	for _, def := range defs {
		fn := Fun(fmt.Sprintf("<builtin %s.%s>", module, def.Name()), def.Formals(), def.Eval)
		fn.FunData().Name = def.Name()
		fn.FunData().Doc = def.Docstring()
		if mac, ok := def.(interface{ IsMacro() bool }); ok && mac.IsMacro() {
			fn.FunData().Macro = true
		}
		m.Set(Symbol(def.Name()), fn) //nolint:errcheck // symbols are valid keys
	}
	return MapValue(m)
}

// partial calls fn when at least n arguments are available.  Otherwise it
// returns a function collecting the remaining arguments.
func (env *LEnv) partial(name string, n int, fn LBuiltin, args []*LVal) *LVal {
	if len(args) >= n {
		return fn(env, args)
	}
	held := args[:len(args):len(args)]
	f := Fun(env.getFID(), Formals(VarArgSymbol, "args"), func(env *LEnv, more []*LVal) *LVal {
		return env.partial(name, n, fn, append(held, more...))
	})
	f.FunData().Name = name
	return f
}

func builtinRead(env *LEnv, args []*LVal) *LVal {
	src := args[0]
	if src.Type != LString {
		return env.ErrorConditionf(CondTypeError, "argument is not a string: %v", GetType(src))
	}
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read("read", strings.NewReader(src.Str))
	if err != nil {
		return env.readError(err)
	}
	return ListOf(exprs...)
}

func builtinEval(env *LEnv, args []*LVal) *LVal {
	return env.Eval(args[0])
}

func builtinType(env *LEnv, args []*LVal) *LVal {
	return GetType(args[0])
}

func builtinNot(env *LEnv, args []*LVal) *LVal {
	return Bool(Not(args[0]))
}

func builtinGensym(env *LEnv, args []*LVal) *LVal {
	return env.GenSym()
}

func builtinCons(env *LEnv, args []*LVal) *LVal {
	return Cons(args[0], args[1])
}

func builtinList(env *LEnv, args []*LVal) *LVal {
	return ListOf(args...)
}

// sequence returns the elements of seq.  Maps produce (key . value) pairs.
func (env *LEnv) sequence(seq *LVal) ([]*LVal, *LVal) {
	var cells []*LVal
	lerr := env.iterate(seq, func(x *LVal) bool {
		cells = append(cells, x)
		return true
	})
	if lerr != nil {
		return nil, lerr
	}
	return cells, nil
}

func builtinToList(env *LEnv, args []*LVal) *LVal {
	cells, lerr := env.sequence(args[0])
	if lerr != nil {
		return lerr
	}
	return ListOf(cells...)
}

func builtinHead(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil:
		return Nil()
	case LCons:
		return v.Cells[0]
	case LList:
		return v.List().First()
	}
	return env.ErrorConditionf(CondTypeError, "argument is not a list or pair: %v", GetType(v))
}

func builtinTail(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil:
		return Nil()
	case LCons:
		return v.Cells[1]
	case LList:
		return ListValue(v.List().Rest())
	}
	return env.ErrorConditionf(CondTypeError, "argument is not a list or pair: %v", GetType(v))
}

func builtinLast(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil:
		return Nil()
	case LCons:
		return v.Cells[1]
	case LList:
		return v.List().Last()
	}
	return env.ErrorConditionf(CondTypeError, "argument is not a list or pair: %v", GetType(v))
}

func builtinNth(env *LEnv, args []*LVal) *LVal {
	return env.index(args[0], args[1])
}

// index returns the element of a list or string at the numeric index i.
func (env *LEnv) index(seq, i *LVal) *LVal {
	n, ok := GoInt(i)
	if !ok {
		return env.ErrorConditionf(CondTypeError, "index is not a number: %v", GetType(i))
	}
	switch seq.Type {
	case LNil, LList:
		if n < 0 || n >= seq.Len() {
			return env.Errorf("index out of bounds: list does not contain %d elements", n+1)
		}
		return seq.List().Get(n)
	case LString:
		runes := []rune(seq.Str)
		if n < 0 || n >= len(runes) {
			return env.Errorf("index out of bounds: string does not contain %d characters", n+1)
		}
		return String(string(runes[n]))
	}
	return env.ErrorConditionf(CondTypeError, "value is not indexable: %v", GetType(seq))
}

func builtinReverse(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil:
		return Nil()
	case LList:
		return ListValue(v.List().Reverse())
	case LString:
		runes := []rune(v.Str)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return String(string(runes))
	}
	return env.ErrorConditionf(CondTypeError, "argument is not a list or string: %v", GetType(v))
}

func builtinEach(env *LEnv, args []*LVal) *LVal {
	fn, seq := args[0], args[1]
	var failed *LVal
	lerr := env.iterate(seq, func(x *LVal) bool {
		r := env.Apply(fn, []*LVal{x})
		if r.Type == LError {
			failed = r
			return false
		}
		return true
	})
	if lerr != nil {
		return lerr
	}
	if failed != nil {
		return failed
	}
	return Nil()
}

func builtinMap(env *LEnv, args []*LVal) *LVal {
	fn, seq := args[0], args[1]
	var cells []*LVal
	var failed *LVal
	lerr := env.iterate(seq, func(x *LVal) bool {
		r := env.Apply(fn, []*LVal{x})
		if r.Type == LError {
			failed = r
			return false
		}
		cells = append(cells, r)
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

func builtinFilter(env *LEnv, args []*LVal) *LVal {
	fn, seq := args[0], args[1]
	var cells []*LVal
	var failed *LVal
	lerr := env.iterate(seq, func(x *LVal) bool {
		r := env.Apply(fn, []*LVal{x})
		if r.Type == LError {
			failed = r
			return false
		}
		if True(r) {
			cells = append(cells, x)
		}
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

func builtinFoldLeft(env *LEnv, args []*LVal) *LVal {
	fn, acc := args[0], args[1]
	cells, lerr := env.sequence(args[2])
	if lerr != nil {
		return lerr
	}
	for _, x := range cells {
		acc = env.Apply(fn, []*LVal{acc, x})
		if acc.Type == LError {
			return acc
		}
	}
	return acc
}

func builtinFoldRight(env *LEnv, args []*LVal) *LVal {
	fn, acc := args[0], args[1]
	cells, lerr := env.sequence(args[2])
	if lerr != nil {
		return lerr
	}
	for i := len(cells) - 1; i >= 0; i-- {
		acc = env.Apply(fn, []*LVal{acc, cells[i]})
		if acc.Type == LError {
			return acc
		}
	}
	return acc
}

func builtinLength(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil, LList, LString, LMap, LRange:
		return Int(v.Len())
	}
	return env.ErrorConditionf(CondTypeError, "value has no length: %v", GetType(v))
}

func builtinConcat(env *LEnv, args []*LVal) *LVal {
	if args[0].Type == LString {
		var b strings.Builder
		for _, s := range args {
			if s.Type != LString {
				return env.ErrorConditionf(CondTypeError, "cannot concatenate string and %v", GetType(s))
			}
			b.WriteString(s.Str)
		}
		return String(b.String())
	}
	l := &List{}
	for _, seq := range args {
		if seq.Type != LList && seq.Type != LNil {
			return env.ErrorConditionf(CondTypeError, "cannot concatenate list and %v", GetType(seq))
		}
		if seq.Type == LList {
			l = l.Concat(seq.List())
		}
	}
	return ListValue(l)
}

func builtinAppend(env *LEnv, args []*LVal) *LVal {
	seq, v := args[0], args[1]
	switch seq.Type {
	case LString:
		if v.Type == LString {
			return String(seq.Str + v.Str)
		}
		return String(seq.Str + Print(v, PrintOptions{}))
	case LNil:
		return ListOf(v)
	case LList:
		return ListValue(seq.List().Copy().Append(v))
	}
	return env.ErrorConditionf(CondTypeError, "cannot append to %v", GetType(seq))
}

func (env *LEnv) mapArg(v *LVal) (*MapData, *LVal) {
	if v.Type != LMap || v.Literal {
		return nil, env.ErrorConditionf(CondTypeError, "argument is not a map: %v", GetType(v))
	}
	return v.Map(), nil
}

// setEntries stores each (key . value) pair of entries in m.  Two element
// lists are accepted as pairs.
func (env *LEnv) setEntries(m *MapData, entries []*LVal) *LVal {
	for _, e := range entries {
		var k, v *LVal
		switch {
		case e.Type == LCons:
			k, v = e.Cells[0], e.Cells[1]
		case e.Type == LList && e.Len() == 2:
			k, v = e.List().First(), e.List().Last()
		default:
			return env.ErrorConditionf(CondTypeError, "map entry is not a pair: %v", e)
		}
		if err := m.Set(k, v); err != nil {
			return env.ErrorCondition(CondTypeError, err)
		}
	}
	return nil
}

func builtinAssoc(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg(args[0])
	if lerr != nil {
		return lerr
	}
	cp := m.Copy()
	if lerr := env.setEntries(cp, args[1:]); lerr != nil {
		return lerr
	}
	return MapValue(cp)
}

func builtinDissoc(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg(args[0])
	if lerr != nil {
		return lerr
	}
	cp := m.Copy()
	for _, k := range args[1:] {
		cp.Delete(k)
	}
	return MapValue(cp)
}

func builtinMakeMap(env *LEnv, args []*LVal) *LVal {
	entries := args
	if len(args) == 1 && (args[0].Type == LList || args[0].Type == LNil) {
		entries = args[0].Items()
	}
	m := NewMap()
	if lerr := env.setEntries(m, entries); lerr != nil {
		return lerr
	}
	return MapValue(m)
}

func builtinKeys(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg(args[0])
	if lerr != nil {
		return lerr
	}
	return ListOf(m.Keys()...)
}

func builtinValues(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg(args[0])
	if lerr != nil {
		return lerr
	}
	return ListOf(m.Values()...)
}

func builtinEntries(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg(args[0])
	if lerr != nil {
		return lerr
	}
	return ListOf(m.Entries()...)
}

func builtinMerge(env *LEnv, args []*LVal) *LVal {
	merged := NewMap()
	for _, v := range args {
		m, lerr := env.mapArg(v)
		if lerr != nil {
			return lerr
		}
		m.Each(func(k, x *LVal) bool {
			merged.Set(k, x) //nolint:errcheck // keys came from a map
			return true
		})
	}
	return MapValue(merged)
}

func builtinGet(env *LEnv, args []*LVal) *LVal {
	k, coll := args[0], args[1]
	switch coll.Type {
	case LMap:
		v, ok := coll.Map().Get(k)
		if !ok {
			return Nil()
		}
		return v
	case LObject:
		name, ok := bindingName(k)
		if !ok {
			return env.ErrorConditionf(CondTypeError, "field name is not a symbol: %v", k)
		}
		return env.GetProp(coll, name)
	}
	return env.index(coll, k)
}

func builtinSetKey(env *LEnv, args []*LVal) *LVal {
	k, v, coll := args[0], args[1], args[2]
	switch coll.Type {
	case LMap:
		if err := coll.Map().Set(k, v); err != nil {
			return env.ErrorCondition(CondTypeError, err)
		}
		return coll
	case LList:
		n, ok := GoInt(k)
		if !ok || n < 0 || n >= coll.Len() {
			return env.Errorf("index out of bounds: %v", k)
		}
		return ListValue(coll.List().With(n, v))
	case LObject:
		name, ok := bindingName(k)
		if !ok {
			return env.ErrorConditionf(CondTypeError, "field name is not a symbol: %v", k)
		}
		env.SetField(coll, name, v)
		return coll
	}
	return env.ErrorConditionf(CondTypeError, "cannot set a key of %v", GetType(coll))
}

func builtinHas(env *LEnv, args []*LVal) *LVal {
	k, coll := args[0], args[1]
	switch coll.Type {
	case LMap:
		return Bool(coll.Map().Has(k))
	case LNil, LList, LString:
		n, ok := GoInt(k)
		return Bool(ok && n >= 0 && n < coll.Len())
	case LObject:
		name, ok := bindingName(k)
		return Bool(ok && coll.Object().Fields.Has(Symbol(name)))
	}
	return env.ErrorConditionf(CondTypeError, "cannot look up a key of %v", GetType(coll))
}

func builtinCopy(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LCons:
		return Pair(v.Cells[0], v.Cells[1])
	case LObject:
		od := v.Object()
		return &LVal{
			Source: v.Source,
			Type:   LObject,
			Native: &ObjectData{Class: od.Class, Fields: od.Fields.Copy()},
		}
	}
	return v.Copy()
}

func (env *LEnv) numbers(args []*LVal) ([]float64, *LVal) {
	nums := make([]float64, len(args))
	for i, v := range args {
		if v.Type != LNumber {
			return nil, env.ErrorConditionf(CondTypeError, "argument is not a number: %v", GetType(v))
		}
		nums[i] = v.Num
	}
	return nums, nil
}

// arithmetic returns a builtin folding its arguments with op.  The builtin
// is partially applied until it has two arguments.
func arithmetic(name string, op func(a, b float64) float64) LBuiltin {
	fold := func(env *LEnv, args []*LVal) *LVal {
		nums, lerr := env.numbers(args)
		if lerr != nil {
			return lerr
		}
		acc := nums[0]
		for _, x := range nums[1:] {
			acc = op(acc, x)
		}
		return Number(acc)
	}
	return func(env *LEnv, args []*LVal) *LVal {
		return env.partial(name, 2, fold, args)
	}
}

var (
	builtinSub = arithmetic("-", func(a, b float64) float64 { return a - b })
	builtinMul = arithmetic("*", func(a, b float64) float64 { return a * b })
	builtinPow = arithmetic("**", math.Pow)
	builtinDiv = arithmetic("/", func(a, b float64) float64 { return a / b })
	builtinMod = arithmetic("%", math.Mod)

	builtinFloorDiv = arithmetic("//", func(a, b float64) float64 { return math.Floor(a / b) })
)

func builtinAdd(env *LEnv, args []*LVal) *LVal {
	return env.partial("+", 2, func(env *LEnv, args []*LVal) *LVal {
		if args[0].Type == LString {
			var b strings.Builder
			for _, v := range args {
				b.WriteString(Print(v, PrintOptions{}))
			}
			return String(b.String())
		}
		nums, lerr := env.numbers(args)
		if lerr != nil {
			return lerr
		}
		sum := 0.0
		for _, x := range nums {
			sum += x
		}
		return Number(sum)
	}, args)
}

func builtinIdentical(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Identical(args[1]))
}

func builtinNotIdentical(env *LEnv, args []*LVal) *LVal {
	return Bool(!args[0].Identical(args[1]))
}

func builtinEqual(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Equal(args[1]))
}

// compare orders two numbers or two strings.
func (env *LEnv) compare(a, b *LVal) (int, *LVal) {
	switch {
	case a.Type == LNumber && b.Type == LNumber:
		switch {
		case a.Num < b.Num:
			return -1, nil
		case a.Num > b.Num:
			return 1, nil
		}
		return 0, nil
	case a.Type == LString && b.Type == LString:
		return strings.Compare(a.Str, b.Str), nil
	}
	return 0, env.ErrorConditionf(CondTypeError, "cannot compare %v and %v", GetType(a), GetType(b))
}

func comparison(test func(c int) bool) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		c, lerr := env.compare(args[0], args[1])
		if lerr != nil {
			return lerr
		}
		return Bool(test(c))
	}
}

var (
	builtinLT  = comparison(func(c int) bool { return c < 0 })
	builtinLEQ = comparison(func(c int) bool { return c <= 0 })
	builtinGT  = comparison(func(c int) bool { return c > 0 })
	builtinGEQ = comparison(func(c int) bool { return c >= 0 })
)

func builtinCompare(env *LEnv, args []*LVal) *LVal {
	c, lerr := env.compare(args[0], args[1])
	if lerr != nil {
		return lerr
	}
	return Int(c)
}

func typePredicate(types ...LType) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		for _, t := range types {
			if args[0].Type == t {
				return Bool(true)
			}
		}
		return Bool(false)
	}
}

func builtinIsEmpty(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNil:
		return Bool(true)
	case LList, LString, LMap, LRange:
		return Bool(v.Len() == 0)
	}
	return Bool(false)
}

func builtinIsTrue(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type == LBool && args[0].Str == TrueSymbol)
}

func builtinIsFalse(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type == LBool && args[0].Str == FalseSymbol)
}

func builtinToString(env *LEnv, args []*LVal) *LVal {
	strs := make([]string, len(args))
	for i, v := range args {
		strs[i] = Print(v, PrintOptions{QuoteStrings: true})
	}
	return String(strings.Join(strs, " "))
}

func builtinToNumber(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LNumber:
		return v
	case LNil:
		return Number(0)
	case LBool:
		if True(v) {
			return Number(1)
		}
		return Number(0)
	case LString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return Number(0)
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number(math.NaN())
		}
		return Number(x)
	}
	return env.ErrorConditionf(CondTypeError, "cannot convert %v to a number", GetType(v))
}

func builtinToBoolean(env *LEnv, args []*LVal) *LVal {
	return Bool(True(args[0]))
}

func builtinToSymbol(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LSymbol:
		return v
	case LString, LKeyword:
		return Symbol(v.Str)
	}
	return env.ErrorConditionf(CondTypeError, "cannot convert %v to a symbol", GetType(v))
}

func builtinToKeyword(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	switch v.Type {
	case LKeyword:
		return v
	case LString, LSymbol:
		return Keyword(v.Str)
	}
	return env.ErrorConditionf(CondTypeError, "cannot convert %v to a keyword", GetType(v))
}

func printArgs(args []*LVal) string {
	strs := make([]string, len(args))
	for i, v := range args {
		strs[i] = Print(v, PrintOptions{})
	}
	return strings.Join(strs, " ")
}

func builtinPrint(env *LEnv, args []*LVal) *LVal {
	_, err := fmt.Fprint(env.Runtime.Stdout, printArgs(args))
	if err != nil {
		return env.Error(err)
	}
	return Nil()
}

func builtinPrintln(env *LEnv, args []*LVal) *LVal {
	_, err := fmt.Fprintln(env.Runtime.Stdout, printArgs(args))
	if err != nil {
		return env.Error(err)
	}
	return Nil()
}

func builtinInput(env *LEnv, args []*LVal) *LVal {
	if len(args) > 0 {
		fmt.Fprint(env.Runtime.Stdout, printArgs(args[:1])) //nolint:errcheck // prompt is best effort
	}
	if env.Runtime.Stdin == nil {
		return env.Errorf("no standard input for environment runtime")
	}
	line, err := bufio.NewReader(env.Runtime.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return env.Error(err)
	}
	return String(strings.TrimRight(line, "\r\n"))
}

func (env *LEnv) pathArg(v *LVal) (string, *LVal) {
	if v.Type != LString {
		return "", env.ErrorConditionf(CondTypeError, "path is not a string: %v", GetType(v))
	}
	return v.Str, nil
}

func builtinReadFile(env *LEnv, args []*LVal) *LVal {
	path, lerr := env.pathArg(args[0])
	if lerr != nil {
		return lerr
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return env.Error(err)
	}
	return String(string(b))
}

func builtinWriteFile(env *LEnv, args []*LVal) *LVal {
	path, lerr := env.pathArg(args[0])
	if lerr != nil {
		return lerr
	}
	data := args[1].Str
	if args[1].Type != LString {
		data = Print(args[1], PrintOptions{})
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil { //nolint:gosec // scripts choose their own files
		return env.Error(err)
	}
	return Nil()
}

func builtinFileExists(env *LEnv, args []*LVal) *LVal {
	path, lerr := env.pathArg(args[0])
	if lerr != nil {
		return lerr
	}
	_, err := os.Stat(path)
	return Bool(err == nil)
}

func builtinApply(env *LEnv, args []*LVal) *LVal {
	fn, list := args[0], args[1]
	if list.Type != LList && list.Type != LNil {
		return env.ErrorConditionf(CondTypeError, "second argument is not a list: %v", GetType(list))
	}
	return env.Apply(fn, list.Items())
}

// composed returns a function of one argument passing it through fns.
func (env *LEnv) composed(name string, fns []*LVal) *LVal {
	f := Fun(env.getFID(), Formals("x"), func(env *LEnv, args []*LVal) *LVal {
		return env.pipe(args[0], fns)
	})
	f.FunData().Name = name
	return f
}

func (env *LEnv) pipe(v *LVal, fns []*LVal) *LVal {
	for _, fn := range fns {
		v = env.Apply(fn, []*LVal{v})
		if v.Type == LError {
			return v
		}
	}
	return v
}

func builtinCompose(env *LEnv, args []*LVal) *LVal {
	return env.composed("compose", args[:2])
}

func builtinPipe(env *LEnv, args []*LVal) *LVal {
	return env.composed("pipe", args)
}

func builtinPipeValue(env *LEnv, args []*LVal) *LVal {
	return env.pipe(args[0], args[1:])
}

func builtinCurry(env *LEnv, args []*LVal) *LVal {
	fn := args[0]
	if fn.Type != LFun {
		return env.ErrorConditionf(CondTypeError, "argument is not a function: %v", GetType(fn))
	}
	fd := fn.FunData()
	n := fd.Arity()
	if fd.IsBuiltin() {
		n = fd.MinArgs
	}
	if n == 0 {
		return fn
	}
	return env.partial(fd.DisplayName(), n, func(env *LEnv, args []*LVal) *LVal {
		return env.Apply(fn, args)
	}, nil)
}

func builtinFail(env *LEnv, args []*LVal) *LVal {
	msg := args[0]
	exn := msg
	if msg.Type != LObject {
		cls, ok := env.Lookup("Exception")
		if len(args) > 1 {
			cls, ok = args[1], true
		}
		if !ok || cls.Type != LClass {
			return env.ErrorConditionf(CondTypeError, "fail: not an exception class: %v", cls)
		}
		exn = env.Construct(cls, []*LVal{msg})
		if exn.Type == LError {
			return exn
		}
	}
	return env.raise(exn)
}

// raise returns an error for the exception object exn.  Instances of
// RuntimeException have the runtime-exception condition and all other
// objects the exception condition.  The error keeps exn so that a catch
// clause binds the object which was raised.
func (env *LEnv) raise(exn *LVal) *LVal {
	cond := CondException
	if rte, ok := env.Lookup("RuntimeException"); ok && IsInstance(exn, rte) {
		cond = CondRuntimeError
	}
	return env.ErrorCondition(cond, exn)
}

func exceptionMessage(exn *LVal) string {
	if m, ok := exn.Object().Fields.Get(Symbol("message")); ok {
		return Print(m, PrintOptions{})
	}
	return Print(exn, PrintOptions{})
}

// caught returns the value a catch clause binds for the error lerr.  Errors
// raised by fail give back their exception object.  Any other error is
// wrapped in a new Exception holding its message.  In both cases the
// object's condition field names the error's condition as a keyword.
func (env *LEnv) caught(lerr *LVal) *LVal {
	var exn *LVal
	if len(lerr.Cells) == 1 && lerr.Cells[0].Type == LObject {
		exn = lerr.Cells[0]
	} else {
		cls := env.Runtime.exceptionClass
		if cls == nil {
			cls = NewClass("Exception", nil, "message")
		}
		exn = &LVal{
			Source: lerr.Source,
			Type:   LObject,
			Native: &ObjectData{Class: cls, Fields: NewMap()},
		}
		exn.Object().Fields.Set(Symbol("message"), String((*ErrorVal)(lerr).ErrorMessage())) //nolint:errcheck // symbols are valid keys
	}
	exn.Object().Fields.Set(Symbol("condition"), Keyword(lerr.Str)) //nolint:errcheck // symbols are valid keys
	return exn
}

func builtinProp(env *LEnv, args []*LVal) *LVal {
	name, ok := bindingName(args[0])
	if !ok {
		return env.ErrorConditionf(CondTypeError, "property name is not a symbol or string: %v", args[0])
	}
	return env.GetProp(args[1], name)
}

func builtinNew(env *LEnv, args []*LVal) *LVal {
	return env.Construct(args[0], args[1:])
}

func builtinSetField(env *LEnv, args []*LVal) *LVal {
	name, ok := bindingName(args[0])
	if !ok {
		return env.ErrorConditionf(CondTypeError, "field name is not a symbol or string: %v", args[0])
	}
	r := env.SetField(args[2], name, args[1])
	if r.Type == LError {
		return r
	}
	return args[2]
}

func builtinIsInstance(env *LEnv, args []*LVal) *LVal {
	return Bool(IsInstance(args[0], args[1]))
}

func builtinRange(env *LEnv, args []*LVal) *LVal {
	nums, lerr := env.numbers(args)
	if lerr != nil {
		return lerr
	}
	start, end, step := 0.0, nums[0], 1.0
	switch len(nums) {
	case 1:
	case 2:
		start, end = nums[0], nums[1]
	case 3:
		start, end, step = nums[0], nums[1], nums[2]
	default:
		return env.ErrorConditionf(CondArityError, "range: expected at most 3 arguments (got %d)", len(nums))
	}
	r, err := NewRange(start, end, step)
	if err != nil {
		return env.ErrorCondition(CondTypeError, err)
	}
	return RangeValue(r)
}

func builtinSleep(env *LEnv, args []*LVal) *LVal {
	ms, ok := GoFloat64(args[0])
	if !ok {
		return env.ErrorConditionf(CondTypeError, "argument is not a number: %v", GetType(args[0]))
	}
	if ms < 0 {
		return env.Errorf("negative sleep duration: %v", ms)
	}
	return env.Runtime.Scheduler.Go(func() (*LVal, error) {
		time.Sleep(time.Duration(ms * float64(time.Millisecond)))
		return Nil(), nil
	})
}

func builtinAwait(env *LEnv, args []*LVal) *LVal {
	return env.Runtime.Scheduler.Await(env, args[0])
}

func builtinAll(env *LEnv, args []*LVal) *LVal {
	list := args[0]
	if list.Type != LList && list.Type != LNil {
		return env.ErrorConditionf(CondTypeError, "argument is not a list: %v", GetType(list))
	}
	p := newPromise()
	cells := make([]*LVal, 0, list.Len())
	for _, v := range list.Items() {
		r := env.Runtime.Scheduler.Await(env, v)
		if r.Type == LError {
			p.settle(r)
			return PromiseValue(p)
		}
		cells = append(cells, r)
	}
	p.settle(ListOf(cells...))
	return PromiseValue(p)
}

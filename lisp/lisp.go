// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/daniel/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LValType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LNumber values store a float64 in the LVal.Num field.
	LNumber
	// LString values store a string in the LVal.Str field.
	LString
	// LBool values store either TrueSymbol or FalseSymbol in LVal.Str.
	LBool
	// LNil is the absent value.  It is also the representation of an empty
	// list, which is never exposed to lisp code as a list.
	LNil
	// LSymbol values store the symbol's name in the LVal.Str field.
	LSymbol
	// LKeyword values are self-evaluating symbols whose name, stored in
	// LVal.Str, begins with a colon.
	LKeyword
	// LCons values are improper pairs.  The head is stored in LVal.Cells[0]
	// and the tail in LVal.Cells[1].
	LCons
	// LList values store a non-empty *List in the LVal.Native field.
	LList
	// LMap values store a *MapData in the LVal.Native field.  A map literal
	// read from source has the LVal.Literal flag set and stores its
	// unevaluated key and value expressions, alternating, in LVal.Cells.
	LMap
	// LFun values store a *FunData in the LVal.Native field.
	LFun
	// LClass values store a *ClassData in the LVal.Native field.
	LClass
	// LObject values store an *ObjectData in the LVal.Native field.
	LObject
	// LSuper values are views of a superclass's methods bound to a receiver.
	// They store a *SuperData in the LVal.Native field.
	LSuper
	// LModule values store a *ModuleData in the LVal.Native field.
	LModule
	// LError values store the error condition in LVal.Str and the error
	// message (data of any type) in LVal.Cells.  In addition, LError values
	// store a copy of the function call stack at the time of their creation
	// in the LVal.Native field.
	LError
	// LPromise values store a *Promise in the LVal.Native field.
	LPromise
	// LRange values store a *RangeData in the LVal.Native field.
	LRange
	// LNative values store a Go value in the LVal.Native field and can be used
	// by builtin functions to store values of any type.
	LNative
	// LMarkMacExpand values are returned by macro calls to signal to the LEnv
	// that the expanded expression, stored in LVal.Cells[0], must be
	// evaluated.  Applications should never see them.
	LMarkMacExpand
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.  It also can be used to determine the
	// number of valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid:       "INVALID",
	LNumber:        "number",
	LString:        "string",
	LBool:          "boolean",
	LNil:           "nil",
	LSymbol:        "symbol",
	LKeyword:       "keyword",
	LCons:          "pair",
	LList:          "list",
	LMap:           "map",
	LFun:           "function",
	LClass:         "class",
	LObject:        "object",
	LSuper:         "super",
	LModule:        "module",
	LError:         "error",
	LPromise:       "promise",
	LRange:         "range",
	LNative:        "native",
	LMarkMacExpand: "marker-macro-expansion",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the values originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Str used by LString, LSymbol, LKeyword, LBool and LError values.
	Str string

	// Cells used by some values as a storage space for lisp objects.
	Cells []*LVal

	// Type is the native type for a value in lisp.
	Type LType

	// Num holds the value of LNumber values.
	Num float64

	// Literal marks an LMap read from source whose Cells still need
	// evaluation.
	Literal bool
}

// GetType returns a symbol denoting v's type.
func GetType(v *LVal) *LVal {
	return Symbol(v.Type.String())
}

// Value conveniently converts v to an LVal.  Types which can be represented
// directly in lisp will be converted to the appropriate LVal.  All other types
// will be turned into a Native LVal.  Value is the inverse of the GoValue
// function.
func Value(v interface{}) *LVal {
	switch v := v.(type) {
	case nil:
		return Nil()
	case *LVal:
		return v
	case bool:
		return Bool(v)
	case string:
		return String(v)
	case int:
		return Int(v)
	case int64:
		return Number(float64(v))
	case float64:
		return Number(v)
	case []*LVal:
		return ListOf(v...)
	case []interface{}:
		cells := make([]*LVal, len(v))
		for i := range v {
			cells[i] = Value(v[i])
		}
		return ListOf(cells...)
	case map[string]interface{}:
		m := NewMap()
		for k, x := range v {
			m.Set(String(k), Value(x)) //nolint:errcheck // string keys are always valid
		}
		return MapValue(m)
	default:
		return Native(v)
	}
}

// Number returns an LVal representing the number x.
func Number(x float64) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNumber,
		Num:    x,
	}
}

// Int returns an LVal representing the integer x.
func Int(x int) *LVal {
	return Number(float64(x))
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LString,
		Str:    str,
	}
}

// Bool returns an LVal representing b.
func Bool(b bool) *LVal {
	s := FalseSymbol
	if b {
		s = TrueSymbol
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LBool,
		Str:    s,
	}
}

// Nil returns an LVal representing nil, an empty list, an absent value.
func Nil() *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNil,
	}
}

// Symbol returns an LVal representing the symbol s
func Symbol(s string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LSymbol,
		Str:    s,
	}
}

// Keyword returns an LVal representing the keyword :s.  The leading colon is
// optional in s.
func Keyword(s string) *LVal {
	if !strings.HasPrefix(s, ":") {
		s = ":" + s
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LKeyword,
		Str:    s,
	}
}

// Native returns an LVal containng a native Go value.
func Native(v interface{}) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNative,
		Native: v,
	}
}

// ListOf returns a list containing cells.  When cells is empty ListOf
// returns nil.
func ListOf(cells ...*LVal) *LVal {
	if len(cells) == 0 {
		return Nil()
	}
	return ListValue(NewList(cells...))
}

// ListValue returns an LVal for l.  An empty or nil l produces nil.
func ListValue(l *List) *LVal {
	if l.Len() == 0 {
		return Nil()
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LList,
		Native: l,
	}
}

// Pair returns an improper pair (head . tail).
func Pair(head, tail *LVal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LCons,
		Cells:  []*LVal{head, tail},
	}
}

// Cons joins head and tail.  When tail is a list the result is a new list
// sharing tail's structure.  When tail is nil the result is a list of one
// element.  Otherwise the result is a pair.
func Cons(head, tail *LVal) *LVal {
	switch tail.Type {
	case LList:
		return ListValue(tail.List().Prepend(head))
	case LNil:
		return ListOf(head)
	default:
		return Pair(head, tail)
	}
}

// MapValue returns an LVal for the map m.
func MapValue(m *MapData) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LMap,
		Native: m,
	}
}

// MapLiteral returns an unevaluated map expression whose keys and values
// alternate in cells.
func MapLiteral(cells []*LVal) *LVal {
	return &LVal{
		Source:  nativeSource(),
		Type:    LMap,
		Literal: true,
		Cells:   cells,
	}
}

// Program returns the implicit (do ...) form for a sequence of top-level
// expressions.
func Program(exprs []*LVal) *LVal {
	do := Symbol(DoSymbol)
	if len(exprs) > 0 {
		do.Source = exprs[0].Source
	}
	return ListOf(append([]*LVal{do}, exprs...)...)
}

// Quote returns the expression (quote v).
func Quote(v *LVal) *LVal {
	return ListOf(Symbol(QuoteSymbol), v)
}

// Error returns an LError representing err.  Errors store their message in
// Cells and their condition type in Str.
//
// Errors generated during expression evaluation typically have a non-nil Stack
// field.  The Env.Error() method is typically the preferred method for
// creating error LVal objects because it initializes Stack with an appropriate
// value.
func Error(err error) *LVal {
	return ErrorCondition(CondError, err)
}

// ErrorCondition returns an LError representing err and having the given
// condition type.
func ErrorCondition(condition string, err error) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LError,
		Str:    condition,
		Cells:  []*LVal{Native(err)},
	}
}

// Errorf returns an LError with a formatted error message.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError with a formatted error message and the
// given condition type.
//
// The Env.ErrorConditionf() method is typically the preferred method for
// creating error LVal objects because it initializes Stack with an
// appropriate value.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LError,
		Str:    condition,
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// Formals returns an LVal reprsenting a function's formal argument list
// containing symbols with the given names.
func Formals(argSymbols ...string) *LVal {
	cells := make([]*LVal, len(argSymbols))
	for i, name := range argSymbols {
		if name == VarArgSymbol && i != len(argSymbols)-2 {
			return Errorf("invalid formal arguments: misplaced %s", VarArgSymbol)
		}
		cells[i] = Symbol(name)
	}
	return ListOf(cells...)
}

func markMacExpand(expr *LVal) *LVal {
	return &LVal{
		Type:  LMarkMacExpand,
		Cells: []*LVal{expr},
	}
}

func (v *LVal) CallStack() *CallStack {
	if v.Type != LError {
		panic("not an error: " + v.Type.String())
	}
	stack, ok := v.Native.(*CallStack)
	if !ok {
		return nil
	}
	return stack
}

func (v *LVal) SetCallStack(stack *CallStack) {
	if v.Type != LError {
		panic("not an error: " + v.Type.String())
	}
	v.Native = stack
}

// List returns the backing list of v, or nil when v is not a list.
func (v *LVal) List() *List {
	if v.Type != LList {
		return nil
	}
	l, _ := v.Native.(*List)
	return l
}

// Map returns the backing map of v, or nil when v is not an evaluated map.
func (v *LVal) Map() *MapData {
	if v.Type != LMap || v.Literal {
		return nil
	}
	m, _ := v.Native.(*MapData)
	return m
}

func (v *LVal) FunData() *FunData {
	fd, _ := v.Native.(*FunData)
	return fd
}

func (v *LVal) Range() *RangeData {
	r, _ := v.Native.(*RangeData)
	return r
}

// Items returns the elements of a list as a slice.  Nil produces an empty
// slice and any other value produces nil.
func (v *LVal) Items() []*LVal {
	switch v.Type {
	case LNil:
		return []*LVal{}
	case LList:
		return v.List().Values()
	}
	return nil
}

// Len returns the length of a list, string, map or range.  Other values have
// a length of zero.
func (v *LVal) Len() int {
	switch v.Type {
	case LList:
		return v.List().Len()
	case LString:
		return len([]rune(v.Str))
	case LMap:
		if v.Literal {
			return len(v.Cells) / 2
		}
		return v.Map().Len()
	case LRange:
		return v.Range().Len()
	}
	return 0
}

// IsNil returns true if v represents nil.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsMacro returns true if v is a macro.
func (v *LVal) IsMacro() bool {
	return v.Type == LFun && v.FunData().Macro
}

// Equal returns true when v and other are the same value.  Atoms compare by
// value.  Lists, pairs, maps and ranges compare structurally.  All other
// values compare by identity.
func (v *LVal) Equal(other *LVal) bool {
	if v == other {
		return true
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNumber:
		return v.Num == other.Num
	case LString, LSymbol, LKeyword, LBool:
		return v.Str == other.Str
	case LNil:
		return true
	case LCons:
		return v.Cells[0].Equal(other.Cells[0]) && v.Cells[1].Equal(other.Cells[1])
	case LList:
		return v.List().Equal(other.List())
	case LMap:
		if v.Literal || other.Literal {
			return false
		}
		return v.Map().Equal(other.Map())
	case LRange:
		return *v.Range() == *other.Range()
	}
	return v.Native != nil && v.Native == other.Native
}

// Identical returns true when v and other are equal atoms or references to
// the same object.  It is the equality used by the = operator.
func (v *LVal) Identical(other *LVal) bool {
	if v == other {
		return true
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNumber, LString, LSymbol, LKeyword, LBool, LNil:
		return v.Equal(other)
	case LCons:
		return v.Cells[0] == other.Cells[0] && v.Cells[1] == other.Cells[1]
	case LRange:
		return *v.Range() == *other.Range()
	}
	return v.Native != nil && v.Native == other.Native
}

// Copy returns a shallow copy of v.  Lists and maps are copied one level
// deep so that the copy may be modified without affecting v.
func (v *LVal) Copy() *LVal {
	if v == nil {
		return nil
	}
	cp := &LVal{}
	*cp = *v
	switch v.Type {
	case LList:
		cp.Native = v.List().Copy()
	case LMap:
		if !v.Literal {
			cp.Native = v.Map().Copy()
		}
	}
	if v.Cells != nil {
		cp.Cells = make([]*LVal, len(v.Cells))
		copy(cp.Cells, v.Cells)
	}
	return cp
}

func (v *LVal) String() string {
	return Print(v, PrintOptions{QuoteStrings: true})
}

// Docstring returns the docstring of the function reference v.  If v is not
// a function Docstring returns the empty string.
func (v *LVal) Docstring() string {
	if v.Type != LFun {
		return ""
	}
	return v.FunData().Doc
}

var defaultSourceLocation = &token.Location{
	File: "<native code>",
	Pos:  -1,
}

func nativeSource() *token.Location {
	return defaultSourceLocation
}

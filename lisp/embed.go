// Copyright © 2018 The ELPS authors

package lisp

import "reflect"

// True interprets v as a boolean and returns the result.  Only false and nil
// are false.
func True(v *LVal) bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Str != FalseSymbol
	}
	return true
}

// Not interprets v as a boolean value and returns its negation.
func Not(v *LVal) bool {
	return !True(v)
}

// GoValue converts v to its natural representation in Go.  Lists are turned
// into slices and maps into Go maps.  Symbols and keywords are converted to
// strings.  The value Nil() is converted to nil.  Functions are returned as
// is.
func GoValue(v *LVal) interface{} {
	switch v.Type {
	case LNil:
		return nil
	case LError:
		return (error)((*ErrorVal)(v))
	case LSymbol, LString, LKeyword:
		return v.Str
	case LBool:
		return v.Str == TrueSymbol
	case LNumber:
		return v.Num
	case LList, LRange:
		s, _ := GoSlice(v)
		return s
	case LMap:
		m, _ := GoMap(v)
		return m
	case LNative:
		return v.Native
	}
	return v
}

// GoString returns the string that v represents and the value true.  If v does
// not represent a string GoString returns a false second argument
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}

// SymbolName returns the name of the symbol that v represents and the value
// true.  If v does not represent a symbol SymbolName returns a false second
// argument
func SymbolName(v *LVal) (string, bool) {
	if v.Type != LSymbol {
		return "", false
	}
	return v.Str, true
}

// GoInt converts the numeric value that v represents to and int and returns it
// with the value true.  If v does not represent a number GoInt returns a
// false second argument
func GoInt(v *LVal) (int, bool) {
	if v.Type != LNumber {
		return 0, false
	}
	return int(v.Num), true
}

// GoFloat64 returns the number that v represents with the value true.  If v
// does not represent a number GoFloat64 returns a false second argument
func GoFloat64(v *LVal) (float64, bool) {
	if v.Type != LNumber {
		return 0, false
	}
	return v.Num, true
}

// GoSlice converts a list, range or nil to a slice of Go values and returns
// it with the value true.  For any other value GoSlice returns a false second
// argument
func GoSlice(v *LVal) ([]interface{}, bool) {
	var cells []*LVal
	switch v.Type {
	case LNil, LList:
		cells = v.Items()
	case LRange:
		cells = v.Range().Values()
	default:
		return nil, false
	}
	vs := make([]interface{}, len(cells))
	for i := range vs {
		vs[i] = GoValue(cells[i])
	}
	return vs, true
}

// GoMap converts an LMap to its Go equivalent and returns it with a true
// second argument.  If v does not represent a map GoMap returns a false second
// argument.  When a key converts to an incomparable Go value GoMap returns
// (nil, true).
func GoMap(v *LVal) (map[interface{}]interface{}, bool) {
	if v.Type != LMap || v.Literal {
		return nil, false
	}
	m := make(gomap, v.Map().Len())
	ok := true
	v.Map().Each(func(k, x *LVal) bool {
		ok = checkGoMapInsert(m, k, x)
		return ok
	})
	if !ok {
		return nil, true
	}
	return m, true
}

func checkGoMapInsert(m gomap, lk, lv *LVal) (ok bool) {
	// k is definitely assignable to m's key type (interface{}) but map keys
	// must also be comparable which is not known without reflection on k's
	// type (or through recovering a failed map assignment).
	k := GoValue(lk)
	if k == nil || reflect.TypeOf(k).Comparable() {
		m[k] = GoValue(lv)
		return true
	}
	return false
}

type gomap = map[interface{}]interface{}

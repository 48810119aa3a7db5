// Copyright © 2024 The ELPS authors

package lisp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	l := NewList(Int(1), Int(2), Int(3))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 1.0, l.First().Num)
	assert.Equal(t, 3.0, l.Last().Num)
	assert.Equal(t, 2.0, l.Get(1).Num)
	assert.Equal(t, 3.0, l.Get(-1).Num)
	assert.Nil(t, l.Get(3))
	assert.True(t, l.Has(Int(2)))
	assert.False(t, l.Has(String("2")))

	rest := l.Rest()
	assert.Equal(t, "(2 3)", ListValue(rest).String())
	assert.Equal(t, "(3 2 1)", ListValue(l.Reverse()).String())
	assert.Equal(t, "(2)", ListValue(l.Slice(1, 2)).String())
	assert.Equal(t, 0, l.Slice(2, 1).Len())
	assert.Equal(t, "(1 2 3 1 2 3)", ListValue(l.Concat(l)).String())

	// Prepend shares structure with l.
	p := l.Prepend(Int(0))
	assert.Equal(t, "(0 1 2 3)", ListValue(p).String())
	assert.Equal(t, 3, l.Len())
}

func TestList_appendShared(t *testing.T) {
	l := NewList(Int(1))
	a := l.Append(Int(2))
	b := l.Append(Int(3))
	assert.Equal(t, "(1 2)", ListValue(a).String())
	assert.Equal(t, "(1 3)", ListValue(b).String())
	assert.Equal(t, "(1)", ListValue(l).String())
	assert.Equal(t, "(1)", ListValue(NewList().Append(Int(1))).String())
}

func TestList_empty(t *testing.T) {
	var l *List
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.First())
	assert.Equal(t, LNil, ListValue(l).Type)
	assert.Equal(t, LNil, ListOf().Type)
	assert.Equal(t, 0, NewList(Int(1)).Rest().Len())
}

func TestCons(t *testing.T) {
	assert.Equal(t, "(1)", Cons(Int(1), Nil()).String())
	assert.Equal(t, "(1 2 3)", Cons(Int(1), ListOf(Int(2), Int(3))).String())
	assert.Equal(t, "(1 . 2)", Cons(Int(1), Int(2)).String())
}

func TestMapData(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Set(String("b"), Int(1)))
	require.NoError(t, m.Set(Keyword("a"), Int(2)))
	require.NoError(t, m.Set(Symbol("a"), Int(3)))
	require.NoError(t, m.Set(Int(1), Int(4)))
	require.NoError(t, m.Set(Nil(), Int(5)))
	require.NoError(t, m.Set(Bool(true), Int(6)))
	assert.Equal(t, 6, m.Len())

	// Keys of different types are distinct.
	v, ok := m.Get(Keyword("a"))
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Num)
	v, ok = m.Get(Symbol("a"))
	require.True(t, ok)
	assert.Equal(t, 3.0, v.Num)
	_, ok = m.Get(String("a"))
	assert.False(t, ok)

	// Updating a key keeps its position.
	require.NoError(t, m.Set(String("b"), Int(10)))
	assert.Equal(t, `"b"`, m.Keys()[0].String())
	assert.Equal(t, 10.0, m.Values()[0].Num)

	assert.True(t, m.Delete(Keyword("a")))
	assert.False(t, m.Delete(Keyword("a")))
	assert.Equal(t, `("b" a 1 nil true)`, ListOf(m.Keys()...).String())
	v, ok = m.Get(Bool(true))
	require.True(t, ok)
	assert.Equal(t, 6.0, v.Num)

	err := m.Set(ListOf(Int(1)), Int(1))
	assert.Error(t, err)
	_, ok = m.Get(ListOf(Int(1)))
	assert.False(t, ok)
}

func TestMapData_copyEqual(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Set(Keyword("a"), Int(1)))
	require.NoError(t, m.Set(Keyword("b"), Int(2)))
	cp := m.Copy()
	assert.True(t, m.Equal(cp))
	require.NoError(t, cp.Set(Keyword("c"), Int(3)))
	assert.False(t, m.Equal(cp))
	assert.Equal(t, 2, m.Len())

	// Equality ignores order.
	other := NewMap()
	require.NoError(t, other.Set(Keyword("b"), Int(2)))
	require.NoError(t, other.Set(Keyword("a"), Int(1)))
	assert.True(t, MapValue(m).Equal(MapValue(other)))
	assert.False(t, MapValue(m).Identical(MapValue(other)))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b      *LVal
		equal     bool
		identical bool
	}{
		{Int(1), Number(1.0), true, true},
		{String("a"), Symbol("a"), false, false},
		{Keyword("a"), Keyword(":a"), true, true},
		{Nil(), Nil(), true, true},
		{Nil(), Bool(false), false, false},
		{ListOf(Int(1), String("x")), ListOf(Int(1), String("x")), true, false},
		{ListOf(Int(1)), ListOf(Int(2)), false, false},
		{Pair(Int(1), Int(2)), Pair(Int(1), Int(2)), true, false},
	}
	for i, test := range tests {
		assert.Equal(t, test.equal, test.a.Equal(test.b), "test %d: %v equal %v", i, test.a, test.b)
		assert.Equal(t, test.identical, test.a.Identical(test.b), "test %d: %v identical %v", i, test.a, test.b)
	}
}

func TestCopy(t *testing.T) {
	l := ListOf(Int(1), Int(2))
	cp := l.Copy()
	assert.True(t, l.Equal(cp))
	assert.False(t, l.Identical(cp))

	tail := ListValue(l.List().Rest())
	changed := ListValue(tail.List().With(0, Int(5)))
	assert.Equal(t, "(1 2)", l.String())
	assert.Equal(t, "(2)", tail.String())
	assert.Equal(t, "(5)", changed.String())

	m := NewMap()
	require.NoError(t, m.Set(Keyword("a"), Int(1)))
	mv := MapValue(m)
	mcp := mv.Copy()
	require.NoError(t, mcp.Map().Set(Keyword("b"), Int(2)))
	assert.Equal(t, 1, mv.Len())
	assert.Equal(t, 2, mcp.Len())
}

func TestLen(t *testing.T) {
	assert.Equal(t, 3, String("héy").Len())
	assert.Equal(t, 0, Nil().Len())
	assert.Equal(t, 2, MapLiteral([]*LVal{Keyword("a"), Int(1), Keyword("b"), Int(2)}).Len())
	assert.Equal(t, 0, Int(10).Len())
}

func TestGetType(t *testing.T) {
	tests := []struct {
		v    *LVal
		name string
	}{
		{Int(1), "number"},
		{String(""), "string"},
		{Bool(true), "boolean"},
		{Nil(), "nil"},
		{Symbol("a"), "symbol"},
		{Keyword("a"), "keyword"},
		{Pair(Int(1), Int(2)), "pair"},
		{ListOf(Int(1)), "list"},
		{MapValue(NewMap()), "map"},
		{Errorf("x"), "error"},
		{Native(struct{}{}), "native"},
	}
	for _, test := range tests {
		assert.Equal(t, test.name, GetType(test.v).Str)
	}
}

func TestValue(t *testing.T) {
	assert.Equal(t, LNil, Value(nil).Type)
	assert.Equal(t, `("a" 1 true)`, Value([]interface{}{"a", 1, true}).String())
	assert.Equal(t, `{"k" => 2}`, Value(map[string]interface{}{"k": int64(2)}).String())
	assert.Equal(t, LNative, Value(struct{}{}).Type)

	m := NewMap()
	require.NoError(t, m.Set(Keyword("a"), ListOf(Int(1), String("b"))))
	gm, ok := GoMap(MapValue(m))
	require.True(t, ok)
	assert.Equal(t, map[interface{}]interface{}{":a": []interface{}{1.0, "b"}}, gm)

	s, ok := GoSlice(RangeValue(&RangeData{Start: 0, End: 3, Step: 1}))
	require.True(t, ok)
	assert.Equal(t, []interface{}{0.0, 1.0, 2.0}, s)
}

func TestTrue(t *testing.T) {
	assert.False(t, True(Nil()))
	assert.False(t, True(Bool(false)))
	assert.True(t, True(Bool(true)))
	assert.True(t, True(Int(0)))
	assert.True(t, True(String("")))
	assert.True(t, Not(Nil()))
}

func TestRange(t *testing.T) {
	r, err := NewRange(0, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "(0 2 4)", ListOf(r.Values()...).String())

	r, err = NewRange(3, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "(3 2 1)", ListOf(r.Values()...).String())

	r, err = NewRange(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())

	_, err = NewRange(0, 1, 0)
	assert.Error(t, err)
	_, err = NewRange(0, math.Inf(1), 1)
	assert.Error(t, err)
}

func TestPrint(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Set(Keyword("a"), String("x")))
	require.NoError(t, m.Set(Int(2), ListOf(Symbol("b"))))
	tests := []struct {
		v      *LVal
		quoted string
		plain  string
	}{
		{Int(3), "3", "3"},
		{Number(-0.5), "-0.5", "-0.5"},
		{String("a\"b\n"), `"a\"b\n"`, "a\"b\n"},
		{Nil(), "nil", "nil"},
		{Bool(false), "false", "false"},
		{Keyword("k"), ":k", ":k"},
		{Pair(String("a"), Int(1)), `("a" . 1)`, "(a . 1)"},
		{ListOf(String("a"), ListOf(Int(1), Int(2))), `("a" (1 2))`, "(a (1 2))"},
		{MapValue(m), `{:a => "x" 2 => (b)}`, `{:a => x 2 => (b)}`},
		{MapValue(NewMap()), "{}", "{}"},
		{ErrorConditionf(CondTypeError, "bad %s", "thing"), "type-error: bad thing", "type-error: bad thing"},
		{RangeValue(&RangeData{Start: 0, End: 3, Step: 1}), "(range 0 3 1)", "(range 0 3 1)"},
	}
	for i, test := range tests {
		assert.Equal(t, test.quoted, Print(test.v, PrintOptions{QuoteStrings: true}), "test %d", i)
		assert.Equal(t, test.plain, Print(test.v, PrintOptions{}), "test %d", i)
	}
}

func TestPrint_colorize(t *testing.T) {
	s := Print(ListOf(Symbol("f"), Int(1)), PrintOptions{Colorize: true})
	assert.Contains(t, s, "\x1b[")
	assert.NotEqual(t, "(f 1)", s)
	// Parentheses are never colored.
	assert.Equal(t, byte('('), s[0])
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		x   float64
		out string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
		{1.5, "1.5"},
		{1e20, "100000000000000000000"},
		{1.125e21, "1.125e+21"},
		{-1.5e-7, "-1.5e-07"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, test := range tests {
		assert.Equal(t, test.out, FormatNumber(test.x))
	}
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `"plain"`, QuoteString("plain"))
	assert.Equal(t, `"tab\there"`, QuoteString("tab\there"))
	assert.Equal(t, `"back\\slash"`, QuoteString(`back\slash`))
	assert.Equal(t, `"\0\u0001"`, QuoteString("\x00\x01"))
	assert.Equal(t, `"ünïcode"`, QuoteString("ünïcode"))
}

func TestCallStack(t *testing.T) {
	s := &CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())
	require.NoError(t, s.PushFID(nil, "_fun1", "outer"))
	require.NoError(t, s.PushFID(nil, "_fun2", ""))
	err := s.PushFID(nil, "_fun3", "overflow")
	require.Error(t, err)
	var overflow *StackOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 3, overflow.Height)
	assert.Equal(t, 2, s.Height())
	assert.Equal(t, "_fun2", s.Top().FunName())

	cp := s.Copy()
	f := s.Pop()
	assert.Equal(t, "_fun2", f.FID)
	assert.Equal(t, 1, s.Height())
	assert.Equal(t, 2, cp.Height())
	assert.Equal(t, "outer", s.Top().FunName())
}

func TestErrorVal(t *testing.T) {
	lerr := ErrorConditionf(CondTypeError, "bad value")
	ev := (*ErrorVal)(lerr)
	assert.Equal(t, "type-error: bad value", ev.Error())
	assert.Equal(t, CondTypeError, ev.Condition())
	assert.Nil(t, ev.Unwrap())

	cause := assert.AnError
	lerr = ErrorCondition(CondRuntimeError, cause)
	ev = (*ErrorVal)(lerr)
	assert.ErrorIs(t, ev, cause)
	assert.Equal(t, cause.Error(), ev.ErrorMessage())
	assert.Nil(t, GoError(Int(1)))
}

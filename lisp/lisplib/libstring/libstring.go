// Copyright © 2018 The ELPS authors

package libstring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "String"

// Module returns the String native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName, "Functions operating on strings.", nil, builtins...)
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("upcase", lisp.Formals("str"), builtinUpcase,
		`Returns str with every letter in upper case.`),
	libutil.FunctionDoc("downcase", lisp.Formals("str"), builtinDowncase,
		`Returns str with every letter in lower case.`),
	libutil.FunctionDoc("capitalize", lisp.Formals("str"), builtinCapitalize,
		`Returns str with its first character in upper case.`),
	libutil.FunctionDoc("trim", lisp.Formals("str"), builtinTrim,
		`Returns str without leading and trailing white space.`),
	libutil.FunctionDoc("split", lisp.Formals("str", lisp.VarArgSymbol, "sep"), builtinSplit,
		`Splits str around each occurrence of sep and returns the list of
		substrings.  Without a separator, or with an empty one, str is split
		into characters.`),
	libutil.FunctionDoc("starts-with?", lisp.Formals("prefix", "str"), builtinHasPrefix,
		`Returns true if str begins with prefix.`),
	libutil.FunctionDoc("ends-with?", lisp.Formals("suffix", "str"), builtinHasSuffix,
		`Returns true if str ends with suffix.`),
	libutil.FunctionDoc("code-point-at", lisp.Formals("index", "str"), builtinCodePointAt,
		`Returns the Unicode code point of the character at index in str, or
		nil when index is out of range.`),
	libutil.FunctionDoc("from-code-point", lisp.Formals("code-point"), builtinFromCodePoint,
		`Returns the one character string for a Unicode code point.`),
	libutil.FunctionDoc("replace", lisp.Formals("str", "search", "replacement"), builtinReplace,
		`Replaces the first occurrence of search in str.`),
	libutil.FunctionDoc("includes?", lisp.Formals("search", "str"), builtinIncludes,
		`Returns true if search occurs anywhere in str.`),
	libutil.FunctionDoc("chars", lisp.Formals("str"), builtinChars,
		`Returns the list of one character strings making up str.`),
	libutil.FunctionDoc("join", lisp.Formals("list", lisp.VarArgSymbol, "sep"), builtinJoin,
		`Joins the printed forms of the elements of list separated by sep,
		which defaults to the empty string.`),
}

func stringArgs(env *lisp.LEnv, args []*lisp.LVal) ([]string, *lisp.LVal) {
	strs := make([]string, len(args))
	for i := range args {
		s, lerr := libutil.StringArg(env, args[i])
		if lerr != nil {
			return nil, lerr
		}
		strs[i] = s
	}
	return strs, nil
}

func unary(fn func(string) string) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		s, lerr := libutil.StringArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		return lisp.String(fn(s))
	}
}

var (
	builtinUpcase   = unary(strings.ToUpper)
	builtinDowncase = unary(strings.ToLower)
	builtinTrim     = unary(strings.TrimSpace)
)

func builtinCapitalize(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	s, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return lisp.String("")
	}
	return lisp.String(string(unicode.ToUpper(r)) + s[n:])
}

func stringList(strs []string) *lisp.LVal {
	cells := make([]*lisp.LVal, len(strs))
	for i, s := range strs {
		cells[i] = lisp.String(s)
	}
	return lisp.ListOf(cells...)
}

func builtinSplit(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	strs, lerr := stringArgs(env, args)
	if lerr != nil {
		return lerr
	}
	sep := ""
	if len(strs) > 1 {
		sep = strs[1]
	}
	return stringList(strings.Split(strs[0], sep))
}

func builtinHasPrefix(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	strs, lerr := stringArgs(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.Bool(strings.HasPrefix(strs[1], strs[0]))
}

func builtinHasSuffix(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	strs, lerr := stringArgs(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.Bool(strings.HasSuffix(strs[1], strs[0]))
}

func builtinCodePointAt(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	i, lerr := libutil.NumberArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	s, lerr := libutil.StringArg(env, args[1])
	if lerr != nil {
		return lerr
	}
	runes := []rune(s)
	if i < 0 || int(i) >= len(runes) {
		return lisp.Nil()
	}
	return lisp.Int(int(runes[int(i)]))
}

func builtinFromCodePoint(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	cp, lerr := libutil.NumberArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	r := rune(cp)
	if float64(r) != cp || !utf8.ValidRune(r) {
		return env.Errorf("invalid code point: %v", args[0])
	}
	return lisp.String(string(r))
}

func builtinReplace(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	strs, lerr := stringArgs(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.String(strings.Replace(strs[0], strs[1], strs[2], 1))
}

func builtinIncludes(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	strs, lerr := stringArgs(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.Bool(strings.Contains(strs[1], strs[0]))
}

func builtinChars(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	s, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	return stringList(strings.Split(s, ""))
}

func builtinJoin(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	list := args[0]
	if list.Type != lisp.LList && list.Type != lisp.LNil {
		return env.ErrorConditionf(lisp.CondTypeError, "first argument is not a list: %v", lisp.GetType(list))
	}
	sep := ""
	if len(args) > 1 {
		s, lerr := libutil.StringArg(env, args[1])
		if lerr != nil {
			return lerr
		}
		sep = s
	}
	var b strings.Builder
	for i, cell := range list.Items() {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(lisp.Print(cell, lisp.PrintOptions{}))
	}
	return lisp.String(b.String())
}

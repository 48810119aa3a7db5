// Copyright © 2018 The ELPS authors

package libregexp

import (
	"regexp"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Regexp"

// CondInvalidPattern is the condition of errors for malformed patterns.
const CondInvalidPattern = "invalid-regexp-pattern"

// Module returns the Regexp native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName,
		"Regular expression compilation and matching using Go RE2 syntax.", nil, builtins...)
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("regexp?", lisp.Formals("value"), BuiltinIsRegexp,
		`Returns true if value is a compiled regular expression.`),
	libutil.FunctionDoc("compile", lisp.Formals("pattern"), BuiltinCompile,
		`Compiles a regular expression pattern string and returns a native
		regexp object.  Returns an error with condition
		invalid-regexp-pattern if the pattern is invalid.`),
	libutil.FunctionDoc("pattern", lisp.Formals("re"), BuiltinPattern,
		`Returns the pattern string of a compiled regexp object.`),
	libutil.FunctionDoc("match?", lisp.Formals("re", "text"), BuiltinIsMatch,
		`Returns true if the regexp matches text.  re may be a compiled
		regexp or a pattern string (compiled on each call).`),
	libutil.FunctionDoc("find", lisp.Formals("re", "text"), BuiltinFind,
		`Returns the list of the leftmost match of re in text followed by
		its capture groups, or nil when there is no match.`),
	libutil.FunctionDoc("find-all", lisp.Formals("re", "text"), BuiltinFindAll,
		`Returns a list of all non-overlapping matches of re in text.`),
	libutil.FunctionDoc("replace-all", lisp.Formals("re", "text", "replacement"), BuiltinReplaceAll,
		`Replaces each match of re in text.  Inside replacement $1 refers to
		the first capture group.`),
	libutil.FunctionDoc("split", lisp.Formals("re", "text"), BuiltinSplit,
		`Splits text around the matches of re.`),
}

func BuiltinIsRegexp(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	v := args[0]
	if v.Type != lisp.LNative {
		return lisp.Bool(false)
	}
	_, ok := v.Native.(*regexp.Regexp)
	return lisp.Bool(ok)
}

func BuiltinCompile(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	patt, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	re, err := regexp.Compile(patt)
	if err != nil {
		return invalidPatternError(env, err)
	}
	return lisp.Native(re)
}

func BuiltinPattern(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, lerr := getRegexp(env, args[0])
	if lerr != nil {
		return lerr
	}
	return lisp.String(re.String())
}

func BuiltinIsMatch(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, text, lerr := regexpText(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.Bool(re.MatchString(text))
}

func BuiltinFind(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, text, lerr := regexpText(env, args)
	if lerr != nil {
		return lerr
	}
	return stringList(re.FindStringSubmatch(text))
}

func BuiltinFindAll(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, text, lerr := regexpText(env, args)
	if lerr != nil {
		return lerr
	}
	return stringList(re.FindAllString(text, -1))
}

func BuiltinReplaceAll(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, text, lerr := regexpText(env, args)
	if lerr != nil {
		return lerr
	}
	repl, lerr := libutil.StringArg(env, args[2])
	if lerr != nil {
		return lerr
	}
	return lisp.String(re.ReplaceAllString(text, repl))
}

func BuiltinSplit(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	re, text, lerr := regexpText(env, args)
	if lerr != nil {
		return lerr
	}
	return stringList(re.Split(text, -1))
}

func stringList(strs []string) *lisp.LVal {
	cells := make([]*lisp.LVal, len(strs))
	for i := range strs {
		cells[i] = lisp.String(strs[i])
	}
	return lisp.ListOf(cells...)
}

func regexpText(env *lisp.LEnv, args []*lisp.LVal) (*regexp.Regexp, string, *lisp.LVal) {
	re, lerr := getRegexp(env, args[0])
	if lerr != nil {
		return nil, "", lerr
	}
	text, lerr := libutil.StringArg(env, args[1])
	if lerr != nil {
		return nil, "", lerr
	}
	return re, text, nil
}

// getRegexp returns a regexp corresponding to v.  If v is a compiled regexp,
// the underlying regexp.Regexp is returned.  If v is a string it will be
// compiled to a regexp and the returned is returned.  Any error encountered is
// returned as an LVal.
func getRegexp(env *lisp.LEnv, v *lisp.LVal) (re *regexp.Regexp, lerr *lisp.LVal) {
	if v.Type == lisp.LString {
		re, err := regexp.Compile(v.Str)
		if err != nil {
			return nil, invalidPatternError(env, err)
		}
		return re, nil
	}
	if v.Type != lisp.LNative {
		return nil, env.ErrorConditionf(lisp.CondTypeError, "argument is not a regexp: %v", lisp.GetType(v))
	}
	re, ok := v.Native.(*regexp.Regexp)
	if !ok {
		return nil, env.ErrorConditionf(lisp.CondTypeError, "argument is not a regexp: %v", v)
	}
	return re, nil
}

func invalidPatternError(env *lisp.LEnv, err error) *lisp.LVal {
	return env.ErrorCondition(CondInvalidPattern, err)
}

// Copyright © 2018 The ELPS authors

package libtesting

import (
	"fmt"
	"strings"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Testing"

// CondAssertion is the condition of errors raised by failed assertions.
const CondAssertion = "assertion-failed"

// Module returns a Testing native module which registers tests and
// benchmarks with suite.
func Module(suite *TestSuite) *lisp.NativeModule {
	m := libutil.Module(DefaultModuleName,
		`Test framework: define named tests and benchmarks with assertion
		helpers (assert-equal, assert-nil, assert-error, etc.).`,
		nil, suite.Exports()...)
	m.Data = suite
	return m
}

// EnvTestSuite returns the suite used by the Testing module registered with
// env's runtime, or nil if no Testing module is registered.
func EnvTestSuite(env *lisp.LEnv) *TestSuite {
	m, ok := env.Runtime.Loader.Native(DefaultModuleName)
	if !ok {
		return nil
	}
	suite, _ := m.Data.(*TestSuite)
	return suite
}

// TestSuite is an ordered set of named tests.
type TestSuite struct {
	tests      map[string]*Test
	benchmarks map[string]*Test
	torder     []string
	border     []string
}

func NewTestSuite() *TestSuite {
	return &TestSuite{
		tests:      make(map[string]*Test),
		benchmarks: make(map[string]*Test),
	}
}

func (s *TestSuite) Add(t *Test) error {
	if s.tests[t.Name] != nil {
		return fmt.Errorf("test with the same name already defined: %v", t.Name)
	}
	s.torder = append(s.torder, t.Name)
	s.tests[t.Name] = t
	return nil
}

func (s *TestSuite) Len() int {
	return len(s.torder)
}

func (s *TestSuite) Tests() []string {
	names := make([]string, len(s.torder))
	copy(names, s.torder)
	return names
}

func (s *TestSuite) Benchmarks() []string {
	names := make([]string, len(s.border))
	copy(names, s.border)
	return names
}

func (s *TestSuite) Test(i int) *Test {
	return s.tests[s.torder[i]]
}

func (s *TestSuite) AddBenchmark(b *Test) error {
	if s.benchmarks[b.Name] != nil {
		return fmt.Errorf("benchmark with the same name already defined: %v", b.Name)
	}
	s.border = append(s.border, b.Name)
	s.benchmarks[b.Name] = b
	return nil
}

func (s *TestSuite) Benchmark(i int) *Test {
	return s.benchmarks[s.border[i]]
}

// Exports returns the functions and macros of the Testing module.
func (s *TestSuite) Exports() []*libutil.Builtin {
	return []*libutil.Builtin{
		libutil.MacroDoc("test", lisp.Formals("name", lisp.VarArgSymbol, "exprs"), s.MacroTest,
			`Defines a named test case.  name must be a string.  The body
			expressions are wrapped in a lambda and registered with the
			test suite for later execution.  Use assertions inside the
			body to check conditions.`),
		libutil.MacroDoc("test-let", lisp.Formals("name", "bindings", lisp.VarArgSymbol, "exprs"), s.MacroTestLet,
			`Defines a named test with local let bindings.  Equivalent to
			(test name (let bindings exprs...)).`),
		libutil.MacroDoc("benchmark", lisp.Formals("name", "args", lisp.VarArgSymbol, "exprs"), s.MacroBenchmark,
			`Defines a named benchmark.  args is a list containing a single
			symbol that receives the iteration count.  The body should run
			the benchmarked code count times.`),
		libutil.MacroDoc("benchmark-simple", lisp.Formals("name", lisp.VarArgSymbol, "exprs"), s.MacroBenchmarkSimple,
			`Defines a benchmark that evaluates exprs once per iteration.`),
		libutil.FunctionDoc("assert", lisp.Formals("condition", lisp.VarArgSymbol, "message"), builtinAssert,
			`Raises an assertion-failed error when condition is false or nil.
			Any message arguments are printed and joined by spaces to form
			the error message.`),
		libutil.MacroDoc("assert-equal", lisp.Formals("expect", "expression"), s.macroCheck(checkEqual),
			`Asserts that two expressions are structurally equal using
			equal?.  Reports the expected and actual values on failure.`),
		libutil.MacroDoc("assert=", lisp.Formals("expect", "num"), s.macroCheck(checkNumEqual),
			`Asserts that two expressions evaluate to equal numbers.`),
		libutil.MacroDoc("assert-string=", lisp.Formals("expect", "str"), s.macroCheck(checkStringEqual),
			`Asserts that two expressions evaluate to equal strings.`),
		libutil.MacroDoc("assert-nil", lisp.Formals("expression"), s.macroCheck(checkNil),
			`Asserts that expression evaluates to nil.`),
		libutil.MacroDoc("assert-not-nil", lisp.Formals("expression"), s.macroCheck(checkNotNil),
			`Asserts that expression does not evaluate to nil.`),
		libutil.MacroDoc("assert-not", lisp.Formals("expression"), s.macroCheck(checkNot),
			`Asserts that expression evaluates to a falsey value (nil or
			false).`),
		libutil.MacroDoc("assert-error", lisp.Formals("expression", lisp.VarArgSymbol, "condition"), s.MacroAssertError,
			`Asserts that evaluating expression raises an error.  When a
			condition keyword or string is given the error must have that
			condition.`),
	}
}

func (s *TestSuite) MacroTest(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	return s.register(env, "test", args[0], lisp.Nil(), args[1:], s.Add)
}

func (s *TestSuite) MacroTestLet(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	name, binds, exprs := args[0], args[1], args[2:]
	if binds.Type != lisp.LList && binds.Type != lisp.LNil {
		return env.ErrorConditionf(lisp.CondSyntaxError, "test-let: second argument is not a list: %v", lisp.GetType(binds))
	}
	let := list(append([]*lisp.LVal{lisp.Symbol("let"), binds}, exprs...)...)
	return s.register(env, "test-let", name, lisp.Nil(), []*lisp.LVal{let}, s.Add)
}

func (s *TestSuite) MacroBenchmark(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	name, bargs, exprs := args[0], args[1], args[2:]
	if bargs.Type != lisp.LList || bargs.Len() != 1 || bargs.Items()[0].Type != lisp.LSymbol {
		return env.ErrorConditionf(lisp.CondSyntaxError, "benchmark: second argument must be a list of one symbol: %v", bargs)
	}
	return s.register(env, "benchmark", name, bargs, exprs, s.AddBenchmark)
}

func (s *TestSuite) MacroBenchmarkSimple(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	name, exprs := args[0], args[1:]
	countsym := env.GenSym()
	loop := list(append([]*lisp.LVal{
		lisp.Symbol("for"),
		list(env.GenSym(), list(rangeFun, lisp.Int(0), countsym)),
	}, exprs...)...)
	return s.register(env, "benchmark-simple", name, list(countsym), []*lisp.LVal{loop}, s.AddBenchmark)
}

// register expands to a call which adds a test function to the suite when
// evaluated.  The function value is embedded directly in the expansion so
// the expansion does not depend on how the module was imported.
func (s *TestSuite) register(env *lisp.LEnv, form string, name, formals *lisp.LVal, body []*lisp.LVal, add func(*Test) error) *lisp.LVal {
	if name.Type != lisp.LString {
		return env.ErrorConditionf(lisp.CondSyntaxError, "%s: first argument is not a string: %v", form, lisp.GetType(name))
	}
	adder := lisp.Fun("<builtin Testing."+form+">", lisp.Formals("fun"), func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		fun := args[0]
		fun.FunData().Name = name.Str
		err := add(&Test{Name: name.Str, Fun: fun})
		if err != nil {
			return env.Error(err)
		}
		return lisp.Nil()
	})
	lambda := list(append([]*lisp.LVal{lisp.Symbol("lambda"), formals}, body...)...)
	return list(adder, lambda)
}

// check inspects evaluated assertion arguments and returns a failure
// message, or the empty string when the assertion holds.
type check func(args []*lisp.LVal) string

func (s *TestSuite) macroCheck(fn check) lisp.LBuiltin {
	checker := lisp.Fun("<builtin Testing.check>", lisp.Formals("form", lisp.VarArgSymbol, "values"),
		func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			msg := fn(args[1:])
			if msg == "" {
				return lisp.Nil()
			}
			return env.ErrorConditionf(CondAssertion, "%s\n\texpression: %v", msg, args[0])
		})
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		form := args[len(args)-1]
		cells := append([]*lisp.LVal{checker, lisp.Quote(form)}, args...)
		return list(cells...)
	}
}

func (s *TestSuite) MacroAssertError(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	expr := args[0]
	want := ""
	if len(args) > 1 {
		c := args[1]
		if c.Type != lisp.LKeyword && c.Type != lisp.LString {
			return env.ErrorConditionf(lisp.CondSyntaxError, "assert-error: condition is not a keyword or string: %v", c)
		}
		want = strings.TrimPrefix(c.Str, ":")
	}
	checker := lisp.Fun("<builtin Testing.assert-error>", lisp.Formals("thunk"),
		func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			r := env.FunCall(args[0], nil)
			if r.Type == lisp.LPromise {
				r = env.Runtime.Scheduler.Await(env, r)
			}
			if r.Type != lisp.LError {
				return env.ErrorConditionf(CondAssertion, "expression did not raise an error\n\texpression: %v\n\t    result: %v", expr, r)
			}
			if want != "" && r.Str != want {
				return env.ErrorConditionf(CondAssertion, "expression raised the wrong condition\n\texpression: %v\n\t condition: %s\n\t  expected: %s", expr, r.Str, want)
			}
			return lisp.Nil()
		})
	return list(checker, list(lisp.Symbol("lambda"), lisp.Nil(), expr))
}

func builtinAssert(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	if lisp.True(args[0]) {
		return lisp.Nil()
	}
	if len(args) == 1 {
		return env.ErrorConditionf(CondAssertion, "assertion failed")
	}
	parts := make([]string, len(args)-1)
	for i, v := range args[1:] {
		parts[i] = lisp.Print(v, lisp.PrintOptions{})
	}
	return env.ErrorConditionf(CondAssertion, "%s", strings.Join(parts, " "))
}

func checkEqual(args []*lisp.LVal) string {
	if args[0].Equal(args[1]) {
		return ""
	}
	return fmt.Sprintf("the expressions are not equal?\n\t    result: %v\n\t  expected: %v", args[1], args[0])
}

func checkNumEqual(args []*lisp.LVal) string {
	for _, v := range args {
		if v.Type != lisp.LNumber {
			return fmt.Sprintf("expression did not evaluate to a number\n\t    result: %v", v)
		}
	}
	if args[0].Num == args[1].Num {
		return ""
	}
	return fmt.Sprintf("the numeric expressions are not equal\n\t    result: %v\n\t  expected: %v", args[1], args[0])
}

func checkStringEqual(args []*lisp.LVal) string {
	for _, v := range args {
		if v.Type != lisp.LString {
			return fmt.Sprintf("expression did not evaluate to a string\n\t    result: %v", v)
		}
	}
	if args[0].Str == args[1].Str {
		return ""
	}
	return fmt.Sprintf("the string expressions are not equal\n\t    result: %q\n\t  expected: %q", args[1].Str, args[0].Str)
}

func checkNil(args []*lisp.LVal) string {
	if args[0].IsNil() {
		return ""
	}
	return fmt.Sprintf("the expression is not nil\n\t    result: %v", args[0])
}

func checkNotNil(args []*lisp.LVal) string {
	if !args[0].IsNil() {
		return ""
	}
	return "the expression is nil"
}

func checkNot(args []*lisp.LVal) string {
	if lisp.Not(args[0]) {
		return ""
	}
	return fmt.Sprintf("the expression is not falsey\n\t    result: %v", args[0])
}

var rangeFun = lisp.Fun("<builtin Testing.range>", lisp.Formals("start", "end"), func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	r, err := lisp.NewRange(args[0].Num, args[1].Num, 1)
	if err != nil {
		return env.Error(err)
	}
	return lisp.RangeValue(r)
})

type Test struct {
	Fun  *lisp.LVal
	Name string
}

func list(v ...*lisp.LVal) *lisp.LVal {
	return lisp.ListOf(v...)
}

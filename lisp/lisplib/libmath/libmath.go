// Copyright © 2018 The ELPS authors

package libmath

import (
	"math"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Math"

// Module returns the Math native module.
func Module() *lisp.NativeModule {
	consts := map[string]*lisp.LVal{
		"pi":   lisp.Number(math.Pi),
		"e":    lisp.Number(math.E),
		"inf":  lisp.Number(math.Inf(1)),
		"-inf": lisp.Number(math.Inf(-1)),
	}
	return libutil.Module(DefaultModuleName, "Numeric constants and functions.", consts, builtins...)
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("nan?", lisp.Formals("number"), builtinIsNaN,
		`Returns true if number is IEEE 754 NaN (not-a-number).`),
	libutil.FunctionDoc("abs", lisp.Formals("number"), realFunc(math.Abs).builtin,
		`Returns the absolute value of number.`),
	libutil.FunctionDoc("ceil", lisp.Formals("number"), realFunc(math.Ceil).builtin,
		`Returns the smallest integer not less than number.`),
	libutil.FunctionDoc("floor", lisp.Formals("number"), realFunc(math.Floor).builtin,
		`Returns the largest integer not greater than number.`),
	libutil.FunctionDoc("round", lisp.Formals("number"), realFunc(round).builtin,
		`Returns the integer nearest to number.  Halves round toward
		positive infinity.`),
	libutil.FunctionDoc("sqrt", lisp.Formals("number"), realFunc(math.Sqrt).builtin,
		`Returns the square root of number.`),
	libutil.FunctionDoc("exp", lisp.Formals("number"), realFunc(math.Exp).builtin,
		`Returns e raised to the power of number.`),
	libutil.FunctionDoc("ln", lisp.Formals("number"), realFunc(math.Log).builtin,
		`Returns the natural logarithm of number.`),
	libutil.FunctionDoc("log", lisp.Formals("number", lisp.VarArgSymbol, "base"), builtinLog,
		`Returns the logarithm of number in the given base.  Without a base
		the natural logarithm is returned.`),
	libutil.FunctionDoc("pow", lisp.Formals("base", "exponent"), builtinPow,
		`Returns base raised to the power of exponent.`),
	libutil.FunctionDoc("min", lisp.Formals("number", lisp.VarArgSymbol, "numbers"), extremum(math.Min),
		`Returns the smallest argument.`),
	libutil.FunctionDoc("max", lisp.Formals("number", lisp.VarArgSymbol, "numbers"), extremum(math.Max),
		`Returns the largest argument.`),
	libutil.FunctionDoc("sin", lisp.Formals("radians"), realFunc(math.Sin).builtin,
		`Returns the sine of radians.`),
	libutil.FunctionDoc("sinh", lisp.Formals("radians"), realFunc(math.Sinh).builtin,
		`Returns the hyperbolic sine of radians.`),
	libutil.FunctionDoc("asin", lisp.Formals("x"), realFunc(math.Asin).builtin,
		`Returns the arcsine of x in radians.  The argument must be in the
		range [-1, 1].`),
	libutil.FunctionDoc("asinh", lisp.Formals("x"), realFunc(math.Asinh).builtin,
		`Returns the inverse hyperbolic sine of x.`),
	libutil.FunctionDoc("cos", lisp.Formals("radians"), realFunc(math.Cos).builtin,
		`Returns the cosine of radians.`),
	libutil.FunctionDoc("cosh", lisp.Formals("radians"), realFunc(math.Cosh).builtin,
		`Returns the hyperbolic cosine of radians.`),
	libutil.FunctionDoc("acos", lisp.Formals("x"), realFunc(math.Acos).builtin,
		`Returns the arccosine of x in radians.  The argument must be in the
		range [-1, 1].`),
	libutil.FunctionDoc("acosh", lisp.Formals("x"), realFunc(math.Acosh).builtin,
		`Returns the inverse hyperbolic cosine of x.  The argument must be
		at least 1.`),
	libutil.FunctionDoc("tan", lisp.Formals("radians"), realFunc(math.Tan).builtin,
		`Returns the tangent of radians.`),
	libutil.FunctionDoc("tanh", lisp.Formals("radians"), realFunc(math.Tanh).builtin,
		`Returns the hyperbolic tangent of radians.`),
	libutil.FunctionDoc("atan", lisp.Formals("y", lisp.VarArgSymbol, "x"), builtinAtan,
		`Returns the arctangent of y.  With two arguments returns atan2(y, x),
		the angle in the correct quadrant.`),
	libutil.FunctionDoc("atanh", lisp.Formals("x"), realFunc(math.Atanh).builtin,
		`Returns the inverse hyperbolic tangent of x.  The argument must be
		in the range (-1, 1).`),
}

func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

func numbers(env *lisp.LEnv, args []*lisp.LVal) ([]float64, *lisp.LVal) {
	xs := make([]float64, len(args))
	for i := range args {
		x, lerr := libutil.NumberArg(env, args[i])
		if lerr != nil {
			return nil, lerr
		}
		xs[i] = x
	}
	return xs, nil
}

func builtinIsNaN(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	x, lerr := libutil.NumberArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	return lisp.Bool(math.IsNaN(x))
}

func builtinLog(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	xs, lerr := numbers(env, args)
	if lerr != nil {
		return lerr
	}
	if len(xs) == 1 {
		return lisp.Number(math.Log(xs[0]))
	}
	switch xs[1] {
	case 2:
		return lisp.Number(math.Log2(xs[0]))
	case 10:
		return lisp.Number(math.Log10(xs[0]))
	}
	return lisp.Number(math.Log(xs[0]) / math.Log(xs[1]))
}

func builtinPow(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	xs, lerr := numbers(env, args)
	if lerr != nil {
		return lerr
	}
	return lisp.Number(math.Pow(xs[0], xs[1]))
}

func extremum(pick func(x, y float64) float64) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		xs, lerr := numbers(env, args)
		if lerr != nil {
			return lerr
		}
		m := xs[0]
		for _, x := range xs[1:] {
			m = pick(m, x)
		}
		return lisp.Number(m)
	}
}

// atan has a two argument form, atan2, and does not fit with the other real
// functions.
func builtinAtan(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	xs, lerr := numbers(env, args)
	if lerr != nil {
		return lerr
	}
	if len(xs) > 1 {
		return lisp.Number(math.Atan2(xs[0], xs[1]))
	}
	return lisp.Number(math.Atan(xs[0]))
}

// realFunc is a function of the real number line (potentially with special
// values like NaN and Inf).
type realFunc func(float64) float64

func (fn realFunc) builtin(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	x, lerr := libutil.NumberArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	return lisp.Number(fn(x))
}

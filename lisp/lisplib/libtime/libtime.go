// Copyright © 2018 The ELPS authors

package libtime

import (
	"time"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Time"

// Module returns the Time native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName,
		"Timestamps, durations and timers.", nil, builtins...)
}

// Time creates an LVal representing the time t.
func Time(t time.Time) *lisp.LVal {
	return lisp.Native(t)
}

// Get gets a time.Time value from v and returns it.
func Get(v *lisp.LVal) (time.Time, bool) {
	t, ok := v.Native.(time.Time)
	return t, ok
}

// Duration returns an LVal representing duration d.
func Duration(d time.Duration) *lisp.LVal {
	return lisp.Native(d)
}

// GetDuration gets a time.Duration value from v and returns it.  Numbers are
// interpreted as milliseconds.
func GetDuration(v *lisp.LVal) (time.Duration, bool) {
	if v.Type == lisp.LNumber {
		return time.Duration(v.Num * float64(time.Millisecond)), true
	}
	d, ok := v.Native.(time.Duration)
	return d, ok
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("utc-now", lisp.Formals(), BuiltinUTCNow,
		`Returns the current time in UTC as a native time value.  Use
		format-rfc3339 to convert the result to a string.`),
	libutil.FunctionDoc("unix-ms", lisp.Formals(lisp.VarArgSymbol, "datetime"), BuiltinUnixMS,
		`Returns datetime, or the current time, as milliseconds since the
		Unix epoch.`),
	libutil.FunctionDoc("parse-rfc3339", lisp.Formals("timestamp"), layoutParser(time.RFC3339),
		`Parses an RFC 3339 timestamp string (e.g. "2023-01-15T10:30:00Z")
		and returns a native time value.`),
	libutil.FunctionDoc("format-rfc3339", lisp.Formals("datetime"), layoutFormatter(time.RFC3339),
		`Formats a native time value as an RFC 3339 string.`),
	libutil.FunctionDoc("format-rfc3339-nano", lisp.Formals("datetime"), layoutFormatter(time.RFC3339Nano),
		`Formats a native time value as an RFC 3339 string with
		nanosecond precision.`),
	libutil.FunctionDoc("time=", lisp.Formals("a", "b"), timeCompare(time.Time.Equal),
		`Returns true if a and b are the same instant.`),
	libutil.FunctionDoc("time<", lisp.Formals("a", "b"), timeCompare(time.Time.Before),
		`Returns true if a is before b.`),
	libutil.FunctionDoc("time>", lisp.Formals("a", "b"), timeCompare(time.Time.After),
		`Returns true if a is after b.`),
	libutil.FunctionDoc("time-add", lisp.Formals("datetime", "duration"), BuiltinTimeAdd,
		`Returns datetime advanced by duration.`),
	libutil.FunctionDoc("time-from", lisp.Formals("start", "end"), BuiltinDurationBetween,
		`Returns the duration between start and end.`),
	libutil.FunctionDoc("parse-duration", lisp.Formals("duration-string"), BuiltinParseDuration,
		`Parses a duration string such as "1h30m" or "250ms".`),
	libutil.FunctionDoc("duration-ms", lisp.Formals("duration"), BuiltinDurationMS,
		`Returns duration as a number of milliseconds.`),
	libutil.FunctionDoc("delay", lisp.Formals("duration", lisp.VarArgSymbol, "value"), BuiltinDelay,
		`Returns a promise which settles with value, or nil, after duration
		has elapsed.  Numbers are interpreted as milliseconds.  The timer
		runs on its own goroutine so other async calls proceed while it is
		pending.`),
}

func timeArg(env *lisp.LEnv, v *lisp.LVal) (time.Time, *lisp.LVal) {
	if v.Type != lisp.LNative {
		return time.Time{}, env.ErrorConditionf(lisp.CondTypeError, "argument is not a time: %v", lisp.GetType(v))
	}
	t, ok := Get(v)
	if !ok {
		return time.Time{}, env.ErrorConditionf(lisp.CondTypeError, "argument is not a time: %v", v)
	}
	return t, nil
}

func durationArg(env *lisp.LEnv, v *lisp.LVal) (time.Duration, *lisp.LVal) {
	if v.Type != lisp.LNative && v.Type != lisp.LNumber {
		return 0, env.ErrorConditionf(lisp.CondTypeError, "argument is not a duration: %v", lisp.GetType(v))
	}
	d, ok := GetDuration(v)
	if !ok {
		return 0, env.ErrorConditionf(lisp.CondTypeError, "argument is not a duration: %v", v)
	}
	return d, nil
}

func BuiltinUTCNow(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	return Time(time.Now().UTC())
}

func BuiltinUnixMS(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	t := time.Now()
	if len(args) > 0 {
		var lerr *lisp.LVal
		t, lerr = timeArg(env, args[0])
		if lerr != nil {
			return lerr
		}
	}
	return lisp.Number(float64(t.UnixMilli()))
}

func layoutParser(layout string) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		stamp, lerr := libutil.StringArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		t, err := time.Parse(layout, stamp)
		if err != nil {
			return env.Error(err)
		}
		return Time(t)
	}
}

func layoutFormatter(layout string) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		t, lerr := timeArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		return lisp.String(t.Format(layout))
	}
}

func timeCompare(cmp func(a, b time.Time) bool) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		a, lerr := timeArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		b, lerr := timeArg(env, args[1])
		if lerr != nil {
			return lerr
		}
		return lisp.Bool(cmp(a, b))
	}
}

func BuiltinTimeAdd(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	t, lerr := timeArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	d, lerr := durationArg(env, args[1])
	if lerr != nil {
		return lerr
	}
	return Time(t.Add(d))
}

func BuiltinDurationBetween(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	start, lerr := timeArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	end, lerr := timeArg(env, args[1])
	if lerr != nil {
		return lerr
	}
	return Duration(end.Sub(start))
}

func BuiltinParseDuration(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	s, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return env.Error(err)
	}
	return Duration(d)
}

func BuiltinDurationMS(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	d, lerr := durationArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	return lisp.Number(float64(d) / float64(time.Millisecond))
}

func BuiltinDelay(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	d, lerr := durationArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	v := lisp.Nil()
	if len(args) > 1 {
		v = args[1]
	}
	return env.Runtime.Scheduler.Go(func() (*lisp.LVal, error) {
		time.Sleep(d)
		return v, nil
	})
}

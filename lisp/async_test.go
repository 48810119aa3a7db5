// Copyright © 2024 The ELPS authors

package lisp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_spawn(t *testing.T) {
	env := newTestEnv(t)
	s := env.Runtime.Scheduler
	var calls int
	fun := Fun("work", Formals("x"), func(env *LEnv, args []*LVal) *LVal {
		calls++
		return Number(args[0].Num * 2)
	})
	fun.FunData().Async = true

	p := env.FunCall(fun, []*LVal{Int(2)})
	require.Equal(t, LPromise, p.Type)
	assert.Equal(t, PromisePending, p.Promise().State())
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 0, calls)

	v := s.Await(env, p)
	assert.Equal(t, 4.0, v.Num)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, PromiseFulfilled, p.Promise().State())

	// A settled promise is not run again.
	v = s.Await(env, p)
	assert.Equal(t, 4.0, v.Num)
	assert.Equal(t, 1, calls)
}

func TestScheduler_drain(t *testing.T) {
	env := newTestEnv(t)
	s := env.Runtime.Scheduler
	var order []float64
	var fun *LVal
	fun = Fun("chain", Formals("n"), func(env *LEnv, args []*LVal) *LVal {
		order = append(order, args[0].Num)
		if args[0].Num < 3 {
			env.FunCall(fun, []*LVal{Number(args[0].Num + 1)})
		}
		return Nil()
	})
	fun.FunData().Async = true
	env.FunCall(fun, []*LVal{Int(1)})
	env.FunCall(fun, []*LVal{Int(10)})
	s.Drain()
	assert.Equal(t, []float64{1, 10, 2, 3}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_selfAwait(t *testing.T) {
	env := newTestEnv(t)
	var p *LVal
	fun := Fun("self", Formals(), func(env *LEnv, args []*LVal) *LVal {
		return env.Runtime.Scheduler.Await(env, p)
	})
	fun.FunData().Async = true
	p = env.FunCall(fun, nil)
	env.Runtime.Scheduler.Drain()
	require.Equal(t, PromiseRejected, p.Promise().State())
	v := p.Promise().Value()
	assert.Equal(t, CondRuntimeError, v.Str)
}

func TestScheduler_go(t *testing.T) {
	env := newTestEnv(t)
	s := env.Runtime.Scheduler

	ok := s.Go(func() (*LVal, error) { return String("done"), nil })
	failed := s.Go(func() (*LVal, error) { return nil, errors.New("host failure") })
	panicked := s.Go(func() (*LVal, error) { panic("boom") })
	env.Runtime.Wait()

	assert.Equal(t, `"done"`, s.Await(env, ok).String())

	v := s.Await(env, failed)
	require.Equal(t, LError, v.Type)
	assert.Equal(t, CondRuntimeError, v.Str)
	assert.Equal(t, "host failure", (*ErrorVal)(v).ErrorMessage())

	v = s.Await(env, panicked)
	require.Equal(t, LError, v.Type)
	assert.Equal(t, CondRuntimeError, v.Str)
	assert.Contains(t, (*ErrorVal)(v).ErrorMessage(), "boom")
	assert.Equal(t, PromiseRejected, panicked.Promise().State())
}

func TestScheduler_awaitValue(t *testing.T) {
	env := newTestEnv(t)
	v := env.Runtime.Scheduler.Await(env, Int(3))
	assert.Equal(t, 3.0, v.Num)
}

func TestPromiseState(t *testing.T) {
	assert.Equal(t, "pending", PromisePending.String())
	assert.Equal(t, "fulfilled", PromiseFulfilled.String())
	assert.Equal(t, "rejected", PromiseRejected.String())
}

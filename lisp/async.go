// Copyright © 2024 The ELPS authors

package lisp

import (
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// PromiseState is the settlement state of a Promise.
type PromiseState uint

// Possible PromiseState values
const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Promise is the eventual result of an async function call or of host work
// running on another goroutine.  A promise is rejected when its result is an
// LError.
type Promise struct {
	mu    sync.Mutex
	state PromiseState
	value *LVal
	done  chan struct{}
	// task evaluates the body of an async call.  It is nil for host
	// promises and once the task has started.
	task func() *LVal
	host bool
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// PromiseValue returns an LVal for the promise p.
func PromiseValue(p *Promise) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LPromise,
		Native: p,
	}
}

func (v *LVal) Promise() *Promise {
	p, _ := v.Native.(*Promise)
	return p
}

// State returns the current state of p.
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Value returns the value p settled with, or nil if p is pending.
func (p *Promise) Value() *LVal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Promise) settle(v *LVal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PromisePending {
		return
	}
	p.state = PromiseFulfilled
	if v.Type == LError {
		p.state = PromiseRejected
	}
	p.value = v
	close(p.done)
}

func (p *Promise) takeTask() (func() *LVal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	task := p.task
	p.task = nil
	return task, p.host
}

// Scheduler runs the bodies of async calls on the evaluating goroutine.
// Queued calls run when their promise is awaited or when the queue is
// drained at the end of a Load.  Host work started with Go runs on its own
// goroutine and settles its promise without touching interpreter state.
type Scheduler struct {
	rt    *Runtime
	mu    sync.Mutex
	queue []*Promise
	wg    conc.WaitGroup
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{rt: rt}
}

// Spawn queues a call of fun and returns a promise for its result.
func (s *Scheduler) Spawn(env *LEnv, fun *LVal, args []*LVal) *LVal {
	p := newPromise()
	p.task = func() *LVal {
		return env.call(fun, args)
	}
	s.mu.Lock()
	s.queue = append(s.queue, p)
	s.mu.Unlock()
	s.rt.logger().Debug("async call queued", "function", fun.FunData().DisplayName())
	return PromiseValue(p)
}

// Go calls fn on a new goroutine and returns a promise settled by its
// result.  A panic in fn rejects the promise.  fn must not evaluate lisp
// code or modify any LEnv.
func (s *Scheduler) Go(fn func() (*LVal, error)) *LVal {
	p := newPromise()
	p.host = true
	s.wg.Go(func() {
		var pc panics.Catcher
		pc.Try(func() {
			v, err := fn()
			if err != nil {
				v = ErrorCondition(CondRuntimeError, err)
			}
			p.settle(v)
		})
		if r := pc.Recovered(); r != nil {
			p.settle(ErrorCondition(CondRuntimeError, r.AsError()))
		}
	})
	return PromiseValue(p)
}

// Await returns the settled value of the promise v.  A queued call is run
// immediately.  A rejected promise produces its error.  Values other than
// promises are returned unchanged.
func (s *Scheduler) Await(env *LEnv, v *LVal) *LVal {
	if v.Type != LPromise {
		return v
	}
	p := v.Promise()
	task, host := p.takeTask()
	if task != nil {
		s.dequeue(p)
		p.settle(task())
	} else if !host && p.State() == PromisePending {
		return env.ErrorConditionf(CondRuntimeError, "promise awaited by its own async call")
	}
	<-p.done
	r := p.Value()
	if r.Type == LError {
		env.ErrorAssociate(r)
	}
	return r
}

func (s *Scheduler) dequeue(p *Promise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.queue {
		if s.queue[i] == p {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Drain runs queued async calls until the queue is empty.  Calls queued
// while draining are run as well.
func (s *Scheduler) Drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		p := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		task, _ := p.takeTask()
		if task == nil {
			continue
		}
		v := task()
		p.settle(v)
		if v.Type == LError {
			s.rt.logger().Debug("async call failed without being awaited", "error", GoError(v))
		}
	}
}

// Pending returns the number of queued async calls.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Wait blocks until all host work started with Go has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func opAsync(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.ErrorConditionf(CondSyntaxError, "async: missing signature")
	}
	if isForm(args[0], "lambda") && len(args) == 1 {
		fun := env.Eval(args[0])
		if fun.Type == LError {
			return fun
		}
		fun.FunData().Async = true
		return fun
	}
	name, formals, lerr := env.signature("async", args[0])
	if lerr != nil {
		return lerr
	}
	fun := env.Lambda(name, formals, args[1:])
	if fun.Type == LError {
		return fun
	}
	fun.FunData().Async = true
	return env.Define(name, fun)
}

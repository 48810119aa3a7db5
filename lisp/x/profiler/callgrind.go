package profiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/daniel/lisp"
)

// callgrindProfiler writes a profile in the Callgrind format which can be
// opened in KCacheGrind or QCacheGrind.  Each call of a traced function is
// written as a cost block when the call returns.  A block holds the time and
// memory spent in the function itself followed by the inclusive cost of each
// call it made.
type callgrindProfiler struct {
	profiler
	mu        sync.Mutex
	out       io.Writer
	w         *bufio.Writer
	files     map[string]int
	funs      map[string]int
	stack     []*callFrame
	startTime time.Time
}

var _ lisp.Profiler = &callgrindProfiler{}

// cost is measured in nanoseconds and allocated bytes.
type cost struct {
	nanos int64
	bytes uint64
}

func (c cost) minus(o cost) cost {
	c.nanos -= o.nanos
	if c.bytes >= o.bytes {
		c.bytes -= o.bytes
	} else {
		c.bytes = 0
	}
	return c
}

type callFrame struct {
	name   string
	file   string
	line   int
	start  time.Time
	alloc  uint64
	callee cost
	calls  []completedCall
}

type completedCall struct {
	name string
	file string
	line int
	cost cost
}

// NewCallgrindProfiler returns a profiler attached to runtime which writes
// a Callgrind profile once Complete is called.
func NewCallgrindProfiler(runtime *lisp.Runtime, opts ...Option) *callgrindProfiler {
	p := &callgrindProfiler{profiler: profiler{runtime: runtime}}
	runtime.Profiler = p
	p.applyConfigs(opts...)
	return p
}

// SetFile directs the profile to a new file created at filename.
func (p *callgrindProfiler) SetFile(filename string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.out = f
	return nil
}

// SetWriter directs the profile to w.  If w is an io.Closer it is closed
// by Complete.
func (p *callgrindProfiler) SetWriter(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.out = w
	return nil
}

func (p *callgrindProfiler) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	if p.out == nil {
		return errors.New("no output set in profiler")
	}
	p.w = bufio.NewWriter(p.out)
	fmt.Fprintf(p.w, "version: 1\ncreator: daniel %s (Go %s)\n", lisp.Version, runtime.Version())
	fmt.Fprint(p.w, "cmd: daniel run\npart: 1\npositions: line\n\n")
	fmt.Fprint(p.w, "events: Time_(ns) Memory_(bytes)\n\n")
	p.files = make(map[string]int)
	p.funs = make(map[string]int)
	p.stack = nil
	p.startTime = time.Now()
	p.push("ENTRYPOINT", "-", 0)
	return p.profiler.Enable()
}

func (p *callgrindProfiler) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	name, _ := p.prettyFunName(fun)
	file, line := getSource(fun)
	p.mu.Lock()
	p.push(name, file, line)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.enabled && len(p.stack) > 1 {
			p.pop()
		}
	}
}

// Complete closes any calls still open, writes the profile summary and
// flushes the profile to its output.
func (p *callgrindProfiler) Complete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	var total cost
	for len(p.stack) > 0 {
		total = p.pop()
	}
	fmt.Fprintf(p.w, "summary: %d %d\n", time.Since(p.startTime).Nanoseconds(), total.bytes)
	err := p.w.Flush()
	if c, ok := p.out.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	p.out = nil
	if perr := p.profiler.Complete(); err == nil {
		err = perr
	}
	return err
}

func (p *callgrindProfiler) push(name, file string, line int) {
	p.stack = append(p.stack, &callFrame{
		name:  name,
		file:  file,
		line:  line,
		start: time.Now(),
		alloc: totalAlloc(),
	})
}

// pop ends the innermost call, writes its cost block and charges its cost
// to the caller.  The inclusive cost of the call is returned.
func (p *callgrindProfiler) pop() cost {
	n := len(p.stack) - 1
	frame := p.stack[n]
	p.stack = p.stack[:n]

	inclusive := cost{nanos: time.Since(frame.start).Nanoseconds()}
	if inclusive.nanos == 0 {
		inclusive.nanos = 1
	}
	if alloc := totalAlloc(); alloc > frame.alloc {
		inclusive.bytes = alloc - frame.alloc
	}
	self := inclusive.minus(frame.callee)

	// Bufio errors are sticky and reported by Flush in Complete.
	fmt.Fprintf(p.w, "fl=%s\nfn=%s\n", ref(p.files, frame.file), ref(p.funs, frame.name))
	fmt.Fprintf(p.w, "%d %d %d\n", frame.line, self.nanos, self.bytes)
	for _, c := range frame.calls {
		fmt.Fprintf(p.w, "cfl=%s\ncfn=%s\n", ref(p.files, c.file), ref(p.funs, c.name))
		fmt.Fprintf(p.w, "calls=1 %d\n", c.line)
		fmt.Fprintf(p.w, "%d %d %d\n", frame.line, c.cost.nanos, c.cost.bytes)
	}
	fmt.Fprint(p.w, "\n")

	if n > 0 {
		caller := p.stack[n-1]
		caller.callee.nanos += inclusive.nanos
		caller.callee.bytes += inclusive.bytes
		caller.calls = append(caller.calls, completedCall{
			name: frame.name,
			file: frame.file,
			line: frame.line,
			cost: inclusive,
		})
	}
	return inclusive
}

// ref returns the compressed form of name.  The first occurrence of a name
// defines its id and later occurrences only repeat the id.
func ref(ids map[string]int, name string) string {
	if id, ok := ids[name]; ok {
		return fmt.Sprintf("(%d)", id)
	}
	id := len(ids) + 1
	ids[name] = id
	return fmt.Sprintf("(%d) %s", id, name)
}

func totalAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}

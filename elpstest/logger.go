// Copyright © 2018 The ELPS authors

package elpstest

import (
	"bytes"
	"io"
	"testing"

	"github.com/luthersystems/daniel/lisp"
)

// Logger forwards the output of a daniel program to a test log one line at
// a time.  Each line is tagged with the stream it was written to so that
// interleaved stdout and stderr remain distinguishable in go test output.
type Logger struct {
	t      testing.TB
	stream string
	buf    []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB, stream string) *Logger {
	return &Logger{
		t:      t,
		stream: stream,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.emit(log.buf[:i])
		log.buf = log.buf[i+1:]
	}
}

// Flush logs any partial line which has not been terminated by a newline.
func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.emit(log.buf)
	log.buf = nil
}

func (log *Logger) emit(line []byte) {
	log.t.Helper()
	if log.stream == "" {
		log.t.Log(string(line))
		return
	}
	log.t.Logf("[%s] %s", log.stream, line)
}

// flushOutput flushes the loggers attached to the output streams of env.
func flushOutput(env *lisp.LEnv) {
	for _, w := range []io.Writer{env.Runtime.Stdout, env.Runtime.Stderr} {
		if log, ok := w.(*Logger); ok {
			log.Flush()
		}
	}
}

// Copyright © 2018 The ELPS authors

package parser

import (
	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/parser/rdparser"
	"github.com/luthersystems/daniel/parser/regexparser"
)

// ReaderOption configures the lisp.Reader returned by NewReader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	combinators bool
}

// WithCombinators selects the parser combinator reader instead of the
// default recursive descent reader.
func WithCombinators() ReaderOption {
	return func(c *readerConfig) {
		c.combinators = true
	}
}

// NewReader returns a new lisp.Reader
func NewReader(opts ...ReaderOption) lisp.Reader {
	var c readerConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.combinators {
		return regexparser.NewReader()
	}
	return rdparser.NewReader()
}

// ReaderNamed returns the reader identified by name, "rd" or "combinator".
// The empty name selects the default reader.
func ReaderNamed(name string) (lisp.Reader, bool) {
	switch name {
	case "", "rd":
		return NewReader(), true
	case "combinator":
		return NewReader(WithCombinators()), true
	}
	return nil, false
}

// Copyright © 2018 The ELPS authors

package libjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "JSON"

// CondSyntaxError is the condition of errors raised when decoding malformed
// JSON.
const CondSyntaxError = "json-syntax-error"

// Module returns the JSON native module using the default serializer.
func Module() *lisp.NativeModule {
	return ModuleWith(&Serializer{})
}

// ModuleWith returns a JSON native module whose functions use s.
func ModuleWith(s *Serializer) *lisp.NativeModule {
	return libutil.Module(DefaultModuleName,
		"Conversion of values to and from JSON text.", nil, Builtins(s)...)
}

// Builtins returns the module functions that use s.
func Builtins(s *Serializer) []*libutil.Builtin {
	return []*libutil.Builtin{
		libutil.FunctionDoc("encode", lisp.Formals("value", lisp.VarArgSymbol, "indent"), s.EncodeBuiltin,
			`Returns value serialized as a JSON string.  Maps and objects
			become JSON objects and lists and ranges become arrays.  When
			indent is given the output is pretty printed using indent as
			the indentation string.`),
		libutil.FunctionDoc("decode", lisp.Formals("json-string"), s.DecodeBuiltin,
			`Parses json-string and returns the equivalent value.  Objects
			are decoded as maps with string keys in document order and
			null is decoded as nil.`),
	}
}

var errTrailingData = errors.New("trailing data after json value")

// Dump serializes the structure of v as JSON.
func Dump(v *lisp.LVal) ([]byte, error) {
	return (&Serializer{}).Dump(v)
}

// Load parses b as JSON and returns an equivalent LVal.
func Load(b []byte) *lisp.LVal {
	return (&Serializer{}).Load(b)
}

// Serializer defines JSON serialization rules for lisp values.
type Serializer struct {
	// UseStringNumbers serializes numbers as JSON strings and leaves
	// decoded numbers as strings of their literal text.
	UseStringNumbers bool
}

// Dump serializes v as JSON and returns any error.
func (s *Serializer) Dump(v *lisp.LVal) ([]byte, error) {
	enc := newEncoder(s.UseStringNumbers)
	err := enc.encode(v)
	if err != nil {
		return nil, err
	}
	return enc.bytes(), nil
}

// Load parses b and returns an LVal representing its structure.
func (s *Serializer) Load(b []byte) *lisp.LVal {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	v, err := s.decode(d)
	if err == nil && d.More() {
		err = errTrailingData
	}
	if err != nil {
		var serr *json.SyntaxError
		if errors.As(err, &serr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) || err == errTrailingData {
			return lisp.ErrorCondition(CondSyntaxError, err)
		}
		return lisp.Error(err)
	}
	return v
}

func (s *Serializer) decode(d *json.Decoder) (*lisp.LVal, error) {
	tok, err := d.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {
	case nil:
		return lisp.Nil(), nil
	case bool:
		return lisp.Bool(tok), nil
	case string:
		return lisp.String(tok), nil
	case json.Number:
		if s.UseStringNumbers {
			return lisp.String(tok.String()), nil
		}
		x, err := tok.Float64()
		if err != nil {
			return nil, err
		}
		return lisp.Number(x), nil
	case json.Delim:
		switch tok {
		case '[':
			var cells []*lisp.LVal
			for d.More() {
				v, err := s.decode(d)
				if err != nil {
					return nil, err
				}
				cells = append(cells, v)
			}
			_, err = d.Token()
			return lisp.ListOf(cells...), err
		case '{':
			m := lisp.NewMap()
			for d.More() {
				k, err := d.Token()
				if err != nil {
					return nil, err
				}
				v, err := s.decode(d)
				if err != nil {
					return nil, err
				}
				err = m.Set(lisp.String(k.(string)), v)
				if err != nil {
					return nil, err
				}
			}
			_, err = d.Token()
			return lisp.MapValue(m), err
		}
	}
	return nil, fmt.Errorf("unexpected json token: %v", tok)
}

// EncodeBuiltin implements JSON.encode.
func (s *Serializer) EncodeBuiltin(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	b, err := s.Dump(args[0])
	if err != nil {
		return env.ErrorCondition(lisp.CondTypeError, err)
	}
	if len(args) > 1 && !args[1].IsNil() {
		indent, lerr := libutil.StringArg(env, args[1])
		if lerr != nil {
			return lerr
		}
		var buf bytes.Buffer
		err = json.Indent(&buf, b, "", indent)
		if err != nil {
			return env.Error(err)
		}
		b = buf.Bytes()
	}
	return lisp.String(string(b))
}

// DecodeBuiltin implements JSON.decode.
func (s *Serializer) DecodeBuiltin(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	js, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	v := s.Load([]byte(js))
	if v.Type == lisp.LError {
		env.ErrorAssociate(v)
	}
	return v
}

// Copyright © 2018 The ELPS authors

package libjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/daniel/lisp"
)

func init() {
	encoderFuncs[lisp.LBool] = (*encoder).encodeLBool
	encoderFuncs[lisp.LSymbol] = (*encoder).encodeLSymbol
	encoderFuncs[lisp.LKeyword] = (*encoder).encodeLKeyword
	encoderFuncs[lisp.LString] = (*encoder).encodeLString
	encoderFuncs[lisp.LNumber] = (*encoder).encodeLNumber
	encoderFuncs[lisp.LNative] = (*encoder).encodeLNative
	encoderFuncs[lisp.LList] = (*encoder).encodeLList
	encoderFuncs[lisp.LRange] = (*encoder).encodeLRange
	encoderFuncs[lisp.LMap] = (*encoder).encodeLMap
	encoderFuncs[lisp.LObject] = (*encoder).encodeLObject
}

var encoderFuncs = map[lisp.LType]func(enc *encoder, v *lisp.LVal) error{}

type encoder struct {
	stringNums bool
	buf        bytes.Buffer
}

func newEncoder(stringNums bool) *encoder {
	return &encoder{stringNums: stringNums}
}

func (enc *encoder) bytes() []byte {
	return enc.buf.Bytes()
}

func (enc *encoder) encode(v *lisp.LVal) error {
	if v.Type == lisp.LNil {
		enc.buf.WriteString("null")
		return nil
	}
	if fn := encoderFuncs[v.Type]; fn != nil {
		return fn(enc, v)
	}
	return fmt.Errorf("invalid type encountered: %v", lisp.GetType(v))
}

func (enc *encoder) encodeLMap(v *lisp.LVal) error {
	if v.Literal {
		return fmt.Errorf("cannot serialize unevaluated map literal")
	}
	return enc.encodeEntries(v.Map())
}

// Objects are serialized as the map of their fields.
func (enc *encoder) encodeLObject(v *lisp.LVal) error {
	return enc.encodeEntries(v.Object().Fields)
}

func (enc *encoder) encodeEntries(m *lisp.MapData) (err error) {
	enc.buf.WriteByte('{')
	for i, ent := range m.Entries() {
		if i > 0 {
			enc.buf.WriteByte(',')
		}
		err = enc.encodeMapKey(ent.Cells[0])
		if err != nil {
			return err
		}
		enc.buf.WriteByte(':')
		err = enc.encode(ent.Cells[1])
		if err != nil {
			return err
		}
	}
	enc.buf.WriteByte('}')
	return nil
}

func (enc *encoder) encodeMapKey(v *lisp.LVal) error {
	switch v.Type {
	case lisp.LString, lisp.LSymbol:
		return enc.encodeString(v.Str)
	case lisp.LKeyword:
		return enc.encodeString(strings.TrimPrefix(v.Str, ":"))
	case lisp.LNumber:
		return enc.encodeString(lisp.FormatNumber(v.Num))
	}
	return invalidKeyTypeError(v.Type)
}

type invalidKeyTypeError lisp.LType

func (e invalidKeyTypeError) Error() string {
	return fmt.Sprintf("invalid map key type: %v", lisp.LType(e))
}

func (enc *encoder) encodeLList(v *lisp.LVal) error {
	return enc.encodeArray(v.Items())
}

func (enc *encoder) encodeLRange(v *lisp.LVal) error {
	return enc.encodeArray(v.Range().Values())
}

func (enc *encoder) encodeArray(cells []*lisp.LVal) (err error) {
	enc.buf.WriteByte('[')
	for i, v := range cells {
		if i > 0 {
			enc.buf.WriteByte(',')
		}
		err = enc.encode(v)
		if err != nil {
			return err
		}
	}
	enc.buf.WriteByte(']')
	return nil
}

func (enc *encoder) encodeLNative(v *lisp.LVal) error {
	b, err := json.Marshal(v.Native)
	enc.buf.Write(b)
	return err
}

func (enc *encoder) encodeLNumber(v *lisp.LVal) error {
	x := v.Num
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("unsupported number: %s", lisp.FormatNumber(x))
	}
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	s := string(b)
	if enc.stringNums {
		return enc.encodeString(s)
	}
	enc.buf.WriteString(s)
	return nil
}

func (enc *encoder) encodeLBool(v *lisp.LVal) error {
	enc.buf.WriteString(strconv.FormatBool(lisp.True(v)))
	return nil
}

func (enc *encoder) encodeLSymbol(v *lisp.LVal) error {
	return enc.encodeString(v.Str)
}

func (enc *encoder) encodeLKeyword(v *lisp.LVal) error {
	return enc.encodeString(strings.TrimPrefix(v.Str, ":"))
}

func (enc *encoder) encodeLString(v *lisp.LVal) error {
	return enc.encodeString(v.Str)
}

// NOTE:  encodeString adapted from the json package.
func (enc *encoder) encodeString(s string) error {
	const hex = "0123456789abcdef"
	enc.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			if start < i {
				enc.buf.WriteString(s[start:i])
			}
			enc.buf.WriteByte('\\')
			switch b {
			case '\\', '"':
				enc.buf.WriteByte(b)
			case '\n':
				enc.buf.WriteByte('n')
			case '\r':
				enc.buf.WriteByte('r')
			case '\t':
				enc.buf.WriteByte('t')
			default:
				enc.buf.WriteString(`u00`)
				enc.buf.WriteByte(hex[b>>4])
				enc.buf.WriteByte(hex[b&0xF])
			}
			i++
			start = i
			continue
		}
		c, size := utf8.DecodeRuneInString(s[i:])
		if c == utf8.RuneError && size == 1 {
			if start < i {
				enc.buf.WriteString(s[start:i])
			}
			enc.buf.WriteString(`\ufffd`)
			i += size
			start = i
			continue
		}
		// U+2028 and U+2029 are valid in JSON strings but not in
		// javascript source.
		if c == '\u2028' || c == '\u2029' {
			if start < i {
				enc.buf.WriteString(s[start:i])
			}
			enc.buf.WriteString(`\u202`)
			enc.buf.WriteByte(hex[c&0xF])
			i += size
			start = i
			continue
		}
		i += size
	}
	if start < len(s) {
		enc.buf.WriteString(s[start:])
	}
	enc.buf.WriteByte('"')
	return nil
}

// Copyright © 2024 The ELPS authors

// Package libyaml converts values to and from YAML documents.  Mapping keys
// keep their document order in both directions.
package libyaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
	"gopkg.in/yaml.v3"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "YAML"

// CondSyntaxError is the condition of errors raised when decoding malformed
// YAML.
const CondSyntaxError = "yaml-syntax-error"

// Module returns the YAML native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName, "Conversion of values to and from YAML documents.", nil,
		libutil.FunctionDoc("encode", lisp.Formals("value"), builtinEncode,
			`Returns value serialized as a YAML document.  Maps and objects
			become mappings and lists and ranges become sequences.`),
		libutil.FunctionDoc("decode", lisp.Formals("yaml-string"), builtinDecode,
			`Parses the first document in yaml-string.  Mappings are
			decoded as maps with string keys and null as nil.`),
	)
}

// Dump serializes v as a YAML document.
func Dump(v *lisp.LVal) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}

// Load parses the first YAML document in b.
func Load(b []byte) *lisp.LVal {
	var doc yaml.Node
	err := yaml.Unmarshal(b, &doc)
	if err != nil {
		return lisp.ErrorCondition(CondSyntaxError, err)
	}
	if doc.Kind == 0 {
		return lisp.Nil()
	}
	v, err := fromNode(&doc)
	if err != nil {
		return lisp.Error(err)
	}
	return v
}

func builtinEncode(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	b, err := Dump(args[0])
	if err != nil {
		return env.ErrorCondition(lisp.CondTypeError, err)
	}
	return lisp.String(string(b))
}

func builtinDecode(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	s, lerr := libutil.StringArg(env, args[0])
	if lerr != nil {
		return lerr
	}
	v := Load([]byte(s))
	if v.Type == lisp.LError {
		env.ErrorAssociate(v)
	}
	return v
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toNode(v *lisp.LVal) (*yaml.Node, error) {
	switch v.Type {
	case lisp.LNil:
		return scalar("!!null", "null"), nil
	case lisp.LBool:
		return scalar("!!bool", strconv.FormatBool(lisp.True(v))), nil
	case lisp.LNumber:
		if math.IsNaN(v.Num) {
			return scalar("!!float", ".nan"), nil
		}
		if math.IsInf(v.Num, 0) {
			return scalar("!!float", map[bool]string{true: ".inf", false: "-.inf"}[v.Num > 0]), nil
		}
		if v.Num == math.Trunc(v.Num) {
			return scalar("!!int", lisp.FormatNumber(v.Num)), nil
		}
		return scalar("!!float", strconv.FormatFloat(v.Num, 'g', -1, 64)), nil
	case lisp.LString, lisp.LSymbol:
		return scalar("!!str", v.Str), nil
	case lisp.LKeyword:
		return scalar("!!str", strings.TrimPrefix(v.Str, ":")), nil
	case lisp.LList:
		return sequence(v.Items())
	case lisp.LRange:
		return sequence(v.Range().Values())
	case lisp.LMap:
		if v.Literal {
			return nil, fmt.Errorf("cannot serialize unevaluated map literal")
		}
		return mapping(v.Map())
	case lisp.LObject:
		return mapping(v.Object().Fields)
	}
	return nil, fmt.Errorf("invalid type encountered: %v", lisp.GetType(v))
}

func sequence(cells []*lisp.LVal) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, c := range cells {
		child, err := toNode(c)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, child)
	}
	return n, nil
}

func mapping(m *lisp.MapData) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	m.Each(func(k, v *lisp.LVal) bool {
		var kn, vn *yaml.Node
		kn, err = toNode(k)
		if err != nil {
			return false
		}
		if kn.Kind != yaml.ScalarNode {
			err = fmt.Errorf("invalid map key type: %v", k.Type)
			return false
		}
		vn, err = toNode(v)
		if err != nil {
			return false
		}
		n.Content = append(n.Content, kn, vn)
		return true
	})
	return n, err
}

func fromNode(n *yaml.Node) (*lisp.LVal, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return lisp.Nil(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		cells := make([]*lisp.LVal, len(n.Content))
		for i, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			cells[i] = v
		}
		return lisp.ListOf(cells...), nil
	case yaml.MappingNode:
		m := lisp.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if err := m.Set(lisp.String(n.Content[i].Value), v); err != nil {
				return nil, err
			}
		}
		return lisp.MapValue(m), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return nil, fmt.Errorf("unsupported yaml node kind: %v", n.Kind)
}

func fromScalar(n *yaml.Node) (*lisp.LVal, error) {
	switch n.ShortTag() {
	case "!!null":
		return lisp.Nil(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return lisp.Bool(b), nil
	case "!!int", "!!float":
		var x float64
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return lisp.Number(x), nil
	}
	return lisp.String(n.Value), nil
}

// Copyright © 2018 The ELPS authors

package libbase64

import (
	"encoding/base64"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Base64"

// Module returns the Base64 native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName, "Standard and URL-safe base64 encoding.", nil, builtins...)
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("encode", lisp.Formals("str"), encoder(base64.StdEncoding),
		`Encodes the bytes of str using standard base64 encoding.`),
	libutil.FunctionDoc("decode", lisp.Formals("encoded"), decoder(base64.StdEncoding),
		`Decodes standard base64 encoded data and returns the result as a
		string.  Returns an error if the input is not valid base64.`),
	libutil.FunctionDoc("encode-url", lisp.Formals("str"), encoder(base64.URLEncoding),
		`Encodes the bytes of str using URL-safe base64 encoding.`),
	libutil.FunctionDoc("decode-url", lisp.Formals("encoded"), decoder(base64.URLEncoding),
		`Decodes URL-safe base64 encoded data.`),
}

func encoder(enc *base64.Encoding) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		s, lerr := libutil.StringArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		return lisp.String(enc.EncodeToString([]byte(s)))
	}
}

func decoder(enc *base64.Encoding) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
		s, lerr := libutil.StringArg(env, args[0])
		if lerr != nil {
			return lerr
		}
		b, err := enc.DecodeString(s)
		if err != nil {
			return env.Error(err)
		}
		return lisp.String(string(b))
	}
}

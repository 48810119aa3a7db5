// Copyright © 2021 The ELPS authors

package libhelp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/daniel/lisp"
	"github.com/luthersystems/daniel/lisp/lisplib/internal/libutil"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultModuleName is the name the module is registered under.
const DefaultModuleName = "Help"

// MissingDoc describes a value with no documentation.
type MissingDoc struct {
	// Kind is "builtin", "special-op", "module" or the kind of an exported
	// function (e.g. "builtin", "lambda").
	Kind string

	// Name is the qualified name of the value (e.g. "Math.sin").
	Name string
}

// CheckMissing reports values missing documentation in the given
// environment.  It checks core builtins and special operators, the
// documentation of every registered native module and the functions each
// of them exports.
func CheckMissing(env *lisp.LEnv) []MissingDoc {
	var missing []MissingDoc

	for _, b := range lisp.DefaultBuiltins() {
		if b.Docstring() == "" {
			missing = append(missing, MissingDoc{Kind: "builtin", Name: b.Name()})
		}
	}
	for _, op := range lisp.DefaultSpecialOps() {
		if op.Docstring() == "" {
			missing = append(missing, MissingDoc{Kind: "special-op", Name: op.Name()})
		}
	}

	for _, name := range env.Runtime.Loader.Natives() {
		if name == lisp.CoreModuleName {
			// covered by DefaultBuiltins
			continue
		}
		mod := env.Import(lisp.String(name))
		if mod.Type == lisp.LError {
			missing = append(missing, MissingDoc{Kind: "module", Name: name})
			continue
		}
		md := mod.Module()
		if strings.TrimSpace(md.Doc) == "" {
			missing = append(missing, MissingDoc{Kind: "module", Name: name})
		}
		md.Exports.Each(func(k, v *lisp.LVal) bool {
			if v.Type == lisp.LFun && v.FunData().Doc == "" {
				missing = append(missing, MissingDoc{Kind: lisp.InspectValue(v).Kind, Name: name + "." + k.Str})
			}
			return true
		})
	}
	return missing
}

// Module returns the Help native module.
func Module() *lisp.NativeModule {
	return libutil.Module(DefaultModuleName,
		"Interactive documentation: inspect functions, classes and module exports.",
		nil, builtins...)
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("help", lisp.Formals("value"), builtinHelp,
		`
		Prints documentation for value.  Functions have their signature
		and any docstring rendered.  Modules have their exports rendered.
		Other values have their types and current values printed.
		`),
	libutil.FunctionDoc("describe-module", lisp.Formals("module"), builtinDescribeModule,
		`
		Prints documentation for the exports of module, which may be a
		module value or the name of a module to import.
		`),
	libutil.FunctionDoc("modules", lisp.Formals(), builtinModules,
		`
		Lists the native modules registered with the runtime along with
		their descriptions.
		`),
}

func builtinHelp(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	err := RenderValue(env.Runtime.Stdout, args[0])
	if err != nil {
		return env.Error(err)
	}
	return lisp.Nil()
}

func builtinDescribeModule(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	mod := args[0]
	if mod.Type == lisp.LString || mod.Type == lisp.LSymbol {
		mod = env.Import(mod)
		if mod.Type == lisp.LError {
			return mod
		}
	}
	if mod.Type != lisp.LModule {
		return env.ErrorConditionf(lisp.CondTypeError, "argument is not a module: %v", lisp.GetType(mod))
	}
	err := RenderModule(env.Runtime.Stdout, mod)
	if err != nil {
		return env.Error(err)
	}
	return lisp.Nil()
}

func builtinModules(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	err := RenderModuleList(env.Runtime.Stdout, env)
	if err != nil {
		return env.Error(err)
	}
	return lisp.Nil()
}

// RenderModuleList writes a summary of the native modules registered with
// env's runtime to w.  Each module is listed with its name and the first
// line of its doc string (if any).  Modules are sorted alphabetically.
func RenderModuleList(w io.Writer, env *lisp.LEnv) error {
	for _, name := range env.Runtime.Loader.Natives() {
		m, _ := env.Runtime.Loader.Native(name)
		line := fmt.Sprintf("  %-12s", name)
		if m.Doc != "" {
			first := strings.SplitN(strings.TrimSpace(m.Doc), "\n", 2)[0]
			line += "  " + strings.TrimSpace(first)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// RenderModule writes to w formatted documentation for the exports of mod.
// The exact formatting of the rendered documentation is subject to change.
func RenderModule(w io.Writer, mod *lisp.LVal) error {
	md := mod.Module()
	_, err := fmt.Fprintf(w, "module %s\n", md.Name)
	if err != nil {
		return err
	}
	if md.Doc != "" {
		_, err = fmt.Fprintln(w, cleanDocstring(md.Doc))
		if err != nil {
			return err
		}
	}
	names := make([]string, 0, md.Exports.Len())
	md.Exports.Each(func(k, _ *lisp.LVal) bool {
		names = append(names, k.Str)
		return true
	})
	sort.Strings(names)
	for _, name := range names {
		_, err = fmt.Fprintln(w)
		if err != nil {
			return err
		}
		v, _ := md.Exports.Get(lisp.Symbol(name))
		err = renderNamed(w, name, v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", md.Name, name, err)
		}
	}
	return nil
}

// RenderValue writes to w formatted documentation for v.  The exact
// formatting of the rendered documentation is subject to change.
func RenderValue(w io.Writer, v *lisp.LVal) error {
	switch v.Type {
	case lisp.LModule:
		return RenderModule(w, v)
	case lisp.LFun:
		return renderFun(w, v.FunData().Name, v)
	case lisp.LClass:
		return renderClass(w, v)
	}
	return renderVal(w, "", v)
}

func renderNamed(w io.Writer, name string, v *lisp.LVal) error {
	switch v.Type {
	case lisp.LFun:
		return renderFun(w, name, v)
	case lisp.LClass:
		return renderClass(w, v)
	}
	return renderVal(w, name, v)
}

func renderVal(w io.Writer, name string, v *lisp.LVal) error {
	var err error
	if name == "" {
		_, err = fmt.Fprintf(w, "%v %v\n", lisp.GetType(v), v)
	} else {
		_, err = fmt.Fprintf(w, "%v %s %v\n", lisp.GetType(v), name, v)
	}
	return err
}

func renderFun(w io.Writer, name string, v *lisp.LVal) error {
	info := lisp.InspectValue(v)
	if name != "" {
		info.Name = name
	}
	_, err := fmt.Fprintf(w, "%s %s\n", info.Kind, info.Signature())
	if err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	doc := cleanDocstring(info.DocString)
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
	}
	return err
}

func renderClass(w io.Writer, v *lisp.LVal) error {
	cd := v.Class()
	header := "class " + cd.Name
	if cd.Super != nil && cd.Super.Type == lisp.LClass {
		header += " extends " + cd.Super.Class().Name
	}
	_, err := fmt.Fprintln(w, header)
	if err != nil {
		return err
	}
	if len(cd.Fields) > 0 || cd.Rest != "" {
		fields := append([]string(nil), cd.Fields...)
		if cd.Rest != "" {
			fields = append(fields, lisp.VarArgSymbol, cd.Rest)
		}
		_, err = fmt.Fprintf(w, "  fields: %s\n", strings.Join(fields, " "))
		if err != nil {
			return err
		}
	}
	for _, group := range []struct {
		label   string
		methods map[string]*lisp.LVal
	}{{"static", cd.Statics}, {"method", cd.Methods}} {
		names := make([]string, 0, len(group.methods))
		for name := range group.methods {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info := lisp.InspectValue(group.methods[name])
			info.Name = name
			_, err = fmt.Fprintf(w, "  %s %s\n", group.label, info.Signature())
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func cleanDocstring(doc string) string {
	if doc == "" {
		return ""
	}
	if doc[0] == '\n' {
		doc = doc[1:]
	}
	doc = indent.String(wordwrap.String(dedentDoc(doc), 72), 2)
	doc = strings.TrimSuffix(doc, "\n")
	return doc
}

// dedentDoc removes common leading whitespace from all non-empty lines.
// It handles Go raw string literals where the first line may have less
// indentation than continuation lines (which inherit the source code's
// tab indentation). Tabs are normalized to spaces before processing.
func dedentDoc(s string) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	lines := strings.Split(s, "\n")

	// Find minimum leading spaces across non-empty lines, skipping
	// the first line (which in raw strings often has no indentation).
	minWS := -1
	start := 0
	if len(lines) > 1 {
		start = 1
	}
	for _, line := range lines[start:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		ws := len(line) - len(trimmed)
		if minWS < 0 || ws < minWS {
			minWS = ws
		}
	}
	if minWS <= 0 {
		return strings.TrimLeft(lines[0], " ") + "\n" + strings.Join(lines[1:], "\n")
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		} else if len(lines[i]) >= minWS {
			lines[i] = lines[i][minWS:]
		}
	}
	return strings.Join(lines, "\n")
}

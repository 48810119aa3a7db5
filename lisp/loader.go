// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Loader initializes an environment, typically by defining bindings or
// registering modules.
type Loader func(*LEnv) *LVal

// LoaderMust returns its first argument when err is nil.  If err is nil
// LoaderMust panics.
func LoaderMust(fn Loader, err error) Loader {
	if err != nil {
		panic(err)
	}
	return fn
}

// TextLoader parses a text stream using r and returns a Loader which evaluates
// the stream's expressions when called.  The reader will be invoked only once.
func TextLoader(r Reader, name string, stream io.Reader) (Loader, error) {
	exprs, err := r.Read(name, stream)
	if err != nil {
		return nil, err
	}
	fn := func(env *LEnv) *LVal {
		return env.evalBody(exprs)
	}
	return fn, nil
}

// NativeModule is a module implemented in Go.  Create receives the values
// of the modules named by Requires and NativeRequires, in that order, and
// returns a map of exported names to values.
type NativeModule struct {
	Name string
	Doc  string
	// Requires are specifiers of source modules the module depends on.
	Requires []string
	// NativeRequires are names of native modules the module depends on.
	NativeRequires []string
	Create         func(env *LEnv, deps []*LVal) *LVal
	// Data is host state shared by the module's functions.  The loader
	// does not use it.
	Data interface{}
}

// ModuleData is the data stored in an LModule value.
type ModuleData struct {
	Name string
	// ID is the resolved location the module was loaded from.
	ID      string
	Doc     string
	Exports *MapData
}

// ModuleValue returns an LVal for the module m.
func ModuleValue(m *ModuleData) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LModule,
		Native: m,
	}
}

func (v *LVal) Module() *ModuleData {
	m, _ := v.Native.(*ModuleData)
	return m
}

const nativePrefix = "native:"
const stdPrefix = "std:"

type moduleNode struct {
	id       string
	name     string
	loc      string
	native   *NativeModule
	exprs    []*LVal
	requires []string
	once     sync.Once
	value    *LVal
}

// ModuleLoader resolves module specifiers, orders modules by their
// dependencies and instantiates each module at most once.  A ModuleLoader
// belongs to a single Runtime.
type ModuleLoader struct {
	// SearchPaths are directories searched for bare module names.
	SearchPaths []string
	// StdLib holds the standard source modules, resolved by bare name.
	StdLib fs.FS

	mu    sync.Mutex
	nodes map[string]*moduleNode
}

// NewModuleLoader returns an empty ModuleLoader.
func NewModuleLoader() *ModuleLoader {
	return &ModuleLoader{
		nodes: make(map[string]*moduleNode),
	}
}

// Register adds a native module.  Registering a name twice is an error.
func (l *ModuleLoader) Register(env *LEnv, m *NativeModule) *LVal {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := nativePrefix + m.Name
	if _, ok := l.nodes[id]; ok {
		return env.ErrorConditionf(CondAlreadyQueued, "Module %s already queued", m.Name)
	}
	l.nodes[id] = &moduleNode{id: id, name: m.Name, native: m}
	return Nil()
}

// Native returns the native module registered as name.
func (l *ModuleLoader) Native(name string) (*NativeModule, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[nativePrefix+name]
	if !ok {
		return nil, false
	}
	return n.native, true
}

// Natives returns the names of the registered native modules in sorted
// order.
func (l *ModuleLoader) Natives() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for _, n := range l.nodes {
		if n.native != nil {
			names = append(names, n.name)
		}
	}
	sort.Strings(names)
	return names
}

// Load returns the module named by spec, instantiating it and its
// dependencies as needed.  A relative spec is resolved against the source
// location of env.
func (l *ModuleLoader) Load(env *LEnv, spec *LVal) *LVal {
	order, root, lerr := l.plan(env, spec)
	if lerr != nil {
		return lerr
	}
	for _, n := range order {
		v := l.instantiate(env, n)
		if v.Type == LError {
			return v
		}
	}
	return root.value
}

// plan resolves spec, queues it and everything it requires, and returns the
// modules in instantiation order.
func (l *ModuleLoader) plan(env *LEnv, spec *LVal) ([]*moduleNode, *moduleNode, *LVal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ctx SourceContext = &sourceContext{}
	if env.Loc != nil && env.Loc.Pos >= 0 {
		ctx = &sourceContext{name: env.Loc.File, loc: env.Loc.Path}
	}
	id, lerr := l.enqueue(env, ctx, spec)
	if lerr != nil {
		return nil, nil, lerr
	}
	order, lerr := l.sort(env, id)
	if lerr != nil {
		return nil, nil, lerr
	}
	return order, l.nodes[id], nil
}

// enqueue resolves spec and adds it, along with its requirements, to the
// module table.  The resolved identifier of spec is returned.
func (l *ModuleLoader) enqueue(env *LEnv, ctx SourceContext, spec *LVal) (string, *LVal) {
	var s string
	switch spec.Type {
	case LString, LSymbol:
		s = spec.Str
	default:
		return "", env.ErrorConditionf(CondTypeError, "module specifier is not a string or symbol: %v", GetType(spec))
	}
	if _, ok := l.nodes[nativePrefix+s]; ok {
		return nativePrefix + s, l.enqueueNative(env, l.nodes[nativePrefix+s])
	}
	name, loc, src, err := l.resolve(env, ctx, s)
	if err != nil {
		env.Runtime.logger().Debug("module resolution failed", "module", s, "error", err)
		return "", env.ErrorConditionf(CondUnresolved, "Could not resolve file for module %s", s)
	}
	if _, ok := l.nodes[loc]; ok {
		return loc, nil
	}
	exprs, lerr := env.read(name, loc, bytes.NewReader(src))
	if lerr != nil {
		return "", lerr
	}
	n := &moduleNode{
		id:    loc,
		name:  strings.TrimSuffix(path.Base(filepath.ToSlash(name)), SourceExt),
		loc:   loc,
		exprs: exprs,
	}
	l.nodes[loc] = n
	env.Runtime.logger().Debug("module queued", "module", n.name, "location", loc)
	modctx := &sourceContext{name: name, loc: loc}
	for _, req := range scanImports(exprs) {
		id, lerr := l.enqueue(env, modctx, req)
		if lerr != nil {
			return "", lerr
		}
		n.requires = append(n.requires, id)
	}
	return loc, nil
}

func (l *ModuleLoader) enqueueNative(env *LEnv, n *moduleNode) *LVal {
	if n.requires != nil || n.value != nil {
		return nil
	}
	requires := make([]string, 0, len(n.native.Requires)+len(n.native.NativeRequires))
	for _, req := range n.native.Requires {
		id, lerr := l.enqueue(env, &sourceContext{}, String(req))
		if lerr != nil {
			return lerr
		}
		requires = append(requires, id)
	}
	for _, req := range n.native.NativeRequires {
		requires = append(requires, nativePrefix+req)
	}
	n.requires = requires
	return nil
}

// resolve locates the source of the module specifier s.
func (l *ModuleLoader) resolve(env *LEnv, ctx SourceContext, s string) (string, string, []byte, error) {
	lib := env.Runtime.Library
	if strings.HasPrefix(s, "file:") {
		u, err := url.Parse(s)
		if err != nil {
			return "", "", nil, err
		}
		s = u.Path
		if s == "" {
			s = u.Opaque
		}
		ctx = &sourceContext{}
	}
	s = withSourceExt(s)
	if isPathSpec(s) {
		if lib == nil {
			return "", "", nil, fmt.Errorf("no source library in environment runtime")
		}
		return lib.LoadSource(ctx, s)
	}
	if l.StdLib != nil {
		std := &FSLibrary{FS: l.StdLib}
		name, loc, src, err := std.LoadSource(nil, s)
		if err == nil {
			return name, stdPrefix + loc, src, nil
		}
	}
	if lib != nil {
		for _, dir := range l.SearchPaths {
			name, loc, src, err := lib.LoadSource(nil, filepath.Join(dir, s))
			if err == nil {
				return name, loc, src, nil
			}
		}
	}
	return "", "", nil, fmt.Errorf("module not found: %s", s)
}

func isPathSpec(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") || filepath.IsAbs(s) || path.IsAbs(s)
}

func withSourceExt(s string) string {
	if path.Ext(s) == "" {
		return s + SourceExt
	}
	return s
}

// scanImports returns the module specifiers of the import forms at the top
// level of exprs and inside module and do forms.
func scanImports(exprs []*LVal) []*LVal {
	var specs []*LVal
	for _, expr := range exprs {
		switch {
		case isForm(expr, "import"):
			if expr.Len() >= 2 {
				spec := expr.List().Get(1)
				if spec.Type == LString || spec.Type == LSymbol {
					specs = append(specs, spec)
				}
			}
		case isForm(expr, "module") && expr.Len() > 2:
			specs = append(specs, scanImports(expr.List().Values()[2:])...)
		case isForm(expr, DoSymbol):
			specs = append(specs, scanImports(expr.List().Rest().Values())...)
		}
	}
	return specs
}

const (
	unvisited = iota
	visiting
	visited
)

// sort orders the modules reachable from id so that every module follows
// the modules it requires.
func (l *ModuleLoader) sort(env *LEnv, id string) ([]*moduleNode, *LVal) {
	color := make(map[string]int)
	var order []*moduleNode
	var visit func(id string) *LVal
	visit = func(id string) *LVal {
		n, ok := l.nodes[id]
		if !ok {
			return env.ErrorConditionf(CondUnknownModule, "Unknown module %s", strings.TrimPrefix(id, nativePrefix))
		}
		switch color[id] {
		case visiting:
			return env.ErrorConditionf(CondCircularDep, "You have a circular dependency that includes %s", n.name)
		case visited:
			return nil
		}
		color[id] = visiting
		for _, req := range n.requires {
			if lerr := visit(req); lerr != nil {
				return lerr
			}
		}
		color[id] = visited
		order = append(order, n)
		return nil
	}
	if lerr := visit(id); lerr != nil {
		return nil, lerr
	}
	return order, nil
}

// instantiate creates the value of n once.  Every module n requires must
// already be instantiated.
func (l *ModuleLoader) instantiate(env *LEnv, n *moduleNode) *LVal {
	n.once.Do(func() {
		l.mu.Lock()
		deps := make([]*LVal, len(n.requires))
		for i, id := range n.requires {
			deps[i] = l.nodes[id].value
		}
		l.mu.Unlock()
		global := env.Runtime.Global
		if global == nil {
			global = env.root()
		}
		if n.native != nil {
			n.value = createNative(global, n, deps)
		} else {
			n.value = evalModule(global, n)
		}
		env.Runtime.logger().Debug("module instantiated", "module", n.name, "id", n.id)
	})
	return n.value
}

func createNative(global *LEnv, n *moduleNode, deps []*LVal) *LVal {
	menv := global.Extend(n.name)
	exports := n.native.Create(menv, deps)
	if exports.Type == LError {
		return exports
	}
	if exports.Type != LMap {
		return menv.ErrorConditionf(CondTypeError, "module %s did not create a map of exports: %v", n.name, GetType(exports))
	}
	return ModuleValue(&ModuleData{
		Name:    n.name,
		ID:      n.id,
		Doc:     n.native.Doc,
		Exports: exports.Map(),
	})
}

func evalModule(global *LEnv, n *moduleNode) *LVal {
	menv := global.Extend(n.name)
	menv.module = &moduleScope{name: n.name}
	r := menv.evalBody(n.exprs)
	if r.Type == LError {
		return r
	}
	mod := menv.module.value(menv)
	if mod.Type == LError {
		return mod
	}
	mod.Module().ID = n.id
	return mod
}

func (env *LEnv) root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

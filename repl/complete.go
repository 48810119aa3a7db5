// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/daniel/lisp"
)

// symbolCompleter implements readline.AutoCompleter by enumerating bindings
// visible from the REPL environment.  A prefix containing a dot completes the
// exports of the module bound before the dot.
type symbolCompleter struct {
	env *lisp.LEnv
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to whitespace or open paren).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '[' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	if i := strings.LastIndexByte(prefix, '.'); i > 0 {
		mod, ok := c.env.Lookup(prefix[:i])
		if ok && mod.Type == lisp.LModule {
			for _, k := range mod.Module().Exports.Keys() {
				add(prefix[:i+1] + k.Str)
			}
		}
	} else {
		for env := c.env; env != nil; env = env.Parent {
			for name := range env.Scope {
				add(name)
			}
		}
		for _, name := range c.env.Runtime.Loader.Natives() {
			add(name)
		}
	}

	sort.Strings(result)
	return result
}

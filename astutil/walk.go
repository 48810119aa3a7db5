// Copyright © 2024 The ELPS authors

// Package astutil provides helpers for walking daniel source forms as they
// come out of the reader.
package astutil

import "github.com/luthersystems/daniel/lisp"

// Walk calls fn for every node in the tree, depth-first.  parent is nil for
// top-level expressions.  The bodies of quote and quasiquote forms are data
// and are not visited.
func Walk(exprs []*lisp.LVal, fn func(node *lisp.LVal, parent *lisp.LVal, depth int)) {
	for _, expr := range exprs {
		walkNode(expr, nil, 0, fn)
	}
}

func walkNode(node *lisp.LVal, parent *lisp.LVal, depth int, fn func(*lisp.LVal, *lisp.LVal, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	switch HeadSymbol(node) {
	case "quote", "quasiquote":
		return
	}
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Children returns the sub-forms of node.  Lists yield their items and map
// literals their alternating keys and values.
func Children(node *lisp.LVal) []*lisp.LVal {
	switch {
	case node.Type == lisp.LList:
		return node.Items()
	case node.Type == lisp.LMap && node.Literal:
		return node.Cells
	}
	return nil
}

// WalkForms calls fn for every non-empty list in the tree.  Each one is a
// potential function call, macro call or special form.
func WalkForms(exprs []*lisp.LVal, fn func(form *lisp.LVal, depth int)) {
	Walk(exprs, func(node *lisp.LVal, _ *lisp.LVal, depth int) {
		if node.Type == lisp.LList && node.Len() > 0 {
			fn(node, depth)
		}
	})
}

// HeadSymbol returns the symbol name at the head of a list, or "".
func HeadSymbol(form *lisp.LVal) string {
	if form == nil || form.Type != lisp.LList || form.Len() == 0 {
		return ""
	}
	head := form.List().First()
	if head.Type == lisp.LSymbol {
		return head.Str
	}
	return ""
}

// Args returns the items of form following its head.
func Args(form *lisp.LVal) []*lisp.LVal {
	items := form.Items()
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// ArgCount returns the number of arguments in a form (excluding the head).
func ArgCount(form *lisp.LVal) int {
	return len(Args(form))
}

// UserDefined returns the set of names bound anywhere in the source.  This
// covers define targets, function signatures, let bindings, class names and
// import aliases.
//
// The result is file-global rather than scope-aware.  That may hide a valid
// finding but it never produces a false one.
func UserDefined(exprs []*lisp.LVal) map[string]bool {
	defs := make(map[string]bool)
	WalkForms(exprs, func(form *lisp.LVal, depth int) {
		args := Args(form)
		switch HeadSymbol(form) {
		case "define", "defmacro", "async":
			if len(args) == 0 {
				return
			}
			switch args[0].Type {
			case lisp.LSymbol:
				defs[args[0].Str] = true
			case lisp.LList:
				CollectFormals(args[0], defs)
			}
		case "lambda":
			if len(args) > 0 {
				CollectFormals(args[0], defs)
			}
		case "let":
			if len(args) == 0 {
				return
			}
			for _, bind := range args[0].Items() {
				switch bind.Type {
				case lisp.LSymbol:
					defs[bind.Str] = true
				case lisp.LList:
					if name := bind.List().First(); name.Type == lisp.LSymbol {
						defs[name.Str] = true
					}
				}
			}
		case "module":
			if len(args) > 0 && args[0].Type == lisp.LSymbol {
				defs[args[0].Str] = true
			}
		case "class":
			if len(args) > 0 && args[0].Type == lisp.LSymbol {
				defs[args[0].Str] = true
			}
			for _, def := range ClassMembers(form) {
				name, params := MemberSignature(def)
				if name != "" {
					defs[name] = true
				}
				if params != nil {
					CollectFormals(params, defs)
				}
			}
		case "for", "for/list":
			if len(args) > 0 {
				if name := args[0].List(); name != nil && name.First().Type == lisp.LSymbol {
					defs[name.First().Str] = true
				}
			}
		case "try":
			if len(args) == 2 {
				if clause := args[1].Items(); len(clause) >= 2 && clause[1].Type == lisp.LSymbol {
					defs[clause[1].Str] = true
				}
			}
		}
	})
	return defs
}

// ClassMembers returns the member definitions in the body of a class form,
// skipping the name and any :extends clause.
func ClassMembers(form *lisp.LVal) []*lisp.LVal {
	var members []*lisp.LVal
	for _, def := range Args(form) {
		if def.Type == lisp.LList {
			members = append(members, def)
		}
	}
	return members
}

// MemberSignature returns the name and parameter list of a class member.
// Members are written (new param...), (name (param...) body...) or
// (static name (param...) body...).  The constructor has no name.
func MemberSignature(def *lisp.LVal) (string, *lisp.LVal) {
	items := def.Items()
	switch HeadSymbol(def) {
	case "":
		return "", nil
	case "new":
		return "", lisp.ListOf(items[1:]...)
	case "static":
		if len(items) >= 3 && items[1].Type == lisp.LSymbol {
			return items[1].Str, items[2]
		}
		return "", nil
	}
	if len(items) >= 2 {
		return items[0].Str, items[1]
	}
	return items[0].Str, nil
}

// CollectFormals adds the symbol names in formals to defs, skipping the
// variadic marker.
func CollectFormals(formals *lisp.LVal, defs map[string]bool) {
	for _, sym := range formals.Items() {
		if sym.Type == lisp.LSymbol && sym.Str != lisp.VarArgSymbol {
			defs[sym.Str] = true
		}
	}
}

// SourceOf returns the best source location for a node.  It prefers the
// node's own location and falls back to its head's.
func SourceOf(v *lisp.LVal) *lisp.LVal {
	if v.Source != nil && v.Source.Line > 0 {
		return v
	}
	if children := Children(v); len(children) > 0 && children[0].Source != nil {
		return children[0]
	}
	return v
}

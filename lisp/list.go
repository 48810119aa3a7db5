// Copyright © 2024 The ELPS authors

package lisp

// List is a singly linked sequence of values with a cached tail and length.
//
// A List is a value that may share nodes with other lists.  Prepend and Rest
// share structure with their receiver.  Append links onto the shared tail
// only when no other list has already done so, otherwise it copies.  All
// traversal is bounded by the length of the receiving list so nodes linked
// by another list are never observed.
type List struct {
	head *listNode
	tail *listNode
	n    int
}

type listNode struct {
	val  *LVal
	next *listNode
}

// NewList returns a list containing vals.
func NewList(vals ...*LVal) *List {
	l := &List{}
	for _, v := range vals {
		node := &listNode{val: v}
		if l.head == nil {
			l.head = node
		} else {
			l.tail.next = node
		}
		l.tail = node
		l.n++
	}
	return l
}

// Len returns the number of values in l.  A nil list has length zero.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.n
}

// First returns the first value in l or nil if l is empty.
func (l *List) First() *LVal {
	if l.Len() == 0 {
		return nil
	}
	return l.head.val
}

// Last returns the final value in l or nil if l is empty.
func (l *List) Last() *LVal {
	if l.Len() == 0 {
		return nil
	}
	return l.tail.val
}

// Get returns the value at index i.  Negative indices count from the end of
// the list.  Get returns nil when i is out of bounds.
func (l *List) Get(i int) *LVal {
	if i < 0 {
		i += l.Len()
	}
	if i < 0 || i >= l.Len() {
		return nil
	}
	if i == l.n-1 {
		return l.tail.val
	}
	node := l.head
	for ; i > 0; i-- {
		node = node.next
	}
	return node.val
}

// With returns a copy of l whose value at index i, which must be in bounds,
// is v.  The list l is left unchanged.
func (l *List) With(i int, v *LVal) *List {
	vals := l.Values()
	vals[i] = v
	return NewList(vals...)
}

// Has returns true if l contains a value equal to v.
func (l *List) Has(v *LVal) bool {
	found := false
	l.Each(func(_ int, x *LVal) bool {
		found = x.Equal(v)
		return !found
	})
	return found
}

// Each calls fn with every index and value in l until fn returns false.
func (l *List) Each(fn func(i int, v *LVal) bool) {
	node := l.headNode()
	for i := 0; i < l.Len(); i++ {
		if !fn(i, node.val) {
			return
		}
		node = node.next
	}
}

// Values returns the values in l as a new slice.
func (l *List) Values() []*LVal {
	vals := make([]*LVal, 0, l.Len())
	l.Each(func(_ int, v *LVal) bool {
		vals = append(vals, v)
		return true
	})
	return vals
}

// Prepend returns a list with v followed by the values of l.  The returned
// list shares every node of l.
func (l *List) Prepend(v *LVal) *List {
	node := &listNode{val: v, next: l.headNode()}
	tail := node
	if l.Len() > 0 {
		tail = l.tail
	}
	return &List{head: node, tail: tail, n: l.Len() + 1}
}

// Append returns a list with the values of l followed by v.  Appending is
// constant time unless another list has already appended to l's tail.
func (l *List) Append(v *LVal) *List {
	if l.Len() == 0 {
		return NewList(v)
	}
	if l.tail.next != nil {
		l = l.Copy()
	}
	node := &listNode{val: v}
	l.tail.next = node
	return &List{head: l.head, tail: node, n: l.n + 1}
}

// Rest returns a list of every value in l after the first, sharing l's
// nodes.  The rest of an empty list is empty.
func (l *List) Rest() *List {
	if l.Len() <= 1 {
		return &List{}
	}
	return &List{head: l.head.next, tail: l.tail, n: l.n - 1}
}

// Slice returns a new list holding the values of l from index start up to,
// but not including, index end.  Indices are clamped to the bounds of l.
func (l *List) Slice(start, end int) *List {
	if start < 0 {
		start = 0
	}
	if end > l.Len() {
		end = l.Len()
	}
	if start >= end {
		return &List{}
	}
	return NewList(l.Values()[start:end]...)
}

// Concat returns a new list holding the values of l followed by the values
// of other.
func (l *List) Concat(other *List) *List {
	cp := l.Copy()
	other.Each(func(_ int, v *LVal) bool {
		cp = cp.Append(v)
		return true
	})
	return cp
}

// Copy returns a list holding the values of l which shares no nodes with l.
func (l *List) Copy() *List {
	return NewList(l.Values()...)
}

// Reverse returns a new list holding the values of l in reverse order.
func (l *List) Reverse() *List {
	r := &List{}
	l.Each(func(_ int, v *LVal) bool {
		r = r.Prepend(v)
		return true
	})
	return r
}

// Equal returns true if l and other hold equal values in the same order.
func (l *List) Equal(other *List) bool {
	if l.Len() != other.Len() {
		return false
	}
	a, b := l.headNode(), other.headNode()
	for i := 0; i < l.Len(); i++ {
		if !a.val.Equal(b.val) {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

func (l *List) headNode() *listNode {
	if l == nil {
		return nil
	}
	return l.head
}

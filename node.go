package databook

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Node is a tree unit: a set of uniquely named Values. A composite object
// is archived into exactly one Node; nested composites become nested Nodes.
//
// Nodes are shared by reference. A parent slot owns its child for as long as
// the parent is reachable, and callers can keep a root Node after the
// Notebook that built it is gone. Nodes must not form cycles.
//
// A Node is not safe for concurrent mutation. A fully built Node that nobody
// writes to any more can be read from multiple goroutines.
//
// The zero Node is empty and ready to use.
type Node struct {
	fields map[string]Value
}

func NewNode() *Node {
	return &Node{fields: make(map[string]Value)}
}

// Get returns the value stored under name, or a *FieldError wrapping
// ErrKeyNotFound.
func (n *Node) Get(name string) (Value, error) {
	v, ok := n.fields[name]
	if !ok {
		return Value{}, &FieldError{Name: name, Err: ErrKeyNotFound}
	}
	return v, nil
}

func (n *Node) Lookup(name string) (Value, bool) {
	v, ok := n.fields[name]
	return v, ok
}

func (n *Node) Has(name string) bool {
	_, ok := n.fields[name]
	return ok
}

// Put stores v under name, replacing any previous value (last write wins).
func (n *Node) Put(name string, v Value) {
	if !v.IsValid() {
		panic(fmt.Errorf("databook: cannot put invalid value under %q", name))
	}
	if v.node == n {
		panic(fmt.Errorf("databook: node cannot contain itself under %q", name))
	}
	if n.fields == nil {
		n.fields = make(map[string]Value)
	}
	n.fields[name] = v
}

// KindOf returns the kind stored under name.
func (n *Node) KindOf(name string) (Kind, error) {
	v, err := n.Get(name)
	if err != nil {
		return KindInvalid, err
	}
	return v.kind, nil
}

func (n *Node) Len() int {
	return len(n.fields)
}

// Names returns the field names in sorted order.
func (n *Node) Names() []string {
	return slices.Sorted(maps.Keys(n.fields))
}

// All iterates over the fields in name order.
func (n *Node) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range n.Names() {
			if !yield(name, n.fields[name]) {
				return
			}
		}
	}
}

// Equal reports structural equality: the same names, and under each name the
// same kind and payload, recursing into nested nodes.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if len(n.fields) != len(o.fields) {
		return false
	}
	for name, v := range n.fields {
		ov, ok := o.fields[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

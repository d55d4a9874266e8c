package typegraph

import (
	"reflect"
	"sort"
)

// Tree is a node in a descriptor tree: a value (normally a Marker) plus
// ordered named edges to child nodes. Children are attached after
// construction, so a node can be referenced before it is complete; that
// two-phase build is what makes self-referential and cyclic descriptor
// graphs representable without unbounded recursion.
//
// Trees also carry the auxiliary "extras" graphs zipped alongside a
// traversal, in which case the value is an arbitrary annotation rather than
// a Marker.
type Tree struct {
	value any
	names []string
	edges map[string]*Tree
	base  *Tree // overlay views delegate child lookup here
}

// NewTree creates a childless node holding value.
func NewTree(value any) *Tree {
	return &Tree{value: value}
}

// Overlay creates a view of base carrying a different value. The view shares
// base's edges, including any attached after the view was created, so a
// wrapper placed around a node mid-construction still sees the finished
// subtree.
func Overlay(base *Tree, value any) *Tree {
	return &Tree{value: value, base: base}
}

// Value returns the node's value.
func (t *Tree) Value() any { return t.value }

// Marker returns the node's value as a Marker, or nil if it holds something
// else (extras trees hold plain annotations).
func (t *Tree) Marker() Marker {
	m, _ := t.value.(Marker)
	return m
}

// Set attaches or replaces the named edge. Attachment order is preserved for
// traversal.
func (t *Tree) Set(name string, child *Tree) *Tree {
	if t.edges == nil {
		t.edges = make(map[string]*Tree)
	}
	if _, ok := t.edges[name]; !ok {
		t.names = append(t.names, name)
	}
	t.edges[name] = child
	return t
}

// Child returns the named child node.
func (t *Tree) Child(name string) (*Tree, bool) {
	if c, ok := t.edges[name]; ok {
		return c, true
	}
	if t.base != nil {
		return t.base.Child(name)
	}
	return nil, false
}

// Edges returns the edge names in attachment order.
func (t *Tree) Edges() []string {
	if t.base != nil && len(t.names) == 0 {
		return t.base.Edges()
	}
	return t.names
}

// setAll attaches a map of children in sorted name order, coercing each via
// mustTree. Sorting keeps traversal order deterministic for map literals.
func (t *Tree) setAll(children map[string]any) *Tree {
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.Set(name, mustTree(children[name]))
	}
	return t
}

// Shaped is implemented by types that expose their own descriptor tree.
// ToTree consults it before the shape registry, so a Shaped type never needs
// explicit association.
type Shaped interface {
	Shape() *Tree
}

// ToTree coerces schema into a descriptor tree.
//
// Accepted inputs: a *Tree (returned as-is), a Marker (wrapped in a leaf
// node), a Shaped value (its own tree), or a reflect.Type previously
// registered with Associate.
func ToTree(schema any) (*Tree, error) {
	switch s := schema.(type) {
	case *Tree:
		return s, nil
	case Shaped:
		return s.Shape(), nil
	case Marker:
		return NewTree(s), nil
	case reflect.Type:
		if tree, ok := lookupShape(s); ok {
			return tree, nil
		}
		return nil, &ShapeError{Type: s}
	}
	return nil, &ShapeError{Type: reflect.TypeOf(schema)}
}

// mustTree is ToTree for construction-time sugar like List.Of. Descriptor
// trees are assembled during setup, so misuse panics instead of threading
// errors through every builder.
func mustTree(schema any) *Tree {
	tree, err := ToTree(schema)
	if err != nil {
		panic(err)
	}
	return tree
}

// ShapeError reports a value that could not be coerced to a descriptor tree.
type ShapeError struct {
	Type reflect.Type
}

func (e *ShapeError) Error() string {
	if e.Type == nil {
		return "no descriptor tree for <nil>"
	}
	return "no descriptor tree for " + e.Type.String()
}

func (e *ShapeError) Unwrap() error {
	return ErrBadShape
}

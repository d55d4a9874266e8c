package typegraph

import (
	"strconv"
)

// Tuple is the marker for fixed-width heterogeneous sequences. Each position
// has its own edge; by default edges are named by index, but naming them
// makes error trees and traversals more readable.
type Tuple struct {
	names []string
}

// NewTuple creates a tuple of width n with positional edge names "0".."n-1".
func NewTuple(n int) Tuple {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return Tuple{names: names}
}

// NewNamedTuple creates a tuple whose positions are addressed by the given
// names, in order.
func NewNamedTuple(names ...string) Tuple {
	return Tuple{names: names}
}

func (Tuple) Kinds() []Kind { return ancestry(KindTuple) }

// FieldNames returns the positional edge names in order.
func (t Tuple) FieldNames() []string { return t.names }

// Of builds a descriptor tree with one child per field name.
func (t Tuple) Of(fields map[string]any) *Tree {
	return NewTree(t).setAll(fields)
}

// TupleOf is positional sugar: a tuple tree over the given descriptors.
func TupleOf(fields ...any) *Tree {
	t := NewTree(NewTuple(len(fields)))
	for i, f := range fields {
		t.Set(strconv.Itoa(i), mustTree(f))
	}
	return t
}

func init() {
	Traverse.When(KindTuple, traverseTuple)
	Clone.When(KindTuple, cloneTuple)
	Validate.When(KindTuple, validateTuple)
}

// tupleItems checks the value's shape against the tuple's width, reporting
// not_iterable or bad_len.
func tupleItems(t Tuple, value any) ([]any, *Invalid) {
	items, ok := toAnySlice(value)
	if !ok {
		return nil, NewInvalid("not_iterable", "")
	}
	if len(items) != len(t.names) {
		return nil, NewInvalid("bad_len", "")
	}
	return items, nil
}

func applyTuple(n *Node, value any, opts *Options) ([]any, error) {
	t := n.Marker().(Tuple)
	mode := opts.ErrorMode()
	items, inv := tupleItems(t, value)
	if inv != nil {
		if mode == Ignore {
			return nil, nil
		}
		return nil, inv
	}
	if mode == Ignore {
		mode = CheckAll
	}
	agg := NewAggregator(mode)
	result := make([]any, len(items))
	for i, name := range t.names {
		i, name := i, name
		err := agg.Sub(name, func() error {
			child, err := n.Child(name)
			if err != nil {
				return err
			}
			out, err := child.Call(items[i], opts)
			if err != nil {
				return err
			}
			result[i] = out
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, agg.Err()
}

func traverseTuple(n *Node, value any, opts *Options) (any, error) {
	_, err := applyTuple(n, value, opts)
	return nil, err
}

func validateTuple(n *Node, value any, opts *Options) (any, error) {
	_, err := applyTuple(n, value, opts)
	return nil, err
}

func cloneTuple(n *Node, value any, opts *Options) (any, error) {
	out, err := applyTuple(n, value, opts)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return value, nil
	}
	return out, nil
}

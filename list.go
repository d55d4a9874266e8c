package typegraph

import (
	"fmt"
	"reflect"
	"strconv"
)

// List is the marker for homogeneous sequences; the single "sub" edge types
// every element. Values are []any (any slice or array is accepted, except
// []byte, which belongs to the Bytes leaf).
type List struct{}

func (List) Kinds() []Kind { return ancestry(KindList) }

// Of builds a descriptor tree with sub as the element descriptor.
func (l List) Of(sub any) *Tree {
	return NewTree(l).Set("sub", mustTree(sub))
}

func init() {
	Traverse.When(KindList, traverseList)
	Clone.When(KindList, cloneList)
	Mutate.When(KindList, mutateList)
}

// applyList recurses the "sub" edge over every element, keying errors by
// index. The bool result reports whether the value was list-shaped at all;
// in Ignore mode a non-list passes through the callers untouched.
func applyList(n *Node, value any, opts *Options) ([]any, bool, error) {
	sub, err := n.Child("sub")
	if err != nil {
		return nil, false, err
	}
	mode := opts.ErrorMode()
	items, ok := toAnySlice(value)
	if mode == Ignore {
		if !ok {
			return nil, false, nil
		}
		result := make([]any, len(items))
		for i, v := range items {
			out, err := sub.Call(v, opts)
			if err != nil {
				return nil, true, err
			}
			result[i] = out
		}
		return result, true, nil
	}
	if !ok {
		return nil, false, NewFatal("type_error", fmt.Sprintf("expected a list, got %T", value))
	}
	agg := NewAggregator(mode)
	result := make([]any, len(items))
	for i, v := range items {
		i, v := i, v
		err := agg.Sub(strconv.Itoa(i), func() error {
			out, err := sub.Call(v, opts)
			if err != nil {
				return err
			}
			result[i] = out
			return nil
		})
		if err != nil {
			return nil, true, err
		}
	}
	return result, true, agg.Err()
}

func traverseList(n *Node, value any, opts *Options) (any, error) {
	_, _, err := applyList(n, value, opts)
	return nil, err
}

func cloneList(n *Node, value any, opts *Options) (any, error) {
	out, ok, err := applyList(n, value, opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return value, nil
	}
	return out, nil
}

func mutateList(n *Node, value any, opts *Options) (any, error) {
	out, ok, err := applyList(n, value, opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return value, nil
	}
	if s, isAny := value.([]any); isAny && len(s) == len(out) {
		copy(s, out)
		return s, nil
	}
	return out, nil
}

// toAnySlice normalizes slice and array values to []any. []byte is excluded;
// it is a leaf, not a sequence.
func toAnySlice(value any) ([]any, bool) {
	if s, ok := value.([]any); ok {
		return s, true
	}
	if _, ok := value.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

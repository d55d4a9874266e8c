package typegraph

import (
	"fmt"
	"sort"
)

// Fixed-field composite support. The KindSchema handlers registered here walk
// a mapping's fields against the node's edges; SchemaMapping, Object, and
// Document all build on them through ancestry delegation.

func init() {
	Traverse.When(KindSchema, traverseSchema)
	Clone.When(KindSchema, cloneSchema)
	Mutate.When(KindSchema, mutateSchema)
}

// applySchema recurses into every edge of n with the matching field of value,
// collecting results by field name. With defaultNones set, absent fields are
// processed as nil; otherwise they report missing_attr. A non-mapping value
// is a fatal type_error outside Ignore mode.
func applySchema(n *Node, value any, opts *Options, defaultNones bool) (map[string]any, error) {
	mode := opts.ErrorMode()
	result := make(map[string]any, len(n.Edges()))
	if mode == Ignore {
		m, _ := value.(map[string]any)
		for _, name := range n.Edges() {
			child, err := n.Child(name)
			if err != nil {
				return nil, err
			}
			out, err := child.Call(m[name], opts)
			if err != nil {
				return nil, err
			}
			result[name] = out
		}
		return result, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, NewFatal("type_error", fmt.Sprintf("expected a mapping, got %T", value))
	}
	agg := NewAggregator(mode)
	for _, name := range n.Edges() {
		name := name
		err := agg.Sub(name, func() error {
			v, present := m[name]
			if !present && !defaultNones {
				return NewInvalid("missing_attr", "")
			}
			child, err := n.Child(name)
			if err != nil {
				return err
			}
			out, err := child.Call(v, opts)
			if err != nil {
				return err
			}
			result[name] = out
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, agg.Err()
}

func traverseSchema(n *Node, value any, opts *Options) (any, error) {
	_, err := applySchema(n, value, opts, false)
	return nil, err
}

func cloneSchema(n *Node, value any, opts *Options) (any, error) {
	out, err := applySchema(n, value, opts, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mutateSchema(n *Node, value any, opts *Options) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewFatal("type_error", fmt.Sprintf("expected a mapping, got %T", value))
	}
	out, err := applySchema(n, value, opts, true)
	if err != nil {
		return nil, err
	}
	for k, v := range out {
		m[k] = v
	}
	return m, nil
}

// extraKeysOf lists the keys of value that have no matching edge, sorted for
// deterministic error detail.
func extraKeysOf(value any, edges []string) []string {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	known := make(map[string]bool, len(edges))
	for _, name := range edges {
		known[name] = true
	}
	var extras []string
	for k := range m {
		if !known[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return extras
}

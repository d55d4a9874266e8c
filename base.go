package typegraph

import (
	"context"
	"time"
)

// The standard operations are dispatchers layered over one shared base. The
// base carries only behavior that must hold for every operation: wrappers
// pass through to their inner marker unless an operation registers something
// more specific for the wrapper's own kind.
var base = func() *Dispatcher {
	d := NewDispatcher().Named("base")
	d.When(KindWrapper, passThroughWrapper)
	return d
}()

// passThroughWrapper forwards any operation on a wrapper to its inner
// marker. Registering a handler for a specific wrapper kind on a specific
// operation shadows this for exactly that combination.
func passThroughWrapper(n *Node, value any, opts *Options) (any, error) {
	return n.Inner(value, opts)
}

// makeDispatcher creates an operation dispatcher inheriting from the shared
// base plus any extra parents.
func makeDispatcher(name string, parents ...*Dispatcher) *Dispatcher {
	d, err := Merge(append(parents, base)...)
	if err != nil {
		// Unreachable for the built-in layering: base is last everywhere.
		panic(err)
	}
	return d.Named(name)
}

// The five standard operations plus Dictify's inverse. Each is a dispatcher:
// extend one with Sub() to layer custom behavior without touching the
// original.
var (
	// Traverse walks a value for side effects and produces no result.
	Traverse = makeDispatcher("traverse")

	// Validate is Traverse with collect-all error aggregation by default.
	Validate = Traverse.Sub().Named("validate")

	// Clone produces a structurally independent copy; leaves pass through.
	Clone = makeDispatcher("clone")

	// Mutate is Clone applied in place where the descriptor permits.
	Mutate = Clone.Sub().Named("mutate")

	// Dictify converts a value to a plain JSON-compatible representation.
	Dictify = Clone.Sub().Named("dictify")

	// Undictify is the inverse of Dictify, with collect-all aggregation by
	// default.
	Undictify = Clone.Sub().Named("undictify")
)

func init() {
	Traverse.When(KindAny, func(n *Node, value any, opts *Options) (any, error) {
		return nil, nil
	})
	Validate.DefaultValue(optErrorMode, CheckAll)

	Clone.When(KindLeaf, func(n *Node, value any, opts *Options) (any, error) {
		return value, nil
	})
	Undictify.DefaultValue(optErrorMode, CheckAll)
}

// Do runs the dispatcher against a value: schema is coerced via ToTree,
// wrapped with this dispatcher into a root graph node, and invoked. This is
// the entry point for every operation, built-in or derived.
func (d *Dispatcher) Do(schema, value any, opts ...Option) (any, error) {
	tree, err := ToTree(schema)
	if err != nil {
		return nil, err
	}
	o := NewOptions(opts...)
	start := time.Now()
	ctx := context.Background()
	rootKind := kindOf(tree.Marker())
	emitDispatchStart(ctx, d.name, rootKind)
	result, err := newNode(tree, d, o.extras).Call(value, o)
	emitDispatchComplete(ctx, d.name, rootKind, time.Since(start), err)
	return result, err
}

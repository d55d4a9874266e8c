// Package typegraph provides a dispatch substrate for shape-directed
// operations: define an operation once per shape of data and reuse it across
// an open-ended family of composite types.
//
// The package centers on three pieces. Dispatchers are keyed handler tables
// with inheritance-like layering; descriptor trees pair markers (shape
// descriptions) with named children; graph nodes couple a tree position with
// a dispatcher so handlers can recurse and delegate as they walk a value.
//
// # Operations
//
// Six operations ship ready to use, each a Dispatcher that can be extended
// with Sub():
//
//   - Traverse: walk a value for side effects
//   - Validate: Traverse with collect-all error aggregation
//   - Clone: produce a structurally independent copy
//   - Mutate: Clone applied in place
//   - Dictify: convert to a plain JSON-compatible representation
//   - Undictify: the inverse of Dictify, with collect-all aggregation
//
// # Basic Usage
//
//	type Point struct {
//	    X     int
//	    Y     int
//	    Label string
//	}
//
//	shape := typegraph.NewObject[Point]().Of(map[string]any{
//	    "x":     typegraph.Int{},
//	    "y":     typegraph.Int{},
//	    "label": typegraph.String{},
//	})
//
//	p, err := typegraph.Undictify.Do(shape, map[string]any{
//	    "x": -12, "y": 1, "label": "foo",
//	})
//
// Or infer the shape from the struct itself:
//
//	shape, err := typegraph.Infer[Point]()
//
// # Custom Behavior
//
// Extending an operation never touches the original. Derive it, register a
// handler for the kinds you care about, and delegate to the layer or the
// ancestry you are overriding:
//
//	pretty := typegraph.Dictify.Sub().Named("pretty")
//	pretty.When(typegraph.KindSchemaMapping, func(n *typegraph.Node, v any, opts *typegraph.Options) (any, error) {
//	    parent, err := n.Parent(pretty)
//	    if err != nil {
//	        return nil, err
//	    }
//	    out, err := parent.Call(v, opts)
//	    // decorate out...
//	    return out, err
//	})
//
// # Documents
//
// Types embedding Document form reference graphs rather than trees. Shared
// instances and cycles serialize and clone without infinite recursion,
// truncating repeat encounters to {"uid": ...}.
// A DocSet owns the (type, uid) to instance mapping during loading, so
// references to the same uid resolve to the same pointer.
//
// # Error Handling
//
// Data-shape failures aggregate into *Invalid trees mirroring the data's
// structure, keyed by field name, controlled per call by WithErrorMode.
// Dispatch and document-protocol misuse surface as ordinary errors wrapping
// the package sentinels (ErrNoHandler, ErrDoubleLoad, ...).
package typegraph

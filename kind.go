package typegraph

// Kind is a dispatch key. Every marker carries an ordered ancestry chain of
// kinds, most specific first, ending in KindAny. Dispatchers resolve handlers
// against that chain rather than against Go's type system, so new marker
// families declare their ancestry explicitly.
type Kind string

// Universal and structural kinds used by the built-in catalog.
const (
	// KindAny is the universal base; it terminates every ancestry chain.
	KindAny Kind = "any"

	// KindLeaf is the base of all markers without children.
	KindLeaf Kind = "leaf"

	// KindWrapper is the base of all markers that wrap exactly one inner
	// marker. The base dispatcher passes operations through wrappers to
	// their inner marker unless a more specific handler is registered.
	KindWrapper Kind = "wrapper"

	// KindSchema is the base of all fixed-field composite markers.
	KindSchema Kind = "schema"
)

// Kinds of the built-in leaf catalog.
const (
	KindPassthrough Kind = "passthrough"
	KindTyped       Kind = "typed"
	KindString      Kind = "string"
	KindInt         Kind = "int"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindBytes       Kind = "bytes"
	KindTemporal    Kind = "temporal"
	KindDateTime    Kind = "datetime"
	KindDate        Kind = "date"
)

// Kinds of the built-in composite catalog.
const (
	KindList          Kind = "list"
	KindTuple         Kind = "tuple"
	KindSchemaMapping Kind = "schema_mapping"
	KindStrMapping    Kind = "str_mapping"
	KindPolymorph     Kind = "polymorph"
	KindObject        Kind = "object"
	KindDocument      Kind = "document"
)

// Kinds of the built-in wrappers and validators.
const (
	KindOptional  Kind = "optional"
	KindValidated Kind = "validated"
	KindValidator Kind = "validator"
)

// ancestry builds a chain terminated by KindAny. Chains are tiny and built
// once per marker value, so no caching is needed.
func ancestry(kinds ...Kind) []Kind {
	out := make([]Kind, 0, len(kinds)+1)
	out = append(out, kinds...)
	return append(out, KindAny)
}

// kindsAfter returns the suffix of keys strictly after the first occurrence
// of from. If from is absent the result is empty: a super target anchored at
// an unknown kind matches nothing rather than silently matching everything.
func kindsAfter(keys []Kind, from Kind) []Kind {
	for i, k := range keys {
		if k == from {
			return keys[i+1:]
		}
	}
	return nil
}

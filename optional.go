package typegraph

import "reflect"

// Optional is a wrapper marker that lets nil pass where the inner marker
// would reject it: every operation short-circuits nil to nil and otherwise
// behaves as the inner marker.
type Optional struct {
	inner Marker
}

// OptionalOf wraps a descriptor tree in an Optional. The returned tree shares
// the original's children, so wrapping a node of a still-under-construction
// recursive schema is fine.
func OptionalOf(schema any) *Tree {
	t := mustTree(schema)
	return Overlay(t, Optional{inner: t.Marker()})
}

func (o Optional) Kinds() []Kind { return ancestry(KindOptional, KindWrapper) }

func (o Optional) Inner() Marker { return o.inner }

func init() {
	Traverse.When(KindOptional, skipNil)
	Clone.When(KindOptional, skipNil)
}

// skipNil passes nil through untouched and forwards everything else to the
// wrapped marker. Registered on both operation roots, so every derived
// operation inherits it. Non-struct pointers are dereferenced on the way in,
// so *string under Optional-of-String reads as the string itself; struct
// pointers stay pointers because object markers work on them directly.
func skipNil(n *Node, value any, opts *Options) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Elem().Kind() != reflect.Struct {
			value = rv.Elem().Interface()
		}
	}
	return n.Inner(value, opts)
}

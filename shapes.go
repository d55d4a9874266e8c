package typegraph

import (
	"reflect"
	"sync"
)

// Package-level shape registry mapping Go types to their descriptor trees.
// Once a type is associated, it can be passed to any operation directly (or
// as a reflect.Type) instead of threading its tree around.
//
// Association should happen during a single-threaded setup phase, typically
// in init functions; lookups afterward are safe for concurrent use.
var (
	shapeMu sync.RWMutex
	shapes  = make(map[reflect.Type]*Tree)
)

// Associate registers tree as the descriptor for typ, replacing any previous
// association. Pointer types are normalized to their element type.
func Associate(typ reflect.Type, tree *Tree) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	shapeMu.Lock()
	defer shapeMu.Unlock()
	shapes[typ] = tree
}

// AssociateFor is Associate for a statically known type.
func AssociateFor[T any](tree *Tree) {
	Associate(reflect.TypeFor[T](), tree)
}

// ShapeFor returns the descriptor tree associated with T.
func ShapeFor[T any]() (*Tree, error) {
	return ToTree(reflect.TypeFor[T]())
}

// lookupShape finds the registered tree for typ, trying the element type for
// pointers.
func lookupShape(typ reflect.Type) (*Tree, bool) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	shapeMu.RLock()
	defer shapeMu.RUnlock()
	tree, ok := shapes[typ]
	return tree, ok
}

// Reset clears all shape associations. Primarily useful for tests that need
// a clean registry.
func Reset() {
	shapeMu.Lock()
	defer shapeMu.Unlock()
	shapes = make(map[reflect.Type]*Tree)
}

package typegraph

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
//
// These cover dispatch and document-protocol misuse. Data-shape problems are
// reported as *Invalid trees instead, which also implement error.
var (
	// ErrNoHandler indicates dispatch resolution exhausted the key chain
	// without finding a handler or a default.
	ErrNoHandler = errors.New("no handler")

	// ErrInconsistentOrder indicates a dispatcher merge could not produce a
	// consistent linearization of its parents.
	ErrInconsistentOrder = errors.New("inconsistent merge order")

	// ErrNoSuchChild indicates a child lookup on a descriptor node that has
	// no edge with the requested name.
	ErrNoSuchChild = errors.New("no such child")

	// ErrNotAnchored indicates a layer delegate was requested for a
	// dispatcher that is not in the current resolution order.
	ErrNotAnchored = errors.New("dispatcher not in merge order")

	// ErrBadShape indicates a value could not be coerced to a descriptor
	// tree (unknown type, no associated shape).
	ErrBadShape = errors.New("no descriptor tree")

	// ErrDuplicateDoc indicates a document was registered under a (type, uid)
	// pair that is already present in the DocSet.
	ErrDuplicateDoc = errors.New("duplicate document")

	// ErrDoubleLoad indicates an attempt to load an already-loaded document.
	ErrDoubleLoad = errors.New("double load")

	// ErrUnloadedAccess indicates a field read on an unloaded document.
	ErrUnloadedAccess = errors.New("unloaded document access")
)

// NoHandlerError reports the key chain that dispatch resolution failed on.
type NoHandlerError struct {
	Keys []Kind // the full, already-truncated key list that was scanned
}

func (e *NoHandlerError) Error() string {
	keys := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = string(k)
	}
	return fmt.Sprintf("no handler for key chain [%s]", strings.Join(keys, ", "))
}

func (e *NoHandlerError) Unwrap() error {
	return ErrNoHandler
}

// ChildError reports a failed child lookup on a descriptor node.
type ChildError struct {
	Name string
	Kind Kind // kind of the node the lookup ran against
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("no such child %q under %s", e.Name, e.Kind)
}

func (e *ChildError) Unwrap() error {
	return ErrNoSuchChild
}

// DocError wraps a document-protocol failure with the offending (type, uid).
type DocError struct {
	Err  error // underlying sentinel (ErrDuplicateDoc, ErrDoubleLoad, ErrUnloadedAccess)
	Type reflect.Type
	UID  string
}

func (e *DocError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s: %s %q", e.Err.Error(), e.Type, e.UID)
	}
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.UID)
}

func (e *DocError) Unwrap() error {
	return e.Err
}

func newDocError(sentinel error, typ reflect.Type, uid string) error {
	return &DocError{Err: sentinel, Type: typ, UID: uid}
}

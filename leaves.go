package typegraph

import (
	"encoding/base64"
	"fmt"
	"reflect"
)

// TypeChecker is implemented by leaf markers that constrain the runtime type
// of their values. Validate rejects values the marker does not accept;
// Undictify does the same unless the error mode is Ignore, so deserialized
// structures are well-typed without a separate validation pass.
type TypeChecker interface {
	Marker
	Accepts(value any) bool
}

// String is the leaf marker for string values.
type String struct{}

func (String) Kinds() []Kind { return ancestry(KindString, KindTyped, KindLeaf) }

func (String) Accepts(value any) bool {
	_, ok := value.(string)
	return ok
}

// Boolean is the leaf marker for bool values.
type Boolean struct{}

func (Boolean) Kinds() []Kind { return ancestry(KindBoolean, KindTyped, KindLeaf) }

func (Boolean) Accepts(value any) bool {
	_, ok := value.(bool)
	return ok
}

// Int is the leaf marker for integral values of any width or signedness.
type Int struct{}

func (Int) Kinds() []Kind { return ancestry(KindInt, KindTyped, KindLeaf) }

func (Int) Accepts(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Number is the leaf marker for real numbers: any integral or floating value.
type Number struct{}

func (Number) Kinds() []Kind { return ancestry(KindNumber, KindTyped, KindLeaf) }

func (Number) Accepts(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Bytes is the leaf marker for []byte values. Dictify emits standard base64;
// Undictify decodes it.
type Bytes struct{}

func (Bytes) Kinds() []Kind { return ancestry(KindBytes, KindTyped, KindLeaf) }

func (Bytes) Accepts(value any) bool {
	_, ok := value.([]byte)
	return ok
}

func init() {
	Validate.When(KindTyped, validateTyped)
	Undictify.When(KindTyped, undictifyTyped)
	Dictify.When(KindBytes, dictifyBytes)
	Undictify.When(KindBytes, undictifyBytes)
}

func validateTyped(n *Node, value any, opts *Options) (any, error) {
	tc, ok := n.Marker().(TypeChecker)
	if !ok || tc.Accepts(value) {
		return nil, nil
	}
	return nil, NewInvalid("type_error", fmt.Sprintf("unexpected %T", value))
}

func undictifyTyped(n *Node, value any, opts *Options) (any, error) {
	if opts.ErrorMode() == Ignore {
		return value, nil
	}
	tc, ok := n.Marker().(TypeChecker)
	if !ok || tc.Accepts(value) {
		return value, nil
	}
	return nil, NewInvalid("type_error", fmt.Sprintf("unexpected %T", value))
}

func dictifyBytes(n *Node, value any, opts *Options) (any, error) {
	b, ok := value.([]byte)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected bytes, got %T", value))
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func undictifyBytes(n *Node, value any, opts *Options) (any, error) {
	if b, ok := value.([]byte); ok {
		return b, nil
	}
	s, ok := value.(string)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected base64 string, got %T", value))
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, NewInvalid("bad_format", err.Error())
	}
	return b, nil
}

package typegraph

// Validator is a pluggable value check. Validators are markers themselves, so
// they dispatch like anything else, but in practice they are attached to a
// Validated wrapper rather than placed in a tree directly.
type Validator interface {
	Marker
	Validate(value any, opts *Options) error
}

// Validated is a wrapper marker carrying extra validators for its inner
// marker. The inner marker's own validation runs first; validators only run
// once it passes, so a type mismatch reports type_error rather than a
// spurious domain error.
type Validated struct {
	inner      Marker
	validators []Validator
}

// ValidatedOf wraps a descriptor tree with extra validators. Like OptionalOf,
// the result shares the original tree's children.
func ValidatedOf(schema any, validators ...Validator) *Tree {
	t := mustTree(schema)
	return Overlay(t, Validated{inner: t.Marker(), validators: validators})
}

func (v Validated) Kinds() []Kind { return ancestry(KindValidated, KindWrapper) }

func (v Validated) Inner() Marker { return v.inner }

func init() {
	Validate.When(KindValidated, validateValidated)
	Validate.When(KindValidator, validateValidator)
}

func validateValidated(n *Node, value any, opts *Options) (any, error) {
	v := n.Marker().(Validated)
	if _, err := n.ForMarker(v.inner).Call(value, opts); err != nil {
		return nil, err
	}
	mode := opts.ErrorMode()
	if mode == Ignore {
		mode = CheckAll
	}
	agg := NewAggregator(mode)
	for _, vd := range v.validators {
		if _, err := n.ForMarker(vd).Call(value, opts); err != nil {
			inv, ok := AsInvalid(err)
			if !ok {
				return nil, err
			}
			if err := agg.Own(inv); err != nil {
				return nil, err
			}
		}
	}
	return nil, agg.Err()
}

func validateValidator(n *Node, value any, opts *Options) (any, error) {
	return nil, n.Marker().(Validator).Validate(value, opts)
}

package typegraph

import (
	"fmt"
	"reflect"
)

// Polymorph is the marker for tagged unions: a value may take any of several
// named shapes, selected at runtime by its dynamic type. Each case has an
// edge carrying that shape's descriptor. The wire form is a two-element list
// [name, value], so the tag survives serialization.
type Polymorph struct {
	names []string
	types map[string][]reflect.Type
}

// NewPolymorph creates an empty union; add cases with Case, then attach their
// descriptors with Of.
func NewPolymorph() *Polymorph {
	return &Polymorph{types: make(map[string][]reflect.Type)}
}

// Case registers the runtime types selecting the named case. Cases are
// matched in registration order; interface types match anything implementing
// them.
func (p *Polymorph) Case(name string, types ...reflect.Type) *Polymorph {
	if _, ok := p.types[name]; !ok {
		p.names = append(p.names, name)
	}
	p.types[name] = append(p.types[name], types...)
	return p
}

// Of builds a descriptor tree with one edge per case.
func (p *Polymorph) Of(cases map[string]any) *Tree {
	return NewTree(p).setAll(cases)
}

func (p *Polymorph) Kinds() []Kind { return ancestry(KindPolymorph) }

// nameFor selects the case matching the value's dynamic type.
func (p *Polymorph) nameFor(value any) (string, bool) {
	rt := reflect.TypeOf(value)
	if rt == nil {
		return "", false
	}
	for _, name := range p.names {
		for _, t := range p.types[name] {
			if rt == t {
				return name, true
			}
			if t.Kind() == reflect.Interface && rt.Implements(t) {
				return name, true
			}
			if rt.AssignableTo(t) {
				return name, true
			}
		}
	}
	return "", false
}

func init() {
	Traverse.When(KindPolymorph, traversePolymorph)
	Validate.When(KindPolymorph, validatePolymorph)
	Clone.When(KindPolymorph, clonePolymorph)
	Dictify.When(KindPolymorph, dictifyPolymorph)
	Undictify.When(KindPolymorph, undictifyPolymorph)
}

// caseCall recurses into the selected case's descriptor with the same value.
func caseCall(n *Node, value any, opts *Options) (any, bool, error) {
	p := n.Marker().(*Polymorph)
	name, ok := p.nameFor(value)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, false, nil
		}
		return nil, false, NewInvalid("type_error", fmt.Sprintf("unrecognized type %T", value))
	}
	child, err := n.Child(name)
	if err != nil {
		return nil, false, err
	}
	out, err := child.Call(value, opts)
	return out, true, err
}

func traversePolymorph(n *Node, value any, opts *Options) (any, error) {
	_, _, err := caseCall(n, value, opts)
	return nil, err
}

func validatePolymorph(n *Node, value any, opts *Options) (any, error) {
	p := n.Marker().(*Polymorph)
	name, ok := p.nameFor(value)
	if !ok {
		return nil, NewInvalid("type_error", fmt.Sprintf("unrecognized type %T", value))
	}
	child, err := n.Child(name)
	if err != nil {
		return nil, err
	}
	_, err = child.Call(value, opts)
	return nil, err
}

func clonePolymorph(n *Node, value any, opts *Options) (any, error) {
	out, _, err := caseCall(n, value, opts)
	return out, err
}

func dictifyPolymorph(n *Node, value any, opts *Options) (any, error) {
	p := n.Marker().(*Polymorph)
	name, ok := p.nameFor(value)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("unrecognized type %T", value))
	}
	child, err := n.Child(name)
	if err != nil {
		return nil, err
	}
	out, err := child.Call(value, opts)
	if err != nil {
		return nil, err
	}
	return []any{name, out}, nil
}

func undictifyPolymorph(n *Node, value any, opts *Options) (any, error) {
	items, ok := toAnySlice(value)
	if !ok {
		return nil, NewInvalid("type_error", fmt.Sprintf("expected [name, value], got %T", value))
	}
	if len(items) != 2 {
		return nil, NewInvalid("bad_list", fmt.Sprintf("expected 2 elements, got %d", len(items)))
	}
	name, ok := items[0].(string)
	if !ok {
		return nil, NewInvalid("type_error", fmt.Sprintf("case name must be a string, got %T", items[0]))
	}
	child, err := n.Child(name)
	if err != nil {
		return nil, NewInvalid("type_error", fmt.Sprintf("unknown case %q", name))
	}
	return child.Call(items[1], opts)
}

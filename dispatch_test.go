package typegraph_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/typegraph"
)

// shade is a marker family with a configurable ancestry chain, used to
// exercise dispatch without dragging in the built-in catalog.
type shade struct {
	kinds []typegraph.Kind
	vals  map[string]int
}

func (s shade) Kinds() []typegraph.Kind { return s.kinds }

func chain(kinds ...typegraph.Kind) []typegraph.Kind {
	return append(kinds, typegraph.KindAny)
}

func TestRegistrationOverridesParent(t *testing.T) {
	parent := typegraph.NewDispatcher()
	parent.When("paint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return "parent", nil
	})
	child := parent.Sub()
	child.When("paint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return "child", nil
	})

	got, err := child.Do(shade{kinds: chain("paint")}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != "child" {
		t.Errorf("child dispatch = %v, want child", got)
	}

	got, err = parent.Do(shade{kinds: chain("paint")}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != "parent" {
		t.Errorf("parent dispatch = %v, want parent", got)
	}
}

func TestKeyMajorResolution(t *testing.T) {
	parent := typegraph.NewDispatcher()
	parent.When("tint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return "parent-tint", nil
	})
	child := parent.Sub()
	child.When("paint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return "child-paint", nil
	})

	// "tint" is more specific than "paint"; every layer is consulted for it
	// before any layer is consulted for "paint".
	got, err := child.Do(shade{kinds: chain("tint", "paint")}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != "parent-tint" {
		t.Errorf("resolution = %v, want parent-tint", got)
	}
}

func TestAncestryDelegation(t *testing.T) {
	d := typegraph.Undictify.Sub()
	d.When("paint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return map[string]any{"x": n.Marker().(shade).vals["x"]}, nil
	})
	d.When("tint", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		out, err := n.Super("tint").Call(v, o)
		if err != nil {
			return nil, err
		}
		m := out.(map[string]any)
		m["y"] = n.Marker().(shade).vals["y"]
		return m, nil
	})
	d.When("glaze", func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		out, err := n.Super("glaze").Call(v, o)
		if err != nil {
			return nil, err
		}
		m := out.(map[string]any)
		m["z"] = n.Marker().(shade).vals["z"]
		return m, nil
	})

	m := shade{
		kinds: chain("glaze", "tint", "paint"),
		vals:  map[string]int{"x": 12, "y": 14, "z": 16},
	}
	got, err := d.Do(m, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	want := map[string]any{"x": 12, "y": 14, "z": 16}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("super chain = %v, want %v", got, want)
	}
}

func TestLayerDelegation(t *testing.T) {
	d := typegraph.Undictify.Sub()
	d.When(typegraph.KindSchemaMapping, func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		parent, err := n.Parent(d)
		if err != nil {
			return nil, err
		}
		out, err := parent.Call(v, o)
		if err != nil {
			return nil, err
		}
		m := out.(map[string]any)
		m["_loaded"] = true
		return m, nil
	})

	shape := typegraph.SchemaMapping{}.Of(map[string]any{"x": typegraph.Int{}})
	got, err := d.Do(shape, map[string]any{"x": 12})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	want := map[string]any{"x": 12, "_loaded": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("layered undictify = %v, want %v", got, want)
	}

	// The original operation is untouched.
	got, err = typegraph.Undictify.Do(shape, map[string]any{"x": 12})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"x": 12}) {
		t.Errorf("base undictify = %v, want map without _loaded", got)
	}
}

func TestParentNotAnchored(t *testing.T) {
	other := typegraph.NewDispatcher()
	d := typegraph.NewDispatcher()
	d.When(typegraph.KindAny, func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		_, err := n.Parent(other)
		return nil, err
	})

	_, err := d.Do(typegraph.Passthrough{}, nil)
	if !errors.Is(err, typegraph.ErrNotAnchored) {
		t.Errorf("Parent(unrelated) error = %v, want ErrNotAnchored", err)
	}
}

func TestNoHandler(t *testing.T) {
	d := typegraph.NewDispatcher()

	_, err := d.Do(shade{kinds: chain("paint")}, nil)
	if !errors.Is(err, typegraph.ErrNoHandler) {
		t.Fatalf("Do() error = %v, want ErrNoHandler", err)
	}

	var nh *typegraph.NoHandlerError
	if !errors.As(err, &nh) {
		t.Fatal("error should be a *NoHandlerError")
	}
	if !reflect.DeepEqual(nh.Keys, chain("paint")) {
		t.Errorf("NoHandlerError.Keys = %v, want the scanned chain", nh.Keys)
	}
}

func TestDefaultHandler(t *testing.T) {
	d := typegraph.NewDispatcher()
	d.Default(func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		return "fallback", nil
	})

	got, err := d.Do(shade{kinds: chain("paint")}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != "fallback" {
		t.Errorf("default dispatch = %v, want fallback", got)
	}
}

func TestOptionDefaults(t *testing.T) {
	d := typegraph.NewDispatcher()
	d.DefaultValue("tenant", "acme")
	d.DefaultFactory("memo", func() any { return new(int) })
	d.When(typegraph.KindAny, func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		tenant, _ := o.Get("tenant")
		memo, _ := o.Get("memo")
		return []any{tenant, memo}, nil
	})

	first, err := d.Do(typegraph.Passthrough{}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	second, err := d.Do(typegraph.Passthrough{}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}

	if first.([]any)[0] != "acme" {
		t.Errorf("tenant = %v, want acme", first.([]any)[0])
	}
	if first.([]any)[1] == second.([]any)[1] {
		t.Error("factory default should produce a fresh value per call")
	}

	// Caller-supplied values win over defaults.
	got, err := d.Do(typegraph.Passthrough{}, nil, typegraph.WithValue("tenant", "initech"))
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got.([]any)[0] != "initech" {
		t.Errorf("tenant = %v, want initech", got.([]any)[0])
	}

	// Derived dispatchers inherit defaults.
	got, err = d.Sub().Do(typegraph.Passthrough{}, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got.([]any)[0] != "acme" {
		t.Errorf("inherited tenant = %v, want acme", got.([]any)[0])
	}
}

func TestUnwrap(t *testing.T) {
	tree := typegraph.OptionalOf(typegraph.ValidatedOf(typegraph.Int{}, typegraph.InRange{Low: 0}))
	m := tree.Marker()

	if _, ok := typegraph.Unwrap(m).(typegraph.Int); !ok {
		t.Errorf("Unwrap() = %T, want Int", typegraph.Unwrap(m))
	}
	if _, ok := typegraph.Unwrap(m, typegraph.KindValidated).(typegraph.Validated); !ok {
		t.Error("Unwrap(KindValidated) should find the Validated wrapper")
	}
	if got := typegraph.Unwrap(m, "bogus"); got != nil {
		t.Errorf("Unwrap(bogus) = %v, want nil", got)
	}
}

func TestToTreeRejectsUnknown(t *testing.T) {
	_, err := typegraph.Traverse.Do(42, nil)
	if !errors.Is(err, typegraph.ErrBadShape) {
		t.Errorf("Do(42) error = %v, want ErrBadShape", err)
	}
}

func TestChildLookupFailure(t *testing.T) {
	d := typegraph.NewDispatcher()
	d.When(typegraph.KindAny, func(n *typegraph.Node, v any, o *typegraph.Options) (any, error) {
		_, err := n.Child("missing")
		return nil, err
	})

	_, err := d.Do(typegraph.NewTree(typegraph.Passthrough{}), nil)
	if !errors.Is(err, typegraph.ErrNoSuchChild) {
		t.Errorf("Child(missing) error = %v, want ErrNoSuchChild", err)
	}
}

package typegraph

import (
	"fmt"
	"reflect"
	"sort"
)

// ExtraFieldPolicy controls what SchemaMapping does with keys that have no
// matching edge.
type ExtraFieldPolicy int

const (
	// DiscardExtra drops unknown keys on clone-family operations; Validate
	// reports unexpected_fields.
	DiscardExtra ExtraFieldPolicy = iota

	// SaveExtra carries unknown keys through unprocessed; Validate ignores
	// them.
	SaveExtra

	// ErrorExtra reports unexpected_fields on Validate and on any
	// clone-family operation running with error checking (Undictify by
	// default); Dictify and Clone run in Ignore mode and silently discard.
	ErrorExtra
)

// SchemaMapping is the marker for map[string]any values with a fixed set of
// typed fields, one edge per field.
type SchemaMapping struct {
	Policy ExtraFieldPolicy
}

func (SchemaMapping) Kinds() []Kind { return ancestry(KindSchemaMapping, KindSchema) }

// Of builds a descriptor tree with one edge per field.
func (m SchemaMapping) Of(fields map[string]any) *Tree {
	return NewTree(m).setAll(fields)
}

// StrMapping is the marker for homogeneous maps with string keys; the single
// "sub" edge types every value.
type StrMapping struct{}

func (StrMapping) Kinds() []Kind { return ancestry(KindStrMapping) }

// Of builds a descriptor tree with sub as the value descriptor.
func (m StrMapping) Of(sub any) *Tree {
	return NewTree(m).Set("sub", mustTree(sub))
}

func init() {
	Validate.When(KindSchemaMapping, validateMapping)
	Clone.When(KindSchemaMapping, cloneMapping)
	Mutate.When(KindSchemaMapping, mutateMapping)

	Traverse.When(KindStrMapping, traverseStrMap)
	Clone.When(KindStrMapping, cloneStrMap)
	Mutate.When(KindStrMapping, mutateStrMap)
}

func validateMapping(n *Node, value any, opts *Options) (any, error) {
	if _, err := n.Super(KindSchemaMapping).Call(value, opts); err != nil {
		return nil, err
	}
	marker := n.Marker().(SchemaMapping)
	if opts.ErrorMode() == Ignore || marker.Policy == SaveExtra {
		return nil, nil
	}
	if extras := extraKeysOf(value, n.Edges()); len(extras) > 0 {
		return nil, NewInvalid("unexpected_fields", "").WithDetail("keys", extras)
	}
	return nil, nil
}

func cloneMapping(n *Node, value any, opts *Options) (any, error) {
	out, err := n.Super(KindSchemaMapping).Call(value, opts)
	if err != nil {
		return nil, err
	}
	result, ok := out.(map[string]any)
	if !ok {
		return out, nil
	}
	marker := n.Marker().(SchemaMapping)
	extras := extraKeysOf(value, n.Edges())
	if len(extras) > 0 {
		switch marker.Policy {
		case ErrorExtra:
			if opts.ErrorMode() != Ignore {
				return nil, NewInvalid("unexpected_fields", "").WithDetail("keys", extras)
			}
		case SaveExtra:
			m := value.(map[string]any)
			for _, k := range extras {
				result[k] = m[k]
			}
		}
	}
	return result, nil
}

func mutateMapping(n *Node, value any, opts *Options) (any, error) {
	out, err := cloneMapping(n, value, opts)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return out, nil
	}
	if newVals, ok := out.(map[string]any); ok {
		for k, v := range newVals {
			m[k] = v
		}
	}
	return m, nil
}

// applyStrMap recurses the "sub" edge over every entry of a string-keyed map,
// collecting bad_keys for non-string keys and a fatal type_error for
// non-maps. Keys are visited in sorted order so errors are deterministic.
func applyStrMap(n *Node, value any, opts *Options) (map[string]any, error) {
	sub, err := n.Child("sub")
	if err != nil {
		return nil, err
	}
	mode := opts.ErrorMode()
	rv := reflect.ValueOf(value)
	if mode == Ignore {
		if rv.Kind() != reflect.Map {
			return nil, nil
		}
		result := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, ok := iter.Key().Interface().(string)
			if !ok {
				continue
			}
			out, err := sub.Call(iter.Value().Interface(), opts)
			if err != nil {
				return nil, err
			}
			result[k] = out
		}
		return result, nil
	}
	if rv.Kind() != reflect.Map {
		return nil, NewFatal("type_error", fmt.Sprintf("expected a mapping, got %T", value))
	}
	var keys []string
	var badKeys []any
	for _, k := range rv.MapKeys() {
		kv := k
		if kv.Kind() == reflect.Interface {
			kv = kv.Elem()
		}
		if kv.Kind() != reflect.String {
			badKeys = append(badKeys, kv.Interface())
			continue
		}
		keys = append(keys, kv.String())
	}
	sort.Strings(keys)
	agg := NewAggregator(mode)
	result := make(map[string]any, len(keys))
	for _, k := range keys {
		k := k
		err := agg.Sub(k, func() error {
			out, err := sub.Call(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), opts)
			if err != nil {
				return err
			}
			result[k] = out
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(badKeys) > 0 {
		inv := NewInvalid("value_error/bad_keys", "bad keys").WithDetail("keys", badKeys)
		if err := agg.Own(inv); err != nil {
			return nil, err
		}
	}
	return result, agg.Err()
}

func traverseStrMap(n *Node, value any, opts *Options) (any, error) {
	_, err := applyStrMap(n, value, opts)
	return nil, err
}

func cloneStrMap(n *Node, value any, opts *Options) (any, error) {
	out, err := applyStrMap(n, value, opts)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return value, nil
	}
	return out, nil
}

func mutateStrMap(n *Node, value any, opts *Options) (any, error) {
	out, err := applyStrMap(n, value, opts)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	for k, v := range out {
		m[k] = v
	}
	return m, nil
}

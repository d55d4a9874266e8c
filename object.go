package typegraph

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Object is the marker for struct values assembled field by field. Its edges
// name the salient fields; clone-family operations extract them through
// reflection and rebuild instances from the processed map, so structs
// round-trip through Dictify/Undictify without implementing anything.
//
// Edge names are matched to exported struct fields case-insensitively
// ("uid" finds UID), including fields promoted from embedded structs.
type Object struct {
	typ    reflect.Type
	kinds  []Kind
	ctor   func(attrs map[string]any) (any, error)
	fields map[string][]int
}

// NewObject creates an Object marker for struct type T. Extra kinds, if any,
// are prepended to the ancestry chain so handlers can target specific object
// families.
func NewObject[T any](extra ...Kind) *Object {
	return NewObjectOf(reflect.TypeFor[T](), extra...)
}

// NewObjectOf is NewObject for a runtime-known struct type. Pointer types are
// normalized to their element type.
func NewObjectOf(rt reflect.Type, extra ...Kind) *Object {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("typegraph: object marker requires a struct type, got %s", rt))
	}
	kinds := make([]Kind, 0, len(extra)+2)
	kinds = append(kinds, extra...)
	kinds = append(kinds, KindObject, KindSchema)
	o := &Object{typ: rt, kinds: kinds, fields: make(map[string][]int)}
	for _, f := range reflect.VisibleFields(rt) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		o.fields[strings.ToLower(f.Name)] = f.Index
	}
	return o
}

// WithConstructor replaces the default reflective construction with fn, which
// receives the processed field map and returns the assembled instance.
func (o *Object) WithConstructor(fn func(attrs map[string]any) (any, error)) *Object {
	o.ctor = fn
	return o
}

func (o *Object) Kinds() []Kind { return ancestry(o.kinds...) }

// Type returns the struct type this marker assembles.
func (o *Object) Type() reflect.Type { return o.typ }

// Of builds a descriptor tree with one edge per field. Document markers get
// their "uid" edge attached automatically.
func (o *Object) Of(fields map[string]any) *Tree {
	t := NewTree(o)
	if o.isDoc() {
		if _, ok := fields["uid"]; !ok {
			t.Set("uid", NewTree(String{}))
		}
	}
	return t.setAll(fields)
}

func (o *Object) isDoc() bool {
	for _, k := range o.kinds {
		if k == KindDocument {
			return true
		}
	}
	return false
}

// alias maps an extra edge name onto a field index path. Inference uses it
// when a struct tag renames an edge away from the field's own name.
func (o *Object) alias(name string, idx []int) {
	o.fields[strings.ToLower(name)] = idx
}

// sameType reports whether value is an instance (or pointer to an instance)
// of the marker's struct type.
func (o *Object) sameType(value any) bool {
	rt := reflect.TypeOf(value)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt == o.typ
}

// fieldValue reads the named field from value through reflection.
func (o *Object) fieldValue(value any, name string) (any, bool) {
	idx, ok := o.fields[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.Type() != o.typ {
		return nil, false
	}
	return rv.FieldByIndex(idx).Interface(), true
}

// setFields writes the attrs map onto target, which must be a non-nil
// pointer to the marker's struct type. Per-field type mismatches come back
// as a keyed Invalid tree.
func (o *Object) setFields(target any, attrs map[string]any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return NewInvalid("type_error", fmt.Sprintf("expected *%s, got %T", o.typ, target))
	}
	elem := rv.Elem()
	if elem.Type() != o.typ {
		return NewInvalid("type_error", fmt.Sprintf("expected *%s, got %T", o.typ, target))
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	inv := &Invalid{}
	for _, name := range names {
		idx, ok := o.fields[strings.ToLower(name)]
		if !ok {
			continue
		}
		f := elem.FieldByIndex(idx)
		val := attrs[name]
		if val == nil {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		v, ok := coerceValue(reflect.ValueOf(val), f.Type())
		if !ok {
			inv.merge(name, NewInvalid("type_error",
				fmt.Sprintf("cannot assign %T to field %s", val, name)))
			continue
		}
		f.Set(v)
	}
	return inv.OrNil()
}

// coerceValue adapts a processed value to a field type. Numeric widths
// convert, pointers box and unbox as needed, and the []any and map[string]any
// forms produced by the list and mapping handlers convert element-wise.
func coerceValue(v reflect.Value, ft reflect.Type) (reflect.Value, bool) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Zero(ft), true
	}
	if v.Type().AssignableTo(ft) {
		return v, true
	}
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Elem().AssignableTo(ft) {
		return v.Elem(), true
	}
	switch {
	case isNumericKind(v.Kind()) && isNumericKind(ft.Kind()):
		return v.Convert(ft), true
	case ft.Kind() == reflect.Pointer:
		inner, ok := coerceValue(v, ft.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		p := reflect.New(ft.Elem())
		p.Elem().Set(inner)
		return p, true
	case ft.Kind() == reflect.Slice && v.Kind() == reflect.Slice:
		out := reflect.MakeSlice(ft, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			e, ok := coerceValue(v.Index(i), ft.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(e)
		}
		return out, true
	case ft.Kind() == reflect.Map && v.Kind() == reflect.Map && v.Type().Key().AssignableTo(ft.Key()):
		out := reflect.MakeMap(ft)
		iter := v.MapRange()
		for iter.Next() {
			e, ok := coerceValue(iter.Value(), ft.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.SetMapIndex(iter.Key(), e)
		}
		return out, true
	}
	return reflect.Value{}, false
}

// construct assembles a new instance from the processed field map, returning
// a pointer to the struct.
func (o *Object) construct(attrs map[string]any) (any, error) {
	if o.ctor != nil {
		return o.ctor(attrs)
	}
	ptr := reflect.New(o.typ)
	if err := o.setFields(ptr.Interface(), attrs); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func init() {
	Traverse.When(KindObject, traverseObject)
	Validate.When(KindObject, validateObject)
	Clone.When(KindObject, cloneObject)
	Mutate.When(KindObject, mutateObject)
	Dictify.When(KindObject, dictifyObject)
	Undictify.When(KindObject, undictifyObject)
}

// asDict projects the node's visible edges out of a struct value. Fields
// absent from the struct are omitted unless defaultNones asks for nils;
// downstream schema recursion reports them. Unloaded documents refuse access
// to anything but their uid.
func asDict(n *Node, o *Object, value any, defaultNones bool) (map[string]any, error) {
	result := make(map[string]any, len(n.Edges()))
	doc, isDoc := value.(Doc)
	for _, name := range n.Edges() {
		if isDoc && !doc.Loaded() && name != "uid" {
			return nil, newDocError(ErrUnloadedAccess, o.typ, doc.DocUID())
		}
		if v, ok := o.fieldValue(value, name); ok {
			result[name] = v
		} else if defaultNones {
			result[name] = nil
		}
	}
	return result, nil
}

// extractObject is the object analogue of applySchema: project the fields,
// then recurse each edge over the projection.
func extractObject(n *Node, value any, opts *Options, defaultNones bool) (map[string]any, error) {
	o, ok := n.Marker().(*Object)
	if !ok {
		return nil, &NoHandlerError{Keys: n.Dispatcher().keys(n.Marker())}
	}
	d, err := asDict(n, o, value, defaultNones)
	if err != nil {
		return nil, err
	}
	return applySchema(n, d, opts, defaultNones)
}

func traverseObject(n *Node, value any, opts *Options) (any, error) {
	_, err := extractObject(n, value, opts, false)
	return nil, err
}

func validateObject(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	if opts.ErrorMode() != Ignore && !o.sameType(value) {
		return nil, NewInvalid("type_error",
			fmt.Sprintf("expected %s, got %T", o.typ, value))
	}
	parent, err := n.Parent(Validate)
	if err != nil {
		return nil, err
	}
	return parent.Call(value, opts)
}

func cloneObject(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	attrs, err := extractObject(n, value, opts, false)
	if err != nil {
		return nil, err
	}
	return o.construct(attrs)
}

func mutateObject(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	attrs, err := extractObject(n, value, opts, false)
	if err != nil {
		return nil, err
	}
	if err := o.setFields(value, attrs); err != nil {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, err
	}
	return value, nil
}

func dictifyObject(n *Node, value any, opts *Options) (any, error) {
	out, err := extractObject(n, value, opts, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func undictifyObject(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	out, err := n.Super(KindObject).Call(value, opts)
	if err != nil {
		return nil, err
	}
	attrs, ok := out.(map[string]any)
	if !ok {
		return out, nil
	}
	if opts.ErrorMode() != Ignore {
		if extras := extraKeysOf(value, n.Edges()); len(extras) > 0 {
			return nil, NewInvalid("unexpected_fields", "").WithDetail("keys", extras)
		}
	}
	return o.construct(attrs)
}

package typegraph

import (
	"reflect"
	"strings"
	"time"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Struct tags driving shape inference.
	sentinel.Tag("shape")
	sentinel.Tag("json")
}

var (
	timeType    = reflect.TypeFor[time.Time]()
	docBaseType = reflect.TypeFor[Document]()
	docIface    = reflect.TypeFor[Doc]()
)

// Infer builds a descriptor tree for T from its struct fields, using
// sentinel's metadata extraction. Scalars map to the typed leaves, time.Time
// to DateTime, slices to List, string-keyed maps to StrMapping, pointers to
// Optional, and nested structs recurse (self-referential types are fine).
// Types embedding Document come out as document shapes with a uid edge.
//
// Two struct tags adjust the defaults: `json:"name"` renames the edge
// (`json:"-"` drops the field), and `shape:"passthrough"` or `shape:"-"`
// forces or suppresses participation. The result is associated with T, so
// later calls can pass the type itself to any operation.
func Infer[T any]() (*Tree, error) {
	rt := reflect.TypeFor[T]()
	seen := make(map[reflect.Type]*Tree)
	if rt.Kind() != reflect.Struct || rt == timeType {
		return inferType(rt, seen)
	}
	meta := sentinel.Scan[T]()
	tree, err := inferStruct(rt, meta, seen)
	if err != nil {
		return nil, err
	}
	Associate(rt, tree)
	return tree, nil
}

// MustInfer is Infer for setup paths where a malformed type is programmer
// error.
func MustInfer[T any]() *Tree {
	tree, err := Infer[T]()
	if err != nil {
		panic(err)
	}
	return tree
}

func inferStruct(rt reflect.Type, meta sentinel.Metadata, seen map[reflect.Type]*Tree) (*Tree, error) {
	if t, ok := seen[rt]; ok {
		return t, nil
	}
	if t, ok := lookupShape(rt); ok {
		seen[rt] = t
		return t, nil
	}
	var marker *Object
	if reflect.PointerTo(rt).Implements(docIface) {
		marker = NewObjectOf(rt, KindDocument)
	} else {
		marker = NewObjectOf(rt)
	}
	tree := NewTree(marker)
	seen[rt] = tree
	if marker.isDoc() {
		tree.Set("uid", NewTree(String{}))
	}
	for _, f := range meta.Fields {
		if f.ReflectType == docBaseType {
			continue
		}
		if sf := rt.FieldByIndex(f.Index); sf.Anonymous {
			continue
		}
		name := strings.ToLower(f.Name)
		if jt, ok := f.Tags["json"]; ok {
			jt, _, _ = strings.Cut(jt, ",")
			if jt == "-" {
				continue
			}
			if jt != "" {
				name = jt
			}
		}
		marker.alias(name, f.Index)
		var child *Tree
		switch f.Tags["shape"] {
		case "-":
			continue
		case "passthrough":
			child = NewTree(Passthrough{})
		case "optional":
			inner, err := inferType(f.ReflectType, seen)
			if err != nil {
				return nil, err
			}
			if _, ok := inner.Marker().(Optional); !ok {
				inner = Overlay(inner, Optional{inner: inner.Marker()})
			}
			child = inner
		default:
			var err error
			child, err = inferType(f.ReflectType, seen)
			if err != nil {
				return nil, err
			}
		}
		tree.Set(name, child)
	}
	return tree, nil
}

func inferType(rt reflect.Type, seen map[reflect.Type]*Tree) (*Tree, error) {
	if rt == timeType {
		return NewTree(DateTime{}), nil
	}
	switch rt.Kind() {
	case reflect.Struct:
		return inferStruct(rt, scanShapeFields(rt), seen)
	case reflect.Pointer:
		inner, err := inferType(rt.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return Overlay(inner, Optional{inner: inner.Marker()}), nil
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return NewTree(Bytes{}), nil
		}
		sub, err := inferType(rt.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return NewTree(List{}).Set("sub", sub), nil
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return NewTree(Passthrough{}), nil
		}
		sub, err := inferType(rt.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return NewTree(StrMapping{}).Set("sub", sub), nil
	case reflect.String:
		return NewTree(String{}), nil
	case reflect.Bool:
		return NewTree(Boolean{}), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewTree(Int{}), nil
	case reflect.Float32, reflect.Float64:
		return NewTree(Number{}), nil
	default:
		return NewTree(Passthrough{}), nil
	}
}

// scanShapeFields builds metadata for a nested struct type reached through a
// field, where the generic Scan entry point is unavailable.
func scanShapeFields(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}
	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		meta.Fields = append(meta.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseShapeTags(sf.Tag),
		})
	}
	return meta
}

func parseShapeTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, name := range []string{"shape", "json"} {
		if v, ok := tag.Lookup(name); ok {
			tags[name] = v
		}
	}
	return tags
}

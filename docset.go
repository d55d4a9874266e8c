package typegraph

import (
	"fmt"
	"reflect"
)

// DocSet owns the mapping from (type, uid) to document instance for the
// duration of one logical load. Within a set there is exactly one instance
// per key, which is what makes shared references and cycles come out as
// shared pointers instead of duplicated subtrees.
//
// A DocSet is a private, caller-owned resource: one load pass should own it
// at a time.
type DocSet struct {
	docs map[docKey]Doc
}

type docKey struct {
	typ reflect.Type
	uid string
}

// NewDocSet creates an empty document set.
func NewDocSet() *DocSet {
	return &DocSet{docs: make(map[docKey]Doc)}
}

// Add registers an existing document under its own type and uid. It fails
// with ErrDuplicateDoc if the key is taken.
func (s *DocSet) Add(doc Doc) error {
	typ := docStructType(doc)
	key := docKey{typ: typ, uid: doc.DocUID()}
	if _, ok := s.docs[key]; ok {
		return newDocError(ErrDuplicateDoc, typ, doc.DocUID())
	}
	s.docs[key] = doc
	return nil
}

// Get returns the document registered under (typ, uid), or nil.
func (s *DocSet) Get(typ reflect.Type, uid string) Doc {
	return s.docs[docKey{typ: normalizeDocType(typ), uid: uid}]
}

// Has reports whether (typ, uid) is registered.
func (s *DocSet) Has(typ reflect.Type, uid string) bool {
	_, ok := s.docs[docKey{typ: normalizeDocType(typ), uid: uid}]
	return ok
}

// Len returns the number of registered documents.
func (s *DocSet) Len() int { return len(s.docs) }

// Create registers a new unloaded placeholder under (typ, uid). It fails
// with ErrDuplicateDoc if the key is taken.
func (s *DocSet) Create(typ reflect.Type, uid string) (Doc, error) {
	typ = normalizeDocType(typ)
	key := docKey{typ: typ, uid: uid}
	if _, ok := s.docs[key]; ok {
		return nil, newDocError(ErrDuplicateDoc, typ, uid)
	}
	doc, err := newUnloaded(typ, uid)
	if err != nil {
		return nil, err
	}
	s.docs[key] = doc
	emitDocCreated(typ.String(), uid)
	return doc, nil
}

// GetOrCreate returns the document under (typ, uid), creating an unloaded
// placeholder if absent. Calling it twice with the same key returns the same
// instance; a later Load against the key populates that same instance.
func (s *DocSet) GetOrCreate(typ reflect.Type, uid string) (Doc, error) {
	if doc := s.Get(typ, uid); doc != nil {
		return doc, nil
	}
	return s.Create(typ, uid)
}

// Load deserializes raw against schema with this set as the active loader;
// it is Undictify with WithDocSet(s) pre-applied. If raw names a uid that is
// already loaded in the set, Load fails with ErrDoubleLoad unless the
// AllowDoubleLoad option is set, in which case the existing loaded instance
// is returned unchanged and raw is discarded.
func (s *DocSet) Load(schema, raw any, opts ...Option) (any, error) {
	tree, err := ToTree(schema)
	if err != nil {
		return nil, err
	}
	o, ok := tree.Marker().(*Object)
	if !ok || !o.isDoc() {
		return nil, fmt.Errorf("%w: %v is not a document shape", ErrBadShape, schema)
	}
	peek := NewOptions(opts...)
	if m, isMap := raw.(map[string]any); isMap {
		if uid, isStr := m["uid"].(string); isStr {
			if old := s.Get(o.typ, uid); old != nil && old.Loaded() {
				if peek.allowDoubleLoad() {
					return old, nil
				}
				return nil, newDocError(ErrDoubleLoad, o.typ, uid)
			}
		}
	}
	return Undictify.Do(tree, raw, append(opts, WithDocSet(s))...)
}

// docStructType resolves a document instance to its struct type.
func docStructType(doc Doc) reflect.Type {
	return normalizeDocType(reflect.TypeOf(doc))
}

func normalizeDocType(typ reflect.Type) reflect.Type {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}

// newUnloaded builds an unloaded placeholder: uid set, everything else zero.
func newUnloaded(typ reflect.Type, uid string) (Doc, error) {
	ptr := reflect.New(typ)
	doc, ok := ptr.Interface().(Doc)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not embed typegraph.Document", ErrBadShape, typ)
	}
	doc.setUID(uid)
	return doc, nil
}

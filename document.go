package typegraph

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Document is the embeddable base for objects that participate in cyclic
// reference graphs. A document has a globally stable uid and a loaded flag;
// while unloaded it is a placeholder for data held elsewhere, and only the
// uid may be read. A document transitions unloaded to loaded exactly once.
//
// Embed it by value and mark the shape with NewDoc:
//
//	type Node struct {
//		typegraph.Document
//		Name string
//		Next *Node
//	}
type Document struct {
	UID    string
	loaded bool
}

// Doc is the view the substrate uses to drive the document protocol. Only
// types embedding Document satisfy it.
type Doc interface {
	// DocUID returns the document's stable identifier.
	DocUID() string
	// Loaded reports whether the document's fields hold data.
	Loaded() bool

	setUID(uid string)
	markLoaded()
}

// NewDocument creates a loaded document with a fresh uid. Use it as the
// embedded field's initializer when building documents by hand.
func NewDocument() Document {
	return Document{UID: NewUID(), loaded: true}
}

// NewDocumentWithUID creates a loaded document with a caller-chosen uid.
func NewDocumentWithUID(uid string) Document {
	return Document{UID: uid, loaded: true}
}

// NewUID generates a globally unique document identifier.
func NewUID() string {
	return uuid.New().String()
}

func (d *Document) DocUID() string { return d.UID }

func (d *Document) Loaded() bool { return d.loaded }

func (d *Document) setUID(uid string) { d.UID = uid }

func (d *Document) markLoaded() { d.loaded = true }

// EnsureLoaded fails with ErrUnloadedAccess when the document is still a
// placeholder. Call it before reading fields of a document that may have
// arrived as a bare reference.
func (d *Document) EnsureLoaded() error {
	if !d.loaded {
		return newDocError(ErrUnloadedAccess, nil, d.UID)
	}
	return nil
}

// NewDoc creates the Object marker for a document type. T must embed
// Document by value. The marker's ancestry runs through KindDocument, so the
// cycle-safe handlers below apply before the plain object ones.
func NewDoc[T any](extra ...Kind) *Object {
	var probe *T
	if _, ok := any(probe).(Doc); !ok {
		panic(fmt.Sprintf("typegraph: %T does not embed typegraph.Document", probe))
	}
	return NewObjectOf(reflect.TypeFor[T](), append(extra, KindDocument)...)
}

func init() {
	Clone.DefaultFactory(optDocSet, func() any { return NewDocSet() })

	Traverse.When(KindDocument, traverseDocument)
	Clone.When(KindDocument, cloneDocument)
	Mutate.When(KindDocument, mutateDocument)
	Dictify.When(KindDocument, dictifyDocument)
	Undictify.When(KindDocument, undictifyDocument)
}

// followDocs reads the extras flag that forces shallow treatment of a
// document edge: when the "follow_docs" annotation at this position is
// false, handlers stop at the uid instead of descending.
func followDocs(n *Node) bool {
	v, ok := n.Extra("follow_docs")
	if !ok {
		return true
	}
	follow, _ := v.(bool)
	return follow
}

func traverseDocument(n *Node, value any, opts *Options) (any, error) {
	doc, ok := value.(Doc)
	if !ok {
		return n.Super(KindDocument).Call(value, opts)
	}
	seen := opts.docsSeen()
	if _, done := seen[doc]; done {
		return nil, nil
	}
	if !followDocs(n) {
		return nil, nil
	}
	kid := opts.NoDocKids() && len(seen) > 0
	seen[doc] = nil
	sup := n.Super(KindDocument)
	if !doc.Loaded() || kid {
		sup = sup.Restrict("uid")
	}
	return sup.Call(value, opts)
}

func cloneDocument(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	doc, ok := value.(Doc)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected %s, got %T", o.typ, value))
	}
	if !followDocs(n) {
		return doc, nil
	}
	if opts.ErrorMode() != Ignore && !o.sameType(value) {
		return nil, NewInvalid("type_error", fmt.Sprintf("expected %s, got %T", o.typ, value))
	}
	seen := opts.docsSeen()
	if prior, done := seen[doc]; done {
		return prior, nil
	}
	if opts.NoDocKids() && len(seen) > 0 {
		return doc, nil
	}
	docset := opts.DocSet()
	if docset == nil {
		docset = NewDocSet()
		opts.Set(optDocSet, docset)
	}
	uid := doc.DocUID()
	if opts.NewUIDs() {
		uid = NewUID()
	}
	if existing := docset.Get(o.typ, uid); existing != nil {
		seen[doc] = existing
		return existing, nil
	}
	clone, err := docset.Create(o.typ, uid)
	if err != nil {
		return nil, err
	}
	seen[doc] = clone
	if !doc.Loaded() {
		return clone, nil
	}
	attrs, err := extractObject(n, doc, opts, false)
	if err != nil {
		return nil, err
	}
	if err := loadDoc(clone, o, attrs); err != nil {
		return nil, err
	}
	return clone, nil
}

func mutateDocument(n *Node, value any, opts *Options) (any, error) {
	doc, ok := value.(Doc)
	if !ok {
		return n.Super(KindDocument).Call(value, opts)
	}
	seen := opts.docsSeen()
	if _, done := seen[doc]; done {
		return doc, nil
	}
	if !followDocs(n) || !doc.Loaded() {
		return doc, nil
	}
	if opts.NoDocKids() && len(seen) > 0 {
		return doc, nil
	}
	seen[doc] = doc
	return n.Super(KindDocument).Call(value, opts)
}

func dictifyDocument(n *Node, value any, opts *Options) (any, error) {
	doc, ok := value.(Doc)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		o := n.Marker().(*Object)
		return nil, NewInvalid("type_error", fmt.Sprintf("expected %s, got %T", o.typ, value))
	}
	stub := map[string]any{"uid": doc.DocUID()}
	seen := opts.docsSeen()
	if _, done := seen[doc]; done {
		return stub, nil
	}
	if !followDocs(n) || !doc.Loaded() {
		return stub, nil
	}
	if opts.NoDocKids() && len(seen) > 0 {
		return stub, nil
	}
	seen[doc] = nil
	full, err := n.Super(KindDocument).Call(value, opts)
	if err != nil {
		return nil, err
	}
	if storage := opts.DocStorage(); storage != nil {
		storage[doc.DocUID()] = full
		return stub, nil
	}
	return full, nil
}

func undictifyDocument(n *Node, value any, opts *Options) (any, error) {
	o := n.Marker().(*Object)
	mode := opts.ErrorMode()
	m, ok := value.(map[string]any)
	if !ok {
		if mode == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected a mapping, got %T", value))
	}
	raw, present := m["uid"]
	if !present {
		if mode != Ignore {
			return nil, NewInvalid("missing_key", "document has no uid")
		}
		raw = NewUID()
	}
	uid, ok := raw.(string)
	if !ok {
		inv := &Invalid{}
		inv.merge("uid", NewInvalid("type_error", fmt.Sprintf("uid must be a string, got %T", raw)))
		return nil, inv
	}
	docset := opts.DocSet()
	if docset == nil {
		docset = NewDocSet()
		opts.Set(optDocSet, docset)
	}
	doc, err := docset.GetOrCreate(o.typ, uid)
	if err != nil {
		return nil, err
	}
	// A bare {"uid": ...} under a shape that declares more fields is a
	// shallow reference; hand back the placeholder untouched.
	if len(m) == 1 && len(n.Edges()) > 1 {
		return doc, nil
	}
	attrs, err := applySchema(n, m, opts, true)
	if err != nil {
		return nil, err
	}
	if mode != Ignore {
		if extras := extraKeysOf(m, n.Edges()); len(extras) > 0 {
			return nil, NewInvalid("unexpected_fields", "").WithDetail("keys", extras)
		}
	}
	if err := loadDoc(doc, o, attrs); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadDoc performs the one unloaded-to-loaded transition: fields set, flag
// flipped, signal emitted. Loading twice is caller misuse and surfaces as an
// immediate DocError rather than an aggregated validation failure.
func loadDoc(doc Doc, o *Object, attrs map[string]any) error {
	if doc.Loaded() {
		return newDocError(ErrDoubleLoad, o.typ, doc.DocUID())
	}
	fields := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == "uid" {
			continue
		}
		fields[k] = v
	}
	if err := o.setFields(doc, fields); err != nil {
		return err
	}
	doc.markLoaded()
	emitDocLoaded(o.typ.String(), doc.DocUID())
	return nil
}

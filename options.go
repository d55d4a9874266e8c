package typegraph

// ErrorMode controls how recursive operations treat data-shape failures.
type ErrorMode int

const (
	// Ignore suppresses validation entirely: handlers pass mismatched
	// values through as best they can and never aggregate errors.
	Ignore ErrorMode = iota

	// Check stops at the first failure; the call returns an Invalid tree
	// with a single entry.
	Check

	// CheckAll collects every failure into one Invalid tree keyed by child
	// name.
	CheckAll
)

// Well-known option names. Handlers read these through the typed accessors
// on Options; dispatchers may backfill them via DefaultValue/DefaultFactory.
const (
	optErrorMode       = "error_mode"
	optDocSet          = "in_docset"
	optNewUIDs         = "new_uids"
	optDocsSeen        = "docs_seen"
	optAllowDoubleLoad = "allow_double_load"
	optDocStorage      = "doc_storage"
	optNoDocKids       = "no_doc_kids"
)

// Options is the extensible bag of named arguments threaded through one
// top-level call. It is shared by reference through the whole recursion, so
// values set by dispatcher defaults (memo sets, docsets) are visible at every
// depth of the same call. It is not safe for concurrent use; each top-level
// call owns its bag.
type Options struct {
	vals   map[string]any
	extras map[string]*Tree
}

// Option configures a single call.
type Option func(*Options)

// NewOptions builds an options bag from functional options.
func NewOptions(opts ...Option) *Options {
	o := &Options{vals: make(map[string]any)}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// WithErrorMode sets the call's error mode explicitly, overriding any
// dispatcher default.
func WithErrorMode(mode ErrorMode) Option {
	return func(o *Options) { o.Set(optErrorMode, mode) }
}

// WithDocSet supplies the document set used to register and resolve
// documents during the call.
func WithDocSet(ds *DocSet) Option {
	return func(o *Options) { o.Set(optDocSet, ds) }
}

// WithNewUIDs requests fresh uids for documents produced by Clone.
func WithNewUIDs() Option {
	return func(o *Options) { o.Set(optNewUIDs, true) }
}

// WithDocStorage supplies an external store for Dictify. Every document's
// full serialized form is written into storage under its uid, and only the
// {"uid": ...} stub appears inline, so a reference graph flattens into
// independently loadable records.
func WithDocStorage(storage map[string]any) Option {
	return func(o *Options) { o.Set(optDocStorage, storage) }
}

// WithNoDocKids keeps the operation from descending into referenced
// documents: the root document is processed fully, but every document
// reached below it is reduced to its uid.
func WithNoDocKids() Option {
	return func(o *Options) { o.Set(optNoDocKids, true) }
}

// WithAllowDoubleLoad lets DocSet.Load return the existing loaded instance
// instead of failing when the raw data names an already-loaded uid.
func WithAllowDoubleLoad() Option {
	return func(o *Options) { o.Set(optAllowDoubleLoad, true) }
}

// WithValue sets an arbitrary named argument for handlers to read.
func WithValue(name string, value any) Option {
	return func(o *Options) { o.Set(name, value) }
}

// WithExtra attaches an auxiliary descriptor tree under the given name. The
// extras graph is walked in lock-step with the main tree: nodes read the
// annotation at their own position via Node.Extra.
func WithExtra(name string, tree *Tree) Option {
	return func(o *Options) {
		if o.extras == nil {
			o.extras = make(map[string]*Tree)
		}
		o.extras[name] = tree
	}
}

// Get returns the named argument.
func (o *Options) Get(name string) (any, bool) {
	v, ok := o.vals[name]
	return v, ok
}

// Set sets the named argument.
func (o *Options) Set(name string, value any) {
	o.vals[name] = value
}

// ErrorMode returns the call's error mode, defaulting to Ignore.
func (o *Options) ErrorMode() ErrorMode {
	if v, ok := o.vals[optErrorMode]; ok {
		if mode, ok := v.(ErrorMode); ok {
			return mode
		}
	}
	return Ignore
}

// DocSet returns the call's document set, or nil.
func (o *Options) DocSet() *DocSet {
	if v, ok := o.vals[optDocSet]; ok {
		if ds, ok := v.(*DocSet); ok {
			return ds
		}
	}
	return nil
}

// NewUIDs reports whether Clone should mint fresh document uids.
func (o *Options) NewUIDs() bool {
	v, _ := o.vals[optNewUIDs].(bool)
	return v
}

// DocStorage returns the external document store, or nil.
func (o *Options) DocStorage() map[string]any {
	if v, ok := o.vals[optDocStorage]; ok {
		if storage, ok := v.(map[string]any); ok {
			return storage
		}
	}
	return nil
}

// NoDocKids reports whether referenced documents collapse to their uid.
func (o *Options) NoDocKids() bool {
	v, _ := o.vals[optNoDocKids].(bool)
	return v
}

// allowDoubleLoad reports whether DocSet.Load tolerates already-loaded uids.
func (o *Options) allowDoubleLoad() bool {
	v, _ := o.vals[optAllowDoubleLoad].(bool)
	return v
}

// docsSeen returns the per-call processed-document cache, creating it on
// first use. The cache is what bounds recursion over cyclic reference
// graphs.
func (o *Options) docsSeen() map[Doc]any {
	if v, ok := o.vals[optDocsSeen]; ok {
		if seen, ok := v.(map[Doc]any); ok {
			return seen
		}
	}
	seen := make(map[Doc]any)
	o.vals[optDocsSeen] = seen
	return seen
}

package typegraph

// Handler is a dispatch target. It receives the graph node it was resolved
// for (through which it can recurse into children, delegate upward, or
// overlay a different marker), the value being processed, and the call's
// shared options bag. Handlers return the operation's result; walk-only
// operations return nil.
type Handler func(node *Node, value any, opts *Options) (any, error)

// KeyFunc maps a marker to the list of dispatch keys to scan, most specific
// first. The default key function uses the marker's own ancestry chain.
type KeyFunc func(m Marker) []Kind

// Dispatcher is a keyed handler table with inheritance-like override
// semantics. A dispatcher owns a Kind-to-Handler table, an optional default
// handler, and a linearized resolution order over itself and its ancestors.
// Its own entries always win over any ancestor's for the same key; across the
// whole order, resolution is key-major: every dispatcher is consulted for the
// most specific key before any dispatcher is consulted for the next one.
//
// Registration must finish before a dispatcher is used for resolution.
// A fully-built dispatcher is immutable and safe for concurrent resolution.
type Dispatcher struct {
	name     string
	table    map[Kind]Handler
	def      Handler
	keyFn    KeyFunc
	order    []*Dispatcher // linearization, self first
	defaults []argDefault
}

// argDefault backfills a named option that the caller did not supply.
type argDefault struct {
	name    string
	value   any
	factory func() any
}

// NewDispatcher creates a dispatcher with no parents and the default key
// function (the marker's ancestry chain).
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{table: make(map[Kind]Handler)}
	d.order = []*Dispatcher{d}
	return d
}

// Merge creates a dispatcher inheriting from the given parents, left to
// right. The resulting resolution order is the merge of the parents' orders;
// it fails with ErrInconsistentOrder when the parents disagree about their
// relative ordering. The key function is taken from the first parent.
func Merge(parents ...*Dispatcher) (*Dispatcher, error) {
	d := &Dispatcher{table: make(map[Kind]Handler)}
	lists := make([][]*Dispatcher, 0, len(parents))
	for _, p := range parents {
		order := make([]*Dispatcher, len(p.order))
		copy(order, p.order)
		lists = append(lists, order)
	}
	merged, err := mergeOrders(lists)
	if err != nil {
		return nil, err
	}
	d.order = append([]*Dispatcher{d}, merged...)
	if len(parents) > 0 {
		d.keyFn = parents[0].keyFn
	}
	return d, nil
}

// Sub derives a dispatcher with this one as its sole parent. The derived
// dispatcher inherits the key function; the original keeps working exactly
// as before. A single-parent merge cannot be inconsistent.
func (d *Dispatcher) Sub() *Dispatcher {
	sub, err := Merge(d)
	if err != nil {
		// Unreachable: one parent has one self-consistent order.
		panic(err)
	}
	return sub
}

// Named sets a diagnostic name used in signals. Returns the dispatcher for
// chaining during setup.
func (d *Dispatcher) Named(name string) *Dispatcher {
	d.name = name
	return d
}

// Register associates h with every kind in kinds in this dispatcher's own
// table, overwriting on collision.
func (d *Dispatcher) Register(kinds []Kind, h Handler) {
	for _, k := range kinds {
		d.table[k] = h
	}
}

// When associates h with a single kind. Sugar for Register.
func (d *Dispatcher) When(kind Kind, h Handler) {
	d.Register([]Kind{kind}, h)
}

// Default sets the handler used when no key in a resolved chain matches
// anywhere in the merge order.
func (d *Dispatcher) Default(h Handler) {
	d.def = h
}

// SetKeyFunc replaces the key function. Derived dispatchers created after
// this call inherit the replacement.
func (d *Dispatcher) SetKeyFunc(fn KeyFunc) {
	d.keyFn = fn
}

// DefaultValue arranges for opts[name] = value on every call through this
// dispatcher (or one derived from it) where the caller did not set name.
// Use this to silently carry shared state that handlers rely on.
func (d *Dispatcher) DefaultValue(name string, value any) {
	d.defaults = append(d.defaults, argDefault{name: name, value: value})
}

// DefaultFactory is DefaultValue with a per-call constructor; the factory
// runs at most once per top-level call because the options bag is shared
// through the recursion.
func (d *Dispatcher) DefaultFactory(name string, factory func() any) {
	d.defaults = append(d.defaults, argDefault{name: name, factory: factory})
}

// keys computes the dispatch key list for a marker.
func (d *Dispatcher) keys(m Marker) []Kind {
	if d.keyFn != nil {
		return d.keyFn(m)
	}
	return m.Kinds()
}

// resolver is the view a Node dispatches through: either a *Dispatcher
// itself or a layer delegate exposing a suffix of one's resolution order.
type resolver interface {
	// root is the dispatcher handlers observe; delegation never changes it.
	root() *Dispatcher
	// resolveOrder is the slice of root's order this view scans.
	resolveOrder() []*Dispatcher
}

func (d *Dispatcher) root() *Dispatcher           { return d }
func (d *Dispatcher) resolveOrder() []*Dispatcher { return d.order }

// delegate is the layer-delegation analogue of a super target: the same root
// dispatcher, but resolving from the position immediately after an ancestor
// in the merge order. Handlers reached through a delegate still receive
// nodes bound to the root dispatcher, so recursion into children continues
// at full specificity.
type delegate struct {
	rootDisp *Dispatcher
	order    []*Dispatcher
}

func (s *delegate) root() *Dispatcher           { return s.rootDisp }
func (s *delegate) resolveOrder() []*Dispatcher { return s.order }

// superTarget is a dispatch target that skips every key up to and including
// from, the ancestry analogue of calling the overridden implementation.
type superTarget struct {
	from   Kind
	marker Marker
}

// resolve finds a handler for marker through the given order, honoring a
// super truncation. It returns the handler and the key list scanned (for
// error reporting).
func resolve(r resolver, target any) (Handler, []Kind) {
	marker, _ := target.(Marker)
	var from Kind
	if st, ok := target.(superTarget); ok {
		from, marker = st.from, st.marker
	}
	keys := r.root().keys(marker)
	if from != "" {
		keys = kindsAfter(keys, from)
	}
	order := r.resolveOrder()
	for _, key := range keys {
		for _, d := range order {
			if h, ok := d.table[key]; ok {
				return h, keys
			}
		}
	}
	for _, d := range order {
		if d.def != nil {
			return d.def, keys
		}
	}
	return nil, keys
}

// applyDefaults backfills registered option defaults, scanning the
// resolution order so derived dispatchers inherit (and can shadow) their
// ancestors' defaults.
func applyDefaults(r resolver, opts *Options) {
	for _, d := range r.resolveOrder() {
		for _, def := range d.defaults {
			if _, ok := opts.Get(def.name); ok {
				continue
			}
			if def.factory != nil {
				opts.Set(def.name, def.factory())
				continue
			}
			opts.Set(def.name, def.value)
		}
	}
}

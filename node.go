package typegraph

// Node couples a position in a descriptor tree with the resolver that
// operations on it dispatch through. Handlers receive the node itself, so
// recursion and delegation are both expressed as node derivations; nodes are
// immutable and cheap to derive.
//
// Two independent delegation axes meet here. Super moves along the marker's
// ancestry chain ("call the next less specific handler for this value");
// Parent moves along the dispatcher's merge order ("call the version of this
// operation one layer up"). Keeping the target and the resolver separate is
// what lets the same traversal mechanics serve both without either leaking
// into the other's bookkeeping.
type Node struct {
	tree     *Tree
	disp     resolver
	overlay  Marker   // replaces tree's marker at this position when non-nil
	super    Kind     // non-empty: dispatch as a super target anchored here
	restrict []string // non-nil: visible edge names
	extras   map[string]*Tree
}

// newNode builds a root node over a tree for a resolver.
func newNode(tree *Tree, r resolver, extras map[string]*Tree) *Node {
	return &Node{tree: tree, disp: r, extras: extras}
}

// Marker returns the descriptor at this position, with any super anchoring
// peeled off.
func (n *Node) Marker() Marker {
	if n.overlay != nil {
		return n.overlay
	}
	return n.tree.Marker()
}

// Dispatcher returns the true root dispatcher for this node, independent of
// any layer delegation in effect.
func (n *Node) Dispatcher() *Dispatcher {
	return n.disp.root()
}

// target is the value handed to resolution: the marker, or a super target
// wrapping it.
func (n *Node) target() any {
	m := n.Marker()
	if n.super != "" {
		return superTarget{from: n.super, marker: m}
	}
	return m
}

// Call resolves a handler for this node and invokes it with the node itself
// as first argument. Registered option defaults are backfilled first, so
// handlers can rely on them at any depth.
func (n *Node) Call(value any, opts *Options) (any, error) {
	applyDefaults(n.disp, opts)
	h, keys := resolve(n.disp, n.target())
	if h == nil {
		return nil, &NoHandlerError{Keys: keys}
	}
	// The handler observes the root dispatcher: recursion into children
	// resumes at full specificity even when reached through a delegate.
	// The super anchor stays, so a handler reached through Super can
	// layer-delegate with Parent and land past the anchor, not back on it.
	next := *n
	next.disp = n.disp.root()
	return h(&next, value, opts)
}

// Edges returns the visible child edge names at this position, honoring any
// restriction.
func (n *Node) Edges() []string {
	if n.restrict != nil {
		return n.restrict
	}
	return n.tree.Edges()
}

// Child returns the node for the named child descriptor, with the same
// dispatcher. Extras graphs descend edge-wise and vanish where they have no
// matching edge.
func (n *Node) Child(name string) (*Node, error) {
	if n.restrict != nil && !contains(n.restrict, name) {
		return nil, &ChildError{Name: name, Kind: kindOf(n.Marker())}
	}
	sub, ok := n.tree.Child(name)
	if !ok {
		return nil, &ChildError{Name: name, Kind: kindOf(n.Marker())}
	}
	var extras map[string]*Tree
	for xname, xtree := range n.extras {
		if xsub, ok := xtree.Child(name); ok {
			if extras == nil {
				extras = make(map[string]*Tree)
			}
			extras[xname] = xsub
		}
	}
	return &Node{tree: sub, disp: n.disp.root(), extras: extras}, nil
}

// ForMarker overlays a different descriptor at this position: same tree
// children, same dispatcher, same extras. Indirection handlers use it to
// re-interpret a value under the wrapped descriptor.
func (n *Node) ForMarker(m Marker) *Node {
	next := *n
	next.overlay = m
	next.super = ""
	return &next
}

// Super derives a node that dispatches as "the next handler after from in
// this marker's ancestry chain", the ancestry analogue of calling the
// overridden implementation.
func (n *Node) Super(from Kind) *Node {
	next := *n
	next.super = from
	return &next
}

// Parent derives a node that dispatches through the slice of this node's
// resolution order strictly after anchor: the registry-layering analogue of
// Super, used by a sub-dispatcher's handler to invoke the layer it extends.
// Fails with ErrNotAnchored when anchor is not in the order.
func (n *Node) Parent(anchor *Dispatcher) (*Node, error) {
	order, ok := orderAfter(n.disp.root().resolveOrder(), anchor)
	if !ok {
		return nil, ErrNotAnchored
	}
	next := *n
	next.disp = &delegate{rootDisp: n.disp.root(), order: order}
	return &next, nil
}

// Inner overlays the wrapped descriptor of a Wrapper marker and calls it.
// This is the one-layer unwrap used by indirection pass-through.
func (n *Node) Inner(value any, opts *Options) (any, error) {
	w, ok := n.Marker().(Wrapper)
	if !ok {
		return nil, &NoHandlerError{Keys: n.disp.root().keys(n.Marker())}
	}
	return n.ForMarker(w.Inner()).Call(value, opts)
}

// Restrict limits child lookup to the given edge names. Used to traverse
// only part of a structure, e.g. only the uid of an unloaded document.
func (n *Node) Restrict(names ...string) *Node {
	next := *n
	next.restrict = names
	return &next
}

// Extra returns the annotation value of the named extras graph at this
// position. The second result is false when the graph is absent here.
func (n *Node) Extra(name string) (any, bool) {
	t, ok := n.extras[name]
	if !ok {
		return nil, false
	}
	return t.Value(), true
}

// kindOf names a marker for diagnostics.
func kindOf(m Marker) Kind {
	if m == nil {
		return ""
	}
	if kinds := m.Kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return ""
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

package typegraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// LeafError is one concrete validation failure: a stable id (e.g.
// "type_error", "missing_attr", "value_error/too_short"), an optional
// human-readable description, and optional structured detail. Fatal leaf
// errors abort aggregation immediately even in collect-all mode; they mark
// failures that make the surrounding scope meaningless (e.g. a non-mapping
// where a schema was expected).
type LeafError struct {
	ID     string
	Desc   string
	Detail map[string]any
	Fatal  bool
}

func (e LeafError) String() string {
	bits := make([]string, 0, 3)
	if e.ID != "" {
		bits = append(bits, e.ID)
	}
	if e.Desc != "" {
		bits = append(bits, e.Desc)
	}
	if len(e.Detail) > 0 {
		bits = append(bits, fmt.Sprint(e.Detail))
	}
	return strings.Join(bits, " - ")
}

// Invalid is a nested, keyed collection of validation failures mirroring the
// shape of the data that failed. A node holds its own leaf errors plus
// sub-trees keyed by child name. An Invalid with no own errors and no
// non-empty sub-trees is empty and must be represented as nil rather than
// returned as an error.
type Invalid struct {
	own []LeafError
	sub map[string]*Invalid
}

// NewInvalid creates an Invalid with a single leaf error.
func NewInvalid(id, desc string) *Invalid {
	return &Invalid{own: []LeafError{{ID: id, Desc: desc}}}
}

// NewFatal creates an Invalid whose single leaf error aborts aggregation.
func NewFatal(id, desc string) *Invalid {
	return &Invalid{own: []LeafError{{ID: id, Desc: desc, Fatal: true}}}
}

// WithDetail attaches structured detail to the most recent own error and
// returns the Invalid for chaining.
func (inv *Invalid) WithDetail(key string, value any) *Invalid {
	last := &inv.own[len(inv.own)-1]
	if last.Detail == nil {
		last.Detail = make(map[string]any)
	}
	last.Detail[key] = value
	return inv
}

// Add appends an own leaf error.
func (inv *Invalid) Add(err LeafError) {
	inv.own = append(inv.own, err)
}

// Own returns the node's own leaf errors.
func (inv *Invalid) Own() []LeafError { return inv.own }

// Sub returns the nested Invalid under key, or nil.
func (inv *Invalid) Sub(key string) *Invalid {
	if inv == nil {
		return nil
	}
	return inv.sub[key]
}

// SubKeys returns the keys of non-empty sub-trees, sorted.
func (inv *Invalid) SubKeys() []string {
	keys := make([]string, 0, len(inv.sub))
	for k := range inv.sub {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether the tree holds no errors at all.
func (inv *Invalid) Empty() bool {
	if inv == nil {
		return true
	}
	if len(inv.own) > 0 {
		return false
	}
	for _, s := range inv.sub {
		if !s.Empty() {
			return false
		}
	}
	return true
}

// OrNil collapses an empty tree to nil so it can be returned as an error.
func (inv *Invalid) OrNil() error {
	if inv.Empty() {
		return nil
	}
	return inv
}

// fatal reports whether any own error is fatal.
func (inv *Invalid) fatal() bool {
	for _, e := range inv.own {
		if e.Fatal {
			return true
		}
	}
	return false
}

// merge grafts other's errors under key, merging with any existing subtree.
func (inv *Invalid) merge(key string, other *Invalid) {
	if inv.sub == nil {
		inv.sub = make(map[string]*Invalid)
	}
	if prev, ok := inv.sub[key]; ok {
		prev.own = append(prev.own, other.own...)
		for k, s := range other.sub {
			prev.merge(k, s)
		}
		return
	}
	inv.sub[key] = other
}

// Error renders the tree as "own; key: [sub]; ..." with keys sorted, which
// keeps messages deterministic for logs and tests.
func (inv *Invalid) Error() string {
	if inv.Empty() {
		return "<no errors>"
	}
	bits := make([]string, 0, len(inv.own)+len(inv.sub))
	ownBits := make([]string, 0, len(inv.own))
	for _, e := range inv.own {
		ownBits = append(ownBits, e.String())
	}
	if len(ownBits) > 0 {
		bits = append(bits, strings.Join(ownBits, ", "))
	}
	for _, key := range inv.SubKeys() {
		if s := inv.sub[key]; !s.Empty() {
			bits = append(bits, fmt.Sprintf("%s: [%s]", key, s.Error()))
		}
	}
	return strings.Join(bits, "; ")
}

// AsInvalid extracts an *Invalid from err, if it is one.
func AsInvalid(err error) (*Invalid, bool) {
	var inv *Invalid
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

// Aggregator accumulates child failures into an Invalid tree according to an
// error mode. It replaces exception-scoping: each recursive scope creates an
// aggregator, funnels child calls through Sub, and finishes with Err.
//
// Non-Invalid errors pass through Sub untouched: dispatch failures and
// document-protocol misuse are programmer errors and are never collected
// alongside validation errors.
type Aggregator struct {
	mode ErrorMode
	inv  *Invalid
}

// NewAggregator creates an aggregator for the given mode. In Ignore mode the
// aggregator still passes through non-Invalid errors but swallows nothing;
// callers normally skip aggregation entirely in that mode.
func NewAggregator(mode ErrorMode) *Aggregator {
	return &Aggregator{mode: mode, inv: &Invalid{}}
}

// Sub runs fn for the named child scope. A returned *Invalid is recorded
// under key; in Check mode (or when the failure is fatal) Sub returns the
// keyed tree immediately so the caller can abort. Any other error is
// returned as-is.
func (a *Aggregator) Sub(key string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	inv, ok := AsInvalid(err)
	if !ok {
		return err
	}
	if inv.fatal() {
		return inv
	}
	a.inv.merge(key, inv)
	if a.mode == Check {
		return a.inv
	}
	return nil
}

// Own records a failure belonging to this scope itself. In Check mode the
// aggregated tree is returned immediately.
func (a *Aggregator) Own(inv *Invalid) error {
	a.inv.own = append(a.inv.own, inv.own...)
	for k, s := range inv.sub {
		a.inv.merge(k, s)
	}
	if a.mode == Check {
		return a.inv
	}
	return nil
}

// Err returns the aggregated tree, or nil if nothing failed.
func (a *Aggregator) Err() error {
	return a.inv.OrNil()
}

package typegraph

// Marker describes the shape of a value. Markers are the nodes of descriptor
// trees; the substrate dispatches operations on their ancestry chains instead
// of on Go types, so a marker's identity for dispatch purposes is entirely
// determined by Kinds().
//
// Markers are immutable by convention: once a marker is placed in a tree that
// is in use, its configuration must not change.
type Marker interface {
	// Kinds returns the ancestry chain, most specific first, ending in
	// KindAny.
	Kinds() []Kind
}

// Wrapper is a marker holding exactly one inner marker. Operations without a
// wrapper-specific handler fall through to the inner marker (see the base
// dispatcher's pass-through), which lets a wrapper customize exactly one
// operation on exactly one wrapped shape without touching the others.
//
// Wrappers may be stacked, e.g. Optional-of-Validated-of-Int.
type Wrapper interface {
	Marker
	Inner() Marker
}

// Unwrap peels wrappers off m.
//
// With no target kind it returns the innermost non-wrapper marker. With a
// target kind it returns the first marker (wrapper or not) whose chain starts
// at that kind, or nil if none is found.
func Unwrap(m Marker, target ...Kind) Marker {
	if len(target) == 0 {
		for {
			w, ok := m.(Wrapper)
			if !ok {
				return m
			}
			m = w.Inner()
		}
	}
	want := target[0]
	for {
		if kinds := m.Kinds(); len(kinds) > 0 && kinds[0] == want {
			return m
		}
		w, ok := m.(Wrapper)
		if !ok {
			return nil
		}
		m = w.Inner()
	}
}

// Passthrough is an explicitly ignored leaf. Every built-in operation passes
// values through unchanged and validation always succeeds.
type Passthrough struct{}

func (Passthrough) Kinds() []Kind { return ancestry(KindPassthrough, KindLeaf) }

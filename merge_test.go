package typegraph

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestMergeDiamond(t *testing.T) {
	root := NewDispatcher()
	left := root.Sub()
	right := root.Sub()

	d, err := Merge(left, right)
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	want := []*Dispatcher{d, left, right, root}
	if !reflect.DeepEqual(d.order, want) {
		t.Errorf("diamond order = %v, want [d left right root]", d.order)
	}
}

func TestMergeSelfFirst(t *testing.T) {
	parent := NewDispatcher()
	sub := parent.Sub()

	if sub.order[0] != sub {
		t.Error("derived dispatcher should head its own order")
	}
	if sub.order[1] != parent {
		t.Error("parent should follow the derived dispatcher")
	}
}

func TestMergeInconsistent(t *testing.T) {
	a := NewDispatcher()
	b := NewDispatcher()

	ab, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge(a, b) error: %v", err)
	}
	ba, err := Merge(b, a)
	if err != nil {
		t.Fatalf("Merge(b, a) error: %v", err)
	}

	if _, err := Merge(ab, ba); !errors.Is(err, ErrInconsistentOrder) {
		t.Errorf("Merge(ab, ba) error = %v, want ErrInconsistentOrder", err)
	}
}

func TestOrderAfter(t *testing.T) {
	root := NewDispatcher()
	mid := root.Sub()
	top := mid.Sub()

	rest, ok := orderAfter(top.order, mid)
	if !ok {
		t.Fatal("orderAfter() should find mid in top's order")
	}
	if !reflect.DeepEqual(rest, []*Dispatcher{root}) {
		t.Errorf("orderAfter(mid) = %v, want [root]", rest)
	}

	if _, ok := orderAfter(top.order, NewDispatcher()); ok {
		t.Error("orderAfter() should not find an unrelated dispatcher")
	}
}

func TestKindsAfter(t *testing.T) {
	keys := []Kind{"c", "b", "a", KindAny}

	if got := kindsAfter(keys, "b"); !reflect.DeepEqual(got, []Kind{"a", KindAny}) {
		t.Errorf("kindsAfter(b) = %v, want [a any]", got)
	}
	if got := kindsAfter(keys, "missing"); got != nil {
		t.Errorf("kindsAfter(missing) = %v, want nil", got)
	}
}

func TestMergeOrderProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := []*Dispatcher{NewDispatcher()}
		steps := rapid.IntRange(1, 8).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			count := rapid.IntRange(1, min(3, len(pool))).Draw(t, "count")
			idx := rapid.SliceOfNDistinct(
				rapid.IntRange(0, len(pool)-1), count, count, rapid.ID[int],
			).Draw(t, "idx")
			parents := make([]*Dispatcher, count)
			for j, k := range idx {
				parents[j] = pool[k]
			}

			d, err := Merge(parents...)
			if err != nil {
				// Contradictory parent orders are a legitimate outcome.
				if !errors.Is(err, ErrInconsistentOrder) {
					t.Fatalf("Merge() error: %v", err)
				}
				continue
			}

			if d.order[0] != d {
				t.Fatal("merged dispatcher must head its own order")
			}
			seen := make(map[*Dispatcher]bool, len(d.order))
			for _, e := range d.order {
				if seen[e] {
					t.Fatal("merged order contains a duplicate")
				}
				seen[e] = true
			}
			for j, p := range parents {
				if !isSubsequence(d.order, p.order) {
					t.Fatalf("parent %d's order is not preserved in the merge", j)
				}
			}
			pool = append(pool, d)
		}
	})
}

func isSubsequence(order, want []*Dispatcher) bool {
	i := 0
	for _, d := range order {
		if i < len(want) && d == want[i] {
			i++
		}
	}
	return i == len(want)
}

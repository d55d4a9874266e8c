package typegraph

// mergeOrders linearizes several dispatcher orders into one, preserving the
// relative order within every input. This is the cooperative-inheritance
// merge: at each step, take the head of the first list that does not appear
// in the tail of any other list. If no such head exists the inputs demand
// contradictory orderings and the merge fails.
//
// The inputs are consumed; callers pass copies.
func mergeOrders(lists [][]*Dispatcher) ([]*Dispatcher, error) {
	// Count tail occurrences so head candidacy is O(1) per check.
	tails := make(map[*Dispatcher]int)
	for _, list := range lists {
		for _, d := range list[min(1, len(list)):] {
			tails[d]++
		}
	}
	var out []*Dispatcher
	for {
		lists = compact(lists)
		if len(lists) == 0 {
			return out, nil
		}
		head, ok := pickHead(lists, tails)
		if !ok {
			return nil, ErrInconsistentOrder
		}
		out = append(out, head)
		for i, list := range lists {
			if len(list) > 0 && list[0] == head {
				list = list[1:]
				if len(list) > 0 {
					tails[list[0]]--
				}
				lists[i] = list
			}
		}
	}
}

// pickHead finds the first list head that no other list still wants later.
func pickHead(lists [][]*Dispatcher, tails map[*Dispatcher]int) (*Dispatcher, bool) {
	for _, list := range lists {
		if len(list) == 0 {
			continue
		}
		if tails[list[0]] == 0 {
			return list[0], true
		}
	}
	return nil, false
}

func compact(lists [][]*Dispatcher) [][]*Dispatcher {
	out := lists[:0]
	for _, list := range lists {
		if len(list) > 0 {
			out = append(out, list)
		}
	}
	return out
}

// orderAfter returns the suffix of order strictly after anchor, or false if
// anchor is not present.
func orderAfter(order []*Dispatcher, anchor *Dispatcher) ([]*Dispatcher, bool) {
	for i, d := range order {
		if d == anchor {
			return order[i+1:], true
		}
	}
	return nil, false
}

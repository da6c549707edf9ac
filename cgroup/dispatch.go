package cgroup

import (
	"fmt"
	"sort"
)

// Largest branch count searched linearly; larger nodes use a lookup table.
const linearDispatchLimit = 8

// DispatchNode selects a partial transition by the id of the DFA transition
// taken last. Edits shared by all branches are factored into Common.
type DispatchNode struct {
	// Common is applied before every branch.
	Common *PartialTransition

	ids      []int
	branches []*PartialTransition

	// Dense lookup for large nodes: table[id-base] is a branch index or -1.
	// Nil when the ids are too sparse, in which case ids is binary searched.
	table []int32
	base  int
}

// NewDispatchNode builds a node over branches keyed by ids. Common edits are
// factored out; both common and remainders are deduplicated through in,
// which may be nil.
func NewDispatchNode(ids []int, branches []*PartialTransition, in *Interner) (*DispatchNode, error) {
	return newDispatchNode(ids, branches, in, true)
}

// NewExportNode builds a node whose branches are applied with ApplyFinal.
// Export transitions are not factored, since each export starts from a fresh
// copy of its final row.
func NewExportNode(ids []int, branches []*PartialTransition, in *Interner) (*DispatchNode, error) {
	return newDispatchNode(ids, branches, in, false)
}

func newDispatchNode(ids []int, branches []*PartialTransition, in *Interner, factor bool) (*DispatchNode, error) {
	if len(ids) != len(branches) {
		return nil, fmt.Errorf("cgroup: %d ids for %d branches", len(ids), len(branches))
	}
	if in == nil {
		in = NewInterner()
	}

	idx := make([]int, len(ids))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return ids[idx[a]] < ids[idx[b]] })

	n := &DispatchNode{
		Common:   Empty,
		ids:      make([]int, len(ids)),
		branches: make([]*PartialTransition, len(ids)),
	}
	for i, j := range idx {
		if i > 0 && ids[j] == n.ids[i-1] {
			return nil, fmt.Errorf("cgroup: duplicate transition id %d", ids[j])
		}
		n.ids[i] = ids[j]
		n.branches[i] = branches[j]
	}

	if factor {
		var common *PartialTransition
		common, n.branches = Factor(n.branches)
		n.Common = in.Intern(common)
	}
	for i, b := range n.branches {
		n.branches[i] = in.Intern(b)
	}

	if len(n.ids) > linearDispatchLimit {
		n.base = n.ids[0]
		span := n.ids[len(n.ids)-1] - n.base + 1
		if span <= 4*len(n.ids) {
			n.table = make([]int32, span)
			for i := range n.table {
				n.table[i] = -1
			}
			for i, id := range n.ids {
				n.table[id-n.base] = int32(i)
			}
		}
	}
	return n, nil
}

// Len returns the number of branches.
func (n *DispatchNode) Len() int { return len(n.ids) }

// IDs returns the transition ids with a branch, in ascending order.
func (n *DispatchNode) IDs() []int { return n.ids }

// Lookup returns the branch remainder for a transition id.
func (n *DispatchNode) Lookup(id int) (*PartialTransition, bool) {
	i := n.find(id)
	if i < 0 {
		return nil, false
	}
	return n.branches[i], true
}

func (n *DispatchNode) find(id int) int {
	switch {
	case len(n.ids) <= linearDispatchLimit:
		for i, x := range n.ids {
			if x == id {
				return i
			}
		}
		return -1
	case n.table != nil:
		k := id - n.base
		if k < 0 || k >= len(n.table) {
			return -1
		}
		return int(n.table[k])
	default:
		i := sort.SearchInts(n.ids, id)
		if i < len(n.ids) && n.ids[i] == id {
			return i
		}
		return -1
	}
}

// Apply applies Common and the branch for id. It returns false, changing
// nothing, if the node has no branch for id.
func (n *DispatchNode) Apply(s *Storage, id, index int) bool {
	b, ok := n.Lookup(id)
	if !ok {
		return false
	}
	n.Common.Apply(s, index)
	b.Apply(s, index)
	return true
}

// ApplyFinal exports the result of the branch for id. It returns false if the
// node has no branch for id.
func (n *DispatchNode) ApplyFinal(s *Storage, id, index int) bool {
	b, ok := n.Lookup(id)
	if !ok || b.FinalRow < 0 {
		return false
	}
	b.ApplyFinal(s, index)
	return true
}

// Package sparse provides a sparse set data structure for efficient membership testing.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// maintaining a dense list of elements in insertion order. The tracking DFA
// uses it to walk automaton states and to detect duplicate transition ids
// while validating an automaton at ingestion time.
package sparse

// SparseSet is a set of non-negative ints below a fixed capacity.
// It maintains both a sparse array (for membership testing) and a dense array
// (for iteration). The sparse array maps values to indices in the dense array.
type SparseSet struct {
	sparse []int // Maps value -> index in dense
	dense  []int // Contains the actual values, in insertion order
}

// NewSparseSet creates a new sparse set able to hold values in [0, capacity).
func NewSparseSet(capacity int) *SparseSet {
	return &SparseSet{
		sparse: make([]int, capacity),
		dense:  make([]int, 0, capacity),
	}
}

// Insert adds a value to the set and reports whether it was newly added.
// Panics if value is outside [0, Cap()).
func (s *SparseSet) Insert(value int) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = len(s.dense)
	s.dense = append(s.dense, value)
	return true
}

// Contains returns true if the value is in the set.
// Values outside [0, Cap()) are never contained.
func (s *SparseSet) Contains(value int) bool {
	if value < 0 || value >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return idx < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements from the set in O(1) time.
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements in the set.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// Cap returns the exclusive upper bound of storable values.
func (s *SparseSet) Cap() int {
	return len(s.sparse)
}

// IsEmpty returns true if the set contains no elements.
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// At returns the i-th inserted value.
// Together with Len it allows the set to double as a work queue: values
// inserted while iterating are visited by the same loop.
func (s *SparseSet) At(i int) int {
	return s.dense[i]
}

// Values returns all values in insertion order.
// The returned slice is valid until the next mutation.
func (s *SparseSet) Values() []int {
	return s.dense
}

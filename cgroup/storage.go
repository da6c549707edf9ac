// Package cgroup implements capture-group tracking for the tracking DFA.
//
// While the automaton runs, each NFA state that can be live in the current
// DFA state owns one row of a capture table. A row holds the start and end
// offsets of every group, plus an optional last-matched-group slot. DFA
// transitions update the table through PartialTransitions: data describing
// the minimal edits (row reorders, row copies, index writes and clears)
// needed when the transition fires.
//
// Row reorders only permute an indirection array; row data moves only
// through explicit copies.
package cgroup

// Unset marks a capture slot that has not been written.
const Unset = -1

// Width returns the row width for the given number of groups.
// Group g occupies slots 2g (start) and 2g+1 (end); the last-group slot, if
// tracked, is the final slot.
func Width(groups int, trackLastGroup bool) int {
	w := 2 * groups
	if trackLastGroup {
		w++
	}
	return w
}

// Storage is the capture table of one search.
type Storage struct {
	rows  int
	width int
	table []int
	order []int

	// Result holds the most recently exported row.
	Result []int
}

// NewStorage allocates a table of rows × width slots.
func NewStorage(rows, width int) *Storage {
	s := &Storage{
		rows:   rows,
		width:  width,
		table:  make([]int, rows*width),
		order:  make([]int, rows),
		Result: make([]int, width),
	}
	s.Reset()
	return s
}

// Reset clears every slot and restores the identity row order.
func (s *Storage) Reset() {
	for i := range s.table {
		s.table[i] = Unset
	}
	for i := range s.order {
		s.order[i] = i * s.width
	}
	for i := range s.Result {
		s.Result[i] = Unset
	}
}

// Rows returns the number of rows.
func (s *Storage) Rows() int { return s.rows }

// Width returns the number of slots per row.
func (s *Storage) Width() int { return s.width }

// Row returns logical row r.
func (s *Storage) Row(r int) []int {
	off := s.order[r]
	return s.table[off : off+s.width]
}

// swapRows exchanges two logical rows without moving data.
func (s *Storage) swapRows(a, b int) {
	s.order[a], s.order[b] = s.order[b], s.order[a]
}

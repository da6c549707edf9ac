package matcher

// Accel is the acceleration data for a self-loop transition.
//
// It lets an input skip, in bulk, every character that keeps the automaton in
// the same state. Byte-oriented inputs use the lookup tables; other inputs
// fall back to Loop.
type Accel struct {
	// Loop matches the characters that stay in the state.
	Loop Matcher

	// Latin1[b] reports whether byte b stays in the loop when bytes are
	// Latin-1 code points.
	Latin1 [256]bool

	// ASCII is Latin1 restricted to bytes below 0x80. A UTF-8 lead or
	// continuation byte always stops the scan.
	ASCII [256]bool
}

// NewAccel builds the acceleration tables for a self-loop matcher.
func NewAccel(loop Matcher) *Accel {
	a := &Accel{Loop: loop}
	for b := 0; b < 256; b++ {
		if loop.Match(b) {
			a.Latin1[b] = true
			if b < 0x80 {
				a.ASCII[b] = true
			}
		}
	}
	return a
}

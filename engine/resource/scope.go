package resource

// Scope collects claims that must be released together, typically at the end of a pass or a
// draw. The zero value is ready to use.
type Scope struct {
	held []*View
}

// Hold adopts v into the scope and returns it. A nil v is returned as is and not recorded.
func (s *Scope) Hold(v *View) *View {
	if v == nil {
		return nil
	}
	s.held = append(s.held, v)
	return v
}

// Close releases every held claim, newest first, and empties the scope so it can be reused.
func (s *Scope) Close() {
	for i := len(s.held) - 1; i >= 0; i-- {
		s.held[i].Release()
		s.held[i] = nil
	}
	s.held = s.held[:0]
}

package eventcore

// CausalityClock is a per-thread position vector: for each thread t,
// Position(t) is the highest threadPosition of any causal predecessor of
// the owning event on thread t (inclusive of the owning event itself, when
// t is the owning event's own thread). It is the per-event analogue of a
// classic vector clock.
type CausalityClock map[ThreadID]int

// Position returns the recorded position for t, or -1 if the clock has no
// causal predecessor on t.
func (c CausalityClock) Position(t ThreadID) int {
	if v, ok := c[t]; ok {
		return v
	}
	return -1
}

// Clone returns an independent copy.
func (c CausalityClock) Clone() CausalityClock {
	out := make(CausalityClock, len(c))
	for t, p := range c {
		out[t] = p
	}
	return out
}

// Bumped returns a copy of c with thread t advanced to pos, provided pos is
// not a regression; it never lowers an existing entry.
func (c CausalityClock) Bumped(t ThreadID, pos int) CausalityClock {
	out := c.Clone()
	if pos > out.Position(t) {
		out[t] = pos
	}
	return out
}

// Join returns the pointwise maximum of a and b (the least upper bound of
// the two causal pasts), used when an event has multiple dependencies.
func Join(a, b CausalityClock) CausalityClock {
	out := a.Clone()
	for t, p := range b {
		if p > out.Position(t) {
			out[t] = p
		}
	}
	return out
}

// LessOrEqual reports whether c is pointwise dominated by o, i.e. every
// causal predecessor recorded in c is also recorded (at least as recent)
// in o.
func (c CausalityClock) LessOrEqual(o CausalityClock) bool {
	for t, p := range c {
		if o.Position(t) < p {
			return false
		}
	}
	return true
}

// Frontier is the canonical "cut" representation: the last included event
// of each thread.
type Frontier map[ThreadID]EventID

// Clone returns an independent copy.
func (f Frontier) Clone() Frontier {
	out := make(Frontier, len(f))
	for t, e := range f {
		out[t] = e
	}
	return out
}

// With returns a copy of f with thread t's latest event set to e.
func (f Frontier) With(t ThreadID, e EventID) Frontier {
	out := f.Clone()
	out[t] = e
	return out
}

// Without returns a copy of f with thread t removed entirely (used when
// cutting a thread back to empty).
func (f Frontier) Without(t ThreadID) Frontier {
	out := f.Clone()
	delete(out, t)
	return out
}

// Get returns the latest event recorded for t, and whether one exists.
func (f Frontier) Get(t ThreadID) (EventID, bool) {
	e, ok := f[t]
	return e, ok
}

// Threads returns the set of threads with at least one event in f.
func (f Frontier) Threads() []ThreadID {
	out := make([]ThreadID, 0, len(f))
	for t := range f {
		out = append(out, t)
	}
	return out
}

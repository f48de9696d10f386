package eventcore

// SequentialConsistencyChecker maintains an incremental total order (the
// execution order, eo) extending hb and per-location modification order,
// compatible with reads-from. Because events are only ever appended to an
// execution that is already causally closed (a new event's dependencies
// and parent are always already present), appending each newly checked
// event to the end of eo automatically respects hb and program order; the
// only thing left to verify is that each Read's reads-from edge still
// names the most recently eo-ordered Write to that location.
//
// When ReleaseAcquire is true, the checker additionally requires that the
// write a read observes actually happens-before the read (a genuine
// synchronizes-with edge, not merely an eo-adjacent one) — rejecting reads
// that would only be sequentially-consistent, not release/acquire-safe.
type SequentialConsistencyChecker struct {
	ReleaseAcquire bool

	x         *Execution
	eo        []EventID
	lastWrite map[MemoryLocation]EventID
	readsFrom map[EventID]EventID
}

// NewSequentialConsistencyChecker builds a checker. sc is plain sequential
// consistency; pass releaseAcquire=true to additionally enforce
// synchronizes-with on every read.
func NewSequentialConsistencyChecker(releaseAcquire bool) *SequentialConsistencyChecker {
	return &SequentialConsistencyChecker{ReleaseAcquire: releaseAcquire}
}

func (c *SequentialConsistencyChecker) Name() string { return "sequential-consistency" }

func (c *SequentialConsistencyChecker) Reset(x *Execution) {
	c.x = x
	c.eo = nil
	c.lastWrite = make(map[MemoryLocation]EventID)
	c.readsFrom = make(map[EventID]EventID)
	for _, e := range x.All() {
		if inc := c.place(e); inc != nil {
			// Reset never fails loudly: a Reset against an execution that
			// was already accepted incrementally cannot newly fail. If it
			// does, that is an internal inconsistency, not a rejection.
			panic(NewInvariantViolation("SequentialConsistencyChecker.Reset", "%s", inc.Reason))
		}
	}
}

// ReadsFrom exposes the reads-from relation discovered so far, used by
// memoryview.go's staleness filtering.
func (c *SequentialConsistencyChecker) ReadsFrom() map[EventID]EventID {
	out := make(map[EventID]EventID, len(c.readsFrom))
	for k, v := range c.readsFrom {
		out[k] = v
	}
	return out
}

func (c *SequentialConsistencyChecker) CheckEvent(e Event) *Inconsistency {
	return c.place(e)
}

func (c *SequentialConsistencyChecker) Check() *Inconsistency {
	return nil
}

func (c *SequentialConsistencyChecker) place(e Event) *Inconsistency {
	switch l := e.Label.(type) {
	case WriteLabel:
		c.eo = append(c.eo, e.ID)
		c.lastWrite[l.Location] = e.ID
	case ReadLabel:
		if e.IsRequest() {
			c.eo = append(c.eo, e.ID)
			return nil
		}
		want, ok := c.lastWrite[l.Location]
		if !ok {
			c.eo = append(c.eo, e.ID)
			return nil
		}
		observed := NoEvent
		if len(e.Dependencies) > 0 {
			observed = e.Dependencies[0]
		}
		if observed != NoEvent && observed != want {
			return NewInconsistency(c.Name(), e.ID,
				"read %d of %s observes write %d but eo already orders write %d last", e.ID, l.Location, observed, want)
		}
		if c.ReleaseAcquire {
			src, ok := c.x.source.eventByID(want)
			if ok && !src.HappensBefore(e) {
				return NewInconsistency(c.Name(), e.ID,
					"read %d of %s does not synchronize-with its source write %d under release/acquire", e.ID, l.Location, want)
			}
		}
		c.readsFrom[e.ID] = want
		c.eo = append(c.eo, e.ID)
	default:
		c.eo = append(c.eo, e.ID)
	}
	return nil
}

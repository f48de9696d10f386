package eventcore

// AtomicityChecker rejects executions where a read-modify-write pair (a
// Read-exclusive immediately followed, on the same thread, by a
// Write-exclusive to the same location) is not atomic: some other write to
// the same location is hb-ordered strictly between the two halves.
type AtomicityChecker struct {
	x *Execution

	// rmwPairs are closed read-modify-write pairs discovered so far.
	rmwPairs []rmwPair
	// writesByLocation indexes every Write event seen, for the O(pairs)
	// recheck a freshly observed write needs.
	writesByLocation map[MemoryLocation][]EventID
}

type rmwPair struct {
	Location MemoryLocation
	Read     EventID
	Write    EventID
}

// NewAtomicityChecker constructs an empty AtomicityChecker.
func NewAtomicityChecker() *AtomicityChecker {
	return &AtomicityChecker{writesByLocation: make(map[MemoryLocation][]EventID)}
}

func (c *AtomicityChecker) Name() string { return "atomicity" }

func (c *AtomicityChecker) Reset(x *Execution) {
	c.x = x
	c.rmwPairs = nil
	c.writesByLocation = make(map[MemoryLocation][]EventID)
	for _, e := range x.All() {
		c.index(e)
	}
}

func (c *AtomicityChecker) index(e Event) {
	if w, ok := e.Label.(WriteLabel); ok {
		c.writesByLocation[w.Location] = append(c.writesByLocation[w.Location], e.ID)
	}
	if w, ok := e.Label.(WriteLabel); ok && w.IsExclusive() && e.HasParent() {
		parent, ok := c.x.source.eventByID(e.Parent)
		if ok {
			if r, isRead := parent.Label.(ReadLabel); isRead && r.IsExclusive() && r.Location == w.Location {
				c.rmwPairs = append(c.rmwPairs, rmwPair{Location: w.Location, Read: parent.ID, Write: e.ID})
			}
		}
	}
}

func (c *AtomicityChecker) CheckEvent(e Event) *Inconsistency {
	c.index(e)
	return c.recheckLocation(locationOf(e))
}

func (c *AtomicityChecker) Check() *Inconsistency {
	seen := make(map[MemoryLocation]bool)
	for _, p := range c.rmwPairs {
		if seen[p.Location] {
			continue
		}
		seen[p.Location] = true
		if inc := c.recheckLocation(p.Location); inc != nil {
			return inc
		}
	}
	return nil
}

func (c *AtomicityChecker) recheckLocation(loc MemoryLocation) *Inconsistency {
	var zero MemoryLocation
	if loc == zero {
		return nil
	}
	for _, p := range c.rmwPairs {
		if p.Location != loc {
			continue
		}
		readEvt, _ := c.x.source.eventByID(p.Read)
		writeEvt, _ := c.x.source.eventByID(p.Write)
		for _, wid := range c.writesByLocation[loc] {
			if wid == p.Write {
				continue
			}
			other, ok := c.x.source.eventByID(wid)
			if !ok {
				continue
			}
			if readEvt.HappensBefore(other) && other.HappensBefore(writeEvt) {
				return NewInconsistency(c.Name(), writeEvt.ID,
					"write %d to %s interleaves RMW pair (read %d, write %d)", other.ID, loc, p.Read, p.Write)
			}
		}
	}
	return nil
}

func locationOf(e Event) MemoryLocation {
	switch l := e.Label.(type) {
	case WriteLabel:
		return l.Location
	case ReadLabel:
		return l.Location
	default:
		return MemoryLocation{}
	}
}

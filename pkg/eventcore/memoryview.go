package eventcore

// latestWriteOnThread walks thread t backward from thread position
// uptoPos (inclusive) looking for the most recent Write to loc. It
// returns (Event{}, false) if none exists on that thread up to that
// position.
func latestWriteOnThread(x *Execution, t ThreadID, uptoPos int, loc MemoryLocation) (Event, bool) {
	for pos := uptoPos; pos >= 0; pos-- {
		e, ok := x.At(t, pos)
		if !ok {
			return Event{}, false
		}
		if w, isWrite := e.Label.(WriteLabel); isWrite && w.Location == loc {
			return e, true
		}
	}
	return Event{}, false
}

// racyWrites returns the pairwise hb-maximal writes named by view: writes
// in view that are not causally before another write also named by view.
func racyWrites(x *Execution, view Frontier) []Event {
	evs := make([]Event, 0, len(view))
	for _, id := range view {
		e, ok := x.source.eventByID(id)
		if ok {
			evs = append(evs, e)
		}
	}
	var maximal []Event
	for i, a := range evs {
		dominated := false
		for j, b := range evs {
			if i == j {
				continue
			}
			if a.HappensBefore(b) && a.ID != b.ID {
				dominated = true
				break
			}
		}
		if !dominated {
			maximal = append(maximal, a)
		}
	}
	return maximal
}

// staleWriteFloor returns the causally-latest Write that thread t has
// already read from on loc, if any. A read-request candidate causally at
// or before this floor is stale: the thread has already observed a newer
// write and program-order/coherence forbids going back.
func staleWriteFloor(x *Execution, t ThreadID, loc MemoryLocation, readsFrom map[EventID]EventID) (Event, bool) {
	ids, _ := x.threads.Get(t)
	var floor Event
	found := false
	for _, id := range ids {
		e, ok := x.source.eventByID(id)
		if !ok {
			continue
		}
		r, isRead := e.Label.(ReadLabel)
		if !isRead || r.Location != loc {
			continue
		}
		srcID, hasSrc := readsFrom[id]
		if !hasSrc {
			continue
		}
		src, ok := x.source.eventByID(srcID)
		if !ok {
			continue
		}
		if !found || floor.HappensBefore(src) {
			floor = src
			found = true
		}
	}
	return floor, found
}

package eventcore

import "sort"

// eventSource resolves an EventID to its Event. EventStructure implements
// it; Execution never owns events, only references into this source.
type eventSource interface {
	eventByID(id EventID) (Event, bool)
}

// Execution is a causally-closed, per-thread-sorted set of events. It is a
// value-like snapshot: copying it is cheap because it only copies slices of
// EventIDs, never Events themselves.
type Execution struct {
	source  eventSource
	threads denseThreadMap[[]EventID]
}

// newExecution returns an empty execution backed by source.
func newExecution(source eventSource) Execution {
	return Execution{source: source}
}

// Clone returns an independent copy sharing the same (read-only) source.
func (x Execution) Clone() Execution {
	threads := x.threads.Clone()
	for i, ids := range threads.data {
		threads.data[i] = append([]EventID(nil), ids...)
	}
	return Execution{source: x.source, threads: *threads}
}

func (x *Execution) resolve(id EventID) Event {
	e, ok := x.source.eventByID(id)
	if !ok {
		panic(NewInvariantViolation("Execution.resolve", "dangling reference to event %d", id))
	}
	return e
}

// LastEvent returns the last (highest-position) event of thread t.
func (x *Execution) LastEvent(t ThreadID) (Event, bool) {
	ids, ok := x.threads.Get(t)
	if !ok || len(ids) == 0 {
		return Event{}, false
	}
	return x.resolve(ids[len(ids)-1]), true
}

// FirstEvent returns the root event of thread t.
func (x *Execution) FirstEvent(t ThreadID) (Event, bool) {
	ids, ok := x.threads.Get(t)
	if !ok || len(ids) == 0 {
		return Event{}, false
	}
	return x.resolve(ids[0]), true
}

// At returns the event at thread t, position pos.
func (x *Execution) At(t ThreadID, pos int) (Event, bool) {
	ids, ok := x.threads.Get(t)
	if !ok || pos < 0 || pos >= len(ids) {
		return Event{}, false
	}
	return x.resolve(ids[pos]), true
}

// Contains reports whether e (by id, at its recorded thread position) is
// part of this execution.
func (x *Execution) Contains(e Event) bool {
	ids, ok := x.threads.Get(e.ThreadID)
	if !ok || e.ThreadPosition < 0 || e.ThreadPosition >= len(ids) {
		return false
	}
	return ids[e.ThreadPosition] == e.ID
}

// ContainsID reports whether id is part of this execution, resolving it
// via the source first.
func (x *Execution) ContainsID(id EventID) bool {
	e, ok := x.source.eventByID(id)
	return ok && x.Contains(e)
}

// Add appends e to its thread. It requires e.Parent to equal the current
// last event of e.ThreadID (or NoEvent, if the thread is empty) — an
// InvariantViolation otherwise.
func (x *Execution) Add(e Event) error {
	last, hasLast := x.LastEvent(e.ThreadID)
	switch {
	case !hasLast && e.Parent != NoEvent:
		return NewInvariantViolation("Execution.Add", "thread %d empty but event %d has parent %d", e.ThreadID, e.ID, e.Parent)
	case hasLast && e.Parent != last.ID:
		return NewInvariantViolation("Execution.Add", "thread %d: event %d's parent %d != last event %d", e.ThreadID, e.ID, e.Parent, last.ID)
	}
	ids, _ := x.threads.Get(e.ThreadID)
	ids = append(ids, e.ID)
	x.threads.Set(e.ThreadID, ids)
	return nil
}

// Cut drops every event on thread t at position >= pos.
func (x *Execution) Cut(t ThreadID, pos int) {
	ids, ok := x.threads.Get(t)
	if !ok {
		return
	}
	if pos <= 0 {
		x.threads.Delete(t)
		return
	}
	if pos < len(ids) {
		x.threads.Set(t, append([]EventID(nil), ids[:pos]...))
	}
}

// CutNext cuts e's thread right after e.
func (x *Execution) CutNext(e Event) { x.Cut(e.ThreadID, e.ThreadPosition+1) }

// CutConflicts cuts, for each conflicting event, its thread at that
// event's own position (removing the conflict and everything after it).
func (x *Execution) CutConflicts(conflicts []Event) {
	for _, c := range conflicts {
		x.Cut(c.ThreadID, c.ThreadPosition)
	}
}

// CutDanglingRequestEvents drops, from every thread whose last event is a
// blocking Request with no matching Response yet, that trailing Request.
// A thread's last event being a blocking Request is sufficient evidence
// that no Response has been appended after it yet.
func (x *Execution) CutDanglingRequestEvents() {
	for _, t := range x.threads.Threads() {
		last, ok := x.LastEvent(t)
		if ok && last.IsRequest() && last.Label.IsBlocking() {
			x.Cut(t, last.ThreadPosition)
		}
	}
}

// Frontier returns the last event per thread currently included.
func (x *Execution) Frontier() Frontier {
	f := make(Frontier)
	for _, t := range x.threads.Threads() {
		if last, ok := x.LastEvent(t); ok {
			f[t] = last.ID
		}
	}
	return f
}

// Threads returns every thread with at least one event in the execution.
func (x *Execution) Threads() []ThreadID { return x.threads.Threads() }

// EventsOf returns the event ids of thread t in program order.
func (x *Execution) EventsOf(t ThreadID) []EventID {
	ids, _ := x.threads.Get(t)
	return append([]EventID(nil), ids...)
}

// All returns every event in the execution across all threads, ordered by
// id (equivalently, the order they were appended to the structure).
func (x *Execution) All() []Event {
	var out []Event
	for _, t := range x.threads.Threads() {
		ids, _ := x.threads.Get(t)
		for _, id := range ids {
			out = append(out, x.resolve(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

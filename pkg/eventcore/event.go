package eventcore

// Event is an immutable record of one atomic program action. Events are
// created once, appended to the owning EventStructure, and never mutated
// thereafter — the only exception is the visited bit on BacktrackableEvent.
// Events reference each other by EventID rather than by pointer, so the
// whole structure stays trivially copyable and free of reference cycles.
type Event struct {
	ID             EventID
	ThreadID       ThreadID
	ThreadPosition int
	Label          Label
	Parent         EventID // NoEvent for a thread's root event
	Dependencies   []EventID
	CausalityClock CausalityClock

	// AllocationEvent is the Send that allocated the object this event
	// touches, when applicable (NoEvent otherwise).
	AllocationEvent EventID
	// Source is, for a Write carrying a value allocated elsewhere, the
	// event that produced that value (NoEvent otherwise).
	Source EventID
}

// HasParent reports whether this event has a predecessor in its own
// thread.
func (e Event) HasParent() bool { return e.Parent != NoEvent }

// HappensBefore reports whether e causally precedes (or equals) f, using
// f's causality clock — f.CausalityClock already names the highest
// position of every causal predecessor of f on each thread, so a single
// position lookup decides the relation.
func (e Event) HappensBefore(f Event) bool {
	return f.CausalityClock.Position(e.ThreadID) >= e.ThreadPosition
}

// BacktrackableEvent extends Event with the bookkeeping the exploration
// driver needs to treat this event as an alternative to revisit later.
type BacktrackableEvent struct {
	Event

	// Visited is initially false; set when this event is chosen as an
	// exploration root or as the response at a fresh append.
	Visited bool

	// FrontierSnapshot is the execution frontier immediately before this
	// event was added — the rewind target when this event is later
	// chosen as a backtrack point.
	FrontierSnapshot Frontier

	// PinnedFrontier names, per thread, the latest event that future
	// explorations starting from here must treat as fixed (not
	// re-synchronize differently).
	PinnedFrontier Frontier
}

// IsResponse reports whether this event's label has Kind == KindResponse.
func (e Event) IsResponse() bool { return e.Label != nil && e.Label.Kind() == KindResponse }

// IsRequest reports whether this event's label has Kind == KindRequest.
func (e Event) IsRequest() bool { return e.Label != nil && e.Label.Kind() == KindRequest }

// IsSend reports whether this event's label has Kind == KindSend.
func (e Event) IsSend() bool { return e.Label != nil && e.Label.Kind() == KindSend }

package eventcore

import "sort"

// slotKey names one (thread, position) program point. Several alternative
// events can occupy the same slot across an exploration's history — every
// synthesized Response to one Request shares the Request's successor slot
// — and are each other's conflicts.
type slotKey struct {
	t   ThreadID
	pos int
}

// EventStructure is the append-only store of backtrackable events plus the
// identity-indexed allocation map. It owns every event; Executions and
// Frontiers only ever reference it by id.
type EventStructure struct {
	events      []BacktrackableEvent
	bySlot      map[slotKey][]EventID
	allocations *allocationIndex

	// dangling maps a blocked blocking Request's id to the Response that
	// would unblock it, or to NoEvent if none has been discovered yet.
	dangling map[EventID]EventID

	// initialWrites caches the synthetic Write event standing in for a
	// location's value before any real write touches it, keyed by
	// location so at most one is ever minted per location.
	initialWrites map[MemoryLocation]EventID

	logger eventLogger
}

// NewEventStructure returns an empty EventStructure.
func NewEventStructure() *EventStructure {
	return &EventStructure{
		bySlot:        make(map[slotKey][]EventID),
		allocations:   newAllocationIndex(),
		dangling:      make(map[EventID]EventID),
		initialWrites: make(map[MemoryLocation]EventID),
	}
}

// SetLogger wires an optional structured logger; a nil logger disables
// logging entirely.
func (es *EventStructure) SetLogger(l eventLogger) { es.logger = l }

func (es *EventStructure) eventByID(id EventID) (Event, bool) {
	if id < 0 || int(id) >= len(es.events) {
		return Event{}, false
	}
	return es.events[id].Event, true
}

// Backtrackable returns the BacktrackableEvent for id.
func (es *EventStructure) Backtrackable(id EventID) (*BacktrackableEvent, bool) {
	if id < 0 || int(id) >= len(es.events) {
		return nil, false
	}
	return &es.events[id], true
}

// Len returns how many events the structure currently holds.
func (es *EventStructure) Len() int { return len(es.events) }

// Truncate drops every event with id >= after, making the structure end
// with the event id `after-1` — used by the exploration driver when
// rewinding to a chosen backtrack point.
func (es *EventStructure) Truncate(after EventID) {
	if int(after) >= len(es.events) {
		return
	}
	for id := int(after); id < len(es.events); id++ {
		e := es.events[id].Event
		key := slotKey{t: e.ThreadID, pos: e.ThreadPosition}
		es.bySlot[key] = removeID(es.bySlot[key], e.ID)
		delete(es.dangling, e.ID)
		if _, ok := e.Label.(ObjectAllocationLabel); ok {
			// allocation index entries pointing at dropped events become
			// stale; there is no reverse index, so a full rebuild by the
			// caller (via RebuildAllocationIndex) is expected after a
			// truncation that removed an allocation.
		}
	}
	es.events = es.events[:after]

	for loc, id := range es.initialWrites {
		if id >= after {
			delete(es.initialWrites, loc)
		}
	}
}

// ensureInitialWrite lazily mints, at most once per location, the synthetic
// Write standing in for init's return value — the location's contents
// before any real write ever touches it. It is appended on InitThreadID,
// chained after whatever that thread's last event was.
//
// The mint only ever happens on first observation of a location with no
// write yet: if x already contains a real Write to loc, the synthetic
// event is neither minted nor consulted, since InitThreadID never
// synchronizes with user threads and a synthetic write would otherwise
// remain a permanently racy candidate for every later read of loc, for
// the rest of the run.
//
// A cached id that no longer resolves inside x (truncated away by an
// earlier backtrack, or never reachable from the current replay's
// frontier) is treated as absent and re-minted.
func (es *EventStructure) ensureInitialWrite(loc MemoryLocation, valueType string, init func(MemoryLocation) any, x *Execution, pinned Frontier) error {
	if id, ok := es.initialWrites[loc]; ok {
		if _, found := es.eventByID(id); found && x.ContainsID(id) {
			return nil
		}
		delete(es.initialWrites, loc)
	}

	for _, e := range x.All() {
		if w, ok := e.Label.(WriteLabel); ok && w.Location == loc {
			return nil
		}
	}

	parent := lastEventOrRoot(x, InitThreadID)
	label := NewWriteLabel(loc, valueType, init(loc), false)
	be, ok, err := es.construct(InitThreadID, label, parent, nil, x, pinned)
	if err != nil {
		return err
	}
	if !ok {
		return NewInvariantViolation("EventStructure.ensureInitialWrite", "initial write for %s rejected", loc)
	}
	if err := es.commitEvent(be.Event, x); err != nil {
		return err
	}
	es.initialWrites[loc] = be.ID
	return nil
}

// RebuildAllocationIndex recomputes the allocation index from the events
// currently in the structure — used after Truncate, since allocation
// lookups must never resolve to a dropped event.
func (es *EventStructure) RebuildAllocationIndex() {
	es.allocations = newAllocationIndex()
	for _, be := range es.events {
		if a, ok := be.Label.(ObjectAllocationLabel); ok {
			es.allocations.record(a.Object, be.ID)
		}
	}
}

func removeID(ids []EventID, target EventID) []EventID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// HighestUnvisitedBacktrackable returns the highest-id BacktrackableEvent
// with Visited == false, or ok=false if none remain.
func (es *EventStructure) HighestUnvisitedBacktrackable() (*BacktrackableEvent, bool) {
	for i := len(es.events) - 1; i >= 0; i-- {
		if isBacktrackable(es.events[i].Event.Label) && !es.events[i].Visited {
			return &es.events[i], true
		}
	}
	return nil, false
}

// isBacktrackable reports whether a label kind is ever worth revisiting as
// an alternative: only Response events represent a choice among
// alternatives (a different candidate could have been picked instead).
func isBacktrackable(l Label) bool { return l.Kind() == KindResponse }

// ---- construction ----

// discoverConflicts finds every already-constructed event that would
// conflict with a new event at (t, newPos) carrying label and deps: same
// program-order slot, or a same-witness non-reentrant Lock response, or a
// same-Notify non-broadcast Wait response.
func (es *EventStructure) discoverConflicts(t ThreadID, newPos int, label Label, deps []EventID) []Event {
	var conflicts []Event
	seen := make(map[EventID]bool)
	add := func(id EventID) {
		if seen[id] {
			return
		}
		seen[id] = true
		if e, ok := es.eventByID(id); ok {
			conflicts = append(conflicts, e)
		}
	}

	for _, id := range es.bySlot[slotKey{t: t, pos: newPos}] {
		add(id)
	}

	if resp, ok := label.(LockLabel); ok && resp.Kind() == KindResponse && !resp.IsReentrant() && len(deps) == 1 {
		for _, be := range es.events {
			if other, ok := be.Label.(LockLabel); ok && other.Kind() == KindResponse && !other.IsReentrant() &&
				len(be.Dependencies) == 1 && be.Dependencies[0] == deps[0] {
				add(be.ID)
			}
		}
	}

	if resp, ok := label.(WaitLabel); ok && resp.Kind() == KindResponse && len(deps) == 1 {
		if notify, ok := es.eventByID(deps[0]); ok {
			if n, ok := notify.Label.(NotifyLabel); ok && !n.Broadcast {
				for _, be := range es.events {
					if other, ok := be.Label.(WaitLabel); ok && other.Kind() == KindResponse &&
						len(be.Dependencies) == 1 && be.Dependencies[0] == deps[0] {
						add(be.ID)
					}
				}
			}
		}
	}

	return conflicts
}

// causallyBelowAny reports whether any of conflicts happens-before e,
// which makes e a CausalityViolation: an event cannot causally follow one
// of its own conflicting alternatives.
func causallyBelowAny(e Event, conflicts []Event) bool {
	for _, c := range conflicts {
		if c.HappensBefore(e) {
			return true
		}
	}
	return false
}

// construct builds and persists a new BacktrackableEvent: conflict
// discovery, causality check, clock and snapshot construction, and append
// to the ordered event list. It never mutates x — synchronizeBinary builds
// every candidate response against the same shared x, and only one of
// them (the one the caller actually chooses) may ever be added to it;
// callers that intend to commit the returned event call commitEvent or
// commitChosenResponse themselves.
//
// ok is false exactly when a CausalityViolation was detected: the caller
// must treat this as "skip this synchronization candidate", not as an
// error.
func (es *EventStructure) construct(t ThreadID, label Label, parent EventID, deps []EventID, x *Execution, pinned Frontier) (ev *BacktrackableEvent, ok bool, err error) {
	var parentPos int = -1
	var parentClock CausalityClock
	if parent != NoEvent {
		pe, found := x.source.eventByID(parent)
		if !found {
			return nil, false, NewInvariantViolation("EventStructure.construct", "parent %d not found", parent)
		}
		parentPos = pe.ThreadPosition
		parentClock = pe.CausalityClock
	}
	newPos := parentPos + 1

	conflicts := es.discoverConflicts(t, newPos, label, deps)

	candidatesForCausality := append([]EventID{parent}, deps...)
	for _, id := range candidatesForCausality {
		if id == NoEvent {
			continue
		}
		de, found := x.source.eventByID(id)
		if !found {
			return nil, false, NewInvariantViolation("EventStructure.construct", "dependency %d not found", id)
		}
		if causallyBelowAny(de, conflicts) {
			return nil, false, nil
		}
	}

	clock := parentClock.Clone()
	for _, id := range deps {
		de, _ := x.source.eventByID(id)
		clock = Join(clock, de.CausalityClock)
	}
	clock = clock.Bumped(t, newPos)

	preExec := x.Clone()
	preExec.CutConflicts(conflicts)
	preExec.CutDanglingRequestEvents()
	frontierSnapshot := preExec.Frontier()

	pinnedExec := executionFromFrontier(es, pinned)
	pinnedExec.CutConflicts(conflicts)
	mergeCausalityIntoExecution(&pinnedExec, es, clock)
	pinnedExec.CutDanglingRequestEvents()
	pinnedFrontier := pinnedExec.Frontier()

	id := EventID(len(es.events))
	event := Event{
		ID:             id,
		ThreadID:       t,
		ThreadPosition: newPos,
		Label:          label,
		Parent:         parent,
		Dependencies:   append([]EventID(nil), deps...),
		CausalityClock: clock,
	}
	if alloc, ok := es.allocationForLabel(label); ok {
		event.AllocationEvent = alloc
	} else {
		event.AllocationEvent = NoEvent
	}
	event.Source = NoEvent

	be := BacktrackableEvent{
		Event:            event,
		Visited:          false,
		FrontierSnapshot: frontierSnapshot,
		PinnedFrontier:   pinnedFrontier.With(t, id),
	}
	es.events = append(es.events, be)
	es.bySlot[slotKey{t: t, pos: newPos}] = append(es.bySlot[slotKey{t: t, pos: newPos}], id)

	return &es.events[id], true, nil
}

// canReplayNextEvent reports whether thread t's next program-order position
// (one past whatever x currently holds for t) already has a surviving event
// recorded against that exact parent — left over from an earlier
// exploration of this same causal history — and returns it for direct
// adoption instead of reconstruction.
//
// Re-running a registered thread body from the top on every exploration
// means its first several calls usually describe operations already
// settled by a prior run; constructing fresh events for them would append
// duplicate positions onto an already-decided thread history. Adopting the
// surviving occupant of the slot instead makes that replay exact: same
// event, same id, same causality clock. Truncate removes every event past
// the chosen backtrack point, so when a request has more than one surviving
// candidate response in the same slot, the highest-id one is always either
// the prior run's original choice (not yet backtracked past) or the new
// alternative just selected by HighestUnvisitedBacktrackable — never a
// stale sibling.
func (es *EventStructure) canReplayNextEvent(t ThreadID, x *Execution) (Event, bool) {
	parent := lastEventOrRoot(x, t)
	pos := 0
	if parent != NoEvent {
		pe, ok := es.eventByID(parent)
		if !ok {
			return Event{}, false
		}
		pos = pe.ThreadPosition + 1
	}
	ids := es.bySlot[slotKey{t: t, pos: pos}]
	for i := len(ids) - 1; i >= 0; i-- {
		e, ok := es.eventByID(ids[i])
		if ok && e.Parent == parent {
			return e, true
		}
	}
	return Event{}, false
}

// commitEvent adds e to x unless it is already part of it. Idempotent,
// since both replay adoption and fresh synchronization route through it for
// events that may or may not already be present.
func (es *EventStructure) commitEvent(e Event, x *Execution) error {
	if x.ContainsID(e.ID) {
		return nil
	}
	return x.Add(e)
}

// commitChosenResponse commits resp — the response an append operation is
// settling on, whether freshly synthesized or replayed — and marks it
// visited: a chosen alternative is no longer an unexplored backtrack point.
func (es *EventStructure) commitChosenResponse(resp Event, x *Execution) error {
	es.markVisited(resp.ID)
	return es.commitEvent(resp, x)
}

// markVisited flags id's BacktrackableEvent as chosen at least once; a
// visited response is never offered again by HighestUnvisitedBacktrackable.
func (es *EventStructure) markVisited(id EventID) {
	if be, ok := es.Backtrackable(id); ok {
		be.Visited = true
	}
}

func (es *EventStructure) allocationForLabel(label Label) (EventID, bool) {
	switch l := label.(type) {
	case ReadLabel:
		return es.allocations.lookup(l.Location.Object)
	case WriteLabel:
		return es.allocations.lookup(l.Location.Object)
	case LockLabel:
		return es.allocations.lookup(ObjectHandle(l.Mutex))
	case UnlockLabel:
		return es.allocations.lookup(ObjectHandle(l.Mutex))
	case WaitLabel:
		return es.allocations.lookup(ObjectHandle(l.Mutex))
	case NotifyLabel:
		return es.allocations.lookup(ObjectHandle(l.Mutex))
	default:
		return NoEvent, false
	}
}

// executionFromFrontier rebuilds an Execution whose frontier is exactly f,
// by walking each named event's parent chain back to its thread's root.
// Every event visited must already be present in es; this only
// reconstructs references, it never allocates new events.
func executionFromFrontier(es *EventStructure, f Frontier) Execution {
	x := newExecution(es)
	for t, id := range f {
		e, ok := es.eventByID(id)
		if !ok {
			continue
		}
		chain := make([]Event, 0, e.ThreadPosition+1)
		cur := e
		for {
			chain = append(chain, cur)
			if cur.Parent == NoEvent {
				break
			}
			p, ok := es.eventByID(cur.Parent)
			if !ok {
				break
			}
			cur = p
		}
		ids := make([]EventID, len(chain))
		for i, c := range chain {
			ids[len(chain)-1-i] = c.ID
		}
		x.threads.Set(t, ids)
	}
	return x
}

// mergeCausalityIntoExecution extends x, per thread named in clock, up to
// the event at that thread's recorded position — used to merge in the
// causality frontier when building a pinned-event snapshot.
func mergeCausalityIntoExecution(x *Execution, es *EventStructure, clock CausalityClock) {
	for t, pos := range clock {
		if pos < 0 {
			continue
		}
		existing, hasExisting := x.LastEvent(t)
		if hasExisting && existing.ThreadPosition >= pos {
			continue
		}
		ids, _ := x.threads.Get(t)
		var chain []EventID
		for p := len(ids); p <= pos; p++ {
			// walk forward isn't possible without a position index; instead
			// locate the event at (t, pos) by following the existing
			// execution in es globally via the per-slot index.
			found := false
			for _, id := range es.bySlot[slotKey{t: t, pos: p}] {
				chain = append(chain, id)
				found = true
				break
			}
			if !found {
				break
			}
		}
		if len(chain) > 0 {
			x.threads.Set(t, append(append([]EventID(nil), ids...), chain...))
		}
	}
}

// ---- synchronization ----

// candidateEvents returns every event in x eligible to synchronize with e:
// not a strict causal predecessor of e (except a Write offered to a Read,
// which may observe a write in its causal past), and not pinned unless it
// is itself a blocked dangling request.
func (es *EventStructure) candidateEvents(e Event, x *Execution, pinned Frontier) []Event {
	var out []Event
	for _, c := range x.All() {
		if c.ID == e.ID {
			continue
		}
		if c.HappensBefore(e) {
			_, isRead := e.Label.(ReadLabel)
			_, isWrite := c.Label.(WriteLabel)
			if !isRead || !isWrite {
				continue
			}
		}
		if es.isPinned(c, pinned) && !es.isBlockedDanglingRequest(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (es *EventStructure) isPinned(e Event, pinned Frontier) bool {
	pinnedID, ok := pinned.Get(e.ThreadID)
	if !ok {
		return false
	}
	pe, ok := es.eventByID(pinnedID)
	if !ok {
		return false
	}
	return e.ThreadPosition <= pe.ThreadPosition
}

func (es *EventStructure) isBlockedDanglingRequest(e Event) bool {
	if !e.IsRequest() || !e.Label.IsBlocking() {
		return false
	}
	resp, ok := es.dangling[e.ID]
	return ok && resp == NoEvent
}

// Synchronize attempts to pair a newly appended Request/Send event e with
// every compatible candidate already in scope. It returns every created
// Response (in creation order) and, for binary syncs, the events are
// additionally sorted so the deterministic "last" one is last (ordered by
// candidate dependency id ascending).
func (es *EventStructure) Synchronize(e Event, x *Execution, pinned Frontier, reads readsFromSource) ([]Event, error) {
	candidates := es.candidateEvents(e, x, pinned)

	switch e.Label.SyncType() {
	case SyncBinary:
		candidates = es.restrictBinaryCandidates(e, x, candidates, reads)
		return es.synchronizeBinary(e, candidates, x, pinned)
	case SyncBarrier:
		return es.synchronizeBarrier(e, candidates, x, pinned)
	default:
		return nil, nil
	}
}

// restrictBinaryCandidates applies the reentrant-lock, park/unpark target
// and read-request narrowing rules. A reentrant Unlock never gets here:
// AddUnlock appends it without synchronizing.
func (es *EventStructure) restrictBinaryCandidates(e Event, x *Execution, candidates []Event, reads readsFromSource) []Event {
	_, isPark := e.Label.(ParkLabel)
	unpark, isUnpark := e.Label.(UnparkLabel)
	if isPark || isUnpark {
		var out []Event
		for _, c := range candidates {
			if u, ok := c.Label.(UnparkLabel); isPark && ok && u.Target == e.ThreadID {
				out = append(out, c)
			} else if _, ok := c.Label.(ParkLabel); isUnpark && ok && c.ThreadID == unpark.Target {
				out = append(out, c)
			}
		}
		return out
	}

	if lock, ok := e.Label.(LockLabel); ok && lock.IsReentrant() {
		allocID, ok := es.allocations.lookup(ObjectHandle(lock.Mutex))
		if !ok {
			return nil
		}
		for _, c := range candidates {
			if c.ID == allocID {
				return []Event{c}
			}
		}
		return nil
	}

	if read, ok := e.Label.(ReadLabel); ok {
		return es.restrictReadCandidates(e, x, read, candidates, reads)
	}

	return candidates
}

func (es *EventStructure) restrictReadCandidates(e Event, x *Execution, read ReadLabel, candidates []Event, reads readsFromSource) []Event {
	floor, hasFloor := staleWriteFloor(x, e.ThreadID, read.Location, reads.ReadsFrom())

	// The observation frontier is built from the candidate writes
	// themselves, not from e's own causality clock: a read racing with a
	// write on a thread it has never synchronized with still needs to see
	// that write as a candidate, and e's clock carries no entry for a
	// thread it has no causal link to yet.
	view := make(Frontier)
	for _, c := range candidates {
		w, isWrite := c.Label.(WriteLabel)
		if !isWrite || w.Location != read.Location {
			continue
		}
		if cur, ok := view[c.ThreadID]; !ok {
			view[c.ThreadID] = c.ID
		} else if curEvt, found := x.source.eventByID(cur); found && curEvt.ThreadPosition < c.ThreadPosition {
			view[c.ThreadID] = c.ID
		}
	}
	racy := racyWrites(x, view)
	racySet := make(map[EventID]bool, len(racy))
	for _, r := range racy {
		racySet[r.ID] = true
	}

	var out []Event
	for _, c := range candidates {
		w, isWrite := c.Label.(WriteLabel)
		if !isWrite || w.Location != read.Location {
			continue
		}
		if hasFloor && c.HappensBefore(floor) {
			continue
		}
		if !racySet[c.ID] {
			// not racy-maximal: either dominated by another visible
			// write, or not in this thread-frontier's view at all.
			continue
		}
		out = append(out, c)
	}
	return out
}

type readsFromSource interface {
	ReadsFrom() map[EventID]EventID
}

func (es *EventStructure) synchronizeBinary(e Event, candidates []Event, x *Execution, pinned Frontier) ([]Event, error) {
	type pair struct {
		dep EventID
		c   Event
	}
	var pairs []pair
	for _, c := range candidates {
		if Syncable(e.Label, c.Label) {
			pairs = append(pairs, pair{dep: c.ID, c: c})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].dep < pairs[j].dep })

	var created []Event
	for _, p := range pairs {
		respLabel, _ := Sync(e.Label, p.c.Label)
		reqEvt, sendEvt := requestAndSend(e, p.c)
		be, ok, err := es.construct(reqEvt.ThreadID, respLabel, reqEvt.ID, []EventID{sendEvt.ID}, x, pinned)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		created = append(created, be.Event)
		es.maybeResolveDangling(reqEvt.ID, be.ID)
	}
	return created, nil
}

func requestAndSend(a, b Event) (req, send Event) {
	if a.IsRequest() {
		return a, b
	}
	return b, a
}

func (es *EventStructure) synchronizeBarrier(e Event, candidates []Event, x *Execution, pinned Frontier) ([]Event, error) {
	join, ok := e.Label.(ThreadJoinLabel)
	if !ok {
		// a barrier Send (ThreadFinish) arrived: check whether it
		// unblocks an existing dangling Join request.
		return es.tryUnblockDanglingJoins(e, x, pinned)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	acc := NewBarrierAccumulator(join)
	for _, c := range candidates {
		acc.Offer(c)
	}
	if !acc.Unblocked() {
		return nil, nil
	}
	respLabel := acc.Response()
	be, ok2, err := es.construct(e.ThreadID, respLabel, e.ID, acc.Contributors(), x, pinned)
	if err != nil {
		return nil, err
	}
	if !ok2 {
		return nil, nil
	}
	return []Event{be.Event}, nil
}

// tryUnblockDanglingJoins handles a freshly-appended ThreadFinish Send: it
// may be the last contributor a previously-blocked ThreadJoin request was
// waiting on.
func (es *EventStructure) tryUnblockDanglingJoins(finish Event, x *Execution, pinned Frontier) ([]Event, error) {
	var created []Event
	for reqID, resp := range es.dangling {
		if resp != NoEvent {
			continue
		}
		reqEvt, ok := es.eventByID(reqID)
		if !ok {
			continue
		}
		join, ok := reqEvt.Label.(ThreadJoinLabel)
		if !ok {
			continue
		}
		candidates := es.candidateEvents(reqEvt, x, pinned)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
		acc := NewBarrierAccumulator(join)
		for _, c := range candidates {
			acc.Offer(c)
		}
		if !acc.Unblocked() {
			continue
		}
		respLabel := acc.Response()
		be, ok, err := es.construct(reqEvt.ThreadID, respLabel, reqEvt.ID, acc.Contributors(), x, pinned)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		created = append(created, be.Event)
		es.maybeResolveDangling(reqID, be.ID)
	}
	_ = finish
	return created, nil
}

func (es *EventStructure) maybeResolveDangling(reqID, respID EventID) {
	if cur, tracked := es.dangling[reqID]; tracked && cur == NoEvent {
		es.dangling[reqID] = respID
	}
}

// MarkDangling records req as blocked-with-no-response-yet.
func (es *EventStructure) MarkDangling(req EventID) {
	if _, ok := es.dangling[req]; !ok {
		es.dangling[req] = NoEvent
	}
}

// DanglingResponse returns the recorded unblocking response for req, if
// any has been discovered.
func (es *EventStructure) DanglingResponse(req EventID) (EventID, bool) {
	resp, ok := es.dangling[req]
	return resp, ok && resp != NoEvent
}

// IsBlockedRequest reports whether req is tracked as a dangling request at
// all (whether or not a response has since been found).
func (es *EventStructure) IsBlockedRequest(req EventID) bool {
	_, ok := es.dangling[req]
	return ok
}

// ClearDangling drops all dangling-request bookkeeping between
// explorations.
func (es *EventStructure) ClearDangling() { es.dangling = make(map[EventID]EventID) }

// eventLogger is the minimal structured-logging surface the core needs;
// satisfied by *StructuredLogger (see logging.go).
type eventLogger interface {
	logExplorationStart(root EventID)
	logInconsistency(inc *Inconsistency)
	logAbort(reason string)
}

package eventcore

// AppendResult reports what happened when a new Send or Request was added
// to the event structure: the event itself, every Response it synchronized
// into existence (possibly none), and — when at least one Response was
// created — which one the exploration should proceed with right now.
type AppendResult struct {
	Event     Event
	Responses []Event
	Chosen    *Event
	Blocked   bool

	// Replayed is true when Event (and, if set, Chosen) were adopted from
	// a surviving event of an earlier exploration of this same causal
	// history rather than freshly synthesized.
	Replayed bool
}

func lastEventOrRoot(x *Execution, t ThreadID) EventID {
	if last, ok := x.LastEvent(t); ok {
		return last.ID
	}
	return NoEvent
}

// addSend appends a non-blocking Send-kind label to thread t's program
// order, then attempts synchronization against any already-dangling
// requests it might satisfy.
//
// If thread t's next position already has a surviving event from a
// previous exploration of this same causal history, that event is
// replayed (adopted) directly instead of being reconstructed — see
// canReplayNextEvent. A replayed Send never re-synchronizes: whatever
// other thread it would unblock adopts its own already-recorded response
// independently, on its own turn.
func (es *EventStructure) addSend(t ThreadID, label Label, x *Execution, pinned Frontier, reads readsFromSource) (AppendResult, error) {
	if replayed, ok := es.canReplayNextEvent(t, x); ok {
		if err := es.commitEvent(replayed, x); err != nil {
			return AppendResult{}, err
		}
		if alloc, isAlloc := replayed.Label.(ObjectAllocationLabel); isAlloc {
			es.allocations.record(alloc.Object, replayed.ID)
		}
		return AppendResult{Event: replayed, Replayed: true}, nil
	}

	parent := lastEventOrRoot(x, t)
	be, ok, err := es.construct(t, label, parent, nil, x, pinned)
	if err != nil {
		return AppendResult{}, err
	}
	if !ok {
		return AppendResult{}, NewInvariantViolation("EventStructure.addSend", "thread %d: causality violation appending a Send", t)
	}
	if err := es.commitEvent(be.Event, x); err != nil {
		return AppendResult{}, err
	}
	if alloc, isAlloc := label.(ObjectAllocationLabel); isAlloc {
		es.allocations.record(alloc.Object, be.ID)
	}
	result := AppendResult{Event: be.Event}
	if label.SyncType() == SyncNone {
		return result, nil
	}
	responses, err := es.Synchronize(be.Event, x, pinned, reads)
	if err != nil {
		return result, err
	}
	result.Responses = responses
	if len(responses) > 0 {
		chosen := responses[len(responses)-1]
		result.Chosen = &chosen
		if err := es.commitChosenResponse(chosen, x); err != nil {
			return result, err
		}
	}
	return result, nil
}

// addRequest appends a Request-kind label. If it is blocking and no
// candidate Send is yet available, it is recorded as a dangling request
// rather than rejected.
//
// Both the request's own event and its eventual response are checked for
// replay independently (see canReplayNextEvent): a prior run's request is
// adopted first, then — if this exact request also already has a
// surviving response — that response is adopted too, without touching
// Synchronize at all. Replay and fresh synthesis compose seamlessly:
// once either check misses, the rest of this call proceeds exactly as it
// would on a first exploration.
func (es *EventStructure) addRequest(t ThreadID, label Label, x *Execution, pinned Frontier, reads readsFromSource) (AppendResult, error) {
	var reqEvent Event
	replayedReq := false
	if replayed, ok := es.canReplayNextEvent(t, x); ok {
		if err := es.commitEvent(replayed, x); err != nil {
			return AppendResult{}, err
		}
		reqEvent = replayed
		replayedReq = true
	} else {
		parent := lastEventOrRoot(x, t)
		be, ok, err := es.construct(t, label, parent, nil, x, pinned)
		if err != nil {
			return AppendResult{}, err
		}
		if !ok {
			return AppendResult{}, NewInvariantViolation("EventStructure.addRequest", "thread %d: causality violation appending a Request", t)
		}
		if err := es.commitEvent(be.Event, x); err != nil {
			return AppendResult{}, err
		}
		reqEvent = be.Event
	}
	result := AppendResult{Event: reqEvent, Replayed: replayedReq}

	if replayedResp, ok := es.canReplayNextEvent(t, x); ok {
		if err := es.commitChosenResponse(replayedResp, x); err != nil {
			return result, err
		}
		result.Chosen = &replayedResp
		result.Responses = []Event{replayedResp}
		result.Replayed = true
		return result, nil
	}

	responses, err := es.Synchronize(reqEvent, x, pinned, reads)
	if err != nil {
		return result, err
	}
	result.Responses = responses

	if len(responses) == 0 {
		if label.IsBlocking() {
			es.MarkDangling(reqEvent.ID)
			result.Blocked = true
		}
		return result, nil
	}

	chosen := responses[len(responses)-1]
	result.Chosen = &chosen
	if label.IsBlocking() {
		es.MarkDangling(reqEvent.ID)
		es.maybeResolveDangling(reqEvent.ID, chosen.ID)
	}
	if err := es.commitChosenResponse(chosen, x); err != nil {
		return result, err
	}
	return result, nil
}

// AdoptDanglingResponse commits a previously-discovered-but-unadopted
// Response for a dangling request onto x — used when the driver revisits
// a thread that had issued a blocking request before its response existed.
func (es *EventStructure) AdoptDanglingResponse(reqID EventID, x *Execution) (Event, bool, error) {
	respID, ok := es.DanglingResponse(reqID)
	if !ok {
		return Event{}, false, nil
	}
	resp, found := es.eventByID(respID)
	if !found {
		return Event{}, false, NewInvariantViolation("EventStructure.AdoptDanglingResponse", "dangling response %d for request %d not found", respID, reqID)
	}
	if err := es.commitChosenResponse(resp, x); err != nil {
		return Event{}, false, err
	}
	return resp, true, nil
}

// ---- per-operation convenience wrappers ----

// AddInitialization appends the single root event every exploration starts
// from; called once per driver lifetime, never replayed.
func (es *EventStructure) AddInitialization(mainThread ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	be, ok, err := es.construct(InitThreadID, NewInitializationLabel(mainThread), NoEvent, nil, x, pinned)
	if err != nil {
		return AppendResult{}, err
	}
	if !ok {
		return AppendResult{}, NewInvariantViolation("EventStructure.AddInitialization", "root event rejected")
	}
	if err := es.commitEvent(be.Event, x); err != nil {
		return AppendResult{}, err
	}
	return AppendResult{Event: be.Event}, nil
}

func (es *EventStructure) AddObjectAllocation(t ThreadID, obj ObjectHandle, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(t, NewObjectAllocationLabel(obj), x, pinned, nil)
}

func (es *EventStructure) AddThreadStart(t ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(t, NewThreadStartLabel(t), x, pinned, nil)
}

func (es *EventStructure) AddThreadFork(parentThread, child ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(parentThread, NewThreadForkLabel(child), x, pinned, nil)
}

func (es *EventStructure) AddThreadFinish(t ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(t, NewThreadFinishLabel(t), x, pinned, nil)
}

func (es *EventStructure) AddThreadJoin(t ThreadID, targets ThreadSet, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addRequest(t, NewThreadJoinRequestLabel(targets), x, pinned, nil)
}

func (es *EventStructure) AddRead(t ThreadID, loc MemoryLocation, valueType string, exclusive bool, x *Execution, pinned Frontier, reads readsFromSource, init MemoryInitializer) (AppendResult, error) {
	if init != nil {
		if err := es.ensureInitialWrite(loc, valueType, init, x, pinned); err != nil {
			return AppendResult{}, err
		}
	}
	return es.addRequest(t, NewReadRequestLabel(loc, valueType, exclusive), x, pinned, reads)
}

func (es *EventStructure) AddWrite(t ThreadID, loc MemoryLocation, valueType string, value any, exclusive bool, x *Execution, pinned Frontier, reads readsFromSource) (AppendResult, error) {
	return es.addSend(t, NewWriteLabel(loc, valueType, value, exclusive), x, pinned, reads)
}

func (es *EventStructure) AddLock(t ThreadID, m MutexHandle, depth int, waitLock bool, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addRequest(t, NewLockRequestLabel(m, depth, waitLock), x, pinned, nil)
}

// AddUnlock appends an Unlock send. A reentrant-exit unlock (nested
// release) never participates in synchronization — it is a same-thread
// bookkeeping event only.
func (es *EventStructure) AddUnlock(t ThreadID, m MutexHandle, depth int, x *Execution, pinned Frontier) (AppendResult, error) {
	label := NewUnlockLabel(m, depth)
	if label.IsReentrantExit() {
		if replayed, ok := es.canReplayNextEvent(t, x); ok {
			if err := es.commitEvent(replayed, x); err != nil {
				return AppendResult{}, err
			}
			return AppendResult{Event: replayed, Replayed: true}, nil
		}
		parent := lastEventOrRoot(x, t)
		be, ok, err := es.construct(t, label, parent, nil, x, pinned)
		if err != nil {
			return AppendResult{}, err
		}
		if !ok {
			return AppendResult{}, NewInvariantViolation("EventStructure.AddUnlock", "thread %d: causality violation appending a reentrant unlock", t)
		}
		if err := es.commitEvent(be.Event, x); err != nil {
			return AppendResult{}, err
		}
		return AppendResult{Event: be.Event}, nil
	}
	return es.addSend(t, label, x, pinned, nil)
}

func (es *EventStructure) AddWait(t ThreadID, m MutexHandle, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addRequest(t, NewWaitRequestLabel(m), x, pinned, nil)
}

func (es *EventStructure) AddNotify(t ThreadID, m MutexHandle, broadcast bool, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(t, NewNotifyLabel(m, broadcast), x, pinned, nil)
}

func (es *EventStructure) AddPark(t ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addRequest(t, NewParkRequestLabel(), x, pinned, nil)
}

func (es *EventStructure) AddUnpark(t ThreadID, target ThreadID, x *Execution, pinned Frontier) (AppendResult, error) {
	return es.addSend(t, NewUnparkLabel(target), x, pinned, nil)
}

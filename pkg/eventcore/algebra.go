package eventcore

// Syncable reports whether sync(a, b) is defined. It is symmetric by
// construction, since Sync itself normalizes argument order before
// dispatching.
func Syncable(a, b Label) bool {
	_, ok := Sync(a, b)
	return ok
}

// Sync composes a Request/Send (or, for a Lock, a Request/Allocation)
// pair into a Response label. The result's Kind is always KindResponse
// when ok is true. Sync is commutative: Sync(a, b) and Sync(b, a) agree.
//
// Binary pairs implemented: Read/Write (same location), Lock/Unlock (same
// mutex, non-reentrant), Lock/ObjectAllocation (any depth), Wait/Notify
// (same mutex), Park/Unpark (any pair: a ParkLabel does not carry its
// thread, so the Unpark target is matched in
// EventStructure.restrictBinaryCandidates). ThreadJoin/ThreadFinish is
// a barrier and is composed via FoldBarrier, not Sync, because it may need
// more than two participants.
func Sync(a, b Label) (Label, bool) {
	req, send, ok := asRequestSend(a, b)
	if !ok {
		return nil, false
	}
	switch r := req.(type) {
	case ReadLabel:
		if w, ok := send.(WriteLabel); ok && w.Location == r.Location {
			resp := r
			resp.base = resp.base.asResponse()
			resp.Value = w.Value
			return resp, true
		}
	case LockLabel:
		switch s := send.(type) {
		case UnlockLabel:
			if !r.IsReentrant() && s.Mutex == r.Mutex {
				resp := r
				resp.base = resp.base.asResponse()
				resp.Count = 1
				return resp, true
			}
		case ObjectAllocationLabel:
			// A mutex's own allocation event also stands in for "free since
			// creation": the very first depth-1 acquisition of a mutex no
			// one has unlocked yet synchronizes here exactly like a
			// reentrant acquisition does, just with Count settling at 1
			// instead of the current nesting depth.
			if ObjectHandle(r.Mutex) == s.Object {
				resp := r
				resp.base = resp.base.asResponse()
				resp.Count = r.Depth
				return resp, true
			}
		}
	case WaitLabel:
		if n, ok := send.(NotifyLabel); ok && n.Mutex == r.Mutex {
			resp := r
			resp.base = resp.base.asResponse()
			return resp, true
		}
	case ParkLabel:
		if _, ok := send.(UnparkLabel); ok {
			resp := r
			resp.base = resp.base.asResponse()
			return resp, true
		}
	}
	return nil, false
}

// asRequestSend normalizes an unordered pair into (request, send), failing
// if the pair isn't exactly one of each.
func asRequestSend(a, b Label) (req, send Label, ok bool) {
	switch {
	case a.Kind() == KindRequest && b.Kind() == KindSend:
		return a, b, true
	case b.Kind() == KindRequest && a.Kind() == KindSend:
		return b, a, true
	default:
		return nil, nil, false
	}
}

// BarrierAccumulator folds the Send-kind candidates of a barrier Request
// left to right, the way ThreadJoin accumulates contributing ThreadFinish
// sends. It is associative: folding the same contributing sends in any order that
// respects left-to-right accumulation yields the same final state.
type BarrierAccumulator struct {
	request      ThreadJoinLabel
	remaining    ThreadSet
	contributors []EventID
}

// NewBarrierAccumulator starts folding a ThreadJoin request.
func NewBarrierAccumulator(req ThreadJoinLabel) *BarrierAccumulator {
	remaining := make(ThreadSet, len(req.Targets))
	for t := range req.Targets {
		remaining[t] = struct{}{}
	}
	return &BarrierAccumulator{request: req, remaining: remaining}
}

// Offer folds in one candidate Send event. It returns true if the send
// contributed (i.e. its thread was among the still-outstanding targets).
func (b *BarrierAccumulator) Offer(send Event) bool {
	fin, ok := send.Label.(ThreadFinishLabel)
	if !ok {
		return false
	}
	if _, pending := b.remaining[fin.Thread]; !pending {
		return false
	}
	delete(b.remaining, fin.Thread)
	b.contributors = append(b.contributors, send.ID)
	return true
}

// Unblocked reports whether every target thread has contributed a Finish.
func (b *BarrierAccumulator) Unblocked() bool { return len(b.remaining) == 0 }

// Response builds the Response label once Unblocked reports true.
func (b *BarrierAccumulator) Response() ThreadJoinLabel {
	resp := b.request
	resp.base = resp.base.asResponse()
	return resp
}

// Contributors returns the ids of every Send event that contributed,
// ordered by the sequence they were offered in.
func (b *BarrierAccumulator) Contributors() []EventID {
	return append([]EventID(nil), b.contributors...)
}

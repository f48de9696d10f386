package eventcore

// ThreadHandle is the only way user code under exploration touches shared
// state. Every method corresponds to one Label family and blocks the
// calling goroutine until the driver's scheduler has both let it run and
// resolved any blocking synchronization the operation required.
type ThreadHandle struct {
	id ThreadID
	d  *ExplorationDriver
}

// ID returns this handle's thread id.
func (h *ThreadHandle) ID() ThreadID { return h.id }

// step runs attempt under the driver lock, then yields control back to the
// scheduler exactly once per call to this method — whether attempt
// resolved immediately or is still a dangling request — so that every
// operation is a distinct scheduling point an alternate interleaving could
// have chosen differently.
//
// If attempt's request is blocking and unresolved, step retries it on
// every subsequent turn the scheduler grants this thread, without
// reissuing the request, until the request's dangling response appears.
func (h *ThreadHandle) step(attempt func() (AppendResult, error)) AppendResult {
	st := h.d.states[h.id]
	for {
		h.d.mu.Lock()
		if h.d.aborted != nil {
			h.d.mu.Unlock()
			return AppendResult{}
		}

		var result AppendResult
		settled := false

		if st.pending != NoEvent {
			if respID, resolved := h.d.es.DanglingResponse(st.pending); resolved {
				resp, _ := h.d.es.eventByID(respID)
				if err := h.d.es.commitChosenResponse(resp, h.d.x); err != nil {
					h.d.aborted = NewInconsistency("driver", NoEvent, "%v", err)
				} else {
					h.d.checkEvent(resp)
					st.pending = NoEvent
					result = AppendResult{Event: resp, Chosen: &resp}
					settled = true
				}
			}
		} else {
			res, err := attempt()
			switch {
			case err != nil:
				h.d.aborted = NewInconsistency("driver", NoEvent, "%v", err)
			case h.d.checker.Detected() != nil:
				result = res
				settled = true
			case res.Blocked:
				h.d.checkEvent(res.Event)
				st.pending = res.Event.ID
			default:
				h.d.checkEvent(res.Event)
				if res.Chosen != nil && h.d.aborted == nil {
					h.d.checkEvent(*res.Chosen)
				}
				h.d.notePlayed(res)
				result = res
				settled = true
			}
		}

		h.d.mu.Unlock()

		st.stepDone <- struct{}{}
		<-st.resume

		if settled || h.d.aborted != nil {
			return result
		}
	}
}

func (h *ThreadHandle) x() *Execution   { return h.d.x }
func (h *ThreadHandle) pinned() Frontier { return h.d.pinned }

// Read issues a Read of loc and returns the value observed.
func (h *ThreadHandle) Read(loc MemoryLocation, valueType string, exclusive bool) any {
	res := h.step(func() (AppendResult, error) {
		return h.d.es.AddRead(h.id, loc, valueType, exclusive, h.x(), h.pinned(), h.d.sc(), h.d.cfg.MemoryInitializer)
	})
	if res.Chosen != nil {
		if r, ok := res.Chosen.Label.(ReadLabel); ok {
			return r.Value
		}
	}
	return nil
}

// Write issues a Write of value to loc.
func (h *ThreadHandle) Write(loc MemoryLocation, valueType string, value any, exclusive bool) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddWrite(h.id, loc, valueType, value, exclusive, h.x(), h.pinned(), h.d.sc())
	})
}

// AllocateObject records a fresh heap allocation and returns its handle.
func (h *ThreadHandle) AllocateObject() ObjectHandle {
	obj := NewObjectHandle()
	h.step(func() (AppendResult, error) {
		return h.d.es.AddObjectAllocation(h.id, obj, h.x(), h.pinned())
	})
	return obj
}

// Lock acquires m, blocking until it is free. depth must be the caller's
// current nesting depth on m plus one (1 for a fresh acquisition).
func (h *ThreadHandle) Lock(m MutexHandle, depth int) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddLock(h.id, m, depth, false, h.x(), h.pinned())
	})
}

// Unlock releases m. depth mirrors the matching Lock's depth; depth > 1 is
// a reentrant exit and never blocks or synchronizes.
func (h *ThreadHandle) Unlock(m MutexHandle, depth int) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddUnlock(h.id, m, depth, h.x(), h.pinned())
	})
}

// Wait blocks until a matching Notify on m wakes this thread. It records
// only the Wait request and its response: no Unlock of m before the wait
// and no re-acquiring Lock after it.
func (h *ThreadHandle) Wait(m MutexHandle) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddWait(h.id, m, h.x(), h.pinned())
	})
}

// Notify wakes one (broadcast=false) or every (broadcast=true) thread
// waiting on m.
func (h *ThreadHandle) Notify(m MutexHandle, broadcast bool) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddNotify(h.id, m, broadcast, h.x(), h.pinned())
	})
}

// Park blocks until a permit is available (deposited by a matching
// Unpark), consuming it.
func (h *ThreadHandle) Park() {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddPark(h.id, h.x(), h.pinned())
	})
}

// Unpark deposits a permit for target, unblocking a pending Park
// immediately if one exists.
func (h *ThreadHandle) Unpark(target ThreadID) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddUnpark(h.id, target, h.x(), h.pinned())
	})
}

// Fork starts a new thread with the given id and body, schedulable
// alongside every other thread from this point on.
func (h *ThreadHandle) Fork(child ThreadID, body ThreadBody) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddThreadFork(h.id, child, h.x(), h.pinned())
	})
	h.d.mu.Lock()
	h.d.bodies[child] = body
	st := &threadState{resume: make(chan struct{}), stepDone: make(chan struct{}), pending: NoEvent}
	h.d.states[child] = st
	h.d.mu.Unlock()

	go func() {
		<-st.resume
		childHandle := &ThreadHandle{id: child, d: h.d}
		body(childHandle)
		h.d.mu.Lock()
		if h.d.aborted == nil {
			if res, err := h.d.es.AddThreadFinish(child, h.d.x, h.d.pinned); err != nil {
				h.d.aborted = NewInconsistency("driver", NoEvent, "%v", err)
			} else {
				h.d.checkEvent(res.Event)
				h.d.notePlayed(res)
			}
		}
		st.finished = true
		h.d.mu.Unlock()
		st.stepDone <- struct{}{}
	}()
}

// Join blocks until every thread in targets has finished.
func (h *ThreadHandle) Join(targets ...ThreadID) {
	h.step(func() (AppendResult, error) {
		return h.d.es.AddThreadJoin(h.id, NewThreadSet(targets...), h.x(), h.pinned())
	})
}

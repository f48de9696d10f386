package eventcore

import "sync"

// ThreadBody is user code run under exploration. It receives a handle bound
// to its own thread id and issues memory/synchronization operations through
// it; the driver suspends the calling goroutine between operations until
// the scheduler picks it to run again.
type ThreadBody func(h *ThreadHandle)

// Config controls an ExplorationDriver. The zero value is a usable default:
// plain sequential consistency, atomicity checking on, no logger, no
// execution cap.
type Config struct {
	ReleaseAcquire   bool
	DisableAtomicity bool
	MaxExecutions    int // 0 means unbounded
	Logger           eventLogger

	// MemoryInitializer supplies a location's value when a thread reads
	// it with no write to it in the current execution. With a nil
	// initializer such a read does not block; it returns nil.
	MemoryInitializer MemoryInitializer
}

// ExplorationResult records the outcome of one completed or aborted
// exploration.
type ExplorationResult struct {
	RootEvent     EventID
	EventCount    int
	Inconsistency *Inconsistency
	Completed     bool // true if every thread ran to ThreadFinish with no dangling requests left
}

// ExplorationDriver owns one EventStructure across many explorations,
// replaying common prefixes and branching at the highest unvisited
// BacktrackableEvent each time, until none remain.
type ExplorationDriver struct {
	mu sync.Mutex

	es      *EventStructure
	checker *CompositeChecker
	cfg     Config

	x      *Execution
	pinned Frontier

	// playedFrontier records, per thread, the highest-position event this
	// exploration has reached by replaying (adopting) a surviving event
	// from an earlier run of the same causal history rather than
	// reconstructing it fresh. It only ever grows during replay; once a
	// thread's next call misses canReplayNextEvent, that thread's entry
	// stops advancing and the thread proceeds under ordinary fresh
	// synthesis for the remainder of the run.
	playedFrontier Frontier

	// threadSwitches counts how many times the scheduler moved control to
	// a different thread than the one that just ran — the runtime-side
	// half of the replay/scheduling handoff (internalThreadSwitchCallback).
	threadSwitches int

	bodies map[ThreadID]ThreadBody
	states map[ThreadID]*threadState

	aborted *Inconsistency
}

// threadState is per-exploration scheduling bookkeeping for one registered
// thread. pending names a blocking Request this thread issued that has not
// yet found a Response; the scheduler excludes it from pickSchedulable
// until that resolves.
type threadState struct {
	resume   chan struct{}
	stepDone chan struct{}
	started  bool
	finished bool
	pending  EventID
}

// NewExplorationDriver builds a driver with its own fresh EventStructure.
func NewExplorationDriver(cfg Config) *ExplorationDriver {
	sc := NewSequentialConsistencyChecker(cfg.ReleaseAcquire)
	var checkers []Checker
	if !cfg.DisableAtomicity {
		checkers = append(checkers, NewAtomicityChecker())
	}
	checkers = append(checkers, sc)

	d := &ExplorationDriver{
		es:      NewEventStructure(),
		checker: NewCompositeChecker(checkers...),
		cfg:     cfg,
		bodies:  make(map[ThreadID]ThreadBody),
		states:  make(map[ThreadID]*threadState),
	}
	d.es.SetLogger(cfg.Logger)
	return d
}

// sc returns the driver's sequential-consistency checker, used as the
// readsFromSource consulted by read-candidate filtering.
func (d *ExplorationDriver) sc() *SequentialConsistencyChecker {
	for _, c := range d.checker.checkers {
		if sc, ok := c.(*SequentialConsistencyChecker); ok {
			return sc
		}
	}
	return nil
}

// RegisterThread associates a thread id with the body it should run on
// every exploration. User threads start at FirstUserThreadID and up;
// MainThreadID/InitThreadID are reserved for driver-internal bookkeeping.
func (d *ExplorationDriver) RegisterThread(t ThreadID, body ThreadBody) {
	d.bodies[t] = body
}

// Structure exposes the underlying EventStructure.
func (d *ExplorationDriver) Structure() *EventStructure { return d.es }

// Explore runs explorations until every BacktrackableEvent has been
// visited or cfg.MaxExecutions is reached, returning one ExplorationResult
// per run.
func (d *ExplorationDriver) Explore() ([]ExplorationResult, error) {
	var results []ExplorationResult
	for {
		if d.cfg.MaxExecutions > 0 && len(results) >= d.cfg.MaxExecutions {
			break
		}
		res, more, err := d.runOneExploration(len(results) == 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if !more {
			break
		}
	}
	return results, nil
}

// runOneExploration performs a single full run: pick a backtrack point (or
// the root, on the very first call), resume from its recorded snapshot,
// then run threads cooperatively until completion or inconsistency. more
// reports whether any unvisited BacktrackableEvent remains afterward.
func (d *ExplorationDriver) runOneExploration(first bool) (ExplorationResult, bool, error) {
	d.mu.Lock()
	root, hasRoot := d.initializeExploration(first)
	d.mu.Unlock()
	if !hasRoot {
		return ExplorationResult{}, false, nil
	}

	if d.cfg.Logger != nil {
		d.cfg.Logger.logExplorationStart(root)
	}

	d.runThreadsToCompletion()

	d.mu.Lock()
	defer d.mu.Unlock()

	inc := d.checker.Detected()
	if inc == nil {
		inc = d.aborted
	}
	result := ExplorationResult{
		RootEvent:     root,
		EventCount:    d.es.Len(),
		Inconsistency: inc,
		Completed:     inc == nil && d.allThreadsFinished(),
	}
	if result.Inconsistency != nil && d.cfg.Logger != nil {
		d.cfg.Logger.logInconsistency(result.Inconsistency)
	}

	_, more := d.es.HighestUnvisitedBacktrackable()
	return result, more, nil
}

// initializeExploration prepares d.x/d.pinned/thread states for the next
// run. On the first call it seeds a fresh Initialization event; on later
// calls it picks the highest-id unvisited BacktrackableEvent, truncates
// the structure past it (abandoning every alternative explored beyond
// that point) and resumes from its FrontierSnapshot/PinnedFrontier.
func (d *ExplorationDriver) initializeExploration(first bool) (EventID, bool) {
	d.aborted = nil
	d.es.ClearDangling()
	d.states = make(map[ThreadID]*threadState)
	d.playedFrontier = Frontier{}

	if first {
		x := newExecution(d.es)
		d.x = &x
		d.pinned = Frontier{}
		res, err := d.es.AddInitialization(MainThreadID, d.x, d.pinned)
		if err != nil {
			panic(err)
		}
		d.pinned = d.pinned.With(InitThreadID, res.Event.ID)
		d.checker.Reset(d.x)
		return res.Event.ID, true
	}

	be, ok := d.es.HighestUnvisitedBacktrackable()
	if !ok {
		return NoEvent, false
	}
	be.Visited = true
	rootID := be.ID

	d.es.Truncate(rootID + 1)
	d.es.RebuildAllocationIndex()

	snapshot := be.FrontierSnapshot
	pinnedFrontier := be.PinnedFrontier

	x := executionFromFrontier(d.es, snapshot)
	d.x = &x
	d.pinned = pinnedFrontier
	d.checker.Reset(d.x) // each sub-checker re-derives its summary from x.All()

	return rootID, true
}

// notePlayed folds a replayed event into playedFrontier. Callers must hold
// d.mu.
func (d *ExplorationDriver) notePlayed(res AppendResult) {
	if !res.Replayed {
		return
	}
	d.playedFrontier = d.playedFrontier.With(res.Event.ThreadID, res.Event.ID)
	if res.Chosen != nil {
		d.playedFrontier = d.playedFrontier.With(res.Chosen.ThreadID, res.Chosen.ID)
	}
}

// internalThreadSwitchCallback marks that the scheduler is moving control
// away from t to a different thread, because t finished a step without
// settling (a fresh dangling request) or simply was not the lowest-id
// runnable thread this round. The cooperative resume/stepDone handoff
// already performs the switch; this just records that it happened.
func (d *ExplorationDriver) internalThreadSwitchCallback(t ThreadID) {
	d.threadSwitches++
}

func (d *ExplorationDriver) allThreadsFinished() bool {
	if len(d.states) == 0 {
		return len(d.bodies) == 0
	}
	for _, st := range d.states {
		if !st.finished {
			return false
		}
	}
	return true
}

// runThreadsToCompletion starts every registered thread body as a goroutine
// and drives them cooperatively: exactly one thread runs at a time,
// parked on its own resume channel until the scheduler releases it.
func (d *ExplorationDriver) runThreadsToCompletion() {
	var wg sync.WaitGroup
	for t, body := range d.bodies {
		st := &threadState{resume: make(chan struct{}), stepDone: make(chan struct{}), pending: NoEvent}
		d.states[t] = st
		wg.Add(1)
		go func(t ThreadID, body ThreadBody) {
			defer wg.Done()
			<-st.resume
			h := &ThreadHandle{id: t, d: d}
			body(h)
			d.mu.Lock()
			if d.aborted == nil {
				if res, err := d.es.AddThreadFinish(t, d.x, d.pinned); err != nil {
					d.aborted = NewInconsistency("driver", NoEvent, "%v", err)
				} else {
					d.checkEvent(res.Event)
					d.notePlayed(res)
				}
			}
			st.finished = true
			d.mu.Unlock()
			st.stepDone <- struct{}{}
		}(t, body)
	}

	lastRun := ThreadID(-1)
	for {
		d.mu.Lock()
		next, ok := d.pickSchedulableLocked()
		if ok && lastRun != -1 && lastRun != next {
			d.internalThreadSwitchCallback(lastRun)
		}
		if ok && !d.states[next].started {
			d.states[next].started = true
			if res, err := d.es.AddThreadStart(next, d.x, d.pinned); err != nil {
				d.aborted = NewInconsistency("driver", NoEvent, "%v", err)
				ok = false
			} else {
				d.checkEvent(res.Event)
				d.notePlayed(res)
			}
		}
		aborted := d.aborted != nil
		d.mu.Unlock()
		if aborted || !ok {
			break
		}

		st := d.states[next]
		st.resume <- struct{}{}
		<-st.stepDone
		lastRun = next

		d.mu.Lock()
		aborted = d.aborted != nil
		d.mu.Unlock()
		if aborted {
			break
		}
	}

	d.mu.Lock()
	if d.aborted == nil {
		for t, st := range d.states {
			if !st.finished {
				d.aborted = NewInconsistency("driver", st.pending, "deadlock: thread %d never finished", t)
				break
			}
		}
	}
	deadlockFree := d.aborted == nil
	d.mu.Unlock()

	// Goroutines still parked on resume after an abort or deadlock never
	// reach their defer; waiting on them here would hang the driver
	// itself. They are intentionally leaked for the remainder of the
	// process rather than force-killed — Go has no safe cancellation
	// primitive for a goroutine blocked on code the driver does not
	// control.
	if deadlockFree {
		wg.Wait()
	}
}

// pickSchedulableLocked returns a thread id enabled to run right now: not
// finished, and if started, not blocked on an unresolved dangling
// request. Ties are broken by lowest thread id, a small deterministic
// scheduling policy. Callers must hold d.mu.
func (d *ExplorationDriver) pickSchedulableLocked() (ThreadID, bool) {
	best := ThreadID(-1)
	for t, st := range d.states {
		if st.finished {
			continue
		}
		if st.started && st.pending != NoEvent {
			if _, resolved := d.es.DanglingResponse(st.pending); !resolved {
				continue
			}
		}
		if best == -1 || t < best {
			best = t
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// isActive reports whether t has started and not yet finished.
func (d *ExplorationDriver) isActive(t ThreadID) bool {
	st, ok := d.states[t]
	return ok && st.started && !st.finished
}

func (d *ExplorationDriver) isFinishedThread(t ThreadID) bool {
	st, ok := d.states[t]
	return ok && st.finished
}

func (d *ExplorationDriver) isStartedThread(t ThreadID) bool {
	st, ok := d.states[t]
	return ok && st.started
}

// isBlockedRequest reports whether req is tracked as a dangling request.
func (d *ExplorationDriver) isBlockedRequest(req EventID) bool { return d.es.IsBlockedRequest(req) }

// isBlockedAwaitingRequest reports whether req is dangling with no
// response discovered yet.
func (d *ExplorationDriver) isBlockedAwaitingRequest(req EventID) bool {
	_, has := d.es.DanglingResponse(req)
	return d.es.IsBlockedRequest(req) && !has
}

// getBlockedRequest returns the discovered response for a dangling
// request, if any.
func (d *ExplorationDriver) getBlockedRequest(req EventID) (EventID, bool) {
	return d.es.DanglingResponse(req)
}

// checkConsistency runs the composite Check: the recorded inconsistency if
// there is one, otherwise each checker's Check over its current summary.
func (d *ExplorationDriver) checkConsistency() *Inconsistency { return d.checker.Check() }

// checkEvent runs every consistency checker against a freshly committed
// event. Callers must hold d.mu. Once an inconsistency is recorded it
// becomes this exploration's final outcome: later calls return at once,
// and step and the scheduling loop append no further events once they
// see d.aborted.
func (d *ExplorationDriver) checkEvent(e Event) {
	if d.aborted != nil {
		return
	}
	if inc := d.checker.CheckEvent(e); inc != nil {
		d.aborted = inc
	}
}

// abortExploration records inc as this run's outcome; the scheduling loop
// notices d.aborted on its next check and unwinds.
func (d *ExplorationDriver) abortExploration(inc *Inconsistency) {
	d.aborted = inc
}

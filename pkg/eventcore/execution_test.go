package eventcore

import "testing"

// fakeSource is a minimal eventSource backed by a slice, for exercising
// Execution in isolation from EventStructure.
type fakeSource struct {
	events []Event
}

func (s *fakeSource) eventByID(id EventID) (Event, bool) {
	if id < 0 || int(id) >= len(s.events) {
		return Event{}, false
	}
	return s.events[id], true
}

func (s *fakeSource) add(threadID ThreadID, parent EventID) Event {
	e := Event{ID: EventID(len(s.events)), ThreadID: threadID, Parent: parent}
	pos := 0
	if parent != NoEvent {
		p := s.events[parent]
		pos = p.ThreadPosition + 1
	}
	e.ThreadPosition = pos
	s.events = append(s.events, e)
	return e
}

func TestExecutionAddRejectsWrongParent(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	x := newExecution(src)
	if err := x.Add(e0); err != nil {
		t.Fatalf("Add(root) failed: %v", err)
	}
	bogus := Event{ID: 99, ThreadID: 1, Parent: 42}
	if err := x.Add(bogus); err == nil {
		t.Fatalf("expected Add with wrong parent to fail")
	}
}

func TestExecutionLastFirstAt(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	e1 := src.add(1, e0.ID)
	x := newExecution(src)
	_ = x.Add(e0)
	_ = x.Add(e1)

	if last, ok := x.LastEvent(1); !ok || last.ID != e1.ID {
		t.Fatalf("LastEvent = %v, %v, want %d", last.ID, ok, e1.ID)
	}
	if first, ok := x.FirstEvent(1); !ok || first.ID != e0.ID {
		t.Fatalf("FirstEvent = %v, %v, want %d", first.ID, ok, e0.ID)
	}
	if at, ok := x.At(1, 1); !ok || at.ID != e1.ID {
		t.Fatalf("At(1,1) = %v, %v, want %d", at.ID, ok, e1.ID)
	}
	if _, ok := x.At(1, 5); ok {
		t.Fatalf("At out of range should miss")
	}
}

func TestExecutionCloneIsIndependent(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	x := newExecution(src)
	_ = x.Add(e0)
	clone := x.Clone()

	e1 := src.add(1, e0.ID)
	_ = clone.Add(e1)

	if _, ok := x.At(1, 1); ok {
		t.Fatalf("mutating the clone should not affect the original")
	}
	if _, ok := clone.At(1, 1); !ok {
		t.Fatalf("expected clone to have the newly added event")
	}
}

func TestExecutionCutDropsTailAndFrontier(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	e1 := src.add(1, e0.ID)
	e2 := src.add(1, e1.ID)
	x := newExecution(src)
	_ = x.Add(e0)
	_ = x.Add(e1)
	_ = x.Add(e2)

	x.Cut(1, 1)
	if last, ok := x.LastEvent(1); !ok || last.ID != e0.ID {
		t.Fatalf("after Cut(1,1), LastEvent = %v, want %d", last.ID, e0.ID)
	}

	f := x.Frontier()
	if f[1] != e0.ID {
		t.Fatalf("Frontier()[1] = %d, want %d", f[1], e0.ID)
	}
}

func TestExecutionCutToZeroDeletesThread(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	x := newExecution(src)
	_ = x.Add(e0)
	x.Cut(1, 0)
	if _, ok := x.LastEvent(1); ok {
		t.Fatalf("expected thread 1 to be empty after Cut(1,0)")
	}
}

func TestExecutionCutDanglingRequestEvents(t *testing.T) {
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	e0.Label = NewThreadStartLabel(1)
	src.events[0] = e0

	req := src.add(1, e0.ID)
	req.Label = NewLockRequestLabel(NewMutexHandle(), 1, false)
	src.events[req.ID] = req

	x := newExecution(src)
	_ = x.Add(e0)
	_ = x.Add(req)

	x.CutDanglingRequestEvents()
	if last, ok := x.LastEvent(1); !ok || last.ID != e0.ID {
		t.Fatalf("expected dangling Lock request to be cut, LastEvent = %v", last.ID)
	}
}

func TestExecutionAllIsSortedByID(t *testing.T) {
	src := &fakeSource{}
	a0 := src.add(1, NoEvent)
	b0 := src.add(2, NoEvent)
	a1 := src.add(1, a0.ID)
	x := newExecution(src)
	_ = x.Add(a0)
	_ = x.Add(b0)
	_ = x.Add(a1)

	all := x.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d events, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Fatalf("All() not sorted by id: %v", all)
		}
	}
}

func TestEventHappensBefore(t *testing.T) {
	e := Event{ID: 1, ThreadID: 1, ThreadPosition: 0}
	f := Event{ID: 2, ThreadID: 2, CausalityClock: CausalityClock{1: 0}}
	if !e.HappensBefore(f) {
		t.Fatalf("expected e to happen-before f")
	}
	g := Event{ID: 3, ThreadID: 2, CausalityClock: CausalityClock{}}
	if e.HappensBefore(g) {
		t.Fatalf("g records no predecessor on thread 1, so e should not happen-before g")
	}
}

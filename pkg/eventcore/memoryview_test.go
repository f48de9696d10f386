package eventcore

import "testing"

func TestLatestWriteOnThreadFindsMostRecent(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	other := MemoryLocation{Object: NewObjectHandle(), Field: "y"}
	src := &fakeSource{}

	w1 := src.add(1, NoEvent)
	w1.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[w1.ID] = w1

	mid := src.add(1, w1.ID)
	mid.Label = NewWriteLabel(other, "int", 9, false)
	src.events[mid.ID] = mid

	w2 := src.add(1, mid.ID)
	w2.Label = NewWriteLabel(loc, "int", 2, false)
	src.events[w2.ID] = w2

	x := buildExecution(src, w1, mid, w2)

	got, ok := latestWriteOnThread(x, 1, 2, loc)
	if !ok || got.ID != w2.ID {
		t.Fatalf("latestWriteOnThread = %v, %v; want %d", got.ID, ok, w2.ID)
	}

	got, ok = latestWriteOnThread(x, 1, 0, loc)
	if !ok || got.ID != w1.ID {
		t.Fatalf("latestWriteOnThread up to pos 0 = %v, %v; want %d", got.ID, ok, w1.ID)
	}
}

func TestRacyWritesExcludesDominatedWrites(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	w1 := src.add(1, NoEvent)
	w1.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[w1.ID] = w1

	w2 := src.add(2, NoEvent)
	w2.Label = NewWriteLabel(loc, "int", 2, false)
	w2.CausalityClock = CausalityClock{1: 0} // happens after w1
	src.events[w2.ID] = w2

	w3 := src.add(3, NoEvent)
	w3.Label = NewWriteLabel(loc, "int", 3, false)
	// no recorded predecessor on either other thread: races with both
	src.events[w3.ID] = w3

	x := buildExecution(src, w1, w2, w3)

	view := Frontier{1: w1.ID, 2: w2.ID, 3: w3.ID}
	racy := racyWrites(x, view)

	ids := make(map[EventID]bool)
	for _, e := range racy {
		ids[e.ID] = true
	}
	if ids[w1.ID] {
		t.Fatalf("expected w1 to be dominated by w2, excluded from racy set: %v", racy)
	}
	if !ids[w2.ID] || !ids[w3.ID] {
		t.Fatalf("expected w2 and w3 in the racy set, got %v", racy)
	}
}

func TestStaleWriteFloorFindsLatestSourceRead(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	w1 := src.add(1, NoEvent)
	w1.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[w1.ID] = w1

	w2 := src.add(1, w1.ID)
	w2.Label = NewWriteLabel(loc, "int", 2, false)
	src.events[w2.ID] = w2

	readEvt := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	readEvt.Label = readLabel
	src.events[readEvt.ID] = readEvt

	x := buildExecution(src, w1, w2, readEvt)

	readsFrom := map[EventID]EventID{readEvt.ID: w2.ID}
	floor, ok := staleWriteFloor(x, 2, loc, readsFrom)
	if !ok || floor.ID != w2.ID {
		t.Fatalf("staleWriteFloor = %v, %v; want %d", floor.ID, ok, w2.ID)
	}
}

func TestStaleWriteFloorMissingWhenNoPriorRead(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}
	e0 := src.add(1, NoEvent)
	src.events[e0.ID] = e0
	x := buildExecution(src, e0)

	if _, ok := staleWriteFloor(x, 1, loc, map[EventID]EventID{}); ok {
		t.Fatalf("expected no floor when the thread never read this location")
	}
}

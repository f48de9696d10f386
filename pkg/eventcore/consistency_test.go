package eventcore

import "testing"

func TestSequentialConsistencyAcceptsReadOfLastWrite(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	write := src.add(1, NoEvent)
	write.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[write.ID] = write

	read := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	read.Label = readLabel
	read.Dependencies = []EventID{write.ID}
	src.events[read.ID] = read

	x := buildExecution(src, write, read)
	c := NewSequentialConsistencyChecker(false)
	c.Reset(x)

	if rf := c.ReadsFrom(); rf[read.ID] != write.ID {
		t.Fatalf("ReadsFrom()[%d] = %d, want %d", read.ID, rf[read.ID], write.ID)
	}
}

func TestSequentialConsistencyRejectsStaleRead(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	write1 := src.add(1, NoEvent)
	write1.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[write1.ID] = write1

	write2 := src.add(1, write1.ID)
	write2.Label = NewWriteLabel(loc, "int", 2, false)
	src.events[write2.ID] = write2

	read := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	read.Label = readLabel
	read.Dependencies = []EventID{write1.ID} // stale: write2 is eo-last
	src.events[read.ID] = read

	x := buildExecution(src, write1, write2, read)
	c := NewSequentialConsistencyChecker(false)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected Reset to panic on an internally-inconsistent replay")
		}
	}()
	c.Reset(x)
}

func TestSequentialConsistencyCheckEventRejectsStaleReadIncrementally(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	write1 := src.add(1, NoEvent)
	write1.Label = NewWriteLabel(loc, "int", 1, false)
	src.events[write1.ID] = write1

	write2 := src.add(1, write1.ID)
	write2.Label = NewWriteLabel(loc, "int", 2, false)
	src.events[write2.ID] = write2

	x := buildExecution(src, write1, write2)
	c := NewSequentialConsistencyChecker(false)
	c.Reset(x)

	read := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	read.Label = readLabel
	read.Dependencies = []EventID{write1.ID}
	src.events[read.ID] = read
	if err := x.Add(read); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if inc := c.CheckEvent(read); inc == nil {
		t.Fatalf("expected CheckEvent to reject a stale read")
	}
}

func TestSequentialConsistencyReleaseAcquireRequiresSynchronizesWith(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	write := src.add(1, NoEvent)
	write.Label = NewWriteLabel(loc, "int", 1, false)
	write.CausalityClock = CausalityClock{1: 0}
	src.events[write.ID] = write

	read := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	read.Label = readLabel
	read.Dependencies = []EventID{write.ID}
	read.CausalityClock = CausalityClock{2: 0} // no recorded predecessor on thread 1
	src.events[read.ID] = read

	x := buildExecution(src, write, read)
	c := NewSequentialConsistencyChecker(true)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected Reset to panic: the read never synchronizes-with its source write")
		}
	}()
	c.Reset(x)
}

func TestSequentialConsistencyReleaseAcquireAcceptsGenuineSynchronizesWith(t *testing.T) {
	loc := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	src := &fakeSource{}

	write := src.add(1, NoEvent)
	write.Label = NewWriteLabel(loc, "int", 1, false)
	write.CausalityClock = CausalityClock{1: 0}
	src.events[write.ID] = write

	read := src.add(2, NoEvent)
	readLabel := NewReadRequestLabel(loc, "int", false)
	readLabel.base = readLabel.base.asResponse()
	read.Label = readLabel
	read.Dependencies = []EventID{write.ID}
	read.CausalityClock = CausalityClock{2: 0, 1: 0} // records write as a predecessor
	src.events[read.ID] = read

	x := buildExecution(src, write, read)
	c := NewSequentialConsistencyChecker(true)
	c.Reset(x) // must not panic
}

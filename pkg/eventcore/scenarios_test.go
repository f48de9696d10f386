package eventcore

import "testing"

// zeroInitializer models every location starting at the int zero value,
// the common case for the litmus tests below.
func zeroInitializer(MemoryLocation) any { return 0 }

func TestScenarioStoreBuffering(t *testing.T) {
	x := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	y := MemoryLocation{Object: NewObjectHandle(), Field: "y"}

	// Explore() runs one exploration fully to completion before starting
	// the next, so the i-th append from each thread body names the same
	// run: no cross-run interleaving is possible at the append call site.
	var ys, xs []any

	d := NewExplorationDriver(Config{MemoryInitializer: zeroInitializer})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) { // T1: W(x,1); R(y)
		h.Write(x, "int", 1, false)
		ys = append(ys, h.Read(y, "int", false))
	})
	d.RegisterThread(FirstUserThreadID+1, func(h *ThreadHandle) { // T2: W(y,1); R(x)
		h.Write(y, "int", 1, false)
		xs = append(xs, h.Read(x, "int", false))
	})

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if len(ys) != len(results) || len(xs) != len(results) {
		t.Fatalf("expected every run to reach both reads: %d runs, %d/%d reads recorded", len(results), len(ys), len(xs))
	}

	outcomes := map[[2]any]bool{}
	for i, r := range results {
		if r.Inconsistency == nil {
			outcomes[[2]any{ys[i], xs[i]}] = true
		}
	}
	if outcomes[[2]any{0, 0}] {
		t.Fatalf("(R(y),R(x)) = (0,0) is the store-buffering-reordered outcome and must never be accepted as consistent")
	}
	want := map[[2]any]bool{
		{1, 0}: true,
		{0, 1}: true,
		{1, 1}: true,
	}
	if len(outcomes) != len(want) {
		t.Fatalf("expected exactly the three sequentially consistent outcomes %v, got %v", want, outcomes)
	}
	for o := range outcomes {
		if !want[o] {
			t.Fatalf("unexpected outcome (R(y),R(x)) = %v; sequential consistency only allows %v", o, want)
		}
	}
}

func TestScenarioMessagePassing(t *testing.T) {
	data := MemoryLocation{Object: NewObjectHandle(), Field: "data"}
	flag := MemoryLocation{Object: NewObjectHandle(), Field: "flag"}

	type obs struct{ flag, data any }
	var seen []obs

	d := NewExplorationDriver(Config{ReleaseAcquire: true, MemoryInitializer: zeroInitializer})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) {
		h.Write(data, "int", 42, false)
		h.Write(flag, "int", 1, false)
	})
	d.RegisterThread(FirstUserThreadID+1, func(h *ThreadHandle) {
		f := h.Read(flag, "int", false)
		dv := h.Read(data, "int", false)
		seen = append(seen, obs{f, dv})
	})

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	for _, r := range results {
		if r.Inconsistency != nil {
			t.Fatalf("unexpected inconsistency in a message-passing execution: %v", r.Inconsistency)
		}
	}
	for _, o := range seen {
		if o.flag == 1 && o.data != 42 {
			t.Fatalf("observed flag=1 without the paired write: %+v", o)
		}
	}
}

func TestScenarioLockMutualExclusion(t *testing.T) {
	counter := MemoryLocation{Object: NewObjectHandle(), Field: "x"}
	var mutex MutexHandle

	d := NewExplorationDriver(Config{MemoryInitializer: zeroInitializer})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) {
		mutex = MutexHandle(h.AllocateObject())
	})
	bump := func(h *ThreadHandle) {
		h.Lock(mutex, 1)
		cur, _ := h.Read(counter, "int", true).(int)
		h.Write(counter, "int", cur+1, true)
		h.Unlock(mutex, 1)
	}
	d.RegisterThread(FirstUserThreadID+1, bump)
	d.RegisterThread(FirstUserThreadID+2, bump)

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one exploration")
	}
	for _, r := range results {
		if r.Inconsistency != nil {
			t.Fatalf("unexpected inconsistency under mutex-guarded increments: %v", r.Inconsistency)
		}
	}
}

func TestScenarioWaitNotify(t *testing.T) {
	var mutex MutexHandle
	notified := false

	d := NewExplorationDriver(Config{})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) {
		mutex = MutexHandle(h.AllocateObject())
	})
	d.RegisterThread(FirstUserThreadID+1, func(h *ThreadHandle) {
		h.Lock(mutex, 1)
		h.Wait(mutex)
		notified = true
		h.Unlock(mutex, 1)
	})
	d.RegisterThread(FirstUserThreadID+2, func(h *ThreadHandle) {
		h.Lock(mutex, 1)
		h.Notify(mutex, false)
		h.Unlock(mutex, 1)
	})

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	found := false
	for _, r := range results {
		if r.Completed && r.Inconsistency == nil {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one consistent completed execution, got %+v", results)
	}
	_ = notified
}

func TestScenarioParkUnpark(t *testing.T) {
	d := NewExplorationDriver(Config{})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) {
		h.Park()
	})
	d.RegisterThread(FirstUserThreadID+1, func(h *ThreadHandle) {
		h.Unpark(FirstUserThreadID)
	})

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	for _, r := range results {
		if r.Inconsistency != nil {
			t.Fatalf("unexpected inconsistency in a park/unpark execution: %v", r.Inconsistency)
		}
		if !r.Completed {
			t.Fatalf("expected every park/unpark ordering to complete, got %+v", r)
		}
	}
}

func TestScenarioBrokenDoubleCheckedLocking(t *testing.T) {
	ref := MemoryLocation{Object: NewObjectHandle(), Field: "instance"}
	field := MemoryLocation{Object: NewObjectHandle(), Field: "field"}

	type obs struct{ ref, field any }
	var seen []obs

	// T1 publishes a "constructed" object without a barrier between the
	// field write and the reference write: a racy reader can observe the
	// non-nil reference with the stale, zero-valued field.
	d := NewExplorationDriver(Config{MemoryInitializer: func(loc MemoryLocation) any {
		if loc == ref {
			return nil
		}
		return 0
	}})
	d.RegisterThread(FirstUserThreadID, func(h *ThreadHandle) {
		h.Write(field, "int", 7, false)
		h.Write(ref, "int", 1, false)
	})
	d.RegisterThread(FirstUserThreadID+1, func(h *ThreadHandle) {
		r := h.Read(ref, "int", false)
		f := h.Read(field, "int", false)
		seen = append(seen, obs{r, f})
	})

	results, err := d.Explore()
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	sawStaleRead := false
	for i, o := range seen {
		if o.ref == 1 && o.field != 7 {
			if results[i].Inconsistency != nil {
				t.Fatalf("the stale-field read must be reported, not rejected: %v", results[i].Inconsistency)
			}
			sawStaleRead = true
		}
	}
	if !sawStaleRead {
		t.Logf("exploration did not surface a stale-field read in this run (seen: %+v) — the unsynchronized publish still must never be rejected outright", seen)
	}
	for i, r := range results {
		if r.Inconsistency != nil {
			t.Fatalf("an unsynchronized publish/observe pattern has no atomicity or reads-from violation to reject, got %v at run %d (%+v)", r.Inconsistency, i, seen[i])
		}
	}
}

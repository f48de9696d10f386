// Command explore runs the six litmus-test scenarios the event-structure
// core is built to distinguish — store buffering, message passing, lock
// mutual exclusion, wait/notify, park/unpark, and a broken
// double-checked-locking publish — and renders every interleaving
// Explore found for each, one row per run.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/gitrdm/eventcore/pkg/eventcore"
)

// scenario bundles a name with a thunk that runs it and reports one
// formatted outcome string per exploration, aligned by index with the
// ExplorationResult slice Explore returns.
type scenario struct {
	name string
	run  func() ([]eventcore.ExplorationResult, []string, error)
}

func main() {
	scenarios := []scenario{
		{"S1 store buffering", storeBuffering},
		{"S2 message passing", messagePassing},
		{"S3 lock mutual exclusion", lockMutualExclusion},
		{"S4 wait/notify", waitNotify},
		{"S5 park/unpark", parkUnpark},
		{"S6 broken double-checked locking", brokenDoubleCheckedLocking},
	}

	for _, s := range scenarios {
		if err := renderScenario(s); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("%s: %v", s.name, err))
			os.Exit(1)
		}
	}
}

func renderScenario(s scenario) error {
	results, outcomes, err := s.run()
	if err != nil {
		return err
	}

	fmt.Println(color.CyanString("== %s ==", s.name))

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"run", "events", "completed", "verdict", "outcome"})
	for i, r := range results {
		verdict := color.GreenString("consistent")
		if r.Inconsistency != nil {
			verdict = color.YellowString("pruned: %s", r.Inconsistency.Reason)
		}
		completed := color.GreenString("yes")
		if !r.Completed {
			completed = color.RedString("no")
		}
		outcome := ""
		if i < len(outcomes) {
			outcome = outcomes[i]
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.EventCount),
			completed,
			verdict,
			outcome,
		})
	}
	table.Render()
	fmt.Println()
	return nil
}

func zeroInitializer(eventcore.MemoryLocation) any { return 0 }

// storeBuffering runs S1: two threads each write their own location then
// read the other's, with no synchronization between the pairs. A
// sequentially consistent memory never lets both reads observe the
// pre-write value.
func storeBuffering() ([]eventcore.ExplorationResult, []string, error) {
	x := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "x"}
	y := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "y"}
	var ys, xs []any

	d := eventcore.NewExplorationDriver(eventcore.Config{MemoryInitializer: zeroInitializer})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		h.Write(x, "int", 1, false)
		ys = append(ys, h.Read(y, "int", false))
	})
	d.RegisterThread(eventcore.FirstUserThreadID+1, func(h *eventcore.ThreadHandle) {
		h.Write(y, "int", 1, false)
		xs = append(xs, h.Read(x, "int", false))
	})

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	for i := range results {
		ry, rx := any(nil), any(nil)
		if i < len(ys) {
			ry = ys[i]
		}
		if i < len(xs) {
			rx = xs[i]
		}
		outcomes[i] = fmt.Sprintf("R(y)=%v R(x)=%v", ry, rx)
	}
	return results, outcomes, err
}

// messagePassing runs S2: a writer publishes data then a flag under
// release-acquire ordering; a reader that observes the flag set must also
// observe the data.
func messagePassing() ([]eventcore.ExplorationResult, []string, error) {
	data := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "data"}
	flag := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "flag"}
	var flags, datas []any

	d := eventcore.NewExplorationDriver(eventcore.Config{ReleaseAcquire: true, MemoryInitializer: zeroInitializer})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		h.Write(data, "int", 42, false)
		h.Write(flag, "int", 1, false)
	})
	d.RegisterThread(eventcore.FirstUserThreadID+1, func(h *eventcore.ThreadHandle) {
		flags = append(flags, h.Read(flag, "int", false))
		datas = append(datas, h.Read(data, "int", false))
	})

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	for i := range results {
		f, dv := any(nil), any(nil)
		if i < len(flags) {
			f = flags[i]
		}
		if i < len(datas) {
			dv = datas[i]
		}
		outcomes[i] = fmt.Sprintf("R(flag)=%v R(data)=%v", f, dv)
	}
	return results, outcomes, err
}

// lockMutualExclusion runs S3: two threads bump a counter under a shared
// mutex. Every consistent run must leave the counter at 2, never 1.
func lockMutualExclusion() ([]eventcore.ExplorationResult, []string, error) {
	counter := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "x"}
	var mutex eventcore.MutexHandle
	var final []any

	d := eventcore.NewExplorationDriver(eventcore.Config{MemoryInitializer: zeroInitializer})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		mutex = eventcore.MutexHandle(h.AllocateObject())
		final = append(final, nil)
	})
	bump := func(h *eventcore.ThreadHandle) {
		h.Lock(mutex, 1)
		cur, _ := h.Read(counter, "int", true).(int)
		h.Write(counter, "int", cur+1, true)
		h.Unlock(mutex, 1)
		final[len(final)-1] = cur + 1
	}
	d.RegisterThread(eventcore.FirstUserThreadID+1, bump)
	d.RegisterThread(eventcore.FirstUserThreadID+2, bump)

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	for i := range results {
		v := any(nil)
		if i < len(final) {
			v = final[i]
		}
		outcomes[i] = fmt.Sprintf("last write observed=%v", v)
	}
	return results, outcomes, err
}

// waitNotify runs S4: one thread waits on a mutex-protected condition, a
// second notifies it. At least one consistent run must reach completion
// with the waiter woken.
func waitNotify() ([]eventcore.ExplorationResult, []string, error) {
	var mutex eventcore.MutexHandle
	var woken []bool

	d := eventcore.NewExplorationDriver(eventcore.Config{})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		mutex = eventcore.MutexHandle(h.AllocateObject())
	})
	d.RegisterThread(eventcore.FirstUserThreadID+1, func(h *eventcore.ThreadHandle) {
		h.Lock(mutex, 1)
		h.Wait(mutex)
		woken = append(woken, true)
		h.Unlock(mutex, 1)
	})
	d.RegisterThread(eventcore.FirstUserThreadID+2, func(h *eventcore.ThreadHandle) {
		h.Lock(mutex, 1)
		h.Notify(mutex, false)
		h.Unlock(mutex, 1)
	})

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	woke := 0
	for i := range results {
		if results[i].Completed && results[i].Inconsistency == nil && woke < len(woken) {
			outcomes[i] = "waiter woken"
			woke++
		} else {
			outcomes[i] = "waiter never woken this run"
		}
	}
	return results, outcomes, err
}

// parkUnpark runs S5: a permit deposited by Unpark lets a concurrent Park
// proceed regardless of arrival order, so every interleaving completes.
func parkUnpark() ([]eventcore.ExplorationResult, []string, error) {
	d := eventcore.NewExplorationDriver(eventcore.Config{})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		h.Park()
	})
	d.RegisterThread(eventcore.FirstUserThreadID+1, func(h *eventcore.ThreadHandle) {
		h.Unpark(eventcore.FirstUserThreadID)
	})

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	for i, r := range results {
		if r.Completed {
			outcomes[i] = "parked thread released"
		} else {
			outcomes[i] = "parked thread stuck"
		}
	}
	return results, outcomes, err
}

// brokenDoubleCheckedLocking runs S6: a publisher writes a field and then
// a reference with no barrier between them, modeling the classic broken
// double-checked-locking idiom. A racy reader that observes the
// reference set is not required to observe the field write that preceded
// it in program order.
func brokenDoubleCheckedLocking() ([]eventcore.ExplorationResult, []string, error) {
	ref := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "instance"}
	field := eventcore.MemoryLocation{Object: eventcore.NewObjectHandle(), Field: "field"}
	var refs, fields []any

	d := eventcore.NewExplorationDriver(eventcore.Config{MemoryInitializer: func(loc eventcore.MemoryLocation) any {
		if loc == ref {
			return nil
		}
		return 0
	}})
	d.RegisterThread(eventcore.FirstUserThreadID, func(h *eventcore.ThreadHandle) {
		h.Write(field, "int", 7, false)
		h.Write(ref, "int", 1, false)
	})
	d.RegisterThread(eventcore.FirstUserThreadID+1, func(h *eventcore.ThreadHandle) {
		refs = append(refs, h.Read(ref, "int", false))
		fields = append(fields, h.Read(field, "int", false))
	})

	results, err := d.Explore()
	outcomes := make([]string, len(results))
	for i := range results {
		r, f := any(nil), any(nil)
		if i < len(refs) {
			r = refs[i]
		}
		if i < len(fields) {
			f = fields[i]
		}
		stale := ""
		if r == 1 && f != 7 {
			stale = color.YellowString(" (stale publish observed)")
		}
		outcomes[i] = fmt.Sprintf("R(ref)=%v R(field)=%v%s", r, f, stale)
	}
	return results, outcomes, err
}

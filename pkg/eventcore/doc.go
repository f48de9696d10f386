// Package eventcore implements the event-structure exploration core of a
// bounded concurrency model checker.
//
// A ThreadBody is instrumented user code, run by an ExplorationDriver one
// cooperative step at a time through a ThreadHandle. Every memory access
// and synchronization primitive the body performs becomes an Event in a
// shared EventStructure, which records not just the events chosen for the
// current run but every alternative Response a Request could have
// synchronized with. The driver repeatedly replays the structure from its
// highest unvisited alternative, backtracking until none remain, so a
// single call to ExplorationDriver.Explore systematically walks every
// distinct consistent interleaving a bounded set of threads can produce.
//
// Consistency is checked incrementally as events are appended: an
// AtomicityChecker rejects interleaved read-modify-write pairs, and a
// SequentialConsistencyChecker rejects reads that disagree with a total
// execution order (optionally tightened to require genuine
// release-acquire synchronizes-with). Either can prune an execution
// without aborting the exploration itself — pruning is recorded as an
// Inconsistency on the result, not returned as an error.
package eventcore

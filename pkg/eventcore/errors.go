package eventcore

import "fmt"

// InvariantViolation signals that an internal precondition of the data
// model failed. It is a program bug, not a rejected execution: the caller
// should treat it as fatal and bubble it to the surrounding runtime as a
// distinct invocation outcome.
type InvariantViolation struct {
	Op  string
	Msg string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Msg)
}

// NewInvariantViolation builds an InvariantViolation for the given
// operation name.
func NewInvariantViolation(op, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ReplayDesync signals that the replayer and the runtime disagree on the
// next event. Fatal: the invocation aborts and is reported to the
// surrounding system.
type ReplayDesync struct {
	Thread ThreadID
	Msg    string
}

func (e *ReplayDesync) Error() string {
	return fmt.Sprintf("replay desync on thread %d: %s", e.Thread, e.Msg)
}

func NewReplayDesync(t ThreadID, format string, args ...any) *ReplayDesync {
	return &ReplayDesync{Thread: t, Msg: fmt.Sprintf(format, args...)}
}

// Inconsistency records that a consistency checker rejected the current
// execution. It is a pruning signal, not a bug: once recorded on the
// CompositeChecker it is idempotent for the remainder of the exploration and
// suppresses further checks.
type Inconsistency struct {
	Checker string
	Event   EventID
	Reason  string
}

func (i *Inconsistency) String() string {
	if i == nil {
		return "<consistent>"
	}
	return fmt.Sprintf("%s: event %d: %s", i.Checker, i.Event, i.Reason)
}

func NewInconsistency(checker string, event EventID, format string, args ...any) *Inconsistency {
	return &Inconsistency{Checker: checker, Event: event, Reason: fmt.Sprintf(format, args...)}
}

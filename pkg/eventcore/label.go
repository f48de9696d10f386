package eventcore

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a Label as the half of a synchronization it represents.
type Kind uint8

const (
	// KindRequest is the half of a blocking operation issued by a thread,
	// pending a matching Send before it becomes a Response.
	KindRequest Kind = iota
	// KindResponse is produced by the synchronization algebra once a
	// Request finds a matching Send (or set of Sends, for a barrier).
	KindResponse
	// KindSend is a non-blocking operation, available immediately as a
	// synchronization partner for Requests.
	KindSend
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindSend:
		return "send"
	default:
		return "unknown"
	}
}

// SyncType classifies how a label composes with its partners under the
// synchronization algebra.
type SyncType uint8

const (
	// SyncNone is never a synchronization partner (e.g. Initialization).
	SyncNone SyncType = iota
	// SyncBinary composes exactly one Request with exactly one Send.
	SyncBinary
	// SyncBarrier composes one Request with all contributing Sends at once.
	SyncBarrier
)

// MutexHandle identifies a lock/monitor object across the run.
type MutexHandle uuid.UUID

// ObjectHandle identifies an allocated heap object across the run.
type ObjectHandle uuid.UUID

func (h ObjectHandle) String() string { return uuid.UUID(h).String() }
func (h MutexHandle) String() string  { return uuid.UUID(h).String() }

// NewObjectHandle mints a fresh, globally unique object handle: identity
// that survives snapshot and replay without the core tracking a separate
// counter.
func NewObjectHandle() ObjectHandle { return ObjectHandle(uuid.New()) }

// NewMutexHandle mints a fresh, globally unique mutex handle.
func NewMutexHandle() MutexHandle { return MutexHandle(uuid.New()) }

// MemoryLocation names a single mutable memory cell a Read/Write touches.
type MemoryLocation struct {
	Object ObjectHandle
	Field  string
}

func (m MemoryLocation) String() string { return fmt.Sprintf("%s.%s", m.Object, m.Field) }

// MemoryInitializer supplies a location's contents before any real write
// touches it. It is consulted when a Read finds no Write to the location
// in the current execution; the synthetic initial write it yields is
// reused while it stays in the execution and minted afresh otherwise.
type MemoryInitializer func(MemoryLocation) any

// ThreadSet is a small, order-independent set of thread ids, used by the
// thread start/finish/fork/join family and by barrier synchronization.
type ThreadSet map[ThreadID]struct{}

// NewThreadSet builds a ThreadSet from the given ids.
func NewThreadSet(ids ...ThreadID) ThreadSet {
	s := make(ThreadSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ThreadSet) Contains(id ThreadID) bool { _, ok := s[id]; return ok }

func (s ThreadSet) Equal(o ThreadSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}

// Label is the closed tagged union of atomic operations the core
// understands. Kind-specific logic (synchronizability, conflict rules,
// reentry handling) lives behind the synchronization algebra and a small
// switch in conflict discovery — see algebra.go and structure.go. Label is
// not meant to be implemented outside this package.
type Label interface {
	Kind() Kind
	IsBlocking() bool
	IsExclusive() bool
	SyncType() SyncType
	String() string

	sealed()
}

// base is embedded by every Label variant to carry the shared flags.
type base struct {
	kind      Kind
	blocking  bool
	exclusive bool
	syncType  SyncType
}

func (b base) Kind() Kind           { return b.kind }
func (b base) IsBlocking() bool     { return b.blocking }
func (b base) IsExclusive() bool    { return b.exclusive }
func (b base) SyncType() SyncType   { return b.syncType }
func (base) sealed()                {}

// InitializationLabel seeds the init thread's root event. It carries only
// the main-thread id; the memory initializer is not stored on it (the
// driver hands Config.MemoryInitializer to each Read instead). It never
// synchronizes with anything (SyncNone) because it always stands alone at
// the root of the structure.
type InitializationLabel struct {
	base
	MainThread ThreadID
}

func NewInitializationLabel(mainThread ThreadID) InitializationLabel {
	return InitializationLabel{base: base{kind: KindSend, syncType: SyncNone}, MainThread: mainThread}
}

func (l InitializationLabel) String() string { return "init" }

// ObjectAllocationLabel records the allocation of a heap object. It is a
// Send: allocation is never blocking, and other events reference it via
// Event.AllocationEvent rather than by synchronizing with it directly,
// except Lock requests on the allocated mutex (at any depth), which
// synchronize with it explicitly. Unlock never synchronizes with it.
type ObjectAllocationLabel struct {
	base
	Object ObjectHandle
}

func NewObjectAllocationLabel(obj ObjectHandle) ObjectAllocationLabel {
	return ObjectAllocationLabel{base: base{kind: KindSend, syncType: SyncNone}, Object: obj}
}

func (l ObjectAllocationLabel) String() string { return fmt.Sprintf("alloc(%s)", l.Object) }

// ThreadStartLabel/ThreadFinishLabel/ThreadForkLabel/ThreadJoinLabel model
// thread lifecycle. Fork/Start are non-blocking Sends issued by the parent
// and the started thread respectively; Join is a barrier Request matched by
// the Finish Sends of every thread in its ThreadSet.
type ThreadStartLabel struct {
	base
	Thread ThreadID
}

func NewThreadStartLabel(t ThreadID) ThreadStartLabel {
	return ThreadStartLabel{base: base{kind: KindSend, syncType: SyncNone}, Thread: t}
}
func (l ThreadStartLabel) String() string { return fmt.Sprintf("start(T%d)", l.Thread) }

type ThreadFinishLabel struct {
	base
	Thread ThreadID
}

func NewThreadFinishLabel(t ThreadID) ThreadFinishLabel {
	return ThreadFinishLabel{base: base{kind: KindSend, syncType: SyncBarrier}, Thread: t}
}
func (l ThreadFinishLabel) String() string { return fmt.Sprintf("finish(T%d)", l.Thread) }

type ThreadForkLabel struct {
	base
	Child ThreadID
}

func NewThreadForkLabel(child ThreadID) ThreadForkLabel {
	return ThreadForkLabel{base: base{kind: KindSend, syncType: SyncNone}, Child: child}
}
func (l ThreadForkLabel) String() string { return fmt.Sprintf("fork(T%d)", l.Child) }

type ThreadJoinLabel struct {
	base
	Targets ThreadSet
}

func NewThreadJoinRequestLabel(targets ThreadSet) ThreadJoinLabel {
	return ThreadJoinLabel{base: base{kind: KindRequest, blocking: true, syncType: SyncBarrier}, Targets: targets}
}
func (l ThreadJoinLabel) String() string { return fmt.Sprintf("join(%v)", l.Targets) }

// ReadLabel/WriteLabel model memory accesses. A Read is a binary Request
// that synchronizes with exactly one Write Send to the same location; the
// Write itself is always a Send. Exclusive flags mark the two halves of a
// read-modify-write pair for the atomicity checker.
type ReadLabel struct {
	base
	Location  MemoryLocation
	ValueType string
	Value     any // populated once this becomes a Response
}

func NewReadRequestLabel(loc MemoryLocation, valueType string, exclusive bool) ReadLabel {
	return ReadLabel{base: base{kind: KindRequest, blocking: false, exclusive: exclusive, syncType: SyncBinary}, Location: loc, ValueType: valueType}
}
func (l ReadLabel) String() string { return fmt.Sprintf("R(%s)=%v", l.Location, l.Value) }

type WriteLabel struct {
	base
	Location  MemoryLocation
	ValueType string
	Value     any
}

func NewWriteLabel(loc MemoryLocation, valueType string, value any, exclusive bool) WriteLabel {
	return WriteLabel{base: base{kind: KindSend, exclusive: exclusive, syncType: SyncBinary}, Location: loc, ValueType: valueType, Value: value}
}
func (l WriteLabel) String() string { return fmt.Sprintf("W(%s,%v)", l.Location, l.Value) }

// LockLabel/UnlockLabel. Reentry is carried as (Depth, Count): Depth is the
// nesting depth this request/response represents, Count is the mutex's
// current hold count from the acquiring thread's point of view. WaitLock
// marks a Lock request re-issued after a Wait returns (it competes with
// fresh lock attempts the same way, but is tagged for diagnostics).
type LockLabel struct {
	base
	Mutex    MutexHandle
	Depth    int
	Count    int
	WaitLock bool
}

func NewLockRequestLabel(m MutexHandle, depth int, waitLock bool) LockLabel {
	return LockLabel{base: base{kind: KindRequest, blocking: true, exclusive: true, syncType: SyncBinary}, Mutex: m, Depth: depth, WaitLock: waitLock}
}
func (l LockLabel) String() string { return fmt.Sprintf("lock(%s,d=%d)", l.Mutex, l.Depth) }

// IsReentrant reports whether this lock request is a nested acquisition by
// a thread that already holds the mutex (Depth > 1).
func (l LockLabel) IsReentrant() bool { return l.Depth > 1 }

type UnlockLabel struct {
	base
	Mutex MutexHandle
	Depth int
}

func NewUnlockLabel(m MutexHandle, depth int) UnlockLabel {
	return UnlockLabel{base: base{kind: KindSend, syncType: SyncNone}, Mutex: m, Depth: depth}
}
func (l UnlockLabel) String() string { return fmt.Sprintf("unlock(%s,d=%d)", l.Mutex, l.Depth) }

// IsReentrantExit reports whether this unlock merely decrements nesting
// (Depth > 1) rather than releasing the mutex — a no-op Send per 8.
func (l UnlockLabel) IsReentrantExit() bool { return l.Depth > 1 }

// WaitLabel/NotifyLabel. Wait and Notify compose as an ordinary binary
// pair whether or not the Notify is a broadcast; Broadcast only changes
// conflict detection (see NewNotifyLabel). A Wait response never arises
// from a spurious wake-up.
type WaitLabel struct {
	base
	Mutex MutexHandle
}

func NewWaitRequestLabel(m MutexHandle) WaitLabel {
	return WaitLabel{base: base{kind: KindRequest, blocking: true, syncType: SyncBinary}, Mutex: m}
}
func (l WaitLabel) String() string { return fmt.Sprintf("wait(%s)", l.Mutex) }

type NotifyLabel struct {
	base
	Mutex     MutexHandle
	Broadcast bool
}

// NewNotifyLabel builds a Notify send. Broadcast only changes conflict
// detection (broadcast Wait responses off the same Notify are not
// conflicts of each other) — the algebra itself always treats
// Notify/Wait as an ordinary binary pair, since one Send can be the
// dependency of several independently-created Response events.
func NewNotifyLabel(m MutexHandle, broadcast bool) NotifyLabel {
	return NotifyLabel{base: base{kind: KindSend, syncType: SyncBinary}, Mutex: m, Broadcast: broadcast}
}
func (l NotifyLabel) String() string { return fmt.Sprintf("notify(%s,all=%v)", l.Mutex, l.Broadcast) }

// ParkLabel/UnparkLabel. Park blocks only if no permit is already
// available; a preceding Unpark deposits a permit that makes the matching
// Park a non-blocking Response immediately.
type ParkLabel struct {
	base
}

func NewParkRequestLabel() ParkLabel {
	return ParkLabel{base: base{kind: KindRequest, blocking: true, syncType: SyncBinary}}
}
func (l ParkLabel) String() string { return "park" }

type UnparkLabel struct {
	base
	Target ThreadID
}

func NewUnparkLabel(target ThreadID) UnparkLabel {
	return UnparkLabel{base: base{kind: KindSend, syncType: SyncBinary}, Target: target}
}
func (l UnparkLabel) String() string { return fmt.Sprintf("unpark(T%d)", l.Target) }

// compile-time assertions that every variant implements Label.
var (
	_ Label = InitializationLabel{}
	_ Label = ObjectAllocationLabel{}
	_ Label = ThreadStartLabel{}
	_ Label = ThreadFinishLabel{}
	_ Label = ThreadForkLabel{}
	_ Label = ThreadJoinLabel{}
	_ Label = ReadLabel{}
	_ Label = WriteLabel{}
	_ Label = LockLabel{}
	_ Label = UnlockLabel{}
	_ Label = WaitLabel{}
	_ Label = NotifyLabel{}
	_ Label = ParkLabel{}
	_ Label = UnparkLabel{}
)

// asResponse returns a shallow copy of base with Kind switched to
// Response; used by the algebra when it produces a synchronized label.
func (b base) asResponse() base {
	b.kind = KindResponse
	return b
}

package eventcore

import "testing"

func TestLabelKindsAndBlocking(t *testing.T) {
	cases := []struct {
		name      string
		label     Label
		kind      Kind
		blocking  bool
		exclusive bool
		syncType  SyncType
	}{
		{"init", NewInitializationLabel(MainThreadID), KindSend, false, false, SyncNone},
		{"read", NewReadRequestLabel(MemoryLocation{}, "int", false), KindRequest, false, false, SyncBinary},
		{"read-exclusive", NewReadRequestLabel(MemoryLocation{}, "int", true), KindRequest, false, true, SyncBinary},
		{"write", NewWriteLabel(MemoryLocation{}, "int", 1, false), KindSend, false, false, SyncBinary},
		{"lock", NewLockRequestLabel(NewMutexHandle(), 1, false), KindRequest, true, true, SyncBinary},
		{"unlock", NewUnlockLabel(NewMutexHandle(), 1), KindSend, false, false, SyncNone},
		{"wait", NewWaitRequestLabel(NewMutexHandle()), KindRequest, true, false, SyncBinary},
		{"notify", NewNotifyLabel(NewMutexHandle(), false), KindSend, false, false, SyncBinary},
		{"park", NewParkRequestLabel(), KindRequest, true, false, SyncBinary},
		{"unpark", NewUnparkLabel(1), KindSend, false, false, SyncBinary},
		{"join", NewThreadJoinRequestLabel(NewThreadSet(2, 3)), KindRequest, true, false, SyncBarrier},
		{"finish", NewThreadFinishLabel(1), KindSend, false, false, SyncBarrier},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.label.Kind() != c.kind {
				t.Errorf("Kind() = %v, want %v", c.label.Kind(), c.kind)
			}
			if c.label.IsBlocking() != c.blocking {
				t.Errorf("IsBlocking() = %v, want %v", c.label.IsBlocking(), c.blocking)
			}
			if c.label.IsExclusive() != c.exclusive {
				t.Errorf("IsExclusive() = %v, want %v", c.label.IsExclusive(), c.exclusive)
			}
			if c.label.SyncType() != c.syncType {
				t.Errorf("SyncType() = %v, want %v", c.label.SyncType(), c.syncType)
			}
		})
	}
}

func TestLockIsReentrant(t *testing.T) {
	fresh := NewLockRequestLabel(NewMutexHandle(), 1, false)
	if fresh.IsReentrant() {
		t.Fatalf("depth-1 lock should not be reentrant")
	}
	nested := NewLockRequestLabel(NewMutexHandle(), 2, false)
	if !nested.IsReentrant() {
		t.Fatalf("depth-2 lock should be reentrant")
	}
}

func TestUnlockIsReentrantExit(t *testing.T) {
	if NewUnlockLabel(NewMutexHandle(), 1).IsReentrantExit() {
		t.Fatalf("depth-1 unlock should not be a reentrant exit")
	}
	if !NewUnlockLabel(NewMutexHandle(), 2).IsReentrantExit() {
		t.Fatalf("depth-2 unlock should be a reentrant exit")
	}
}

func TestThreadSetEqual(t *testing.T) {
	a := NewThreadSet(1, 2, 3)
	b := NewThreadSet(3, 2, 1)
	c := NewThreadSet(1, 2)
	if !a.Equal(b) {
		t.Fatalf("expected equal sets built from different orders")
	}
	if a.Equal(c) {
		t.Fatalf("expected unequal sets of different size")
	}
}

func TestObjectAndMutexHandlesAreUnique(t *testing.T) {
	a := NewObjectHandle()
	b := NewObjectHandle()
	if a == b {
		t.Fatalf("expected distinct object handles")
	}
	m1 := NewMutexHandle()
	m2 := NewMutexHandle()
	if m1 == m2 {
		t.Fatalf("expected distinct mutex handles")
	}
}

package eventcore

import "sort"

// denseThreadMap is a slice-backed map keyed by ThreadID. Thread ids form
// a small, contiguous-from-zero id space for the lifetime of a run, so a
// growable slice beats a hash map for both speed and memory. A zero value
// reads as the zero value of T until explicitly set.
type denseThreadMap[T any] struct {
	data []T
	set  []bool
}

func (m *denseThreadMap[T]) ensure(t ThreadID) {
	if int(t) < len(m.data) {
		return
	}
	grown := make([]T, t+1)
	copy(grown, m.data)
	m.data = grown
	grownSet := make([]bool, t+1)
	copy(grownSet, m.set)
	m.set = grownSet
}

func (m *denseThreadMap[T]) Set(t ThreadID, v T) {
	m.ensure(t)
	m.data[t] = v
	m.set[t] = true
}

func (m *denseThreadMap[T]) Get(t ThreadID) (T, bool) {
	if t < 0 || int(t) >= len(m.data) || !m.set[t] {
		var zero T
		return zero, false
	}
	return m.data[t], true
}

func (m *denseThreadMap[T]) Delete(t ThreadID) {
	if t >= 0 && int(t) < len(m.set) {
		m.set[t] = false
		var zero T
		m.data[t] = zero
	}
}

func (m *denseThreadMap[T]) Threads() []ThreadID {
	out := make([]ThreadID, 0, len(m.data))
	for i, ok := range m.set {
		if ok {
			out = append(out, ThreadID(i))
		}
	}
	return out
}

func (m *denseThreadMap[T]) Clone() *denseThreadMap[T] {
	out := &denseThreadMap[T]{
		data: make([]T, len(m.data)),
		set:  make([]bool, len(m.set)),
	}
	copy(out.data, m.data)
	copy(out.set, m.set)
	return out
}

// allocationIndex maps an allocated object's handle to the id of the Send
// event that allocated it.
type allocationIndex struct {
	byObject map[ObjectHandle]EventID
}

func newAllocationIndex() *allocationIndex {
	return &allocationIndex{byObject: make(map[ObjectHandle]EventID)}
}

func (a *allocationIndex) record(obj ObjectHandle, e EventID) { a.byObject[obj] = e }

func (a *allocationIndex) lookup(obj ObjectHandle) (EventID, bool) {
	e, ok := a.byObject[obj]
	return e, ok
}

func (a *allocationIndex) clone() *allocationIndex {
	out := newAllocationIndex()
	for k, v := range a.byObject {
		out.byObject[k] = v
	}
	return out
}

// sortedEventIDs is a sorted-by-id set of event ids supporting O(log n)
// membership and insertion, iterated in deterministic (id) order. Only the
// tests use it; pinned sets are Frontier values and dependency lists are
// plain slices.
type sortedEventIDs struct {
	ids []EventID
}

func newSortedEventIDs(ids ...EventID) *sortedEventIDs {
	s := &sortedEventIDs{ids: append([]EventID(nil), ids...)}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	return s
}

func (s *sortedEventIDs) Contains(id EventID) bool {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	return i < len(s.ids) && s.ids[i] == id
}

func (s *sortedEventIDs) Add(id EventID) {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	if i < len(s.ids) && s.ids[i] == id {
		return
	}
	s.ids = append(s.ids, NoEvent)
	copy(s.ids[i+1:], s.ids[i:])
	s.ids[i] = id
}

func (s *sortedEventIDs) Slice() []EventID { return append([]EventID(nil), s.ids...) }

func (s *sortedEventIDs) Clone() *sortedEventIDs {
	return &sortedEventIDs{ids: append([]EventID(nil), s.ids...)}
}

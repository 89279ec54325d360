package hid

import "sync"

// QueueCapacity is the fixed number of snapshots the report queue holds.
const QueueCapacity = 16

// Queue is a bounded FIFO of snapshots between the report callback and the
// bridge loop. It is safe for one producer and one consumer; the lock is
// held only for the index updates, never across a transmission.
//
// A full queue rejects the newest snapshot rather than overwriting the
// oldest, so buffered key transitions are never reordered or lost silently.
type Queue struct {
	mu    sync.Mutex
	buf   [QueueCapacity]Snapshot
	head  int
	tail  int
	count int
}

// TryPush enqueues snap. It returns false, leaving the queue unchanged,
// when the queue is full.
func (q *Queue) TryPush(snap Snapshot) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == QueueCapacity {
		return false
	}
	q.buf[q.head] = snap
	q.head = (q.head + 1) % QueueCapacity
	q.count++
	return true
}

// TryPop removes and returns the oldest snapshot. The second return value
// is false when the queue is empty.
func (q *Queue) TryPop() (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return Snapshot{}, false
	}
	snap := q.buf[q.tail]
	q.tail = (q.tail + 1) % QueueCapacity
	q.count--
	return snap, true
}

// Clear empties the queue unconditionally. Used on device disconnect so
// stale state from the previous keyboard never reaches the wire.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.head = 0
	q.tail = 0
	q.count = 0
}

// Len returns the number of buffered snapshots.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

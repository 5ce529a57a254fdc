package buffer

import (
	"sync"
)

// Overflow selects what happens when Push hits a capped queue.
type Overflow int

const (
	// DropOldest evicts the head to make room for the new item.
	DropOldest Overflow = iota
	// DropNewest rejects the new item and keeps the queue unchanged.
	DropNewest
)

func (o Overflow) String() string {
	switch o {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	default:
		return "unknown"
	}
}

// ParseOverflow maps a config string to an Overflow. The empty string means
// DropOldest.
func ParseOverflow(s string) (Overflow, bool) {
	switch s {
	case "", "drop_oldest":
		return DropOldest, true
	case "drop_newest":
		return DropNewest, true
	default:
		return DropOldest, false
	}
}

// Queue is an ordered FIFO safe for concurrent use. A maxSize of zero or
// less means the queue is unbounded.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	maxSize int
	policy  Overflow
	dropped uint64
}

func NewQueue[T any](maxSize int, policy Overflow) *Queue[T] {
	return &Queue[T]{
		maxSize: maxSize,
		policy:  policy,
	}
}

// Push appends v to the tail. It reports false when v itself was rejected.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		q.dropped++
		if q.policy == DropNewest {
			return false
		}
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
	}

	q.items = append(q.items, v)
	return true
}

// PushFront puts vs back at the head, in order, ahead of everything queued.
// It is used to requeue items that were taken but not delivered and ignores
// the size cap.
func (q *Queue[T]) PushFront(vs []T) {
	if len(vs) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]T, 0, len(vs)+len(q.items))
	items = append(items, vs...)
	q.items = append(items, q.items...)
}

// DrainAll removes and returns every queued item in FIFO order.
func (q *Queue[T]) DrainAll() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	items := q.items
	q.items = nil
	return items
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxSize > 0 && len(q.items) >= q.maxSize
}

// Dropped returns how many items were lost to the size cap.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

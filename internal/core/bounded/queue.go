// Package bounded provides fixed-capacity containers that reject writes when
// full instead of growing.
package bounded

import "errors"

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 50

var (
	ErrQueueFull  = errors.New("queue is full")
	ErrQueueEmpty = errors.New("queue is empty")
	ErrStackFull  = errors.New("stack is full")
)

// Queue is a FIFO ring buffer. The zero value is not usable; call NewQueue.
type Queue[T any] struct {
	items []T
	front int
	rear  int
	size  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue[T]{items: make([]T, capacity)}
	q.Reset()
	return q
}

// Reset drops every entry and rewinds the indices.
func (q *Queue[T]) Reset() {
	clear(q.items)
	q.front = 0
	q.rear = -1
	q.size = 0
}

func (q *Queue[T]) IsEmpty() bool { return q.size == 0 }

func (q *Queue[T]) IsFull() bool { return q.size == len(q.items) }

func (q *Queue[T]) Len() int { return q.size }

func (q *Queue[T]) Cap() int { return len(q.items) }

// Enqueue appends item at the rear. A full queue is left untouched.
func (q *Queue[T]) Enqueue(item T) error {
	if q.IsFull() {
		return ErrQueueFull
	}
	q.rear = (q.rear + 1) % len(q.items)
	q.items[q.rear] = item
	q.size++
	return nil
}

// Dequeue removes and returns the front item.
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, ErrQueueEmpty
	}
	item := q.items[q.front]
	q.items[q.front] = zero
	q.front = (q.front + 1) % len(q.items)
	q.size--
	return item, nil
}

// Peek returns the front item without removing it.
func (q *Queue[T]) Peek() (T, error) {
	if q.IsEmpty() {
		var zero T
		return zero, ErrQueueEmpty
	}
	return q.items[q.front], nil
}

// Items returns a copy of the queue contents from front to rear.
func (q *Queue[T]) Items() []T {
	out := make([]T, 0, q.size)
	idx := q.front
	for i := 0; i < q.size; i++ {
		out = append(out, q.items[idx])
		idx = (idx + 1) % len(q.items)
	}
	return out
}

package bounded

const emptyTop = -1

// Stack is a LIFO container with a fixed capacity. It only grows: entries are
// read back through Items, most recent first.
type Stack[T any] struct {
	items []T
	top   int
}

func NewStack[T any](capacity int) *Stack[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack[T]{items: make([]T, capacity), top: emptyTop}
}

func (s *Stack[T]) Reset() {
	clear(s.items)
	s.top = emptyTop
}

func (s *Stack[T]) IsEmpty() bool { return s.top == emptyTop }

func (s *Stack[T]) IsFull() bool { return s.top == len(s.items)-1 }

func (s *Stack[T]) Len() int { return s.top + 1 }

func (s *Stack[T]) Cap() int { return len(s.items) }

// Push stores item on top. A full stack is left untouched.
func (s *Stack[T]) Push(item T) error {
	if s.IsFull() {
		return ErrStackFull
	}
	s.top++
	s.items[s.top] = item
	return nil
}

// Items returns a copy of the stack contents from top to bottom.
func (s *Stack[T]) Items() []T {
	out := make([]T, 0, s.Len())
	for i := s.top; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out
}

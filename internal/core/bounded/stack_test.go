package bounded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStack_Empty(t *testing.T) {
	s := NewStack[string](2)

	assert.True(t, s.IsEmpty())
	assert.False(t, s.IsFull())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
	assert.Equal(t, DefaultCapacity, NewStack[string](0).Cap())
}

func TestStack_ItemsAreMostRecentFirst(t *testing.T) {
	s := NewStack[string](3)
	require.NoError(t, s.Push("A"))
	require.NoError(t, s.Push("B"))

	assert.Equal(t, []string{"B", "A"}, s.Items())
}

func TestStack_PushFull(t *testing.T) {
	s := NewStack[int](2)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	require.True(t, s.IsFull())

	err := s.Push(3)

	assert.ErrorIs(t, err, ErrStackFull)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{2, 1}, s.Items())
}

func TestStack_ItemsIsACopy(t *testing.T) {
	s := NewStack[int](2)
	require.NoError(t, s.Push(1))

	items := s.Items()
	items[0] = 99

	assert.Equal(t, []int{1}, s.Items())
}

func TestStack_Reset(t *testing.T) {
	s := NewStack[int](1)
	require.NoError(t, s.Push(1))

	s.Reset()

	assert.True(t, s.IsEmpty())
	assert.NoError(t, s.Push(2))
}

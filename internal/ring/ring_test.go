package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowPartialFill(t *testing.T) {
	w := New[int](3)
	w.Push(1)
	w.Push(2)

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 3, w.Cap())
	assert.Equal(t, []int{1, 2}, w.Snapshot())
}

func TestWindowWraparound(t *testing.T) {
	w := New[int](3)
	for i := 1; i <= 5; i++ {
		w.Push(i)
	}

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []int{3, 4, 5}, w.Snapshot())
}

func TestWindowZeroCapacity(t *testing.T) {
	w := New[string](0)
	w.Push("dropped")

	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.Snapshot())
}

func TestWindowNegativeCapacity(t *testing.T) {
	w := New[int](-2)
	w.Push(1)

	assert.Equal(t, 0, w.Cap())
	assert.Empty(t, w.Snapshot())
}

func TestWindowClear(t *testing.T) {
	w := New[int](2)
	w.Push(1)
	w.Push(2)
	w.Push(3)
	w.Clear()

	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 2, w.Cap())
	assert.Empty(t, w.Snapshot())

	// Usable again after clearing.
	w.Push(7)
	assert.Equal(t, []int{7}, w.Snapshot())
}

func TestWindowSnapshotIsCopy(t *testing.T) {
	w := New[int](2)
	w.Push(1)
	s := w.Snapshot()
	s[0] = 99

	assert.Equal(t, []int{1}, w.Snapshot())
}

func TestWindowLongSequence(t *testing.T) {
	w := New[int](4)
	for i := 0; i < 100; i++ {
		w.Push(i)
	}
	assert.Equal(t, []int{96, 97, 98, 99}, w.Snapshot())
}

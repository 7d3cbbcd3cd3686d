// Package ring provides a fixed-capacity ring buffer.
//
// It backs the filter engine's context window: the engine needs the last N
// lines at any point in a stream without holding the whole file in memory.
package ring

// Window is a bounded FIFO over T. Once full, each push overwrites the
// oldest element. A Window is single-owner; it is not safe for concurrent use.
type Window[T any] struct {
	buf   []T
	start int
	count int
}

// New creates a Window holding at most capacity elements. A capacity of zero
// (or less) yields a window that discards every push.
func New[T any](capacity int) *Window[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element if the window is full.
func (w *Window[T]) Push(v T) {
	if len(w.buf) == 0 {
		return
	}
	if w.count < len(w.buf) {
		w.buf[(w.start+w.count)%len(w.buf)] = v
		w.count++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Snapshot returns the held elements oldest-first. The returned slice is a
// copy; mutating it does not affect the window.
func (w *Window[T]) Snapshot() []T {
	out := make([]T, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(w.start+i)%len(w.buf)])
	}
	return out
}

// Clear empties the window without changing its capacity.
func (w *Window[T]) Clear() {
	var zero T
	for i := range w.buf {
		w.buf[i] = zero
	}
	w.start = 0
	w.count = 0
}

// Len returns the number of elements currently held.
func (w *Window[T]) Len() int { return w.count }

// Cap returns the fixed capacity set at construction.
func (w *Window[T]) Cap() int { return len(w.buf) }

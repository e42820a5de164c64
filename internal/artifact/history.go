package artifact

// history is a fixed-capacity FIFO ring buffer. Appending past capacity
// overwrites the oldest entry in O(1), so a hot artifact never pays a
// front-shift penalty.
//
// Not safe for concurrent use; Store serializes access.
type history[T any] struct {
	buf   []T
	head  int // index of the oldest entry
	count int
}

func newHistory[T any](capacity int) *history[T] {
	return &history[T]{buf: make([]T, capacity)}
}

// push appends v, evicting the oldest entry when the buffer is full.
// Reports whether an eviction happened.
func (h *history[T]) push(v T) bool {
	if h.count < len(h.buf) {
		h.buf[(h.head+h.count)%len(h.buf)] = v
		h.count++
		return false
	}
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
	return true
}

// size returns the number of stored entries.
func (h *history[T]) size() int {
	return h.count
}

// at returns the i-th entry counting from the oldest. The caller must
// keep i within [0, size).
func (h *history[T]) at(i int) T {
	return h.buf[(h.head+i)%len(h.buf)]
}

// newest returns the most recently pushed entry.
func (h *history[T]) newest() (T, bool) {
	if h.count == 0 {
		var zero T
		return zero, false
	}
	return h.at(h.count - 1), true
}

// all returns the entries oldest-first in a fresh slice.
func (h *history[T]) all() []T {
	out := make([]T, h.count)
	for i := range out {
		out[i] = h.at(i)
	}
	return out
}

// Package ringbuf provides the fixed-capacity FIFO ring that bounds every
// history the session keeps.
package ringbuf

// Ring stores up to a fixed number of elements in insertion order. Pushing
// past capacity evicts the oldest element and hands it back to the caller so
// it can be recycled or inspected. Capacity never changes after construction.
type Ring[T any] struct {
	items []T
	head  int
	count int
}

// New constructs an empty ring with the provided capacity.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// PushBack appends a value. When the ring is full the oldest element is
// removed first and returned with true.
func (r *Ring[T]) PushBack(v T) (T, bool) {
	var evicted T
	full := r.count == len(r.items)
	if full {
		evicted = r.items[r.head]
		var zero T
		r.items[r.head] = zero
		r.head = (r.head + 1) % len(r.items)
		r.count--
	}
	r.items[(r.head+r.count)%len(r.items)] = v
	r.count++
	return evicted, full
}

// Front returns the oldest element without removing it.
func (r *Ring[T]) Front() (T, bool) {
	return r.At(0)
}

// Back returns the newest element without removing it.
func (r *Ring[T]) Back() (T, bool) {
	return r.At(r.count - 1)
}

// At returns the element at the given position, 0 being the oldest.
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.count {
		return zero, false
	}
	return r.items[(r.head+i)%len(r.items)], true
}

// PopFront removes and returns the oldest element.
func (r *Ring[T]) PopFront() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.count--
	return v, true
}

// PopBack removes and returns the newest element.
func (r *Ring[T]) PopBack() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	idx := (r.head + r.count - 1) % len(r.items)
	v := r.items[idx]
	r.items[idx] = zero
	r.count--
	return v, true
}

// Len reports the number of stored elements.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap reports the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Empty reports whether the ring holds no elements.
func (r *Ring[T]) Empty() bool {
	return r.count == 0
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package ringbuffer implements the fixed-capacity scalar FIFO that
// backs shingled points: the forest appends one scalar per sample and,
// once full, evicts the oldest on the next append. Logical indices
// increase monotonically across the buffer's lifetime so a shingled
// point can remember "where" it started without caring how many times
// the underlying slice has wrapped.
//
// Grounded on the teacher's comp/observer/impl/queue package (a
// slice-backed FIFO of float64 that compacts after a run of dequeues),
// adapted to a fixed capacity with eviction and stable logical
// addressing instead of unbounded growth.
package ringbuffer

// RingBuffer is a fixed-capacity circular queue of float64 scalars.
// It is not safe for concurrent use.
type RingBuffer struct {
	data     []float64
	capacity int
	start    int // index into data of the oldest live element
	count    int // number of live elements
	oldestID int64 // logical index of the oldest live element
}

// New returns an empty RingBuffer with the given capacity. Capacity
// must be positive.
func New(capacity int) *RingBuffer {
	if capacity <= 0 {
		panic("ringbuffer: capacity must be positive")
	}
	return &RingBuffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// Len reports the number of scalars currently held.
func (r *RingBuffer) Len() int { return r.count }

// Cap reports the buffer's fixed capacity.
func (r *RingBuffer) Cap() int { return r.capacity }

// Full reports whether the next Append will evict the oldest element.
func (r *RingBuffer) Full() bool { return r.count == r.capacity }

// OldestIndex returns the logical index of the oldest live scalar, and
// false if the buffer is empty.
func (r *RingBuffer) OldestIndex() (int64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.oldestID, true
}

// NewestIndex returns the logical index of the most recently appended
// scalar, and false if the buffer is empty.
func (r *RingBuffer) NewestIndex() (int64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.oldestID + int64(r.count) - 1, true
}

// Append adds one scalar, evicting the oldest if the buffer is already
// at capacity. It returns the logical index assigned to the new
// scalar.
func (r *RingBuffer) Append(v float64) int64 {
	writeAt := (r.start + r.count) % r.capacity
	if r.count == r.capacity {
		// Evict: the slot we're about to write is the current oldest.
		r.start = (r.start + 1) % r.capacity
		r.oldestID++
		r.data[writeAt] = v
		return r.oldestID + int64(r.count) - 1
	}
	r.data[writeAt] = v
	r.count++
	return r.oldestID + int64(r.count) - 1
}

// At returns the scalar at the given logical index, and false if that
// index has been evicted or has not been written yet.
func (r *RingBuffer) At(logicalIndex int64) (float64, bool) {
	if r.count == 0 {
		return 0, false
	}
	newest := r.oldestID + int64(r.count) - 1
	if logicalIndex < r.oldestID || logicalIndex > newest {
		return 0, false
	}
	offset := int(logicalIndex - r.oldestID)
	return r.data[(r.start+offset)%r.capacity], true
}

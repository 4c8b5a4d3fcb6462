// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import "github.com/cutforest/rrcf/internal/ringbuffer"

// Point is a read-only view of d floating-point coordinates. The
// general tree stores DensePoint leaves; the shingled tree stores
// ShingledPoint leaves, which reconstruct their coordinates on demand
// from a shared ring buffer instead of owning an array.
type Point interface {
	Dim() int
	At(i int) float64
	// Equal reports whether two points of the same concrete kind
	// denote the same logical sample. Dense points compare
	// coordinate-wise; shingled points compare by window identity
	// (same start index), per spec.
	Equal(other Point) bool
}

// DensePoint owns its coordinates outright.
type DensePoint []float64

// Dim implements Point.
func (p DensePoint) Dim() int { return len(p) }

// At implements Point.
func (p DensePoint) At(i int) float64 { return p[i] }

// Equal implements Point: two dense points are equal iff they have the
// same dimension and identical coordinates.
func (p DensePoint) Equal(other Point) bool {
	o, ok := other.(DensePoint)
	if !ok || len(o) != len(p) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ShingledPoint is a width-d sliding window over a shared ring buffer
// of scalars, identified by the logical index of its first scalar.
type ShingledPoint struct {
	buf   *ringbuffer.RingBuffer
	start int64
	width int
}

// NewShingledPoint constructs a width-wide window starting at the
// given logical ring-buffer index.
func NewShingledPoint(buf *ringbuffer.RingBuffer, start int64, width int) ShingledPoint {
	return ShingledPoint{buf: buf, start: start, width: width}
}

// Dim implements Point.
func (p ShingledPoint) Dim() int { return p.width }

// At implements Point. It panics if the coordinate has been evicted
// from the ring buffer, which would indicate the forest forgot a
// shingle before removing it from every tree referencing it — a
// resource-ownership violation the spec requires the forest to avoid.
func (p ShingledPoint) At(i int) float64 {
	v, ok := p.buf.At(p.start + int64(i))
	assertf(ok, "shingled point coordinate evicted from ring buffer")
	return v
}

// Equal implements Point: two shingled points are equal iff they refer
// to the same logical window, regardless of width (widths always
// match within one tree).
func (p ShingledPoint) Equal(other Point) bool {
	o, ok := other.(ShingledPoint)
	return ok && o.start == p.start && o.buf == p.buf
}

// Start returns the logical ring-buffer index this window begins at.
func (p ShingledPoint) Start() int64 { return p.start }

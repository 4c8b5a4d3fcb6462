// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

// boxMeta is the bit-packed incremental bounding-box representation
// used by every branch of ShingledTree: one direction bit plus one
// stored scalar per dimension, per bound (min and max), instead of two
// full child boxes. The tighter child inherits the parent's bound on
// that axis; the looser child's bound is the stored value. See
// spec.md §3/§9.
type boxMeta struct {
	minDirBit []bool    // true: left child is looser (branch min == right's min)
	minVal    []float64 // looser child's min, per dimension
	maxDirBit []bool    // true: left child is looser (branch max == right's max)
	maxVal    []float64 // looser child's max, per dimension
}

// computeBoxMeta derives a branch's bit-packed metadata and its own
// combined box from its two children's exact boxes. Ties are broken
// deterministically in the left child's favor (left child is treated
// as the tighter one), per spec.md §9.
func computeBoxMeta(ndim int, leftLo, leftHi, rightLo, rightHi []float64) (m boxMeta, lo, hi []float64) {
	m = boxMeta{
		minDirBit: make([]bool, ndim),
		minVal:    make([]float64, ndim),
		maxDirBit: make([]bool, ndim),
		maxVal:    make([]float64, ndim),
	}
	lo = make([]float64, ndim)
	hi = make([]float64, ndim)
	for i := 0; i < ndim; i++ {
		if leftLo[i] <= rightLo[i] {
			m.minDirBit[i] = false // right is looser
			m.minVal[i] = rightLo[i]
			lo[i] = leftLo[i]
		} else {
			m.minDirBit[i] = true // left is looser
			m.minVal[i] = leftLo[i]
			lo[i] = rightLo[i]
		}
		if leftHi[i] >= rightHi[i] {
			m.maxDirBit[i] = false // right is looser (smaller max)
			m.maxVal[i] = rightHi[i]
			hi[i] = leftHi[i]
		} else {
			m.maxDirBit[i] = true // left is looser
			m.maxVal[i] = leftHi[i]
			hi[i] = rightHi[i]
		}
	}
	return m, lo, hi
}

// decodeChildBox reconstructs the box of one child of a branch given
// the branch's own combined box (parentLo, parentHi) and its
// bit-packed metadata. This is the O(d) operation the encoding exists
// to make possible.
func decodeChildBox(parentLo, parentHi []float64, m boxMeta, wantLeft bool) (lo, hi []float64) {
	ndim := len(parentLo)
	lo = make([]float64, ndim)
	hi = make([]float64, ndim)
	for i := 0; i < ndim; i++ {
		looserIsLeft := m.minDirBit[i]
		if wantLeft == looserIsLeft {
			lo[i] = m.minVal[i]
		} else {
			lo[i] = parentLo[i]
		}

		maxLooserIsLeft := m.maxDirBit[i]
		if wantLeft == maxLooserIsLeft {
			hi[i] = m.maxVal[i]
		} else {
			hi[i] = parentHi[i]
		}
	}
	return lo, hi
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

// Cut is a random axis-aligned split: points with coord[Dim] <= Value
// go left, others go right.
type Cut struct {
	Dim   int
	Value float64
}

// selectCut implements the spec's random-cut selection: extend [lo,hi]
// to include p, draw r uniformly over the total span, and pick the
// dimension whose cumulative span first covers r. The cut value always
// lies strictly inside the extended box on the chosen dimension.
//
// It also returns the extended box (extLo, extHi), which callers need
// immediately after to decide escape vs. descend (spec §4.3) without
// recomputing min/max(lo, p) a second time.
func selectCut(lo, hi []float64, p Point, rng Source) (cut Cut, extLo, extHi []float64) {
	ndim := len(lo)
	extLo = make([]float64, ndim)
	extHi = make([]float64, ndim)
	span := make([]float64, ndim)
	total := 0.0
	for i := 0; i < ndim; i++ {
		v := p.At(i)
		extLo[i] = min(lo[i], v)
		extHi[i] = max(hi[i], v)
		span[i] = extHi[i] - extLo[i]
		total += span[i]
	}

	assertf(total > 0, "selectCut called with zero-span box (duplicate point should have been caught earlier)")

	r := rng.Float64() * total
	cumulative := 0.0
	dim := ndim - 1 // guards against float rounding leaving r just past the last cumulative sum
	for i := 0; i < ndim; i++ {
		cumulative += span[i]
		if cumulative >= r {
			dim = i
			break
		}
	}
	value := extLo[dim] + (cumulative - r)
	return Cut{Dim: dim, Value: value}, extLo, extHi
}

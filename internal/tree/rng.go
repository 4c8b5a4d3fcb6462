// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import "math/rand"

// Source is the seeded uniform-real generator a tree draws cuts from.
// *rand.Rand satisfies it directly, matching the teacher's kept test
// file, which seeds trees with rand.New(rand.NewSource(seed)).
type Source interface {
	Float64() float64
}

// NewSource returns a Source seeded deterministically. Reproducibility
// is only required within a single implementation given identical
// seeds, never across languages or differently-seeded runs.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

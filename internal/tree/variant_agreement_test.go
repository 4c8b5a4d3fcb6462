// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import (
	"strings"
	"testing"

	"github.com/cutforest/rrcf/internal/ringbuffer"
)

// stripBoxSuffix removes the ", box: (...)" suffix ShingledTree's
// String() appends to every branch line, leaving the cut-and-skeleton
// structure that GeneralTree also renders. See SPEC_FULL.md §4's
// resolution of the variant-agreement requirement: the two variants
// must make identical random-cut decisions for the same seed and
// input sequence, which this comparison verifies without requiring
// the general variant to fabricate a box it never caches.
func stripBoxSuffix(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, ", box: ("); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// TestVariantAgreement_SeededSequence is spec.md §8 scenario 6: with a
// fixed RNG seed, the same insertion sequence must yield structurally
// identical trees in both variants.
func TestVariantAgreement_SeededSequence(t *testing.T) {
	dense := []DensePoint{{1, 0}, {0, 1}, {1, 1}, {0, 0}}

	const seed = 7
	general := NewGeneralTree(NewSource(seed), 2)
	for _, p := range dense {
		if _, err := general.InsertPoint(p); err != nil {
			t.Fatalf("general InsertPoint: %v", err)
		}
	}

	buf := ringbuffer.New(len(dense) * 2)
	shingled := NewShingledTree(NewSource(seed), 2)
	for _, p := range dense {
		start := buf.Append(p[0])
		buf.Append(p[1])
		sp := NewShingledPoint(buf, start, 2)
		if _, err := shingled.InsertPoint(sp); err != nil {
			t.Fatalf("shingled InsertPoint: %v", err)
		}
	}

	got := stripBoxSuffix(shingled.String())
	want := general.String()
	if got != want {
		t.Errorf("variant rendering mismatch:\ngeneral:\n%s\nshingled (box stripped):\n%s", want, got)
	}
}

// TestVariantAgreement_Deterministic runs the same sequence twice
// against independently seeded trees and checks byte-identical
// output, per spec.md §8 scenario 6's reproducibility requirement.
func TestVariantAgreement_Deterministic(t *testing.T) {
	build := func() string {
		tr := NewGeneralTree(NewSource(99), 2)
		for _, p := range []DensePoint{{1, 0}, {0, 1}, {1, 1}, {0, 0}} {
			if _, err := tr.InsertPoint(p); err != nil {
				t.Fatalf("InsertPoint: %v", err)
			}
		}
		return tr.String()
	}
	a := build()
	b := build()
	if a != b {
		t.Errorf("expected identical renderings across independent runs with the same seed:\n%s\nvs\n%s", a, b)
	}
}

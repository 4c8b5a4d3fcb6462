// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import "testing"

// TestCoDisp_FloorSemantics is spec.md §8 scenario 5: a hand-built
// ancestor chain with sibling counts {7,2,1} against node counts
// {1,3,4} must yield CoDisp = max(7/1, 2/3, 1/4) = 7 under integer
// (floor) division. The branch counts here are deliberately set to the
// scenario's literal numbers rather than derived from real leaf
// contents, since the scenario exists to pin down the floor-division
// walk itself, not to exercise insertion.
func TestCoDisp_FloorSemantics(t *testing.T) {
	leaf := &gLeaf{num: 1}
	sib1 := &gLeaf{num: 7}
	branch1 := &gBranch{left: leaf, right: sib1, num: 3}
	leaf.parent = branch1
	sib1.parent = branch1

	sib2 := &gLeaf{num: 2}
	branch2 := &gBranch{left: branch1, right: sib2, num: 4}
	branch1.parent = branch2
	sib2.parent = branch2

	sib3 := &gLeaf{num: 1}
	root := &gBranch{left: branch2, right: sib3, num: 5}
	branch2.parent = root
	sib3.parent = root

	tr := &GeneralTree{root: root, ndim: 1}

	if got := tr.CoDisp(leaf); got != 7 {
		t.Errorf("CoDisp = %d, want 7", got)
	}
	if got := tr.Disp(leaf); got != 7 {
		t.Errorf("Disp = %d, want 7", got)
	}
}

func TestCoDisp_RootIsZero(t *testing.T) {
	leaf := &gLeaf{num: 1}
	tr := &GeneralTree{root: leaf, ndim: 1}
	if got := tr.CoDisp(leaf); got != 0 {
		t.Errorf("CoDisp of root = %d, want 0", got)
	}
	if got := tr.Disp(leaf); got != 0 {
		t.Errorf("Disp of root = %d, want 0", got)
	}
}

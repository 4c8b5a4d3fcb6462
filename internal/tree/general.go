// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import (
	"fmt"
	"strings"
)

// gNode is the tagged Leaf/Branch variant for GeneralTree, encoded the
// way the teacher's kept test file encodes it: an interface satisfied
// by two concrete pointer types, discriminated by type assertion
// (tree.root.(*branch) in the teacher's own tests) rather than an
// explicit discriminant field.
type gNode interface {
	gNum() int
}

type gLeaf struct {
	point  DensePoint
	parent *gBranch
	depth  int
	num    int
}

func (l *gLeaf) gNum() int { return l.num }

type gBranch struct {
	cut    Cut
	left   gNode
	right  gNode
	parent *gBranch
	num    int
}

func (b *gBranch) gNum() int { return b.num }

// GeneralTree stores full d-dimensional points at every leaf and
// recomputes bounding boxes by traversal instead of caching them,
// matching spec.md §3's description of the "general" variant.
type GeneralTree struct {
	root gNode
	ndim int
	rng  Source
}

// NewGeneralTree returns an empty tree of the given dimension.
func NewGeneralTree(rng Source, dimension int) *GeneralTree {
	if dimension <= 0 {
		invariantViolation("dimension must be positive")
	}
	return &GeneralTree{ndim: dimension, rng: rng}
}

// Dim returns the tree's fixed dimension.
func (t *GeneralTree) Dim() int { return t.ndim }

// Empty reports whether the tree currently holds no points.
func (t *GeneralTree) Empty() bool { return t.root == nil }

// boxOf computes the exact coordinate-wise min/max over every leaf in
// the subtree rooted at n. General trees recompute this on demand
// rather than caching it, per spec.
func boxOf(n gNode, ndim int) (lo, hi []float64) {
	switch v := n.(type) {
	case *gLeaf:
		lo = make([]float64, ndim)
		hi = make([]float64, ndim)
		for i := 0; i < ndim; i++ {
			lo[i] = v.point.At(i)
			hi[i] = v.point.At(i)
		}
		return lo, hi
	case *gBranch:
		llo, lhi := boxOf(v.left, ndim)
		rlo, rhi := boxOf(v.right, ndim)
		lo = make([]float64, ndim)
		hi = make([]float64, ndim)
		for i := 0; i < ndim; i++ {
			lo[i] = min(llo[i], rlo[i])
			hi[i] = max(lhi[i], rhi[i])
		}
		return lo, hi
	}
	invariantViolation("unknown gNode concrete type")
	return nil, nil
}

func gParentOf(n gNode) *gBranch {
	switch v := n.(type) {
	case *gLeaf:
		return v.parent
	case *gBranch:
		return v.parent
	}
	invariantViolation("unknown gNode concrete type")
	return nil
}

func gSetParent(n gNode, parent *gBranch) {
	switch v := n.(type) {
	case *gLeaf:
		v.parent = parent
	case *gBranch:
		v.parent = parent
	default:
		invariantViolation("unknown gNode concrete type")
	}
}

func gBumpDepth(n gNode, delta int) {
	switch v := n.(type) {
	case *gLeaf:
		v.depth += delta
	case *gBranch:
		gBumpDepth(v.left, delta)
		gBumpDepth(v.right, delta)
	}
}

func gBranchDepth(b *gBranch) int {
	d := 0
	for p := b.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func gIncrementAncestors(b *gBranch, delta int) {
	for cur := b; cur != nil; cur = cur.parent {
		cur.num += delta
	}
}

// InsertPoint implements spec.md §4.1/§4.3. If an equal leaf already
// exists, its count (and every ancestor's count) is incremented and
// that leaf is returned; otherwise a new leaf is created and spliced
// in by displacing the subtree the random cut landed on.
func (t *GeneralTree) InsertPoint(p DensePoint) (leaf *gLeaf, err error) {
	if p.Dim() != t.ndim {
		return nil, fmt.Errorf("general tree insert: %w", ErrDimensionMismatch)
	}
	defer recoverInvariant(&err)
	if t.root == nil {
		leaf := &gLeaf{point: p, num: 1}
		t.root = leaf
		return leaf, nil
	}
	if existing := t.FindLeaf(p); existing != nil {
		existing.num++
		gIncrementAncestors(existing.parent, 1)
		return existing, nil
	}

	node := t.root
	lo, hi := boxOf(node, t.ndim)
	for {
		cut, _, _ := selectCut(lo, hi, p, t.rng)

		if cut.Value < lo[cut.Dim] {
			return t.splice(p, cut, node, true), nil
		}
		if cut.Value >= hi[cut.Dim] && p.At(cut.Dim) > cut.Value {
			return t.splice(p, cut, node, false), nil
		}

		b, ok := node.(*gBranch)
		assertf(ok, "descent reached a leaf without resolving a cut")
		if p.At(b.cut.Dim) <= b.cut.Value {
			node = b.left
		} else {
			node = b.right
		}
		lo, hi = boxOf(node, t.ndim)
	}
}

// splice inserts a new branch between node's current parent and node,
// with the new leaf on the given side (newLeafOnLeft) and node
// demoted to the other side.
func (t *GeneralTree) splice(p DensePoint, cut Cut, node gNode, newLeafOnLeft bool) *gLeaf {
	parent := gParentOf(node)
	newBranch := &gBranch{cut: cut, parent: parent}
	newLeaf := &gLeaf{point: p, num: 1}

	if newLeafOnLeft {
		newBranch.left, newBranch.right = newLeaf, node
	} else {
		newBranch.left, newBranch.right = node, newLeaf
	}
	newBranch.num = node.gNum() + 1
	newLeaf.parent = newBranch
	gSetParent(node, newBranch)
	gBumpDepth(node, 1)
	newLeaf.depth = gBranchDepth(newBranch) + 1

	if parent == nil {
		t.root = newBranch
	} else if parent.left == node {
		parent.left = newBranch
	} else {
		parent.right = newBranch
	}
	gIncrementAncestors(parent, 1)
	return newLeaf
}

// ForgetPoint implements spec.md §4.1. It returns ErrNotFound if no
// leaf equals p.
func (t *GeneralTree) ForgetPoint(p DensePoint) (leaf *gLeaf, err error) {
	if p.Dim() != t.ndim {
		return nil, fmt.Errorf("general tree forget: %w", ErrDimensionMismatch)
	}
	defer recoverInvariant(&err)
	found := t.FindLeaf(p)
	if found == nil {
		return nil, fmt.Errorf("general tree forget: %w", ErrNotFound)
	}
	return t.removeLeaf(found)
}

// ForgetLeaf removes one occurrence of an already-held leaf handle
// directly, bypassing FindLeaf/Query entirely. A caller holding a leaf
// returned by a prior InsertPoint on this same tree can use this to
// retract it without the query-then-compare path's documented
// limitation (spec.md §9) ever risking a spurious ErrNotFound for a
// point known to still be present.
func (t *GeneralTree) ForgetLeaf(leaf *gLeaf) (result *gLeaf, err error) {
	defer recoverInvariant(&err)
	return t.removeLeaf(leaf)
}

// removeLeaf is the shared decrement-or-splice-out body of ForgetPoint
// and ForgetLeaf, operating on an already-located leaf.
func (t *GeneralTree) removeLeaf(leaf *gLeaf) (*gLeaf, error) {
	if leaf.num > 1 {
		leaf.num--
		gIncrementAncestors(leaf.parent, -1)
		return leaf, nil
	}

	parent := leaf.parent
	if parent == nil {
		t.root = nil
		return leaf, nil
	}
	var sibling gNode
	if parent.left == gNode(leaf) {
		sibling = parent.right
	} else {
		sibling = parent.left
	}
	grand := parent.parent
	if grand == nil {
		t.root = sibling
		gSetParent(sibling, nil)
	} else {
		if grand.left == gNode(parent) {
			grand.left = sibling
		} else {
			grand.right = sibling
		}
		gSetParent(sibling, grand)
		gIncrementAncestors(grand, -1)
	}
	gBumpDepth(sibling, -1)
	return leaf, nil
}

// Query descends from the root using p's coordinates at each branch's
// cut dimension and returns the leaf reached. It does not guarantee
// the returned leaf equals p.
func (t *GeneralTree) Query(p DensePoint) *gLeaf {
	if t.root == nil {
		return nil
	}
	node := t.root
	for {
		if l, ok := node.(*gLeaf); ok {
			return l
		}
		b := node.(*gBranch)
		if p.At(b.cut.Dim) <= b.cut.Value {
			node = b.left
		} else {
			node = b.right
		}
	}
}

// FindLeaf returns the leaf equal to p, or nil. Per spec's documented
// limitation (carried over, not fixed): it is query-then-compare, so a
// point that exists in the tree but whose cut-guided descent no
// longer lands on it (after restructuring) will not be found.
func (t *GeneralTree) FindLeaf(p DensePoint) *gLeaf {
	l := t.Query(p)
	if l != nil && l.point.Equal(p) {
		return l
	}
	return nil
}

// CoDisp implements spec.md §4.4: the maximum sibling/self count
// ratio, floor-divided, walking from the leaf to the root. Returns 0
// for the root leaf.
func (t *GeneralTree) CoDisp(leaf *gLeaf) int {
	if leaf.parent == nil {
		return 0
	}
	maxRatio := 0
	var node gNode = leaf
	for {
		parent := gParentOf(node)
		if parent == nil {
			return maxRatio
		}
		var sibling gNode
		if parent.left == node {
			sibling = parent.right
		} else {
			sibling = parent.left
		}
		if ratio := sibling.gNum() / node.gNum(); ratio > maxRatio {
			maxRatio = ratio
		}
		node = parent
	}
}

// Disp returns the one-step displacement of leaf: the sibling/self
// count ratio at its immediate parent, floor-divided. 0 at the root.
func (t *GeneralTree) Disp(leaf *gLeaf) int {
	if leaf.parent == nil {
		return 0
	}
	parent := leaf.parent
	var sibling gNode
	if parent.left == gNode(leaf) {
		sibling = parent.right
	} else {
		sibling = parent.left
	}
	return sibling.gNum() / leaf.gNum()
}

// MapLeaves calls fn for every leaf in post-order.
func (t *GeneralTree) MapLeaves(fn func(*gLeaf)) {
	var walk func(gNode)
	walk = func(n gNode) {
		switch v := n.(type) {
		case *gLeaf:
			fn(v)
		case *gBranch:
			walk(v.left)
			walk(v.right)
		}
	}
	if t.root != nil {
		walk(t.root)
	}
}

// MapBranches calls fn for every branch in post-order.
func (t *GeneralTree) MapBranches(fn func(cut Cut, num int)) {
	var walk func(gNode)
	walk = func(n gNode) {
		if b, ok := n.(*gBranch); ok {
			walk(b.left)
			walk(b.right)
			fn(b.cut, b.num)
		}
	}
	if t.root != nil {
		walk(t.root)
	}
}

// String renders the tree using the box-drawing skeleton shared with
// ShingledTree. General branches omit box metadata (they don't cache
// one); see SPEC_FULL.md's resolution of the byte-identical-output
// requirement.
func (t *GeneralTree) String() string {
	if t.root == nil {
		return ""
	}
	var b strings.Builder
	var walk func(n gNode, prefix string, isLast bool)
	walk = func(n gNode, prefix string, isLast bool) {
		connector := "├─+"
		if isLast {
			connector = "└─+"
		}
		switch v := n.(type) {
		case *gLeaf:
			b.WriteString(prefix)
			b.WriteString(connector[:len(connector)-1])
			b.WriteString(" (")
			for i := 0; i < len(v.point); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%g", v.point[i])
			}
			b.WriteString(")\n")
		case *gBranch:
			b.WriteString(prefix)
			fmt.Fprintf(&b, "%s cut: (%d, %g)\n", connector, v.cut.Dim, v.cut.Value)
			childPrefix := prefix + "│   "
			if isLast {
				childPrefix = prefix + "    "
			}
			walk(v.left, childPrefix, false)
			walk(v.right, childPrefix, true)
		}
	}
	walk(t.root, "", true)
	return b.String()
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package tree implements the Random Cut Tree: the per-tree structure
// backing Robust Random Cut Forest anomaly scoring. It ships two
// variants, GeneralTree (dense, full-point leaves) and ShingledTree
// (leaves reconstructed lazily from a shared ring buffer of scalars),
// which must agree observably for the same seed and operation sequence.
package tree

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a point's dimensionality does
// not match the tree's configured dimension.
var ErrDimensionMismatch = errors.New("tree: point dimension mismatch")

// ErrNotFound is returned by ForgetPoint when no leaf equals the given
// point.
var ErrNotFound = errors.New("tree: point not found")

// ErrEmptyTree names the empty-tree condition. No method of GeneralTree
// or ShingledTree returns it: String() on an empty tree returns "", and
// ForgetPoint on an empty tree returns ErrNotFound.
var ErrEmptyTree = errors.New("tree: empty tree")

// ErrInvariantViolation wraps an internal assertion failure that was
// recovered at a mutating method's API boundary (InsertPoint,
// ForgetPoint, ForgetLeaf) instead of being allowed to panic across
// into the caller. Read-only traversal methods (Query, FindLeaf,
// CoDisp, Disp, MapLeaves, MapBranches, String) have no assertions
// that a consistent tree can trigger, so they do not recover.
var ErrInvariantViolation = errors.New("tree: invariant violation")

// invariantViolation panics with a message identifying a broken
// structural invariant.
func invariantViolation(msg string) {
	panic("tree: invariant violation: " + msg)
}

func assertf(cond bool, msg string) {
	if !cond {
		invariantViolation(msg)
	}
}

// recoverInvariant is deferred by InsertPoint/ForgetPoint/ForgetLeaf on
// both tree variants. It turns a recovered invariantViolation panic
// into an error assigned to the method's named return, so no internal
// assertion failure crosses the package's public API boundary as a
// panic.
func recoverInvariant(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%v: %w", r, ErrInvariantViolation)
	}
}

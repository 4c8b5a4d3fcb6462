// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package tree

import (
	"errors"
	"testing"
)

// TestRecoverInvariant_TranslatesPanicToError exercises the boundary
// recovery InsertPoint/ForgetPoint/ForgetLeaf defer: an
// invariantViolation panic must come back as an error wrapping
// ErrInvariantViolation rather than propagate.
func TestRecoverInvariant_TranslatesPanicToError(t *testing.T) {
	run := func() (err error) {
		defer recoverInvariant(&err)
		invariantViolation("forced for test")
		return nil
	}
	err := run()
	if err == nil {
		t.Fatal("expected a recovered error, got nil")
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected error to wrap ErrInvariantViolation, got %v", err)
	}
}

func TestRecoverInvariant_NoPanicLeavesErrUntouched(t *testing.T) {
	run := func() (err error) {
		defer recoverInvariant(&err)
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("expected nil error when nothing panicked, got %v", err)
	}
}

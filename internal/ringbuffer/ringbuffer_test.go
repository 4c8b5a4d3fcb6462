// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package ringbuffer

import "testing"

func TestRingBuffer_AppendAndRead(t *testing.T) {
	r := New(3)

	if l := r.Len(); l != 0 {
		t.Errorf("expected initial length to be 0, got %d", l)
	}
	if _, ok := r.At(0); ok {
		t.Error("expected At on empty buffer to fail")
	}

	r.Append(1.5)
	r.Append(2.5)
	r.Append(3.5)

	if l := r.Len(); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}
	if !r.Full() {
		t.Error("expected buffer to be full")
	}

	tests := []float64{1.5, 2.5, 3.5}
	for i, want := range tests {
		got, ok := r.At(int64(i))
		if !ok || got != want {
			t.Errorf("At(%d): want (%v,true), got (%v,%v)", i, want, got, ok)
		}
	}
}

func TestRingBuffer_EvictsOldest(t *testing.T) {
	r := New(3)
	r.Append(0)
	r.Append(1)
	r.Append(2)

	r.Append(3) // evicts logical index 0

	if r.Len() != 3 {
		t.Errorf("expected length to remain 3, got %d", r.Len())
	}
	if _, ok := r.At(0); ok {
		t.Error("expected evicted index 0 to be unreadable")
	}
	for i := int64(1); i <= 3; i++ {
		got, ok := r.At(i)
		if !ok || got != float64(i) {
			t.Errorf("At(%d): want (%v,true), got (%v,%v)", i, i, got, ok)
		}
	}

	oldest, ok := r.OldestIndex()
	if !ok || oldest != 1 {
		t.Errorf("expected oldest index 1, got %d (ok=%v)", oldest, ok)
	}
	newest, ok := r.NewestIndex()
	if !ok || newest != 3 {
		t.Errorf("expected newest index 3, got %d (ok=%v)", newest, ok)
	}
}

func TestRingBuffer_ManyWraps(t *testing.T) {
	r := New(4)
	total := 100
	for i := 0; i < total; i++ {
		r.Append(float64(i))
	}

	if r.Len() != 4 {
		t.Errorf("expected length 4, got %d", r.Len())
	}

	newest, _ := r.NewestIndex()
	if newest != int64(total-1) {
		t.Errorf("expected newest index %d, got %d", total-1, newest)
	}

	for i := int64(total - 4); i < int64(total); i++ {
		got, ok := r.At(i)
		if !ok || got != float64(i) {
			t.Errorf("At(%d): want (%v,true), got (%v,%v)", i, i, got, ok)
		}
	}
	if _, ok := r.At(int64(total - 5)); ok {
		t.Error("expected index outside window to be unreadable")
	}
}

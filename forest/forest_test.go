// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package forest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForest_Basic(t *testing.T) {
	f, err := New(Config{NumTrees: 10, WindowSize: 50, ShingleSize: 3, Seed: 42}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, f.Size())

	// Fewer than ShingleSize scalars: no scoring yet.
	score, err := f.AddPoint(1)
	require.NoError(t, err)
	require.Zero(t, score)
	score, err = f.AddPoint(2)
	require.NoError(t, err)
	require.Zero(t, score)
	require.Equal(t, 0, f.Size())

	// Third scalar completes the first shingle.
	_, err = f.AddPoint(3)
	require.NoError(t, err)
	require.Equal(t, 1, f.Size())

	for i := 4; i < 30; i++ {
		if _, err := f.AddPoint(float64(i)); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	require.Equal(t, 27, f.Size())
}

func TestForest_SlidingWindowEviction(t *testing.T) {
	f, err := New(Config{NumTrees: 3, WindowSize: 5, ShingleSize: 2, Seed: 42}, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		if _, err := f.AddPoint(float64(i)); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	// 7 scalars, shingle size 2 -> 6 possible shingles, capped at window 5.
	require.Equal(t, 5, f.Size())
}

// TestForest_EvictionDoesNotPanic drives a forest well past its window
// capacity on every shingle width in play. Eviction forgets the oldest
// shingle using the leaf handle captured at insertion time rather than
// re-deriving it from the ring buffer, so this must run clean however
// many times the ring buffer itself has wrapped and overwritten the
// scalars that shingle's coordinates used to live at.
func TestForest_EvictionDoesNotPanic(t *testing.T) {
	for _, shingle := range []int{1, 2, 3, 4} {
		f, err := New(Config{NumTrees: 4, WindowSize: 5, ShingleSize: shingle, Seed: 7}, nil, nil)
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			_, err := f.AddPoint(float64(i % 13))
			require.NoError(t, err)
		}
		require.Equal(t, 5, f.Size())
	}
}

func TestForest_OutlierDetection(t *testing.T) {
	f, err := New(Config{NumTrees: 50, WindowSize: 200, ShingleSize: 2, Seed: 42}, nil, nil)
	require.NoError(t, err)

	var normalScore float64
	for i := 0; i < 60; i++ {
		x := float64(i%10) * 0.1
		s, err := f.AddPoint(x)
		require.NoError(t, err)
		normalScore = s
	}
	outlierScore, err := f.AddPoint(500.0)
	require.NoError(t, err)

	require.Greater(t, outlierScore, normalScore)
}

func TestForest_Reset(t *testing.T) {
	f, err := New(Config{NumTrees: 5, WindowSize: 20, ShingleSize: 2, Seed: 42}, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		if _, err := f.AddPoint(float64(i)); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	require.NotZero(t, f.Size())

	f.Reset()
	require.Equal(t, 0, f.Size())

	if _, err := f.AddPoint(1); err != nil {
		t.Fatalf("AddPoint after reset: %v", err)
	}
}

func TestForest_ScoreDoesNotMutate(t *testing.T) {
	f, err := New(Config{NumTrees: 10, WindowSize: 50, ShingleSize: 2, Seed: 42}, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		if _, err := f.AddPoint(float64(i % 5)); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	before := f.Size()

	score, err := f.Score(500.0)
	require.NoError(t, err)
	require.Greater(t, score, 0.0)
	require.Equal(t, before, f.Size())
}

func TestConfig_Validate(t *testing.T) {
	_, err := New(Config{NumTrees: 0, WindowSize: 10, ShingleSize: 2}, nil, nil)
	require.Error(t, err)
	_, err = New(Config{NumTrees: 1, WindowSize: 0, ShingleSize: 2}, nil, nil)
	require.Error(t, err)
	_, err = New(Config{NumTrees: 1, WindowSize: 10, ShingleSize: 0}, nil, nil)
	require.Error(t, err)
}

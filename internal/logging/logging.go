// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package logging provides the zap logger factory shared by forest and
// cmd/rrcfscore, matching the teacher's own choice of logging library
// (pkg/util/log/go.mod requires go.uber.org/zap) without pulling in
// the teacher's internal wrapper, which isn't fetchable outside the
// monorepo.
package logging

import "go.uber.org/zap"

// New returns a production zap.Logger, or a development one (with
// human-readable console output and debug level) when debug is true.
func New(debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTimingLogsOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Output: &buf})
	obs := NewStandardObserver(ObservabilityMetrics, logger)

	finish := obs.StartTiming("loader", "load", "report.pdf")
	finish(true, map[string]interface{}{"pages": 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "load", entry["operation"])
	assert.Equal(t, "report.pdf", entry["file"])
	assert.Equal(t, float64(3), entry["pages"])
	assert.Equal(t, true, entry["success"])
}

func TestStartTimingOffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityOff, NewLogger(LogConfig{Level: "debug", Output: &buf}))
	obs.StartTiming("loader", "load", "x")(false, nil)
	assert.Zero(t, buf.Len())

	var nilObs *StandardObserver
	nilObs.StartTiming("loader", "load", "x")(true, nil)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf, zerolog.Nop())
	done := d.StartStep("compliance", "semantic", "doc.txt")
	d.LogDetail("compliance", "embedding 12 sentences")
	done(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "🔄 compliance: semantic (doc.txt)")
	assert.Contains(t, out, "  → compliance: embedding 12 sentences")
	assert.Contains(t, out, "✅ compliance: semantic completed")
	assert.Same(t, d, d.StandardObserver.DebugObserver)
}

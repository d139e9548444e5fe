// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestContextHandler_AddsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", false)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = With(ctx, "path", "/dashboard")
	ctx = With(ctx, "user_id", "u1")

	logger.InfoContext(ctx, "page rendered", "status", 200)

	m := decodeLine(t, &buf)
	assert.Equal(t, "page rendered", m["msg"])
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "/dashboard", m["path"])
	assert.Equal(t, "u1", m["user_id"])
	assert.Equal(t, float64(200), m["status"])
}

func TestContextHandler_NoContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", false)

	logger.Info("plain")

	m := decodeLine(t, &buf)
	assert.NotContains(t, m, "request_id")
}

func TestWith_DoesNotShareSlices(t *testing.T) {
	base := With(context.Background(), "a", 1)
	left := With(base, "b", 2)
	right := With(base, "c", 3)

	assert.Len(t, left.Value(ctxKey{}).([]slog.Attr), 2)
	assert.Len(t, right.Value(ctxKey{}).([]slog.Attr), 2)
	assert.Equal(t, "c", right.Value(ctxKey{}).([]slog.Attr)[1].Key)
	assert.Equal(t, base, With(base))
}

func TestContextHandler_CountsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", true)

	before := testutil.ToFloat64(LogEvents.WithLabelValues("error"))
	logger.Error("backend down")
	logger.Info("not counted")

	assert.Equal(t, before+1, testutil.ToFloat64(LogEvents.WithLabelValues("error")))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", true)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

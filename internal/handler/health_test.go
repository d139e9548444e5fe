// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/testutil"
)

func TestHealth_PublicIsMinimal(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil)

	rec := serve(h.Health, get("/health?verbose=true"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealth_AdminSeesChecks(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), func(context.Context) error { return nil })

	rec := serve(h.Health, as(get("/health?verbose=true"), model.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, statusHealthy, status.Status)
	assert.Equal(t, statusHealthy, status.Checks["database"].Status)
	assert.Equal(t, statusHealthy, status.Checks["api"].Status)
	require.NotNil(t, status.System)
	assert.NotEmpty(t, status.System.MemAlloc)
}

func TestHealth_BackendDownDegrades(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), func(context.Context) error { return errors.New("connection refused") })

	rec := serve(h.Health, as(get("/health"), model.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, statusDegraded, status.Status)
	assert.Equal(t, "connection refused", status.Checks["api"].Message)
	assert.Nil(t, status.System)
}

func TestHealth_DatabaseDownIsUnhealthy(t *testing.T) {
	db := testutil.TestDB(t)
	require.NoError(t, db.Close())
	h := NewHealthHandler(db, nil)

	rec := serve(h.Health, get("/health"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())

	rec = serve(h.Readiness, get("/health/ready"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not_ready"}`, rec.Body.String())
}

func TestHealth_BackendProbeIsAnonymous(t *testing.T) {
	var token string
	h := NewHealthHandler(testutil.TestDB(t), func(ctx context.Context) error {
		token = apiclient.TokenFromContext(ctx)
		return nil
	})

	serve(h.Health, as(get("/health"), model.RoleAdmin))

	assert.Empty(t, token)
}

func TestLivenessAndReadiness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil)

	rec := serve(h.Liveness, get("/health/live"))
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())

	rec = serve(h.Readiness, get("/health/ready"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAdd_RejectsBadSpecAndDuplicates(t *testing.T) {
	s := New(quietLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("warm", "", "@every 1m", 0, noop))
	assert.Error(t, s.Add("warm", "", "@every 1m", 0, noop))
	assert.Error(t, s.Add("bad", "", "not a spec", 0, noop))
}

func TestTrigger_RecordsRun(t *testing.T) {
	s := New(quietLogger())
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.Add("a-job", "does things", "@every 1h", time.Second, func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		if calls == 2 {
			return boom
		}
		return nil
	}))

	require.NoError(t, s.Trigger("a-job"))
	assert.ErrorIs(t, s.Trigger("a-job"), boom)
	assert.Error(t, s.Trigger("missing"))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a-job", jobs[0].Name)
	assert.Equal(t, "does things", jobs[0].Description)
	assert.Equal(t, "boom", jobs[0].LastError)
	assert.False(t, jobs[0].LastRun.IsZero())
}

func TestJobs_Sorted(t *testing.T) {
	s := New(quietLogger())
	noop := func(context.Context) error { return nil }
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Add(name, "", "@every 1h", 0, noop))
	}

	var names []string
	for _, j := range s.Jobs() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestStartStop_CancelsJobContext(t *testing.T) {
	s := New(quietLogger())
	s.Start()
	s.Stop()

	assert.Error(t, s.ctx.Err())
}

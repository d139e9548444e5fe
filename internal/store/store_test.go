// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/model"
)

// testDB creates a migrated database in a temp dir.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"sessions", "conference_registrations"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// Running again is a no-op.
	assert.NoError(t, Migrate(db))
}

func TestConferences_CreateAndList(t *testing.T) {
	db := testDB(t)
	c := NewConferences(db)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }
	ctx := context.Background()

	first, err := c.Create(ctx, model.ConferenceRegistration{FullName: "Amina", Email: " amina@example.com ", Phone: "1", Profession: "lawyer", Lang: "ar"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "amina@example.com", first.Email)

	_, err = c.Create(ctx, model.ConferenceRegistration{FullName: "Karim", Email: "karim@example.com", Phone: "2", Profession: "student", Lang: "fr"})
	require.NoError(t, err)

	list, err := c.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Karim", list[0].FullName, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConferences_Duplicate(t *testing.T) {
	c := NewConferences(testDB(t))
	ctx := context.Background()
	reg := model.ConferenceRegistration{FullName: "A", Email: "a@example.com", Phone: "1", Profession: "x"}

	_, err := c.Create(ctx, reg)
	require.NoError(t, err)

	reg.Email = "A@Example.com"
	_, err = c.Create(ctx, reg)
	assert.ErrorIs(t, err, ErrDuplicate)
}

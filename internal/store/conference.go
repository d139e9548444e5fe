// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soslaw/soslaw-web/internal/model"
)

// ErrDuplicate is returned when an email is already registered.
var ErrDuplicate = errors.New("store: already registered")

// Conferences stores conference registrations.
type Conferences struct {
	db  *sql.DB
	now func() time.Time
}

// NewConferences creates the registration store.
func NewConferences(db *sql.DB) *Conferences {
	return &Conferences{db: db, now: time.Now}
}

// Create assigns an ID and timestamp to reg and saves it.
func (c *Conferences) Create(ctx context.Context, reg model.ConferenceRegistration) (model.ConferenceRegistration, error) {
	reg.ID = uuid.NewString()
	reg.CreatedAt = c.now().UTC()
	reg.Email = strings.TrimSpace(reg.Email)

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO conference_registrations
			(id, full_name, email, phone, organization, profession, lang, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.FullName, reg.Email, reg.Phone, reg.Organization, reg.Profession, reg.Lang, reg.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.ConferenceRegistration{}, ErrDuplicate
		}
		return model.ConferenceRegistration{}, fmt.Errorf("inserting conference registration: %w", err)
	}
	return reg, nil
}

// List returns registrations, newest first.
func (c *Conferences) List(ctx context.Context, limit, offset int) ([]model.ConferenceRegistration, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, full_name, email, phone, organization, profession, lang, created_at
		FROM conference_registrations
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing conference registrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ConferenceRegistration
	for rows.Next() {
		var r model.ConferenceRegistration
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &r.Phone, &r.Organization, &r.Profession, &r.Lang, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conference registration: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of registrations.
func (c *Conferences) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conference_registrations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting conference registrations: %w", err)
	}
	return n, nil
}

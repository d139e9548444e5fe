// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/soslaw/soslaw-web/internal/model"
)

// RoleService covers /roles and its public mirror /public/roles.
type RoleService struct {
	api Requester
}

func (s *RoleService) List(ctx context.Context, p ListParams) (model.List[model.Role], error) {
	return fetchList[model.Role](ctx, s.api, "/roles", p.Values())
}

func (s *RoleService) Create(ctx context.Context, in model.RoleInput) (*model.Role, error) {
	return fetchOne[model.Role](ctx, s.api, http.MethodPost, "/roles", nil, in)
}

func (s *RoleService) Get(ctx context.Context, id string) (*model.Role, error) {
	return fetchOne[model.Role](ctx, s.api, http.MethodGet, "/roles/"+escape(id), nil, nil)
}

func (s *RoleService) Update(ctx context.Context, id string, in model.RoleInput) (*model.Role, error) {
	return fetchOne[model.Role](ctx, s.api, http.MethodPut, "/roles/"+escape(id), nil, in)
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/roles/"+escape(id), nil)
}

func (s *RoleService) SetStatus(ctx context.Context, id string, active bool) error {
	return call(ctx, s.api, http.MethodPatch, "/roles/"+escape(id)+"/status", map[string]bool{"isActive": active})
}

func (s *RoleService) SetOrder(ctx context.Context, id string, order int) error {
	return call(ctx, s.api, http.MethodPatch, "/roles/"+escape(id)+"/order", map[string]int{"order": order})
}

func (s *RoleService) Stats(ctx context.Context) (*model.RoleStats, error) {
	return fetchOne[model.RoleStats](ctx, s.api, http.MethodGet, "/roles/stats", nil, nil)
}

func (s *RoleService) Search(ctx context.Context, q string) (model.List[model.Role], error) {
	return fetchList[model.Role](ctx, s.api, "/roles/search", url.Values{"q": {q}})
}

// CheckSlug reports whether slug is free. excludeID skips the role being edited.
func (s *RoleService) CheckSlug(ctx context.Context, slug, excludeID string) (bool, error) {
	q := url.Values{"slug": {slug}}
	if excludeID != "" {
		q.Set("excludeId", excludeID)
	}
	res, err := fetchOne[struct {
		Available *bool `json:"available"`
		Exists    *bool `json:"exists"`
	}](ctx, s.api, http.MethodGet, "/roles/check-slug", q, nil)
	if err != nil {
		return false, err
	}
	switch {
	case res.Available != nil:
		return *res.Available, nil
	case res.Exists != nil:
		return !*res.Exists, nil
	}
	return false, nil
}

// PublicList returns the active roles shown on the public site.
func (s *RoleService) PublicList(ctx context.Context) (model.List[model.Role], error) {
	return fetchList[model.Role](ctx, s.api, "/public/roles", nil)
}

// PublicGet returns one active role by slug.
func (s *RoleService) PublicGet(ctx context.Context, slug string) (*model.Role, error) {
	return fetchOne[model.Role](ctx, s.api, http.MethodGet, "/public/roles/"+escape(slug), nil, nil)
}

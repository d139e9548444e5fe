// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"

	"github.com/soslaw/soslaw-web/internal/model"
)

// UserService covers /users. Admin only.
type UserService struct {
	api Requester
}

func (s *UserService) List(ctx context.Context, p ListParams) (model.List[model.UserProfile], error) {
	return fetchList[model.UserProfile](ctx, s.api, "/users", p.Values())
}

func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.UserProfile, error) {
	return fetchOne[model.UserProfile](ctx, s.api, http.MethodPost, "/users", nil, in)
}

func (s *UserService) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	return fetchOne[model.UserProfile](ctx, s.api, http.MethodGet, "/users/"+escape(id), nil, nil)
}

func (s *UserService) Update(ctx context.Context, id string, in model.UserInput) (*model.UserProfile, error) {
	return fetchOne[model.UserProfile](ctx, s.api, http.MethodPut, "/users/"+escape(id), nil, in)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/users/"+escape(id), nil)
}

// Activate toggles the account's active flag.
func (s *UserService) Activate(ctx context.Context, id string, active bool) error {
	return call(ctx, s.api, http.MethodPatch, "/users/"+escape(id)+"/activate", map[string]bool{"isActive": active})
}

func (s *UserService) Stats(ctx context.Context) (*model.UserStats, error) {
	return fetchOne[model.UserStats](ctx, s.api, http.MethodGet, "/users/stats/overview", nil, nil)
}

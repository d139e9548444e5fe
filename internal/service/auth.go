// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/soslaw/soslaw-web/internal/model"
)

// ErrNoToken is returned when login or register succeeds without a token.
var ErrNoToken = errors.New("auth response carried no token")

// AuthService covers /auth.
type AuthService struct {
	api Requester
}

// Register creates an account. The backend returns a token and the new user.
func (s *AuthService) Register(ctx context.Context, data model.RegisterData) (*model.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/register", data)
}

// Login exchanges credentials for a token.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/login", creds)
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (*model.AuthResponse, error) {
	resp, err := fetchOne[model.AuthResponse](ctx, s.api, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrNoToken
	}
	return resp, nil
}

// Logout tells the backend to end the session.
func (s *AuthService) Logout(ctx context.Context) error {
	return call(ctx, s.api, http.MethodPost, "/auth/logout", nil)
}

// Profile returns the user owning the bearer token in ctx.
func (s *AuthService) Profile(ctx context.Context) (*model.UserProfile, error) {
	// Profile may come as {user: {...}} or as the bare user.
	type wrapped struct {
		User *model.UserProfile `json:"user"`
		model.UserProfile
	}
	w, err := fetchOne[wrapped](ctx, s.api, http.MethodGet, "/auth/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	if w.User != nil {
		return w.User, nil
	}
	return &w.UserProfile, nil
}

// ChangePassword updates the current user's password.
func (s *AuthService) ChangePassword(ctx context.Context, in model.ChangePassword) error {
	return call(ctx, s.api, http.MethodPut, "/auth/change-password", in)
}

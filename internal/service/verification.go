// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"
)

// VerificationStatus is returned by GET /email-verification/status/:email.
type VerificationStatus struct {
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

// EmailVerificationService covers /email-verification.
type EmailVerificationService struct {
	api Requester
}

func (s *EmailVerificationService) Send(ctx context.Context, email string) error {
	return call(ctx, s.api, http.MethodPost, "/email-verification/send-verification", map[string]string{"email": email})
}

// Verify consumes the token from the verification email.
func (s *EmailVerificationService) Verify(ctx context.Context, token string) error {
	return call(ctx, s.api, http.MethodGet, "/email-verification/verify/"+escape(token), nil)
}

func (s *EmailVerificationService) Resend(ctx context.Context, email string) error {
	return call(ctx, s.api, http.MethodPost, "/email-verification/resend-verification", map[string]string{"email": email})
}

func (s *EmailVerificationService) Status(ctx context.Context, email string) (*VerificationStatus, error) {
	return fetchOne[VerificationStatus](ctx, s.api, http.MethodGet, "/email-verification/status/"+escape(email), nil, nil)
}

// PasswordResetService covers /password-reset.
type PasswordResetService struct {
	api Requester
}

func (s *PasswordResetService) Send(ctx context.Context, email string) error {
	return call(ctx, s.api, http.MethodPost, "/password-reset/send-reset", map[string]string{"email": email})
}

// Verify checks that a reset token is still valid.
func (s *PasswordResetService) Verify(ctx context.Context, token string) error {
	return call(ctx, s.api, http.MethodGet, "/password-reset/verify/"+escape(token), nil)
}

func (s *PasswordResetService) Reset(ctx context.Context, token, password string) error {
	return call(ctx, s.api, http.MethodPost, "/password-reset/reset/"+escape(token), map[string]string{"password": password})
}

func (s *PasswordResetService) Resend(ctx context.Context, email string) error {
	return call(ctx, s.api, http.MethodPost, "/password-reset/resend", map[string]string{"email": email})
}

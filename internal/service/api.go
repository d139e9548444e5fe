// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service maps each backend resource to typed functions, one per
// REST endpoint. Errors from the API are returned unchanged.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/model"
)

// Requester is the part of apiclient.Client the services use.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

var _ Requester = (*apiclient.Client)(nil)

// ListParams are the common list query parameters.
type ListParams struct {
	Limit  int
	Offset int
	Search string
	Status string
	Role   string
}

// Values encodes the non-zero parameters.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	return v
}

// Services bundles one service per backend resource.
type Services struct {
	Auth              *AuthService
	Users             *UserService
	Roles             *RoleService
	ContactRequests   *ContactRequestService
	ServiceRequests   *ServiceRequestService
	Consultations     *ConsultationService
	EmailVerification *EmailVerificationService
	PasswordReset     *PasswordResetService
	FAQs              *FAQService
}

// New builds every resource service on top of api.
func New(api Requester) *Services {
	return &Services{
		Auth:              &AuthService{api: api},
		Users:             &UserService{api: api},
		Roles:             &RoleService{api: api},
		ContactRequests:   &ContactRequestService{api: api},
		ServiceRequests:   &ServiceRequestService{api: api},
		Consultations:     &ConsultationService{api: api},
		EmailVerification: &EmailVerificationService{api: api},
		PasswordReset:     &PasswordResetService{api: api},
		FAQs:              &FAQService{api: api},
	}
}

// fetchOne calls the endpoint and decodes the (possibly enveloped) payload.
func fetchOne[T any](ctx context.Context, api Requester, method, path string, query url.Values, body any) (*T, error) {
	var raw []byte
	if err := api.Do(ctx, method, path, query, body, &raw); err != nil {
		return nil, err
	}
	var v T
	payload := model.Unwrap(raw)
	if len(payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return &v, nil
}

// fetchList calls a list endpoint. Malformed payloads yield an empty list.
func fetchList[T any](ctx context.Context, api Requester, path string, query url.Values) (model.List[T], error) {
	var raw []byte
	if err := api.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return model.List[T]{}, err
	}
	return model.DecodeList[T](raw), nil
}

// call performs a mutation whose response body is not needed.
func call(ctx context.Context, api Requester, method, path string, body any) error {
	return api.Do(ctx, method, path, nil, body, nil)
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

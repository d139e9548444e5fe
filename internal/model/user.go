// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the API-owned records the site displays,
// including users, roles, requests, FAQ entries and list envelopes.
package model

import "time"

// User roles recognised by the backend.
const (
	RoleAdmin      = "admin"
	RoleConsultant = "consultant"
	RoleSupport    = "support"
	RoleClient     = "client"
)

// StaffRoles may enter the admin dashboard.
var StaffRoles = []string{RoleAdmin, RoleConsultant, RoleSupport}

// AllRoles lists every user role in display order.
var AllRoles = []string{RoleAdmin, RoleConsultant, RoleSupport, RoleClient}

// UserProfile is the backend's user record as seen by this site.
type UserProfile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff returns true for roles allowed into the dashboard.
func (u *UserProfile) IsStaff() bool {
	if u == nil {
		return false
	}
	for _, r := range StaffRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterData is the registration payload.
type RegisterData struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserInput is used by admins to create or update a user.
type UserInput struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role" validate:"required,oneof=admin consultant support client"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
	IsActive bool   `json:"isActive"`
}

// ChangePassword is the payload for PUT /auth/change-password.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

// AuthResponse is what login and register return.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// UserStats is returned by GET /users/stats/overview.
type UserStats struct {
	Total       int            `json:"total"`
	Active      int            `json:"active"`
	Verified    int            `json:"verified"`
	ByRole      map[string]int `json:"byRole"`
	NewThisWeek int            `json:"newThisWeek"`
}

// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"slices"
	"sync"

	"github.com/soslaw/soslaw-web/internal/model"
)

// Status is the session's place in the auth lifecycle.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the auth state. IsAuthenticated is true exactly when User is non-nil.
type Session struct {
	User            *model.UserProfile
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Initial is the state before the persisted token has been checked.
func Initial() Session {
	return Session{IsLoading: true}
}

// Status derives the lifecycle state.
func (s Session) Status() Status {
	switch {
	case s.IsLoading:
		return StatusLoading
	case s.IsAuthenticated:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// HasRole reports whether the user has role. False when logged out.
func (s Session) HasRole(role string) bool {
	return s.User != nil && s.User.Role == role
}

// HasAnyRole reports whether the user's role is in roles.
func (s Session) HasAnyRole(roles []string) bool {
	return s.User != nil && slices.Contains(roles, s.User.Role)
}

func (s Session) IsAdmin() bool  { return s.HasRole(model.RoleAdmin) }
func (s Session) IsClient() bool { return s.HasRole(model.RoleClient) }

// ActionType names a reducer action.
type ActionType string

const (
	SetUser    ActionType = "SET_USER"
	SetLoading ActionType = "SET_LOADING"
	SetError   ActionType = "SET_ERROR"
	ClearError ActionType = "CLEAR_ERROR"
	Logout     ActionType = "LOGOUT"
)

// Action is a state change request.
type Action struct {
	Type    ActionType
	User    *model.UserProfile
	Loading bool
	Error   string
}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s Session, a Action) Session {
	switch a.Type {
	case SetUser:
		s.User = a.User
		s.IsAuthenticated = a.User != nil
		s.IsLoading = false
		s.Error = ""
	case SetLoading:
		s.IsLoading = a.Loading
	case SetError:
		s.Error = a.Error
		s.IsLoading = false
	case ClearError:
		s.Error = ""
	case Logout:
		return Session{}
	}
	return s
}

// State is one request's session container. Every mutation goes through
// Dispatch. It is safe for concurrent use because a shared API call may run
// its 401 hook on another goroutine.
type State struct {
	mu      sync.Mutex
	s       Session
	token   string
	expired bool
}

// NewState starts in the Loading state.
func NewState() *State {
	return &State{s: Initial()}
}

// Dispatch applies an action.
func (st *State) Dispatch(a Action) {
	st.mu.Lock()
	st.s = Reduce(st.s, a)
	st.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (st *State) Snapshot() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Token returns the bearer token this request is using.
func (st *State) Token() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.token
}

func (st *State) setToken(token string) {
	st.mu.Lock()
	st.token = token
	st.mu.Unlock()
}

// Expire ends the session after the backend rejected the token.
// The middleware turns the response into a redirect to the login page.
func (st *State) Expire() {
	st.mu.Lock()
	st.s = Reduce(st.s, Action{Type: Logout})
	st.token = ""
	st.expired = true
	st.mu.Unlock()
}

// Expired reports whether Expire was called.
func (st *State) Expired() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.expired
}

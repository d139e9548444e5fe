// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soslaw/soslaw-web/internal/model"
)

func TestInitialIsLoading(t *testing.T) {
	s := Initial()
	assert.Equal(t, StatusLoading, s.Status())
	assert.Nil(t, s.User)
	assert.False(t, s.IsAuthenticated)
}

func TestReduce(t *testing.T) {
	user := &model.UserProfile{ID: "1", Role: model.RoleClient}

	tests := []struct {
		name   string
		start  Session
		action Action
		want   Session
	}{
		{"set user", Initial(), Action{Type: SetUser, User: user}, Session{User: user, IsAuthenticated: true}},
		{"set nil user", Initial(), Action{Type: SetUser}, Session{}},
		{"set user clears error", Session{Error: "x", IsLoading: true}, Action{Type: SetUser, User: user}, Session{User: user, IsAuthenticated: true}},
		{"loading on", Session{}, Action{Type: SetLoading, Loading: true}, Session{IsLoading: true}},
		{"loading off", Session{IsLoading: true}, Action{Type: SetLoading, Loading: false}, Session{}},
		{"set error stops loading", Session{IsLoading: true}, Action{Type: SetError, Error: "bad"}, Session{Error: "bad"}},
		{"set error keeps user", Session{User: user, IsAuthenticated: true}, Action{Type: SetError, Error: "bad"}, Session{User: user, IsAuthenticated: true, Error: "bad"}},
		{"clear error", Session{Error: "bad", User: user, IsAuthenticated: true}, Action{Type: ClearError}, Session{User: user, IsAuthenticated: true}},
		{"clear error idempotent", Session{}, Action{Type: ClearError}, Session{}},
		{"logout", Session{User: user, IsAuthenticated: true, Error: "x", IsLoading: true}, Action{Type: Logout}, Session{}},
		{"unknown action", Session{Error: "x"}, Action{Type: "NOPE"}, Session{Error: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.start, tt.action)
			assert.Equal(t, tt.want, got)
		})
	}
}

// IsAuthenticated must equal User != nil after every action sequence.
func TestReduce_AuthenticatedIffUser(t *testing.T) {
	user := &model.UserProfile{ID: "1"}
	actions := []Action{
		{Type: SetLoading, Loading: true},
		{Type: SetUser, User: user},
		{Type: SetError, Error: "e"},
		{Type: ClearError},
		{Type: SetUser, User: nil},
		{Type: SetUser, User: user},
		{Type: Logout},
		{Type: SetLoading, Loading: false},
	}

	// Every ordered pair, plus the full sequence.
	for _, a := range actions {
		for _, b := range actions {
			s := Reduce(Reduce(Initial(), a), b)
			assert.Equal(t, s.User != nil, s.IsAuthenticated, "%s then %s", a.Type, b.Type)
		}
	}
	s := Initial()
	for _, a := range actions {
		s = Reduce(s, a)
		assert.Equal(t, s.User != nil, s.IsAuthenticated, "after %s", a.Type)
	}
}

func TestRoleQueries(t *testing.T) {
	var anon Session
	assert.False(t, anon.HasRole(model.RoleAdmin))
	assert.False(t, anon.IsAdmin())
	assert.False(t, anon.IsClient())
	assert.False(t, anon.HasAnyRole(model.StaffRoles))

	admin := Reduce(Initial(), Action{Type: SetUser, User: &model.UserProfile{Role: model.RoleAdmin}})
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsClient())
	assert.True(t, admin.HasAnyRole(model.StaffRoles))

	client := Reduce(Initial(), Action{Type: SetUser, User: &model.UserProfile{Role: model.RoleClient}})
	assert.True(t, client.IsClient())
	assert.True(t, client.HasRole(model.RoleClient))
	assert.False(t, client.HasAnyRole(model.StaffRoles))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "unauthenticated", StatusUnauthenticated.String())
}

func TestState_Expire(t *testing.T) {
	st := NewState()
	st.setToken("t")
	st.Dispatch(Action{Type: SetUser, User: &model.UserProfile{ID: "1"}})

	st.Expire()

	assert.True(t, st.Expired())
	assert.Empty(t, st.Token())
	assert.Equal(t, StatusUnauthenticated, st.Snapshot().Status())
}

func TestState_ConcurrentExpire(t *testing.T) {
	st := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); st.Expire() }()
		go func() { defer wg.Done(); _ = st.Snapshot() }()
	}
	wg.Wait()
	assert.True(t, st.Expired())
}

// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/model"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(slog.New(slog.DiscardHandler), "ar"); err != nil {
		panic(err)
	}
	m.Run()
}

func TestNew_NoKeyGivesNoop(t *testing.T) {
	s := New("", "x@example.com", nil)
	_, ok := s.(*NoopSender)
	assert.True(t, ok)

	r, err := s.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "hi"})
	require.NoError(t, err)
	assert.Contains(t, r.MessageID, "noop-")
}

func TestNew_WithKeyGivesResend(t *testing.T) {
	_, ok := New("re_test", "x@example.com", nil).(*ResendSender)
	assert.True(t, ok)
}

func TestResendSender_NoRecipients(t *testing.T) {
	_, err := NewResendSender("re_test", "x@example.com", nil).Send(context.Background(), Message{Subject: "x"})
	assert.Error(t, err)
}

func TestConferenceConfirmation(t *testing.T) {
	reg := model.ConferenceRegistration{
		ID:         "abc-123",
		FullName:   "<Leila>",
		Email:      "leila@example.com",
		Profession: "lawyer",
		Lang:       "en",
	}

	msg, err := ConferenceConfirmation(reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"leila@example.com"}, msg.To)
	assert.Equal(t, i18n.T("en", "mail.conference.subject"), msg.Subject)
	assert.Contains(t, msg.HTML, `dir="ltr"`)
	assert.Contains(t, msg.HTML, "abc-123")
	assert.Contains(t, msg.HTML, "&lt;Leila&gt;")
	assert.NotContains(t, msg.HTML, "<Leila>")
}

func TestConferenceConfirmation_UnknownLanguageUsesDefault(t *testing.T) {
	msg, err := ConferenceConfirmation(model.ConferenceRegistration{Email: "a@b.c", Lang: "de"})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, `dir="rtl"`)
}

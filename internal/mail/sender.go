// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mail sends the few emails the site itself is responsible for.
// Account emails (verification, password reset) are sent by the backend.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // optional; the sender's default is used when empty
	Subject string
	HTML    string
	ReplyTo string
}

// Receipt is the provider's acknowledgement.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// NoopSender logs messages instead of sending them. It is used when no
// provider key is configured.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a NoopSender.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopSender{logger: logger}
}

// Send logs msg.
func (s *NoopSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	s.logger.InfoContext(ctx, "email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	now := time.Now()
	return Receipt{MessageID: fmt.Sprintf("noop-%d", now.UnixNano()), SentAt: now}, nil
}

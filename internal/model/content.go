// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// FAQ is a frequently asked question with per-language Markdown answers.
type FAQ struct {
	ID         string `json:"id"`
	QuestionAr string `json:"questionAr"`
	QuestionEn string `json:"questionEn"`
	QuestionFr string `json:"questionFr"`
	AnswerAr   string `json:"answerAr"`
	AnswerEn   string `json:"answerEn"`
	AnswerFr   string `json:"answerFr"`
	Order      int    `json:"order"`
	IsActive   bool   `json:"isActive"`
}

// Question returns the question in lang.
func (f FAQ) Question(lang string) string {
	return pick(lang, f.QuestionAr, f.QuestionEn, f.QuestionFr)
}

// Answer returns the Markdown answer in lang.
func (f FAQ) Answer(lang string) string {
	return pick(lang, f.AnswerAr, f.AnswerEn, f.AnswerFr)
}

// FAQInput is the create/update payload for FAQ entries.
type FAQInput struct {
	QuestionAr string `json:"questionAr" validate:"required"`
	QuestionEn string `json:"questionEn" validate:"required"`
	QuestionFr string `json:"questionFr"`
	AnswerAr   string `json:"answerAr" validate:"required"`
	AnswerEn   string `json:"answerEn" validate:"required"`
	AnswerFr   string `json:"answerFr"`
	Order      int    `json:"order" validate:"gte=0"`
	IsActive   bool   `json:"isActive"`
}

// Notification is a dashboard notification. The dashboard shows a fixed set.
type Notification struct {
	ID        string
	TitleKey  string
	BodyKey   string
	Kind      string
	Read      bool
	CreatedAt time.Time
}

// MockNotifications returns the static notifications shown in the dashboard.
func MockNotifications(now time.Time) []Notification {
	return []Notification{
		{ID: "n1", TitleKey: "notification.new_request.title", BodyKey: "notification.new_request.body", Kind: "info", CreatedAt: now.Add(-15 * time.Minute)},
		{ID: "n2", TitleKey: "notification.payment.title", BodyKey: "notification.payment.body", Kind: "success", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "n3", TitleKey: "notification.contact.title", BodyKey: "notification.contact.body", Kind: "warning", Read: true, CreatedAt: now.Add(-26 * time.Hour)},
	}
}

// ConferenceRegistration is a sign-up for the SOSLAW conference. These are
// stored locally, not in the backend.
type ConferenceRegistration struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName" validate:"required,min=2"`
	Email        string    `json:"email" validate:"required,email"`
	Phone        string    `json:"phone" validate:"required"`
	Organization string    `json:"organization"`
	Profession   string    `json:"profession" validate:"required"`
	Lang         string    `json:"lang"`
	CreatedAt    time.Time `json:"createdAt"`
}

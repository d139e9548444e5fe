// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Contact request statuses.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
	ContactStatusClosed     = "closed"
)

// ContactStatuses lists contact request statuses in workflow order.
var ContactStatuses = []string{ContactStatusNew, ContactStatusInProgress, ContactStatusResolved, ContactStatusClosed}

// ContactRequest is a message sent through the public contact form.
type ContactRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Reply     string    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactInput is the public contact form payload.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10"`
}

// ContactStats is returned by GET /contact-requests/stats.
type ContactStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

// Service request statuses.
const (
	ServiceStatusPending    = "pending"
	ServiceStatusInProgress = "in_progress"
	ServiceStatusCompleted  = "completed"
	ServiceStatusCancelled  = "cancelled"
)

// ServiceStatuses lists service request statuses in workflow order.
var ServiceStatuses = []string{ServiceStatusPending, ServiceStatusInProgress, ServiceStatusCompleted, ServiceStatusCancelled}

// Payment statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// PaymentStatuses lists payment statuses.
var PaymentStatuses = []string{PaymentUnpaid, PaymentPending, PaymentPaid, PaymentRefunded}

// Service is an offering a client can request.
type Service struct {
	ID     string  `json:"id"`
	NameAr string  `json:"nameAr"`
	NameEn string  `json:"nameEn"`
	NameFr string  `json:"nameFr"`
	Price  float64 `json:"price"`
}

// Name returns the service name in lang.
func (s Service) Name(lang string) string {
	return pick(lang, s.NameAr, s.NameEn, s.NameFr)
}

// ServiceRequest is a client's request for a paid legal service.
type ServiceRequest struct {
	ID            string    `json:"id"`
	ServiceID     string    `json:"serviceId"`
	UserID        string    `json:"userId"`
	ClientName    string    `json:"clientName"`
	ClientEmail   string    `json:"clientEmail"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	PaymentRef    string    `json:"paymentReference,omitempty"`
	Amount        float64   `json:"amount"`
	AssignedTo    string    `json:"assignedTo,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ServiceRequestInput is the client's new-request payload.
type ServiceRequestInput struct {
	ServiceID   string `json:"serviceId" validate:"required"`
	Description string `json:"description" validate:"required,min=10"`
}

// PaymentInput is the client's payment details payload.
type PaymentInput struct {
	Method    string `json:"paymentMethod" validate:"required,oneof=bank_transfer card cash"`
	Reference string `json:"paymentReference" validate:"required"`
}

// ServiceRequestStats is returned by GET /service-requests/statistics.
type ServiceRequestStats struct {
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	InProgress int     `json:"inProgress"`
	Completed  int     `json:"completed"`
	Revenue    float64 `json:"revenue"`
}

// Consultation is a legal consultation booked by a visitor.
type Consultation struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConsultationStatuses lists consultation statuses.
var ConsultationStatuses = []string{"pending", "scheduled", "completed", "cancelled"}

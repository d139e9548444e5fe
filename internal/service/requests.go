// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"

	"github.com/soslaw/soslaw-web/internal/model"
)

// ContactRequestService covers /contact-requests.
type ContactRequestService struct {
	api Requester
}

func (s *ContactRequestService) List(ctx context.Context, p ListParams) (model.List[model.ContactRequest], error) {
	return fetchList[model.ContactRequest](ctx, s.api, "/contact-requests", p.Values())
}

// Create submits the public contact form. No token is required.
func (s *ContactRequestService) Create(ctx context.Context, in model.ContactInput) error {
	return call(ctx, s.api, http.MethodPost, "/contact-requests", in)
}

func (s *ContactRequestService) Update(ctx context.Context, id string, in model.ContactRequest) error {
	return call(ctx, s.api, http.MethodPut, "/contact-requests/"+escape(id), in)
}

func (s *ContactRequestService) SetStatus(ctx context.Context, id, status string) error {
	return call(ctx, s.api, http.MethodPatch, "/contact-requests/"+escape(id), map[string]string{"status": status})
}

func (s *ContactRequestService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/contact-requests/"+escape(id), nil)
}

func (s *ContactRequestService) Reply(ctx context.Context, id, message string) error {
	return call(ctx, s.api, http.MethodPost, "/contact-requests/"+escape(id)+"/reply", map[string]string{"reply": message})
}

func (s *ContactRequestService) Stats(ctx context.Context) (*model.ContactStats, error) {
	return fetchOne[model.ContactStats](ctx, s.api, http.MethodGet, "/contact-requests/stats", nil, nil)
}

// ServiceRequestService covers /service-requests.
type ServiceRequestService struct {
	api Requester
}

// List is the admin list. The backend paginates it.
func (s *ServiceRequestService) List(ctx context.Context, p ListParams) (model.List[model.ServiceRequest], error) {
	return fetchList[model.ServiceRequest](ctx, s.api, "/service-requests", p.Values())
}

// Mine lists the current client's requests.
func (s *ServiceRequestService) Mine(ctx context.Context) (model.List[model.ServiceRequest], error) {
	return fetchList[model.ServiceRequest](ctx, s.api, "/service-requests/my-requests", nil)
}

func (s *ServiceRequestService) Search(ctx context.Context, p ListParams) (model.List[model.ServiceRequest], error) {
	q := p.Values()
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	return fetchList[model.ServiceRequest](ctx, s.api, "/service-requests/search", q)
}

func (s *ServiceRequestService) Statistics(ctx context.Context) (*model.ServiceRequestStats, error) {
	return fetchOne[model.ServiceRequestStats](ctx, s.api, http.MethodGet, "/service-requests/statistics", nil, nil)
}

// Services lists the offerings a client can request.
func (s *ServiceRequestService) Services(ctx context.Context) (model.List[model.Service], error) {
	return fetchList[model.Service](ctx, s.api, "/service-requests/services", nil)
}

func (s *ServiceRequestService) Create(ctx context.Context, in model.ServiceRequestInput) (*model.ServiceRequest, error) {
	return fetchOne[model.ServiceRequest](ctx, s.api, http.MethodPost, "/service-requests", nil, in)
}

func (s *ServiceRequestService) SetStatus(ctx context.Context, id, status string) error {
	return call(ctx, s.api, http.MethodPatch, "/service-requests/"+escape(id)+"/status", map[string]string{"status": status})
}

func (s *ServiceRequestService) Assign(ctx context.Context, id, userID string) error {
	return call(ctx, s.api, http.MethodPatch, "/service-requests/"+escape(id)+"/assign", map[string]string{"assignedTo": userID})
}

// Pay records the client's payment details.
func (s *ServiceRequestService) Pay(ctx context.Context, id string, in model.PaymentInput) error {
	return call(ctx, s.api, http.MethodPatch, "/service-requests/"+escape(id)+"/payment", in)
}

func (s *ServiceRequestService) SetPaymentStatus(ctx context.Context, id, status string) error {
	return call(ctx, s.api, http.MethodPatch, "/service-requests/"+escape(id)+"/payment-status", map[string]string{"paymentStatus": status})
}

func (s *ServiceRequestService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/service-requests/"+escape(id), nil)
}

// ConsultationService covers /consultations.
type ConsultationService struct {
	api Requester
}

func (s *ConsultationService) List(ctx context.Context, p ListParams) (model.List[model.Consultation], error) {
	return fetchList[model.Consultation](ctx, s.api, "/consultations", p.Values())
}

func (s *ConsultationService) Get(ctx context.Context, id string) (*model.Consultation, error) {
	return fetchOne[model.Consultation](ctx, s.api, http.MethodGet, "/consultations/"+escape(id), nil, nil)
}

func (s *ConsultationService) SetStatus(ctx context.Context, id, status string) error {
	return call(ctx, s.api, http.MethodPatch, "/consultations/"+escape(id)+"/status", map[string]string{"status": status})
}

func (s *ConsultationService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/consultations/"+escape(id), nil)
}

// FAQService covers /faqs.
type FAQService struct {
	api Requester
}

func (s *FAQService) List(ctx context.Context) (model.List[model.FAQ], error) {
	return fetchList[model.FAQ](ctx, s.api, "/faqs", nil)
}

func (s *FAQService) Create(ctx context.Context, in model.FAQInput) (*model.FAQ, error) {
	return fetchOne[model.FAQ](ctx, s.api, http.MethodPost, "/faqs", nil, in)
}

func (s *FAQService) Update(ctx context.Context, id string, in model.FAQInput) (*model.FAQ, error) {
	return fetchOne[model.FAQ](ctx, s.api, http.MethodPut, "/faqs/"+escape(id), nil, in)
}

func (s *FAQService) Delete(ctx context.Context, id string) error {
	return call(ctx, s.api, http.MethodDelete, "/faqs/"+escape(id), nil)
}

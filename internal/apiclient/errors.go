// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any API error with status 401.
	ErrUnauthorized = errors.New("apiclient: unauthorized")

	// ErrTimeout is wrapped into errors caused by the per-call deadline.
	ErrTimeout = errors.New("apiclient: request timed out")
)

// FieldError is a single validation failure reported by the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// FieldMap returns field errors keyed by field name. The first message wins.
func (e *APIError) FieldMap() map[string]string {
	if len(e.Errors) == 0 {
		return nil
	}
	m := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			continue
		}
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// errorBody covers the error shapes the backend produces. Validation
// errors come as either {field,message} or {path|param,msg}.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Field   string `json:"field"`
		Path    string `json:"path"`
		Param   string `json:"param"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	} `json:"errors"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		if text == "" {
			text = http.StatusText(status)
		}
		apiErr.Message = text
		return apiErr
	}

	apiErr.Message = eb.Message
	if apiErr.Message == "" {
		apiErr.Message = eb.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	for _, e := range eb.Errors {
		fe := FieldError{Field: firstNonEmpty(e.Field, e.Path, e.Param), Message: firstNonEmpty(e.Message, e.Msg)}
		if fe.Message == "" {
			continue
		}
		apiErr.Errors = append(apiErr.Errors, fe)
	}

	return apiErr
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// FieldErrors extracts per-field messages from err, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.FieldMap()
	}
	return nil
}

// Message returns the backend's message for err, or fallback when err did
// not come from the backend or was a server fault.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

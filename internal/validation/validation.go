// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validation checks form input before it is sent to the backend and
// turns failures into translated per-field messages.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/soslaw/soslaw-web/internal/i18n"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON name, the same names the backend uses
		// in its own validation errors.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Errors maps a field name to a translated message.
type Errors map[string]string

// Struct validates v and returns nil when it passes.
func Struct(lang string, v any) Errors {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Errors{"_": i18n.T(lang, "validation.invalid")}
	}

	out := make(Errors, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(lang, fe)
	}
	return out
}

// Var validates a single value against tag, e.g. "required,email".
func Var(lang string, value any, tag string) string {
	err := instance().Var(value, tag)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return message(lang, ve[0])
	}
	return i18n.T(lang, "validation.invalid")
}

func message(lang string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return i18n.T(lang, "validation.required")
	case "email":
		return i18n.T(lang, "validation.email")
	case "min":
		return i18n.T(lang, "validation.min", fe.Param())
	case "max":
		return i18n.T(lang, "validation.max", fe.Param())
	case "gte":
		return i18n.T(lang, "validation.gte", fe.Param())
	case "oneof":
		return i18n.T(lang, "validation.oneof")
	case "nefield":
		return i18n.T(lang, "validation.different")
	case "eqfield":
		return i18n.T(lang, "validation.match")
	default:
		return i18n.T(lang, "validation.invalid")
	}
}

// Merge adds b's entries to a, keeping a's message for shared fields.
func Merge(a, b map[string]string) map[string]string {
	if len(b) == 0 {
		return a
	}
	if a == nil {
		a = make(map[string]string, len(b))
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			a[k] = v
		}
	}
	return a
}

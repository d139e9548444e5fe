// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
)

// List is one page of a list endpoint. Total is nil when the backend
// returned a bare array and so did not paginate.
type List[T any] struct {
	Items  []T  `json:"items"`
	Total  *int `json:"total,omitempty"`
	Limit  int  `json:"limit"`
	Offset int  `json:"offset"`
}

// Len returns the number of items on this page.
func (l List[T]) Len() int {
	return len(l.Items)
}

// listEnvelope covers the paginated shapes the backend returns.
type listEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Items  json.RawMessage `json:"items"`
	Total  *int            `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`

	Pagination *struct {
		Total  *int `json:"total"`
		Limit  int  `json:"limit"`
		Offset int  `json:"offset"`
	} `json:"pagination"`
}

// DecodeList decodes a list response. It accepts a bare array, an object
// with a data or items array, or data nesting one more such object.
// Anything else yields an empty list and never an error.
func DecodeList[T any](raw []byte) List[T] {
	return decodeList[T](raw, 0)
}

func decodeList[T any](raw []byte, depth int) List[T] {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return List[T]{}
	}

	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return List[T]{}
		}
		return List[T]{Items: items}
	case '{':
		if depth > 1 {
			return List[T]{}
		}
		var env listEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return List[T]{}
		}
		inner := env.Items
		if len(inner) == 0 {
			inner = env.Data
		}
		out := decodeList[T](inner, depth+1)
		total, limit, offset := env.Total, env.Limit, env.Offset
		if env.Pagination != nil {
			total, limit, offset = env.Pagination.Total, env.Pagination.Limit, env.Pagination.Offset
		}
		if total != nil {
			out.Total, out.Limit, out.Offset = total, limit, offset
		}
		return out
	default:
		return List[T]{}
	}
}

// Unwrap returns the payload of a {success, data} envelope, or raw itself
// when it is not one.
func Unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return raw
	}
	return env.Data
}

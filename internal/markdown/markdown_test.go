// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Basic(t *testing.T) {
	out := string(Render("**Yes.** See [the form](https://example.com/form)."))

	assert.Contains(t, out, "<strong>Yes.</strong>")
	assert.Contains(t, out, `href="https://example.com/form"`)
	assert.Contains(t, out, `rel="nofollow`)
}

func TestRender_StripsScripts(t *testing.T) {
	out := string(Render("hi <script>alert(1)</script> <a href=\"javascript:alert(1)\">x</a>"))

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestRender_Arabic(t *testing.T) {
	out := string(Render("# سؤال\n\nجواب"))

	assert.Contains(t, out, "سؤال")
	assert.Contains(t, out, "<p>جواب</p>")
}

func TestSanitize(t *testing.T) {
	out := string(Sanitize(`<p onclick="x()">ok</p><iframe src="x"></iframe>`))
	assert.Equal(t, "<p>ok</p>", out)
}

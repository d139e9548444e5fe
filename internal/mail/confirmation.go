// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/model"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!doctype html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<body style="font-family: sans-serif">
<p>{{.Greeting}}</p>
<p>{{.Body}}</p>
<table>
<tr><td>{{.NameLabel}}</td><td>{{.Reg.FullName}}</td></tr>
<tr><td>{{.ProfessionLabel}}</td><td>{{.Reg.Profession}}</td></tr>
{{if .Reg.Organization}}<tr><td>{{.OrganizationLabel}}</td><td>{{.Reg.Organization}}</td></tr>{{end}}
<tr><td>{{.RefLabel}}</td><td><code>{{.Reg.ID}}</code></td></tr>
</table>
<p>{{.Signature}}</p>
</body>
</html>`))

// ConferenceConfirmation builds the confirmation email for reg in the
// registrant's language.
func ConferenceConfirmation(reg model.ConferenceRegistration) (Message, error) {
	lang := reg.Lang
	if !i18n.IsSupported(lang) {
		lang = i18n.Default()
	}

	data := struct {
		Lang, Dir                 string
		Greeting, Body, Signature string
		NameLabel                 string
		ProfessionLabel           string
		OrganizationLabel         string
		RefLabel                  string
		Reg                       model.ConferenceRegistration
	}{
		Lang:              lang,
		Dir:               i18n.Direction(lang),
		Greeting:          i18n.T(lang, "mail.conference.greeting", reg.FullName),
		Body:              i18n.T(lang, "mail.conference.body"),
		Signature:         i18n.T(lang, "mail.signature"),
		NameLabel:         i18n.T(lang, "form.full_name"),
		ProfessionLabel:   i18n.T(lang, "form.profession"),
		OrganizationLabel: i18n.T(lang, "form.organization"),
		RefLabel:          i18n.T(lang, "mail.reference"),
		Reg:               reg,
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("rendering confirmation email: %w", err)
	}

	return Message{
		To:      []string{reg.Email},
		Subject: i18n.T(lang, "mail.conference.subject"),
		HTML:    buf.String(),
	}, nil
}

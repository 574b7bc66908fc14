// Package template renders transactional email content. Rendering is pure:
// no I/O, safe from any goroutine, and every HTML body ships with a
// plain-text equivalent for text-only clients and spam-filter heuristics.
package template

import (
	"bytes"
	"errors"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"

	"github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
)

// ErrUnknownKind is returned for message kinds the renderer has no template for.
var ErrUnknownKind = errors.New("unknown template kind")

// Params carries the per-message values interpolated into a template.
type Params struct {
	// Name is the recipient's display name; falls back to a neutral greeting.
	Name string
	// ActionURL is the call-to-action link (recovery link, app landing page).
	ActionURL string
	// LinkTTL is human-readable expiry copy, e.g. "1 hour". The identity
	// provider owns the actual TTL; templates only describe it.
	LinkTTL string
}

type compiled struct {
	subject string
	html    *htmltpl.Template
	text    *texttpl.Template
}

var templates = map[domain.Kind]compiled{
	domain.KindWelcome: {
		subject: "Welcome to Mix & Mingle 🎉",
		html:    mustHTML("welcome", welcomeHTML),
		text:    mustText("welcome", welcomeText),
	},
	domain.KindPasswordReset: {
		subject: "Reset your Mix & Mingle password",
		html:    mustHTML("password_reset", resetHTML),
		text:    mustText("password_reset", resetText),
	},
	domain.KindTest: {
		subject: "Mix & Mingle delivery test",
		html:    mustHTML("test", testHTML),
		text:    mustText("test", testText),
	},
}

// Render produces subject, HTML body and plain-text body for the given kind.
func Render(kind domain.Kind, p Params) (domain.Rendered, error) {
	t, ok := templates[kind]
	if !ok {
		return domain.Rendered{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if p.Name == "" {
		p.Name = "there"
	}
	if p.LinkTTL == "" {
		p.LinkTTL = "1 hour"
	}
	var hbuf, tbuf bytes.Buffer
	if err := t.html.Execute(&hbuf, p); err != nil {
		return domain.Rendered{}, err
	}
	if err := t.text.Execute(&tbuf, p); err != nil {
		return domain.Rendered{}, err
	}
	return domain.Rendered{Subject: t.subject, HTML: hbuf.String(), Text: tbuf.String()}, nil
}

func mustHTML(name, src string) *htmltpl.Template {
	return htmltpl.Must(htmltpl.New(name).Parse(src))
}

func mustText(name, src string) *texttpl.Template {
	return texttpl.Must(texttpl.New(name).Parse(src))
}

const welcomeHTML = `<div style="font-family:Helvetica,Arial,sans-serif;max-width:560px;margin:0 auto;padding:24px">
  <h1 style="color:#e91e63">Welcome to Mix &amp; Mingle!</h1>
  <p>Hey {{.Name}},</p>
  <p>Your account is ready. Confirm your email to unlock matching, communities and live rooms.</p>
  <p style="margin:32px 0">
    <a href="{{.ActionURL}}" style="background:#e91e63;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Confirm my email</a>
  </p>
  <p style="color:#666;font-size:13px">The confirmation link expires in {{.LinkTTL}}. If you didn't create this account, you can ignore this email.</p>
</div>`

const welcomeText = `Hey {{.Name}},

Welcome to Mix & Mingle! Your account is ready.

Confirm your email to unlock matching, communities and live rooms:

{{.ActionURL}}

The confirmation link expires in {{.LinkTTL}}. If you didn't create this
account, you can ignore this email.
`

const resetHTML = `<div style="font-family:Helvetica,Arial,sans-serif;max-width:560px;margin:0 auto;padding:24px">
  <h1 style="color:#e91e63">Reset your password</h1>
  <p>Hey {{.Name}},</p>
  <p>Someone (hopefully you) asked to reset the password for your Mix &amp; Mingle account.</p>
  <p style="margin:32px 0">
    <a href="{{.ActionURL}}" style="background:#e91e63;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Choose a new password</a>
  </p>
  <p style="color:#666;font-size:13px">This link can be used once and expires in {{.LinkTTL}}. If you didn't request a reset, no action is needed — your password is unchanged.</p>
</div>`

const resetText = `Hey {{.Name}},

Someone (hopefully you) asked to reset the password for your Mix & Mingle
account. Choose a new password here:

{{.ActionURL}}

This link can be used once and expires in {{.LinkTTL}}. If you didn't request
a reset, no action is needed — your password is unchanged.
`

const testHTML = `<div style="font-family:Helvetica,Arial,sans-serif;max-width:560px;margin:0 auto;padding:24px">
  <h1>Delivery test</h1>
  <p>This is a diagnostic message from the Mix &amp; Mingle notification service.</p>
  <p>If you can read this, outbound email delivery is working.</p>
</div>`

const testText = `Delivery test

This is a diagnostic message from the Mix & Mingle notification service.
If you can read this, outbound email delivery is working.
`

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a transactional message template.
type Kind string

const (
	KindWelcome       Kind = "welcome"
	KindPasswordReset Kind = "password_reset"
	KindTest          Kind = "test"
)

// Message is a fully rendered email, immutable once constructed.
type Message struct {
	ID      uuid.UUID
	To      string
	Subject string
	HTML    string
	Text    string
	Kind    Kind
}

// NewMessage builds a Message from rendered content, assigning a correlation id.
func NewMessage(to string, kind Kind, r Rendered) Message {
	return Message{
		ID:      uuid.New(),
		To:      to,
		Subject: r.Subject,
		HTML:    r.HTML,
		Text:    r.Text,
		Kind:    kind,
	}
}

// Rendered is the output of the template renderer.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Provider is one external service capable of transmitting a Message.
type Provider interface {
	Name() string
	// IsConfigured reports whether the adapter has usable credentials.
	// Unconfigured providers are skipped without counting as a failed attempt.
	IsConfigured() bool
	// Supports reports whether the provider can carry the given message kind.
	Supports(k Kind) bool
	// Send transmits the message, returning the provider-assigned id. The id
	// may be empty when the provider dispatches its own template (identity
	// service recovery mail) rather than the rendered content.
	Send(ctx context.Context, msg Message) (string, error)
}

// Deliverer runs the provider fallback chain for one message.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) Result
	Statuses() []Status
}

// Outcome is the tagged result of one provider attempt: either a success
// carrying the provider message id, or a classified failure. Exactly one of
// the two arms is meaningful, discriminated by OK.
type Outcome struct {
	OK        bool
	MessageID string      `json:",omitempty"`
	Failure   FailureKind `json:",omitempty"`
	Detail    string      `json:",omitempty"`
}

// Succeeded builds a success outcome. note describes deliveries where the
// provider owns the template and no id is returned.
func Succeeded(id, note string) Outcome {
	return Outcome{OK: true, MessageID: id, Detail: note}
}

// Failed builds a failure outcome with its classification.
func Failed(kind FailureKind, detail string) Outcome {
	return Outcome{OK: false, Failure: kind, Detail: detail}
}

// Attempt is the audit record for one provider tried during a delivery.
type Attempt struct {
	Provider  string
	Outcome   Outcome
	StartedAt time.Time
	EndedAt   time.Time
}

// Result is the consolidated outcome of a delivery call. Succeeded is true
// iff exactly one attempt carries a success outcome; providers after the
// first success are never tried.
type Result struct {
	Succeeded bool
	Provider  string
	Attempts  []Attempt
}

// Status is a read-only configuration snapshot for one provider. It never
// contains key material.
type Status struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	LastError  string `json:"last_error,omitempty"`
}

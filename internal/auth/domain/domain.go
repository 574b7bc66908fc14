package domain

import (
	"context"
	"errors"

	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
)

// ErrSignupRejected is the only signup error surfaced to clients. The identity
// provider's own rejection text (status lines, duplicate-account hints) stays
// in the logs.
var ErrSignupRejected = errors.New("signup was not accepted; check the address and try again")

// ResetRequestInput carries one password-reset request. The request is
// transient; rate-limit state and token persistence live upstream.
type ResetRequestInput struct {
	Email string
}

// ResetResult is the externally visible outcome of a reset request. Every
// terminal state except the direct-link fallback produces the same Message
// text, so account existence never shows in the response shape.
type ResetResult struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
	// ResetLink is populated only on the degraded direct-link path, reachable
	// solely after the account was confirmed to exist and every provider
	// failed. It is a bearer credential.
	ResetLink string `json:"reset_link,omitempty"`
}

// SignupInput carries the email portion of account creation.
type SignupInput struct {
	Email    string
	Password string
}

// SignupResult reports account creation plus welcome-mail delivery. Delivery
// failure never fails the signup itself.
type SignupResult struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

// TestMailResult summarizes a diagnostic delivery.
type TestMailResult struct {
	Delivered bool              `json:"delivered"`
	Provider  string            `json:"provider,omitempty"`
	Attempts  []edomain.Attempt `json:"attempts"`
}

// Service is the recovery flow entry point consumed by the HTTP layer.
type Service interface {
	RequestPasswordReset(ctx context.Context, in ResetRequestInput) ResetResult
	Signup(ctx context.Context, in SignupInput) (SignupResult, error)
	SendTestMail(ctx context.Context, to string) TestMailResult
	ProviderStatuses() []edomain.Status
}

// Package domain defines the contract this service expects from the identity
// provider. Accounts, credentials and recovery tokens live entirely on the
// provider side; this service only consumes the administrative API.
package domain

import (
	"context"
	"errors"
)

// Client is the identity provider administrative API surface.
type Client interface {
	// UserExists reports whether an account is registered for the address.
	// The answer must never leak into an externally observable response; the
	// recovery flow masks it.
	UserExists(ctx context.Context, email string) (bool, error)
	// GenerateRecoveryLink asks the provider to mint a single-use, time-bound
	// recovery URL redirecting to the application's reset landing page. Links
	// are bearer credentials: never minted locally, never cached.
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
	// SendRecoveryEmail asks the provider to dispatch its own built-in reset
	// email. The provider owns the template in this path.
	SendRecoveryEmail(ctx context.Context, email, redirectTo string) error
	// SignUp registers a new account and returns the provider user id.
	SignUp(ctx context.Context, email, password string) (string, error)
}

var (
	// ErrLookup means the existence check itself failed (provider down or
	// misconfigured). Callers must mask this exactly like "not found".
	ErrLookup = errors.New("identity lookup failed")
	// ErrTokenMint means the provider refused to generate a recovery link.
	// There is no local fallback; the flow degrades to a generic response.
	ErrTokenMint = errors.New("recovery link generation failed")
	// ErrNotConfigured means the client lacks the credentials for the call.
	ErrNotConfigured = errors.New("identity provider not configured")
)

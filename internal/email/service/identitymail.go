package service

import (
	"context"
	"fmt"

	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
)

// recoveryDispatcher is the slice of the identity client this adapter needs.
type recoveryDispatcher interface {
	SendRecoveryEmail(ctx context.Context, email, redirectTo string) error
	HasAnonCredentials() bool
}

// Ensure IdentityMail implements domain.Provider
var _ edomain.Provider = (*IdentityMail)(nil)

// IdentityMail is the secondary provider. It does not transmit the rendered
// message; it asks the identity service to dispatch its own password-reset
// email, so it only supports the PasswordReset kind and returns an empty
// provider id on success.
type IdentityMail struct {
	id         recoveryDispatcher
	redirectTo string
}

func NewIdentityMail(id recoveryDispatcher, redirectTo string) *IdentityMail {
	return &IdentityMail{id: id, redirectTo: redirectTo}
}

func (m *IdentityMail) Name() string { return "supabase" }

func (m *IdentityMail) IsConfigured() bool { return m.id.HasAnonCredentials() }

func (m *IdentityMail) Supports(k edomain.Kind) bool {
	return k == edomain.KindPasswordReset
}

func (m *IdentityMail) Send(ctx context.Context, msg edomain.Message) (string, error) {
	if !m.IsConfigured() {
		return "", fmt.Errorf("%w: identity service credentials missing", edomain.ErrNotConfigured)
	}
	if !m.Supports(msg.Kind) {
		return "", edomain.WrapPermanent(fmt.Errorf("identity service cannot carry %q mail", msg.Kind))
	}
	if err := m.id.SendRecoveryEmail(ctx, msg.To, m.redirectTo); err != nil {
		return "", edomain.WrapTransient(err)
	}
	// The identity service owns the template here; there is no provider
	// message id to report.
	return "", nil
}

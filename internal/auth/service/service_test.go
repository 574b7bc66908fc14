package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larrybesant/MixAndMingle-sub002/internal/auth/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
)

// fakeIdentity scripts the identity provider.
type fakeIdentity struct {
	exists     bool
	lookupErr  error
	link       string
	linkErr    error
	signupID   string
	signupErr  error
	linkCalls  int
	lookupDone int
}

func (f *fakeIdentity) UserExists(ctx context.Context, email string) (bool, error) {
	f.lookupDone++
	return f.exists, f.lookupErr
}

func (f *fakeIdentity) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	f.linkCalls++
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.link, nil
}

func (f *fakeIdentity) SendRecoveryEmail(ctx context.Context, email, redirectTo string) error {
	return nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	return f.signupID, f.signupErr
}

// fakeDeliverer scripts the orchestrator.
type fakeDeliverer struct {
	result   edomain.Result
	statuses []edomain.Status
	lastMsg  edomain.Message
	calls    int
}

func (f *fakeDeliverer) Deliver(ctx context.Context, msg edomain.Message) edomain.Result {
	f.calls++
	f.lastMsg = msg
	return f.result
}

func (f *fakeDeliverer) Statuses() []edomain.Status { return f.statuses }

func testConfig() config.Config {
	return config.Config{PublicBaseURL: "https://mixandmingle.app"}
}

func successResult(provider string) edomain.Result {
	return edomain.Result{
		Succeeded: true,
		Provider:  provider,
		Attempts: []edomain.Attempt{
			{Provider: provider, Outcome: edomain.Succeeded("msg_1", "")},
		},
	}
}

func exhaustedResult() edomain.Result {
	return edomain.Result{
		Succeeded: false,
		Attempts: []edomain.Attempt{
			{Provider: "resend", Outcome: edomain.Failed(edomain.FailureTransient, "503")},
			{Provider: "supabase", Outcome: edomain.Failed(edomain.FailureTransient, "timeout")},
		},
	}
}

// Scenario A: account exists, primary provider succeeds.
func TestReset_ExistingAccountDelivered(t *testing.T) {
	id := &fakeIdentity{exists: true, link: "https://sb/verify?token=t&type=recovery"}
	mail := &fakeDeliverer{result: successResult("resend")}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, genericResetMessage, res.Message)
	assert.True(t, res.EmailSent)
	assert.Empty(t, res.ResetLink)
	assert.Equal(t, edomain.KindPasswordReset, mail.lastMsg.Kind)
	assert.Contains(t, mail.lastMsg.HTML, id.link)
}

// Scenario B: unknown address gets the identical message shape.
func TestReset_UnknownAccountMasked(t *testing.T) {
	id := &fakeIdentity{exists: false}
	mail := &fakeDeliverer{result: successResult("resend")}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "ghost@example.com"})

	assert.Equal(t, genericResetMessage, res.Message)
	assert.False(t, res.EmailSent)
	assert.Empty(t, res.ResetLink)
	// no token is ever issued for an unknown address
	assert.Equal(t, 0, id.linkCalls)
	assert.Equal(t, 0, mail.calls)
}

// Lookup failure must be indistinguishable from "not found".
func TestReset_LookupDegradedMasked(t *testing.T) {
	down := &fakeIdentity{lookupErr: errors.New("identity provider unreachable")}
	ghost := &fakeIdentity{exists: false}
	mail := &fakeDeliverer{}

	resDown := New(down, mail, testConfig()).RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})
	resGhost := New(ghost, mail, testConfig()).RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, resGhost, resDown, "provider outage and unknown account must produce identical responses")
	assert.Equal(t, 0, down.linkCalls, "no token issued when lookup is degraded")
}

// Token minting failure degrades to the generic message with no link.
func TestReset_TokenErrorMasked(t *testing.T) {
	id := &fakeIdentity{exists: true, linkErr: errors.New("generate_link 500")}
	mail := &fakeDeliverer{result: successResult("resend")}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, genericResetMessage, res.Message)
	assert.False(t, res.EmailSent)
	assert.Empty(t, res.ResetLink, "no locally forged link, ever")
	assert.Equal(t, 0, mail.calls)
}

// Scenario C: primary fails, secondary succeeds.
func TestReset_SecondaryProviderSucceeds(t *testing.T) {
	id := &fakeIdentity{exists: true, link: "https://sb/verify?token=t"}
	mail := &fakeDeliverer{result: edomain.Result{
		Succeeded: true,
		Provider:  "supabase",
		Attempts: []edomain.Attempt{
			{Provider: "resend", Outcome: edomain.Failed(edomain.FailureTransient, "503")},
			{Provider: "supabase", Outcome: edomain.Succeeded("", "dispatched via provider-owned template")},
		},
	}}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, genericResetMessage, res.Message)
	assert.True(t, res.EmailSent)
	assert.Empty(t, res.ResetLink)
}

// Scenario D: confirmed account, every provider failed: direct link plus warning.
func TestReset_AllProvidersFailDirectLink(t *testing.T) {
	id := &fakeIdentity{exists: true, link: "https://sb/verify?token=t&type=recovery"}
	mail := &fakeDeliverer{result: exhaustedResult()}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, id.link, res.ResetLink)
	assert.False(t, res.EmailSent)
	assert.Contains(t, res.Message, "Do not share")
}

// No provider configured for the kind: Deliver reports failure without a
// single attempt. That is an operator misconfiguration, and the caller must
// get the generic masked text, never the direct link.
func TestReset_NoProviderConfiguredMasked(t *testing.T) {
	id := &fakeIdentity{exists: true, link: "https://sb/verify?token=secret"}
	mail := &fakeDeliverer{result: edomain.Result{Succeeded: false, Attempts: []edomain.Attempt{}}}
	s := New(id, mail, testConfig())

	res := s.RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

	assert.Equal(t, genericResetMessage, res.Message)
	assert.False(t, res.EmailSent)
	assert.Empty(t, res.ResetLink, "direct link is reserved for providers that were tried and failed")
	assert.Equal(t, 1, mail.calls)
}

// Property: the direct link never appears unless the account was confirmed to
// exist and at least one provider was actually attempted, across randomized
// lookup/delivery outcomes.
func TestReset_DirectLinkOnlyWhenAccountExists(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		exists := rng.Intn(2) == 1
		var lookupErr error
		if rng.Intn(4) == 0 {
			lookupErr = errors.New("lookup blew up")
		}

		id := &fakeIdentity{exists: exists, lookupErr: lookupErr, link: fmt.Sprintf("https://sb/verify?token=t%d", i)}
		mail := &fakeDeliverer{}
		mode := rng.Intn(3)
		switch mode {
		case 0:
			mail.result = successResult("resend")
		case 1:
			mail.result = exhaustedResult()
		case 2:
			mail.result = edomain.Result{Succeeded: false, Attempts: []edomain.Attempt{}}
		}
		res := New(id, mail, testConfig()).RequestPasswordReset(context.Background(), domain.ResetRequestInput{Email: "user@example.com"})

		if res.ResetLink != "" {
			require.True(t, exists, "iteration %d: link leaked for non-existing account", i)
			require.NoError(t, lookupErr, "iteration %d: link leaked on degraded lookup", i)
			require.Equal(t, 1, mode, "iteration %d: link leaked without a failed attempt", i)
		}
		if !exists || lookupErr != nil || mode != 1 {
			require.Equal(t, genericResetMessage, res.Message, "iteration %d", i)
		}
	}
}

func TestSignup_SendsWelcome(t *testing.T) {
	id := &fakeIdentity{signupID: "user-1"}
	mail := &fakeDeliverer{result: successResult("resend")}
	s := New(id, mail, testConfig())

	out, err := s.Signup(context.Background(), domain.SignupInput{Email: "new@example.com", Password: "Password123!"})
	require.NoError(t, err)

	assert.Equal(t, "user-1", out.UserID)
	assert.True(t, out.EmailSent)
	assert.Equal(t, edomain.KindWelcome, mail.lastMsg.Kind)
}

func TestSignup_MailFailureDoesNotFailSignup(t *testing.T) {
	id := &fakeIdentity{signupID: "user-1"}
	mail := &fakeDeliverer{result: exhaustedResult()}
	s := New(id, mail, testConfig())

	out, err := s.Signup(context.Background(), domain.SignupInput{Email: "new@example.com", Password: "Password123!"})
	require.NoError(t, err)

	assert.Equal(t, "user-1", out.UserID)
	assert.False(t, out.EmailSent)
	assert.Contains(t, out.Message, "delayed")
}

func TestSignup_IdentityRejection(t *testing.T) {
	id := &fakeIdentity{signupErr: errors.New("signup returned 422 Unprocessable Entity: User already registered")}
	mail := &fakeDeliverer{}
	s := New(id, mail, testConfig())

	_, err := s.Signup(context.Background(), domain.SignupInput{Email: "new@example.com", Password: "Password123!"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSignupRejected))
	// provider rejection text stays in the logs
	assert.NotContains(t, err.Error(), "already registered")
	assert.NotContains(t, err.Error(), "422")
	assert.Equal(t, 0, mail.calls)
}

func TestSendTestMail(t *testing.T) {
	mail := &fakeDeliverer{result: successResult("resend")}
	s := New(&fakeIdentity{}, mail, testConfig())

	out := s.SendTestMail(context.Background(), "ops@example.com")
	assert.True(t, out.Delivered)
	assert.Equal(t, "resend", out.Provider)
	assert.Equal(t, edomain.KindTest, mail.lastMsg.Kind)
}

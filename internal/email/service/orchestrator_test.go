package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
)

// fakeProvider is a scriptable domain.Provider for orchestrator tests.
type fakeProvider struct {
	name       string
	configured bool
	kinds      []edomain.Kind
	sendErr    error
	sendID     string
	calls      int
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Supports(k edomain.Kind) bool {
	if len(f.kinds) == 0 {
		return true
	}
	for _, kk := range f.kinds {
		if kk == k {
			return true
		}
	}
	return false
}

func (f *fakeProvider) Send(ctx context.Context, msg edomain.Message) (string, error) {
	f.calls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sendID, nil
}

func testMessage(kind edomain.Kind) edomain.Message {
	return edomain.NewMessage("user@example.com", kind, edomain.Rendered{
		Subject: "s", HTML: "<p>h</p>", Text: "t",
	})
}

func TestDeliver_FirstSuccessStopsChain(t *testing.T) {
	first := &fakeProvider{name: "resend", configured: true, sendID: "msg_1"}
	second := &fakeProvider{name: "supabase", configured: true}
	o := NewOrchestrator(first, second)

	res := o.Deliver(context.Background(), testMessage(edomain.KindPasswordReset))

	require.True(t, res.Succeeded)
	assert.Equal(t, "resend", res.Provider)
	require.Len(t, res.Attempts, 1)
	assert.True(t, res.Attempts[0].Outcome.OK)
	assert.Equal(t, "msg_1", res.Attempts[0].Outcome.MessageID)
	// no double-send: the second provider is never attempted
	assert.Equal(t, 0, second.calls)
}

func TestDeliver_FallsBackAfterFailure(t *testing.T) {
	first := &fakeProvider{name: "resend", configured: true, sendErr: edomain.WrapTransient(errors.New("503"))}
	second := &fakeProvider{name: "supabase", configured: true}
	o := NewOrchestrator(first, second)

	res := o.Deliver(context.Background(), testMessage(edomain.KindPasswordReset))

	require.True(t, res.Succeeded)
	assert.Equal(t, "supabase", res.Provider)
	require.Len(t, res.Attempts, 2)
	assert.False(t, res.Attempts[0].Outcome.OK)
	assert.Equal(t, edomain.FailureTransient, res.Attempts[0].Outcome.Failure)
	assert.True(t, res.Attempts[1].Outcome.OK)
}

func TestDeliver_NoConfiguredProviders(t *testing.T) {
	first := &fakeProvider{name: "resend", configured: false}
	second := &fakeProvider{name: "supabase", configured: false}
	o := NewOrchestrator(first, second)

	res := o.Deliver(context.Background(), testMessage(edomain.KindWelcome))

	assert.False(t, res.Succeeded)
	assert.Empty(t, res.Attempts, "unconfigured providers must not count as attempts")
	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestDeliver_SkipsProvidersByKind(t *testing.T) {
	// identity-service mail only carries password resets
	second := &fakeProvider{name: "supabase", configured: true, kinds: []edomain.Kind{edomain.KindPasswordReset}}
	o := NewOrchestrator(&fakeProvider{name: "resend", configured: false}, second)

	res := o.Deliver(context.Background(), testMessage(edomain.KindWelcome))

	assert.False(t, res.Succeeded)
	assert.Empty(t, res.Attempts)
	assert.Equal(t, 0, second.calls)
}

func TestDeliver_AllProvidersFail(t *testing.T) {
	first := &fakeProvider{name: "resend", configured: true, sendErr: edomain.WrapPermanent(errors.New("422"))}
	second := &fakeProvider{name: "supabase", configured: true, sendErr: edomain.WrapTransient(errors.New("timeout"))}
	o := NewOrchestrator(first, second)

	res := o.Deliver(context.Background(), testMessage(edomain.KindPasswordReset))

	assert.False(t, res.Succeeded)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, edomain.FailurePermanent, res.Attempts[0].Outcome.Failure)
	assert.Equal(t, edomain.FailureTransient, res.Attempts[1].Outcome.Failure)
}

func TestDeliver_AtMostOneSuccess(t *testing.T) {
	// property from the audit trail: never more than one success outcome
	cases := [][]*fakeProvider{
		{{name: "a", configured: true, sendID: "1"}, {name: "b", configured: true, sendID: "2"}},
		{{name: "a", configured: true, sendErr: edomain.ErrTransient}, {name: "b", configured: true, sendID: "2"}},
		{{name: "a", configured: false}, {name: "b", configured: true, sendID: "2"}},
	}
	for _, ps := range cases {
		o := NewOrchestrator(ps[0], ps[1])
		res := o.Deliver(context.Background(), testMessage(edomain.KindTest))
		successes := 0
		for _, a := range res.Attempts {
			if a.Outcome.OK {
				successes++
			}
		}
		assert.LessOrEqual(t, successes, 1)
		if res.Succeeded {
			assert.Equal(t, 1, successes)
		}
	}
}

func TestStatuses_ReflectConfigurationAndLastError(t *testing.T) {
	first := &fakeProvider{name: "resend", configured: true, sendErr: edomain.WrapTransient(errors.New("boom"))}
	second := &fakeProvider{name: "supabase", configured: false}
	o := NewOrchestrator(first, second)

	sts := o.Statuses()
	require.Len(t, sts, 2)
	assert.Equal(t, "resend", sts[0].Name)
	assert.True(t, sts[0].Configured)
	assert.Empty(t, sts[0].LastError)
	assert.False(t, sts[1].Configured)

	_ = o.Deliver(context.Background(), testMessage(edomain.KindTest))
	sts = o.Statuses()
	assert.NotEmpty(t, sts[0].LastError)

	// a later success clears the sticky error
	first.sendErr = nil
	first.sendID = "ok"
	_ = o.Deliver(context.Background(), testMessage(edomain.KindTest))
	sts = o.Statuses()
	assert.Empty(t, sts[0].LastError)
}

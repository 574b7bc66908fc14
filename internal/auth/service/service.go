package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/larrybesant/MixAndMingle-sub002/internal/auth/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/email/template"
	iddomain "github.com/larrybesant/MixAndMingle-sub002/internal/identity/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/logger"
	"github.com/larrybesant/MixAndMingle-sub002/internal/metrics"
)

// genericResetMessage is the masked response shared by every reset terminal
// state except the direct-link fallback. Changing this text changes the
// response shape for all of them at once, which is the point.
const genericResetMessage = "If an account exists for that email, a password reset link has been sent. Check your inbox."

// directLinkMessage accompanies the degraded direct-link response. It is only
// shown after the account was confirmed to exist, so it cannot be used to
// probe for accounts.
const directLinkMessage = "We couldn't deliver the reset email right now. Use the link below to reset your password. Do not share this link with anyone — it grants access to your account."

// Ensure Service implements domain.Service
var _ domain.Service = (*Service)(nil)

// Service composes the account lookup guard, the recovery token issuer, the
// template renderer and the delivery orchestrator into the recovery flow.
type Service struct {
	cfg      config.Config
	identity iddomain.Client
	mailer   edomain.Deliverer
	log      zerolog.Logger
}

func New(identity iddomain.Client, mailer edomain.Deliverer, cfg config.Config) *Service {
	return &Service{cfg: cfg, identity: identity, mailer: mailer, log: logger.Nop()}
}

// SetLogger injects the module logger.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

// RequestPasswordReset runs the recovery state machine. Input validation
// (email format) happens at the HTTP boundary; everything past that point is
// masked: lookup failure, unknown account and token-issue failure all produce
// the identical generic response. Full detail goes to the log only.
func (s *Service) RequestPasswordReset(ctx context.Context, in domain.ResetRequestInput) domain.ResetResult {
	masked := domain.ResetResult{Message: genericResetMessage, EmailSent: false}

	exists, err := s.identity.UserExists(ctx, in.Email)
	if err != nil {
		// LookupDegraded: identity provider unreachable. Same response as
		// "not found" so outages cannot be used to probe for accounts.
		s.log.Warn().Err(err).Msg("account lookup degraded, masking response")
		metrics.IncRecoveryOutcome("lookup_degraded")
		return masked
	}
	if !exists {
		metrics.IncRecoveryOutcome("not_found")
		return masked
	}

	link, err := s.identity.GenerateRecoveryLink(ctx, in.Email, s.cfg.PublicBaseURL+"/reset-password")
	if err != nil {
		// Token minting is delegated entirely to the identity provider;
		// there is no local fallback and no link in the response.
		s.log.Error().Err(err).Msg("recovery link generation failed")
		metrics.IncRecoveryOutcome("token_error")
		return masked
	}

	rendered, err := template.Render(edomain.KindPasswordReset, template.Params{ActionURL: link})
	if err != nil {
		s.log.Error().Err(err).Msg("rendering password reset template")
		metrics.IncRecoveryOutcome("token_error")
		return masked
	}

	msg := edomain.NewMessage(in.Email, edomain.KindPasswordReset, rendered)
	res := s.mailer.Deliver(ctx, msg)
	if res.Succeeded {
		s.log.Info().
			Str("provider", res.Provider).
			Str("message_id", msg.ID.String()).
			Msg("password reset email delivered")
		metrics.IncRecoveryOutcome("delivered")
		return domain.ResetResult{Message: genericResetMessage, EmailSent: true}
	}

	if len(res.Attempts) == 0 {
		// Nothing was even attempted: no provider is configured for this
		// kind. That is an operator problem, visible in logs and metrics
		// only; the caller gets the generic text with no link.
		s.log.Error().Msg("no delivery provider configured, masking response")
		metrics.IncRecoveryOutcome("not_configured")
		return masked
	}

	// Every provider was actually tried and failed for a confirmed account:
	// hand the link to the caller with an explicit warning, since no email
	// will arrive.
	s.log.Error().
		Int("attempts", len(res.Attempts)).
		Msg("all delivery providers failed, returning direct recovery link")
	metrics.IncRecoveryOutcome("direct_link")
	return domain.ResetResult{
		Message:   directLinkMessage,
		EmailSent: false,
		ResetLink: link,
	}
}

// Signup creates the account through the identity provider, then sends the
// welcome email on a best-effort basis. Mail failure degrades the message but
// never the signup.
func (s *Service) Signup(ctx context.Context, in domain.SignupInput) (domain.SignupResult, error) {
	userID, err := s.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		// Provider rejection text can embed upstream status lines and response
		// bodies; log it, return the stable error.
		s.log.Warn().Err(err).Msg("identity provider rejected signup")
		return domain.SignupResult{}, domain.ErrSignupRejected
	}

	out := domain.SignupResult{UserID: userID}
	rendered, err := template.Render(edomain.KindWelcome, template.Params{
		ActionURL: s.cfg.PublicBaseURL + "/login",
		LinkTTL:   "24 hours",
	})
	if err != nil {
		s.log.Error().Err(err).Msg("rendering welcome template")
		out.Message = "Account created. The verification email may be delayed."
		return out, nil
	}

	msg := edomain.NewMessage(in.Email, edomain.KindWelcome, rendered)
	res := s.mailer.Deliver(ctx, msg)
	if !res.Succeeded {
		s.log.Warn().
			Int("attempts", len(res.Attempts)).
			Str("message_id", msg.ID.String()).
			Msg("welcome email not delivered")
		out.Message = "Account created. The verification email may be delayed."
		return out, nil
	}
	out.EmailSent = true
	out.Message = "Account created. Check your email to confirm your address."
	return out, nil
}

// SendTestMail runs a diagnostic delivery through the full provider chain.
func (s *Service) SendTestMail(ctx context.Context, to string) domain.TestMailResult {
	rendered, err := template.Render(edomain.KindTest, template.Params{})
	if err != nil {
		s.log.Error().Err(err).Msg("rendering test template")
		return domain.TestMailResult{Attempts: []edomain.Attempt{}}
	}
	msg := edomain.NewMessage(to, edomain.KindTest, rendered)
	res := s.mailer.Deliver(ctx, msg)
	return domain.TestMailResult{
		Delivered: res.Succeeded,
		Provider:  res.Provider,
		Attempts:  res.Attempts,
	}
}

// ProviderStatuses exposes the orchestrator's configuration snapshot.
func (s *Service) ProviderStatuses() []edomain.Status {
	return s.mailer.Statuses()
}

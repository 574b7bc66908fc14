package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/logger"
	"github.com/larrybesant/MixAndMingle-sub002/internal/metrics"
)

// Ensure Orchestrator implements domain.Deliverer
var _ edomain.Deliverer = (*Orchestrator)(nil)

// Orchestrator walks an ordered provider chain sequentially and stops at the
// first success, so at most one email is ever transmitted per delivery call.
type Orchestrator struct {
	providers []edomain.Provider
	log       zerolog.Logger

	mu      sync.Mutex
	lastErr map[string]string
}

// NewOrchestrator builds the fallback chain in the given order.
func NewOrchestrator(providers ...edomain.Provider) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		log:       logger.Nop(),
		lastErr:   make(map[string]string),
	}
}

// SetLogger injects the module logger.
func (o *Orchestrator) SetLogger(l zerolog.Logger) { o.log = l }

// Deliver attempts each configured, kind-compatible provider in order.
// Unconfigured or incompatible providers are skipped without counting as a
// failed attempt. If every provider fails (or none qualifies) the result
// carries succeeded=false and the full attempt trail.
func (o *Orchestrator) Deliver(ctx context.Context, msg edomain.Message) edomain.Result {
	res := edomain.Result{Attempts: []edomain.Attempt{}}

	for _, p := range o.providers {
		if !p.IsConfigured() {
			o.log.Debug().
				Str("provider", p.Name()).
				Str("message_id", msg.ID.String()).
				Msg("provider not configured, skipping")
			continue
		}
		if !p.Supports(msg.Kind) {
			o.log.Debug().
				Str("provider", p.Name()).
				Str("kind", string(msg.Kind)).
				Msg("provider does not carry this kind, skipping")
			continue
		}

		started := time.Now()
		id, err := p.Send(ctx, msg)
		ended := time.Now()

		if err != nil {
			kind := edomain.Classify(err)
			if kind == edomain.FailureNotConfigured {
				continue
			}
			o.recordError(p.Name(), err.Error())
			res.Attempts = append(res.Attempts, edomain.Attempt{
				Provider:  p.Name(),
				Outcome:   edomain.Failed(kind, err.Error()),
				StartedAt: started,
				EndedAt:   ended,
			})
			metrics.IncDeliveryAttempt(p.Name(), string(kind))
			o.log.Debug().
				Str("provider", p.Name()).
				Str("message_id", msg.ID.String()).
				Str("to", redact(msg.To)).
				Str("failure", string(kind)).
				Msg("delivery attempt failed, trying next provider")
			continue
		}

		note := ""
		if id == "" {
			note = "dispatched via provider-owned template"
		}
		o.recordError(p.Name(), "")
		res.Attempts = append(res.Attempts, edomain.Attempt{
			Provider:  p.Name(),
			Outcome:   edomain.Succeeded(id, note),
			StartedAt: started,
			EndedAt:   ended,
		})
		res.Succeeded = true
		res.Provider = p.Name()
		metrics.IncDeliveryAttempt(p.Name(), "success")
		o.log.Debug().
			Str("provider", p.Name()).
			Str("message_id", msg.ID.String()).
			Str("to", redact(msg.To)).
			Msg("delivered")
		break
	}

	result := "delivered"
	if !res.Succeeded {
		result = "exhausted"
		if len(res.Attempts) == 0 {
			// Operator problem, not a user problem: the caller still gets
			// the generic masked response.
			o.log.Error().
				Str("kind", string(msg.Kind)).
				Msg("no email provider configured for this message kind")
		} else {
			o.log.Warn().
				Str("message_id", msg.ID.String()).
				Str("kind", string(msg.Kind)).
				Int("attempts", len(res.Attempts)).
				Msg("all providers failed")
		}
	}
	metrics.IncDeliveryResult(string(msg.Kind), result)
	return res
}

// Statuses returns a configuration snapshot per provider for diagnostics.
// Key material never appears here.
func (o *Orchestrator) Statuses() []edomain.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]edomain.Status, 0, len(o.providers))
	for _, p := range o.providers {
		out = append(out, edomain.Status{
			Name:       p.Name(),
			Configured: p.IsConfigured(),
			LastError:  o.lastErr[p.Name()],
		})
	}
	return out
}

func (o *Orchestrator) recordError(provider, detail string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if detail == "" {
		delete(o.lastErr, provider)
		return
	}
	o.lastErr[provider] = detail
}

// redact keeps the first rune of the local part so log lines stay correlatable
// without exposing full recipient addresses in shared logs.
func redact(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

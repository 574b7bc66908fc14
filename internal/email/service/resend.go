package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	edomain "github.com/larrybesant/MixAndMingle-sub002/internal/email/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/logger"
)

const resendEndpoint = "https://api.resend.com/emails"

// Ensure Resend implements domain.Provider
var _ edomain.Provider = (*Resend)(nil)

// Resend is the primary delivery provider, a bulk transactional email HTTP API.
type Resend struct {
	cfg      config.Config
	http     *http.Client
	log      zerolog.Logger
	endpoint string
}

func NewResend(cfg config.Config) *Resend {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Resend{
		cfg:      cfg,
		http:     &http.Client{Timeout: timeout},
		log:      logger.Nop(),
		endpoint: resendEndpoint,
	}
}

// SetLogger injects the module logger.
func (r *Resend) SetLogger(l zerolog.Logger) { r.log = l }

func (r *Resend) Name() string { return "resend" }

// IsConfigured checks the API key against the provider's key format; a key
// that cannot possibly authenticate is the same as no key.
func (r *Resend) IsConfigured() bool {
	return strings.HasPrefix(r.cfg.ResendAPIKey, "re_")
}

func (r *Resend) Supports(k edomain.Kind) bool { return true }

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Send posts the rendered message. When the configured sending domain is not
// verified with the provider, it retries exactly once from the provider's
// default sender identity before reporting failure.
func (r *Resend) Send(ctx context.Context, msg edomain.Message) (string, error) {
	if !r.IsConfigured() {
		return "", fmt.Errorf("%w: resend api key missing or malformed", edomain.ErrNotConfigured)
	}
	id, err := r.post(ctx, r.cfg.ResendFrom, msg)
	if err == nil {
		return id, nil
	}
	if isDomainUnverified(err) && r.cfg.ResendFallbackFrom != "" {
		r.log.Debug().
			Str("message_id", msg.ID.String()).
			Msg("sending domain unverified, retrying once from provider default sender")
		return r.post(ctx, r.cfg.ResendFallbackFrom, msg)
	}
	return "", err
}

func (r *Resend) post(ctx context.Context, from string, msg edomain.Message) (string, error) {
	payload := resendPayload{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	buf, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", edomain.WrapTransient(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.ResendAPIKey)
	resp, err := r.http.Do(req)
	if err != nil {
		return "", edomain.WrapTransient(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", edomain.WrapTransient(fmt.Errorf("decoding send response: %v", err))
		}
		return out.ID, nil
	}

	var apiErr struct {
		StatusCode int    `json:"statusCode"`
		Name       string `json:"name"`
		Message    string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)
	detail := apiErr.Message
	if detail == "" {
		detail = resp.Status
	}
	if resp.StatusCode >= 500 {
		return "", edomain.WrapTransient(fmt.Errorf("resend %s: %s", resp.Status, detail))
	}
	return "", &sendError{status: resp.StatusCode, detail: detail}
}

// sendError carries the provider status so the bounded domain-fallback retry
// can distinguish the unverified-domain rejection from other 4xx.
type sendError struct {
	status int
	detail string
}

func (e *sendError) Error() string {
	return fmt.Sprintf("resend rejected send (%d): %s", e.status, e.detail)
}

func (e *sendError) Unwrap() error { return edomain.ErrPermanent }

func isDomainUnverified(err error) bool {
	se, ok := err.(*sendError)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(se.detail), "not verified")
}

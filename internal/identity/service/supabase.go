package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	iddomain "github.com/larrybesant/MixAndMingle-sub002/internal/identity/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/logger"
)

// Ensure Supabase implements domain.Client
var _ iddomain.Client = (*Supabase)(nil)

// Supabase talks to the GoTrue auth API. Admin calls (user lookup, link
// generation) use the service-role key; user-facing calls (signup, built-in
// recovery mail) use the anon key.
type Supabase struct {
	cfg  config.Config
	http *http.Client
	log  zerolog.Logger
}

func NewSupabase(cfg config.Config) *Supabase {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Supabase{cfg: cfg, http: &http.Client{Timeout: timeout}, log: logger.Nop()}
}

// SetLogger injects the module logger.
func (s *Supabase) SetLogger(l zerolog.Logger) { s.log = l }

// HasAdminCredentials reports whether admin API calls are possible.
func (s *Supabase) HasAdminCredentials() bool {
	return s.cfg.SupabaseURL != "" && s.cfg.SupabaseServiceKey != ""
}

// HasAnonCredentials reports whether user-facing API calls are possible.
func (s *Supabase) HasAnonCredentials() bool {
	return s.cfg.SupabaseURL != "" && s.cfg.SupabaseAnonKey != ""
}

func (s *Supabase) UserExists(ctx context.Context, email string) (bool, error) {
	if !s.HasAdminCredentials() {
		return false, fmt.Errorf("%w: missing service role key", iddomain.ErrNotConfigured)
	}
	endpoint := s.cfg.SupabaseURL + "/auth/v1/admin/users?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", iddomain.ErrLookup, err)
	}
	s.adminHeaders(req)
	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", iddomain.ErrLookup, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: admin user lookup returned %s", iddomain.ErrLookup, resp.Status)
	}
	var out struct {
		Users []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("%w: decoding lookup response: %v", iddomain.ErrLookup, err)
	}
	// Not every GoTrue version honors the email filter param; the listing may
	// be a plain page of users. Only a returned user whose address actually
	// matches counts as existing.
	for _, u := range out.Users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Supabase) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	if !s.HasAdminCredentials() {
		return "", fmt.Errorf("%w: missing service role key", iddomain.ErrNotConfigured)
	}
	payload := map[string]any{
		"type":  "recovery",
		"email": email,
		"options": map[string]string{
			"redirect_to": redirectTo,
		},
	}
	buf, _ := json.Marshal(payload)
	endpoint := s.cfg.SupabaseURL + "/auth/v1/admin/generate_link"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("%w: %v", iddomain.ErrTokenMint, err)
	}
	s.adminHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", iddomain.ErrTokenMint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: generate_link returned %s", iddomain.ErrTokenMint, resp.Status)
	}
	var out struct {
		ActionLink string `json:"action_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding generate_link response: %v", iddomain.ErrTokenMint, err)
	}
	if out.ActionLink == "" {
		return "", fmt.Errorf("%w: provider returned no action link", iddomain.ErrTokenMint)
	}
	return out.ActionLink, nil
}

func (s *Supabase) SendRecoveryEmail(ctx context.Context, email, redirectTo string) error {
	if !s.HasAnonCredentials() {
		return fmt.Errorf("%w: missing anon key", iddomain.ErrNotConfigured)
	}
	endpoint := s.cfg.SupabaseURL + "/auth/v1/recover"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	buf, _ := json.Marshal(map[string]string{"email": email})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.cfg.SupabaseAnonKey)
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("recover dispatch returned %s", resp.Status)
	}
	return nil
}

func (s *Supabase) SignUp(ctx context.Context, email, password string) (string, error) {
	if !s.HasAnonCredentials() {
		return "", fmt.Errorf("%w: missing anon key", iddomain.ErrNotConfigured)
	}
	buf, _ := json.Marshal(map[string]string{"email": email, "password": password})
	endpoint := s.cfg.SupabaseURL + "/auth/v1/signup"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.cfg.SupabaseAnonKey)
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("signup returned %s: %s", resp.Status, truncate(string(body), 256))
	}
	var out struct {
		ID   string `json:"id"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding signup response: %w", err)
	}
	if out.ID != "" {
		return out.ID, nil
	}
	return out.User.ID, nil
}

func (s *Supabase) adminHeaders(req *http.Request) {
	req.Header.Set("apikey", s.cfg.SupabaseServiceKey)
	req.Header.Set("Authorization", "Bearer "+s.cfg.SupabaseServiceKey)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv             string
	AppAddr            string
	CORSAllowedOrigins []string
	// PublicBaseURL is the end-user application origin; recovery links redirect here.
	PublicBaseURL string

	// Primary email provider (Resend HTTP API).
	ResendAPIKey string
	ResendFrom   string
	// ResendFallbackFrom is the provider-supplied sender identity used for the
	// single bounded retry when the configured sending domain is unverified.
	ResendFallbackFrom string

	// Identity provider (Supabase/GoTrue).
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseAnonKey    string

	// ProviderTimeout bounds each outbound provider call.
	ProviderTimeout time.Duration

	RedisAddr string
	RedisDB   int

	RLResetLimit   int
	RLResetWindow  time.Duration
	RLSignupLimit  int
	RLSignupWindow time.Duration
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":8080")
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	c.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")

	c.ResendAPIKey = getEnv("RESEND_API_KEY", "")
	c.ResendFrom = getEnv("RESEND_FROM", "Mix & Mingle <no-reply@mixandmingle.app>")
	c.ResendFallbackFrom = getEnv("RESEND_FALLBACK_FROM", "onboarding@resend.dev")

	c.SupabaseURL = strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	c.SupabaseServiceKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", "")
	c.SupabaseAnonKey = getEnv("SUPABASE_ANON_KEY", "")

	c.ProviderTimeout = getDuration("PROVIDER_TIMEOUT", 8*time.Second)

	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisDB = getInt("REDIS_DB", 0)

	c.RLResetLimit = getInt("RL_RESET_LIMIT", 5)
	c.RLResetWindow = getDuration("RL_RESET_WINDOW", time.Minute)
	c.RLSignupLimit = getInt("RL_SIGNUP_LIMIT", 3)
	c.RLSignupWindow = getDuration("RL_SIGNUP_WINDOW", time.Minute)

	return c, nil
}

// IsProduction reports whether the service runs with production hardening
// (diagnostic mail endpoint disabled, info-level logging).
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return []string{"*"}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s supabase=%s redis=%s/%d", c.AppEnv, c.AppAddr, c.SupabaseURL, c.RedisAddr, c.RedisDB)
}

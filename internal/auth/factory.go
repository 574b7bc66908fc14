package auth

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	ctrl "github.com/larrybesant/MixAndMingle-sub002/internal/auth/controller"
	svc "github.com/larrybesant/MixAndMingle-sub002/internal/auth/service"
	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	emailsvc "github.com/larrybesant/MixAndMingle-sub002/internal/email/service"
	idsvc "github.com/larrybesant/MixAndMingle-sub002/internal/identity/service"
	"github.com/larrybesant/MixAndMingle-sub002/internal/logger"
	rl "github.com/larrybesant/MixAndMingle-sub002/internal/platform/ratelimit"
)

// Register wires the recovery/notification module and mounts its HTTP routes.
// Provider adapters are constructed once here and shared read-only across
// requests; handlers receive the service by interface, never via a global.
func Register(e *echo.Echo, cfg config.Config) {
	log := logger.New(cfg.AppEnv)

	identity := idsvc.NewSupabase(cfg)
	identity.SetLogger(log)

	primary := emailsvc.NewResend(cfg)
	primary.SetLogger(log)
	secondary := emailsvc.NewIdentityMail(identity, cfg.PublicBaseURL+"/reset-password")

	// Static fallback order: bulk API first, identity-service mail second.
	mailer := emailsvc.NewOrchestrator(primary, secondary)
	mailer.SetLogger(log)

	s := svc.New(identity, mailer, cfg)
	s.SetLogger(log)

	c := ctrl.New(s, cfg)
	// Shared rate-limit windows need a reachable Redis; the store fails open
	// on errors, so an unreachable one would disable the throttle entirely.
	// Without Redis the controller keeps its in-memory windows.
	rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-memory rate limiting")
		_ = rc.Close()
	} else {
		c = c.WithRateLimitStore(rl.NewRedisStore(rc))
	}
	c.Register(e)
}

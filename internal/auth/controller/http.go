package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "github.com/larrybesant/MixAndMingle-sub002/internal/auth/domain"
	"github.com/larrybesant/MixAndMingle-sub002/internal/config"
	"github.com/larrybesant/MixAndMingle-sub002/internal/platform/ratelimit"
	"github.com/larrybesant/MixAndMingle-sub002/internal/platform/validation"
)

type Controller struct {
	svc domain.Service
	cfg config.Config
	// optional rate limit store (Redis); in-memory windows when nil
	rl ratelimit.Store
}

// New constructs the controller.
func New(svc domain.Service, cfg config.Config) *Controller {
	return &Controller{svc: svc, cfg: cfg}
}

// WithRateLimitStore enables shared, store-backed rate limiting.
func (h *Controller) WithRateLimitStore(store ratelimit.Store) *Controller {
	h.rl = store
	return h
}

// Register mounts the auth and email-diagnostics routes.
func (h *Controller) Register(e *echo.Echo) {
	mkMW := func(p ratelimit.Policy) echo.MiddlewareFunc {
		if h.rl != nil {
			return ratelimit.MiddlewareWithStore(p, h.rl)
		}
		return ratelimit.Middleware(p)
	}

	rlReset := mkMW(ratelimit.Policy{
		Name:   "auth:reset",
		Limit:  h.cfg.RLResetLimit,
		Window: h.cfg.RLResetWindow,
		Key:    ratelimit.KeyIP("auth:reset"),
	})
	rlSignup := mkMW(ratelimit.Policy{
		Name:   "auth:signup",
		Limit:  h.cfg.RLSignupLimit,
		Window: h.cfg.RLSignupWindow,
		Key:    ratelimit.KeyIP("auth:signup"),
	})

	g := e.Group("/auth")
	g.POST("/reset-password", h.resetPassword, rlReset)
	g.POST("/signup", h.signup, rlSignup)

	m := e.Group("/email")
	m.GET("/status", h.emailStatus)
	m.POST("/test", h.testMail, rlReset)
}

type resetPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type signupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type testMailReq struct {
	To string `json:"to" validate:"required,email"`
}

// Reset Password godoc
// @Summary      Request a password reset
// @Description  Issues a recovery link for the address and delivers it by email. The response never reveals whether an account exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  resetPasswordReq  true  "email"
// @Success      200   {object}  domain.ResetResult
// @Failure      400   {object}  validation.ErrorBody
// @Failure      429   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *Controller) resetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		// Malformed email is the one concrete input error we may disclose.
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	res := h.svc.RequestPasswordReset(c.Request().Context(), domain.ResetRequestInput{Email: req.Email})
	return c.JSON(http.StatusOK, res)
}

// Signup godoc
// @Summary      Create an account
// @Description  Registers the account with the identity provider and sends a welcome email. Mail failure never fails the signup.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signupReq  true  "email, password"
// @Success      201   {object}  domain.SignupResult
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *Controller) signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	res, err := h.svc.Signup(c.Request().Context(), domain.SignupInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, res)
}

// Email Status godoc
// @Summary      Provider configuration status
// @Description  Reports per-provider configuration state for diagnostics. Never includes key material.
// @Tags         email
// @Produce      json
// @Success      200  {array}  edomain.Status
// @Router       /email/status [get]
func (h *Controller) emailStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ProviderStatuses())
}

// Test Mail godoc
// @Summary      Send a diagnostic email
// @Description  Renders the test template and runs the full provider chain. Disabled in production.
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body  body  testMailReq  true  "to"
// @Success      200   {object}  domain.TestMailResult
// @Failure      400   {object}  validation.ErrorBody
// @Router       /email/test [post]
func (h *Controller) testMail(c echo.Context) error {
	if h.cfg.IsProduction() {
		return c.NoContent(http.StatusNotFound)
	}
	var req testMailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	res := h.svc.SendTestMail(c.Request().Context(), req.To)
	return c.JSON(http.StatusOK, res)
}

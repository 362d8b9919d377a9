package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	"github.com/haythamforever/HonorHub/internal/platform/validation"
)

type Controller struct {
	mailer  edomain.Mailer
	jwtMW   echo.MiddlewareFunc
	adminMW echo.MiddlewareFunc
	rlStore rl.Store
}

func New(mailer edomain.Mailer) *Controller { return &Controller{mailer: mailer} }

// WithAuth injects the JWT middleware and admin gate.
func (h *Controller) WithAuth(jwtMW, adminMW echo.MiddlewareFunc) *Controller {
	h.jwtMW, h.adminMW = jwtMW, adminMW
	return h
}

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// Register mounts the test-email endpoint. Defaults: 5/min per user.
func (h *Controller) Register(e *echo.Echo) {
	policy := rl.Policy{Name: "settings:test-email", Window: time.Minute, Limit: 5, Key: rl.KeyUserOrIP("settings:test-email", amw.UserID)}
	var mw []echo.MiddlewareFunc
	if h.jwtMW != nil {
		mw = append(mw, h.jwtMW)
	}
	if h.adminMW != nil {
		mw = append(mw, h.adminMW)
	}
	if h.rlStore != nil {
		mw = append(mw, rl.MiddlewareWithStore(policy, h.rlStore))
	} else {
		mw = append(mw, rl.Middleware(policy))
	}
	e.POST("/api/v1/settings/test-email", h.sendTestEmail, mw...)
}

type testEmailReq struct {
	Email string `json:"email" validate:"required,email"`
}

// Send Test Email godoc
// @Summary      Send a test email
// @Description  Sends a short message through the currently configured provider.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  testEmailReq  true  "recipient"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  validation.ErrorBody
// @Failure      429  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/settings/test-email [post]
func (h *Controller) sendTestEmail(c echo.Context) error {
	var req testEmailReq
	if err := validation.BindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	if err := h.mailer.SendTest(c.Request().Context(), req.Email); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, edomain.ErrNotConfigured):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, edomain.ErrRateLimited):
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "test email sent"})
}

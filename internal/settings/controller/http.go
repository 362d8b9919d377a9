package controller

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	evdomain "github.com/haythamforever/HonorHub/internal/events/domain"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Controller exposes the global settings endpoints. Only known keys are
// accepted and credentials are masked on read.
type Controller struct {
	repo sdomain.Repository
	// Injected concerns
	jwtMW   echo.MiddlewareFunc
	adminMW echo.MiddlewareFunc
	rlStore rl.Store
	pub     evdomain.Publisher
}

func New(repo sdomain.Repository) *Controller {
	return &Controller{repo: repo}
}

// Register mounts settings endpoints under /api/v1. Defaults: PUT 10/min per user.
func (h *Controller) Register(e *echo.Echo) {
	putPolicy := rl.Policy{Name: "settings:put", Window: time.Minute, Limit: 10, Key: rl.KeyUserOrIP("settings:put", amw.UserID)}
	var putRL echo.MiddlewareFunc
	if h.rlStore != nil {
		putRL = rl.MiddlewareWithStore(putPolicy, h.rlStore)
	} else {
		putRL = rl.Middleware(putPolicy)
	}

	var mw []echo.MiddlewareFunc
	if h.jwtMW != nil {
		mw = append(mw, h.jwtMW)
	}
	if h.adminMW != nil {
		mw = append(mw, h.adminMW)
	}
	putMW := append(append([]echo.MiddlewareFunc{}, mw...), putRL)

	e.GET("/api/v1/settings", h.getSettings, mw...)
	e.PUT("/api/v1/settings", h.putSettings, putMW...)
}

// WithAuth injects the JWT middleware and admin gate for these endpoints.
func (h *Controller) WithAuth(jwtMW, adminMW echo.MiddlewareFunc) *Controller {
	h.jwtMW, h.adminMW = jwtMW, adminMW
	return h
}

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithPublisher injects an audit event publisher.
func (h *Controller) WithPublisher(p evdomain.Publisher) *Controller { h.pub = p; return h }

// Mask hides all but the last four characters of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// Get Settings godoc
// @Summary      Get application settings
// @Description  Returns every stored setting. Credentials are masked.
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/settings [get]
func (h *Controller) getSettings(c echo.Context) error {
	all, err := h.repo.All(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("settings: load: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if !sdomain.Known(k) {
			continue
		}
		if sdomain.Secret(k) {
			v = Mask(v)
		}
		out[k] = v
	}
	return c.JSON(http.StatusOK, out)
}

// Put Settings godoc
// @Summary      Upsert application settings
// @Description  Upserts the given keys. Unknown keys are rejected. A masked secret ("****...") is ignored so a round-tripped GET does not overwrite it.
// @Tags         settings
// @Accept       json
// @Param        body  body  map[string]string  true  "settings"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/settings [put]
func (h *Controller) putSettings(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	var unknown []string
	for k := range req {
		if !sdomain.Known(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown settings: " + strings.Join(unknown, ", ")})
	}
	if v, ok := req[sdomain.KeyEmailProvider]; ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case sdomain.ProviderSMTP, sdomain.ProviderResend, sdomain.ProviderMailgun:
			req[sdomain.KeyEmailProvider] = strings.ToLower(strings.TrimSpace(v))
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "email_provider must be smtp, resend or mailgun"})
		}
	}
	if v, ok := req[sdomain.KeySMTPPort]; ok && strings.TrimSpace(v) != "" {
		if p, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || p <= 0 || p > 65535 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "smtp_port must be a valid port"})
		}
	}

	changed := make([]string, 0, len(req))
	for k, v := range req {
		if sdomain.Secret(k) && strings.HasPrefix(v, "****") {
			continue
		}
		if err := h.repo.Upsert(c.Request().Context(), k, v); err != nil {
			c.Logger().Errorf("settings: upsert %s: %v", k, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		}
		changed = append(changed, k)
	}
	sort.Strings(changed)

	if h.pub != nil && len(changed) > 0 {
		actor, _ := amw.UserID(c)
		_ = h.pub.Publish(c.Request().Context(), evdomain.Event{
			Type:    evdomain.TypeSettingsUpdated,
			ActorID: actor,
			Meta:    map[string]string{"keys": strings.Join(changed, ",")},
			Time:    time.Now(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

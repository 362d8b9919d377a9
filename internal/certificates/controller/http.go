package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	"github.com/haythamforever/HonorHub/internal/platform/validation"
	"github.com/haythamforever/HonorHub/internal/render"
)

// maxBulk caps the number of specs accepted in one bulk request.
const maxBulk = 500

type Controller struct {
	svc     domain.Service
	jwtMW   echo.MiddlewareFunc
	rlStore rl.Store
}

func New(svc domain.Service) *Controller { return &Controller{svc: svc} }

// WithJWT injects a JWT middleware for these endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

func (h *Controller) limiter(p rl.Policy) echo.MiddlewareFunc {
	if h.rlStore != nil {
		return rl.MiddlewareWithStore(p, h.rlStore)
	}
	return rl.Middleware(p)
}

// Register mounts certificate and stats endpoints under /api/v1.
// Defaults: bulk 5/min, resend 20/min per user.
func (h *Controller) Register(e *echo.Echo) {
	var auth []echo.MiddlewareFunc
	if h.jwtMW != nil {
		auth = append(auth, h.jwtMW)
	}
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, auth...), extra...)
	}
	bulkRL := h.limiter(rl.Policy{Name: "certificates:bulk", Window: time.Minute, Limit: 5, Key: rl.KeyUserOrIP("certificates:bulk", amw.UserID)})
	resendRL := h.limiter(rl.Policy{Name: "certificates:resend", Window: time.Minute, Limit: 20, Key: rl.KeyUserOrIP("certificates:resend", amw.UserID)})

	g := e.Group("/api/v1")
	g.POST("/certificates", h.create, auth...)
	g.POST("/certificates/bulk", h.createBulk, with(bulkRL)...)
	g.POST("/certificates/:id/resend", h.resend, with(resendRL)...)
	g.DELETE("/certificates/:id", h.delete, auth...)
	g.GET("/certificates", h.list, auth...)
	g.GET("/certificates/:id", h.get, auth...)
	g.GET("/stats/overview", h.stats, auth...)
}

type createReq struct {
	domain.IssueSpec
	SendEmail bool `json:"send_email"`
}

type bulkReq struct {
	Certificates []domain.IssueSpec `json:"certificates"`
	SendEmail    bool               `json:"send_email"`
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func writeErr(c echo.Context, err error) error {
	var ref *domain.ReferenceError
	switch {
	case errors.Is(err, domain.ErrInvalidSpec):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &ref):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": ref.Error()})
	case errors.Is(err, domain.ErrCertificateNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "certificate not found"})
	case errors.Is(err, domain.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, domain.ErrDispatchFailed):
		status := http.StatusBadGateway
		if errors.Is(err, edomain.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	case errors.Is(err, render.ErrTextOverflow):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "description and message are too long to fit on the certificate"})
	case errors.Is(err, domain.ErrRenderFailed), errors.Is(err, domain.ErrPersistFailed):
		c.Logger().Errorf("certificates: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create certificate"})
	}
	c.Logger().Errorf("certificates: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// Create Certificate godoc
// @Summary      Issue a certificate
// @Description  Renders and stores one certificate and optionally emails it. A delivery failure does not fail the request; it is reported in email_error.
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        body  body  createReq  true  "certificate"
// @Success      201  {object}  domain.Created
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/certificates [post]
func (h *Controller) create(c echo.Context) error {
	sender, ok := amw.CurrentSender(c)
	if !ok && h.jwtMW != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req createReq
	if err := validation.BindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	out, err := h.svc.Create(c.Request().Context(), domain.CreateInput{IssueSpec: req.IssueSpec, SendEmail: req.SendEmail, Sender: sender})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Bulk Create Certificates godoc
// @Summary      Issue certificates in bulk
// @Description  Processes items in order. Failed items are listed with their stage and do not stop the batch.
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        body  body  bulkReq  true  "certificates"
// @Success      200  {object}  domain.BulkResult
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/certificates/bulk [post]
func (h *Controller) createBulk(c echo.Context) error {
	sender, ok := amw.CurrentSender(c)
	if !ok && h.jwtMW != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req bulkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if len(req.Certificates) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "certificates must not be empty"})
	}
	if len(req.Certificates) > maxBulk {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "too many certificates in one request"})
	}
	// Per-item field problems surface as validation failures in the result
	// instead of rejecting the whole batch.
	res := h.svc.CreateBulk(c.Request().Context(), domain.BulkInput{Specs: req.Certificates, SendEmail: req.SendEmail, Sender: sender})
	return c.JSON(http.StatusOK, res)
}

// Resend Certificate godoc
// @Summary      Resend a certificate email
// @Description  Sends the stored PDF again without re-rendering. Delivery failures are returned.
// @Tags         certificates
// @Produce      json
// @Param        id   path  int  true  "Certificate ID"
// @Success      200  {object}  domain.Detail
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/certificates/{id}/resend [post]
func (h *Controller) resend(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	d, err := h.svc.Resend(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Delete Certificate godoc
// @Summary      Delete a certificate
// @Description  Allowed for admins and the user who issued it.
// @Tags         certificates
// @Param        id   path  int  true  "Certificate ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/certificates/{id} [delete]
func (h *Controller) delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	actor, _ := amw.CurrentSender(c)
	if err := h.svc.Delete(c.Request().Context(), id, actor); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func queryInt(c echo.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return v
}

// List Certificates godoc
// @Summary      List certificates
// @Description  Newest first. Optional filters by employee, tier and sender.
// @Tags         certificates
// @Produce      json
// @Param        employee_id  query  int  false  "Employee ID"
// @Param        tier_id      query  int  false  "Tier ID"
// @Param        sender_id    query  int  false  "Sender ID"
// @Param        limit        query  int  false  "Page size (default 50, max 200)"
// @Param        offset       query  int  false  "Offset"
// @Success      200  {array}  domain.Detail
// @Security     BearerAuth
// @Router       /api/v1/certificates [get]
func (h *Controller) list(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), domain.ListFilter{
		EmployeeID: queryInt(c, "employee_id"),
		TierID:     queryInt(c, "tier_id"),
		SenderID:   queryInt(c, "sender_id"),
		Limit:      int(queryInt(c, "limit")),
		Offset:     int(queryInt(c, "offset")),
	})
	if err != nil {
		return writeErr(c, err)
	}
	if items == nil {
		items = []domain.Detail{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get Certificate godoc
// @Summary      Get a certificate
// @Tags         certificates
// @Produce      json
// @Param        id   path  int  true  "Certificate ID"
// @Success      200  {object}  domain.Detail
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/certificates/{id} [get]
func (h *Controller) get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Stats Overview godoc
// @Summary      Issuance statistics
// @Description  Totals, per-tier counts including empty tiers, and the most recent certificates.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  domain.Stats
// @Security     BearerAuth
// @Router       /api/v1/stats/overview [get]
func (h *Controller) stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

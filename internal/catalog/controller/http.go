package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

type Controller struct {
	svc     cdomain.Service
	jwtMW   echo.MiddlewareFunc
	adminMW echo.MiddlewareFunc
}

func New(svc cdomain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithAuth injects the JWT middleware and the admin gate used for mutations.
func (h *Controller) WithAuth(jwtMW, adminMW echo.MiddlewareFunc) *Controller {
	h.jwtMW, h.adminMW = jwtMW, adminMW
	return h
}

func (h *Controller) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	var read, admin []echo.MiddlewareFunc
	if h.jwtMW != nil {
		read = append(read, h.jwtMW)
	}
	admin = append(admin, read...)
	if h.adminMW != nil {
		admin = append(admin, h.adminMW)
	}

	g.GET("/tiers", h.listTiers, read...)
	g.GET("/templates", h.listTemplates, read...)
	g.PATCH("/templates/:id/default", h.setDefaultTemplate, admin...)
	g.DELETE("/tiers/:id", h.deleteTier, admin...)
	g.DELETE("/templates/:id", h.deleteTemplate, admin...)
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cdomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, cdomain.ErrTierInUse), errors.Is(err, cdomain.ErrTemplateInUse), errors.Is(err, cdomain.ErrTemplateIsDefault):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	c.Logger().Errorf("catalog: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// List Tiers godoc
// @Summary      List recognition tiers
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  cdomain.Tier
// @Security     BearerAuth
// @Router       /api/v1/tiers [get]
func (h *Controller) listTiers(c echo.Context) error {
	tiers, err := h.svc.ListTiers(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tiers)
}

// List Templates godoc
// @Summary      List certificate templates
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  cdomain.Template
// @Security     BearerAuth
// @Router       /api/v1/templates [get]
func (h *Controller) listTemplates(c echo.Context) error {
	tpls, err := h.svc.ListTemplates(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tpls)
}

// Set Default Template godoc
// @Summary      Mark a template as the default
// @Description  Clears the default flag on every other template in the same transaction.
// @Tags         catalog
// @Produce      json
// @Param        id   path  int  true  "Template ID"
// @Success      200  {object}  cdomain.Template
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/templates/{id}/default [patch]
func (h *Controller) setDefaultTemplate(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	tpl, err := h.svc.SetDefaultTemplate(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

// Delete Tier godoc
// @Summary      Delete a tier
// @Tags         catalog
// @Param        id   path  int  true  "Tier ID"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/tiers/{id} [delete]
func (h *Controller) deleteTier(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.DeleteTier(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete Template godoc
// @Summary      Delete a template
// @Tags         catalog
// @Param        id   path  int  true  "Template ID"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/templates/{id} [delete]
func (h *Controller) deleteTemplate(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.DeleteTemplate(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

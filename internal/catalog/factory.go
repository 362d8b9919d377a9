package catalog

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/haythamforever/HonorHub/internal/auth/middleware"
	"github.com/haythamforever/HonorHub/internal/catalog/controller"
	"github.com/haythamforever/HonorHub/internal/catalog/repository"
	"github.com/haythamforever/HonorHub/internal/catalog/service"
	"github.com/haythamforever/HonorHub/internal/config"
)

// Register wires the catalog module and registers HTTP routes.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config) {
	r := repository.New(pg)
	s := service.New(r)
	controller.New(s).
		WithAuth(middleware.NewJWT(cfg.JWTSigningKey, r), middleware.RequireAdmin).
		Register(e)
}

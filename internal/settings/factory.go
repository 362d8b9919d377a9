package settings

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	crepo "github.com/haythamforever/HonorHub/internal/catalog/repository"
	"github.com/haythamforever/HonorHub/internal/config"
	evsvc "github.com/haythamforever/HonorHub/internal/events/service"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	ctrl "github.com/haythamforever/HonorHub/internal/settings/controller"
	repo "github.com/haythamforever/HonorHub/internal/settings/repository"
)

// Register wires the settings module and registers HTTP routes.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config, store rl.Store, log zerolog.Logger) {
	r := repo.New(pg)
	jwt := amw.NewJWT(cfg.JWTSigningKey, crepo.New(pg))
	ctrl.New(r).
		WithAuth(jwt, amw.RequireAdmin).
		WithRateLimit(store).
		WithPublisher(evsvc.NewLogger(log)).
		Register(e)
}

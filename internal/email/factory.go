package email

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	crepo "github.com/haythamforever/HonorHub/internal/catalog/repository"
	"github.com/haythamforever/HonorHub/internal/config"
	ctrl "github.com/haythamforever/HonorHub/internal/email/controller"
	svc "github.com/haythamforever/HonorHub/internal/email/service"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	srepo "github.com/haythamforever/HonorHub/internal/settings/repository"
	ssvc "github.com/haythamforever/HonorHub/internal/settings/service"
)

// NewDispatcher builds the settings-backed Dispatcher shared by the
// certificates module and the test-email endpoint.
func NewDispatcher(pg *pgxpool.Pool, cfg config.Config, log zerolog.Logger) *svc.Dispatcher {
	return svc.NewDispatcher(ssvc.New(srepo.New(pg)), cfg, log)
}

// Register wires the test-email endpoint.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config, d *svc.Dispatcher, store rl.Store) {
	jwt := amw.NewJWT(cfg.JWTSigningKey, crepo.New(pg))
	ctrl.New(d).WithAuth(jwt, amw.RequireAdmin).WithRateLimit(store).Register(e)
}

package certificates

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	crepo "github.com/haythamforever/HonorHub/internal/catalog/repository"
	ctrl "github.com/haythamforever/HonorHub/internal/certificates/controller"
	repo "github.com/haythamforever/HonorHub/internal/certificates/repository"
	svc "github.com/haythamforever/HonorHub/internal/certificates/service"
	"github.com/haythamforever/HonorHub/internal/config"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	evsvc "github.com/haythamforever/HonorHub/internal/events/service"
	"github.com/haythamforever/HonorHub/internal/logger"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	"github.com/haythamforever/HonorHub/internal/render"
	srepo "github.com/haythamforever/HonorHub/internal/settings/repository"
	ssvc "github.com/haythamforever/HonorHub/internal/settings/service"
)

// NewService builds the orchestrator over Postgres, the on-disk renderer and
// the given mailer. The CLI uses it directly; Register wraps it for HTTP.
func NewService(pg *pgxpool.Pool, cfg config.Config, mailer edomain.Mailer, log zerolog.Logger) *svc.Service {
	catalog := crepo.New(pg)
	renderer := render.New(cfg.CertificatesDir(), cfg.CertificatesPublicPrefix(), logger.Component(log, "render"))
	opts := svc.Options{
		EmailTimeout: cfg.EmailSendTimeout,
		RecentLimit:  cfg.StatsRecentLimit,
		ResolvePath:  cfg.ResolveUpload,
	}
	return svc.New(repo.New(pg), catalog, ssvc.New(srepo.New(pg)), renderer, mailer, opts, logger.Component(log, "certificates")).
		WithPublisher(evsvc.NewLogger(log))
}

// Register wires the certificates module and registers HTTP routes.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config, mailer edomain.Mailer, store rl.Store, log zerolog.Logger) {
	s := NewService(pg, cfg, mailer, log)
	ctrl.New(s).
		WithJWT(amw.NewJWT(cfg.JWTSigningKey, crepo.New(pg))).
		WithRateLimit(store).
		Register(e)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	evdomain "github.com/haythamforever/HonorHub/internal/events/domain"
	"github.com/haythamforever/HonorHub/internal/metrics"
	"github.com/haythamforever/HonorHub/internal/platform/validation"
	"github.com/haythamforever/HonorHub/internal/render"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Catalog is the subset of catalog lookups the orchestrator needs.
type Catalog interface {
	GetEmployee(ctx context.Context, id int64) (cdomain.Employee, error)
	GetTier(ctx context.Context, id int64) (cdomain.Tier, error)
	GetTemplate(ctx context.Context, id int64) (cdomain.Template, error)
	CountEmployees(ctx context.Context) (int, error)
}

// Branding loads company name, logo and global signature.
type Branding interface {
	LoadBranding(ctx context.Context) (sdomain.Branding, error)
}

// Renderer produces the PDF and returns its public path.
type Renderer interface {
	Render(ctx context.Context, in render.Input) (string, error)
}

// Options are the tunables taken from config.
type Options struct {
	// EmailTimeout bounds each dispatch. Zero disables the bound.
	EmailTimeout time.Duration
	RecentLimit  int
	// ResolvePath maps a public upload path to its location on disk.
	ResolvePath func(string) string
}

// Service coordinates rendering, persistence and delivery.
type Service struct {
	repo     domain.Repository
	catalog  Catalog
	branding Branding
	renderer Renderer
	mailer   edomain.Mailer
	pub      evdomain.Publisher
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

var _ domain.Service = (*Service)(nil)

func New(repo domain.Repository, catalog Catalog, branding Branding, renderer Renderer, mailer edomain.Mailer, opts Options, log zerolog.Logger) *Service {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	if opts.ResolvePath == nil {
		opts.ResolvePath = func(p string) string { return p }
	}
	return &Service{
		repo: repo, catalog: catalog, branding: branding, renderer: renderer, mailer: mailer,
		opts: opts, log: log, now: time.Now,
	}
}

// WithPublisher injects an audit event publisher.
func (s *Service) WithPublisher(p evdomain.Publisher) *Service { s.pub = p; return s }

func (s *Service) publish(ctx context.Context, typ string, actor int64, meta map[string]string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, evdomain.Event{Type: typ, ActorID: actor, Meta: meta, Time: s.now()}); err != nil {
		s.log.Warn().Err(err).Str("event", typ).Msg("publish failed")
	}
}

// refs holds the resolved references for one spec.
type refs struct {
	employee cdomain.Employee
	tier     cdomain.Tier
	template cdomain.Template
}

// resolve checks each reference in turn; the first missing one is reported.
func (s *Service) resolve(ctx context.Context, spec domain.IssueSpec) (refs, error) {
	var (
		r   refs
		err error
	)
	if r.employee, err = s.catalog.GetEmployee(ctx, spec.EmployeeID); err != nil {
		if errors.Is(err, cdomain.ErrNotFound) {
			return r, domain.MissingEmployee(spec.EmployeeID)
		}
		return r, fmt.Errorf("lookup employee: %w", err)
	}
	if r.tier, err = s.catalog.GetTier(ctx, spec.TierID); err != nil {
		if errors.Is(err, cdomain.ErrNotFound) {
			return r, domain.MissingTier(spec.TierID)
		}
		return r, fmt.Errorf("lookup tier: %w", err)
	}
	if r.template, err = s.catalog.GetTemplate(ctx, spec.TemplateID); err != nil {
		if errors.Is(err, cdomain.ErrNotFound) {
			return r, domain.MissingTemplate(spec.TemplateID)
		}
		return r, fmt.Errorf("lookup template: %w", err)
	}
	return r, nil
}

// issue runs validate, render, persist and optional dispatch for one spec.
// stage names the step that failed when err is non-nil.
func (s *Service) issue(ctx context.Context, spec domain.IssueSpec, sender cdomain.Sender, sendEmail bool) (domain.Created, string, error) {
	if err := validation.Struct(spec); err != nil {
		return domain.Created{}, domain.StageValidation, fmt.Errorf("%w: %s", domain.ErrInvalidSpec, validation.Describe(err))
	}
	r, err := s.resolve(ctx, spec)
	if err != nil {
		return domain.Created{}, domain.StageValidation, err
	}

	certID := uuid.New()
	brand, err := s.branding.LoadBranding(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("branding settings unavailable, using defaults")
	}

	pdfPath, err := s.renderer.Render(ctx, render.Input{
		CertificateID:          certID,
		Employee:               r.employee,
		Tier:                   r.tier,
		Template:               r.template,
		Sender:                 sender,
		CustomMessage:          spec.CustomMessage,
		AchievementDescription: spec.AchievementDescription,
		Period:                 spec.Period,
		LogoPath:               s.opts.ResolvePath(brand.LogoPath),
		Override:               render.Signature{Name: spec.SignatureName, Title: spec.SignatureTitle},
		Global:                 render.Signature{Name: brand.SignatureName, Title: brand.SignatureTitle},
	})
	if err != nil {
		return domain.Created{}, domain.StageRender, fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
	}

	cert, err := s.repo.Create(ctx, domain.NewCertificate{
		CertificateID:          certID,
		EmployeeID:             r.employee.ID,
		TierID:                 r.tier.ID,
		TemplateID:             r.template.ID,
		SenderID:               sender.ID,
		CustomMessage:          spec.CustomMessage,
		AchievementDescription: spec.AchievementDescription,
		Period:                 spec.Period,
		PDFPath:                pdfPath,
	})
	if err != nil {
		s.removePDF(pdfPath)
		return domain.Created{}, domain.StagePersist, fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}

	out := domain.Created{Detail: domain.Detail{
		Certificate:   cert,
		EmployeeName:  r.employee.Name,
		EmployeeEmail: r.employee.Email,
		TierName:      r.tier.Name,
		TierColor:     r.tier.Color,
		TemplateName:  r.template.Name,
		SenderName:    sender.Name,
	}}
	s.publish(ctx, evdomain.TypeCertificateIssued, sender.ID, map[string]string{
		"certificate_id": certID.String(),
		"employee_id":    fmt.Sprint(r.employee.ID),
	})

	if sendEmail {
		// Delivery failures never undo the stored certificate.
		if err := s.dispatch(ctx, &out.Detail, sender.ID); err != nil {
			out.EmailError = err.Error()
		}
	}
	return out, "", nil
}

// dispatch sends the certificate email under the per-item timeout and marks
// the row sent on success.
func (s *Service) dispatch(ctx context.Context, d *domain.Detail, actor int64) error {
	if s.opts.EmailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EmailTimeout)
		defer cancel()
	}
	err := s.mailer.SendCertificate(ctx, edomain.CertificateEmail{
		EmployeeName:  d.EmployeeName,
		EmployeeEmail: d.EmployeeEmail,
		TierName:      d.TierName,
		SenderName:    d.SenderName,
		CustomMessage: d.CustomMessage,
		PDFPath:       s.opts.ResolvePath(d.PDFPath),
	})
	meta := map[string]string{
		"certificate_id": d.CertificateID.String(),
		"employee_id":    fmt.Sprint(d.EmployeeID),
	}
	if err != nil {
		s.log.Error().Err(err).
			Str("certificate_id", d.CertificateID.String()).
			Int64("employee_id", d.EmployeeID).
			Msg("certificate email failed")
		meta["error"] = err.Error()
		s.publish(ctx, evdomain.TypeCertificateEmailFailed, actor, meta)
		return err
	}
	at := s.now().UTC()
	if err := s.repo.MarkSent(context.WithoutCancel(ctx), d.ID, at); err != nil {
		s.log.Error().Err(err).Int64("id", d.ID).Msg("email sent but status update failed")
		return fmt.Errorf("record delivery: %w", err)
	}
	d.EmailSent, d.SentAt = true, &at
	s.publish(ctx, evdomain.TypeCertificateEmailSent, actor, meta)
	return nil
}

// removePDF discards a PDF whose row could not be stored.
func (s *Service) removePDF(publicPath string) {
	p := s.opts.ResolvePath(publicPath)
	if p == "" {
		return
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", p).Msg("remove certificate pdf")
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidSpec):
		return "invalid_spec"
	case errors.Is(err, domain.ErrReferenceNotFound):
		return "invalid_reference"
	case errors.Is(err, domain.ErrRenderFailed):
		return "render_failed"
	case errors.Is(err, domain.ErrPersistFailed):
		return "persist_failed"
	}
	return "error"
}

// Create issues a single certificate.
func (s *Service) Create(ctx context.Context, in domain.CreateInput) (domain.Created, error) {
	out, _, err := s.issue(ctx, in.IssueSpec, in.Sender, in.SendEmail)
	metrics.IncCertificateIssued("single", resultLabel(err))
	return out, err
}

// CreateBulk processes specs strictly in order. A failing item is recorded
// and the batch continues.
func (s *Service) CreateBulk(ctx context.Context, in domain.BulkInput) domain.BulkResult {
	metrics.ObserveBulkBatch(len(in.Specs))
	outcomes := make([]itemOutcome, 0, len(in.Specs))
	for i, spec := range in.Specs {
		created, stage, err := s.issue(ctx, spec, in.Sender, in.SendEmail)
		metrics.IncCertificateIssued("bulk", resultLabel(err))
		if err != nil {
			s.log.Warn().Err(err).Int("index", i).Str("stage", stage).
				Int64("employee_id", spec.EmployeeID).Msg("bulk item failed")
		}
		outcomes = append(outcomes, itemOutcome{index: i, spec: spec, created: created, stage: stage, err: err})
	}
	return foldBulk(outcomes)
}

// Resend re-sends the stored PDF. Unlike creation, failure is reported.
func (s *Service) Resend(ctx context.Context, id int64) (domain.Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return d, err
	}
	if err := s.dispatch(ctx, &d, d.SenderID); err != nil {
		return d, fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}
	return d, nil
}

// Delete removes a certificate row. Only an admin or the original sender may
// do so. The rendered PDF stays on disk.
func (s *Service) Delete(ctx context.Context, id int64, actor cdomain.Sender) error {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != d.SenderID {
		return domain.ErrNotAuthorized
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, evdomain.TypeCertificateDeleted, actor.ID, map[string]string{"certificate_id": d.CertificateID.String()})
	return nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	var (
		st  domain.Stats
		err error
	)
	if st.TotalCertificates, err = s.repo.Count(ctx); err != nil {
		return st, err
	}
	if st.TotalEmployees, err = s.catalog.CountEmployees(ctx); err != nil {
		return st, err
	}
	if st.ByTier, err = s.repo.CountByTier(ctx); err != nil {
		return st, err
	}
	if st.Recent, err = s.repo.Recent(ctx, s.opts.RecentLimit); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.Detail, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Detail, error) {
	return s.repo.GetDetail(ctx, id)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/haythamforever/HonorHub/internal/config"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	"github.com/haythamforever/HonorHub/internal/metrics"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Ensure Dispatcher implements domain.Mailer
var _ edomain.Mailer = (*Dispatcher)(nil)

// SettingsLoader reads the email settings snapshot for one send.
type SettingsLoader interface {
	LoadEmail(ctx context.Context, cfg config.Config) (sdomain.EmailSettings, error)
}

// Dispatcher resolves the configured provider on every send. Provider clients
// are not cached so settings changes apply to the next message.
type Dispatcher struct {
	cfg      config.Config
	settings SettingsLoader
	http     *http.Client
	log      zerolog.Logger
	// newProvider is swapped in tests to avoid the network.
	newProvider func(es sdomain.EmailSettings) (edomain.Provider, error)
}

func NewDispatcher(settings SettingsLoader, cfg config.Config, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{cfg: cfg, settings: settings, http: &http.Client{}, log: log}
	d.newProvider = d.buildProvider
	return d
}

// WithHTTPClient overrides the client used by HTTP API providers.
func (d *Dispatcher) WithHTTPClient(hc *http.Client) *Dispatcher { d.http = hc; return d }

// buildProvider selects the provider by name. Unknown or empty names fall back to SMTP.
func (d *Dispatcher) buildProvider(es sdomain.EmailSettings) (edomain.Provider, error) {
	switch sdomain.NormalizeProvider(es.Provider) {
	case sdomain.ProviderResend:
		return NewResend(es.Resend, d.cfg.ResendAPIBase, d.http)
	case sdomain.ProviderMailgun:
		return NewMailgun(es.Mailgun, d.cfg.MailgunAPIBase, d.http)
	default:
		return NewSMTP(es.SMTP)
	}
}

func (d *Dispatcher) SendCertificate(ctx context.Context, ce edomain.CertificateEmail) error {
	es, err := d.settings.LoadEmail(ctx, d.cfg)
	if err != nil {
		return fmt.Errorf("load email settings: %w", err)
	}
	vars := Vars{
		Tier:          ce.TierName,
		EmployeeName:  ce.EmployeeName,
		CustomMessage: ce.CustomMessage,
		SenderName:    ce.SenderName,
		CompanyName:   es.CompanyName,
	}
	// Unescape the stored template before substituting so user text is taken literally.
	text := Substitute(Unescape(es.BodyTemplate), vars)
	msg := edomain.Message{
		To:      ce.EmployeeEmail,
		Subject: Substitute(es.SubjectTemplate, vars),
		Text:    text,
		HTML:    HTMLBody(text),
	}
	att, ok, err := readAttachment(ce.PDFPath, AttachmentName(ce.EmployeeName))
	if err != nil {
		return err
	}
	if ok {
		msg.Attachments = append(msg.Attachments, att)
	}
	return d.send(ctx, es, msg)
}

// SendTest sends a short connectivity check through the configured provider.
func (d *Dispatcher) SendTest(ctx context.Context, to string) error {
	es, err := d.settings.LoadEmail(ctx, d.cfg)
	if err != nil {
		return fmt.Errorf("load email settings: %w", err)
	}
	text := fmt.Sprintf("This is a test email from %s.\n\nIf you received this, your email settings are working.", es.CompanyName)
	return d.send(ctx, es, edomain.Message{
		To:      to,
		Subject: es.CompanyName + " - Test Email",
		Text:    text,
		HTML:    HTMLBody(text),
	})
}

func (d *Dispatcher) send(ctx context.Context, es sdomain.EmailSettings, msg edomain.Message) error {
	p, err := d.newProvider(es)
	if err != nil {
		metrics.IncEmailSend(sdomain.NormalizeProvider(es.Provider), "not_configured")
		return err
	}
	msg.From = FromAddress(es)
	if msg.From.Email == "" {
		metrics.IncEmailSend(p.Name(), "not_configured")
		return edomain.NotConfigured(p.Name(), "from address")
	}
	if err := p.Send(ctx, msg); err != nil {
		result := "failure"
		if errors.Is(err, edomain.ErrRateLimited) {
			result = "rate_limited"
		}
		metrics.IncEmailSend(p.Name(), result)
		d.log.Warn().Err(err).Str("provider", p.Name()).Str("to", msg.To).Msg("email send failed")
		return err
	}
	metrics.IncEmailSend(p.Name(), "success")
	d.log.Info().Str("provider", p.Name()).Str("to", msg.To).Int("attachments", len(msg.Attachments)).Msg("email sent")
	return nil
}

// readAttachment reads path once. A missing file is not an error; the email
// goes out without the attachment.
func readAttachment(path, filename string) (edomain.Attachment, bool, error) {
	if path == "" {
		return edomain.Attachment{}, false, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return edomain.Attachment{}, false, nil
	}
	if err != nil {
		return edomain.Attachment{}, false, fmt.Errorf("read attachment: %w", err)
	}
	return edomain.Attachment{Filename: filename, ContentType: "application/pdf", Content: b}, true, nil
}

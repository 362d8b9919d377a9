package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Ensure SMTP implements domain.Provider
var _ edomain.Provider = (*SMTP)(nil)

type SMTP struct {
	s sdomain.SMTPSettings
}

// NewSMTP fails fast when host or credentials are missing.
func NewSMTP(s sdomain.SMTPSettings) (*SMTP, error) {
	var missing []string
	if s.Host == "" {
		missing = append(missing, sdomain.KeySMTPHost)
	}
	if s.User == "" {
		missing = append(missing, sdomain.KeySMTPUser)
	}
	if s.Pass == "" {
		missing = append(missing, sdomain.KeySMTPPass)
	}
	if len(missing) > 0 {
		return nil, edomain.NotConfigured(sdomain.ProviderSMTP, missing...)
	}
	if s.Port == 0 {
		s.Port = 587
	}
	return &SMTP{s: s}, nil
}

func (p *SMTP) Name() string { return sdomain.ProviderSMTP }

// buildMsg converts the neutral Message into a MIME message with a text part,
// an HTML alternative and the attachments.
func buildMsg(msg edomain.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(msg.From.Name, msg.From.Email); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	for _, a := range msg.Attachments {
		ct := mail.ContentType(a.ContentType)
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Content), mail.WithFileContentType(ct)); err != nil {
			return nil, fmt.Errorf("smtp attach %s: %w", a.Filename, err)
		}
	}
	return m, nil
}

func (p *SMTP) Send(ctx context.Context, msg edomain.Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	opts := []mail.Option{
		mail.WithPort(p.s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(p.s.User),
		mail.WithPassword(p.s.Pass),
	}
	if p.s.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	c, err := mail.NewClient(p.s.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

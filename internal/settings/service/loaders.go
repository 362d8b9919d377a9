package service

import (
	"context"

	"github.com/haythamforever/HonorHub/internal/config"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// LoadBranding reads the settings used to render certificates. A missing
// company name falls back to DefaultCompanyName.
func (s *Service) LoadBranding(ctx context.Context) (sdomain.Branding, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return sdomain.Branding{CompanyName: sdomain.DefaultCompanyName}, err
	}
	r := reader(all)
	return sdomain.Branding{
		CompanyName:    r.str(sdomain.KeyCompanyName, sdomain.DefaultCompanyName),
		LogoPath:       r.str(sdomain.KeyCompanyLogo, ""),
		SignatureName:  r.str(sdomain.KeyGlobalSignatureName, ""),
		SignatureTitle: r.str(sdomain.KeyGlobalSignatureTitle, ""),
	}, nil
}

// LoadEmail reads everything one dispatch needs in a single query. Stored
// values win over the environment defaults in cfg.
func (s *Service) LoadEmail(ctx context.Context, cfg config.Config) (sdomain.EmailSettings, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return sdomain.EmailSettings{}, err
	}
	r := reader(all)
	return sdomain.EmailSettings{
		Provider:        sdomain.NormalizeProvider(r.str(sdomain.KeyEmailProvider, cfg.EmailProvider)),
		CompanyName:     r.str(sdomain.KeyCompanyName, sdomain.DefaultCompanyName),
		SubjectTemplate: r.str(sdomain.KeyEmailSubjectTemplate, sdomain.DefaultSubjectTemplate),
		BodyTemplate:    r.str(sdomain.KeyEmailBodyTemplate, sdomain.DefaultBodyTemplate),
		SMTP: sdomain.SMTPSettings{
			Host:      r.str(sdomain.KeySMTPHost, cfg.SMTPHost),
			Port:      r.int(sdomain.KeySMTPPort, cfg.SMTPPort),
			User:      r.str(sdomain.KeySMTPUser, cfg.SMTPUsername),
			Pass:      r.str(sdomain.KeySMTPPass, cfg.SMTPPassword),
			Secure:    r.bool(sdomain.KeySMTPSecure, false),
			FromName:  r.str(sdomain.KeySMTPFromName, ""),
			FromEmail: r.str(sdomain.KeySMTPFromEmail, cfg.SMTPFrom),
		},
		Resend: sdomain.ResendSettings{
			APIKey:    r.str(sdomain.KeyResendAPIKey, ""),
			FromName:  r.str(sdomain.KeyResendFromName, ""),
			FromEmail: r.str(sdomain.KeyResendFromEmail, ""),
		},
		Mailgun: sdomain.MailgunSettings{
			APIKey:    r.str(sdomain.KeyMailgunAPIKey, ""),
			Domain:    r.str(sdomain.KeyMailgunDomain, ""),
			Region:    r.str(sdomain.KeyMailgunRegion, "us"),
			FromName:  r.str(sdomain.KeyMailgunFromName, ""),
			FromEmail: r.str(sdomain.KeyMailgunFromEmail, ""),
		},
	}, nil
}

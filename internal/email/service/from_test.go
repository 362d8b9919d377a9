package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

func TestFromAddress(t *testing.T) {
	smtpOnly := sdomain.SMTPSettings{User: "auth@acme.test"}

	tests := []struct {
		name string
		es   sdomain.EmailSettings
		want edomain.Address
	}{
		{
			name: "smtp falls back to company and authenticated user",
			es:   sdomain.EmailSettings{Provider: "smtp", CompanyName: "Acme", SMTP: smtpOnly},
			want: edomain.Address{Name: "Acme", Email: "auth@acme.test"},
		},
		{
			name: "smtp explicit from",
			es: sdomain.EmailSettings{Provider: "smtp", CompanyName: "Acme",
				SMTP: sdomain.SMTPSettings{User: "auth@acme.test", FromName: "Awards", FromEmail: "awards@acme.test"}},
			want: edomain.Address{Name: "Awards", Email: "awards@acme.test"},
		},
		{
			name: "resend prefers its own keys",
			es: sdomain.EmailSettings{Provider: "resend", CompanyName: "Acme", SMTP: smtpOnly,
				Resend: sdomain.ResendSettings{FromName: "R", FromEmail: "r@acme.test"}},
			want: edomain.Address{Name: "R", Email: "r@acme.test"},
		},
		{
			name: "resend falls back to smtp user",
			es:   sdomain.EmailSettings{Provider: "resend", SMTP: smtpOnly},
			want: edomain.Address{Name: sdomain.DefaultCompanyName, Email: "auth@acme.test"},
		},
		{
			name: "provider name is case insensitive",
			es: sdomain.EmailSettings{Provider: " Resend ", CompanyName: "Acme", SMTP: smtpOnly,
				Resend: sdomain.ResendSettings{FromEmail: "r@acme.test"}},
			want: edomain.Address{Name: "Acme", Email: "r@acme.test"},
		},
		{
			name: "mailgun falls back to noreply on its domain",
			es: sdomain.EmailSettings{Provider: "mailgun", CompanyName: "Acme",
				Mailgun: sdomain.MailgunSettings{Domain: "mg.acme.test"}},
			want: edomain.Address{Name: "Acme", Email: "noreply@mg.acme.test"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromAddress(tc.es))
		})
	}
}

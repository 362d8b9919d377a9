package service

import (
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// FromAddress derives the sender identity for the selected provider. Each
// provider prefers its own keys, then the SMTP keys, and finally the
// authenticated SMTP user.
func FromAddress(es sdomain.EmailSettings) edomain.Address {
	company := first(es.CompanyName, sdomain.DefaultCompanyName)
	switch sdomain.NormalizeProvider(es.Provider) {
	case sdomain.ProviderResend:
		return edomain.Address{
			Name:  first(es.Resend.FromName, es.SMTP.FromName, company),
			Email: first(es.Resend.FromEmail, es.SMTP.FromEmail, es.SMTP.User),
		}
	case sdomain.ProviderMailgun:
		noreply := ""
		if es.Mailgun.Domain != "" {
			noreply = "noreply@" + es.Mailgun.Domain
		}
		return edomain.Address{
			Name:  first(es.Mailgun.FromName, es.SMTP.FromName, company),
			Email: first(es.Mailgun.FromEmail, es.SMTP.FromEmail, es.SMTP.User, noreply),
		}
	default:
		return edomain.Address{
			Name:  first(es.SMTP.FromName, company),
			Email: first(es.SMTP.FromEmail, es.SMTP.User),
		}
	}
}

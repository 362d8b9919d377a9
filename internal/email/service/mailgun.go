package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Ensure Mailgun implements domain.Provider
var _ edomain.Provider = (*Mailgun)(nil)

const (
	mailgunBaseUS = "https://api.mailgun.net"
	mailgunBaseEU = "https://api.eu.mailgun.net"
)

type Mailgun struct {
	apiKey string
	domain string
	client *resty.Client
}

// NewMailgun picks the regional endpoint unless base overrides it.
func NewMailgun(s sdomain.MailgunSettings, base string, hc *http.Client) (*Mailgun, error) {
	var missing []string
	if s.APIKey == "" {
		missing = append(missing, sdomain.KeyMailgunAPIKey)
	}
	if s.Domain == "" {
		missing = append(missing, sdomain.KeyMailgunDomain)
	}
	if len(missing) > 0 {
		return nil, edomain.NotConfigured(sdomain.ProviderMailgun, missing...)
	}
	if base == "" {
		base = mailgunBaseUS
		if strings.EqualFold(s.Region, "eu") {
			base = mailgunBaseEU
		}
	}
	return &Mailgun{apiKey: s.APIKey, domain: s.Domain, client: resty.NewWithClient(hc).SetBaseURL(base)}, nil
}

func (p *Mailgun) Name() string { return sdomain.ProviderMailgun }

type mailgunError struct {
	Message string `json:"message"`
}

func (p *Mailgun) Send(ctx context.Context, msg edomain.Message) error {
	form := map[string]string{
		"from":    formatAddress(msg.From),
		"to":      msg.To,
		"subject": msg.Subject,
		"text":    msg.Text,
	}
	if msg.HTML != "" {
		form["html"] = msg.HTML
	}
	var apiErr mailgunError
	req := p.client.R().
		SetContext(ctx).
		SetBasicAuth("api", p.apiKey).
		SetFormData(form).
		SetError(&apiErr)
	for _, a := range msg.Attachments {
		req.SetFileReader("attachment", a.Filename, bytes.NewReader(a.Content))
	}
	resp, err := req.Post(fmt.Sprintf("/v3/%s/messages", p.domain))
	if err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}
	return providerError("mailgun", resp, apiErr.Message)
}

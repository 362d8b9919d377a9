package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/go-resty/resty/v2"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

// Ensure Resend implements domain.Provider
var _ edomain.Provider = (*Resend)(nil)

const defaultResendBase = "https://api.resend.com"

type Resend struct {
	apiKey string
	client *resty.Client
}

// NewResend builds a client over hc. An empty base uses the public API.
func NewResend(s sdomain.ResendSettings, base string, hc *http.Client) (*Resend, error) {
	if s.APIKey == "" {
		return nil, edomain.NotConfigured(sdomain.ProviderResend, sdomain.KeyResendAPIKey)
	}
	if base == "" {
		base = defaultResendBase
	}
	return &Resend{apiKey: s.APIKey, client: resty.NewWithClient(hc).SetBaseURL(base)}, nil
}

func (p *Resend) Name() string { return sdomain.ProviderResend }

type resendAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type resendEmail struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	Text        string             `json:"text"`
	HTML        string             `json:"html,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (p *Resend) Send(ctx context.Context, msg edomain.Message) error {
	payload := resendEmail{
		From:    formatAddress(msg.From),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}
	var apiErr resendError
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetBody(payload).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return providerError("resend", resp, apiErr.Message)
}

// providerError maps a non-2xx response to an error carrying the provider's message.
func providerError(provider string, resp *resty.Response, message string) error {
	if !resp.IsError() {
		return nil
	}
	if message == "" {
		message = resp.Status()
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %s", provider, edomain.ErrRateLimited, message)
	}
	return fmt.Errorf("%s send failed (%d): %s", provider, resp.StatusCode(), message)
}

// formatAddress renders an RFC 5322 mailbox, quoting display names that
// contain specials such as commas.
func formatAddress(a edomain.Address) string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

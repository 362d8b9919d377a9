package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the selected provider lacks required credentials.
	ErrNotConfigured = errors.New("email provider not configured")
	// ErrRateLimited is returned when a provider answers with HTTP 429.
	ErrRateLimited = errors.New("email provider rate limited")
)

// NotConfigured wraps ErrNotConfigured with the provider and the missing settings.
func NotConfigured(provider string, missing ...string) error {
	return fmt.Errorf("%w: %s requires %v", ErrNotConfigured, provider, missing)
}

type Address struct {
	Name  string
	Email string
}

// Attachment content is read once per send; each Provider encodes it the way
// its transport expects.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is the provider-neutral shape every dispatch is normalized to.
type Message struct {
	From        Address
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Provider delivers one Message.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// CertificateEmail carries the values substituted into the subject and body templates.
type CertificateEmail struct {
	EmployeeName  string
	EmployeeEmail string
	TierName      string
	SenderName    string
	CustomMessage string
	PDFPath       string
}

// Mailer is the surface the certificate pipeline depends on.
type Mailer interface {
	SendCertificate(ctx context.Context, ce CertificateEmail) error
	SendTest(ctx context.Context, to string) error
}

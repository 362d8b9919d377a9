package domain

import (
	"context"
	"strings"
	"time"
)

// Service provides typed access to application settings.
type Service interface {
	GetString(ctx context.Context, key string, def string) (string, error)
	GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error)
	GetInt(ctx context.Context, key string, def int) (int, error)
}

// Repository abstracts storage of app settings.
type Repository interface {
	// Get returns (value, found, err) for an exact key.
	Get(ctx context.Context, key string) (string, bool, error)
	// All returns every stored key/value pair.
	All(ctx context.Context) (map[string]string, error)
	// Upsert stores a key; last write wins.
	Upsert(ctx context.Context, key, value string) error
}

// Keys stored in the app_settings table. The names are shared with the admin
// UI and must stay stable.
const (
	KeyCompanyName          = "company_name"
	KeyCompanyLogo          = "company_logo"
	KeyGlobalSignatureName  = "global_signature_name"
	KeyGlobalSignatureTitle = "global_signature_title"

	KeyEmailProvider        = "email_provider" // smtp | resend | mailgun
	KeyEmailSubjectTemplate = "email_subject_template"
	KeyEmailBodyTemplate    = "email_body_template"

	KeySMTPHost      = "smtp_host"
	KeySMTPPort      = "smtp_port"
	KeySMTPUser      = "smtp_user"
	KeySMTPPass      = "smtp_pass"
	KeySMTPSecure    = "smtp_secure"
	KeySMTPFromName  = "smtp_from_name"
	KeySMTPFromEmail = "smtp_from_email"

	KeyResendAPIKey    = "resend_api_key"
	KeyResendFromName  = "resend_from_name"
	KeyResendFromEmail = "resend_from_email"

	KeyMailgunAPIKey    = "mailgun_api_key"
	KeyMailgunDomain    = "mailgun_domain"
	KeyMailgunRegion    = "mailgun_region" // us | eu
	KeyMailgunFromName  = "mailgun_from_name"
	KeyMailgunFromEmail = "mailgun_from_email"
)

// Secret reports whether a key holds a credential that must be masked on read.
func Secret(key string) bool {
	switch key {
	case KeySMTPPass, KeyResendAPIKey, KeyMailgunAPIKey:
		return true
	}
	return false
}

// Known reports whether key is one of the settings the application understands.
func Known(key string) bool {
	switch key {
	case KeyCompanyName, KeyCompanyLogo, KeyGlobalSignatureName, KeyGlobalSignatureTitle,
		KeyEmailProvider, KeyEmailSubjectTemplate, KeyEmailBodyTemplate,
		KeySMTPHost, KeySMTPPort, KeySMTPUser, KeySMTPPass, KeySMTPSecure, KeySMTPFromName, KeySMTPFromEmail,
		KeyResendAPIKey, KeyResendFromName, KeyResendFromEmail,
		KeyMailgunAPIKey, KeyMailgunDomain, KeyMailgunRegion, KeyMailgunFromName, KeyMailgunFromEmail:
		return true
	}
	return false
}

// Provider names accepted by KeyEmailProvider.
const (
	ProviderSMTP    = "smtp"
	ProviderResend  = "resend"
	ProviderMailgun = "mailgun"
)

// NormalizeProvider folds case and whitespace. Unknown or empty names select SMTP.
func NormalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case ProviderResend, ProviderMailgun:
		return p
	}
	return ProviderSMTP
}

// Default templates. Body templates are stored with escaped newlines ("\n" as
// two characters), matching what the admin UI writes.
const (
	DefaultSubjectTemplate = "Congratulations {employee_name}! You have been recognized as {tier}"
	DefaultBodyTemplate    = `Dear {employee_name},\n\nCongratulations! You have been recognized as {tier}.\n\n{custom_message}\n\nPlease find your certificate attached.\n\nBest regards,\n{sender_name}\n{company_name}`
	DefaultCompanyName     = "HonorHub"
)

// Branding is the typed view of the settings used to render certificates.
type Branding struct {
	CompanyName    string
	LogoPath       string
	SignatureName  string
	SignatureTitle string
}

// SMTPSettings holds SMTP credentials.
type SMTPSettings struct {
	Host      string
	Port      int
	User      string
	Pass      string
	Secure    bool
	FromName  string
	FromEmail string
}

// ResendSettings holds Resend credentials.
type ResendSettings struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// MailgunSettings holds Mailgun credentials.
type MailgunSettings struct {
	APIKey    string
	Domain    string
	Region    string
	FromName  string
	FromEmail string
}

// EmailSettings is the typed view of everything a single dispatch needs.
type EmailSettings struct {
	Provider        string
	CompanyName     string
	SubjectTemplate string
	BodyTemplate    string
	SMTP            SMTPSettings
	Resend          ResendSettings
	Mailgun         MailgunSettings
}

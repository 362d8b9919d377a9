package domain

import (
	"context"
	"time"
)

// Event represents an audit event.
// Type examples: "certificate.issued", "certificate.email.failed"
// Meta may contain certificate_id, employee_id, provider, error, etc.
type Event struct {
	Type    string
	ActorID int64
	Meta    map[string]string
	Time    time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Audit event types.
const (
	TypeCertificateIssued      = "certificate.issued"
	TypeCertificateEmailSent   = "certificate.email.sent"
	TypeCertificateEmailFailed = "certificate.email.failed"
	TypeCertificateDeleted     = "certificate.deleted"
	TypeSettingsUpdated        = "settings.update.success"
)

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

// Certificate is one issuance. CertificateID is the public UUID embedded in
// the PDF and its filename; ID is the database key.
type Certificate struct {
	ID                     int64      `json:"id"`
	CertificateID          uuid.UUID  `json:"certificate_id"`
	EmployeeID             int64      `json:"employee_id"`
	TierID                 int64      `json:"tier_id"`
	TemplateID             int64      `json:"template_id"`
	SenderID               int64      `json:"sender_id"`
	CustomMessage          string     `json:"custom_message,omitempty"`
	AchievementDescription string     `json:"achievement_description,omitempty"`
	Period                 string     `json:"period,omitempty"`
	PDFPath                string     `json:"pdf_path"`
	EmailSent              bool       `json:"email_sent"`
	SentAt                 *time.Time `json:"sent_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

// Detail is a Certificate with the display fields of its references joined in.
type Detail struct {
	Certificate
	EmployeeName  string `json:"employee_name"`
	EmployeeEmail string `json:"employee_email"`
	TierName      string `json:"tier_name"`
	TierColor     string `json:"tier_color,omitempty"`
	TemplateName  string `json:"template_name"`
	SenderName    string `json:"sender_name"`
}

// IssueSpec is one certificate to issue.
type IssueSpec struct {
	EmployeeID             int64  `json:"employee_id" validate:"required,gt=0"`
	TierID                 int64  `json:"tier_id" validate:"required,gt=0"`
	TemplateID             int64  `json:"template_id" validate:"required,gt=0"`
	CustomMessage          string `json:"custom_message,omitempty" validate:"max=1000"`
	AchievementDescription string `json:"achievement_description,omitempty" validate:"max=1000"`
	Period                 string `json:"period,omitempty" validate:"max=100"`
	SignatureName          string `json:"signature_name,omitempty" validate:"max=200"`
	SignatureTitle         string `json:"signature_title,omitempty" validate:"max=200"`
}

type CreateInput struct {
	IssueSpec
	SendEmail bool
	Sender    cdomain.Sender
}

// Created is the outcome of a single issue. EmailError is set when the
// certificate was stored but delivery failed.
type Created struct {
	Detail
	EmailError string `json:"email_error,omitempty"`
}

type BulkInput struct {
	Specs     []IssueSpec
	SendEmail bool
	Sender    cdomain.Sender
}

// Stage names where a bulk item failed.
const (
	StageValidation = "validation"
	StageRender     = "render"
	StagePersist    = "persist"
)

type BulkItemError struct {
	Index int       `json:"index"`
	Spec  IssueSpec `json:"spec"`
	Stage string    `json:"stage"`
	Error string    `json:"error"`
}

type BulkCreated struct {
	ID            int64     `json:"id"`
	CertificateID uuid.UUID `json:"certificate_id"`
	EmployeeName  string    `json:"employee_name"`
	EmailSent     bool      `json:"email_sent"`
}

// BulkResult aggregates a batch. Success+Failed always equals the number of specs.
type BulkResult struct {
	Success      int             `json:"success"`
	Failed       int             `json:"failed"`
	Certificates []BulkCreated   `json:"certificates"`
	Errors       []BulkItemError `json:"errors"`
}

type TierCount struct {
	TierID   int64  `json:"tier_id"`
	TierName string `json:"tier_name"`
	Color    string `json:"color,omitempty"`
	Count    int    `json:"count"`
}

type Stats struct {
	TotalCertificates int         `json:"total_certificates"`
	TotalEmployees    int         `json:"total_employees"`
	ByTier            []TierCount `json:"by_tier"`
	Recent            []Detail    `json:"recent"`
}

type ListFilter struct {
	EmployeeID int64
	TierID     int64
	SenderID   int64
	Limit      int
	Offset     int
}

// NewCertificate is the row written after a successful render.
type NewCertificate struct {
	CertificateID          uuid.UUID
	EmployeeID             int64
	TierID                 int64
	TemplateID             int64
	SenderID               int64
	CustomMessage          string
	AchievementDescription string
	Period                 string
	PDFPath                string
}

type Repository interface {
	Create(ctx context.Context, c NewCertificate) (Certificate, error)
	GetDetail(ctx context.Context, id int64) (Detail, error)
	// MarkSent sets email_sent and sent_at; it is the only mutation after insert.
	MarkSent(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	// CountByTier includes tiers with zero certificates, ordered by tier rank.
	CountByTier(ctx context.Context) ([]TierCount, error)
	Recent(ctx context.Context, limit int) ([]Detail, error)
	List(ctx context.Context, f ListFilter) ([]Detail, error)
}

// Service is the orchestrator surface used by controllers and the CLI.
type Service interface {
	Create(ctx context.Context, in CreateInput) (Created, error)
	CreateBulk(ctx context.Context, in BulkInput) BulkResult
	Resend(ctx context.Context, id int64) (Detail, error)
	Delete(ctx context.Context, id int64, actor cdomain.Sender) error
	Stats(ctx context.Context) (Stats, error)
	List(ctx context.Context, f ListFilter) ([]Detail, error)
	Get(ctx context.Context, id int64) (Detail, error)
}

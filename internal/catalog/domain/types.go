package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrTierInUse         = errors.New("tier is referenced by issued certificates")
	ErrTemplateInUse     = errors.New("template is referenced by issued certificates")
	ErrTemplateIsDefault = errors.New("default template cannot be deleted")
)

// Roles a sender may hold.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Tier struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Rank        int       `json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
}

// DesignConfig is the JSON design blob stored on a template. Any field may be
// empty; the renderer applies its own defaults.
type DesignConfig struct {
	Background  string `json:"background,omitempty"`
	BorderColor string `json:"border_color,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
	TitleFont   string `json:"title_font,omitempty"`
	BodyFont    string `json:"body_font,omitempty"`
	Layout      string `json:"layout,omitempty"`
}

type Template struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Title          string       `json:"title"`
	PrimaryColor   string       `json:"primary_color,omitempty"`
	SecondaryColor string       `json:"secondary_color,omitempty"`
	Design         DesignConfig `json:"design"`
	IsDefault      bool         `json:"is_default"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Sender is the authenticated user issuing certificates.
type Sender struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	SignatureName  string `json:"signature_name,omitempty"`
	SignatureTitle string `json:"signature_title,omitempty"`
}

func (s Sender) IsAdmin() bool { return s.Role == RoleAdmin }

// Repository is the read/write surface over employees, tiers, templates and users.
// Lookups return ErrNotFound when the row does not exist.
type Repository interface {
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	GetTier(ctx context.Context, id int64) (Tier, error)
	GetTemplate(ctx context.Context, id int64) (Template, error)
	GetSender(ctx context.Context, id int64) (Sender, error)
	ListTiers(ctx context.Context) ([]Tier, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	CountEmployees(ctx context.Context) (int, error)
	CountCertificatesByTier(ctx context.Context, tierID int64) (int, error)
	CountCertificatesByTemplate(ctx context.Context, templateID int64) (int, error)
	// SetDefaultTemplate clears the flag on all templates and sets it on id atomically.
	SetDefaultTemplate(ctx context.Context, id int64) error
	DeleteTier(ctx context.Context, id int64) error
	DeleteTemplate(ctx context.Context, id int64) error
}

// Service is the HTTP-facing catalog surface.
type Service interface {
	ListTiers(ctx context.Context) ([]Tier, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	SetDefaultTemplate(ctx context.Context, id int64) (Template, error)
	DeleteTier(ctx context.Context, id int64) error
	DeleteTemplate(ctx context.Context, id int64) error
}

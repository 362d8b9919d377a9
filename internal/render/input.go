package render

import (
	"strings"

	"github.com/google/uuid"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

// Signature is a name/title pair printed in the footer.
type Signature struct {
	Name  string
	Title string
}

// Input is everything one certificate needs. LogoPath is a path on disk.
type Input struct {
	CertificateID          uuid.UUID
	Employee               cdomain.Employee
	Tier                   cdomain.Tier
	Template               cdomain.Template
	Sender                 cdomain.Sender
	CustomMessage          string
	AchievementDescription string
	Period                 string
	LogoPath               string
	Override               Signature
	Global                 Signature
}

// ResolveSignature picks each field independently: explicit override, then
// the sender's own signature, then the global one.
func ResolveSignature(override Signature, sender cdomain.Sender, global Signature) Signature {
	pick := func(vals ...string) string {
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return ""
	}
	return Signature{
		Name:  pick(override.Name, sender.SignatureName, global.Name),
		Title: pick(override.Title, sender.SignatureTitle, global.Title),
	}
}

// Description prefers the achievement text and falls back to the tier's own description.
func (in Input) Description() string {
	if d := strings.TrimSpace(in.AchievementDescription); d != "" {
		return d
	}
	return strings.TrimSpace(in.Tier.Description)
}

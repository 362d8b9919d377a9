package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("EMAIL_SEND_TIMEOUT", "")
	t.Setenv("PUBLIC_PATH_PREFIX", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "smtp", cfg.EmailProvider)
	assert.Equal(t, 30*time.Second, cfg.EmailSendTimeout)
	assert.Equal(t, "/uploads", cfg.PublicPathPrefix)
	assert.Equal(t, 5, cfg.StatsRecentLimit)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "Mailgun")
	t.Setenv("EMAIL_SEND_TIMEOUT", "5s")
	t.Setenv("PUBLIC_PATH_PREFIX", "static/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mailgun", cfg.EmailProvider)
	assert.Equal(t, 5*time.Second, cfg.EmailSendTimeout)
	assert.Equal(t, "/static", cfg.PublicPathPrefix)
}

func TestLoad_RejectsNonPositiveRecentLimit(t *testing.T) {
	t.Setenv("STATS_RECENT_LIMIT", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestResolveUpload(t *testing.T) {
	cfg := Config{UploadsDir: "/srv/uploads", PublicPathPrefix: "/uploads"}

	assert.Equal(t, filepath.Join("/srv/uploads", "certificates", "a.pdf"), cfg.ResolveUpload("/uploads/certificates/a.pdf"))
	assert.Equal(t, filepath.Join("/srv/uploads", "logos", "logo.png"), cfg.ResolveUpload("/uploads/logos/logo.png"))
	assert.Equal(t, filepath.Join("other", "file.png"), cfg.ResolveUpload("/other/file.png"))
	assert.Equal(t, "", cfg.ResolveUpload(""))
	assert.Equal(t, "/uploads/certificates", cfg.CertificatesPublicPrefix())
	assert.Equal(t, filepath.Join("/srv/uploads", "certificates"), cfg.CertificatesDir())
}

func TestString_RedactsDatabasePassword(t *testing.T) {
	cfg := Config{AppEnv: "production", DatabaseURL: "postgres://honorhub:s3cret@db:5432/honorhub", EmailProvider: "resend"}
	s := cfg.String()
	assert.NotContains(t, s, "s3cret")
	assert.Contains(t, s, "honorhub:xxxxx@db:5432")
	assert.Contains(t, s, "email=resend")
}

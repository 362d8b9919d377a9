package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haythamforever/HonorHub/internal/config"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

type memRepo struct {
	vals map[string]string
	err  error
}

func (m *memRepo) Get(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *memRepo) All(context.Context) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vals, nil
}

func (m *memRepo) Upsert(_ context.Context, key, value string) error {
	m.vals[key] = value
	return nil
}

func TestTypedGetters(t *testing.T) {
	s := New(&memRepo{vals: map[string]string{
		"dur": "15s", "int": " 42 ", "bad": "x", "blank": "  ", "flag": "true",
	}})
	ctx := context.Background()

	d, err := s.GetDuration(ctx, "dur", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	n, _ := s.GetInt(ctx, "int", 0)
	assert.Equal(t, 42, n)
	n, _ = s.GetInt(ctx, "bad", 7)
	assert.Equal(t, 7, n)

	v, _ := s.GetString(ctx, "blank", "def")
	assert.Equal(t, "def", v)
	v, _ = s.GetString(ctx, "missing", "def")
	assert.Equal(t, "def", v)

	b, _ := s.GetBool(ctx, "flag", false)
	assert.True(t, b)
}

func TestGetString_RepoErrorReturnsDefault(t *testing.T) {
	s := New(&memRepo{err: errors.New("db down")})
	v, err := s.GetString(context.Background(), "k", "def")
	assert.Error(t, err)
	assert.Equal(t, "def", v)
}

func TestLoadBranding_Defaults(t *testing.T) {
	s := New(&memRepo{vals: map[string]string{sdomain.KeyGlobalSignatureName: "Jane Doe"}})
	b, err := s.LoadBranding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sdomain.DefaultCompanyName, b.CompanyName)
	assert.Equal(t, "Jane Doe", b.SignatureName)
	assert.Empty(t, b.LogoPath)
}

func TestLoadEmail_StoredValuesOverrideEnv(t *testing.T) {
	cfg := config.Config{EmailProvider: "smtp", SMTPHost: "env.example.com", SMTPPort: 587, SMTPUsername: "env-user"}
	s := New(&memRepo{vals: map[string]string{
		sdomain.KeyEmailProvider: "mailgun",
		sdomain.KeySMTPHost:      "db.example.com",
		sdomain.KeySMTPPort:      "465",
		sdomain.KeySMTPSecure:    "true",
		sdomain.KeyMailgunDomain: "mg.example.com",
	}})

	es, err := s.LoadEmail(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "mailgun", es.Provider)
	assert.Equal(t, "db.example.com", es.SMTP.Host)
	assert.Equal(t, 465, es.SMTP.Port)
	assert.True(t, es.SMTP.Secure)
	assert.Equal(t, "env-user", es.SMTP.User)
	assert.Equal(t, "us", es.Mailgun.Region)
	assert.Equal(t, sdomain.DefaultSubjectTemplate, es.SubjectTemplate)
	assert.Equal(t, sdomain.DefaultBodyTemplate, es.BodyTemplate)
}

func TestLoadEmail_NormalizesProvider(t *testing.T) {
	for stored, want := range map[string]string{
		"Resend":    sdomain.ProviderResend,
		" MAILGUN ": sdomain.ProviderMailgun,
		"sendgrid":  sdomain.ProviderSMTP,
		"":          sdomain.ProviderSMTP,
	} {
		s := New(&memRepo{vals: map[string]string{sdomain.KeyEmailProvider: stored}})
		es, err := s.LoadEmail(context.Background(), config.Config{})
		require.NoError(t, err)
		assert.Equal(t, want, es.Provider, stored)
	}
}

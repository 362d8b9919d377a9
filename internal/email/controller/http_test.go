package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	"github.com/haythamforever/HonorHub/internal/platform/validation"
)

type fakeMailer struct {
	err error
	to  []string
}

func (f *fakeMailer) SendCertificate(context.Context, edomain.CertificateEmail) error { return nil }

func (f *fakeMailer) SendTest(_ context.Context, to string) error {
	f.to = append(f.to, to)
	return f.err
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/test-email", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newEcho(m edomain.Mailer) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	New(m).Register(e)
	return e
}

func TestSendTestEmail(t *testing.T) {
	m := &fakeMailer{}
	e := newEcho(m)

	rec := post(e, `{"email":"ops@acme.test"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ops@acme.test"}, m.to)

	assert.Equal(t, http.StatusBadRequest, post(e, `{"email":"nope"}`).Code)
}

func TestSendTestEmail_ErrorMapping(t *testing.T) {
	cases := map[error]int{
		edomain.NotConfigured("smtp", "smtp_host"):                 http.StatusUnprocessableEntity,
		fmt.Errorf("resend: %w: slow down", edomain.ErrRateLimited): http.StatusTooManyRequests,
		fmt.Errorf("smtp send: connection refused"):                 http.StatusBadGateway,
	}
	for err, want := range cases {
		rec := post(newEcho(&fakeMailer{err: err}), `{"email":"ops@acme.test"}`)
		assert.Equal(t, want, rec.Code, err.Error())
		assert.Contains(t, rec.Body.String(), err.Error())
	}
}

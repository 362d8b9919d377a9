package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

func mockedClient(t *testing.T) *http.Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return hc
}

func sampleMessage() edomain.Message {
	return edomain.Message{
		From:    edomain.Address{Name: "Acme", Email: "awards@acme.test"},
		To:      "jane@acme.test",
		Subject: "Congrats",
		Text:    "Hello",
		HTML:    "<p>Hello</p>",
		Attachments: []edomain.Attachment{
			{Filename: "Certificate_Jane.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
		},
	}
}

func TestResend_Send(t *testing.T) {
	hc := mockedClient(t)
	var got resendEmail
	httpmock.RegisterResponder(http.MethodPost, "https://api.resend.com/emails",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer re_key", req.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK, `{"id":"abc"}`), nil
		})

	p, err := NewResend(sdomain.ResendSettings{APIKey: "re_key"}, "", hc)
	require.NoError(t, err)
	require.NoError(t, p.Send(context.Background(), sampleMessage()))

	assert.Equal(t, `"Acme" <awards@acme.test>`, got.From)
	assert.Equal(t, []string{"jane@acme.test"}, got.To)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.3")), got.Attachments[0].Content)
}

func TestResend_Errors(t *testing.T) {
	hc := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://resend.test/emails",
		httpmock.NewJsonResponderOrPanic(http.StatusTooManyRequests, map[string]string{"name": "rate_limit_exceeded", "message": "Too many requests"}))

	p, err := NewResend(sdomain.ResendSettings{APIKey: "re_key"}, "https://resend.test", hc)
	require.NoError(t, err)
	err = p.Send(context.Background(), sampleMessage())
	assert.ErrorIs(t, err, edomain.ErrRateLimited)
	assert.Contains(t, err.Error(), "Too many requests")

	httpmock.RegisterResponder(http.MethodPost, "https://resend.test/emails",
		httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized, map[string]string{"message": "API key is invalid"}))
	err = p.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.NotErrorIs(t, err, edomain.ErrRateLimited)
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestMailgun_SendMultipart(t *testing.T) {
	hc := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://api.eu.mailgun.net/v3/mg.acme.test/messages",
		func(req *http.Request) (*http.Response, error) {
			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "api", user)
			assert.Equal(t, "key-1", pass)

			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "jane@acme.test", req.FormValue("to"))
			assert.Equal(t, `"Acme" <awards@acme.test>`, req.FormValue("from"))
			files := req.MultipartForm.File["attachment"]
			require.Len(t, files, 1)
			assert.Equal(t, "Certificate_Jane.pdf", files[0].Filename)
			f, err := files[0].Open()
			require.NoError(t, err)
			defer f.Close()
			b, _ := io.ReadAll(f)
			assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
			return httpmock.NewStringResponse(http.StatusOK, `{"id":"<x@mg>","message":"Queued"}`), nil
		})

	p, err := NewMailgun(sdomain.MailgunSettings{APIKey: "key-1", Domain: "mg.acme.test", Region: "EU"}, "", hc)
	require.NoError(t, err)
	require.NoError(t, p.Send(context.Background(), sampleMessage()))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestMailgun_ErrorMessageSurfaced(t *testing.T) {
	hc := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://api.mailgun.net/v3/mg.acme.test/messages",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]string{"message": "'to' parameter is not a valid address"}))

	p, err := NewMailgun(sdomain.MailgunSettings{APIKey: "k", Domain: "mg.acme.test"}, "", hc)
	require.NoError(t, err)
	msg := sampleMessage()
	msg.Attachments = nil
	err = p.Send(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not a valid address"))
}

func TestSMTP_BuildMessage(t *testing.T) {
	m, err := buildMsg(sampleMessage())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Subject: Congrats")
	assert.Contains(t, out, "awards@acme.test")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "Certificate_Jane.pdf")
}

func TestSMTP_BuildMessageRejectsBadRecipient(t *testing.T) {
	msg := sampleMessage()
	msg.To = "not-an-address"
	_, err := buildMsg(msg)
	assert.Error(t, err)
}

func TestFormatAddress(t *testing.T) {
	for _, tc := range []struct {
		in   edomain.Address
		want string
	}{
		{edomain.Address{Email: "awards@acme.test"}, "awards@acme.test"},
		{edomain.Address{Name: "Acme, Inc", Email: "awards@acme.test"}, `"Acme, Inc" <awards@acme.test>`},
		{edomain.Address{Name: `The "Best" Team`, Email: "awards@acme.test"}, `"The \"Best\" Team" <awards@acme.test>`},
	} {
		got := formatAddress(tc.in)
		assert.Equal(t, tc.want, got)
		parsed, err := mail.ParseAddress(got)
		require.NoError(t, err, got)
		assert.Equal(t, tc.in.Email, parsed.Address)
		assert.Equal(t, tc.in.Name, parsed.Name)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	cdomain "github.com/haythamforever/HonorHub/internal/certificates/domain"
)

// HealthResponse mirrors GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
	DB      string `json:"db"`
	Cache   string `json:"cache"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client is a thin HonorHub API client.
type Client struct {
	rc *resty.Client
}

func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	rc := resty.NewWithClient(hc).SetBaseURL(baseURL).SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &Client{rc: rc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var apiErr apiError
	req := c.rc.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode(), apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (cdomain.Stats, error) {
	var out cdomain.Stats
	err := c.do(ctx, http.MethodGet, "/api/v1/stats/overview", nil, &out)
	return out, err
}

func (c *Client) ListCertificates(ctx context.Context, f cdomain.ListFilter) ([]cdomain.Detail, error) {
	q := map[string]string{}
	set := func(k string, v int64) {
		if v > 0 {
			q[k] = strconv.FormatInt(v, 10)
		}
	}
	set("employee_id", f.EmployeeID)
	set("tier_id", f.TierID)
	set("sender_id", f.SenderID)
	set("limit", int64(f.Limit))
	set("offset", int64(f.Offset))

	var out []cdomain.Detail
	var apiErr apiError
	resp, err := c.rc.R().SetContext(ctx).SetQueryParams(q).SetResult(&out).SetError(&apiErr).Get("/api/v1/certificates")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode(), apiErr.Error)
	}
	return out, nil
}

func (c *Client) GetCertificate(ctx context.Context, id int64) (cdomain.Detail, error) {
	var out cdomain.Detail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/certificates/%d", id), nil, &out)
	return out, err
}

func (c *Client) Resend(ctx context.Context, id int64) (cdomain.Detail, error) {
	var out cdomain.Detail
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/certificates/%d/resend", id), nil, &out)
	return out, err
}

func (c *Client) DeleteCertificate(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/certificates/%d", id), nil, nil)
}

func (c *Client) Settings(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	err := c.do(ctx, http.MethodGet, "/api/v1/settings", nil, &out)
	return out, err
}

func (c *Client) PutSettings(ctx context.Context, kv map[string]string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/settings", kv, nil)
}

func (c *Client) TestEmail(ctx context.Context, to string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/settings/test-email", map[string]string{"email": to}, nil)
}

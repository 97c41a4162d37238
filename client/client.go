// Package client is a Go client for the JuryChain HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/linesmerrill/jurychain-api/models"
)

const apiPrefix = "/api/v1"

// Client talks to a running JuryChain API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
	Errors     []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if len(e.Errors) > 0 {
		msg += " (" + strings.Join(e.Errors, "; ") + ")"
	}
	return msg
}

// SubmitCase submits a dispute and returns the judged case
func (c *Client) SubmitCase(ctx context.Context, req models.SubmitCaseRequest) (*models.Case, error) {
	var cs models.Case
	if err := c.do(ctx, http.MethodPost, "/submitCase", req, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// GetCase fetches one case by ID
func (c *Client) GetCase(ctx context.Context, caseID string) (*models.Case, error) {
	if caseID == "" {
		return nil, fmt.Errorf("case id is required")
	}
	var cs models.Case
	if err := c.do(ctx, http.MethodGet, "/getCase/"+url.PathEscape(caseID), nil, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// GetCases lists every case, newest first
func (c *Client) GetCases(ctx context.Context) ([]models.CaseSummary, error) {
	var resp models.CaseListResponse
	if err := c.do(ctx, http.MethodGet, "/getCases", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cases, nil
}

// StoreVerdict attaches a transaction hash to a case
func (c *Client) StoreVerdict(ctx context.Context, req models.StoreVerdictRequest) (*models.StoreVerdictResponse, error) {
	var resp models.StoreVerdictResponse
	if err := c.do(ctx, http.MethodPost, "/storeVerdict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns the dashboard counters
func (c *Client) Stats(ctx context.Context) (*models.CaseStats, error) {
	var resp models.CaseStats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChainInfo returns the network and treasury used to anchor verdicts
func (c *Client) ChainInfo(ctx context.Context) (*models.ChainInfo, error) {
	var resp models.ChainInfo
	if err := c.do(ctx, http.MethodGet, "/chain", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c.BaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError understands both the standard error body and the validation body
func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}
	if !gjson.ValidBytes(raw) {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.Get("Response").Exists():
		apiErr.Message = parsed.Get("Response.Message").String()
		apiErr.Detail = parsed.Get("Response.Error").String()
	case parsed.Get("errors").IsArray():
		apiErr.Message = parsed.Get("error").String()
		for _, e := range parsed.Get("errors").Array() {
			apiErr.Errors = append(apiErr.Errors, e.String())
		}
	default:
		apiErr.Message = parsed.Get("error").String()
		apiErr.Detail = parsed.Get("message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

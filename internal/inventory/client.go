// Package inventory is a client for the NetBox-compatible DCIM REST API used
// as the system of record. Every failure is one of RequestError,
// ValidationError or UnexpectedError.
package inventory

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"labsync/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// Config for the inventory client
type Config struct {
	URL                string        `json:"url" yaml:"url" validate:"required,url"`
	Token              string        `json:"-" yaml:"token" validate:"required"`
	InsecureSkipVerify bool          `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Timeout            time.Duration `json:"timeout" yaml:"timeout"`
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for request tracing
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// Client talks to the inventory REST API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	validate *validator.Validate
	log      logger.Logger
}

// New validates cfg and builds a client. No request is made.
func New(cfg Config, opts ...Option) (*Client, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid inventory config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		token:    cfg.Token,
		validate: v,
		log:      logger.NewTestLogger(),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				//nolint:gosec // lab deployments commonly use self-signed certificates
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Ping checks that the API is reachable and the token is accepted
func (c *Client) Ping(ctx context.Context) error {
	var status map[string]any
	return c.do(ctx, http.MethodGet, "/api/status/", nil, nil, &status)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &UnexpectedError{Op: method + " " + path, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RequestError{Method: method, URL: u, Err: err}
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Method: method, URL: u, Err: err}
	}
	defer c.closeResponse(resp)

	c.log.Debug().
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("inventory request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(method, u, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnexpectedError{Op: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

func (c *Client) closeResponse(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to close response body")
	}
}

// classify turns a non-2xx response into a RequestError or ValidationError
func classify(method, u string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusBadRequest {
		if fields := fieldErrors(raw); len(fields) > 0 {
			return &ValidationError{Method: method, URL: u, Fields: fields}
		}
	}

	return &RequestError{
		Method:     method,
		URL:        u,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
		Err:        fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
	}
}

// fieldErrors parses {"field": ["msg", ...]} or {"field": "msg"} bodies
func fieldErrors(raw []byte) map[string][]string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}

	fields := make(map[string][]string, len(body))
	for k, v := range body {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err == nil {
			fields[k] = msgs
			continue
		}
		var msg string
		if err := json.Unmarshal(v, &msg); err == nil {
			fields[k] = []string{msg}
		}
	}
	return fields
}

// check validates a payload before it is sent
func (c *Client) check(method, path string, payload any) error {
	err := c.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &UnexpectedError{Op: method + " " + path, Err: err}
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return &ValidationError{Method: method, URL: c.baseURL + path, Fields: fields}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// findOne returns the single record matching query, nil when there is none
func findOne[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var resp listResponse[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	switch len(resp.Results) {
	case 0:
		return nil, nil
	case 1:
		return &resp.Results[0], nil
	default:
		return nil, &UnexpectedError{
			Op:  "GET " + path + "?" + query.Encode(),
			Err: fmt.Errorf("expected at most one record, got %d", len(resp.Results)),
		}
	}
}

func create[T any](ctx context.Context, c *Client, path string, payload any) (*T, error) {
	if err := c.check(http.MethodPost, path, payload); err != nil {
		return nil, err
	}
	var out T
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func patch[T any](ctx context.Context, c *Client, path string, id int, payload any) (*T, error) {
	p := fmt.Sprintf("%s%d/", path, id)
	var out T
	if err := c.do(ctx, http.MethodPatch, p, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

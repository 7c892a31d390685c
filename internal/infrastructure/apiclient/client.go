// Package apiclient talks to the GymPulse REST API on behalf of one browser
// session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

type authPayload struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type mePayload struct {
	User domain.Identity `json:"user"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client is the per-session typed client for the auth endpoints.
type Client struct {
	baseURL   string
	http      *http.Client
	transport *Transport
}

var _ ports.SessionClient = (*Client)(nil)

// NewClient builds a client for baseURL whose requests go through transport.
func NewClient(baseURL string, transport *Transport, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      &http.Client{Transport: transport, Timeout: timeout},
		transport: transport,
	}
}

func (c *Client) Subscribe(fn ports.InvalidationFunc) {
	c.transport.Subscribe(fn)
}

func (c *Client) Transport() http.RoundTripper {
	return c.transport
}

func (c *Client) Login(ctx context.Context, in domain.LoginInput) (domain.AuthResult, error) {
	return c.authenticate(ctx, domain.OpLogin, "/auth/login", in)
}

func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthResult, error) {
	return c.authenticate(ctx, domain.OpRegister, "/auth/register", in)
}

func (c *Client) Me(ctx context.Context) (domain.Identity, error) {
	var out envelope[mePayload]
	if err := c.do(ctx, domain.OpMe, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return domain.Identity{}, err
	}
	return out.Data.User, nil
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (domain.AuthResult, error) {
	var out envelope[authPayload]
	if err := c.do(ctx, op, http.MethodPost, path, body, &out); err != nil {
		return domain.AuthResult{}, err
	}
	if out.Data.Token == "" {
		return domain.AuthResult{}, domain.NewAuthError(op, http.StatusOK, "", domain.ErrMissingToken)
	}
	return domain.AuthResult{Token: out.Data.Token, Identity: out.Data.User}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.NewAuthError(op, 0, "", fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewAuthError(op, 0, "", fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewAuthError(op, 0, "", fmt.Errorf("%w: %w", domain.ErrTransport, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewAuthError(op, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func errorFromResponse(op string, resp *http.Response) error {
	var env errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &env)

	var cause error
	switch {
	case op == domain.OpMe && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		cause = domain.ErrCredentialInvalid
	case op != domain.OpMe && resp.StatusCode >= 400 && resp.StatusCode < 500:
		cause = domain.ErrRejected
	}
	return domain.NewAuthError(op, resp.StatusCode, strings.TrimSpace(env.Error.Message), cause)
}

// Factory builds session clients sharing one base transport.
type Factory struct {
	baseURL string
	timeout time.Duration
	base    http.RoundTripper
	log     zerolog.Logger
}

var _ ports.SessionClientFactory = (*Factory)(nil)

func NewFactory(baseURL string, timeout time.Duration, base http.RoundTripper, log zerolog.Logger) *Factory {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Factory{baseURL: baseURL, timeout: timeout, base: base, log: log}
}

func (f *Factory) NewSessionClient(store ports.TokenStore) ports.SessionClient {
	return NewClient(f.baseURL, NewTransport(f.base, store, f.log), f.timeout)
}

// BaseURL is the upstream API root.
func (f *Factory) BaseURL() string {
	return f.baseURL
}

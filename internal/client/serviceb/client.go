// Package serviceb is the HTTP client service-a uses to reach service-b.
//
// Every Fetch issues its own GET; nothing is cached between calls. Response
// bodies are read up to MaxResponseSize before decoding so a misbehaving
// upstream cannot exhaust memory.
package serviceb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"pratica/internal/config"
	"pratica/internal/domain"
	"pratica/internal/requestid"
)

const (
	// MaxResponseSize bounds the responder payload: 1 MiB.
	MaxResponseSize int64 = 1 << 20
	// maxErrorBody bounds how much of a non-2xx body ends up in the error.
	maxErrorBody int64 = 512
)

type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	log           *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the responder at cfg.URL.
func NewClient(cfg config.ResponderConfig, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		httpClient:    &http.Client{Transport: newTransport()},
		timeout:       cfg.Timeout,
		healthTimeout: cfg.HealthTimeout,
		log:           log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Fetch performs GET /minha-rota against service-b and returns the body
// once it is known to be an object with a string "message". The bytes are
// not re-encoded. All failures are *domain.DomainError with an UPSTREAM_* code.
func (c *Client) Fetch(ctx context.Context) (json.RawMessage, error) {
	url := c.baseURL + domain.ResponderPath

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.get(ctx, url)
	if err != nil {
		c.log.WarnContext(ctx, "service-b call failed", "url", url, "error", err,
			"duration", time.Since(start))
		return nil, domain.NewUpstreamUnavailableError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readErrorBody(resp.Body)
		c.log.WarnContext(ctx, "service-b returned non-2xx", "url", url, "status", resp.StatusCode)
		return nil, domain.NewUpstreamBadStatusError(url, resp.StatusCode, body)
	}

	payload, err := decodeResponse(url, resp.Body)
	if err != nil {
		c.log.WarnContext(ctx, "service-b payload rejected", "url", url, "error", err)
		return nil, err
	}

	c.log.DebugContext(ctx, "service-b call succeeded", "url", url, "status", resp.StatusCode,
		"duration", time.Since(start))
	return payload, nil
}

// Ping checks GET /health on service-b.
func (c *Client) Ping(ctx context.Context) error {
	url := c.baseURL + domain.HealthPath

	if c.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.healthTimeout)
		defer cancel()
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return domain.NewUpstreamUnavailableError(url, err)
	}
	defer resp.Body.Close()
	// drain so the connection goes back to the pool
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewUpstreamBadStatusError(url, resp.StatusCode, "")
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	return c.httpClient.Do(req)
}

// decodeResponse reads at most MaxResponseSize bytes and checks them.
// A body that breaks off mid-read counts as the upstream being unavailable.
func decodeResponse(url string, body io.Reader) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError(url, err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, domain.NewUpstreamBadPayloadError(url,
			fmt.Errorf("response exceeds %d bytes", MaxResponseSize))
	}

	var wire struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, domain.NewUpstreamBadPayloadError(url, err)
	}
	if wire.Message == nil {
		return nil, domain.NewUpstreamBadPayloadError(url, errors.New(`missing "message" field`))
	}
	return json.RawMessage(data), nil
}

func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return strings.TrimSpace(string(data))
}

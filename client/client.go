// Package client is the Go SDK for the HTTP API. Every failure comes back as
// an *apperr.Error so callers can branch on its kind.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"pedeai/pkg/apperr"
)

// DefaultTimeout bounds every request made by a Client built without
// WithHTTPClient.
const DefaultTimeout = 15 * time.Second

const genericFailure = "request failed, please try again"

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// envelope is the body shape of every API response.
type envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// do sends body as JSON and decodes the data field of the reply into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, context.DeadlineExceeded) {
			return ctxErr
		}
		c.log.WarnContext(ctx, "api request failed", "method", method, "path", path, "err", err)
		return apperr.Transient(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return apperr.Transient(err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode >= 300 {
		return responseError(res.StatusCode, env, decodeErr == nil)
	}
	if decodeErr != nil {
		return apperr.Rejected(genericFailure)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// responseError maps a failed response to the error taxonomy. A backend
// message is kept verbatim; without one the user gets a generic text.
func responseError(status int, env envelope, decoded bool) error {
	msg := genericFailure
	if decoded && env.Message != "" {
		msg = env.Message
	}
	kind := apperr.Kind(env.Error)
	if !decoded || !knownKind(kind) {
		kind = kindForStatus(status)
	}
	return &apperr.Error{Kind: kind, Message: msg}
}

func knownKind(k apperr.Kind) bool {
	switch k {
	case apperr.KindValidation, apperr.KindCrossRestaurant, apperr.KindNotFound,
		apperr.KindForbidden, apperr.KindUnauthorized, apperr.KindRejected:
		return true
	}
	return false
}

func kindForStatus(status int) apperr.Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case status == http.StatusUnauthorized:
		return apperr.KindUnauthorized
	case status == http.StatusForbidden:
		return apperr.KindForbidden
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return apperr.KindTransient
	default:
		return apperr.KindRejected
	}
}

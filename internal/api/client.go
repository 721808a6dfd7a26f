// Package api is the HTTP client for the ticketing backend.
package api

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

	"eventos-web/internal/logger"

	"github.com/google/uuid"
)

const maxResponseBytes = 16 << 20

// State is the slice of client state the API client needs: where the token
// comes from and what to clear when the backend rejects it
type State interface {
	SessionToken() string
	UserID() string
	ClearIdentity()
}

// Config configures the backend client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the ticketing backend
type Client struct {
	baseURL string
	http    *http.Client
	state   State
}

// NewClient creates a new backend client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithState returns a copy of the client bound to one browser's state. The
// bound state supplies the token and is cleared on a 401.
func (c *Client) WithState(state State) *Client {
	bound := *c
	bound.state = state
	return &bound
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method        string
	path          string
	query         url.Values
	json          interface{}
	form          url.Values
	authenticated bool
	// expect lists the accepted success statuses; empty means any 2xx
	expect []int
	// errorMessages overrides the message for specific failure statuses
	errorMessages map[int]string
	// fallbacks is used for failure statuses whose body carries no message
	fallbacks map[int]string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

type requestIDKey struct{}

// WithRequestID tags ctx so backend calls made with it reuse the id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id carried by ctx, or ""
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// do is the single path every backend call takes
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.json != nil:
		data, err := json.Marshal(req.json)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// the backend expects the raw token, without a scheme
	if req.authenticated && c.state != nil {
		if token := c.state.SessionToken(); token != "" {
			httpReq.Header.Set("Authorization", token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Log.Warnw("backend unreachable",
			"method", req.method,
			"path", req.path,
			"request_id", requestID,
			"error", err,
		)
		return nil, &Error{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: MsgNetwork, Err: err}
	}

	logger.Log.Debugw("backend request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode == http.StatusUnauthorized && req.authenticated {
		if c.state != nil {
			logger.Log.Infow("backend rejected session, clearing identity", "path", req.path, "user_id", c.state.UserID())
			c.state.ClearIdentity()
		}
		return nil, statusError(resp.StatusCode, data, "your session has expired, please sign in again")
	}

	if resp.StatusCode >= 400 {
		apiErr := statusError(resp.StatusCode, data, req.fallbacks[resp.StatusCode])
		if apiErr.Kind == KindUnauthorized {
			// credentials rejected on a call that carried no session
			apiErr.Kind = KindValidation
		}
		if msg, ok := req.errorMessages[resp.StatusCode]; ok {
			apiErr.Message = msg
		}
		return nil, apiErr
	}

	if len(req.expect) > 0 && !containsStatus(req.expect, resp.StatusCode) {
		return nil, &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response from server (status %d)", resp.StatusCode),
		}
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func containsStatus(statuses []int, status int) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

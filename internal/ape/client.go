package ape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeledger/internal/model"
)

// StatusOffline is the status every request resolves with in offline mode.
const StatusOffline = http.StatusServiceUnavailable

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Body   any
}

// Response is the outcome of an API call.
type Response struct {
	Status int
	Body   json.RawMessage
	Header http.Header
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Message extracts the "message" field of the body, if any.
func (r Response) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	return body.Message
}

// Client talks to the remote API. In this build every call is answered
// locally with an offline response.
type Client struct {
	baseURL string
	headers http.Header
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger requests are traced to.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for baseURL.
func NewClient(baseURL, clientVersion string, opts ...ClientOption) *Client {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("X-Client-Version", clientVersion)
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), headers: h, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs req. The body must be JSON encodable.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	var size int
	if req.Body != nil {
		body, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		size = len(body)
	}
	c.logger.Debug("api request answered offline",
		zap.String("method", req.Method),
		zap.String("url", c.baseURL+req.Path),
		zap.String("client_version", c.headers.Get("X-Client-Version")),
		zap.Int("body_bytes", size),
	)
	return Response{
		Status: StatusOffline,
		Body:   json.RawMessage(`{"message":"Offline mode"}`),
		Header: http.Header{},
	}, nil
}

// SaveResult submits a completed result.
func (c *Client) SaveResult(ctx context.Context, result model.Result) (Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/results", Body: result})
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the consumption-analysis backend.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Response size limit prevents memory exhaustion.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB limit

	// chatRatePerSecond caps client-side chat submissions. The backend
	// enforces its own daily quota; this only smooths bursts.
	chatRatePerSecond = 2
	chatRateBurst     = 4
)

// Shared HTTP client with connection pooling for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// apiErrorResponse is the backend's error body shape on non-2xx.
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the consumption-analysis backend.
//
// All methods take a context and return decoded responses; transport
// failures and non-2xx statuses come back as errors (usually an
// *APIError) and never as partially filled responses.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	device        string
	deviceVersion string
	chatLimiter   *rate.Limiter
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    sharedHTTPClient,
		device:        "a,b",
		deviceVersion: "1.0.0",
		chatLimiter:   rate.NewLimiter(rate.Limit(chatRatePerSecond), chatRateBurst),
	}
}

// WithTimeout sets the request timeout. Calling this detaches the
// client from the shared pool.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithDevice sets the device descriptor sent on initialization.
func (c *Client) WithDevice(device, version string) *Client {
	c.device = device
	c.deviceVersion = version
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Profile exchanges an entry code for a customer id.
func (c *Client) Profile(ctx context.Context, code string) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.post(ctx, "/profile", profileRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Initialize opens a conversation session for the customer and returns
// the greeting payload: session id, quota counters, greeting text,
// legal-notice template and the initial suggested questions.
func (c *Client) Initialize(ctx context.Context, customerID string) (*InitializeResponse, error) {
	req := initializeRequest{
		CustomerID:    customerID,
		Device:        c.device,
		DeviceVersion: c.deviceVersion,
	}
	var out InitializeResponse
	if err := c.post(ctx, "/initialize", req, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("initialize: %w", ErrEmptyResponse)
	}
	return &out, nil
}

// Chat submits one user question and returns the backend's verdict:
// either a generated answer or a coded rejection.
func (c *Client) Chat(ctx context.Context, sess *Session, message string) (*ChatResponse, error) {
	if !sess.Ready() {
		return nil, ErrNoSession
	}
	if err := c.chatLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	req := chatRequest{
		SessionID: sess.ID(),
		Message:   message,
		IsDefault: false,
	}
	var out ChatResponse
	if err := c.post(ctx, "/chat", req, &out); err != nil {
		return nil, err
	}
	if out.RequestID != "" {
		sess.SetRequestID(out.RequestID)
	}
	return &out, nil
}

// Feedback registers a positive evaluation slot for the given turn and
// returns the dislike-reason catalogue the UI offers on thumbs-down.
func (c *Client) Feedback(ctx context.Context, sess *Session, requestID string) (*FeedbackResponse, error) {
	if !sess.Ready() {
		return nil, ErrNoSession
	}
	req := feedbackRequest{
		SessionID: sess.ID(),
		RequestID: requestID,
		Evaluate:  true,
	}
	var out FeedbackResponse
	if err := c.post(ctx, "/feedback", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Comment submits the user's verdict on a turn. A like sends "good"
// with no option id; a dislike sends "bad" plus the chosen reason's
// option id when one was selected.
func (c *Client) Comment(ctx context.Context, sess *Session, requestID, optionID, content string) (*CommentResponse, error) {
	if !sess.Ready() {
		return nil, ErrNoSession
	}
	req := commentRequest{
		SessionID:     sess.ID(),
		RequestID:     requestID,
		OptionID:      optionID,
		OptionContent: content,
	}
	var out CommentResponse
	if err := c.post(ctx, "/comment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Like submits a positive verdict for the turn.
func (c *Client) Like(ctx context.Context, sess *Session, requestID string) error {
	_, err := c.Comment(ctx, sess, requestID, "", "good")
	return err
}

// Dislike submits a negative verdict with an optional reason. When the
// panel is closed without choosing a reason, optionID and content are
// both empty and a bare "bad" is sent.
func (c *Client) Dislike(ctx context.Context, sess *Session, requestID, optionID, content string) error {
	if content == "" {
		content = "bad"
	}
	_, err := c.Comment(ctx, sess, requestID, optionID, content)
	return err
}

// =============================================================================
// TRANSPORT
// =============================================================================

// post issues a JSON POST and decodes the 2xx body into out.
func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(endpoint, resp.StatusCode, data)
	}

	if len(data) == 0 {
		return fmt.Errorf("%s: %w", endpoint, ErrEmptyResponse)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// handleErrorResponse converts a non-2xx body into an *APIError.
func (c *Client) handleErrorResponse(endpoint string, status int, data []byte) error {
	apiErr := &APIError{
		Endpoint: endpoint,
		Status:   status,
		Message:  http.StatusText(status),
	}
	var body apiErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Code != "" {
			apiErr.Code = body.Code
		}
		if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

// logRequest logs an API request without exposing the body, which may
// contain user questions.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only, never the response body.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

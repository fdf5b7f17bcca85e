// Package parentpanel is the HTTP client for the upstream parent-panel
// backend that owns join codes, class schedules and the join queue.
package parentpanel

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
)

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for upstream calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFrom returns the bearer token on ctx, or "".
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks JSON to the parent-panel backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VerifyJoinCode asks the backend whether code is a live join code.
// Callers must check Verified() on the result.
func (c *Client) VerifyJoinCode(ctx context.Context, code string) (*VerifyResponse, error) {
	var out VerifyResponse
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/parent-panel/verify-join-code", body, false, &out); err != nil {
		return nil, fmt.Errorf("verify join code: %w", err)
	}
	return &out, nil
}

// GetJoinClassInfo fetches the next class attached to code.
func (c *Client) GetJoinClassInfo(ctx context.Context, code string) (*ClassInfoResponse, error) {
	var out ClassInfoResponse
	path := "/parent-panel/get-join-class-info/" + url.PathEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, false, &out); err != nil {
		return nil, fmt.Errorf("get join class info: %w", err)
	}
	return &out, nil
}

// FetchLastSessionDetails fetches homework, slides and recap of the last session.
func (c *Client) FetchLastSessionDetails(ctx context.Context, code string) (*SessionDetailsResponse, error) {
	var out SessionDetailsResponse
	path := "/parent-panel/last_session_details?code=" + url.QueryEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, false, &out); err != nil {
		return nil, fmt.Errorf("fetch last session details: %w", err)
	}
	return &out, nil
}

// AddChildToJoinQueue puts the child behind code on the waiting list.
// A success:false answer is an error wrapping ErrQueueRejected.
func (c *Client) AddChildToJoinQueue(ctx context.Context, code string) error {
	var out basicResponse
	path := "/parent-panel/add-child-in-join-queue/" + url.PathEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return fmt.Errorf("add child to join queue: %w", err)
	}
	if out.Success != nil && !*out.Success {
		return fmt.Errorf("add child to join queue: %w", &rejectedError{message: out.Message})
	}
	return nil
}

// CheckIfClassStarted reports whether the class behind code is live.
func (c *Client) CheckIfClassStarted(ctx context.Context, code string) (*ClassStartStatus, error) {
	var out ClassStartStatus
	path := "/parent-panel/check-if-class-started/" + url.PathEscape(code) + "/"
	if err := c.do(ctx, http.MethodGet, path, nil, false, &out); err != nil {
		return nil, fmt.Errorf("check if class started: %w", err)
	}
	return &out, nil
}

// GetHeader fetches the progress counters shown in the dashboard header.
func (c *Client) GetHeader(ctx context.Context) (*HeaderResponse, error) {
	var out HeaderResponse
	if err := c.do(ctx, http.MethodGet, "/parent-panel/header", nil, true, &out); err != nil {
		return nil, fmt.Errorf("get header: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, requireToken bool, out interface{}) error {
	token := TokenFrom(ctx)
	if requireToken && token == "" {
		return ErrTokenMissing
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var msg basicResponse
		_ = json.Unmarshal(raw, &msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

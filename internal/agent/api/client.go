// Package api is the agent's HTTP client for the crypto tracker server.
//
// Requests and responses are JSON. Non-2xx responses become *Error carrying
// the status code and the server's {"error": "..."} message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Error is a non-2xx answer from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsRateLimited reports whether err is an HTTP 429 from the server.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// IsUnauthorized reports whether err is an HTTP 401 from the server.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL
// (e.g. "http://localhost:4000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// readAPIError turns an error response into *Error, falling back to the HTTP
// status text when the body is not the usual envelope.
func readAPIError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))

	var envelope struct {
		Error string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &envelope); err == nil {
		msg = envelope.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return &Error{StatusCode: res.StatusCode, Message: msg}
}

// do sends req (if non-nil) as JSON and decodes the response into resp (if
// non-nil). 204 and empty bodies are successes.
func (c *Client) do(ctx context.Context, method, path string, req, resp any, token string) error {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
		body = &buf
	}

	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}
	if res.StatusCode == http.StatusNoContent || resp == nil {
		return nil
	}

	err = json.NewDecoder(res.Body).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

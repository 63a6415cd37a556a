// Package api is the single gateway for all calls to the task-management
// backend. It attaches the session's bearer token, serializes JSON, and
// maps every failure onto *APIError. Each call is one request and one
// response: no retries, no client-side timeout, no caching.
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

	"github.com/rs/zerolog"

	"github.com/minhng/taskdeck/internal/session"
)

// ErrUnauthorized matches any *APIError carrying HTTP 401 via errors.Is.
// The UI uses it to route back to the sign-in view.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend. The message prefers
// the `detail` field of the JSON error body; without one it falls back
// to a generic message carrying the status code.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("http error, status %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client is a thin HTTP client for the task-management REST API.
type Client struct {
	baseURL    string
	session    session.Store
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a new API client. The baseURL should be the root URL of
// the backend (e.g., http://localhost:8000); API paths are appended to
// it. The session store supplies the bearer token when one is present.
func New(baseURL string, sess session.Store, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		httpClient: &http.Client{},
		log:        log,
	}
}

// get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an HTTP POST request with an optional JSON body and
// unmarshals the JSON response.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// put performs an HTTP PUT request with a JSON body and unmarshals the
// JSON response.
func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// delete performs an HTTP DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do is the core HTTP method that builds the request, attaches auth,
// and handles JSON (de)serialization and error mapping.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	token, err := c.session.Token()
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
	case errors.Is(err, session.ErrNoSession):
		// Unauthenticated call (login, register, health).
	default:
		return fmt.Errorf("reading session token: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).
			Msg("request failed")
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Detail string `json:"detail"`
		}
		// detail may be a non-string (FastAPI validation errors);
		// any shape mismatch falls back to the status-code message.
		if json.Unmarshal(respBody, &errBody) == nil {
			apiErr.Detail = errBody.Detail
		}
		c.log.Debug().Int("status", resp.StatusCode).
			Str("method", method).Str("path", path).
			Str("detail", apiErr.Detail).
			Msg("api error")
		return apiErr
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

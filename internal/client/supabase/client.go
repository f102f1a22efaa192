// Package supabase talks to a hosted Supabase project: GoTrue for accounts
// and PostgREST for the health record tables.
package supabase

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

	"github.com/samber/oops"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/model/record"
	"github.com/symptomsync/healthai/backend/internal/service/auth"
)

// Client is a minimal Supabase REST client.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient returns a client for the project at baseURL.
func NewClient(baseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do sends a JSON request. A bearer token is taken from accessToken, then
// from the request principal, then the anon key.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, accessToken string, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return oops.In("supabase").Wrapf(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return oops.In("supabase").Wrapf(err, "failed to build request")
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx, accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.In("supabase").With("method", method, "path", path).Wrapf(err, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.In("supabase").With("method", method, "path", path).Wrapf(err, "failed to read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return oops.In("supabase").With("method", method, "path", path).Wrapf(err, "failed to decode response")
	}
	return nil
}

func (c *Client) bearer(ctx context.Context, accessToken string) string {
	if accessToken != "" {
		return accessToken
	}
	if p, ok := modelauth.PrincipalFromContext(ctx); ok && p.AccessToken != "" {
		return p.AccessToken
	}
	return c.anonKey
}

var (
	_ auth.Provider = (*Client)(nil)
	_ record.Store  = (*Client)(nil)
)

// Package remote maps the single logical document to exactly one object in
// a user-controlled remote file store.
//
// The store speaks a small authenticated protocol: find an object id by
// well-known name, fetch full content by id, create a named object, and
// overwrite an existing one. Binding layers find-or-create-once identity
// memoization on top of the raw Client so the create path runs at most once
// per session.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer credential for store requests. It is the
// boundary to the external auth collaborator; acquisition and refresh live
// there, not here.
type TokenSource interface {
	// Token returns a valid bearer token, or an error wrapping ErrNoToken
	// when none is available.
	Token(ctx context.Context) (string, error)
}

// Client is the raw protocol client for the remote object store.
// It performs no retries and caches nothing; Binding owns identity state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Logger
}

// NewClient creates a store client for the given base URL.
// If logger is nil, the default logger is used.
func NewClient(baseURL string, tokens TokenSource, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
}

// Find queries the store for an object with the given name and returns the
// first match. ok is false when no object exists. Find never creates
// anything.
func (c *Client) Find(ctx context.Context, name string) (id string, ok bool, err error) {
	reqURL := fmt.Sprintf("%s/files?name=%s", c.baseURL, url.QueryEscape(name))
	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false, &ReadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, &ReadError{Status: resp.StatusCode, Err: fmt.Errorf("find %q rejected", name)}
	}

	var result struct {
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, &ReadError{Status: resp.StatusCode, Err: fmt.Errorf("failed to parse find response: %w", err)}
	}
	if len(result.Files) == 0 {
		return "", false, nil
	}
	return result.Files[0].ID, true, nil
}

// Get fetches the full content of the object with the given id.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/files/%s/content", c.baseURL, url.PathEscape(id))
	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ReadError{Status: resp.StatusCode, Err: fmt.Errorf("get %s rejected", id)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ReadError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read content: %w", err)}
	}
	return content, nil
}

// Create stores a new named object and returns its assigned id.
func (c *Client) Create(ctx context.Context, name string, content []byte) (string, error) {
	reqURL := fmt.Sprintf("%s/files?name=%s", c.baseURL, url.QueryEscape(name))
	resp, err := c.do(ctx, http.MethodPost, reqURL, content)
	if err != nil {
		return "", &WriteError{Op: "create", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &WriteError{Op: "create", Status: resp.StatusCode, Err: fmt.Errorf("create %q rejected", name)}
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &WriteError{Op: "create", Status: resp.StatusCode, Err: fmt.Errorf("failed to parse create response: %w", err)}
	}
	if result.ID == "" {
		return "", &WriteError{Op: "create", Status: resp.StatusCode, Err: fmt.Errorf("store returned no object id")}
	}
	return result.ID, nil
}

// Update overwrites the content of an existing object in place.
func (c *Client) Update(ctx context.Context, id string, content []byte) error {
	reqURL := fmt.Sprintf("%s/files/%s/content", c.baseURL, url.PathEscape(id))
	resp, err := c.do(ctx, http.MethodPut, reqURL, content)
	if err != nil {
		return &WriteError{Op: "update", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &WriteError{Op: "update", Status: resp.StatusCode, Err: fmt.Errorf("update %s rejected", id)}
	}
	return nil
}

// do issues an authenticated request. Token absence surfaces before any
// network traffic happens.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

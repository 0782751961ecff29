//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package client talks to the sales API and keeps the browsing state of a
// dashboard session.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
	"github.com/pgEdge/pgedge-salesdash/pkg/version"
)

// DefaultURL is the API base URL used when none is configured.
const DefaultURL = "http://localhost:3000/api/v1"

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Issues  []filter.Issue
}

func (e *APIError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Path + ": " + is.Message
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Client is an HTTP client for the sales API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.get(ctx, "/ping", "")
	if err != nil {
		return err
	}
	if string(body) != "pong" {
		return fmt.Errorf("unexpected ping response: %q", string(body))
	}
	return nil
}

// GetSales fetches the page of sales matching f.
func (c *Client) GetSales(ctx context.Context, f filter.Filter) (*sales.Response, error) {
	body, err := c.get(ctx, "/sales", f.Encode())
	if err != nil {
		return nil, err
	}

	var resp sales.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode sales response: %w", err)
	}
	return &resp, nil
}

// ExportURL returns the URL of the spreadsheet export for f.
func (c *Client) ExportURL(f filter.Filter) string {
	u := c.baseURL + "/sales/export"
	if q := f.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (c *Client) get(ctx context.Context, path, rawQuery string) ([]byte, error) {
	u := c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	logging.Debug().Str("url", u).Msg("API request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, body)
	}
	return body, nil
}

func decodeError(status int, body []byte) error {
	var e struct {
		Message string         `json:"message"`
		Errors  []filter.Issue `json:"errors"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		apiErr.Message = e.Message
		apiErr.Issues = e.Errors
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}

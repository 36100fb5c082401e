// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package statsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielhkuo/stat-grid/models"
)

const (
	// DefaultBaseURL is where the stats service listens in local development.
	DefaultBaseURL = "http://localhost:5001"

	listPath = "/covid-stats/state-stats"
)

var (
	ErrBaseURL          = errors.New("invalid stats service base URL")
	ErrUnexpectedStatus = errors.New("unexpected status from stats service")
)

// Client talks to the two endpoints of the stats service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient validates baseURL and returns a client. A nil httpClient uses
// a client without a timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// ListURL returns the read URL for a page request.
func (c *Client) ListURL(req models.PageRequest) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("page_size", req.PageSize)
	return c.baseURL + listPath + "?" + q.Encode()
}

// PatchURL returns the update URL for the record identified by (state, date).
func (c *Client) PatchURL(state, date string) string {
	return c.baseURL + listPath + "/" + url.PathEscape(state) + "/" + url.PathEscape(date)
}

// ListStateStats fetches one page of records. The response must be a JSON
// array of objects; each object's key order is preserved.
func (c *Client) ListStateStats(ctx context.Context, req models.PageRequest) ([]models.Record, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ListURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list state stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return nil, fmt.Errorf("list state stats: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var records []models.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode state stats: %w", err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// PatchStateStat sends a single-field update. The response body is not read
// back into any state.
func (c *Client) PatchStateStat(ctx context.Context, req models.PatchRequest) error {
	body, err := json.Marshal(req.Body())
	if err != nil {
		return fmt.Errorf("encode patch body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.PatchURL(req.State, req.Date), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build patch request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("patch state stat: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("patch state stat: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// drain lets the transport reuse the connection
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<20))
}

// Package upstream is the typed HTTP client for the MRM backend. It fetches
// entity rows as loosely-shaped JSON and maps upstream failures onto the
// console's API error type so handlers can surface the backend's detail
// message without crashing.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mrm-console/internal/tableview"
	"mrm-console/pkg/apierror"
)

type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

func NewClient(baseURL string, serviceToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	header := ""
	if strings.TrimSpace(serviceToken) != "" {
		header = "Bearer " + strings.TrimSpace(serviceToken)
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		authHeader: header,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchRows GETs path and decodes the body into rows. Both a bare JSON array
// and the common {"results": [...]} wrapper are accepted.
func (c *Client) FetchRows(ctx context.Context, path string, query url.Values) ([]tableview.Row, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var rows []tableview.Row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped struct {
		Results []tableview.Row `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, apierror.New("UPSTREAM_ERROR", "unexpected upstream response shape", path, http.StatusBadGateway)
	}

	return wrapped.Results, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierror.New("UPSTREAM_UNAVAILABLE", "upstream request failed", err.Error(), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, apierror.New("UPSTREAM_ERROR", "read upstream response", err.Error(), http.StatusBadGateway)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, body, path)
	}

	return body, nil
}

// errorFromResponse carries the upstream status and its human-readable detail
// through to the caller.
func errorFromResponse(status int, body []byte, path string) error {
	detail := path

	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Detail) != "" {
		detail = parsed.Detail
	}

	return apierror.New("UPSTREAM_ERROR", http.StatusText(status), detail, status)
}

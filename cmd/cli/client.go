package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iho/gobudget/internal/adapter/http/dto"
)

// apiClient talks to the budget HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx response from the API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Body.Error, e.Status, e.Body.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.Body.Error, e.Status)
}

// do sends body as JSON and decodes the response into out. Statuses in
// accept are decoded as success even when they are not 2xx.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any, accept ...int) (int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, s := range accept {
		ok = ok || resp.StatusCode == s
	}
	if !ok {
		apiErr := &apiError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, &apiErr.Body); jsonErr != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

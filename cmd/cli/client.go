package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// apiError is a non-2xx answer from the server. Body holds the raw JSON.
type apiError struct {
	Status int
	Body   []byte
}

func (e *apiError) Error() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(e.Body, &payload); err == nil && payload.Error != "" {
		if payload.Message != "" {
			return fmt.Sprintf("%s (%d): %s", payload.Error, e.Status, payload.Message)
		}
		return fmt.Sprintf("%s (%d)", payload.Error, e.Status)
	}

	return fmt.Sprintf("request failed with status %d: %s", e.Status, strings.TrimSpace(string(e.Body)))
}

type apiClient struct {
	baseURL string
	token   string
	owner   string
	http    *http.Client
}

func newClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		token:   opts.token,
		owner:   opts.owner,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

// do sends body as JSON and returns the raw response body. Non-2xx answers
// come back as *apiError.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.owner != "" {
		req.Header.Set("X-Owner-ID", c.owner)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, &apiError{Status: resp.StatusCode, Body: data}
	}

	return data, nil
}

// printJSON pretty-prints a raw JSON document.
func printJSON(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}

	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

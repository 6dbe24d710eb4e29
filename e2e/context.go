// Package e2e runs the Gherkin scenarios under features/ against a running API.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state across the steps of one scenario.
type TestContext struct {
	BaseURL    string
	HTTPClient *http.Client

	lastStatus int
	lastBody   []byte

	// run makes emails unique across scenarios against a shared server.
	run    string
	tokens map[string]string
	values map[string]string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		run:        fmt.Sprintf("%d", time.Now().UnixNano()),
		tokens:     map[string]string{},
		values:     map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.run = fmt.Sprintf("%d", time.Now().UnixNano())
	tc.tokens = map[string]string{}
	tc.values = map[string]string{}
}

func (tc *TestContext) Email(alias string) string {
	return fmt.Sprintf("%s+%s@example.com", alias, tc.run)
}

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, nil)
}

// AuthedRequest sends a request with the bearer token of a registered coach.
func (tc *TestContext) AuthedRequest(alias, method, path string, body any) error {
	token, ok := tc.tokens[alias]
	if !ok {
		return fmt.Errorf("coach %q has not registered", alias)
	}
	return tc.do(method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

func (tc *TestContext) StatusCode() int { return tc.lastStatus }

// GetResponseField reads a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := tc.DecodeResponse(&body); err != nil {
		return nil, err
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) DecodeResponse(dst any) error {
	dec := json.NewDecoder(bytes.NewReader(tc.lastBody))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode response %q: %w", tc.lastBody, err)
	}
	return nil
}

func (tc *TestContext) SetToken(alias, token string) { tc.tokens[alias] = token }

func (tc *TestContext) Save(key, value string) { tc.values[key] = value }

func (tc *TestContext) Saved(key string) string { return tc.values[key] }

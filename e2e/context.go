// Package e2e drives a running kinfolk server through its HTTP API with
// godog scenarios. Set KINFOLK_E2E_URL to the server base URL to run them.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TestContext carries one scenario's client, last response and the
// aliases scenarios use to refer to server-assigned ids.
type TestContext struct {
	BaseURL string
	client  *http.Client

	status  int
	headers http.Header
	body    []byte
	aliases map[string]string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		aliases: make(map[string]string),
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.status = 0
	tc.headers = nil
	tc.body = nil
	tc.aliases = make(map[string]string)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.send(http.MethodPost, path, body, nil)
}

func (tc *TestContext) PUT(path string, body any) error {
	return tc.send(http.MethodPut, path, body, nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.send(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.send(http.MethodDelete, path, nil, nil)
}

// Follow requests an absolute URL returned by the server, keeping only its
// path and query so scenarios work behind any share base URL.
func (tc *TestContext) Follow(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	return tc.GET(u.RequestURI(), nil)
}

func (tc *TestContext) send(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.BaseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.status = resp.StatusCode
	tc.headers = resp.Header
	return nil
}

func (tc *TestContext) Status() int              { return tc.status }
func (tc *TestContext) Header(key string) string { return tc.headers.Get(key) }
func (tc *TestContext) Body() []byte             { return tc.body }

// Remember binds alias to a server id.
func (tc *TestContext) Remember(alias, id string) {
	tc.aliases[alias] = id
}

// ID returns the id bound to alias.
func (tc *TestContext) ID(alias string) (string, error) {
	id, ok := tc.aliases[alias]
	if !ok {
		return "", fmt.Errorf("no person called %q in this scenario", alias)
	}
	return id, nil
}

// Expand replaces {alias} placeholders in a path with remembered ids.
func (tc *TestContext) Expand(path string) string {
	for alias, id := range tc.aliases {
		path = strings.ReplaceAll(path, "{"+alias+"}", url.PathEscape(id))
	}
	return path
}

// Field reads a dotted path such as "person.id" or "children.0.full_name"
// from the last JSON response.
func (tc *TestContext) Field(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.body, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q missing at %q", path, part)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("field %q: bad index %q", path, part)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %q: cannot descend into %T", path, cur)
		}
	}
	return cur, nil
}

// StringField is Field for string values.
func (tc *TestContext) StringField(path string) (string, error) {
	v, err := tc.Field(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not a string", path, v)
	}
	return s, nil
}

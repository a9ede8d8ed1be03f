package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds one order call end to end.
const DefaultTimeout = 10 * time.Second

// Transport posts a signed request body to the exchange. Split from the
// client so order submission can run against a recording transport in
// tests and dry runs.
type Transport interface {
	Post(ctx context.Context, path string, headers map[string]string, body []byte) (json.RawMessage, error)
}

// HTTPTransport talks to the real exchange REST API.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// TransportOption configures HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// NewHTTPTransport creates a transport against the given base URL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Post sends the body to baseURL+path with the given headers. Order calls
// are never retried here: a timed-out submission may still have filled, so
// retry policy belongs to a caller that can first reconcile state.
func (t *HTTPTransport) Post(ctx context.Context, path string, headers map[string]string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return json.RawMessage(respBody), nil
}

// RecordedCall is the last request seen by a MemoryTransport.
type RecordedCall struct {
	Path    string
	Headers map[string]string
	Body    []byte
}

// MemoryTransport records requests and returns a canned response.
type MemoryTransport struct {
	mu       sync.Mutex
	last     *RecordedCall
	Response json.RawMessage
	Err      error
}

// NewMemoryTransport creates a transport that answers every call with an
// empty success payload until Response or Err is set.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{Response: json.RawMessage(`{"code":"0"}`)}
}

// Post records the call and returns the configured response.
func (t *MemoryTransport) Post(_ context.Context, path string, headers map[string]string, body []byte) (json.RawMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &RecordedCall{
		Path:    path,
		Headers: cloneHeaders(headers),
		Body:    append([]byte(nil), body...),
	}
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Response, nil
}

// LastCall returns the most recent request, or nil if none was made.
func (t *MemoryTransport) LastCall() *RecordedCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func cloneHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		out[key] = value
	}
	return out
}

var (
	_ Transport = (*HTTPTransport)(nil)
	_ Transport = (*MemoryTransport)(nil)
)

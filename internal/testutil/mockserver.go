// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil provides common test helpers for bracket-relay
package testutil

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// RecordedRequest is a request as seen by a MockServer.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// MockServer records every request it receives before handing it to its handler.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewMockServer creates a mock server that records requests and then calls handler.
// The server is closed when the test finishes.
func NewMockServer(t *testing.T, handler http.HandlerFunc) *MockServer {
	t.Helper()
	m := &MockServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}

		m.mu.Lock()
		m.requests = append(m.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		m.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// NewGraphQLServer creates a mock server that answers every request with
// status and body.
func NewGraphQLServer(t *testing.T, status int, body string) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Requests returns a copy of the requests received so far.
func (m *MockServer) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// RequestCount returns the number of requests received so far.
func (m *MockServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// RedirectTransport sends every request to a fixed target host while
// remembering the URL the caller asked for. It lets tests exercise clients
// whose endpoint is a constant.
type RedirectTransport struct {
	target *url.URL
	base   *http.Transport

	mu      sync.Mutex
	targets []string
}

// NewRedirectTransport creates a transport that redirects requests to target,
// e.g. a MockServer URL or RefusedAddress.
func NewRedirectTransport(t *testing.T, target string) *RedirectTransport {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("parsing redirect target %q: %v", target, err)
	}

	base := &http.Transport{}
	t.Cleanup(base.CloseIdleConnections)

	return &RedirectTransport{target: u, base: base}
}

// RoundTrip implements http.RoundTripper.
func (rt *RedirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.targets = append(rt.targets, req.URL.String())
	rt.mu.Unlock()

	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = ""

	return rt.base.RoundTrip(out)
}

// Targets returns the URLs requested through the transport, in order.
func (rt *RedirectTransport) Targets() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.targets...)
}

// RefusedAddress returns an http URL on the loopback interface where nothing
// is listening, so connecting to it is refused.
func RefusedAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving a local port: %v", err)
	}
	addr := l.Addr().String()
	if err := l.Close(); err != nil {
		t.Fatalf("releasing local port: %v", err)
	}
	return "http://" + addr
}

// AssertGraphQLRequest validates a GraphQL request structure
func AssertGraphQLRequest(t *testing.T, r RecordedRequest) {
	t.Helper()
	if r.Path != "/gql/alpha" {
		t.Errorf("Unexpected path: %s", r.Path)
	}
	if r.Method != http.MethodPost {
		t.Errorf("Expected POST method, got: %s", r.Method)
	}
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type: application/json, got: %s", ct)
	}
}

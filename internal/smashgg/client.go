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

package smashgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	relayerrors "github.com/sirseerhq/bracket-relay/internal/errors"
	"github.com/sirseerhq/bracket-relay/internal/httperror"
	"github.com/sirseerhq/bracket-relay/internal/log"
)

// Endpoint is the smash.gg GraphQL endpoint. It is not configurable.
const Endpoint = "https://api.smash.gg/gql/alpha"

// graphqlRequest is the JSON body of a query. operationName and variables
// are deliberately not sent.
type graphqlRequest struct {
	Query string `json:"query"`
}

// Client sends authenticated GraphQL queries to Endpoint.
type Client struct {
	httpClient *http.Client
}

type clientOptions struct {
	transport http.RoundTripper
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTransport replaces the base transport that carries requests after the
// authentication headers are added. Defaults to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient creates a client that presents token as a bearer credential.
// The token is held by the transport and never logged.
func NewClient(token string, opts ...Option) *Client {
	o := clientOptions{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &authTransport{
				token: token,
				base:  o.transport,
			},
			// Redirects are returned to the caller, never followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Query POSTs query to Endpoint and returns the raw response. The caller
// must drain and close resp.Body. Exactly one request is sent: redirects are
// not followed and a 3xx response is returned as is.
//
// Query runs inside a "query_api" span and logs one "response" event once
// the exchange completes, whatever its outcome. Errors wrap
// errors.ErrRequestFailed:
//   - transport failures (DNS, connect, TLS, I/O) wrap the *url.Error from net/http
//   - responses with status 400 or above wrap a *StatusError; their body is closed
func (c *Client) Query(ctx context.Context, query string) (resp *http.Response, err error) {
	ctx, span := log.Start(ctx, "query_api", zapcore.InfoLevel, zap.Int("query_bytes", len(query)))
	defer func() { span.End(err) }()

	body, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode query: %w", relayerrors.ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", relayerrors.ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = c.httpClient.Do(req)
	if err != nil {
		span.Logger().Info("response",
			zap.Error(err),
			zap.String("cause", string(httperror.Classify(err))))
		return nil, fmt.Errorf("%w: %w", relayerrors.ErrRequestFailed, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := newStatusError(resp)
		span.Logger().Info("response",
			zap.Object("response", responseObject{resp}),
			zap.Error(statusErr),
			zap.String("cause", string(httperror.Classify(statusErr))))
		return nil, fmt.Errorf("%w: %w", relayerrors.ErrRequestFailed, statusErr)
	}

	span.Logger().Info("response", zap.Object("response", responseObject{resp}))
	return resp, nil
}

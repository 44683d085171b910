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
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// sensitiveHeaders never have their values logged.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// StatusError reports a response whose status is 400 or above.
type StatusError struct {
	StatusCode int
	Status     string
	// Body holds at most the first 512 bytes of the response body.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status code %d", Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status code %d: %s", Endpoint, e.StatusCode, e.Body)
}

// HTTPStatusCode implements httperror.StatusCoder.
func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// newStatusError captures the start of resp's body and closes it.
func newStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	// Drain the rest so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

// responseObject logs the parts of a response that are useful to an operator.
type responseObject struct {
	*http.Response
}

func (r responseObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("status", r.Status)
	enc.AddInt("status_code", r.StatusCode)
	enc.AddString("proto", r.Proto)
	enc.AddInt64("content_length", r.ContentLength)
	return enc.AddObject("headers", headerObject(r.Header))
}

type headerObject http.Header

func (h headerObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if sensitiveHeaders[http.CanonicalHeaderKey(k)] {
			enc.AddString(k, "[REDACTED]")
			continue
		}
		enc.AddString(k, strings.Join(h[k], ", "))
	}
	return nil
}

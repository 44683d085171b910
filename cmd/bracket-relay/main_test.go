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

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	relayerrors "github.com/sirseerhq/bracket-relay/internal/errors"
	"github.com/sirseerhq/bracket-relay/internal/httperror"
	"github.com/sirseerhq/bracket-relay/internal/log"
	"github.com/sirseerhq/bracket-relay/internal/smashgg"
	"github.com/sirseerhq/bracket-relay/internal/testutil"
	"github.com/sirseerhq/bracket-relay/pkg/version"
)

// execute runs the root command in-process with its log output captured.
func execute(t *testing.T, transport http.RoundTripper, args ...string) (string, error) {
	t.Helper()

	var logs bytes.Buffer
	logger, err := log.New(log.WithOutput(&logs), log.WithLevel(log.TraceLevel))
	require.NoError(t, err)

	cmd := newRootCommand(transport)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err = cmd.ExecuteContext(log.NewContext(context.Background(), logger))
	_ = logger.Sync()
	return logs.String(), err
}

func withQuery(t *testing.T, q string) {
	t.Helper()
	prev := tournamentQuery
	tournamentQuery = q
	t.Cleanup(func() { tournamentQuery = prev })
}

func unsetToken(t *testing.T) {
	t.Helper()
	t.Setenv("GRAPHQL_API_TOKEN", "")
	require.NoError(t, os.Unsetenv("GRAPHQL_API_TOKEN"))
}

func TestHappyPath(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "abc123")
	withQuery(t, "{ __typename }")

	server := testutil.NewGraphQLServer(t, http.StatusOK, `{"data":{"__typename":"Query"}}`)
	rt := testutil.NewRedirectTransport(t, server.URL)

	_, err := execute(t, rt)
	require.NoError(t, err)
	assert.Equal(t, 0, mapErrorToExitCode(err))

	assert.Equal(t, []string{smashgg.Endpoint}, rt.Targets())
	requests := server.Requests()
	require.Len(t, requests, 1)
	testutil.AssertGraphQLRequest(t, requests[0])
	assert.Equal(t, "Bearer abc123", requests[0].Header.Get("Authorization"))
	assert.Equal(t, `{"query":"{ __typename }"}`, string(requests[0].Body))
}

func TestMissingToken(t *testing.T) {
	unsetToken(t)

	server := testutil.NewGraphQLServer(t, http.StatusOK, `{}`)
	rt := testutil.NewRedirectTransport(t, server.URL)

	_, err := execute(t, rt)
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrMissingVariables)
	assert.Contains(t, err.Error(), "GRAPHQL_API_TOKEN")
	assert.Equal(t, 2, mapErrorToExitCode(err))

	assert.Empty(t, rt.Targets(), "no request may be attempted without a token")
	assert.Equal(t, 0, server.RequestCount())
}

func TestEmptyToken(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "")
	rt := testutil.NewRedirectTransport(t, testutil.RefusedAddress(t))

	_, err := execute(t, rt)
	require.ErrorIs(t, err, relayerrors.ErrMissingVariables)
	assert.Contains(t, err.Error(), "GRAPHQL_API_TOKEN is set but empty")
	assert.Empty(t, rt.Targets())
}

func TestNetworkFailure(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "abc123")
	rt := testutil.NewRedirectTransport(t, testutil.RefusedAddress(t))

	_, err := execute(t, rt)
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrRequestFailed)
	assert.Contains(t, err.Error(), "request to API failed")
	assert.Equal(t, httperror.CauseConnectionRefused, httperror.Classify(err))
	assert.Equal(t, 3, mapErrorToExitCode(err))
	assert.Len(t, rt.Targets(), 1, "exactly one connection attempt")
}

func TestServerErrorStatus(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "abc123")
	server := testutil.NewGraphQLServer(t, http.StatusInternalServerError, "internal")
	rt := testutil.NewRedirectTransport(t, server.URL)

	_, err := execute(t, rt)
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrRequestFailed)
	assert.Equal(t, 3, mapErrorToExitCode(err))

	var statusErr *smashgg.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "internal", statusErr.Body)

	assert.Equal(t, 1, server.RequestCount())
	assert.Len(t, rt.Targets(), 1)
}

func TestUnicodeToken(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "tök✓")
	server := testutil.NewGraphQLServer(t, http.StatusOK, `{}`)

	_, err := execute(t, testutil.NewRedirectTransport(t, server.URL))
	require.NoError(t, err)

	got := server.Requests()[0].Header.Get("Authorization")
	assert.Equal(t, []byte("Bearer tök✓"), []byte(got))
}

func TestTokenNeverLogged(t *testing.T) {
	const token = "tok-5e3b8f2a-never-log-me"

	tests := []struct {
		name   string
		status int
	}{
		{"success", http.StatusOK},
		{"error status", http.StatusInternalServerError},
		{"unauthorized", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GRAPHQL_API_TOKEN", token)
			server := testutil.NewGraphQLServer(t, tt.status, `{"data":null}`)

			output, _ := execute(t, testutil.NewRedirectTransport(t, server.URL))

			assert.NotEmpty(t, output)
			assert.Contains(t, output, "got config")
			assert.Contains(t, output, "response")
			assert.NotContains(t, output, token)
		})
	}
}

func TestLogOutputReadable(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "abc123")
	server := testutil.NewGraphQLServer(t, http.StatusOK, `{}`)

	output, err := execute(t, testutil.NewRedirectTransport(t, server.URL))
	require.NoError(t, err)

	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "TRACE", "run span is logged below INFO")
	assert.Contains(t, output, "run:query_api")
}

func TestLoadDotEnv(t *testing.T) {
	const secret = "dotenv-secret-7f1e"

	tests := []struct {
		name     string
		contents *string
		wantWarn bool
	}{
		{name: "missing file"},
		{name: "valid file", contents: ptr("BRACKET_RELAY_TEST_VAR=loaded\n")},
		{name: "malformed file", contents: ptr(`GRAPHQL_API_TOKEN="` + secret + "\n"), wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BRACKET_RELAY_TEST_VAR", "")
			require.NoError(t, os.Unsetenv("BRACKET_RELAY_TEST_VAR"))

			path := filepath.Join(t.TempDir(), ".env")
			if tt.contents != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.contents), 0o600))
			}

			core, logs := observer.New(log.TraceLevel)
			loadDotEnv(zap.New(core), path)

			if !tt.wantWarn {
				assert.Zero(t, logs.Len())
				return
			}
			warnings := logs.FilterMessage(".env file not loaded").All()
			require.Len(t, warnings, 1)
			assert.Equal(t, path, warnings[0].ContextMap()["file"])
			for _, e := range logs.All() {
				assert.NotContains(t, e.Message, secret)
				assert.NotContains(t, fmt.Sprint(e.ContextMap()), secret)
			}
		})
	}
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	t.Setenv("BRACKET_RELAY_TEST_VAR", "from-env")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BRACKET_RELAY_TEST_VAR=from-file\n"), 0o600))

	loadDotEnv(zap.NewNop(), path)

	assert.Equal(t, "from-env", os.Getenv("BRACKET_RELAY_TEST_VAR"))
}

func ptr(s string) *string { return &s }

func TestSpanDiscipline(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) http.RoundTripper
		wantSpans []string
		wantErr   bool
	}{
		{
			name: "success",
			setup: func(t *testing.T) http.RoundTripper {
				t.Setenv("GRAPHQL_API_TOKEN", "abc123")
				server := testutil.NewGraphQLServer(t, http.StatusOK, `{}`)
				return testutil.NewRedirectTransport(t, server.URL)
			},
			wantSpans: []string{"run", "run:load_config", "run:query_api"},
		},
		{
			name: "missing token",
			setup: func(t *testing.T) http.RoundTripper {
				unsetToken(t)
				return testutil.NewRedirectTransport(t, testutil.RefusedAddress(t))
			},
			wantSpans: []string{"run", "run:load_config"},
			wantErr:   true,
		},
		{
			name: "network failure",
			setup: func(t *testing.T) http.RoundTripper {
				t.Setenv("GRAPHQL_API_TOKEN", "abc123")
				return testutil.NewRedirectTransport(t, testutil.RefusedAddress(t))
			},
			wantSpans: []string{"run", "run:load_config", "run:query_api"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(log.TraceLevel)
			ctx := log.NewContext(context.Background(), zap.New(core))

			err := run(ctx, tt.setup(t))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			enters := countBySpan(logs.FilterMessage("enter").All())
			exits := countBySpan(logs.FilterMessage("exit").All())
			assert.Len(t, enters, len(tt.wantSpans))
			for _, span := range tt.wantSpans {
				assert.Equal(t, 1, enters[span], "enter events for %s", span)
				assert.Equal(t, 1, exits[span], "exit events for %s", span)
			}
			assert.Equal(t, enters, exits)
		})
	}
}

func countBySpan(entries []observer.LoggedEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[fmt.Sprint(e.ContextMap()["span"])]++
	}
	return counts
}

func TestRejectsArguments(t *testing.T) {
	t.Setenv("GRAPHQL_API_TOKEN", "abc123")
	rt := testutil.NewRedirectTransport(t, testutil.RefusedAddress(t))

	_, err := execute(t, rt, "tournaments")
	require.Error(t, err)
	assert.Equal(t, 1, mapErrorToExitCode(err))
	assert.Empty(t, rt.Targets())
}

func TestVersionFlag(t *testing.T) {
	cmd := newRootCommand(http.DefaultTransport)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), version.Version)
}

func TestEmbeddedQueryIsValidGraphQL(t *testing.T) {
	require.NotEmpty(t, strings.TrimSpace(tournamentQuery))

	doc, err := parser.ParseQuery(&ast.Source{Name: "query.graphql", Input: tournamentQuery})
	require.Nil(t, err)
	require.Len(t, doc.Operations, 1)
	assert.Equal(t, ast.Query, doc.Operations[0].Operation)
	assert.Equal(t, "UpcomingTournaments", doc.Operations[0].Name)
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"missing variables", fmt.Errorf("%w: GRAPHQL_API_TOKEN is not set", relayerrors.ErrMissingVariables), 2},
		{"request failed", fmt.Errorf("%w: connection refused", relayerrors.ErrRequestFailed), 3},
		{"status error", fmt.Errorf("%w: %w", relayerrors.ErrRequestFailed, &smashgg.StatusError{StatusCode: 500}), 3},
		{"other", errors.New("unknown command"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToExitCode(tt.err); got != tt.want {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

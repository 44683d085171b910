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
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/bracket-relay/internal/config"
	relayerrors "github.com/sirseerhq/bracket-relay/internal/errors"
	"github.com/sirseerhq/bracket-relay/internal/log"
	"github.com/sirseerhq/bracket-relay/internal/smashgg"
	"github.com/sirseerhq/bracket-relay/pkg/version"
)

//go:embed query.graphql
var tournamentQuery string

func newRootCommand(transport http.RoundTripper) *cobra.Command {
	return &cobra.Command{
		Use:   "bracket-relay",
		Short: "Pull tournament information from the smash.gg GraphQL API",
		Long: `bracket-relay queries the smash.gg GraphQL API for upcoming tournaments.

Authentication is required via the GRAPHQL_API_TOKEN environment variable.
A .env file in the working directory is loaded first if present.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), transport)
		},
	}
}

// run loads the configuration and sends the embedded tournament query once.
func run(ctx context.Context, transport http.RoundTripper) (err error) {
	ctx, span := log.Start(ctx, "run", log.TraceLevel)
	defer func() { span.End(err) }()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	client := smashgg.NewClient(cfg.GraphQLAPIToken, smashgg.WithTransport(transport))
	resp, err := client.Query(ctx, tournamentQuery)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Nothing consumes the tournament data yet; drain it so the connection
	// is released cleanly.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", relayerrors.ErrRequestFailed, err)
	}

	return nil
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, relayerrors.ErrMissingVariables) {
		return 2 // Configuration errors
	}

	if errors.Is(err, relayerrors.ErrRequestFailed) {
		return 3 // Network and API errors
	}

	return 1 // General error
}

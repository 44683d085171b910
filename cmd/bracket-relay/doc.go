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

// Package main implements the bracket-relay command-line interface.
// bracket-relay pulls upcoming tournament information from the smash.gg
// GraphQL API using the query embedded from query.graphql.
//
// The command takes no arguments and no flags. The API token is read from
// the GRAPHQL_API_TOKEN environment variable; a .env file in the working
// directory is loaded first if present.
//
// Usage:
//
//	export GRAPHQL_API_TOKEN=your_token
//	bracket-relay
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Configuration error (missing or invalid environment variable)
//   - 3: Request error (network failure or error status from the API)
package main

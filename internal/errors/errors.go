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

// Package errors defines sentinel errors for consistent error handling across the application.
// Each sentinel names one failure kind and maps to a specific exit code in the CLI.
//
// Callers wrap the underlying diagnostic together with the sentinel so that both
// the kind and the cause survive:
//
//	return fmt.Errorf("%w: %w", errors.ErrRequestFailed, err)
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrMissingVariables indicates the configuration could not be assembled
	// from the process environment.
	// Maps to exit code 2.
	ErrMissingVariables = errors.New("failed to load environment variable")

	// ErrRequestFailed indicates the HTTP exchange with the GraphQL endpoint
	// did not yield a usable response.
	// Maps to exit code 3.
	ErrRequestFailed = errors.New("request to API failed")
)

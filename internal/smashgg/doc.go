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

// Package smashgg sends GraphQL queries to the smash.gg tournament API.
//
// The client performs exactly one authenticated POST per call and hands the
// raw *http.Response back to the caller, who owns decoding the body and must
// close it. There are no retries and no client-side timeout; responses with
// an error status (4xx/5xx) are reported as errors.ErrRequestFailed wrapping
// a *StatusError.
//
// Basic usage:
//
//	client := smashgg.NewClient(cfg.GraphQLAPIToken)
//	resp, err := client.Query(ctx, "{ __typename }")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body.Close()
package smashgg

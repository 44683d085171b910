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

package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// Config holds the credentials needed to query the tournament API.
// It is loaded once at startup and never modified afterwards.
//
// Each field is read from the environment variable named by the uppercased
// config tag, so GraphQLAPIToken comes from GRAPHQL_API_TOKEN.
type Config struct {
	// GraphQLAPIToken is presented to the GraphQL endpoint as a bearer token.
	GraphQLAPIToken string `config:"graphql_api_token" validate:"required"`
}

// String keeps the token out of formatted output.
func (c *Config) String() string {
	return fmt.Sprintf("Config{GraphQLAPIToken: %s}", redactedValue(c.GraphQLAPIToken))
}

// GoString keeps the token out of %#v output.
func (c *Config) GoString() string {
	return c.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler without the token value.
func (c *Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("graphql_api_token", redactedValue(c.GraphQLAPIToken))
	return nil
}

func redactedValue(v string) string {
	if v == "" {
		return `""`
	}
	return redacted
}

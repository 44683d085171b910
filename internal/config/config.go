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

// Package config materializes the typed bracket-relay configuration from the
// process environment.
//
// Fields of Config declare their name with a `config` struct tag; the
// environment variable holding a field is that name uppercased. Loading fails
// fast: every variable that is unset, empty where a value is required, or not
// coercible to the field's type is reported in a single error wrapping
// errors.ErrMissingVariables. Unknown variables are ignored.
package config

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	relayerrors "github.com/sirseerhq/bracket-relay/internal/errors"
	"github.com/sirseerhq/bracket-relay/internal/log"
)

const tagName = "config"

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Load reads the configuration from the process environment. It runs inside
// a "load_config" span and logs "got config" on success. The token itself is
// never logged.
func Load(ctx context.Context) (cfg *Config, err error) {
	_, span := log.Start(ctx, "load_config", zapcore.InfoLevel)
	defer func() { span.End(err) }()

	cfg, err = FromLookup(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	span.Logger().Info("got config", zap.Object("config", cfg))
	return cfg, nil
}

// FromLookup builds a Config from the variables visible through lookup.
func FromLookup(lookup LookupEnvFunc) (*Config, error) {
	cfg := &Config{}

	unset, err := populate(cfg, lookup)
	if verr := validate(cfg, unset); verr != nil {
		err = multierr.Append(err, verr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", relayerrors.ErrMissingVariables, err)
	}

	return cfg, nil
}

// envName returns the environment variable that feeds the named Config field.
func envName(field reflect.StructField) string {
	name := field.Tag.Get(tagName)
	if name == "" {
		name = field.Name
	}
	return strings.ToUpper(name)
}

// populate copies environment values into the tagged fields of cfg and
// returns the set of variables that were not present at all.
func populate(cfg *Config, lookup LookupEnvFunc) (map[string]bool, error) {
	var errs error
	unset := make(map[string]bool)

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := envName(field)
		raw, ok := lookup(name)
		if !ok {
			unset[name] = true
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("environment variable %s: %w", name, err))
		}
	}

	return unset, errs
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("cannot parse %q as bool", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as integer", raw)
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

// validate applies the `validate` tags and rewrites violations in terms of
// environment variables rather than Go field names.
func validate(cfg *Config, unset map[string]bool) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	t := reflect.TypeOf(cfg).Elem()
	var errs error
	for _, fe := range fieldErrs {
		field, found := t.FieldByName(fe.StructField())
		if !found {
			errs = multierr.Append(errs, fe)
			continue
		}

		name := envName(field)
		switch {
		case unset[name]:
			errs = multierr.Append(errs, fmt.Errorf("environment variable %s is not set", name))
		case fe.Tag() == "required":
			errs = multierr.Append(errs, fmt.Errorf("environment variable %s is set but empty", name))
		default:
			errs = multierr.Append(errs, fmt.Errorf("environment variable %s failed %q validation", name, fe.Tag()))
		}
	}
	return errs
}

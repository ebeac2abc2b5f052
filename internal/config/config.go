// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package config loads MissionBoard configuration from YAML files and flags.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the runtime configuration for the MissionBoard core.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// LogFormat is "json" or "text".
	LogFormat string

	// ObservabilityAddr is the listen address for /metrics and health probes.
	ObservabilityAddr string

	// JWTSecret signs issued identity tokens.
	JWTSecret string

	// TokenTTL is the lifetime of issued identity tokens.
	TokenTTL time.Duration
}

// Defaults applied before any file or flag values.
const (
	defaultLogFormat         = "json"
	defaultObservabilityAddr = "127.0.0.1:9100"
	defaultTokenTTL          = 24 * time.Hour
)

// Load reads configuration from an optional YAML file and an optional flag set.
// Flags override file values, which override defaults. An empty path skips the
// file provider entirely.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		DatabaseURL:       k.String("database.url"),
		LogFormat:         defaultLogFormat,
		ObservabilityAddr: defaultObservabilityAddr,
		JWTSecret:         k.String("auth.jwt_secret"),
		TokenTTL:          defaultTokenTTL,
	}
	if v := k.String("log.format"); v != "" {
		cfg.LogFormat = v
	}
	if v := k.String("observability.addr"); v != "" {
		cfg.ObservabilityAddr = v
	}
	if v := k.Duration("auth.token_ttl"); v > 0 {
		cfg.TokenTTL = v
	}

	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("log_format", c.LogFormat).
			Errorf("log.format must be json or text")
	}
	return nil
}

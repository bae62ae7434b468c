// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/lumenmud/lumenmud/internal/xdg"
)

// SMTP holds outbound mail relay settings. An empty Host disables real
// mail delivery; validation messages are logged instead.
type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	From     string `koanf:"from"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the telnet listen address.
	ListenAddr string `koanf:"listen_addr"`

	// MetricsAddr is the observability HTTP address; empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// GameName appears in banners and mail subjects.
	GameName string `koanf:"game_name"`

	LogFormat string `koanf:"log_format"`
	LogLevel  string `koanf:"log_level"`

	SMTP SMTP `koanf:"smtp"`
}

// defaults applied before any file or flag overrides.
var defaults = map[string]any{
	"listen_addr":  ":4000",
	"metrics_addr": "127.0.0.1:9100",
	"game_name":    "LumenMUD",
	"log_format":   "json",
	"log_level":    "info",
	"smtp.port":    587,
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// Load builds the configuration. path may be empty, in which case the
// default location is consulted and silently skipped when absent; an
// explicit path that cannot be read is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrapf(err, "loading config file")
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "loading flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can actually run a server.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return oops.Code("CONFIG_INVALID").Errorf("smtp.from is required when smtp.host is set")
	}
	return nil
}

// MailEnabled reports whether a real SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}

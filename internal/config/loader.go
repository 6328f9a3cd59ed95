package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/scoring"
)

// Environment variable names.
const (
	EnvPrefix     = "ATTRIB_"
	EnvConfigPath = "ATTRIB_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATTRIB_CONFIG is set
//  3. env (prefix ATTRIB_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := fillProfiles(k); err != nil {
		return nil, fmt.Errorf("%w: profiles: %w", ErrLoadConfig, err)
	}

	// ATTRIB_ESPN_RPS -> espn_rps. Underscores are kept to match the
	// koanf tags; nested keys (inputs, profiles) come from the file only.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fillProfiles sets every profile weight the file left out to its built-in
// value, so a file profile may name only the fields it changes. Sports
// without a built-in profile start from the shared weights.
func fillProfiles(k *koanf.Koanf) error {
	sports := make(map[string]struct{})
	for sport := range scoring.DefaultProfiles() {
		sports[string(sport)] = struct{}{}
	}
	for _, sport := range k.MapKeys("profiles") {
		sports[sport] = struct{}{}
	}

	for sport := range sports {
		defaults := scoring.DefaultProfile(model.Sport(strings.ToLower(sport)))
		for field, v := range profileFields(defaults) {
			path := "profiles." + sport + "." + field
			if k.Exists(path) {
				continue
			}
			if err := k.Set(path, v); err != nil {
				return err
			}
		}
	}
	return nil
}

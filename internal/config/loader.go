package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "TACTILE_"
	envConfig  = "TACTILE_CONFIG"
	keyDivider = "."
)

// Sections whose env keys are split into nested koanf paths.
var sections = []string{"sensor", "haptic"} //nolint:gochecknoglobals // fixed list

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TACTILE_CONFIG is set
//  3. env (prefix TACTILE_)
func Load(_ context.Context) (*Config, error) {
	cfg := New()

	k := koanf.New(keyDivider)

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Join(ErrLoadConfig, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, keyDivider, envKey), nil); err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps TACTILE_QUEUE_SIZE -> queue_size and
// TACTILE_SENSOR_CLIENT_ID -> sensor.client_id.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "config" {
		return ""
	}
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(s, sec+"_"); ok {
			return sec + keyDivider + rest
		}
	}
	return s
}

// Package config defines service configuration structures and loading hooks.
//
// Values are layered as defaults, then an optional YAML file, then
// TACTILE_ environment variables. Nested sections use an underscore after
// the section name, e.g. TACTILE_SENSOR_BROKER maps to sensor.broker.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
)

// Renderer names accepted in haptic.renderer.
const (
	RendererLog       = "log"
	RendererMQTT      = "mqtt"
	RendererWebSocket = "websocket"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory sample queue.
	QueueSize int `koanf:"queue_size"`

	// AutoStart starts the engine once the service is up.
	AutoStart bool `koanf:"auto_start"`

	// Cooldown windows in milliseconds. Zero keeps the built-in value.
	DefaultCooldownMS int `koanf:"default_cooldown_ms"`
	TapCooldownMS     int `koanf:"tap_cooldown_ms"`
	FlipCooldownMS    int `koanf:"flip_cooldown_ms"`

	// MaxClockSkewMS bounds how far a sample timestamp may run ahead of
	// the service clock before the clock is used instead. Zero keeps the
	// built-in value.
	MaxClockSkewMS int `koanf:"max_clock_skew_ms"`

	Sensor SensorConfig `koanf:"sensor"`
	Haptic HapticConfig `koanf:"haptic"`

	// Mappings are registered in order before the engine starts.
	Mappings []MappingConfig `koanf:"mappings"`
}

// SensorConfig describes the MQTT motion source.
type SensorConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Broker   string `koanf:"broker"`
	Topic    string `koanf:"topic"`
	ClientID string `koanf:"client_id"`
}

// HapticConfig selects and configures the haptic renderer.
type HapticConfig struct {
	// Renderer is a comma separated list of log, mqtt and websocket.
	// Every listed renderer plays each effect.
	Renderer string `koanf:"renderer"`
	Broker   string `koanf:"broker"`
	Topic    string `koanf:"topic"`
	ClientID string `koanf:"client_id"`

	// RequireClient fails websocket playback while no client is attached.
	RequireClient bool `koanf:"require_client"`
	// AllowedOrigins limits browser websocket clients. Empty allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Renderers returns the normalized renderer names, defaulting to log.
func (h HapticConfig) Renderers() []string {
	var names []string
	for _, name := range strings.Split(h.Renderer, ",") {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []string{RendererLog}
	}
	return names
}

// MappingConfig is one gesture to effect binding.
type MappingConfig struct {
	Gesture gesture.Definition `koanf:"gesture"`
	Effect  haptic.Definition  `koanf:"effect"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		Addr:      ":9080",
		QueueSize: 1024,
		AutoStart: true,
		Sensor: SensorConfig{
			Broker:   "tcp://localhost:1883",
			Topic:    "tactile/motion",
			ClientID: "tactile-sensor",
		},
		Haptic: HapticConfig{
			Renderer: RendererLog,
			Broker:   "tcp://localhost:1883",
			Topic:    "tactile/haptics",
			ClientID: "tactile-haptics",
		},
	}
}

// DefaultCooldown returns the configured fallback window, zero if unset.
func (c *Config) DefaultCooldown() time.Duration {
	return time.Duration(c.DefaultCooldownMS) * time.Millisecond
}

// TapCooldown returns the configured tap window, zero if unset.
func (c *Config) TapCooldown() time.Duration {
	return time.Duration(c.TapCooldownMS) * time.Millisecond
}

// FlipCooldown returns the configured flip window, zero if unset.
func (c *Config) FlipCooldown() time.Duration {
	return time.Duration(c.FlipCooldownMS) * time.Millisecond
}

// MaxClockSkew returns the configured skew bound, zero if unset.
func (c *Config) MaxClockSkew() time.Duration {
	return time.Duration(c.MaxClockSkewMS) * time.Millisecond
}

// Validate checks the values Load cannot fix up.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.DefaultCooldownMS < 0 || c.TapCooldownMS < 0 || c.FlipCooldownMS < 0 || c.MaxClockSkewMS < 0 {
		return fmt.Errorf("%w: cooldowns and clock skew must not be negative", ErrInvalidConfig)
	}
	if c.Sensor.Enabled && (c.Sensor.Broker == "" || c.Sensor.Topic == "") {
		return fmt.Errorf("%w: sensor needs broker and topic", ErrInvalidConfig)
	}

	seen := make(map[string]bool)
	for _, name := range c.Haptic.Renderers() {
		if seen[name] {
			return fmt.Errorf("%w: renderer %q listed twice", ErrInvalidConfig, name)
		}
		seen[name] = true

		switch name {
		case RendererLog, RendererWebSocket:
		case RendererMQTT:
			if c.Haptic.Broker == "" || c.Haptic.Topic == "" {
				return fmt.Errorf("%w: mqtt renderer needs broker and topic", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, name)
		}
	}

	if _, err := c.ModelMappings(); err != nil {
		return err
	}
	return nil
}

// UniqueClientID appends a short random suffix to base so that several
// instances sharing a broker do not evict each other's sessions.
func UniqueClientID(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// ModelMappings converts the configured bindings into domain mappings.
func (c *Config) ModelMappings() ([]model.Mapping, error) {
	out := make([]model.Mapping, 0, len(c.Mappings))
	for i, mc := range c.Mappings {
		g, err := mc.Gesture.Spec()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w: mappings[%d]", ErrInvalidConfig, ErrInvalidMapping, i), err)
		}
		e, err := mc.Effect.Effect()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w: mappings[%d]", ErrInvalidConfig, ErrInvalidMapping, i), err)
		}
		out = append(out, model.Mapping{Gesture: g, Effect: e})
	}
	return out, nil
}

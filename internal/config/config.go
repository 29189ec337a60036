// Package config loads framecap settings from a TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override, e.g. FRAMECAP_SCENE_WIDTH.
const EnvPrefix = "FRAMECAP_"

// Config is the complete framecap configuration.
type Config struct {
	Scene   SceneConfig   `toml:"scene"`
	Capture CaptureConfig `toml:"capture"`
	GPU     GPUConfig     `toml:"gpu"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

// SceneConfig holds the logical scene dimensions.
type SceneConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// CaptureConfig controls the capture loop.
type CaptureConfig struct {
	Frames    int    `toml:"frames"`
	Interval  string `toml:"interval"`
	Extension string `toml:"extension"`
}

// GPUConfig selects the GPU backend. An empty backend renders on the CPU.
type GPUConfig struct {
	Backend string `toml:"backend"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scene:   SceneConfig{Width: 1280, Height: 720},
		Capture: CaptureConfig{Frames: 1, Interval: "0s", Extension: "png"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Scene.Width == 0 || c.Scene.Height == 0 {
		errs = append(errs, fmt.Errorf("scene dimensions must be positive, got %dx%d", c.Scene.Width, c.Scene.Height))
	}
	if c.Capture.Frames < 0 {
		errs = append(errs, fmt.Errorf("capture.frames must not be negative, got %d", c.Capture.Frames))
	}
	switch c.GPU.Backend {
	case "", "noop", "vulkan":
	default:
		errs = append(errs, fmt.Errorf("unknown gpu.backend %q", c.GPU.Backend))
	}
	return errors.Join(errs...)
}

// Load reads the TOML file at path on top of Default, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse TOML config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides cfg with FRAMECAP_* variables read through getenv.
func applyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	setUint := func(key string, dst *uint32) {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = uint32(n)
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setUint("SCENE_WIDTH", &cfg.Scene.Width)
	setUint("SCENE_HEIGHT", &cfg.Scene.Height)
	setInt("CAPTURE_FRAMES", &cfg.Capture.Frames)
	setString("CAPTURE_INTERVAL", &cfg.Capture.Interval)
	setString("CAPTURE_EXTENSION", &cfg.Capture.Extension)
	setString("GPU_BACKEND", &cfg.GPU.Backend)
	setString("LOGGING_LEVEL", &cfg.Logging.Level)
	setString("LOGGING_FORMAT", &cfg.Logging.Format)
	setString("METRICS_ADDR", &cfg.Metrics.Addr)
	return errors.Join(errs...)
}

// Marshal encodes cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

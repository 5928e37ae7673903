// Package config loads runtime settings for the electrospin CLI and HTTP
// server from the environment and an optional .env file.
//
// The engines never read configuration: every parameter reaches them as an
// explicit argument. Only the presentation shells consult Config.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvLogLevel          = "ELECTROSPIN_LOG_LEVEL"
	EnvLogFormat         = "ELECTROSPIN_LOG_FORMAT"
	EnvAddr              = "ELECTROSPIN_ADDR"
	EnvGinMode           = "ELECTROSPIN_GIN_MODE"
	EnvSweepResolution   = "ELECTROSPIN_SWEEP_RESOLUTION"
	EnvSurfaceResolution = "ELECTROSPIN_SURFACE_RESOLUTION"
	EnvCenterPoints      = "ELECTROSPIN_CENTER_POINTS"
	EnvModelCacheSize    = "ELECTROSPIN_MODEL_CACHE_SIZE"
	EnvMaxUploadBytes    = "ELECTROSPIN_MAX_UPLOAD_BYTES"
)

// Config holds the process settings.
type Config struct {
	LogLevel  string
	LogFormat string

	// Server
	Addr           string
	GinMode        string
	ModelCacheSize int
	MaxUploadBytes int64

	// Engine defaults, overridable per request or flag.
	SweepResolution   int
	SurfaceResolution int
	CenterPoints      int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:          "info",
		LogFormat:         log.FormatConsole,
		Addr:              ":8080",
		GinMode:           "release",
		ModelCacheSize:    64,
		MaxUploadBytes:    32 << 20,
		SweepResolution:   500,
		SurfaceResolution: 50,
		CenterPoints:      3,
	}
}

// Load reads the given .env files (".env" when none are named), then the
// environment, on top of Default. Missing .env files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}
	return FromEnv()
}

// FromEnv applies environment overrides to Default and validates the result.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault(EnvLogFormat, cfg.LogFormat)
	cfg.Addr = getEnvOrDefault(EnvAddr, cfg.Addr)
	cfg.GinMode = getEnvOrDefault(EnvGinMode, cfg.GinMode)

	var err error
	if cfg.SweepResolution, err = getEnvInt(EnvSweepResolution, cfg.SweepResolution); err != nil {
		return Config{}, err
	}
	if cfg.SurfaceResolution, err = getEnvInt(EnvSurfaceResolution, cfg.SurfaceResolution); err != nil {
		return Config{}, err
	}
	if cfg.CenterPoints, err = getEnvInt(EnvCenterPoints, cfg.CenterPoints); err != nil {
		return Config{}, err
	}
	if cfg.ModelCacheSize, err = getEnvInt(EnvModelCacheSize, cfg.ModelCacheSize); err != nil {
		return Config{}, err
	}
	maxUpload, err := getEnvInt(EnvMaxUploadBytes, int(cfg.MaxUploadBytes))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValueError("config", err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case log.FormatJSON, log.FormatConsole:
	default:
		return errors.NewValueError("config", fmt.Sprintf("invalid log format %q, want json or console", c.LogFormat))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return errors.NewValueError("config", fmt.Sprintf("invalid gin mode %q", c.GinMode))
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.NewValueError("config", "listen address must not be empty")
	}
	if c.SweepResolution < 2 {
		return errors.NewValueError("config", fmt.Sprintf("sweep resolution must be at least 2, got %d", c.SweepResolution))
	}
	if c.SurfaceResolution < 2 {
		return errors.NewValueError("config", fmt.Sprintf("surface resolution must be at least 2, got %d", c.SurfaceResolution))
	}
	if c.CenterPoints < 0 {
		return errors.NewValueError("config", fmt.Sprintf("center points must be non-negative, got %d", c.CenterPoints))
	}
	if c.ModelCacheSize < 1 {
		return errors.NewValueError("config", fmt.Sprintf("model cache size must be positive, got %d", c.ModelCacheSize))
	}
	if c.MaxUploadBytes < 1 {
		return errors.NewValueError("config", fmt.Sprintf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewValueError("config", fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return n, nil
}

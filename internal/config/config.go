// Package config loads apclient's settings from an optional YAML file
// plus environment overrides, with compiled-in defaults so the file
// never has to exist (spec.md's ambient stack, SPEC_FULL.md §2.3).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI and its collaborators need outside
// the handshake core itself, which takes none of this (spec.md §1).
type Config struct {
	// DeviceName is advertised nowhere in the handshake itself; it is
	// reserved for collaborators built on top of this module (logging
	// context, future Mercury/login layers) and defaults to the host name.
	DeviceName string `yaml:"device_name"`
	// AccessPoint, if set, bypasses internal/resolver entirely and dials
	// this host:port directly.
	AccessPoint string `yaml:"access_point"`
	// LogLevel is one of zerolog's level names ("trace".."panic").
	LogLevel string `yaml:"log_level"`
	// CachePath is where internal/apcache stores its pebble database.
	CachePath string `yaml:"cache_path"`
	// CacheTTL bounds how long a resolved endpoint is trusted before
	// internal/resolver is asked again.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint; empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the compiled-in baseline, used whenever a config file
// is absent or a field is left unset within one.
func Default() Config {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "apclient"
	}
	return Config{
		DeviceName:  hostname,
		LogLevel:    "info",
		CachePath:   "apclient-cache.db",
		CacheTTL:    6 * time.Hour,
		MetricsAddr: "",
	}
}

// Load reads path (if non-empty and it exists) over the defaults, then
// applies APCLIENT_-prefixed environment overrides. A missing path is
// not an error: the defaults alone are a usable configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fine, defaults stand
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("APCLIENT_DEVICE_NAME"); ok {
		cfg.DeviceName = v
	}
	if v, ok := os.LookupEnv("APCLIENT_ACCESS_POINT"); ok {
		cfg.AccessPoint = v
	}
	if v, ok := os.LookupEnv("APCLIENT_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("APCLIENT_CACHE_PATH"); ok {
		cfg.CachePath = v
	}
	if v, ok := os.LookupEnv("APCLIENT_CACHE_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v, ok := os.LookupEnv("APCLIENT_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
}

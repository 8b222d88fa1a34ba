package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - WEEPUSH_PUSHOVER_USER, WEEPUSH_PUSHOVER_TOKEN
// - WEEPUSH_TITLE_PREFIX
// - WEEPUSH_RELAY_URL, WEEPUSH_RELAY_PASSWORD, WEEPUSH_RELAY_INSECURE_TLS (bool)
// - WEEPUSH_RELAY_PING_INTERVAL (duration, e.g. "30s"), WEEPUSH_RELAY_MIN_VERSION
// - WEEPUSH_NOTIFY_RATE_PER_MINUTE (int), WEEPUSH_NOTIFY_TIMEOUT (duration)
// - WEEPUSH_LOG_LEVEL, WEEPUSH_LOG_FILE, WEEPUSH_LOG_FORMAT
// - WEEPUSH_METRICS_ENABLED (bool), WEEPUSH_METRICS_ADDR
// - WEEPUSH_INFLUX_URL, WEEPUSH_INFLUX_TOKEN, WEEPUSH_INFLUX_ORG,
//   WEEPUSH_INFLUX_BUCKET, WEEPUSH_INFLUX_INTERVAL (duration)
func ApplyEnvOverrides(cfg *Config) error {
	applyPushoverEnv(cfg)

	if err := applyRelayEnv(cfg); err != nil {
		return err
	}
	if err := applyNotifyEnv(cfg); err != nil {
		return err
	}

	setStringEnv("WEEPUSH_LOG_LEVEL", &cfg.LogLevel)
	setStringEnv("WEEPUSH_LOG_FILE", &cfg.LogFile)
	setStringEnv("WEEPUSH_LOG_FORMAT", &cfg.LogFormat)

	if err := applyMetricsEnv(cfg); err != nil {
		return err
	}
	return applyInfluxEnv(cfg)
}

func applyPushoverEnv(cfg *Config) {
	setStringEnv("WEEPUSH_PUSHOVER_USER", &cfg.Pushover.User)
	setStringEnv("WEEPUSH_PUSHOVER_TOKEN", &cfg.Pushover.Token)
	setStringEnv("WEEPUSH_TITLE_PREFIX", &cfg.TitlePrefix)
}

func applyRelayEnv(cfg *Config) error {
	setStringEnv("WEEPUSH_RELAY_URL", &cfg.Relay.URL)
	setStringEnv("WEEPUSH_RELAY_PASSWORD", &cfg.Relay.Password)
	setStringEnv("WEEPUSH_RELAY_MIN_VERSION", &cfg.Relay.MinVersion)
	if err := setBoolEnv("WEEPUSH_RELAY_INSECURE_TLS", func(b bool) { cfg.Relay.InsecureTLS = b }); err != nil {
		return err
	}
	return setDurationEnv("WEEPUSH_RELAY_PING_INTERVAL", &cfg.Relay.PingInterval)
}

func applyNotifyEnv(cfg *Config) error {
	if v := os.Getenv("WEEPUSH_NOTIFY_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WEEPUSH_NOTIFY_RATE_PER_MINUTE: %w", err)
		}
		cfg.Notify.RatePerMinute = n
	}
	return setDurationEnv("WEEPUSH_NOTIFY_TIMEOUT", &cfg.Notify.Timeout)
}

// applyMetricsEnv consolidates metrics-related env parsing
func applyMetricsEnv(cfg *Config) error {
	if err := setBoolEnv("WEEPUSH_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	setStringEnv("WEEPUSH_METRICS_ADDR", &cfg.MetricsAddr)
	return nil
}

// applyInfluxEnv consolidates Influx-related env parsing
func applyInfluxEnv(cfg *Config) error {
	setStringEnv("WEEPUSH_INFLUX_URL", &cfg.InfluxURL)
	setStringEnv("WEEPUSH_INFLUX_TOKEN", &cfg.InfluxToken)
	setStringEnv("WEEPUSH_INFLUX_ORG", &cfg.InfluxOrg)
	setStringEnv("WEEPUSH_INFLUX_BUCKET", &cfg.InfluxBucket)
	return setDurationEnv("WEEPUSH_INFLUX_INTERVAL", &cfg.InfluxInterval)
}

func setStringEnv(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}

func setDurationEnv(env string, dst *time.Duration) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = d
	}
	return nil
}

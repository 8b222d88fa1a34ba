package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for weepush
type Config struct {
	Pushover PushoverConfig `json:"pushover" yaml:"pushover"`
	// TitlePrefix names the chat client in notification titles ("weechat: #ops")
	TitlePrefix string       `json:"title_prefix" yaml:"title_prefix"`
	Relay       RelayConfig  `json:"relay" yaml:"relay"`
	Notify      NotifyConfig `json:"notify" yaml:"notify"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFile   string `json:"log_file" yaml:"log_file"`
	LogFormat string `json:"log_format" yaml:"log_format"` // "json" or "console"

	// Metrics
	MetricsEnabled bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsAddr    string `json:"metrics_addr" yaml:"metrics_addr"`

	// InfluxDB (push)
	InfluxURL      string        `json:"influx_url" yaml:"influx_url"`
	InfluxToken    string        `json:"influx_token" yaml:"influx_token"`
	InfluxOrg      string        `json:"influx_org" yaml:"influx_org"`
	InfluxBucket   string        `json:"influx_bucket" yaml:"influx_bucket"`
	InfluxInterval time.Duration `json:"influx_interval" yaml:"influx_interval"`
}

// PushoverConfig carries the two values the Pushover API needs.
type PushoverConfig struct {
	User  string `json:"user" yaml:"user"`
	Token string `json:"token" yaml:"token"`
}

// RelayConfig describes how to reach the WeeChat "api" relay.
type RelayConfig struct {
	URL          string        `json:"url" yaml:"url"`
	Password     string        `json:"password" yaml:"password"`
	InsecureTLS  bool          `json:"insecure_tls" yaml:"insecure_tls"`
	PingInterval time.Duration `json:"ping_interval" yaml:"ping_interval"`
	// MinVersion is a semver constraint on the remote WeeChat version
	MinVersion string `json:"min_version" yaml:"min_version"`
}

// NotifyConfig tunes outbound sends.
type NotifyConfig struct {
	// RatePerMinute caps sends; 0 disables the cap
	RatePerMinute int           `json:"rate_per_minute" yaml:"rate_per_minute"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		TitlePrefix: "weechat",
		Relay: RelayConfig{
			URL:          "ws://127.0.0.1:9000/api",
			PingInterval: 60 * time.Second,
			MinVersion:   ">= 4.1.0",
		},
		Notify: NotifyConfig{
			RatePerMinute: 0,
			Timeout:       10 * time.Second,
		},
		LogLevel:  "info",
		LogFormat: "json",

		// Metrics defaults (opt-in)
		MetricsEnabled: false,
		MetricsAddr:    ":9464",

		InfluxInterval: 1 * time.Minute,
	}
}

// Option describes one setting the user is expected to provide.
type Option struct {
	Name string // short name, as reported to the user
	Key  string // path in the config file
	Env  string // environment variable
}

// RequiredOptions lists the settings without which nothing is ever sent.
var RequiredOptions = []Option{
	{Name: "user", Key: "pushover.user", Env: "WEEPUSH_PUSHOVER_USER"},
	{Name: "token", Key: "pushover.token", Env: "WEEPUSH_PUSHOVER_TOKEN"},
}

// MissingOptions returns the required options that are empty.
func (c *Config) MissingOptions() []Option {
	var missing []Option
	for _, o := range RequiredOptions {
		v := c.Pushover.User
		if o.Name == "token" {
			v = c.Pushover.Token
		}
		if v == "" {
			missing = append(missing, o)
		}
	}
	return missing
}

// Validate returns a list of non-fatal configuration warnings.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.Pushover.User != "" && c.Pushover.Token == "", "pushover user provided but token is missing"},
		{c.Pushover.Token != "" && c.Pushover.User == "", "pushover token provided but user is missing"},
		{c.Relay.URL == "", "relay url is empty"},
		{c.Notify.RatePerMinute < 0, "notify.rate_per_minute is negative; treating as unlimited"},
		{c.InfluxURL != "" && c.InfluxBucket == "", "influx url provided but bucket is missing"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	if w := validateRelayURL(c.Relay.URL); w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}

// validateRelayURL returns a warning when the relay url is not a websocket url.
func validateRelayURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Sprintf("invalid relay url: %q (expected ws://host:port/api or wss://...)", raw)
	}
	return ""
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

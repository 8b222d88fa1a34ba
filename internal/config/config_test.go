package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/weepush/weepush/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	c := config.DefaultConfig()
	if c.TitlePrefix != "weechat" {
		t.Fatalf("expected default title prefix weechat, got %q", c.TitlePrefix)
	}
	if c.Relay.PingInterval < time.Second {
		t.Fatalf("unrealistic ping interval: %v", c.Relay.PingInterval)
	}
	if c.Notify.RatePerMinute != 0 {
		t.Fatalf("expected unlimited rate by default, got %d", c.Notify.RatePerMinute)
	}
	if len(c.MissingOptions()) != 2 {
		t.Fatalf("expected both credentials missing by default")
	}
}

func TestMissingOptions(t *testing.T) {
	c := config.DefaultConfig()
	c.Pushover.User = "u"
	missing := c.MissingOptions()
	if len(missing) != 1 || missing[0].Name != "token" || missing[0].Key != "pushover.token" {
		t.Fatalf("unexpected missing options: %+v", missing)
	}
	c.Pushover.Token = "t"
	if len(c.MissingOptions()) != 0 {
		t.Fatal("expected no missing options")
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pushover.User = "u"
	if len(cfg.Validate()) == 0 {
		t.Fatalf("expected pushover warning, got none")
	}

	cfg2 := config.DefaultConfig()
	cfg2.Relay.URL = "http://localhost:9000/api"
	if len(cfg2.Validate()) == 0 {
		t.Fatalf("expected relay url warning, got none")
	}

	cfg3 := config.DefaultConfig()
	cfg3.Pushover.User, cfg3.Pushover.Token = "u", "t"
	if w := cfg3.Validate(); len(w) != 0 {
		t.Fatalf("expected no warnings, got %v", w)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weepush.yaml")
	content := `
pushover:
  user: ukey
  token: atok
title_prefix: irc
relay:
  url: wss://bouncer.example:9001/api
  password: secret
  ping_interval: 15s
notify:
  rate_per_minute: 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Pushover.User != "ukey" || cfg.Pushover.Token != "atok" {
		t.Fatalf("unexpected pushover config: %+v", cfg.Pushover)
	}
	if cfg.TitlePrefix != "irc" || cfg.Relay.Password != "secret" || cfg.Relay.PingInterval != 15*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Notify.RatePerMinute != 30 {
		t.Fatalf("unexpected rate: %d", cfg.Notify.RatePerMinute)
	}
	// defaults survive for keys the file omits
	if cfg.Relay.MinVersion != ">= 4.1.0" || cfg.Notify.Timeout != 10*time.Second {
		t.Fatalf("expected defaults to be kept, got %+v", cfg)
	}
}

func TestLoadConfigFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pushover: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadConfigFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := config.LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"

	"github.com/weepush/weepush/internal/config"
	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/metrics"
	"github.com/weepush/weepush/internal/notify"
	"github.com/weepush/weepush/internal/relay"
	"github.com/weepush/weepush/internal/weechat"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "0.3.0"

// Registration describes this program, logged once at startup.
type Registration struct {
	Name        string
	Author      string
	Version     string
	License     string
	Description string
}

var registration = Registration{
	Name:        "weepush",
	Author:      "weepush authors",
	Version:     Version,
	License:     "GPL",
	Description: "Send Pushover notifications about private messages and hilights while away.",
}

func main() {
	cfgFile := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before reading WEEPUSH_* variables")
	relayURL := flag.String("relay-url", "", "WeeChat api relay url (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", registration.Name, registration.Version)
		return
	}

	loadDotEnv(*envFile)

	load := withFlagOverrides(config.FileLoader(*cfgFile), *relayURL, *logLevel)
	store, err := config.NewStore(*cfgFile, load)
	if err != nil {
		log.Fatalf("failed loading config: %v", err)
	}
	cfg := store.Current()

	cleanup, err := logging.Init(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	logRegistration(registration)
	reportMissingOptions(cfg)
	for _, w := range cfg.Validate() {
		logging.Get().Warn().Str("warning", w).Msg("config validation")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initMetricsAndInflux(ctx, cfg)
	go func() {
		if err := store.Watch(ctx); err != nil {
			logging.Get().Warn().Err(err).Msg("config watch disabled")
		}
	}()

	runRelay(ctx, cfg, store)
}

// loadDotEnv loads path if present. A missing file is normal.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring %s: %v", path, err)
	}
}

// withFlagOverrides gives CLI flags the highest precedence, also on reload.
func withFlagOverrides(load config.Loader, relayURL, logLevel string) config.Loader {
	return func() (*config.Config, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		if relayURL != "" {
			cfg.Relay.URL = relayURL
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return cfg, nil
	}
}

func logRegistration(r Registration) {
	logging.Get().Info().
		Str("name", r.Name).
		Str("author", r.Author).
		Str("version", r.Version).
		Str("license", r.License).
		Msg(r.Description)
}

// reportMissingOptions tells the user, once, which settings to provide.
// Loading continues; dispatch stays a no-op until they are set.
func reportMissingOptions(cfg *config.Config) {
	for _, o := range cfg.MissingOptions() {
		logging.Get().Error().Str("option", o.Name).Msgf("Please set option: %s", o.Name)
		logging.Get().Info().Msgf("%s: set %s=STRING or %s in the config file", registration.Name, o.Env, o.Key)
	}
}

// initMetricsAndInflux starts optional metrics server and Influx pusher
func initMetricsAndInflux(ctx context.Context, cfg *config.Config) {
	if cfg.MetricsEnabled {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: newRouter(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logging.Get().Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Get().Error().Err(err).Msg("metrics server failed")
			}
		}()
		context.AfterFunc(ctx, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}
	if cfg.InfluxURL != "" {
		go metrics.StartInfluxPusher(ctx, cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, cfg.InfluxInterval)
	}
}

// runRelay wires the pipeline relay -> handler -> dispatcher and blocks until
// ctx is done or the relay gives up.
func runRelay(ctx context.Context, cfg *config.Config, store *config.Store) {
	buffers := weechat.NewBuffers()
	sender := notify.NewAsync(cfg.Notify.Timeout, cfg.Notify.RatePerMinute)
	dispatcher := relay.NewDispatcher(buffers, store, relay.PushoverFactory, sender)
	handler := relay.NewHandler(dispatcher)

	client := weechat.NewClient(weechat.Options{
		URL:          cfg.Relay.URL,
		Password:     cfg.Relay.Password,
		InsecureTLS:  cfg.Relay.InsecureTLS,
		PingInterval: cfg.Relay.PingInterval,
		MinVersion:   cfg.Relay.MinVersion,
		OnSynced:     notifyReady,
	}, buffers, handler)

	runErr := client.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	// Graceful shutdown: give in-flight notifications up to 5 seconds
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logging.Get().Warn().Err(err).Msg("pending notifications abandoned")
	}
	if runErr != nil {
		logging.Get().Fatal().Err(runErr).Msg("relay stopped")
	}
	logging.Get().Info().Msg("shutdown complete")
}

// notifyReady tells systemd (Type=notify) that the relay is synced. Outside
// systemd it is a no-op.
func notifyReady() {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Get().Debug().Err(err).Msg("sd_notify failed")
	} else if ok {
		logging.Get().Debug().Msg("notified systemd")
	}
}

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/relay"
)

// reloadDebounce absorbs the burst of events editors produce on save.
var reloadDebounce = 200 * time.Millisecond

// Loader builds a fresh Config from its sources.
type Loader func() (*Config, error)

// FileLoader reads path (when set) and applies env overrides on top.
func FileLoader(path string) Loader {
	return func() (*Config, error) {
		cfg := DefaultConfig()
		if path != "" {
			c, err := LoadConfigFromFile(path)
			if err != nil {
				return nil, err
			}
			cfg = c
		}
		if err := ApplyEnvOverrides(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

// Store publishes immutable Config snapshots. Readers never see a partially
// applied reload.
type Store struct {
	path   string
	load   Loader
	cur    atomic.Pointer[Config]
	onLoad func(*Config)
}

// NewStore loads the initial snapshot. path is watched by Watch; load may
// apply more sources than the file alone.
func NewStore(path string, load Loader) (*Store, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, load: load}
	s.cur.Store(cfg)
	return s, nil
}

// NewStaticStore wraps cfg without a file behind it.
func NewStaticStore(cfg *Config) *Store {
	s := &Store{load: func() (*Config, error) { return cfg, nil }}
	s.cur.Store(cfg)
	return s
}

// Current returns the active snapshot. Callers must not modify it.
func (s *Store) Current() *Config { return s.cur.Load() }

// OnReload registers fn to run after every successful reload.
func (s *Store) OnReload(fn func(*Config)) { s.onLoad = fn }

// Credentials implements relay.SettingsSource.
func (s *Store) Credentials() relay.Credentials {
	c := s.Current()
	return relay.Credentials{UserKey: c.Pushover.User, APIToken: c.Pushover.Token}
}

// TitlePrefix implements relay.SettingsSource.
func (s *Store) TitlePrefix() string { return s.Current().TitlePrefix }

// Reload rebuilds the snapshot. On error the previous snapshot stays active.
func (s *Store) Reload() error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	s.cur.Store(cfg)
	if s.onLoad != nil {
		s.onLoad(cfg)
	}
	return nil
}

// Watch reloads the snapshot whenever the config file changes, until ctx is
// done. The parent directory is watched so atomic renames are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, func() {
			if err := s.Reload(); err != nil {
				logging.Get().Warn().Err(err).Str("path", s.path).Msg("config reload failed; keeping previous settings")
				return
			}
			logging.Get().Info().Str("path", s.path).Msg("config reloaded")
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Get().Warn().Err(err).Str("dir", dir).Msg("config watch error")
		}
	}
}

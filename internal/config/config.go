// Package config loads and persists the application configuration.
// Settings come from a TOML file under the user's config directory,
// overridable through TM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	// RemoteURL is the libsql database URL. Empty means "no remote
	// store"; the app then runs entirely against the local fallback.
	RemoteURL string `mapstructure:"remote_url" toml:"remote_url"`

	// RemoteToken is the auth token for the remote store.
	RemoteToken string `mapstructure:"remote_token" toml:"remote_token"`

	// LocalPath is the path of the local fallback database. Defaults
	// to fallback.db next to the config file.
	LocalPath string `mapstructure:"local_path" toml:"local_path"`

	// AnthropicAPIKey enables AI-written product copy when set.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" toml:"anthropic_api_key"`

	// AnthropicModel overrides the default model for generated copy.
	AnthropicModel string `mapstructure:"anthropic_model" toml:"anthropic_model,omitempty"`

	// DashboardPort is the listen port for the live dashboard.
	DashboardPort int `mapstructure:"dashboard_port" toml:"dashboard_port"`

	// LogFile is where operational logs go. Empty means stderr.
	LogFile string `mapstructure:"log_file" toml:"log_file,omitempty"`

	// SeedFile optionally replaces the built-in starter catalog.
	SeedFile string `mapstructure:"seed_file" toml:"seed_file,omitempty"`
}

// Dir returns the configuration directory, honoring TM_CONFIG_DIR for
// tests and unusual setups.
func Dir() (string, error) {
	if dir := os.Getenv("TM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tilemaster"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Every key needs a default so environment-only values survive
	// Unmarshal.
	v.SetDefault("remote_url", "")
	v.SetDefault("remote_token", "")
	v.SetDefault("local_path", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "")
	v.SetDefault("dashboard_port", 8347)
	v.SetDefault("log_file", "")
	v.SetDefault("seed_file", "")
	return v
}

// Load reads the configuration. A missing config file is not an
// error; defaults and environment variables still apply.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = filepath.Join(dir, "fallback.db")
	}
	return &cfg, nil
}

// Write persists cfg to the config file, creating the directory if
// needed. The file is written with owner-only permissions because it
// can hold tokens.
func Write(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// Watch re-reads the configuration whenever the config file changes on
// disk and hands the fresh Config to fn. The returned stop function
// closes the watcher and waits for its goroutine to exit.
func Watch(fn func(*Config)) (func(), error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	// Watching requires the directory to exist; seed an empty config
	// file if there is nothing there yet.
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		if writeErr := Write(&Config{}); writeErr != nil {
			return nil, writeErr
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start config watcher: %w", err)
	}
	// Watch the directory rather than the file: Write replaces the
	// file by rename, which would retire a file-level watch.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != "config.toml" {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load()
				if err != nil {
					continue
				}
				fn(cfg)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
	}, nil
}

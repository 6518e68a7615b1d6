// Package config loads simal's .simalrc configuration, layering flags
// over a config file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is simal's project configuration, sourced from .simalrc.yaml
// (or .simalrc.json), environment variables, and CLI flag overrides.
type Config struct {
	OutputDir string        `mapstructure:"output-dir"`
	MaxSimple bool          `mapstructure:"max-simple"`
	Watch     WatchConfig   `mapstructure:"watch"`
	Serve     ServeConfig   `mapstructure:"serve"`
	Cache     CacheConfig   `mapstructure:"cache"`
	History   HistoryConfig `mapstructure:"history"`
}

// WatchConfig controls `simal watch`.
type WatchConfig struct {
	Debounce int `mapstructure:"debounce"` // milliseconds
}

// ServeConfig controls `simal serve`.
type ServeConfig struct {
	Addr      string `mapstructure:"addr"`
	TokenHash string `mapstructure:"token-hash"`
}

// CacheConfig controls the lowering cache's optional shared tier.
type CacheConfig struct {
	RedisAddr string `mapstructure:"redis-addr"`
	LRUSize   int    `mapstructure:"lru-size"`
}

// HistoryConfig controls the compile history store.
type HistoryConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// Load reads .simalrc.yaml/.simalrc.json by walking up from the current
// directory, falling back to built-in defaults when none is found.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("output-dir", ".")
	v.SetDefault("max-simple", false)
	v.SetDefault("watch.debounce", 100)
	v.SetDefault("serve.addr", ":4777")
	v.SetDefault("serve.token-hash", "")
	v.SetDefault("cache.redis-addr", "")
	v.SetDefault("cache.lru-size", 256)
	v.SetDefault("history.driver", "sqlite3")
	v.SetDefault("history.dsn", ".simal-history.db")

	v.SetConfigName(".simalrc")
	v.SetConfigType("yaml")

	if root, err := findProjectRoot(); err == nil {
		v.AddConfigPath(root)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("SIMAL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read .simalrc: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal .simalrc: %w", err)
	}
	return &cfg, nil
}

// findProjectRoot walks up from the cwd looking for a .simalrc file,
// mirroring the teacher's conduit.yml discovery.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{".simalrc.yaml", ".simalrc.yml", ".simalrc.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .simalrc found")
		}
		dir = parent
	}
}

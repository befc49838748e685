// Package config loads dbnplot settings from a TOML file and the environment.
//
// Settings are read from $DBNPLOT_CONFIG, or ~/.config/dbnplot/config.toml
// when that is unset. A missing file is not an error. Every key can be
// overridden by an environment variable with the DBNPLOT_ prefix, with dots
// replaced by underscores:
//
//	DBNPLOT_EXPORT_ENGINE=graphviz
//	DBNPLOT_CACHE_REDIS_ADDR=localhost:6379
//
// Command-line flags take precedence over both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/dbnplot/pkg/cache"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

const (
	appName   = "dbnplot"
	envPrefix = "DBNPLOT"

	// EnvConfig names the environment variable holding an explicit config path.
	EnvConfig = "DBNPLOT_CONFIG"

	// DefaultAddr is the listen address of "dbnplot serve".
	DefaultAddr = ":8080"
)

// Config holds application configuration.
type Config struct {
	Export ExportConfig `mapstructure:"export"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Serve  ServeConfig  `mapstructure:"serve"`
}

// ExportConfig holds the default render settings.
type ExportConfig struct {
	Dir        string  `mapstructure:"dir"`
	Engine     string  `mapstructure:"engine"`
	Scale      float64 `mapstructure:"scale"`
	Unit       float64 `mapstructure:"unit"`
	Dots       string  `mapstructure:"dots"`
	Background string  `mapstructure:"background"`
}

// CacheConfig selects the artifact cache backend. A non-empty RedisAddr
// selects Redis; otherwise entries are files under Dir.
type CacheConfig struct {
	Disabled      bool          `mapstructure:"disabled"`
	Dir           string        `mapstructure:"dir"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr          string        `mapstructure:"addr"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
}

// Path returns the config file that [Load] reads.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(configHome(), appName, "config.toml")
}

// Load reads configuration from file and env.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return Config{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export.dir", "")
	v.SetDefault("export.engine", pipeline.DefaultEngine)
	v.SetDefault("export.scale", pipeline.DefaultScale)
	v.SetDefault("export.unit", pipeline.DefaultUnit)
	v.SetDefault("export.dots", "")
	v.SetDefault("export.background", "")

	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_prefix", cache.DefaultRedisPrefix)

	v.SetDefault("serve.addr", DefaultAddr)
	v.SetDefault("serve.max_body_bytes", 1<<20)
	v.SetDefault("serve.render_timeout", 30*time.Second)
}

// isNotFound reports whether err means there is no config file. SetConfigFile
// makes viper return the raw os error instead of ConfigFileNotFoundError.
func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// Apply copies the configured export defaults into opts.
func (c Config) Apply(opts *pipeline.Options) error {
	e := c.Export
	if e.Dir != "" {
		opts.ExportDir = e.Dir
	}
	if e.Engine != "" {
		opts.Engine = e.Engine
	}
	if e.Scale != 0 {
		opts.Scale = e.Scale
	}
	if e.Unit != 0 {
		opts.Unit = e.Unit
	}
	if e.Background != "" {
		opts.Background = e.Background
	}
	if e.Dots != "" {
		dots, err := expand.ParseDotsConfig(e.Dots)
		if err != nil {
			return err
		}
		opts.Dots = dots
	}
	return nil
}

// OpenCache builds the configured artifact cache.
func (c CacheConfig) OpenCache() (cache.Cache, error) {
	switch {
	case c.Disabled:
		return cache.NewNullCache(), nil
	case c.RedisAddr != "":
		return cache.NewRedisCache(c.RedisAddr, c.RedisPassword, c.RedisDB, cache.WithPrefix(c.RedisPrefix)), nil
	default:
		fc, err := cache.NewFileCache(c.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/dbnplot/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

func configHome() string {
	if h := os.Getenv("XDG_CONFIG_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

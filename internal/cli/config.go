package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/meshskel/pkg/cache"
	skelio "github.com/matzehuels/meshskel/pkg/io"
	"github.com/matzehuels/meshskel/pkg/pipeline"
)

// Environment variables that override the config file.
const (
	envRedisAddr = "MESHSKEL_REDIS_ADDR"
	envCache     = "MESHSKEL_CACHE"
	envAddr      = "MESHSKEL_ADDR"
	envPrefix    = "MESHSKEL_CACHE_PREFIX"
)

const defaultAddr = ":8080"

// Config is the optional user configuration. Flags override it, and it
// overrides built-in defaults.
type Config struct {
	XYZScaling        float64      `toml:"xyz_scaling" yaml:"xyz_scaling"`
	Radius            float64      `toml:"radius" yaml:"radius"`
	NodeLabel         int          `toml:"node_label" yaml:"node_label"`
	UseSmoothVertices bool         `toml:"use_smooth_vertices" yaml:"use_smooth_vertices"`
	Cache             CacheConfig  `toml:"cache" yaml:"cache"`
	Server            ServerConfig `toml:"server" yaml:"server"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend" yaml:"backend"`
	Dir       string `toml:"dir" yaml:"dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`
	TTL       string `toml:"ttl" yaml:"ttl"` // Go duration, e.g. "24h"
	// Prefix namespaces every cache key, for deployments sharing one Redis.
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// ServerConfig configures "meshskel serve".
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() *Config {
	return &Config{
		XYZScaling: pipeline.DefaultScale,
		Radius:     skelio.DefaultRadius,
		NodeLabel:  skelio.LabelDendrite,
		Cache:      CacheConfig{Backend: cache.BackendFile},
		Server:     ServerConfig{Addr: defaultAddr},
	}
}

// configPath returns the default config file location.
func configPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// loadConfig reads path (or the default location when path is empty), loads
// a .env file from the working directory and applies environment overrides.
// A missing default file is not an error; a missing explicit file is.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decodeConfig(path, data, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	return cfg, cfg.validate()
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("decode config %s: unknown key %q", path, undecoded[0].String())
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(envRedisAddr)); v != "" {
		c.Cache.RedisAddr = v
		if os.Getenv(envCache) == "" {
			c.Cache.Backend = cache.BackendRedis
		}
	}
	if v := strings.TrimSpace(os.Getenv(envCache)); v != "" {
		c.Cache.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(envAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix)); v != "" {
		c.Cache.Prefix = v
	}
}

func (c *Config) validate() error {
	if _, err := c.ttl(); err != nil {
		return err
	}
	if c.XYZScaling <= 0 || c.Radius < 0 || c.NodeLabel < 0 {
		return errors.New("config: xyz_scaling must be positive and radius, node_label non-negative")
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendBolt, cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("config: %w: %q", cache.ErrUnknownBackend, c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("config: redis cache needs cache.redis_addr or %s", envRedisAddr)
	}
	return nil
}

// ttl parses the cache TTL, falling back to the pipeline default.
func (c *Config) ttl() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return pipeline.DefaultTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("config: cache.ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	return d, nil
}

// cacheConfig resolves the backend settings for cache.Open.
// keyer returns the cache keyer, scoped when a prefix is configured.
func (c *Config) keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

func (c *Config) cacheConfig(noCache bool) cache.Config {
	cc := cache.Config{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
	}
	if noCache {
		cc.Backend = cache.BackendNone
	}
	if cc.Dir == "" {
		cc.Dir = cacheDir()
	}
	return cc
}

// cacheDir returns the default cache directory ($XDG_CACHE_HOME/meshskel).
func cacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

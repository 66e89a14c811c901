package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	Dir       string // file and bolt backends
	RedisAddr string
	Entries   int // memory backend
}

// Open creates the cache described by cfg. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendBolt:
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, err
		}
		return NewBoltCache(filepath.Join(cfg.Dir, "cache.db"))
	case BackendMemory:
		return NewMemoryCache(cfg.Entries)
	case BackendRedis:
		return NewRedisCache(ctx, RedisOptions{Addr: cfg.RedisAddr})
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

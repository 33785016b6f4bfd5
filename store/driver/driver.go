// Package driver opens a store.Store from configuration.
//
// The grove-backed stores (sqlite, postgres, mongo) need a *grove.DB owned
// by the caller and are constructed directly; this package covers the
// backends that can be opened from plain settings.
package driver

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/billing/store"
	"github.com/xraph/billing/store/file"
	"github.com/xraph/billing/store/memory"
	"github.com/xraph/billing/store/redis"
)

// Driver names.
const (
	Memory = "memory"
	File   = "file"
	Redis  = "redis"
)

// DefaultDir is the file store root when none is configured.
const DefaultDir = "data"

// Config selects a store backend.
type Config struct {
	Driver      string `json:"driver"       mapstructure:"driver"       yaml:"driver"`
	Dir         string `json:"dir"          mapstructure:"dir"          yaml:"dir"`
	RedisURL    string `json:"redis_url"    mapstructure:"redis_url"    yaml:"redis_url"`
	RedisPrefix string `json:"redis_prefix" mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

// Open builds the store described by cfg. An empty driver selects the
// file store. The store is not migrated.
func Open(_ context.Context, cfg Config) (store.Store, error) {
	switch cfg.Driver {
	case Memory:
		return memory.New(), nil
	case "", File:
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultDir
		}
		return file.New(dir), nil
	case Redis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("store: redis_url is required")
		}
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("store: parse redis_url: %w", err)
		}
		return redis.New(goredis.NewClient(opts), redis.WithPrefix(cfg.RedisPrefix)), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Package sturdyc adapts viccon/sturdyc to provider.Provider.
//
// sturdyc applies one TTL to the whole client; the pool's entry envelope
// enforces per-item lifetimes on top of it.
package sturdyc

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	pr "github.com/unkn0wn-root/cachecall/provider"
)

// Config holds the sturdyc client parameters.
type Config struct {
	// Capacity is the maximum number of entries. Must be > 0.
	Capacity int
	// NumShards splits the keyspace for concurrent access. Must be > 0.
	NumShards int
	// TTL is the client-wide entry lifetime. It should be at least as long
	// as the longest item lifetime in use. Must be > 0.
	TTL time.Duration
	// EvictionPercentage is the share of entries dropped when the cache is
	// full. Must be between 1 and 100.
	EvictionPercentage int
	// EvictionInterval is how often expired entries are swept. 0 => sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "sturdyc provider: config error in field " + e.Field + ": " + e.Message
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

type Provider struct {
	c *sturdyc.Client[[]byte]
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	c := sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, opts...)
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	p.c.Set(key, value)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Delete(key)
	return nil
}

// Close is a no-op; sturdyc clients hold no external resources.
func (p *Provider) Close(_ context.Context) error { return nil }

// Size returns the number of entries currently held.
func (p *Provider) Size() int { return p.c.Size() }

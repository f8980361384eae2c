// Package memory is an in-process Provider backed by a map. It supports
// per-entry TTLs and implements provider.Locker, so a pool on top of it gets
// working stampede protection within one process.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/cachecall/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type lease struct {
	token uint64
	exp   time.Time
}

// Memory is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	m      map[string]entry
	locks  map[string]lease
	nextID uint64
	now    func() time.Time
}

var (
	_ pr.Provider = (*Memory)(nil)
	_ pr.Locker   = (*Memory)(nil)
)

type Config struct {
	Clock func() time.Time // nil => time.Now
}

func New(cfg Config) *Memory {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Memory{
		m:     make(map[string]entry),
		locks: make(map[string]lease),
		now:   now,
	}
}

// Get returns the stored slice; callers must not modify it.
func (p *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && !p.now().Before(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Memory) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	v := append([]byte(nil), value...)
	p.mu.Lock()
	p.m[key] = entry{v: v, exp: exp}
	p.mu.Unlock()
	return true, nil
}

func (p *Memory) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (p *Memory) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

func (p *Memory) Lock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if l, held := p.locks[key]; held && now.Before(l.exp) {
		return nil, false, nil
	}
	p.nextID++
	token := p.nextID
	p.locks[key] = lease{token: token, exp: now.Add(ttl)}

	release := func(context.Context) error {
		p.mu.Lock()
		// only the holder's own lease is removed; a lease taken after
		// expiry belongs to someone else
		if l, ok := p.locks[key]; ok && l.token == token {
			delete(p.locks, key)
		}
		p.mu.Unlock()
		return nil
	}
	return release, true, nil
}

func (p *Memory) Close(_ context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]entry)
	p.locks = make(map[string]lease)
	p.mu.Unlock()
	return nil
}

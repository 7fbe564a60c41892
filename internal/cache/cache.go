// Package cache holds small derived strings, such as the average-attempts
// statistic, behind a get/set interface.
//
// Two backends: Memory (process-local) and Redis (shared between replicas).
// A missing key reads as "" with no error.
package cache

import (
	"context"
	"sync"

	"github.com/robalobadob/guessgames/internal/game"
)

// Cache is a string key/value store.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// AverageKey is the key of the cached average for kind.
func AverageKey(kind game.Kind) string { return "moves_remaining:" + string(kind) }

// Memory is a map-backed Cache.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory { return &Memory{m: make(map[string]string)} }

func (c *Memory) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[key], nil
}

func (c *Memory) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	c.m[key] = value
	c.mu.Unlock()
	return nil
}

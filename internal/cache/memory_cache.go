package cache

import (
	"context"
	"sync"
	"time"

	"consignhub/backend/internal/domain"
)

type memoryEntry struct {
	value     domain.ConsignorMetrics
	expiresAt time.Time
}

// MemoryMetricsCache is an in-process MetricsCache used when Redis is not
// configured.
type MemoryMetricsCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryMetricsCache() *MemoryMetricsCache {
	return &MemoryMetricsCache{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryMetricsCache) Get(_ context.Context, key string) (*domain.ConsignorMetrics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *MemoryMetricsCache) Set(_ context.Context, key string, value *domain.ConsignorMetrics, ttl time.Duration) error {
	if value == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: *value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryMetricsCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

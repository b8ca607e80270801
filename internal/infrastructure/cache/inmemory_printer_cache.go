package cache

import (
	"context"
	"sync"
	"time"

	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// entry is a cached printer list with expiration
type entry struct {
	printers  []spooler.Printer
	expiresAt time.Time
}

// InMemoryPrinterCache keeps printer lists in a map with a TTL.
// This is suitable for the usual single-process deployment.
type InMemoryPrinterCache struct {
	ttl       time.Duration
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPrinterCache creates the cache and starts the expiry sweep
func NewInMemoryPrinterCache(ttl time.Duration) *InMemoryPrinterCache {
	c := &InMemoryPrinterCache{
		ttl:      ttl,
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a copy of the cached list while it is fresh
func (c *InMemoryPrinterCache) Get(_ context.Context, key string) ([]spooler.Printer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return append([]spooler.Printer{}, e.printers...), true
}

// Set stores a copy of the list
func (c *InMemoryPrinterCache) Set(_ context.Context, key string, printers []spooler.Printer) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		printers:  append([]spooler.Printer{}, printers...),
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (c *InMemoryPrinterCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryPrinterCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryPrinterCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ spooler.PrinterCache = (*InMemoryPrinterCache)(nil)

// Package cache provides the in-process caches backing report reads: a
// generic TTL'd LRU plus a manager that sweeps expired entries on a timer.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface the report service works against.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose expired entries can be swept.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the janitor goroutine sweeping registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Callers register before
// StartCleanup; the slice is not guarded.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup launches the janitor with the given sweep interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	if m.started {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, cache := range m.caches {
				cleaned += cache.CleanExpired()
			}
			if cleaned > 0 {
				slog.Debug("Swept expired cache entries", "count", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the janitor and waits for it to exit. Safe to call when
// StartCleanup never ran.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	close(m.stopCleanup)
	<-m.cleanupDone
}

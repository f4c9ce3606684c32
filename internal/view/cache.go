package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/weld.report/internal/monitoring"
	"github.com/banshee-data/weld.report/internal/timeutil"
)

// DefaultSnapshotTTL is how long a cached snapshot is served before reload.
const DefaultSnapshotTTL = 5 * time.Minute

// SnapshotCache serves layer snapshots, reloading them from a Source once
// they are older than the TTL. A reload swaps the whole snapshot, so a
// reader always sees waypoints and samples from the same load.
type SnapshotCache struct {
	src   Source
	clock timeutil.Clock
	ttl   time.Duration
	logf  func(format string, v ...interface{})

	mu      sync.Mutex
	entries map[string]*atomic.Pointer[LayerSnapshot]
}

// NewSnapshotCache returns a cache over src. A non-positive ttl selects
// DefaultSnapshotTTL; a nil clock selects the real clock.
func NewSnapshotCache(src Source, clock timeutil.Clock, ttl time.Duration) *SnapshotCache {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		src:     src,
		clock:   clock,
		ttl:     ttl,
		logf:    monitoring.Tagged("view"),
		entries: make(map[string]*atomic.Pointer[LayerSnapshot]),
	}
}

func (c *SnapshotCache) lookup(layerID string) *atomic.Pointer[LayerSnapshot] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[layerID]
}

func (c *SnapshotCache) store(layerID string, s *LayerSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[layerID]
	if !ok {
		p = new(atomic.Pointer[LayerSnapshot])
		c.entries[layerID] = p
	}
	p.Store(s)
}

func (c *SnapshotCache) fresh(s *LayerSnapshot) bool {
	return s != nil && c.clock.Since(s.CapturedAt) < c.ttl
}

// Get returns the snapshot for layerID, loading it when absent or stale.
// Load errors are returned as-is and leave the cache unchanged, so unknown
// layer IDs never gain an entry.
func (c *SnapshotCache) Get(layerID string) (*LayerSnapshot, error) {
	if p := c.lookup(layerID); p != nil {
		if s := p.Load(); c.fresh(s) {
			return s, nil
		}
	}
	s, err := LoadSnapshot(c.src, layerID, c.clock.Now())
	if err != nil {
		return nil, err
	}
	c.store(layerID, s)
	return s, nil
}

// Invalidate drops layerID so the next Get reloads it.
func (c *SnapshotCache) Invalidate(layerID string) {
	c.mu.Lock()
	delete(c.entries, layerID)
	c.mu.Unlock()
}

// Len returns the number of cached layers.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes stale entries and returns how many were dropped.
func (c *SnapshotCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, p := range c.entries {
		if !c.fresh(p.Load()) {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps the cache every interval until ctx is cancelled.
func (c *SnapshotCache) Run(ctx context.Context, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if n := c.Sweep(); n > 0 {
				c.logf("swept %d stale snapshots", n)
			}
		}
	}
}

package resource

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/logger"
)

// Stats counts collector activity since creation.
type Stats struct {
	Trashed  uint64
	Disposed uint64
	Skipped  uint64
}

// Collector is the deferred-disposal queue for orphaned resources.
// Trash may be called from any goroutine; Drain runs on the render thread.
type Collector struct {
	mu      sync.Mutex
	pending map[ID]struct{}
	queue   []Resource
	stats   Stats
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{pending: make(map[ID]struct{})}
}

// Trash enqueues r for disposal. Returns false if r is already pending or pinned.
func (c *Collector) Trash(r Resource) bool {
	if r.Pinned() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[r.ID()]; ok {
		return false
	}
	c.pending[r.ID()] = struct{}{}
	c.queue = append(c.queue, r)
	c.stats.Trashed++
	return true
}

// Pending returns the number of queued resources.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// IsPending reports whether r is queued.
func (c *Collector) IsPending(r Resource) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[r.ID()]
	return ok
}

// Stats returns a snapshot of the counters.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Collector) pop() Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil
	}
	r := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	delete(c.pending, r.ID())
	return r
}

// Drain disposes queued resources until the queue is empty, including any
// enqueued by the disposals themselves. A resource that regained a parent
// since it was queued is skipped. Returns the number disposed.
func (c *Collector) Drain(ctx gpu.Context) int {
	disposed := 0
	for r := c.pop(); r != nil; r = c.pop() {
		if r.ParentCount() > 0 {
			logger.Debug("skipping re-referenced resource",
				zap.String("resource", r.Name()),
				zap.Int("parents", r.ParentCount()),
			)
			c.mu.Lock()
			c.stats.Skipped++
			c.mu.Unlock()
			continue
		}
		r.Dispose(ctx)
		disposed++
		c.mu.Lock()
		c.stats.Disposed++
		c.mu.Unlock()
	}
	return disposed
}

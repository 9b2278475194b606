// Package resource tracks ownership and upload state of GPU-resident objects.
//
// Every resource keeps a set of owning parents. When the last parent lets go
// the resource is handed to its Collector, which disposes it on the render
// thread at the start of the next frame. Ownership is many-to-many and
// owners are identified by opaque IDs, never by pointers.
package resource

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/logger"
)

// ID identifies an owner or a resource. Zero is never allocated.
type ID uint64

var lastID atomic.Uint64

// NewID allocates a process-unique ID.
func NewID() ID {
	return ID(lastID.Add(1))
}

// Resource is anything holding native GPU handles.
type Resource interface {
	ID() ID
	Name() string
	Uploaded() bool
	Pinned() bool

	AddParent(owner ID)
	RemoveParent(owner ID)
	ParentCount() int

	// Init uploads the resource. A second call before VRAMFlushed is a no-op.
	Init(ctx gpu.Context, c *Collector) error
	// VRAMFlushed forgets the upload without releasing handles.
	VRAMFlushed()
	// Dispose releases every native handle. Safe to call repeatedly.
	Dispose(ctx gpu.Context)
}

// Base implements the bookkeeping half of Resource. Concrete resources embed
// it, call Setup from their constructor and wrap their native work in Upload
// and Release.
type Base struct {
	id   ID
	self Resource

	mu        sync.Mutex
	name      string
	parents   map[ID]struct{}
	uploaded  bool
	live      bool
	pinned    bool
	collector *Collector
}

// Setup assigns the ID and the outer resource reported to the collector.
func (b *Base) Setup(self Resource, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id == 0 {
		b.id = NewID()
	}
	b.self = self
	b.name = name
}

// ID returns the resource ID.
func (b *Base) ID() ID {
	return b.id
}

// Name returns the resource name.
func (b *Base) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SetName renames the resource.
func (b *Base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

// Uploaded reports whether Init ran since the last flush or dispose.
func (b *Base) Uploaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploaded
}

// Pinned reports whether the resource is exempt from collection.
func (b *Base) Pinned() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pinned
}

// SetPinned marks the resource as never collected. Its owner disposes it.
func (b *Base) SetPinned(pinned bool) {
	b.mu.Lock()
	b.pinned = pinned
	b.mu.Unlock()
}

// Attach sets the collector the resource reports to once orphaned.
func (b *Base) Attach(c *Collector) {
	if c == nil {
		return
	}
	b.mu.Lock()
	b.collector = c
	b.mu.Unlock()
}

// Collector returns the attached collector, if any.
func (b *Base) Collector() *Collector {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.collector
}

// AddParent registers owner. Adding an existing owner is a no-op.
func (b *Base) AddParent(owner ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.parents == nil {
		b.parents = make(map[ID]struct{})
	}
	b.parents[owner] = struct{}{}
}

// RemoveParent drops owner. If that empties the parent set the resource is
// handed to its collector.
func (b *Base) RemoveParent(owner ID) {
	b.mu.Lock()
	if _, ok := b.parents[owner]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.parents, owner)
	orphaned := len(b.parents) == 0 && !b.pinned
	c, self := b.collector, b.self
	b.mu.Unlock()

	if !orphaned || c == nil {
		return
	}
	if self == nil {
		logger.Warn("orphaned resource has no owner binding", zap.Uint64("id", uint64(b.id)))
		return
	}
	c.Trash(self)
}

type attacher interface {
	Collector() *Collector
	Attach(c *Collector)
}

// Disown drops b's hold on child. A child that never reported to a
// collector, typically one never uploaded, inherits b's so it is still
// collected.
func (b *Base) Disown(child Resource) {
	if a, ok := child.(attacher); ok && a.Collector() == nil {
		a.Attach(b.Collector())
	}
	child.RemoveParent(b.ID())
}

// HasParent reports whether owner holds the resource.
func (b *Base) HasParent(owner ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.parents[owner]
	return ok
}

// ParentCount returns the number of owners.
func (b *Base) ParentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.parents)
}

// Upload attaches c and runs fn unless the resource is already uploaded.
// A failing fn is logged and leaves the resource un-uploaded.
func (b *Base) Upload(c *Collector, fn func() error) error {
	b.Attach(c)

	b.mu.Lock()
	if b.uploaded {
		b.mu.Unlock()
		return nil
	}
	name := b.name
	b.mu.Unlock()

	if err := fn(); err != nil {
		logger.Error("resource upload failed", zap.String("resource", name), zap.Error(err))
		return fmt.Errorf("init %s: %w", name, err)
	}

	b.mu.Lock()
	b.uploaded = true
	b.live = true
	b.mu.Unlock()
	return nil
}

// Flush clears the uploaded flag; handles are kept.
func (b *Base) Flush() {
	b.mu.Lock()
	b.uploaded = false
	b.mu.Unlock()
}

// Release runs fn if handles are held and marks the resource un-uploaded.
// Further calls are no-ops until the next successful Upload.
func (b *Base) Release(fn func()) {
	b.mu.Lock()
	live := b.live
	b.live = false
	b.uploaded = false
	b.mu.Unlock()

	if live && fn != nil {
		fn()
	}
}

package scene

import (
	"slices"

	"go.uber.org/multierr"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// behavior is the per-type half of a node. Node provides the defaults and
// outer types override what they need.
type behavior interface {
	drawSelf(ctx gpu.Context)
	initSelf(ctx gpu.Context, c *resource.Collector) error
	flushSelf()
	disposeSelf(ctx gpu.Context)
	hostChanged(old, next Host)
}

// Node is a transform in the scene hierarchy. It owns its children.
type Node struct {
	id   resource.ID
	name string
	self behavior

	matrix math.Mat4
	scale  float32
	world  math.Mat4

	parent   *Node
	children []*Node
	doomed   []*Node
	host     Host

	visible   bool
	destroyed bool
	disposed  bool
}

// NewNode creates a visible node with an identity transform.
func NewNode(name string) *Node {
	n := &Node{}
	n.setup(n, name)
	return n
}

func (n *Node) setup(self behavior, name string) {
	n.id = resource.NewID()
	n.name = name
	n.self = self
	n.matrix = math.Identity()
	n.world = math.Identity()
	n.scale = 1
	n.visible = true
}

// SceneNode returns n.
func (n *Node) SceneNode() *Node {
	return n
}

// ID returns the node's owner identity.
func (n *Node) ID() resource.ID {
	return n.id
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// SetName renames the node.
func (n *Node) SetName(name string) {
	n.name = name
}

// Parent returns the parent node, nil for roots and detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Host returns the engine the node is attached to, if any.
func (n *Node) Host() Host {
	return n.host
}

// SetHost attaches the subtree to an engine. Engines call this on their root.
func (n *Node) SetHost(h Host) {
	if n.host == h {
		return
	}
	old := n.host
	n.host = h
	n.self.hostChanged(old, h)
	for _, c := range n.children {
		c.SetHost(h)
	}
}

// Attach adds child under n. Attaching an existing child is a no-op.
// A child still attached elsewhere is moved.
func (n *Node) Attach(e Element) {
	child := e.SceneNode()
	if child == n || slices.Contains(n.children, child) {
		return
	}
	if child.parent != nil {
		child.parent.Detach(child)
	}
	n.children = append(n.children, child)
	child.parent = n
	child.SetHost(n.host)
}

// Detach removes child from n. Detaching a non-child is a no-op.
func (n *Node) Detach(e Element) {
	child := e.SceneNode()
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	child.SetHost(nil)
}

// DetachFromParent detaches n from its parent, if any.
func (n *Node) DetachFromParent() {
	if n.parent != nil {
		n.parent.Detach(n)
	}
}

// Visible reports whether the node draws itself.
func (n *Node) Visible() bool {
	return n.visible
}

// SetVisible toggles drawing of this node. Children are unaffected.
func (n *Node) SetVisible(v bool) {
	n.visible = v
}

// Destroy flags the node; the next graph walk disposes and detaches it.
func (n *Node) Destroy() {
	n.destroyed = true
}

// Destroyed reports whether the node is flagged for destruction.
func (n *Node) Destroyed() bool {
	return n.destroyed
}

// Doomed reports whether the node or one of its ancestors is flagged for
// destruction.
func (n *Node) Doomed() bool {
	for p := n; p != nil; p = p.parent {
		if p.destroyed {
			return true
		}
	}
	return false
}

// SetLocalMatrix replaces the local transform. Scale is kept separately.
func (n *Node) SetLocalMatrix(m math.Mat4) {
	n.matrix = m
}

// LocalMatrix returns the local transform with the uniform scale applied
// to its rotation block.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.scale == 1 {
		return n.matrix
	}
	return n.matrix.ScaleRotation(n.scale)
}

// Position returns the local translation.
func (n *Node) Position() math.Vec3 {
	return n.matrix.Translation()
}

// SetPosition replaces the local translation.
func (n *Node) SetPosition(p math.Vec3) {
	n.matrix = n.matrix.WithTranslation(p)
}

// Translate moves the node by d in parent space.
func (n *Node) Translate(d math.Vec3) {
	n.matrix = n.matrix.WithTranslation(n.matrix.Translation().Add(d))
}

// Rotate replaces the rotation with angleDeg degrees about axis,
// keeping the translation.
func (n *Node) Rotate(angleDeg float32, axis math.Vec3) {
	t := n.matrix.Translation()
	n.matrix = math.RotateAxis(axis, math.Radians(angleDeg)).WithTranslation(t)
}

// MultRotate applies angleDeg degrees about axis (in parent space) after the
// current rotation, keeping the translation.
func (n *Node) MultRotate(angleDeg float32, axis math.Vec3) {
	t := n.matrix.Translation()
	r := n.matrix.WithTranslation(math.Vec3{})
	n.matrix = math.RotateAxis(axis, math.Radians(angleDeg)).Mul(r).WithTranslation(t)
}

// UniformScale returns the scale factor.
func (n *Node) UniformScale() float32 {
	return n.scale
}

// SetUniformScale sets the scale applied to the rotation block.
func (n *Node) SetUniformScale(s float32) {
	n.scale = s
}

// WorldMatrix returns the world transform computed by the last graph walk.
func (n *Node) WorldMatrix() math.Mat4 {
	return n.world
}

// WorldPosition returns the translation of the world transform.
func (n *Node) WorldPosition() math.Vec3 {
	return n.world.Translation()
}

// Draw walks the subtree: world transforms are recomputed, visible objects
// draw or defer themselves, and destroyed children are disposed. Children
// are removed only after the walk over n's list completes.
func (n *Node) Draw(ctx gpu.Context, parentWorld math.Mat4) {
	n.world = parentWorld.Mul(n.LocalMatrix())
	if n.visible {
		n.self.drawSelf(ctx)
	}

	n.doomed = n.doomed[:0]
	for _, c := range n.children {
		if c.destroyed {
			c.Dispose(ctx)
			n.doomed = append(n.doomed, c)
			continue
		}
		c.Draw(ctx, n.world)
	}
	for _, c := range n.doomed {
		n.Detach(c)
	}
	clear(n.doomed)
	n.doomed = n.doomed[:0]
}

// UpdateWorld recomputes world transforms of the subtree without drawing.
// Destroyed subtrees are skipped.
func (n *Node) UpdateWorld(parentWorld math.Mat4) {
	n.world = parentWorld.Mul(n.LocalMatrix())
	for _, c := range n.children {
		if !c.destroyed {
			c.UpdateWorld(n.world)
		}
	}
}

// Init uploads the resources of the whole subtree. Failures are logged by
// the resources; the combined error is returned for inspection.
func (n *Node) Init(ctx gpu.Context) error {
	var c *resource.Collector
	if n.host != nil {
		c = n.host.Collector()
	}
	err := n.self.initSelf(ctx, c)
	for _, child := range n.children {
		err = multierr.Append(err, child.Init(ctx))
	}
	return err
}

// VRAMFlushed marks every resource in the subtree for re-upload.
func (n *Node) VRAMFlushed() {
	n.self.flushSelf()
	for _, c := range n.children {
		c.VRAMFlushed()
	}
}

// Dispose flags the subtree destroyed and releases its resources.
// Calling it again is a no-op.
func (n *Node) Dispose(ctx gpu.Context) {
	if n.disposed {
		return
	}
	n.disposed = true
	n.destroyed = true
	for _, c := range n.children {
		c.Dispose(ctx)
	}
	n.self.disposeSelf(ctx)
}

// Walk calls fn for n and every descendant, depth first, until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) drawSelf(gpu.Context) {}

func (n *Node) initSelf(gpu.Context, *resource.Collector) error { return nil }

func (n *Node) flushSelf() {}

func (n *Node) disposeSelf(gpu.Context) {}

func (n *Node) hostChanged(Host, Host) {}

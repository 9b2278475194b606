// Package camera provides the scene camera and an orbit controller for it.
package camera

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Mode selects the projection.
type Mode uint8

const (
	Perspective Mode = iota
	Orthographic
)

func (m Mode) String() string {
	if m == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "perspective":
		return Perspective, true
	case "orthographic", "ortho":
		return Orthographic, true
	}
	return Perspective, false
}

// Frustum corner indices returned by Camera.Frustum.
const (
	NearRightTop = iota
	NearLeftTop
	NearLeftBottom
	NearRightBottom
	FarRightTop
	FarLeftTop
	FarLeftBottom
	FarRightBottom
)

// Camera holds view and projection parameters. View and projection are
// cached separately and only recombined by UpdateViewProjection.
type Camera struct {
	id resource.ID

	left, right, bottom, top, near, far float32
	mode                                Mode
	autoAspect                          bool
	aspect                              float32

	eye, target, up math.Vec3

	view, proj, viewProj math.Mat4
	viewDirty, projDirty bool

	depth *gpuobj.RenderTarget
}

// New creates a perspective camera at (0,0,10) looking at the origin.
func New() *Camera {
	c := &Camera{
		id:         resource.NewID(),
		left:       -0.5,
		right:      0.5,
		bottom:     -0.5,
		top:        0.5,
		near:       1,
		far:        1000,
		autoAspect: true,
		aspect:     1,
		eye:        math.V3(0, 0, 10),
		up:         math.V3(0, 1, 0),
		viewDirty:  true,
		projDirty:  true,
	}
	c.UpdateViewProjection()
	return c
}

// ID returns the camera's owner identity.
func (c *Camera) ID() resource.ID {
	return c.id
}

// SetParameters sets the frustum. With auto-aspect enabled left and right
// should be symmetric; they are stretched by the viewport aspect.
func (c *Camera) SetParameters(left, right, bottom, top, near, far float32) {
	c.left, c.right, c.bottom, c.top, c.near, c.far = left, right, bottom, top, near, far
	c.projDirty = true
}

// Parameters returns the frustum as set, without aspect stretching.
func (c *Camera) Parameters() (left, right, bottom, top, near, far float32) {
	return c.left, c.right, c.bottom, c.top, c.near, c.far
}

// Mode returns the projection mode.
func (c *Camera) Mode() Mode {
	return c.mode
}

// SetMode switches between perspective and orthographic projection.
func (c *Camera) SetMode(m Mode) {
	c.mode = m
	c.projDirty = true
}

// AutoAspect reports whether left/right follow the viewport aspect.
func (c *Camera) AutoAspect() bool {
	return c.autoAspect
}

// SetAutoAspect toggles aspect stretching.
func (c *Camera) SetAutoAspect(on bool) {
	c.autoAspect = on
	c.projDirty = true
}

// Aspect returns the current viewport aspect (width / height).
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// SetAspect records the viewport aspect. Non-positive values are ignored.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.projDirty = true
}

// SetPosition sets eye, target and up at once.
func (c *Camera) SetPosition(eye, target, up math.Vec3) {
	c.eye, c.target, c.up = eye, target, up
	c.viewDirty = true
}

// SetEye moves the camera.
func (c *Camera) SetEye(eye math.Vec3) {
	c.eye = eye
	c.viewDirty = true
}

// SetTarget sets the look-at point.
func (c *Camera) SetTarget(target math.Vec3) {
	c.target = target
	c.viewDirty = true
}

// SetUp sets the up hint.
func (c *Camera) SetUp(up math.Vec3) {
	c.up = up
	c.viewDirty = true
}

// Eye returns the camera position.
func (c *Camera) Eye() math.Vec3 { return c.eye }

// Target returns the look-at point.
func (c *Camera) Target() math.Vec3 { return c.target }

// Up returns the up hint.
func (c *Camera) Up() math.Vec3 { return c.up }

// Direction returns the normalized view direction in world space.
func (c *Camera) Direction() math.Vec3 {
	return c.target.Sub(c.eye).Normalize()
}

// View returns the world-to-camera matrix.
func (c *Camera) View() math.Mat4 {
	if c.viewDirty {
		c.view = math.ViewMatrix(c.eye, c.target, c.up)
		c.viewDirty = false
	}
	return c.view
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() math.Mat4 {
	if c.projDirty {
		l, r := c.horizontal()
		if c.mode == Orthographic {
			c.proj = math.OrthoMatrix(l, r, c.bottom, c.top, c.near, c.far)
		} else {
			c.proj = math.FrustumMatrix(l, r, c.bottom, c.top, c.near, c.far)
		}
		c.projDirty = false
	}
	return c.proj
}

// UpdateViewProjection recombines view and projection. The engine calls it
// once per frame.
func (c *Camera) UpdateViewProjection() math.Mat4 {
	c.viewProj = c.Projection().Mul(c.View())
	return c.viewProj
}

// ViewProjection returns the matrix from the last UpdateViewProjection.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.viewProj
}

func (c *Camera) horizontal() (left, right float32) {
	if c.autoAspect {
		return c.left * c.aspect, c.right * c.aspect
	}
	return c.left, c.right
}

// Frustum returns the eight corners of the view volume in camera space,
// indexed by the Near*/Far* constants.
func (c *Camera) Frustum() [8]math.Vec3 {
	l, r := c.horizontal()
	b, t, n, f := c.bottom, c.top, c.near, c.far

	nearCorners := [4]math.Vec3{
		{X: r, Y: t, Z: -n},
		{X: l, Y: t, Z: -n},
		{X: l, Y: b, Z: -n},
		{X: r, Y: b, Z: -n},
	}
	scale := float32(1)
	if c.mode == Perspective {
		scale = f / n
	}

	var corners [8]math.Vec3
	for i, p := range nearCorners {
		corners[i] = p
		corners[i+4] = math.Vec3{X: p.X * scale, Y: p.Y * scale, Z: -f}
	}
	return corners
}

// FrustumCenter returns the centroid of the frustum corners in camera space.
func (c *Camera) FrustumCenter() math.Vec3 {
	corners := c.Frustum()
	return math.Centroid(corners[:])
}

// FrustumCenterWorld returns FrustumCenter in world space.
func (c *Camera) FrustumCenterWorld() math.Vec3 {
	return c.View().Inverse().TransformPoint(c.FrustumCenter())
}

// EnableDepthCapture allocates a size x size depth target the engine
// renders shadow casters into each frame.
func (c *Camera) EnableDepthCapture(size int32) {
	if c.depth != nil {
		return
	}
	c.depth = gpuobj.NewDepthTarget("camera depth", size)
	c.depth.AddParent(c.id)
}

// DisableDepthCapture releases the depth target.
func (c *Camera) DisableDepthCapture() {
	if c.depth == nil {
		return
	}
	c.depth.RemoveParent(c.id)
	c.depth = nil
}

// DepthTarget returns the depth capture target, nil when disabled.
func (c *Camera) DepthTarget() *gpuobj.RenderTarget {
	return c.depth
}

// Init allocates the depth capture target, if enabled.
func (c *Camera) Init(ctx gpu.Context, col *resource.Collector) error {
	if c.depth == nil {
		return nil
	}
	return c.depth.Init(ctx, col)
}

// VRAMFlushed forgets the depth target upload.
func (c *Camera) VRAMFlushed() {
	if c.depth != nil {
		c.depth.VRAMFlushed()
	}
}

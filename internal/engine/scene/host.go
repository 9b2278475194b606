// Package scene implements the transform hierarchy and the renderable
// objects hung from it.
package scene

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Frame is the per-frame state shared by every draw of one Display call.
type Frame struct {
	View           math.Mat4
	Projection     math.Mat4
	ViewProjection math.Mat4
	// Lights is the packed light block, already in view space.
	Lights []math.Vec4
	Shadow *gpuobj.ShadowInfo
	// Viewport is x, y, width, height in pixels.
	Viewport [4]int32

	DrawCalls int
}

// Host is the engine a subtree is attached to.
type Host interface {
	Collector() *resource.Collector
	Frame() *Frame
	// Defer queues a non-opaque object for the sorted transparent pass.
	Defer(d Drawable)
	Register(m *Model)
	Unregister(m *Model)
}

// Element is anything that can be attached to a Node.
type Element interface {
	SceneNode() *Node
}

// Drawable is an element that draws itself.
type Drawable interface {
	Element
	BlendMode() gpu.BlendMode
	// DrawObject issues this object's draw calls and returns how many.
	DrawObject(ctx gpu.Context) int
}

// Shadowable is implemented by objects that can render into a shadow map.
type Shadowable interface {
	CastsShadow() bool
	ShadowGeometry() []*gpuobj.Bundle
	WorldMatrix() math.Mat4
}

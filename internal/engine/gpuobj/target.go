package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
)

// DefaultShadowResolution is the shadow map size used when none is given.
const DefaultShadowResolution = 2048

// RenderTarget is an offscreen framebuffer.
type RenderTarget struct {
	resource.Base
	desc   gpu.TargetDesc
	target gpu.Target
}

// NewRenderTarget describes a target; it is allocated on Init.
func NewRenderTarget(name string, desc gpu.TargetDesc) *RenderTarget {
	if desc.Width <= 0 {
		desc.Width = DefaultShadowResolution
	}
	if desc.Height <= 0 {
		desc.Height = desc.Width
	}
	rt := &RenderTarget{desc: desc}
	rt.Setup(rt, name)
	return rt
}

// NewDepthTarget describes a square depth-only target for shadow maps.
func NewDepthTarget(name string, size int32) *RenderTarget {
	return NewRenderTarget(name, gpu.TargetDesc{Width: size, Height: size, DepthOnly: true})
}

// Desc returns the requested description.
func (rt *RenderTarget) Desc() gpu.TargetDesc {
	return rt.desc
}

// Target returns the native handles.
func (rt *RenderTarget) Target() gpu.Target {
	return rt.target
}

// Init allocates the framebuffer.
func (rt *RenderTarget) Init(ctx gpu.Context, c *resource.Collector) error {
	return rt.Upload(c, func() error {
		t, err := ctx.CreateTarget(rt.desc)
		if err != nil {
			return err
		}
		rt.target = t
		return nil
	})
}

// VRAMFlushed forces reallocation on the next Init.
func (rt *RenderTarget) VRAMFlushed() {
	rt.Flush()
}

// Dispose releases the framebuffer and its attachments.
func (rt *RenderTarget) Dispose(ctx gpu.Context) {
	rt.Release(func() {
		ctx.DeleteTarget(rt.target)
		rt.target = gpu.Target{}
	})
}

// Begin binds the target and clears depth. Returns false if not allocated.
func (rt *RenderTarget) Begin(ctx gpu.Context) bool {
	if !rt.Uploaded() {
		return false
	}
	ctx.BindTarget(rt.target)
	if rt.desc.DepthOnly {
		ctx.ClearDepth()
		ctx.SetCullFront(true)
	} else {
		ctx.Clear([4]float32{0, 0, 0, 1})
	}
	return true
}

// End restores the default framebuffer and viewport.
func (rt *RenderTarget) End(ctx gpu.Context, viewport [4]int32) {
	ctx.UnbindTarget()
	if rt.desc.DepthOnly {
		ctx.SetCullFront(false)
	}
	ctx.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
}

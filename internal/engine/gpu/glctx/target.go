package glctx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
)

// CreateTarget allocates an offscreen framebuffer.
// Depth-only targets get a comparison-ready depth texture for sampler2DShadow.
func (c *Context) CreateTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	t := gpu.Target{Width: max(desc.Width, 1), Height: max(desc.Height, 1)}

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.GenTextures(1, &t.Texture)
	gl.BindTexture(gl.TEXTURE_2D, t.Texture)

	if desc.DepthOnly {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, t.Width, t.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

		// Clamp to border with white (1.0) to avoid shadow outside frustum
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
		borderColor := []float32{1.0, 1.0, 1.0, 1.0}
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.Texture, 0)
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.Width, t.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.Texture, 0)

		gl.GenRenderbuffers(1, &t.Depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.Depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.Width, t.Height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.Depth)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.DeleteTarget(t)
		return gpu.Target{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

// BindTarget makes t the current render target and sizes the viewport to it.
func (c *Context) BindTarget(t gpu.Target) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.Viewport(0, 0, t.Width, t.Height)
}

// UnbindTarget restores the default framebuffer.
func (c *Context) UnbindTarget() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// DeleteTarget releases all handles of t.
func (c *Context) DeleteTarget(t gpu.Target) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
	}
	if t.Texture != 0 {
		gl.DeleteTextures(1, &t.Texture)
	}
	if t.Depth != 0 {
		gl.DeleteRenderbuffers(1, &t.Depth)
	}
}

// ReadPixels reads the color attachment into RGBA bytes, bottom row first.
func (c *Context) ReadPixels(t gpu.Target) []byte {
	width, height := t.Width, t.Height
	if t.FBO == 0 {
		var vp [4]int32
		gl.GetIntegerv(gl.VIEWPORT, &vp[0])
		width, height = vp[2], vp[3]
	}
	pixels := make([]byte, width*height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)

	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	return pixels
}

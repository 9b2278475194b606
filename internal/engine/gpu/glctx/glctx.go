// Package glctx implements gpu.Context on OpenGL 4.1 core.
package glctx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/logger"
)

type geometry struct {
	vbos  []uint32
	ebo   uint32
	count int32
	index bool
}

// Context is an OpenGL-backed gpu.Context.
// IMPORTANT: Must be created AFTER the OpenGL context is current.
type Context struct {
	info       gpu.Info
	geometries map[uint32]*geometry
	uniforms   map[uint32]map[string]int32
}

var _ gpu.Context = (*Context)(nil)

// New loads the GL function pointers and returns a context.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	c := &Context{
		info: gpu.Info{
			Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
			Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
			Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		},
		geometries: make(map[uint32]*geometry),
		uniforms:   make(map[uint32]map[string]int32),
	}

	logger.Info("OpenGL initialized",
		zap.String("version", c.info.Version),
		zap.String("renderer", c.info.Renderer),
	)
	return c, nil
}

// Info returns driver strings captured at creation.
func (c *Context) Info() gpu.Info {
	return c.info
}

// Error pops the oldest pending GL error.
func (c *Context) Error() uint32 {
	return gl.GetError()
}

// SetDefaults applies the engine's baseline state.
func (c *Context) SetDefaults() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Disable(gl.BLEND)
}

// Clear clears color and depth buffers with the specified color.
func (c *Context) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ClearDepth clears only the depth buffer.
func (c *Context) ClearDepth() {
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// Viewport sets the GL viewport.
func (c *Context) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

// SetBlend configures blending and depth writes for mode.
func (c *Context) SetBlend(mode gpu.BlendMode) {
	switch mode {
	case gpu.Alpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	case gpu.Additive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		gl.DepthMask(false)
	case gpu.Reverse:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE_MINUS_DST_COLOR, gl.ZERO)
		gl.DepthMask(false)
	default:
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}
}

// SetCullFront switches to front-face culling (shadow pass) and back.
func (c *Context) SetCullFront(front bool) {
	if front {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

// CreateGeometry uploads vertex data into a VAO and returns its name.
func (c *Context) CreateGeometry(data gpu.MeshData) (uint32, error) {
	if data.VertexCount() == 0 {
		return 0, fmt.Errorf("geometry has no vertices")
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	g := &geometry{count: int32(data.VertexCount())}
	g.vbos = append(g.vbos, uploadAttrib(gpu.AttribPosition, 3, data.Positions))
	if len(data.Normals) > 0 {
		g.vbos = append(g.vbos, uploadAttrib(gpu.AttribNormal, 3, data.Normals))
	}
	if len(data.UVs) > 0 {
		g.vbos = append(g.vbos, uploadAttrib(gpu.AttribUV, 2, data.UVs))
	}

	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
		g.count = int32(len(data.Indices))
		g.index = true
	}

	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		c.deleteGeometry(vao, g)
		return 0, fmt.Errorf("uploading geometry: gl error 0x%x", code)
	}

	c.geometries[vao] = g
	return vao, nil
}

func uploadAttrib(loc uint32, size int32, values []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(values)*4, gl.Ptr(values), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, 0, 0)
	return vbo
}

// DrawGeometry draws every triangle of the geometry.
func (c *Context) DrawGeometry(id uint32) {
	g, ok := c.geometries[id]
	if !ok {
		return
	}
	gl.BindVertexArray(id)
	if g.index {
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, g.count)
	}
	gl.BindVertexArray(0)
}

// DeleteGeometry releases the VAO and its buffers.
func (c *Context) DeleteGeometry(id uint32) {
	g, ok := c.geometries[id]
	if !ok {
		return
	}
	delete(c.geometries, id)
	c.deleteGeometry(id, g)
}

func (c *Context) deleteGeometry(vao uint32, g *geometry) {
	if len(g.vbos) > 0 {
		gl.DeleteBuffers(int32(len(g.vbos)), &g.vbos[0])
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	gl.DeleteVertexArrays(1, &vao)
}

// BindTexture binds a 2D texture to the given unit index (0-based).
func (c *Context) BindTexture(unit uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// CreateTexture uploads RGBA8 pixels.
func (c *Context) CreateTexture(desc gpu.TextureDesc, rgba []byte) (uint32, error) {
	if desc.Width < 1 || desc.Height < 1 {
		return 0, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if want := int(desc.Width * desc.Height * 4); len(rgba) != want {
		return 0, fmt.Errorf("pixel data size mismatch: expected %d, got %d", want, len(rgba))
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, desc.Width, desc.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))

	filter := int32(gl.NEAREST)
	if desc.Linear {
		filter = gl.LINEAR
	}
	wrap := int32(gl.CLAMP_TO_EDGE)
	if desc.Repeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("uploading texture: gl error 0x%x", code)
	}
	return tex, nil
}

// DeleteTexture releases a texture.
func (c *Context) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

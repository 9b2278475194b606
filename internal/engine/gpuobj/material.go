package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj/shaders"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// MaxLights is the number of lights a material can shade with.
const MaxLights = shaders.MaxLights

// ShadowInfo carries the shadow map sampled by the main pass.
type ShadowInfo struct {
	// Matrix maps world space to the light's clip space.
	Matrix  math.Mat4
	Texture uint32
}

// Uniforms is the per-draw state a material binds.
type Uniforms struct {
	Model     math.Mat4
	ModelView math.Mat4
	MVP       math.Mat4
	Normal    math.Mat3
	Lit       bool
	// Lights packs three vec4 per light: position or direction in view
	// space, power, ambient.
	Lights []math.Vec4
	Shadow *ShadowInfo
}

// Material binds a program and its parameters for a draw.
type Material interface {
	resource.Resource
	// Bind makes the material current. Returns false if it cannot draw.
	Bind(ctx gpu.Context, u *Uniforms) bool
	Unbind(ctx gpu.Context)
}

// NewBasicProgram returns the lit/textured program.
func NewBasicProgram() *Program {
	return NewProgram("basic", shaders.BasicVertexShader, shaders.BasicFragmentShader)
}

// NewDepthProgram returns the depth-only program.
func NewDepthProgram() *Program {
	return NewProgram("depth", shaders.DepthVertexShader, shaders.DepthFragmentShader)
}

// BasicMaterial is a flat color, optionally textured, with Lambert lighting.
type BasicMaterial struct {
	resource.Base
	program *Program
	texture *Texture
	Color   math.Vec4
}

// NewBasicMaterial creates a material drawing with program. texture may be nil.
// The material becomes a parent of both.
func NewBasicMaterial(name string, program *Program, texture *Texture, color math.Vec4) *BasicMaterial {
	m := &BasicMaterial{program: program, texture: texture, Color: color}
	m.Setup(m, name)
	program.AddParent(m.ID())
	if texture != nil {
		texture.AddParent(m.ID())
	}
	return m
}

// Program returns the material's program.
func (m *BasicMaterial) Program() *Program {
	return m.program
}

// Texture returns the material's texture, possibly nil.
func (m *BasicMaterial) Texture() *Texture {
	return m.texture
}

// Init uploads the program and texture.
func (m *BasicMaterial) Init(ctx gpu.Context, c *resource.Collector) error {
	return m.Upload(c, func() error {
		if err := m.program.Init(ctx, c); err != nil {
			return err
		}
		if m.texture != nil {
			return m.texture.Init(ctx, c)
		}
		return nil
	})
}

// VRAMFlushed propagates to the program and texture.
func (m *BasicMaterial) VRAMFlushed() {
	m.Flush()
	m.program.VRAMFlushed()
	if m.texture != nil {
		m.texture.VRAMFlushed()
	}
}

// Dispose drops the material's hold on its program and texture.
func (m *BasicMaterial) Dispose(ctx gpu.Context) {
	m.Release(nil)
	m.Disown(m.program)
	if m.texture != nil {
		m.Disown(m.texture)
	}
}

// Bind sets the program and all uniforms.
func (m *BasicMaterial) Bind(ctx gpu.Context, u *Uniforms) bool {
	if !m.Uploaded() || !m.program.Uploaded() {
		return false
	}
	p := m.program.Handle()
	ctx.UseProgram(p)
	ctx.UniformMat4(p, "uMVP", u.MVP)
	ctx.UniformMat4(p, "uModelView", u.ModelView)
	ctx.UniformMat4(p, "uModel", u.Model)
	ctx.UniformMat3(p, "uNormalMatrix", u.Normal)
	ctx.UniformVec4s(p, "uColor", []math.Vec4{m.Color})

	lit := int32(0)
	if u.Lit && len(u.Lights) > 0 {
		lit = 1
		ctx.UniformVec4s(p, "uLights", u.Lights)
	}
	ctx.UniformInt(p, "uLit", lit)
	ctx.UniformInt(p, "uLightCount", int32(len(u.Lights)/3))

	if m.texture != nil && m.texture.Uploaded() {
		ctx.BindTexture(0, m.texture.Handle())
		ctx.UniformInt(p, "uTexture", 0)
		ctx.UniformInt(p, "uTextured", 1)
	} else {
		ctx.UniformInt(p, "uTextured", 0)
	}

	if u.Shadow != nil && u.Lit {
		ctx.BindTexture(1, u.Shadow.Texture)
		ctx.UniformInt(p, "uShadowMap", 1)
		ctx.UniformMat4(p, "uShadowMatrix", u.Shadow.Matrix)
		ctx.UniformInt(p, "uShadowed", 1)
	} else {
		ctx.UniformInt(p, "uShadowed", 0)
	}
	return true
}

// Unbind clears the program.
func (m *BasicMaterial) Unbind(ctx gpu.Context) {
	ctx.UseProgram(0)
}

// DepthMaterial renders positions only. The engine keeps one pinned
// instance for shadow and depth-capture passes.
type DepthMaterial struct {
	resource.Base
	program *Program
}

// NewDepthMaterial creates a depth material with its own program.
func NewDepthMaterial() *DepthMaterial {
	m := &DepthMaterial{program: NewDepthProgram()}
	m.Setup(m, "depth")
	m.program.AddParent(m.ID())
	return m
}

// Init compiles the depth program.
func (m *DepthMaterial) Init(ctx gpu.Context, c *resource.Collector) error {
	return m.Upload(c, func() error {
		return m.program.Init(ctx, c)
	})
}

// VRAMFlushed propagates to the program.
func (m *DepthMaterial) VRAMFlushed() {
	m.Flush()
	m.program.VRAMFlushed()
}

// Dispose releases the program.
func (m *DepthMaterial) Dispose(ctx gpu.Context) {
	m.Release(nil)
	m.Disown(m.program)
}

// Bind sets the depth program and MVP.
func (m *DepthMaterial) Bind(ctx gpu.Context, u *Uniforms) bool {
	if !m.Uploaded() || !m.program.Uploaded() {
		return false
	}
	p := m.program.Handle()
	ctx.UseProgram(p)
	ctx.UniformMat4(p, "uMVP", u.MVP)
	return true
}

// Unbind clears the program.
func (m *DepthMaterial) Unbind(ctx gpu.Context) {
	ctx.UseProgram(0)
}

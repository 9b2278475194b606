package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj/shaders"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// QuadOrigin selects the quad corner placed at the owner's position.
type QuadOrigin int

const (
	OriginBottomLeft QuadOrigin = iota
	OriginCenter
	OriginTopLeft
)

// QuadData returns a unit quad in the XY plane shifted so origin sits at
// (0, 0). UVs follow the bottom-up row order textures are uploaded in.
func QuadData(origin QuadOrigin) gpu.MeshData {
	var dx, dy float32
	switch origin {
	case OriginCenter:
		dx, dy = -0.5, -0.5
	case OriginTopLeft:
		dy = -1
	}
	return gpu.MeshData{
		Positions: []float32{
			dx, dy, 0,
			1 + dx, dy, 0,
			1 + dx, 1 + dy, 0,
			dx, 1 + dy, 0,
		},
		UVs:     []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// NewBillboardProgram returns the unlit screen-facing program.
func NewBillboardProgram() *Program {
	return NewProgram("billboard", shaders.BillboardVertexShader, shaders.BillboardFragmentShader)
}

// BillboardMaterial draws a textured quad whose MVP was built by
// math.BillboardMatrix. It ignores lights and shadows.
type BillboardMaterial struct {
	resource.Base
	program *Program
	texture *Texture
	Color   math.Vec4
	// MirrorY flips the texture vertically, for render-target images.
	MirrorY bool
}

// NewBillboardMaterial creates a material over texture, which may be nil.
// The material becomes a parent of the program and texture.
func NewBillboardMaterial(name string, program *Program, texture *Texture) *BillboardMaterial {
	m := &BillboardMaterial{program: program, texture: texture, Color: math.Vec4{1, 1, 1, 1}}
	m.Setup(m, name)
	program.AddParent(m.ID())
	if texture != nil {
		texture.AddParent(m.ID())
	}
	return m
}

// Texture returns the material's texture, possibly nil.
func (m *BillboardMaterial) Texture() *Texture {
	return m.texture
}

// Init uploads the program and texture.
func (m *BillboardMaterial) Init(ctx gpu.Context, c *resource.Collector) error {
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
func (m *BillboardMaterial) VRAMFlushed() {
	m.Flush()
	m.program.VRAMFlushed()
	if m.texture != nil {
		m.texture.VRAMFlushed()
	}
}

// Dispose drops the material's hold on its program and texture.
func (m *BillboardMaterial) Dispose(ctx gpu.Context) {
	m.Release(nil)
	m.Disown(m.program)
	if m.texture != nil {
		m.Disown(m.texture)
	}
}

// Bind sets the program, the MVP and the texture.
func (m *BillboardMaterial) Bind(ctx gpu.Context, u *Uniforms) bool {
	if !m.Uploaded() || !m.program.Uploaded() {
		return false
	}
	p := m.program.Handle()
	ctx.UseProgram(p)
	ctx.UniformMat4(p, "uMVP", u.MVP)
	ctx.UniformVec4s(p, "uColor", []math.Vec4{m.Color})

	mirror := int32(0)
	if m.MirrorY {
		mirror = 1
	}
	ctx.UniformInt(p, "uMirrorY", mirror)

	if m.texture != nil && m.texture.Uploaded() {
		ctx.BindTexture(0, m.texture.Handle())
		ctx.UniformInt(p, "uTexture", 0)
		ctx.UniformInt(p, "uTextured", 1)
	} else {
		ctx.UniformInt(p, "uTextured", 0)
	}
	return true
}

// Unbind clears the program.
func (m *BillboardMaterial) Unbind(ctx gpu.Context) {
	ctx.UseProgram(0)
}

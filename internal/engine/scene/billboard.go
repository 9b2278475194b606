package scene

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Space selects how a billboard's position is interpreted.
type Space int

const (
	// WorldSpace anchors the billboard at its world position. It is depth
	// tested against the rest of the scene.
	WorldSpace Space = iota
	// ScreenSpace reads the local position as normalized device
	// coordinates, z included.
	ScreenSpace
)

// Billboard is an unlit textured quad that always faces the screen. Its
// size is given in pixels and does not change with distance.
type Billboard struct {
	Object

	bundle   *gpuobj.Bundle
	material *gpuobj.BillboardMaterial
	width    float32
	height   float32
	scale    float32
	angle    float32
	space    Space
}

// NewBillboard creates a billboard drawing texture with program. Its size
// is the texture's; without a texture it is a 1x1 grey quad until SetSize.
func NewBillboard(name string, program *gpuobj.Program, texture *gpuobj.Texture, origin gpuobj.QuadOrigin) *Billboard {
	b := &Billboard{scale: 1, width: 1, height: 1}
	b.setupObject(b, b, name)
	b.lit = false

	b.material = gpuobj.NewBillboardMaterial(name, program, texture)
	if texture != nil {
		w, h := texture.Size()
		b.width, b.height = float32(w), float32(h)
	} else {
		b.material.Color = math.Vec4{0.5, 0.5, 0.5, 1}
	}
	b.bundle = gpuobj.NewBundle(name, gpuobj.NewGeometry(name, gpuobj.QuadData(origin)), b.material)
	b.bundle.AddParent(b.ID())
	return b
}

// Material returns the billboard's material.
func (b *Billboard) Material() *gpuobj.BillboardMaterial {
	return b.material
}

// Bundle returns the quad and its material.
func (b *Billboard) Bundle() *gpuobj.Bundle {
	return b.bundle
}

// Size returns the unscaled size in pixels.
func (b *Billboard) Size() (width, height float32) {
	return b.width, b.height
}

// SetSize sets the unscaled size in pixels.
func (b *Billboard) SetSize(width, height float32) {
	b.width, b.height = width, height
}

// Scale returns the size multiplier.
func (b *Billboard) Scale() float32 {
	return b.scale
}

// SetScale sets the size multiplier.
func (b *Billboard) SetScale(s float32) {
	b.scale = s
}

// Angle returns the turn about the view axis in degrees.
func (b *Billboard) Angle() float32 {
	return b.angle
}

// SetAngle turns the quad about the view axis, counter-clockwise on screen.
func (b *Billboard) SetAngle(deg float32) {
	b.angle = deg
}

// Space returns how the position is interpreted.
func (b *Billboard) Space() Space {
	return b.space
}

// SetSpace switches between world and screen anchoring.
func (b *Billboard) SetSpace(s Space) {
	b.space = s
}

// ClipMatrix returns the matrix mapping the quad to clip space for f.
// The view's rotation never reaches the quad.
func (b *Billboard) ClipMatrix(f *Frame) math.Mat4 {
	var center math.Vec4
	if b.space == ScreenSpace {
		center = b.Position().Vec4(1)
	} else {
		center = f.ViewProjection.MulVec4(b.world.Translation().Vec4(1))
	}
	return math.BillboardMatrix(center, b.width*b.scale, b.height*b.scale,
		math.Radians(b.angle), float32(f.Viewport[2]), float32(f.Viewport[3]))
}

// DrawObject draws the quad. Nothing is drawn before the host has a
// viewport.
func (b *Billboard) DrawObject(ctx gpu.Context) int {
	if b.host == nil || b.bundle == nil {
		return 0
	}
	f := b.host.Frame()
	if f.Viewport[2] <= 0 || f.Viewport[3] <= 0 {
		return 0
	}
	u := gpuobj.Uniforms{
		Model: b.world,
		MVP:   b.ClipMatrix(f),
	}

	ctx.SetBlend(b.blend)
	drawn := 0
	if b.bundle.Draw(ctx, b.host.Collector(), &u) {
		drawn = 1
	}
	ctx.SetBlend(gpu.Opaque)
	return drawn
}

func (b *Billboard) initSelf(ctx gpu.Context, c *resource.Collector) error {
	if b.bundle == nil {
		return nil
	}
	return b.bundle.Init(ctx, c)
}

func (b *Billboard) flushSelf() {
	if b.bundle != nil {
		b.bundle.VRAMFlushed()
	}
}

func (b *Billboard) disposeSelf(gpu.Context) {
	if b.bundle == nil {
		return
	}
	b.bundle.RemoveParent(b.ID())
	b.bundle = nil
}

func (b *Billboard) hostChanged(_, next Host) {
	if next != nil && b.bundle != nil {
		b.bundle.Attach(next.Collector())
	}
}

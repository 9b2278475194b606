package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Bundle pairs one geometry with the material it is drawn with.
type Bundle struct {
	resource.Base
	geometry *Geometry
	material Material
	// broken suppresses lazy re-upload after a failure until the next flush.
	broken bool
}

// NewBundle creates a bundle that owns geometry and material.
func NewBundle(name string, geometry *Geometry, material Material) *Bundle {
	b := &Bundle{geometry: geometry, material: material}
	b.Setup(b, name)
	geometry.AddParent(b.ID())
	material.AddParent(b.ID())
	return b
}

// Geometry returns the bundle's geometry.
func (b *Bundle) Geometry() *Geometry {
	return b.geometry
}

// Material returns the bundle's material.
func (b *Bundle) Material() Material {
	return b.material
}

// Bounds returns the geometry's local bounding box.
func (b *Bundle) Bounds() math.AABB {
	return b.geometry.Bounds()
}

// Init uploads the geometry and material.
func (b *Bundle) Init(ctx gpu.Context, c *resource.Collector) error {
	return b.Upload(c, func() error {
		if err := b.geometry.Init(ctx, c); err != nil {
			return err
		}
		return b.material.Init(ctx, c)
	})
}

// VRAMFlushed propagates to the geometry and material.
func (b *Bundle) VRAMFlushed() {
	b.Flush()
	b.broken = false
	b.geometry.VRAMFlushed()
	b.material.VRAMFlushed()
}

// Dispose drops the bundle's hold on its geometry and material.
func (b *Bundle) Dispose(ctx gpu.Context) {
	b.Release(nil)
	b.Disown(b.geometry)
	b.Disown(b.material)
}

// InSight reports whether the geometry's bounds may be visible under mvp.
func (b *Bundle) InSight(mvp math.Mat4) bool {
	return b.geometry.Bounds().VisibleFrom(mvp)
}

// Draw uploads the bundle on first use, culls it against u.MVP and draws it
// with its own material. Returns true if a draw call was issued.
func (b *Bundle) Draw(ctx gpu.Context, c *resource.Collector, u *Uniforms) bool {
	return b.DrawWith(ctx, c, b.material, u)
}

// DrawWith is Draw with the material replaced, used by depth passes.
func (b *Bundle) DrawWith(ctx gpu.Context, c *resource.Collector, m Material, u *Uniforms) bool {
	if !b.Uploaded() {
		if b.broken {
			return false
		}
		if err := b.Init(ctx, c); err != nil {
			b.broken = true
			return false
		}
	}
	if !b.InSight(u.MVP) {
		return false
	}
	if !m.Bind(ctx, u) {
		return false
	}
	drawn := b.geometry.Draw(ctx)
	m.Unbind(ctx)
	return drawn
}

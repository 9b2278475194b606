// Package gpuobj holds the concrete GPU resources the scene draws with.
package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Geometry is an uploaded vertex array.
type Geometry struct {
	resource.Base
	data   gpu.MeshData
	bounds math.AABB
	handle uint32
}

// NewGeometry wraps vertex data. Nothing is uploaded until Init.
func NewGeometry(name string, data gpu.MeshData) *Geometry {
	g := &Geometry{
		data:   data,
		bounds: math.BoundsOf(data.Positions),
	}
	g.Setup(g, name)
	return g
}

// Bounds returns the local-space bounding box.
func (g *Geometry) Bounds() math.AABB {
	return g.bounds
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return g.data.VertexCount()
}

// Handle returns the native name, zero when not uploaded.
func (g *Geometry) Handle() uint32 {
	return g.handle
}

// Init uploads the vertex data.
func (g *Geometry) Init(ctx gpu.Context, c *resource.Collector) error {
	return g.Upload(c, func() error {
		h, err := ctx.CreateGeometry(g.data)
		if err != nil {
			return err
		}
		g.handle = h
		return nil
	})
}

// VRAMFlushed forces a re-upload on the next Init.
func (g *Geometry) VRAMFlushed() {
	g.Flush()
}

// Dispose releases the vertex array.
func (g *Geometry) Dispose(ctx gpu.Context) {
	g.Release(func() {
		ctx.DeleteGeometry(g.handle)
		g.handle = 0
	})
}

// Draw issues the draw call if the geometry is uploaded.
func (g *Geometry) Draw(ctx gpu.Context) bool {
	if !g.Uploaded() || g.handle == 0 {
		return false
	}
	ctx.DrawGeometry(g.handle)
	return true
}

// Package demo builds the viewer's sample scene: a textured ground, a grid
// of level-of-detail spheres and a few transparent panes.
package demo

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
)

// Sphere returns a UV sphere. slices >= 3, stacks >= 2.
func Sphere(radius float32, slices, stacks int) gpu.MeshData {
	slices = max(slices, 3)
	stacks = max(stacks, 2)

	var m gpu.MeshData
	for i := 0; i <= stacks; i++ {
		v := float32(i) / float32(stacks)
		phi := v * math32.Pi
		for j := 0; j <= slices; j++ {
			u := float32(j) / float32(slices)
			theta := u * 2 * math32.Pi
			nx := math32.Sin(phi) * math32.Cos(theta)
			ny := math32.Cos(phi)
			nz := math32.Sin(phi) * math32.Sin(theta)
			m.Positions = append(m.Positions, nx*radius, ny*radius, nz*radius)
			m.Normals = append(m.Normals, nx, ny, nz)
			m.UVs = append(m.UVs, u, 1-v)
		}
	}

	row := uint32(slices + 1)
	for i := uint32(0); i < uint32(stacks); i++ {
		for j := uint32(0); j < uint32(slices); j++ {
			a := i*row + j
			b := a + row
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}

// Plane returns a size x size quad in the XZ plane facing +Y. UVs repeat
// repeat times across it.
func Plane(size, repeat float32) gpu.MeshData {
	h := size / 2
	return gpu.MeshData{
		Positions: []float32{-h, 0, -h, -h, 0, h, h, 0, h, h, 0, -h},
		Normals:   []float32{0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		UVs:       []float32{0, repeat, 0, 0, repeat, 0, repeat, repeat},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Pane returns a width x height quad in the XY plane facing +Z.
func Pane(width, height float32) gpu.MeshData {
	w, h := width/2, height/2
	return gpu.MeshData{
		Positions: []float32{-w, -h, 0, w, -h, 0, w, h, 0, -w, h, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Disc returns a size x size pale yellow disc with a soft edge on a transparent
// background.
func Disc(name string, size int32) *gpuobj.Texture {
	pix := make([]byte, 0, size*size*4)
	r := float32(size) / 2
	for y := int32(0); y < size; y++ {
		for x := int32(0); x < size; x++ {
			d := math32.Hypot(float32(x)+0.5-r, float32(y)+0.5-r) / r
			a := math32.Max(0, math32.Min(1, (1-d)*4))
			pix = append(pix, 255, 240, 160, byte(a*255))
		}
	}
	return gpuobj.NewTexture(name, gpu.TextureDesc{Width: size, Height: size, Linear: true}, pix)
}

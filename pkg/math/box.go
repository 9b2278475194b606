package math

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoundsOf returns the box enclosing a flat xyz position slice.
func BoundsOf(positions []float32) AABB {
	b := EmptyAABB()
	for i := 0; i+2 < len(positions); i += 3 {
		b = b.Extend(Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

// IsEmpty reports whether the box encloses nothing.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the box enclosing both b and o.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the center point of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]Vec3 {
	var c [8]Vec3
	for i := range c {
		p := b.Min
		if i&4 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&1 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// VisibleFrom reports whether any part of the box may fall inside the clip
// volume of mvp. The test is conservative: it rejects only boxes whose
// projected extent lies entirely outside one side of the NDC cube.
func (b AABB) VisibleFrom(mvp Mat4) bool {
	if b.IsEmpty() {
		return true
	}
	lo := Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi := lo.Neg()
	for _, c := range b.Corners() {
		v := mvp.MulVec4(c.Vec4(1))
		if v[3] <= 0 {
			// Behind the eye; projected extents are unreliable.
			return true
		}
		p := Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return !(lo.X > 1 || hi.X < -1 || lo.Y > 1 || hi.Y < -1 || lo.Z > 1 || hi.Z < -1)
}

// Transform returns the box enclosing b's corners under m.
func (b AABB) Transform(m Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.Extend(m.TransformPoint(c))
	}
	return out
}

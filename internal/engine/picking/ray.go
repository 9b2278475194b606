// Package picking casts rays from screen coordinates into the scene.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenegl/internal/engine/scene"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// ScreenToRay unprojects pixel coordinates through invViewProj. Pixel y
// grows downward.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	v := inv.MulVec4(ndc)
	if v[3] != 0 {
		return math.V3(v[0]/v[3], v[1]/v[3], v[2]/v[3])
	}
	return v.XYZ()
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlaneY returns where the ray crosses the horizontal plane y.
func (r Ray) IntersectPlaneY(y float32) (math.Vec3, bool) {
	if math32.Abs(r.Direction.Y) < 1e-3 {
		return math.Vec3{}, false
	}
	t := (y - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectAABB returns the distance to the box using the slab test. A ray
// starting inside reports the exit distance.
func (r Ray) IntersectAABB(box math.AABB) (float32, bool) {
	if box.IsEmpty() {
		return 0, false
	}
	tmin, tmax := math32.Inf(-1), math32.Inf(1)
	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()
	for i := range 3 {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is a picked model and its distance along the ray.
type Hit struct {
	Model    *scene.Model
	Distance float32
}

// Pick returns the nearest visible model whose world bounds the ray hits.
// World matrices are those of the last frame.
func Pick(r Ray, models []*scene.Model) (Hit, bool) {
	best := Hit{Distance: math32.Inf(1)}
	for _, m := range models {
		if !m.Visible() || m.Destroyed() {
			continue
		}
		t, ok := r.IntersectAABB(m.LocalBounds().Transform(m.WorldMatrix()))
		if ok && t < best.Distance {
			best = Hit{Model: m, Distance: t}
		}
	}
	return best, best.Model != nil
}

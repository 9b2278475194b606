package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenegl/internal/engine/camera"
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/scene"
	"github.com/Faultbox/scenegl/pkg/math"
)

func cube(t *testing.T, name string, pos math.Vec3) *scene.Model {
	t.Helper()
	data := gpu.MeshData{Positions: []float32{-0.5, -0.5, -0.5, 0.5, 0.5, 0.5, 0.5, -0.5, 0.5}}
	mat := gpuobj.NewBasicMaterial(name, gpuobj.NewBasicProgram(), nil, math.Vec4{1, 1, 1, 1})
	m := scene.NewModel(name)
	require.NoError(t, m.AddBundle(gpuobj.NewBundle(name, gpuobj.NewGeometry(name, data), mat), 0))
	m.SetPosition(pos)
	return m
}

func TestScreenToRayCenter(t *testing.T) {
	cam := camera.New()
	r := ScreenToRay(400, 300, 800, 600, cam.ViewProjection().Inverse())

	assert.InDelta(t, 0, r.Origin.X, 1e-3)
	assert.InDelta(t, 0, r.Origin.Y, 1e-3)
	assert.InDelta(t, 9, r.Origin.Z, 1e-3)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)
}

func TestScreenToRayCorners(t *testing.T) {
	r := ScreenToRay(0, 0, 2, 2, math.Identity())
	assert.Equal(t, math.V3(-1, 1, -1), r.Origin)
	assert.Equal(t, math.V3(0, 0, 1), r.Direction)
}

func TestIntersectAABB(t *testing.T) {
	box := math.AABB{Min: math.V3(-1, -1, -1), Max: math.V3(1, 1, 1)}
	tests := []struct {
		name string
		ray  Ray
		want float32
		hit  bool
	}{
		{"front", Ray{math.V3(0, 0, 5), math.V3(0, 0, -1)}, 4, true},
		{"inside", Ray{math.V3(0, 0, 0), math.V3(1, 0, 0)}, 1, true},
		{"behind", Ray{math.V3(0, 0, 5), math.V3(0, 0, 1)}, 0, false},
		{"parallel outside", Ray{math.V3(0, 2, 5), math.V3(0, 0, -1)}, 0, false},
		{"miss", Ray{math.V3(3, 0, 5), math.V3(0, 0, -1)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			assert.Equal(t, tt.hit, hit)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}

	_, hit := Ray{math.V3(0, 0, 5), math.V3(0, 0, -1)}.IntersectAABB(math.EmptyAABB())
	assert.False(t, hit)
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: math.V3(0, 10, 0), Direction: math.V3(0, -1, 0)}
	p, ok := r.IntersectPlaneY(2)
	require.True(t, ok)
	assert.Equal(t, math.V3(0, 2, 0), p)

	_, ok = Ray{Origin: math.V3(0, 10, 0), Direction: math.V3(1, 0, 0)}.IntersectPlaneY(2)
	assert.False(t, ok)
	_, ok = Ray{Origin: math.V3(0, 10, 0), Direction: math.V3(0, 1, 0)}.IntersectPlaneY(2)
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	root := scene.NewNode("root")
	near := cube(t, "near", math.V3(0, 0, 0))
	far := cube(t, "far", math.V3(0, 0, -5))
	aside := cube(t, "aside", math.V3(4, 0, 0))
	for _, m := range []*scene.Model{far, aside, near} {
		root.Attach(m)
	}
	root.UpdateWorld(math.Identity())
	models := []*scene.Model{far, aside, near}

	r := Ray{Origin: math.V3(0, 0, 10), Direction: math.V3(0, 0, -1)}
	hit, ok := Pick(r, models)
	require.True(t, ok)
	assert.Same(t, near, hit.Model)
	assert.InDelta(t, 9.5, hit.Distance, 1e-4)

	near.SetVisible(false)
	hit, ok = Pick(r, models)
	require.True(t, ok)
	assert.Same(t, far, hit.Model)
	assert.InDelta(t, 14.5, hit.Distance, 1e-4)

	far.Destroy()
	_, ok = Pick(r, models)
	assert.False(t, ok)
}

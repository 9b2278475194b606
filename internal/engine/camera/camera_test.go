package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenegl/internal/engine/gpu/gputest"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

func approx(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-3, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-3, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-3, "z")
}

func TestFrustumPerspective(t *testing.T) {
	c := New()
	c.SetAutoAspect(false)
	c.SetParameters(-1, 1, -0.5, 0.5, 2, 10)

	f := c.Frustum()
	approx(t, math.V3(1, 0.5, -2), f[NearRightTop])
	approx(t, math.V3(-1, 0.5, -2), f[NearLeftTop])
	approx(t, math.V3(-1, -0.5, -2), f[NearLeftBottom])
	approx(t, math.V3(1, -0.5, -2), f[NearRightBottom])
	approx(t, math.V3(5, 2.5, -10), f[FarRightTop])
	approx(t, math.V3(-5, -2.5, -10), f[FarLeftBottom])
}

func TestFrustumOrthographic(t *testing.T) {
	c := New()
	c.SetAutoAspect(false)
	c.SetMode(Orthographic)
	c.SetParameters(-1, 1, -1, 1, 2, 10)

	f := c.Frustum()
	approx(t, math.V3(1, 1, -10), f[FarRightTop])
	approx(t, math.V3(-1, -1, -2), f[NearLeftBottom])
	approx(t, math.V3(0, 0, -6), c.FrustumCenter())
}

func TestAutoAspectStretchesHorizontal(t *testing.T) {
	c := New()
	c.SetParameters(-1, 1, -1, 1, 1, 10)
	c.SetAspect(2)

	f := c.Frustum()
	approx(t, math.V3(2, 1, -1), f[NearRightTop])

	// Near-plane corner projects onto the right edge of clip space.
	ndc := c.Projection().TransformPoint(f[NearRightTop])
	approx(t, math.V3(1, 1, -1), ndc)

	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect(), "non-positive aspect ignored")
}

func TestProjectionModes(t *testing.T) {
	c := New()
	c.SetAutoAspect(false)
	c.SetParameters(-1, 1, -1, 1, 1, 100)
	assert.Equal(t, float32(-1), c.Projection()[11])

	c.SetMode(Orthographic)
	assert.Equal(t, float32(0), c.Projection()[11])
	assert.Equal(t, float32(1), c.Projection()[15])
}

func TestViewProjectionRecombinedOnDemand(t *testing.T) {
	c := New()
	before := c.ViewProjection()

	c.SetEye(math.V3(0, 0, 20))
	assert.Equal(t, before, c.ViewProjection(), "cached until UpdateViewProjection")

	after := c.UpdateViewProjection()
	assert.NotEqual(t, before, after)
	assert.Equal(t, c.Projection().Mul(c.View()), after)
}

func TestFrustumCenterWorld(t *testing.T) {
	c := New()
	c.SetAutoAspect(false)
	c.SetMode(Orthographic)
	c.SetParameters(-1, 1, -1, 1, 2, 10)
	c.SetPosition(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0))

	approx(t, math.V3(0, 0, 4), c.FrustumCenterWorld())
	approx(t, math.V3(0, 0, -1), c.Direction())
}

func TestDepthCapture(t *testing.T) {
	ctx := gputest.New()
	col := resource.NewCollector()
	c := New()
	require.NoError(t, c.Init(ctx, col))
	assert.Nil(t, c.DepthTarget())

	c.EnableDepthCapture(256)
	c.EnableDepthCapture(512)
	require.NotNil(t, c.DepthTarget())
	assert.Equal(t, int32(256), c.DepthTarget().Desc().Width)
	require.NoError(t, c.Init(ctx, col))
	assert.Equal(t, 1, ctx.Live(gputest.KindTarget))

	c.DisableDepthCapture()
	assert.Nil(t, c.DepthTarget())
	assert.Equal(t, 1, col.Drain(ctx))
	assert.Equal(t, 0, ctx.Live(gputest.KindTarget))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"perspective", Perspective, true},
		{"ortho", Orthographic, true},
		{"orthographic", Orthographic, true},
		{"fisheye", Perspective, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestOrbitController(t *testing.T) {
	o := NewOrbitController()
	o.RotationX = 0
	o.RotationY = 0
	o.Distance = 10
	approx(t, math.V3(0, 0, 10), o.Position())

	o.HandleDrag(0, 1e6)
	assert.Equal(t, o.MaxPitch, o.RotationX)

	o.HandleZoom(100)
	assert.Equal(t, o.MinDistance, o.Distance)

	o.AutoRotate = 1
	o.Update(0.5)
	assert.InDelta(t, 0.5, o.RotationY, 1e-6)

	cam := New()
	o.Center = math.V3(1, 2, 3)
	o.Apply(cam)
	assert.Equal(t, o.Center, cam.Target())
	assert.Equal(t, o.Position(), cam.Eye())

	o.FitToBounds(math.AABB{Min: math.V3(-1, -1, -1), Max: math.V3(3, 3, 3)})
	assert.Equal(t, math.V3(1, 1, 1), o.Center)
}

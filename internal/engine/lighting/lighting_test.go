package lighting

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/scenegl/internal/engine/camera"
	"github.com/Faultbox/scenegl/internal/engine/gpu/gputest"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/internal/logger"
	"github.com/Faultbox/scenegl/pkg/math"
)

func box(min, max math.Vec3) [8]math.Vec3 {
	return math.AABB{Min: min, Max: max}.Corners()
}

func TestFitOrthoBoundsExactExtrema(t *testing.T) {
	corners := [8]math.Vec3{
		{X: 1, Y: 0.5, Z: -1}, {X: -1, Y: 0.5, Z: -1}, {X: -1, Y: -0.5, Z: -1}, {X: 1, Y: -0.5, Z: -1},
		{X: 10, Y: 5, Z: -10}, {X: -10, Y: 5, Z: -10}, {X: -10, Y: -5, Z: -10}, {X: 10, Y: -5, Z: -10},
	}
	dir := math.V3(1, -2, 0.5)
	up := math.V3(0, 1, 0)

	b, err := FitOrthoBounds(corners, dir, up)
	require.NoError(t, err)

	d := dir.Normalize()
	x := up.Cross(d).Normalize()
	y := x.Cross(d)
	c := math.Centroid(corners[:])

	want := [6]float32{math32.Inf(1), math32.Inf(-1), math32.Inf(1), math32.Inf(-1), math32.Inf(1), math32.Inf(-1)}
	for _, p := range corners {
		r := p.Sub(c)
		px, py, pz := r.Dot(x), r.Dot(y), r.Dot(d)
		want[0], want[1] = min(want[0], px), max(want[1], px)
		want[2], want[3] = min(want[2], py), max(want[3], py)
		want[4], want[5] = min(want[4], pz), max(want[5], pz)
	}

	assert.Equal(t, want, [6]float32{b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far})
	assert.Equal(t, c, b.Center)
	assert.InDelta(t, 0, b.X.Dot(b.Dir), 1e-6)
	assert.InDelta(t, 0, b.Up.Dot(b.Dir), 1e-6)
	assert.InDelta(t, 1, b.Up.Length(), 1e-5)
}

func TestFitOrthoBoundsAxisAligned(t *testing.T) {
	// Light travelling along -Z with Y up: X axis is world X.
	b, err := FitOrthoBounds(box(math.V3(-2, -1, -6), math.V3(4, 3, 0)), math.V3(0, 0, -1), math.V3(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, math.V3(1, 1, -3), b.Center)
	assert.InDelta(t, -3, b.Left, 1e-6)
	assert.InDelta(t, 3, b.Right, 1e-6)
	assert.InDelta(t, -2, b.Bottom, 1e-6)
	assert.InDelta(t, 2, b.Top, 1e-6)
	assert.InDelta(t, -3, b.Near, 1e-6)
	assert.InDelta(t, 3, b.Far, 1e-6)
}

func TestFitOrthoBoundsDegenerate(t *testing.T) {
	corners := box(math.V3(-1, -1, -1), math.V3(1, 1, 1))

	_, err := FitOrthoBounds(corners, math.Vec3{}, math.V3(0, 1, 0))
	assert.ErrorIs(t, err, math.ErrDegenerate)

	_, err = FitOrthoBounds(corners, math.V3(0, 1, 0), math.V3(0, 2, 0))
	assert.ErrorIs(t, err, math.ErrDegenerate)
}

func newCamera() *camera.Camera {
	cam := camera.New()
	cam.SetAutoAspect(false)
	cam.SetParameters(-1, 1, -1, 1, 1, 20)
	cam.SetPosition(math.V3(3, 4, 10), math.V3(0, 0, 0), math.V3(0, 1, 0))
	return cam
}

func TestUpdateShadowCoversCameraFrustum(t *testing.T) {
	cam := newCamera()
	l := NewDirectional("sun", math.V3(-0.3, -1, -0.2))
	l.SetShadow(true, 512)

	require.NoError(t, l.UpdateShadow(cam))

	// Every frustum corner lands inside the light's clip volume and the
	// volume touches each face, i.e. the fit is tight.
	toWorld := cam.View().Inverse()
	lightPV := l.ShadowMatrix()
	lo := math.V3(math32.Inf(1), math32.Inf(1), math32.Inf(1))
	hi := lo.Neg()
	for _, p := range cam.Frustum() {
		ndc := lightPV.TransformPoint(toWorld.TransformPoint(p))
		lo, hi = lo.Min(ndc), hi.Max(ndc)
	}
	for _, v := range []float32{lo.X, lo.Y, lo.Z} {
		assert.InDelta(t, -1, v, 1e-3)
	}
	for _, v := range []float32{hi.X, hi.Y, hi.Z} {
		assert.InDelta(t, 1, v, 1e-3)
	}

	// The light view looks along the light direction.
	fwd := l.ShadowView().Inverse().TransformDirection(math.V3(0, 0, -1))
	assert.InDelta(t, 1, fwd.Dot(l.Direction()), 1e-4)
}

func TestUpdateShadowParallelToCameraUp(t *testing.T) {
	cam := newCamera()
	cam.SetPosition(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0))
	l := NewDirectional("noon", math.V3(0, -1, 0))
	l.SetShadow(true, 512)

	require.NoError(t, l.UpdateShadow(cam))
	b := l.ShadowBounds()
	assert.False(t, math32.IsNaN(b.Left))
	assert.Greater(t, b.Right, b.Left)
	assert.Greater(t, b.Top, b.Bottom)
}

func TestUpdateShadowDegenerateKeepsPreviousMatrices(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Use(zap.New(core))()

	cam := newCamera()
	l := NewDirectional("sun", math.V3(0, -1, -1))
	l.SetShadow(true, 512)
	require.NoError(t, l.UpdateShadow(cam))
	prev := l.ShadowMatrix()

	l.vector = math.Vec4{}
	err := l.UpdateShadow(cam)
	assert.True(t, errors.Is(err, math.ErrDegenerate))
	assert.Equal(t, prev, l.ShadowMatrix())
	assert.Equal(t, 1, logs.FilterMessage("shadow fit failed").Len())
}

func TestUpdateShadowPointLightUnsupported(t *testing.T) {
	l := NewPoint("bulb", math.V3(0, 3, 0))
	l.SetShadow(true, 256)
	assert.ErrorIs(t, l.UpdateShadow(newCamera()), ErrUnsupportedLight)
	assert.False(t, l.ShadowReady())
}

func TestSetShadowOwnsTarget(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	l := NewDirectional("sun", math.V3(0, -1, 0))
	assert.Nil(t, l.ShadowTarget())

	l.SetShadow(true, 256)
	require.NoError(t, l.Init(ctx, c))
	target := l.ShadowTarget()
	require.NotNil(t, target)
	assert.True(t, target.HasParent(l.ID()))
	assert.Equal(t, 1, ctx.Live(gputest.KindTarget))

	l.SetShadow(false, 0)
	assert.Nil(t, l.ShadowTarget(), "no render target while shadows are off")
	assert.Equal(t, 1, c.Drain(ctx))
	assert.Equal(t, 0, ctx.Live(gputest.KindTarget))
}

func TestLightDisposeIdempotent(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	l := NewDirectional("sun", math.V3(0, -1, 0))
	l.SetShadow(true, 128)
	require.NoError(t, l.Init(ctx, c))

	l.Dispose(ctx)
	l.Dispose(ctx)
	assert.False(t, l.Uploaded())
	assert.False(t, l.ShadowEnabled())
	c.Drain(ctx)
	assert.Equal(t, 0, ctx.Live(gputest.KindTarget))
}

func TestUniform(t *testing.T) {
	view := math.Translate(0, 0, -5)
	dir := NewDirectional("d", math.V3(0, 0, -2))
	point := NewPoint("p", math.V3(1, 0, 0))
	point.SetPower(0.5, 0.25, 1)

	assert.Equal(t, math.Vec4{0, 0, -1, 0}, dir.Uniform(view)[0], "directions ignore translation")
	u := point.Uniform(view)
	assert.Equal(t, math.Vec4{1, 0, -5, 1}, u[0])
	assert.Equal(t, math.Vec4{0.5, 0.25, 1, 0}, u[1])
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"zenith", 0, 90, math.V3(0, 1, 0)},
		{"south horizon", 0, 0, math.V3(0, 0, 1)},
		{"east horizon", 90, 0, math.V3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			assert.InDelta(t, tt.want.X, got.X, 1e-5)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-5)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-5)
		})
	}

	sun := SunLight("sun", 0, 90)
	assert.True(t, sun.Directional())
	assert.InDelta(t, -1, sun.Direction().Y, 1e-5)
}

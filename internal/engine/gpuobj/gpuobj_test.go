package gpuobj

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpu/gputest"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

func quad() gpu.MeshData {
	return gpu.MeshData{
		Positions: []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func newTestBundle(name string) *Bundle {
	mat := NewBasicMaterial(name, NewBasicProgram(), SolidTexture(name, 255, 255, 255, 255), math.Vec4{1, 1, 1, 1})
	return NewBundle(name, NewGeometry(name, quad()), mat)
}

func identityUniforms() *Uniforms {
	return &Uniforms{Model: math.Identity(), ModelView: math.Identity(), MVP: math.Identity(), Normal: math.Identity3()}
}

func TestBundleInitUploadsEverything(t *testing.T) {
	ctx := gputest.New()
	b := newTestBundle("quad")

	require.NoError(t, b.Init(ctx, resource.NewCollector()))
	assert.True(t, b.Uploaded())
	assert.True(t, b.Geometry().Uploaded())
	assert.True(t, b.Material().Uploaded())
	assert.Equal(t, 1, ctx.Live(gputest.KindGeometry))
	assert.Equal(t, 1, ctx.Live(gputest.KindProgram))
	assert.Equal(t, 1, ctx.Live(gputest.KindTexture))
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, b.Bounds().Max)
}

func TestBundleDisposeCascadesThroughCollector(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	b := newTestBundle("quad")
	require.NoError(t, b.Init(ctx, c))

	owner := resource.NewID()
	b.AddParent(owner)
	b.RemoveParent(owner)

	// bundle -> geometry, material -> program, texture
	assert.Equal(t, 5, c.Drain(ctx))
	assert.Equal(t, 0, ctx.Live(gputest.KindGeometry))
	assert.Equal(t, 0, ctx.Live(gputest.KindProgram))
	assert.Equal(t, 0, ctx.Live(gputest.KindTexture))
}

func TestSharedProgramSurvivesOneMaterial(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	prog := NewBasicProgram()
	a := NewBasicMaterial("a", prog, nil, math.Vec4{1, 0, 0, 1})
	b := NewBasicMaterial("b", prog, nil, math.Vec4{0, 1, 0, 1})
	require.NoError(t, a.Init(ctx, c))
	require.NoError(t, b.Init(ctx, c))
	assert.Equal(t, 1, ctx.Created(gputest.KindProgram))

	a.Dispose(ctx)
	c.Drain(ctx)
	assert.True(t, prog.Uploaded())

	b.Dispose(ctx)
	c.Drain(ctx)
	assert.False(t, prog.Uploaded())
	assert.Equal(t, 0, ctx.Live(gputest.KindProgram))
}

func TestBundleDrawLazyInit(t *testing.T) {
	ctx := gputest.New()
	b := newTestBundle("quad")

	assert.True(t, b.Draw(ctx, resource.NewCollector(), identityUniforms()))
	assert.Equal(t, []uint32{b.Geometry().Handle()}, ctx.Draws())
	assert.NotEmpty(t, ctx.Ops("UniformMat4"))
}

func TestBundleDrawCulled(t *testing.T) {
	ctx := gputest.New()
	b := newTestBundle("quad")
	u := identityUniforms()
	u.MVP = math.Translate(10, 0, 0)

	assert.False(t, b.Draw(ctx, resource.NewCollector(), u))
	assert.Empty(t, ctx.Draws())
}

func TestBundleCompileFailureSkipsDraw(t *testing.T) {
	ctx := gputest.New()
	ctx.Fail[gputest.KindProgram] = true
	b := newTestBundle("broken")

	assert.False(t, b.Draw(ctx, resource.NewCollector(), identityUniforms()))
	assert.False(t, b.Draw(ctx, resource.NewCollector(), identityUniforms()))
	assert.False(t, b.Uploaded())
	assert.Empty(t, ctx.Draws())
	assert.Len(t, ctx.Ops("CreateProgram!"), 1, "no retry until flush")

	b.VRAMFlushed()
	ctx.Fail[gputest.KindProgram] = false
	assert.True(t, b.Draw(ctx, resource.NewCollector(), identityUniforms()))
}

func TestDepthMaterialPinned(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	m := NewDepthMaterial()
	m.SetPinned(true)
	require.NoError(t, m.Init(ctx, c))

	owner := resource.NewID()
	m.AddParent(owner)
	m.RemoveParent(owner)
	assert.Equal(t, 0, c.Pending())

	m.Dispose(ctx)
	c.Drain(ctx)
	assert.Equal(t, 0, ctx.Live(gputest.KindProgram))
}

func TestRenderTargetLifecycle(t *testing.T) {
	ctx := gputest.New()
	rt := NewDepthTarget("shadow", 0)
	assert.Equal(t, int32(DefaultShadowResolution), rt.Desc().Width)
	assert.False(t, rt.Begin(ctx))

	require.NoError(t, rt.Init(ctx, resource.NewCollector()))
	assert.True(t, rt.Begin(ctx))
	rt.End(ctx, [4]int32{0, 0, 640, 480})
	assert.Len(t, ctx.Ops("ClearDepth"), 1)

	rt.Dispose(ctx)
	rt.Dispose(ctx)
	assert.Equal(t, 1, ctx.Deleted(gputest.KindTarget))
}

func TestCheckerTexture(t *testing.T) {
	tex := Checker("checker", 4, 2, [4]byte{255, 255, 255, 255}, [4]byte{0, 0, 0, 255})
	assert.Len(t, tex.pixels, 4*4*4)
	assert.Equal(t, byte(255), tex.pixels[0])
	assert.Equal(t, byte(0), tex.pixels[2*4])
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0, A: 255})
		}
	}
	return img
}

func TestTextureFromImageFlipsRows(t *testing.T) {
	tex := TextureFromImage("img", testImage(2, 3), 0, false)
	w, h := tex.Size()
	assert.Equal(t, int32(2), w)
	assert.Equal(t, int32(3), h)
	// First stored row is the image's bottom row (y=2).
	assert.Equal(t, []byte{0, 20, 0, 255}, tex.pixels[:4])
	assert.Equal(t, []byte{10, 0, 0, 255}, tex.pixels[len(tex.pixels)-4:])
}

func TestTextureFromImageScalesDown(t *testing.T) {
	tex := TextureFromImage("big", testImage(64, 16), 32, true)
	w, h := tex.Size()
	assert.Equal(t, int32(32), w)
	assert.Equal(t, int32(8), h)
	assert.Len(t, tex.pixels, 32*8*4)
	assert.True(t, tex.desc.Repeat)
}

func TestDecodeTextureFormats(t *testing.T) {
	encoders := map[string]func(io.Writer, image.Image) error{
		"png": png.Encode,
		"bmp": bmp.Encode,
	}
	for format, encode := range encoders {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf, testImage(4, 4)))

			tex, err := DecodeTexture(format, &buf, false)
			require.NoError(t, err)
			assert.Equal(t, format, tex.Format())
			w, h := tex.Size()
			assert.Equal(t, [2]int32{4, 4}, [2]int32{w, h})

			ctx := gputest.New()
			require.NoError(t, tex.Init(ctx, resource.NewCollector()))
			assert.NotZero(t, tex.Handle())
		})
	}
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	_, err := DecodeTexture("junk", strings.NewReader("not an image"), false)
	assert.Error(t, err)
}

func TestLoadTextureMissingFile(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.Error(t, err)
}

func TestQuadDataOrigins(t *testing.T) {
	for origin, want := range map[QuadOrigin]math.AABB{
		OriginBottomLeft: {Min: math.V3(0, 0, 0), Max: math.V3(1, 1, 0)},
		OriginCenter:     {Min: math.V3(-0.5, -0.5, 0), Max: math.V3(0.5, 0.5, 0)},
		OriginTopLeft:    {Min: math.V3(0, -1, 0), Max: math.V3(1, 0, 0)},
	} {
		data := QuadData(origin)
		assert.Equal(t, want, math.BoundsOf(data.Positions), "origin %d", origin)
		assert.Len(t, data.UVs, 8)
		assert.Len(t, data.Indices, 6)
	}
}

func TestBillboardMaterialBind(t *testing.T) {
	ctx := gputest.New()
	c := resource.NewCollector()
	m := NewBillboardMaterial("label", NewBillboardProgram(), SolidTexture("label", 255, 0, 0, 255))
	u := identityUniforms()
	assert.False(t, m.Bind(ctx, u), "not uploaded")

	require.NoError(t, m.Init(ctx, c))
	m.MirrorY = true
	require.True(t, m.Bind(ctx, u))
	assert.Len(t, ctx.Ops("BindTexture"), 1)
	names := map[string]bool{}
	for _, call := range ctx.Ops("UniformInt", "UniformMat4") {
		names[call.Name] = true
	}
	for _, n := range []string{"uMVP", "uMirrorY", "uTexture", "uTextured"} {
		assert.True(t, names[n], n)
	}
	assert.False(t, names["uLights"])

	m.Dispose(ctx)
	assert.Equal(t, 2, c.Drain(ctx), "program and texture")
	assert.Equal(t, 0, ctx.Live(gputest.KindTexture))
}

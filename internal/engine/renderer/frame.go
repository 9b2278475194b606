package renderer

import (
	"cmp"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/lighting"
	"github.com/Faultbox/scenegl/internal/engine/scene"
	"github.com/Faultbox/scenegl/pkg/math"
)

// maxErrorPolls bounds one error poll; a lost context reports errors forever.
const maxErrorPolls = 16

// Init uploads everything the graph holds and enters Running. It may be
// called again after the context was recreated: every resource is told its
// VRAM is gone before the upload.
func (e *Engine) Init() error {
	if e.state == Disposed {
		return ErrDisposed
	}
	e.state = Initializing
	e.run(e.hooks.BeforeInit)

	info := e.ctx.Info()
	e.log.Info("engine init",
		zap.String("renderer", info.Renderer),
		zap.String("version", info.Version),
		zap.Int("models", len(e.models)),
		zap.Int("lights", len(e.lights)),
	)

	e.ctx.SetDefaults()
	e.ctx.Viewport(e.viewport[0], e.viewport[1], e.viewport[2], e.viewport[3])

	e.root.VRAMFlushed()
	for _, l := range e.lights {
		l.VRAMFlushed()
	}
	e.depth.VRAMFlushed()
	e.camera.VRAMFlushed()

	if err := e.root.Init(e.ctx); err != nil {
		e.log.Error("scene init incomplete", zap.Error(err))
	}
	if err := e.depth.Init(e.ctx, e.collector); err != nil {
		e.log.Error("depth material init failed", zap.Error(err))
	}
	for _, l := range e.lights {
		if err := l.Init(e.ctx, e.collector); err != nil {
			e.log.Error("light init failed", zap.String("light", l.Name()), zap.Error(err))
		}
	}
	if err := e.camera.Init(e.ctx, e.collector); err != nil {
		e.log.Error("depth capture init failed", zap.Error(err))
	}

	e.run(e.hooks.AfterInit)
	e.pollErrors("init")
	e.state = Running
	return nil
}

// Display renders one frame.
func (e *Engine) Display() error {
	if e.state != Running {
		return ErrNotRunning
	}
	e.stats.Drained = e.collector.Drain(e.ctx)

	e.run(e.hooks.BeforeDisplay)
	e.pollErrors("pre-render")

	e.frame = scene.Frame{}
	e.frame.ViewProjection = e.camera.UpdateViewProjection()
	e.frame.View = e.camera.View()
	e.frame.Projection = e.camera.Projection()
	e.frame.Viewport = e.viewport
	e.frame.Lights = e.packLights()

	// Casters need this frame's world matrices before the graph walk.
	e.root.UpdateWorld(math.Identity())
	e.stats.ShadowDrawCalls = e.shadowPass()
	e.stats.ShadowDrawCalls += e.depthPass()

	e.ctx.Clear(e.cfg.Background)
	e.root.Draw(e.ctx, math.Identity())
	e.stats.TransparentDrawn = e.drawTransparent()

	e.stats.DrawCalls = e.frame.DrawCalls
	e.stats.Frames++
	e.pollErrors("render")

	e.run(e.hooks.AfterDisplay)
	e.pollErrors("post-render")
	return nil
}

// Reshape adapts the viewport and the camera aspect to a new output size.
func (e *Engine) Reshape(width, height int) {
	if e.state == Disposed {
		return
	}
	e.run(e.hooks.BeforeReshape)
	e.setViewport(width, height)
	e.camera.SetAspect(float32(e.viewport[2]) / float32(e.viewport[3]))
	e.ctx.Viewport(e.viewport[0], e.viewport[1], e.viewport[2], e.viewport[3])
	e.run(e.hooks.AfterReshape)
}

func (e *Engine) packLights() []math.Vec4 {
	if !e.cfg.Lighting {
		return nil
	}
	var out []math.Vec4
	for _, l := range e.lights {
		if !l.Enabled() {
			continue
		}
		u := l.Uniform(e.frame.View)
		out = append(out, u[:]...)
	}
	return out
}

// shadowPass renders casters into each shadowing light's map. The first
// ready map is handed to lit materials through the frame.
func (e *Engine) shadowPass() int {
	casters := e.shadowCasters()
	drawn := 0
	for _, l := range e.lights {
		if !l.Enabled() || !l.ShadowEnabled() {
			continue
		}
		if err := l.UpdateShadow(e.camera); err != nil {
			if !errors.Is(err, lighting.ErrUnsupportedLight) && !errors.Is(err, math.ErrDegenerate) {
				e.log.Warn("shadow update failed", zap.String("light", l.Name()), zap.Error(err))
			}
		}
		target := l.ShadowTarget()
		if err := target.Init(e.ctx, e.collector); err != nil {
			continue
		}
		if !l.ShadowReady() || !target.Begin(e.ctx) {
			continue
		}
		lightPV := l.ShadowMatrix()
		drawn += e.drawDepth(casters, lightPV)
		target.End(e.ctx, e.viewport)

		if e.frame.Shadow == nil {
			e.frame.Shadow = &gpuobj.ShadowInfo{
				Matrix:  lightPV,
				Texture: target.Target().Texture,
			}
		}
	}
	return drawn
}

// depthPass renders casters from the camera into its depth capture target.
func (e *Engine) depthPass() int {
	target := e.camera.DepthTarget()
	if target == nil {
		return 0
	}
	if err := target.Init(e.ctx, e.collector); err != nil || !target.Begin(e.ctx) {
		return 0
	}
	n := e.drawDepth(e.shadowCasters(), e.frame.ViewProjection)
	target.End(e.ctx, e.viewport)
	return n
}

func (e *Engine) drawDepth(casters []scene.Shadowable, viewProj math.Mat4) int {
	drawn := 0
	for _, s := range casters {
		u := gpuobj.Uniforms{MVP: viewProj.Mul(s.WorldMatrix())}
		for _, b := range s.ShadowGeometry() {
			if b.DrawWith(e.ctx, e.collector, e.depth, &u) {
				drawn++
			}
		}
	}
	return drawn
}

// shadowCasters skips models in a subtree the coming graph walk will dispose.
func (e *Engine) shadowCasters() []scene.Shadowable {
	var out []scene.Shadowable
	for _, m := range e.models {
		if m.CastsShadow() && !m.Doomed() {
			out = append(out, m)
		}
	}
	return out
}

// drawTransparent draws the deferred queue sorted by ascending world Z and
// empties it.
func (e *Engine) drawTransparent() int {
	slices.SortStableFunc(e.transparent, func(a, b scene.Drawable) int {
		return cmp.Compare(a.SceneNode().WorldPosition().Z, b.SceneNode().WorldPosition().Z)
	})
	for _, d := range e.transparent {
		e.frame.DrawCalls += d.DrawObject(e.ctx)
	}
	n := len(e.transparent)
	clear(e.transparent)
	e.transparent = e.transparent[:0]
	return n
}

func (e *Engine) pollErrors(phase string) {
	for i := 0; i < maxErrorPolls; i++ {
		code := e.ctx.Error()
		if code == gpu.NoError {
			return
		}
		e.stats.GLErrors++
		e.log.Error("gl error", zap.String("phase", phase), zap.Uint32("code", code))
	}
}

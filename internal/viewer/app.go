// Package viewer runs the interactive scene viewer: window, input, engine
// and the demo scene.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/scenegl/internal/config"
	"github.com/Faultbox/scenegl/internal/engine/camera"
	"github.com/Faultbox/scenegl/internal/engine/debug"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/input"
	"github.com/Faultbox/scenegl/internal/engine/lighting"
	"github.com/Faultbox/scenegl/internal/engine/picking"
	"github.com/Faultbox/scenegl/internal/engine/renderer"
	"github.com/Faultbox/scenegl/internal/engine/window"
	"github.com/Faultbox/scenegl/internal/logger"
	"github.com/Faultbox/scenegl/internal/viewer/demo"
	"github.com/Faultbox/scenegl/internal/viewer/stage"
)

const title = "SceneGL"

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool

	window  *window.Window
	input   *input.Input
	engine  *renderer.Engine
	orbit   *camera.OrbitController
	sun     *lighting.Light
	capture *debug.Capture
	scene   *demo.Scene

	textures chan *gpuobj.Texture
	log      *zap.Logger
}

// New opens the window and prepares the engine. The engine is initialized
// by Run.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:      cfg,
		input:    input.New(),
		orbit:    stage.Orbit(cfg),
		capture:  debug.NewCapture(cfg.Capture.Dir, cfg.Capture.Prefix),
		textures: make(chan *gpuobj.Texture, 1),
		log:      logger.Named("viewer"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    cfg.Graphics.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := a.window.DrawableSize()
	a.engine = renderer.New(a.window.Context(), stage.Engine(cfg, w, h), renderer.Hooks{
		AfterInit: func(e *renderer.Engine) {
			info := e.Context().Info()
			a.log.Info("gpu ready",
				zap.String("vendor", info.Vendor),
				zap.String("renderer", info.Renderer),
				zap.String("version", info.Version),
			)
		},
		BeforeDisplay: func(e *renderer.Engine) {
			a.orbit.Apply(e.Camera())
		},
	})
	if err := stage.Camera(a.engine.Camera(), cfg); err != nil {
		a.window.Close()
		return nil, err
	}

	a.sun = stage.Sun(cfg)
	if err := a.engine.AddLight(a.sun); err != nil {
		a.window.Close()
		return nil, err
	}

	if err := a.buildScene(); err != nil {
		a.window.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildScene() error {
	s, err := demo.Build(stage.Scene(a.cfg))
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	a.scene = s
	a.engine.AddNode(s.Root)
	a.orbit.FitToBounds(s.Bounds())
	a.orbit.Distance = min(max(a.cfg.Camera.Distance, a.orbit.MinDistance), a.orbit.MaxDistance)
	return nil
}

// Run initializes the engine and drives the frame loop until the window
// closes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	a.loadGround(ctx, g)

	if err := a.engine.Init(); err != nil {
		return fmt.Errorf("engine init: %w", err)
	}

	a.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	a.log.Info("starting render loop")

	for a.running {
		select {
		case <-ctx.Done():
			a.running = false
			continue
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		a.applyGround()

		a.orbit.Update(dt)
		a.scene.Update(dt)

		if a.engine.State() == renderer.Running {
			if err := a.engine.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
				a.saveCapture()
			}
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := a.engine.Stats()
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("draws", st.DrawCalls),
				zap.Int("shadow_draws", st.ShadowDrawCalls),
				zap.Int("transparent", st.TransparentDrawn),
			)
			a.window.SetTitle(fmt.Sprintf("%s - %d fps", title, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spent := time.Since(now); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
		}
	}

	return g.Wait()
}

func (a *App) handleEvents() {
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.engine.Reshape(a.window.DrawableSize())
		case input.EventMouseMove:
			if a.input.IsButtonHeld(uint8(sdl.BUTTON_LEFT)) {
				a.orbit.HandleDrag(ev.DeltaX, ev.DeltaY)
			}
		case input.EventMouseDown:
			if ev.Button == uint8(sdl.BUTTON_RIGHT) {
				a.pick(ev.MouseX, ev.MouseY)
			}
		case input.EventMouseWheel:
			a.orbit.HandleZoom(ev.DeltaY)
		case input.EventKeyDown:
			a.handleKey(ev.Key)
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_SPACE:
		if a.engine.State() == renderer.Paused {
			a.engine.Start()
		} else {
			a.engine.Stop()
		}
	case sdl.SCANCODE_L:
		a.engine.SetLighting(!a.engine.Lighting())
		a.log.Info("lighting toggled", zap.Bool("on", a.engine.Lighting()))
	case sdl.SCANCODE_F:
		a.window.ToggleFullscreen()
	case sdl.SCANCODE_R:
		a.engine.DestroyAllNodes()
		if err := a.buildScene(); err != nil {
			a.log.Error("rebuild failed", zap.Error(err))
		}
	}
}

// pick destroys the ball under the cursor. Its shared geometry and
// materials are collected once the last ball using them is gone.
func (a *App) pick(x, y int) {
	ww, wh := a.window.Size()
	vp := a.engine.Viewport()
	if ww <= 0 || wh <= 0 {
		return
	}
	px := float32(x) * float32(vp[2]) / float32(ww)
	py := float32(y) * float32(vp[3]) / float32(wh)

	ray := picking.ScreenToRay(px, py, float32(vp[2]), float32(vp[3]), a.engine.Camera().ViewProjection().Inverse())
	hit, ok := picking.Pick(ray, a.scene.Balls)
	if !ok {
		return
	}
	a.log.Info("picked", zap.String("model", hit.Model.Name()), zap.Float32("distance", hit.Distance))
	hit.Model.Destroy()
}

// loadGround decodes the configured ground texture off the render thread.
// The texture is applied between frames by applyGround.
func (a *App) loadGround(ctx context.Context, g *errgroup.Group) {
	path := a.cfg.Scene.Texture
	if path == "" {
		return
	}
	g.Go(func() error {
		tex, err := gpuobj.LoadTexture(path, true)
		if err != nil {
			a.log.Warn("ground texture not loaded", zap.String("path", path), zap.Error(err))
			return nil
		}
		select {
		case a.textures <- tex:
		case <-ctx.Done():
		}
		return nil
	})
}

func (a *App) applyGround() {
	select {
	case tex := <-a.textures:
		w, h := tex.Size()
		if err := a.scene.SetGround(tex); err != nil {
			a.log.Error("ground swap failed", zap.Error(err))
			return
		}
		a.log.Info("ground texture applied", zap.Int32("width", w), zap.Int32("height", h), zap.String("format", tex.Format()))
	default:
	}
}

func (a *App) saveCapture() {
	if _, err := a.capture.SaveFrame(a.engine.Context(), a.engine.Viewport()); err != nil {
		a.log.Error("capture failed", zap.Error(err))
	}
}

// Close releases the engine and the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.engine != nil {
		a.engine.Dispose()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// Package renderer drives a scene graph through the per-frame pipeline:
// garbage collection, shadow and depth passes, the opaque walk and the
// sorted transparent pass.
package renderer

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/camera"
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/lighting"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/internal/engine/scene"
	"github.com/Faultbox/scenegl/internal/logger"
)

var (
	// ErrNotRunning is returned by Display outside the Running state.
	ErrNotRunning = errors.New("engine not running")
	// ErrDisposed is returned by calls made after Dispose.
	ErrDisposed = errors.New("engine disposed")
	// ErrTooManyLights is returned by AddLight past Config.MaxLights.
	ErrTooManyLights = errors.New("too many lights")
)

// Config holds engine settings.
type Config struct {
	Width      int
	Height     int
	Background [4]float32
	Lighting   bool
	// MaxLights bounds AddLight; values above gpuobj.MaxLights are clamped.
	MaxLights int
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		Background: [4]float32{0.1, 0.1, 0.15, 1.0},
		Lighting:   true,
		MaxLights:  gpuobj.MaxLights,
	}
}

// Stats describes the most recent frame plus running totals.
type Stats struct {
	Frames           uint64
	DrawCalls        int
	ShadowDrawCalls  int
	TransparentDrawn int
	Drained          int
	GLErrors         uint64
}

// Engine owns the root node, camera, lights and garbage collector.
type Engine struct {
	id    resource.ID
	ctx   gpu.Context
	cfg   Config
	hooks Hooks
	state State

	root      *scene.Node
	camera    *camera.Camera
	lights    []*lighting.Light
	models    []*scene.Model
	collector *resource.Collector
	depth     *gpuobj.DepthMaterial

	frame       scene.Frame
	transparent []scene.Drawable
	viewport    [4]int32
	stats       Stats

	log *zap.Logger
}

var _ scene.Host = (*Engine)(nil)

// New creates an idle engine drawing through ctx.
func New(ctx gpu.Context, cfg Config, hooks Hooks) *Engine {
	if cfg.MaxLights <= 0 || cfg.MaxLights > gpuobj.MaxLights {
		cfg.MaxLights = gpuobj.MaxLights
	}
	e := &Engine{
		id:        resource.NewID(),
		ctx:       ctx,
		cfg:       cfg,
		hooks:     hooks,
		camera:    camera.New(),
		collector: resource.NewCollector(),
		depth:     gpuobj.NewDepthMaterial(),
		log:       logger.Named("renderer"),
	}
	e.depth.SetPinned(true)
	e.depth.AddParent(e.id)
	e.depth.Attach(e.collector)

	e.root = scene.NewNode("root")
	e.root.SetHost(e)
	e.setViewport(cfg.Width, cfg.Height)
	e.camera.SetAspect(float32(e.viewport[2]) / float32(e.viewport[3]))
	return e
}

// State returns the lifecycle stage.
func (e *Engine) State() State {
	return e.state
}

// Context returns the drawing context.
func (e *Engine) Context() gpu.Context {
	return e.ctx
}

// Root returns the root of the scene graph.
func (e *Engine) Root() *scene.Node {
	return e.root
}

// Camera returns the engine's camera.
func (e *Engine) Camera() *camera.Camera {
	return e.camera
}

// Collector returns the garbage collector shared by the graph.
func (e *Engine) Collector() *resource.Collector {
	return e.collector
}

// Frame returns the state of the frame being drawn.
func (e *Engine) Frame() *scene.Frame {
	return &e.frame
}

// Defer queues a non-opaque object for the transparent pass.
func (e *Engine) Defer(d scene.Drawable) {
	e.transparent = append(e.transparent, d)
}

// Register records a model attached to this engine's graph.
func (e *Engine) Register(m *scene.Model) {
	if !slices.Contains(e.models, m) {
		e.models = append(e.models, m)
	}
}

// Unregister forgets a model.
func (e *Engine) Unregister(m *scene.Model) {
	if i := slices.Index(e.models, m); i >= 0 {
		e.models = slices.Delete(e.models, i, i+1)
	}
}

// Models returns the models currently attached, in attach order.
func (e *Engine) Models() []*scene.Model {
	return slices.Clone(e.models)
}

// Lights returns the lights in the order they were added.
func (e *Engine) Lights() []*lighting.Light {
	return slices.Clone(e.lights)
}

// Stats returns frame statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Viewport returns x, y, width and height of the output.
func (e *Engine) Viewport() [4]int32 {
	return e.viewport
}

// SetBackground sets the clear color.
func (e *Engine) SetBackground(rgba [4]float32) {
	e.cfg.Background = rgba
}

// Background returns the clear color.
func (e *Engine) Background() [4]float32 {
	return e.cfg.Background
}

// SetLighting turns lighting on or off for the whole frame.
func (e *Engine) SetLighting(on bool) {
	e.cfg.Lighting = on
}

// Lighting reports whether lights are sent to materials.
func (e *Engine) Lighting() bool {
	return e.cfg.Lighting
}

// AddNode attaches an element under the root.
func (e *Engine) AddNode(el scene.Element) {
	e.root.Attach(el)
}

// RemoveNode detaches an element from the root. Its resources stay alive
// until their last parent lets go.
func (e *Engine) RemoveNode(el scene.Element) {
	e.root.Detach(el)
}

// RemoveAllNodes detaches every child of the root.
func (e *Engine) RemoveAllNodes() {
	for _, c := range e.root.Children() {
		e.root.Detach(c)
	}
}

// DestroyAllNodes marks every child of the root destroyed. They are
// disposed by the next frame's walk.
func (e *Engine) DestroyAllNodes() {
	for _, c := range e.root.Children() {
		c.Destroy()
	}
}

// AddLight registers a light. Adding the same light twice is a no-op.
func (e *Engine) AddLight(l *lighting.Light) error {
	if e.state == Disposed {
		return ErrDisposed
	}
	if slices.Contains(e.lights, l) {
		return nil
	}
	if len(e.lights) >= e.cfg.MaxLights {
		return fmt.Errorf("add light %q: %w (max %d)", l.Name(), ErrTooManyLights, e.cfg.MaxLights)
	}
	l.AddParent(e.id)
	l.Attach(e.collector)
	e.lights = append(e.lights, l)
	if e.state == Running || e.state == Paused {
		if err := l.Init(e.ctx, e.collector); err != nil {
			e.log.Error("light init failed", zap.String("light", l.Name()), zap.Error(err))
		}
	}
	return nil
}

// RemoveLight unregisters a light and drops the engine's reference.
func (e *Engine) RemoveLight(l *lighting.Light) {
	i := slices.Index(e.lights, l)
	if i < 0 {
		return
	}
	e.lights = slices.Delete(e.lights, i, i+1)
	l.RemoveParent(e.id)
}

// Start resumes a paused engine.
func (e *Engine) Start() {
	if e.state == Paused {
		e.state = Running
		e.log.Debug("engine started")
	}
}

// Stop pauses a running engine. Display returns ErrNotRunning until Start.
func (e *Engine) Stop() {
	if e.state == Running {
		e.state = Paused
		e.log.Debug("engine stopped")
	}
}

// Dispose releases the graph, lights and pinned resources. Later calls are
// no-ops.
func (e *Engine) Dispose() {
	if e.state == Disposed {
		return
	}
	e.root.Dispose(e.ctx)
	for _, l := range e.lights {
		l.RemoveParent(e.id)
	}
	e.lights = nil
	e.camera.DisableDepthCapture()
	e.depth.RemoveParent(e.id)
	e.depth.Dispose(e.ctx)
	n := e.collector.Drain(e.ctx)
	e.transparent = nil
	e.models = nil
	e.state = Disposed
	e.log.Info("engine disposed", zap.Int("released", n))
}

func (e *Engine) setViewport(width, height int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	e.cfg.Width, e.cfg.Height = width, height
	e.viewport = [4]int32{0, 0, int32(width), int32(height)}
}

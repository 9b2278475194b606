// Package lighting provides light sources and directional shadow fitting.
package lighting

import (
	"errors"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// ErrUnsupportedLight is returned when shadows are requested for a light
// type that has no shadow fitting.
var ErrUnsupportedLight = errors.New("shadow fitting not supported for this light type")

// Light is a point or directional light. It owns its shadow map, if any.
type Light struct {
	resource.Base

	// vector is a position (w=1) or a direction of travel (w=0).
	vector  math.Vec4
	power   math.Vec4
	ambient math.Vec4
	enabled bool

	shadow *shadowState
}

type shadowState struct {
	target *gpuobj.RenderTarget
	view   math.Mat4
	proj   math.Mat4
	bounds Bounds
	valid  bool
}

// NewDirectional creates a white directional light travelling along dir.
func NewDirectional(name string, dir math.Vec3) *Light {
	return newLight(name, dir.Normalize().Vec4(0))
}

// NewPoint creates a white point light at pos.
func NewPoint(name string, pos math.Vec3) *Light {
	return newLight(name, pos.Vec4(1))
}

func newLight(name string, v math.Vec4) *Light {
	l := &Light{
		vector:  v,
		power:   math.Vec4{1, 1, 1, 0},
		ambient: math.Vec4{0.1, 0.1, 0.1, 0},
		enabled: true,
	}
	l.Setup(l, name)
	return l
}

// Directional reports whether the light is directional.
func (l *Light) Directional() bool {
	return l.vector[3] == 0
}

// Vector returns the position (w=1) or direction (w=0).
func (l *Light) Vector() math.Vec4 {
	return l.vector
}

// Direction returns the direction of travel of a directional light.
func (l *Light) Direction() math.Vec3 {
	return l.vector.XYZ()
}

// SetDirection makes the light directional along dir.
func (l *Light) SetDirection(dir math.Vec3) {
	l.vector = dir.Normalize().Vec4(0)
}

// SetPosition makes the light a point light at pos.
func (l *Light) SetPosition(pos math.Vec3) {
	l.vector = pos.Vec4(1)
}

// Power returns the RGB intensity; the fourth component is reserved.
func (l *Light) Power() math.Vec4 {
	return l.power
}

// SetPower sets the RGB intensity.
func (l *Light) SetPower(r, g, b float32) {
	l.power = math.Vec4{r, g, b, 0}
}

// Ambient returns the ambient term.
func (l *Light) Ambient() math.Vec4 {
	return l.ambient
}

// SetAmbient sets the ambient term.
func (l *Light) SetAmbient(r, g, b float32) {
	l.ambient = math.Vec4{r, g, b, 0}
}

// Enabled reports whether the light contributes to shading.
func (l *Light) Enabled() bool {
	return l.enabled
}

// SetEnabled toggles the light.
func (l *Light) SetEnabled(on bool) {
	l.enabled = on
}

// Uniform packs the light for materials: vector in view space, power, ambient.
func (l *Light) Uniform(view math.Mat4) [3]math.Vec4 {
	return [3]math.Vec4{view.MulVec4(l.vector), l.power, l.ambient}
}

// SetShadow enables or disables shadow casting. Enabling allocates a
// size x size depth target owned by the light; disabling releases it.
func (l *Light) SetShadow(enabled bool, size int32) {
	if !enabled {
		if l.shadow != nil {
			l.Disown(l.shadow.target)
			l.shadow = nil
		}
		return
	}
	if l.shadow != nil {
		return
	}
	t := gpuobj.NewDepthTarget(l.Name()+" shadow", size)
	t.AddParent(l.ID())
	t.Attach(l.Collector())
	l.shadow = &shadowState{target: t}
}

// ShadowEnabled reports whether the light casts shadows.
func (l *Light) ShadowEnabled() bool {
	return l.shadow != nil
}

// ShadowTarget returns the shadow map, nil when disabled.
func (l *Light) ShadowTarget() *gpuobj.RenderTarget {
	if l.shadow == nil {
		return nil
	}
	return l.shadow.target
}

// ShadowReady reports whether the shadow map is allocated and the light
// matrices have been fitted at least once.
func (l *Light) ShadowReady() bool {
	return l.shadow != nil && l.shadow.valid && l.shadow.target.Uploaded()
}

// ShadowView returns the light-space view matrix.
func (l *Light) ShadowView() math.Mat4 {
	if l.shadow == nil {
		return math.Identity()
	}
	return l.shadow.view
}

// ShadowProjection returns the light-space orthographic projection.
func (l *Light) ShadowProjection() math.Mat4 {
	if l.shadow == nil {
		return math.Identity()
	}
	return l.shadow.proj
}

// ShadowMatrix returns projection x view.
func (l *Light) ShadowMatrix() math.Mat4 {
	return l.ShadowProjection().Mul(l.ShadowView())
}

// ShadowBounds returns the last fitted light-space bounds.
func (l *Light) ShadowBounds() Bounds {
	if l.shadow == nil {
		return Bounds{}
	}
	return l.shadow.bounds
}

// Init allocates the shadow map, if enabled.
func (l *Light) Init(ctx gpu.Context, c *resource.Collector) error {
	return l.Upload(c, func() error {
		if l.shadow != nil {
			return l.shadow.target.Init(ctx, c)
		}
		return nil
	})
}

// VRAMFlushed forgets the shadow map upload.
func (l *Light) VRAMFlushed() {
	l.Flush()
	if l.shadow != nil {
		l.shadow.target.VRAMFlushed()
	}
}

// Dispose drops the shadow map.
func (l *Light) Dispose(ctx gpu.Context) {
	l.Release(nil)
	l.SetShadow(false, 0)
}

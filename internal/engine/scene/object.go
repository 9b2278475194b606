package scene

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
)

// DrawFunc draws a custom object and returns the number of draw calls.
type DrawFunc func(ctx gpu.Context, o *Object) int

// Object is a node that renders. Non-opaque objects are never drawn during
// the graph walk; they are handed to the host for the sorted pass.
type Object struct {
	Node
	outer Drawable

	lit        bool
	castShadow bool
	blend      gpu.BlendMode

	// OnDraw is used by DrawObject for objects that are not models.
	OnDraw DrawFunc
}

// NewObject creates a lit, opaque object drawn by fn.
func NewObject(name string, fn DrawFunc) *Object {
	o := &Object{OnDraw: fn}
	o.setupObject(o, o, name)
	return o
}

func (o *Object) setupObject(self behavior, outer Drawable, name string) {
	o.setup(self, name)
	o.outer = outer
	o.lit = true
}

// Lit reports whether the object participates in lighting.
func (o *Object) Lit() bool {
	return o.lit
}

// SetLit toggles light participation.
func (o *Object) SetLit(lit bool) {
	o.lit = lit
}

// ShadowCaster reports whether the object is flagged to cast shadows.
func (o *Object) ShadowCaster() bool {
	return o.castShadow
}

// SetShadowCaster toggles shadow casting.
func (o *Object) SetShadowCaster(cast bool) {
	o.castShadow = cast
}

// BlendMode returns the compositing mode.
func (o *Object) BlendMode() gpu.BlendMode {
	return o.blend
}

// SetBlendMode sets the compositing mode.
func (o *Object) SetBlendMode(b gpu.BlendMode) {
	o.blend = b
}

// DrawObject runs OnDraw.
func (o *Object) DrawObject(ctx gpu.Context) int {
	if o.OnDraw == nil {
		return 0
	}
	return o.OnDraw(ctx, o)
}

func (o *Object) drawSelf(ctx gpu.Context) {
	if o.blend != gpu.Opaque {
		if o.host != nil {
			o.host.Defer(o.outer)
		}
		return
	}
	n := o.outer.DrawObject(ctx)
	if o.host != nil {
		o.host.Frame().DrawCalls += n
	}
}

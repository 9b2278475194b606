package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/resource"
	"github.com/Faultbox/scenegl/pkg/math"
)

// MaxLODTiers is the number of detail tiers a model can hold.
const MaxLODTiers = 8

var (
	// ErrInvalidThresholds is returned for empty, decreasing or oversized
	// LOD threshold arrays.
	ErrInvalidThresholds = errors.New("invalid LOD thresholds")
	// ErrTierRange is returned when adding a bundle outside 0..MaxLODTiers-1.
	ErrTierRange = errors.New("LOD tier out of range")
)

// Model is a renderable mesh with up to MaxLODTiers detail tiers.
// Tier 0 is the most detailed. It owns every bundle added to it.
type Model struct {
	Object

	tiers      [][]*gpuobj.Bundle
	thresholds []float32
	currentLOD int
	viewPos    math.Vec3
}

// NewModel creates an empty model with a single unbounded LOD range.
func NewModel(name string) *Model {
	m := &Model{thresholds: []float32{math32.Inf(1)}}
	m.setupObject(m, m, name)
	return m
}

// AddBundle appends b to tier and makes the model its parent.
func (m *Model) AddBundle(b *gpuobj.Bundle, tier int) error {
	if tier < 0 || tier >= MaxLODTiers {
		return fmt.Errorf("%w: %d", ErrTierRange, tier)
	}
	for len(m.tiers) <= tier {
		m.tiers = append(m.tiers, nil)
	}
	m.tiers[tier] = append(m.tiers[tier], b)
	b.AddParent(m.ID())
	if m.host != nil {
		b.Attach(m.host.Collector())
	}
	return nil
}

// TierCount returns one past the highest tier index holding bundles.
func (m *Model) TierCount() int {
	return len(m.tiers)
}

// Tier returns the bundles of level, falling back to the nearest lower tier
// that has any. Levels past the last tier are clamped first.
func (m *Model) Tier(level int) []*gpuobj.Bundle {
	if level >= len(m.tiers) {
		level = len(m.tiers) - 1
	}
	for i := level; i >= 0; i-- {
		if len(m.tiers[i]) > 0 {
			return m.tiers[i]
		}
	}
	return nil
}

// Bundles returns every bundle of every tier.
func (m *Model) Bundles() []*gpuobj.Bundle {
	var all []*gpuobj.Bundle
	for _, t := range m.tiers {
		all = append(all, t...)
	}
	return all
}

// SetLODThresholds sets the view-depth upper bounds of tiers 0..len-1.
func (m *Model) SetLODThresholds(t []float32) error {
	if len(t) == 0 || len(t) > MaxLODTiers {
		return fmt.Errorf("%w: %d entries", ErrInvalidThresholds, len(t))
	}
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] {
			return fmt.Errorf("%w: entry %d decreases", ErrInvalidThresholds, i)
		}
	}
	m.thresholds = append(m.thresholds[:0], t...)
	return nil
}

// LODThresholds returns a copy of the thresholds.
func (m *Model) LODThresholds() []float32 {
	return append([]float32(nil), m.thresholds...)
}

// SelectTier returns the first tier whose threshold exceeds depth, or the
// last tier, and records it as the current LOD.
func (m *Model) SelectTier(depth float32) int {
	level := len(m.thresholds) - 1
	for i, t := range m.thresholds {
		if depth < t {
			level = i
			break
		}
	}
	m.currentLOD = level
	return level
}

// CurrentLOD returns the tier chosen by the last SelectTier.
func (m *Model) CurrentLOD() int {
	return m.currentLOD
}

// ViewPosition returns the model origin in view space as of the last draw.
func (m *Model) ViewPosition() math.Vec3 {
	return m.viewPos
}

// LocalBounds returns the union of the tier 0 bounds.
func (m *Model) LocalBounds() math.AABB {
	b := math.EmptyAABB()
	for _, bundle := range m.Tier(0) {
		b = b.Union(bundle.Bounds())
	}
	return b
}

// CastsShadow reports whether the model renders into shadow maps.
func (m *Model) CastsShadow() bool {
	return m.castShadow && m.visible && len(m.ShadowGeometry()) > 0
}

// ShadowGeometry returns the coarsest tier, used for depth passes.
func (m *Model) ShadowGeometry() []*gpuobj.Bundle {
	return m.Tier(len(m.tiers) - 1)
}

// DrawObject selects a tier from the view depth and draws its bundles.
func (m *Model) DrawObject(ctx gpu.Context) int {
	if m.host == nil {
		return 0
	}
	f := m.host.Frame()
	world := m.world
	mv := f.View.Mul(world)
	m.viewPos = mv.Translation()
	level := m.SelectTier(math32.Abs(m.viewPos.Z))

	u := gpuobj.Uniforms{
		Model:     world,
		ModelView: mv,
		MVP:       f.Projection.Mul(mv),
		Normal:    mv.NormalMatrix(),
		Lit:       m.lit,
	}
	if m.lit {
		u.Lights = f.Lights
		u.Shadow = f.Shadow
	}

	ctx.SetBlend(m.blend)
	drawn := 0
	c := m.host.Collector()
	for _, b := range m.Tier(level) {
		if b.Draw(ctx, c, &u) {
			drawn++
		}
	}
	ctx.SetBlend(gpu.Opaque)
	return drawn
}

func (m *Model) initSelf(ctx gpu.Context, c *resource.Collector) error {
	var err error
	for _, b := range m.Bundles() {
		err = multierr.Append(err, b.Init(ctx, c))
	}
	return err
}

func (m *Model) flushSelf() {
	for _, b := range m.Bundles() {
		b.VRAMFlushed()
	}
}

func (m *Model) disposeSelf(ctx gpu.Context) {
	for _, b := range m.Bundles() {
		b.RemoveParent(m.ID())
	}
	m.tiers = nil
	if m.host != nil {
		m.host.Unregister(m)
	}
}

func (m *Model) hostChanged(old, next Host) {
	if old != nil {
		old.Unregister(m)
	}
	if next == nil {
		return
	}
	for _, b := range m.Bundles() {
		b.Attach(next.Collector())
	}
	if !m.disposed {
		next.Register(m)
	}
}

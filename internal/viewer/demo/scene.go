package demo

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/engine/scene"
	"github.com/Faultbox/scenegl/pkg/math"
)

// sphereDetail is slices x stacks per LOD tier, finest first.
var sphereDetail = [][2]int{{32, 16}, {12, 6}, {6, 3}}

// Options control the generated scene.
type Options struct {
	Grid    int
	Spacing float32
	Glass   bool
	// Marker adds a screen-facing disc floating over the grid.
	Marker bool
	// LODThresholds are view-depth bounds between tiers; an unbounded
	// last tier is appended.
	LODThresholds []float32
	// Ground replaces the checkerboard ground texture when set.
	Ground *gpuobj.Texture
}

// Scene is the generated content. Everything hangs from Root.
type Scene struct {
	Root   *scene.Node
	Ground *scene.Model
	Balls  []*scene.Model
	Panes  []*scene.Model
	Marker *scene.Billboard

	program *gpuobj.Program
	size    float32
	spin    float32
}

// Build creates the scene. Geometry, materials and the shader program are
// shared between models; the last model to go releases them.
func Build(opts Options) (*Scene, error) {
	if opts.Spacing <= 0 {
		opts.Spacing = 4
	}
	s := &Scene{
		Root:    scene.NewNode("demo"),
		program: gpuobj.NewBasicProgram(),
		size:    float32(max(opts.Grid, 1)+1) * opts.Spacing,
		spin:    30,
	}

	thresholds := append(append([]float32(nil), opts.LODThresholds...), math32.Inf(1))
	tiers := make([]*gpuobj.Bundle, len(sphereDetail))
	palette := []math.Vec4{{0.9, 0.3, 0.3, 1}, {0.3, 0.9, 0.3, 1}, {0.3, 0.4, 0.9, 1}}
	for i, d := range sphereDetail {
		name := fmt.Sprintf("sphere lod%d", i)
		mat := gpuobj.NewBasicMaterial(name, s.program, nil, palette[i%len(palette)])
		tiers[i] = gpuobj.NewBundle(name, gpuobj.NewGeometry(name, Sphere(0.8, d[0], d[1])), mat)
	}

	offset := float32(opts.Grid-1) * opts.Spacing / 2
	for z := 0; z < opts.Grid; z++ {
		for x := 0; x < opts.Grid; x++ {
			m := scene.NewModel(fmt.Sprintf("ball %d,%d", x, z))
			for tier, b := range tiers {
				if err := m.AddBundle(b, tier); err != nil {
					return nil, err
				}
			}
			if err := m.SetLODThresholds(thresholds); err != nil {
				return nil, fmt.Errorf("ball lod: %w", err)
			}
			m.SetLit(true)
			m.SetShadowCaster(true)
			m.SetPosition(math.V3(float32(x)*opts.Spacing-offset, 1, float32(z)*opts.Spacing-offset))
			s.Root.Attach(m)
			s.Balls = append(s.Balls, m)
		}
	}

	if err := s.SetGround(opts.Ground); err != nil {
		return nil, err
	}

	if opts.Glass {
		pane := gpuobj.NewGeometry("pane", Pane(opts.Spacing, 2.5))
		tint := gpuobj.NewBasicMaterial("glass", s.program, nil, math.Vec4{0.6, 0.8, 1, 0.35})
		glass := gpuobj.NewBundle("glass", pane, tint)
		for i := 0; i < max(opts.Grid-1, 1); i++ {
			p := scene.NewModel(fmt.Sprintf("pane %d", i))
			if err := p.AddBundle(glass, 0); err != nil {
				return nil, err
			}
			p.SetBlendMode(gpu.Alpha)
			p.SetLit(true)
			p.SetPosition(math.V3(0, 1.25, float32(i)*opts.Spacing-offset+opts.Spacing/2))
			s.Root.Attach(p)
			s.Panes = append(s.Panes, p)
		}
	}
	if opts.Marker {
		s.Marker = scene.NewBillboard("marker", gpuobj.NewBillboardProgram(), Disc("marker", 64), gpuobj.OriginCenter)
		s.Marker.SetBlendMode(gpu.Alpha)
		s.Marker.SetScale(0.5)
		s.Marker.SetPosition(math.V3(0, 4, 0))
		s.Root.Attach(s.Marker)
	}
	return s, nil
}

// SetGround replaces the ground model. The old one is destroyed and its
// resources are collected once nothing else references them.
func (s *Scene) SetGround(tex *gpuobj.Texture) error {
	repeat := s.size / 2
	if tex == nil {
		tex = gpuobj.Checker("ground checker", 64, 8, [4]byte{200, 200, 200, 255}, [4]byte{120, 120, 120, 255})
	} else {
		repeat = 1
	}
	mat := gpuobj.NewBasicMaterial("ground", s.program, tex, math.Vec4{1, 1, 1, 1})
	b := gpuobj.NewBundle("ground", gpuobj.NewGeometry("ground", Plane(s.size, repeat)), mat)

	g := scene.NewModel("ground")
	if err := g.AddBundle(b, 0); err != nil {
		return err
	}
	g.SetLit(true)

	if s.Ground != nil {
		s.Ground.Destroy()
	}
	s.Ground = g
	s.Root.Attach(g)
	return nil
}

// SetSpin sets the ball rotation speed in degrees per second.
func (s *Scene) SetSpin(degPerSec float32) {
	s.spin = degPerSec
}

// Update spins the balls by dt seconds.
func (s *Scene) Update(dt float32) {
	for _, b := range s.Balls {
		b.MultRotate(s.spin*dt, math.V3(0, 1, 0))
	}
}

// Bounds returns the world-space extent of the scene.
func (s *Scene) Bounds() math.AABB {
	h := s.size / 2
	return math.AABB{Min: math.V3(-h, 0, -h), Max: math.V3(h, 2, h)}
}

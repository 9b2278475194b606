package lighting

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/logger"
	"github.com/Faultbox/scenegl/pkg/math"
)

// CameraView is what shadow fitting needs from the camera.
type CameraView interface {
	View() math.Mat4
	Frustum() [8]math.Vec3
	Up() math.Vec3
}

// Bounds is a light-space box around a set of points. Left/Right lie along
// X, Bottom/Top along Up and Near/Far along the light direction, all
// relative to Center.
type Bounds struct {
	Left, Right, Bottom, Top, Near, Far float32

	Center math.Vec3
	X      math.Vec3
	Up     math.Vec3
	Dir    math.Vec3
}

// Projection returns the orthographic projection covering the bounds.
func (b Bounds) Projection() math.Mat4 {
	return math.OrthoMatrix(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
}

// FitOrthoBounds fits a light-space box around corners. The basis is
// X = normalize(up x dir), Up = X x dir, and the box is the exact
// componentwise extent of the corners, relative to their centroid,
// projected on (X, Up, dir).
func FitOrthoBounds(corners [8]math.Vec3, dir, up math.Vec3) (Bounds, error) {
	d, err := dir.NormalizeChecked()
	if err != nil {
		return Bounds{}, fmt.Errorf("light direction: %w", err)
	}
	x, err := up.Cross(d).NormalizeChecked()
	if err != nil {
		return Bounds{}, fmt.Errorf("light basis: %w", err)
	}
	y := x.Cross(d)

	b := Bounds{
		Left: math32.Inf(1), Right: math32.Inf(-1),
		Bottom: math32.Inf(1), Top: math32.Inf(-1),
		Near: math32.Inf(1), Far: math32.Inf(-1),
		Center: math.Centroid(corners[:]),
		X:      x,
		Up:     y,
		Dir:    d,
	}
	for _, p := range corners {
		rel := p.Sub(b.Center)
		px, py, pz := rel.Dot(x), rel.Dot(y), rel.Dot(d)
		b.Left, b.Right = min(b.Left, px), max(b.Right, px)
		b.Bottom, b.Top = min(b.Bottom, py), max(b.Top, py)
		b.Near, b.Far = min(b.Near, pz), max(b.Far, pz)
	}
	return b, nil
}

// UpdateShadow fits the light's orthographic shadow volume to the camera's
// view frustum. Only directional lights are supported. On a degenerate
// basis the previous matrices are kept and math.ErrDegenerate is returned.
func (l *Light) UpdateShadow(cam CameraView) error {
	if l.shadow == nil {
		return nil
	}
	if !l.Directional() {
		return fmt.Errorf("%s: %w", l.Name(), ErrUnsupportedLight)
	}

	view := cam.View()
	dir := view.TransformDirection(l.Direction())
	up := view.TransformDirection(cam.Up())
	if dir.Cross(up).Length() < math.Epsilon {
		// Light parallel to the camera's up axis; use the view direction.
		up = math.V3(0, 0, -1)
	}

	b, err := FitOrthoBounds(cam.Frustum(), dir, up)
	if err != nil {
		logger.Warn("shadow fit failed", zap.String("light", l.Name()), zap.Error(err))
		return err
	}

	// Move the basis back to world space; the view is rigid so the
	// extents carry over unchanged.
	inv := view.Inverse()
	center := inv.TransformPoint(b.Center)
	worldDir := inv.TransformDirection(b.Dir)
	worldUp := inv.TransformDirection(b.Up)

	l.shadow.view = math.ViewMatrix(center, center.Add(worldDir), worldUp)
	l.shadow.proj = b.Projection()
	l.shadow.bounds = b
	l.shadow.valid = true
	return nil
}

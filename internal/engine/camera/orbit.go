package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenegl/pkg/math"
)

// OrbitController orbits a Camera around a center point.
type OrbitController struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	// AutoRotate is the yaw speed in radians per second.
	AutoRotate float32
}

// NewOrbitController creates a controller with default settings.
func NewOrbitController() *OrbitController {
	return &OrbitController{
		Distance:        12.0,
		RotationX:       0.5,
		MinDistance:     2.0,
		MaxDistance:     200.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (o *OrbitController) Position() math.Vec3 {
	x := o.Distance * math32.Cos(o.RotationX) * math32.Sin(o.RotationY)
	y := o.Distance * math32.Sin(o.RotationX)
	z := o.Distance * math32.Cos(o.RotationX) * math32.Cos(o.RotationY)
	return o.Center.Add(math.V3(x, y, z))
}

// Apply moves cam to the controller's position, looking at the center.
func (o *OrbitController) Apply(cam *Camera) {
	cam.SetPosition(o.Position(), o.Center, math.V3(0, 1, 0))
}

// Update advances auto-rotation by dt seconds.
func (o *OrbitController) Update(dt float32) {
	o.RotationY += o.AutoRotate * dt
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *OrbitController) HandleDrag(deltaX, deltaY float32) {
	o.RotationY -= deltaX * o.DragSensitivity
	o.RotationX += deltaY * o.DragSensitivity
	o.RotationX = min(max(o.RotationX, o.MinPitch), o.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *OrbitController) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Distance = min(max(o.Distance, o.MinDistance), o.MaxDistance)
}

// FitToBounds centers the orbit on b at a distance that keeps it in view.
func (o *OrbitController) FitToBounds(b math.AABB) {
	if b.IsEmpty() {
		return
	}
	o.Center = b.Center()
	size := b.Max.Sub(b.Min).Length()
	o.Distance = min(max(size*1.5, o.MinDistance), o.MaxDistance)
}

package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenegl/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a unit vector
// pointing towards the sun. Longitude rotates around Y, latitude is the
// elevation from the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := math.Radians(longitude)
	lat := math.Radians(latitude)

	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// SunLight returns a directional light shining from the sun position given
// by longitude/latitude.
func SunLight(name string, longitude, latitude float32) *Light {
	return NewDirectional(name, SunDirection(longitude, latitude).Neg())
}

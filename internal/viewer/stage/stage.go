// Package stage turns viewer configuration into engine, camera, light and
// scene settings.
package stage

import (
	"fmt"

	"github.com/Faultbox/scenegl/internal/config"
	"github.com/Faultbox/scenegl/internal/engine/camera"
	"github.com/Faultbox/scenegl/internal/engine/lighting"
	"github.com/Faultbox/scenegl/internal/engine/renderer"
	"github.com/Faultbox/scenegl/internal/viewer/demo"
	"github.com/Faultbox/scenegl/pkg/math"
)

// Engine returns the engine settings for a drawable of width x height
// pixels.
func Engine(cfg *config.Config, width, height int) renderer.Config {
	return renderer.Config{
		Width:      width,
		Height:     height,
		Background: cfg.Background(),
		Lighting:   cfg.Renderer.Lighting,
		MaxLights:  cfg.Renderer.MaxLights,
	}
}

// Camera applies projection, frustum and depth capture settings.
func Camera(cam *camera.Camera, cfg *config.Config) error {
	mode, ok := camera.ParseMode(cfg.Renderer.Projection)
	if !ok {
		return fmt.Errorf("unknown projection %q", cfg.Renderer.Projection)
	}
	f := cfg.Renderer.Frustum
	cam.SetMode(mode)
	cam.SetAutoAspect(cfg.Renderer.AutoAspect)
	cam.SetParameters(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
	if cfg.Renderer.DepthCapture {
		cam.EnableDepthCapture(int32(cfg.Renderer.ShadowResolution))
	} else {
		cam.DisableDepthCapture()
	}
	return nil
}

// Orbit returns a controller at the configured orbit.
func Orbit(cfg *config.Config) *camera.OrbitController {
	o := camera.NewOrbitController()
	c := cfg.Camera
	o.Center = math.V3(c.Target[0], c.Target[1], c.Target[2])
	o.Distance = min(max(c.Distance, o.MinDistance), o.MaxDistance)
	o.RotationX = min(max(math.Radians(c.RotationX), o.MinPitch), o.MaxPitch)
	o.RotationY = math.Radians(c.RotationY)
	o.AutoRotate = math.Radians(c.AutoRotate)
	return o
}

// Sun returns the configured sun light. Shadows are enabled when the
// renderer asks for them.
func Sun(cfg *config.Config) *lighting.Light {
	l := cfg.Light
	sun := lighting.SunLight("sun", l.Longitude, l.Latitude)
	sun.SetPower(l.Power[0], l.Power[1], l.Power[2])
	sun.SetAmbient(l.Ambient[0], l.Ambient[1], l.Ambient[2])
	sun.SetShadow(cfg.Renderer.Shadows, int32(cfg.Renderer.ShadowResolution))
	return sun
}

// Scene returns the demo scene layout.
func Scene(cfg *config.Config) demo.Options {
	return demo.Options{
		Grid:          cfg.Scene.Grid,
		Spacing:       cfg.Scene.Spacing,
		Glass:         cfg.Scene.Glass,
		Marker:        cfg.Scene.Marker,
		LODThresholds: cfg.Renderer.LODThresholds,
	}
}

// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Scene    SceneConfig    `yaml:"scene"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	Samples    int  `yaml:"samples"`
}

// FrustumConfig is the camera frustum before aspect correction.
type FrustumConfig struct {
	Left   float32 `yaml:"left"`
	Right  float32 `yaml:"right"`
	Bottom float32 `yaml:"bottom"`
	Top    float32 `yaml:"top"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// RendererConfig holds engine settings.
type RendererConfig struct {
	Projection string        `yaml:"projection"` // perspective or orthographic
	AutoAspect bool          `yaml:"auto_aspect"`
	Frustum    FrustumConfig `yaml:"frustum"`
	// Background is a color name ("midnightblue") or #rrggbb[aa].
	Background       string    `yaml:"background"`
	Lighting         bool      `yaml:"lighting"`
	MaxLights        int       `yaml:"max_lights"`
	Shadows          bool      `yaml:"shadows"`
	ShadowResolution int       `yaml:"shadow_resolution"`
	DepthCapture     bool      `yaml:"depth_capture"`
	LODThresholds    []float32 `yaml:"lod_thresholds"`
}

// CameraConfig holds the initial orbit around the scene.
type CameraConfig struct {
	Target     [3]float32 `yaml:"target"`
	Distance   float32    `yaml:"distance"`
	RotationX  float32    `yaml:"rotation_x"`  // degrees
	RotationY  float32    `yaml:"rotation_y"`  // degrees
	AutoRotate float32    `yaml:"auto_rotate"` // degrees per second
}

// LightConfig holds the sun light.
type LightConfig struct {
	Longitude float32    `yaml:"longitude"`
	Latitude  float32    `yaml:"latitude"`
	Power     [3]float32 `yaml:"power"`
	Ambient   [3]float32 `yaml:"ambient"`
}

// SceneConfig holds the demo scene layout.
type SceneConfig struct {
	Grid    int     `yaml:"grid"`    // models per side
	Spacing float32 `yaml:"spacing"` // distance between models
	Glass   bool    `yaml:"glass"`   // add transparent panes
	Marker  bool    `yaml:"marker"`  // add a billboard over the grid
	Texture string  `yaml:"texture"` // optional ground texture (png, jpeg, bmp)
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			Samples:    4,
		},
		Renderer: RendererConfig{
			Projection: "perspective",
			AutoAspect: true,
			Frustum: FrustumConfig{
				Left: -0.5, Right: 0.5, Bottom: -0.5, Top: 0.5,
				Near: 1, Far: 500,
			},
			Background:       "#1a1a26",
			Lighting:         true,
			MaxLights:        8,
			Shadows:          true,
			ShadowResolution: 2048,
			LODThresholds:    []float32{15, 40},
		},
		Camera: CameraConfig{
			Distance:  25,
			RotationX: -30,
			RotationY: 45,
		},
		Light: LightConfig{
			Longitude: 45,
			Latitude:  45,
			Power:     [3]float32{1, 1, 1},
			Ambient:   [3]float32{0.2, 0.2, 0.2},
		},
		Scene: SceneConfig{
			Grid:    5,
			Spacing: 4,
			Glass:   true,
			Marker:  true,
		},
		Capture: CaptureConfig{
			Dir:    "screenshots",
			Prefix: "scenegl",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

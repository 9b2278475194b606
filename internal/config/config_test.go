package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Renderer.Projection != "perspective" {
		t.Errorf("expected perspective projection, got %s", cfg.Renderer.Projection)
	}
	if !cfg.Renderer.Shadows {
		t.Error("expected shadows on by default")
	}
	if cfg.Renderer.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Renderer.ShadowResolution)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

renderer:
  projection: orthographic
  background: midnightblue
  shadows: false
  lod_thresholds: [5, 10, 20]
  frustum:
    left: -1
    right: 1
    bottom: -1
    top: 1
    near: 0.5
    far: 100

camera:
  target: [1, 2, 3]
  distance: 12

light:
  longitude: 90
  latitude: 30

scene:
  grid: 3
  texture: ground.png

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Graphics.FPSLimit)
	}
	if cfg.Renderer.Projection != "orthographic" {
		t.Errorf("expected orthographic, got %s", cfg.Renderer.Projection)
	}
	if cfg.Renderer.Shadows {
		t.Error("expected shadows to be false")
	}
	if got := cfg.Renderer.LODThresholds; len(got) != 3 || got[2] != 20 {
		t.Errorf("expected lod thresholds [5 10 20], got %v", got)
	}
	if cfg.Renderer.Frustum.Near != 0.5 {
		t.Errorf("expected near 0.5, got %g", cfg.Renderer.Frustum.Near)
	}
	if cfg.Camera.Target != [3]float32{1, 2, 3} {
		t.Errorf("expected target [1 2 3], got %v", cfg.Camera.Target)
	}
	if cfg.Camera.RotationY != 45 {
		t.Errorf("expected untouched rotation_y 45, got %g", cfg.Camera.RotationY)
	}
	if cfg.Light.Longitude != 90 {
		t.Errorf("expected longitude 90, got %g", cfg.Light.Longitude)
	}
	if cfg.Scene.Texture != "ground.png" {
		t.Errorf("expected texture ground.png, got %s", cfg.Scene.Texture)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" && filepath.Dir(path) == "." {
		t.Errorf("expected no config in empty directory, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path != "./config.yaml" {
		t.Errorf("expected ./config.yaml, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "no-shadows flag",
			setup: func() { *flagNoShadows = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Renderer.Shadows {
					t.Error("expected shadows off")
				}
			},
			teardown: func() { *flagNoShadows = false },
		},
		{
			name:  "ortho flag",
			setup: func() { *flagOrtho = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Renderer.Projection != "orthographic" {
					t.Errorf("expected orthographic, got %s", cfg.Renderer.Projection)
				}
			},
			teardown: func() { *flagOrtho = false },
		},
		{
			name:  "grid zero is honored",
			setup: func() { *flagGrid = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Grid != 0 {
					t.Errorf("expected grid 0, got %d", cfg.Scene.Grid)
				}
			},
			teardown: func() { *flagGrid = -1 },
		},
		{
			name:  "texture flag",
			setup: func() { *flagTexture = "floor.bmp" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Texture != "floor.bmp" {
					t.Errorf("expected floor.bmp, got %s", cfg.Scene.Texture)
				}
			},
			teardown: func() { *flagTexture = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("renderer:\n  projection: fisheye\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "fisheye") {
		t.Errorf("expected projection error, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Width = 0
	cfg.Renderer.Frustum.Near = 0
	cfg.Renderer.Background = "not-a-color"
	cfg.Renderer.ShadowResolution = 1000
	cfg.Renderer.LODThresholds = []float32{10, 5}
	cfg.Camera.Distance = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 6 {
		t.Errorf("expected 6 errors, got %d: %v", n, err)
	}
	if !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor in %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    [4]float32
		wantErr bool
	}{
		{in: "white", want: [4]float32{1, 1, 1, 1}},
		{in: " Black ", want: [4]float32{0, 0, 0, 1}},
		{in: "#ff0000", want: [4]float32{1, 0, 0, 1}},
		{in: "#00ff0000", want: [4]float32{0, 1, 0, 0}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("expected ErrInvalidColor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Scene.Grid = 9
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scene.Grid != 9 {
		t.Errorf("expected grid 9, got %d", loaded.Scene.Grid)
	}
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("renderer:\n  shadow: false\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected default width, got %d", cfg.Graphics.Width)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  grid: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfig, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Scene.Grid != 2 {
		t.Errorf("expected grid 2 from env config, got %d", cfg.Scene.Grid)
	}
}

package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned for unparseable color strings.
var ErrInvalidColor = errors.New("invalid color")

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("graphics: size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height))
	}
	switch c.Renderer.Projection {
	case "perspective", "orthographic":
	default:
		err = multierr.Append(err, fmt.Errorf("renderer: unknown projection %q", c.Renderer.Projection))
	}
	f := c.Renderer.Frustum
	if f.Near <= 0 || f.Far <= f.Near {
		err = multierr.Append(err, fmt.Errorf("renderer: frustum near %g far %g must satisfy 0 < near < far", f.Near, f.Far))
	}
	if f.Left >= f.Right || f.Bottom >= f.Top {
		err = multierr.Append(err, errors.New("renderer: frustum left/right or bottom/top inverted"))
	}
	if _, cerr := ParseColor(c.Renderer.Background); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("renderer: background: %w", cerr))
	}
	if c.Renderer.MaxLights < 1 {
		err = multierr.Append(err, fmt.Errorf("renderer: max_lights %d must be at least 1", c.Renderer.MaxLights))
	}
	if r := c.Renderer.ShadowResolution; c.Renderer.Shadows && (r < 16 || r&(r-1) != 0) {
		err = multierr.Append(err, fmt.Errorf("renderer: shadow_resolution %d must be a power of two >= 16", r))
	}
	for i := 1; i < len(c.Renderer.LODThresholds); i++ {
		if c.Renderer.LODThresholds[i] <= c.Renderer.LODThresholds[i-1] {
			err = multierr.Append(err, errors.New("renderer: lod_thresholds must be strictly increasing"))
			break
		}
	}
	if c.Camera.Distance <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera: distance %g must be positive", c.Camera.Distance))
	}
	if c.Scene.Grid < 0 {
		err = multierr.Append(err, fmt.Errorf("scene: grid %d must not be negative", c.Scene.Grid))
	}
	return err
}

// Background returns the parsed clear color. Call after Validate.
func (c *Config) Background() [4]float32 {
	rgba, err := ParseColor(c.Renderer.Background)
	if err != nil {
		return [4]float32{0, 0, 0, 1}
	}
	return rgba
}

// ParseColor accepts an SVG color name or #rrggbb / #rrggbbaa and returns
// normalized RGBA.
func ParseColor(s string) ([4]float32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := colornames.Map[s]; ok {
		return normalize(c), nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return [4]float32{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float32{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return normalize(color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}), nil
}

func normalize(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

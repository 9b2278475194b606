// Package debug provides capture utilities for inspecting rendered output.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/gpuobj"
	"github.com/Faultbox/scenegl/internal/logger"
)

// ErrNotCapturable is returned for targets without a color attachment or
// not yet allocated.
var ErrNotCapturable = errors.New("target has no readable color attachment")

// Capture writes frames and render targets to PNG files.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
	last      string
	seq       int
}

// NewCapture creates a capture writing <outputDir>/<prefix>_<timestamp>.png.
func NewCapture(outputDir, prefix string) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory.
func (c *Capture) SetOutputDir(dir string) {
	c.outputDir = dir
}

// Filename returns the next file name. Captures within the same second
// get a numeric suffix.
func (c *Capture) Filename() string {
	stamp := c.now().Format("2006-01-02_15-04-05")
	if stamp == c.last {
		c.seq++
	} else {
		c.last, c.seq = stamp, 0
	}
	name := fmt.Sprintf("%s_%s.png", c.prefix, stamp)
	if c.seq > 0 {
		name = fmt.Sprintf("%s_%s_%d.png", c.prefix, stamp, c.seq)
	}
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// SaveFrame reads the default framebuffer and writes it out.
func (c *Capture) SaveFrame(ctx gpu.Context, viewport [4]int32) (string, error) {
	t := gpu.Target{Width: viewport[2], Height: viewport[3]}
	return c.SavePixels(ctx.ReadPixels(t), int(t.Width), int(t.Height))
}

// SaveTarget reads a color render target and writes it out.
func (c *Capture) SaveTarget(ctx gpu.Context, rt *gpuobj.RenderTarget) (string, error) {
	if rt.Desc().DepthOnly || !rt.Uploaded() {
		return "", fmt.Errorf("capture %s: %w", rt.Name(), ErrNotCapturable)
	}
	t := rt.Target()
	return c.SavePixels(ctx.ReadPixels(t), int(t.Width), int(t.Height))
}

// SavePixels writes bottom-up RGBA pixels as a top-down PNG.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := Image(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.SaveImage(img)
}

// SaveImage writes img as PNG and returns the file name.
func (c *Capture) SaveImage(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Info("capture saved", zap.String("file", filename))
	return filename, nil
}

// Image converts bottom-up RGBA pixels (OpenGL row order) into an image.
func Image(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

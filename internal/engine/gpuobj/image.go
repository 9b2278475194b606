package gpuobj

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
)

// MaxTextureSize caps decoded images; larger ones are scaled down.
const MaxTextureSize = 4096

// TextureFromImage converts img to RGBA8, scaling it down so neither side
// exceeds maxSize. Rows are stored bottom-up as OpenGL expects.
func TextureFromImage(name string, img image.Image, maxSize int, repeat bool) *Texture {
	if maxSize <= 0 {
		maxSize = MaxTextureSize
	}
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w > maxSize || h > maxSize {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/w)
		} else {
			w, h = max(1, w*maxSize/h), maxSize
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), img, src, draw.Src, nil)
	}

	pix := make([]byte, len(rgba.Pix))
	row := w * 4
	for y := 0; y < h; y++ {
		copy(pix[(h-1-y)*row:(h-y)*row], rgba.Pix[y*rgba.Stride:y*rgba.Stride+row])
	}

	desc := gpu.TextureDesc{Width: int32(w), Height: int32(h), Linear: true, Repeat: repeat}
	return NewTexture(name, desc, pix)
}

// DecodeTexture reads a PNG, JPEG or BMP image.
func DecodeTexture(name string, r io.Reader, repeat bool) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", name, err)
	}
	t := TextureFromImage(name, img, MaxTextureSize, repeat)
	t.format = format
	return t, nil
}

// LoadTexture decodes an image file into a texture.
func LoadTexture(path string, repeat bool) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()
	return DecodeTexture(path, f, repeat)
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int32) {
	return t.desc.Width, t.desc.Height
}

// Format returns the source image format, empty for generated textures.
func (t *Texture) Format() string {
	return t.format
}

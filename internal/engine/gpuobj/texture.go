package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
)

// Texture is an uploaded RGBA8 image.
type Texture struct {
	resource.Base
	desc   gpu.TextureDesc
	pixels []byte
	handle uint32
	format string
}

// NewTexture wraps RGBA pixels of the given size.
func NewTexture(name string, desc gpu.TextureDesc, rgba []byte) *Texture {
	t := &Texture{desc: desc, pixels: rgba}
	t.Setup(t, name)
	return t
}

// SolidTexture returns a 1x1 texture of one color.
func SolidTexture(name string, r, g, b, a byte) *Texture {
	return NewTexture(name, gpu.TextureDesc{Width: 1, Height: 1}, []byte{r, g, b, a})
}

// Checker returns a size x size checkerboard with cells of cell pixels.
func Checker(name string, size, cell int32, a, b [4]byte) *Texture {
	pix := make([]byte, 0, size*size*4)
	for y := int32(0); y < size; y++ {
		for x := int32(0); x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			pix = append(pix, c[:]...)
		}
	}
	return NewTexture(name, gpu.TextureDesc{Width: size, Height: size, Repeat: true}, pix)
}

// Handle returns the native name, zero when not uploaded.
func (t *Texture) Handle() uint32 {
	return t.handle
}

// Init uploads the pixels.
func (t *Texture) Init(ctx gpu.Context, c *resource.Collector) error {
	return t.Upload(c, func() error {
		h, err := ctx.CreateTexture(t.desc, t.pixels)
		if err != nil {
			return err
		}
		t.handle = h
		return nil
	})
}

// VRAMFlushed forces a re-upload on the next Init.
func (t *Texture) VRAMFlushed() {
	t.Flush()
}

// Dispose releases the texture.
func (t *Texture) Dispose(ctx gpu.Context) {
	t.Release(func() {
		ctx.DeleteTexture(t.handle)
		t.handle = 0
	})
}

package gpuobj

import (
	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/internal/engine/resource"
)

// Program is a linked shader program.
type Program struct {
	resource.Base
	vertexSrc   string
	fragmentSrc string
	handle      uint32
}

// NewProgram wraps shader sources. Compilation happens on Init.
func NewProgram(name, vertexSrc, fragmentSrc string) *Program {
	p := &Program{vertexSrc: vertexSrc, fragmentSrc: fragmentSrc}
	p.Setup(p, name)
	return p
}

// Handle returns the native name, zero when not linked.
func (p *Program) Handle() uint32 {
	return p.handle
}

// Init compiles and links the program. Failures are logged by Upload.
func (p *Program) Init(ctx gpu.Context, c *resource.Collector) error {
	return p.Upload(c, func() error {
		h, err := ctx.CreateProgram(p.vertexSrc, p.fragmentSrc)
		if err != nil {
			return err
		}
		p.handle = h
		return nil
	})
}

// VRAMFlushed forces a relink on the next Init.
func (p *Program) VRAMFlushed() {
	p.Flush()
}

// Dispose deletes the program.
func (p *Program) Dispose(ctx gpu.Context) {
	p.Release(func() {
		ctx.DeleteProgram(p.handle)
		p.handle = 0
	})
}

// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"errors"
	"sync"

	"github.com/Faultbox/scenegl/internal/engine/gpu"
	"github.com/Faultbox/scenegl/pkg/math"
)

// ErrInjected is returned by creation calls configured to fail.
var ErrInjected = errors.New("injected failure")

// Kind names a handle namespace.
type Kind string

const (
	KindGeometry Kind = "geometry"
	KindProgram  Kind = "program"
	KindTexture  Kind = "texture"
	KindTarget   Kind = "target"
)

// Call is one recorded context invocation.
type Call struct {
	Op    string
	ID    uint32
	Name  string
	Blend gpu.BlendMode
	Mat4  math.Mat4
}

// Context records every call and hands out sequential handles.
type Context struct {
	mu sync.Mutex

	// Fail makes creation of the given kinds return ErrInjected.
	Fail map[Kind]bool

	next    uint32
	live    map[Kind]map[uint32]bool
	created map[Kind]int
	deleted map[Kind]int
	calls   []Call
	errs    []uint32
	blend   gpu.BlendMode
	pixels  []byte
}

var _ gpu.Context = (*Context)(nil)

// New returns an empty recording context.
func New() *Context {
	return &Context{
		Fail:    make(map[Kind]bool),
		live:    make(map[Kind]map[uint32]bool),
		created: make(map[Kind]int),
		deleted: make(map[Kind]int),
	}
}

func (c *Context) record(call Call) {
	c.calls = append(c.calls, call)
}

func (c *Context) create(kind Kind, op string) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail[kind] {
		c.record(Call{Op: op + "!"})
		return 0, ErrInjected
	}
	c.next++
	if c.live[kind] == nil {
		c.live[kind] = make(map[uint32]bool)
	}
	c.live[kind][c.next] = true
	c.created[kind]++
	c.record(Call{Op: op, ID: c.next})
	return c.next, nil
}

func (c *Context) remove(kind Kind, op string, id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Op: op, ID: id})
	if c.live[kind][id] {
		delete(c.live[kind], id)
		c.deleted[kind]++
	}
}

func (c *Context) op(call Call) {
	c.mu.Lock()
	c.record(call)
	c.mu.Unlock()
}

// PushError queues an error code for the next Error call.
func (c *Context) PushError(code uint32) {
	c.mu.Lock()
	c.errs = append(c.errs, code)
	c.mu.Unlock()
}

// SetPixels sets the bytes ReadPixels returns.
func (c *Context) SetPixels(p []byte) {
	c.mu.Lock()
	c.pixels = p
	c.mu.Unlock()
}

// Live returns the number of handles of kind not yet deleted.
func (c *Context) Live(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live[kind])
}

// Created returns how many handles of kind were created.
func (c *Context) Created(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created[kind]
}

// Deleted returns how many live handles of kind were deleted.
func (c *Context) Deleted(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted[kind]
}

// Calls returns a copy of the recorded calls.
func (c *Context) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Ops returns the recorded calls filtered to the given op names.
func (c *Context) Ops(names ...string) []Call {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Call
	for _, call := range c.Calls() {
		if want[call.Op] {
			out = append(out, call)
		}
	}
	return out
}

// Draws returns the geometry IDs drawn, in order.
func (c *Context) Draws() []uint32 {
	var ids []uint32
	for _, call := range c.Ops("DrawGeometry") {
		ids = append(ids, call.ID)
	}
	return ids
}

// Reset forgets recorded calls but keeps handle bookkeeping.
func (c *Context) Reset() {
	c.mu.Lock()
	c.calls = nil
	c.mu.Unlock()
}

func (c *Context) Info() gpu.Info {
	return gpu.Info{Vendor: "gputest", Renderer: "recording", Version: "0"}
}

func (c *Context) Error() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return gpu.NoError
	}
	code := c.errs[0]
	c.errs = c.errs[1:]
	return code
}

func (c *Context) SetDefaults()           { c.op(Call{Op: "SetDefaults"}) }
func (c *Context) Clear(color [4]float32) { c.op(Call{Op: "Clear"}) }
func (c *Context) ClearDepth()            { c.op(Call{Op: "ClearDepth"}) }

func (c *Context) Viewport(x, y, width, height int32) {
	c.op(Call{Op: "Viewport", ID: uint32(width)})
}

func (c *Context) SetBlend(mode gpu.BlendMode) {
	c.mu.Lock()
	c.blend = mode
	c.record(Call{Op: "SetBlend", Blend: mode})
	c.mu.Unlock()
}

// Blend returns the blend mode last set.
func (c *Context) Blend() gpu.BlendMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blend
}

func (c *Context) SetCullFront(front bool) { c.op(Call{Op: "SetCullFront"}) }

func (c *Context) CreateGeometry(data gpu.MeshData) (uint32, error) {
	if data.VertexCount() == 0 {
		return 0, errors.New("geometry has no vertices")
	}
	return c.create(KindGeometry, "CreateGeometry")
}

func (c *Context) DrawGeometry(id uint32) {
	c.mu.Lock()
	c.record(Call{Op: "DrawGeometry", ID: id, Blend: c.blend})
	c.mu.Unlock()
}

func (c *Context) DeleteGeometry(id uint32) { c.remove(KindGeometry, "DeleteGeometry", id) }

func (c *Context) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	return c.create(KindProgram, "CreateProgram")
}

func (c *Context) UseProgram(id uint32)    { c.op(Call{Op: "UseProgram", ID: id}) }
func (c *Context) DeleteProgram(id uint32) { c.remove(KindProgram, "DeleteProgram", id) }

func (c *Context) UniformMat4(program uint32, name string, m math.Mat4) {
	c.op(Call{Op: "UniformMat4", ID: program, Name: name, Mat4: m})
}

func (c *Context) UniformMat3(program uint32, name string, m math.Mat3) {
	c.op(Call{Op: "UniformMat3", ID: program, Name: name})
}

func (c *Context) UniformVec4s(program uint32, name string, v []math.Vec4) {
	c.op(Call{Op: "UniformVec4s", ID: program, Name: name})
}

func (c *Context) UniformInt(program uint32, name string, v int32) {
	c.op(Call{Op: "UniformInt", ID: program, Name: name})
}

func (c *Context) UniformFloat(program uint32, name string, v float32) {
	c.op(Call{Op: "UniformFloat", ID: program, Name: name})
}

func (c *Context) CreateTexture(desc gpu.TextureDesc, rgba []byte) (uint32, error) {
	return c.create(KindTexture, "CreateTexture")
}

func (c *Context) BindTexture(unit uint32, id uint32) { c.op(Call{Op: "BindTexture", ID: id}) }
func (c *Context) DeleteTexture(id uint32)            { c.remove(KindTexture, "DeleteTexture", id) }

func (c *Context) CreateTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	id, err := c.create(KindTarget, "CreateTarget")
	if err != nil {
		return gpu.Target{}, err
	}
	return gpu.Target{FBO: id, Texture: id, Width: desc.Width, Height: desc.Height}, nil
}

func (c *Context) BindTarget(t gpu.Target)   { c.op(Call{Op: "BindTarget", ID: t.FBO}) }
func (c *Context) UnbindTarget()             { c.op(Call{Op: "UnbindTarget"}) }
func (c *Context) DeleteTarget(t gpu.Target) { c.remove(KindTarget, "DeleteTarget", t.FBO) }

func (c *Context) ReadPixels(t gpu.Target) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Op: "ReadPixels", ID: t.FBO})
	if c.pixels != nil {
		return append([]byte(nil), c.pixels...)
	}
	return make([]byte, int(t.Width*t.Height*4))
}

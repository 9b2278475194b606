package glctx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/scenegl/pkg/math"
)

// CreateProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func (c *Context) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", gl.GoStr(&log[0]))
	}

	c.uniforms[program] = make(map[string]int32)
	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

// UseProgram makes the program current.
func (c *Context) UseProgram(id uint32) {
	gl.UseProgram(id)
}

// DeleteProgram releases the program and its cached uniform locations.
func (c *Context) DeleteProgram(id uint32) {
	if id == 0 {
		return
	}
	delete(c.uniforms, id)
	gl.DeleteProgram(id)
}

// location returns the cached uniform location, -1 when inactive.
func (c *Context) location(program uint32, name string) int32 {
	cache, ok := c.uniforms[program]
	if !ok {
		cache = make(map[string]int32)
		c.uniforms[program] = cache
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	cache[name] = loc
	return loc
}

// UniformMat4 sets a mat4 uniform on the current program.
func (c *Context) UniformMat4(program uint32, name string, m math.Mat4) {
	if loc := c.location(program, name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

// UniformMat3 sets a mat3 uniform on the current program.
func (c *Context) UniformMat3(program uint32, name string, m math.Mat3) {
	if loc := c.location(program, name); loc >= 0 {
		gl.UniformMatrix3fv(loc, 1, false, m.Ptr())
	}
}

// UniformVec4s sets a vec4 array uniform on the current program.
func (c *Context) UniformVec4s(program uint32, name string, v []math.Vec4) {
	if len(v) == 0 {
		return
	}
	if loc := c.location(program, name); loc >= 0 {
		gl.Uniform4fv(loc, int32(len(v)), &v[0][0])
	}
}

// UniformInt sets an int or sampler uniform on the current program.
func (c *Context) UniformInt(program uint32, name string, v int32) {
	if loc := c.location(program, name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

// UniformFloat sets a float uniform on the current program.
func (c *Context) UniformFloat(program uint32, name string, v float32) {
	if loc := c.location(program, name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

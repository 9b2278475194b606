// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// BasicVertexShader transforms lit, optionally textured geometry.
//
//go:embed basic.vert
var BasicVertexShader string

// BasicFragmentShader shades with up to MaxLights lights and one shadow map.
//
//go:embed basic.frag
var BasicFragmentShader string

// DepthVertexShader is the position-only shader for depth passes.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed depth.frag
var DepthFragmentShader string

// BillboardVertexShader draws screen-facing quads.
//
//go:embed billboard.vert
var BillboardVertexShader string

// BillboardFragmentShader is unlit.
//
//go:embed billboard.frag
var BillboardFragmentShader string

// MaxLights must match MAX_LIGHTS in basic.frag.
const MaxLights = 8

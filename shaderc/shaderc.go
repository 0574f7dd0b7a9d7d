// Package shaderc implements the shader-compilation edge: a pure
// function from shader source text to compiled bytecode, with no
// device state involved. It is the one place PHOENIX reaches past
// the render-graph/cache/device-context layers into a real shader
// compiler, grounded in gogpu-gg/internal/native/shader_helper.go's
// CompileShaderToSPIRV, which wraps the same github.com/gogpu/naga
// compiler this package imports.
package shaderc

import (
	"github.com/gogpu/naga"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// Origin is the shader source language.
type Origin int

const (
	OriginGLSL Origin = iota
	OriginHLSL
	OriginWGSL
)

// Optimization selects the compiler's optimization level.
type Optimization int

const (
	OptNone Optimization = iota
	OptFast
	OptFull
	OptSize
)

// Source describes one shader-compilation request.
type Source struct {
	Data          string
	EntryPoint    string
	Stage         driver.Stage
	Origin        Origin
	Optimization  Optimization
	ReflectLayout ReflectLayout
}

// ReflectLayout is the uniform layout the caller plans to bind this
// shader against. naga.Compile has no reflection facility of its
// own (confirmed by gogpu-gg's wrapper, which only ever returns
// bytecode) so Compiled.Reflection is derived from the layout the
// caller already knows, not from decompiling the bytecode — see
// DESIGN.md's Open Question entry on shader reflection.
type ReflectLayout struct {
	Uniforms          []UniformRef
	ComputeLocalSizeX int
	ComputeLocalSizeY int
	ComputeLocalSizeZ int
}

// UniformRef names one uniform binding surfaced in reflection output.
type UniformRef struct {
	Set     int
	Binding int
	Name    string
}

// Reflection is the introspection data returned alongside bytecode
// when Source.ReflectLayout is non-empty.
type Reflection struct {
	Uniforms        []UniformRef
	ComputeLocalSize [3]int
}

// Compiled is the result of a successful Compile call.
type Compiled struct {
	Bytecode   []byte
	Size       int
	Reflection Reflection
}

// Compile translates source text to backend-ready bytecode. It is
// pure: no device handle is touched, and the result can be cached or
// reused across any number of resource.Shader instances.
func Compile(src Source) (Compiled, status.Status) {
	if src.Data == "" || src.EntryPoint == "" {
		return Compiled{}, status.ErrAPI
	}
	switch src.Stage {
	case driver.SVertex, driver.SFragment, driver.SCompute:
	default:
		return Compiled{}, status.ErrAPI
	}

	bytecode, err := naga.Compile(src.Data)
	if err != nil {
		return Compiled{}, status.ErrInternal
	}
	if len(bytecode) == 0 {
		return Compiled{}, status.ErrInternal
	}

	out := Compiled{Bytecode: bytecode, Size: len(bytecode)}
	if len(src.ReflectLayout.Uniforms) > 0 || src.ReflectLayout.ComputeLocalSizeX > 0 {
		out.Reflection = Reflection{
			Uniforms: append([]UniformRef(nil), src.ReflectLayout.Uniforms...),
			ComputeLocalSize: [3]int{
				src.ReflectLayout.ComputeLocalSizeX,
				src.ReflectLayout.ComputeLocalSizeY,
				src.ReflectLayout.ComputeLocalSizeZ,
			},
		}
	}
	return out, status.Success
}

package resource

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// Shader wraps compiled bytecode and the stage it runs at. The
// bytecode is kept alongside the driver handle (not just inside it)
// so the pipeline-description hasher can mix it by content rather
// than by the driver.ShaderCode pointer.
type Shader struct {
	code  driver.ShaderCode
	stage driver.Stage
	data  []byte
}

// NewShader creates a shader from compiled bytecode. Creation fails
// with ErrAPI if bytecode is nil or empty.
func NewShader(gpu driver.GPU, bytecode []byte, stage driver.Stage) (*Shader, status.Status) {
	if gpu == nil || len(bytecode) == 0 {
		return nil, status.ErrAPI
	}
	code, err := gpu.NewShaderCode(bytecode)
	if err != nil {
		return nil, status.ErrInternal
	}
	cp := make([]byte, len(bytecode))
	copy(cp, bytecode)
	return &Shader{code: code, stage: stage, data: cp}, status.Success
}

// Code returns the underlying driver.ShaderCode.
func (s *Shader) Code() driver.ShaderCode { return s.code }

// Stage returns the shader's stage.
func (s *Shader) Stage() driver.Stage { return s.stage }

// Bytecode returns the shader's compiled bytecode, used for
// content-based pipeline-description hashing.
func (s *Shader) Bytecode() []byte { return s.data }

// Destroy releases the shader's backend handle.
func (s *Shader) Destroy() {
	if s.code != nil {
		s.code.Destroy()
	}
}

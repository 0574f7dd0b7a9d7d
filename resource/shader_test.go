package resource_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

func TestNewShaderRejectsBadArgs(t *testing.T) {
	gpu := openGPU(t)
	if _, s := resource.NewShader(gpu, nil, driver.SVertex); s != status.ErrAPI {
		t.Fatalf("NewShader(nil bytecode):\nhave %v\nwant %v", s, status.ErrAPI)
	}
	if _, s := resource.NewShader(nil, []byte{1, 2, 3}, driver.SVertex); s != status.ErrAPI {
		t.Fatalf("NewShader(nil gpu):\nhave %v\nwant %v", s, status.ErrAPI)
	}
}

func TestShaderKeepsBytecodeCopy(t *testing.T) {
	gpu := openGPU(t)
	src := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	sh, s := resource.NewShader(gpu, src, driver.SFragment)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	if sh.Stage() != driver.SFragment {
		t.Fatalf("Stage:\nhave %v\nwant %v", sh.Stage(), driver.SFragment)
	}
	src[0] = 0x00
	if sh.Bytecode()[0] != 0xDE {
		t.Fatal("Bytecode: shader was aliasing the caller's slice")
	}
	sh.Destroy()
}

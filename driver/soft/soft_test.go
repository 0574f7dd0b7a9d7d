package soft_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/driver"
	_ "github.com/phoenixgfx/phoenix/driver/soft"
)

func openSoft(t *testing.T) driver.GPU {
	t.Helper()
	var drv driver.Driver
	for _, d := range driver.Drivers() {
		if d.Name() == "soft" {
			drv = d
			break
		}
	}
	if drv == nil {
		t.Fatal(`driver "soft" not registered`)
	}
	gpu, err := drv.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return gpu
}

func TestOpenReturnsSameGPU(t *testing.T) {
	var drv driver.Driver
	for _, d := range driver.Drivers() {
		if d.Name() == "soft" {
			drv = d
			break
		}
	}
	if drv == nil {
		t.Fatal(`driver "soft" not registered`)
	}
	g1, err := drv.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	g2, err := drv.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if g1 != g2 {
		t.Fatal("Open: expected the same GPU across calls until Close")
	}
	if g1.Driver() != drv {
		t.Fatal("GPU.Driver: does not match the opening Driver")
	}
	drv.Close()
}

func TestNewBufferRejectsNonPositiveSize(t *testing.T) {
	gpu := openSoft(t)
	if _, err := gpu.NewBuffer(0, true, driver.UShaderRead); err == nil {
		t.Fatal("NewBuffer: expected error for zero size")
	}
}

func TestNewImageRejectsNonPositiveSize(t *testing.T) {
	gpu := openSoft(t)
	if _, err := gpu.NewImage(driver.RGBA8un, driver.Dim3D{Width: 0, Height: 1}, 1, 1, 1, driver.UShaderSample); err == nil {
		t.Fatal("NewImage: expected error for zero width")
	}
}

func TestNewRenderPassRejectsNoSubpass(t *testing.T) {
	gpu := openSoft(t)
	if _, err := gpu.NewRenderPass(nil, nil); err == nil {
		t.Fatal("NewRenderPass: expected error for zero subpasses")
	}
}

func TestNewShaderCodeRejectsEmpty(t *testing.T) {
	gpu := openSoft(t)
	if _, err := gpu.NewShaderCode(nil); err == nil {
		t.Fatal("NewShaderCode: expected error for empty bytecode")
	}
}

func TestNewBufferAfterDestroyKeepsSize(t *testing.T) {
	gpu := openSoft(t)
	b1, err := gpu.NewBuffer(4096, true, driver.UShaderRead)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b1.Destroy()
	b2, err := gpu.NewBuffer(4096, true, driver.UShaderRead)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b3, err := gpu.NewBuffer(4096, true, driver.UShaderRead)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if len(b2.Bytes()) != 4096 || len(b3.Bytes()) != 4096 {
		t.Fatal("NewBuffer: unexpected buffer size after reuse")
	}
}

func TestCommitReportsSuccessOnChannel(t *testing.T) {
	gpu := openSoft(t)
	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: %v", err)
	}
	ch := make(chan error, 1)
	gpu.Commit([]driver.CmdBuffer{cb}, ch)
	if err := <-ch; err != nil {
		t.Fatalf("Commit: unexpected error %v", err)
	}
}

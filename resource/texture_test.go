package resource_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

func TestNewTextureRejectsNilGPU(t *testing.T) {
	if _, s := resource.NewTexture(nil, resource.TexParam{}); s != status.ErrAPI {
		t.Fatalf("NewTexture(nil gpu):\nhave %v\nwant %v", s, status.ErrAPI)
	}
}

func TestNewTextureScopeEntire(t *testing.T) {
	gpu := openGPU(t)
	tex, s := resource.NewTexture(gpu, resource.TexParam{
		Format:  driver.RGBA8un,
		Size:    driver.Dim3D{Width: 64, Height: 64, Depth: 1},
		Levels:  4,
		Usage:   driver.UShaderSample | driver.URenderTarget,
		ViewTyp: driver.IView2D,
		Scope:   resource.ScopeEntire,
	})
	if !s.OK() {
		t.Fatalf("NewTexture: unexpected status %v", s)
	}
	defer tex.Destroy()
	if len(tex.Views()) != 1 {
		t.Fatalf("Views: have %d, want 1", len(tex.Views()))
	}
	if v := tex.View(0); v == nil {
		t.Fatal("View(0): nil")
	}
	if v := tex.View(3); v != tex.View(0) {
		t.Fatal("View: ScopeEntire must return the same view regardless of mip")
	}
}

func TestNewTextureScopePerMip(t *testing.T) {
	gpu := openGPU(t)
	tex, s := resource.NewTexture(gpu, resource.TexParam{
		Format:  driver.RGBA8un,
		Size:    driver.Dim3D{Width: 64, Height: 64, Depth: 1},
		Levels:  3,
		Usage:   driver.UShaderSample,
		ViewTyp: driver.IView2D,
		Scope:   resource.ScopePerMip,
	})
	if !s.OK() {
		t.Fatalf("NewTexture: unexpected status %v", s)
	}
	defer tex.Destroy()
	if len(tex.Views()) != 3 {
		t.Fatalf("Views: have %d, want 3", len(tex.Views()))
	}
	if tex.View(0) == tex.View(1) {
		t.Fatal("View: ScopePerMip returned the same view for different mips")
	}
	if v := tex.View(99); v != nil {
		t.Fatal("View(out of range): want nil")
	}
}

func TestTextureIsSampleReady(t *testing.T) {
	gpu := openGPU(t)
	tex, s := resource.NewTexture(gpu, resource.TexParam{
		Format:  driver.RGBA8un,
		Size:    driver.Dim3D{Width: 8, Height: 8, Depth: 1},
		Usage:   driver.UShaderSample,
		ViewTyp: driver.IView2D,
	})
	if !s.OK() {
		t.Fatalf("NewTexture: unexpected status %v", s)
	}
	defer tex.Destroy()

	if tex.IsSampleReady() {
		t.Fatal("IsSampleReady: true for a freshly created (undefined-layout) texture")
	}
	tex.SetLayout(driver.LShaderRead)
	if !tex.IsSampleReady() {
		t.Fatal("IsSampleReady: false after transitioning to LShaderRead")
	}
	tex.SetLayout(driver.LCommon)
	if !tex.IsSampleReady() {
		t.Fatal("IsSampleReady: false after transitioning to LCommon")
	}
}

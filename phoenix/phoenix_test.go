package phoenix_test

import (
	"testing"

	_ "github.com/phoenixgfx/phoenix/driver/soft"
	"github.com/phoenixgfx/phoenix/phoenix"
	"github.com/phoenixgfx/phoenix/status"
)

func fullSettings() phoenix.Settings {
	return phoenix.Settings{
		BackendAPI:           phoenix.BackendVulkan,
		SwapChainOutdatedCB:  func() {},
		WindowResizedCB:      func(int, int) {},
		WindowFocusChangedCB: func(bool) {},
		WindowMinimizedCB:    func(bool) {},
		WindowMaximizedCB:    func(bool) {},
	}
}

func TestInitRequiresMandatoryCallbacks(t *testing.T) {
	s := fullSettings()
	s.WindowResizedCB = nil
	if _, st := phoenix.Init(s); st != status.ErrAPI {
		t.Fatalf("Init without WindowResizedCB: status = %v, want ErrAPI", st)
	}
}

func TestInitSucceedsWithSoftBackend(t *testing.T) {
	ctx, s := phoenix.Init(fullSettings())
	if !s.OK() {
		t.Fatalf("Init: unexpected status %v", s)
	}
	if ctx.GPU() == nil {
		t.Fatal("Init: nil GPU")
	}
	defer ctx.Shutdown()
}

type fakeWindow struct{ w, h int }

func (f *fakeWindow) Map() error            { return nil }
func (f *fakeWindow) Unmap() error          { return nil }
func (f *fakeWindow) Resize(w, h int) error { f.w, f.h = w, h; return nil }
func (f *fakeWindow) SetTitle(string) error { return nil }
func (f *fakeWindow) Close()                {}
func (f *fakeWindow) Width() int            { return f.w }
func (f *fakeWindow) Height() int           { return f.h }
func (f *fakeWindow) Title() string         { return "" }

func TestNewFrameManagerWithSoftBackend(t *testing.T) {
	ctx, s := phoenix.Init(fullSettings())
	if !s.OK() {
		t.Fatalf("Init: unexpected status %v", s)
	}
	defer ctx.Shutdown()

	m, s := ctx.NewFrameManager(&fakeWindow{w: 64, h: 64}, 2, 2)
	if !s.OK() {
		t.Fatalf("NewFrameManager: unexpected status %v", s)
	}
	defer m.Destroy()
}

func TestOnSwapChainOutdatedInvokesCallback(t *testing.T) {
	called := false
	s := fullSettings()
	s.SwapChainOutdatedCB = func() { called = true }
	ctx, st := phoenix.Init(s)
	if !st.OK() {
		t.Fatalf("Init: unexpected status %v", st)
	}
	defer ctx.Shutdown()

	ctx.OnSwapChainOutdated()
	if !called {
		t.Fatal("OnSwapChainOutdated: callback not invoked")
	}
}

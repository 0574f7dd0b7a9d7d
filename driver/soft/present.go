package soft

import (
	"errors"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/wsi"
)

// NewSwapchain implements driver.Presenter. The reference backend has
// no real compositor: it simply rotates through a fixed ring of
// off-screen color images sized to the window's current extent.
func (g *GPU) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	if win == nil {
		return nil, driver.ErrWindow
	}
	if imageCount <= 0 {
		return nil, errors.New("soft: swapchain image count must be positive")
	}
	sc := &Swapchain{gpu: g, win: win, format: driver.BGRA8un}
	if err := sc.build(imageCount); err != nil {
		return nil, err
	}
	return sc, nil
}

// Swapchain implements driver.Swapchain over a ring of soft Images.
type Swapchain struct {
	gpu    *GPU
	win    wsi.Window
	format driver.PixelFmt

	images []*Image
	views  []driver.ImageView
	next   int
	// acquired tracks which indices are currently held by the
	// client between Next and Present, matching the teacher
	// interface's backbuffer-exhaustion behavior.
	acquired map[int]bool
}

func (s *Swapchain) build(n int) error {
	w, h := s.win.Width(), s.win.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	s.images = make([]*Image, n)
	s.views = make([]driver.ImageView, n)
	for i := range s.images {
		img := &Image{
			format:  s.format,
			size:    driver.Dim3D{Width: w, Height: h, Depth: 1},
			layers:  1,
			levels:  1,
			samples: 1,
			usage:   driver.URenderTarget | driver.UShaderSample,
		}
		v, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return err
		}
		s.images[i] = img
		s.views[i] = v
	}
	s.acquired = make(map[int]bool, n)
	s.next = 0
	return nil
}

func (s *Swapchain) Destroy() {}

func (s *Swapchain) Views() []driver.ImageView { return s.views }

func (s *Swapchain) Next(cb driver.CmdBuffer) (int, error) {
	for tries := 0; tries < len(s.images); tries++ {
		idx := s.next
		s.next = (s.next + 1) % len(s.images)
		if !s.acquired[idx] {
			s.acquired[idx] = true
			return idx, nil
		}
	}
	return 0, driver.ErrNoBackbuffer
}

func (s *Swapchain) Present(index int, cb driver.CmdBuffer) error {
	if index < 0 || index >= len(s.images) {
		return driver.ErrSwapchain
	}
	delete(s.acquired, index)
	return nil
}

func (s *Swapchain) Recreate() error {
	n := len(s.images)
	clear(s.acquired)
	return s.build(n)
}

func (s *Swapchain) Format() driver.PixelFmt { return s.format }

// Package phoenix is the library's top-level entry point: it
// replaces the teacher's singleton GlobalSettings/object-factory
// surface with an explicit LibraryContext value, per spec.md §9's
// design note on cyclic references and global mutable state. Init
// selects a backend driver, opens its GPU, and returns a
// LibraryContext that parameterizes every subsequent call — the
// client never touches package-level state.
package phoenix

import (
	"log"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/frame"
	"github.com/phoenixgfx/phoenix/status"
	"github.com/phoenixgfx/phoenix/wsi"
)

// BackendAPI selects the backend implementation. Vulkan-class is the
// only variant spec §6 requires; PHOENIX's in-tree Vulkan-class
// backend is driver/soft (registered as "soft"), a pure-Go
// reference implementation exercised here in place of the cgo
// driver/vk backend that real platform linkage would select.
type BackendAPI int

const (
	BackendVulkan BackendAPI = iota
)

// LogSeverity classifies a message passed to Settings.LogCB.
type LogSeverity int

const (
	LogDebug LogSeverity = iota
	LogInfo
	LogWarning
	LogError
)

// Settings configures library initialization. The five *_cb fields
// marked mandatory in §6 are checked by Init; the rest are optional
// and may be left nil.
type Settings struct {
	BackendAPI BackendAPI

	SwapChainOutdatedCB func()
	WindowResizedCB     func(width, height int)
	WindowFocusChangedCB func(focused bool)
	WindowMinimizedCB   func(minimized bool)
	WindowMaximizedCB   func(maximized bool)

	KeyDownCB   func(key wsi.Key, mods wsi.Modifier)
	KeyUpCB     func(key wsi.Key, mods wsi.Modifier)
	KeyRepeatCB func(key wsi.Key, mods wsi.Modifier)

	MouseMovedCB     func(x, y float64)
	MouseButtonDownCB func(btn wsi.Button)
	MouseButtonUpCB   func(btn wsi.Button)

	LogCB func(msg string, severity LogSeverity)

	EnableValidation bool
}

// LibraryContext is the value every top-level PHOENIX operation is
// parameterized by, returned from Init. It owns the opened GPU and
// holds the callbacks from Settings; nothing in the library reaches
// for package-level state once a context exists.
type LibraryContext struct {
	gpu driver.GPU
	drv driver.Driver

	settings Settings
}

func backendDriverName(api BackendAPI) string {
	switch api {
	case BackendVulkan:
		return "soft"
	default:
		return ""
	}
}

// Init selects the driver named by settings.BackendAPI, opens its
// GPU, and returns a LibraryContext bound to it. It fails with ErrAPI
// if any mandatory callback is nil or the requested backend has no
// registered driver, and with ErrInternal if opening the driver
// fails.
func Init(settings Settings) (*LibraryContext, status.Status) {
	if settings.SwapChainOutdatedCB == nil || settings.WindowResizedCB == nil ||
		settings.WindowFocusChangedCB == nil || settings.WindowMinimizedCB == nil ||
		settings.WindowMaximizedCB == nil {
		return nil, status.ErrAPI
	}
	name := backendDriverName(settings.BackendAPI)
	if name == "" {
		return nil, status.ErrAPI
	}
	var drv driver.Driver
	for _, d := range driver.Drivers() {
		if d.Name() == name {
			drv = d
			break
		}
	}
	if drv == nil {
		return nil, status.ErrAPI
	}
	gpu, err := drv.Open()
	if err != nil {
		return nil, status.ErrInternal
	}
	ctx := &LibraryContext{gpu: gpu, drv: drv, settings: settings}
	ctx.log("phoenix: library initialized", LogInfo)
	return ctx, status.Success
}

// GPU returns the opened GPU handle every resource/device-context
// constructor in the library needs.
func (c *LibraryContext) GPU() driver.GPU { return c.gpu }

// Settings returns a copy of the settings Init was called with.
func (c *LibraryContext) Settings() Settings { return c.settings }

// log routes a message through Settings.LogCB, if one was installed.
// Every internal failure path that spec §7 says must be logged with
// severity error calls this. A client that never installs LogCB gets
// error-severity messages on the standard logger and nothing for the
// other severities.
func (c *LibraryContext) log(msg string, sev LogSeverity) {
	if c.settings.LogCB != nil {
		c.settings.LogCB(msg, sev)
		return
	}
	if sev == LogError {
		log.Printf("[phoenix] %s", msg)
	}
}

// LogError reports a library-internal failure through the installed
// log callback at severity error, per §7's user-visible behavior
// rule. Called by higher-level wrappers (frame.Manager callers, graph
// bake failures) that hold a LibraryContext.
func (c *LibraryContext) LogError(msg string) { c.log(msg, LogError) }

// OnSwapChainOutdated invokes the installed callback. frame.Manager
// is constructed with this method as its OutdatedFunc so the
// dedicated out-of-date path (not an error, per §7) reaches the
// client.
func (c *LibraryContext) OnSwapChainOutdated() {
	if c.settings.SwapChainOutdatedCB != nil {
		c.settings.SwapChainOutdatedCB()
	}
}

// OnWindowResized invokes the installed callback with the new extent.
func (c *LibraryContext) OnWindowResized(width, height int) {
	if c.settings.WindowResizedCB != nil {
		c.settings.WindowResizedCB(width, height)
	}
}

// NewFrameManager builds a frame.Manager bound to this context's GPU,
// wiring frame.Manager's out-of-date notifications to the settings'
// SwapChainOutdatedCB automatically so callers never have to thread
// that callback through by hand.
func (c *LibraryContext) NewFrameManager(win wsi.Window, imageCount, framesInFlight int) (*frame.Manager, status.Status) {
	return frame.NewManager(c.gpu, win, imageCount, framesInFlight, c.OnSwapChainOutdated)
}

// Shutdown closes the backing driver. The LibraryContext must not be
// used afterward.
func (c *LibraryContext) Shutdown() {
	if c.drv != nil {
		c.drv.Close()
	}
}

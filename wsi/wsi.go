// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi defines the window/input vocabulary PHOENIX treats as
// an external collaborator: a Window surface for a GPU to draw into,
// and the closed enum sets (Key, Button, Modifier) used by the
// input callbacks registered on a phoenix.LibraryContext.
//
// WSI does not dispatch events on its own. Event delivery is a
// platform concern outside this package; a real Window
// implementation calls the handler functions stored on the
// LibraryContext that created it whenever the underlying platform
// reports input or surface changes.
package wsi

import (
	"errors"
)

// Window is the interface that defines a drawable window.
// The purpose of a window is to provide a surface into
// which a GPU can draw.
type Window interface {
	// Map makes the window visible.
	Map() error

	// Unmap hides the window.
	Unmap() error

	// Resize resizes the window.
	Resize(width, height int) error

	// SetTitle sets the window's title.
	SetTitle(title string) error

	// Close closes the window.
	Close()

	// Width returns the window's width.
	Width() int

	// Height returns the window's height.
	Height() int

	// Title returns the window's title.
	Title() string
}

// The maximum number of windows that can exist at any given time.
const MaxWindows = 16

// ErrTooManyWindows is returned by NewWindow once MaxWindows windows
// are simultaneously registered.
var ErrTooManyWindows = errors.New("wsi: too many windows")

// ErrNoImpl is returned by NewWindow when no Window implementation
// has been installed via SetWindowConstructor.
var ErrNoImpl = errors.New("wsi: no window implementation installed")

// Constructor creates a platform Window. Real platform backends
// (outside PHOENIX's scope) call SetWindowConstructor during their
// own initialization; the reference build has none installed, so
// NewWindow always fails with ErrNoImpl.
type Constructor func(width, height int, title string) (Window, error)

// SetWindowConstructor installs the function NewWindow delegates to.
// It is meant to be called once, by whichever platform package the
// client links in — PHOENIX itself never calls it.
func SetWindowConstructor(c Constructor) { newWindow = c }

var newWindow Constructor

// NewWindow creates a new window using the installed Constructor.
func NewWindow(width, height int, title string) (Window, error) {
	if newWindow == nil {
		return nil, ErrNoImpl
	}
	if windowCount >= MaxWindows {
		return nil, ErrTooManyWindows
	}
	win, err := newWindow(width, height, title)
	if err != nil {
		return nil, err
	}
	for i := range createdWindows {
		if createdWindows[i] == nil {
			createdWindows[i] = win
			windowCount++
			break
		}
	}
	return win, nil
}

// Windows returns all created windows.
// The returned value becomes out of date after calls to
// NewWindow and Window.Close.
func Windows() []Window {
	if windowCount == 0 {
		return nil
	}
	wins := make([]Window, 0, windowCount)
	for i := range createdWindows {
		if createdWindows[i] != nil {
			wins = append(wins, createdWindows[i])
		}
	}
	return wins
}

// CloseWindow removes win from the window registry and decrements
// the window count. Window implementations must call it from Close.
// win must be comparable.
func CloseWindow(win Window) {
	for i := range createdWindows {
		if createdWindows[i] == win {
			createdWindows[i] = nil
			windowCount--
			return
		}
	}
}

var (
	windowCount    int
	createdWindows [MaxWindows]Window
)

// Key is the type of keyboard keys.
type Key int

// Keyboard keys.
const (
	KeyUnknown Key = iota
	KeyGrave
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyMinus
	KeyEqual
	KeyBackspace
	KeyTab
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyLBracket
	KeyRBracket
	KeyBackslash
	KeyCapsLock
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySemicolon
	KeyApostrophe
	KeyReturn
	KeyLShift
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyComma
	KeyDot
	KeySlash
	KeyRShift
	KeyLCtrl
	KeyLAlt
	KeyLMeta
	KeySpace
	KeyRMeta
	KeyRAlt
	KeyRCtrl
	KeyEsc
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Modifier is the type of modifier flags.
type Modifier int

// Modifier flags.
const (
	ModCapsLock Modifier = 1 << iota
	ModShift
	ModCtrl
	ModAlt
)

// Button is the type of pointer buttons.
type Button int

// Pointer buttons.
const (
	BtnUnknown Button = iota
	BtnLeft
	BtnRight
	BtnMiddle
	BtnSide
	BtnForward
	BtnBackward
)

package action

import "log"

// Window is the narrow capability MoveWindow needs from a focused
// window: its current frame and the ability to set a new one. A
// UIElementPort implementation that supports window geometry (darwin's
// AX-backed port) satisfies this; one that doesn't (a headless/linux
// stub) simply never returns a Window, and MoveWindow logs and no-ops.
type Window interface {
	Frame() (x, y, w, h int, ok bool)
	SetFrame(x, y, w, h int) error
}

// WindowFinder resolves the currently focused window as a Window, if
// the host exposes window geometry at all.
type WindowFinder interface {
	FocusedWindow() (Window, bool)
}

// MoveWindow repositions/resizes the focused window. X/Y/W/H are
// deltas applied to the window's current frame (e.g. X=-10 nudges it
// left); Absolute, when true, treats them as the new frame outright.
type MoveWindow struct {
	Finder     WindowFinder
	Absolute   bool
	X, Y, W, H int
	Logger     *log.Logger
}

// Invoke satisfies keytable.Invokable.
func (a MoveWindow) Invoke() {
	win, ok := a.Finder.FocusedWindow()
	if !ok {
		if a.Logger != nil {
			a.Logger.Printf("move window: no focused window")
		}
		return
	}

	if a.Absolute {
		if err := win.SetFrame(a.X, a.Y, a.W, a.H); err != nil && a.Logger != nil {
			a.Logger.Printf("move window: %v", err)
		}
		return
	}

	x, y, w, h, ok := win.Frame()
	if !ok {
		if a.Logger != nil {
			a.Logger.Printf("move window: could not read current frame")
		}
		return
	}
	if err := win.SetFrame(x+a.X, y+a.Y, w+a.W, h+a.H); err != nil && a.Logger != nil {
		a.Logger.Printf("move window: %v", err)
	}
}

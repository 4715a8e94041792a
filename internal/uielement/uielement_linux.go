//go:build linux

package uielement

import "github.com/keymapd/keyhac/internal/ports"

// Port is the Linux ports.UIElementPort. Linux has no desktop-wide
// accessibility tree equivalent to macOS's AX API available to an
// unprivileged process without a toolkit-specific bridge (AT-SPI2 is
// GNOME/GTK-only and requires a D-Bus session per toolkit), so this
// always reports "nothing focused" and the focus path is empty: a
// keytable's FocusCondition predicate never matches on this platform,
// and a path pattern matches only if it matches the empty path (as "*"
// does).
type Port struct{}

// New returns the Linux UIElementPort stub.
func New() *Port { return &Port{} }

// FocusedElement always reports no focused element.
func (p *Port) FocusedElement() (ports.UIElement, bool) { return nil, false }

// FocusedApplication always reports no focused application.
func (p *Port) FocusedApplication() (ports.UIElement, bool) { return nil, false }

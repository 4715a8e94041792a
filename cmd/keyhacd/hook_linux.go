//go:build linux

package main

import (
	"log"
	"os"
	"syscall"

	"github.com/gordonklaus/portaudio"

	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/config"
	"github.com/keymapd/keyhac/internal/hook"
	"github.com/keymapd/keyhac/internal/ports"
	"github.com/keymapd/keyhac/internal/uielement"
)

// newHook builds the platform HookPort: an evdev read loop over
// cfg.Hook.Device (auto-detected when empty) plus a /dev/uinput virtual
// keyboard for injection.
func newHook(cfg *config.Config, logger *log.Logger) (ports.HookPort, error) {
	return hook.NewLinux(cfg.Hook.Device, logger)
}

// newUIElement returns the Linux UIElementPort stub: there is no
// accessibility tree equivalent to macOS's AX API on this platform, so
// every focus-conditioned keytable behaves as if focus never changes.
func newUIElement() ports.UIElementPort {
	return uielement.New()
}

// pasteText delegates to clipboard.PasteText's Linux signature, which
// picks xdotool (X11) or wl-copy/ydotool (Wayland) based on the
// session type; cfg.Dictate.Paste.Mode has no effect on this platform
// since there is no direct-typing path without an X11/Wayland input
// helper distinct from xdotool/ydotool's own keystroke simulation.
func pasteText(cfg *config.Config, text string) error {
	return clipboard.PasteText(text, cfg.Dictate.Paste.DelayMs)
}

// initPortAudio suppresses ALSA/JACK noise during PortAudio
// initialization by temporarily redirecting stderr to /dev/null.
func initPortAudio() error {
	stderrFd := int(os.Stderr.Fd())
	savedStderr, err := syscall.Dup(stderrFd)
	if err != nil {
		return portaudio.Initialize()
	}
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		syscall.Close(savedStderr)
		return portaudio.Initialize()
	}
	syscall.Dup2(int(devNull.Fd()), stderrFd)
	devNull.Close()

	initErr := portaudio.Initialize()

	syscall.Dup2(savedStderr, stderrFd)
	syscall.Close(savedStderr)

	return initErr
}

func closePortAudio() {
	portaudio.Terminate()
}

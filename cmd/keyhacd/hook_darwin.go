//go:build darwin

package main

import (
	"log"

	"github.com/gordonklaus/portaudio"

	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/config"
	"github.com/keymapd/keyhac/internal/hook"
	"github.com/keymapd/keyhac/internal/ports"
	"github.com/keymapd/keyhac/internal/uielement"
)

// newHook builds the platform HookPort. cfg.Hook.Device has no meaning
// on darwin (the CGEventTap listens system-wide, not on a device path)
// and is ignored here.
func newHook(cfg *config.Config, logger *log.Logger) (ports.HookPort, error) {
	return hook.NewDarwin(logger)
}

func newUIElement() ports.UIElementPort {
	return uielement.New()
}

// pasteText delegates to clipboard.PasteText's darwin signature, which
// takes an explicit mode ("type" drives osascript keystroke injection
// directly; "clipboard" is the pbcopy + Cmd+V path).
func pasteText(cfg *config.Config, text string) error {
	return clipboard.PasteText(text, cfg.Dictate.Paste.DelayMs, cfg.Dictate.Paste.Mode)
}

// initPortAudio initializes PortAudio. CoreAudio does not produce the
// ALSA/JACK startup noise portaudio.Initialize prints on Linux, so no
// stderr suppression is needed here.
func initPortAudio() error {
	return portaudio.Initialize()
}

func closePortAudio() {
	portaudio.Terminate()
}

//go:build linux

// Package hook implements ports.HookPort for each supported platform:
// evdev + uinput on Linux, a CGEventTap on Darwin. The remapper's hook
// needs to see (and veto) the whole keyboard, so both halves capture
// every key and can synthesize any key back.
package hook

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
)

// Linux is a ports.HookPort backed by an evdev device read loop and a
// /dev/uinput virtual keyboard for injection.
type Linux struct {
	dev    *evdev.InputDevice
	vkb    *virtualKeyboard
	layout keycode.Layout
	logger *log.Logger

	mu       sync.Mutex
	injectMu sync.Mutex
	cb       func(ports.KeyEvent) ports.Verdict
	closed   bool
}

// NewLinux opens devicePath (or auto-detects a keyboard), grabs it
// exclusively (EVIOCGRAB via evdev's Grab) so the kernel stops
// delivering its events to the rest of the input stack, and creates a
// virtual keyboard that the read loop uses to re-inject whatever the
// engine marks pass-through.
// Without the grab, a "handled" (remapped or swallowed) key would still
// reach every other listener in its original form alongside the
// synthesized replacement, double-delivering the keystroke.
func NewLinux(devicePath string, logger *log.Logger) (*Linux, error) {
	dev, err := findKeyboard(devicePath)
	if err != nil {
		return nil, err
	}
	if err := dev.Grab(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("grab device exclusively: %w", err)
	}
	vkb, err := newVirtualKeyboard()
	if err != nil {
		_ = dev.Ungrab()
		dev.Close()
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	return &Linux{dev: dev, vkb: vkb, layout: keycode.LayoutANSI, logger: logger}, nil
}

// findKeyboard opens a specific device path, or auto-detects a keyboard
// by scanning /dev/input/event* for the first device that reports
// letter-key capability without relative axes (mice have EV_REL).
func findKeyboard(devicePath string) (*evdev.InputDevice, error) {
	if devicePath != "" {
		dev, err := evdev.Open(devicePath)
		if err != nil {
			return nil, fmt.Errorf("open device %s: %w", devicePath, err)
		}
		return dev, nil
	}

	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("glob /dev/input/event*: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(matches[i], "/dev/input/event"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(matches[j], "/dev/input/event"))
		return ni < nj
	})

	for _, path := range matches {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		if isKeyboard(dev) {
			return dev, nil
		}
		_ = dev.Close()
	}
	return nil, fmt.Errorf("no keyboard device found in /dev/input/event*")
}

func isKeyboard(dev *evdev.InputDevice) bool {
	for _, evType := range dev.CapableTypes() {
		if evType == evdev.EV_REL {
			return false
		}
	}
	keys := dev.CapableEvents(evdev.EV_KEY)
	hasA, hasZ := false, false
	for _, code := range keys {
		if code == 30 {
			hasA = true
		}
		if code == 44 {
			hasZ = true
		}
	}
	return hasA && hasZ
}

// SetCallback registers fn as the handler for every key event read off
// the device and starts the read loop in a background goroutine. The
// channel name is accepted for ports.HookPort symmetry with darwin but
// unused: this port has exactly one event source.
func (h *Linux) SetCallback(channel string, fn func(ports.KeyEvent) ports.Verdict) {
	h.mu.Lock()
	h.cb = fn
	h.mu.Unlock()
	go h.readLoop()
}

func (h *Linux) readLoop() {
	for {
		ev, err := h.dev.ReadOne()
		if err != nil {
			h.mu.Lock()
			closed := h.closed
			h.mu.Unlock()
			if closed {
				return
			}
			if h.logger != nil {
				h.logger.Printf("hook: read event: %v", err)
			}
			return
		}
		if ev.Type != evdev.EV_KEY || ev.Value == 2 {
			continue // ignore non-key events and auto-repeat
		}
		vk, ok := evdevToVK[ev.Code]
		if !ok {
			continue
		}

		kind := ports.KeyUp
		if ev.Value == 1 {
			kind = ports.KeyDown
		}

		h.mu.Lock()
		cb := h.cb
		h.mu.Unlock()
		if cb == nil {
			continue
		}
		if cb(ports.KeyEvent{Kind: kind, VK: vk}) == ports.Handled {
			continue
		}
		// Pass-through: the device is grabbed exclusively, so the
		// original event never reached anything else. Re-emit it via
		// the virtual keyboard so the host still sees it.
		if err := h.SendKeyboardEvent(kind == ports.KeyDown, vk, false); err != nil && h.logger != nil {
			h.logger.Printf("hook: pass-through re-inject: %v", err)
		}
	}
}

// SendKeyboardEvent injects a key event via the virtual keyboard. replay
// is accepted for ports.HookPort symmetry; uinput injection looks the
// same whether it originates from live dispatch or buffer playback.
func (h *Linux) SendKeyboardEvent(down bool, vk keycode.Code, replay bool) error {
	ev, ok := vkToEvdev[vk]
	if !ok {
		return fmt.Errorf("no evdev mapping for key code %v", vk)
	}
	h.injectMu.Lock()
	defer h.injectMu.Unlock()
	return h.vkb.SendKey(ev, down)
}

// GetKeyboardLayout always reports ANSI: evdev scancodes are
// layout-independent (the kernel keymap, not this hook, resolves
// locale-specific punctuation), so there is no JIS/ISO distinction to
// surface here.
func (h *Linux) GetKeyboardLayout() keycode.Layout {
	return h.layout
}

// AcquireLock/ReleaseLock let a caller pause key-event delivery (e.g.
// while the engine is mid-reconfiguration) without tearing down the
// read loop. Distinct from injectMu, which only serializes concurrent
// SendKeyboardEvent callers against each other.
func (h *Linux) AcquireLock() { h.mu.Lock() }
func (h *Linux) ReleaseLock() { h.mu.Unlock() }

// Close stops the read loop and tears down the virtual keyboard.
func (h *Linux) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	_ = h.dev.Ungrab()
	_ = h.dev.Close()
	return h.vkb.Close()
}

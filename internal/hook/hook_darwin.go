//go:build darwin

package hook

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <stdint.h>

extern int  startEventTap(int listenerID);
extern void stopEventTap(int listenerID);
extern void postKeyEvent(int64_t keycode, int down);
*/
import "C"

import (
	"log"
	"runtime"
	"sync"

	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
)

// Darwin is a ports.HookPort backed by a CGEventTap over every key
// (generalized from internal/hotkey/hotkey_darwin.go's single-hotkey
// CGEventTap) and CGEventPost for injection. keycode.Code values are
// already macOS virtual key codes (see internal/keycode's doc comment),
// so no translation table is needed on this platform.
type Darwin struct {
	id     int
	logger *log.Logger

	mu sync.Mutex
	cb func(ports.KeyEvent) ports.Verdict
}

var (
	darwinMu     sync.Mutex
	darwinByID   = map[int]*Darwin{}
	nextDarwinID int
)

// NewDarwin allocates a listener ID and is ready for SetCallback to
// start the event tap. The tap itself runs on an OS-locked goroutine
// started by SetCallback, since the CFRunLoop it services must stay on
// one thread.
func NewDarwin(logger *log.Logger) (*Darwin, error) {
	darwinMu.Lock()
	id := nextDarwinID
	nextDarwinID++
	d := &Darwin{id: id, logger: logger}
	darwinByID[id] = d
	darwinMu.Unlock()
	return d, nil
}

func (h *Darwin) SetCallback(channel string, fn func(ports.KeyEvent) ports.Verdict) {
	h.mu.Lock()
	h.cb = fn
	h.mu.Unlock()

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		ret := C.startEventTap(C.int(h.id))
		if ret != 0 && h.logger != nil {
			h.logger.Printf("hook: failed to create event tap (grant Input Monitoring permission in System Settings)")
		}
	}()
}

//export hookEventCallback
func hookEventCallback(listenerID C.int, eventType C.int, code C.int64_t, down C.int) C.int {
	darwinMu.Lock()
	d, ok := darwinByID[int(listenerID)]
	darwinMu.Unlock()
	if !ok {
		return 0
	}

	d.mu.Lock()
	cb := d.cb
	d.mu.Unlock()
	if cb == nil {
		return 0
	}

	kind := ports.KeyUp
	if down != 0 {
		kind = ports.KeyDown
	}
	verdict := cb(ports.KeyEvent{Kind: kind, VK: keycode.Code(code)})
	if verdict == ports.Handled {
		return 1 // suppress: tell the tap not to forward this event
	}
	return 0
}

// SendKeyboardEvent posts a synthetic key event via CGEventPost. replay
// is accepted for ports.HookPort symmetry; posting looks the same for
// replayed and live-dispatched events.
func (h *Darwin) SendKeyboardEvent(down bool, vk keycode.Code, replay bool) error {
	v := C.int(0)
	if down {
		v = 1
	}
	C.postKeyEvent(C.int64_t(vk), v)
	return nil
}

// GetKeyboardLayout is not yet wired to the input-source APIs
// (TISGetInputSourceProperty); ANSI is the common case and the layout
// only affects a handful of punctuation keys in internal/keyexpr's
// string tables.
func (h *Darwin) GetKeyboardLayout() keycode.Layout {
	return keycode.LayoutANSI
}

// AcquireLock/ReleaseLock let a caller pause key-event delivery: the
// CGEventTap callback reads its handler under this lock, since on
// darwin the tap callback itself is the delivery path being paused.
// SendKeyboardEvent's CGEventPost injection does not take it.
func (h *Darwin) AcquireLock() { h.mu.Lock() }
func (h *Darwin) ReleaseLock() { h.mu.Unlock() }

// Close stops the event tap.
func (h *Darwin) Close() error {
	C.stopEventTap(C.int(h.id))
	darwinMu.Lock()
	delete(darwinByID, h.id)
	darwinMu.Unlock()
	return nil
}

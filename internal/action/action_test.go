package action

import (
	"sync"
	"testing"
	"time"

	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
	"github.com/keymapd/keyhac/internal/runner"
)

type fakeEngineLock struct {
	startingCalls, finishedCalls int
}

func (f *fakeEngineLock) RunStarting(fn func()) { f.startingCalls++; fn() }
func (f *fakeEngineLock) RunFinished(fn func()) { f.finishedCalls++; fn() }

type fakeThreaded struct {
	startingCalled bool
	done           chan struct{}
}

func (f *fakeThreaded) Starting() { f.startingCalled = true }
func (f *fakeThreaded) Run() (any, error) { return "ok", nil }
func (f *fakeThreaded) Finished(result any, err error) { close(f.done) }

// Starting and Finished are the locked phases (through RunStarting and
// RunFinished); Run executes on the pool without the lock. The test
// checks that each locked phase went through its wrapper exactly once.
func TestThreadedActionRunsLockedPhasesThroughWrappers(t *testing.T) {
	lock := &fakeEngineLock{}
	pool := runner.New(2, lock.RunFinished, nil)
	inner := &fakeThreaded{done: make(chan struct{})}

	act := NewThreadedAction(lock, pool, inner, nil)
	act.Invoke()

	if !inner.startingCalled {
		t.Fatal("Starting() should run synchronously inside Invoke")
	}
	if lock.startingCalls != 1 {
		t.Errorf("RunStarting calls = %d, want 1", lock.startingCalls)
	}

	select {
	case <-inner.done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Finished()")
	}
	if lock.finishedCalls != 1 {
		t.Errorf("RunFinished calls = %d, want 1", lock.finishedCalls)
	}
}

type fakeWindow struct {
	x, y, w, h int
}

func (w *fakeWindow) Frame() (int, int, int, int, bool) { return w.x, w.y, w.w, w.h, true }
func (w *fakeWindow) SetFrame(x, y, w2, h int) error {
	w.x, w.y, w.w, w.h = x, y, w2, h
	return nil
}

type fakeFinder struct{ win *fakeWindow }

func (f fakeFinder) FocusedWindow() (Window, bool) { return f.win, true }

func TestMoveWindowRelativeAppliesDelta(t *testing.T) {
	win := &fakeWindow{x: 100, y: 100, w: 800, h: 600}
	mv := MoveWindow{Finder: fakeFinder{win: win}, X: -10, Y: 5}
	mv.Invoke()
	if win.x != 90 || win.y != 105 {
		t.Errorf("window = %+v, want x=90 y=105", win)
	}
}

func TestMoveWindowAbsoluteSetsFrameOutright(t *testing.T) {
	win := &fakeWindow{x: 100, y: 100, w: 800, h: 600}
	mv := MoveWindow{Finder: fakeFinder{win: win}, Absolute: true, X: 0, Y: 0, W: 1920, H: 1080}
	mv.Invoke()
	if win.x != 0 || win.y != 0 || win.w != 1920 || win.h != 1080 {
		t.Errorf("window = %+v, want full-screen frame", win)
	}
}

type fakeChooser struct {
	opened     bool
	onSelected func(index int, mod keycode.ModifierMask)
}

func (c *fakeChooser) Open(name string, items []ports.ChooserItem, onSelected func(int, keycode.ModifierMask), onCanceled func()) {
	c.opened = true
	c.onSelected = onSelected
}

type fakeClipboardPort struct {
	mu      sync.Mutex
	current string
}

func (p *fakeClipboardPort) SetCurrent(c ports.Clip) error {
	s, _ := c.String()
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
	return nil
}
func (p *fakeClipboardPort) NewClip(s string) ports.Clip { return stubClip{s} }

type stubClip struct{ s string }

func (c stubClip) String() (string, error) { return c.s, nil }
func (c stubClip) SetString(s string) error { return nil }
func (c stubClip) Destroy() {}

func TestShowClipboardHistorySelectionSetsClipboardAndPastes(t *testing.T) {
	h := clipboard.NewHistory(0, 0, 0, 0)
	h.Capture("first")
	h.Capture("second")

	chooser := &fakeChooser{}
	cp := &fakeClipboardPort{}
	var pasted string
	act := ShowClipboardHistory{
		History:   h,
		Chooser:   chooser,
		Clipboard: cp,
		Paste:     func(text string) { pasted = text },
	}
	act.Invoke()
	if !chooser.opened {
		t.Fatal("expected chooser to open")
	}
	chooser.onSelected(0, 0) // newest-first: index 0 is "second"
	if cp.current != "second" {
		t.Errorf("clipboard current = %q, want %q", cp.current, "second")
	}
	if pasted != "second" {
		t.Errorf("pasted = %q, want %q", pasted, "second")
	}
}

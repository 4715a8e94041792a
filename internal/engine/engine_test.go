package engine

import (
	"testing"

	"github.com/keymapd/keyhac/internal/focus"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/keytable"
	"github.com/keymapd/keyhac/internal/ports"
)

type recordedEvent struct {
	down bool
	vk   keycode.Code
}

type fakeHook struct {
	layout keycode.Layout
	events []recordedEvent
	cb     func(ports.KeyEvent) ports.Verdict
}

func (h *fakeHook) SetCallback(channel string, fn func(ports.KeyEvent) ports.Verdict) { h.cb = fn }
func (h *fakeHook) SendKeyboardEvent(down bool, vk keycode.Code, replay bool) error {
	h.events = append(h.events, recordedEvent{down: down, vk: vk})
	return nil
}
func (h *fakeHook) GetKeyboardLayout() keycode.Layout { return h.layout }
func (h *fakeHook) AcquireLock() {}
func (h *fakeHook) ReleaseLock() {}

func (h *fakeHook) countEvents(down bool, vk keycode.Code) int {
	n := 0
	for _, e := range h.events {
		if e.down == down && e.vk == vk {
			n++
		}
	}
	return n
}

type fakeElm struct {
	role, title string
	parent      *fakeElm
}

func (e *fakeElm) AttributeValue(name string) (string, bool) {
	switch name {
	case "AXRole":
		return e.role, true
	case "AXTitle":
		return e.title, true
	default:
		return "", false
	}
}

func (e *fakeElm) Parent() (ports.UIElement, bool) {
	if e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

type fakeUI struct {
	focused ports.UIElement
}

func (u *fakeUI) FocusedElement() (ports.UIElement, bool) {
	if u.focused == nil {
		return nil, false
	}
	return u.focused, true
}
func (u *fakeUI) FocusedApplication() (ports.UIElement, bool) { return u.FocusedElement() }

type fakeConsole struct {
	texts map[string]string
}

func newFakeConsole() *fakeConsole { return &fakeConsole{texts: map[string]string{}} }
func (c *fakeConsole) Write(msg string, level ports.LogLevel) {}
func (c *fakeConsole) SetText(field, text string) { c.texts[field] = text }

func newTestEngine(hook *fakeHook, ui ports.UIElementPort) *Engine {
	if hook.layout == "" {
		hook.layout = keycode.LayoutANSI
	}
	return New(hook, ui, nil, nil)
}

// A simple remap: ReplaceKey("RShift","Back") turns a bare RShift
// press into an injected Back press, handled both ways.
func TestReplaceKeySimpleRemap(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	if err := e.Configure(func(eng *Engine) error {
		return eng.ReplaceKey("RShift", "Back")
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if v := e.OnKeyDown(keycode.RShift); v != ports.Handled {
		t.Errorf("down verdict = %v, want Handled", v)
	}
	if v := e.OnKeyUp(keycode.RShift); v != ports.Handled {
		t.Errorf("up verdict = %v, want Handled", v)
	}

	if hook.countEvents(true, keycode.Back) != 1 || hook.countEvents(false, keycode.Back) != 1 {
		t.Errorf("events = %+v, want exactly one down and one up for Back", hook.events)
	}
	if hook.countEvents(true, keycode.RShift) != 0 || hook.countEvents(false, keycode.RShift) != 0 {
		t.Errorf("events = %+v, want no raw RShift events emitted", hook.events)
	}
}

// One-shot modifier: O-RCmd fires exactly once for a clean down/up
// pair, and zero times when another key-down intervenes.
func TestOneShotModifier(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	calls := 0
	if err := e.Configure(func(eng *Engine) error {
		if err := eng.DefineModifier("RCmd", "RUser0"); err != nil {
			return err
		}
		global := eng.DefineKeytable("global", "*", nil)
		global.Set(eng.Tables(), "O-RCmd", keytable.CallAction(func() { calls++ }), nil)
		return nil
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	e.OnKeyDown(keycode.RCommand)
	e.OnKeyUp(keycode.RCommand)
	if calls != 1 {
		t.Errorf("clean down/up: calls = %d, want 1", calls)
	}

	calls = 0
	e.OnKeyDown(keycode.RCommand)
	e.OnKeyDown(keycode.A)
	e.OnKeyUp(keycode.A)
	e.OnKeyUp(keycode.RCommand)
	if calls != 0 {
		t.Errorf("down/A/up/up: calls = %d, want 0", calls)
	}
}

// Multi-stroke: Ctrl-X enters a nested table; Ctrl-O inside it
// dispatches once, and an unbound key leaves multi-stroke and passes
// through instead of being swallowed.
func TestMultiStroke(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	calls := 0
	if err := e.Configure(func(eng *Engine) error {
		top := eng.DefineKeytable("top", "*", nil)
		nested := eng.DefineKeytable("nested", "", nil)
		nested.Set(eng.Tables(), "Ctrl-O", keytable.CallAction(func() { calls++ }), nil)
		top.Set(eng.Tables(), "Ctrl-X", keytable.EnterAction(nested), nil)
		return nil
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	e.OnKeyDown(keycode.LControl)
	e.OnKeyDown(keycode.X)
	e.OnKeyUp(keycode.X)
	if e.multiStroke == nil {
		t.Fatal("expected multi-stroke to be entered after Ctrl-X")
	}

	e.OnKeyDown(keycode.O)
	if calls != 1 {
		t.Errorf("calls after Ctrl-O = %d, want 1", calls)
	}
	if e.multiStroke != nil {
		t.Error("expected multi-stroke to be left after a dispatched key-down")
	}
	e.OnKeyUp(keycode.O)
	e.OnKeyUp(keycode.LControl)

	// Re-enter, then press an unbound key: multi-stroke must still be
	// left even though nothing was bound for it.
	e.OnKeyDown(keycode.LControl)
	e.OnKeyDown(keycode.X)
	e.OnKeyUp(keycode.X)
	if e.multiStroke == nil {
		t.Fatal("expected multi-stroke to be entered again")
	}
	v := e.OnKeyDown(keycode.Y)
	if e.multiStroke != nil {
		t.Error("expected multi-stroke to be left after an unbound key-down")
	}
	if v == ports.Handled {
		t.Error("unbound key after leaving multi-stroke should not be reported handled")
	}
}

// A key that misses inside the nested table but is bound in the outer,
// focus-scoped table must still dispatch to that outer binding once
// multi-stroke is left, not merely pass through.
func TestMultiStrokeFallsThroughToOuterTable(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	outerCalls, nestedCalls := 0, 0
	if err := e.Configure(func(eng *Engine) error {
		outer := eng.DefineKeytable("outer", "*", nil)
		nested := eng.DefineKeytable("nested", "", nil)
		nested.Set(eng.Tables(), "Ctrl-O", keytable.CallAction(func() { nestedCalls++ }), nil)
		outer.Set(eng.Tables(), "Ctrl-X", keytable.EnterAction(nested), nil)
		outer.Set(eng.Tables(), "Y", keytable.CallAction(func() { outerCalls++ }), nil)
		return nil
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	e.OnKeyDown(keycode.LControl)
	e.OnKeyDown(keycode.X)
	e.OnKeyUp(keycode.X)
	if e.multiStroke == nil {
		t.Fatal("expected multi-stroke to be entered after Ctrl-X")
	}
	e.OnKeyUp(keycode.LControl)

	v := e.OnKeyDown(keycode.Y)
	if e.multiStroke != nil {
		t.Error("expected multi-stroke to be left after Y")
	}
	if outerCalls != 1 {
		t.Errorf("outerCalls = %d, want 1 (Y should fall through to the outer table)", outerCalls)
	}
	if nestedCalls != 0 {
		t.Errorf("nestedCalls = %d, want 0", nestedCalls)
	}
	if v != ports.Handled {
		t.Error("Y bound in the outer table should be reported handled")
	}
}

// A focus-scoped table overrides a global one only while its pattern
// matches the current focus path.
func TestFocusSwitch(t *testing.T) {
	xcodeApp := &fakeElm{role: "AXApplication", title: "Xcode"}
	xcode := &fakeElm{role: "AXTextField", title: "Editor", parent: xcodeApp}
	finderApp := &fakeElm{role: "AXApplication", title: "Finder"}
	other := &fakeElm{role: "AXTextField", title: "List", parent: finderApp}
	ui := &fakeUI{focused: xcode}
	hook := &fakeHook{}
	e := newTestEngine(hook, ui)

	var lastCalled string
	if err := e.Configure(func(eng *Engine) error {
		global := eng.DefineKeytable("global", "*", nil)
		global.Set(eng.Tables(), "Fn-A", keytable.CallAction(func() { lastCalled = "global" }), nil)
		xc := eng.DefineKeytable("xcode", "/AXApplication(Xcode)/*", nil)
		xc.Set(eng.Tables(), "Fn-A", keytable.CallAction(func() { lastCalled = "xcode" }), nil)
		return nil
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	e.OnKeyDown(keycode.Function)
	e.OnKeyDown(keycode.A)
	e.OnKeyUp(keycode.A)
	e.OnKeyUp(keycode.Function)
	if lastCalled != "xcode" {
		t.Errorf("lastCalled = %q, want xcode while focus matches xcode pattern", lastCalled)
	}

	ui.focused = other
	lastCalled = ""
	e.OnKeyDown(keycode.Function)
	e.OnKeyDown(keycode.A)
	e.OnKeyUp(keycode.A)
	e.OnKeyUp(keycode.Function)
	if lastCalled != "global" {
		t.Errorf("lastCalled = %q, want global once focus no longer matches xcode", lastCalled)
	}
}

// Modifier parity: after equal numbers of down/up for every physical
// modifier key, Engine.modifier returns to zero.
func TestModifierParity(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	if err := e.Configure(func(eng *Engine) error { return nil }); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	e.OnKeyDown(keycode.LControl)
	e.OnKeyDown(keycode.LShift)
	e.OnKeyDown(keycode.LAlt)
	e.OnKeyUp(keycode.LAlt)
	e.OnKeyUp(keycode.LShift)
	e.OnKeyUp(keycode.LControl)

	if e.modifier != 0 {
		t.Errorf("modifier = %#x, want 0 after balanced down/up", uint32(e.modifier))
	}
}

// Focus-path substitution: none of the reserved glob/formatting
// characters survive into a path segment.
func TestFocusPathSubstitution(t *testing.T) {
	elm := &fakeElm{role: "AXButton", title: "a/b*c?"}
	path := focus.Path(elm)
	if path != "/AXButton(a-b-c-)" {
		t.Errorf("path = %q, want substituted segment", path)
	}
}

// A panicking user action is logged and swallowed: it must never crash
// the hook thread or corrupt modifier bookkeeping.
func TestPanickingActionIsContained(t *testing.T) {
	hook := &fakeHook{}
	e := newTestEngine(hook, nil)
	if err := e.Configure(func(eng *Engine) error {
		global := eng.DefineKeytable("global", "*", nil)
		global.Set(eng.Tables(), "A", keytable.CallAction(func() { panic("boom") }), nil)
		return nil
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if v := e.OnKeyDown(keycode.A); v != ports.Handled {
		t.Errorf("verdict = %v, want Handled even when the action panics", v)
	}
	e.OnKeyUp(keycode.A)

	e.OnKeyDown(keycode.LShift)
	e.OnKeyUp(keycode.LShift)
	if e.modifier != 0 {
		t.Errorf("modifier = %#x, want 0 after the panic was contained", uint32(e.modifier))
	}
}

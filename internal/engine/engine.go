// Package engine implements the keymap state machine: it receives raw
// key events from the host hook, consults the focus-conditioned
// keytables, dispatches actions, and maintains modifier, one-shot and
// multi-stroke bookkeeping.
//
// The engine is an explicit value, not a process-global singleton:
// callers construct one per test or process and thread it through the
// host ports that satisfy its dependencies.
//
// Locking model: Engine.mu is a plain, non-reentrant mutex. It is
// acquired only at well-defined top-level entry points — OnKeyDown,
// OnKeyUp and OnHookRestored (called from the single hook callback
// thread), SendKeyByVKReplay (replay playback), RunFinished (a Threaded action's
// completion phase, on its own goroutine) and the registration methods
// called while loading configuration. Code that runs nested under one of
// those entry points — a Call action's closure, a Threaded action's
// starting() — must not call back into a locking entry point; it may only
// use the SendKey/SendKeyByVK convenience methods below, which assume the
// lock is already held by their caller and therefore never lock again.
// This is the non-reentrant alternative the design notes prefer over a
// true recursive lock.
package engine

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/keymapd/keyhac/internal/focus"
	"github.com/keymapd/keyhac/internal/inputctx"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/keyexpr"
	"github.com/keymapd/keyhac/internal/keytable"
	"github.com/keymapd/keyhac/internal/ports"
)

type focusedTable struct {
	cond  focus.Condition
	table *keytable.Table
}

// Recorder is satisfied by the replay buffer; the engine records every
// raw event through it while recording is armed. Declared here rather
// than importing internal/replay directly to avoid a dependency cycle
// (the replay buffer calls back into the engine to play events through
// it).
type Recorder interface {
	Record(vk keycode.Code, down bool)
	Recording() bool
}

// Engine is the keymap state machine. Zero value is not usable; construct
// with New.
type Engine struct {
	mu sync.Mutex

	hook    ports.HookPort
	ui      ports.UIElementPort
	console ports.ConsolePort
	logger  *log.Logger

	tables *keyexpr.Tables

	keytableList []focusedTable
	multiStroke  *keytable.Table
	unified      *keytable.Table

	vkMod map[keycode.Code]keycode.ModifierMask
	vkVK  map[keycode.Code]keycode.Code

	focusPath string
	focusElm  ports.UIElement

	modifier    keycode.ModifierMask
	lastKeydown keycode.Code
	hasLastKey  bool

	recorder Recorder

	// PassthroughBySend re-emits every pass-through key via an Input
	// context instead of returning PassThrough to the host hook.
	// Experimental: fixes ordering against other injected events in some
	// hosts, but breaks Shift-Tab dedent in at least one known editor
	// because the re-emitted Tab loses its Shift companion timing.
	PassthroughBySend bool
}

// New constructs an engine bound to the given host ports. The keyboard
// layout is queried once from hook at construction time; Configure
// re-queries it on every reload in case the host's layout changed.
func New(hook ports.HookPort, ui ports.UIElementPort, console ports.ConsolePort, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e := &Engine{
		hook:    hook,
		ui:      ui,
		console: console,
		logger:  logger,
		tables:  keyexpr.NewTables(hook.GetKeyboardLayout()),
		unified: keytable.New("unified"),
		vkMod:   map[keycode.Code]keycode.ModifierMask{},
		vkVK:    map[keycode.Code]keycode.Code{},
	}
	hook.SetCallback("Keyboard", e.onHookEvent)
	return e
}

// SetRecorder attaches the replay buffer. Called once during wiring,
// since the buffer itself needs a reference back to the engine to play
// events through it (see internal/replay).
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// Tables exposes the layout-aware key-name tables, used by callers that
// build KeyTables directly (e.g. a ConfigPort's configure function).
func (e *Engine) Tables() *keyexpr.Tables { return e.tables }

func (e *Engine) onHookEvent(ev ports.KeyEvent) ports.Verdict {
	switch ev.Kind {
	case ports.KeyDown:
		return e.OnKeyDown(ev.VK)
	case ports.KeyUp:
		return e.OnKeyUp(ev.VK)
	case ports.HookRestored:
		e.OnHookRestored()
		return ports.PassThrough
	default:
		return ports.PassThrough
	}
}

// ---- registration -------------------------------------------------------

// ReplaceKey sets an early key replacement: every occurrence of src is
// treated as dst before any other processing.
func (e *Engine) ReplaceKey(src, dst string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	svk, err := e.tables.StrToVK(src)
	if err != nil {
		e.logger.Printf("invalid key expression for argument 'src': %s", src)
		return err
	}
	dvk, err := e.tables.StrToVK(dst)
	if err != nil {
		e.logger.Printf("invalid key expression for argument 'dst': %s", dst)
		return err
	}
	e.vkVK[svk] = dvk
	return nil
}

// DefineModifier registers key as a modifier key carrying mod's bits.
func (e *Engine) DefineModifier(key, mod string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defineModifierLocked(key, mod)
}

func (e *Engine) defineModifierLocked(key, mod string) error {
	kvk, err := e.tables.StrToVK(key)
	if err != nil {
		e.logger.Printf("invalid key expression for argument 'key': %s", key)
		return err
	}
	mvk, err := keyexpr.StrToMod(mod, true)
	if err != nil {
		e.logger.Printf("invalid key expression for argument 'mod': %s", mod)
		return err
	}
	e.vkMod[kvk] = mvk
	return nil
}

// DefineKeytable creates a new table. When pattern or predicate is
// non-empty/non-nil, the table is registered against that focus
// condition and activates automatically; otherwise the table is meant to
// be nested inside another table's Enter action (multi-stroke).
func (e *Engine) DefineKeytable(name, pattern string, predicate focus.Predicate) *keytable.Table {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := keytable.New(name)
	if pattern != "" || predicate != nil {
		e.keytableList = append(e.keytableList, focusedTable{
			cond:  focus.Condition{PathPattern: pattern, Predicate: predicate},
			table: t,
		})
	}
	return t
}

// Configure resets all registration state (keytables, multi-stroke,
// modifier/replacement maps, focus and modifier state), re-registers the
// nine default physical modifier keys (left/right Shift, Ctrl, Alt and
// Cmd, plus Fn), then invokes fn to let the
// caller register its own rules. If fn returns an error the prior
// configuration is restored, matching ConfigLoadError's "engine retains
// prior configuration" rule; a failing first load simply leaves the
// engine with no rules, since there was nothing to restore.
func (e *Engine) Configure(fn func(*Engine) error) error {
	e.releaseAllModifiers()

	e.mu.Lock()
	backup := e.snapshotLocked()
	e.resetLocked()
	e.mu.Unlock()

	if err := fn(e); err != nil {
		e.logger.Printf("loading configuration failed: %v", err)
		e.mu.Lock()
		e.restoreLocked(backup)
		e.mu.Unlock()
		return fmt.Errorf("config load: %w", err)
	}

	e.mu.Lock()
	e.recomputeUnifiedLocked()
	e.mu.Unlock()
	return nil
}

type configSnapshot struct {
	keytableList []focusedTable
	vkMod        map[keycode.Code]keycode.ModifierMask
	vkVK         map[keycode.Code]keycode.Code
}

func (e *Engine) snapshotLocked() configSnapshot {
	return configSnapshot{
		keytableList: append([]focusedTable(nil), e.keytableList...),
		vkMod:        copyModMap(e.vkMod),
		vkVK:         copyVKMap(e.vkVK),
	}
}

func (e *Engine) restoreLocked(s configSnapshot) {
	e.keytableList = s.keytableList
	e.vkMod = s.vkMod
	e.vkVK = s.vkVK
	e.recomputeUnifiedLocked()
}

func (e *Engine) resetLocked() {
	e.keytableList = nil
	e.multiStroke = nil
	e.unified = keytable.New("unified")
	e.vkMod = map[keycode.Code]keycode.ModifierMask{}
	e.vkVK = map[keycode.Code]keycode.Code{}
	e.focusPath = ""
	e.focusElm = nil
	e.modifier = 0

	e.tables = keyexpr.NewTables(e.hook.GetKeyboardLayout())

	e.defineModifierLocked("LShift", "Shift")
	e.defineModifierLocked("RShift", "RShift")
	e.defineModifierLocked("LCtrl", "Ctrl")
	e.defineModifierLocked("RCtrl", "RCtrl")
	e.defineModifierLocked("LAlt", "Alt")
	e.defineModifierLocked("RAlt", "RAlt")
	e.defineModifierLocked("LCmd", "Cmd")
	e.defineModifierLocked("RCmd", "RCmd")
	e.defineModifierLocked("Fn", "Fn")
}

func copyModMap(m map[keycode.Code]keycode.ModifierMask) map[keycode.Code]keycode.ModifierMask {
	out := make(map[keycode.Code]keycode.ModifierMask, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyVKMap(m map[keycode.Code]keycode.Code) map[keycode.Code]keycode.Code {
	out := make(map[keycode.Code]keycode.Code, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (e *Engine) releaseAllModifiers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.newInputContextLocked(false)
	for vk, bit := range e.vkMod {
		if bit.IsUser() {
			continue
		}
		ctx.SendKeyByVK(vk, false)
	}
	ctx.Flush()
}

// ---- input context ------------------------------------------------------

func (e *Engine) newInputContextLocked(replay bool) *inputctx.Context {
	return inputctx.New(e.hook, e.tables, e.vkMod, e.modifier, replay)
}

// SendKey opens a one-shot Input context, sends expr, and flushes. Safe
// to call from within a Call action's closure or a Threaded action's
// starting()/finished(), since those run with Engine.mu already held by
// their caller.
func (e *Engine) SendKey(expr string) error {
	ctx := e.newInputContextLocked(false)
	err := ctx.SendKey(expr)
	ctx.Flush()
	return err
}

// SendKeyByVK opens a one-shot Input context and emits a single raw
// event, without touching modifier state. Same reentrancy contract as
// SendKey.
func (e *Engine) SendKeyByVK(vk keycode.Code, down bool) {
	ctx := e.newInputContextLocked(false)
	ctx.SendKeyByVK(vk, down)
	ctx.Flush()
}

// SendKeyByVKReplay is the top-level entry point the replay buffer
// uses to re-emit an event the engine reported pass-through for during
// playback. Unlike SendKeyByVK it acquires the lock itself (playback
// runs off the hook thread, e.g. from a worker-pool task, never from
// inside a dispatched action) and opens the
// Input context in replay mode, so user-modifier reconciliation is not
// suppressed the way it is for an ordinary dispatched action.
func (e *Engine) SendKeyByVKReplay(vk keycode.Code, down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.newInputContextLocked(true)
	ctx.SendKeyByVK(vk, down)
	ctx.Flush()
}

// RunFinished acquires the engine lock and runs fn, matching the
// Threaded-action contract's finished(result) phase, which must hold the
// lock before user code executes. Call this from the worker pool's
// completion callback, never from the hook thread.
func (e *Engine) RunFinished(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// RunStarting runs fn, matching the
// Threaded-action contract's starting() phase. Call this from within a
// structured action's Invoke, which already runs on the hook thread with
// the lock held by OnKeyDown/OnKeyUp — RunStarting therefore does not
// lock again, it exists only to name the contractual phase at call
// sites.
func (e *Engine) RunStarting(fn func()) { fn() }

// Focus returns the currently focused UI element, or nil if none.
func (e *Engine) Focus() ports.UIElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focusElm
}

// FocusPath returns the current canonical focus path.
func (e *Engine) FocusPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focusPath
}

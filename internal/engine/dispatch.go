package engine

import (
	"github.com/keymapd/keyhac/internal/focus"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/keyexpr"
	"github.com/keymapd/keyhac/internal/keytable"
	"github.com/keymapd/keyhac/internal/ports"
)

// OnKeyDown runs the key-down algorithm for a raw virtual key, exactly as
// delivered by the host hook. It is the engine's single entry point for
// down events and acquires the lock for the whole call.
func (e *Engine) OnKeyDown(vk0 keycode.Code) ports.Verdict {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkFocusChangeLocked()
	if e.recorder != nil && e.recorder.Recording() {
		e.recorder.Record(vk0, true)
	}

	vk, replaced := e.replaceLocked(vk0)
	e.lastKeydown = vk
	e.hasLastKey = true

	oldMod := e.modifier
	if bit, ok := e.vkMod[vk]; ok {
		e.modifier |= bit
		if bit.IsUser() {
			cond := keyexpr.KeyCondition{VK: vk, Mod: oldMod, Down: true}
			e.setLastKeyTextLocked(cond)
			e.dispatchLocked(cond)
			return ports.Handled
		}
	}

	cond := keyexpr.KeyCondition{VK: vk, Mod: oldMod, Down: true}
	e.setLastKeyTextLocked(cond)

	if e.dispatchLocked(cond) {
		return ports.Handled
	}
	if replaced {
		e.SendKeyByVK(vk, true)
		return ports.Handled
	}
	if e.PassthroughBySend {
		e.SendKeyByVK(vk, true)
		return ports.Handled
	}
	return ports.PassThrough
}

// OnKeyUp runs the key-up algorithm. The one-shot condition, if any,
// fires strictly after the physical key-up's verdict has been decided —
// firing it earlier would require faking an up/down around it and risks
// leaving the OS believing a key is still held.
func (e *Engine) OnKeyUp(vk0 keycode.Code) ports.Verdict {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkFocusChangeLocked()
	if e.recorder != nil && e.recorder.Recording() {
		e.recorder.Record(vk0, false)
	}

	vk, replaced := e.replaceLocked(vk0)
	oneshot := e.hasLastKey && vk == e.lastKeydown
	e.hasLastKey = false

	verdict := func() ports.Verdict {
		if bit, ok := e.vkMod[vk]; ok {
			e.modifier &^= bit
			if bit.IsUser() {
				cond := keyexpr.KeyCondition{VK: vk, Mod: e.modifier, Down: false}
				e.dispatchLocked(cond)
				return ports.Handled
			}
		}

		cond := keyexpr.KeyCondition{VK: vk, Mod: e.modifier, Down: false}
		if e.dispatchLocked(cond) {
			return ports.Handled
		}
		if replaced {
			e.SendKeyByVK(vk, false)
			return ports.Handled
		}
		if e.PassthroughBySend {
			e.SendKeyByVK(vk, false)
			return ports.Handled
		}
		return ports.PassThrough
	}()

	if oneshot {
		cond := keyexpr.KeyCondition{VK: vk, Mod: e.modifier, Down: true, Oneshot: true}
		e.dispatchLocked(cond)
	}

	return verdict
}

// OnHookRestored handles the host hook being re-armed after a timeout:
// modifier state can no longer be trusted, so it is reset to zero. The
// focus path and all registered keytables are left untouched — they are
// not stale, only the physical modifier bookkeeping is.
func (e *Engine) OnHookRestored() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger.Printf("key hook timed out and has been restored")
	e.modifier = 0
}

func (e *Engine) replaceLocked(vk0 keycode.Code) (vk keycode.Code, replaced bool) {
	if dst, ok := e.vkVK[vk0]; ok {
		return dst, dst != vk0
	}
	return vk0, false
}

func (e *Engine) setLastKeyTextLocked(cond keyexpr.KeyCondition) {
	if e.console == nil {
		return
	}
	s := e.tables.String(cond)
	if len(s) > 2 && s[:2] == "D-" {
		s = s[2:]
	}
	e.console.SetText("lastKey", s)
}

func (e *Engine) checkFocusChangeLocked() {
	if e.ui == nil {
		return
	}
	elm := e.focusedElementLocked()
	e.focusElm = elm

	var path string
	if elm != nil {
		path = focus.Path(elm)
	}
	if path != e.focusPath {
		e.focusPath = path
		e.logger.Printf("focus changed: %s", path)
		if e.console != nil {
			e.console.SetText("focusPath", path)
		}
		e.recomputeUnifiedLocked()
	}
}

// focusedElementLocked resolves the focused UI element, preferring the
// host's focused-element introspection and falling back to the focused
// application's own element when no finer-grained element is reported.
func (e *Engine) focusedElementLocked() ports.UIElement {
	if fe, ok := e.ui.FocusedElement(); ok {
		return fe
	}
	if app, ok := e.ui.FocusedApplication(); ok {
		return app
	}
	return nil
}

// dispatchLocked looks up cond in the unified keytable, leaves
// multi-stroke mode first if the pending key warrants it, and executes
// whatever action was found. Returns true iff an action ran or the event
// is otherwise considered handled.
func (e *Engine) dispatchLocked(cond keyexpr.KeyCondition) bool {
	action, hit := e.unified.Get(cond)

	leftMultiStroke := false
	if e.multiStroke != nil && cond.Down && !cond.Oneshot {
		if _, isMod := e.vkMod[cond.VK]; !isMod {
			e.leaveMultiStrokeLocked()
			leftMultiStroke = true
		}
	}

	if !hit {
		// The key missed in the (now-abandoned) multi-stroke table; give
		// the newly recomputed outer unified table a chance at it instead
		// of unconditionally treating a vacated multi-stroke as a miss.
		if leftMultiStroke {
			action, hit = e.unified.Get(cond)
		}
		if !hit {
			return false
		}
	}

	e.runActionLocked(cond, action)
	return true
}

// runActionLocked executes the bound action. A panicking user action is
// logged and swallowed: it must never take down the hook thread, and
// the modifier bookkeeping already happened before dispatch so state
// stays coherent.
func (e *Engine) runActionLocked(cond keyexpr.KeyCondition, action keytable.Action) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("action for %s failed: %v", e.tables.String(cond), r)
		}
	}()

	switch action.Kind {
	case keytable.Call:
		if action.Call != nil {
			action.Call()
		}
	case keytable.Enter:
		e.enterMultiStrokeLocked(action.Enter)
	case keytable.Sequence:
		e.sendSequenceLocked(action.Sequence)
	case keytable.Structured:
		if action.Structured != nil {
			action.Structured.Invoke()
		}
	}
}

func (e *Engine) sendSequenceLocked(exprs []string) {
	ctx := e.newInputContextLocked(false)
	for _, expr := range exprs {
		if err := ctx.SendKey(expr); err != nil {
			e.logger.Printf("invalid key expression in sequence: %v", err)
		}
	}
	ctx.Flush()
}

func (e *Engine) enterMultiStrokeLocked(t *keytable.Table) {
	e.multiStroke = t
	e.recomputeUnifiedLocked()
	if e.console != nil {
		e.console.SetText("multiStroke", "true")
	}
}

func (e *Engine) leaveMultiStrokeLocked() {
	if e.multiStroke == nil {
		return
	}
	e.multiStroke = nil
	e.recomputeUnifiedLocked()
	if e.console != nil {
		e.console.SetText("multiStroke", "false")
	}
}

func (e *Engine) recomputeUnifiedLocked() {
	unified := keytable.New("unified")
	if e.multiStroke != nil {
		e.multiStroke.Entries(func(c keyexpr.KeyCondition, a keytable.Action) bool {
			unified.SetCondition(c, a)
			return true
		})
	} else {
		for _, ft := range e.keytableList {
			if !ft.cond.Check(e.focusPath, e.focusElm) {
				continue
			}
			ft.table.Entries(func(c keyexpr.KeyCondition, a keytable.Action) bool {
				unified.SetCondition(c, a)
				return true
			})
		}
	}
	e.unified = unified
}

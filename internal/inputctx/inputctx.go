// Package inputctx implements the scoped Input context: a builder that
// reconciles virtual and real modifier state and flushes an atomic
// injected-event sequence to the host hook.
package inputctx

import (
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/keyexpr"
	"github.com/keymapd/keyhac/internal/ports"
)

type rawEvent struct {
	down bool
	vk   keycode.Code
}

// Context is a scoped builder obtained from the engine via NewContext. It
// must be closed with Flush, which happens even on a panicking exit when
// the caller defers it.
type Context struct {
	hook         ports.HookPort
	tables       *keyexpr.Tables
	vkMod        map[keycode.Code]keycode.ModifierMask
	replay       bool
	realModifier keycode.ModifierMask
	virtualMod   keycode.ModifierMask
	seq          []rawEvent
}

// New creates an Input context. Callers must hold the hook lock for the
// duration of the context's lifetime (acquired by the engine before
// calling New, released after Flush returns).
func New(hook ports.HookPort, tables *keyexpr.Tables, vkMod map[keycode.Code]keycode.ModifierMask, realModifier keycode.ModifierMask, replay bool) *Context {
	return &Context{
		hook:         hook,
		tables:       tables,
		vkMod:        vkMod,
		replay:       replay,
		realModifier: realModifier,
		virtualMod:   realModifier,
	}
}

// ReconcileModifiers brings the virtual modifier state to target: presses
// any modifier key whose bit is in target but not yet virtually down, then
// releases any modifier key whose bit is virtually down but not in
// target. A generic bit in target (as parsed from "Cmd-...") also selects
// the left-side key of that modifier. User-modifier bits are skipped
// unless replay is set, since injecting them would re-enter the engine's
// own user-modifier dispatch.
func (c *Context) ReconcileModifiers(target keycode.ModifierMask) {
	target |= (target & 0xff) << 8
	for vk, bit := range c.vkMod {
		if bit.IsUser() && !c.replay {
			continue
		}
		if bit&c.virtualMod == 0 && bit&target != 0 {
			c.seq = append(c.seq, rawEvent{down: true, vk: vk})
			c.virtualMod |= bit
		}
	}
	for vk, bit := range c.vkMod {
		if bit.IsUser() && !c.replay {
			continue
		}
		if bit&c.virtualMod != 0 && bit&target == 0 {
			c.seq = append(c.seq, rawEvent{down: false, vk: vk})
			c.virtualMod &^= bit
		}
	}
}

// SendKey parses and emits a key expression such as "Cmd-Shift-A". A "D-"
// or "U-" prefix on the key expression emits only the down or up half;
// otherwise both are emitted back to back.
func (c *Context) SendKey(expr string) error {
	cond, err := c.tables.Parse(expr)
	if err != nil {
		return err
	}
	c.ReconcileModifiers(cond.Mod)
	if cond.Explicit {
		c.seq = append(c.seq, rawEvent{down: cond.Down, vk: cond.VK})
		return nil
	}
	c.seq = append(c.seq, rawEvent{down: true, vk: cond.VK})
	c.seq = append(c.seq, rawEvent{down: false, vk: cond.VK})
	return nil
}

// SendKeyDown emits only a key-down event, used when an expression was
// parsed with an explicit D- prefix by the caller.
func (c *Context) SendKeyDown(expr string) error {
	cond, err := c.tables.Parse(expr)
	if err != nil {
		return err
	}
	c.ReconcileModifiers(cond.Mod)
	c.seq = append(c.seq, rawEvent{down: true, vk: cond.VK})
	return nil
}

// SendKeyByVK appends a single raw event for vk without touching
// modifier state.
func (c *Context) SendKeyByVK(vk keycode.Code, down bool) {
	c.seq = append(c.seq, rawEvent{down: down, vk: vk})
}

// Flush reconciles modifier state back to the real (physically pressed)
// modifiers, then emits the accumulated sequence to the host hook in
// order. Safe to call multiple times; a second call emits nothing new
// beyond any further reconciliation.
func (c *Context) Flush() {
	c.ReconcileModifiers(c.realModifier)
	for _, ev := range c.seq {
		c.hook.SendKeyboardEvent(ev.down, ev.vk, c.replay)
	}
	c.seq = c.seq[:0]
}

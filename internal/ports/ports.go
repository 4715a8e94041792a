// Package ports declares the narrow host-facing interfaces the engine
// consumes: the OS key hook, UI-element introspection, clipboard, chooser
// window, console and config loader. The engine depends only on these
// interfaces; platform code satisfies them.
package ports

import "github.com/keymapd/keyhac/internal/keycode"

// EventKind identifies the kind of event the host hook delivers.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	HookRestored
)

// KeyEvent is a raw event delivered by the host hook.
type KeyEvent struct {
	Kind EventKind
	VK   keycode.Code
}

// Verdict is the engine's answer to the host hook for a given raw event.
type Verdict int

const (
	PassThrough Verdict = iota
	Handled
)

// HookPort abstracts the platform key hook: it delivers raw events to a
// registered callback and accepts synthesized events for injection.
type HookPort interface {
	SetCallback(channel string, fn func(KeyEvent) Verdict)
	SendKeyboardEvent(down bool, vk keycode.Code, replay bool) error
	GetKeyboardLayout() keycode.Layout
	AcquireLock()
	ReleaseLock()
}

// UIElement is a borrowed handle to a focused UI element or one of its
// ancestors. The engine never extends its lifetime past the call that
// produced it.
type UIElement interface {
	AttributeValue(name string) (string, bool)
	Parent() (UIElement, bool)
}

// UIElementPort abstracts platform accessibility introspection.
type UIElementPort interface {
	FocusedElement() (UIElement, bool)
	FocusedApplication() (UIElement, bool)
}

// Clip is a single clipboard content handle.
type Clip interface {
	String() (string, error)
	SetString(s string) error
	Destroy()
}

// ClipboardPort abstracts the platform clipboard.
type ClipboardPort interface {
	Current() (Clip, error)
	SetCurrent(Clip) error
	NewClip(s string) Clip
}

// ChooserItem is one entry offered to the user by a ChooserPort.
type ChooserItem struct {
	Label string
	Value any
}

// ChooserPort abstracts a list-based selection window.
type ChooserPort interface {
	Open(name string, items []ChooserItem, onSelected func(index int, modifierFlags keycode.ModifierMask), onCanceled func())
}

// LogLevel mirrors the console's severity levels.
type LogLevel int

const (
	LevelDefault LogLevel = iota
	LevelTitle
	LevelWarning
	LevelError
)

// ConsolePort abstracts the status/log console.
type ConsolePort interface {
	Write(msg string, level LogLevel)
	SetText(field, text string)
}

// ConfigPort loads a user rule set and hands the engine to its
// configure entrypoint.
type ConfigPort interface {
	Configure(configure func() error) error
}

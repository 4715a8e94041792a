package main

import (
	"log"

	"github.com/keymapd/keyhac/internal/action"
	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/engine"
	"github.com/keymapd/keyhac/internal/keytable"
	"github.com/keymapd/keyhac/internal/ports"
	"github.com/keymapd/keyhac/internal/replay"
	"github.com/keymapd/keyhac/internal/runner"
)

// deps bundles the host capabilities a user rule set needs to bind
// structured actions: a clipboard history, a chooser, the replay
// buffer, a dictation action, a worker pool.
type deps struct {
	history *clipboard.History
	clip    ports.ClipboardPort
	chooser ports.ChooserPort
	pool    *runner.Pool
	buffer  *replay.Buffer
	dictate *dictateAction
	logger  *log.Logger
}

// playbackTask replays the recorded buffer through the engine from the
// worker pool: the playback path re-enters the engine's locking entry
// points, so it must not run inside a dispatched action, which already
// holds the lock.
type playbackTask struct {
	buffer *replay.Buffer
	engine *engine.Engine
}

func (p playbackTask) Starting() {}
func (p playbackTask) Run() (any, error) {
	p.buffer.Playback(engine.ReplayAdapter{Engine: p.engine})
	return nil, nil
}
func (p playbackTask) Finished(result any, err error) {}

// dictateAction bundles the Dictate Threaded action with its two
// structured-action halves, built separately so main.go can
// construct it conditionally (dictation needs a microphone and a
// configured transcription backend; neither is guaranteed present).
type dictateAction struct {
	start keytable.Invokable // bound to "D-<key>"
	stop  keytable.Invokable // bound to "U-<key>"
}

// configureRules is the reference rule set, registered against the
// engine's API the way a user's own configuration would be: a simple
// remap, a key-sequence binding, a one-shot modifier launcher, a
// multi-stroke prefix table, and a focus-conditioned override, plus
// the clipboard-history chooser, record/replay and dictation bindings.
func configureRules(e *engine.Engine, d deps) error {
	// Simple remap: right shift alone becomes backspace.
	if err := e.ReplaceKey("RShift", "Back"); err != nil {
		return err
	}

	// A user-assignable modifier carried by the right Cmd key, used
	// below for the one-shot launcher.
	if err := e.DefineModifier("RCmd", "RUser0"); err != nil {
		return err
	}

	global := e.DefineKeytable("global", "*", nil)

	// Key sequence: Fn-L plays three chords through an Input context,
	// reconciling Fn down/up around the Cmd it needs.
	global.Set(e.Tables(), "Fn-L", keytable.SequenceAction(
		"Cmd-Left", "Cmd-Left", "Shift-Cmd-Right",
	), d.logger)

	// One-shot modifier: tapping right-Cmd alone (no other key pressed
	// in between) launches a terminal.
	global.Set(e.Tables(), "O-RCmd", keytable.StructuredAction(
		action.LaunchApplication{Name: "Terminal.app", Logger: d.logger},
	), d.logger)

	// Clipboard history: a chooser over the captured clips; selecting
	// one re-sets the clipboard and pastes it.
	if d.history != nil && d.clip != nil && d.chooser != nil {
		global.Set(e.Tables(), "Fn-V", keytable.StructuredAction(action.ShowClipboardHistory{
			History:   d.history,
			Chooser:   d.chooser,
			Clipboard: d.clip,
			Paste: func(text string) {
				_ = e.SendKey("Cmd-V")
			},
			Logger: d.logger,
		}), d.logger)
	}

	// Built-in Dictate action: holding right-Ctrl records, releasing it
	// stops and transcribes. Only bound when a microphone and
	// transcription backend were successfully built.
	if d.dictate != nil {
		global.Set(e.Tables(), "D-RControl", keytable.StructuredAction(d.dictate.start), d.logger)
		global.Set(e.Tables(), "U-RControl", keytable.StructuredAction(d.dictate.stop), d.logger)
	}

	// Record/replay: Fn-0 toggles recording, Fn-9 plays the normalized
	// buffer back through the engine. Playback goes through the worker
	// pool since its re-entry into the engine needs the hook lock free.
	if d.buffer != nil && d.pool != nil {
		global.Set(e.Tables(), "Fn-0", keytable.CallAction(func() {
			d.buffer.ToggleRecording()
		}), d.logger)
		global.Set(e.Tables(), "Fn-9", keytable.StructuredAction(action.NewThreadedAction(
			e, d.pool, playbackTask{buffer: d.buffer, engine: e}, d.logger,
		)), d.logger)
	}

	// Multi-stroke: Ctrl-X enters a nested table; Ctrl-O within it
	// plays Cmd-O, an Emacs-style prefix-key binding.
	prefix := e.DefineKeytable("ctrl-x-prefix", "", nil)
	prefix.Set(e.Tables(), "Ctrl-O", keytable.SequenceAction("Cmd-O"), d.logger)
	global.Set(e.Tables(), "Ctrl-X", keytable.EnterAction(prefix), d.logger)

	// Focus-conditioned override: the same Fn-A binding resolves
	// differently depending on which application has focus. Xcode's
	// table is registered after the global one, so the engine's
	// later-overrides-earlier merge lets it take precedence wherever its
	// pattern matches.
	xcode := e.DefineKeytable("xcode", "/AXApplication(Xcode)/*", nil)
	global.Set(e.Tables(), "Fn-A", keytable.CallAction(func() {
		d.logger.Printf("global Fn-A")
	}), d.logger)
	xcode.Set(e.Tables(), "Fn-A", keytable.CallAction(func() {
		d.logger.Printf("xcode Fn-A")
	}), d.logger)

	return nil
}

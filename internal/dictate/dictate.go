// Package dictate implements Dictate, a built-in push-to-talk
// structured action: Starting() arms the microphone holding the hook
// lock, Run() blocks on the worker pool waiting for the matching
// key-up to signal mic-stop and then calls out to transcription (and
// optional tone rewrite) over HTTP, and Finished() delivers the
// resulting text holding the lock again.
//
// The action splits across the two halves of a single key: the Dictate
// value itself is the Starting/Run/Finished half bound to "D-<key>"
// via action.NewThreadedAction; StopAction, which calls Stop, is the
// plain Invokable bound to "U-<key>".
package dictate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/keymapd/keyhac/internal/chime"
	"github.com/keymapd/keyhac/internal/postprocess"
	"github.com/keymapd/keyhac/internal/transcriber"
)

// microphone is the narrow surface Dictate needs from *recorder.Recorder,
// kept as an interface so tests don't need a real input device.
type microphone interface {
	Start() error
	Stop() ([]byte, bool, error)
}

// Dictate is the Threaded action (see internal/action.Threaded / the
// matching interface in internal/runner) backing "push to dictate".
// Zero value is not usable; construct with New.
type Dictate struct {
	mic           microphone
	transcribe    transcriber.Transcriber
	postProcess   postprocess.PostProcessor
	chime         *chime.Player
	paste         func(text string)
	timeout       time.Duration
	logger        *log.Logger

	mu     sync.Mutex
	active bool
	stopCh chan struct{}
}

// New builds a Dictate action. paste is called from Finished (holding
// the hook lock) with the final text once transcription (and any tone
// rewrite) completes; the wiring site decides whether that means typing
// it via an Input context or setting the clipboard and replaying a paste
// keystroke, per config.PasteConfig.Mode.
func New(mic microphone, t transcriber.Transcriber, pp postprocess.PostProcessor, c *chime.Player, timeoutSec int, paste func(text string), logger *log.Logger) *Dictate {
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &Dictate{
		mic:         mic,
		transcribe:  t,
		postProcess: pp,
		chime:       c,
		paste:       paste,
		timeout:     time.Duration(timeoutSec) * time.Second,
		logger:      logger,
	}
}

// Starting satisfies the Threaded contract's first phase: called
// holding the hook lock on the "D-<key>" press, it arms the microphone.
// A press that arrives while already recording is ignored, so
// auto-repeat of the held key cannot stack sessions.
func (d *Dictate) Starting() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.stopCh = make(chan struct{})
	d.mu.Unlock()

	if err := d.mic.Start(); err != nil {
		if d.logger != nil {
			d.logger.Printf("dictate: start recording: %v", err)
		}
		d.mu.Lock()
		d.active = false
		d.mu.Unlock()
		return
	}
	if d.chime != nil {
		d.chime.PlayStart()
	}
}

// Run satisfies the Threaded contract's second phase: it runs on the
// worker pool, off the hook thread, and blocks until Stop signals
// mic-stop (or timeout elapses), then performs the HTTP round trips for
// transcription and optional tone rewrite.
func (d *Dictate) Run() (any, error) {
	d.mu.Lock()
	stopCh := d.stopCh
	wasActive := d.active
	d.mu.Unlock()
	if !wasActive {
		return "", nil
	}

	select {
	case <-stopCh:
	case <-time.After(d.timeout):
	}

	wavData, truncated, err := d.mic.Stop()
	if err != nil {
		return nil, fmt.Errorf("stop recording: %w", err)
	}
	if truncated && d.logger != nil {
		d.logger.Printf("dictate: recording truncated at max duration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	text, err := d.transcribe.Transcribe(ctx, wavData)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	if d.postProcess != nil {
		rewritten, err := d.postProcess.Rewrite(ctx, text)
		if err != nil {
			if d.logger != nil {
				d.logger.Printf("dictate: tone rewrite failed, using raw transcript: %v", err)
			}
		} else {
			text = rewritten
		}
	}

	return text, nil
}

// Finished satisfies the Threaded contract's third phase: called
// holding the hook lock again, it plays the stop chime and delivers the
// transcribed text.
func (d *Dictate) Finished(result any, err error) {
	d.mu.Lock()
	d.active = false
	d.stopCh = nil
	d.mu.Unlock()

	if d.chime != nil {
		d.chime.PlayStop()
	}

	if err != nil {
		if d.logger != nil {
			d.logger.Printf("dictate: %v", err)
		}
		return
	}

	text, _ := result.(string)
	if text == "" {
		return
	}
	if d.paste != nil {
		d.paste(text)
	}
}

// Stop signals Run to stop recording and proceed to transcription. It
// is the "U-<key>" half's Invoke(); a stop with nothing active is a
// no-op, so a stray key-up cannot misfire.
func (d *Dictate) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active || d.stopCh == nil {
		return
	}
	close(d.stopCh)
	d.stopCh = nil
}

// StopAction adapts Dictate.Stop to keytable.Invokable for binding to
// the "U-<key>" half.
type StopAction struct {
	Dictate *Dictate
}

// Invoke satisfies keytable.Invokable.
func (a StopAction) Invoke() { a.Dictate.Stop() }

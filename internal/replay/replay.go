// Package replay implements the fixed-capacity record/playback buffer:
// it records raw key events while armed, normalizes unbalanced down/up
// pairs and auto-repeat on stop, and plays the normalized sequence
// back through the engine so rules apply exactly as they did live.
package replay

import (
	"log"

	"github.com/keymapd/keyhac/internal/keycode"
)

// Player is satisfied by the engine: playback calls its key-down/key-up
// entry points directly so rules are applied, and falls back to a raw
// injection when the engine reports pass-through.
type Player interface {
	OnKeyDown(vk keycode.Code) Verdict
	OnKeyUp(vk keycode.Code) Verdict
	SendKeyByVKReplay(vk keycode.Code, down bool)
}

// Verdict mirrors ports.Verdict without importing the ports package,
// since only its "handled" sense matters here.
type Verdict int

const (
	PassThrough Verdict = iota
	Handled
)

type rawEvent struct {
	vk   keycode.Code
	down bool
}

// Buffer is the bounded ordered event record. Zero value is usable with
// the default capacity; use NewWithCapacity for a non-default one.
type Buffer struct {
	logger    *log.Logger
	cap       int
	seq       []rawEvent
	recording bool
}

const defaultCapacity = 1000

// New creates a Buffer with the default 1000-event capacity.
func New(logger *log.Logger) *Buffer {
	return NewWithCapacity(logger, defaultCapacity)
}

// NewWithCapacity creates a Buffer with an explicit capacity.
func NewWithCapacity(logger *log.Logger, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{logger: logger, cap: capacity}
}

// Recording reports whether the buffer is currently armed.
func (b *Buffer) Recording() bool { return b.recording }

// Record appends a raw event while armed. Once the buffer reaches
// capacity, further events are logged and dropped until the buffer is
// cleared or recording is stopped.
func (b *Buffer) Record(vk keycode.Code, down bool) {
	if !b.recording {
		return
	}
	capacity := b.cap
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if len(b.seq) >= capacity {
		if b.logger != nil {
			b.logger.Printf("key replay buffer is full")
		}
		return
	}
	b.seq = append(b.seq, rawEvent{vk: vk, down: down})
}

// StartRecording clears the buffer and arms it.
func (b *Buffer) StartRecording() {
	b.seq = nil
	b.recording = true
	if b.logger != nil {
		b.logger.Printf("recording started")
	}
}

// StopRecording disarms the buffer and normalizes the recorded sequence
// in place:
//   - a dangling key-up (no preceding unmatched down for that vk) is
//     dropped;
//   - auto-repeated downs for a key already down are collapsed — only
//     the first down before the matching up survives.
//
// After normalization, for every vk, downs and ups strictly alternate
// and the sequence begins with a down.
func (b *Buffer) StopRecording() {
	if !b.recording {
		return
	}
	b.recording = false
	b.seq = normalize(b.seq)
	if b.logger != nil {
		b.logger.Printf("recording stopped")
	}
}

// ToggleRecording starts recording if idle, stops it if armed.
func (b *Buffer) ToggleRecording() {
	if b.recording {
		b.StopRecording()
	} else {
		b.StartRecording()
	}
}

// Clear discards the buffer and disarms recording.
func (b *Buffer) Clear() {
	b.seq = nil
	b.recording = false
	if b.logger != nil {
		b.logger.Printf("cleared buffer")
	}
}

// Len reports the number of normalized events currently buffered.
func (b *Buffer) Len() int { return len(b.seq) }

// normalize walks the recorded sequence, maintaining a per-vk
// currently-down flag: a down while the flag is already set is an
// auto-repeat and is dropped (only the first down for a given key
// while no up has occurred is retained); an up while the flag is clear
// is dangling (no matching down survived, e.g. recording started
// mid-press) and is dropped too. Insertion order is otherwise kept.
func normalize(seq []rawEvent) []rawEvent {
	down := make(map[keycode.Code]bool, 16)
	out := make([]rawEvent, 0, len(seq))

	for _, ev := range seq {
		if ev.down {
			if down[ev.vk] {
				continue // auto-repeat: drop
			}
			down[ev.vk] = true
			out = append(out, ev)
			continue
		}
		if !down[ev.vk] {
			continue // dangling up: drop
		}
		down[ev.vk] = false
		out = append(out, ev)
	}
	return out
}

// Playback replays the normalized sequence through player. A down or up
// event that the engine reports as pass-through is re-emitted through a
// replay-mode Input context so it still reaches the host, since nothing
// else will deliver it once the live key has come and gone.
func (b *Buffer) Playback(player Player) {
	if b.recording {
		if b.logger != nil {
			b.logger.Printf("still recording - canceling playback")
		}
		return
	}
	if len(b.seq) == 0 {
		if b.logger != nil {
			b.logger.Printf("replay buffer is empty")
		}
		return
	}
	if b.logger != nil {
		b.logger.Printf("playing")
	}
	for _, ev := range b.seq {
		var v Verdict
		if ev.down {
			v = player.OnKeyDown(ev.vk)
		} else {
			v = player.OnKeyUp(ev.vk)
		}
		if v != Handled {
			player.SendKeyByVKReplay(ev.vk, ev.down)
		}
	}
}

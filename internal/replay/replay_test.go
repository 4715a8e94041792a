package replay

import (
	"testing"

	"github.com/keymapd/keyhac/internal/keycode"
)

// After StopRecording, for every vk, downs and ups alternate and each
// run begins with a down.
func TestNormalizeDropsDanglingUp(t *testing.T) {
	b := New(nil)
	b.StartRecording()
	b.Record(keycode.A, false) // dangling up, no preceding down
	b.Record(keycode.A, true)
	b.Record(keycode.A, false)
	b.StopRecording()

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (dangling up dropped)", b.Len())
	}
	if !b.seq[0].down || b.seq[0].vk != keycode.A {
		t.Errorf("seq[0] = %+v, want down(A)", b.seq[0])
	}
	if b.seq[1].down || b.seq[1].vk != keycode.A {
		t.Errorf("seq[1] = %+v, want up(A)", b.seq[1])
	}
}

func TestNormalizeCollapsesAutoRepeat(t *testing.T) {
	b := New(nil)
	b.StartRecording()
	b.Record(keycode.A, true)
	b.Record(keycode.A, true) // auto-repeat, no intervening up
	b.Record(keycode.A, true)
	b.Record(keycode.A, false)
	b.StopRecording()

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (repeats collapsed to one down/up pair)", b.Len())
	}
}

func TestNormalizeInterleavedKeys(t *testing.T) {
	b := New(nil)
	b.StartRecording()
	b.Record(keycode.A, true)
	b.Record(keycode.B, true)
	b.Record(keycode.A, false)
	b.Record(keycode.B, false)
	b.StopRecording()

	want := []rawEvent{
		{vk: keycode.A, down: true},
		{vk: keycode.B, down: true},
		{vk: keycode.A, down: false},
		{vk: keycode.B, down: false},
	}
	if b.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(want))
	}
	for i, w := range want {
		if b.seq[i] != w {
			t.Errorf("seq[%d] = %+v, want %+v", i, b.seq[i], w)
		}
	}
}

func TestBufferFullDropsFurtherEvents(t *testing.T) {
	b := NewWithCapacity(nil, 2)
	b.StartRecording()
	b.Record(keycode.A, true)
	b.Record(keycode.A, false)
	b.Record(keycode.B, true) // over capacity, dropped
	if len(b.seq) != 2 {
		t.Errorf("raw seq len = %d, want 2 (capacity enforced)", len(b.seq))
	}
}

type fakePlayer struct {
	verdicts map[keycode.Code]Verdict
	replayed []rawEvent
}

func (f *fakePlayer) OnKeyDown(vk keycode.Code) Verdict {
	if v, ok := f.verdicts[vk]; ok {
		return v
	}
	return PassThrough
}

func (f *fakePlayer) OnKeyUp(vk keycode.Code) Verdict {
	if v, ok := f.verdicts[vk]; ok {
		return v
	}
	return PassThrough
}

func (f *fakePlayer) SendKeyByVKReplay(vk keycode.Code, down bool) {
	f.replayed = append(f.replayed, rawEvent{vk: vk, down: down})
}

func TestPlaybackReemitsOnlyPassThroughEvents(t *testing.T) {
	b := New(nil)
	b.StartRecording()
	b.Record(keycode.A, true)
	b.Record(keycode.A, false)
	b.Record(keycode.B, true)
	b.Record(keycode.B, false)
	b.StopRecording()

	player := &fakePlayer{verdicts: map[keycode.Code]Verdict{keycode.A: Handled}}
	b.Playback(player)

	if len(player.replayed) != 2 {
		t.Fatalf("replayed = %+v, want exactly B's down/up re-injected", player.replayed)
	}
	for _, ev := range player.replayed {
		if ev.vk != keycode.B {
			t.Errorf("replayed event for unexpected vk: %+v", ev)
		}
	}
}

func TestPlaybackSkippedWhileRecording(t *testing.T) {
	b := New(nil)
	b.StartRecording()
	b.Record(keycode.A, true)
	// StopRecording not called: still armed.
	player := &fakePlayer{}
	b.Playback(player)
	if len(player.replayed) != 0 {
		t.Errorf("playback should no-op while still recording")
	}
}

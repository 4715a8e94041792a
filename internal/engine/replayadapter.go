package engine

import (
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
	"github.com/keymapd/keyhac/internal/replay"
)

// ReplayAdapter satisfies replay.Player by translating the engine's
// ports.Verdict into replay.Verdict. It exists only to decouple
// internal/replay from internal/ports: the buffer records/plays raw
// events and has no other reason to know about the host hook's wire
// shape.
type ReplayAdapter struct{ Engine *Engine }

func (a ReplayAdapter) OnKeyDown(vk keycode.Code) replay.Verdict {
	return toReplayVerdict(a.Engine.OnKeyDown(vk))
}

func (a ReplayAdapter) OnKeyUp(vk keycode.Code) replay.Verdict {
	return toReplayVerdict(a.Engine.OnKeyUp(vk))
}

func (a ReplayAdapter) SendKeyByVKReplay(vk keycode.Code, down bool) {
	a.Engine.SendKeyByVKReplay(vk, down)
}

func toReplayVerdict(v ports.Verdict) replay.Verdict {
	if v == ports.Handled {
		return replay.Handled
	}
	return replay.PassThrough
}

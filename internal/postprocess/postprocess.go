// Package postprocess optionally rewrites a dictated transcript before
// it is injected, driving an OpenAI-compatible chat-completions
// endpoint with a tone-specific system prompt. Tone "off" (or a
// disabled config) short-circuits to a pass-through.
package postprocess

import (
	"context"
	"log"
	"strings"

	"github.com/keymapd/keyhac/internal/config"
)

// PostProcessor is the one call Dictate makes between transcription and
// injection.
type PostProcessor interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// Noop returns the transcript untouched.
type Noop struct{}

func (Noop) Rewrite(_ context.Context, text string) (string, error) { return text, nil }

// Tone pairs a name with the system prompt that shapes the rewrite.
type Tone struct {
	Name   string
	Prompt string
}

const sharedRules = " Keep every name, technical term, code reference and spoken instruction exactly as dictated. Reply with the rewritten text only."

var builtin = []Tone{
	{Name: "off", Prompt: ""},
	{Name: "formal", Prompt: "You clean up speech-to-text output. Rewrite the dictated text in a professional tone fit for business writing, dropping filler words and false starts." + sharedRules},
	{Name: "direct", Prompt: "You clean up speech-to-text output. Rewrite the dictated text to be short and direct: cut filler (um, uh, like, you know, basically, kind of), false starts and repeated phrasing." + sharedRules},
	{Name: "token-efficient", Prompt: "You compress speech-to-text output. Strip all filler, hedging and conversational padding; prefer imperative phrasing for commands; drop articles and linking words that carry no meaning; keep any numbered or stepped structure the speaker used. Never add, expand or reinterpret anything the speaker did not say." + sharedRules},
}

var registry = buildRegistry()

func buildRegistry() map[string]Tone {
	m := make(map[string]Tone, len(builtin))
	for _, t := range builtin {
		m[t.Name] = t
	}
	return m
}

func isBuiltin(name string) bool {
	for _, t := range builtin {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ResetTones restores the registry to the built-in tones. Test helper;
// RegisterCustomTones mutates package state.
func ResetTones() { registry = buildRegistry() }

// RegisterCustomTones merges user-defined tones into the registry. A
// custom tone may shadow a built-in; that is logged so a user puzzled
// by a changed rewrite can find why.
func RegisterCustomTones(custom []config.CustomTone, logger *log.Logger) {
	for _, ct := range custom {
		key := strings.ToLower(ct.Name)
		if key == "" {
			continue
		}
		if isBuiltin(key) && logger != nil {
			logger.Printf("custom tone %q overrides built-in default", key)
		}
		registry[key] = Tone{Name: ct.Name, Prompt: ct.Prompt}
	}
}

// ResolveTone looks a tone up by name, case-insensitive; unknown names
// resolve to "off".
func ResolveTone(name string) Tone {
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["off"]
}

// New builds the PostProcessor the config asks for: a Noop when
// disabled or toneless, otherwise a chat-completions Rewriter.
func New(cfg *config.PostProcessingConfig, customTones []config.CustomTone, logger *log.Logger) PostProcessor {
	RegisterCustomTones(customTones, logger)
	if !cfg.Enabled {
		return Noop{}
	}
	tone := ResolveTone(cfg.Tone)
	if tone.Prompt == "" {
		return Noop{}
	}
	return NewRewriter(cfg, tone.Prompt, logger)
}

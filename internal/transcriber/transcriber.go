// Package transcriber turns the WAV audio Dictate captures into text,
// either over an OpenAI-compatible HTTP endpoint or by shelling out to
// a local speech-to-text command.
package transcriber

import (
	"context"
	"fmt"
	"log"

	"github.com/keymapd/keyhac/internal/config"
)

// Transcriber is the one call Dictate's Run() phase makes.
type Transcriber interface {
	Transcribe(ctx context.Context, wavData []byte) (string, error)
}

// New selects a backend from cfg.Provider.
func New(cfg *config.TranscriptionConfig, logger *log.Logger) (Transcriber, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg, logger), nil
	case "command":
		if cfg.Command == "" {
			return nil, fmt.Errorf("command provider requires a non-empty command")
		}
		return NewCommand(cfg.Command, cfg.TimeoutSec, logger), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.Provider)
	}
}

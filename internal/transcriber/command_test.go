package transcriber

import (
	"context"
	"strings"
	"testing"

	"github.com/keymapd/keyhac/internal/config"
)

func TestCommandTranscribe(t *testing.T) {
	c := NewCommand("echo transcript goes here", 5, nil)
	text, err := c.Transcribe(context.Background(), []byte("wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "transcript goes here" {
		t.Errorf("got %q, want %q", text, "transcript goes here")
	}
}

func TestCommandTranscribeSubstitutesInputPath(t *testing.T) {
	// wc -c on the temp file proves {input} expanded to a real path
	// holding the wav bytes.
	c := NewCommand("wc -c < {input}", 5, nil)
	text, err := c.Transcribe(context.Background(), []byte("12345"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(text) != "5" {
		t.Errorf("got %q, want byte count 5", text)
	}
}

func TestCommandTranscribeFailureIncludesStderr(t *testing.T) {
	c := NewCommand("echo recognizer exploded >&2; exit 3", 5, nil)
	_, err := c.Transcribe(context.Background(), []byte("wav"))
	if err == nil {
		t.Fatal("expected error for failing command")
	}
	if !strings.Contains(err.Error(), "recognizer exploded") {
		t.Errorf("stderr not folded into error: %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	if _, err := New(&config.TranscriptionConfig{Provider: "openai", BaseURL: "http://localhost:1"}, nil); err != nil {
		t.Errorf("openai provider: %v", err)
	}
	if _, err := New(&config.TranscriptionConfig{Provider: "command", Command: "echo hi"}, nil); err != nil {
		t.Errorf("command provider: %v", err)
	}
	if _, err := New(&config.TranscriptionConfig{Provider: "command"}, nil); err == nil {
		t.Error("expected error for command provider without a command")
	}
	if _, err := New(&config.TranscriptionConfig{Provider: "carrier-pigeon"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

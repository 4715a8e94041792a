package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Hook.Device != "" {
		t.Errorf("expected empty hook device, got %s", cfg.Hook.Device)
	}
	if cfg.ClipboardHistory.MaxItems != 200 {
		t.Errorf("expected clipboard history max items 200, got %d", cfg.ClipboardHistory.MaxItems)
	}
	if cfg.Console.Theme != "synthwave" {
		t.Errorf("expected console theme synthwave, got %s", cfg.Console.Theme)
	}
	if cfg.Dictate.Audio.TargetSampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", cfg.Dictate.Audio.TargetSampleRate)
	}
	if cfg.Dictate.Audio.MaxDurationSec != 60 {
		t.Errorf("expected max duration 60, got %d", cfg.Dictate.Audio.MaxDurationSec)
	}
	if !cfg.Dictate.Audio.ChimeEnabled {
		t.Error("expected chime enabled by default")
	}
	if cfg.Dictate.Transcription.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.Dictate.Transcription.Provider)
	}
	if cfg.Dictate.Transcription.BaseURL != "http://localhost:5092" {
		t.Errorf("expected base URL http://localhost:5092, got %s", cfg.Dictate.Transcription.BaseURL)
	}
	if cfg.Dictate.Transcription.Model != "whisper-1" {
		t.Errorf("expected model whisper-1, got %s", cfg.Dictate.Transcription.Model)
	}
	if cfg.Dictate.Transcription.TimeoutSec != 30 {
		t.Errorf("expected timeout 30, got %d", cfg.Dictate.Transcription.TimeoutSec)
	}
	if cfg.Dictate.PostProcessing.Enabled {
		t.Error("expected post-processing disabled by default")
	}
	if cfg.Dictate.Paste.DelayMs != 50 {
		t.Errorf("expected paste delay 50, got %d", cfg.Dictate.Paste.DelayMs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.ClipboardHistory.MaxItems != 200 {
		t.Errorf("expected default clipboard history bound, got %d", cfg.ClipboardHistory.MaxItems)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[hook]
device = "/dev/input/event5"

[clipboard_history]
max_items = 50

[dictate.audio]
target_sample_rate = 48000
max_duration_sec = 60
chime_enabled = false

[dictate.transcription]
provider = "command"
base_url = "http://localhost:8080"
model = "whisper-1"
timeout_sec = 10
command = "whisper-cpp -f {input}"

[dictate.paste]
delay_ms = 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Hook.Device != "/dev/input/event5" {
		t.Errorf("expected /dev/input/event5, got %s", cfg.Hook.Device)
	}
	if cfg.ClipboardHistory.MaxItems != 50 {
		t.Errorf("expected 50, got %d", cfg.ClipboardHistory.MaxItems)
	}
	if cfg.Dictate.Audio.TargetSampleRate != 48000 {
		t.Errorf("expected 48000, got %d", cfg.Dictate.Audio.TargetSampleRate)
	}
	if cfg.Dictate.Audio.MaxDurationSec != 60 {
		t.Errorf("expected 60, got %d", cfg.Dictate.Audio.MaxDurationSec)
	}
	if cfg.Dictate.Audio.ChimeEnabled {
		t.Error("expected chime disabled")
	}
	if cfg.Dictate.Transcription.Provider != "command" {
		t.Errorf("expected command, got %s", cfg.Dictate.Transcription.Provider)
	}
	if cfg.Dictate.Transcription.BaseURL != "http://localhost:8080" {
		t.Errorf("expected http://localhost:8080, got %s", cfg.Dictate.Transcription.BaseURL)
	}
	if cfg.Dictate.Transcription.Model != "whisper-1" {
		t.Errorf("expected whisper-1, got %s", cfg.Dictate.Transcription.Model)
	}
	if cfg.Dictate.Transcription.TimeoutSec != 10 {
		t.Errorf("expected 10, got %d", cfg.Dictate.Transcription.TimeoutSec)
	}
	if cfg.Dictate.Transcription.Command != "whisper-cpp -f {input}" {
		t.Errorf("expected whisper-cpp -f {input}, got %s", cfg.Dictate.Transcription.Command)
	}
	if cfg.Dictate.Paste.DelayMs != 100 {
		t.Errorf("expected 100, got %d", cfg.Dictate.Paste.DelayMs)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Console.Theme = "gruvbox"
	cfg.Dictate.Transcription.Model = "large-v3"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if loaded.Console.Theme != "gruvbox" {
		t.Errorf("expected theme gruvbox, got %s", loaded.Console.Theme)
	}
	if loaded.Dictate.Transcription.Model != "large-v3" {
		t.Errorf("expected model large-v3, got %s", loaded.Dictate.Transcription.Model)
	}
	if loaded.ClipboardHistory.MaxItems != 200 {
		t.Errorf("expected default clipboard history bound preserved, got %d", loaded.ClipboardHistory.MaxItems)
	}
	if loaded.Dictate.Audio.TargetSampleRate != 16000 {
		t.Errorf("expected default sample rate preserved, got %d", loaded.Dictate.Audio.TargetSampleRate)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[hook]
device = "/dev/input/event9"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Hook.Device != "/dev/input/event9" {
		t.Errorf("expected /dev/input/event9, got %s", cfg.Hook.Device)
	}
	// Non-overridden values should remain defaults
	if cfg.Dictate.Transcription.BaseURL != "http://localhost:5092" {
		t.Errorf("expected default base URL, got %s", cfg.Dictate.Transcription.BaseURL)
	}
	if cfg.Dictate.Paste.DelayMs != 50 {
		t.Errorf("expected default paste delay 50, got %d", cfg.Dictate.Paste.DelayMs)
	}
}

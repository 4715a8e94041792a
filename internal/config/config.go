// Package config loads and saves the ambient settings that shape how
// the engine, host ports, and built-in dictation action behave — as
// distinct from the user's key-binding rules, which are registered
// programmatically through ConfigPort.Configure. TOML on disk; Load
// returns defaults when the file is absent, Save writes atomically.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// KeyboardConfig holds a keyboard-layout name. It is loaded and saved
// with the rest of the config; no HookPort implementation reads it, so
// the layout in use is the one each HookPort's GetKeyboardLayout reports.
type KeyboardConfig struct {
	Layout string `toml:"layout"`
}

// HookConfig selects which input device a HookPort reads from.
type HookConfig struct {
	Device string `toml:"device"`
}

// ClipboardHistoryConfig bounds the clipboard history's in-memory and
// on-disk footprint.
type ClipboardHistoryConfig struct {
	MaxItems        int    `toml:"max_items"`
	MaxItemBytes    int    `toml:"max_item_bytes"`
	MaxPersistBytes int    `toml:"max_persist_bytes"`
	PersistPath     string `toml:"persist_path"`
}

// CustomTheme registers an additional console color theme alongside the
// built-ins (synthwave/everforest/gruvbox/monochrome).
type CustomTheme struct {
	Name       string `toml:"name"`
	Primary    string `toml:"primary"`
	Secondary  string `toml:"secondary"`
	Accent     string `toml:"accent"`
	Error      string `toml:"error"`
	Success    string `toml:"success"`
	Warning    string `toml:"warning"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Dimmed     string `toml:"dimmed"`
	Separator  string `toml:"separator"`
}

// ConsoleConfig selects the default ConsolePort's color theme.
type ConsoleConfig struct {
	Theme        string        `toml:"theme"`
	CustomThemes []CustomTheme `toml:"custom_theme"`
}

// AudioConfig holds Dictate's audio capture settings.
type AudioConfig struct {
	TargetSampleRate int    `toml:"target_sample_rate"`
	MaxDurationSec   int    `toml:"max_duration_sec"`
	ChimeStart       string `toml:"chime_start"`
	ChimeStop        string `toml:"chime_stop"`
	ChimeEnabled     bool   `toml:"chime_enabled"`
}

// TranscriptionConfig selects and configures Dictate's transcription
// backend.
type TranscriptionConfig struct {
	Provider      string `toml:"provider"` // "openai" or "command"
	BaseURL       string `toml:"base_url"`
	Model         string `toml:"model"`
	TimeoutSec    int    `toml:"timeout_sec"`
	Command       string `toml:"command"`
	TLSSkipVerify bool   `toml:"tls_skip_verify"`
}

// CustomTone registers an additional post-processing tone alongside the
// built-ins (off/formal/direct/token-efficient).
type CustomTone struct {
	Name   string `toml:"name"`
	Prompt string `toml:"prompt"`
}

// PostProcessingConfig controls Dictate's optional LLM tone rewrite of
// transcribed text before injection.
type PostProcessingConfig struct {
	Enabled    bool   `toml:"enabled"`
	Tone       string `toml:"tone"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// PasteConfig controls how Dictate injects text into the focused
// application.
type PasteConfig struct {
	DelayMs int    `toml:"delay_ms"`
	Mode    string `toml:"mode"` // "type" (direct typing) or "clipboard" (Ctrl+V)
}

// DictateConfig groups every setting the built-in Dictate structured
// action depends on.
type DictateConfig struct {
	Audio          AudioConfig          `toml:"audio"`
	Transcription  TranscriptionConfig  `toml:"transcription"`
	PostProcessing PostProcessingConfig `toml:"post_processing"`
	Paste          PasteConfig          `toml:"paste"`
	CustomTones    []CustomTone         `toml:"custom_tone"`
}

// Config is the top-level ambient configuration.
type Config struct {
	Keyboard         KeyboardConfig         `toml:"keyboard"`
	Hook             HookConfig             `toml:"hook"`
	ClipboardHistory ClipboardHistoryConfig `toml:"clipboard_history"`
	Console          ConsoleConfig          `toml:"console"`
	Dictate          DictateConfig          `toml:"dictate"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Keyboard: KeyboardConfig{Layout: ""},
		Hook:     HookConfig{Device: ""},
		ClipboardHistory: ClipboardHistoryConfig{
			MaxItems:        200,
			MaxItemBytes:    64 * 1024,
			MaxPersistBytes: 8 * 1024 * 1024,
			PersistPath:     "",
		},
		Console: ConsoleConfig{Theme: "synthwave"},
		Dictate: DictateConfig{
			Audio: AudioConfig{
				TargetSampleRate: 16000,
				MaxDurationSec:   60,
				ChimeStart:       "",
				ChimeStop:        "",
				ChimeEnabled:     true,
			},
			Transcription: TranscriptionConfig{
				Provider:   "openai",
				BaseURL:    "http://localhost:5092",
				Model:      "whisper-1",
				TimeoutSec: 30,
				Command:    "",
			},
			PostProcessing: PostProcessingConfig{
				Enabled:    false,
				Tone:       "off",
				BaseURL:    "http://localhost:5092",
				Model:      "whisper-1",
				TimeoutSec: 30,
			},
			Paste: PasteConfig{
				DelayMs: 50,
				Mode:    "type",
			},
		},
	}
}

// DefaultPath returns the default config file path (~/.config/keyhac/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keyhac", "config.toml")
}

// DefaultDataDir returns the default data directory (~/.local/share/keyhac),
// where the clipboard history and other persisted state live by default.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "keyhac")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keyhac-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

package transcriber

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command runs a user-supplied shell command (e.g. a local whisper.cpp
// invocation) with the captured audio on disk; stdout is the
// transcript. The template's {input} placeholder is replaced with the
// temp WAV path.
type Command struct {
	template string
	timeout  time.Duration
	logger   *log.Logger
}

// NewCommand builds the shell-out backend.
func NewCommand(template string, timeoutSec int, logger *log.Logger) *Command {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Command{template: template, timeout: timeout, logger: logger}
}

// Transcribe writes wavData to a temp file, expands the template, and
// runs it under sh -c. Stderr is folded into the error so a failing
// recognizer's diagnostics surface in the log.
func (c *Command) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "keyhacd-dictate-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	_, werr := tmp.Write(wavData)
	cerr := tmp.Close()
	if werr != nil {
		return "", fmt.Errorf("write temp wav: %w", werr)
	}
	if cerr != nil {
		return "", fmt.Errorf("close temp wav: %w", cerr)
	}

	line := strings.ReplaceAll(c.template, "{input}", path)
	if c.logger != nil {
		c.logger.Printf("transcribe: sh -c %q wav=%dB", line, len(wavData))
	}

	began := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("run command: %w: %s", err, msg)
		}
		return "", fmt.Errorf("run command: %w", err)
	}
	if c.logger != nil {
		c.logger.Printf("transcribe: %dB out in %s", len(out), time.Since(began).Round(time.Millisecond))
	}
	return strings.TrimSpace(string(out)), nil
}

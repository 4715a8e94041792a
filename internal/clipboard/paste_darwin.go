//go:build darwin

package clipboard

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const axHint = "grant Accessibility permission in System Settings > Privacy & Security"

// PasteText delivers text into the focused application. mode "type"
// keystrokes the text directly through System Events; any other mode
// goes through pbcopy plus a synthesized Cmd+V. delayMs gives the
// target window a beat to take focus first.
func PasteText(text string, delayMs int, mode string) error {
	if delayMs > 0 {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
	if mode == "type" {
		return keystrokeText(text)
	}
	return pasteViaClipboard(text)
}

func pasteViaClipboard(text string) error {
	if err := runPbcopy(text); err != nil {
		return fmt.Errorf("pbcopy: %w", err)
	}
	script := `tell application "System Events" to keystroke "v" using command down`
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript Cmd+V: %w (%s)", err, axHint)
	}

	// Clearing afterwards is a courtesy; a missing pbcopy at this point
	// must not turn a delivered paste into an error.
	time.Sleep(100 * time.Millisecond)
	_ = runPbcopy("")
	return nil
}

func runPbcopy(text string) error {
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func keystrokeText(text string) error {
	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escapeAppleScript(text))
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript keystroke: %w (%s)", err, axHint)
	}
	return nil
}

// escapeAppleScript makes text safe inside an AppleScript double-quoted
// literal; backspace characters are dropped outright since keystroking
// them would eat characters already typed.
func escapeAppleScript(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		"\b", "",
	)
	return r.Replace(s)
}

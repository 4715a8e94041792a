//go:build !darwin

package clipboard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	atclip "github.com/atotto/clipboard"
)

const pasteToolTimeout = 10 * time.Second

// isWayland reports whether the session is a Wayland one, which decides
// the paste toolchain below.
func isWayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// PasteText delivers text into the focused application: set the
// clipboard, synthesize Ctrl+V with the session's keystroke tool
// (ydotool on Wayland, xdotool on X11), then clear the clipboard again.
// delayMs gives the target window a beat to take focus first.
func PasteText(text string, delayMs int) error {
	if delayMs > 0 {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pasteToolTimeout)
	defer cancel()

	if isWayland() {
		return pasteWayland(ctx, text)
	}
	return pasteX11(ctx, text)
}

func pasteWayland(ctx context.Context, text string) error {
	// ydotool drives /dev/uinput, so it works on every compositor; its
	// daemon half must be running for the client to connect.
	for tool, hint := range map[string]string{
		"wl-copy": "wl-clipboard",
		"ydotool": "ydotool",
	} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found: %w (install %s)", tool, err, hint)
		}
	}
	startYdotoold()

	if err := exec.CommandContext(ctx, "wl-copy", "--", text).Run(); err != nil {
		return fmt.Errorf("wl-copy: %w", err)
	}
	if err := exec.CommandContext(ctx, "ydotool", "key", "--delay", "0", "ctrl+v").Run(); err != nil {
		return fmt.Errorf("ydotool key ctrl+v: %w", err)
	}

	time.Sleep(100 * time.Millisecond)
	exec.CommandContext(ctx, "wl-copy", "--clear").Run()
	return nil
}

func pasteX11(ctx context.Context, text string) error {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return fmt.Errorf("xdotool not found: %w (install xdotool)", err)
	}
	if err := atclip.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	if err := exec.CommandContext(ctx, "xdotool", "key", "ctrl+v").Run(); err != nil {
		return fmt.Errorf("xdotool key ctrl+v: %w", err)
	}

	time.Sleep(100 * time.Millisecond)
	atclip.WriteAll("")
	return nil
}

// startYdotoold launches ydotoold detached if it is installed but not
// yet running.
func startYdotoold() {
	if exec.Command("pgrep", "-x", "ydotoold").Run() == nil {
		return
	}
	if _, err := exec.LookPath("ydotoold"); err != nil {
		return
	}
	cmd := exec.Command("ydotoold")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if cmd.Start() == nil {
		time.Sleep(200 * time.Millisecond)
	}
}

package action

import (
	"log"
	"os/exec"
	"runtime"
)

// LaunchApplication opens an application by name or path. On darwin it
// shells out to `open -a`; elsewhere it defers to the host's default
// opener (`xdg-open`).
type LaunchApplication struct {
	Name   string
	Logger *log.Logger
}

// Invoke satisfies keytable.Invokable.
func (a LaunchApplication) Invoke() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", "-a", a.Name)
	default:
		cmd = exec.Command("xdg-open", a.Name)
	}
	if err := cmd.Start(); err != nil {
		if a.Logger != nil {
			a.Logger.Printf("launch application %q: %v", a.Name, err)
		}
		return
	}
	// Launching is fire-and-forget from the hook thread's perspective;
	// the goroutine only reaps the child.
	go cmd.Wait()
}

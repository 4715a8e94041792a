package console

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// DebugEntry is one parsed line of a retargeted log.Logger's output.
type DebugEntry struct {
	Time     string
	Category string
	Message  string
}

// LogWriter is an io.Writer that sends each written line as a
// debugLogMsg to a Bubble Tea program. Use it as the output for a
// log.Logger to surface it in the console's debug pane.
type LogWriter struct {
	program *tea.Program
}

// NewLogWriter creates a LogWriter that sends debug lines to the given program.
func NewLogWriter(p *tea.Program) *LogWriter {
	return &LogWriter{program: p}
}

// Write implements io.Writer. Each call parses the log line into
// structured fields and sends a debugLogMsg. The send runs in a
// goroutine to avoid deadlocking when called from inside a Bubble Tea
// command function.
func (w *LogWriter) Write(b []byte) (int, error) {
	line := strings.TrimRight(string(b), "\n")
	entry := parseLine(line)
	go w.program.Send(debugLogMsg{Entry: entry})
	return len(b), nil
}

// parseLine extracts time, category, and message from a log line.
// Category is inferred from the first word of the message (e.g.
// "engine", "hook", "focus", "replay", "dictate").
func parseLine(line string) DebugEntry {
	entry := DebugEntry{Category: "debug", Message: line}

	msg := line
	for _, prefix := range []string{"[DEBUG] ", "[ENGINE] ", "[HOOK] "} {
		msg = strings.TrimPrefix(msg, prefix)
	}

	if len(msg) >= 8 && msg[2] == ':' && msg[5] == ':' {
		if spaceIdx := strings.IndexByte(msg, ' '); spaceIdx > 0 {
			entry.Time = msg[:spaceIdx]
			msg = msg[spaceIdx+1:]
		}
	}

	entry.Category, entry.Message = inferCategory(msg)
	return entry
}

func inferCategory(msg string) (category, message string) {
	lower := strings.ToLower(msg)
	switch {
	case strings.HasPrefix(lower, "hook"):
		return "hook", msg
	case strings.HasPrefix(lower, "focus"):
		return "focus", msg
	case strings.HasPrefix(lower, "replay"):
		return "replay", msg
	case strings.HasPrefix(lower, "dictate"), strings.HasPrefix(lower, "transcrib"):
		return "dictate", msg
	case strings.HasPrefix(lower, "clipboard"):
		return "clipboard", msg
	default:
		return "engine", msg
	}
}

package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keymapd/keyhac/internal/config"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
)

// Console is the default ports.ConsolePort and ports.ChooserPort,
// backed by a single Bubble Tea program: the chooser renders as a
// modal overlay within the same program rather than a second window.
type Console struct {
	program *tea.Program
}

// New builds a Console and its underlying Bubble Tea program. Call
// Run to start it; Run blocks until the user quits.
func New(themeName string, customThemes []config.CustomTheme, debug bool) *Console {
	theme := LoadTheme(themeName, customThemes)
	p := tea.NewProgram(newModel(theme, debug), tea.WithAltScreen())
	return &Console{program: p}
}

// Run starts the Bubble Tea program and blocks until it exits.
func (c *Console) Run() error {
	_, err := c.program.Run()
	return err
}

// LogWriter returns an io.Writer that retargets a log.Logger's output
// into the console's debug pane.
func (c *Console) LogWriter() *LogWriter {
	return NewLogWriter(c.program)
}

// Write satisfies ports.ConsolePort.
func (c *Console) Write(msg string, level ports.LogLevel) {
	c.program.Send(writeMsg{text: msg, level: level})
}

// SetText satisfies ports.ConsolePort.
func (c *Console) SetText(field, text string) {
	c.program.Send(setTextMsg{field: field, text: text})
}

// Open satisfies ports.ChooserPort.
func (c *Console) Open(name string, items []ports.ChooserItem, onSelected func(index int, modifierFlags keycode.ModifierMask), onCanceled func()) {
	c.program.Send(openChooserMsg{name: name, items: items, onSelected: onSelected, onCanceled: onCanceled})
}

package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
)

const maxDebugLines = 200

type setTextMsg struct {
	field, text string
}

type writeMsg struct {
	text  string
	level ports.LogLevel
}

type debugLogMsg struct {
	Entry DebugEntry
}

type openChooserMsg struct {
	name       string
	items      []ports.ChooserItem
	onSelected func(index int, modifierFlags keycode.ModifierMask)
	onCanceled func()
}

type chooserState struct {
	name       string
	items      []ports.ChooserItem
	cursor     int
	onSelected func(index int, modifierFlags keycode.ModifierMask)
	onCanceled func()
}

// model is the Bubble Tea model backing both ConsolePort (status/log
// display) and ChooserPort (a modal list overlay).
type model struct {
	theme  Theme
	styles styles

	lastKey     string
	focusPath   string
	multiStroke bool
	lastLog     writeMsg

	debugLog []DebugEntry
	debug    bool

	chooser *chooserState
	quit    bool
}

func newModel(theme Theme, debug bool) model {
	return model{theme: theme, styles: buildStyles(theme), debug: debug}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case setTextMsg:
		switch msg.field {
		case "lastKey":
			m.lastKey = msg.text
		case "focusPath":
			m.focusPath = msg.text
		case "multiStroke":
			m.multiStroke = msg.text == "true"
		}
		return m, nil
	case writeMsg:
		m.lastLog = msg
		return m, nil
	case debugLogMsg:
		m.debugLog = append(m.debugLog, msg.Entry)
		if len(m.debugLog) > maxDebugLines {
			m.debugLog = m.debugLog[len(m.debugLog)-maxDebugLines:]
		}
		return m, nil
	case openChooserMsg:
		m.chooser = &chooserState{name: msg.name, items: msg.items, onSelected: msg.onSelected, onCanceled: msg.onCanceled}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chooser != nil {
		switch msg.String() {
		case "up", "k":
			if m.chooser.cursor > 0 {
				m.chooser.cursor--
			}
		case "down", "j":
			if m.chooser.cursor < len(m.chooser.items)-1 {
				m.chooser.cursor++
			}
		case "enter":
			idx := m.chooser.cursor
			onSelected := m.chooser.onSelected
			m.chooser = nil
			if onSelected != nil {
				onSelected(idx, 0)
			}
		case "esc", "ctrl+c":
			onCanceled := m.chooser.onCanceled
			m.chooser = nil
			if onCanceled != nil {
				onCanceled()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

package console

import (
	"fmt"
	"strings"

	"github.com/keymapd/keyhac/internal/ports"
)

func (m model) View() string {
	if m.quit {
		return ""
	}
	if m.chooser != nil {
		return m.viewChooser()
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("keyhac"))
	b.WriteString("\n")

	msBadge := m.styles.badgeOK.Render("no")
	if m.multiStroke {
		msBadge = m.styles.badgeMultiStroke.Render("yes")
	}

	body := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s",
		m.styles.label.Render("Last key:"), m.styles.body.Render(m.lastKey),
		m.styles.label.Render("Focus:"), m.styles.body.Render(m.focusPath),
		m.styles.label.Render("Multi-stroke:"), msBadge,
	)
	b.WriteString(m.styles.border.Render(body))
	b.WriteString("\n")

	if m.lastLog.text != "" {
		level := m.styles.body
		if m.lastLog.level == ports.LevelError {
			level = m.styles.badgeErr
		}
		b.WriteString(level.Render(m.lastLog.text))
		b.WriteString("\n")
	}

	if m.debug {
		b.WriteString(m.styles.debugTitle.Render("debug log"))
		b.WriteString("\n")
		start := 0
		if len(m.debugLog) > 10 {
			start = len(m.debugLog) - 10
		}
		for _, e := range m.debugLog[start:] {
			b.WriteString(m.styles.debugTime.Render(e.Time))
			b.WriteString(" ")
			b.WriteString(m.styles.debugCategory.Render("[" + e.Category + "]"))
			b.WriteString(" ")
			b.WriteString(m.styles.debugMsg.Render(e.Message))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.quit.Render("press q to quit"))
	return b.String()
}

func (m model) viewChooser() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.chooser.name))
	b.WriteString("\n")
	for i, item := range m.chooser.items {
		line := item.Label
		if i == m.chooser.cursor {
			line = m.styles.badgeOK.Render("> " + line)
		} else {
			line = m.styles.body.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.quit.Render("enter to select, esc to cancel"))
	return b.String()
}

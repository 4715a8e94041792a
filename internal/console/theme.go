// Package console implements the default ports.ConsolePort and
// ports.ChooserPort as a Bubble Tea status TUI showing the remapper's
// live state: last key, focus path, multi-stroke indicator, and an
// optional debug-log pane.
package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keymapd/keyhac/internal/config"
)

// Theme defines the color palette for the console.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Dimmed     lipgloss.Color
	Separator  lipgloss.Color
}

var themes = map[string]Theme{
	"synthwave": {
		Name:       "Synthwave",
		Primary:    lipgloss.Color("#FF6AC1"),
		Secondary:  lipgloss.Color("#00E5FF"),
		Accent:     lipgloss.Color("#B388FF"),
		Error:      lipgloss.Color("#FF8A80"),
		Success:    lipgloss.Color("#64FFDA"),
		Warning:    lipgloss.Color("#FFAB40"),
		Background: lipgloss.Color("#1A1A2E"),
		Text:       lipgloss.Color("#E0E0E0"),
		Dimmed:     lipgloss.Color("#666666"),
		Separator:  lipgloss.Color("#444444"),
	},
	"everforest": {
		Name:       "Everforest",
		Primary:    lipgloss.Color("#A7C080"),
		Secondary:  lipgloss.Color("#7FBBB3"),
		Accent:     lipgloss.Color("#D699B6"),
		Error:      lipgloss.Color("#E67E80"),
		Success:    lipgloss.Color("#83C092"),
		Warning:    lipgloss.Color("#DBBC7F"),
		Background: lipgloss.Color("#2D353B"),
		Text:       lipgloss.Color("#D3C6AA"),
		Dimmed:     lipgloss.Color("#859289"),
		Separator:  lipgloss.Color("#4F585E"),
	},
	"gruvbox": {
		Name:       "Gruvbox",
		Primary:    lipgloss.Color("#FB4934"),
		Secondary:  lipgloss.Color("#83A598"),
		Accent:     lipgloss.Color("#D3869B"),
		Error:      lipgloss.Color("#FB4934"),
		Success:    lipgloss.Color("#B8BB26"),
		Warning:    lipgloss.Color("#FABD2F"),
		Background: lipgloss.Color("#282828"),
		Text:       lipgloss.Color("#EBDBB2"),
		Dimmed:     lipgloss.Color("#928374"),
		Separator:  lipgloss.Color("#504945"),
	},
	"monochrome": {
		Name:       "Monochrome",
		Primary:    lipgloss.Color("#FFFFFF"),
		Secondary:  lipgloss.Color("#CCCCCC"),
		Accent:     lipgloss.Color("#AAAAAA"),
		Error:      lipgloss.Color("#FF0000"),
		Success:    lipgloss.Color("#FFFFFF"),
		Warning:    lipgloss.Color("#CCCCCC"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#FFFFFF"),
		Dimmed:     lipgloss.Color("#888888"),
		Separator:  lipgloss.Color("#444444"),
	},
}

var themeOrder = []string{"synthwave", "everforest", "gruvbox", "monochrome"}

// LoadTheme returns the theme with the given name (case-insensitive),
// registering any custom themes from cfg first. Falls back to
// synthwave if the name is not recognized.
func LoadTheme(name string, custom []config.CustomTheme) Theme {
	registerCustomThemes(custom)
	if t, ok := themes[strings.ToLower(name)]; ok {
		return t
	}
	return themes["synthwave"]
}

var builtinThemes = map[string]bool{
	"synthwave": true, "everforest": true, "gruvbox": true, "monochrome": true,
}

func registerCustomThemes(custom []config.CustomTheme) {
	for _, ct := range custom {
		key := strings.ToLower(ct.Name)
		if key == "" || builtinThemes[key] {
			continue
		}
		if _, exists := themes[key]; exists {
			continue
		}
		themes[key] = Theme{
			Name:       ct.Name,
			Primary:    lipgloss.Color(ct.Primary),
			Secondary:  lipgloss.Color(ct.Secondary),
			Accent:     lipgloss.Color(ct.Accent),
			Error:      lipgloss.Color(ct.Error),
			Success:    lipgloss.Color(ct.Success),
			Warning:    lipgloss.Color(ct.Warning),
			Background: lipgloss.Color(ct.Background),
			Text:       lipgloss.Color(ct.Text),
			Dimmed:     lipgloss.Color(ct.Dimmed),
			Separator:  lipgloss.Color(ct.Separator),
		}
		themeOrder = append(themeOrder, key)
	}
}

// styles holds every themed lipgloss.Style the view renders with.
type styles struct {
	title, border, label, hotkey, quit                       lipgloss.Style
	badgeOK, badgeMultiStroke, badgeErr, body                lipgloss.Style
	debugTitle, debugTime, debugCategory, debugMsg, debugSep lipgloss.Style
}

func buildStyles(t Theme) styles {
	return styles{
		title:            lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Background).MarginBottom(1),
		border:           lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Secondary).Padding(1, 2).Background(t.Background),
		label:            lipgloss.NewStyle().Foreground(t.Secondary).Background(t.Background).Bold(true),
		hotkey:           lipgloss.NewStyle().Foreground(t.Secondary).Background(t.Background),
		quit:             lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background),
		badgeOK:          lipgloss.NewStyle().Foreground(t.Success).Background(t.Background).Bold(true),
		badgeMultiStroke: lipgloss.NewStyle().Foreground(t.Warning).Background(t.Background).Bold(true),
		badgeErr:         lipgloss.NewStyle().Foreground(t.Error).Background(t.Background).Bold(true),
		body:             lipgloss.NewStyle().Foreground(t.Text).Background(t.Background),
		debugTitle:       lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background).Bold(true),
		debugTime:        lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background),
		debugCategory:    lipgloss.NewStyle().Foreground(t.Warning).Background(t.Background),
		debugMsg:         lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background),
		debugSep:         lipgloss.NewStyle().Foreground(t.Separator).Background(t.Background),
	}
}

package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the grid and the side panel.
type Theme struct {
	Name   string
	Empty  lipgloss.Color
	Blue   lipgloss.Color
	Red    lipgloss.Color
	Green  lipgloss.Color
	Cursor lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:   "classic",
		Empty:  lipgloss.Color("#3f3f46"),
		Blue:   lipgloss.Color("#2563eb"),
		Red:    lipgloss.Color("#dc2626"),
		Green:  lipgloss.Color("#22c55e"),
		Cursor: lipgloss.Color("#fafafa"),
		Accent: lipgloss.Color("#60a5fa"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#9ca3af"),
		Error:  lipgloss.Color("#f87171"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Empty:  lipgloss.Color("#003300"),
		Blue:   lipgloss.Color("#00cc00"), // green phosphor, shades only
		Red:    lipgloss.Color("#88ff88"),
		Green:  lipgloss.Color("#005500"),
		Cursor: lipgloss.Color("#ffff00"),
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#007700"),
		Error:  lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Empty:  lipgloss.Color("#2d1b2e"),
		Blue:   lipgloss.Color("#54a0ff"),
		Red:    lipgloss.Color("#ff6b6b"),
		Green:  lipgloss.Color("#5fd068"),
		Cursor: lipgloss.Color("#feca57"),
		Accent: lipgloss.Color("#ff9ff3"),
		Text:   lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Error:  lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeClassic, ThemeRetro, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to the classic theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name     string
	Arm      lipgloss.Color
	Target   lipgloss.Color
	Obstacle lipgloss.Color
	Accent   lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
}

// Available themes
var (
	ThemeOcean = Theme{
		Name:     "ocean",
		Arm:      lipgloss.Color("#00ccff"),
		Target:   lipgloss.Color("#ff66aa"),
		Obstacle: lipgloss.Color("#888899"),
		Accent:   lipgloss.Color("#00ffcc"),
		Muted:    lipgloss.Color("#334455"),
		Warning:  lipgloss.Color("#ffaa00"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Arm:      lipgloss.Color("#00ff00"),
		Target:   lipgloss.Color("#ffff00"),
		Obstacle: lipgloss.Color("#008800"),
		Accent:   lipgloss.Color("#88ff88"),
		Muted:    lipgloss.Color("#005500"),
		Warning:  lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Arm:      lipgloss.Color("#ffffff"),
		Target:   lipgloss.Color("#0088ff"),
		Obstacle: lipgloss.Color("#888888"),
		Accent:   lipgloss.Color("#cccccc"),
		Muted:    lipgloss.Color("#444444"),
		Warning:  lipgloss.Color("#ffaa00"),
	}
)

var themes = []Theme{ThemeOcean, ThemeRetroGreen, ThemeMinimal}

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme cycles through the built-in themes.
func NextTheme(current Theme) Theme {
	for i, t := range themes {
		if t.Name == current.Name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

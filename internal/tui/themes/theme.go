package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the explorer.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Prompt        lipgloss.Style
	ActiveMode    lipgloss.Style
	InactiveMode  lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	BorderedBox   lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:   lipgloss.Color("#7c3aed"),
	Secondary: lipgloss.Color("#a78bfa"),
	Success:   lipgloss.Color("#10b981"),
	Error:     lipgloss.Color("#ef4444"),
	Info:      lipgloss.Color("#3b82f6"),
	Border:    lipgloss.Color("#404040"),
	Muted:     lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true),
	Prompt: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true),

	ActiveMode: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#7c3aed")).
		Padding(0, 1),
	InactiveMode: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Padding(0, 1),

	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),

	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}

// Light suits terminals with a light background.
var Light = Theme{
	Primary:   lipgloss.Color("#6d28d9"),
	Secondary: lipgloss.Color("#7c3aed"),
	Success:   lipgloss.Color("#047857"),
	Error:     lipgloss.Color("#b91c1c"),
	Info:      lipgloss.Color("#1d4ed8"),
	Border:    lipgloss.Color("#d4d4d4"),
	Muted:     lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#171717")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#525252")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#171717")),
	Bold: lipgloss.NewStyle().
		Bold(true),
	Prompt: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6d28d9")).
		Bold(true),

	ActiveMode: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#6d28d9")).
		Padding(0, 1),
	InactiveMode: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Padding(0, 1),

	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1d4ed8")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#b91c1c")).
		Bold(true),
	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#047857")),

	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#d4d4d4")).
		Padding(0, 1),
}

// ByName returns the theme called name ("dark" or "light").
func ByName(name string) (Theme, bool) {
	switch name {
	case "", "dark":
		return Default, true
	case "light":
		return Light, true
	}
	return Theme{}, false
}

// ABOUTME: Shared lipgloss styles for the storefront screens
// ABOUTME: One palette for panels, lists, money amounts and form errors

package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary   = lipgloss.Color("#7C3AED")
	Accent    = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#10B981")
	Danger    = lipgloss.Color("#EF4444")
	Muted     = lipgloss.Color("#6B7280")
	Text      = lipgloss.Color("#F9FAFB")
	Surface   = lipgloss.Color("#374151")
)

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

var (
	Title    = bold(Primary).MarginBottom(1)
	Subtitle = lipgloss.NewStyle().Foreground(Muted).MarginBottom(1)
	Help     = lipgloss.NewStyle().Foreground(Muted).MarginTop(1)

	// Panel frames an idle screen section; ActivePanel the one holding focus.
	Panel       = panel(Muted)
	ActivePanel = panel(Primary)

	KeyStyle   = bold(Accent)
	ValueStyle = bold(Text)
	Amount     = bold(Secondary)
	ErrorText  = lipgloss.NewStyle().Foreground(Danger)

	// Selected highlights the cursor row in inventory and ticket lists.
	Selected = bold(Text).Background(Surface)
)

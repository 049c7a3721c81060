// ABOUTME: Shared huh theme for every form in the terminal client
// ABOUTME: Charm base theme recolored with the storefront palette

package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/tui/styles"
)

// Theme returns the huh theme used by TUI and interactive CLI forms
func Theme() *huh.Theme {
	t := huh.ThemeCharm()
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	t.Group.Title = fg(styles.Primary).Bold(true).MarginBottom(1)
	t.Group.Description = fg(styles.Muted).MarginBottom(1)

	f := &t.Focused
	f.Base = f.Base.BorderForeground(styles.Primary)
	f.Title = fg(styles.Accent).Bold(true)
	f.ErrorIndicator = fg(styles.Danger).SetString(" *")
	f.ErrorMessage = fg(styles.Danger)
	f.SelectSelector = fg(styles.Primary).SetString("> ")
	f.SelectedOption = fg(styles.Secondary).Bold(true)
	f.TextInput.Cursor = fg(styles.Primary)
	f.TextInput.Prompt = fg(styles.Primary)
	f.FocusedButton = f.FocusedButton.Background(styles.Primary)
	f.BlurredButton = f.BlurredButton.Background(styles.Surface)

	t.Blurred.Title = fg(styles.Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")
	t.Blurred.FocusedButton = f.BlurredButton
	t.Blurred.BlurredButton = f.BlurredButton

	return t
}

// ABOUTME: Compact bar widgets for rankings and stock coverage
// ABOUTME: Renders part-of-whole bars with block characters

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var emptyBarColor = lipgloss.Color("#374151")

// CompactProgressBar renders a minimal bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(emptyBarColor).Render(strings.Repeat("░", empty))
}

// ShareBar renders part as a share of total. A zero total renders empty.
func ShareBar(part, total float64, width int, color lipgloss.Color) string {
	if total <= 0 {
		return CompactProgressBar(0, width, color)
	}
	return CompactProgressBar(part/total*100, width, color)
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

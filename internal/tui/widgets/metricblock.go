// ABOUTME: Compact metric block widget for the home dashboard
// ABOUTME: Bordered panel with icon title, value, optional bar or sparkline

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       24,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

var subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	config = withDefaults(config)
	inner := config.Width - 4
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)

	return box(config, icon, title,
		valueStyle.Render(truncate(value, inner)),
		subtitleStyle.Render(truncate(subtitle, inner)),
	)
}

// MetricBlockWithBar renders a coverage percentage where higher is
// better, such as the share of the catalog that is in stock
func MetricBlockWithBar(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	config = withDefaults(config)
	inner := config.Width - 4

	var color lipgloss.Color
	var mark string
	switch {
	case percent >= 90:
		color, mark = BadgeOKBg, "✓"
	case percent >= 70:
		color, mark = BadgeWarnBg, "⚠"
	default:
		color, mark = BadgeCritBg, "✗"
	}
	status := lipgloss.NewStyle().Foreground(color)

	return box(config, icon, title,
		status.Bold(true).Render(fmt.Sprintf("%3.0f%%", percent))+" "+status.Render(mark),
		CompactProgressBar(percent, inner, color),
		subtitleStyle.Render(truncate(details, inner)),
	)
}

// MetricBlockWithSparkline renders a value next to its recent trend
func MetricBlockWithSparkline(icon icons.Icon, title, value string, spark []float64, subtitle string, config MetricBlockConfig) string {
	config = withDefaults(config)
	inner := config.Width - 4
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)

	sparkWidth := min(len(spark), max(0, inner-lipgloss.Width(value)-2))
	line := valueStyle.Render(value)
	if sparkWidth > 0 {
		line += "  " + Sparkline(spark, sparkWidth, lipgloss.Color("#7C3AED"))
	}
	return box(config, icon, title, line, subtitleStyle.Render(truncate(subtitle, inner)))
}

func withDefaults(c MetricBlockConfig) MetricBlockConfig {
	if c.Width <= 0 {
		c.Width = DefaultMetricBlockConfig().Width
	}
	return c
}

// box draws the frame with the title set into the top border. Rows are
// padded by display width so styled text lines up.
func box(config MetricBlockConfig, icon icons.Icon, title string, rows ...string) string {
	inner := config.Width - 4
	border := lipgloss.NewStyle().Foreground(config.BorderColor)

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), inner)
	top := border.Render("┌─ ") +
		lipgloss.NewStyle().Foreground(config.TitleColor).Render(titleStr) +
		border.Render(" "+strings.Repeat("─", max(0, inner-lipgloss.Width(titleStr)-1))+"┐")

	lines := []string{top}
	for _, r := range rows {
		pad := max(0, inner-lipgloss.Width(r))
		lines = append(lines, border.Render("│  ")+r+strings.Repeat(" ", pad)+border.Render("│"))
	}
	lines = append(lines, border.Render("└"+strings.Repeat("─", config.Width-2)+"┘"))
	return strings.Join(lines, "\n")
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

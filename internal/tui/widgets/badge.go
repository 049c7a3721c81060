// ABOUTME: Inline badges for roles, stock levels and status lines
// ABOUTME: Colors follow the shared OK/warning/critical palette

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func levelColors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	}
	return BadgeNeutralBg, BadgeNeutralFg
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := levelColors(level)
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// RoleBadge labels a user's role
func RoleBadge(r client.Role) string {
	switch r {
	case client.RoleAdmin:
		return Badge(r.Label(), StatusInfo)
	case client.RoleEmployee:
		return Badge(r.Label(), StatusNeutral)
	}
	return Badge(r.Label(), StatusWarning)
}

// StockLevel grades a stock count against the low-stock threshold
func StockLevel(stock, lowThreshold int) StatusLevel {
	switch {
	case stock <= 0:
		return StatusCritical
	case stock <= lowThreshold:
		return StatusWarning
	}
	return StatusOK
}

// StockBadge renders a stock count, OUT when nothing is left
func StockBadge(stock, lowThreshold int) string {
	level := StockLevel(stock, lowThreshold)
	if level == StatusCritical {
		return Badge("OUT", level)
	}
	return Badge(fmt.Sprintf("%d", stock), level)
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := levelColors(level)
	style := lipgloss.NewStyle().Foreground(bg)
	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	}
	return style.Render("•")
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := levelColors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}

// ABOUTME: Navigation menu listing the areas the current session may open
// ABOUTME: Built from the route table so hidden areas never appear

package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/session"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// NavigateMsg is sent when the user opens a route
type NavigateMsg struct {
	Route guard.Route
}

// LogoutMsg is sent when the user picks log out
type LogoutMsg struct{}

// Menu is the navigation list
type Menu struct {
	routes []guard.Route
	role   client.Role
	cursor int
	width  int
}

// New creates a menu for the session
func New(s session.Snapshot) *Menu {
	return &Menu{routes: guard.Visible(s), role: s.Role()}
}

// Refresh rebuilds the entries after the session changed
func (m *Menu) Refresh(s session.Snapshot) {
	m.routes = guard.Visible(s)
	m.role = s.Role()
	m.cursor = min(m.cursor, len(m.routes))
}

// Routes returns the visible routes in menu order
func (m *Menu) Routes() []guard.Route {
	return m.routes
}

// Select moves the cursor to the named route
func (m *Menu) Select(name string) {
	for i, r := range m.routes {
		if r.Name == name {
			m.cursor = i
		}
	}
}

// SetWidth sets the menu width
func (m *Menu) SetWidth(width int) {
	m.width = width
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. The last entry, after the routes, logs out.
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.routes) {
			m.cursor++
		}
	case "enter":
		return m, m.choose(m.cursor)
	default:
		s := key.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			i := int(s[0] - '1')
			if i < len(m.routes) {
				m.cursor = i
				return m, m.choose(i)
			}
		}
	}
	return m, nil
}

func (m *Menu) choose(i int) tea.Cmd {
	if i == len(m.routes) {
		return func() tea.Msg { return LogoutMsg{} }
	}
	r := m.routes[i]
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

// View implements tea.Model
func (m *Menu) View() string {
	var b strings.Builder
	if m.role != "" {
		b.WriteString(widgets.RoleBadge(m.role))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.Subtitle.Render("Navigate"))
	b.WriteString("\n")

	for i, r := range m.routes {
		b.WriteString(m.row(i, fmt.Sprintf("%d %s %s", i+1, routeIcon(r).String(), r.Title)))
	}
	b.WriteString("\n")
	b.WriteString(m.row(len(m.routes), fmt.Sprintf("  %s Log out", icons.Quit.String())))

	return lipgloss.NewStyle().Width(m.width).Render(b.String())
}

func (m *Menu) row(i int, label string) string {
	if i == m.cursor {
		return "> " + styles.KeyStyle.Render(label) + "\n"
	}
	return "  " + label + "\n"
}

func routeIcon(r guard.Route) icons.Icon {
	switch r.Name {
	case guard.HomeRoute:
		return icons.Chart
	case guard.SaleRegister.Name:
		return icons.Cart
	case guard.SalesHistory.Name:
		return icons.Receipt
	case guard.Products.Name:
		return icons.Product
	case guard.Categories.Name:
		return icons.Category
	case guard.Users.Name:
		return icons.Admin
	case guard.Profile.Name:
		return icons.User
	}
	return icons.Info
}

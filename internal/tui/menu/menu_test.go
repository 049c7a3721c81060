// ABOUTME: Tests for the navigation menu
// ABOUTME: Validates role-filtered entries and selection messages

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/session"
)

func snapshot(role client.Role) session.Snapshot {
	return session.Snapshot{
		Identity: &session.Identity{Name: "Ana", Email: "ana@store.test", Role: role},
		Token:    "tok",
	}
}

func TestMenu_HidesAdminAreasFromEmployees(t *testing.T) {
	m := New(snapshot(client.RoleEmployee))
	for _, r := range m.Routes() {
		if r.Name == guard.Users.Name {
			t.Error("employees should not see the users area")
		}
	}
	if strings.Contains(m.View(), "Users") {
		t.Error("expected users entry to be hidden")
	}

	m.Refresh(snapshot(client.RoleAdmin))
	if !strings.Contains(m.View(), "Users") {
		t.Error("expected users entry for admins")
	}
}

func TestMenu_EnterNavigates(t *testing.T) {
	m := New(snapshot(client.RoleEmployee))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(NavigateMsg)
	if !ok {
		t.Fatalf("expected NavigateMsg, got %T", cmd())
	}
	if msg.Route.Name != guard.SaleRegister.Name {
		t.Errorf("expected sale register, got %s", msg.Route.Name)
	}
}

func TestMenu_NumberShortcut(t *testing.T) {
	m := New(snapshot(client.RoleEmployee))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	msg := cmd().(NavigateMsg)
	if msg.Route.Name != guard.SalesHistory.Name {
		t.Errorf("expected sales history, got %s", msg.Route.Name)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}}); cmd != nil {
		t.Error("expected out-of-range shortcut to do nothing")
	}
}

func TestMenu_LastEntryLogsOut(t *testing.T) {
	m := New(snapshot(client.RoleEmployee))
	for range m.Routes() {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := cmd().(LogoutMsg); !ok {
		t.Errorf("expected LogoutMsg, got %T", cmd())
	}
}

func TestMenu_EmptyWithoutSession(t *testing.T) {
	m := New(session.Snapshot{})
	if len(m.Routes()) != 0 {
		t.Errorf("expected no routes, got %d", len(m.Routes()))
	}
}

// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests navigation guarding, login, sales and session expiry against a fake backend

package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/client/clienttest"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/recent"
	"github.com/markalston/storefront/internal/session"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/markalston/storefront/internal/tui/inventory"
	"github.com/markalston/storefront/internal/tui/menu"
	"github.com/markalston/storefront/internal/tui/ticket"
	"github.com/spf13/afero"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type harness struct {
	backend *clienttest.Backend
	store   *session.Store
	app     *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := clienttest.New(t)
	b.AddAccount(clienttest.Account{ID: "u1", Name: "Ana", Email: "ana@store.test", Role: "admin", Password: "secret1"})
	b.AddAccount(clienttest.Account{ID: "u2", Name: "Luis", Email: "luis@store.test", Role: "empleado", Password: "secret2"})
	b.AddProduct(clienttest.Product{ID: "p1", Name: "Cola", Price: 1.5, Stock: 3})

	fs := afero.NewMemMapFs()
	store := session.NewStore(fs, "/cfg")
	api := client.New(b.URL(), client.WithTokenSource(store))
	app := New(api, store, Options{
		LowStock: 5,
		Recent:   recent.New(fs, "/cfg"),
		Now:      func() time.Time { return fixedNow },
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{backend: b, store: store, app: app}
}

// run executes cmd and feeds the resulting messages back into the app the
// way the runtime would. Timer driven messages are dropped so tests never
// sleep.
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 100; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		if ignored(msg) {
			continue
		}
		_, next := h.app.Update(msg)
		queue = append(queue, next)
	}
}

func ignored(msg tea.Msg) bool {
	name := fmt.Sprintf("%T", msg)
	for _, prefix := range []string{"spinner.", "cursor.", "textinput.", "textarea.", "huh.", "tea.sequenceMsg", "tea.QuitMsg"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (h *harness) send(msg tea.Msg) {
	_, cmd := h.app.Update(msg)
	h.run(cmd)
}

func (h *harness) login(t *testing.T, email, password string) {
	t.Helper()
	h.store.Restore()
	h.send(restoredMsg{})
	h.send(forms.SubmittedMsg{Kind: forms.KindLogin, Result: client.LoginRequest{Email: email, Password: password}})
	if !h.store.IsAuthenticated() {
		t.Fatalf("expected login as %s to succeed", email)
	}
}

func TestAppInitialState(t *testing.T) {
	h := newHarness(t)
	if h.app.screen != ScreenLoading {
		t.Errorf("expected initial screen to be ScreenLoading, got %d", h.app.screen)
	}
	if h.app.menu == nil || h.app.ticket == nil || h.app.inventory == nil {
		t.Error("expected child models to be initialized")
	}
	if !strings.Contains(h.app.View(), "Restoring session") {
		t.Error("expected loading view")
	}
}

func TestRestore_WithoutSessionOpensLogin(t *testing.T) {
	h := newHarness(t)
	h.store.Restore()
	h.send(restoredMsg{})

	if h.app.screen != ScreenLogin {
		t.Fatalf("expected login screen, got %d", h.app.screen)
	}
	if h.app.form == nil || h.app.form.Kind() != forms.KindLogin {
		t.Error("expected login form")
	}
}

func TestNavigate_PendingWhileRestoring(t *testing.T) {
	h := newHarness(t)
	h.app.navigate(guard.SalesHistory)
	if h.app.screen != ScreenLoading {
		t.Errorf("expected loading screen while the session restores, got %d", h.app.screen)
	}
}

func TestLogin_OpensHomeAndLoadsDashboard(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")

	if h.app.screen != ScreenHome {
		t.Fatalf("expected home screen, got %d", h.app.screen)
	}
	if h.app.form != nil {
		t.Error("expected login form to be closed")
	}
	if h.app.dashboard == nil || h.app.dashboard.Data() == nil {
		t.Fatal("expected dashboard data to be loaded")
	}
	if !h.app.lastUpdate.Equal(fixedNow) {
		t.Errorf("expected last update %v, got %v", fixedNow, h.app.lastUpdate)
	}

	view := h.app.View()
	if !strings.Contains(view, "Ana (Admin)") {
		t.Error("expected header to show the user")
	}
	if !strings.Contains(view, "Users") {
		t.Error("expected admin menu to include Users")
	}
	if got := h.app.opts.Recent.Last(); got != "ana@store.test" {
		t.Errorf("expected login to be remembered, got %q", got)
	}
}

func TestLogin_FailureShowsError(t *testing.T) {
	h := newHarness(t)
	h.store.Restore()
	h.send(restoredMsg{})
	h.send(forms.SubmittedMsg{Kind: forms.KindLogin, Result: client.LoginRequest{Email: "ana@store.test", Password: "wrong"}})

	if h.store.IsAuthenticated() {
		t.Fatal("expected no session")
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected to stay on login, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "Credenciales inválidas") {
		t.Error("expected backend message in the login form")
	}
}

func TestRegister_StartsSession(t *testing.T) {
	h := newHarness(t)
	h.store.Restore()
	h.send(restoredMsg{})

	h.send(tea.KeyMsg{Type: tea.KeyCtrlN})
	if h.app.screen != ScreenRegister {
		t.Fatalf("expected register screen, got %d", h.app.screen)
	}
	h.send(forms.SubmittedMsg{Kind: forms.KindRegister, Result: client.RegisterRequest{
		Name: "Eva", Email: "eva@store.test", Password: "secret3", Role: client.RoleEmployee,
	}})

	if !h.store.IsAuthenticated() || h.store.Identity().Name != "Eva" {
		t.Fatal("expected Eva to be logged in")
	}
	if h.app.screen != ScreenHome {
		t.Errorf("expected home screen, got %d", h.app.screen)
	}
}

func TestGuard_EmployeeRedirectedFromUsers(t *testing.T) {
	h := newHarness(t)
	h.login(t, "luis@store.test", "secret2")

	h.send(menu.NavigateMsg{Route: guard.Users})

	if h.app.screen != ScreenHome {
		t.Errorf("expected redirect to home, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.notice, "only available to Admin users") {
		t.Errorf("unexpected notice %q", h.app.notice)
	}
}

func TestGuard_LoggedOutRedirectedToLogin(t *testing.T) {
	h := newHarness(t)
	h.store.Restore()
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login screen, got %d", h.app.screen)
	}
}

func TestSaleFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t, "luis@store.test", "secret2")
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})
	if h.app.screen != ScreenSaleRegister {
		t.Fatalf("expected sale register, got %d", h.app.screen)
	}
	if len(h.app.inventory.Products()) != 1 {
		t.Fatalf("expected inventory to list the catalog, got %d", len(h.app.inventory.Products()))
	}

	cola := h.app.inventory.Products()[0]
	h.send(inventory.AddMsg{Product: cola})
	h.send(inventory.AddMsg{Product: cola})
	if got := h.app.ticket.Order().Quantity("p1"); got != 2 {
		t.Fatalf("expected 2 units on the ticket, got %d", got)
	}

	h.send(ticket.SubmitMsg{})

	if h.app.ticket.Order().Len() != 0 {
		t.Error("expected the order to be cleared")
	}
	if len(h.backend.Sales()) != 1 {
		t.Fatalf("expected one recorded sale, got %d", len(h.backend.Sales()))
	}
	if h.backend.Stock("p1") != 1 {
		t.Errorf("expected stock 1 after the sale, got %d", h.backend.Stock("p1"))
	}
	if got := h.app.inventory.Products()[0].Stock; got != 1 {
		t.Errorf("expected inventory reloaded with stock 1, got %d", got)
	}
	if !strings.Contains(h.app.View(), "Sale recorded") {
		t.Error("expected confirmation on the ticket")
	}
}

func TestSale_StockChangedKeepsOrder(t *testing.T) {
	h := newHarness(t)
	h.login(t, "luis@store.test", "secret2")
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})

	cola := h.app.inventory.Products()[0]
	for i := 0; i < 3; i++ {
		h.send(inventory.AddMsg{Product: cola})
	}
	h.backend.SetStock("p1", 1)
	h.send(ticket.SubmitMsg{})

	if got := h.app.ticket.Order().Quantity("p1"); got != 3 {
		t.Errorf("expected quantities untouched, got %d", got)
	}
	if h.backend.Hits("POST /api/sales") != 0 {
		t.Error("expected no sale request")
	}
	if h.app.ticket.Submitting() {
		t.Error("expected the ticket to be unlocked")
	}
}

func TestSale_AddWhileSubmittingIsKept(t *testing.T) {
	h := newHarness(t)
	h.backend.AddProduct(clienttest.Product{ID: "p2", Name: "Water", Price: 1, Stock: 10})
	h.login(t, "luis@store.test", "secret2")
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})

	products := map[string]client.Product{}
	for _, p := range h.app.inventory.Products() {
		products[p.ID] = p
	}
	h.send(inventory.AddMsg{Product: products["p1"]})

	_, submit := h.app.Update(ticket.SubmitMsg{})
	h.send(inventory.AddMsg{Product: products["p2"]})
	h.send(inventory.AddMsg{Product: products["p1"]})
	h.run(submit)

	sales := h.backend.Sales()
	if len(sales) != 1 || len(sales[0].Detail) != 1 || sales[0].Detail[0].AmountSold != 1 {
		t.Fatalf("expected one sale of a single Cola, got %+v", sales)
	}
	o := h.app.ticket.Order()
	if o.Quantity("p1") != 1 || o.Quantity("p2") != 1 {
		t.Errorf("expected the units added in flight to stay, got %+v", o.Lines())
	}
	if h.app.ticket.Submitting() {
		t.Error("expected the ticket to be unlocked")
	}
}

func TestSale_EmptyOrderMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	h.login(t, "luis@store.test", "secret2")
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})
	h.send(ticket.SubmitMsg{})

	if h.backend.Hits("POST /api/sales") != 0 {
		t.Error("expected no sale request")
	}
}

func TestSaleRegister_TabSwitchesFocus(t *testing.T) {
	h := newHarness(t)
	h.login(t, "luis@store.test", "secret2")
	h.send(menu.NavigateMsg{Route: guard.SaleRegister})

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if !h.app.ticketFocus {
		t.Error("expected ticket focus")
	}
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if h.app.screen != ScreenHome {
		t.Errorf("expected back to home, got %d", h.app.screen)
	}
}

func TestExpiredSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")
	h.send(expiredMsg{})

	if h.store.IsAuthenticated() {
		t.Error("expected session to be cleared")
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login screen, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "session expired") {
		t.Error("expected expiry notice")
	}
}

func TestExpiredChannel(t *testing.T) {
	h := newHarness(t)
	ch := make(chan struct{}, 1)
	h.app.opts.Expired = ch
	ch <- struct{}{}

	msg := h.app.waitExpired()()
	if _, ok := msg.(expiredMsg); !ok {
		t.Errorf("expected expiredMsg, got %T", msg)
	}
	close(ch)
	if msg := h.app.waitExpired()(); msg != nil {
		t.Errorf("expected nil after close, got %T", msg)
	}
}

func TestProfileUpdateLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")
	h.send(menu.NavigateMsg{Route: guard.Profile})
	if h.app.screen != ScreenProfile || h.app.form == nil {
		t.Fatalf("expected profile form, got screen %d", h.app.screen)
	}

	h.send(forms.SubmittedMsg{Kind: forms.KindProfile, Result: client.ProfileUpdate{Name: "Ana María", Email: "ana@store.test"}})

	if h.store.IsAuthenticated() {
		t.Error("expected logout after profile update")
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login screen, got %d", h.app.screen)
	}
}

func TestProfileMismatchedPasswordsStaysOpen(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")
	h.send(menu.NavigateMsg{Route: guard.Profile})

	h.send(forms.SubmittedMsg{Kind: forms.KindProfile, Result: client.ProfileUpdate{
		Name: "Ana", Email: "ana@store.test", Password: "abcdef", ConfirmPassword: "abcdeg",
	}})

	if !h.store.IsAuthenticated() {
		t.Error("expected session to remain")
	}
	if h.backend.Hits("PUT /api/users/profile") != 0 {
		t.Error("expected no profile request")
	}
	if !strings.Contains(h.app.View(), "passwords do not match") {
		t.Error("expected validation message")
	}
}

func TestLogoutFromMenu(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")
	h.send(menu.LogoutMsg{})

	if h.store.IsAuthenticated() {
		t.Error("expected logout")
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login screen, got %d", h.app.screen)
	}
	if h.app.dashboard != nil || h.app.history != nil {
		t.Error("expected per-session screens to be dropped")
	}
}

func TestHistoryAndRecordsNavigation(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ana@store.test", "secret1")

	h.send(menu.NavigateMsg{Route: guard.SalesHistory})
	if h.app.screen != ScreenHistory || h.app.history.Page() == nil {
		t.Fatalf("expected loaded history, got screen %d", h.app.screen)
	}
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.app.screen != ScreenHome {
		t.Errorf("expected home after esc, got %d", h.app.screen)
	}

	h.send(menu.NavigateMsg{Route: guard.Products})
	if h.app.screen != ScreenRecords || len(h.app.records.Records()) != 1 {
		t.Fatalf("expected products list, got screen %d", h.app.screen)
	}
	h.send(menu.NavigateMsg{Route: guard.Users})
	if len(h.app.records.Records()) != 2 {
		t.Errorf("expected two users, got %d", len(h.app.records.Records()))
	}
}

func TestLoginCancelQuits(t *testing.T) {
	h := newHarness(t)
	_, cmd := h.app.Update(forms.CancelledMsg{Kind: forms.KindLogin})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

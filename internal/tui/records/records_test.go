// ABOUTME: Tests for the generic record list and its backend sources
// ABOUTME: Verifies optimistic deletes, stale marking, form saves and user rules

package records

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/client/clienttest"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/markalston/storefront/internal/tui/icons"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func backend(t *testing.T) (*clienttest.Backend, *client.Client, string) {
	b := clienttest.New(t)
	token := b.AddAccount(clienttest.Account{ID: "u1", Name: "Ana", Email: "ana@store.test", Role: "admin"})
	b.AddAccount(clienttest.Account{ID: "u2", Name: "Luis", Email: "luis@store.test", Role: "empleado"})
	b.AddCategory(clienttest.Category{ID: "c1", Name: "Drinks"})
	b.AddProduct(clienttest.Product{ID: "p1", CategoryID: "c1", Name: "Cola", Price: 1.5, Stock: 2})
	b.AddProduct(clienttest.Product{ID: "p2", CategoryID: "c1", Name: "Water", Price: 1, Stock: 30})
	return b, client.New(b.URL(), client.WithTokenSource(staticToken(token))), token
}

// run executes cmd and feeds its message back, as the bubbletea runtime would
func run(l *List, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		l.Update(msg)
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestProducts_LoadShowsCategoryAndStock(t *testing.T) {
	_, api, _ := backend(t)
	l := New(NewProducts(api, 5))
	l.SetSize(120, 30)
	run(l, l.Init())

	if len(l.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(l.Records()))
	}
	want := []string{"Cola", "Drinks", "$1.50", "2 low", "p1"}
	if got := l.Records()[0].Cells; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected cells %v, got %v", want, got)
	}

	view := l.View()
	for _, s := range []string{"Products", "2 records"} {
		if !strings.Contains(view, s) {
			t.Errorf("expected %q in view", s)
		}
	}
}

func TestDelete_ConfirmRemovesLocallyAndMarksStale(t *testing.T) {
	b, api, _ := backend(t)
	l := New(NewProducts(api, 5))
	run(l, l.Init())

	l.Update(key("d"))
	if !l.Editing() {
		t.Fatal("expected the confirm dialog to open")
	}

	_, cmd := l.Update(forms.SubmittedMsg{Kind: forms.KindConfirm, Result: forms.ConfirmResult{Target: "p1", Confirmed: true}})
	if l.Editing() {
		t.Error("expected the dialog to close")
	}
	if len(l.Records()) != 2 {
		t.Fatal("expected nothing to change before the delete completes")
	}
	run(l, cmd)

	if len(l.Records()) != 1 || l.Records()[0].ID != "p2" {
		t.Fatalf("expected only p2 left, got %+v", l.Records())
	}
	if !l.Stale() {
		t.Error("expected the list to be marked stale")
	}
	if !strings.Contains(l.View(), "Deleted Cola") {
		t.Error("expected a delete notice")
	}
	if b.Hits("DELETE /api/products/p1") != 1 {
		t.Error("expected one delete request")
	}

	run(l, l.Reload())
	if l.Stale() {
		t.Error("expected reload to clear the stale mark")
	}
	if len(l.Records()) != 1 {
		t.Errorf("expected 1 record after reload, got %d", len(l.Records()))
	}
}

func TestDelete_DeclinedMakesNoRequest(t *testing.T) {
	b, api, _ := backend(t)
	l := New(NewCategories(api))
	run(l, l.Init())

	l.Update(key("d"))
	_, cmd := l.Update(forms.SubmittedMsg{Kind: forms.KindConfirm, Result: forms.ConfirmResult{Target: "c1"}})
	if cmd != nil {
		t.Error("expected no command")
	}
	if l.Editing() {
		t.Error("expected the dialog to close")
	}
	if len(l.Records()) != 1 {
		t.Errorf("expected the row to stay, got %d records", len(l.Records()))
	}
	if b.Hits("DELETE /api/categories/c1") != 0 {
		t.Error("expected no delete request")
	}
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	l := New(&stubSource{records: []Record{{ID: "x", Label: "X", Cells: []string{"X"}}}, deleteErr: errors.New("Producto no encontrado")})
	run(l, l.Init())

	_, cmd := l.Update(forms.SubmittedMsg{Kind: forms.KindConfirm, Result: forms.ConfirmResult{Target: "x", Confirmed: true}})
	run(l, cmd)
	if len(l.Records()) != 1 {
		t.Errorf("expected the row to stay, got %d records", len(l.Records()))
	}
	if l.Stale() {
		t.Error("expected the list not to be stale")
	}
	if !strings.Contains(l.View(), "Producto no encontrado") {
		t.Error("expected the error in the view")
	}
}

func TestCategories_CreateAndEdit(t *testing.T) {
	_, api, _ := backend(t)
	l := New(NewCategories(api))
	run(l, l.Init())

	l.Update(key("n"))
	if !l.Editing() {
		t.Fatal("expected the form to open")
	}

	_, cmd := l.Update(forms.SubmittedMsg{Kind: forms.KindCategory, Result: forms.CategoryResult{
		Payload: client.CategoryPayload{Name: "Snacks", Description: "Chips and such"},
	}})
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	_, cmd = l.Update(cmd())
	if l.Editing() {
		t.Error("expected the form to close after saving")
	}
	run(l, cmd)

	if len(l.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(l.Records()))
	}
	names := []string{l.Records()[0].Label, l.Records()[1].Label}
	sort.Strings(names)
	if names[0] != "Drinks" || names[1] != "Snacks" {
		t.Errorf("unexpected categories %v", names)
	}

	l.Update(key("e"))
	if !l.Editing() {
		t.Error("expected the edit form to open")
	}
}

func TestSave_FailureReopensFormWithError(t *testing.T) {
	_, api, _ := backend(t)
	l := New(NewCategories(api))
	run(l, l.Init())
	l.Update(key("n"))

	_, cmd := l.Update(forms.SubmittedMsg{Kind: forms.KindCategory, Result: forms.CategoryResult{}})
	l.Update(cmd())

	if !l.Editing() {
		t.Fatal("expected the form to stay open")
	}
	if !strings.Contains(l.View(), "failed to create category") {
		t.Error("expected the error in the form")
	}
}

func TestProducts_UpdateSendsAllFields(t *testing.T) {
	_, api, _ := backend(t)
	src := NewProducts(api, 5)
	err := src.Save(context.Background(), forms.ProductResult{ID: "p1", Payload: client.ProductPayload{
		CategoryID: "c1", Name: "Cola Zero", Price: 1.75, Stock: 9,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	products, err := api.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got client.Product
	for _, p := range products {
		if p.ID == "p1" {
			got = p
		}
	}
	if got.Name != "Cola Zero" || got.Stock != 9 || math.Abs(got.Price-1.75) > 0.001 {
		t.Errorf("unexpected product %+v", got)
	}
}

func TestUsers_CannotDeleteSelfOrCreate(t *testing.T) {
	_, api, _ := backend(t)
	l := New(NewUsers(api, "u1"))
	run(l, l.Init())
	if len(l.Records()) != 2 {
		t.Fatalf("expected 2 users, got %d", len(l.Records()))
	}
	if got := l.Records()[0].Cells[0]; got != "Ana (you)" {
		t.Errorf("expected the current user marked, got %q", got)
	}

	l.Update(key("d"))
	if l.Editing() {
		t.Error("expected no confirm dialog for the own account")
	}
	if !strings.Contains(l.View(), ErrDeleteSelf.Error()) {
		t.Error("expected the self-delete notice")
	}

	_, cmd := l.Update(key("n"))
	if cmd != nil || l.Editing() {
		t.Error("expected users to have no create form")
	}
}

func TestUsers_EditChangesRole(t *testing.T) {
	_, api, _ := backend(t)
	src := NewUsers(api, "u1")
	err := src.Save(context.Background(), forms.UserResult{ID: "u2", Update: client.UserUpdate{
		Name: "Luis", Email: "luis@store.test", Role: client.RoleAdmin,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	users, err := api.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, u := range users {
		if u.ID == "u2" && u.Role != client.RoleAdmin {
			t.Errorf("expected u2 to be admin, got %q", u.Role)
		}
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	l := New(&stubSource{})
	l.seq = 3
	l.Update(loadedMsg{seq: 2, records: []Record{{ID: "old"}}})
	if len(l.Records()) != 0 {
		t.Errorf("expected the old load to be ignored, got %+v", l.Records())
	}
}

func TestEscapeClosesForm(t *testing.T) {
	l := New(&stubSource{records: []Record{{ID: "x", Label: "X", Cells: []string{"X"}}}})
	run(l, l.Init())
	l.Update(key("d"))
	if !l.Editing() {
		t.Fatal("expected the confirm dialog to open")
	}

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	run(l, cmd)
	if l.Editing() {
		t.Error("expected escape to close the dialog")
	}
}

type stubSource struct {
	records   []Record
	deleteErr error
}

func (s *stubSource) Title() string                   { return "Stub" }
func (s *stubSource) Icon() icons.Icon                { return icons.Info }
func (s *stubSource) Columns(int) []table.Column      { return []table.Column{{Title: "Name", Width: 10}} }
func (s *stubSource) Form(*Record) *forms.Form        { return nil }
func (s *stubSource) Save(context.Context, any) error { return nil }

func (s *stubSource) Load(context.Context) ([]Record, error) {
	return s.records, nil
}

func (s *stubSource) Delete(context.Context, string) error {
	return s.deleteErr
}

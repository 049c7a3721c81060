// ABOUTME: Test helpers for cmd tests
// ABOUTME: Installs an app against a fake backend and resets flag globals

package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/client/clienttest"
	"github.com/markalston/storefront/internal/config"
	"github.com/markalston/storefront/internal/recent"
	"github.com/markalston/storefront/internal/session"
	"github.com/spf13/afero"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// withBackend points current at a fresh fake backend with an empty
// in-memory config directory.
func withBackend(t *testing.T) *clienttest.Backend {
	t.Helper()
	backend := clienttest.New(t)

	fs := afero.NewMemMapFs()
	store := session.NewStore(fs, "/cfg")
	store.Restore()

	a := &app{
		cfg:     &config.Config{APIURL: backend.URL(), ConfigDir: "/cfg"},
		store:   store,
		recent:  recent.New(fs, "/cfg"),
		expired: make(chan struct{}, 1),
	}
	a.api = client.New(backend.URL(),
		client.WithTokenSource(store),
		client.WithRetries(0),
		client.WithUnauthorizedHandler(a.expire),
	)

	resetFlags()
	current = a
	now = func() time.Time { return fixedNow }
	confirm = func(string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}
	promptLogin = func(string) (client.LoginRequest, error) {
		t.Fatal("unexpected login prompt")
		return client.LoginRequest{}, nil
	}
	t.Cleanup(func() {
		current = nil
		now = time.Now
		resetFlags()
	})
	return backend
}

// loginAs seeds the account and starts a session for it
func loginAs(t *testing.T, backend *clienttest.Backend, acct clienttest.Account) {
	t.Helper()
	token := backend.AddAccount(acct)
	identity := session.Identity{ID: acct.ID, Name: acct.Name, Email: acct.Email, Role: client.Role(acct.Role)}
	if err := current.store.Login(identity, token); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func resetFlags() {
	apiURL, jsonOutput = "", false
	authName, authEmail, authPassword, authRole = "", "", "", ""
	productName, productCategory, productPrice, productStock, productYes = "", "", 0, 0, false
	categoryName, categoryDescription, categoryYes = "", "", false
	salesFrom, salesTo, salesPage, salesLimit, saleItems = "", "", 1, 10, nil
	userName, userEmail, userRole, userYes = "", "", "", false
	profilePassword, profileConfirmation = "", ""
	lowStockThreshold, stockThreshold = 5, 5
}

// capture calls fn and returns its exit code and output
func capture(fn func(ctx context.Context, w io.Writer) int) (int, string) {
	var buf bytes.Buffer
	code := fn(context.Background(), &buf)
	return code, buf.String()
}

var (
	ana  = clienttest.Account{ID: "u1", Name: "Ana", Email: "ana@store.test", Role: "admin", Password: "secret1"}
	luis = clienttest.Account{ID: "u2", Name: "Luis", Email: "luis@store.test", Role: "empleado", Password: "secret2"}
)

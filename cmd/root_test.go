// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies bootstrap configuration, the guard helper and session expiry

package cmd

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/guard"
	"github.com/spf13/afero"
)

func TestBootstrap_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG_DIR", t.TempDir())
	t.Setenv("STOREFRONT_API_URL", "")
	t.Setenv("LOG_FILE", "-")
	apiURL = ""

	a, err := bootstrap(afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	defer a.Close()

	if a.api.BaseURL() != "http://localhost:5000" {
		t.Errorf("expected default URL http://localhost:5000, got %s", a.api.BaseURL())
	}
	if a.store.Loading() {
		t.Error("expected session restore to have finished")
	}
	if a.store.IsAuthenticated() {
		t.Error("expected no session in an empty config dir")
	}
}

func TestBootstrap_FromEnv(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG_DIR", t.TempDir())
	t.Setenv("STOREFRONT_API_URL", "http://backend.example.com")
	t.Setenv("LOG_FILE", "-")
	apiURL = ""

	a, err := bootstrap(afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	defer a.Close()

	if a.api.BaseURL() != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", a.api.BaseURL())
	}
}

func TestBootstrap_FlagOverridesEnv(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG_DIR", t.TempDir())
	t.Setenv("STOREFRONT_API_URL", "http://backend.example.com")
	t.Setenv("LOG_FILE", "-")
	apiURL = "localhost:9000"
	defer func() { apiURL = "" }()

	a, err := bootstrap(afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	defer a.Close()

	if a.api.BaseURL() != "http://localhost:9000" {
		t.Errorf("expected flag to override env, got %s", a.api.BaseURL())
	}
}

func TestBootstrap_InvalidFlag(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG_DIR", t.TempDir())
	t.Setenv("LOG_FILE", "-")
	apiURL = "ftp://files.example.com"
	defer func() { apiURL = "" }()

	if _, err := bootstrap(afero.NewMemMapFs()); err == nil {
		t.Fatal("expected an error for a non-http --api-url")
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestAuthorize(t *testing.T) {
	backend := withBackend(t)

	if err := authorize(guard.Products); err != errNotLoggedIn {
		t.Errorf("expected not logged in, got %v", err)
	}

	loginAs(t, backend, luis)
	if err := authorize(guard.Products); err != nil {
		t.Errorf("expected employee to reach products, got %v", err)
	}
	err := authorize(guard.Users)
	if err == nil || err.Error() != "Users is only available to Admin users" {
		t.Errorf("expected role denial, got %v", err)
	}
}

func TestRejectedTokenEndsSession(t *testing.T) {
	backend := withBackend(t)
	loginAs(t, backend, ana)
	if err := current.store.Login(*current.store.Identity(), "revoked-token"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	code, out := capture(runSalesList)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out, "failed to load sales history") {
		t.Errorf("expected sales error, got: %s", out)
	}
	if current.store.IsAuthenticated() {
		t.Error("expected the rejected session to be logged out")
	}
	select {
	case <-current.expired:
	default:
		t.Error("expected an expiry notification")
	}
}

func TestFailPrintsError(t *testing.T) {
	code, out := capture(func(ctx context.Context, w io.Writer) int {
		return fail(w, &client.Error{Op: "list products", Message: "cannot connect to backend"})
	})
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if out != "Error: cannot connect to backend\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "NAME"}, [][]string{{"p1", "Cola"}, {"p2", "Water"}})
	for _, want := range []string{"ID", "NAME", "p1", "Cola", "Water"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Errorf("expected a header and two rows, got:\n%s", out)
	}
}

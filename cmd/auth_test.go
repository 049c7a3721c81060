// ABOUTME: Tests for the session commands
// ABOUTME: Verifies login, register, logout and whoami against a fake backend

package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/session"
)

func TestLogin_WithFlags(t *testing.T) {
	backend := withBackend(t)
	backend.AddAccount(ana)
	authEmail, authPassword = "ana@store.test", "secret1"

	code, out := capture(runLogin)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, out)
	}
	if !strings.Contains(out, "✓ Logged in as Ana (Admin)") {
		t.Errorf("unexpected output: %s", out)
	}
	if !current.store.IsAuthenticated() {
		t.Error("expected a session")
	}
	if current.recent.Last() != "ana@store.test" {
		t.Errorf("expected login to be remembered, got %q", current.recent.Last())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := withBackend(t)
	backend.AddAccount(ana)
	authEmail, authPassword = "ana@store.test", "wrong"

	code, out := capture(runLogin)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if out != "Error: Credenciales inválidas\n" {
		t.Errorf("unexpected output: %q", out)
	}
	if current.store.IsAuthenticated() {
		t.Error("expected no session after a failed login")
	}
}

func TestLogin_WrongPasswordKeepsCurrentSession(t *testing.T) {
	backend := withBackend(t)
	loginAs(t, backend, luis)
	backend.AddAccount(ana)
	authEmail, authPassword = "ana@store.test", "typo"

	code, _ := capture(runLogin)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if id := current.store.Identity(); id == nil || id.Email != "luis@store.test" {
		t.Errorf("expected Luis to stay logged in, got %+v", id)
	}
}

func TestLogin_PromptsForMissingPassword(t *testing.T) {
	backend := withBackend(t)
	backend.AddAccount(ana)
	if err := current.recent.Add("ana@store.test"); err != nil {
		t.Fatal(err)
	}

	var prefilled string
	promptLogin = func(email string) (client.LoginRequest, error) {
		prefilled = email
		return client.LoginRequest{Email: email, Password: "secret1"}, nil
	}

	code, out := capture(runLogin)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, out)
	}
	if prefilled != "ana@store.test" {
		t.Errorf("expected the last login to prefill the form, got %q", prefilled)
	}
}

func TestLogin_PromptAborted(t *testing.T) {
	withBackend(t)
	promptLogin = func(string) (client.LoginRequest, error) {
		return client.LoginRequest{}, errors.New("user aborted")
	}

	code, _ := capture(runLogin)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestLogin_JSONRequiresFlags(t *testing.T) {
	withBackend(t)
	jsonOutput = true

	code, out := capture(runLogin)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out, "--email and --password are required") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRegister(t *testing.T) {
	backend := withBackend(t)
	authName, authEmail, authPassword = "Marta", "marta@store.test", "secret3"
	jsonOutput = true

	code, out := capture(runRegister)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, out)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["role"] != "empleado" {
		t.Errorf("expected backend default role, got %v", parsed["role"])
	}
	if !current.store.IsAuthenticated() {
		t.Error("expected registration to start a session")
	}
	if backend.Hits("POST /api/auth/register") != 1 {
		t.Error("expected one register request")
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"missing name", func() { authEmail, authPassword = "a@b.c", "x" }, "--name, --email and --password are required"},
		{"bad role", func() { authName, authEmail, authPassword, authRole = "A", "a@b.c", "x", "owner" }, `unknown role "owner"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := withBackend(t)
			tc.setup()

			code, out := capture(runRegister)
			if code != 2 {
				t.Errorf("expected exit code 2, got %d", code)
			}
			if !strings.Contains(out, tc.want) {
				t.Errorf("expected %q, got: %s", tc.want, out)
			}
			if backend.Hits("POST /api/auth/register") != 0 {
				t.Error("expected no request")
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	backend := withBackend(t)
	backend.AddAccount(ana)
	authName, authEmail, authPassword = "Ana", "ana@store.test", "x"

	code, out := capture(runRegister)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out, "El email ya está registrado") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestLogout(t *testing.T) {
	backend := withBackend(t)
	loginAs(t, backend, ana)

	code, out := capture(runLogout)
	if code != 0 || out != "✓ Logged out\n" {
		t.Errorf("unexpected result %d: %q", code, out)
	}
	if current.store.IsAuthenticated() {
		t.Error("expected the session to be cleared")
	}

	code, out = capture(runLogout)
	if code != 0 || out != "Not logged in\n" {
		t.Errorf("expected logout to be idempotent, got %d: %q", code, out)
	}
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	withBackend(t)

	code, out := capture(runWhoami)
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out, "not logged in") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestWhoami_ShowsTokenExpiry(t *testing.T) {
	withBackend(t)
	exp := fixedNow.Add(2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if err := current.store.Login(session.Identity{ID: "u1", Name: "Ana", Email: "ana@store.test", Role: client.RoleAdmin}, token); err != nil {
		t.Fatal(err)
	}

	jsonOutput = true
	code, out := capture(runWhoami)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, out)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["expires_at"] != exp.UTC().Format(time.RFC3339) {
		t.Errorf("unexpected expiry: %v", parsed["expires_at"])
	}
	if parsed["role"] != "admin" {
		t.Errorf("unexpected role: %v", parsed["role"])
	}
}

func TestWhoami_OpaqueToken(t *testing.T) {
	backend := withBackend(t)
	loginAs(t, backend, luis)

	code, out := capture(runWhoami)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	for _, want := range []string{"Luis", "Employee", "Expires: unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
